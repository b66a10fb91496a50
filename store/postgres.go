// Package store persists finished analysis reports to Postgres and serves
// the recent-analyses listing. Persistence is optional; the analyzer works
// without it.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq" // PostgreSQL driver
)

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id            BIGSERIAL PRIMARY KEY,
	url           TEXT NOT NULL,
	domain        TEXT NOT NULL,
	overall_score INTEGER NOT NULL,
	grade         TEXT NOT NULL,
	report        JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_analyses_url ON analyses (url);
`

// RecentAnalysis is one row of the recent-analyses listing.
type RecentAnalysis struct {
	URL          string    `json:"url"`
	Domain       string    `json:"domain"`
	OverallScore int       `json:"overallScore"`
	Grade        string    `json:"grade"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ReportRecord is the subset of a report the store needs to persist it.
type ReportRecord struct {
	URL          string
	Domain       string
	OverallScore int
	Grade        string
	Report       any
}

// PostgresStore persists reports via database/sql.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

// Open connects to Postgres, verifies the connection, and applies the schema.
func Open(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return NewPostgresStore(db), nil
}

// NewPostgresStore wires an existing sql.DB.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Save inserts a report snapshot.
func (s *PostgresStore) Save(ctx context.Context, record ReportRecord) error {
	if s.db == nil {
		return nil
	}

	payload, err := json.Marshal(record.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	query, args, err := s.builder.
		Insert("analyses").
		Columns("url", "domain", "overall_score", "grade", "report").
		Values(record.URL, record.Domain, record.OverallScore, record.Grade, payload).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// ListRecent returns the most recent analyses, newest first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]RecentAnalysis, error) {
	if s.db == nil {
		return []RecentAnalysis{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	query, args, err := s.builder.
		Select("url", "domain", "overall_score", "grade", "created_at").
		From("analyses").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	result := make([]RecentAnalysis, 0, limit)
	for rows.Next() {
		var row RecentAnalysis
		if err := rows.Scan(&row.URL, &row.Domain, &row.OverallScore, &row.Grade, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// PruneOlderThan deletes analyses past the retention window.
func (s *PostgresStore) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	if s.db == nil {
		return 0, nil
	}

	query, args, err := s.builder.
		Delete("analyses").
		Where(sq.Lt{"created_at": time.Now().Add(-age)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete old analyses: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
