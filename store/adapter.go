package store

import (
	"context"

	"github.com/seo-auditor/backend/analyzer"
)

// SaveReport implements analyzer.Store.
func (s *PostgresStore) SaveReport(ctx context.Context, report *analyzer.Report) error {
	return s.Save(ctx, ReportRecord{
		URL:          report.URL,
		Domain:       report.Domain,
		OverallScore: report.OverallScore,
		Grade:        report.Grade,
		Report:       report,
	})
}
