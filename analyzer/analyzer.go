package analyzer

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seo-auditor/backend/errs"
	"github.com/seo-auditor/backend/stats"
)

// FetchedPage is the raw result returned by the page fetcher collaborator.
// The analyzer treats it as read-only input.
type FetchedPage struct {
	URL        string
	FinalURL   string
	HTML       string
	StatusCode int
	Headers    map[string]string
	SizeBytes  int
	Duration   time.Duration
}

// Fetcher retrieves raw HTML for a URL. Implementations must enforce a
// bounded timeout and return typed errors on failure.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedPage, error)
}

// Store persists finished reports. Persistence failures never fail an
// analysis.
type Store interface {
	SaveReport(ctx context.Context, report *Report) error
}

// PageInfo carries fetch measurements into extraction.
type PageInfo struct {
	SizeBytes  int
	DurationMs int
}

// Analyzer is the single entry point of the audit pipeline: it normalizes
// the input URL, consults the cache, invokes the fetcher, and runs
// extraction, scoring, aggregation, and recommendation in sequence.
type Analyzer struct {
	fetcher Fetcher
	cache   Cache
	store   Store
	usage   *stats.Storage
	logger  *slog.Logger
	recCap  int
}

// Option configures optional Analyzer collaborators.
type Option func(*Analyzer)

// WithStore enables write-through persistence of finished reports.
func WithStore(store Store) Option {
	return func(a *Analyzer) { a.store = store }
}

// WithUsageStats enables usage statistics recording.
func WithUsageStats(usage *stats.Storage) Option {
	return func(a *Analyzer) { a.usage = usage }
}

// WithRecommendationCap overrides the recommendation list bound.
func WithRecommendationCap(limit int) Option {
	return func(a *Analyzer) { a.recCap = limit }
}

// New creates an Analyzer with the required collaborators.
func New(fetcher Fetcher, cache Cache, logger *slog.Logger, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger,
		recCap:  DefaultRecommendationCap,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze audits the page behind rawInput and returns the assembled report.
// Invalid input fails with an errs.InvalidURL error before any fetch.
func (a *Analyzer) Analyze(ctx context.Context, rawInput string) (*Report, error) {
	resolved, err := NormalizeURL(rawInput)
	if err != nil {
		return nil, err
	}

	cacheKey := strings.ToLower(resolved.String())
	if cached, found := a.cache.Get(cacheKey); found {
		a.recordAnalysis(true, false)
		copied := *cached
		copied.Cached = true
		return &copied, nil
	}

	page, err := a.fetcher.Fetch(ctx, resolved.String())
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = errs.Wrap(errs.Timeout, "analysis timed out, the target may be slow to respond", err)
		}
		a.logger.Error("fetch failed", "url", resolved.String(), "error", err)
		a.recordAnalysis(false, true)
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		a.logger.Error("parse failed", "url", resolved.String(), "error", err)
		a.recordAnalysis(false, true)
		return nil, errs.Wrap(errs.ParseFailed, "failed to parse the HTML content", err)
	}

	signals := Extract(doc, resolved, PageInfo{
		SizeBytes:  page.SizeBytes,
		DurationMs: int(page.Duration.Milliseconds()),
	})
	scores := ScoreCategories(signals)
	agg := Aggregate(scores)

	report := &Report{
		URL:             resolved.String(),
		Domain:          resolved.Hostname(),
		Signals:         signals,
		CategoryScores:  scores,
		OverallScore:    agg.Overall,
		Grade:           agg.Grade,
		Strengths:       agg.Strengths,
		Weaknesses:      agg.Weaknesses,
		Recommendations: Recommend(signals, a.recCap),
		Cached:          false,
		AnalyzedAt:      time.Now().UTC(),
	}

	a.cache.Set(cacheKey, report)
	if a.store != nil {
		if err := a.store.SaveReport(ctx, report); err != nil {
			a.logger.Warn("failed to persist report", "url", report.URL, "error", err)
		}
	}
	a.recordAnalysis(false, false)

	a.logger.Info("analysis complete",
		"url", report.URL,
		"overall", report.OverallScore,
		"grade", report.Grade,
	)
	return report, nil
}

func (a *Analyzer) recordAnalysis(cacheHit, failed bool) {
	if a.usage == nil {
		return
	}
	a.usage.RecordAnalysis(cacheHit, failed)
}

// NormalizeURL trims the raw input, prefixes https:// when no scheme is
// present, and parses it. Malformed input yields an errs.InvalidURL error.
func NormalizeURL(rawInput string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return nil, errs.New(errs.InvalidURL, "please provide a URL to analyze")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidURL, "invalid URL, expected something like https://example.com", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errs.New(errs.InvalidURL, "only http and https URLs are supported")
	}
	if parsed.Host == "" || strings.ContainsAny(parsed.Host, " \t") {
		return nil, errs.New(errs.InvalidURL, "invalid URL, expected something like https://example.com")
	}
	return parsed, nil
}
