package analyzer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-auditor/backend/errs"
)

type stubFetcher struct {
	calls int
	page  *FetchedPage
	err   error
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (*FetchedPage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	page := *f.page
	page.URL = url
	page.FinalURL = url
	return &page, nil
}

type failingStore struct {
	calls int
}

func (s *failingStore) SaveReport(_ context.Context, _ *Report) error {
	s.calls++
	return errors.New("database unavailable")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAnalyzer(t *testing.T, fetcher Fetcher, opts ...Option) *Analyzer {
	t.Helper()
	cache := NewMemoryCache(time.Minute, 10)
	t.Cleanup(cache.Stop)
	return New(fetcher, cache, discardLogger(), opts...)
}

func samplePage() *FetchedPage {
	return &FetchedPage{
		HTML:       richPage,
		StatusCode: 200,
		SizeBytes:  len(richPage),
		Duration:   300 * time.Millisecond,
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	fetcher := &stubFetcher{page: samplePage()}
	auditor := newTestAnalyzer(t, fetcher)

	report, err := auditor.Analyze(context.Background(), "https://www.example.com/path?q=1")
	require.NoError(t, err)

	assert.Equal(t, "https://www.example.com/path?q=1", report.URL)
	assert.Equal(t, "www.example.com", report.Domain)
	assert.False(t, report.Cached)
	assert.False(t, report.AnalyzedAt.IsZero())

	assert.GreaterOrEqual(t, report.OverallScore, 0)
	assert.LessOrEqual(t, report.OverallScore, 100)
	assert.NotEmpty(t, report.Grade)
	assert.NotEmpty(t, report.Strengths)
	assert.NotEmpty(t, report.Weaknesses)
	assert.NotEmpty(t, report.Recommendations)

	assert.Contains(t, report.CategoryScores, CategoryMeta)
	assert.Contains(t, report.CategoryScores, CategorySecurity)
	assert.Contains(t, report.CategoryScores, CategoryPerformance,
		"a measured fetch duration should enable the performance category")
}

func TestAnalyzeSecondCallIsCached(t *testing.T) {
	fetcher := &stubFetcher{page: samplePage()}
	auditor := newTestAnalyzer(t, fetcher)

	first, err := auditor.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := auditor.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.OverallScore, second.OverallScore)
	assert.Equal(t, first.Grade, second.Grade)
	assert.Equal(t, 1, fetcher.calls, "the second analysis must not fetch")
}

func TestAnalyzeCacheKeyIgnoresCase(t *testing.T) {
	fetcher := &stubFetcher{page: samplePage()}
	auditor := newTestAnalyzer(t, fetcher)

	_, err := auditor.Analyze(context.Background(), "https://EXAMPLE.com")
	require.NoError(t, err)

	report, err := auditor.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.True(t, report.Cached)
	assert.Equal(t, 1, fetcher.calls)
}

func TestAnalyzeInvalidInputSkipsFetch(t *testing.T) {
	fetcher := &stubFetcher{page: samplePage()}
	auditor := newTestAnalyzer(t, fetcher)

	_, err := auditor.Analyze(context.Background(), "not a url and spaces")
	require.Error(t, err)

	var appErr *errs.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errs.InvalidURL, appErr.Kind)
	assert.Equal(t, 0, fetcher.calls, "invalid input must be rejected before fetching")
}

func TestAnalyzeFetchErrorPropagates(t *testing.T) {
	fetcher := &stubFetcher{
		err: errs.New(errs.NotFound, "the page was not found (404)"),
	}
	auditor := newTestAnalyzer(t, fetcher)

	report, err := auditor.Analyze(context.Background(), "https://example.com/missing")
	require.Error(t, err)
	assert.Nil(t, report, "a failed fetch must not produce a report")

	var appErr *errs.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errs.NotFound, appErr.Kind)
}

func TestAnalyzeStoreFailureDoesNotFailAnalysis(t *testing.T) {
	fetcher := &stubFetcher{page: samplePage()}
	store := &failingStore{}
	auditor := newTestAnalyzer(t, fetcher, WithStore(store))

	report, err := auditor.Analyze(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.NotNil(t, report)
	assert.Equal(t, 1, store.calls)
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare domain gets https", "example.com", "https://example.com", false},
		{"whitespace trimmed", "  http://example.com/a  ", "http://example.com/a", false},
		{"explicit https kept", "https://example.com/path?q=1", "https://example.com/path?q=1", false},
		{"empty input", "", "", true},
		{"unsupported scheme", "ftp://example.com", "", true},
		{"spaces in host", "https://bad host.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := NormalizeURL(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var appErr *errs.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, errs.InvalidURL, appErr.Kind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, resolved.String())
		})
	}
}
