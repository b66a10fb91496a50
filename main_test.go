package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-auditor/backend/analyzer"
	"github.com/seo-auditor/backend/config"
	"github.com/seo-auditor/backend/errs"
	"github.com/seo-auditor/backend/stats"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testPage = `<!DOCTYPE html>
<html><head>
<title>A reasonably descriptive page title here</title>
<meta name="description" content="A page description that is long enough to be useful to search engines and to readers alike, roughly speaking.">
<meta name="viewport" content="width=device-width, initial-scale=1">
</head><body>
<h1>Welcome</h1>
<h2>First</h2><h2>Second</h2>
<p>Some body text with enough words to not look completely empty.</p>
<a href="/internal">internal</a>
</body></html>`

type stubFetcher struct {
	err error
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (*analyzer.FetchedPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &analyzer.FetchedPage{
		URL:        url,
		FinalURL:   url,
		HTML:       testPage,
		StatusCode: 200,
		SizeBytes:  len(testPage),
		Duration:   250 * time.Millisecond,
	}, nil
}

func newTestServer(t *testing.T, fetchErr error) *gin.Engine {
	t.Helper()

	cfg := config.Config{
		RateLimitRPS:      100,
		RateLimitBurst:    100,
		RecommendationCap: 8,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	usage, err := stats.NewStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { usage.Shutdown() })

	cache := analyzer.NewMemoryCache(time.Minute, 10)
	t.Cleanup(cache.Stop)

	auditor := analyzer.New(&stubFetcher{err: fetchErr}, cache, logger,
		analyzer.WithUsageStats(usage))

	return buildRouter(cfg, logger, auditor, usage, nil)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestServer(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalyzePost(t *testing.T) {
	router := newTestServer(t, nil)

	body := strings.NewReader(`{"url":"https://example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report analyzer.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))

	assert.Equal(t, "https://example.com", report.URL)
	assert.Equal(t, "example.com", report.Domain)
	assert.NotEmpty(t, report.Grade)
	assert.NotEmpty(t, report.Recommendations)
	assert.False(t, report.Cached)
}

func TestAnalyzePostBadBody(t *testing.T) {
	router := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"nope":true}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeGet(t *testing.T) {
	router := newTestServer(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analyze?url=https://example.com", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalyzeGetMissingURL(t *testing.T) {
	router := newTestServer(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analyze", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeSecondRequestCached(t *testing.T) {
	router := newTestServer(t, nil)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analyze?url=https://example.com", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var report analyzer.Report
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, i == 1, report.Cached)
	}
}

func TestAnalyzeErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		fetchErr   *errs.AppError
		wantStatus int
		wantKind   string
	}{
		{"timeout", errs.New(errs.Timeout, "too slow"), http.StatusRequestTimeout, "timeout"},
		{"not found", errs.New(errs.NotFound, "gone"), http.StatusBadGateway, "not_found"},
		{"refused", errs.New(errs.ConnectionRefused, "refused"), http.StatusBadGateway, "connection_refused"},
		{"parse failure", errs.New(errs.ParseFailed, "bad html"), http.StatusInternalServerError, "parse_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestServer(t, tt.fetchErr)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analyze?url=https://example.com", nil))
			assert.Equal(t, tt.wantStatus, w.Code)

			var resp struct {
				Success bool   `json:"success"`
				Error   string `json:"error"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantKind, resp.Error)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestAnalyzeInvalidURLMapping(t *testing.T) {
	router := newTestServer(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analyze?url=ftp%3A%2F%2Fexample.com", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_url")
}

func TestRecentWithoutStore(t *testing.T) {
	router := newTestServer(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/recent", nil))

	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestStatisticsEndpoint(t *testing.T) {
	router := newTestServer(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/analyze?url=https://example.com", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/statistics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Current stats.MonthlyStats `json:"current"`
		Months  []string           `json:"months"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Current.Analyses)
	assert.NotEmpty(t, resp.Months)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestServer(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "seo_auditor_")
}

func TestCORSPreflight(t *testing.T) {
	router := newTestServer(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/analyze", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
