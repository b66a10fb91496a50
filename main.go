package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seo-auditor/backend/analyzer"
	"github.com/seo-auditor/backend/config"
	"github.com/seo-auditor/backend/errs"
	"github.com/seo-auditor/backend/fetcher"
	"github.com/seo-auditor/backend/logging"
	"github.com/seo-auditor/backend/metrics"
	"github.com/seo-auditor/backend/middleware"
	"github.com/seo-auditor/backend/stats"
	"github.com/seo-auditor/backend/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("seo auditor starting", "port", cfg.Port)

	gin.SetMode(cfg.GinMode)

	usage, err := stats.NewStorage(cfg.DataDir)
	if err != nil {
		logger.Error("failed to initialize usage statistics", "error", err)
		os.Exit(1)
	}

	cache := analyzer.NewMemoryCache(cfg.CacheTTL, cfg.CacheMaxEntries)
	pageFetcher := fetcher.New(cfg.FetchTimeout, logger.With("component", "fetcher"))

	opts := []analyzer.Option{
		analyzer.WithUsageStats(usage),
		analyzer.WithRecommendationCap(cfg.RecommendationCap),
	}

	var reportStore *store.PostgresStore
	if cfg.DatabaseDSN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		reportStore, err = store.Open(ctx, cfg.DatabaseDSN)
		cancel()
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		opts = append(opts, analyzer.WithStore(reportStore))
		logger.Info("postgres persistence enabled")
	} else {
		logger.Info("no DATABASE_DSN set, persistence disabled")
	}

	auditor := analyzer.New(pageFetcher, cache, logger.With("component", "analyzer"), opts...)

	// Mirror cache counters into prometheus gauges.
	cacheMetricsDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				hits, misses := cache.Stats()
				metrics.CacheEntries.Set(float64(cache.Len()))
				metrics.CacheHits.Set(float64(hits))
				metrics.CacheMisses.Set(float64(misses))
			case <-cacheMetricsDone:
				return
			}
		}
	}()

	// Daily maintenance: drop stale usage months and prune old reports.
	maintenanceDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				usage.Cleanup()
				if reportStore != nil && cfg.ReportRetention > 0 {
					pruned, err := reportStore.PruneOlderThan(context.Background(), cfg.ReportRetention)
					if err != nil {
						logger.Warn("report pruning failed", "error", err)
					} else if pruned > 0 {
						logger.Info("pruned old analyses", "count", pruned)
					}
				}
			case <-maintenanceDone:
				return
			}
		}
	}()

	router := buildRouter(cfg, logger, auditor, usage, reportStore)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	close(cacheMetricsDone)
	close(maintenanceDone)
	cache.Stop()
	if reportStore != nil {
		if err := reportStore.Close(); err != nil {
			logger.Error("store close error", "error", err)
		}
	}
	if err := usage.Shutdown(); err != nil {
		logger.Error("usage stats shutdown error", "error", err)
	}
	logger.Info("server stopped")
}

func buildRouter(cfg config.Config, logger *slog.Logger, auditor *analyzer.Analyzer, usage *stats.Storage, reportStore *store.PostgresStore) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).RateLimit())
	router.Use(corsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/analyze", handleAnalyzePost(auditor))
		api.GET("/analyze", handleAnalyzeGet(auditor))

		api.GET("/statistics", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"current": usage.GetCurrentStats(),
				"months":  usage.GetAllMonths(),
			})
		})

		api.GET("/recent", func(c *gin.Context) {
			if reportStore == nil {
				c.JSON(http.StatusNotImplemented, gin.H{
					"success": false,
					"error":   "persistence_disabled",
					"message": "Recent analyses require a configured database.",
				})
				return
			}
			limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
			recent, err := reportStore.ListRecent(c.Request.Context(), limit)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   "storage",
					"message": "Failed to load recent analyses.",
				})
				return
			}
			c.JSON(http.StatusOK, gin.H{"analyses": recent})
		})
	}

	return router
}

func handleAnalyzePost(auditor *analyzer.Analyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request struct {
			URL string `json:"url" binding:"required"`
		}
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "invalid_request",
				"message": "Send a JSON object with a \"url\" field.",
			})
			return
		}
		runAnalysis(c, auditor, request.URL)
	}
}

func handleAnalyzeGet(auditor *analyzer.Analyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawURL := c.Query("url")
		if rawURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "invalid_request",
				"message": "Provide a URL, for example /api/analyze?url=https://example.com",
			})
			return
		}
		runAnalysis(c, auditor, rawURL)
	}
}

func runAnalysis(c *gin.Context, auditor *analyzer.Analyzer, rawURL string) {
	report, err := auditor.Analyze(c.Request.Context(), rawURL)
	if err != nil {
		status, kind, message := httpError(err)
		metrics.AnalysesTotal.WithLabelValues("error").Inc()
		c.JSON(status, gin.H{
			"success": false,
			"error":   kind,
			"message": message,
		})
		return
	}

	if report.Cached {
		metrics.AnalysesTotal.WithLabelValues("cached").Inc()
	} else {
		metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	}
	c.JSON(http.StatusOK, report)
}

// httpError maps the error taxonomy onto HTTP statuses.
func httpError(err error) (int, string, string) {
	var appErr *errs.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, "unknown", "An unexpected error occurred."
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case errs.InvalidURL:
		status = http.StatusBadRequest
	case errs.Timeout:
		status = http.StatusRequestTimeout
	case errs.NotFound, errs.ConnectionRefused, errs.Forbidden, errs.Unreachable:
		status = http.StatusBadGateway
	case errs.ParseFailed, errs.Unknown:
		status = http.StatusInternalServerError
	}
	return status, appErr.Kind.String(), appErr.Message
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, Cache-Control, X-Requested-With")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
