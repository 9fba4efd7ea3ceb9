package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/cache"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/errors"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/llm"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/locator"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/ratelimit"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/registry"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/scoring"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/sources"
	"github.com/ZanzyTHEbar/model-trust-o-meter/internal/types"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment with defaults
	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	port := getEnvOrDefault("PORT", "8080")
	hfToken := os.Getenv("HF_TOKEN")
	githubToken := os.Getenv("GITHUB_TOKEN")
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	llmConfig := llm.Config{
		APIKey:      os.Getenv("LLM_API_KEY"),
		BaseURL:     os.Getenv("LLM_BASE_URL"),
		Model:       os.Getenv("LLM_MODEL"),
		Temperature: getEnvFloat("LLM_TEMPERATURE", 0.1),
		TopP:        getEnvFloat("LLM_TOP_P", 1.0),
		MaxTokens:   int64(getEnvInt("LLM_MAX_TOKENS", 16)),
	}

	// Initialize evaluation store
	store, err := registry.NewStore(dataDir)
	if err != nil {
		slog.Error("Failed to initialize evaluation store", "error", err)
		os.Exit(1)
	}
	defer errors.SafeClose(store, "evaluation store")

	// Upstream clients
	hfClient := sources.NewHuggingFaceClient(hfToken)
	ghClient := sources.NewGitHubClient(githubToken)
	analyzer := llm.NewAnalyzer(llmConfig)
	if analyzer.Enabled() {
		slog.Info("LLM analyzer enabled", "model", llmConfig.Model)
	} else {
		slog.Info("LLM analyzer disabled, scorers use keyword heuristics")
	}

	engine := scoring.NewEngine(hfClient, ghClient, analyzer, store)

	r := gin.New()

	// Monitoring
	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()
	hfClient.SetMetrics(appMetrics)
	ghClient.SetMetrics(appMetrics)
	analyzer.SetMetrics(appMetrics)
	r.Use(monitoring.MonitoringMiddleware(appMetrics, appLogger))

	// Error handling middleware
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	// CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000"), ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	// Rate limiting with Redis and in-memory fallback
	redisClient, err := ratelimit.NewRedisClient(redisAddr, redisPassword, 0)
	if err != nil {
		slog.Warn("Redis unavailable, continuing with in-memory rate limiting", "error", err)
	}
	defer errors.SafeClose(redisClient, "redis client")

	limiterConfig := ratelimit.DefaultConfig()
	limiterConfig.IPLimitPerMin = getEnvInt("RATE_LIMIT_PER_MIN", limiterConfig.IPLimitPerMin)
	limiter := ratelimit.NewRateLimiter(redisClient, limiterConfig, appMetrics)
	r.Use(limiter.IPRateLimitMiddleware())

	// Response cache (identical URL triples share one evaluation)
	appCache := cache.NewCache(15 * time.Minute)
	r.Use(appCache.Middleware(appMetrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, types.HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().Format(time.RFC3339),
			Version:   version,
			Metrics: map[string]interface{}{
				"llm_enabled":   analyzer.Enabled(),
				"redis_enabled": redisClient.IsEnabled(),
			},
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		stats := appMetrics.GetStats()
		stats["rate_limiter"] = limiter.GetStats()
		stats["huggingface_pool"] = hfClient.PoolStats()
		stats["github_pool"] = ghClient.PoolStats()
		stats["store"] = store.Stats(c.Request.Context())
		c.JSON(http.StatusOK, stats)
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, appCache.Stats())
	})

	r.GET("/evaluations", func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		evals, err := store.Recent(c.Request.Context(), limit)
		if err != nil {
			appErr := errors.NewInternalError("failed to list evaluations", err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
		c.JSON(http.StatusOK, gin.H{"evaluations": evals})
	})

	r.POST("/evaluate", func(c *gin.Context) {
		start := time.Now()

		var req types.EvaluateRequest
		if err := c.BindJSON(&req); err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		ref := locator.Parse(
			strings.TrimSpace(req.ModelURL),
			strings.TrimSpace(req.DatasetURL),
			strings.TrimSpace(req.CodeURL),
		)

		slog.Info("Starting evaluation",
			"model", ref.ModelName(),
			"has_dataset", ref.HasDataset(),
			"has_code", ref.HasCode(),
			"ip", c.ClientIP(),
		)

		record := engine.Evaluate(c.Request.Context(), ref)
		decision := registry.Admit(record)

		if _, err := store.Save(c.Request.Context(), record, decision.Admitted); err != nil {
			// Persistence failure must not drop a finished evaluation
			slog.Error("Failed to persist evaluation", "model", record.Name, "error", err)
		}

		appMetrics.IncrementEvaluation()
		appLogger.EvaluationLogger(record.Name, record.NetScore, time.Since(start), false)

		c.JSON(http.StatusOK, gin.H{
			"record":    record,
			"admission": decision,
		})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	errors.SafeClose(hfClient, "huggingface client")
	errors.SafeClose(ghClient, "github client")

	slog.Info("Server exited")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
