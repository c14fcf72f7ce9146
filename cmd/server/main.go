package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	affiliateapp "github.com/sisms/backend/internal/application/affiliate"
	"github.com/sisms/backend/internal/domain/affiliate"
	"github.com/sisms/backend/internal/infrastructure/config"
	"github.com/sisms/backend/internal/infrastructure/logger"
	"github.com/sisms/backend/internal/infrastructure/metrics"
	"github.com/sisms/backend/internal/infrastructure/persistence"
	"github.com/sisms/backend/internal/infrastructure/sis"
	"github.com/sisms/backend/internal/interfaces/http/handler"
	"github.com/sisms/backend/internal/interfaces/http/middleware"
	"github.com/sisms/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting SIS eligibility service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Remote registry client and session provider
	registryClient, err := sis.NewClient(&sis.Config{
		Endpoint:       cfg.Registry.Endpoint,
		TimeoutSeconds: cfg.Registry.TimeoutSeconds,
	})
	if err != nil {
		log.Fatal("Failed to create registry client", zap.Error(err))
	}
	sessionProvider := sis.NewSessionProvider(registryClient, log)

	// Storage. The transaction scope binds an affiliate record and its audit
	// entry to one commit; the standalone repositories serve the read-only
	// endpoints.
	location := cfg.Registry.Location()
	scope := persistence.NewGormTransactionScope(db.DB, location)
	affiliateRepo := persistence.NewAffiliateRepository(db.DB)
	auditRepo := persistence.NewQueryAuditRepository(db.DB, location)

	appMetrics := metrics.New()

	lookupService := affiliateapp.NewLookupService(
		scope,
		sessionProvider,
		registryClient,
		affiliate.Credentials{
			Username: cfg.Registry.Username,
			Password: cfg.Registry.Password,
		},
		affiliateRepo,
		auditRepo,
		appMetrics,
		log,
	)

	// Initialize HTTP handlers
	affiliateHandler := handler.NewAffiliateHandler(lookupService)
	sessionHandler := handler.NewSessionHandler(lookupService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health and metrics endpoints (outside API versioning)
	engine.GET("/health", healthHandler(db, log))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	affiliateRoutes := router.NewDomainGroup("affiliates", "/affiliates")
	affiliateRoutes.POST("/lookup", affiliateHandler.Lookup)
	affiliateRoutes.GET("/:document", affiliateHandler.GetByDocument)
	affiliateRoutes.GET("/:document/queries", affiliateHandler.ListQueries)

	sessionRoutes := router.NewDomainGroup("session", "/session")
	sessionRoutes.POST("", sessionHandler.Open)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(affiliateRoutes).
		Register(sessionRoutes).
		Register(systemRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
