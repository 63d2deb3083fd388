package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/weihan-tech/casetrack/internal/compliance"
	"github.com/weihan-tech/casetrack/internal/config"
	"github.com/weihan-tech/casetrack/internal/database"
	"github.com/weihan-tech/casetrack/internal/handlers"
	"github.com/weihan-tech/casetrack/internal/logger"
	"github.com/weihan-tech/casetrack/internal/metrics"
	"github.com/weihan-tech/casetrack/internal/middleware"
	"github.com/weihan-tech/casetrack/internal/repository"
	"github.com/weihan-tech/casetrack/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func main() {
	// Load .env if present, then configuration from environment variables
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	log.Info("Starting Casetrack API", map[string]interface{}{
		"version":     "0.1.0",
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	// Load the archive compliance rules once; they are immutable afterwards
	rules := compliance.Default()
	if cfg.Compliance.RulesFile != "" {
		rules, err = compliance.LoadFile(cfg.Compliance.RulesFile)
		if err != nil {
			log.Fatal("Failed to load compliance rules", err, map[string]interface{}{
				"file": cfg.Compliance.RulesFile,
			})
		}
		log.Info("Compliance rules loaded", map[string]interface{}{
			"file": cfg.Compliance.RulesFile,
		})
	}

	// Create database connection pool
	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	// Setup Gin router
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check and metrics routes
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Initialize store, metrics and service layers
	store := repository.NewStore(db)
	met := metrics.New(prometheus.DefaultRegisterer)
	caseService := services.NewCaseService(store, rules, log, met)
	locationService := services.NewLocationService(store, log)

	// Initialize handlers
	caseHandler := handlers.NewCaseHandler(caseService)
	locationHandler := handlers.NewLocationHandler(locationService)

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		locations := v1.Group("/locations")
		{
			locations.POST("", locationHandler.Create)
			locations.GET("/:id/history", locationHandler.History)
		}

		cases := v1.Group("/cases")
		{
			cases.POST("", caseHandler.Create)
			cases.GET("", caseHandler.List)
			cases.GET("/export", caseHandler.Export)
			cases.GET("/:id", caseHandler.Detail)
			cases.GET("/:id/archive-check", caseHandler.ArchiveCheck)
			cases.POST("/:id/archives", caseHandler.AddArchive)
			cases.POST("/enforcement", caseHandler.AddEnforcement)
			cases.POST("/building-progress", caseHandler.AddBuildingProgress)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
}
