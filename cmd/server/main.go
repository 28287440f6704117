package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/documind/internal/analyzer"
	"github.com/BerylCAtieno/documind/internal/config"
	"github.com/BerylCAtieno/documind/internal/db"
	"github.com/BerylCAtieno/documind/internal/extractor"
	"github.com/BerylCAtieno/documind/internal/intake"
	"github.com/BerylCAtieno/documind/internal/prompt"
	"github.com/BerylCAtieno/documind/internal/repository"
	"github.com/BerylCAtieno/documind/internal/router"
	"github.com/BerylCAtieno/documind/internal/services"
	"github.com/BerylCAtieno/documind/internal/session"
	"github.com/BerylCAtieno/documind/internal/storage"
	"github.com/BerylCAtieno/documind/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Initialize database
	database, err := db.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer database.Close()

	// Run migrations
	if err := db.RunMigrations(database); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Optional export archive
	var archive storage.Storage
	if cfg.S3Enabled {
		archive, err = storage.NewS3Storage(ctx, cfg)
		if err != nil {
			logger.Fatal("Failed to initialize S3 storage", "error", err)
		}
		logger.Info("Export archive enabled", "bucket", cfg.S3BucketName)
	}

	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set; callers must send their own key")
	}

	// Session pipeline
	validator := intake.NewValidator(cfg.MaxFileSize)
	sessions := session.NewManager(&session.Dependencies{
		Validator:          validator,
		Extractor:          extractor.New(cfg.PDFLibraryEnabled, logger),
		Generator:          analyzer.New(cfg, logger),
		Logger:             logger,
		DefaultModel:       cfg.GeminiModel,
		DefaultTemperature: cfg.DefaultTemperature,
		DefaultAPIKey:      cfg.GeminiAPIKey,
		ErrorNoticeTTL:     cfg.ErrorNoticeTTL,
		SuccessNoticeTTL:   cfg.SuccessNoticeTTL,
	}, cfg.SessionIdleTimeout)
	go sessions.Run(ctx, time.Minute)

	docService := services.NewService(sessions, repository.NewRepository(database), archive, cfg, logger)
	userService := services.NewUserService(repository.NewUserRepository(database), logger)

	// Setup HTTP router
	handler := router.NewRouter(docService, userService, validator.MaxFileSize(), logger)

	// An advanced report makes one remote call per step.
	writeTimeout := cfg.GeminiTimeout*time.Duration(len(prompt.AdvancedSteps)) + 30*time.Second

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			"port", cfg.Port,
			"model", cfg.GeminiModel,
			"client", cfg.GeminiClient,
			"pdf_library", cfg.PDFLibraryEnabled)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
