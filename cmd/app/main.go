package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance/internal/api/v1/router"
	"attendance/internal/config"
	"attendance/internal/logger"
	"attendance/internal/predictor"
	"attendance/internal/repository"
	"attendance/internal/service"
	"attendance/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()
	logger := logger.New()
	if envErr != nil {
		logger.Warn().Msg("Warning: no .env file found")
	}

	ctx := context.Background()

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Msgf("Error loading config: %v", err)
	}
	if err := service.ResolveConfigSecrets(ctx, cfg, logger); err != nil {
		logger.Fatal().Msgf("Error resolving secrets: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Msgf("Invalid config: %v", err)
	}
	logger.Info().
		Str("environment", cfg.Environment).
		Str("catalog_source", cfg.CatalogSource).
		Str("model_source", cfg.ModelSource).
		Msg("App environment loaded")

	// 2. Load the course catalog
	var courseRepo repository.CourseRepository
	if cfg.CatalogSource == config.SourcePostgres {
		pool, err := repository.NewPool(ctx, cfg.DBConnectionString, cfg.Environment, logger)
		if err != nil {
			logger.Fatal().Msgf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		courseRepo = repository.NewCourseRepo(pool, logger)
	}
	catalogStore, err := storage.New(ctx, cfg, cfg.CatalogSource, logger)
	if err != nil {
		logger.Fatal().Msgf("Failed to open catalog storage: %v", err)
	}
	records, err := service.LoadCatalog(ctx, cfg, catalogStore, courseRepo, logger)
	if err != nil {
		logger.Fatal().Msgf("Failed to load course catalog: %v", err)
	}

	// 3. Load the model. Serving without one is not allowed.
	modelStore, err := storage.New(ctx, cfg, cfg.ModelSource, logger)
	if err != nil {
		logger.Fatal().Msgf("Failed to open model storage: %v", err)
	}
	model, err := predictor.Open(ctx, cfg, modelStore, logger)
	if err != nil {
		logger.Fatal().Msgf("Failed to load model: %v", err)
	}

	// 4. Build services and router
	validate := validator.New(validator.WithRequiredStructEnabled())
	catalogSvc := service.NewCatalogService(records, logger)
	predictionSvc := service.NewPredictionService(model, validate, logger)

	r, err := router.New(cfg, catalogSvc, predictionSvc, validate, logger)
	if err != nil {
		logger.Fatal().Msgf("Failed to build router: %v", err)
	}

	// 5. Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 6. Start server in a goroutine
	go func() {
		logger.Info().Msgf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Msgf("Listen: %s", err)
		}
	}()

	// 7. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutdown signal received, exiting...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Msgf("Server forced to shutdown: %v", err)
	}
	logger.Info().Msg("Server shut down gracefully")
}
