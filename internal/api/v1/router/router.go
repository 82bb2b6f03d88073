package router

import (
	"net/http"

	"attendance/internal/api/v1/handler"
	"attendance/internal/config"
	"attendance/internal/middleware"
	"attendance/internal/service"
	"attendance/internal/web"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// New wires handlers for the JSON API under /v1 and the HTML form at the root.
func New(cfg *config.Config, catalog service.CatalogService, predictions service.PredictionService, validate *validator.Validate, logger zerolog.Logger) (http.Handler, error) {
	healthHandler := handler.NewHealthHandler(catalog, predictions)
	courseHandler := handler.NewCourseHandler(catalog, logger)
	predictionHandler := handler.NewPredictionHandler(catalog, predictions, logger)

	webHandler, err := web.NewHandler(catalog, predictions, validate, logger)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(chimiddleware.Recoverer)

	apiRouter, api := SetupHumaAPI(cfg, logger)
	RegisterRoutes(api, healthHandler, courseHandler, predictionHandler, logger)
	r.Mount("/v1", apiRouter)

	webHandler.RegisterRoutes(r)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	logger.Info().Str("environment", cfg.Environment).Msg("Router initialized")
	return c.Handler(r), nil
}
