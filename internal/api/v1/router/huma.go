package router

import (
	"net/http"
	"os"

	"attendance/internal/api/v1/handler"
	"attendance/internal/config"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// SetupHumaAPI creates a Huma API instance on its own chi router
func SetupHumaAPI(cfg *config.Config, logger zerolog.Logger) (*chi.Mux, huma.API) {
	chiRouter := chi.NewRouter()

	// Get version from environment or default to development
	version := os.Getenv("GIT_COMMIT_SHA")
	if version == "" {
		version = "development"
	}

	humaConfig := huma.DefaultConfig("Attendance Predictor API v1", version)
	humaConfig.Info.Description = "Course catalog lookups and attendance predictions"
	humaConfig.Servers = []*huma.Server{{URL: cfg.APIBaseURL}}

	api := humachi.New(chiRouter, humaConfig)

	logger.Info().Str("version", version).Msg("Huma API initialized for /v1")
	return chiRouter, api
}

// RegisterRoutes registers all Huma operations
func RegisterRoutes(
	api huma.API,
	healthHandler *handler.HealthHandler,
	courseHandler *handler.CourseHandler,
	predictionHandler *handler.PredictionHandler,
	logger zerolog.Logger,
) {
	// ========== HEALTH ==========
	huma.Register(api, huma.Operation{
		OperationID: "getHealth",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Service health",
		Description: "Reports whether a course catalog and a model are loaded",
		Tags:        []string{"health"},
	}, healthHandler.GetHealth)

	// ========== CATALOG OPERATIONS ==========
	huma.Register(api, huma.Operation{
		OperationID: "listYears",
		Method:      http.MethodGet,
		Path:        "/years",
		Summary:     "List academic years",
		Description: "Returns the distinct academic years in the catalog in ascending order",
		Tags:        []string{"catalog"},
	}, courseHandler.ListYears)

	huma.Register(api, huma.Operation{
		OperationID: "listCourses",
		Method:      http.MethodGet,
		Path:        "/years/{year}/courses",
		Summary:     "List courses for a year",
		Description: "Returns the distinct courses offered in a year, in catalog order",
		Tags:        []string{"catalog"},
	}, courseHandler.ListCourses)

	huma.Register(api, huma.Operation{
		OperationID: "getCourse",
		Method:      http.MethodGet,
		Path:        "/years/{year}/courses/{code}",
		Summary:     "Get a course",
		Description: "Retrieves a course by year and course code",
		Tags:        []string{"catalog"},
	}, courseHandler.GetCourse)

	// ========== PREDICTION OPERATIONS ==========
	huma.Register(api, huma.Operation{
		OperationID: "createPrediction",
		Method:      http.MethodPost,
		Path:        "/predictions",
		Summary:     "Predict attendance",
		Description: "Predicts the attendance percentage a student should plan for in a catalog course",
		Tags:        []string{"predictions"},
	}, predictionHandler.CreatePrediction)

	huma.Register(api, huma.Operation{
		OperationID: "getModel",
		Method:      http.MethodGet,
		Path:        "/model",
		Summary:     "Describe the model",
		Description: "Returns the kind, source and feature layout of the loaded model",
		Tags:        []string{"predictions"},
	}, predictionHandler.GetModel)

	logger.Info().Int("total_operations", len(api.OpenAPI().Paths)).Msg("All operations registered successfully")
}
