package handler

import (
	"context"
	"errors"

	"attendance/internal/api/v1/dto"
	"attendance/internal/api/v1/operation"
	"attendance/internal/features"
	"attendance/internal/model"
	"attendance/internal/predictor"
	"attendance/internal/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"
)

// PredictionHandler serves attendance predictions and model metadata
type PredictionHandler struct {
	catalog     service.CatalogService
	predictions service.PredictionService
	logger      zerolog.Logger
}

// NewPredictionHandler creates a new PredictionHandler
func NewPredictionHandler(catalog service.CatalogService, predictions service.PredictionService, logger zerolog.Logger) *PredictionHandler {
	return &PredictionHandler{
		catalog:     catalog,
		predictions: predictions,
		logger:      logger,
	}
}

// CreatePrediction predicts attendance for a catalog course
func (h *PredictionHandler) CreatePrediction(ctx context.Context, input *operation.CreatePredictionInput) (*operation.CreatePredictionOutput, error) {
	course, err := h.catalog.GetCourse(input.Body.Year, input.Body.CourseCode)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, huma.Error404NotFound("Course not found")
		}
		return nil, huma.Error500InternalServerError("Failed to get course", err)
	}

	mode, err := model.ParseMode(input.Body.Mode)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("Invalid delivery mode", err)
	}

	req := model.NewPredictionRequest(*course, input.Body.MaterialsAvailable, input.Body.DesiredGrade, mode)
	result, err := h.predictions.PredictAttendance(ctx, req)
	if err != nil {
		return nil, h.predictionError(err)
	}

	return &operation.CreatePredictionOutput{
		Body: dto.PredictionResponseDTO{
			AttendancePercent: result.AttendancePercent,
			Tier:              string(result.Tier),
			Guidance:          result.Guidance,
			Course:            dto.NewCourseResponse(*course),
		},
	}, nil
}

func (h *PredictionHandler) predictionError(err error) error {
	var encErr *features.EncodingError
	var unavailable *predictor.ModelUnavailableError
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return huma.Error422UnprocessableEntity("Invalid prediction request", err)
	case errors.As(err, &unavailable):
		return huma.Error503ServiceUnavailable("Model is not available")
	case errors.As(err, &encErr):
		h.logger.Error().Err(err).Msg("Request passed validation but could not be encoded")
		return huma.Error500InternalServerError("Failed to encode request")
	}
	h.logger.Error().Err(err).Msg("Prediction failed")
	return huma.Error500InternalServerError("Prediction failed")
}

// GetModel describes the loaded model
func (h *PredictionHandler) GetModel(ctx context.Context, input *operation.GetModelInput) (*operation.GetModelOutput, error) {
	info, ok := h.predictions.ModelInfo()
	if !ok {
		return nil, huma.Error503ServiceUnavailable("Model is not available")
	}
	return &operation.GetModelOutput{
		Body: dto.ModelResponseDTO{
			Kind:            info.Kind,
			Source:          info.Source,
			EncodingVersion: info.EncodingVersion,
			Features:        info.Features,
			Estimators:      info.Estimators,
		},
	}, nil
}
