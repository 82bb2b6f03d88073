package handler

import (
	"context"

	"attendance/internal/api/v1/dto"
	"attendance/internal/api/v1/operation"
	"attendance/internal/service"
)

// HealthHandler reports service readiness
type HealthHandler struct {
	catalog     service.CatalogService
	predictions service.PredictionService
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(catalog service.CatalogService, predictions service.PredictionService) *HealthHandler {
	return &HealthHandler{catalog: catalog, predictions: predictions}
}

// GetHealth is "ok" when both a catalog and a model are loaded
func (h *HealthHandler) GetHealth(ctx context.Context, input *operation.GetHealthInput) (*operation.GetHealthOutput, error) {
	resp := dto.HealthResponseDTO{Status: "ok", Courses: h.catalog.Size()}
	if years, err := h.catalog.ListYears(); err == nil {
		resp.Years = len(years)
	}
	if info, ok := h.predictions.ModelInfo(); ok {
		resp.Model = info.Kind
	}
	if resp.Courses == 0 || resp.Model == "" {
		resp.Status = "degraded"
	}
	return &operation.GetHealthOutput{Body: resp}, nil
}
