package operation

import "attendance/internal/api/v1/dto"

// Prediction Operations

type CreatePredictionInput struct {
	Body dto.PredictionCreateDTO `json:"body"`
}

type CreatePredictionOutput struct {
	Body dto.PredictionResponseDTO `json:"body"`
}

type GetModelInput struct{}

type GetModelOutput struct {
	Body dto.ModelResponseDTO `json:"body"`
}

// Health

type GetHealthInput struct{}

type GetHealthOutput struct {
	Body dto.HealthResponseDTO `json:"body"`
}
