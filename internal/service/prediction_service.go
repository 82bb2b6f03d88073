package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"attendance/internal/features"
	"attendance/internal/model"
	"attendance/internal/predictor"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Attendance percentages are reported within these bounds
const (
	MinAttendance = 10.0
	MaxAttendance = 100.0
)

// Tier thresholds on the normalized percentage
const (
	HighThreshold     = 80.0
	ModerateThreshold = 60.0
)

// ErrInvalidRequest wraps validation failures on a prediction request
var ErrInvalidRequest = errors.New("invalid prediction request")

// PredictionService defines the attendance prediction pipeline
type PredictionService interface {
	// Validate checks field ranges and required values
	Validate(req model.PredictionRequest) error
	// Encode maps the request onto the model's feature vector
	Encode(req model.PredictionRequest) (features.Vector, error)
	// Predict returns the raw model output for one vector
	Predict(ctx context.Context, v features.Vector) (float64, error)
	// PredictAttendance runs the whole pipeline
	PredictAttendance(ctx context.Context, req model.PredictionRequest) (*model.PredictionResult, error)
	// ModelInfo describes the loaded model, false when none is loaded
	ModelInfo() (predictor.Info, bool)
}

type predictionService struct {
	predictor predictor.Predictor
	validate  *validator.Validate
	logger    zerolog.Logger
}

// NewPredictionService creates a PredictionService. p may be nil, in which
// case every prediction fails with a *predictor.ModelUnavailableError.
func NewPredictionService(p predictor.Predictor, validate *validator.Validate, logger zerolog.Logger) PredictionService {
	return &predictionService{
		predictor: p,
		validate:  validate,
		logger:    logger.With().Str("service", "PredictionService").Logger(),
	}
}

func (s *predictionService) Validate(req model.PredictionRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

func (s *predictionService) Encode(req model.PredictionRequest) (features.Vector, error) {
	return features.Encode(req)
}

func (s *predictionService) Predict(ctx context.Context, v features.Vector) (float64, error) {
	if s.predictor == nil {
		return 0, &predictor.ModelUnavailableError{Source: "none", Err: errors.New("no model loaded")}
	}
	return s.predictor.Predict(ctx, v)
}

func (s *predictionService) PredictAttendance(ctx context.Context, req model.PredictionRequest) (*model.PredictionResult, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}
	v, err := s.Encode(req)
	if err != nil {
		s.logger.Error().Err(err).Msg("Validated request could not be encoded")
		return nil, err
	}
	raw, err := s.Predict(ctx, v)
	if err != nil {
		return nil, err
	}

	percent := Normalize(raw)
	tier := Classify(percent)
	s.logger.Debug().
		Floats64("features", v.Values()).
		Float64("raw", raw).
		Float64("percent", percent).
		Str("tier", string(tier)).
		Msg("Prediction made")

	return &model.PredictionResult{
		AttendancePercent: percent,
		Tier:              tier,
		Guidance:          tier.Guidance(),
	}, nil
}

func (s *predictionService) ModelInfo() (predictor.Info, bool) {
	if s.predictor == nil {
		return predictor.Info{}, false
	}
	return s.predictor.Info(), true
}

// Normalize rounds raw to one decimal, then clamps it to
// [MinAttendance, MaxAttendance]. Rounding works on the exact binary value
// with ties to even, so 72.25 becomes 72.2 and 10.35 (stored just below)
// becomes 10.3.
func Normalize(raw float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(raw, 'f', 1, 64), 64)
	if err != nil {
		rounded = raw
	}
	return min(max(rounded, MinAttendance), MaxAttendance)
}

// Classify maps a normalized percentage to its tier.
func Classify(percent float64) model.Tier {
	switch {
	case percent >= HighThreshold:
		return model.TierHigh
	case percent >= ModerateThreshold:
		return model.TierModerate
	default:
		return model.TierLow
	}
}
