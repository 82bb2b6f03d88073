package predictor

import (
	"context"
	"errors"
	"fmt"

	"attendance/internal/features"
)

// ErrInvalidOutput is returned when the model produces NaN or an infinity
var ErrInvalidOutput = errors.New("model returned a non-finite prediction")

// Predictor is the trained attendance model treated as an opaque function.
// Implementations are loaded once at startup and must be safe for
// concurrent use.
type Predictor interface {
	Predict(ctx context.Context, v features.Vector) (float64, error)
	Info() Info
}

// Info describes a loaded model
type Info struct {
	Kind            string   `json:"kind"`
	Source          string   `json:"source"`
	EncodingVersion string   `json:"encoding_version"`
	Features        []string `json:"features"`
	Estimators      int      `json:"estimators,omitempty"`
}

// ModelUnavailableError means the model could not be loaded or validated at
// startup. The process must not serve predictions after seeing one.
type ModelUnavailableError struct {
	Source string
	Err    error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model unavailable (%s): %v", e.Source, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error {
	return e.Err
}

func unavailable(source string, err error) error {
	return &ModelUnavailableError{Source: source, Err: err}
}

// checkSchema verifies a model was trained on this build's feature layout.
func checkSchema(names []string, encodingVersion string) error {
	if !features.SameOrder(names) {
		return fmt.Errorf("feature order %v does not match %v", names, features.Names)
	}
	if encodingVersion != features.EncodingVersion {
		return fmt.Errorf("model encoding version %q does not match %q", encodingVersion, features.EncodingVersion)
	}
	return nil
}
