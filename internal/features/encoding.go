// Package features turns a prediction request into the numeric feature
// vector the attendance model was trained on.
//
// The lookup tables below are a contract with the training pipeline. The
// deployed model was fit on exactly these codes, so changing any of them
// requires retraining and bumping EncodingVersion. Model artifacts declare the
// encoding version they were trained with and are rejected at startup when it
// differs.
package features

import (
	"fmt"

	"attendance/internal/model"
)

// EncodingVersion identifies the categorical code tables in this file.
const EncodingVersion = "v1"

// Names is the column order the model expects.
var Names = []string{"Credits", "Status", "Materials", "Year", "Grade", "Mode"}

var statusCodes = map[model.Status]float64{
	model.StatusCore:     2,
	model.StatusElective: 1,
	model.StatusRequired: 0,
}

var modeCodes = map[model.Mode]float64{
	model.ModePhysical: 2,
	model.ModeHybrid:   1,
	model.ModeOnline:   0,
}

var materialsCodes = map[bool]float64{
	true:  1,
	false: 0,
}

// Vector is one encoded model input row.
type Vector struct {
	Credits   float64 `json:"credits"`
	Status    float64 `json:"status"`
	Materials float64 `json:"materials"`
	Year      float64 `json:"year"`
	Grade     float64 `json:"grade"`
	Mode      float64 `json:"mode"`
}

// Values returns the vector in Names order.
func (v Vector) Values() []float64 {
	return []float64{v.Credits, v.Status, v.Materials, v.Year, v.Grade, v.Mode}
}

// EncodingError reports a categorical value with no code in the tables.
// Requests built through validated input never produce one.
type EncodingError struct {
	Field string
	Value string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode %s value %q", e.Field, e.Value)
}

// Encode maps a request onto the model's feature vector.
func Encode(req model.PredictionRequest) (Vector, error) {
	status, ok := statusCodes[req.Status]
	if !ok {
		return Vector{}, &EncodingError{Field: "Status", Value: string(req.Status)}
	}
	mode, ok := modeCodes[req.Mode]
	if !ok {
		return Vector{}, &EncodingError{Field: "Mode", Value: string(req.Mode)}
	}
	return Vector{
		Credits:   float64(req.Credits),
		Status:    status,
		Materials: materialsCodes[req.MaterialsAvailable],
		Year:      float64(req.Year),
		Grade:     float64(req.DesiredGrade),
		Mode:      mode,
	}, nil
}

// SameOrder reports whether names lists the model columns in Names order.
func SameOrder(names []string) bool {
	if len(names) != len(Names) {
		return false
	}
	for i, n := range names {
		if n != Names[i] {
			return false
		}
	}
	return true
}
