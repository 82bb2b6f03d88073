package model

import (
	"fmt"
	"strings"
)

// Mode is how a course is delivered
type Mode string

const (
	ModePhysical Mode = "Physical"
	ModeHybrid   Mode = "Hybrid"
	ModeOnline   Mode = "Online"
)

// ParseMode matches a delivery mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "physical":
		return ModePhysical, nil
	case "hybrid":
		return ModeHybrid, nil
	case "online":
		return ModeOnline, nil
	}
	return "", fmt.Errorf("unknown delivery mode %q", s)
}

// ParseMaterials reads the Yes/No answer to "are course materials available".
func ParseMaterials(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true":
		return true, nil
	case "no", "false":
		return false, nil
	}
	return false, fmt.Errorf("unknown materials answer %q", s)
}

// PredictionRequest holds everything the model needs for one prediction.
// It is built fresh for every submission and never stored.
type PredictionRequest struct {
	Credits            int    `validate:"gt=0"`
	Status             Status `validate:"required"`
	MaterialsAvailable bool
	Year               int  `validate:"gte=1"`
	DesiredGrade       int  `validate:"gte=40,lte=100"`
	Mode               Mode `validate:"required"`
}

// NewPredictionRequest combines a catalog record with the student's choices.
func NewPredictionRequest(course CourseRecord, materialsAvailable bool, desiredGrade int, mode Mode) PredictionRequest {
	return PredictionRequest{
		Credits:            course.Credits,
		Status:             course.Status,
		MaterialsAvailable: materialsAvailable,
		Year:               course.Year,
		DesiredGrade:       desiredGrade,
		Mode:               mode,
	}
}

// Tier is a coarse attendance band used to pick guidance wording
type Tier string

const (
	TierHigh     Tier = "High"
	TierModerate Tier = "Moderate"
	TierLow      Tier = "Low"
)

// Guidance returns the advice shown next to a prediction in this tier.
func (t Tier) Guidance() string {
	switch t {
	case TierHigh:
		return "This course requires high attendance. Make sure to attend regularly and participate actively!"
	case TierModerate:
		return "Moderate attendance is recommended. Balance your time between classes and self-study."
	default:
		return "Lower attendance is predicted, but make sure to compensate with thorough self-study."
	}
}

// PredictionResult is the normalized model output for one request
type PredictionResult struct {
	AttendancePercent float64 `json:"attendance_percent"`
	Tier              Tier    `json:"tier"`
	Guidance          string  `json:"guidance"`
}
