package dto

// HealthResponseDTO reports whether the service can answer predictions
type HealthResponseDTO struct {
	Status  string `json:"status" enum:"ok,degraded"`
	Courses int    `json:"courses"`
	Years   int    `json:"years"`
	Model   string `json:"model" doc:"Loaded model kind, empty when none"`
}

// ModelResponseDTO describes the loaded model
type ModelResponseDTO struct {
	Kind            string   `json:"kind" enum:"artifact,remote"`
	Source          string   `json:"source"`
	EncodingVersion string   `json:"encoding_version"`
	Features        []string `json:"features"`
	Estimators      int      `json:"estimators,omitempty"`
}
