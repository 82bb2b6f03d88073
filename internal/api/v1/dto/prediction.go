package dto

// PredictionCreateDTO is used for incoming prediction requests
type PredictionCreateDTO struct {
	Year               int    `json:"year" minimum:"1" doc:"Academic year of the course"`
	CourseCode         string `json:"course_code" minLength:"1" doc:"Course code within that year"`
	MaterialsAvailable bool   `json:"materials_available" doc:"Whether course materials are available"`
	DesiredGrade       int    `json:"desired_grade" minimum:"40" maximum:"100" doc:"Grade the student is aiming for"`
	Mode               string `json:"mode" enum:"Physical,Hybrid,Online" doc:"Delivery mode"`
}

// PredictionResponseDTO is returned for a successful prediction
type PredictionResponseDTO struct {
	AttendancePercent float64           `json:"attendance_percent" minimum:"10" maximum:"100" doc:"Suggested attendance, one decimal"`
	Tier              string            `json:"tier" enum:"High,Moderate,Low"`
	Guidance          string            `json:"guidance"`
	Course            CourseResponseDTO `json:"course"`
}
