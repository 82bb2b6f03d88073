package dto

import "attendance/internal/model"

// CourseResponseDTO is returned in API responses for courses
type CourseResponseDTO struct {
	Year    int    `json:"year" doc:"Academic year"`
	Code    string `json:"code" doc:"Course code"`
	Title   string `json:"title" doc:"Course title"`
	Credits int    `json:"credits" doc:"Credit units"`
	Status  string `json:"status" enum:"Core,Elective,Required" doc:"Requirement status"`
	Label   string `json:"label" doc:"Display label, \"{code} - {title}\""`
}

// CourseListResponseDTO lists the courses of one year
type CourseListResponseDTO struct {
	Courses []CourseResponseDTO `json:"courses"`
}

// YearListResponseDTO lists the academic years in the catalog
type YearListResponseDTO struct {
	Years []int `json:"years"`
}

// NewCourseResponse converts a catalog record.
func NewCourseResponse(c model.CourseRecord) CourseResponseDTO {
	return CourseResponseDTO{
		Year:    c.Year,
		Code:    c.Code,
		Title:   c.Title,
		Credits: c.Credits,
		Status:  string(c.Status),
		Label:   c.Label(),
	}
}
