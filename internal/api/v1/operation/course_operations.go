package operation

import "attendance/internal/api/v1/dto"

// Catalog Operations

type ListYearsInput struct{}

type ListYearsOutput struct {
	Body dto.YearListResponseDTO `json:"body"`
}

type ListCoursesInput struct {
	Year int `path:"year" minimum:"1" doc:"Academic year"`
}

type ListCoursesOutput struct {
	Body dto.CourseListResponseDTO `json:"body"`
}

type GetCourseInput struct {
	Year int    `path:"year" minimum:"1" doc:"Academic year"`
	Code string `path:"code" doc:"Course code"`
}

type GetCourseOutput struct {
	Body dto.CourseResponseDTO `json:"body"`
}
