package handler

import (
	"context"
	"errors"

	"attendance/internal/api/v1/dto"
	"attendance/internal/api/v1/operation"
	"attendance/internal/service"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog"
)

// CourseHandler serves catalog lookups
type CourseHandler struct {
	catalog service.CatalogService
	logger  zerolog.Logger
}

// NewCourseHandler creates a new CourseHandler
func NewCourseHandler(catalog service.CatalogService, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ListYears returns the academic years in the catalog
func (h *CourseHandler) ListYears(ctx context.Context, input *operation.ListYearsInput) (*operation.ListYearsOutput, error) {
	years, err := h.catalog.ListYears()
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, huma.Error404NotFound("No course catalog is loaded")
		}
		return nil, huma.Error500InternalServerError("Failed to list years", err)
	}
	return &operation.ListYearsOutput{Body: dto.YearListResponseDTO{Years: years}}, nil
}

// ListCourses returns the courses of a year
func (h *CourseHandler) ListCourses(ctx context.Context, input *operation.ListCoursesInput) (*operation.ListCoursesOutput, error) {
	courses, err := h.catalog.ListCourses(input.Year)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, huma.Error404NotFound("No course catalog is loaded")
		}
		return nil, huma.Error500InternalServerError("Failed to list courses", err)
	}

	dtos := make([]dto.CourseResponseDTO, 0, len(courses))
	for _, c := range courses {
		dtos = append(dtos, dto.NewCourseResponse(c))
	}
	return &operation.ListCoursesOutput{Body: dto.CourseListResponseDTO{Courses: dtos}}, nil
}

// GetCourse returns one course by year and code
func (h *CourseHandler) GetCourse(ctx context.Context, input *operation.GetCourseInput) (*operation.GetCourseOutput, error) {
	course, err := h.catalog.GetCourse(input.Year, input.Code)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return nil, huma.Error404NotFound("Course not found")
		}
		return nil, huma.Error500InternalServerError("Failed to get course", err)
	}
	return &operation.GetCourseOutput{Body: dto.NewCourseResponse(*course)}, nil
}
