package service

import (
	"errors"
	"fmt"
	"slices"

	"attendance/internal/model"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned for unknown years or courses, and for every lookup
// when no dataset was loaded
var ErrNotFound = errors.New("not found")

// CatalogService defines the read-only course lookups
type CatalogService interface {
	// ListYears returns the distinct academic years in ascending order
	ListYears() ([]int, error)
	// ListCourses returns the distinct courses of a year in dataset order
	ListCourses(year int) ([]model.CourseRecord, error)
	// GetCourse returns the first course in dataset order matching year and code
	GetCourse(year int, code string) (*model.CourseRecord, error)
	// Size is the number of distinct course records
	Size() int
}

type courseKey struct {
	year int
	code string
}

// catalogService is an immutable snapshot built once at startup
type catalogService struct {
	byYear map[int][]model.CourseRecord
	byKey  map[courseKey]model.CourseRecord
	years  []int
	size   int
}

// NewCatalogService indexes records. Exact duplicate rows are collapsed,
// keeping dataset order. A record that reuses a (year, code) pair with
// different attributes is kept for listing but never returned by GetCourse.
func NewCatalogService(records []model.CourseRecord, logger zerolog.Logger) CatalogService {
	logger = logger.With().Str("service", "CatalogService").Logger()
	c := &catalogService{
		byYear: make(map[int][]model.CourseRecord),
		byKey:  make(map[courseKey]model.CourseRecord),
	}
	if len(records) == 0 {
		logger.Warn().Msg("Catalog is empty, every lookup will return not found")
		return c
	}

	seen := make(map[model.CourseRecord]struct{}, len(records))
	conflicts := 0
	for _, r := range records {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		c.size++

		if _, ok := c.byYear[r.Year]; !ok {
			c.years = append(c.years, r.Year)
		}
		c.byYear[r.Year] = append(c.byYear[r.Year], r)

		key := courseKey{year: r.Year, code: r.Code}
		if first, ok := c.byKey[key]; ok {
			conflicts++
			logger.Warn().
				Int("year", r.Year).
				Str("code", r.Code).
				Str("kept_title", first.Title).
				Str("ignored_title", r.Title).
				Msg("Conflicting rows for course, keeping the first")
			continue
		}
		c.byKey[key] = r
	}
	slices.Sort(c.years)

	logger.Info().
		Int("courses", c.size).
		Int("years", len(c.years)).
		Int("conflicts", conflicts).
		Msg("Catalog loaded")
	return c
}

func (c *catalogService) loaded() bool {
	return c.size > 0
}

func (c *catalogService) ListYears() ([]int, error) {
	if !c.loaded() {
		return nil, fmt.Errorf("catalog: %w", ErrNotFound)
	}
	return slices.Clone(c.years), nil
}

func (c *catalogService) ListCourses(year int) ([]model.CourseRecord, error) {
	if !c.loaded() {
		return nil, fmt.Errorf("catalog: %w", ErrNotFound)
	}
	courses := c.byYear[year]
	if courses == nil {
		return []model.CourseRecord{}, nil
	}
	return slices.Clone(courses), nil
}

func (c *catalogService) GetCourse(year int, code string) (*model.CourseRecord, error) {
	course, ok := c.byKey[courseKey{year: year, code: code}]
	if !ok {
		return nil, fmt.Errorf("course %s in year %d: %w", code, year, ErrNotFound)
	}
	return &course, nil
}

func (c *catalogService) Size() int {
	return c.size
}
