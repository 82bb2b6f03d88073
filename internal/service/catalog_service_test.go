package service

import (
	"context"
	"errors"
	"testing"

	"attendance/internal/config"
	"attendance/internal/model"
	"attendance/internal/storage"

	"github.com/rs/zerolog"
)

var testCourses = []model.CourseRecord{
	{Year: 2, Code: "CSC201", Title: "Data Structures", Credits: 3, Status: model.StatusCore},
	{Year: 1, Code: "CSC101", Title: "Intro to CS", Credits: 3, Status: model.StatusCore},
	{Year: 1, Code: "CSC101", Title: "Intro to CS", Credits: 3, Status: model.StatusCore},
	{Year: 1, Code: "GNS101", Title: "Use of English", Credits: 2, Status: model.StatusRequired},
	{Year: 1, Code: "CSC101", Title: "Intro to Computing", Credits: 2, Status: model.StatusElective},
	{Year: 4, Code: "CSC407", Title: "Cloud Computing", Credits: 2, Status: model.StatusElective},
}

func TestCatalogListYears(t *testing.T) {
	c := NewCatalogService(testCourses, zerolog.Nop())
	years, err := c.ListYears()
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 2, 4}
	if len(years) != len(want) {
		t.Fatalf("expected %v, got %v", want, years)
	}
	for i := range want {
		if years[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, years)
		}
	}
}

func TestCatalogListCourses(t *testing.T) {
	c := NewCatalogService(testCourses, zerolog.Nop())

	courses, err := c.ListCourses(1)
	if err != nil {
		t.Fatal(err)
	}
	// exact duplicate collapsed, conflicting duplicate kept as a distinct tuple
	if len(courses) != 3 {
		t.Fatalf("expected 3 distinct courses, got %d: %+v", len(courses), courses)
	}
	if courses[0].Code != "CSC101" || courses[1].Code != "GNS101" || courses[2].Title != "Intro to Computing" {
		t.Fatalf("courses not in dataset order: %+v", courses)
	}

	none, err := c.ListCourses(3)
	if err != nil {
		t.Fatal(err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty slice for year without courses, got %#v", none)
	}
	if c.Size() != 5 {
		t.Fatalf("expected size 5, got %d", c.Size())
	}
}

func TestCatalogListCoursesReturnsCopy(t *testing.T) {
	c := NewCatalogService(testCourses, zerolog.Nop())
	courses, _ := c.ListCourses(1)
	courses[0].Title = "changed"
	again, _ := c.ListCourses(1)
	if again[0].Title != "Intro to CS" {
		t.Fatal("catalog snapshot was mutated through a returned slice")
	}
}

func TestCatalogGetCourse(t *testing.T) {
	c := NewCatalogService(testCourses, zerolog.Nop())

	tests := []struct {
		name    string
		year    int
		code    string
		title   string
		wantErr error
	}{
		{"first match wins", 1, "CSC101", "Intro to CS", nil},
		{"other year", 2, "CSC201", "Data Structures", nil},
		{"unknown code", 1, "CS999", "", ErrNotFound},
		{"code in another year", 2, "CSC101", "", ErrNotFound},
		{"unknown year", 9, "CSC101", "", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.GetCourse(tt.year, tt.code)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Year != tt.year || got.Code != tt.code || got.Title != tt.title {
				t.Fatalf("unexpected course %+v", got)
			}
		})
	}
}

func TestCatalogNotLoaded(t *testing.T) {
	c := NewCatalogService(nil, zerolog.Nop())
	if _, err := c.ListYears(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ListYears: expected ErrNotFound, got %v", err)
	}
	if _, err := c.ListCourses(1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ListCourses: expected ErrNotFound, got %v", err)
	}
	if _, err := c.GetCourse(1, "CSC101"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetCourse: expected ErrNotFound, got %v", err)
	}
}

type fakeCourseRepo struct {
	courses []model.CourseRecord
	err     error
}

func (f *fakeCourseRepo) ListCourses(context.Context) ([]model.CourseRecord, error) {
	return f.courses, f.err
}

func (f *fakeCourseRepo) UpsertCourses(_ context.Context, courses []model.CourseRecord) (int, error) {
	f.courses = append(f.courses, courses...)
	return len(courses), f.err
}

func TestLoadCatalogFromFile(t *testing.T) {
	cfg := &config.Config{CatalogSource: config.SourceFile, CatalogPath: "catalog.csv"}
	store := storage.NewFileStore("testdata")

	records, err := LoadCatalog(context.Background(), cfg, store, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(records))
	}
	if records[0].Code != "CSC101" || records[0].Status != model.StatusCore {
		t.Fatalf("unexpected first record %+v", records[0])
	}
}

func TestLoadCatalogFromPostgres(t *testing.T) {
	cfg := &config.Config{CatalogSource: config.SourcePostgres}
	repo := &fakeCourseRepo{courses: testCourses[:2]}

	records, err := LoadCatalog(context.Background(), cfg, nil, repo, zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(records))
	}

	repo.err = errors.New("connection refused")
	if _, err := LoadCatalog(context.Background(), cfg, nil, repo, zerolog.Nop()); err == nil {
		t.Fatal("expected repository error to propagate")
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	store := storage.NewFileStore("testdata")
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"missing file", &config.Config{CatalogSource: config.SourceFile, CatalogPath: "nope.csv"}},
		{"unsupported extension", &config.Config{CatalogSource: config.SourceFile, CatalogPath: "catalog.json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadCatalog(context.Background(), tt.cfg, store, nil, zerolog.Nop()); err == nil {
				t.Fatal("expected an error")
			}
		})
	}

	cfg := &config.Config{CatalogSource: config.SourceFile, CatalogPath: "catalog.csv"}
	if _, err := LoadCatalog(context.Background(), cfg, nil, nil, zerolog.Nop()); err == nil {
		t.Fatal("expected an error without a store")
	}
}
