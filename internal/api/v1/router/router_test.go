package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"attendance/internal/api/v1/dto"
	"attendance/internal/config"
	"attendance/internal/features"
	"attendance/internal/model"
	"attendance/internal/predictor"
	"attendance/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type stubPredictor struct {
	out float64
	err error
}

func (s stubPredictor) Predict(context.Context, features.Vector) (float64, error) {
	return s.out, s.err
}

func (s stubPredictor) Info() predictor.Info {
	return predictor.Info{Kind: "artifact", Source: "test", EncodingVersion: features.EncodingVersion, Features: features.Names, Estimators: 2}
}

var testCourses = []model.CourseRecord{
	{Year: 1, Code: "CSC101", Title: "Introduction to Computer Science", Credits: 3, Status: model.StatusCore},
	{Year: 1, Code: "GNS101", Title: "Use of English", Credits: 2, Status: model.StatusRequired},
	{Year: 2, Code: "CSC201", Title: "Data Structures and Algorithms", Credits: 3, Status: model.StatusCore},
}

func newTestRouter(t *testing.T, p predictor.Predictor) http.Handler {
	t.Helper()
	cfg := &config.Config{
		Environment:        "test",
		APIBaseURL:         "http://localhost:8080/v1",
		CORSAllowedOrigins: []string{"*"},
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	catalog := service.NewCatalogService(testCourses, zerolog.Nop())
	predictions := service.NewPredictionService(p, validate, zerolog.Nop())
	h, err := New(cfg, catalog, predictions, validate, zerolog.Nop())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return h
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t, stubPredictor{out: 70}), http.MethodGet, "/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	health := decode[dto.HealthResponseDTO](t, rec)
	if health.Status != "ok" || health.Courses != 3 || health.Years != 2 || health.Model != "artifact" {
		t.Fatalf("unexpected health %+v", health)
	}

	rec = do(t, newTestRouter(t, nil), http.MethodGet, "/v1/health", nil)
	if health := decode[dto.HealthResponseDTO](t, rec); health.Status != "degraded" {
		t.Fatalf("expected degraded without a model, got %+v", health)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	h := newTestRouter(t, stubPredictor{out: 70})

	rec := do(t, h, http.MethodGet, "/v1/years", nil)
	years := decode[dto.YearListResponseDTO](t, rec)
	if rec.Code != http.StatusOK || len(years.Years) != 2 || years.Years[0] != 1 || years.Years[1] != 2 {
		t.Fatalf("unexpected years %d %+v", rec.Code, years)
	}

	rec = do(t, h, http.MethodGet, "/v1/years/1/courses", nil)
	list := decode[dto.CourseListResponseDTO](t, rec)
	if rec.Code != http.StatusOK || len(list.Courses) != 2 {
		t.Fatalf("unexpected courses %d %+v", rec.Code, list)
	}
	if list.Courses[0].Label != "CSC101 - Introduction to Computer Science" || list.Courses[1].Status != "Required" {
		t.Fatalf("unexpected course fields %+v", list.Courses)
	}

	rec = do(t, h, http.MethodGet, "/v1/years/7/courses", nil)
	if list := decode[dto.CourseListResponseDTO](t, rec); rec.Code != http.StatusOK || len(list.Courses) != 0 {
		t.Fatalf("expected empty list for unknown year, got %d %+v", rec.Code, list)
	}

	rec = do(t, h, http.MethodGet, "/v1/years/2/courses/CSC201", nil)
	course := decode[dto.CourseResponseDTO](t, rec)
	if rec.Code != http.StatusOK || course.Year != 2 || course.Code != "CSC201" || course.Credits != 3 {
		t.Fatalf("unexpected course %d %+v", rec.Code, course)
	}

	if rec := do(t, h, http.MethodGet, "/v1/years/1/courses/CS999", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/v1/years/0/courses", nil); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for year 0, got %d", rec.Code)
	}
}

func predictionBody(code string, grade int, mode string) map[string]any {
	return map[string]any{
		"year":                1,
		"course_code":         code,
		"materials_available": true,
		"desired_grade":       grade,
		"mode":                mode,
	}
}

func TestCreatePrediction(t *testing.T) {
	h := newTestRouter(t, stubPredictor{out: 115.4})
	rec := do(t, h, http.MethodPost, "/v1/predictions", predictionBody("CSC101", 70, "Physical"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[dto.PredictionResponseDTO](t, rec)
	if resp.AttendancePercent != 100.0 || resp.Tier != "High" || resp.Course.Code != "CSC101" {
		t.Fatalf("unexpected prediction %+v", resp)
	}
	if resp.Guidance != model.TierHigh.Guidance() {
		t.Fatalf("unexpected guidance %q", resp.Guidance)
	}
}

func TestCreatePredictionErrors(t *testing.T) {
	tests := []struct {
		name   string
		p      predictor.Predictor
		body   map[string]any
		status int
	}{
		{"grade below range", stubPredictor{out: 70}, predictionBody("CSC101", 30, "Physical"), http.StatusUnprocessableEntity},
		{"grade above range", stubPredictor{out: 70}, predictionBody("CSC101", 101, "Physical"), http.StatusUnprocessableEntity},
		{"unknown mode", stubPredictor{out: 70}, predictionBody("CSC101", 70, "Teleport"), http.StatusUnprocessableEntity},
		{"unknown course", stubPredictor{out: 70}, predictionBody("CS999", 70, "Online"), http.StatusNotFound},
		{"no model", nil, predictionBody("CSC101", 70, "Hybrid"), http.StatusServiceUnavailable},
		{"non-finite output", stubPredictor{err: predictor.ErrInvalidOutput}, predictionBody("CSC101", 70, "Hybrid"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestRouter(t, tt.p), http.MethodPost, "/v1/predictions", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestGetModel(t *testing.T) {
	rec := do(t, newTestRouter(t, stubPredictor{}), http.MethodGet, "/v1/model", nil)
	info := decode[dto.ModelResponseDTO](t, rec)
	if rec.Code != http.StatusOK || info.Kind != "artifact" || info.EncodingVersion != features.EncodingVersion || len(info.Features) != 6 {
		t.Fatalf("unexpected model info %d %+v", rec.Code, info)
	}

	if rec := do(t, newTestRouter(t, nil), http.MethodGet, "/v1/model", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a model, got %d", rec.Code)
	}
}

func TestOpenAPIAndForm(t *testing.T) {
	h := newTestRouter(t, stubPredictor{out: 70})

	rec := do(t, h, http.MethodGet, "/v1/openapi.json", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/predictions") {
		t.Fatalf("expected OpenAPI document, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "CSC101 - Introduction to Computer Science") {
		t.Fatalf("expected form page, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t, stubPredictor{out: 70})
	req := httptest.NewRequest(http.MethodOptions, "/v1/predictions", nil)
	req.Header.Set("Origin", "https://example.edu")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard CORS origin, got %q", got)
	}
}
