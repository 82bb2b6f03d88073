// Package web serves the HTML prediction form.
package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	"attendance/internal/model"
	"attendance/internal/predictor"
	"attendance/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

// Form defaults for a fresh page
const (
	defaultMaterials = "Yes"
	defaultGrade     = 70
	defaultMode      = string(model.ModePhysical)
)

var (
	materialsOptions = []string{"Yes", "No"}
	modeOptions      = []string{string(model.ModePhysical), string(model.ModeHybrid), string(model.ModeOnline)}
)

// predictionForm is the submitted form, also used to re-fill it
type predictionForm struct {
	Year         int    `validate:"gte=1"`
	CourseCode   string `validate:"required"`
	Materials    string `validate:"oneof=Yes No"`
	DesiredGrade int    `validate:"gte=40,lte=100"`
	Mode         string `validate:"oneof=Physical Hybrid Online"`
}

type pageData struct {
	Title            string
	Years            []int
	Courses          []model.CourseRecord
	Form             predictionForm
	MaterialsOptions []string
	Modes            []string
	Course           *model.CourseRecord
	Result           *model.PredictionResult
	Error            string
	Home             bool
}

// Handler renders the predictor form and the about page
type Handler struct {
	catalog     service.CatalogService
	predictions service.PredictionService
	validate    *validator.Validate
	tmpl        *template.Template
	logger      zerolog.Logger
}

// NewHandler parses the embedded templates.
func NewHandler(catalog service.CatalogService, predictions service.PredictionService, validate *validator.Validate, logger zerolog.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Handler{
		catalog:     catalog,
		predictions: predictions,
		validate:    validate,
		tmpl:        tmpl,
		logger:      logger.With().Str("handler", "web").Logger(),
	}, nil
}

// RegisterRoutes mounts the form pages
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.showForm)
	r.Post("/", h.submitForm)
	r.Get("/about", h.about)
}

func (h *Handler) showForm(w http.ResponseWriter, r *http.Request) {
	data := h.newPage()
	data.Home = true
	years, err := h.catalog.ListYears()
	if err != nil {
		data.Error = "No course catalog is loaded."
		h.render(w, http.StatusServiceUnavailable, "index", data)
		return
	}
	data.Years = years
	data.Form.Year = years[0]

	if q := r.URL.Query().Get("year"); q != "" {
		year, err := strconv.Atoi(q)
		if err != nil || year < 1 {
			data.Error = "Year must be a positive whole number."
			h.render(w, http.StatusBadRequest, "index", data)
			return
		}
		data.Form.Year = year
	}

	if !h.loadCourses(&data) {
		h.render(w, http.StatusInternalServerError, "index", data)
		return
	}
	if len(data.Courses) == 0 {
		h.render(w, http.StatusOK, "index", data)
		return
	}
	data.Form.CourseCode = data.Courses[0].Code
	if code := r.URL.Query().Get("code"); code != "" {
		data.Form.CourseCode = code
	}

	course, err := h.catalog.GetCourse(data.Form.Year, data.Form.CourseCode)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			data.Error = "That course is not offered in the selected year."
			h.render(w, http.StatusNotFound, "index", data)
			return
		}
		h.logger.Error().Err(err).Msg("Failed to get course")
		data.Error = "Something went wrong looking up the course."
		h.render(w, http.StatusInternalServerError, "index", data)
		return
	}
	data.Course = course
	h.render(w, http.StatusOK, "index", data)
}

func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request) {
	data := h.newPage()
	if err := r.ParseForm(); err != nil {
		data.Error = "Could not read the submitted form."
		h.render(w, http.StatusBadRequest, "index", data)
		return
	}
	years, err := h.catalog.ListYears()
	if err != nil {
		data.Error = "No course catalog is loaded."
		h.render(w, http.StatusServiceUnavailable, "index", data)
		return
	}
	data.Years = years

	form, status, msg := h.parseForm(r)
	data.Form = form
	if !h.loadCourses(&data) {
		h.render(w, http.StatusInternalServerError, "index", data)
		return
	}
	if msg != "" {
		data.Error = msg
		h.render(w, status, "index", data)
		return
	}

	course, err := h.catalog.GetCourse(form.Year, form.CourseCode)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			data.Error = "That course is not offered in the selected year."
			h.render(w, http.StatusNotFound, "index", data)
			return
		}
		h.logger.Error().Err(err).Msg("Failed to get course")
		data.Error = "Something went wrong looking up the course."
		h.render(w, http.StatusInternalServerError, "index", data)
		return
	}
	data.Course = course

	materials, _ := model.ParseMaterials(form.Materials)
	mode, _ := model.ParseMode(form.Mode)
	req := model.NewPredictionRequest(*course, materials, form.DesiredGrade, mode)

	result, err := h.predictions.PredictAttendance(r.Context(), req)
	if err != nil {
		var unavailable *predictor.ModelUnavailableError
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			data.Error = "Please check the values you entered."
			h.render(w, http.StatusUnprocessableEntity, "index", data)
		case errors.As(err, &unavailable):
			data.Error = "The prediction model is not available right now."
			h.render(w, http.StatusServiceUnavailable, "index", data)
		default:
			h.logger.Error().Err(err).Msg("Prediction failed")
			data.Error = "Something went wrong making the prediction."
			h.render(w, http.StatusInternalServerError, "index", data)
		}
		return
	}
	data.Result = result
	h.render(w, http.StatusOK, "index", data)
}

// parseForm returns the form as submitted, plus a status and user-facing
// message when it is invalid.
func (h *Handler) parseForm(r *http.Request) (predictionForm, int, string) {
	form := predictionForm{
		CourseCode: r.PostForm.Get("course_code"),
		Materials:  r.PostForm.Get("materials"),
		Mode:       r.PostForm.Get("mode"),
	}
	year, yearErr := strconv.Atoi(r.PostForm.Get("year"))
	grade, gradeErr := strconv.Atoi(r.PostForm.Get("desired_grade"))
	form.Year = year
	form.DesiredGrade = grade

	if yearErr != nil {
		return form, http.StatusBadRequest, "Year must be a whole number."
	}
	if gradeErr != nil {
		return form, http.StatusBadRequest, "Desired grade must be a whole number."
	}
	if err := h.validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Field() == "DesiredGrade" {
			return form, http.StatusUnprocessableEntity, "Desired grade must be between 40 and 100."
		}
		return form, http.StatusUnprocessableEntity, "Please choose a value for every field."
	}
	return form, 0, ""
}

func (h *Handler) loadCourses(data *pageData) bool {
	courses, err := h.catalog.ListCourses(data.Form.Year)
	if err != nil {
		h.logger.Error().Err(err).Int("year", data.Form.Year).Msg("Failed to list courses")
		data.Error = "Could not load the course list."
		return false
	}
	data.Courses = courses
	return true
}

func (h *Handler) about(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "about", pageData{Title: "About"})
}

func (h *Handler) newPage() pageData {
	return pageData{
		Title: "Predict Attendance",
		Form: predictionForm{
			Materials:    defaultMaterials,
			DesiredGrade: defaultGrade,
			Mode:         defaultMode,
		},
		MaterialsOptions: materialsOptions,
		Modes:            modeOptions,
	}
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error().Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to write page")
	}
}
