package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appI18n "github.com/pavelanni/examdesk/internal/i18n"
	"github.com/pavelanni/examdesk/internal/store"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 10 << 20

// Config controls the stub backend.
type Config struct {
	Shuffle        bool     // randomize quiz order when a session starts
	AllowedOrigins []string // CORS origins; empty allows any
	Lang           string   // fallback language for error messages
}

// Handler serves the exam backend API.
type Handler struct {
	store   *store.Store
	config  Config
	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
}

// New creates a new Handler.
func New(s *store.Store, cfg Config) (*Handler, error) {
	return &Handler{
		store:   s,
		config:  cfg,
		now:     time.Now,
		shuffle: rand.Shuffle,
	}, nil
}

// Router returns the full HTTP handler with the API mounted under /api.
func (h *Handler) Router() http.Handler {
	origins := h.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(appI18n.Middleware(h.config.Lang))
	r.Route("/api", h.Routes)
	return r
}

// Routes registers all API routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/getExamList", h.handleExamList)
	r.Post("/getExamListByKeyWord", h.handleExamListByKeyword)
	r.Post("/checkExamNm", h.handleCheckExamName)
	r.Post("/getExamByName", h.handleExamByName)
	r.Post("/addExam", h.handleAddExam)
	r.Post("/removeExam", h.handleRemoveExam)
	r.Post("/getExamModeQuizzes", h.handleExamModeQuizzes)
	r.Post("/commitAnsToRecord", h.handleCommit)
	r.Post("/getScoreById", h.handleScoreByID)
	r.Post("/getScoreByKeyword", h.handleScoreByKeyword)
	r.Post("/deleteRecordScore", h.handleDeleteRecord)
	r.Post("/getExamRecordById", h.handleRecordByID)
}

// readText returns the request body as a trimmed string.
func readText(r *http.Request) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	slog.Warn("bad request", "path", r.URL.Path, "error", err)
	http.Error(w, appI18n.T(r.Context(), "BadRequest"), http.StatusBadRequest)
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "path", r.URL.Path, "error", err)
	http.Error(w, appI18n.T(r.Context(), "InternalError"), http.StatusInternalServerError)
}
