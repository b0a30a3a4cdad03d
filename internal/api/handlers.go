// Package api exposes HTTP handlers for the exercise tracker.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"example.com/exercisetracker/internal/domain"
	"example.com/exercisetracker/internal/observability"
)

const readinessTimeout = 2 * time.Second

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	logger  *zap.Logger
}

// NewHandler builds a Handler. A nil logger discards output.
func NewHandler(service *domain.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/users", h.createUser)
	mux.HandleFunc("GET /api/users", h.listUsers)
	mux.HandleFunc("POST /api/users/{id}/exercises", h.createExercise)
	mux.HandleFunc("GET /api/users/{id}/logs", h.exerciseLog)
	mux.HandleFunc("GET /healthz", healthz)
	mux.HandleFunc("GET /readyz", h.readyz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	if err := h.service.Ping(ctx); err != nil {
		h.logger.Warn("store not ready", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Store unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.CreateUser(r.Context(), fields.Get("username"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	observability.RecordUserCreated()

	writeJSON(w, http.StatusOK, toUserView(*user))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	views := make([]UserView, 0, len(users))
	for _, user := range users {
		views = append(views, toUserView(user))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) createExercise(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	logged, err := h.service.LogExercise(r.Context(), domain.LogExerciseInput{
		UserID:      r.PathValue("id"),
		Description: fields.Get("description"),
		Duration:    fields.Get("duration"),
		Date:        fields.Get("date"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	observability.RecordExerciseLogged(logged.Exercise.CreatedAt)

	exercise := logged.Exercise
	writeJSON(w, http.StatusOK, ExerciseResponse{
		Username:    logged.User.Username,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        exercise.FormattedDate(),
		ID:          logged.User.ID,
		ExerciseID:  exercise.ID,
	})
}

func (h *Handler) exerciseLog(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	params := r.URL.Query()
	query := domain.NewLogQuery(userID, params.Get("from"), params.Get("to"), params.Get("limit"))

	exercises, err := h.service.ExerciseLog(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	entries := make([]LogEntry, 0, len(exercises))
	for _, exercise := range exercises {
		entries = append(entries, LogEntry{
			Description: exercise.Description,
			Duration:    exercise.Duration,
			Date:        exercise.FormattedDate(),
		})
	}
	writeJSON(w, http.StatusOK, LogResponse{
		ID:    userID,
		Count: len(entries),
		Log:   entries,
	})
}

// fail maps domain errors onto status codes. Everything except an unknown user,
// including a duration that cannot be coerced, is logged and reported as a
// generic server error.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

// UserView is the public shape of a user.
type UserView struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

// ExerciseResponse describes the response body for exercise creation.
// ID is the owning user's id; ExerciseID identifies the stored exercise.
type ExerciseResponse struct {
	Username    string  `json:"username"`
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Date        string  `json:"date"`
	ID          string  `json:"id"`
	ExerciseID  string  `json:"exerciseId"`
}

// LogEntry is one exercise in a log response.
type LogEntry struct {
	Description string  `json:"description"`
	Duration    float64 `json:"duration"`
	Date        string  `json:"date"`
}

// LogResponse packages log results.
type LogResponse struct {
	ID    string     `json:"id"`
	Count int        `json:"count"`
	Log   []LogEntry `json:"log"`
}

func toUserView(user domain.User) UserView {
	return UserView{Username: user.Username, ID: user.ID}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
