package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/muhammedsuhaib/raheel-be/internal/auth"
	"github.com/muhammedsuhaib/raheel-be/internal/models"
	"github.com/muhammedsuhaib/raheel-be/internal/services"
	"github.com/rs/zerolog/log"
)

// TaskHandler handles HTTP requests for task management. The owning user is
// always resolved from the bearer token; client-supplied owner fields are
// ignored.
type TaskHandler struct {
	service services.TaskServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider) *TaskHandler {
	return &TaskHandler{service: service}
}

// CreateTaskPayload defines the structure for task creation requests. Any
// userId in the body is deliberately absent here: ownership comes from the
// token.
type CreateTaskPayload struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
}

func (p CreateTaskPayload) validate() error {
	if err := validateTitle(p.Title); err != nil {
		return err
	}
	if err := validateDescription(p.Description); err != nil {
		return err
	}
	if p.Priority != "" && !p.Priority.Valid() {
		return errors.New("priority must be low, medium or high")
	}
	return nil
}

// List returns all of the caller's tasks, newest first.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid or missing auth token")
		return
	}

	tasks, err := h.service.ListByUser(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list tasks")
		respondError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	respondJSON(w, http.StatusOK, tasks)
}

// Create adds a new task owned by the caller.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid or missing auth token")
		return
	}

	var payload CreateTaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := payload.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.service.Create(userID, payload.Title, payload.Description, payload.Priority)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create task")
		respondError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// Get returns a single task. A task owned by another user yields the same
// 404 as a nonexistent one.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid or missing auth token")
		return
	}

	id := chi.URLParam(r, "id")
	task, err := h.service.GetByID(userID, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondError(w, http.StatusNotFound, "task not found")
			return
		}
		log.Error().Err(err).Str("task_id", id).Msg("Failed to get task")
		respondError(w, http.StatusInternalServerError, "failed to get task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// Update applies a partial update to a task.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid or missing auth token")
		return
	}

	var patch models.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if patch.Description != nil {
		if err := validateDescription(*patch.Description); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		respondError(w, http.StatusBadRequest, "priority must be low, medium or high")
		return
	}

	id := chi.URLParam(r, "id")
	task, err := h.service.Update(userID, id, patch)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondError(w, http.StatusNotFound, "task not found")
			return
		}
		log.Error().Err(err).Str("task_id", id).Msg("Failed to update task")
		respondError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// Delete removes a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "invalid or missing auth token")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(userID, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondError(w, http.StatusNotFound, "task not found")
			return
		}
		log.Error().Err(err).Str("task_id", id).Msg("Failed to delete task")
		respondError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
