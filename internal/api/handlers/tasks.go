package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskboard/backend/internal/api/httpx"
	"github.com/taskboard/backend/internal/middleware"
	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/internal/query"
	"github.com/taskboard/backend/internal/services"
	"github.com/taskboard/backend/internal/session"
	"github.com/taskboard/backend/internal/validate"
)

// TaskHandler serves both /tasks and /admin/tasks: the access policy scopes
// every repository call by the caller identity, so the admin routes differ
// only in the role gate applied by the router.
type TaskHandler struct {
	svc *services.TaskService
}

func NewTaskHandler(svc *services.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

func callerIdentity(r *http.Request) session.Identity {
	ident, _ := middleware.IdentityFrom(r.Context())
	return ident
}

func taskID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid id", nil)
		return "", false
	}
	return id, true
}

type pageResponse struct {
	Items []models.Task `json:"items"`
	query.PageInfo
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	params := query.Parse(r.URL.Query())
	list, err := h.svc.List(r.Context(), callerIdentity(r), params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if list.Page == nil {
		httpx.WriteJSON(w, http.StatusOK, list.Items)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, pageResponse{Items: list.Items, PageInfo: *list.Page})
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	t, err := h.svc.GetByID(r.Context(), callerIdentity(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in validate.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	t, err := h.svc.Create(r.Context(), callerIdentity(r), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"id": t.ID})
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var in validate.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	if err := h.svc.Update(r.Context(), callerIdentity(r), id, in); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "updated"})
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), callerIdentity(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
