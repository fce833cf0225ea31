package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskboard/backend/internal/api/httpx"
	repo "github.com/taskboard/backend/internal/repository"
	"github.com/taskboard/backend/internal/services"
)

// writeServiceError maps the service error taxonomy onto the HTTP status
// taxonomy. Unexpected store failures surface as a generic 500; the detail
// stays in the log.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteError(w, http.StatusBadRequest, "validation_error", "validation error", verr.Fields)
	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
	case errors.Is(err, repo.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "task not found", nil)
	case errors.Is(err, repo.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, "conflict", "user exists", nil)
	default:
		slog.Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "server error", nil)
	}
}
