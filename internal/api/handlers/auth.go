package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/taskboard/backend/internal/api/httpx"
	"github.com/taskboard/backend/internal/middleware"
	"github.com/taskboard/backend/internal/services"
	"github.com/taskboard/backend/internal/session"
)

type AuthHandler struct {
	users    *services.UserService
	sessions *middleware.Sessions
}

func NewAuthHandler(users *services.UserService, sessions *middleware.Sessions) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions}
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	u, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	// New accounts are logged in immediately.
	if err := h.sessions.Issue(w, r, session.Identity{UserID: u.ID, Role: u.Role}); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, map[string]string{"message": "registered"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}
	u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.sessions.Issue(w, r, session.Identity{UserID: u.ID, Role: u.Role}); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w, r)
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Authenticated bool `json:"authenticated"`
		Role          any  `json:"role"`
	}{}
	if ident, ok := middleware.IdentityFrom(r.Context()); ok {
		resp.Authenticated = true
		resp.Role = ident.Role
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
