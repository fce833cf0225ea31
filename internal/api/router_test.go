package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/backend/internal/auth"
	"github.com/taskboard/backend/internal/config"
	"github.com/taskboard/backend/internal/middleware"
	"github.com/taskboard/backend/internal/repository/memory"
	"github.com/taskboard/backend/internal/services"
	"github.com/taskboard/backend/internal/session"
	"github.com/taskboard/backend/internal/worker"
)

type env struct {
	srv   *httptest.Server
	users *services.UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	cfg := config.Config{
		Env:           "test",
		SessionSecret: "test-secret",
		SessionTTL:    time.Hour,
		RateRPS:       1000,
	}

	usersRepo := memory.NewUsers()
	tasksRepo := memory.NewTasks()
	auditRepo := memory.NewAuditLogs()

	wp := worker.NewPool(2)
	t.Cleanup(wp.Stop)

	store := session.NewMemoryStore(cfg.SessionTTL)
	codec := auth.NewCookieCodec(cfg.SessionSecret, cfg.SessionTTL)
	sessions := middleware.NewSessions(store, codec, cfg.SessionTTL, false)

	userSvc := services.NewUserService(usersRepo)
	taskSvc := services.NewTaskService(tasksRepo, auditRepo, wp)

	srv := httptest.NewServer(NewRouter(cfg, sessions, userSvc, taskSvc))
	t.Cleanup(srv.Close)

	return &env{srv: srv, users: userSvc}
}

// client returns an http client with its own cookie jar, one per user.
func (e *env) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func (e *env) do(t *testing.T, c *http.Client, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func (e *env) register(t *testing.T, c *http.Client, email, password string) {
	t.Helper()
	resp, _ := e.do(t, c, http.MethodPost, "/api/v1/auth/register",
		map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func (e *env) createTask(t *testing.T, c *http.Client, body map[string]string) string {
	t.Helper()
	resp, raw := e.do(t, c, http.MethodPost, "/api/v1/tasks/", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out.ID)
	return out.ID
}

func TestAuthFlow(t *testing.T) {
	e := newEnv(t)
	alice := e.client(t)

	// Anonymous callers are not authenticated but /auth/me never rejects.
	resp, raw := e.do(t, alice, http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"authenticated":false,"role":null}`, string(raw))

	// Register logs the new account in.
	e.register(t, alice, "alice@x.com", "secret1")
	resp, raw = e.do(t, alice, http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"authenticated":true,"role":"user"}`, string(raw))

	// Duplicate email conflicts.
	resp, _ = e.do(t, alice, http.MethodPost, "/api/v1/auth/register",
		map[string]string{"email": "Alice@X.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Logout revokes the session server-side.
	resp, _ = e.do(t, alice, http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.do(t, alice, http.MethodGet, "/api/v1/tasks/", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Wrong password and unknown email look identical.
	resp, _ = e.do(t, alice, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "alice@x.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = e.do(t, alice, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "nobody@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = e.do(t, alice, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "alice@x.com", "password": "secret1"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.do(t, alice, http.MethodGet, "/api/v1/tasks/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)
	c := e.client(t)

	resp, raw := e.do(t, c, http.MethodPost, "/api/v1/auth/register",
		map[string]string{"email": "not-an-email", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Code    string              `json:"code"`
		Details []map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "validation_error", body.Code)
	assert.Len(t, body.Details, 2)
}

func TestTaskOwnershipIsolation(t *testing.T) {
	e := newEnv(t)

	alice := e.client(t)
	e.register(t, alice, "alice@x.com", "secret1")
	bob := e.client(t)
	e.register(t, bob, "bob@x.com", "secret2")

	taskBody := map[string]string{"title": "Buy milk", "details": "2% milk", "status": "todo"}
	id := e.createTask(t, alice, taskBody)

	// Alice sees exactly her task.
	resp, raw := e.do(t, alice, http.MethodGet, "/api/v1/tasks/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tasks []map[string]any
	require.NoError(t, json.Unmarshal(raw, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0]["id"])
	assert.Equal(t, "Buy milk", tasks[0]["title"])

	// Bob sees none of it, by list or by id, read or write.
	resp, raw = e.do(t, bob, http.MethodGet, "/api/v1/tasks/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &tasks))
	assert.Empty(t, tasks)

	resp, _ = e.do(t, bob, http.MethodGet, "/api/v1/tasks/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = e.do(t, bob, http.MethodPut, "/api/v1/tasks/"+id, taskBody)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = e.do(t, bob, http.MethodDelete, "/api/v1/tasks/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// The task is untouched.
	resp, _ = e.do(t, alice, http.MethodGet, "/api/v1/tasks/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTaskEndpointsRejectBadInput(t *testing.T) {
	e := newEnv(t)
	alice := e.client(t)
	e.register(t, alice, "alice@x.com", "secret1")

	resp, _ := e.do(t, alice, http.MethodGet, "/api/v1/tasks/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, raw := e.do(t, alice, http.MethodPost, "/api/v1/tasks/",
		map[string]string{"title": "x", "details": "ok details", "status": "blocked"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "validation_error", body.Code)

	resp, _ = e.do(t, alice, http.MethodGet, "/api/v1/tasks/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminRoutes(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.users.EnsureAdmin(context.Background(), "admin@x.com", "admin-pass"))

	alice := e.client(t)
	e.register(t, alice, "alice@x.com", "secret1")
	id := e.createTask(t, alice, map[string]string{"title": "Buy milk", "details": "2% milk", "status": "todo"})

	admin := e.client(t)
	resp, _ := e.do(t, admin, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"email": "admin@x.com", "password": "admin-pass"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Admin listing is unscoped and sees alice's task.
	resp, raw := e.do(t, admin, http.MethodGet, "/api/v1/admin/tasks/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tasks []map[string]any
	require.NoError(t, json.Unmarshal(raw, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0]["id"])

	// Admin can mutate any task.
	resp, _ = e.do(t, admin, http.MethodPut, "/api/v1/admin/tasks/"+id,
		map[string]string{"title": "Buy oat milk", "details": "2% milk", "status": "done"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = e.do(t, alice, http.MethodGet, "/api/v1/tasks/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var task map[string]any
	require.NoError(t, json.Unmarshal(raw, &task))
	assert.Equal(t, "Buy oat milk", task["title"])
	assert.Equal(t, "done", task["status"])

	// Regular users hit the role gate, anonymous callers the session gate.
	resp, _ = e.do(t, alice, http.MethodGet, "/api/v1/admin/tasks/", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = e.do(t, e.client(t), http.MethodGet, "/api/v1/admin/tasks/", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = e.do(t, admin, http.MethodDelete, "/api/v1/admin/tasks/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = e.do(t, alice, http.MethodGet, "/api/v1/tasks/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListPaginationEnvelope(t *testing.T) {
	e := newEnv(t)
	alice := e.client(t)
	e.register(t, alice, "alice@x.com", "secret1")

	for i := 0; i < 25; i++ {
		e.createTask(t, alice, map[string]string{
			"title":   fmt.Sprintf("task %02d", i),
			"details": "some details",
			"status":  "todo",
		})
	}

	resp, raw := e.do(t, alice, http.MethodGet, "/api/v1/tasks/?page=3&limit=10", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page struct {
		Items      []map[string]any `json:"items"`
		Page       int              `json:"page"`
		Limit      int              `json:"limit"`
		Total      int              `json:"total"`
		TotalPages int              `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(raw, &page))
	assert.Len(t, page.Items, 5)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.TotalPages)

	// Without paging params the response stays a plain array.
	resp, raw = e.do(t, alice, http.MethodGet, "/api/v1/tasks/?title=task+07", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tasks []map[string]any
	require.NoError(t, json.Unmarshal(raw, &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "task 07", tasks[0]["title"])
}
