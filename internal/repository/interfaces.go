package repository

import (
	"context"
	"errors"

	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/internal/query"
	"github.com/taskboard/backend/internal/session"
)

var (
	// ErrNotFound covers both a missing id and a scope-excluded record; the
	// two are deliberately indistinguishable to callers.
	ErrNotFound = errors.New("not found")
	// ErrConflict is a unique-key violation (duplicate email).
	ErrConflict = errors.New("conflict")
)

type Users interface {
	Create(ctx context.Context, email, passwordHash string, role models.Role) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

// TaskList is either a plain sequence (Page == nil) or a pagination envelope.
type TaskList struct {
	Items []models.Task   `json:"items"`
	Page  *query.PageInfo `json:"page,omitempty"`
}

// Tasks enforces the access policy on every call: reads and mutations carry
// the caller identity, and the ownership check is part of the store predicate
// itself rather than a separate read.
type Tasks interface {
	Create(ctx context.Context, ident session.Identity, data models.TaskData) (models.Task, error)
	GetByID(ctx context.Context, ident session.Identity, id string) (models.Task, error)
	List(ctx context.Context, ident session.Identity, params query.Params) (TaskList, error)
	Update(ctx context.Context, ident session.Identity, id string, data models.TaskData) error
	Delete(ctx context.Context, ident session.Identity, id string) error
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
