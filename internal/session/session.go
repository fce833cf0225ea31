package session

import (
	"context"
	"errors"

	"github.com/taskboard/backend/internal/models"
)

// Identity is the resolved caller of a request. It is threaded explicitly
// through every policy and repository call; nothing reads it from globals.
type Identity struct {
	UserID string      `json:"userId"`
	Role   models.Role `json:"role"`
}

func (i Identity) IsAdmin() bool { return i.Role == models.RoleAdmin }

var ErrNoSession = errors.New("no session")

// Store maps opaque session tokens to identities with a TTL.
type Store interface {
	Establish(ctx context.Context, ident Identity) (string, error)
	Resolve(ctx context.Context, token string) (Identity, error)
	Revoke(ctx context.Context, token string) error
}
