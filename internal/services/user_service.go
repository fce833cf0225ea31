package services

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/taskboard/backend/internal/auth"
	"github.com/taskboard/backend/internal/metrics"
	"github.com/taskboard/backend/internal/models"
	repo "github.com/taskboard/backend/internal/repository"
	"github.com/taskboard/backend/internal/validate"
)

const minPasswordLen = 6

type UserService struct {
	r repo.Users
}

func NewUserService(r repo.Users) *UserService { return &UserService{r: r} }

func (s *UserService) Register(ctx context.Context, email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var errs validate.Errs
	if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, validate.ErrField{Field: "email", Msg: "must be a valid email"})
	}
	if len(password) < minPasswordLen {
		errs = append(errs, validate.ErrField{Field: "password", Msg: "must be at least 6 chars"})
	}
	if len(errs) > 0 {
		return models.User{}, validationErr(errs)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	return s.r.Create(ctx, email, hash, models.RoleUser)
}

// Login resolves credentials to a user. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.r.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			metrics.AuthFailuresTotal.Inc()
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		metrics.AuthFailuresTotal.Inc()
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// EnsureAdmin seeds the bootstrap admin account. Idempotent: skipped when the
// email already exists or when no credentials are configured.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		slog.Info("admin seed skipped, credentials not configured")
		return nil
	}
	if _, err := s.r.GetByEmail(ctx, email); err == nil {
		slog.Info("admin user exists", "email", email)
		return nil
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := s.r.Create(ctx, email, hash, models.RoleAdmin); err != nil {
		return err
	}
	slog.Info("admin user created", "email", email)
	return nil
}
