package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/taskboard/backend/internal/api/httpx"
	"github.com/taskboard/backend/internal/auth"
	"github.com/taskboard/backend/internal/metrics"
	"github.com/taskboard/backend/internal/models"
	"github.com/taskboard/backend/internal/session"
)

const CookieName = "sid"

type identityKey struct{}

func IdentityFrom(ctx context.Context) (session.Identity, bool) {
	ident, ok := ctx.Value(identityKey{}).(session.Identity)
	return ident, ok
}

// Sessions resolves the session cookie to a caller identity and owns the
// cookie lifecycle for login/logout.
type Sessions struct {
	Store  session.Store
	Codec  *auth.CookieCodec
	TTL    time.Duration
	Secure bool // HTTPS-only cookie in prod
}

func NewSessions(store session.Store, codec *auth.CookieCodec, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{Store: store, Codec: codec, TTL: ttl, Secure: secure}
}

func (s *Sessions) resolve(r *http.Request) (session.Identity, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return session.Identity{}, false
	}
	sid, err := s.Codec.Open(c.Value)
	if err != nil {
		return session.Identity{}, false
	}
	ident, err := s.Store.Resolve(r.Context(), sid)
	if err != nil {
		return session.Identity{}, false
	}
	return ident, true
}

// Identify attaches the identity to the context when a valid session exists,
// but never rejects. Used by endpoints like /auth/me.
func (s *Sessions) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ident, ok := s.resolve(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), identityKey{}, ident))
		}
		next.ServeHTTP(w, r)
	})
}

// Require rejects anonymous callers with 401 before any handler runs.
func (s *Sessions) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := s.resolve(r)
		if !ok {
			metrics.AuthFailuresTotal.Inc()
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized", nil)
			return
		}
		ctx := context.WithValue(r.Context(), identityKey{}, ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Issue establishes a server-side session and sets the sealed cookie.
func (s *Sessions) Issue(w http.ResponseWriter, r *http.Request, ident session.Identity) error {
	sid, err := s.Store.Establish(r.Context(), ident)
	if err != nil {
		return err
	}
	value, err := s.Codec.Seal(sid)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.TTL.Seconds()),
	})
	return nil
}

// Clear revokes the current session (if any) and expires the cookie.
func (s *Sessions) Clear(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		if sid, err := s.Codec.Open(c.Value); err == nil {
			_ = s.Store.Revoke(r.Context(), sid)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// RequireRole allows only authenticated callers with the given role.
func RequireRole(need models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := IdentityFrom(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized", nil)
				return
			}
			if ident.Role != need {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
