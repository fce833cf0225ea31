package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieCodec seals the opaque session id into the cookie value with HS256,
// so a tampered cookie fails before the session store is consulted. The
// identity itself never lives in the cookie; revoking the session server-side
// invalidates it immediately.
type CookieCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewCookieCodec(secret string, ttl time.Duration) *CookieCodec {
	return &CookieCodec{secret: []byte(secret), ttl: ttl}
}

type sidClaims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

func (c *CookieCodec) Seal(sessionID string) (string, error) {
	now := time.Now()
	claims := sidClaims{
		SID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *CookieCodec) Open(value string) (string, error) {
	claims := &sidClaims{}
	_, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || claims.SID == "" {
		return "", errors.New("invalid session cookie")
	}
	return claims.SID, nil
}
