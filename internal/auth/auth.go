// Package auth validates bearer tokens presented on connection upgrades.
//
// It resolves a token to a user id and leaves policy to the caller.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthorized = errors.New("auth: unauthorized")

// Validator resolves a bearer token to a user id.
type Validator interface {
	Validate(token string) (string, error)
}

// StaticToken accepts a single shared token and reports User for it.
// It is intended only for development and proofs of concept.
type StaticToken struct {
	Token string
	User  string
}

func (s StaticToken) Validate(token string) (string, error) {
	if s.Token == "" {
		return "", ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(s.Token), []byte(token)) != 1 {
		return "", ErrUnauthorized
	}
	return s.User, nil
}

// FuncValidator adapts a function into a Validator.
type FuncValidator func(token string) (string, error)

func (f FuncValidator) Validate(token string) (string, error) {
	return f(token)
}

// Claims are the token claims accepted by HS256.
type Claims struct {
	UserID string `json:"sub"`
	jwt.RegisteredClaims
}

// HS256 validates HMAC-SHA256 signed JWTs and returns their subject.
type HS256 struct {
	Secret []byte
}

func (h HS256) Validate(token string) (string, error) {
	if len(h.Secret) == 0 {
		return "", fmt.Errorf("%w: no secret configured", ErrUnauthorized)
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return h.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return "", fmt.Errorf("%w: invalid claims", ErrUnauthorized)
	}
	return claims.UserID, nil
}

// SignHS256 issues a token for userID. Used by tooling and tests.
func SignHS256(secret []byte, userID string, claims jwt.RegisteredClaims) (string, error) {
	c := Claims{UserID: userID, RegisteredClaims: claims}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
}

// BearerToken extracts the token from an Authorization header, falling back
// to the access_token query parameter since browsers cannot set headers on
// websocket upgrades.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")); token != "" {
			return token
		}
	}
	return r.URL.Query().Get("access_token")
}

// Authenticate validates the request's bearer token with v.
func Authenticate(r *http.Request, v Validator) (string, error) {
	token := BearerToken(r)
	if token == "" {
		return "", fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}
	return v.Validate(token)
}
