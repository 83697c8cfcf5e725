// Package auth provides bearer-token authentication for the HTTP surface.
// Per-user data scoping hangs off the verified subject; the domain and
// analytics layers only ever see the resolved user ID.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Mode represents the authentication strategy to apply for incoming
// requests.
type Mode string

const (
	// ModeJWT verifies HS256-signed bearer tokens against a shared secret,
	// matching the hosted auth provider's session tokens.
	ModeJWT Mode = "jwt"
	// ModeNoop disables signature verification and treats the bearer token
	// as the user ID (useful for local development and tests).
	ModeNoop Mode = "noop"
)

// Config captures the inputs required to initialize a verifier.
type Config struct {
	Mode     Mode
	Secret   string
	Audience string
	Issuer   string
}

// User is the authenticated subject extracted from the bearer token.
type User struct {
	UserID    string
	ExpiresAt int64
}

// Verifier verifies a bearer token and returns the associated user.
type Verifier interface {
	Verify(ctx context.Context, token string) (User, error)
}

var (
	errMissingAuthHeader = errors.New("authorization header missing")
	errInvalidAuthHeader = errors.New("authorization header is malformed")
)

type ctxKey string

const userCtxKey ctxKey = "inkline:user"

// Middleware enforces authentication for the wrapped handler using the
// provided verifier.
func Middleware(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			token, err := tokenFromRequest(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			user, err := verifier.Verify(r.Context(), token)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func tokenFromRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingAuthHeader
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errInvalidAuthHeader
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errInvalidAuthHeader
	}

	return token, nil
}

// UserFromContext extracts the authenticated user from the request
// context.
func UserFromContext(ctx context.Context) (User, bool) {
	value, ok := ctx.Value(userCtxKey).(User)
	return value, ok
}

// NewVerifier constructs a Verifier matching the supplied configuration.
func NewVerifier(cfg Config) (Verifier, error) {
	switch cfg.Mode {
	case ModeJWT:
		return newJWTVerifier(cfg)
	case ModeNoop:
		return noopVerifier{}, nil
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Mode)
	}
}

type noopVerifier struct{}

func (noopVerifier) Verify(_ context.Context, token string) (User, error) {
	return User{UserID: token}, nil
}
