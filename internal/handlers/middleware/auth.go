package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nkiryanov/authd/internal/apperrors"
	"github.com/nkiryanov/authd/internal/handlers/authctx"
	"github.com/nkiryanov/authd/internal/handlers/render"
	"github.com/nkiryanov/authd/internal/models"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

type accessValidator interface {
	ValidateAccess(ctx context.Context, accessValue string) (models.Principal, error)
}

// Authorize is the default gate for everything that is not a login,
// refresh or whitelisted route. Failures here are 403: the caller
// presented bad or no credentials to a protected resource, which is a
// different trust boundary than a failed login (401).
func Authorize(v accessValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenValue, ok := bearerToken(r)
			if !ok {
				render.Error(w, apperrors.CodeInvalidToken, "Invalid or missing bearer token", http.StatusForbidden)
				return
			}

			principal, err := v.ValidateAccess(r.Context(), tokenValue)
			if err != nil {
				render.Error(w, apperrors.Code(err), "Invalid or expired access token", http.StatusForbidden)
				return
			}

			ctx := authctx.New(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthority rejects authenticated principals whose authority does
// not match. Runs after Authorize, so a missing principal means a wiring
// mistake, not a client error; it is still rejected.
func RequireAuthority(authority string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := authctx.FromContext(r.Context())
			if !ok || principal.Authority != authority {
				render.Error(w, apperrors.CodeAccessDenied, "Access denied", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// A missing header and a malformed one are the same failure.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(authorizationHeader)
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	tokenValue := strings.TrimPrefix(header, bearerPrefix)
	if tokenValue == "" {
		return "", false
	}

	return tokenValue, true
}
