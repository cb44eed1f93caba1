// Package middleware provides HTTP middleware for signed package downloads.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// runIDKey is the context key for storing the run ID a token grants access to.
const runIDKey ContextKey = "runID"

// TokenValidator validates download tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (RunIDGetter, error)
}

// RunIDGetter extracts the run ID from validated token claims.
type RunIDGetter interface {
	GetRunID() uuid.UUID
}

// tokenFromRequest reads the token from the "token" query parameter or a Bearer header
func tokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token
	}

	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireRunToken rejects requests whose token is missing, invalid, or issued for a
// different run than the {pathParam} path value.
func RequireRunToken(validator TokenValidator, pathParam string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			runID := claims.GetRunID()
			if requested, err := uuid.Parse(r.PathValue(pathParam)); err != nil || requested != runID {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), runIDKey, runID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRunID extracts the token-authorized run ID from the request context.
func GetRunID(r *http.Request) (uuid.UUID, error) {
	runID, ok := r.Context().Value(runIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("run ID not found in request context")
	}
	return runID, nil
}
