package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/welth-app/welth/internal/auth"
	"github.com/welth-app/welth/internal/pkg/errors"
	"github.com/welth-app/welth/internal/pkg/utils"
)

// ContextKey is a custom type for context keys
type ContextKey string

const (
	// UserIDKey is the context key for user ID
	UserIDKey ContextKey = "userID"
	// UsernameKey is the context key for the display username
	UsernameKey ContextKey = "username"
)

// AccessTokenCookie carries the access token for browser clients
const AccessTokenCookie = "accessToken"

// MsgUnauthenticated is returned to callers without a valid session
const MsgUnauthenticated = "Usuario no autenticado"

func tokenFromRequest(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func withIdentity(w http.ResponseWriter, r *http.Request, claims *auth.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
	ctx = context.WithValue(ctx, UsernameKey, claims.Username)

	AddLogField(w, "user_id", claims.UserID)

	return r.WithContext(ctx)
}

// AuthMiddleware returns a middleware that validates JWT tokens
func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				utils.WriteError(w, errors.Unauthenticated(MsgUnauthenticated))
				return
			}

			claims, err := auth.ParseKind(tokenStr, jwtSecret, auth.KindAccess)
			if err != nil {
				utils.WriteError(w, errors.Unauthenticated(MsgUnauthenticated))
				return
			}

			next.ServeHTTP(w, withIdentity(w, r, claims))
		})
	}
}

// OptionalAuthMiddleware is like AuthMiddleware but doesn't reject requests without tokens.
// Handlers that must check other preconditions before authentication use it.
func OptionalAuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenStr := tokenFromRequest(r); tokenStr != "" {
				if claims, err := auth.ParseKind(tokenStr, jwtSecret, auth.KindAccess); err == nil {
					r = withIdentity(w, r, claims)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserID extracts the user ID from the request context
func GetUserID(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// GetUsername extracts the display username from the request context
func GetUsername(r *http.Request) (string, bool) {
	username, ok := r.Context().Value(UsernameKey).(string)
	return username, ok
}
