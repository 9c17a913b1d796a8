package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"brilliora/utils"

	"github.com/gorilla/mux"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// AuthMiddleware verifies bearer JWTs and attaches the claims to the context
func AuthMiddleware(tokens *utils.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || strings.TrimSpace(tokenStr) == "" {
				writeMessage(w, http.StatusUnauthorized, "No token provided")
				return
			}

			claims, err := tokens.ParseJWT(strings.TrimSpace(tokenStr))
			if err != nil {
				LoggerFromContext(r.Context()).Debug("rejected bearer token", "error", err)
				writeMessage(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims)))
		})
	}
}

// AdminMiddleware ensures that the user has admin privileges
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := UserFromContext(r.Context())
		if !ok || claims.Role != "admin" {
			writeMessage(w, http.StatusForbidden, "Forbidden: Admins only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns ctx carrying the authenticated claims
func WithUser(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

// UserFromContext returns the claims stored by AuthMiddleware
func UserFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok && claims != nil
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
