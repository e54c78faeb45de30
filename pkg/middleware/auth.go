/**
 * @description
 * This package provides middleware for the HTTP server, specifically bearer
 * token authentication for the operator endpoints (manual reconciliation).
 *
 * @dependencies
 * - github.com/golang-jwt/jwt/v5: JWT parsing and signature validation.
 */
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wealthloop/aggregator-service/internal/config"
)

// AuthContextKey is a custom type for the context key to avoid collisions.
type AuthContextKey string

// SubjectKey is the key used to store the token subject in the request context.
const SubjectKey AuthContextKey = "subject"

// ErrNoAuthHeader is returned when the Authorization header is missing.
var ErrNoAuthHeader = errors.New("authorization header is required")

// AuthMiddleware creates a middleware that validates a bearer JWT signed with
// the configured secret and stores its subject in the request context.
func AuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized: Missing auth credentials", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, "Unauthorized: Invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(cfg.AuthJWTSecret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
				return
			}

			subject := ""
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if sub, ok := claims["sub"].(string); ok {
					subject = sub
				}
			}

			ctx := context.WithValue(r.Context(), SubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubjectFromContext retrieves the token subject from the request context.
// It returns an empty string if the subject is not found.
func GetSubjectFromContext(ctx context.Context) string {
	subject, ok := ctx.Value(SubjectKey).(string)
	if !ok {
		return ""
	}
	return subject
}
