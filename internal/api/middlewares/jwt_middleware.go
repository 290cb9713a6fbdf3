package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

type contextKey string

const viewerKey contextKey = "viewer"

// Auth validates the Authorization bearer token and attaches the caller's
// identity to the request context.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing or invalid token", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(auth, "Bearer ")
			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			userID, ok := claims["user_id"].(string)
			if !ok || userID == "" {
				http.Error(w, "invalid token claims", http.StatusUnauthorized)
				return
			}
			isAdmin, _ := claims["is_admin"].(bool)

			viewer := models.Viewer{UserID: userID, IsAdmin: isAdmin}
			ctx := context.WithValue(r.Context(), viewerKey, viewer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly rejects callers whose token lacks the admin claim. Must run
// after Auth.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, ok := ViewerFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !viewer.IsAdmin {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ViewerFromContext returns the authenticated caller set by Auth.
func ViewerFromContext(ctx context.Context) (models.Viewer, bool) {
	viewer, ok := ctx.Value(viewerKey).(models.Viewer)
	return viewer, ok
}
