package middleware

import (
	"net/http"

	"github.com/pixeldesk/backend/internal/domain"
	"github.com/pixeldesk/backend/pkg/response"
)

// RequirePermission gates a route on one resolved permission. Must run
// after AuthMiddleware. Resolution happens per request so role changes
// take effect without re-issuing tokens.
func RequirePermission(profiles *domain.ProfileService, permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r.Context())
			if !ok {
				response.Unauthorized(w, "authentication required")
				return
			}
			email, _ := GetEmail(r.Context())

			access := profiles.Resolve(r.Context(), userID, email)
			if !access.HasPermission(permission) {
				response.Forbidden(w, "permission denied")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates a route on the admin role. Must run after
// AuthMiddleware.
func RequireAdmin(profiles *domain.ProfileService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := GetUserID(r.Context())
			if !ok {
				response.Unauthorized(w, "authentication required")
				return
			}
			email, _ := GetEmail(r.Context())

			access := profiles.Resolve(r.Context(), userID, email)
			if !access.IsAdmin {
				response.Forbidden(w, "admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
