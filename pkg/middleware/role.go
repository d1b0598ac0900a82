package middleware

import (
	"net/http"

	"github.com/ravin009/chatfun-sub000/pkg/logger"
)

// RequireRole rejects requests whose authenticated user lacks the role.
// Must run after AuthMiddleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			for _, have := range claims.Roles {
				if have == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Log.Warnf("User %s denied access, missing role %s", claims.UserID, role)
			http.Error(w, "Forbidden", http.StatusForbidden)
		})
	}
}
