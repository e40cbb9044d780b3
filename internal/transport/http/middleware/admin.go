package middleware

import (
	"net/http"

	"shiftswap/internal/domain/auth"
	"shiftswap/internal/transport/http/api"
)

// RequireAdmin guards routes reserved for administrative roles.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		if !auth.IsAdministrator(user.RoleName) {
			api.Fail(w, http.StatusForbidden, "forbidden", "administrator role required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
