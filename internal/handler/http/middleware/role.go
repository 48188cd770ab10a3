package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/leave-ledger/internal/domain/auth"
	"github.com/cmlabs-hris/leave-ledger/internal/handler/http/response"
	"github.com/cmlabs-hris/leave-ledger/internal/service/access"
)

// RequirePermission checks if the caller's role grants permission
func RequirePermission(permission auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if err := access.Require(actor, permission); err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireManager requires manager or admin role
func RequireManager(next http.Handler) http.Handler {
	return RequirePermission(auth.PermissionLeaveViewTeam)(next)
}

// RequireAdmin requires the HR administrator role
func RequireAdmin(next http.Handler) http.Handler {
	return RequirePermission(auth.PermissionLeaveViewAll)(next)
}
