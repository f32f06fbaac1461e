package middleware

import (
	"net/http"

	"github.com/frahmantamala/tenant-admin/internal/auth"
	"github.com/frahmantamala/tenant-admin/pkg/logger"
)

// PrincipalContext tags the request-scoped logger with the resolved
// principal so every log line downstream carries who acted and for which
// tenant. Must run after the principal resolver.
func PrincipalContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok || principal == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		if principal.IsSuperAdmin() {
			ctx = logger.With(ctx, "super_admin_id", principal.SuperAdminID)
		} else {
			ctx = logger.With(ctx, "user_id", principal.UserID, "tenant_id", principal.TenantID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
