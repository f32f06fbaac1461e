package entitlement

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/auth"
	"github.com/frahmantamala/tenant-admin/internal/transport"
)

// Guard gates tenant route groups on module entitlement.
type Guard struct {
	*transport.BaseHandler
	service ServiceAPI
}

func NewGuard(service ServiceAPI, logger *slog.Logger) *Guard {
	return &Guard{
		BaseHandler: transport.NewBaseHandler(logger),
		service:     service,
	}
}

// RequireModule denies with MODULE_NOT_ENTITLED before the handler runs when
// the principal's tenant has no current grant for the module. Super admins
// are not tenant-scoped and pass through.
func (g *Guard) RequireModule(moduleKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFromContext(r.Context())
			if !ok || principal == nil {
				g.WriteAppError(w, internal.ErrUnauthenticated)
				return
			}
			if principal.IsSuperAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			enabled, err := g.service.IsModuleEnabled(r.Context(), principal.TenantID, moduleKey)
			if err != nil {
				g.Logger.Error("module entitlement check failed",
					"tenant_id", principal.TenantID,
					"module_key", moduleKey,
					"error", err)
				g.WriteAppError(w, err)
				return
			}
			if !enabled {
				g.Logger.Warn("module access denied",
					"tenant_id", principal.TenantID,
					"module_key", moduleKey)
				g.WriteAppError(w, internal.ErrModuleNotEntitled)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
