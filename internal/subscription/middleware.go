package subscription

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/auth"
	"github.com/frahmantamala/tenant-admin/internal/transport"
)

// Guard gates tenant route groups on an active, unexpired subscription.
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

// RequireActiveSubscription denies with SUBSCRIPTION_EXPIRED when the
// tenant's subscription is missing, cancelled, or past its end date. A stored
// ACTIVE status alone is never enough. Super admins pass through.
func (g *Guard) RequireActiveSubscription(next http.Handler) http.Handler {
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

		active, err := g.service.HasActiveSubscription(r.Context(), principal.TenantID)
		if err != nil {
			g.Logger.Error("subscription check failed",
				"tenant_id", principal.TenantID,
				"error", err)
			g.WriteAppError(w, err)
			return
		}
		if !active {
			g.WriteAppError(w, internal.ErrSubscriptionExpired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
