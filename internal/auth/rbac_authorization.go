package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/transport"
)

// PermissionAuthorizer decides whether a principal may perform an action. An
// error means the decision itself could not be made and is surfaced as a 500,
// never conflated with a deny.
type PermissionAuthorizer interface {
	HasPermission(ctx context.Context, principal *Principal, permission string) (bool, error)
}

// DefaultAuthorizer checks membership in the per-request permission set
// computed by the resolver; repeated checks within one request are O(1) and
// consistent even if the role is mutated concurrently. Super admins carry
// ambient authority and always pass.
type DefaultAuthorizer struct{}

func NewPermissionAuthorizer() PermissionAuthorizer {
	return &DefaultAuthorizer{}
}

func (a *DefaultAuthorizer) HasPermission(_ context.Context, principal *Principal, permission string) (bool, error) {
	if principal == nil {
		return false, nil
	}
	if principal.IsSuperAdmin() {
		return true, nil
	}
	return principal.Permissions.Has(permission), nil
}

type RBACAuthorization struct {
	*transport.BaseHandler
	authorizer PermissionAuthorizer
}

func NewRBACAuthorization(authorizer PermissionAuthorizer, logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		authorizer:  authorizer,
	}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, permission string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok || principal == nil {
			ra.Logger.Warn("authorization check failed: principal not found in context")
			ra.WriteAppError(w, internal.ErrUnauthenticated)
			return
		}

		hasAccess, err := ra.authorizer.HasPermission(r.Context(), principal, permission)
		if err != nil {
			ra.Logger.Error("authorization check failed",
				"error", err,
				"user_id", principal.UserID,
				"permission", permission)
			ra.WriteAppError(w, internal.NewInternalError("authorization check failed", err))
			return
		}

		if !hasAccess {
			ra.Logger.Warn("access denied: missing permission",
				"user_id", principal.UserID,
				"tenant_id", principal.TenantID,
				"required_permission", permission)
			ra.WriteAppError(w, internal.ErrPermissionDenied)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// RequirePermission gates a route group on a single permission key.
func (ra *RBACAuthorization) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, permission)
	}
}
