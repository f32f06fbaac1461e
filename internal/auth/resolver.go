package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/transport"
)

// Resolver turns a bearer token into a request Principal. It is installed as
// middleware on each route group with the principal type the group expects.
type Resolver struct {
	*transport.BaseHandler
	service ServiceAPI
}

func NewResolver(service ServiceAPI, logger *slog.Logger) *Resolver {
	return &Resolver{
		BaseHandler: transport.NewBaseHandler(logger),
		service:     service,
	}
}

// RequireTenantUser rejects before any database access when the token is
// absent or malformed, then reconstructs the full tenant authorization
// context from the entity store.
func (res *Resolver) RequireTenantUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := res.ExtractTokenFromHeader(r)
		if token == "" {
			res.WriteAppError(w, internal.ErrUnauthenticated)
			return
		}

		claims, err := res.service.ValidateToken(token)
		if err != nil {
			res.WriteAppError(w, err)
			return
		}

		if claims.Type != PrincipalTenantUser {
			res.WriteAppError(w, internal.ErrWrongPrincipalType)
			return
		}

		principal, err := res.service.ResolveTenantPrincipal(r.Context(), claims)
		if err != nil {
			res.Logger.Warn("tenant principal resolution failed",
				"user_id", claims.UserID,
				"tenant_id", claims.TenantID,
				"error", err)
			res.WriteAppError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

// RequireSuperAdmin guards platform routes. Super-admin claims are trusted
// without a re-query.
func (res *Resolver) RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := res.ExtractTokenFromHeader(r)
		if token == "" {
			res.WriteAppError(w, internal.ErrUnauthenticated)
			return
		}

		claims, err := res.service.ValidateToken(token)
		if err != nil {
			res.WriteAppError(w, err)
			return
		}

		if claims.Role != PrincipalSuperAdmin {
			res.WriteAppError(w, internal.ErrWrongPrincipalType)
			return
		}

		principal := res.service.ResolveSuperAdminPrincipal(claims)
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}
