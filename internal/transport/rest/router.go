package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/tenant-admin/internal/audit"
	"github.com/frahmantamala/tenant-admin/internal/auth"
	"github.com/frahmantamala/tenant-admin/internal/catalog"
	"github.com/frahmantamala/tenant-admin/internal/entitlement"
	"github.com/frahmantamala/tenant-admin/internal/navigation"
	"github.com/frahmantamala/tenant-admin/internal/plan"
	"github.com/frahmantamala/tenant-admin/internal/role"
	"github.com/frahmantamala/tenant-admin/internal/subscription"
	"github.com/frahmantamala/tenant-admin/internal/tenant"
	"github.com/frahmantamala/tenant-admin/internal/transport/middleware"
	"github.com/frahmantamala/tenant-admin/internal/transport/swagger"
	"github.com/frahmantamala/tenant-admin/internal/user"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth         *auth.Handler
	Resolver     *auth.Resolver
	RBAC         *auth.RBACAuthorization
	User         *user.Handler
	Role         *role.Handler
	Tenant       *tenant.Handler
	Catalog      *catalog.Handler
	Plan         *plan.Handler
	Subscription *subscription.Handler
	Entitlement  *entitlement.Handler
	Navigation   *navigation.Handler
	Audit        *audit.Handler

	EntitlementGuard  *entitlement.Guard
	SubscriptionGuard *subscription.Guard
}

// RegisterAllRoutes wires the full API surface. Tenant routes pass through the
// principal resolver, the permission check and, where a feature module is
// involved, the entitlement and subscription guards. Platform routes accept
// super-admin tokens only.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestTrace)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.TenantLogin)
			sr.Post("/platform/login", h.Auth.PlatformLogin)
		})

		// Tenant-side surface: every route below re-resolves the principal
		// so role and entitlement changes apply on the next request.
		r.Group(func(tr chi.Router) {
			tr.Use(h.Resolver.RequireTenantUser)
			tr.Use(middleware.PrincipalContext)

			tr.Get("/auth/me", h.Auth.Me)
			tr.Get("/me/config", h.User.MeConfig)
			tr.Get("/me/sidebar", h.Navigation.Sidebar)
			tr.Get("/me/subscription", h.Subscription.MySubscription)
			tr.Get("/me/modules", h.Entitlement.MyModules)

			// Module access checks for gateways and feature services. An
			// expired subscription blocks feature modules here before the
			// per-module entitlement is even consulted.
			tr.Route("/access", func(ar chi.Router) {
				ar.Use(h.SubscriptionGuard.RequireActiveSubscription)
				ar.Get("/{moduleKey}", h.Entitlement.CheckModuleAccess)
			})

			tr.Group(func(ur chi.Router) {
				ur.Use(h.RBAC.RequirePermission("USER_VIEW"))
				ur.Get("/users", h.User.ListUsers)
			})
			tr.Group(func(ur chi.Router) {
				ur.Use(h.RBAC.RequirePermission("USER_MANAGE"))
				ur.Post("/users", h.User.CreateUser)
				ur.Patch("/users/{userID}/status", h.User.SetUserStatus)
			})

			tr.Group(func(rr chi.Router) {
				rr.Use(h.RBAC.RequirePermission("ROLE_VIEW"))
				rr.Get("/roles", h.Role.ListRoles)
				rr.Get("/permissions", h.Role.ListPermissionCatalog)
			})
			tr.Group(func(rr chi.Router) {
				rr.Use(h.RBAC.RequirePermission("ROLE_MANAGE"))
				rr.Post("/roles", h.Role.CreateRole)
				rr.Put("/roles/{roleID}/permissions", h.Role.SetRolePermissions)
			})
		})

		// Platform surface: super-admin tokens only.
		r.Route("/platform", func(pr chi.Router) {
			pr.Use(h.Resolver.RequireSuperAdmin)
			pr.Use(middleware.PrincipalContext)

			pr.Get("/auth/me", h.Auth.Me)

			pr.Post("/tenants", h.Tenant.CreateTenant)
			pr.Get("/tenants", h.Tenant.ListTenants)
			pr.Patch("/tenants/{tenantID}/status", h.Tenant.SetTenantStatus)

			pr.Post("/modules", h.Catalog.CreateModule)
			pr.Get("/modules", h.Catalog.ListModules)

			pr.Post("/plans", h.Plan.CreatePlan)
			pr.Get("/plans", h.Plan.ListPlans)
			pr.Get("/plans/{planID}", h.Plan.PlanDetails)
			pr.Patch("/plans/{planID}", h.Plan.UpdatePlan)
			pr.Post("/plans/{planID}/modules", h.Plan.AddModules)
			pr.Delete("/plans/{planID}/modules", h.Plan.RemoveModules)
			pr.Post("/plans/{planID}/common-modules", h.Plan.AddCommonModules)
			pr.Post("/plans/setup-defaults", h.Plan.SetupDefaultPlans)
			pr.Post("/plans/{planID}/sync", h.Subscription.SyncPlan)

			pr.Post("/tenants/{tenantID}/subscription", h.Subscription.AssignPlan)
			pr.Get("/tenants/{tenantID}/subscription", h.Subscription.TenantSubscription)

			pr.Get("/tenants/{tenantID}/modules", h.Entitlement.TenantModuleOverview)
			pr.Put("/tenants/{tenantID}/modules/{moduleID}", h.Entitlement.OverrideTenantModule)

			pr.Get("/audit-logs", h.Audit.ListAuditLogs)
		})
	})
}
