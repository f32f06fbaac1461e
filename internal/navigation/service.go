package navigation

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/auth"
	"github.com/frahmantamala/tenant-admin/internal/entitlement"
)

// EntitlementReader is the slice of the entitlement resolver the composer
// needs: the current grant set for one tenant.
type EntitlementReader interface {
	ListEnabledModules(ctx context.Context, tenantID int64) ([]entitlement.EnabledModule, error)
}

type ServiceAPI interface {
	SidebarFor(ctx context.Context, principal *auth.Principal) ([]Node, error)
}

type Service struct {
	entitlements EntitlementReader
	logger       *slog.Logger
}

func NewService(entitlements EntitlementReader, logger *slog.Logger) *Service {
	return &Service{
		entitlements: entitlements,
		logger:       logger,
	}
}

// SidebarFor resolves the principal's entitlements and composes the tree.
// All gating inputs come from the request principal and the entitlement
// store; the composition itself is pure.
func (s *Service) SidebarFor(ctx context.Context, principal *auth.Principal) ([]Node, error) {
	if principal == nil {
		return nil, internal.ErrUnauthenticated
	}

	enabled, err := s.entitlements.ListEnabledModules(ctx, principal.TenantID)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(enabled))
	for _, module := range enabled {
		keys = append(keys, module.Key)
	}

	return BuildSidebar(principal.Tenant.Category, keys, principal.Permissions), nil
}
