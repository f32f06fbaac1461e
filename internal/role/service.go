package role

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/audit"
	"github.com/frahmantamala/tenant-admin/internal/auth"
	tenantdm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/tenant"
)

type Service struct {
	repo    RepositoryAPI
	auditor audit.Recorder
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, auditor audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
		logger:  logger,
	}
}

func (s *Service) resolvePermissionIDs(ctx context.Context, keys []string) ([]int64, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	permissions, err := s.repo.ListPermissionsByKeys(ctx, keys)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve permissions", err)
	}
	if len(permissions) != len(keys) {
		return nil, internal.NewValidationError("unknown permission key", internal.ErrCodeValidationFailed)
	}
	ids := make([]int64, 0, len(permissions))
	for _, p := range permissions {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (s *Service) toView(ctx context.Context, role *tenantdm.Role) (*View, error) {
	keys, err := s.repo.GetRolePermissionKeys(ctx, role.ID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role permissions", err)
	}
	return &View{
		ID:          role.ID,
		TenantID:    role.TenantID,
		Name:        role.Name,
		Permissions: keys,
		CreatedAt:   role.CreatedAt,
	}, nil
}

func (s *Service) CreateRole(ctx context.Context, tenantID int64, name string, permissionKeys []string) (*View, error) {
	if name == "" {
		return nil, internal.NewValidationError("role name is required", internal.ErrCodeValidationFailed)
	}

	existing, err := s.repo.GetRoleByName(ctx, tenantID, name)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up role", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError("role name already exists for this tenant", internal.ErrCodeValidationFailed)
	}

	permissionIDs, err := s.resolvePermissionIDs(ctx, permissionKeys)
	if err != nil {
		return nil, err
	}

	role := &tenantdm.Role{TenantID: tenantID, Name: name}
	if err := s.repo.CreateRole(ctx, role); err != nil {
		return nil, internal.NewInternalError("failed to create role", err)
	}
	if len(permissionIDs) > 0 {
		if err := s.repo.SetRolePermissions(ctx, role.ID, permissionIDs); err != nil {
			return nil, internal.NewInternalError("failed to set role permissions", err)
		}
	}

	s.recordAudit(ctx, tenantID, role.ID, audit.ActionRoleCreated, map[string]interface{}{
		"name":        name,
		"permissions": permissionKeys,
	})
	return s.toView(ctx, role)
}

func (s *Service) ListRoles(ctx context.Context, tenantID int64) ([]View, error) {
	roles, err := s.repo.ListRoles(ctx, tenantID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list roles", err)
	}

	views := make([]View, 0, len(roles))
	for i := range roles {
		view, err := s.toView(ctx, &roles[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// SetRolePermissions replaces a role's grants. Users holding the role see the
// new set on their next request because the resolver re-reads the join.
func (s *Service) SetRolePermissions(ctx context.Context, tenantID, roleID int64, permissionKeys []string) (*View, error) {
	role, err := s.repo.GetRole(ctx, roleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up role", err)
	}
	if role == nil || role.TenantID != tenantID {
		// A role from another tenant is indistinguishable from a missing one.
		return nil, internal.ErrRoleNotFound
	}

	permissionIDs, err := s.resolvePermissionIDs(ctx, permissionKeys)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetRolePermissions(ctx, roleID, permissionIDs); err != nil {
		return nil, internal.NewInternalError("failed to set role permissions", err)
	}

	s.recordAudit(ctx, tenantID, roleID, audit.ActionRolePermissionsSet, map[string]interface{}{
		"permissions": permissionKeys,
	})
	return s.toView(ctx, role)
}

func (s *Service) ListPermissionCatalog(ctx context.Context) ([]PermissionView, error) {
	permissions, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list permissions", err)
	}

	views := make([]PermissionView, 0, len(permissions))
	for _, p := range permissions {
		views = append(views, PermissionView{ID: p.ID, Key: p.Key, Description: p.Description})
	}
	return views, nil
}

func (s *Service) recordAudit(ctx context.Context, tenantID, roleID int64, action string, meta map[string]interface{}) {
	entry := audit.Entry{
		ActorType: audit.ActorTenantUser,
		TenantID:  &tenantID,
		Action:    action,
		Entity:    "role",
		EntityID:  &roleID,
		Meta:      meta,
	}
	if principal, ok := auth.PrincipalFromContext(ctx); ok && principal != nil {
		if principal.IsSuperAdmin() {
			entry.ActorType = audit.ActorSuperAdmin
			entry.SuperAdminID = &principal.SuperAdminID
		} else {
			entry.UserID = &principal.UserID
		}
	}
	s.auditor.Record(ctx, entry)
}
