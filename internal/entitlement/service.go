package entitlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/audit"
	"github.com/frahmantamala/tenant-admin/internal/auth"
	"github.com/frahmantamala/tenant-admin/internal/core/datamodel/subscription"
)

// Service answers "may tenant T use module M right now" from materialized
// entitlement rows. Plan membership is never consulted at read time; only a
// sync changes what this service sees.
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

func grantCurrent(row *subscription.TenantModule, now time.Time) bool {
	if row == nil || !row.Enabled {
		return false
	}
	if row.ExpiresAt != nil && row.ExpiresAt.Before(now) {
		return false
	}
	return true
}

func (s *Service) IsModuleEnabled(ctx context.Context, tenantID int64, moduleKey string) (bool, error) {
	module, err := s.repo.GetModuleByKey(ctx, moduleKey)
	if err != nil {
		return false, internal.NewInternalError("failed to look up module", err)
	}
	if module == nil {
		return false, nil
	}

	// Common modules are granted to every tenant unconditionally.
	if module.IsCommon {
		return true, nil
	}

	row, err := s.repo.GetTenantModule(ctx, tenantID, module.ID)
	if err != nil {
		return false, internal.NewInternalError("failed to look up tenant module", err)
	}
	return grantCurrent(row, time.Now()), nil
}

func (s *Service) ListEnabledModules(ctx context.Context, tenantID int64) ([]EnabledModule, error) {
	modules, err := s.repo.ListModules(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list modules", err)
	}

	rows, err := s.repo.ListTenantModules(ctx, tenantID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list tenant modules", err)
	}
	byModule := make(map[int64]*subscription.TenantModule, len(rows))
	for i := range rows {
		byModule[rows[i].ModuleID] = &rows[i]
	}

	now := time.Now()
	enabled := make([]EnabledModule, 0, len(modules))
	for _, module := range modules {
		if module.IsCommon {
			enabled = append(enabled, EnabledModule{
				ModuleID: module.ID,
				Key:      module.Key,
				Name:     module.Name,
				Source:   "COMMON",
			})
			continue
		}
		row := byModule[module.ID]
		if !grantCurrent(row, now) {
			continue
		}
		enabled = append(enabled, EnabledModule{
			ModuleID:   module.ID,
			Key:        module.Key,
			Name:       module.Name,
			Source:     row.Source,
			UsageLimit: row.UsageLimit,
			ExpiresAt:  row.ExpiresAt,
		})
	}
	return enabled, nil
}

// TenantModuleOverview renders the full catalog matrix for one tenant.
// ACTIVE means usable now, DISABLED means the plan allows it but it is turned
// off, LOCKED means the plan does not include it at all.
func (s *Service) TenantModuleOverview(ctx context.Context, tenantID int64) ([]OverviewItem, error) {
	modules, err := s.repo.ListModules(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list modules", err)
	}

	rows, err := s.repo.ListTenantModules(ctx, tenantID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list tenant modules", err)
	}
	byModule := make(map[int64]*subscription.TenantModule, len(rows))
	for i := range rows {
		byModule[rows[i].ModuleID] = &rows[i]
	}

	planModules, err := s.repo.ActivePlanModuleIDs(ctx, tenantID)
	if err != nil {
		return nil, internal.NewInternalError("failed to resolve plan modules", err)
	}

	now := time.Now()
	overview := make([]OverviewItem, 0, len(modules))
	for _, module := range modules {
		row := byModule[module.ID]
		item := OverviewItem{
			ModuleID:      module.ID,
			Key:           module.Key,
			Name:          module.Name,
			IsCommon:      module.IsCommon,
			AllowedByPlan: module.IsCommon || planModules[module.ID],
			Enabled:       module.IsCommon || grantCurrent(row, now),
		}
		if row != nil {
			item.Source = row.Source
			item.UsageLimit = row.UsageLimit
			item.ExpiresAt = row.ExpiresAt
		}

		switch {
		case item.Enabled:
			item.Status = StatusActive
		case item.AllowedByPlan:
			item.Status = StatusDisabled
		default:
			item.Status = StatusLocked
		}
		overview = append(overview, item)
	}
	return overview, nil
}

// OverrideTenantModule writes a MANUAL entitlement row. The override wins over
// whatever the plan materialized and survives safe-mode syncs.
func (s *Service) OverrideTenantModule(ctx context.Context, override Override) (*OverviewItem, error) {
	module, err := s.repo.GetModuleByID(ctx, override.ModuleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up module", err)
	}
	if module == nil {
		return nil, internal.ErrModuleNotFound
	}

	row := &subscription.TenantModule{
		TenantID:   override.TenantID,
		ModuleID:   override.ModuleID,
		Enabled:    override.Enabled,
		Source:     subscription.SourceManual,
		UsageLimit: override.UsageLimit,
		ExpiresAt:  override.ExpiresAt,
	}
	if err := s.repo.UpsertTenantModule(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to write tenant module", err)
	}

	action := audit.ActionTenantModuleEnabled
	if !override.Enabled {
		action = audit.ActionTenantModuleDisabled
	}
	s.recordAudit(ctx, override.TenantID, module.ID, action, map[string]interface{}{
		"module_key": module.Key,
	})

	item := &OverviewItem{
		ModuleID:   module.ID,
		Key:        module.Key,
		Name:       module.Name,
		IsCommon:   module.IsCommon,
		Enabled:    module.IsCommon || override.Enabled,
		Source:     subscription.SourceManual,
		UsageLimit: override.UsageLimit,
		ExpiresAt:  override.ExpiresAt,
	}
	if item.Enabled {
		item.Status = StatusActive
	} else {
		item.Status = StatusDisabled
	}
	return item, nil
}

func (s *Service) recordAudit(ctx context.Context, tenantID, moduleID int64, action string, meta map[string]interface{}) {
	entry := audit.Entry{
		ActorType: audit.ActorSuperAdmin,
		TenantID:  &tenantID,
		Action:    action,
		Entity:    "tenant_module",
		EntityID:  &moduleID,
		Meta:      meta,
	}
	if principal, ok := auth.PrincipalFromContext(ctx); ok && principal != nil {
		if principal.IsSuperAdmin() {
			entry.SuperAdminID = &principal.SuperAdminID
		} else {
			entry.ActorType = audit.ActorTenantUser
			entry.UserID = &principal.UserID
		}
	}
	s.auditor.Record(ctx, entry)
}
