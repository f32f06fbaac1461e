package subscription

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/audit"
	"github.com/frahmantamala/tenant-admin/internal/auth"
	subscriptiondm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/subscription"
)

// Service owns the subscription lifecycle and the plan-to-entitlement sync.
// Expiry is purely read-time: nothing here runs in the background.
type Service struct {
	repo             RepositoryAPI
	auditor          audit.Recorder
	defaultSyncMode  SyncMode
	perTenantTimeout time.Duration
	logger           *slog.Logger
}

func NewService(repo RepositoryAPI, auditor audit.Recorder, defaultSyncMode SyncMode, perTenantTimeout time.Duration, logger *slog.Logger) *Service {
	if defaultSyncMode != SyncModeStrict {
		defaultSyncMode = SyncModeSafe
	}
	if perTenantTimeout <= 0 {
		perTenantTimeout = 30 * time.Second
	}
	return &Service{
		repo:             repo,
		auditor:          auditor,
		defaultSyncMode:  defaultSyncMode,
		perTenantTimeout: perTenantTimeout,
		logger:           logger,
	}
}

func (s *Service) DefaultSyncMode() SyncMode {
	return s.defaultSyncMode
}

// AssignPlan replaces the tenant's subscription in one transaction: any
// current ACTIVE row is cancelled, the new subscription is inserted, and the
// plan's modules are materialized. A failure anywhere rolls everything back.
func (s *Service) AssignPlan(ctx context.Context, tenantID, planID int64, mode SyncMode) (*ActiveSubscriptionView, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up plan", err)
	}
	if plan == nil {
		return nil, internal.ErrPlanNotFound
	}
	if !plan.IsActive || plan.DurationDays <= 0 {
		return nil, internal.ErrInvalidPlan
	}
	if mode == "" {
		mode = s.defaultSyncMode
	}

	now := time.Now()
	sub := &subscriptiondm.Subscription{
		TenantID:  tenantID,
		PlanID:    planID,
		Status:    subscriptiondm.StatusActive,
		StartDate: now,
		EndDate:   now.AddDate(0, 0, plan.DurationDays),
	}

	err = s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		if err := tx.CancelActiveSubscriptions(ctx, tenantID); err != nil {
			return err
		}
		if err := tx.CreateSubscription(ctx, sub); err != nil {
			return err
		}
		return s.syncTenantModules(ctx, tx, tenantID, planID, mode)
	})
	if err != nil {
		return nil, internal.NewInternalError("failed to assign plan", err)
	}

	s.recordAudit(ctx, tenantID, audit.ActionPlanAssigned, "subscription", &sub.ID, map[string]interface{}{
		"plan_id":   planID,
		"plan_name": plan.Name,
		"sync_mode": string(mode),
		"end_date":  sub.EndDate,
	})

	return &ActiveSubscriptionView{
		ID:        sub.ID,
		PlanID:    planID,
		PlanName:  plan.Name,
		Status:    sub.Status,
		StartDate: sub.StartDate,
		EndDate:   sub.EndDate,
	}, nil
}

// SyncTenantModulesFromPlan re-materializes one tenant's entitlements from a
// plan. Safe to run repeatedly; the result depends only on the plan and mode.
func (s *Service) SyncTenantModulesFromPlan(ctx context.Context, tenantID, planID int64, mode SyncMode) error {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return internal.NewInternalError("failed to look up plan", err)
	}
	if plan == nil {
		return internal.ErrPlanNotFound
	}
	if mode == "" {
		mode = s.defaultSyncMode
	}

	err = s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		return s.syncTenantModules(ctx, tx, tenantID, planID, mode)
	})
	if err != nil {
		return internal.NewInternalError("failed to sync tenant modules", err)
	}
	return nil
}

func (s *Service) syncTenantModules(ctx context.Context, tx RepositoryAPI, tenantID, planID int64, mode SyncMode) error {
	planModules, err := tx.GetPlanModules(ctx, planID)
	if err != nil {
		return err
	}

	existing, err := tx.ListTenantModules(ctx, tenantID)
	if err != nil {
		return err
	}
	sourceByModule := make(map[int64]string, len(existing))
	for _, row := range existing {
		sourceByModule[row.ModuleID] = row.Source
	}

	keepIDs := make([]int64, 0, len(planModules))
	for _, module := range planModules {
		keepIDs = append(keepIDs, module.ID)

		// Safe mode never rewrites a manual override, even for modules the
		// plan grants.
		if mode == SyncModeSafe && sourceByModule[module.ID] == subscriptiondm.SourceManual {
			continue
		}

		if err := tx.UpsertTenantModule(ctx, &subscriptiondm.TenantModule{
			TenantID: tenantID,
			ModuleID: module.ID,
			Enabled:  true,
			Source:   subscriptiondm.SourcePlan,
		}); err != nil {
			return err
		}
	}

	if mode == SyncModeStrict {
		if _, err := tx.DisableTenantModulesExcept(ctx, tenantID, keepIDs); err != nil {
			return err
		}
	}
	return nil
}

// SyncPlanToAllTenants pushes a changed plan to every tenant currently on it.
// Each tenant syncs in its own transaction with its own timeout, so one bad
// tenant cannot roll back or starve the rest. The report carries how many
// tenants actually committed.
func (s *Service) SyncPlanToAllTenants(ctx context.Context, planID int64, mode SyncMode) (*SyncReport, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up plan", err)
	}
	if plan == nil {
		return nil, internal.ErrPlanNotFound
	}
	if mode == "" {
		mode = s.defaultSyncMode
	}

	tenantIDs, err := s.repo.TenantIDsOnPlan(ctx, planID, time.Now())
	if err != nil {
		return nil, internal.NewInternalError("failed to list tenants on plan", err)
	}

	report := &SyncReport{
		PlanID:         planID,
		Mode:           mode,
		TenantsMatched: len(tenantIDs),
	}

	for _, tenantID := range tenantIDs {
		tenantCtx, cancel := internal.WithTimeout(ctx, s.perTenantTimeout)
		err := s.repo.Transaction(tenantCtx, func(tx RepositoryAPI) error {
			return s.syncTenantModules(tenantCtx, tx, tenantID, planID, mode)
		})
		cancel()

		if err != nil {
			s.logger.Error("plan sync failed for tenant",
				"plan_id", planID,
				"tenant_id", tenantID,
				"error", err)
			report.FailedTenantIDs = append(report.FailedTenantIDs, tenantID)
			continue
		}
		report.TenantsUpdated++
	}

	s.recordAudit(ctx, 0, audit.ActionPlanSynced, "plan", &planID, map[string]interface{}{
		"mode":            string(mode),
		"tenants_matched": report.TenantsMatched,
		"tenants_updated": report.TenantsUpdated,
		"tenants_failed":  len(report.FailedTenantIDs),
	})

	return report, nil
}

func (s *Service) ActiveSubscription(ctx context.Context, tenantID int64) (*ActiveSubscriptionView, error) {
	sub, err := s.repo.GetActiveSubscription(ctx, tenantID, time.Now())
	if err != nil {
		return nil, internal.NewInternalError("failed to look up subscription", err)
	}
	if sub == nil {
		return nil, nil
	}

	plan, err := s.repo.GetPlan(ctx, sub.PlanID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up plan", err)
	}

	view := &ActiveSubscriptionView{
		ID:        sub.ID,
		PlanID:    sub.PlanID,
		Status:    sub.Status,
		StartDate: sub.StartDate,
		EndDate:   sub.EndDate,
	}
	if plan != nil {
		view.PlanName = plan.Name
	}
	return view, nil
}

func (s *Service) HasActiveSubscription(ctx context.Context, tenantID int64) (bool, error) {
	sub, err := s.repo.GetActiveSubscription(ctx, tenantID, time.Now())
	if err != nil {
		return false, internal.NewInternalError("failed to look up subscription", err)
	}
	return sub != nil, nil
}

func (s *Service) recordAudit(ctx context.Context, tenantID int64, action, entity string, entityID *int64, meta map[string]interface{}) {
	entry := audit.Entry{
		ActorType: audit.ActorSuperAdmin,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Meta:      meta,
	}
	if tenantID != 0 {
		entry.TenantID = &tenantID
	}
	if principal, ok := auth.PrincipalFromContext(ctx); ok && principal.IsSuperAdmin() {
		entry.SuperAdminID = &principal.SuperAdminID
	}
	s.auditor.Record(ctx, entry)
}
