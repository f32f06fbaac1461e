package plan

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/audit"
	"github.com/frahmantamala/tenant-admin/internal/auth"
	"github.com/frahmantamala/tenant-admin/internal/core/datamodel/catalog"
	"github.com/frahmantamala/tenant-admin/internal/subscription"
)

// Syncer is the slice of the subscription lifecycle a plan mutation needs:
// after the module set changes, tenants on the plan get re-materialized.
type Syncer interface {
	SyncPlanToAllTenants(ctx context.Context, planID int64, mode subscription.SyncMode) (*subscription.SyncReport, error)
	DefaultSyncMode() subscription.SyncMode
}

type Service struct {
	repo    RepositoryAPI
	syncer  Syncer
	auditor audit.Recorder
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, syncer Syncer, auditor audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		syncer:  syncer,
		auditor: auditor,
		logger:  logger,
	}
}

func toView(plan *catalog.Plan, modules []catalog.Module) *View {
	view := &View{
		ID:           plan.ID,
		Name:         plan.Name,
		Price:        plan.Price,
		DurationDays: plan.DurationDays,
		IsActive:     plan.IsActive,
		CreatedAt:    plan.CreatedAt,
	}
	for _, module := range modules {
		view.Modules = append(view.Modules, ModuleView{
			ID:       module.ID,
			Key:      module.Key,
			Name:     module.Name,
			IsCommon: module.IsCommon,
		})
	}
	return view
}

func (s *Service) CreatePlan(ctx context.Context, params CreateParams) (*View, error) {
	if params.Name == "" {
		return nil, internal.NewValidationError("plan name is required", internal.ErrCodeValidationFailed)
	}
	if params.DurationDays <= 0 {
		return nil, internal.NewValidationError("duration_days must be positive", internal.ErrCodeValidationFailed)
	}

	existing, err := s.repo.GetPlanByName(ctx, params.Name)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up plan", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError("plan name already exists", internal.ErrCodePlanExists)
	}

	if len(params.ModuleIDs) > 0 {
		modules, err := s.repo.ListModulesByIDs(ctx, params.ModuleIDs)
		if err != nil {
			return nil, internal.NewInternalError("failed to validate modules", err)
		}
		if len(modules) != len(params.ModuleIDs) {
			return nil, internal.ErrModuleNotFound
		}
	}

	plan := &catalog.Plan{
		Name:         params.Name,
		Price:        params.Price,
		DurationDays: params.DurationDays,
		IsActive:     true,
	}
	if err := s.repo.CreatePlan(ctx, plan, params.ModuleIDs); err != nil {
		return nil, internal.NewInternalError("failed to create plan", err)
	}

	s.recordAudit(ctx, audit.ActionPlanCreated, plan.ID, map[string]interface{}{
		"name":    plan.Name,
		"modules": len(params.ModuleIDs),
	})

	return s.PlanDetails(ctx, plan.ID)
}

func (s *Service) UpdatePlan(ctx context.Context, planID int64, params UpdateParams) (*View, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up plan", err)
	}
	if plan == nil {
		return nil, internal.ErrPlanNotFound
	}

	fields := map[string]interface{}{"updated_at": time.Now()}
	if params.Price != nil {
		fields["price"] = *params.Price
	}
	if params.DurationDays != nil {
		if *params.DurationDays <= 0 {
			return nil, internal.NewValidationError("duration_days must be positive", internal.ErrCodeValidationFailed)
		}
		fields["duration_days"] = *params.DurationDays
	}
	if params.IsActive != nil {
		fields["is_active"] = *params.IsActive
	}

	if err := s.repo.UpdatePlan(ctx, planID, fields); err != nil {
		return nil, internal.NewInternalError("failed to update plan", err)
	}

	s.recordAudit(ctx, audit.ActionPlanUpdated, planID, nil)
	return s.PlanDetails(ctx, planID)
}

func (s *Service) ListPlans(ctx context.Context) ([]View, error) {
	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list plans", err)
	}

	views := make([]View, 0, len(plans))
	for i := range plans {
		views = append(views, *toView(&plans[i], nil))
	}
	return views, nil
}

func (s *Service) PlanDetails(ctx context.Context, planID int64) (*View, error) {
	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up plan", err)
	}
	if plan == nil {
		return nil, internal.ErrPlanNotFound
	}

	modules, err := s.repo.GetPlanModules(ctx, planID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list plan modules", err)
	}
	return toView(plan, modules), nil
}

// AddModules grants modules to a plan and pushes the change to every tenant
// currently subscribed to it.
func (s *Service) AddModules(ctx context.Context, planID int64, moduleIDs []int64) (*View, error) {
	return s.mutateModules(ctx, planID, moduleIDs, s.repo.AddPlanModules)
}

// RemoveModules drops modules from a plan. The fleet sync runs in the
// configured default mode; under SAFE, tenants keep already-materialized rows
// until an operator runs a STRICT sync.
func (s *Service) RemoveModules(ctx context.Context, planID int64, moduleIDs []int64) (*View, error) {
	return s.mutateModules(ctx, planID, moduleIDs, s.repo.RemovePlanModules)
}

func (s *Service) mutateModules(ctx context.Context, planID int64, moduleIDs []int64, op func(context.Context, int64, []int64) error) (*View, error) {
	if len(moduleIDs) == 0 {
		return nil, internal.NewValidationError("module_ids is required", internal.ErrCodeValidationFailed)
	}

	plan, err := s.repo.GetPlan(ctx, planID)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up plan", err)
	}
	if plan == nil {
		return nil, internal.ErrPlanNotFound
	}

	modules, err := s.repo.ListModulesByIDs(ctx, moduleIDs)
	if err != nil {
		return nil, internal.NewInternalError("failed to validate modules", err)
	}
	if len(modules) != len(moduleIDs) {
		return nil, internal.ErrModuleNotFound
	}

	if err := op(ctx, planID, moduleIDs); err != nil {
		return nil, internal.NewInternalError("failed to update plan modules", err)
	}

	s.recordAudit(ctx, audit.ActionPlanModulesUpdated, planID, map[string]interface{}{
		"module_ids": moduleIDs,
	})

	if report, err := s.syncer.SyncPlanToAllTenants(ctx, planID, s.syncer.DefaultSyncMode()); err != nil {
		// The plan change itself committed; tenants resync on the next push.
		s.logger.Error("post-change plan sync failed", "plan_id", planID, "error", err)
	} else if len(report.FailedTenantIDs) > 0 {
		s.logger.Warn("post-change plan sync partially failed",
			"plan_id", planID,
			"failed_tenants", report.FailedTenantIDs)
	}

	return s.PlanDetails(ctx, planID)
}

// AddCommonModules attaches every common catalog module to the plan so plan
// details render the full grant set explicitly.
func (s *Service) AddCommonModules(ctx context.Context, planID int64) (*View, error) {
	commonIDs, err := s.repo.ListCommonModuleIDs(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list common modules", err)
	}
	if len(commonIDs) == 0 {
		return s.PlanDetails(ctx, planID)
	}
	return s.mutateModules(ctx, planID, commonIDs, s.repo.AddPlanModules)
}

// SetupDefaultPlans idempotently seeds the stock catalog. Existing plans with
// the same name are left untouched.
func (s *Service) SetupDefaultPlans(ctx context.Context) ([]View, error) {
	defaults := []catalog.Plan{
		{Name: "TRIAL", Price: 0, DurationDays: 30, IsActive: true},
		{Name: "BASIC", Price: 99, DurationDays: 30, IsActive: true},
		{Name: "PREMIUM", Price: 299, DurationDays: 30, IsActive: true},
	}

	views := make([]View, 0, len(defaults))
	for i := range defaults {
		existing, err := s.repo.GetPlanByName(ctx, defaults[i].Name)
		if err != nil {
			return nil, internal.NewInternalError("failed to look up plan", err)
		}
		if existing == nil {
			if err := s.repo.CreatePlan(ctx, &defaults[i], nil); err != nil {
				return nil, internal.NewInternalError("failed to create default plan", err)
			}
			existing = &defaults[i]
		}
		views = append(views, *toView(existing, nil))
	}
	return views, nil
}

func (s *Service) recordAudit(ctx context.Context, action string, planID int64, meta map[string]interface{}) {
	entry := audit.Entry{
		ActorType: audit.ActorSuperAdmin,
		Action:    action,
		Entity:    "plan",
		EntityID:  &planID,
		Meta:      meta,
	}
	if principal, ok := auth.PrincipalFromContext(ctx); ok && principal.IsSuperAdmin() {
		entry.SuperAdminID = &principal.SuperAdminID
	}
	s.auditor.Record(ctx, entry)
}
