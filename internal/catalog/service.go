package catalog

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/audit"
	"github.com/frahmantamala/tenant-admin/internal/auth"
	catalogdm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/catalog"
	"github.com/frahmantamala/tenant-admin/internal/core/datamodel/tenant"
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

var validCategories = map[string]bool{
	tenant.CategorySchool:     true,
	tenant.CategoryCoaching:   true,
	tenant.CategoryClinic:     true,
	tenant.CategorySalon:      true,
	tenant.CategoryGym:        true,
	tenant.CategoryRetail:     true,
	tenant.CategoryPharmacy:   true,
	tenant.CategoryRestaurant: true,
	tenant.CategoryCompany:    true,
}

func (s *Service) CreateModule(ctx context.Context, params CreateModuleParams) (*ModuleView, error) {
	if params.Key == "" || params.Name == "" {
		return nil, internal.NewValidationError("module key and name are required", internal.ErrCodeValidationFailed)
	}
	for _, category := range params.TenantCategories {
		if !validCategories[category] {
			return nil, internal.NewValidationError("unknown tenant category: "+category, internal.ErrCodeValidationFailed)
		}
	}

	existing, err := s.repo.GetModuleByKey(ctx, params.Key)
	if err != nil {
		return nil, internal.NewInternalError("failed to look up module", err)
	}
	if existing != nil {
		return nil, internal.NewConflictError("module key already exists", internal.ErrCodeValidationFailed)
	}

	module := &catalogdm.Module{
		Key:      params.Key,
		Name:     params.Name,
		IsCommon: params.IsCommon,
	}
	if err := s.repo.CreateModule(ctx, module, params.TenantCategories); err != nil {
		return nil, internal.NewInternalError("failed to create module", err)
	}

	entry := audit.Entry{
		ActorType: audit.ActorSuperAdmin,
		Action:    audit.ActionModuleCreated,
		Entity:    "module",
		EntityID:  &module.ID,
		Meta:      map[string]interface{}{"key": module.Key, "is_common": module.IsCommon},
	}
	if principal, ok := auth.PrincipalFromContext(ctx); ok && principal.IsSuperAdmin() {
		entry.SuperAdminID = &principal.SuperAdminID
	}
	s.auditor.Record(ctx, entry)

	return &ModuleView{
		ID:               module.ID,
		Key:              module.Key,
		Name:             module.Name,
		IsCommon:         module.IsCommon,
		TenantCategories: params.TenantCategories,
		CreatedAt:        module.CreatedAt,
	}, nil
}

func (s *Service) ListModules(ctx context.Context) ([]ModuleView, error) {
	modules, err := s.repo.ListModules(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list modules", err)
	}

	categories, err := s.repo.ListModuleCategories(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to list module categories", err)
	}

	views := make([]ModuleView, 0, len(modules))
	for _, module := range modules {
		views = append(views, ModuleView{
			ID:               module.ID,
			Key:              module.Key,
			Name:             module.Name,
			IsCommon:         module.IsCommon,
			TenantCategories: categories[module.ID],
			CreatedAt:        module.CreatedAt,
		})
	}
	return views, nil
}
