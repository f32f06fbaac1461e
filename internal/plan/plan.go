package plan

import (
	"context"
	"time"

	"github.com/frahmantamala/tenant-admin/internal/core/datamodel/catalog"
)

// ModuleView is one module grant inside a plan.
type ModuleView struct {
	ID       int64  `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	IsCommon bool   `json:"is_common"`
}

// View is the plan read shape; Modules is populated on detail reads.
type View struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Price        int64        `json:"price"`
	DurationDays int          `json:"duration_days"`
	IsActive     bool         `json:"is_active"`
	Modules      []ModuleView `json:"modules,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

type CreateParams struct {
	Name         string
	Price        int64
	DurationDays int
	ModuleIDs    []int64
}

// UpdateParams patches a plan; nil fields are left unchanged.
type UpdateParams struct {
	Price        *int64
	DurationDays *int
	IsActive     *bool
}

type RepositoryAPI interface {
	CreatePlan(ctx context.Context, plan *catalog.Plan, moduleIDs []int64) error
	GetPlan(ctx context.Context, planID int64) (*catalog.Plan, error)
	GetPlanByName(ctx context.Context, name string) (*catalog.Plan, error)
	UpdatePlan(ctx context.Context, planID int64, fields map[string]interface{}) error
	ListPlans(ctx context.Context) ([]catalog.Plan, error)
	GetPlanModules(ctx context.Context, planID int64) ([]catalog.Module, error)
	AddPlanModules(ctx context.Context, planID int64, moduleIDs []int64) error
	RemovePlanModules(ctx context.Context, planID int64, moduleIDs []int64) error
	ListModulesByIDs(ctx context.Context, moduleIDs []int64) ([]catalog.Module, error)
	ListCommonModuleIDs(ctx context.Context) ([]int64, error)
}

type ServiceAPI interface {
	CreatePlan(ctx context.Context, params CreateParams) (*View, error)
	UpdatePlan(ctx context.Context, planID int64, params UpdateParams) (*View, error)
	ListPlans(ctx context.Context) ([]View, error)
	PlanDetails(ctx context.Context, planID int64) (*View, error)
	AddModules(ctx context.Context, planID int64, moduleIDs []int64) (*View, error)
	RemoveModules(ctx context.Context, planID int64, moduleIDs []int64) (*View, error)
	AddCommonModules(ctx context.Context, planID int64) (*View, error)
	SetupDefaultPlans(ctx context.Context) ([]View, error)
}
