package catalog

import (
	"context"
	"time"

	catalogdm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/catalog"
)

// ModuleView is the module catalog read shape.
type ModuleView struct {
	ID               int64     `json:"id"`
	Key              string    `json:"key"`
	Name             string    `json:"name"`
	IsCommon         bool      `json:"is_common"`
	TenantCategories []string  `json:"tenant_categories,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type CreateModuleParams struct {
	Key              string
	Name             string
	IsCommon         bool
	TenantCategories []string
}

type RepositoryAPI interface {
	CreateModule(ctx context.Context, module *catalogdm.Module, categories []string) error
	GetModuleByKey(ctx context.Context, key string) (*catalogdm.Module, error)
	ListModules(ctx context.Context) ([]catalogdm.Module, error)
	ListModuleCategories(ctx context.Context) (map[int64][]string, error)
}

type ServiceAPI interface {
	CreateModule(ctx context.Context, params CreateModuleParams) (*ModuleView, error)
	ListModules(ctx context.Context) ([]ModuleView, error)
}
