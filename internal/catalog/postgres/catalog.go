package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	catalogdm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/catalog"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) CreateModule(ctx context.Context, module *catalogdm.Module, categories []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(module).Error; err != nil {
			return err
		}
		for _, category := range categories {
			row := &catalogdm.ModuleTenantCategory{ModuleID: module.ID, TenantCategory: category}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) GetModuleByKey(ctx context.Context, key string) (*catalogdm.Module, error) {
	var module catalogdm.Module
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&module).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &module, nil
}

func (r *Repository) ListModules(ctx context.Context) ([]catalogdm.Module, error) {
	var modules []catalogdm.Module
	err := r.db.WithContext(ctx).Order("id").Find(&modules).Error
	return modules, err
}

func (r *Repository) ListModuleCategories(ctx context.Context) (map[int64][]string, error) {
	var rows []catalogdm.ModuleTenantCategory
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	categories := make(map[int64][]string)
	for _, row := range rows {
		categories[row.ModuleID] = append(categories[row.ModuleID], row.TenantCategory)
	}
	return categories, nil
}
