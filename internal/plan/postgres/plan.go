package plan

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/tenant-admin/internal/core/datamodel/catalog"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) CreatePlan(ctx context.Context, plan *catalog.Plan, moduleIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plan).Error; err != nil {
			return err
		}
		for _, moduleID := range moduleIDs {
			if err := tx.Create(&catalog.PlanModule{PlanID: plan.ID, ModuleID: moduleID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) GetPlan(ctx context.Context, planID int64) (*catalog.Plan, error) {
	var plan catalog.Plan
	err := r.db.WithContext(ctx).First(&plan, planID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *Repository) GetPlanByName(ctx context.Context, name string) (*catalog.Plan, error) {
	var plan catalog.Plan
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *Repository) UpdatePlan(ctx context.Context, planID int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&catalog.Plan{}).
		Where("id = ?", planID).
		Updates(fields).Error
}

func (r *Repository) ListPlans(ctx context.Context) ([]catalog.Plan, error) {
	var plans []catalog.Plan
	err := r.db.WithContext(ctx).Order("id").Find(&plans).Error
	return plans, err
}

func (r *Repository) GetPlanModules(ctx context.Context, planID int64) ([]catalog.Module, error) {
	var modules []catalog.Module
	err := r.db.WithContext(ctx).
		Joins("JOIN plan_modules pm ON pm.module_id = modules.id").
		Where("pm.plan_id = ?", planID).
		Order("modules.id").
		Find(&modules).Error
	return modules, err
}

func (r *Repository) AddPlanModules(ctx context.Context, planID int64, moduleIDs []int64) error {
	rows := make([]catalog.PlanModule, 0, len(moduleIDs))
	for _, moduleID := range moduleIDs {
		rows = append(rows, catalog.PlanModule{PlanID: planID, ModuleID: moduleID})
	}
	// Re-adding an existing grant is a no-op.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
}

func (r *Repository) RemovePlanModules(ctx context.Context, planID int64, moduleIDs []int64) error {
	return r.db.WithContext(ctx).
		Where("plan_id = ? AND module_id IN ?", planID, moduleIDs).
		Delete(&catalog.PlanModule{}).Error
}

func (r *Repository) ListModulesByIDs(ctx context.Context, moduleIDs []int64) ([]catalog.Module, error) {
	var modules []catalog.Module
	err := r.db.WithContext(ctx).Where("id IN ?", moduleIDs).Find(&modules).Error
	return modules, err
}

func (r *Repository) ListCommonModuleIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&catalog.Module{}).
		Where("is_common = ?", true).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}
