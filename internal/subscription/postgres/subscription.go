package subscription

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/tenant-admin/internal/core/datamodel/catalog"
	subscriptiondm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/subscription"
	"github.com/frahmantamala/tenant-admin/internal/subscription"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// Transaction binds fn to one database transaction; the nested repository
// satisfies the same interface so service code composes freely.
func (r *Repository) Transaction(ctx context.Context, fn func(repo subscription.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
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

func (r *Repository) GetPlanModules(ctx context.Context, planID int64) ([]catalog.Module, error) {
	var modules []catalog.Module
	err := r.db.WithContext(ctx).
		Joins("JOIN plan_modules pm ON pm.module_id = modules.id").
		Where("pm.plan_id = ?", planID).
		Order("modules.id").
		Find(&modules).Error
	return modules, err
}

func (r *Repository) GetActiveSubscription(ctx context.Context, tenantID int64, now time.Time) (*subscriptiondm.Subscription, error) {
	var sub subscriptiondm.Subscription
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND end_date >= ?", tenantID, subscriptiondm.StatusActive, now).
		Order("end_date DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *Repository) CancelActiveSubscriptions(ctx context.Context, tenantID int64) error {
	return r.db.WithContext(ctx).
		Model(&subscriptiondm.Subscription{}).
		Where("tenant_id = ? AND status = ?", tenantID, subscriptiondm.StatusActive).
		Updates(map[string]interface{}{
			"status":     subscriptiondm.StatusCancelled,
			"updated_at": time.Now(),
		}).Error
}

func (r *Repository) CreateSubscription(ctx context.Context, sub *subscriptiondm.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *Repository) ListTenantModules(ctx context.Context, tenantID int64) ([]subscriptiondm.TenantModule, error) {
	var rows []subscriptiondm.TenantModule
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&rows).Error
	return rows, err
}

func (r *Repository) UpsertTenantModule(ctx context.Context, row *subscriptiondm.TenantModule) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"enabled", "source", "usage_limit", "expires_at", "updated_at",
		}),
	}).Create(row).Error
}

// DisableTenantModulesExcept turns off every entitlement row outside the keep
// set. Used by strict-mode sync only.
func (r *Repository) DisableTenantModulesExcept(ctx context.Context, tenantID int64, keepModuleIDs []int64) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&subscriptiondm.TenantModule{}).
		Where("tenant_id = ? AND enabled = ?", tenantID, true)
	if len(keepModuleIDs) > 0 {
		query = query.Where("module_id NOT IN ?", keepModuleIDs)
	}

	result := query.Updates(map[string]interface{}{
		"enabled":    false,
		"source":     subscriptiondm.SourcePlan,
		"updated_at": time.Now(),
	})
	return result.RowsAffected, result.Error
}

func (r *Repository) TenantIDsOnPlan(ctx context.Context, planID int64, now time.Time) ([]int64, error) {
	var tenantIDs []int64
	err := r.db.WithContext(ctx).
		Model(&subscriptiondm.Subscription{}).
		Where("plan_id = ? AND status = ? AND end_date >= ?", planID, subscriptiondm.StatusActive, now).
		Order("tenant_id").
		Pluck("tenant_id", &tenantIDs).Error
	return tenantIDs, err
}
