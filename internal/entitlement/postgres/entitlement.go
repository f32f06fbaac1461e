package entitlement

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/tenant-admin/internal/core/datamodel/catalog"
	"github.com/frahmantamala/tenant-admin/internal/core/datamodel/subscription"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetModuleByKey(ctx context.Context, key string) (*catalog.Module, error) {
	var module catalog.Module
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&module).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &module, nil
}

func (r *Repository) GetModuleByID(ctx context.Context, moduleID int64) (*catalog.Module, error) {
	var module catalog.Module
	err := r.db.WithContext(ctx).First(&module, moduleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &module, nil
}

func (r *Repository) ListModules(ctx context.Context) ([]catalog.Module, error) {
	var modules []catalog.Module
	err := r.db.WithContext(ctx).Order("id").Find(&modules).Error
	return modules, err
}

func (r *Repository) GetTenantModule(ctx context.Context, tenantID, moduleID int64) (*subscription.TenantModule, error) {
	var row subscription.TenantModule
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND module_id = ?", tenantID, moduleID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *Repository) ListTenantModules(ctx context.Context, tenantID int64) ([]subscription.TenantModule, error) {
	var rows []subscription.TenantModule
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).Find(&rows).Error
	return rows, err
}

func (r *Repository) ActivePlanModuleIDs(ctx context.Context, tenantID int64) (map[int64]bool, error) {
	query := `SELECT pm.module_id
	          FROM plan_modules pm
	          JOIN subscriptions s ON s.plan_id = pm.plan_id
	          WHERE s.tenant_id = ? AND s.status = ? AND s.end_date >= ?`

	rows, err := r.db.WithContext(ctx).Raw(query, tenantID, subscription.StatusActive, time.Now()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var moduleID int64
		if err := rows.Scan(&moduleID); err != nil {
			return nil, err
		}
		ids[moduleID] = true
	}
	return ids, rows.Err()
}

func (r *Repository) UpsertTenantModule(ctx context.Context, row *subscription.TenantModule) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "module_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"enabled", "source", "usage_limit", "expires_at", "updated_at",
		}),
	}).Create(row).Error
}
