package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/core/datamodel/catalog"
	subscriptiondm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/subscription"
	tenantdm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/tenant"
	"github.com/frahmantamala/tenant-admin/internal/tenant"
)

const trialPlanName = "TRIAL"

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// Onboard creates everything a new tenant needs in one transaction. Any
// failure, including a missing trial plan, rolls the whole thing back.
func (r *Repository) Onboard(ctx context.Context, t *tenantdm.Tenant, adminEmail, passwordHash string) (*tenant.OnboardResult, error) {
	var result *tenant.OnboardResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing tenantdm.User
		err := tx.Where("email = ?", adminEmail).First(&existing).Error
		if err == nil {
			return internal.ErrEmailTaken
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(t).Error; err != nil {
			return err
		}

		adminRole := &tenantdm.Role{TenantID: t.ID, Name: "Admin"}
		if err := tx.Create(adminRole).Error; err != nil {
			return err
		}

		adminUser := &tenantdm.User{
			TenantID:     t.ID,
			RoleID:       adminRole.ID,
			Email:        adminEmail,
			PasswordHash: passwordHash,
			IsActive:     true,
		}
		if err := tx.Create(adminUser).Error; err != nil {
			return err
		}

		var trialPlan catalog.Plan
		err = tx.Where("name = ? AND is_active = ?", trialPlanName, true).First(&trialPlan).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("trial plan not configured")
			}
			return err
		}

		now := time.Now()
		sub := &subscriptiondm.Subscription{
			TenantID:  t.ID,
			PlanID:    trialPlan.ID,
			Status:    subscriptiondm.StatusActive,
			StartDate: now,
			EndDate:   now.AddDate(0, 0, trialPlan.DurationDays),
		}
		if err := tx.Create(sub).Error; err != nil {
			return err
		}

		var planModules []catalog.PlanModule
		if err := tx.Where("plan_id = ?", trialPlan.ID).Find(&planModules).Error; err != nil {
			return err
		}
		for _, pm := range planModules {
			row := &subscriptiondm.TenantModule{
				TenantID: t.ID,
				ModuleID: pm.ModuleID,
				Enabled:  true,
				Source:   subscriptiondm.SourcePlan,
			}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}

		result = &tenant.OnboardResult{
			Tenant:       *t,
			AdminUserID:  adminUser.ID,
			AdminRoleID:  adminRole.ID,
			PlanName:     trialPlan.Name,
			SubscribedTo: sub.EndDate,
		}
		return nil
	})
	if err != nil {
		var appErr *internal.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, internal.NewInternalError("tenant onboarding failed", err)
	}
	return result, nil
}

func (r *Repository) GetTenant(ctx context.Context, tenantID int64) (*tenantdm.Tenant, error) {
	var t tenantdm.Tenant
	err := r.db.WithContext(ctx).First(&t, tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repository) ListTenants(ctx context.Context) ([]tenantdm.Tenant, error) {
	var tenants []tenantdm.Tenant
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tenants).Error
	return tenants, err
}

func (r *Repository) ActiveSubscriptionsByTenant(ctx context.Context, now time.Time) (map[int64]tenant.ActivePlanSummary, error) {
	query := `SELECT s.tenant_id, p.name, s.end_date
	          FROM subscriptions s
	          JOIN plans p ON p.id = s.plan_id
	          WHERE s.status = ? AND s.end_date >= ?`

	rows, err := r.db.WithContext(ctx).Raw(query, subscriptiondm.StatusActive, now).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make(map[int64]tenant.ActivePlanSummary)
	for rows.Next() {
		var tenantID int64
		var planName string
		var endDate time.Time
		if err := rows.Scan(&tenantID, &planName, &endDate); err != nil {
			return nil, err
		}
		summaries[tenantID] = tenant.ActivePlanSummary{PlanName: planName, ExpiresAt: endDate}
	}
	return summaries, rows.Err()
}

func (r *Repository) SetTenantActive(ctx context.Context, tenantID int64, active bool) error {
	return r.db.WithContext(ctx).
		Model(&tenantdm.Tenant{}).
		Where("id = ?", tenantID).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now(),
		}).Error
}
