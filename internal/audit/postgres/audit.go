package postgres

import (
	"context"

	"github.com/frahmantamala/tenant-admin/internal/audit"
	auditDatamodel "github.com/frahmantamala/tenant-admin/internal/core/datamodel/audit"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateAuditLog(ctx context.Context, entry audit.Entry) error {
	row := auditDatamodel.AuditLog{
		ActorType:    entry.ActorType,
		UserID:       entry.UserID,
		SuperAdminID: entry.SuperAdminID,
		TenantID:     entry.TenantID,
		Action:       entry.Action,
		Entity:       entry.Entity,
		EntityID:     entry.EntityID,
		Meta:         audit.MarshalMeta(entry.Meta),
		IPAddress:    entry.Origin.IPAddress,
		UserAgent:    entry.Origin.UserAgent,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) CreateLoginAttempt(ctx context.Context, attempt audit.Attempt) error {
	row := auditDatamodel.LoginAttempt{
		ActorType:    attempt.ActorType,
		UserID:       attempt.UserID,
		SuperAdminID: attempt.SuperAdminID,
		TenantID:     attempt.TenantID,
		Email:        attempt.Email,
		Success:      attempt.Success,
		Reason:       attempt.Reason,
		IPAddress:    attempt.Origin.IPAddress,
		UserAgent:    attempt.Origin.UserAgent,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) ListAuditLogs(ctx context.Context, filter audit.Filter) ([]audit.LogView, error) {
	query := r.db.WithContext(ctx).Model(&auditDatamodel.AuditLog{})

	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	var rows []auditDatamodel.AuditLog
	err := query.Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	views := make([]audit.LogView, 0, len(rows))
	for _, row := range rows {
		views = append(views, audit.LogView{
			ID:        row.ID,
			ActorType: row.ActorType,
			TenantID:  row.TenantID,
			Action:    row.Action,
			Entity:    row.Entity,
			EntityID:  row.EntityID,
			Meta:      row.Meta,
			IPAddress: row.IPAddress,
			CreatedAt: row.CreatedAt,
		})
	}
	return views, nil
}
