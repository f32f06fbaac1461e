package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/frahmantamala/tenant-admin/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

const tenantUserColumns = `
	u.id, u.tenant_id, u.role_id, u.email, u.name, u.password_hash,
	u.is_active, u.failed_login_count, u.locked_until,
	r.name AS role_name,
	t.name AS tenant_name, t.category AS tenant_category, t.is_active AS tenant_active`

func (r *Repository) scanTenantUser(row *sql.Row) (*auth.TenantUserRecord, error) {
	var user auth.TenantUserRecord
	err := row.Scan(
		&user.ID, &user.TenantID, &user.RoleID, &user.Email, &user.Name, &user.PasswordHash,
		&user.IsActive, &user.FailedLoginCount, &user.LockedUntil,
		&user.RoleName,
		&user.TenantName, &user.TenantCategory, &user.TenantActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindTenantUserByEmail(ctx context.Context, email string) (*auth.TenantUserRecord, error) {
	query := `SELECT` + tenantUserColumns + `
	          FROM users u
	          JOIN roles r ON r.id = u.role_id
	          JOIN tenants t ON t.id = u.tenant_id
	          WHERE u.email = ?`

	return r.scanTenantUser(r.db.WithContext(ctx).Raw(query, email).Row())
}

func (r *Repository) FindTenantUserByID(ctx context.Context, userID int64) (*auth.TenantUserRecord, error) {
	query := `SELECT` + tenantUserColumns + `
	          FROM users u
	          JOIN roles r ON r.id = u.role_id
	          JOIN tenants t ON t.id = u.tenant_id
	          WHERE u.id = ?`

	return r.scanTenantUser(r.db.WithContext(ctx).Raw(query, userID).Row())
}

func (r *Repository) FindSuperAdminByEmail(ctx context.Context, email string) (*auth.SuperAdminRecord, error) {
	query := `SELECT id, email, name, password_hash, is_active, failed_login_count, locked_until
	          FROM super_admins
	          WHERE email = ?`

	var admin auth.SuperAdminRecord
	row := r.db.WithContext(ctx).Raw(query, email).Row()
	err := row.Scan(&admin.ID, &admin.Email, &admin.Name, &admin.PasswordHash,
		&admin.IsActive, &admin.FailedLoginCount, &admin.LockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

func (r *Repository) GetRolePermissionKeys(ctx context.Context, roleID int64) ([]string, error) {
	query := `SELECT p.key
	          FROM permissions p
	          JOIN role_permissions rp ON rp.permission_id = p.id
	          WHERE rp.role_id = ?
	          ORDER BY p.key`

	rows, err := r.db.WithContext(ctx).Raw(query, roleID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func accountTable(principalType string) string {
	if principalType == auth.PrincipalSuperAdmin {
		return "super_admins"
	}
	return "users"
}

// RegisterFailedLogin increments the failure counter and, once the threshold
// is reached, sets the lock window in the same transaction so a burst of
// concurrent failures cannot skip the lock.
func (r *Repository) RegisterFailedLogin(ctx context.Context, principalType string, accountID int64, threshold int, lockFor time.Duration) (int, error) {
	table := accountTable(principalType)
	var count int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`UPDATE `+table+` SET failed_login_count = failed_login_count + 1, updated_at = ? WHERE id = ?`,
			time.Now(), accountID,
		).Error; err != nil {
			return err
		}

		row := tx.Raw(`SELECT failed_login_count FROM `+table+` WHERE id = ?`, accountID).Row()
		if err := row.Scan(&count); err != nil {
			return err
		}

		if count >= threshold {
			lockedUntil := time.Now().Add(lockFor)
			return tx.Exec(
				`UPDATE `+table+` SET locked_until = ? WHERE id = ?`,
				lockedUntil, accountID,
			).Error
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository) ResetLoginFailures(ctx context.Context, principalType string, accountID int64) error {
	table := accountTable(principalType)
	return r.db.WithContext(ctx).Exec(
		`UPDATE `+table+` SET failed_login_count = 0, locked_until = NULL, updated_at = ? WHERE id = ?`,
		time.Now(), accountID,
	).Error
}
