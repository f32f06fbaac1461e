package tenant

import (
	"context"
	"log/slog"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/frahmantamala/tenant-admin/internal/audit"
	subscriptiondm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/subscription"
	tenantdm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/tenant"
	"github.com/frahmantamala/tenant-admin/internal/tenant"
)

func TestTenantRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TenantRepository Suite")
}

type SQLiteTenant struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	Category  string    `gorm:"not null"`
	IsActive  bool      `gorm:"column:is_active;default:true"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SQLiteTenant) TableName() string { return "tenants" }

type SQLiteUser struct {
	ID               int64      `gorm:"primaryKey"`
	TenantID         int64      `gorm:"column:tenant_id;not null"`
	RoleID           int64      `gorm:"column:role_id;not null"`
	Email            string     `gorm:"uniqueIndex;not null"`
	Name             string
	PasswordHash     string     `gorm:"column:password_hash;not null"`
	IsActive         bool       `gorm:"column:is_active;default:true"`
	FailedLoginCount int        `gorm:"column:failed_login_count;default:0"`
	LockedUntil      *time.Time `gorm:"column:locked_until"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (SQLiteUser) TableName() string { return "users" }

type SQLiteRole struct {
	ID        int64     `gorm:"primaryKey"`
	TenantID  int64     `gorm:"column:tenant_id;not null"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SQLiteRole) TableName() string { return "roles" }

type SQLitePlan struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"uniqueIndex;not null"`
	Price        int64     `gorm:"default:0"`
	DurationDays int       `gorm:"column:duration_days;not null"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (SQLitePlan) TableName() string { return "plans" }

type SQLitePlanModule struct {
	ID       int64 `gorm:"primaryKey"`
	PlanID   int64 `gorm:"column:plan_id;not null"`
	ModuleID int64 `gorm:"column:module_id;not null"`
}

func (SQLitePlanModule) TableName() string { return "plan_modules" }

type SQLiteSubscription struct {
	ID        int64     `gorm:"primaryKey"`
	TenantID  int64     `gorm:"column:tenant_id;not null"`
	PlanID    int64     `gorm:"column:plan_id;not null"`
	Status    string    `gorm:"not null;default:'ACTIVE'"`
	StartDate time.Time `gorm:"column:start_date;not null"`
	EndDate   time.Time `gorm:"column:end_date;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (SQLiteSubscription) TableName() string { return "subscriptions" }

type SQLiteTenantModule struct {
	ID         int64      `gorm:"primaryKey"`
	TenantID   int64      `gorm:"column:tenant_id;not null"`
	ModuleID   int64      `gorm:"column:module_id;not null"`
	Enabled    bool       `gorm:"default:false"`
	Source     string     `gorm:"not null;default:'PLAN'"`
	UsageLimit *int       `gorm:"column:usage_limit"`
	ExpiresAt  *time.Time `gorm:"column:expires_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at"`
}

func (SQLiteTenantModule) TableName() string { return "tenant_modules" }

type staticHasher struct{}

func (staticHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

type captureRecorder struct {
	entries []audit.Entry
}

func (c *captureRecorder) Record(_ context.Context, entry audit.Entry) {
	c.entries = append(c.entries, entry)
}

var _ = Describe("Tenant onboarding", func() {
	var (
		db      *gorm.DB
		repo    *Repository
		service *tenant.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&SQLiteTenant{}, &SQLiteUser{}, &SQLiteRole{},
			&SQLitePlan{}, &SQLitePlanModule{},
			&SQLiteSubscription{}, &SQLiteTenantModule{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo = NewRepository(db)
		service = tenant.NewService(repo, staticHasher{}, &captureRecorder{}, slog.Default())
		ctx = context.Background()
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).NotTo(HaveOccurred())
	})

	seedTrialPlan := func(moduleIDs ...int64) int64 {
		plan := &SQLitePlan{Name: "TRIAL", DurationDays: 30, IsActive: true}
		Expect(db.Create(plan).Error).NotTo(HaveOccurred())
		for _, moduleID := range moduleIDs {
			Expect(db.Create(&SQLitePlanModule{PlanID: plan.ID, ModuleID: moduleID}).Error).NotTo(HaveOccurred())
		}
		return plan.ID
	}

	It("should create tenant, admin role, admin user, subscription and modules together", func() {
		seedTrialPlan(2, 3)

		result, err := service.Onboard(ctx, tenant.OnboardParams{
			Name:          "Bright Academy",
			Category:      tenantdm.CategorySchool,
			AdminEmail:    "admin@bright.test",
			AdminPassword: "secret123",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.PlanName).To(Equal("TRIAL"))
		Expect(result.AdminUserID).NotTo(BeZero())
		Expect(result.AdminRoleID).NotTo(BeZero())

		var user SQLiteUser
		Expect(db.Where("email = ?", "admin@bright.test").First(&user).Error).NotTo(HaveOccurred())
		Expect(user.TenantID).To(Equal(result.Tenant.ID))
		Expect(user.PasswordHash).To(Equal("hashed:secret123"))

		var sub SQLiteSubscription
		Expect(db.Where("tenant_id = ?", result.Tenant.ID).First(&sub).Error).NotTo(HaveOccurred())
		Expect(sub.Status).To(Equal(subscriptiondm.StatusActive))

		var moduleCount int64
		db.Model(&SQLiteTenantModule{}).Where("tenant_id = ?", result.Tenant.ID).Count(&moduleCount)
		Expect(moduleCount).To(Equal(int64(2)))
	})

	It("should roll everything back when the trial plan is missing", func() {
		_, err := service.Onboard(ctx, tenant.OnboardParams{
			Name:          "Bright Academy",
			Category:      tenantdm.CategorySchool,
			AdminEmail:    "admin@bright.test",
			AdminPassword: "secret123",
		})
		Expect(err).To(HaveOccurred())

		var tenantCount, userCount, roleCount int64
		db.Model(&SQLiteTenant{}).Count(&tenantCount)
		db.Model(&SQLiteUser{}).Count(&userCount)
		db.Model(&SQLiteRole{}).Count(&roleCount)
		Expect(tenantCount).To(BeZero())
		Expect(userCount).To(BeZero())
		Expect(roleCount).To(BeZero())
	})

	It("should reject a duplicate admin email before creating anything", func() {
		seedTrialPlan(2)

		_, err := service.Onboard(ctx, tenant.OnboardParams{
			Name: "First", Category: tenantdm.CategorySchool,
			AdminEmail: "admin@bright.test", AdminPassword: "secret123",
		})
		Expect(err).NotTo(HaveOccurred())

		_, err = service.Onboard(ctx, tenant.OnboardParams{
			Name: "Second", Category: tenantdm.CategoryClinic,
			AdminEmail: "admin@bright.test", AdminPassword: "secret123",
		})
		Expect(err).To(HaveOccurred())

		var tenantCount int64
		db.Model(&SQLiteTenant{}).Count(&tenantCount)
		Expect(tenantCount).To(Equal(int64(1)))
	})

	It("should list tenants with their active plan summary", func() {
		seedTrialPlan(2)

		result, err := service.Onboard(ctx, tenant.OnboardParams{
			Name: "Bright Academy", Category: tenantdm.CategorySchool,
			AdminEmail: "admin@bright.test", AdminPassword: "secret123",
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(db.Create(&SQLiteTenant{Name: "Dormant Gym", Category: tenantdm.CategoryGym, IsActive: true}).Error).NotTo(HaveOccurred())

		items, err := service.ListTenants(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(2))

		byName := map[string]tenant.ListItem{}
		for _, item := range items {
			byName[item.Name] = item
		}
		Expect(byName["Bright Academy"].Plan).To(Equal("TRIAL"))
		Expect(byName["Bright Academy"].ID).To(Equal(result.Tenant.ID))
		Expect(byName["Dormant Gym"].Plan).To(Equal("NONE"))
	})
})
