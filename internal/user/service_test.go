package user

import (
	"context"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/audit"
	"github.com/frahmantamala/tenant-admin/internal/auth"
	tenantdm "github.com/frahmantamala/tenant-admin/internal/core/datamodel/tenant"
	"github.com/frahmantamala/tenant-admin/internal/entitlement"
	"github.com/frahmantamala/tenant-admin/internal/navigation"
	"github.com/frahmantamala/tenant-admin/internal/subscription"
	"github.com/frahmantamala/tenant-admin/pkg/logger"
)

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
}

type mockUserRepository struct {
	usersByEmail map[string]*tenantdm.User
	roles        map[int64]*tenantdm.Role
	created      []*tenantdm.User
	nextID       int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		usersByEmail: make(map[string]*tenantdm.User),
		roles:        make(map[int64]*tenantdm.Role),
		nextID:       100,
	}
}

func (m *mockUserRepository) CreateUser(_ context.Context, u *tenantdm.User) error {
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	m.usersByEmail[u.Email] = u
	m.created = append(m.created, u)
	return nil
}

func (m *mockUserRepository) GetUserByEmail(_ context.Context, email string) (*tenantdm.User, error) {
	return m.usersByEmail[email], nil
}

func (m *mockUserRepository) GetRole(_ context.Context, roleID int64) (*tenantdm.Role, error) {
	return m.roles[roleID], nil
}

func (m *mockUserRepository) ListUsers(_ context.Context, tenantID int64) ([]View, error) {
	var views []View
	for _, u := range m.created {
		if u.TenantID == tenantID {
			views = append(views, View{ID: u.ID, Email: u.Email, RoleID: u.RoleID, IsActive: u.IsActive})
		}
	}
	return views, nil
}

func (m *mockUserRepository) SetUserActive(_ context.Context, tenantID, userID int64, active bool) error {
	for _, u := range m.created {
		if u.ID == userID && u.TenantID == tenantID {
			u.IsActive = active
			return nil
		}
	}
	return internal.ErrUserNotFound
}

type staticHasher struct{}

func (staticHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

type stubSubscriptions struct {
	view *subscription.ActiveSubscriptionView
}

func (s stubSubscriptions) ActiveSubscription(context.Context, int64) (*subscription.ActiveSubscriptionView, error) {
	return s.view, nil
}

type stubEntitlements struct {
	modules []entitlement.EnabledModule
}

func (s stubEntitlements) ListEnabledModules(context.Context, int64) ([]entitlement.EnabledModule, error) {
	return s.modules, nil
}

type captureRecorder struct {
	entries []audit.Entry
}

func (c *captureRecorder) Record(_ context.Context, entry audit.Entry) {
	c.entries = append(c.entries, entry)
}

var _ = ginkgo.Describe("User Service", func() {
	var (
		repo     *mockUserRepository
		recorder *captureRecorder
		svc      *Service
	)

	newService := func(subView *subscription.ActiveSubscriptionView, modules []entitlement.EnabledModule) *Service {
		sidebarSvc := navigation.NewService(stubEntitlements{modules: modules}, logger.LoggerWrapper())
		return NewService(
			repo,
			staticHasher{},
			stubSubscriptions{view: subView},
			stubEntitlements{modules: modules},
			sidebarSvc,
			recorder,
			logger.LoggerWrapper(),
		)
	}

	ginkgo.BeforeEach(func() {
		repo = newMockUserRepository()
		repo.roles[7] = &tenantdm.Role{ID: 7, TenantID: 1, Name: "Staff"}
		repo.roles[8] = &tenantdm.Role{ID: 8, TenantID: 2, Name: "Other Tenant Role"}
		recorder = &captureRecorder{}
		svc = newService(nil, nil)
	})

	ginkgo.Describe("CreateUser", func() {
		ginkgo.It("should hash the password and never store it in clear", func() {
			view, err := svc.CreateUser(context.Background(), 1, CreateParams{
				Email: "staff@school.test", Password: "secret123", RoleID: 7,
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(view.RoleName).To(gomega.Equal("Staff"))
			gomega.Expect(repo.created[0].PasswordHash).To(gomega.Equal("hashed:secret123"))
		})

		ginkgo.It("should reject a role belonging to another tenant as if it did not exist", func() {
			_, err := svc.CreateUser(context.Background(), 1, CreateParams{
				Email: "staff@school.test", Password: "secret123", RoleID: 8,
			})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrRoleNotFound))
		})

		ginkgo.It("should reject a duplicate email", func() {
			_, err := svc.CreateUser(context.Background(), 1, CreateParams{
				Email: "staff@school.test", Password: "secret123", RoleID: 7,
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = svc.CreateUser(context.Background(), 1, CreateParams{
				Email: "staff@school.test", Password: "other-secret", RoleID: 7,
			})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrEmailTaken))
		})

		ginkgo.It("should record an audit entry with the new user id", func() {
			view, err := svc.CreateUser(context.Background(), 1, CreateParams{
				Email: "staff@school.test", Password: "secret123", RoleID: 7,
			})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(recorder.entries).To(gomega.HaveLen(1))
			gomega.Expect(recorder.entries[0].Action).To(gomega.Equal(audit.ActionUserCreated))
			gomega.Expect(*recorder.entries[0].EntityID).To(gomega.Equal(view.ID))
		})
	})

	ginkgo.Describe("MeConfig", func() {
		principal := &auth.Principal{
			Type:     auth.PrincipalTenantUser,
			UserID:   42,
			TenantID: 1,
			RoleName: "Admin",
			Email:    "admin@school.test",
			Tenant:   auth.TenantInfo{ID: 1, Name: "Springfield High", Category: "SCHOOL"},
			Permissions: auth.NewPermissionSet([]string{
				"STUDENT_VIEW", "USER_VIEW",
			}),
		}

		ginkgo.It("should assemble identity, subscription, modules, permissions and sidebar", func() {
			endDate := time.Now().Add(20 * 24 * time.Hour)
			svc = newService(
				&subscription.ActiveSubscriptionView{ID: 5, PlanID: 2, PlanName: "BASIC", Status: "ACTIVE", EndDate: endDate},
				[]entitlement.EnabledModule{
					{ModuleID: 1, Key: "STUDENTS", Name: "Students", Source: "PLAN"},
				},
			)

			config, err := svc.MeConfig(context.Background(), principal)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(config.User.Email).To(gomega.Equal("admin@school.test"))
			gomega.Expect(config.Tenant.Category).To(gomega.Equal("SCHOOL"))
			gomega.Expect(config.Subscription.PlanName).To(gomega.Equal("BASIC"))
			gomega.Expect(config.Modules).To(gomega.HaveLen(1))
			gomega.Expect(config.Permissions).To(gomega.Equal([]string{"STUDENT_VIEW", "USER_VIEW"}))
			gomega.Expect(config.UI.Sidebar).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("should return a nil subscription when none is active", func() {
			svc = newService(nil, nil)

			config, err := svc.MeConfig(context.Background(), principal)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(config.Subscription).To(gomega.BeNil())
		})

		ginkgo.It("should refuse a super admin principal", func() {
			_, err := svc.MeConfig(context.Background(), &auth.Principal{Type: auth.PrincipalSuperAdmin})
			gomega.Expect(err).To(gomega.MatchError(internal.ErrWrongPrincipalType))
		})
	})
})
