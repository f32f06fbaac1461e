package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/audit"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock repository for testing
type mockAuthRepository struct {
	tenantUsers   map[string]*TenantUserRecord
	superAdmins   map[string]*SuperAdminRecord
	rolePerms     map[int64][]string
	failCounts    map[int64]int
	resetCalls    int
	returnError   bool
	errorToReturn error
	counterError  error
}

func newMockAuthRepository() *mockAuthRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockAuthRepository{
		tenantUsers: map[string]*TenantUserRecord{
			"staff@school.test": {
				ID: 1, TenantID: 10, RoleID: 100,
				Email: "staff@school.test", Name: "Staff",
				PasswordHash: string(hashedPassword),
				IsActive:     true,
				RoleName:     "STAFF",
				TenantName:   "Bright Academy", TenantCategory: "SCHOOL", TenantActive: true,
			},
			"inactive@school.test": {
				ID: 2, TenantID: 10, RoleID: 100,
				Email: "inactive@school.test", PasswordHash: string(hashedPassword),
				IsActive: false, TenantActive: true,
			},
		},
		superAdmins: map[string]*SuperAdminRecord{
			"root@platform.test": {
				ID: 900, Email: "root@platform.test", Name: "Root",
				PasswordHash: string(hashedPassword), IsActive: true,
			},
		},
		rolePerms: map[int64][]string{
			100: {"students.view", "students.manage"},
		},
		failCounts: map[int64]int{},
	}
}

func (m *mockAuthRepository) FindTenantUserByEmail(_ context.Context, email string) (*TenantUserRecord, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.tenantUsers[email], nil
}

func (m *mockAuthRepository) FindTenantUserByID(_ context.Context, userID int64) (*TenantUserRecord, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	for _, u := range m.tenantUsers {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockAuthRepository) FindSuperAdminByEmail(_ context.Context, email string) (*SuperAdminRecord, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.superAdmins[email], nil
}

func (m *mockAuthRepository) GetRolePermissionKeys(_ context.Context, roleID int64) ([]string, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.rolePerms[roleID], nil
}

func (m *mockAuthRepository) RegisterFailedLogin(_ context.Context, _ string, accountID int64, threshold int, lockFor time.Duration) (int, error) {
	if m.counterError != nil {
		return 0, m.counterError
	}
	m.failCounts[accountID]++
	count := m.failCounts[accountID]
	if count >= threshold {
		lockedUntil := time.Now().Add(lockFor)
		for _, u := range m.tenantUsers {
			if u.ID == accountID {
				u.LockedUntil = &lockedUntil
			}
		}
		for _, a := range m.superAdmins {
			if a.ID == accountID {
				a.LockedUntil = &lockedUntil
			}
		}
	}
	return count, nil
}

func (m *mockAuthRepository) ResetLoginFailures(_ context.Context, _ string, accountID int64) error {
	m.resetCalls++
	m.failCounts[accountID] = 0
	for _, u := range m.tenantUsers {
		if u.ID == accountID {
			u.LockedUntil = nil
		}
	}
	return nil
}

// Mock attempt recorder
type mockAttemptRecorder struct {
	attempts    []audit.Attempt
	recordError error
}

func (m *mockAttemptRecorder) RecordLoginAttempt(_ context.Context, attempt audit.Attempt) error {
	m.attempts = append(m.attempts, attempt)
	return m.recordError
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service  *Service
		mockRepo *mockAuthRepository
		attempts *mockAttemptRecorder
		tokenGen *JWTTokenGenerator
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockAuthRepository()
		attempts = &mockAttemptRecorder{}
		tokenGen = NewJWTTokenGenerator("test-secret", 15*time.Minute, 30*time.Minute)
		service = NewService(mockRepo, tokenGen, attempts,
			LockoutPolicy{MaxFailedLogins: 5, LockWindow: 15 * time.Minute},
			bcrypt.MinCost, slog.Default())
		ctx = context.Background()
	})

	ginkgo.Describe("AuthenticateTenantUser", func() {
		ginkgo.It("should issue a token with identity-only claims on success", func() {
			result, err := service.AuthenticateTenantUser(ctx, LoginDTO{
				Email: "staff@school.test", Password: "correct_password",
			}, Origin{IPAddress: "10.0.0.1"})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(result.Token).NotTo(gomega.BeEmpty())
			gomega.Expect(result.Tenant.Name).To(gomega.Equal("Bright Academy"))

			claims, err := tokenGen.ValidateToken(result.Token)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(int64(1)))
			gomega.Expect(claims.TenantID).To(gomega.Equal(int64(10)))
			gomega.Expect(claims.Type).To(gomega.Equal(PrincipalTenantUser))
		})

		ginkgo.It("should return the same error for unknown email and wrong password", func() {
			_, unknownErr := service.AuthenticateTenantUser(ctx, LoginDTO{
				Email: "nobody@school.test", Password: "whatever",
			}, Origin{})
			_, wrongErr := service.AuthenticateTenantUser(ctx, LoginDTO{
				Email: "staff@school.test", Password: "wrong_password",
			}, Origin{})

			gomega.Expect(unknownErr).To(gomega.Equal(internal.ErrInvalidCredentials))
			gomega.Expect(wrongErr).To(gomega.Equal(internal.ErrInvalidCredentials))
		})

		ginkgo.It("should treat inactive accounts as invalid credentials", func() {
			_, err := service.AuthenticateTenantUser(ctx, LoginDTO{
				Email: "inactive@school.test", Password: "correct_password",
			}, Origin{})

			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
		})

		ginkgo.It("should lock the account after the threshold and refuse even correct passwords", func() {
			for i := 0; i < 5; i++ {
				_, err := service.AuthenticateTenantUser(ctx, LoginDTO{
					Email: "staff@school.test", Password: "wrong_password",
				}, Origin{})
				gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
			}

			_, err := service.AuthenticateTenantUser(ctx, LoginDTO{
				Email: "staff@school.test", Password: "correct_password",
			}, Origin{})
			gomega.Expect(err).To(gomega.Equal(internal.ErrAccountLocked))
		})

		ginkgo.It("should reset the failure counter on successful login", func() {
			for i := 0; i < 3; i++ {
				service.AuthenticateTenantUser(ctx, LoginDTO{
					Email: "staff@school.test", Password: "wrong_password",
				}, Origin{})
			}

			_, err := service.AuthenticateTenantUser(ctx, LoginDTO{
				Email: "staff@school.test", Password: "correct_password",
			}, Origin{})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(mockRepo.failCounts[1]).To(gomega.Equal(0))
		})

		ginkgo.It("should abort the login when the failure counter cannot be written", func() {
			mockRepo.counterError = errors.New("db down")

			_, err := service.AuthenticateTenantUser(ctx, LoginDTO{
				Email: "staff@school.test", Password: "wrong_password",
			}, Origin{})

			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeInternal))
		})

		ginkgo.It("should not fail the login when attempt recording fails", func() {
			attempts.recordError = errors.New("audit store down")

			result, err := service.AuthenticateTenantUser(ctx, LoginDTO{
				Email: "staff@school.test", Password: "correct_password",
			}, Origin{})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(result.Token).NotTo(gomega.BeEmpty())
		})

		ginkgo.It("should record every attempt with its outcome", func() {
			service.AuthenticateTenantUser(ctx, LoginDTO{
				Email: "staff@school.test", Password: "wrong_password",
			}, Origin{IPAddress: "10.0.0.2", UserAgent: "test-agent"})
			service.AuthenticateTenantUser(ctx, LoginDTO{
				Email: "staff@school.test", Password: "correct_password",
			}, Origin{})

			gomega.Expect(attempts.attempts).To(gomega.HaveLen(2))
			gomega.Expect(attempts.attempts[0].Success).To(gomega.BeFalse())
			gomega.Expect(attempts.attempts[0].Origin.IPAddress).To(gomega.Equal("10.0.0.2"))
			gomega.Expect(attempts.attempts[1].Success).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("AuthenticateSuperAdmin", func() {
		ginkgo.It("should issue a platform token with the super admin role claim", func() {
			result, err := service.AuthenticateSuperAdmin(ctx, LoginDTO{
				Email: "root@platform.test", Password: "correct_password",
			}, Origin{})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			claims, err := tokenGen.ValidateToken(result.Token)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.SuperAdminID).To(gomega.Equal(int64(900)))
			gomega.Expect(claims.Role).To(gomega.Equal(PrincipalSuperAdmin))
		})

		ginkgo.It("should lock super admins under the same policy as tenant users", func() {
			for i := 0; i < 5; i++ {
				service.AuthenticateSuperAdmin(ctx, LoginDTO{
					Email: "root@platform.test", Password: "wrong_password",
				}, Origin{})
			}

			_, err := service.AuthenticateSuperAdmin(ctx, LoginDTO{
				Email: "root@platform.test", Password: "correct_password",
			}, Origin{})
			gomega.Expect(err).To(gomega.Equal(internal.ErrAccountLocked))
		})
	})

	ginkgo.Describe("ResolveTenantPrincipal", func() {
		ginkgo.It("should rebuild permissions from the store, not the token", func() {
			claims := &Claims{UserID: 1, TenantID: 10, RoleID: 100, Type: PrincipalTenantUser}

			principal, err := service.ResolveTenantPrincipal(ctx, claims)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(principal.Permissions.Has("students.view")).To(gomega.BeTrue())

			// Revoke a permission in the store; the next resolution must see it.
			mockRepo.rolePerms[100] = []string{"students.view"}

			principal, err = service.ResolveTenantPrincipal(ctx, claims)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(principal.Permissions.Has("students.manage")).To(gomega.BeFalse())
		})

		ginkgo.It("should reject principals whose account went inactive", func() {
			mockRepo.tenantUsers["staff@school.test"].IsActive = false

			_, err := service.ResolveTenantPrincipal(ctx, &Claims{UserID: 1, Type: PrincipalTenantUser})
			gomega.Expect(err).To(gomega.Equal(internal.ErrAccountInactive))
		})

		ginkgo.It("should reject principals whose tenant was deactivated", func() {
			mockRepo.tenantUsers["staff@school.test"].TenantActive = false

			_, err := service.ResolveTenantPrincipal(ctx, &Claims{UserID: 1, Type: PrincipalTenantUser})
			gomega.Expect(err).To(gomega.Equal(internal.ErrTenantDisabled))
		})
	})

	ginkgo.Describe("ValidateToken", func() {
		ginkgo.It("should reject expired tokens with a distinct error", func() {
			expiredGen := NewJWTTokenGenerator("test-secret", -time.Minute, -time.Minute)
			token, err := expiredGen.GenerateTenantToken(mockRepo.tenantUsers["staff@school.test"])
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.ValidateToken(token)
			gomega.Expect(err).To(gomega.Equal(internal.ErrTokenExpired))
		})

		ginkgo.It("should reject tokens signed with a different secret", func() {
			otherGen := NewJWTTokenGenerator("other-secret", time.Minute, time.Minute)
			token, err := otherGen.GenerateTenantToken(mockRepo.tenantUsers["staff@school.test"])
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.ValidateToken(token)
			gomega.Expect(err).To(gomega.Equal(internal.ErrUnauthenticated))
		})
	})
})

var _ = ginkgo.Describe("DefaultAuthorizer", func() {
	authorizer := NewPermissionAuthorizer()

	ginkgo.It("should allow a principal holding the permission", func() {
		principal := &Principal{
			Type:        PrincipalTenantUser,
			Permissions: NewPermissionSet([]string{"billing.view"}),
		}

		ok, err := authorizer.HasPermission(context.Background(), principal, "billing.view")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeTrue())
	})

	ginkgo.It("should deny a missing permission without error", func() {
		principal := &Principal{
			Type:        PrincipalTenantUser,
			Permissions: NewPermissionSet([]string{"billing.view"}),
		}

		ok, err := authorizer.HasPermission(context.Background(), principal, "billing.manage")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("should always allow super admins", func() {
		principal := &Principal{Type: PrincipalSuperAdmin}

		ok, err := authorizer.HasPermission(context.Background(), principal, "anything.at.all")
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeTrue())
	})
})
