package entitlement

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/tenant-admin/internal/auth"
	"github.com/frahmantamala/tenant-admin/pkg/logger"
)

type stubEntitlementService struct {
	enabled map[string]bool
}

func (s stubEntitlementService) IsModuleEnabled(_ context.Context, _ int64, moduleKey string) (bool, error) {
	return s.enabled[moduleKey], nil
}

func (s stubEntitlementService) ListEnabledModules(context.Context, int64) ([]EnabledModule, error) {
	return nil, nil
}

func (s stubEntitlementService) TenantModuleOverview(context.Context, int64) ([]OverviewItem, error) {
	return nil, nil
}

func (s stubEntitlementService) OverrideTenantModule(context.Context, Override) (*OverviewItem, error) {
	return nil, nil
}

var _ = ginkgo.Describe("RequireModule", func() {
	var (
		guard *Guard
		next  http.Handler
	)

	ginkgo.BeforeEach(func() {
		guard = NewGuard(stubEntitlementService{enabled: map[string]bool{"STUDENTS": true}}, logger.LoggerWrapper())
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	request := func(principal *auth.Principal) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/students", nil)
		if principal != nil {
			req = req.WithContext(auth.ContextWithPrincipal(req.Context(), principal))
		}
		return req
	}

	ginkgo.It("should pass an entitled tenant through", func() {
		rec := httptest.NewRecorder()
		guard.RequireModule("STUDENTS")(next).ServeHTTP(rec, request(&auth.Principal{
			Type: auth.PrincipalTenantUser, TenantID: 1,
		}))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("should deny an unentitled module with 403 before the handler runs", func() {
		called := false
		marker := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

		rec := httptest.NewRecorder()
		guard.RequireModule("FEES")(marker).ServeHTTP(rec, request(&auth.Principal{
			Type: auth.PrincipalTenantUser, TenantID: 1,
		}))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		gomega.Expect(called).To(gomega.BeFalse())
	})

	ginkgo.It("should return 401 when no principal is resolved", func() {
		rec := httptest.NewRecorder()
		guard.RequireModule("STUDENTS")(next).ServeHTTP(rec, request(nil))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should let super admins through regardless of entitlement", func() {
		rec := httptest.NewRecorder()
		guard.RequireModule("FEES")(next).ServeHTTP(rec, request(&auth.Principal{
			Type: auth.PrincipalSuperAdmin, SuperAdminID: 9,
		}))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	})
})
