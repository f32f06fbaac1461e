package subscription

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/tenant-admin/internal/auth"
	"github.com/frahmantamala/tenant-admin/pkg/logger"
)

func TestSubscription(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Subscription Module Suite")
}

type stubSubscriptionService struct {
	active map[int64]bool
}

func (s stubSubscriptionService) AssignPlan(context.Context, int64, int64, SyncMode) (*ActiveSubscriptionView, error) {
	return nil, nil
}

func (s stubSubscriptionService) SyncTenantModulesFromPlan(context.Context, int64, int64, SyncMode) error {
	return nil
}

func (s stubSubscriptionService) SyncPlanToAllTenants(context.Context, int64, SyncMode) (*SyncReport, error) {
	return nil, nil
}

func (s stubSubscriptionService) ActiveSubscription(context.Context, int64) (*ActiveSubscriptionView, error) {
	return nil, nil
}

func (s stubSubscriptionService) HasActiveSubscription(_ context.Context, tenantID int64) (bool, error) {
	return s.active[tenantID], nil
}

func (s stubSubscriptionService) DefaultSyncMode() SyncMode { return SyncModeSafe }

var _ = ginkgo.Describe("RequireActiveSubscription", func() {
	var guard *Guard

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	request := func(principal *auth.Principal) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/access/STUDENTS", nil)
		if principal != nil {
			req = req.WithContext(auth.ContextWithPrincipal(req.Context(), principal))
		}
		return req
	}

	ginkgo.BeforeEach(func() {
		guard = NewGuard(stubSubscriptionService{active: map[int64]bool{1: true}}, logger.LoggerWrapper())
	})

	ginkgo.It("should pass a tenant with a current subscription", func() {
		rec := httptest.NewRecorder()
		guard.RequireActiveSubscription(next).ServeHTTP(rec, request(&auth.Principal{
			Type: auth.PrincipalTenantUser, TenantID: 1,
		}))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	})

	ginkgo.It("should deny an expired or missing subscription with 403", func() {
		rec := httptest.NewRecorder()
		guard.RequireActiveSubscription(next).ServeHTTP(rec, request(&auth.Principal{
			Type: auth.PrincipalTenantUser, TenantID: 2,
		}))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
	})

	ginkgo.It("should return 401 when no principal is resolved", func() {
		rec := httptest.NewRecorder()
		guard.RequireActiveSubscription(next).ServeHTTP(rec, request(nil))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("should let super admins through", func() {
		rec := httptest.NewRecorder()
		guard.RequireActiveSubscription(next).ServeHTTP(rec, request(&auth.Principal{
			Type: auth.PrincipalSuperAdmin, SuperAdminID: 3,
		}))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	})
})
