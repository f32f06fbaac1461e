package entitlement

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/tenant-admin/internal/audit"
	"github.com/frahmantamala/tenant-admin/internal/core/datamodel/catalog"
	"github.com/frahmantamala/tenant-admin/internal/core/datamodel/subscription"
)

func TestEntitlement(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Entitlement Module Suite")
}

type mockEntitlementRepository struct {
	modules     []catalog.Module
	rows        map[int64][]subscription.TenantModule
	planModules map[int64]map[int64]bool
	upserts     []subscription.TenantModule
}

func newMockEntitlementRepository() *mockEntitlementRepository {
	return &mockEntitlementRepository{
		modules: []catalog.Module{
			{ID: 1, Key: "dashboard", Name: "Dashboard", IsCommon: true},
			{ID: 2, Key: "students", Name: "Students"},
			{ID: 3, Key: "billing", Name: "Billing"},
			{ID: 4, Key: "inventory", Name: "Inventory"},
		},
		rows:        map[int64][]subscription.TenantModule{},
		planModules: map[int64]map[int64]bool{},
	}
}

func (m *mockEntitlementRepository) GetModuleByKey(_ context.Context, key string) (*catalog.Module, error) {
	for i := range m.modules {
		if m.modules[i].Key == key {
			return &m.modules[i], nil
		}
	}
	return nil, nil
}

func (m *mockEntitlementRepository) GetModuleByID(_ context.Context, moduleID int64) (*catalog.Module, error) {
	for i := range m.modules {
		if m.modules[i].ID == moduleID {
			return &m.modules[i], nil
		}
	}
	return nil, nil
}

func (m *mockEntitlementRepository) ListModules(_ context.Context) ([]catalog.Module, error) {
	return m.modules, nil
}

func (m *mockEntitlementRepository) GetTenantModule(_ context.Context, tenantID, moduleID int64) (*subscription.TenantModule, error) {
	for i, row := range m.rows[tenantID] {
		if row.ModuleID == moduleID {
			return &m.rows[tenantID][i], nil
		}
	}
	return nil, nil
}

func (m *mockEntitlementRepository) ListTenantModules(_ context.Context, tenantID int64) ([]subscription.TenantModule, error) {
	return m.rows[tenantID], nil
}

func (m *mockEntitlementRepository) ActivePlanModuleIDs(_ context.Context, tenantID int64) (map[int64]bool, error) {
	if ids, ok := m.planModules[tenantID]; ok {
		return ids, nil
	}
	return map[int64]bool{}, nil
}

func (m *mockEntitlementRepository) UpsertTenantModule(_ context.Context, row *subscription.TenantModule) error {
	m.upserts = append(m.upserts, *row)
	existing := m.rows[row.TenantID]
	for i := range existing {
		if existing[i].ModuleID == row.ModuleID {
			existing[i] = *row
			return nil
		}
	}
	m.rows[row.TenantID] = append(existing, *row)
	return nil
}

type noopRecorder struct {
	entries []audit.Entry
}

func (n *noopRecorder) Record(_ context.Context, entry audit.Entry) {
	n.entries = append(n.entries, entry)
}

var _ = ginkgo.Describe("EntitlementService", func() {
	var (
		service  *Service
		mockRepo *mockEntitlementRepository
		recorder *noopRecorder
		ctx      context.Context
	)

	const tenantID int64 = 10

	ginkgo.BeforeEach(func() {
		mockRepo = newMockEntitlementRepository()
		recorder = &noopRecorder{}
		service = NewService(mockRepo, recorder, slog.Default())
		ctx = context.Background()
	})

	ginkgo.Describe("IsModuleEnabled", func() {
		ginkgo.It("should always grant common modules, even with no tenant rows", func() {
			enabled, err := service.IsModuleEnabled(ctx, tenantID, "dashboard")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(enabled).To(gomega.BeTrue())
		})

		ginkgo.It("should deny a module with no entitlement row", func() {
			enabled, err := service.IsModuleEnabled(ctx, tenantID, "students")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(enabled).To(gomega.BeFalse())
		})

		ginkgo.It("should grant an enabled, unexpired row", func() {
			mockRepo.rows[tenantID] = []subscription.TenantModule{
				{TenantID: tenantID, ModuleID: 2, Enabled: true, Source: subscription.SourcePlan},
			}

			enabled, err := service.IsModuleEnabled(ctx, tenantID, "students")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(enabled).To(gomega.BeTrue())
		})

		ginkgo.It("should deny an enabled but expired row", func() {
			past := time.Now().Add(-time.Hour)
			mockRepo.rows[tenantID] = []subscription.TenantModule{
				{TenantID: tenantID, ModuleID: 2, Enabled: true, ExpiresAt: &past},
			}

			enabled, err := service.IsModuleEnabled(ctx, tenantID, "students")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(enabled).To(gomega.BeFalse())
		})

		ginkgo.It("should deny an unknown module key without error", func() {
			enabled, err := service.IsModuleEnabled(ctx, tenantID, "no-such-module")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(enabled).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("ListEnabledModules", func() {
		ginkgo.It("should merge common modules with current grants", func() {
			mockRepo.rows[tenantID] = []subscription.TenantModule{
				{TenantID: tenantID, ModuleID: 2, Enabled: true, Source: subscription.SourcePlan},
				{TenantID: tenantID, ModuleID: 3, Enabled: false, Source: subscription.SourcePlan},
			}

			enabled, err := service.ListEnabledModules(ctx, tenantID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			keys := make([]string, 0, len(enabled))
			for _, m := range enabled {
				keys = append(keys, m.Key)
			}
			gomega.Expect(keys).To(gomega.Equal([]string{"dashboard", "students"}))
		})
	})

	ginkgo.Describe("TenantModuleOverview", func() {
		ginkgo.It("should classify every catalog module", func() {
			mockRepo.planModules[tenantID] = map[int64]bool{2: true, 3: true}
			mockRepo.rows[tenantID] = []subscription.TenantModule{
				{TenantID: tenantID, ModuleID: 2, Enabled: true, Source: subscription.SourcePlan},
				{TenantID: tenantID, ModuleID: 3, Enabled: false, Source: subscription.SourcePlan},
			}

			overview, err := service.TenantModuleOverview(ctx, tenantID)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(overview).To(gomega.HaveLen(4))

			byKey := map[string]OverviewItem{}
			for _, item := range overview {
				byKey[item.Key] = item
			}
			gomega.Expect(byKey["dashboard"].Status).To(gomega.Equal(StatusActive))
			gomega.Expect(byKey["students"].Status).To(gomega.Equal(StatusActive))
			gomega.Expect(byKey["billing"].Status).To(gomega.Equal(StatusDisabled))
			gomega.Expect(byKey["inventory"].Status).To(gomega.Equal(StatusLocked))
		})
	})

	ginkgo.Describe("OverrideTenantModule", func() {
		ginkgo.It("should write a MANUAL row and record an audit entry", func() {
			item, err := service.OverrideTenantModule(ctx, Override{
				TenantID: tenantID, ModuleID: 4, Enabled: true,
			})

			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(item.Source).To(gomega.Equal(subscription.SourceManual))
			gomega.Expect(item.Status).To(gomega.Equal(StatusActive))
			gomega.Expect(mockRepo.upserts).To(gomega.HaveLen(1))
			gomega.Expect(mockRepo.upserts[0].Source).To(gomega.Equal(subscription.SourceManual))
			gomega.Expect(recorder.entries).To(gomega.HaveLen(1))
			gomega.Expect(recorder.entries[0].Action).To(gomega.Equal(audit.ActionTenantModuleEnabled))
		})

		ginkgo.It("should reject an unknown module", func() {
			_, err := service.OverrideTenantModule(ctx, Override{
				TenantID: tenantID, ModuleID: 999, Enabled: true,
			})
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})
})
