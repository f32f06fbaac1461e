package navigation

import (
	"encoding/json"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/frahmantamala/tenant-admin/internal/auth"
)

func TestNavigation(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Navigation Module Suite")
}

var _ = ginkgo.Describe("BuildSidebar", func() {
	keysOf := func(nodes []Node) []string {
		keys := make([]string, 0, len(nodes))
		for _, node := range nodes {
			keys = append(keys, node.Key)
		}
		return keys
	}

	find := func(nodes []Node, key string) *Node {
		for i := range nodes {
			if nodes[i].Key == key {
				return &nodes[i]
			}
		}
		return nil
	}

	ginkgo.It("should nest an enabled module leaf under its group for a school", func() {
		tree := BuildSidebar("SCHOOL",
			[]string{"EDUCATION", "STUDENTS"},
			auth.NewPermissionSet([]string{"STUDENT_VIEW", "USER_VIEW"}))

		gomega.Expect(keysOf(tree)).To(gomega.Equal([]string{"DASHBOARD", "EDUCATION", "ADMIN"}))

		education := find(tree, "EDUCATION")
		gomega.Expect(education).NotTo(gomega.BeNil())
		gomega.Expect(keysOf(education.Children)).To(gomega.Equal([]string{"STUDENTS"}))

		admin := find(tree, "ADMIN")
		gomega.Expect(admin).NotTo(gomega.BeNil())
		gomega.Expect(keysOf(admin.Children)).To(gomega.Equal([]string{"USERS"}))
	})

	ginkgo.It("should drop domains the tenant category cannot see", func() {
		tree := BuildSidebar("RESTAURANT",
			[]string{"EDUCATION", "STUDENTS", "HOSPITALITY", "MENU"},
			auth.NewPermissionSet([]string{"STUDENT_VIEW", "MENU_VIEW"}))

		gomega.Expect(find(tree, "EDUCATION")).To(gomega.BeNil())
		gomega.Expect(find(tree, "HOSPITALITY")).NotTo(gomega.BeNil())
	})

	ginkgo.It("should drop leaves whose module is not enabled", func() {
		tree := BuildSidebar("SCHOOL",
			[]string{"STUDENTS"},
			auth.NewPermissionSet([]string{"STUDENT_VIEW", "ATTENDANCE_VIEW"}))

		education := find(tree, "EDUCATION")
		gomega.Expect(education).NotTo(gomega.BeNil())
		gomega.Expect(keysOf(education.Children)).To(gomega.Equal([]string{"STUDENTS"}))
	})

	ginkgo.It("should keep a parent alive through one surviving child even when the parent's own module is disabled", func() {
		// EDUCATION the group module is not enabled, but STUDENTS is; the
		// surviving child forces the group's visibility.
		tree := BuildSidebar("SCHOOL",
			[]string{"STUDENTS"},
			auth.NewPermissionSet([]string{"STUDENT_VIEW"}))

		gomega.Expect(find(tree, "EDUCATION")).NotTo(gomega.BeNil())
	})

	ginkgo.It("should hide permission-gated leaves when the permission set is empty", func() {
		tree := BuildSidebar("SCHOOL",
			[]string{"STUDENTS"},
			auth.NewPermissionSet(nil))

		gomega.Expect(find(tree, "EDUCATION")).To(gomega.BeNil())
		gomega.Expect(find(tree, "ADMIN")).To(gomega.BeNil())
		// Dashboard has no gates at all and stays.
		gomega.Expect(find(tree, "DASHBOARD")).NotTo(gomega.BeNil())
	})

	ginkgo.It("should drop a group whose children are all filtered out", func() {
		tree := BuildSidebar("SCHOOL",
			[]string{"EDUCATION"},
			auth.NewPermissionSet([]string{"USER_VIEW"}))

		gomega.Expect(find(tree, "EDUCATION")).To(gomega.BeNil())
	})

	ginkgo.It("should sort explicit orders ascending with unset orders last", func() {
		tree := BuildSidebar("SCHOOL",
			nil,
			auth.NewPermissionSet([]string{"USER_VIEW", "ROLE_VIEW", "SETTINGS_VIEW", "AUDIT_LOG_VIEW", "TENANT_MODULES_VIEW"}))

		admin := find(tree, "ADMIN")
		gomega.Expect(admin).NotTo(gomega.BeNil())
		gomega.Expect(keysOf(admin.Children)).To(gomega.Equal([]string{
			"USERS", "ROLES", "TENANT_MODULES", "SETTINGS", "AUDIT_LOGS",
		}))
	})

	ginkgo.It("should be deterministic for identical inputs", func() {
		build := func() []byte {
			tree := BuildSidebar("SCHOOL",
				[]string{"STUDENTS", "ATTENDANCE", "FEES"},
				auth.NewPermissionSet([]string{"STUDENT_VIEW", "ATTENDANCE_VIEW", "FEES_VIEW", "USER_VIEW"}))
			raw, err := json.Marshal(tree)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			return raw
		}

		gomega.Expect(build()).To(gomega.Equal(build()))
	})
})
