package navigation

// Node is the UI-ready navigation shape. Only this shape is stable for
// clients; gating metadata never leaves the composer.
type Node struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Icon     string `json:"icon,omitempty"`
	Route    string `json:"route,omitempty"`
	Children []Node `json:"children,omitempty"`
}

// Candidate is one entry of the static navigation catalog before filtering.
// Module and Permission empty mean ungated; Domain empty means visible to all
// tenant categories. Order nil sorts after every explicit order.
type Candidate struct {
	Key        string
	Label      string
	Icon       string
	Route      string
	Module     string
	Permission string
	Domain     string
	Order      *int
	Children   []Candidate
}

// Business domains group modules by vertical; a tenant category unlocks the
// domains listed for it.
const (
	DomainCommon      = "COMMON"
	DomainEducation   = "EDUCATION"
	DomainHealthcare  = "HEALTHCARE"
	DomainCommerce    = "COMMERCE"
	DomainHospitality = "HOSPITALITY"
)

// domainTenantMap lists the tenant categories allowed into each domain.
// "ALL" opens the domain to every category.
var domainTenantMap = map[string][]string{
	DomainCommon:      {"ALL"},
	DomainEducation:   {"SCHOOL", "COACHING"},
	DomainHealthcare:  {"CLINIC", "SALON", "GYM"},
	DomainCommerce:    {"RETAIL", "PHARMACY"},
	DomainHospitality: {"RESTAURANT"},
}

func domainAllowed(domain, tenantCategory string) bool {
	if domain == "" {
		return true
	}
	allowed, ok := domainTenantMap[domain]
	if !ok {
		return false
	}
	for _, category := range allowed {
		if category == "ALL" || category == tenantCategory {
			return true
		}
	}
	return false
}

func orderOf(n int) *int { return &n }

// Catalog is the full candidate tree. Core administration items carry no
// module gate; they are visible to any authenticated tenant user who holds
// the required permission.
func Catalog() []Candidate {
	return []Candidate{
		{
			Key:    "DASHBOARD",
			Label:  "Dashboard",
			Icon:   "dashboard",
			Route:  "/dashboard",
			Domain: DomainCommon,
			Order:  orderOf(1),
		},
		{
			Key:    "EDUCATION",
			Label:  "Education",
			Icon:   "school",
			Domain: DomainEducation,
			Module: "EDUCATION",
			Order:  orderOf(2),
			Children: []Candidate{
				{
					Key:        "STUDENTS",
					Label:      "Students",
					Route:      "/education/students",
					Module:     "STUDENTS",
					Permission: "STUDENT_VIEW",
					Order:      orderOf(1),
				},
				{
					Key:        "ATTENDANCE",
					Label:      "Attendance",
					Route:      "/education/attendance",
					Module:     "ATTENDANCE",
					Permission: "ATTENDANCE_VIEW",
					Order:      orderOf(2),
				},
				{
					Key:        "FEES",
					Label:      "Fees",
					Route:      "/education/fees",
					Module:     "FEES",
					Permission: "FEES_VIEW",
					Order:      orderOf(3),
				},
			},
		},
		{
			Key:    "HEALTHCARE",
			Label:  "Healthcare",
			Icon:   "heart",
			Domain: DomainHealthcare,
			Module: "HEALTHCARE",
			Order:  orderOf(3),
			Children: []Candidate{
				{
					Key:        "APPOINTMENTS",
					Label:      "Appointments",
					Route:      "/healthcare/appointments",
					Module:     "APPOINTMENTS",
					Permission: "APPOINTMENT_VIEW",
				},
			},
		},
		{
			Key:    "COMMERCE",
			Label:  "Commerce",
			Icon:   "shopping-cart",
			Domain: DomainCommerce,
			Module: "COMMERCE",
			Order:  orderOf(4),
			Children: []Candidate{
				{
					Key:        "INVENTORY",
					Label:      "Inventory",
					Route:      "/commerce/inventory",
					Module:     "INVENTORY",
					Permission: "INVENTORY_VIEW",
				},
				{
					Key:        "SALES",
					Label:      "Sales",
					Route:      "/commerce/sales",
					Module:     "SALES",
					Permission: "SALES_VIEW",
				},
			},
		},
		{
			Key:    "HOSPITALITY",
			Label:  "Hospitality",
			Icon:   "utensils",
			Domain: DomainHospitality,
			Module: "HOSPITALITY",
			Order:  orderOf(5),
			Children: []Candidate{
				{
					Key:        "MENU",
					Label:      "Menu",
					Route:      "/hospitality/menu",
					Module:     "MENU",
					Permission: "MENU_VIEW",
				},
				{
					Key:        "TABLES",
					Label:      "Tables",
					Route:      "/hospitality/tables",
					Module:     "TABLES",
					Permission: "TABLE_VIEW",
				},
			},
		},
		{
			Key:    "ADMIN",
			Label:  "Administration",
			Icon:   "settings",
			Domain: DomainCommon,
			Order:  orderOf(6),
			Children: []Candidate{
				{
					Key:        "USERS",
					Label:      "Users",
					Route:      "/admin/users",
					Permission: "USER_VIEW",
					Order:      orderOf(1),
				},
				{
					Key:        "ROLES",
					Label:      "Roles",
					Route:      "/admin/roles",
					Permission: "ROLE_VIEW",
					Order:      orderOf(2),
				},
				{
					Key:        "TENANT_MODULES",
					Label:      "Tenant Modules",
					Route:      "/admin/tenant-modules",
					Permission: "TENANT_MODULES_VIEW",
					Order:      orderOf(3),
				},
				{
					Key:        "SETTINGS",
					Label:      "Settings",
					Route:      "/admin/settings",
					Permission: "SETTINGS_VIEW",
				},
				{
					Key:        "AUDIT_LOGS",
					Label:      "Audit Logs",
					Route:      "/admin/audit-logs",
					Permission: "AUDIT_LOG_VIEW",
				},
			},
		},
	}
}
