package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with baseline data",
	Long:  `Seed permissions, the module catalog, default plans and the first platform super admin.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		seedPermissions(db)
		seedModules(db)
		seedDefaultPlans(db)
		seedSuperAdmin(db, cfg.Security.BCryptCost)

		fmt.Println("Seeding complete")
	},
}

func seedPermissions(db *gorm.DB) {
	permissions := []struct {
		Key  string
		Desc string
	}{
		{"USER_VIEW", "View tenant users"},
		{"USER_MANAGE", "Create and deactivate tenant users"},
		{"ROLE_VIEW", "View roles and the permission catalog"},
		{"ROLE_MANAGE", "Create roles and set their permissions"},
		{"TENANT_MODULES_VIEW", "View tenant module state"},
		{"SETTINGS_VIEW", "View tenant settings"},
		{"AUDIT_LOG_VIEW", "View audit logs"},
		{"STUDENT_VIEW", "View students"},
		{"ATTENDANCE_VIEW", "View attendance"},
		{"FEES_VIEW", "View fees"},
		{"APPOINTMENT_VIEW", "View appointments"},
		{"INVENTORY_VIEW", "View inventory"},
		{"SALES_VIEW", "View sales"},
		{"MENU_VIEW", "View menu"},
		{"TABLE_VIEW", "View tables"},
	}

	for _, p := range permissions {
		var exists int
		if err := db.Raw("SELECT 1 FROM permissions WHERE key = ?", p.Key).Row().Scan(&exists); err == nil {
			continue
		}
		if err := db.Exec("INSERT INTO permissions (key, description, created_at) VALUES (?, ?, now())", p.Key, p.Desc).Error; err != nil {
			log.Fatalf("failed to insert permission %s: %v", p.Key, err)
		}
		fmt.Println("Seeded permission:", p.Key)
	}
}

func seedModules(db *gorm.DB) {
	modules := []struct {
		Key        string
		Name       string
		IsCommon   bool
		Categories []string
	}{
		{"DASHBOARD", "Dashboard", true, nil},
		{"EDUCATION", "Education", false, []string{"SCHOOL", "COACHING"}},
		{"STUDENTS", "Students", false, []string{"SCHOOL", "COACHING"}},
		{"ATTENDANCE", "Attendance", false, []string{"SCHOOL", "COACHING"}},
		{"FEES", "Fees", false, []string{"SCHOOL", "COACHING"}},
		{"HEALTHCARE", "Healthcare", false, []string{"CLINIC", "SALON", "GYM"}},
		{"APPOINTMENTS", "Appointments", false, []string{"CLINIC", "SALON", "GYM"}},
		{"COMMERCE", "Commerce", false, []string{"RETAIL", "PHARMACY"}},
		{"INVENTORY", "Inventory", false, []string{"RETAIL", "PHARMACY"}},
		{"SALES", "Sales", false, []string{"RETAIL", "PHARMACY"}},
		{"HOSPITALITY", "Hospitality", false, []string{"RESTAURANT"}},
		{"MENU", "Menu", false, []string{"RESTAURANT"}},
		{"TABLES", "Tables", false, []string{"RESTAURANT"}},
	}

	for _, m := range modules {
		var moduleID int64
		err := db.Raw("SELECT id FROM modules WHERE key = ?", m.Key).Row().Scan(&moduleID)
		if err != nil {
			if err := db.Exec("INSERT INTO modules (key, name, is_common, created_at, updated_at) VALUES (?, ?, ?, now(), now())", m.Key, m.Name, m.IsCommon).Error; err != nil {
				log.Fatalf("failed to insert module %s: %v", m.Key, err)
			}
			if err := db.Raw("SELECT id FROM modules WHERE key = ?", m.Key).Row().Scan(&moduleID); err != nil {
				log.Fatalf("module not found after insert %s: %v", m.Key, err)
			}
			fmt.Println("Seeded module:", m.Key)
		}

		for _, category := range m.Categories {
			var exists int
			if err := db.Raw("SELECT 1 FROM module_tenant_categories WHERE module_id = ? AND tenant_category = ?", moduleID, category).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO module_tenant_categories (module_id, tenant_category) VALUES (?, ?)", moduleID, category).Error; err != nil {
				log.Fatalf("failed to restrict module %s to %s: %v", m.Key, category, err)
			}
		}
	}
}

func seedDefaultPlans(db *gorm.DB) {
	plans := []struct {
		Name  string
		Price int64
	}{
		{"TRIAL", 0},
		{"BASIC", 99},
		{"PREMIUM", 299},
	}

	for _, p := range plans {
		var exists int
		if err := db.Raw("SELECT 1 FROM plans WHERE name = ?", p.Name).Row().Scan(&exists); err == nil {
			continue
		}
		if err := db.Exec("INSERT INTO plans (name, price, duration_days, is_active, created_at, updated_at) VALUES (?, ?, 30, true, now(), now())", p.Name, p.Price).Error; err != nil {
			log.Fatalf("failed to insert plan %s: %v", p.Name, err)
		}
		fmt.Println("Seeded plan:", p.Name)
	}

	// TRIAL carries every non-common module so new tenants can explore the
	// full surface during the trial window.
	var trialID int64
	if err := db.Raw("SELECT id FROM plans WHERE name = ?", "TRIAL").Row().Scan(&trialID); err != nil {
		log.Fatalf("trial plan missing after seed: %v", err)
	}
	if err := db.Exec(`
		INSERT INTO plan_modules (plan_id, module_id)
		SELECT ?, m.id FROM modules m
		WHERE m.is_common = false
		  AND NOT EXISTS (SELECT 1 FROM plan_modules pm WHERE pm.plan_id = ? AND pm.module_id = m.id)`,
		trialID, trialID).Error; err != nil {
		log.Fatalf("failed to grant modules to trial plan: %v", err)
	}
}

func seedSuperAdmin(db *gorm.DB, bcryptCost int) {
	adminEmail := "admin@platform.local"

	var exists int
	if err := db.Raw("SELECT 1 FROM super_admins WHERE email = ?", adminEmail).Row().Scan(&exists); err == nil {
		fmt.Println("super admin already exists:", adminEmail)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("change-me-now"), bcryptCost)
	if err != nil {
		log.Fatalf("failed to hash super admin password: %v", err)
	}

	if err := db.Exec("INSERT INTO super_admins (email, name, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())", adminEmail, "Platform Admin", string(hash)).Error; err != nil {
		log.Fatalf("failed to insert super admin: %v", err)
	}
	fmt.Println("Seeded super admin:", adminEmail, "(password: change-me-now)")
}
