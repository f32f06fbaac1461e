package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/tenant-admin/internal"
	"github.com/frahmantamala/tenant-admin/internal/audit"
	auditpg "github.com/frahmantamala/tenant-admin/internal/audit/postgres"
	"github.com/frahmantamala/tenant-admin/internal/auth"
	authpg "github.com/frahmantamala/tenant-admin/internal/auth/postgres"
	"github.com/frahmantamala/tenant-admin/internal/catalog"
	catalogpg "github.com/frahmantamala/tenant-admin/internal/catalog/postgres"
	"github.com/frahmantamala/tenant-admin/internal/core/events"
	"github.com/frahmantamala/tenant-admin/internal/entitlement"
	entitlementpg "github.com/frahmantamala/tenant-admin/internal/entitlement/postgres"
	"github.com/frahmantamala/tenant-admin/internal/navigation"
	"github.com/frahmantamala/tenant-admin/internal/plan"
	planpg "github.com/frahmantamala/tenant-admin/internal/plan/postgres"
	"github.com/frahmantamala/tenant-admin/internal/role"
	rolepg "github.com/frahmantamala/tenant-admin/internal/role/postgres"
	"github.com/frahmantamala/tenant-admin/internal/subscription"
	subscriptionpg "github.com/frahmantamala/tenant-admin/internal/subscription/postgres"
	"github.com/frahmantamala/tenant-admin/internal/tenant"
	tenantpg "github.com/frahmantamala/tenant-admin/internal/tenant/postgres"
	"github.com/frahmantamala/tenant-admin/internal/transport/rest"
	"github.com/frahmantamala/tenant-admin/internal/user"
	userpg "github.com/frahmantamala/tenant-admin/internal/user/postgres"
	"github.com/frahmantamala/tenant-admin/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

const openAPIPath = "./api/openapi.yml"

func startHTTPServer() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.LoggerWrapper()

	if err := validateOpenAPIDocument(openAPIPath); err != nil {
		log.Error("openapi document invalid", "path", openAPIPath, "error", err)
		os.Exit(1)
	}

	db, err := initDB(config.Database)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		log.Error("failed to initialize orm", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	handlers := buildHandlers(config, gormDB, log)
	rest.RegisterAllRoutes(router, db.DB, handlers, config.Server.AllowedOrigins, log)

	addr := fmt.Sprintf(":%d", config.Server.Port)
	log.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: config.Server.ReadHeaderTimeout,
		ReadTimeout:       config.Server.ReadTimeout,
		WriteTimeout:      config.Server.WriteTimeout,
		IdleTimeout:       config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
		if err := db.Close(); err != nil {
			log.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	log.Info("server stopped")
}

// buildHandlers wires repositories, services and handlers. Services depend on
// narrow consumer interfaces, so the concrete types plug together here and
// nowhere else.
func buildHandlers(config *internal.Config, gormDB *gorm.DB, log *slog.Logger) rest.Handlers {
	eventBus := events.NewEventBus(log)
	auditService := audit.NewService(auditpg.NewRepository(gormDB), eventBus, log)

	tokens := auth.NewJWTTokenGenerator(
		config.Security.JWTSecret,
		config.Security.TenantTokenDuration,
		config.Security.PlatformTokenDuration,
	)
	authService := auth.NewService(
		authpg.NewRepository(gormDB),
		tokens,
		auditService,
		auth.LockoutPolicy{
			MaxFailedLogins: config.Security.MaxFailedLogins,
			LockWindow:      config.Security.LockoutWindow,
		},
		config.Security.BCryptCost,
		log,
	)

	entitlementService := entitlement.NewService(entitlementpg.NewRepository(gormDB), auditService, log)

	defaultSyncMode, _ := subscription.ParseSyncMode(config.Entitlement.DefaultSyncMode)
	subscriptionService := subscription.NewService(
		subscriptionpg.NewRepository(gormDB),
		auditService,
		defaultSyncMode,
		config.Entitlement.PerTenantTimeout,
		log,
	)

	planService := plan.NewService(planpg.NewRepository(gormDB), subscriptionService, auditService, log)
	catalogService := catalog.NewService(catalogpg.NewRepository(gormDB), auditService, log)
	tenantService := tenant.NewService(tenantpg.NewRepository(gormDB), authService, auditService, log)
	roleService := role.NewService(rolepg.NewRepository(gormDB), auditService, log)
	navigationService := navigation.NewService(entitlementService, log)
	userService := user.NewService(
		userpg.NewRepository(gormDB),
		authService,
		subscriptionService,
		entitlementService,
		navigationService,
		auditService,
		log,
	)

	return rest.Handlers{
		Auth:         auth.NewHandler(authService),
		Resolver:     auth.NewResolver(authService, log),
		RBAC:         auth.NewRBACAuthorization(auth.NewPermissionAuthorizer(), log),
		User:         user.NewHandler(userService),
		Role:         role.NewHandler(roleService),
		Tenant:       tenant.NewHandler(tenantService),
		Catalog:      catalog.NewHandler(catalogService),
		Plan:         plan.NewHandler(planService),
		Subscription: subscription.NewHandler(subscriptionService),
		Entitlement:  entitlement.NewHandler(entitlementService),
		Navigation:   navigation.NewHandler(navigationService),
		Audit:        audit.NewHandler(auditService),

		EntitlementGuard:  entitlement.NewGuard(entitlementService, log),
		SubscriptionGuard: subscription.NewGuard(subscriptionService, log),
	}
}

// validateOpenAPIDocument fails startup on a malformed spec so the served
// document can be trusted by clients and the swagger UI.
func validateOpenAPIDocument(path string) error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return fmt.Errorf("validate openapi document: %w", err)
	}
	return nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
