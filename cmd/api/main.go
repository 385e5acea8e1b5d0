package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/WinKyaw/InventSight-sub004/internal/config"
	"github.com/WinKyaw/InventSight-sub004/internal/handler"
	"github.com/WinKyaw/InventSight-sub004/internal/middleware"
	"github.com/WinKyaw/InventSight-sub004/internal/model"
	"github.com/WinKyaw/InventSight-sub004/internal/repository"
	"github.com/WinKyaw/InventSight-sub004/internal/service"
	"github.com/WinKyaw/InventSight-sub004/internal/ws"
	"github.com/WinKyaw/InventSight-sub004/pkg/database"
	"github.com/WinKyaw/InventSight-sub004/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	zapLog, err := logger.New(cfg.IsDevelopment())
	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}
	defer zapLog.Sync()

	db := database.ConnectDB(cfg.DSN())
	// Auto migrate on boot; use a dedicated migration tool for anything
	// beyond additive changes.
	if err := db.AutoMigrate(
		&model.InventoryRecord{},
		&model.TransferRequest{},
		&model.OneTimePermission{},
		&model.AuditEvent{},
		&model.User{},
		&model.Privilege{},
		&model.Role{},
	); err != nil {
		zapLog.Fatal("auto migration failed", zap.Error(err))
	}

	seedPrivilegesRolesAndAdmin(db, zapLog)

	wsHub := ws.NewHub(zapLog)
	go wsHub.Run()

	// Wiring
	inventoryRepo := repository.NewInventoryRepo(db)
	transferRepo := repository.NewTransferRepo(db)
	permissionRepo := repository.NewPermissionRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	userRepo := repository.NewUserRepo(db)

	auditService := service.NewAuditService(auditRepo, zapLog)
	ledgerService := service.NewLedgerService(db, inventoryRepo, auditService, wsHub, zapLog)
	permissionService := service.NewPermissionService(db, permissionRepo, auditService, zapLog, cfg.PermissionTTL)
	transferService := service.NewTransferService(db, transferRepo, ledgerService, permissionService, auditService, wsHub, zapLog)
	authService := service.NewAuthService(userRepo, zapLog)

	sweeper := service.NewPermissionSweeper(permissionService, zapLog, cfg.SweepInterval)
	sweeper.Start()

	inventoryHandler := handler.NewInventoryHandler(ledgerService)
	transferHandler := handler.NewTransferHandler(transferService)
	permissionHandler := handler.NewPermissionHandler(permissionService)
	auditHandler := handler.NewAuditHandler(auditService)
	authHandler := handler.NewAuthHandler(authService)

	app := fiber.New(fiber.Config{
		AppName: "Stock Transfer API v1.0",
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", middleware.RequireAuth(userRepo), authHandler.Logout)
	auth.Get("/me", middleware.RequireAuth(userRepo), authHandler.Me)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Inventory ledger
	protected.Get("/inventory", middleware.RequirePrivilege("inventory:view"), inventoryHandler.GetAvailability)
	protected.Get("/inventory/location", middleware.RequirePrivilege("inventory:view"), inventoryHandler.ListLocationStock)
	protected.Post("/inventory/add", middleware.RequirePrivilege("inventory:adjust"), inventoryHandler.AddStock)
	protected.Post("/inventory/remove", middleware.RequirePrivilege("inventory:adjust"), inventoryHandler.RemoveStock)

	// Transfer workflow
	protected.Get("/transfers", middleware.RequirePrivilege("transfer:view"), transferHandler.List)
	protected.Get("/transfers/:id", middleware.RequirePrivilege("transfer:view"), transferHandler.Get)
	protected.Post("/transfers", middleware.RequirePrivilege("transfer:request"), transferHandler.Create)
	protected.Post("/transfers/:id/approve", middleware.RequirePrivilege("transfer:approve"), transferHandler.Approve)
	protected.Post("/transfers/:id/reject", middleware.RequirePrivilege("transfer:approve"), transferHandler.Reject)
	protected.Post("/transfers/:id/ready", middleware.RequirePrivilege("transfer:ship"), transferHandler.MarkReady)
	protected.Post("/transfers/:id/ship", middleware.RequirePrivilege("transfer:ship"), transferHandler.Ship)
	protected.Post("/transfers/:id/deliver", middleware.RequirePrivilege("transfer:ship"), transferHandler.Deliver)
	protected.Post("/transfers/:id/receive", middleware.RequirePrivilege("transfer:receive"), transferHandler.Receive)
	protected.Post("/transfers/:id/cancel", middleware.RequirePrivilege("transfer:cancel"), transferHandler.Cancel)
	protected.Post("/transfers/:id/complete", middleware.RequirePrivilege("transfer:receive"), transferHandler.Complete)
	protected.Post("/transfers/:id/damaged", middleware.RequirePrivilege("transfer:ship"), transferHandler.MarkDamaged)
	protected.Post("/transfers/:id/lost", middleware.RequirePrivilege("transfer:ship"), transferHandler.MarkLost)

	// One-time permissions
	protected.Post("/permissions", middleware.RequirePrivilege("permission:grant"), permissionHandler.Grant)
	protected.Post("/permissions/:id/consume", permissionHandler.Consume)
	protected.Get("/permissions/active", permissionHandler.ListActive)

	// Audit chain
	protected.Get("/audit", middleware.RequirePrivilege("audit:view"), auditHandler.List)
	protected.Get("/audit/verify", middleware.RequirePrivilege("audit:verify"), auditHandler.Verify)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zapLog.Fatal("server stopped", zap.Error(err))
		}
	}()
	zapLog.Info("server started", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("shutting down server")
	sweeper.Stop()
	if err := app.Shutdown(); err != nil {
		zapLog.Fatal("server forced to shutdown", zap.Error(err))
	}
	zapLog.Info("server exited")
}

// seedPrivilegesRolesAndAdmin creates default privileges, roles, and the
// bootstrap admin user if they don't exist.
func seedPrivilegesRolesAndAdmin(db *gorm.DB, zapLog *zap.Logger) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	userRepo := repository.NewUserRepo(db)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		zapLog.Warn("failed to seed privileges", zap.Error(err))
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		zapLog.Warn("failed to seed roles", zap.Error(err))
	}

	allPrivileges, _ := privilegeRepo.FindAll()

	// MASTER_ADMIN gets everything.
	if masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin); err == nil && len(masterRole.Privileges) == 0 {
		db.Model(masterRole).Association("Privileges").Replace(allPrivileges)
	}

	// WAREHOUSE_MANAGER runs the source side of transfers.
	if managerRole, err := roleRepo.FindByCode(model.RoleWarehouseManager); err == nil && len(managerRole.Privileges) == 0 {
		codes := map[string]bool{
			"inventory:view": true, "inventory:adjust": true,
			"transfer:view": true, "transfer:approve": true, "transfer:ship": true, "transfer:cancel": true,
			"permission:grant": true, "audit:view": true,
		}
		db.Model(managerRole).Association("Privileges").Replace(filterPrivileges(allPrivileges, codes))
	}

	// STORE_STAFF requests and receives.
	if staffRole, err := roleRepo.FindByCode(model.RoleStoreStaff); err == nil && len(staffRole.Privileges) == 0 {
		codes := map[string]bool{
			"inventory:view": true,
			"transfer:view":  true, "transfer:request": true, "transfer:receive": true,
		}
		db.Model(staffRole).Association("Privileges").Replace(filterPrivileges(allPrivileges, codes))
	}

	if _, err := userRepo.FindByEmail("admin@example.com"); err != nil {
		masterRole, err := roleRepo.FindByCode(model.RoleMasterAdmin)
		if err != nil {
			zapLog.Warn("failed to load admin role", zap.Error(err))
			return
		}

		admin := &model.User{
			Email:      "admin@example.com",
			FullName:   "Master Administrator",
			CompanyID:  uuid.New(),
			RoleID:     &masterRole.ID,
			IsActive:   true,
			Privileges: masterRole.Privileges,
		}
		admin.CreatedBy = "system"
		admin.UpdatedBy = "system"

		if err := admin.SetPassword("admin123"); err != nil {
			zapLog.Warn("failed to hash admin password", zap.Error(err))
			return
		}
		if err := userRepo.Create(admin); err != nil {
			zapLog.Warn("failed to create admin user", zap.Error(err))
		} else {
			zapLog.Info("admin user created", zap.String("email", admin.Email))
		}
	}
}

func filterPrivileges(all []model.Privilege, codes map[string]bool) []model.Privilege {
	var out []model.Privilege
	for _, p := range all {
		if codes[p.Code] {
			out = append(out, p)
		}
	}
	return out
}
