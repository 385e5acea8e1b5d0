package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/WinKyaw/InventSight-sub004/internal/config"
	"github.com/WinKyaw/InventSight-sub004/internal/repository"
	"github.com/WinKyaw/InventSight-sub004/internal/service"
	"github.com/WinKyaw/InventSight-sub004/pkg/database"
	"github.com/WinKyaw/InventSight-sub004/pkg/logger"
)

// One-shot sweep of expired one-time permissions, for cron setups where the
// API's background sweeper is disabled.
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

	permissionRepo := repository.NewPermissionRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	auditService := service.NewAuditService(auditRepo, zapLog)
	permissionService := service.NewPermissionService(db, permissionRepo, auditService, zapLog, cfg.PermissionTTL)

	swept, err := permissionService.SweepExpired()
	if err != nil {
		zapLog.Fatal("sweep failed", zap.Error(err))
	}
	zapLog.Info("sweep finished", zap.Int64("expired", swept))
}
