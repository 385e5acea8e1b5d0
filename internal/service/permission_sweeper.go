package service

import (
	"time"

	"go.uber.org/zap"
)

// PermissionSweeper periodically flags expired one-time permissions.
type PermissionSweeper struct {
	permissions PermissionService
	logger      *zap.Logger
	interval    time.Duration
	stop        chan struct{}
	done        chan struct{}
}

func NewPermissionSweeper(permissions PermissionService, logger *zap.Logger, interval time.Duration) *PermissionSweeper {
	return &PermissionSweeper{
		permissions: permissions,
		logger:      logger,
		interval:    interval,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start launches the sweep loop in its own goroutine.
func (w *PermissionSweeper) Start() {
	w.logger.Info("permission sweeper started", zap.Duration("interval", w.interval))
	go w.run()
}

func (w *PermissionSweeper) run() {
	defer close(w.done)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.RunNow()
		case <-w.stop:
			return
		}
	}
}

// RunNow performs a single sweep immediately.
func (w *PermissionSweeper) RunNow() {
	if _, err := w.permissions.SweepExpired(); err != nil {
		w.logger.Error("permission sweep failed", zap.Error(err))
	}
}

// Stop halts the loop and waits for the in-flight sweep to finish.
func (w *PermissionSweeper) Stop() {
	close(w.stop)
	<-w.done
	w.logger.Info("permission sweeper stopped")
}
