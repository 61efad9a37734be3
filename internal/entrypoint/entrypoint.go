// Package entrypoint wires the store, façade, session, background tasks and
// the loopback bridge into the running server.
package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/medcompanion/internal/audit"
	"github.com/mrlokans/medcompanion/internal/config"
	"github.com/mrlokans/medcompanion/internal/database"
	http_controllers "github.com/mrlokans/medcompanion/internal/http"
	"github.com/mrlokans/medcompanion/internal/logging"
	"github.com/mrlokans/medcompanion/internal/scheduler"
	"github.com/mrlokans/medcompanion/internal/services"
	"github.com/mrlokans/medcompanion/internal/session"
	"github.com/mrlokans/medcompanion/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		logrus.Infof("Starting server at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("listen: %s", err)
		}
	}()

	// kill (no param) default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Infof("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Closing the session ends open medicine streams, so it runs before the
	// server waits for active connections.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Server Shutdown")
	}

	logrus.Info("Server exiting")
}

func Run(cfg *config.Config, version string) {
	logger := logging.Setup(cfg.Log)
	logger.Infof("Starting MedCompanion v%s", version)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database")
	}

	auditService := audit.NewService(db.Audit(), logger)
	service := services.NewService(services.Stores{
		Accounts:    db.Accounts(),
		Medicines:   db.Medicines(),
		Preferences: db.Preferences(),
	}, auditService, cfg.Auth.BcryptCost, logger)
	sess := session.New(service, logger)

	var taskClient *tasks.Client
	var reminderScheduler *scheduler.ReminderScheduler
	var maintenance *scheduler.MaintenanceScheduler
	taskCtx, taskCancel := context.WithCancel(context.Background())

	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.NewConfig(cfg.Tasks), logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create task client")
		}

		// A nil *Archiver must not reach the queue as a non-nil interface
		var archiver tasks.AuditArchiver
		if cfg.Audit.ArchiveDir != "" {
			archiver = audit.NewArchiver(cfg.Audit.ArchiveDir)
		}

		taskClient.Register(
			tasks.NewDoseReminderQueue(tasks.NewLogNotifier(logger, auditService)),
			tasks.NewCleanupAuditEventsQueue(auditService, archiver, logger),
		)
		go taskClient.Start(taskCtx)

		if cfg.Reminders.Enabled {
			reminderScheduler = scheduler.NewReminderScheduler(sess.Medicines(), sess, taskClient, logger)
			reminderScheduler.Start()
		}

		maintenance = scheduler.NewMaintenanceScheduler(taskClient, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays, logger)
		if err := maintenance.Start(); err != nil {
			logger.WithError(err).Warn("Audit cleanup scheduler disabled")
			maintenance = nil
		}
	} else {
		logger.Info("Task queue disabled; reminders and audit cleanup will not run")
	}

	routerCfg := http_controllers.RouterConfig{
		Session:            sess,
		Medicines:          service,
		Database:           db,
		Auditor:            auditService,
		AuditRetentionDays: cfg.Audit.RetentionDays,
		Version:            version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}
	if reminderScheduler != nil {
		routerCfg.Reminders = reminderScheduler
	}

	gin.SetMode(gin.ReleaseMode)
	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg, func(ctx context.Context) {
		if reminderScheduler != nil {
			reminderScheduler.Stop()
		}
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
			taskCancel()
			if err := taskClient.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close task database")
			}
		} else {
			taskCancel()
		}

		sess.Close()
		auditService.Flush()
	})
}
