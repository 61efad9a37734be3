package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/medcompanion/internal/tasks"
)

// MaintenanceScheduler periodically enqueues audit retention cleanup.
type MaintenanceScheduler struct {
	enqueuer      Enqueuer
	schedule      string
	retentionDays int
	logger        logrus.FieldLogger

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
}

// NewMaintenanceScheduler creates a new scheduler instance
func NewMaintenanceScheduler(enqueuer Enqueuer, schedule string, retentionDays int, logger logrus.FieldLogger) *MaintenanceScheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MaintenanceScheduler{
		enqueuer:      enqueuer,
		schedule:      schedule,
		retentionDays: retentionDays,
		logger:        logger.WithField("component", "maintenance_scheduler"),
		cron:          newCron(nil),
	}
}

// Start begins the scheduler.
func (s *MaintenanceScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateCronSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		_ = s.RunNow()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := GetNextRunTime(s.schedule, time.Now())
	s.logger.WithFields(logrus.Fields{
		"schedule": s.schedule,
		"next_run": nextRun,
	}).Infof("Started: %s", GetCronDescription(s.schedule))
	return nil
}

// Stop gracefully stops the scheduler
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.cron.Remove(s.entryID)
	s.isRunning = false

	s.logger.Info("Stopped")
}

// RunNow enqueues a cleanup immediately.
func (s *MaintenanceScheduler) RunNow() error {
	_, err := s.enqueuer.Enqueue(tasks.CleanupAuditEventsTask{RetentionDays: s.retentionDays})
	if err != nil {
		s.logger.WithError(err).Error("Failed to enqueue audit cleanup")
		return err
	}
	return nil
}

// IsRunning returns whether the scheduler is active
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next cleanup will occur
func (s *MaintenanceScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entry := s.cron.Entry(s.entryID)
	if !entry.Valid() {
		return nil
	}
	t := entry.Next
	return &t
}
