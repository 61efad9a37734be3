package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/medcompanion/internal/entities"
)

const defaultAuditRetentionDays = 30

// AuditEventCleaner provides the ability to delete old audit events.
type AuditEventCleaner interface {
	EventsOlderThan(ctx context.Context, retention time.Duration) ([]entities.AuditEvent, error)
	DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error)
}

// AuditArchiver saves events before they are deleted.
type AuditArchiver interface {
	Archive(events []entities.AuditEvent) (string, error)
}

// CleanupAuditEventsTask removes audit events older than the configured retention period.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupAuditEventsProcessor creates a processor function for
// CleanupAuditEventsTask. When archiver is not nil the expiring events are
// archived first, and a failed archive keeps them in place.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner, archiver AuditArchiver, logger logrus.FieldLogger) backlite.QueueProcessor[CleanupAuditEventsTask] {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return fmt.Errorf("audit event cleaner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = defaultAuditRetentionDays
		}
		retention := time.Duration(retentionDays) * 24 * time.Hour

		if archiver != nil {
			events, err := cleaner.EventsOlderThan(ctx, retention)
			if err != nil {
				return fmt.Errorf("load expiring audit events: %w", err)
			}
			filename, err := archiver.Archive(events)
			if err != nil {
				return fmt.Errorf("archive audit events: %w", err)
			}
			if filename != "" {
				logger.WithField("file", filename).Infof("Archived %d audit events", len(events))
			}
		}

		deleted, err := cleaner.DeleteOldEvents(ctx, retention)
		if err != nil {
			return fmt.Errorf("cleanup audit events: %w", err)
		}

		logger.Infof("Cleaned up %d audit events older than %d days", deleted, retentionDays)
		return nil
	}
}

// NewCleanupAuditEventsQueue creates a backlite queue for audit cleanup tasks.
func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner, archiver AuditArchiver, logger logrus.FieldLogger) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner, archiver, logger))
}
