package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/medcompanion/internal/entities"
	"github.com/mrlokans/medcompanion/internal/live"
	"github.com/mrlokans/medcompanion/internal/scheduler"
	"github.com/mrlokans/medcompanion/internal/services"
)

// SessionState is the process-wide login state the bridge drives.
type SessionState interface {
	Account() live.Observable[*entities.User]
	Medicines() live.Observable[[]entities.Medicine]
	CurrentAccount() *entities.User
	SessionID() string
	Context(ctx context.Context) context.Context
	Register(ctx context.Context, username, email, password string) (uint, error)
	Login(ctx context.Context, email, password string) (*entities.User, error)
	Logout(ctx context.Context)
	AddMedicine(ctx context.Context, name, dosage, frequency, timeLabel string) (*entities.Medicine, error)
	DeleteMedicine(ctx context.Context, medicine entities.Medicine) error
	UpdateMedicine(ctx context.Context, medicine *entities.Medicine) error
	UpdateUsername(ctx context.Context, username string) (*entities.User, error)
	Preferences(ctx context.Context) (services.Preferences, error)
	SavePreferences(ctx context.Context, prefs services.Preferences) error
}

// MedicineReader reads a committed snapshot of an account's medicines.
type MedicineReader interface {
	Medicines(ctx context.Context, userID uint) ([]entities.Medicine, error)
}

// AuditReader lists recorded audit events.
type AuditReader interface {
	GetEvents(ctx context.Context, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByType(ctx context.Context, eventType entities.AuditEventType, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsBySession(ctx context.Context, sessionID string) ([]entities.AuditEvent, error)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(tasks ...backlite.Task) ([]string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// ReminderLister lists upcoming dose reminders.
type ReminderLister interface {
	Upcoming() []scheduler.UpcomingDose
}

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Session   SessionState
	Medicines MedicineReader
	Database  Pinger

	// Optional collaborators; their routes are skipped when nil
	Auditor   AuditReader
	TaskQueue TaskQueue
	Reminders ReminderLister

	// Audit cleanup retention used for manually triggered cleanups
	AuditRetentionDays int

	// Application info
	Version string

	// Now returns the current time; defaults to time.Now
	Now func() time.Time
}
