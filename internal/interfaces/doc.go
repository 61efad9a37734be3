// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - AccountStore: Registered accounts (internal/services/interfaces.go)
//   - MedicineStore: Medication entries and their live list (internal/services/interfaces.go)
//   - PreferenceStore: Per-user key/value preferences (internal/services/interfaces.go)
//   - Auditor: Audit trail of user actions (internal/services/interfaces.go)
//
// ## Session and Bridge Interfaces
//
//   - session.Facade: Domain API driven by the session (internal/session/session.go)
//   - http.SessionState: Login state driven by the bridge (internal/http/config.go)
//   - http.MedicineReader, http.AuditReader, http.TaskQueue (internal/http/config.go)
//
// ## Background Work Interfaces
//
//   - tasks.Notifier: Delivers dose reminders (internal/tasks/dose_reminder.go)
//   - tasks.AuditEventCleaner, tasks.AuditArchiver (internal/tasks/cleanup_audit.go)
//   - scheduler.Enqueuer, scheduler.PreferenceReader (internal/scheduler/reminders.go)
//
// # Adding a New Reminder Channel
//
// Reminders are delivered by a tasks.Notifier. To add a channel (e.g. desktop
// notifications):
//
//  1. Implement Notifier in internal/tasks/ or a new package
//
//     type DesktopNotifier struct{}
//
//     func (n *DesktopNotifier) NotifyDose(ctx context.Context, reminder tasks.DoseReminderTask) error
//
//     var _ tasks.Notifier = (*DesktopNotifier)(nil)
//
//  2. Combine it with the log notifier in entrypoint.go
//
//     tasks.NewDoseReminderQueue(tasks.MultiNotifier{logNotifier, desktop})
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Register the entity in database.NewDatabase's AutoMigrate call and add
//     an accessor on Database
//
//  4. Add a compile-time check in checks.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the checks across packages.
package interfaces
