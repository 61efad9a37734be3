package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/medcompanion/internal/audit"
	"github.com/mrlokans/medcompanion/internal/database"
	"github.com/mrlokans/medcompanion/internal/database/accounts"
	"github.com/mrlokans/medcompanion/internal/database/medicines"
	"github.com/mrlokans/medcompanion/internal/database/preferences"
	"github.com/mrlokans/medcompanion/internal/http"
	"github.com/mrlokans/medcompanion/internal/scheduler"
	"github.com/mrlokans/medcompanion/internal/services"
	"github.com/mrlokans/medcompanion/internal/session"
	"github.com/mrlokans/medcompanion/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ services.AccountStore = (*accounts.Repository)(nil)
var _ services.MedicineStore = (*medicines.Repository)(nil)
var _ services.PreferenceStore = (*preferences.Repository)(nil)
var _ services.Auditor = (*audit.Service)(nil)

// =============================================================================
// Session and Bridge
// =============================================================================

var _ session.Facade = (*services.Service)(nil)
var _ http.SessionState = (*session.Session)(nil)
var _ http.MedicineReader = (*services.Service)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ http.Pinger = (*database.Database)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.ReminderLister = (*scheduler.ReminderScheduler)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.Notifier = (*tasks.LogNotifier)(nil)
var _ tasks.ReminderRecorder = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ tasks.AuditArchiver = (*audit.Archiver)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ scheduler.PreferenceReader = (*session.Session)(nil)
