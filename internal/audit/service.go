package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/medcompanion/internal/database/audit"
	"github.com/mrlokans/medcompanion/internal/entities"
)

const maxErrorLength = 500

// Service provides high-level audit logging functionality.
type Service struct {
	repo   *audit.Repository
	logger logrus.FieldLogger
	wg     sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{repo: repo, logger: logger}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	if event.SessionID == "" {
		event.SessionID = SessionFrom(ctx)
	}
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking). The
// session id is taken from ctx before returning.
func (s *Service) LogAsync(ctx context.Context, event *entities.AuditEvent) {
	if event.SessionID == "" {
		event.SessionID = SessionFrom(ctx)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			s.logger.WithError(err).WithField("action", event.Action).Warn("Failed to log audit event")
		}
	}()
}

// Flush waits for pending asynchronous events to be written.
func (s *Service) Flush() {
	s.wg.Wait()
}

// LogAuth records a registration, login or logout attempt.
func (s *Service) LogAuth(ctx context.Context, userID uint, action, email string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventAuth,
		Action:      action,
		Description: action + ": " + email,
		EntityType:  "user",
		Status:      entities.AuditStatusSuccess,
	}
	if userID != 0 {
		event.EntityID = &userID
	}
	markFailed(event, err)

	s.LogAsync(ctx, event)
}

// LogMedicine records a change to a medication entry.
func (s *Service) LogMedicine(ctx context.Context, medicine entities.Medicine, action string, err error) {
	id := medicine.ID
	event := &entities.AuditEvent{
		UserID:      medicine.UserID,
		EventType:   entities.AuditEventMedicine,
		Action:      "medicine_" + action,
		Description: medicineDescription(action, medicine),
		EntityType:  "medicine",
		EntityID:    &id,
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"dosage":    medicine.Dosage,
		"frequency": medicine.Frequency,
		"time":      medicine.Time,
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}
	markFailed(event, err)

	s.LogAsync(ctx, event)
}

// LogProfile records a profile change.
func (s *Service) LogProfile(ctx context.Context, userID uint, description string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventProfile,
		Action:      "profile_update",
		Description: description,
		EntityType:  "user",
		EntityID:    &userID,
		Status:      entities.AuditStatusSuccess,
	}
	markFailed(event, err)

	s.LogAsync(ctx, event)
}

// LogSettings records a settings change event.
func (s *Service) LogSettings(ctx context.Context, userID uint, action, description string) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventSettings,
		Action:      action,
		Description: description,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(ctx, event)
}

// LogReminder records a delivered dose reminder.
func (s *Service) LogReminder(ctx context.Context, userID, medicineID uint, name, slot string) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventReminder,
		Action:      "dose_reminder",
		Description: fmt.Sprintf("Reminder for %s at %s", name, slot),
		EntityType:  "medicine",
		EntityID:    &medicineID,
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(ctx, event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, userID, limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(ctx context.Context, eventType entities.AuditEventType, userID uint, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(ctx, eventType, userID, limit, offset)
}

// GetEventsBySession retrieves every event of one login session.
func (s *Service) GetEventsBySession(ctx context.Context, sessionID string) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsBySession(ctx, sessionID)
}

// EventsOlderThan returns the events a cleanup with this retention would remove.
func (s *Service) EventsOlderThan(ctx context.Context, retention time.Duration) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsBefore(ctx, time.Now().Add(-retention))
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func markFailed(event *entities.AuditEvent, err error) {
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), maxErrorLength)
	}
}

func medicineDescription(action string, m entities.Medicine) string {
	switch action {
	case "add":
		return "Added medicine: " + m.Name
	case "delete":
		return "Deleted medicine: " + m.Name
	case "update":
		return "Updated medicine: " + m.Name
	default:
		return action + ": " + m.Name
	}
}

// truncate shortens a string to at most maxLen bytes without splitting a
// UTF-8 sequence.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
