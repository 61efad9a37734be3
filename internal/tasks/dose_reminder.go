package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus"
)

// DoseReminderTask asks the notifier to remind a user of one dose.
type DoseReminderTask struct {
	UserID     uint   `json:"user_id"`
	MedicineID uint   `json:"medicine_id"`
	Name       string `json:"name"`
	Dosage     string `json:"dosage"`
	Slot       string `json:"slot"`
}

// Config returns the queue configuration for dose reminder tasks.
func (t DoseReminderTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "dose_reminder",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// Notifier delivers a dose reminder to the user.
type Notifier interface {
	NotifyDose(ctx context.Context, reminder DoseReminderTask) error
}

// DoseReminderProcessor creates a processor function for DoseReminderTask.
func DoseReminderProcessor(notifier Notifier) backlite.QueueProcessor[DoseReminderTask] {
	return func(ctx context.Context, task DoseReminderTask) error {
		if notifier == nil {
			return fmt.Errorf("reminder notifier not configured")
		}
		if err := notifier.NotifyDose(ctx, task); err != nil {
			return fmt.Errorf("notify dose of medicine %d: %w", task.MedicineID, err)
		}
		return nil
	}
}

// NewDoseReminderQueue creates a backlite queue for dose reminder tasks.
func NewDoseReminderQueue(notifier Notifier) backlite.Queue {
	return backlite.NewQueue(DoseReminderProcessor(notifier))
}

// ReminderRecorder stores delivered reminders in the audit trail.
type ReminderRecorder interface {
	LogReminder(ctx context.Context, userID, medicineID uint, name, slot string)
}

// LogNotifier delivers reminders to the application log. This is the only
// delivery channel of a local install.
type LogNotifier struct {
	logger   logrus.FieldLogger
	recorder ReminderRecorder
}

func NewLogNotifier(logger logrus.FieldLogger, recorder ReminderRecorder) *LogNotifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogNotifier{logger: logger, recorder: recorder}
}

func (n *LogNotifier) NotifyDose(ctx context.Context, reminder DoseReminderTask) error {
	n.logger.WithFields(logrus.Fields{
		"user_id":     reminder.UserID,
		"medicine_id": reminder.MedicineID,
		"slot":        reminder.Slot,
	}).Infof("Time to take %s %s", reminder.Name, reminder.Dosage)

	if n.recorder != nil {
		n.recorder.LogReminder(ctx, reminder.UserID, reminder.MedicineID, reminder.Name, reminder.Slot)
	}
	return nil
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, reminder DoseReminderTask) error

func (f NotifierFunc) NotifyDose(ctx context.Context, reminder DoseReminderTask) error {
	return f(ctx, reminder)
}

// MultiNotifier delivers to every notifier in order and returns the first
// error.
type MultiNotifier []Notifier

func (m MultiNotifier) NotifyDose(ctx context.Context, reminder DoseReminderTask) error {
	var first error
	for _, n := range m {
		if err := n.NotifyDose(ctx, reminder); err != nil && first == nil {
			first = err
		}
	}
	return first
}
