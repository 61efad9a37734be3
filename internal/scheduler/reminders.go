// Package scheduler turns medicine time labels and maintenance schedules into
// cron entries that enqueue background tasks.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/medcompanion/internal/entities"
	"github.com/mrlokans/medcompanion/internal/live"
	"github.com/mrlokans/medcompanion/internal/schedule"
	"github.com/mrlokans/medcompanion/internal/services"
	"github.com/mrlokans/medcompanion/internal/tasks"
)

// Enqueuer adds tasks to the background queue.
type Enqueuer interface {
	Enqueue(tasks ...backlite.Task) ([]string, error)
}

// PreferenceReader returns the preferences of the logged-in account.
type PreferenceReader interface {
	Preferences(ctx context.Context) (services.Preferences, error)
}

// UpcomingDose is one scheduled reminder.
type UpcomingDose struct {
	MedicineID uint      `json:"medicine_id"`
	Name       string    `json:"name"`
	Slot       string    `json:"slot"`
	Next       time.Time `json:"next"`
}

type reminderEntry struct {
	id       cron.EntryID
	medicine entities.Medicine
	slot     schedule.Slot
}

// ReminderScheduler keeps one cron entry per dose slot of the live medicine
// list. Entries are rebuilt on every emission of the list.
type ReminderScheduler struct {
	medicines live.Observable[[]entities.Medicine]
	prefs     PreferenceReader
	enqueuer  Enqueuer
	logger    logrus.FieldLogger

	cron      *cron.Cron
	mu        sync.RWMutex
	entries   []reminderEntry
	isRunning bool
	cancel    func()
	done      chan struct{}
}

// NewReminderScheduler creates a new scheduler instance
func NewReminderScheduler(medicines live.Observable[[]entities.Medicine], prefs PreferenceReader, enqueuer Enqueuer, logger logrus.FieldLogger) *ReminderScheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ReminderScheduler{
		medicines: medicines,
		prefs:     prefs,
		enqueuer:  enqueuer,
		logger:    logger.WithField("component", "reminder_scheduler"),
		cron:      newCron(nil),
	}
}

// Start begins following the medicine list.
func (s *ReminderScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}

	ch, cancel := s.medicines.Subscribe()
	s.cancel = cancel
	s.done = make(chan struct{})
	s.cron.Start()
	s.isRunning = true

	go s.follow(ch, s.done)

	s.logger.Info("Started")
}

// Stop gracefully stops the scheduler
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.mu.Lock()
	s.removeEntriesLocked()
	s.mu.Unlock()

	s.logger.Info("Stopped")
}

// IsRunning returns whether the scheduler is active
func (s *ReminderScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Upcoming lists the scheduled reminders ordered by next run.
func (s *ReminderScheduler) Upcoming() []UpcomingDose {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doses := make([]UpcomingDose, 0, len(s.entries))
	for _, e := range s.entries {
		next := s.cron.Entry(e.id).Next
		if next.IsZero() {
			next, _ = nextFire(e.slot.CronSpec(), time.Now())
		}
		doses = append(doses, UpcomingDose{
			MedicineID: e.medicine.ID,
			Name:       e.medicine.Name,
			Slot:       e.slot.String(),
			Next:       next,
		})
	}
	sort.SliceStable(doses, func(i, j int) bool { return doses[i].Next.Before(doses[j].Next) })
	return doses
}

func (s *ReminderScheduler) follow(ch <-chan []entities.Medicine, done chan struct{}) {
	defer close(done)
	for list := range ch {
		s.rebuild(list)
	}
}

func (s *ReminderScheduler) rebuild(list []entities.Medicine) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeEntriesLocked()

	for _, medicine := range list {
		for _, slot := range schedule.ParseTimeLabel(medicine.Time) {
			medicine, slot := medicine, slot
			id, err := s.cron.AddFunc(slot.CronSpec(), func() {
				s.fire(context.Background(), medicine, slot)
			})
			if err != nil {
				s.logger.WithError(err).WithField("medicine_id", medicine.ID).Warn("Failed to schedule reminder")
				continue
			}
			s.entries = append(s.entries, reminderEntry{id: id, medicine: medicine, slot: slot})
		}
	}

	s.logger.WithFields(logrus.Fields{
		"medicines": len(list),
		"reminders": len(s.entries),
	}).Debug("Reminders rebuilt")
}

func (s *ReminderScheduler) removeEntriesLocked() {
	for _, e := range s.entries {
		s.cron.Remove(e.id)
	}
	s.entries = nil
}

func (s *ReminderScheduler) fire(ctx context.Context, medicine entities.Medicine, slot schedule.Slot) {
	prefs, err := s.prefs.Preferences(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("medicine_id", medicine.ID).Debug("Skipping reminder")
		return
	}
	if !prefs.MedicineReminders {
		return
	}

	_, err = s.enqueuer.Enqueue(tasks.DoseReminderTask{
		UserID:     medicine.UserID,
		MedicineID: medicine.ID,
		Name:       medicine.Name,
		Dosage:     medicine.Dosage,
		Slot:       slot.String(),
	})
	if err != nil {
		s.logger.WithError(err).WithField("medicine_id", medicine.ID).Error("Failed to enqueue dose reminder")
	}
}

func nextFire(spec string, from time.Time) (time.Time, error) {
	next, err := GetNextRunTime(spec, from)
	if err != nil {
		return time.Time{}, err
	}
	return *next, nil
}
