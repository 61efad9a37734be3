// Package session holds the process-wide login state observed by the UI.
//
// A Session is either logged out or logged in as one account. While logged in
// it keeps exactly one live subscription to that account's medicines and
// republishes every emission through Medicines(). Logging out, or logging in
// as someone else, cancels that subscription before anything else is
// published, so a list belonging to a previous account never appears after
// the switch.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/medcompanion/internal/audit"
	"github.com/mrlokans/medcompanion/internal/entities"
	"github.com/mrlokans/medcompanion/internal/live"
	"github.com/mrlokans/medcompanion/internal/services"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrClosed      = errors.New("session closed")
)

type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// Facade is the domain API a Session drives.
type Facade interface {
	Register(ctx context.Context, username, email, password string) (uint, error)
	Login(ctx context.Context, email, password string) (*entities.User, error)
	Logout(ctx context.Context, user *entities.User)
	ListMedicines(userID uint) *live.Query[[]entities.Medicine]
	AddMedicine(ctx context.Context, medicine *entities.Medicine) error
	DeleteMedicine(ctx context.Context, medicine entities.Medicine) error
	UpdateMedicine(ctx context.Context, medicine *entities.Medicine) error
	UpdateUsername(ctx context.Context, userID uint, username string) (*entities.User, error)
	Preferences(ctx context.Context, userID uint) (services.Preferences, error)
	SavePreferences(ctx context.Context, userID uint, prefs services.Preferences) error
}

var _ Facade = (*services.Service)(nil)

type Session struct {
	facade Facade
	logger logrus.FieldLogger

	account   *live.Value[*entities.User]
	medicines *live.Value[[]entities.Medicine]

	mu        sync.Mutex
	gen       uint64
	sessionID string
	sub       *live.Subscription[[]entities.Medicine]
	pumpDone  chan struct{}
	closed    bool
}

// New creates a logged-out session.
func New(facade Facade, logger logrus.FieldLogger) *Session {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Session{
		facade:    facade,
		logger:    logger,
		account:   live.NewValue[*entities.User](nil),
		medicines: live.NewValue(emptyList()),
	}
}

// Account publishes the logged-in account, or nil while logged out.
func (s *Session) Account() live.Observable[*entities.User] {
	return s.account
}

// Medicines publishes the logged-in account's medicines. It is empty while
// logged out.
func (s *Session) Medicines() live.Observable[[]entities.Medicine] {
	return s.medicines
}

func (s *Session) State() State {
	if s.account.Get() == nil {
		return LoggedOut
	}
	return LoggedIn
}

// CurrentAccount returns the logged-in account, or nil.
func (s *Session) CurrentAccount() *entities.User {
	return s.account.Get()
}

// SessionID returns the id assigned at the last successful login, or "" while
// logged out.
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Context returns ctx carrying the session id for audit attribution.
func (s *Session) Context(ctx context.Context) context.Context {
	if id := s.SessionID(); id != "" {
		return audit.WithSession(ctx, id)
	}
	return ctx
}

// Register creates an account. It does not log in.
func (s *Session) Register(ctx context.Context, username, email, password string) (uint, error) {
	return s.facade.Register(s.Context(ctx), username, email, password)
}

// Login authenticates and switches the session to the account. On failure
// the state is left as it was.
func (s *Session) Login(ctx context.Context, email, password string) (*entities.User, error) {
	sessionID := uuid.NewString()
	user, err := s.facade.Login(audit.WithSession(ctx, sessionID), email, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.gen++
	gen := s.gen
	previous, previousDone := s.detachLocked()

	s.sessionID = sessionID
	s.account.Set(user)
	s.medicines.Set(emptyList())

	// The subscription outlives the caller's ctx; it ends on logout.
	sub := s.facade.ListMedicines(user.ID).Subscribe(context.Background())
	done := make(chan struct{})
	s.sub = sub
	s.pumpDone = done
	go s.pump(gen, user.ID, sub, done)
	s.mu.Unlock()

	wait(previous, previousDone)

	s.logger.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"session_id": sessionID,
	}).Info("Logged in")
	return user, nil
}

// Logout cancels the medicine subscription and clears the state. Calling it
// while logged out is a no-op.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	user := s.account.Get()
	sessionID := s.sessionID
	s.gen++
	previous, previousDone := s.detachLocked()
	s.sessionID = ""
	s.account.Set(nil)
	s.medicines.Set(emptyList())
	s.mu.Unlock()

	wait(previous, previousDone)

	if user != nil {
		s.facade.Logout(audit.WithSession(ctx, sessionID), user)
		s.logger.WithFields(logrus.Fields{
			"user_id":    user.ID,
			"session_id": sessionID,
		}).Info("Logged out")
	}
}

// AddMedicine stores a new entry for the logged-in account. The new list
// arrives through Medicines(), not from this call.
func (s *Session) AddMedicine(ctx context.Context, name, dosage, frequency, timeLabel string) (*entities.Medicine, error) {
	user := s.account.Get()
	if user == nil {
		return nil, ErrNotLoggedIn
	}

	medicine := &entities.Medicine{
		UserID:    user.ID,
		Name:      name,
		Dosage:    dosage,
		Frequency: frequency,
		Time:      timeLabel,
	}
	if err := s.facade.AddMedicine(s.Context(ctx), medicine); err != nil {
		return nil, err
	}
	return medicine, nil
}

// DeleteMedicine removes an entry.
func (s *Session) DeleteMedicine(ctx context.Context, medicine entities.Medicine) error {
	return s.facade.DeleteMedicine(s.Context(ctx), medicine)
}

// UpdateMedicine overwrites an entry.
func (s *Session) UpdateMedicine(ctx context.Context, medicine *entities.Medicine) error {
	return s.facade.UpdateMedicine(s.Context(ctx), medicine)
}

// UpdateUsername renames the logged-in account and republishes it.
func (s *Session) UpdateUsername(ctx context.Context, username string) (*entities.User, error) {
	s.mu.Lock()
	user := s.account.Get()
	gen := s.gen
	s.mu.Unlock()
	if user == nil {
		return nil, ErrNotLoggedIn
	}

	updated, err := s.facade.UpdateUsername(s.Context(ctx), user.ID, username)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.gen == gen {
		s.account.Set(updated)
	}
	s.mu.Unlock()
	return updated, nil
}

// Preferences returns the logged-in account's preferences.
func (s *Session) Preferences(ctx context.Context) (services.Preferences, error) {
	user := s.account.Get()
	if user == nil {
		return services.Preferences{}, ErrNotLoggedIn
	}
	return s.facade.Preferences(ctx, user.ID)
}

// SavePreferences stores the logged-in account's preferences.
func (s *Session) SavePreferences(ctx context.Context, prefs services.Preferences) error {
	user := s.account.Get()
	if user == nil {
		return ErrNotLoggedIn
	}
	return s.facade.SavePreferences(s.Context(ctx), user.ID, prefs)
}

// Close logs out and rejects later logins.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.Logout(context.Background())
}

// detachLocked cancels the current subscription without waiting for it.
// The caller waits, outside the lock, with wait.
func (s *Session) detachLocked() (*live.Subscription[[]entities.Medicine], chan struct{}) {
	sub, done := s.sub, s.pumpDone
	s.sub, s.pumpDone = nil, nil
	if sub != nil {
		sub.Cancel()
	}
	return sub, done
}

func (s *Session) pump(gen uint64, userID uint, sub *live.Subscription[[]entities.Medicine], done chan struct{}) {
	defer close(done)

	for list := range sub.C() {
		s.mu.Lock()
		if s.gen == gen {
			s.medicines.Set(list)
		}
		s.mu.Unlock()
	}

	if err := sub.Err(); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("Medicine subscription failed")
	}
}

func wait(sub *live.Subscription[[]entities.Medicine], done chan struct{}) {
	if sub == nil {
		return
	}
	<-sub.Done()
	<-done
}

func emptyList() []entities.Medicine {
	return make([]entities.Medicine, 0)
}
