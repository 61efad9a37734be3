package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/medcompanion/internal/auth"
	"github.com/mrlokans/medcompanion/internal/database/accounts"
	"github.com/mrlokans/medcompanion/internal/database/medicines"
	"github.com/mrlokans/medcompanion/internal/entities"
	"github.com/mrlokans/medcompanion/internal/live"
)

var (
	ErrDuplicateEmail     = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrAccountNotFound    = errors.New("account not found")
)

// Stores groups the persistence dependencies of the Service.
type Stores struct {
	Accounts    AccountStore
	Medicines   MedicineStore
	Preferences PreferenceStore
}

// Service is the single entry point the UI uses for accounts, medicines and
// preferences. It holds no session state.
type Service struct {
	accounts    AccountStore
	medicines   MedicineStore
	preferences PreferenceStore
	audit       Auditor
	bcryptCost  int
	logger      logrus.FieldLogger
}

// NewService creates a Service. A nil auditor disables audit recording and a
// nil logger uses the standard logrus logger.
func NewService(stores Stores, auditor Auditor, bcryptCost int, logger logrus.FieldLogger) *Service {
	if auditor == nil {
		auditor = noopAuditor{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		accounts:    stores.Accounts,
		medicines:   stores.Medicines,
		preferences: stores.Preferences,
		audit:       auditor,
		bcryptCost:  bcryptCost,
		logger:      logger,
	}
}

// Register creates an account and returns its id. The lookup by email only
// saves the cost of hashing; the unique index decides duplicates, so two
// racing registrations produce exactly one account.
func (s *Service) Register(ctx context.Context, username, email, password string) (uint, error) {
	_, err := s.accounts.FindByEmail(ctx, email)
	switch {
	case err == nil:
		s.audit.LogAuth(ctx, 0, "register_failed", email, ErrDuplicateEmail)
		return 0, ErrDuplicateEmail
	case !errors.Is(err, accounts.ErrNotFound):
		return 0, unavailable(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return 0, err
	}

	id, err := s.accounts.Insert(ctx, username, email, hash)
	if errors.Is(err, accounts.ErrEmailTaken) {
		s.audit.LogAuth(ctx, 0, "register_failed", email, ErrDuplicateEmail)
		return 0, ErrDuplicateEmail
	}
	if err != nil {
		return 0, unavailable(err)
	}

	s.logger.WithField("user_id", id).Info("Account registered")
	s.audit.LogAuth(ctx, id, "register", email, nil)
	return id, nil
}

// Login returns the account matching email and password exactly.
func (s *Service) Login(ctx context.Context, email, password string) (*entities.User, error) {
	user, err := s.accounts.FindByCredentials(ctx, email, password)
	if errors.Is(err, accounts.ErrNotFound) {
		s.audit.LogAuth(ctx, 0, "login_failed", email, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, unavailable(err)
	}

	s.audit.LogAuth(ctx, user.ID, "login", email, nil)
	return user, nil
}

// Logout only records the event; session state lives with the caller.
func (s *Service) Logout(ctx context.Context, user *entities.User) {
	if user == nil {
		return
	}
	s.audit.LogAuth(ctx, user.ID, "logout", user.Email, nil)
}

// Account returns the account with the given id.
func (s *Service) Account(ctx context.Context, userID uint) (*entities.User, error) {
	user, err := s.accounts.FindByID(ctx, userID)
	if errors.Is(err, accounts.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return user, nil
}

// UpdateUsername changes the display name and returns the updated account.
func (s *Service) UpdateUsername(ctx context.Context, userID uint, username string) (*entities.User, error) {
	err := s.accounts.UpdateUsername(ctx, userID, username)
	if errors.Is(err, accounts.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		s.audit.LogProfile(ctx, userID, "Username change failed", err)
		return nil, unavailable(err)
	}

	s.audit.LogProfile(ctx, userID, "Changed username to "+username, nil)
	return s.Account(ctx, userID)
}

// ListMedicines returns the live list of the user's medicines. The query is
// lazy: nothing is read until it is subscribed.
func (s *Service) ListMedicines(userID uint) *live.Query[[]entities.Medicine] {
	return s.medicines.WatchByUser(userID)
}

// Medicines returns a one-off snapshot of the user's medicines.
func (s *Service) Medicines(ctx context.Context, userID uint) ([]entities.Medicine, error) {
	list, err := s.medicines.ListByUser(ctx, userID)
	if err != nil {
		return nil, unavailable(err)
	}
	return list, nil
}

// AddMedicine stores medicine as given; field contents are not validated.
func (s *Service) AddMedicine(ctx context.Context, medicine *entities.Medicine) error {
	err := s.medicines.Insert(ctx, medicine)
	s.audit.LogMedicine(ctx, *medicine, "add", err)
	if err != nil {
		return medicineError(err)
	}
	s.logger.WithFields(logrus.Fields{
		"user_id":     medicine.UserID,
		"medicine_id": medicine.ID,
	}).Debug("Medicine added")
	return nil
}

// DeleteMedicine removes the entry with medicine.ID, if it exists.
func (s *Service) DeleteMedicine(ctx context.Context, medicine entities.Medicine) error {
	err := s.medicines.Delete(ctx, medicine)
	s.audit.LogMedicine(ctx, medicine, "delete", err)
	if err != nil {
		return medicineError(err)
	}
	return nil
}

// UpdateMedicine overwrites the entry with medicine.ID, if it exists.
func (s *Service) UpdateMedicine(ctx context.Context, medicine *entities.Medicine) error {
	err := s.medicines.Update(ctx, medicine)
	s.audit.LogMedicine(ctx, *medicine, "update", err)
	if err != nil {
		return medicineError(err)
	}
	return nil
}

// Preferences returns the user's preferences with defaults filled in.
func (s *Service) Preferences(ctx context.Context, userID uint) (Preferences, error) {
	values, err := s.preferences.List(ctx, userID)
	if err != nil {
		return Preferences{}, unavailable(err)
	}
	return preferencesFromValues(values), nil
}

// SavePreferences stores every field of prefs.
func (s *Service) SavePreferences(ctx context.Context, userID uint, prefs Preferences) error {
	values := prefs.values()
	if err := s.preferences.SetAll(ctx, userID, values); err != nil {
		return unavailable(err)
	}
	s.audit.LogSettings(ctx, userID, "preferences_update", describe(values))
	return nil
}

func medicineError(err error) error {
	if errors.Is(err, medicines.ErrOwnerRequired) {
		return err
	}
	return unavailable(err)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

func describe(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+values[k])
	}
	return strings.Join(parts, ", ")
}
