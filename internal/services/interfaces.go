package services

import (
	"context"

	"github.com/mrlokans/medcompanion/internal/entities"
	"github.com/mrlokans/medcompanion/internal/live"
)

// AccountStore provides access to registered accounts.
type AccountStore interface {
	Insert(ctx context.Context, username, email, passwordHash string) (uint, error)
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
	FindByCredentials(ctx context.Context, email, password string) (*entities.User, error)
	FindByID(ctx context.Context, id uint) (*entities.User, error)
	UpdateUsername(ctx context.Context, id uint, username string) error
}

// MedicineStore provides access to medication entries and their live list.
type MedicineStore interface {
	Insert(ctx context.Context, medicine *entities.Medicine) error
	Update(ctx context.Context, medicine *entities.Medicine) error
	Delete(ctx context.Context, medicine entities.Medicine) error
	ListByUser(ctx context.Context, userID uint) ([]entities.Medicine, error)
	WatchByUser(userID uint) *live.Query[[]entities.Medicine]
}

// PreferenceStore persists per-user preferences as key/value pairs.
type PreferenceStore interface {
	List(ctx context.Context, userID uint) (map[string]string, error)
	SetAll(ctx context.Context, userID uint, values map[string]string) error
}

// Auditor records the outcome of user actions. Implementations must not
// block the caller on persistence.
type Auditor interface {
	LogAuth(ctx context.Context, userID uint, action, email string, err error)
	LogMedicine(ctx context.Context, medicine entities.Medicine, action string, err error)
	LogProfile(ctx context.Context, userID uint, description string, err error)
	LogSettings(ctx context.Context, userID uint, action, description string)
}

type noopAuditor struct{}

func (noopAuditor) LogAuth(context.Context, uint, string, string, error)          {}
func (noopAuditor) LogMedicine(context.Context, entities.Medicine, string, error) {}
func (noopAuditor) LogProfile(context.Context, uint, string, error)               {}
func (noopAuditor) LogSettings(context.Context, uint, string, string)             {}
