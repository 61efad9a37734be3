// Package preferences provides database operations for per-user profile
// preferences.
//
// # Usage
//
//	repo := preferences.NewRepository(db)
//	err := repo.Set(ctx, userID, entities.PreferenceKeyDarkMode, "true")
//	values, err := repo.List(ctx, userID)
package preferences

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/medcompanion/internal/entities"
)

// Repository handles all preference database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new preferences repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get retrieves one preference. The boolean is false when the user never set
// the key.
func (r *Repository) Get(ctx context.Context, userID uint, key string) (string, bool, error) {
	var pref entities.Preference
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get preference %q: %w", key, err)
	}
	return pref.Value, true, nil
}

// Set creates or updates a preference.
func (r *Repository) Set(ctx context.Context, userID uint, key, value string) error {
	pref := entities.Preference{UserID: userID, Key: key, Value: value}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&pref).Error
	if err != nil {
		return fmt.Errorf("failed to set preference %q: %w", key, err)
	}
	return nil
}

// SetAll writes several preferences in one transaction.
func (r *Repository) SetAll(ctx context.Context, userID uint, values map[string]string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &Repository{db: tx}
		for key, value := range values {
			if err := txRepo.Set(ctx, userID, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a preference so that its default applies again.
func (r *Repository) Delete(ctx context.Context, userID uint, key string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		Delete(&entities.Preference{}).Error
}

// List returns every stored preference of the user keyed by name.
func (r *Repository) List(ctx context.Context, userID uint) (map[string]string, error) {
	var prefs []entities.Preference
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&prefs).Error; err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}

	values := make(map[string]string, len(prefs))
	for _, p := range prefs {
		values[p.Key] = p.Value
	}
	return values, nil
}
