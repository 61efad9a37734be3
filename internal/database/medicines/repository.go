// Package medicines provides database operations for per-user medication
// entries, including the live per-user list.
//
// # Usage
//
//	repo := medicines.NewRepository(db, feed)
//	err := repo.Insert(ctx, &entities.Medicine{UserID: id, Name: "Aspirin"})
//	sub := repo.WatchByUser(id).Subscribe(ctx)
package medicines

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/medcompanion/internal/entities"
	"github.com/mrlokans/medcompanion/internal/live"
)

var ErrOwnerRequired = errors.New("medicine must belong to an account")

// Repository handles all medicine database operations. Every successful write
// signals the change feed for the affected owners after the commit.
type Repository struct {
	db      *gorm.DB
	changes *live.Feed[uint]
}

// NewRepository creates a new medicines repository that publishes to changes.
func NewRepository(db *gorm.DB, changes *live.Feed[uint]) *Repository {
	return &Repository{db: db, changes: changes}
}

// Insert stores a new entry and fills in its id.
func (r *Repository) Insert(ctx context.Context, medicine *entities.Medicine) error {
	if medicine.UserID == 0 {
		return ErrOwnerRequired
	}
	medicine.ID = 0

	if err := r.db.WithContext(ctx).Create(medicine).Error; err != nil {
		return fmt.Errorf("failed to insert medicine: %w", err)
	}
	r.changes.Notify(medicine.UserID)
	return nil
}

// Update overwrites the entry with medicine.ID. Updating an id that does not
// exist changes nothing and reports no error. Moving an entry to another
// owner notifies both owners.
func (r *Repository) Update(ctx context.Context, medicine *entities.Medicine) error {
	if medicine.UserID == 0 {
		return ErrOwnerRequired
	}

	var previousOwner uint
	var updated bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entities.Medicine
		err := tx.Select("id", "user_id").First(&existing, medicine.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		previousOwner = existing.UserID

		result := tx.Model(&entities.Medicine{ID: medicine.ID}).
			Select("UserID", "Name", "Dosage", "Frequency", "Time", "UpdatedAt").
			Updates(medicine)
		if result.Error != nil {
			return result.Error
		}
		updated = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update medicine %d: %w", medicine.ID, err)
	}

	if updated {
		r.changes.Notify(medicine.UserID)
		if previousOwner != medicine.UserID {
			r.changes.Notify(previousOwner)
		}
	}
	return nil
}

// Delete removes the entry with medicine.ID. Only the id is consulted.
// Deleting an id that does not exist is a no-op.
func (r *Repository) Delete(ctx context.Context, medicine entities.Medicine) error {
	var owner uint
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entities.Medicine
		err := tx.Select("id", "user_id").First(&existing, medicine.ID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		owner = existing.UserID

		result := tx.Delete(&entities.Medicine{}, medicine.ID)
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete medicine %d: %w", medicine.ID, err)
	}

	if deleted {
		r.changes.Notify(owner)
	}
	return nil
}

// FindByID returns a single entry, or nil when none has that id.
func (r *Repository) FindByID(ctx context.Context, id uint) (*entities.Medicine, error) {
	var medicine entities.Medicine
	err := r.db.WithContext(ctx).First(&medicine, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find medicine %d: %w", id, err)
	}
	return &medicine, nil
}

// ListByUser returns the user's entries ordered by id. The result is never
// nil.
func (r *Repository) ListByUser(ctx context.Context, userID uint) ([]entities.Medicine, error) {
	medicines := make([]entities.Medicine, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&medicines).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	return medicines, nil
}

// WatchByUser returns a live query over the user's entries. Each Subscribe
// emits the full current list and then the full list again after every
// committed write that touches this user's rows.
func (r *Repository) WatchByUser(userID uint) *live.Query[[]entities.Medicine] {
	return live.NewQuery(r.changes, userID, func(ctx context.Context) ([]entities.Medicine, error) {
		return r.ListByUser(ctx, userID)
	})
}
