// Package accounts provides database operations for user accounts.
//
// # Usage
//
//	repo := accounts.NewRepository(db)
//	id, err := repo.Insert(ctx, "alice", "alice@x.com", hash)
//	user, err := repo.FindByCredentials(ctx, "alice@x.com", "pw1")
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/medcompanion/internal/auth"
	"github.com/mrlokans/medcompanion/internal/entities"
)

var (
	ErrNotFound   = errors.New("account not found")
	ErrEmailTaken = errors.New("email already registered")
)

// Repository handles all account database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new accounts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a new account and returns its id. The unique email index is
// the authority on duplicates: a rejected insert returns ErrEmailTaken.
func (r *Repository) Insert(ctx context.Context, username, email, passwordHash string) (uint, error) {
	user := &entities.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, ErrEmailTaken
		}
		return 0, fmt.Errorf("failed to insert account: %w", err)
	}
	return user.ID, nil
}

// FindByEmail returns the account with exactly this email. Matching is
// case-sensitive and does not trim whitespace.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindByCredentials returns the account whose email matches exactly and
// whose stored hash verifies password. Both an unknown email and a wrong
// password yield ErrNotFound.
func (r *Repository) FindByCredentials(ctx context.Context, email, password string) (*entities.User, error) {
	user, err := r.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := auth.CheckPassword(password, user.PasswordHash); err != nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// FindByID returns the account with the given id.
func (r *Repository) FindByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// UpdateUsername changes the display name of an account.
func (r *Repository) UpdateUsername(ctx context.Context, id uint, username string) error {
	result := r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", id).
		Update("username", username)
	if result.Error != nil {
		return fmt.Errorf("failed to update username: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of registered accounts.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.User{}).Count(&count).Error
	return count, err
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to query account: %w", err)
}

// isUniqueViolation covers both gorm's translated error and the raw driver
// message, since translation is only active when the dialector supports it.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
