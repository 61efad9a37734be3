package accounts

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/medcompanion/internal/auth"
	"github.com/mrlokans/medcompanion/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := filepath.Join(t.TempDir(), "accounts.db")

	db, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	}

	return repo, cleanup
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return hash
}

func TestRepository_Insert(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	t.Run("assigns an id", func(t *testing.T) {
		id, err := repo.Insert(ctx, "alice", "alice@x.com", mustHash(t, "pw1"))
		require.NoError(t, err)
		assert.NotZero(t, id)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := repo.Insert(ctx, "alice2", "alice@x.com", mustHash(t, "other"))
		assert.ErrorIs(t, err, ErrEmailTaken)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("emails differing in case are distinct", func(t *testing.T) {
		_, err := repo.Insert(ctx, "alice", "Alice@x.com", mustHash(t, "pw1"))
		assert.NoError(t, err)
	})

	t.Run("usernames need not be unique", func(t *testing.T) {
		_, err := repo.Insert(ctx, "alice", "alice@y.com", mustHash(t, "pw1"))
		assert.NoError(t, err)
	})
}

func TestRepository_Insert_ConcurrentSameEmail(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	hash := mustHash(t, "pw1")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Insert(ctx, "racer", "race@x.com", hash)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_FindByEmail(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	id, err := repo.Insert(ctx, "alice", "alice@x.com", mustHash(t, "pw1"))
	require.NoError(t, err)

	t.Run("exact match", func(t *testing.T) {
		user, err := repo.FindByEmail(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("different case does not match", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "ALICE@x.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("surrounding whitespace does not match", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, " alice@x.com ")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepository_FindByCredentials(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	id, err := repo.Insert(ctx, "alice", "alice@x.com", mustHash(t, "pw1"))
	require.NoError(t, err)

	t.Run("matching credentials", func(t *testing.T) {
		user, err := repo.FindByCredentials(ctx, "alice@x.com", "pw1")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := repo.FindByCredentials(ctx, "alice@x.com", "PW1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := repo.FindByCredentials(ctx, "bob@x.com", "pw1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("stored hash is not the plaintext", func(t *testing.T) {
		user, err := repo.FindByEmail(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.NotEqual(t, "pw1", user.PasswordHash)
	})
}

func TestRepository_FindByID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	id, err := repo.Insert(ctx, "alice", "alice@x.com", mustHash(t, "pw1"))
	require.NoError(t, err)

	user, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", user.Email)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_UpdateUsername(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	id, err := repo.Insert(ctx, "alice", "alice@x.com", mustHash(t, "pw1"))
	require.NoError(t, err)

	require.NoError(t, repo.UpdateUsername(ctx, id, "Alice Smith"))

	user, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice Smith", user.Username)

	assert.ErrorIs(t, repo.UpdateUsername(ctx, 999, "ghost"), ErrNotFound)
}
