package database

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/medcompanion/internal/database/accounts"
	"github.com/mrlokans/medcompanion/internal/database/audit"
	"github.com/mrlokans/medcompanion/internal/database/medicines"
	"github.com/mrlokans/medcompanion/internal/database/preferences"
	"github.com/mrlokans/medcompanion/internal/entities"
	"github.com/mrlokans/medcompanion/internal/live"
)

// SchemaVersion is the single fixed schema version. There is no migration
// path between versions.
const SchemaVersion = 1

const busyTimeoutMillis = 5000

type Database struct {
	DB   *gorm.DB
	Path string

	changes     *live.Feed[uint]
	accounts    *accounts.Repository
	medicines   *medicines.Repository
	preferences *preferences.Repository
	audit       *audit.Repository
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Medicine{},
		&entities.Preference{},
		&entities.AuditEvent{},
	)
	if err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)).Error; err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("failed to stamp schema version: %w", err)
	}

	changes := live.NewFeed[uint]()
	database := &Database{
		DB:          db,
		Path:        dbPath,
		changes:     changes,
		accounts:    accounts.NewRepository(db),
		medicines:   medicines.NewRepository(db, changes),
		preferences: preferences.NewRepository(db),
		audit:       audit.NewRepository(db),
	}

	logrus.WithField("path", dbPath).Info("Database initialized")

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the underlying connection is usable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Changes returns the store-level change feed keyed by user id.
func (d *Database) Changes() *live.Feed[uint] {
	return d.changes
}

func (d *Database) Accounts() *accounts.Repository {
	return d.accounts
}

func (d *Database) Medicines() *medicines.Repository {
	return d.medicines
}

func (d *Database) Preferences() *preferences.Repository {
	return d.preferences
}

func (d *Database) Audit() *audit.Repository {
	return d.audit
}

// dsn adds a busy timeout so concurrent writers wait for the lock instead of
// failing with SQLITE_BUSY.
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_busy_timeout=%d", dbPath, sep, busyTimeoutMillis)
}

func closeQuietly(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
