package database

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	sharedMu sync.Mutex
	shared   *Database
)

// Open returns the process-wide database handle, creating it on first use.
// Construction happens under a lock, so concurrent callers share a single
// handle. A failed open is not remembered and the next call tries again.
// The handle lives for the rest of the process.
func Open(dbPath string) (*Database, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		if dbPath != shared.Path {
			logrus.WithFields(logrus.Fields{
				"requested": dbPath,
				"open":      shared.Path,
			}).Warn("Database already open at a different path, reusing existing handle")
		}
		return shared, nil
	}

	db, err := NewDatabase(dbPath)
	if err != nil {
		return nil, err
	}
	shared = db
	return shared, nil
}
