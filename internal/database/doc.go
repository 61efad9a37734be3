// Package database provides the persistent store for the application.
//
// # Architecture
//
// The store is a single SQLite file opened through gorm. Domain-specific
// operations live in sub-packages:
//
//	database/
//	├── database.go      # Connection setup, schema migration, shared handle
//	├── accounts/        # User accounts (register, credential lookup, profile)
//	├── medicines/       # Per-user medication entries and their live query
//	├── preferences/     # Per-user profile preferences
//	└── audit/           # Audit trail of session activity
//
// # Using Sub-packages
//
//	// Obtain the process-wide handle
//	db, err := database.Open("./medcompanion.db")
//
//	// Use the bound repositories
//	id, err := db.Accounts().Insert(ctx, "alice", "alice@x.com", hash)
//	sub := db.Medicines().WatchByUser(id).Subscribe(ctx)
//
// # Change Propagation
//
// The Database owns a live.Feed keyed by user id. The medicines repository
// signals it after every committed write, which is what re-runs the live
// queries handed out by WatchByUser. Writes that bypass the repository do not
// notify observers.
package database
