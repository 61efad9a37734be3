package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./medcompanion.db"
)

// Default values for the loopback UI bridge
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8190
)

// DefaultBcryptCost is the bcrypt work factor for new password hashes
const DefaultBcryptCost = 12
