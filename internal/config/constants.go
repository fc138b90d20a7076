package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the local SQLite database.
	// It always holds sessions and, with the sqlite driver, the catalog itself.
	DefaultDatabasePath = "./catalog.db"

	// DefaultMongoDatabase is the database name used with the mongo driver.
	DefaultMongoDatabase = "catalog"
)

// Supported catalog storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)
