package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/database/audit"
	"github.com/mrlokans/catalog/internal/database/authors"
	"github.com/mrlokans/catalog/internal/database/books"
	"github.com/mrlokans/catalog/internal/database/dbutil"
	"github.com/mrlokans/catalog/internal/database/series"
	"github.com/mrlokans/catalog/internal/database/tags"
	"github.com/mrlokans/catalog/internal/database/users"
)

// sqliteParams make concurrent writers wait for the lock instead of failing
// with SQLITE_BUSY. Immediate transactions take the write lock at BEGIN, so a
// read-then-write transaction never has to upgrade its lock mid-way.
const sqliteParams = "_journal=WAL&_busy_timeout=5000&_txlock=immediate"

type Database struct {
	DB *gorm.DB
}

// dsn appends the connection parameters to a database path.
func dsn(dbPath string) string {
	if strings.Contains(dbPath, "?") {
		return dbPath + "&" + sqliteParams
	}
	return dbPath + "?" + sqliteParams
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	if err := db.AutoMigrate(dbutil.Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database initialized", "path", dbPath)

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SQL exposes the underlying connection pool for the session store.
func (d *Database) SQL() (*sql.DB, error) {
	return d.DB.DB()
}

// Ping checks that the database still answers.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Stores wires the gorm repositories into the catalog store bundle.
func (d *Database) Stores() catalog.Stores {
	return catalog.Stores{
		Users:   users.NewRepository(d.DB),
		Authors: authors.NewRepository(d.DB),
		Books:   books.NewRepository(d.DB),
		Series:  series.NewRepository(d.DB),
		Tags:    tags.NewRepository(d.DB),
		Audit:   audit.NewRepository(d.DB),
		Health:  d,
	}
}
