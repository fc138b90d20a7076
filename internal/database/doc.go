// Package database provides the SQLite data access layer for the catalog.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, store wiring
//	├── dbutil/          # Shared gorm scopes and error translation
//	├── users/           # User accounts
//	├── authors/         # Authors
//	├── books/           # Books and their tag links
//	├── series/          # Series
//	├── tags/            # Tags
//	└── audit/           # Audit trail
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type implementing one of the
// catalog repository interfaces:
//
//	db, err := database.NewDatabase("./catalog.db")
//	stores := db.Stores()
//	book, err := stores.Books.GetByID(ctx, id)
//
// # Referential Integrity
//
// Author, series and tag deletion counts referencing books and deletes inside
// a single transaction, so a concurrent insert cannot slip in between.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
//  6. Register the model in dbutil.Models
package database
