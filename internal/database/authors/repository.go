// Package authors provides database operations for authors.
//
// # Usage
//
//	repo := authors.NewRepository(db)
//	list, err := repo.List(ctx, catalog.VisibleTo(user.AccessLevel))
package authors

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/database/dbutil"
	"github.com/mrlokans/catalog/internal/entities"
)

var _ catalog.Repository[*entities.Author] = (*Repository)(nil)

// Repository handles all author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves an author by ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Author, error) {
	var author entities.Author
	if err := r.db.WithContext(ctx).First(&author, "id = ?", id).Error; err != nil {
		return nil, dbutil.TranslateError(err)
	}
	return &author, nil
}

// List returns authors matching q, ordered by name.
func (r *Repository) List(ctx context.Context, q catalog.Query) ([]*entities.Author, error) {
	var authors []*entities.Author
	err := r.db.WithContext(ctx).
		Scopes(dbutil.Visible(q), dbutil.Contains(q.Name, "name"), dbutil.Limit(q.Limit)).
		Order("name").
		Find(&authors).Error
	return authors, err
}

// Save inserts a new author or updates an existing one.
func (r *Repository) Save(ctx context.Context, author *entities.Author) error {
	db := r.db.WithContext(ctx)
	if author.ID == "" {
		author.ID = entities.NewID()
		return dbutil.TranslateError(db.Create(author).Error)
	}
	return dbutil.TranslateError(db.Save(author).Error)
}

// Delete removes an author that no book references.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Book{}).Where("author_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return catalog.ErrHasBooks
		}

		result := tx.Delete(&entities.Author{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return catalog.ErrNotFound
		}
		return nil
	})
}
