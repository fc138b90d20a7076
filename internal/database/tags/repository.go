// Package tags provides database operations for tag management.
//
// Book/tag links live in the book_tags join table owned by the books
// repository; this package only reads it to guard deletion.
package tags

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/database/dbutil"
	"github.com/mrlokans/catalog/internal/entities"
)

var _ catalog.Repository[*entities.Tag] = (*Repository)(nil)

// Repository handles all tag database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new tags repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a tag by ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Tag, error) {
	var tag entities.Tag
	if err := r.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, dbutil.TranslateError(err)
	}
	return &tag, nil
}

// List searches tags by name (case-insensitive partial match).
func (r *Repository) List(ctx context.Context, q catalog.Query) ([]*entities.Tag, error) {
	var tags []*entities.Tag
	err := r.db.WithContext(ctx).
		Scopes(dbutil.Visible(q), dbutil.Contains(q.Name, "name"), dbutil.Limit(q.Limit)).
		Order("name").
		Find(&tags).Error
	return tags, err
}

func (r *Repository) Save(ctx context.Context, tag *entities.Tag) error {
	db := r.db.WithContext(ctx)
	if tag.ID == "" {
		tag.ID = entities.NewID()
		return dbutil.TranslateError(db.Create(tag).Error)
	}
	return dbutil.TranslateError(db.Save(tag).Error)
}

// Delete removes a tag that is not attached to any book.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table("book_tags").Where("tag_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return catalog.ErrHasBooks
		}

		result := tx.Delete(&entities.Tag{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return catalog.ErrNotFound
		}
		return nil
	})
}
