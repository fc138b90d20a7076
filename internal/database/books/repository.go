// Package books provides database operations for books and their tag links.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	newest, err := repo.List(ctx, catalog.Query{MaxAccessLevel: &level, Newest: true, Limit: 10})
package books

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/database/dbutil"
	"github.com/mrlokans/catalog/internal/entities"
)

var _ catalog.Repository[*entities.Book] = (*Repository)(nil)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a book with its author, series, tags and cover.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Series").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		First(&book, "id = ?", id).Error
	if err != nil {
		return nil, dbutil.TranslateError(err)
	}
	book.SyncTagIDs()
	return &book, nil
}

// List returns books matching q with their authors preloaded. Cover bytes are
// not loaded; use GetByID for those.
func (r *Repository) List(ctx context.Context, q catalog.Query) ([]*entities.Book, error) {
	db := r.db.WithContext(ctx).
		Omit("cover_image").
		Preload("Author").
		Scopes(
			dbutil.Visible(q),
			dbutil.Contains(q.Name, "title"),
			r.filters(q),
			dbutil.Limit(q.Limit),
		)

	switch {
	case q.Newest:
		db = db.Order("created_at DESC")
	case q.SeriesID != "":
		db = db.Order("series_index").Order("title")
	default:
		db = db.Order("title")
	}

	var books []*entities.Book
	if err := db.Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *Repository) filters(q catalog.Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.AuthorID != "" {
			db = db.Where("author_id = ?", q.AuthorID)
		}
		if q.SeriesID != "" {
			db = db.Where("series_id = ?", q.SeriesID)
		}
		if q.TagID != "" {
			db = db.Where("id IN (?)", r.db.Table("book_tags").Select("book_id").Where("tag_id = ?", q.TagID))
		}
		if q.MinWordCount != nil {
			db = db.Where("word_count >= ?", *q.MinWordCount)
		}
		if q.MaxWordCount != nil {
			db = db.Where("word_count <= ?", *q.MaxWordCount)
		}
		if q.PublishedAfter != nil {
			db = db.Where("publish_date >= ?", *q.PublishedAfter)
		}
		if q.PublishedBefore != nil {
			db = db.Where("publish_date <= ?", *q.PublishedBefore)
		}
		return db
	}
}

// Save inserts or updates the book row and replaces its tag links with
// book.TagIDs. Unknown tag IDs are ignored.
func (r *Repository) Save(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tags []entities.Tag
		if len(book.TagIDs) > 0 {
			if err := tx.Where("id IN ?", book.TagIDs).Order("name").Find(&tags).Error; err != nil {
				return fmt.Errorf("failed to load tags: %w", err)
			}
		}

		if book.ID == "" {
			book.ID = entities.NewID()
			if err := tx.Omit(clause.Associations).Create(book).Error; err != nil {
				return dbutil.TranslateError(err)
			}
		} else if err := tx.Omit(clause.Associations).Save(book).Error; err != nil {
			return dbutil.TranslateError(err)
		}

		assoc := tx.Model(book).Association("Tags")
		if len(tags) == 0 {
			if err := assoc.Clear(); err != nil {
				return fmt.Errorf("failed to clear tags: %w", err)
			}
		} else if err := assoc.Replace(tags); err != nil {
			return fmt.Errorf("failed to link tags: %w", err)
		}

		book.Tags = tags
		book.SyncTagIDs()
		return nil
	})
}

// Delete removes a book and its tag links.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM book_tags WHERE book_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to unlink tags: %w", err)
		}

		result := tx.Delete(&entities.Book{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return catalog.ErrNotFound
		}
		return nil
	})
}
