// Package series provides database operations for book series.
package series

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/database/dbutil"
	"github.com/mrlokans/catalog/internal/entities"
)

var _ catalog.Repository[*entities.Series] = (*Repository)(nil)

// Repository handles all series database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new series repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Series, error) {
	var s entities.Series
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, dbutil.TranslateError(err)
	}
	return &s, nil
}

func (r *Repository) List(ctx context.Context, q catalog.Query) ([]*entities.Series, error) {
	var list []*entities.Series
	err := r.db.WithContext(ctx).
		Scopes(dbutil.Visible(q), dbutil.Contains(q.Name, "name"), dbutil.Limit(q.Limit)).
		Order("name").
		Find(&list).Error
	return list, err
}

func (r *Repository) Save(ctx context.Context, s *entities.Series) error {
	db := r.db.WithContext(ctx)
	if s.ID == "" {
		s.ID = entities.NewID()
		return dbutil.TranslateError(db.Create(s).Error)
	}
	return dbutil.TranslateError(db.Save(s).Error)
}

// Delete removes a series unless a book still belongs to it.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Book{}).Where("series_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return catalog.ErrHasBooks
		}

		result := tx.Delete(&entities.Series{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return catalog.ErrNotFound
		}
		return nil
	})
}
