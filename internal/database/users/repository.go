// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByUsername(ctx, "admin")
package users

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/database/dbutil"
	"github.com/mrlokans/catalog/internal/entities"
)

var _ catalog.UserRepository = (*Repository)(nil)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, dbutil.TranslateError(err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by exact username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, dbutil.TranslateError(err)
	}
	return &user, nil
}

// List returns users whose name or username matches q.Name, ordered by name.
func (r *Repository) List(ctx context.Context, q catalog.Query) ([]*entities.User, error) {
	var users []*entities.User
	err := r.db.WithContext(ctx).
		Scopes(dbutil.Visible(q), dbutil.Contains(q.Name, "name", "username"), dbutil.Limit(q.Limit)).
		Order("name").
		Find(&users).Error
	return users, err
}

// Save inserts or updates a user. Usernames are unique.
func (r *Repository) Save(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&entities.User{}).
			Where("username = ? AND id <> ?", user.Username, user.ID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return catalog.ErrDuplicate
		}

		if user.ID == "" {
			user.ID = entities.NewID()
			return dbutil.TranslateError(tx.Create(user).Error)
		}
		return dbutil.TranslateError(tx.Save(user).Error)
	})
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&entities.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Count returns the total number of users.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.User{}).Count(&count).Error
	return count, err
}
