// Package dbutil holds the gorm scopes and error translation shared by the
// domain repositories.
package dbutil

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/catalog/internal/catalog"
	"github.com/mrlokans/catalog/internal/entities"
)

// Models returns every entity managed by AutoMigrate, in dependency order.
func Models() []any {
	return []any{
		&entities.User{},
		&entities.Author{},
		&entities.Series{},
		&entities.Tag{},
		&entities.Book{},
		&entities.AuditEvent{},
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Visible restricts a query to rows at or below q.MaxAccessLevel.
func Visible(q catalog.Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.MaxAccessLevel == nil {
			return db
		}
		return db.Where("access_level <= ?", *q.MaxAccessLevel)
	}
}

// Contains matches term as a case-insensitive substring of any of the columns.
func Contains(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		needle := strings.TrimSpace(term)
		if needle == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + likeEscaper.Replace(strings.ToLower(needle)) + "%"

		conds := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, col := range columns {
			conds[i] = "LOWER(" + col + `) LIKE ? ESCAPE '\'`
			args[i] = pattern
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

// Limit applies q.Limit when it is positive.
func Limit(n int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if n <= 0 {
			return db
		}
		return db.Limit(n)
	}
}

// TranslateError maps gorm errors onto the catalog sentinels.
func TranslateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return catalog.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", catalog.ErrDuplicate, err)
	default:
		return err
	}
}
