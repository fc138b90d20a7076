// Package entities defines the catalog domain model shared by the relational
// and document stores. Identifiers are UUID strings assigned on first save.
package entities

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a fresh identifier for an entity about to be inserted.
func NewID() string {
	return uuid.NewString()
}

// Timestamps carries creation and modification times. gorm fills them on
// write; the document store calls Touch.
type Timestamps struct {
	CreatedAt time.Time `gorm:"index" bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Touch stamps UpdatedAt and, on first save, CreatedAt.
func (t *Timestamps) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}
