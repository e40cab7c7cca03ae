// Package models contains the persistent domain types, the error taxonomy and the
// JSON response envelope.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the columns shared by every entity. ID is internal and never
// serialized; UUID is the public identifier used in URLs.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UUID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"uuid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a random public identifier when none was set.
func (b *Base) BeforeCreate(_ *gorm.DB) error {
	if b.UUID == uuid.Nil {
		b.UUID = uuid.New()
	}
	return nil
}
