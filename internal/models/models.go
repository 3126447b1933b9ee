package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// SessionEntry is one key/value slot of a browser session's local storage.
// (session_id, key) is unique; Value holds the serialized payload.
type SessionEntry struct {
	BaseModel
	SessionID string    `json:"session_id" gorm:"type:varchar(26);not null;uniqueIndex:idx_session_entries_session_key"`
	Key       string    `json:"key" gorm:"column:entry_key;not null;uniqueIndex:idx_session_entries_session_key"`
	Value     string    `json:"value" gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime;index"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&SessionEntry{},
	}

	return db.AutoMigrate(models...)
}
