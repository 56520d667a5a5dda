package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Source types of a blocked forum submission.
const (
	SourcePost  = "post"
	SourceReply = "reply"
)

// FlaggedLog is the audit record of a blocked forum submission.
// Rows are insert-only and survive account deletion.
type FlaggedLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Reason     string    `gorm:"size:255;not null" json:"reason"`
	Category   string    `gorm:"size:100;index" json:"category"`
	SourceType string    `gorm:"size:20;not null;index" json:"source_type"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
}

func (l *FlaggedLog) BeforeCreate(tx *gorm.DB) error {
	EnsureID(&l.ID)
	return nil
}
