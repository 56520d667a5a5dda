package forum

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForumPost exists only if its text passed moderation.
type ForumPost struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string       `gorm:"size:200;not null" json:"title"`
	Content   string       `gorm:"type:text;not null" json:"content"`
	Author    string       `gorm:"-" json:"author"`
	Replies   []ForumReply `gorm:"foreignKey:PostID" json:"replies"`
	CreatedAt time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (p *ForumPost) BeforeCreate(tx *gorm.DB) error {
	models.EnsureID(&p.ID)
	return nil
}

// ForumReply exists only if its text passed moderation.
type ForumReply struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Author    string    `gorm:"-" json:"author"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *ForumReply) BeforeCreate(tx *gorm.DB) error {
	models.EnsureID(&r.ID)
	return nil
}
