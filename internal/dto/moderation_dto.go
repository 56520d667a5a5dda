package dto

import "github.com/google/uuid"

// FlaggedLogQuery filters the admin audit listing.
type FlaggedLogQuery struct {
	SourceType string    `query:"source_type" validate:"omitempty,oneof=post reply"`
	Category   string    `query:"category" validate:"omitempty,max=100"`
	UserID     uuid.UUID `query:"-"`
	Limit      int       `query:"limit" validate:"min=0"`
	Offset     int       `query:"offset" validate:"min=0"`
}
