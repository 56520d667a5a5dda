package forum

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/moderation"
)

var (
	ErrMissingFields  = errors.New("title and content are required")
	ErrEmptyReply     = errors.New("reply content is required")
	ErrTitleTooLong   = errors.New("title must be at most 200 characters")
	ErrPostNotFound   = errors.New("post not found")
	ErrReplyNotFound  = errors.New("reply not found")
	ErrForbidden      = errors.New("not the owner of this content")
	ErrContentBlocked = errors.New("content blocked by moderation")
)

// BlockedError carries the verdict that rejected a submission.
// It matches ErrContentBlocked with errors.Is.
type BlockedError struct {
	SourceType string
	Category   string
	Verdict    moderation.Verdict
}

func (e *BlockedError) Error() string {
	return e.SourceType + " blocked: " + e.Verdict.Reason
}

func (e *BlockedError) Is(target error) bool {
	return target == ErrContentBlocked
}
