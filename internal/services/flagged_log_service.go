package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/models"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidSourceType = errors.New("source_type must be post or reply")

const (
	maxReasonLen   = 255
	maxCategoryLen = 100
)

// FlaggedEntry describes one blocked submission.
type FlaggedEntry struct {
	UserID     uuid.UUID
	Text       string
	Reason     string
	Category   string
	SourceType string
}

// FlaggedLogService keeps the audit trail of blocked forum content.
type FlaggedLogService struct {
	db *gorm.DB
}

func NewFlaggedLogService(db *gorm.DB) *FlaggedLogService {
	return &FlaggedLogService{db: db}
}

// Log persists one audit row in its own transaction. Callers have already
// decided to block; an error here must not change that decision.
func (s *FlaggedLogService) Log(ctx context.Context, entry FlaggedEntry) error {
	if entry.SourceType != models.SourcePost && entry.SourceType != models.SourceReply {
		return ErrInvalidSourceType
	}

	category := strings.TrimSpace(entry.Category)
	if category == "" {
		category = "unspecified"
	}

	record := models.FlaggedLog{
		UserID:     entry.UserID,
		Text:       entry.Text,
		Reason:     truncate(entry.Reason, maxReasonLen),
		Category:   truncate(category, maxCategoryLen),
		SourceType: entry.SourceType,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if err != nil {
		err = fmt.Errorf("failed to write flagged log: %w", err)
		slog.Error("flagged content log failed",
			"action", "flagged_log",
			"user_id", entry.UserID.String(),
			"source_type", entry.SourceType,
			"error", err,
		)
		sentry.CaptureException(err)
		return err
	}

	slog.Info("flagged content logged",
		"user_id", entry.UserID.String(),
		"source_type", entry.SourceType,
		"category", record.Category,
	)
	return nil
}

func (s *FlaggedLogService) List(ctx context.Context, q dto.FlaggedLogQuery) ([]models.FlaggedLog, int64, error) {
	var logs []models.FlaggedLog
	var total int64

	query := s.db.WithContext(ctx).Model(&models.FlaggedLog{})
	if q.SourceType != "" {
		query = query.Where("source_type = ?", q.SourceType)
	}
	if q.Category != "" {
		query = query.Where("category = ?", strings.ToLower(q.Category))
	}
	if q.UserID != uuid.Nil {
		query = query.Where("user_id = ?", q.UserID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Limit(q.Limit).Offset(q.Offset).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
