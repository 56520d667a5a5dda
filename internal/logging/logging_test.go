package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGHandler_PersistsErrors(t *testing.T) {
	db := dbtest.Open(t)
	h := newPGHandler(db, time.Hour)

	logger := slog.New(NewMultiHandler(NewJSONHandler(&bytes.Buffer{}), h))
	logger.Info("ignored")
	logger.Error("moderation provider failed",
		"provider", "Gemini",
		"action", "moderation",
		"user_id", "u-1",
		"error", "timeout",
		"latency_ms", 12.6,
		"status", 503,
	)
	h.Stop()

	require.Eventually(t, func() bool {
		var n int64
		db.Model(&models.SystemLog{}).Count(&n)
		return n == 1
	}, time.Second, 10*time.Millisecond)

	var entry models.SystemLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "Gemini", entry.Provider)
	assert.Equal(t, "moderation", entry.Action)
	assert.Equal(t, "timeout", entry.Error)
	assert.Equal(t, 13, entry.LatencyMs)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, "u-1", *entry.UserID)

	var extra map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.Equal(t, float64(503), extra["status"])
}

func TestMultiHandler_FansOut(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, &slog.HandlerOptions{Level: slog.LevelWarn}),
	))

	logger.Info("hello")
	logger.With("provider", "Campus AI").Warn("fallback")

	assert.Contains(t, a.String(), "hello")
	assert.NotContains(t, b.String(), "hello")
	assert.Contains(t, b.String(), `"provider":"Campus AI"`)
	assert.True(t, NewMultiHandler(slog.NewJSONHandler(&a, nil)).Enabled(context.Background(), slog.LevelInfo))
}

func TestPurgeExpired(t *testing.T) {
	db := dbtest.Open(t)
	now := time.Now()
	require.NoError(t, db.Create(&[]models.SystemLog{
		{Timestamp: now.AddDate(0, 0, -31), Level: "ERROR", Message: "old"},
		{Timestamp: now.AddDate(0, 0, -1), Level: "ERROR", Message: "recent"},
	}).Error)

	assert.Equal(t, int64(1), PurgeExpired(db, now))

	var left []models.SystemLog
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, "recent", left[0].Message)
}

func TestLevelFromEnv(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, levelFromEnv("DEBUG"))
	assert.Equal(t, slog.LevelWarn, levelFromEnv("warning"))
	assert.Equal(t, slog.LevelError, levelFromEnv("error"))
	assert.Equal(t, slog.LevelInfo, levelFromEnv(""))
}
