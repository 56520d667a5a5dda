package handlers

import (
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ModerationHandler struct {
	flaggedLogs *services.FlaggedLogService
}

func NewModerationHandler(flaggedLogs *services.FlaggedLogService) *ModerationHandler {
	return &ModerationHandler{flaggedLogs: flaggedLogs}
}

// ListFlaggedLogs handles GET /api/admin/moderation/flagged-logs
func (h *ModerationHandler) ListFlaggedLogs(c *fiber.Ctx) error {
	var q dto.FlaggedLogQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid query parameters", Level: dto.LevelWarning,
		})
	}
	if raw := c.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid user_id", Level: dto.LevelWarning,
			})
		}
		q.UserID = id
	}
	if err := dto.Validate(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(), Level: dto.LevelWarning,
		})
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}

	logs, total, err := h.flaggedLogs.List(c.UserContext(), q)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch flagged logs", Level: dto.LevelDanger,
		})
	}

	return c.JSON(fiber.Map{
		"data":   logs,
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
	})
}
