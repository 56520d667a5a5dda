package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	moderationProvider string
}

func NewHealthHandler(moderationProvider string) *HealthHandler {
	return &HealthHandler{moderationProvider: moderationProvider}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:     "ok",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		DB:         dbStatus,
		Moderation: h.moderationProvider,
	})
}
