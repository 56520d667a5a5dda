package dashboard

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service *DashboardService
}

func NewDashboardHandler(service *DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Get handles GET /api/p/dashboard
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized", Level: dto.LevelDanger,
		})
	}

	summary, err := h.service.Build(c.UserContext(), userID, time.Now())
	if err != nil {
		slog.Error("dashboard build failed", "user_id", userID.String(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load dashboard", Level: dto.LevelDanger,
		})
	}
	return c.JSON(summary)
}
