package appointments

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AppointmentHandler struct {
	service *AppointmentService
}

func NewAppointmentHandler(service *AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

// List handles GET /api/p/appointments
func (h *AppointmentHandler) List(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	items, err := h.service.List(c.UserContext(), userID)
	if err != nil {
		return appointmentError(c, err)
	}
	return c.JSON(fiber.Map{"data": items, "total": len(items)})
}

// Notifications handles GET /api/p/notifications
func (h *AppointmentHandler) Notifications(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	items, err := h.service.Upcoming(c.UserContext(), userID)
	if err != nil {
		return appointmentError(c, err)
	}
	return c.JSON(NotificationsResponse{Items: items, Count: len(items)})
}

// Create handles POST /api/p/appointments
func (h *AppointmentHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req AppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return flash(c, fiber.StatusBadRequest, "Invalid request body", dto.LevelWarning)
	}

	appt, err := h.service.Create(c.UserContext(), userID, req)
	if err != nil {
		return appointmentError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Appointment created successfully!", "level": dto.LevelSuccess, "appointment": appt,
	})
}

// Update handles PUT /api/p/appointments/:id
func (h *AppointmentHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return flash(c, fiber.StatusBadRequest, "Invalid appointment ID", dto.LevelWarning)
	}

	var req AppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return flash(c, fiber.StatusBadRequest, "Invalid request body", dto.LevelWarning)
	}

	appt, err := h.service.Update(c.UserContext(), userID, id, req)
	if err != nil {
		return appointmentError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Appointment updated successfully!", "level": dto.LevelSuccess, "appointment": appt,
	})
}

// Delete handles DELETE /api/p/appointments/:id
func (h *AppointmentHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return flash(c, fiber.StatusBadRequest, "Invalid appointment ID", dto.LevelWarning)
	}

	if err := h.service.Delete(c.UserContext(), userID, id); err != nil {
		return appointmentError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Appointment deleted.", Level: dto.LevelInfo})
}

func appointmentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrMissingFields):
		return flash(c, fiber.StatusBadRequest, "Please fill out Title, Date, and Time.", dto.LevelDanger)
	case errors.Is(err, ErrInvalidFormat):
		return flash(c, fiber.StatusBadRequest, "Invalid date/time format.", dto.LevelDanger)
	case errors.Is(err, ErrInvalidInput):
		return flash(c, fiber.StatusBadRequest, err.Error(), dto.LevelWarning)
	case errors.Is(err, ErrForbidden):
		return flash(c, fiber.StatusForbidden, "Unauthorized action.", dto.LevelDanger)
	case errors.Is(err, ErrNotFound):
		return flash(c, fiber.StatusNotFound, "Appointment not found.", dto.LevelDanger)
	default:
		slog.Error("appointment request failed", "path", c.Path(), "error", err)
		return flash(c, fiber.StatusInternalServerError, "Something went wrong. Please try again.", dto.LevelDanger)
	}
}

func flash(c *fiber.Ctx, status int, message, level string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message, Level: level})
}

func unauthorized(c *fiber.Ctx) error {
	return flash(c, fiber.StatusUnauthorized, "Unauthorized", dto.LevelDanger)
}
