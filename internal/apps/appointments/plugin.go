package appointments

import (
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Plugin struct{}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) ID() string { return "appointments" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{&Appointment{}}
}

func (p *Plugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewAppointmentHandler(NewAppointmentService(db))

	router.Get("/appointments", handler.List)
	router.Post("/appointments", handler.Create)
	router.Put("/appointments/:id", handler.Update)
	router.Delete("/appointments/:id", handler.Delete)
	router.Get("/notifications", handler.Notifications)
}

func (p *Plugin) PurgeUserData(tx *gorm.DB, userID uuid.UUID) error {
	return NewAppointmentService(tx).PurgeUserData(tx, userID)
}
