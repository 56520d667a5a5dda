package dashboard

import (
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Plugin serves the per-user dashboard. It owns no tables.
type Plugin struct{}

func New() *Plugin {
	return &Plugin{}
}

func (p *Plugin) ID() string { return "dashboard" }

func (p *Plugin) Models() []interface{} { return nil }

func (p *Plugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewDashboardHandler(NewDashboardService(db))
	router.Get("/dashboard", handler.Get)
}
