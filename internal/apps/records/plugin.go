package records

import (
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plugin serves profiles, medical histories, medications and reports.
type Plugin struct {
	uploadDir string
}

func New(uploadDir string) *Plugin {
	return &Plugin{uploadDir: uploadDir}
}

func (p *Plugin) ID() string { return "records" }

func (p *Plugin) Models() []interface{} {
	return []interface{}{
		&Profile{},
		&MedicalHistory{},
		&Medication{},
	}
}

func (p *Plugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	handler := NewRecordsHandler(NewRecordsService(db, p.uploadDir), cfg.MaxUploadSize)

	router.Get("/profile", handler.GetProfile)
	router.Post("/profile", handler.SaveProfile)
	router.Delete("/profile", handler.DeleteProfile)

	router.Post("/profile/medical-history", handler.AddHistory)
	router.Put("/profile/medical-history/:id", handler.UpdateHistory)
	router.Delete("/profile/medical-history/:id", handler.DeleteHistory)
	router.Post("/profile/medical-history/:id/report", handler.UploadReport)
	router.Get("/profile/medical-history/:id/report", handler.DownloadReport)
	router.Post("/profile/medical-history/:id/medications", handler.AddMedication)

	router.Put("/medications/:id", handler.UpdateMedication)
	router.Delete("/medications/:id", handler.DeleteMedication)
}

func (p *Plugin) PurgeUserData(tx *gorm.DB, userID uuid.UUID) error {
	return NewRecordsService(tx, p.uploadDir).PurgeUserData(tx, userID)
}
