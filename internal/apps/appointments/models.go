package appointments

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Appointment is a dated reminder. Date is YYYY-MM-DD and Time is HH:MM,
// so string order equals chronological order.
type Appointment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Date        string    `gorm:"size:10;not null;index" json:"date"`
	Time        string    `gorm:"size:5;not null" json:"time"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	models.EnsureID(&a.ID)
	return nil
}

// UpcomingAt reports whether the appointment is later today or on a
// future date relative to now.
func (a *Appointment) UpcomingAt(now time.Time) bool {
	today := now.Format(dateLayout)
	return a.Date > today || (a.Date == today && a.Time >= now.Format(timeLayout))
}

// --- DTOs ---

type AppointmentRequest struct {
	Title       string `json:"title" form:"title" validate:"max=100"`
	Date        string `json:"date" form:"date"`
	Time        string `json:"time" form:"time"`
	Description string `json:"description" form:"description"`
}

type NotificationsResponse struct {
	Items []Appointment `json:"items"`
	Count int           `json:"count"`
}
