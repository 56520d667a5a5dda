package records

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Profile holds a user's personal details. One per user.
type Profile struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	FullName         string           `gorm:"size:100;not null" json:"full_name"`
	Age              *int             `json:"age"`
	Gender           string           `gorm:"size:20" json:"gender"`
	SSN              string           `gorm:"size:20" json:"ssn"`
	Email            string           `gorm:"size:120" json:"email"`
	PhoneNumber      string           `gorm:"size:20" json:"phone_number"`
	Address          string           `gorm:"size:200" json:"address"`
	MedicalHistories []MedicalHistory `gorm:"foreignKey:ProfileID" json:"medical_histories"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	models.EnsureID(&p.ID)
	return nil
}

// MedicalHistory is one condition on a profile, optionally with a PDF report.
type MedicalHistory struct {
	ID                   uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID            uuid.UUID    `gorm:"type:uuid;not null;index" json:"profile_id"`
	Disease              string       `gorm:"size:100;not null" json:"disease"`
	Doctor               string       `gorm:"size:100" json:"doctor"`
	Description          string       `gorm:"type:text" json:"description"`
	ReportFilename       string       `gorm:"size:255" json:"report_filename,omitempty"`
	Medications          []Medication `gorm:"foreignKey:MedicalHistoryID" json:"medications"`
	HasActiveMedications bool         `gorm:"-" json:"has_active_medications"`
	CreatedAt            time.Time    `gorm:"index" json:"created_at"`
}

func (h *MedicalHistory) BeforeCreate(tx *gorm.DB) error {
	models.EnsureID(&h.ID)
	return nil
}

// HasActiveMedicationsOn reports whether a medication with both dates set
// covers day. Open-ended medications do not count.
func (h *MedicalHistory) HasActiveMedicationsOn(day time.Time) bool {
	today := day.Format(dateLayout)
	for _, m := range h.Medications {
		if m.StartDate != "" && m.EndDate != "" && m.StartDate <= today && today <= m.EndDate {
			return true
		}
	}
	return false
}

// Medication belongs to a medical history. Dates are YYYY-MM-DD and the
// reminder is HH:MM; empty means unset.
type Medication struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MedicalHistoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"medical_history_id"`
	Name             string    `gorm:"size:100;not null" json:"name"`
	Dosage           string    `gorm:"size:50" json:"dosage"`
	Frequency        string    `gorm:"size:50" json:"frequency"`
	StartDate        string    `gorm:"size:10" json:"start_date"`
	EndDate          string    `gorm:"size:10" json:"end_date"`
	ReminderTime     string    `gorm:"size:5" json:"reminder_time"`
	Notes            string    `gorm:"type:text" json:"notes"`
	IsActive         bool      `gorm:"-" json:"is_active"`
	StatusLabel      string    `gorm:"-" json:"status_label"`
	CreatedAt        time.Time `json:"created_at"`
}

func (m *Medication) BeforeCreate(tx *gorm.DB) error {
	models.EnsureID(&m.ID)
	return nil
}

// IsActiveOn: with both dates set, start <= day <= end; with only a start,
// start <= day; without a start the medication is inactive.
func (m *Medication) IsActiveOn(day time.Time) bool {
	if m.StartDate == "" {
		return false
	}
	today := day.Format(dateLayout)
	if m.StartDate > today {
		return false
	}
	return m.EndDate == "" || today <= m.EndDate
}

// --- DTOs ---

type ProfileRequest struct {
	FullName    string `json:"full_name" form:"full_name" validate:"max=100"`
	Age         *int   `json:"age" form:"age" validate:"omitempty,min=0,max=150"`
	Gender      string `json:"gender" form:"gender" validate:"max=20"`
	SSN         string `json:"ssn" form:"ssn" validate:"max=20"`
	Email       string `json:"email" form:"email" validate:"omitempty,email,max=120"`
	PhoneNumber string `json:"phone_number" form:"phone_number" validate:"max=20"`
	Address     string `json:"address" form:"address" validate:"max=200"`
}

type MedicalHistoryRequest struct {
	Disease     string `json:"disease" form:"disease" validate:"max=100"`
	Doctor      string `json:"doctor" form:"doctor" validate:"max=100"`
	Description string `json:"description" form:"description"`
}

type MedicationRequest struct {
	Name         string `json:"name" form:"name" validate:"max=100"`
	Dosage       string `json:"dosage" form:"dosage" validate:"max=50"`
	Frequency    string `json:"frequency" form:"frequency" validate:"max=50"`
	StartDate    string `json:"start_date" form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string `json:"end_date" form:"end_date" validate:"omitempty,datetime=2006-01-02"`
	ReminderTime string `json:"reminder_time" form:"reminder_time" validate:"omitempty,datetime=15:04"`
	Notes        string `json:"notes" form:"notes"`
}
