package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrMissingFields = errors.New("title, date and time are required")
	ErrInvalidFormat = errors.New("invalid date/time format")
	ErrNotFound      = errors.New("appointment not found")
	ErrForbidden     = errors.New("appointment belongs to another user")
	ErrInvalidInput  = errors.New("invalid input")
)

type AppointmentService struct {
	db *gorm.DB
}

func NewAppointmentService(db *gorm.DB) *AppointmentService {
	return &AppointmentService{db: db}
}

// List returns the user's appointments in chronological order.
func (s *AppointmentService) List(ctx context.Context, userID uuid.UUID) ([]Appointment, error) {
	var items []Appointment
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC").Order("time ASC").
		Find(&items).Error
	return items, err
}

// Upcoming returns appointments later today or on future dates.
func (s *AppointmentService) Upcoming(ctx context.Context, userID uuid.UUID) ([]Appointment, error) {
	now := time.Now()
	var candidates []Appointment
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, now.Format(dateLayout)).
		Order("date ASC").Order("time ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}

	items := make([]Appointment, 0, len(candidates))
	for _, a := range candidates {
		if a.UpcomingAt(now) {
			items = append(items, a)
		}
	}
	return items, nil
}

func (s *AppointmentService) Create(ctx context.Context, userID uuid.UUID, req AppointmentRequest) (*Appointment, error) {
	appt, err := fromRequest(req)
	if err != nil {
		return nil, err
	}
	appt.UserID = userID
	if err := s.db.WithContext(ctx).Create(appt).Error; err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return appt, nil
}

func (s *AppointmentService) Update(ctx context.Context, userID, id uuid.UUID, req AppointmentRequest) (*Appointment, error) {
	appt, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	update, err := fromRequest(req)
	if err != nil {
		return nil, err
	}

	appt.Title = update.Title
	appt.Date = update.Date
	appt.Time = update.Time
	appt.Description = update.Description
	if err := s.db.WithContext(ctx).Model(appt).Updates(map[string]interface{}{
		"title":       appt.Title,
		"date":        appt.Date,
		"time":        appt.Time,
		"description": appt.Description,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return appt, nil
}

func (s *AppointmentService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	appt, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(appt).Error
}

func (s *AppointmentService) PurgeUserData(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Where("user_id = ?", userID).Delete(&Appointment{}).Error
}

func (s *AppointmentService) owned(ctx context.Context, userID, id uuid.UUID) (*Appointment, error) {
	var appt Appointment
	if err := s.db.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if appt.UserID != userID {
		return nil, ErrForbidden
	}
	return &appt, nil
}

func fromRequest(req AppointmentRequest) (*Appointment, error) {
	title := strings.TrimSpace(req.Title)
	date := strings.TrimSpace(req.Date)
	clock := strings.TrimSpace(req.Time)
	if title == "" || date == "" || clock == "" {
		return nil, ErrMissingFields
	}
	if err := dto.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	tm, err := time.Parse(timeLayout, clock)
	if err != nil {
		return nil, ErrInvalidFormat
	}

	return &Appointment{
		Title:       title,
		Date:        d.Format(dateLayout),
		Time:        tm.Format(timeLayout),
		Description: strings.TrimSpace(req.Description),
	}, nil
}
