package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNoProfile          = errors.New("profile not found")
	ErrFullNameRequired   = errors.New("full name is required")
	ErrDiseaseRequired    = errors.New("disease is required")
	ErrMedicationName     = errors.New("medication name is required")
	ErrHistoryNotFound    = errors.New("medical history not found")
	ErrMedicationNotFound = errors.New("medication not found")
	ErrNoReport           = errors.New("no report uploaded")
	ErrForbidden          = errors.New("record belongs to another user")
	ErrInvalidInput       = errors.New("invalid input")
)

// RecordsService manages profiles, medical histories, medications and
// their PDF reports.
type RecordsService struct {
	db        *gorm.DB
	uploadDir string
}

func NewRecordsService(db *gorm.DB, uploadDir string) *RecordsService {
	return &RecordsService{db: db, uploadDir: uploadDir}
}

// GetProfile returns the profile with histories newest first.
func (s *RecordsService) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var profile Profile
	err := s.db.WithContext(ctx).
		Preload("MedicalHistories", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at DESC")
		}).
		Preload("MedicalHistories.Medications", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC")
		}).
		Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoProfile
		}
		return nil, err
	}

	today := time.Now()
	for i := range profile.MedicalHistories {
		decorateHistory(&profile.MedicalHistories[i], today)
	}
	return &profile, nil
}

// SaveProfile creates or updates the caller's profile. The bool reports
// whether a new profile was created.
func (s *RecordsService) SaveProfile(ctx context.Context, userID uuid.UUID, req ProfileRequest) (*Profile, bool, error) {
	if err := dto.Validate(req); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, false, ErrFullNameRequired
	}

	var profile Profile
	created := false
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = Profile{UserID: userID}
		created = true
	case err != nil:
		return nil, false, err
	}

	profile.FullName = fullName
	profile.Age = req.Age
	profile.Gender = strings.TrimSpace(req.Gender)
	profile.SSN = strings.TrimSpace(req.SSN)
	profile.Email = strings.TrimSpace(req.Email)
	profile.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	profile.Address = strings.TrimSpace(req.Address)

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, false, fmt.Errorf("failed to save profile: %w", err)
	}
	return &profile, created, nil
}

// DeleteProfile removes the profile with its histories, medications and
// report files.
func (s *RecordsService) DeleteProfile(ctx context.Context, userID uuid.UUID) error {
	var reports []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile Profile
		if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoProfile
			}
			return err
		}
		var err error
		reports, err = deleteProfileTree(tx, []uuid.UUID{profile.ID})
		return err
	})
	if err != nil {
		return err
	}
	s.removeReports(reports)
	return nil
}

func (s *RecordsService) AddHistory(ctx context.Context, userID uuid.UUID, req MedicalHistoryRequest) (*MedicalHistory, error) {
	profile, err := s.profileFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := historyFromRequest(req)
	if err != nil {
		return nil, err
	}

	history.ProfileID = profile.ID
	if err := s.db.WithContext(ctx).Create(history).Error; err != nil {
		return nil, fmt.Errorf("failed to create medical history: %w", err)
	}
	return history, nil
}

func (s *RecordsService) UpdateHistory(ctx context.Context, userID, historyID uuid.UUID, req MedicalHistoryRequest) (*MedicalHistory, error) {
	history, err := s.OwnedHistory(ctx, userID, historyID)
	if err != nil {
		return nil, err
	}
	update, err := historyFromRequest(req)
	if err != nil {
		return nil, err
	}

	history.Disease = update.Disease
	history.Doctor = update.Doctor
	history.Description = update.Description
	if err := s.db.WithContext(ctx).Model(history).Updates(map[string]interface{}{
		"disease":     history.Disease,
		"doctor":      history.Doctor,
		"description": history.Description,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update medical history: %w", err)
	}
	return history, nil
}

func (s *RecordsService) DeleteHistory(ctx context.Context, userID, historyID uuid.UUID) error {
	history, err := s.OwnedHistory(ctx, userID, historyID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("medical_history_id = ?", history.ID).Delete(&Medication{}).Error; err != nil {
			return err
		}
		return tx.Delete(history).Error
	})
	if err != nil {
		return err
	}
	s.removeReports([]string{history.ReportFilename})
	return nil
}

// OwnedHistory loads a history and checks it hangs off the caller's profile.
func (s *RecordsService) OwnedHistory(ctx context.Context, userID, historyID uuid.UUID) (*MedicalHistory, error) {
	profile, err := s.profileFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	var history MedicalHistory
	if err := s.db.WithContext(ctx).First(&history, "id = ?", historyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHistoryNotFound
		}
		return nil, err
	}
	if history.ProfileID != profile.ID {
		return nil, ErrForbidden
	}
	return &history, nil
}

// ReportPath is where a stored report file lives on disk.
func (s *RecordsService) ReportPath(filename string) string {
	return filepath.Join(s.uploadDir, filepath.Base(filename))
}

// NewReportFilename returns a unique name for a history's next report.
func (s *RecordsService) NewReportFilename(history *MedicalHistory) string {
	return fmt.Sprintf("history_%s_%s.pdf", history.ID.String()[:8], uuid.New().String()[:8])
}

// AttachReport records filename as the history's report and removes the
// previous file.
func (s *RecordsService) AttachReport(ctx context.Context, history *MedicalHistory, filename string) error {
	previous := history.ReportFilename
	if err := s.db.WithContext(ctx).Model(history).Update("report_filename", filename).Error; err != nil {
		return fmt.Errorf("failed to attach report: %w", err)
	}
	history.ReportFilename = filename
	if previous != "" && previous != filename {
		s.removeReports([]string{previous})
	}
	return nil
}

// Report returns the on-disk path of an owned history's report.
func (s *RecordsService) Report(ctx context.Context, userID, historyID uuid.UUID) (string, error) {
	history, err := s.OwnedHistory(ctx, userID, historyID)
	if err != nil {
		return "", err
	}
	if history.ReportFilename == "" {
		return "", ErrNoReport
	}
	path := s.ReportPath(history.ReportFilename)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNoReport
	}
	return path, nil
}

func (s *RecordsService) AddMedication(ctx context.Context, userID, historyID uuid.UUID, req MedicationRequest) (*Medication, error) {
	history, err := s.OwnedHistory(ctx, userID, historyID)
	if err != nil {
		return nil, err
	}
	med, err := medicationFromRequest(req)
	if err != nil {
		return nil, err
	}

	med.MedicalHistoryID = history.ID
	if err := s.db.WithContext(ctx).Create(med).Error; err != nil {
		return nil, fmt.Errorf("failed to create medication: %w", err)
	}
	decorateMedication(med, time.Now())
	return med, nil
}

func (s *RecordsService) UpdateMedication(ctx context.Context, userID, medicationID uuid.UUID, req MedicationRequest) (*Medication, error) {
	med, err := s.ownedMedication(ctx, userID, medicationID)
	if err != nil {
		return nil, err
	}
	update, err := medicationFromRequest(req)
	if err != nil {
		return nil, err
	}

	update.ID = med.ID
	update.MedicalHistoryID = med.MedicalHistoryID
	update.CreatedAt = med.CreatedAt
	if err := s.db.WithContext(ctx).Save(update).Error; err != nil {
		return nil, fmt.Errorf("failed to update medication: %w", err)
	}
	decorateMedication(update, time.Now())
	return update, nil
}

func (s *RecordsService) DeleteMedication(ctx context.Context, userID, medicationID uuid.UUID) error {
	med, err := s.ownedMedication(ctx, userID, medicationID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(med).Error
}

// PurgeUserData removes the user's profile tree inside the account
// deletion transaction. Report files are removed once the rows are gone.
func (s *RecordsService) PurgeUserData(tx *gorm.DB, userID uuid.UUID) error {
	var profileIDs []uuid.UUID
	if err := tx.Model(&Profile{}).Where("user_id = ?", userID).Pluck("id", &profileIDs).Error; err != nil {
		return err
	}
	if len(profileIDs) == 0 {
		return nil
	}
	reports, err := deleteProfileTree(tx, profileIDs)
	if err != nil {
		return err
	}
	s.removeReports(reports)
	return nil
}

func (s *RecordsService) profileFor(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var profile Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoProfile
		}
		return nil, err
	}
	return &profile, nil
}

func (s *RecordsService) ownedMedication(ctx context.Context, userID, medicationID uuid.UUID) (*Medication, error) {
	var med Medication
	if err := s.db.WithContext(ctx).First(&med, "id = ?", medicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMedicationNotFound
		}
		return nil, err
	}
	if _, err := s.OwnedHistory(ctx, userID, med.MedicalHistoryID); err != nil {
		if errors.Is(err, ErrNoProfile) || errors.Is(err, ErrHistoryNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	return &med, nil
}

func (s *RecordsService) removeReports(filenames []string) {
	for _, name := range filenames {
		if name == "" {
			continue
		}
		if err := os.Remove(s.ReportPath(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove medical report", "file", name, "error", err)
		}
	}
}

// deleteProfileTree deletes medications, histories and profiles and
// returns the report filenames that were attached.
func deleteProfileTree(tx *gorm.DB, profileIDs []uuid.UUID) ([]string, error) {
	var histories []MedicalHistory
	if err := tx.Where("profile_id IN ?", profileIDs).Find(&histories).Error; err != nil {
		return nil, err
	}

	var reports []string
	if len(histories) > 0 {
		historyIDs := make([]uuid.UUID, len(histories))
		for i, h := range histories {
			historyIDs[i] = h.ID
			if h.ReportFilename != "" {
				reports = append(reports, h.ReportFilename)
			}
		}
		if err := tx.Where("medical_history_id IN ?", historyIDs).Delete(&Medication{}).Error; err != nil {
			return nil, err
		}
		if err := tx.Where("id IN ?", historyIDs).Delete(&MedicalHistory{}).Error; err != nil {
			return nil, err
		}
	}

	if err := tx.Where("id IN ?", profileIDs).Delete(&Profile{}).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func historyFromRequest(req MedicalHistoryRequest) (*MedicalHistory, error) {
	if err := dto.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	disease := strings.TrimSpace(req.Disease)
	if disease == "" {
		return nil, ErrDiseaseRequired
	}
	return &MedicalHistory{
		Disease:     disease,
		Doctor:      strings.TrimSpace(req.Doctor),
		Description: strings.TrimSpace(req.Description),
	}, nil
}

func medicationFromRequest(req MedicationRequest) (*Medication, error) {
	req.StartDate = strings.TrimSpace(req.StartDate)
	req.EndDate = strings.TrimSpace(req.EndDate)
	req.ReminderTime = strings.TrimSpace(req.ReminderTime)
	if err := dto.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrMedicationName
	}
	if req.StartDate != "" && req.EndDate != "" && req.EndDate < req.StartDate {
		return nil, fmt.Errorf("%w: end_date is before start_date", ErrInvalidInput)
	}
	return &Medication{
		Name:         name,
		Dosage:       strings.TrimSpace(req.Dosage),
		Frequency:    strings.TrimSpace(req.Frequency),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		ReminderTime: req.ReminderTime,
		Notes:        strings.TrimSpace(req.Notes),
	}, nil
}

func decorateHistory(h *MedicalHistory, today time.Time) {
	for i := range h.Medications {
		decorateMedication(&h.Medications[i], today)
	}
	h.HasActiveMedications = h.HasActiveMedicationsOn(today)
}

func decorateMedication(m *Medication, today time.Time) {
	m.IsActive = m.IsActiveOn(today)
	m.StatusLabel = "Inactive"
	if m.IsActive {
		m.StatusLabel = "Active"
	}
}
