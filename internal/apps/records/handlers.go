package records

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type RecordsHandler struct {
	service       *RecordsService
	maxUploadSize int
}

func NewRecordsHandler(service *RecordsService, maxUploadSize int) *RecordsHandler {
	return &RecordsHandler{service: service, maxUploadSize: maxUploadSize}
}

// GetProfile handles GET /api/p/profile
func (h *RecordsHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	profile, err := h.service.GetProfile(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, ErrNoProfile) {
			return c.JSON(fiber.Map{"profile": nil, "medical_histories": []MedicalHistory{}})
		}
		return recordsError(c, err)
	}
	return c.JSON(fiber.Map{"profile": profile, "medical_histories": profile.MedicalHistories})
}

// SaveProfile handles POST /api/p/profile
func (h *RecordsHandler) SaveProfile(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	profile, created, err := h.service.SaveProfile(c.UserContext(), userID, req)
	if err != nil {
		return recordsError(c, err)
	}

	status, message := fiber.StatusOK, "Profile updated successfully!"
	if created {
		status, message = fiber.StatusCreated, "Profile created successfully!"
	}
	return c.Status(status).JSON(fiber.Map{"message": message, "level": dto.LevelSuccess, "profile": profile})
}

// DeleteProfile handles DELETE /api/p/profile
func (h *RecordsHandler) DeleteProfile(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.service.DeleteProfile(c.UserContext(), userID); err != nil {
		if errors.Is(err, ErrNoProfile) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "No profile to delete.", Level: dto.LevelInfo,
			})
		}
		return recordsError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Profile deleted successfully.", Level: dto.LevelInfo})
}

// AddHistory handles POST /api/p/profile/medical-history
func (h *RecordsHandler) AddHistory(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}

	var req MedicalHistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	history, err := h.service.AddHistory(c.UserContext(), userID, req)
	if err != nil {
		if errors.Is(err, ErrNoProfile) {
			return flash(c, fiber.StatusConflict, "Create your profile before adding medical records.", dto.LevelWarning)
		}
		return recordsError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Medical record added.", "level": dto.LevelSuccess, "medical_history": history,
	})
}

// UpdateHistory handles PUT /api/p/profile/medical-history/:id
func (h *RecordsHandler) UpdateHistory(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	historyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "medical history")
	}

	var req MedicalHistoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	history, err := h.service.UpdateHistory(c.UserContext(), userID, historyID, req)
	if err != nil {
		return recordsError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Medical record updated.", "level": dto.LevelSuccess, "medical_history": history,
	})
}

// DeleteHistory handles DELETE /api/p/profile/medical-history/:id
func (h *RecordsHandler) DeleteHistory(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	historyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "medical history")
	}

	if err := h.service.DeleteHistory(c.UserContext(), userID, historyID); err != nil {
		return recordsError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Medical record deleted.", Level: dto.LevelInfo})
}

// UploadReport handles POST /api/p/profile/medical-history/:id/report
// with a multipart "report" field holding a PDF.
func (h *RecordsHandler) UploadReport(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	historyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "medical history")
	}

	history, err := h.service.OwnedHistory(c.UserContext(), userID, historyID)
	if err != nil {
		return recordsError(c, err)
	}

	file, err := c.FormFile("report")
	if err != nil {
		return flash(c, fiber.StatusBadRequest, "Please choose a PDF report to upload.", dto.LevelWarning)
	}
	if int(file.Size) > h.maxUploadSize {
		return flash(c, fiber.StatusRequestEntityTooLarge, "Report file is too large.", dto.LevelWarning)
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return flash(c, fiber.StatusBadRequest, "Only PDF reports are allowed.", dto.LevelWarning)
	}

	filename := h.service.NewReportFilename(history)
	savePath := h.service.ReportPath(filename)
	if err := os.MkdirAll(filepath.Dir(savePath), 0o755); err != nil {
		slog.Error("failed to create report directory", "error", err)
		return flash(c, fiber.StatusInternalServerError, "Failed to save report.", dto.LevelDanger)
	}
	if err := c.SaveFile(file, savePath); err != nil {
		slog.Error("failed to save report", "error", err)
		return flash(c, fiber.StatusInternalServerError, "Failed to save report.", dto.LevelDanger)
	}

	if err := h.service.AttachReport(c.UserContext(), history, filename); err != nil {
		os.Remove(savePath)
		return recordsError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Medical report uploaded.", "level": dto.LevelSuccess, "medical_history": history,
	})
}

// DownloadReport handles GET /api/p/profile/medical-history/:id/report
func (h *RecordsHandler) DownloadReport(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	historyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "medical history")
	}

	path, err := h.service.Report(c.UserContext(), userID, historyID)
	if err != nil {
		return recordsError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Download(path, filepath.Base(path))
}

// AddMedication handles POST /api/p/profile/medical-history/:id/medications
func (h *RecordsHandler) AddMedication(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	historyID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "medical history")
	}

	var req MedicationRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	med, err := h.service.AddMedication(c.UserContext(), userID, historyID, req)
	if err != nil {
		return recordsError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Medication added.", "level": dto.LevelSuccess, "medication": med,
	})
}

// UpdateMedication handles PUT /api/p/medications/:id
func (h *RecordsHandler) UpdateMedication(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	medID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "medication")
	}

	var req MedicationRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	med, err := h.service.UpdateMedication(c.UserContext(), userID, medID, req)
	if err != nil {
		return recordsError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Medication updated.", "level": dto.LevelSuccess, "medication": med,
	})
}

// DeleteMedication handles DELETE /api/p/medications/:id
func (h *RecordsHandler) DeleteMedication(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	medID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return invalidID(c, "medication")
	}

	if err := h.service.DeleteMedication(c.UserContext(), userID, medID); err != nil {
		return recordsError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Medication deleted.", Level: dto.LevelInfo})
}

func recordsError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return flash(c, fiber.StatusBadRequest, err.Error(), dto.LevelWarning)
	case errors.Is(err, ErrFullNameRequired):
		return flash(c, fiber.StatusBadRequest, "Full name is required.", dto.LevelWarning)
	case errors.Is(err, ErrDiseaseRequired):
		return flash(c, fiber.StatusBadRequest, "Disease/Condition is required.", dto.LevelWarning)
	case errors.Is(err, ErrMedicationName):
		return flash(c, fiber.StatusBadRequest, "Medication name is required.", dto.LevelWarning)
	case errors.Is(err, ErrNoProfile):
		return flash(c, fiber.StatusNotFound, "Create your profile first.", dto.LevelWarning)
	case errors.Is(err, ErrForbidden):
		return flash(c, fiber.StatusForbidden, "Unauthorized action.", dto.LevelDanger)
	case errors.Is(err, ErrHistoryNotFound):
		return flash(c, fiber.StatusNotFound, "Medical record not found.", dto.LevelDanger)
	case errors.Is(err, ErrMedicationNotFound):
		return flash(c, fiber.StatusNotFound, "Medication not found.", dto.LevelDanger)
	case errors.Is(err, ErrNoReport):
		return flash(c, fiber.StatusNotFound, "No report uploaded for this record.", dto.LevelInfo)
	default:
		slog.Error("records request failed", "path", c.Path(), "error", err)
		return flash(c, fiber.StatusInternalServerError, "Something went wrong. Please try again.", dto.LevelDanger)
	}
}

func flash(c *fiber.Ctx, status int, message, level string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message, Level: level})
}

func unauthorized(c *fiber.Ctx) error {
	return flash(c, fiber.StatusUnauthorized, "Unauthorized", dto.LevelDanger)
}

func badBody(c *fiber.Ctx) error {
	return flash(c, fiber.StatusBadRequest, "Invalid request body", dto.LevelWarning)
}

func invalidID(c *fiber.Ctx, what string) error {
	return flash(c, fiber.StatusBadRequest, "Invalid "+what+" ID", dto.LevelWarning)
}
