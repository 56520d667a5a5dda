package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidResetCode = errors.New("invalid or expired reset code")

// PasswordResetService issues and redeems six digit reset codes.
type PasswordResetService struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer mailer.Mailer
}

func NewPasswordResetService(db *gorm.DB, cfg *config.Config, m mailer.Mailer) *PasswordResetService {
	return &PasswordResetService{db: db, cfg: cfg, mailer: m}
}

// RequestReset mails a code when the address is known. Unknown addresses
// succeed silently so the endpoint does not reveal accounts.
func (s *PasswordResetService) RequestReset(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	code, err := generateResetCode()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash reset code: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PasswordReset{}).
			Where("user_id = ? AND used = ?", user.ID, false).
			Update("used", true).Error; err != nil {
			return err
		}
		return tx.Create(&models.PasswordReset{
			UserID:    user.ID,
			CodeHash:  string(hash),
			ExpiresAt: time.Now().Add(s.cfg.ResetCodeTTL),
		}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to store reset code: %w", err)
	}

	body := fmt.Sprintf("Hello %s,\n\nYour MindWell password reset code is %s.\nIt expires in %s.\n",
		user.Username, code, s.cfg.ResetCodeTTL)
	if err := s.mailer.Send(ctx, user.Email, "Your password reset code", body); err != nil {
		slog.Error("reset code delivery failed", "action", "password_reset", "user_id", user.ID.String(), "error", err)
		return fmt.Errorf("failed to send reset code: %w", err)
	}
	return nil
}

// ResetPassword checks the latest unused code and sets the new password.
// All refresh tokens are revoked on success.
func (s *PasswordResetService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		return ErrInvalidResetCode
	}

	var reset models.PasswordReset
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND used = ?", user.ID, false).
		Order("created_at DESC").
		First(&reset).Error; err != nil {
		return ErrInvalidResetCode
	}
	if time.Now().After(reset.ExpiresAt) {
		return ErrInvalidResetCode
	}
	if err := bcrypt.CompareHashAndPassword([]byte(reset.CodeHash), []byte(req.Code)); err != nil {
		return ErrInvalidResetCode
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&reset).Update("used", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Update("password", string(hash)).Error; err != nil {
			return err
		}
		return tx.Model(&models.RefreshToken{}).
			Where("user_id = ?", user.ID).
			Update("revoked", true).Error
	})
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
