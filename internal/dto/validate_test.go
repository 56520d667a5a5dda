package dto_test

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/mindwell-backend/internal/dto"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	t.Run("Valid request", func(t *testing.T) {
		err := dto.Validate(&dto.RegisterRequest{Username: "sam", Email: "sam@example.com", Password: "password123"})

		assert.NoError(t, err)
	})

	t.Run("Uses json field names", func(t *testing.T) {
		err := dto.Validate(&dto.RegisterRequest{Username: "sam", Email: "not-an-email", Password: "short"})

		assert.EqualError(t, err, "email must be a valid email address; password must be at least 8 characters")
	})

	t.Run("Reset code must be six digits", func(t *testing.T) {
		err := dto.Validate(&dto.ResetPasswordRequest{Email: "a@b.co", Code: "12a456", NewPassword: "password123"})

		assert.EqualError(t, err, "code is invalid")
	})
}
