package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("MODERATION_PROVIDER", "Campus")
	t.Setenv("RESET_CODE_TTL", "not-a-duration")
	t.Setenv("MAX_UPLOAD_SIZE", "-3")

	cfg := Load()

	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, ProviderCampus, cfg.ModerationProvider)
	assert.Equal(t, 15*time.Minute, cfg.ResetCodeTTL)
	assert.Equal(t, 4*1024*1024, cfg.MaxUploadSize)
	assert.Equal(t, 10*time.Second, cfg.ModerationTimeout)
	assert.Equal(t, uint32(5), cfg.BreakerMaxFailures)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{JWTSecret: "s", DatabaseURL: "sqlite://:memory:", ModerationProvider: ProviderGemini}
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.JWTSecret = ""
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg = base()
	cfg.DatabaseURL = ""
	assert.ErrorContains(t, cfg.Validate(), "DB_PASSWORD")
	cfg.DBPassword = "pw"
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.ModerationProvider = "openai"
	assert.ErrorContains(t, cfg.Validate(), "MODERATION_PROVIDER")
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5433", DBSSLMode: "require"}

	assert.Equal(t, "host=db user=u password=p dbname=n port=5433 sslmode=require TimeZone=UTC", cfg.DSN())
}
