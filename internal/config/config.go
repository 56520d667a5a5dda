package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported moderation providers.
const (
	ProviderGemini = "gemini"
	ProviderCampus = "campus"
)

type Config struct {
	// Database. DatabaseURL wins when set (sqlite:// or postgres://).
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Moderation
	ModerationProvider string
	ModerationTimeout  time.Duration

	GeminiAPIKey     string
	GeminiBaseURL    string
	GeminiAPIVersion string
	GeminiModel      string

	CampusModerationURL     string
	CampusModerationTimeout time.Duration

	BreakerMaxFailures uint32
	BreakerCooldown    time.Duration

	// Password reset mail
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	ResetCodeTTL time.Duration

	// Medical report uploads
	UploadDir     string
	MaxUploadSize int

	// Admin
	AdminEmails  string
	AdminUserIDs string
	AdminToken   string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "mindwell_db"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m")),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h")),

		ModerationProvider: strings.ToLower(getEnv("MODERATION_PROVIDER", ProviderGemini)),
		ModerationTimeout:  parseDuration(getEnv("MODERATION_TIMEOUT", "10s")),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:    getEnv("GEMINI_BASE_URL", ""),
		GeminiAPIVersion: getEnv("GEMINI_API_VERSION", "v1"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		CampusModerationURL:     getEnv("CAMPUS_MODERATION_URL", "http://cmsai:8000"),
		CampusModerationTimeout: parseDuration(getEnv("CAMPUS_MODERATION_TIMEOUT", "5s")),

		BreakerMaxFailures: uint32(parseInt(getEnv("MODERATION_BREAKER_MAX_FAILURES", "5"), 5)),
		BreakerCooldown:    parseDuration(getEnv("MODERATION_BREAKER_COOLDOWN", "30s")),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", "no-reply@mindwell.local"),
		ResetCodeTTL: parseDuration(getEnv("RESET_CODE_TTL", "15m")),

		UploadDir:     getEnv("UPLOAD_DIR", "uploads/reports"),
		MaxUploadSize: parseInt(getEnv("MAX_UPLOAD_SIZE", "4194304"), 4*1024*1024),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	if c.DatabaseURL == "" && c.DBPassword == "" {
		return errors.New("DB_PASSWORD or DATABASE_URL environment variable is required")
	}
	switch c.ModerationProvider {
	case ProviderGemini, ProviderCampus:
	default:
		return fmt.Errorf("unknown MODERATION_PROVIDER %q (expected %q or %q)", c.ModerationProvider, ProviderGemini, ProviderCampus)
	}
	return nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
