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

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	SMTP       SMTPConfig
	RateLimit  RateLimitConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MinConns int
}

// JWTConfig holds JWT configuration. Tokens are issued by the identity
// service; this service only verifies them.
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Version        string
	AllowedOrigins []string
}

// SMTPConfig holds outgoing mail settings for HR notifications.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

// AttendanceConfig holds adjudication policy that is not stored per shift.
type AttendanceConfig struct {
	DefaultGraceMinutes          int
	EarlyArrivalLookbackMinutes  int
	MorningOutCutoff             string
	AfternoonOutCutoff           string
	ClampHolidayMultiplier       bool
	PendingReminderInterval      time.Duration
	PendingReminderCheckInterval time.Duration
}

func Load() (*Config, error) {
	// .env is optional; real deployments inject variables directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	} else if err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	config := &Config{}
	var errs []error

	// Database configuration
	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432, &errs),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris_attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: getEnvInt("DB_MAX_CONNS", 25, &errs),
		MinConns: getEnvInt("DB_MIN_CONNS", 5, &errs),
	}

	// Application configuration
	config.App = AppConfig{
		Port:           getEnvInt("APP_PORT", 8080, &errs),
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// SMTP configuration
	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     getEnvInt("SMTP_PORT", 587, &errs),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@hris.local"),
		FromName: getEnv("SMTP_FROM_NAME", "HRIS Attendance"),
	}

	config.RateLimit = RateLimitConfig{
		RequestsPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 200, &errs),
	}

	// Attendance policy
	config.Attendance = AttendanceConfig{
		DefaultGraceMinutes:          getEnvInt("ATTENDANCE_DEFAULT_GRACE_MINUTES", 5, &errs),
		EarlyArrivalLookbackMinutes:  getEnvInt("ATTENDANCE_EARLY_ARRIVAL_LOOKBACK_MINUTES", 30, &errs),
		MorningOutCutoff:             getEnv("ATTENDANCE_MORNING_OUT_CUTOFF", "12:00:00"),
		AfternoonOutCutoff:           getEnv("ATTENDANCE_AFTERNOON_OUT_CUTOFF", "17:00:00"),
		ClampHolidayMultiplier:       getEnvBool("ATTENDANCE_HOLIDAY_MULTIPLIER_CLAMP", false, &errs),
		PendingReminderInterval:      getEnvDuration("ATTENDANCE_PENDING_REMINDER_INTERVAL", 24*time.Hour, &errs),
		PendingReminderCheckInterval: getEnvDuration("ATTENDANCE_PENDING_REMINDER_CHECK_INTERVAL", time.Hour, &errs),
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.DefaultGraceMinutes < 0 {
		return fmt.Errorf("ATTENDANCE_DEFAULT_GRACE_MINUTES must not be negative")
	}
	if c.Attendance.EarlyArrivalLookbackMinutes < 0 {
		return fmt.Errorf("ATTENDANCE_EARLY_ARRIVAL_LOOKBACK_MINUTES must not be negative")
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return value
}

func getEnvBool(key string, fallback bool, errs *[]error) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return value
}

func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return value
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
