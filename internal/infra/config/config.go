package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken         string
	DatabaseURL           string
	LogLevel              string
	Environment           string
	CronSpecDoseCheck     string // minute-level tick evaluating reminder buckets
	ReminderWindowMinutes int    // friend-reminder eligibility window
	BleedingWindowDays    int    // withdrawal-bleeding window length inside rest days
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecDoseCheck = os.Getenv("CRON_SPEC_DOSE_CHECK")
	if cfg.CronSpecDoseCheck == "" {
		cfg.CronSpecDoseCheck = "* * * * *" // Default: every minute
	}

	var err error
	cfg.ReminderWindowMinutes, err = intEnv("REMINDER_WINDOW_MINUTES", 30)
	if err != nil {
		return nil, err
	}

	cfg.BleedingWindowDays, err = intEnv("BLEEDING_WINDOW_DAYS", 5)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}
