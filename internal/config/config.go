package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the planner engine.
type Config struct {
	// DataDir holds the per-user task and gamification JSON files plus the
	// attachments tree.
	DataDir     string
	DatabaseURL string

	// ActiveUser is the account the engine scans on startup. The desktop
	// frontend replaces this by switching the session at login.
	ActiveUser string

	// Scan cadence and daily digest time. The reminder scan must stay much
	// finer than the smallest reminder window (10 minutes).
	ReminderInterval time.Duration
	SummaryTime      string

	// Remote delivery settings. Empty credentials disable a channel.
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	SenderEmail   string
	TwilioSID     string
	TwilioToken   string
	TwilioFrom    string
	TelegramToken string

	DeliveryTimeout time.Duration
	DeliveryWorkers int
}

// Load reads configuration from the environment with sane defaults.
// A local .env file is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DataDir:          envOr("PLANNER_DATA_DIR", "data"),
		DatabaseURL:      envOr("DATABASE_URL", "users.db"),
		ActiveUser:       strings.TrimSpace(os.Getenv("PLANNER_USER")),
		ReminderInterval: envDuration("REMINDER_INTERVAL", 30*time.Second),
		SummaryTime:      envOr("SUMMARY_TIME", "09:00"),
		SMTPHost:         strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:         envInt("SMTP_PORT", 587),
		SMTPUser:         strings.TrimSpace(os.Getenv("SMTP_USER")),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		SenderEmail:      strings.TrimSpace(os.Getenv("SENDER_EMAIL")),
		TwilioSID:        strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
		TwilioToken:      strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
		TwilioFrom:       strings.TrimSpace(os.Getenv("TWILIO_PHONE_NUMBER")),
		TelegramToken:    strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DeliveryTimeout:  envDuration("DELIVERY_TIMEOUT", 15*time.Second),
		DeliveryWorkers:  envInt("DELIVERY_WORKERS", 4),
	}

	if cfg.ReminderInterval <= 0 {
		return cfg, fmt.Errorf("REMINDER_INTERVAL must be positive")
	}
	if cfg.DeliveryWorkers <= 0 {
		cfg.DeliveryWorkers = 1
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
