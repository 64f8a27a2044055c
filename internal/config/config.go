package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port       string
	Env        string
	LogLevel   string
	ClinicName string

	// Session and record storage
	RedisAddr     string
	RedisPassword string
	DatabaseURL   string
	SessionTTL    time.Duration

	// Field extraction (Gemini); the rule-based extractor is used when no key is set
	GeminiAPIKey  string
	GeminiModelID string

	// Patient directory
	PatientsCSV string

	// Email notifications
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	FormsDir          string

	// Calendar integration
	CalendlyPAT           string
	CalendlyEventTypeUUID string

	// Reminder dispatch
	ReminderPollInterval time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		ClinicName: getEnv("CLINIC_NAME", "Medical Clinic"),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 24*time.Hour),

		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModelID: getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),

		PatientsCSV: getEnv("PATIENTS_CSV", "patients.csv"),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Medical Clinic"),
		FormsDir:          getEnv("FORMS_DIR", "forms"),

		CalendlyPAT:           getEnv("CALENDLY_PAT", ""),
		CalendlyEventTypeUUID: getEnv("CALENDLY_EVENT_TYPE_UUID", ""),

		ReminderPollInterval: getEnvAsDuration("REMINDER_POLL_INTERVAL", time.Minute),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
