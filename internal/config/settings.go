package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Clinic settings. Populated by Load; zero values before that.
var (
	// Patient directory spreadsheet. When SpreadsheetID is empty the client
	// resolves SpreadsheetTitle through the Drive API.
	SpreadsheetID    string
	SpreadsheetTitle string
	WorksheetRange   string

	// Appointment calendar.
	CalendarID                 string
	AppointmentDurationMinutes int
	ClinicOpenHour             int
	ClinicCloseHour            int
	ClinicTimezone             string

	// Voice agent webhook verification (x-vapi-secret). Empty disables the check.
	VapiSecretKey string

	// Staff notifications.
	DiscordWebhookURL string

	// GCP settings (Secret Manager fallback, log trace correlation).
	GCPProjectID string
)

// Secret Manager secret names.
const (
	SecretGoogleCredentials = "GOOGLE_CREDENTIALS_JSON"
)

// Load reads .env (best effort) and populates the package settings.
// Call once at startup, before any service is constructed.
func Load() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	SpreadsheetID = os.Getenv("SPREADSHEET_ID")
	SpreadsheetTitle = GetEnv("SPREADSHEET_TITLE", "WellnessGroveClinic_Patients")
	WorksheetRange = GetEnv("WORKSHEET_RANGE", "Sheet1")

	CalendarID = GetEnv("CALENDAR_ID", "primary")
	AppointmentDurationMinutes = GetEnvInt("APPOINTMENT_DURATION_MINUTES", 30)
	ClinicOpenHour = GetEnvInt("CLINIC_OPEN_HOUR", 9)
	ClinicCloseHour = GetEnvInt("CLINIC_CLOSE_HOUR", 17)
	ClinicTimezone = GetEnv("CLINIC_TIMEZONE", "UTC")

	VapiSecretKey = strings.TrimSpace(os.Getenv("VAPI_SECRET_KEY"))
	DiscordWebhookURL = os.Getenv("DISCORD_WEBHOOK_URL")
	GCPProjectID = GetEnv("GCP_PROJECT_ID", "")
}

// ClinicLocation returns the clinic timezone, falling back to UTC when the
// configured name does not resolve.
func ClinicLocation() *time.Location {
	loc, err := time.LoadLocation(ClinicTimezone)
	if err != nil {
		log.Printf("Warning: invalid CLINIC_TIMEZONE %q, using UTC: %v", ClinicTimezone, err)
		return time.UTC
	}
	return loc
}

// GetEnv returns the environment variable value, or the default when unset.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt returns the environment variable parsed as an int.
func GetEnvInt(key string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

// GetEnvBool returns the environment variable parsed as a bool.
func GetEnvBool(key string, defaultValue bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}
