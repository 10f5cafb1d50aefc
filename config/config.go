package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	SaltRound int

	// Bridge behaviour
	ScanTimeoutSec   int // message-passing hosts must answer a scan within this window
	BridgeTimeoutSec int // every other capability

	// Progress engine
	MinWatchPercent int // a lecture counts as watched at this percentage and above

	// Attendance collaborator
	AttendanceApiURL string
	AttendanceApiKey string

	// Certificate email
	SendgridApiKey string
	EmailSender    string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		ScanTimeoutSec:   getEnvInt("SCAN_TIMEOUT_SEC", 30),
		BridgeTimeoutSec: getEnvInt("BRIDGE_TIMEOUT_SEC", 10),

		MinWatchPercent: getEnvInt("MIN_WATCH_PERCENT", 90),

		AttendanceApiURL: getEnv("ATTENDANCE_API_URL", ""),
		AttendanceApiKey: getEnv("ATTENDANCE_API_KEY", ""),

		SendgridApiKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "noreply@sefy.app"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.MinWatchPercent < 1 || AppConfig.MinWatchPercent > 100 {
		log.Printf("Warning: MIN_WATCH_PERCENT %d out of range, falling back to 90", AppConfig.MinWatchPercent)
		AppConfig.MinWatchPercent = 90
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
