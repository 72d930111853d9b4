package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Session storage (Redis)
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool
	SessionTTL    time.Duration

	// Patient document store (DynamoDB)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	PatientsTable       string
	CheckinsTable       string

	// Captured-document storage (S3)
	DocumentsBucket        string
	DocumentsPublicBaseURL string
	CaptureMode            string
	MaxUploadBytes         int64

	// Check-in backend: "dynamo" writes the document store directly,
	// "rest" submits to a remote clinic API.
	BackendMode    string
	BackendBaseURL string

	// Front-desk admin API
	AdminJWTSecret string

	ClinicLocation     string
	TicketCleanupDelay time.Duration
	CORSAllowedOrigins []string

	VerifyRatePerSecond float64
	VerifyRateBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 2*time.Hour),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		PatientsTable:       getEnv("PATIENTS_TABLE", "patients"),
		CheckinsTable:       getEnv("CHECKINS_TABLE", "kiosk_checkins"),

		DocumentsBucket:        getEnv("DOCUMENTS_BUCKET", ""),
		DocumentsPublicBaseURL: getEnv("DOCUMENTS_PUBLIC_BASE_URL", ""),
		CaptureMode:            strings.ToLower(strings.TrimSpace(getEnv("CAPTURE_MODE", "s3"))),
		MaxUploadBytes:         getEnvAsInt64("MAX_UPLOAD_BYTES", 10<<20),

		BackendMode:    strings.ToLower(strings.TrimSpace(getEnv("BACKEND_MODE", "dynamo"))),
		BackendBaseURL: getEnv("BACKEND_BASE_URL", ""),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),

		ClinicLocation:     getEnv("CLINIC_LOCATION", "Your Total Foot Care Specialist"),
		TicketCleanupDelay: getEnvAsDuration("TICKET_CLEANUP_DELAY", time.Minute),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),

		VerifyRatePerSecond: getEnvAsFloat("VERIFY_RATE_PER_SECOND", 1),
		VerifyRateBurst:     getEnvAsInt("VERIFY_RATE_BURST", 5),
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
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

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
