package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ModelFlashExp = "gemini-2.0-flash-exp"
	ModelExp1206  = "gemini-exp-1206"

	ClientREST = "rest"
	ClientSDK  = "sdk"
)

// SupportedModels lists the generation models a caller may pick.
var SupportedModels = []string{ModelFlashExp, ModelExp1206}

type Config struct {
	Port     string
	LogLevel string

	// SQLite file holding history, reports and users
	DatabasePath string

	// S3 export archive
	S3Enabled         bool
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	// Gemini
	GeminiAPIKey       string
	GeminiModel        string
	GeminiBaseURL      string
	GeminiClient       string
	GeminiTimeout      time.Duration
	DefaultTemperature float64

	// Upload limits
	MaxFileSize int64

	// Extraction
	PDFLibraryEnabled bool

	// Sessions
	SessionIdleTimeout time.Duration
	ErrorNoticeTTL     time.Duration
	SuccessNoticeTTL   time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabasePath:       getEnv("DATABASE_PATH", "data/documind.db"),
		S3Enabled:          getEnvBool("S3_ENABLED", false),
		S3Endpoint:         getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKeyID:      getEnv("S3_ACCESS_KEY_ID", "minioadmin"),
		S3SecretAccessKey:  getEnv("S3_SECRET_ACCESS_KEY", "minioadmin"),
		S3BucketName:       getEnv("S3_BUCKET_NAME", "documind-exports"),
		S3UseSSL:           getEnvBool("S3_USE_SSL", false),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", ModelFlashExp),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiClient:       strings.ToLower(getEnv("GEMINI_CLIENT", ClientREST)),
		GeminiTimeout:      getEnvDuration("GEMINI_TIMEOUT", 120*time.Second),
		DefaultTemperature: getEnvFloat("TEMPERATURE", 0.3),
		MaxFileSize:        getEnvInt64("MAX_FILE_SIZE_BYTES", 10*1024*1024),
		PDFLibraryEnabled:  getEnvBool("PDF_LIBRARY_ENABLED", true),
		SessionIdleTimeout: getEnvDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour),
		ErrorNoticeTTL:     getEnvDuration("ERROR_NOTICE_TTL", 5*time.Second),
		SuccessNoticeTTL:   getEnvDuration("SUCCESS_NOTICE_TTL", 3*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be defaulted away. A missing API key is
// allowed: callers may supply one per request.
func (c *Config) Validate() error {
	if !IsSupportedModel(c.GeminiModel) {
		return fmt.Errorf("GEMINI_MODEL must be one of %s", strings.Join(SupportedModels, ", "))
	}
	if c.DefaultTemperature < 0 || c.DefaultTemperature > 1 {
		return fmt.Errorf("TEMPERATURE must be within [0, 1], got %v", c.DefaultTemperature)
	}
	if c.GeminiClient != ClientREST && c.GeminiClient != ClientSDK {
		return fmt.Errorf("GEMINI_CLIENT must be %q or %q", ClientREST, ClientSDK)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE_BYTES must be positive")
	}
	return nil
}

func IsSupportedModel(model string) bool {
	for _, m := range SupportedModels {
		if m == model {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvInt64(key string, defaultValue int64) int64 {
	v, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}
