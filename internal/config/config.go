package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TokenFormatJWT    = "jwt"
	TokenFormatPaseto = "paseto"
)

var (
	ErrMissingSecret      = errors.New("JWT_SECRET is required")
	ErrUnknownTokenFormat = errors.New("unknown TOKEN_FORMAT")
	ErrInvalidTokenExpiry = errors.New("TOKEN_EXPIRY must be positive")
	ErrInvalidMinScore    = errors.New("DETECTION_MIN_SCORE must be between 0 and 1")
)

type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Detection DetectionConfig
	QA        QAConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins for the frontend
	MaxUploadBytes  int64
}

// AuthConfig is loaded once at startup and handed to the token service by pointer.
type AuthConfig struct {
	SigningSecret     []byte
	TokenExpiry       time.Duration
	TokenFormat       string // jwt or paseto
	PasswordMinLength int
}

type DetectionConfig struct {
	APIURL   string
	APIKey   string // optional, public inference is attempted without it
	Timeout  time.Duration
	MinScore float64
}

type QAConfig struct {
	APIURL  string
	APIKey  string // empty selects the offline answerer
	Model   string
	Timeout time.Duration
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 75*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000", "http://localhost:3001"}),
			MaxUploadBytes:  int64(getIntEnv("MAX_UPLOAD_BYTES", 16*1024*1024)),
		},
		Auth: AuthConfig{
			SigningSecret:     []byte(getEnv("JWT_SECRET", "")),
			TokenExpiry:       getDurationEnv("TOKEN_EXPIRY", 7*24*time.Hour),
			TokenFormat:       strings.ToLower(getEnv("TOKEN_FORMAT", TokenFormatJWT)),
			PasswordMinLength: getIntEnv("PASSWORD_MIN_LENGTH", 6),
		},
		Detection: DetectionConfig{
			APIURL:   getEnv("HUGGINGFACE_API_URL", "https://api-inference.huggingface.co/models/hustvl/yolos-tiny"),
			APIKey:   getEnv("HUGGINGFACE_API_KEY", ""),
			Timeout:  getDurationEnv("DETECTION_TIMEOUT", 30*time.Second),
			MinScore: getFloatEnv("DETECTION_MIN_SCORE", 0.3),
		},
		QA: QAConfig{
			APIURL:  getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta"),
			APIKey:  getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.0-flash-exp"),
			Timeout: getDurationEnv("QA_TIMEOUT", 30*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings the process cannot start without.
func (c *Config) Validate() error {
	if err := c.Auth.Validate(); err != nil {
		return err
	}

	if c.Detection.MinScore < 0 || c.Detection.MinScore > 1 {
		return fmt.Errorf("%w, got %v", ErrInvalidMinScore, c.Detection.MinScore)
	}

	return nil
}

// Validate rejects an empty secret instead of signing with a default one.
func (c *AuthConfig) Validate() error {
	if len(c.SigningSecret) == 0 {
		return ErrMissingSecret
	}

	if c.TokenExpiry <= 0 {
		return fmt.Errorf("%w, got %s", ErrInvalidTokenExpiry, c.TokenExpiry)
	}

	switch c.TokenFormat {
	case TokenFormatJWT, TokenFormatPaseto:
	default:
		return fmt.Errorf("%w %q (want %q or %q)", ErrUnknownTokenFormat, c.TokenFormat, TokenFormatJWT, TokenFormatPaseto)
	}

	return nil
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

// Address returns the listen address for the HTTP server
func (c *ServerConfig) Address() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatValue
}

// getDurationEnv accepts Go duration strings ("15m", "168h"), whole days ("7d")
// or plain seconds.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return defaultValue
		}
		return time.Duration(n) * 24 * time.Hour
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Split by comma and trim whitespace
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
