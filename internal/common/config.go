package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	OCR     OCRConfig
	LLM     LLMConfig
	Rewrite RewriteConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	GRPCAddr        string
	AllowedOrigins  []string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Backend         string // "remote" | "tesseract" | "gosseract"
	Endpoint        string
	Timeout         time.Duration
	SlowNoticeAfter time.Duration
	MaxImageSide    int
	Tesseract       string
	TessdataDir     string
	Lang            string
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// RewriteConfig holds fan-out configuration
type RewriteConfig struct {
	Concurrency int
	ProxyURL    string // when set, rewrites go through a remote proxy instead of the in-process one
}

const (
	OCRBackendRemote    = "remote"
	OCRBackendTesseract = "tesseract"
	OCRBackendGosseract = "gosseract" // requires -tags gosseract
)

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			GRPCAddr:        getEnv("GRPC_ADDR", ":9090"),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			MaxBodyBytes:    int64(getEnvAsInt("MAX_BODY_BYTES", 20<<20)),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		OCR: OCRConfig{
			Backend:         getEnv("OCR_BACKEND", OCRBackendRemote),
			Endpoint:        getEnv("OCR_ENDPOINT", ""),
			Timeout:         getEnvAsDuration("OCR_TIMEOUT", 0),
			SlowNoticeAfter: getEnvAsDuration("SLOW_NOTICE_AFTER", 10*time.Second),
			MaxImageSide:    getEnvAsInt("OCR_MAX_IMAGE_SIDE", 2048),
			Tesseract:       getEnv("TESSERACT_BIN", "tesseract"),
			TessdataDir:     getEnv("TESSDATA_PREFIX", ""),
			Lang:            getEnv("TESSERACT_LANG", "eng"),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-5-nano"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
		},
		Rewrite: RewriteConfig{
			Concurrency: getEnvAsInt("REWRITE_CONCURRENCY", 0),
			ProxyURL:    getEnv("REWRITE_PROXY_URL", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	switch c.OCR.Backend {
	case OCRBackendRemote:
		if c.OCR.Endpoint == "" {
			return NewAppError("CONFIG_ERROR", "OCR_ENDPOINT is required for the remote OCR backend", ErrInvalidInput)
		}
	case OCRBackendTesseract, OCRBackendGosseract:
	default:
		return NewAppError("CONFIG_ERROR", "OCR_BACKEND must be remote, tesseract or gosseract", ErrInvalidInput)
	}
	if c.Rewrite.ProxyURL == "" && c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Rewrite.Concurrency < 0 {
		return NewAppError("CONFIG_ERROR", "REWRITE_CONCURRENCY must not be negative", ErrInvalidInput)
	}
	return nil
}
