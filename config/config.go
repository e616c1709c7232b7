package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration, read from the environment with
// an optional .env file on top. GeminiAPIKey is deliberately not required:
// without it the server still serves history, and submissions fail with a
// configuration message.
type Config struct {
	Port string `validate:"required"`

	GeminiAPIKey    string
	GeminiModel     string        `validate:"required"`
	AnalysisTimeout time.Duration `validate:"gt=0"`

	StoreBackend string `validate:"oneof=file s3"`
	DataDir      string `validate:"required_if=StoreBackend file"`
	S3Bucket     string `validate:"required_if=StoreBackend s3"`
	S3Region     string `validate:"required_if=StoreBackend s3"`
	S3Prefix     string

	// JWTSecret enables bearer-token auth on the API when set.
	JWTSecret string

	MaxUploadBytes int64 `validate:"gt=0"`
}

func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getenv("PORT", "8080"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getenv("GEMINI_MODEL", "gemini-2.0-flash"),
		AnalysisTimeout: 60 * time.Second,
		StoreBackend:    getenv("STORE_BACKEND", "file"),
		DataDir:         getenv("DATA_DIR", "./data"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Region:        getenv("S3_REGION", os.Getenv("AWS_REGION")),
		S3Prefix:        getenv("S3_PREFIX", "image-to-text/"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		MaxUploadBytes:  10 << 20,
	}

	if v := os.Getenv("ANALYSIS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse ANALYSIS_TIMEOUT: %w", err)
		}
		cfg.AnalysisTimeout = d
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse MAX_UPLOAD_BYTES: %w", err)
		}
		cfg.MaxUploadBytes = n
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
