package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Auth           AuthConfig
	CORS           CORSConfig
	Uploads        UploadsConfig
	Email          EmailConfig
	AdminBootstrap AdminBootstrapConfig
	Logging        LoggingConfig
	Environment    string
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
}

type DatabaseConfig struct {
	URL            string
	MaxConnections int
}

type AuthConfig struct {
	// JWTSecret signs bearer tokens. Required: there is no fallback value.
	JWTSecret string
	JWTExpiry time.Duration
	Issuer    string

	// ServiceKey is a pre-shared credential for service-to-service calls.
	// It is scoped to the routes that opt into it and is never accepted
	// in place of a user token. Empty disables those routes.
	ServiceKey string

	LockoutWindow      time.Duration
	LockoutMaxFailures int
}

type CORSConfig struct {
	AllowedOrigins  []string
	AllowAllOrigins bool
}

type UploadsConfig struct {
	Dir      string
	MaxBytes int64
}

type EmailConfig struct {
	ResendAPIKey string
	From         string
}

type AdminBootstrapConfig struct {
	Name     string
	Email    string
	Password string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (Config, error) {
	// Optional .env for local development; ignored when absent.
	_ = godotenv.Load()

	cfg := Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvInt("SERVER_PORT", 8080),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", ""),
			JWTExpiry:          time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
			Issuer:             getEnv("JWT_ISSUER", "eventura"),
			ServiceKey:         getEnv("SERVICE_KEY", ""),
			LockoutWindow:      time.Duration(getEnvInt("LOCKOUT_WINDOW_MINUTES", 10)) * time.Minute,
			LockoutMaxFailures: getEnvInt("LOCKOUT_MAX_FAILURES", 3),
		},
		CORS: CORSConfig{
			AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
			AllowAllOrigins: getEnv("CORS_ALLOW_ALL", "") == "true",
		},
		Uploads: UploadsConfig{
			Dir:      getEnv("UPLOADS_DIR", "public/uploads"),
			MaxBytes: int64(getEnvInt("UPLOADS_MAX_BYTES", 10<<20)),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
			From:         getEnv("EMAIL_FROM", ""),
		},
		AdminBootstrap: AdminBootstrapConfig{
			Name:     getEnv("ADMIN_NAME", ""),
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Auth.LockoutMaxFailures < 1 {
		return Config{}, fmt.Errorf("LOCKOUT_MAX_FAILURES must be >= 1")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
