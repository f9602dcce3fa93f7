package config

import (
	"os"
	"strconv"
	"time"

	"olstudio/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Upload  UploadConfig
	Session SessionConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// UploadConfig holds file upload limits
type UploadConfig struct {
	MaxBytes int64
}

// SessionConfig holds in-memory session lifecycle settings
type SessionConfig struct {
	// TTL is how long an idle session survives before eviction
	TTL time.Duration
	// CleanupInterval is how often expired sessions are swept
	CleanupInterval time.Duration
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvString("OLSTUDIO_PORT", "8000"),
		},
		Upload: UploadConfig{
			MaxBytes: int64(getEnvInt("OLSTUDIO_MAX_UPLOAD_MB", 50)) * 1024 * 1024,
		},
		Session: SessionConfig{
			TTL:             getEnvDuration("OLSTUDIO_SESSION_TTL", 2*time.Hour),
			CleanupInterval: getEnvDuration("OLSTUDIO_SESSION_SWEEP", 10*time.Minute),
		},
	}

	if err := config.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.Upload.MaxBytes <= 0 {
		return errors.New(errors.CodeConfigInvalid, "upload limit must be positive")
	}
	if c.Session.TTL <= 0 {
		return errors.New(errors.CodeConfigInvalid, "session TTL must be positive")
	}
	if c.Session.CleanupInterval <= 0 {
		return errors.New(errors.CodeConfigInvalid, "session sweep interval must be positive")
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
