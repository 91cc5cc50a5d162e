// ABOUTME: Centralized configuration for the finance assistant
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jvsazevedo/open-finance-buddy/internal/storage/sqlite"
)

// Config holds all configuration for the assistant
type Config struct {
	// Storage settings
	DBPath string

	// OpenAI settings
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Memory settings
	VectorDimension int
	TimeLimitDays   int

	// Default user for the single-user CLI flows
	DefaultUserID int64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:          getEnv("BUDDY_DB_PATH", sqlite.DefaultDBPath()),
		OpenAIKey:       os.Getenv("OPENAI_API_KEY"),
		ChatModel:       getEnv("BUDDY_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:  getEnv("BUDDY_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:         getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:      getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:      getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		VectorDimension: getEnvInt("VECTOR_DIMENSION", sqlite.DefaultDimension),
		TimeLimitDays:   getEnvInt("BUDDY_TIME_LIMIT_DAYS", 7),
		DefaultUserID:   getEnvInt64("BUDDY_DEFAULT_USER", 1),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("VECTOR_DIMENSION must be positive, got %d", c.VectorDimension)
	}
	if c.TimeLimitDays <= 0 {
		return fmt.Errorf("BUDDY_TIME_LIMIT_DAYS must be positive, got %d", c.TimeLimitDays)
	}
	if c.DefaultUserID <= 0 {
		return fmt.Errorf("BUDDY_DEFAULT_USER must be positive, got %d", c.DefaultUserID)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
