package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Keys      APIKeys
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	GoogleGemini string
	// GenerateURL is where the proxy client sends prompts. Defaults to the
	// generate route of this instance, but may point at a separately
	// deployed one.
	GenerateURL string
}

type RateLimitConfig struct {
	PerMinute int
	PerHour   int
	Store     string // "memory" or "redis"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	baseURL := getEnv("APP_BASE_URL", "http://localhost:3000")

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            baseURL,
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Survey"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			GenerateURL:  getEnv("GENERATE_ENDPOINT_URL", baseURL+"/api/generate/v1"),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 20),
			PerHour:   getEnvAsInt("RATE_LIMIT_PER_HOUR", 100),
			Store:     getEnv("RATE_LIMIT_STORE", "memory"),
		},
	}
}

// Validate reports configuration the service cannot start without.
// Placeholder values count as missing.
func (c *Config) Validate() error {
	var missing []string
	if c.Database.Connection == "" {
		missing = append(missing, "DB_CONNECTION_STRING")
	}
	if c.Keys.GoogleGemini == "" || strings.Contains(c.Keys.GoogleGemini, "your-") {
		missing = append(missing, "GOOGLE_GEMINI_API_KEY")
	}
	if strings.Contains(c.Keys.GenerateURL, "your-") {
		missing = append(missing, "GENERATE_ENDPOINT_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete configuration, missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// AllowedOrigins splits the CORS origin list.
func (c *AppConfig) AllowedOrigins() []string {
	parts := strings.Split(c.CorsAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
