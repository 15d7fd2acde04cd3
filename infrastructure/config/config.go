package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	EventBusName  string

	// Lambda configuration
	IsLambda bool

	// Logging
	LogLevel string

	// Authentication
	JWTSecret     string
	JWTIssuer     string
	TokenTTL      time.Duration
	LoginAttempts int // per email per window
	LoginWindow   time.Duration

	// CORS
	AllowedOrigins []string

	// Read caching
	ForestCacheTTL time.Duration

	// Feature flags
	EnableMetrics bool
	EnableTracing bool

	// Local mode uses in-memory storage instead of DynamoDB
	UseMemoryStore bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", "mathtree"),
		EventBusName:  getEnv("EVENT_BUS_NAME", ""),

		IsLambda: os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "",

		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", "mathtree-backend"),
		TokenTTL:      getEnvDuration("TOKEN_TTL", 24*time.Hour),
		LoginAttempts: getEnvInt("LOGIN_ATTEMPTS", 10),
		LoginWindow:   getEnvDuration("LOGIN_WINDOW", 15*time.Minute),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		ForestCacheTTL: getEnvDuration("FOREST_CACHE_TTL", 5*time.Second),

		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),

		UseMemoryStore: getEnvBool("USE_MEMORY_STORE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DynamoDBTable == "" && !c.UseMemoryStore {
			return fmt.Errorf("TABLE_NAME is required")
		}
	}
	if c.LoginAttempts <= 0 {
		return fmt.Errorf("LOGIN_ATTEMPTS must be positive")
	}
	return nil
}

// JWTSecretOrDefault returns the configured secret, falling back to a fixed
// development value outside production
func (c *Config) JWTSecretOrDefault() string {
	if c.JWTSecret != "" {
		return c.JWTSecret
	}
	return "development-secret-change-in-production"
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
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

func getEnvList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
