package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Database
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	DatabaseURL string

	// Redis
	EnableRedis    bool
	RedisURL       string
	RenderCacheTTL time.Duration

	// JWT
	JWTSecret string

	// Server
	Port        string
	Environment string

	// CORS
	CORSOrigins []string

	// Rate Limiting
	RateLimitRequests int
	RateLimitWindow   int
	RateLimitBurst    int

	// Media
	MediaBaseURL string

	// Sections
	SectionLoadTimeout        time.Duration
	SectionCacheSize          int
	SectionRenderConcurrency  int
	SectionCatalogFile        string
	EnableRuntimeRegistration bool

	// Features
	EnableMetrics bool
}

func New() *Config {
	c := &Config{
		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "nexacms"),
		DBPassword: getEnv("DB_PASSWORD", "nexacms"),
		DBName:     getEnv("DB_NAME", "nexacms"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Redis
		EnableRedis:    getEnvAsBool("ENABLE_REDIS", true),
		RedisURL:       getEnv("REDIS_URL", "localhost:6379"),
		RenderCacheTTL: getEnvAsDuration("RENDER_CACHE_TTL", 5*time.Minute),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", defaultJWTSecret),

		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// CORS
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080")),

		// Rate Limiting
		RateLimitRequests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvAsInt("RATE_LIMIT_WINDOW", 60),
		RateLimitBurst:    getEnvAsInt("RATE_LIMIT_BURST", 0),

		// Media
		MediaBaseURL: getEnv("MEDIA_BASE_URL", ""),

		// Sections
		SectionLoadTimeout:        getEnvAsDuration("SECTION_LOAD_TIMEOUT", 5*time.Second),
		SectionCacheSize:          getEnvAsInt("SECTION_CACHE_SIZE", 64),
		SectionRenderConcurrency:  getEnvAsInt("SECTION_RENDER_CONCURRENCY", 8),
		SectionCatalogFile:        getEnv("SECTION_CATALOG_FILE", ""),
		EnableRuntimeRegistration: getEnvAsBool("ENABLE_RUNTIME_REGISTRATION", false),

		// Features
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}

	// Build DSN
	c.DatabaseURL = fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)

	return c
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return valueStr == "true" || valueStr == "1"
}

// getEnvAsDuration accepts Go duration strings ("750ms", "2m") or a bare number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil && d > 0 {
		return d
	}
	var seconds int
	if _, err := fmt.Sscanf(valueStr, "%d", &seconds); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

const defaultJWTSecret = "your-super-secret-jwt-key-change-this-in-production"

// Validate rejects settings the section engine cannot run with.
func (c *Config) Validate() error {
	var problems []string
	if c.IsProduction() && (c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32) {
		problems = append(problems, "JWT_SECRET must be set to at least 32 characters in production")
	}
	if c.SectionCacheSize <= 0 {
		problems = append(problems, "SECTION_CACHE_SIZE must be positive")
	}
	if c.SectionRenderConcurrency <= 0 {
		problems = append(problems, "SECTION_RENDER_CONCURRENCY must be positive")
	}
	if c.RateLimitRequests < 0 || c.RateLimitWindow <= 0 {
		problems = append(problems, "RATE_LIMIT_REQUESTS must not be negative and RATE_LIMIT_WINDOW must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
