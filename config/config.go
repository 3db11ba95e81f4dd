package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-this-in-production"

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	JWTSecret     string
	JWTExpiration time.Duration

	CORSOrigins []string

	KratosPublicURL string
	KratosTimeout   time.Duration

	AuthRateLimit float64
	AuthRateBurst int
}

// Load reads an optional .env file, then the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		GinMode:         getEnv("GIN_MODE", "release"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBName:          getEnv("DB_NAME", "knowledge_base"),
		DBSSLMode:       getEnv("DB_SSLMODE", "disable"),
		JWTSecret:       getEnv("JWT_SECRET", defaultJWTSecret),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		KratosPublicURL: getEnv("KRATOS_PUBLIC_URL", ""),
	}

	var err error
	if cfg.JWTExpiration, err = time.ParseDuration(getEnv("JWT_EXPIRATION", "24h")); err != nil {
		return nil, fmt.Errorf("JWT_EXPIRATION: %w", err)
	}
	if cfg.KratosTimeout, err = time.ParseDuration(getEnv("KRATOS_TIMEOUT", "5s")); err != nil {
		return nil, fmt.Errorf("KRATOS_TIMEOUT: %w", err)
	}
	if cfg.AuthRateLimit, err = strconv.ParseFloat(getEnv("AUTH_RATE_LIMIT", "5"), 64); err != nil {
		return nil, fmt.Errorf("AUTH_RATE_LIMIT: %w", err)
	}
	if cfg.AuthRateBurst, err = strconv.Atoi(getEnv("AUTH_RATE_BURST", "10")); err != nil {
		return nil, fmt.Errorf("AUTH_RATE_BURST: %w", err)
	}

	return cfg, nil
}

// DSN prefers DATABASE_URL and rewrites the legacy postgres:// scheme.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		if strings.HasPrefix(c.DatabaseURL, "postgres://") {
			return "postgresql://" + strings.TrimPrefix(c.DatabaseURL, "postgres://")
		}
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
