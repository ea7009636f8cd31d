package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// DefaultTargetsFile is where the target-stocks document lives relative to
// the working directory.
const DefaultTargetsFile = "config/target-stocks.json"

// Config holds process configuration read from the environment.
type Config struct {
	// Logging
	Env      string
	LogLevel string
	LogFile  string

	// Store. DBURL and DBPassword are required.
	DBURL      string
	DBPassword string
	DBSSLMode  string

	// Collection
	TargetsFile       string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	Rounding          string
	// AutoMigrate applies pending schema migrations before collecting.
	AutoMigrate bool
}

// Load loads configuration from environment variables. A missing .env file
// is not an error; missing store credentials are.
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		DBURL:      os.Getenv("DB_URL"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBSSLMode:  getEnv("DB_SSLMODE", "require"),

		TargetsFile: getEnv("TARGETS_FILE", DefaultTargetsFile),
		Rounding:    strings.ToLower(getEnv("PRICE_ROUNDING", "truncate")),
		AutoMigrate: parseBool(os.Getenv("AUTO_MIGRATE")),
	}

	var missing []string
	if cfg.DBURL == "" {
		missing = append(missing, "DB_URL")
	}
	if cfg.DBPassword == "" {
		missing = append(missing, "DB_PASSWORD")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s required", strings.Join(missing, ", "))
	}

	if _, err := zapcore.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: must be debug, info, warn or error", cfg.LogLevel)
	}

	timeout, err := parseTimeout(os.Getenv("REQUEST_TIMEOUT"))
	if err != nil {
		return nil, err
	}
	cfg.RequestTimeout = timeout

	rps, err := parseRate(os.Getenv("REQUESTS_PER_SECOND"))
	if err != nil {
		return nil, err
	}
	cfg.RequestsPerSecond = rps

	return cfg, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %v", d)
	}
	return d, nil
}

func parseRate(s string) (float64, error) {
	if s == "" {
		return 2, nil
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid REQUESTS_PER_SECOND %q: %w", s, err)
	}
	if r <= 0 {
		return 0, fmt.Errorf("REQUESTS_PER_SECOND must be positive, got %v", r)
	}
	return r, nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
