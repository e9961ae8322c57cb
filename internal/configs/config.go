package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// HTTPConfig holds the REST server configuration.
type HTTPConfig struct {
	Port string
}

// DBconfig holds the database configuration. URL may be empty, in which case
// the service runs on the in-memory store.
type DBconfig struct {
	URL string
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

// ScrapeConfig bounds one ingestion run.
type ScrapeConfig struct {
	Concurrency       int
	Timeout           time.Duration
	MaxResultsCap     int
	KeepLowConfidence bool
	CraigslistBaseURL string
}

// AppConfig holds the whole application configuration.
type AppConfig struct {
	AppName      string
	HTTP         HTTPConfig
	Database     DBconfig
	Scrape       ScrapeConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// LoadConfig loads the configuration from environment variables, optionally
// seeded from a .env file.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Printf("Info: could not load .env file (path: %v): %v. Falling back to system env vars.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "deal-finder-service")
	cfg.HTTP.Port = getEnvAsString("HTTP_PORT", "8000")

	// DATABASE_URL is optional: without it the service keeps deals in memory.
	cfg.Database.URL = os.Getenv("DATABASE_URL")

	cfg.Scrape.Concurrency = getEnvAsInt("SCRAPE_CONCURRENCY", 4)
	if cfg.Scrape.Concurrency < 1 {
		return nil, fmt.Errorf("SCRAPE_CONCURRENCY must be at least 1")
	}
	cfg.Scrape.Timeout = time.Duration(getEnvAsInt("SCRAPE_TIMEOUT_SECONDS", 60)) * time.Second
	cfg.Scrape.MaxResultsCap = getEnvAsInt("MAX_RESULTS_CAP", 100)
	cfg.Scrape.KeepLowConfidence = getEnvAsBool("KEEP_LOW_CONFIDENCE", true)
	cfg.Scrape.CraigslistBaseURL = getEnvAsString("CRAIGSLIST_BASE_URL", "")

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	return cfg, nil
}

// getEnvAsString reads an environment variable as string or returns the default.
func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as int or returns the default.
// Logs when the variable exists but cannot be parsed.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

// getEnvAsBool reads an environment variable as bool or returns the default.
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}
