package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BaseURL        string
	ExtractorURL   string
	ExtractorKey   string
	RequestTimeout time.Duration
	BrowserTimeout time.Duration
	MaxAttempts    int
	Headless       bool
	OutputDir      string
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "https://www.carsome.my/buy-car",
		ExtractorURL:   "https://api.firecrawl.dev/v1/scrape",
		RequestTimeout: 60 * time.Second,
		BrowserTimeout: 90 * time.Second,
		MaxAttempts:    2,
		Headless:       true,
		OutputDir:      "output",
		DBHost:         "localhost",
		DBPort:         5432,
		DBUser:         "postgres",
		DBPassword:     "postgres",
		DBName:         "carsome_scraper",
		DBSSLMode:      "disable",
	}
}

// Load builds the process-wide configuration: defaults, then a .env file
// if one exists, then real environment variables on top. The result is
// constructed once in main and passed into every component.
func Load() *Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	setString(&cfg.BaseURL, "CARSOME_BASE_URL")
	setString(&cfg.ExtractorURL, "FIRECRAWL_API_URL")
	setString(&cfg.ExtractorKey, "FIRECRAWL_API_KEY")
	setDuration(&cfg.RequestTimeout, "REQUEST_TIMEOUT")
	setDuration(&cfg.BrowserTimeout, "BROWSER_TIMEOUT")
	setBool(&cfg.Headless, "HEADLESS")
	setString(&cfg.OutputDir, "OUTPUT_DIR")
	setString(&cfg.DBHost, "DB_HOST")
	setInt(&cfg.DBPort, "DB_PORT")
	setString(&cfg.DBUser, "DB_USER")
	setString(&cfg.DBPassword, "DB_PASSWORD")
	setString(&cfg.DBName, "DB_NAME")
	setString(&cfg.DBSSLMode, "DB_SSLMODE")
	return cfg
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
