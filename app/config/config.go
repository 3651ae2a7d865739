package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	HTTPAddr     string
	DBDriver     string
	PostgresDSN  string
	SQLitePath   string
	UploadsRoot  string
	AdminToken   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// MaxRequestBytes caps the body of mutating requests.
	MaxRequestBytes int64
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	driver := loadString("DB_DRIVER", DriverPostgres)
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, driver)
	}

	readTimeout, err := loadInt("READ_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := loadInt("WRITE_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	maxRequestMB, err := loadInt("MAX_REQUEST_MB", 10)
	if err != nil {
		return nil, err
	}
	port, err := loadInt("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, err
	}

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			loadString("POSTGRES_HOST", "localhost"),
			port,
			loadString("POSTGRES_USER", "postgres"),
			os.Getenv("POSTGRES_PASSWORD"),
			loadString("POSTGRES_DB", "catalog"),
		)
	}

	return &Config{
		HTTPAddr:        loadString("HTTP_ADDR", ":8080"),
		DBDriver:        driver,
		PostgresDSN:     dsn,
		SQLitePath:      loadString("SQLITE_PATH", "data/catalog.db"),
		UploadsRoot:     loadString("UPLOADS_ROOT", "wwwroot"),
		AdminToken:      os.Getenv("ADMIN_TOKEN"),
		ReadTimeout:     time.Duration(readTimeout) * time.Second,
		WriteTimeout:    time.Duration(writeTimeout) * time.Second,
		MaxRequestBytes: int64(maxRequestMB) << 20,
	}, nil
}

func loadString(key, defValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defValue
}

func loadInt(key string, defValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, value)
	}
	return n, nil
}
