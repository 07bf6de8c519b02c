package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	SalesSourcePostgres  = "postgres"
	SalesSourceDatastore = "datastore"
)

var DefaultEnvConfig *envConfig

type envConfig struct {
	APP_PORT string
	// database config
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
	// sales source config
	SALES_SOURCE         string
	DATASTORE_PROJECT_ID string
	// audit config
	ELASTIC_URL       string
	ELASTIC_SNIFF     bool
	BONUS_AUDIT_INDEX string
	// report config
	REPORT_TEMPLATE_PATH string
}

// LoadEnvConfig reads .env (if present) and the process environment into DefaultEnvConfig.
func LoadEnvConfig(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg := &envConfig{
		APP_PORT:             getEnvString("APP_PORT", "8080"),
		DB_HOST:              getEnvString("DB_HOST", "localhost"),
		DB_PORT:              getEnvInt("DB_PORT", 5432),
		DB_USER:              getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:          getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:              getEnvString("DB_NAME", "postgres"),
		DB_SSL_MODE:          getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME: getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DB_MAX_OPEN_CONNS:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
		LOG_FILE_PATH:        getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:            getEnvString("LOG_LEVEL", "info"),
		SALES_SOURCE:         strings.ToLower(getEnvString("SALES_SOURCE", SalesSourcePostgres)),
		DATASTORE_PROJECT_ID: getEnvString("DATASTORE_PROJECT_ID", ""),
		ELASTIC_URL:          getEnvString("ELASTIC_URL", ""),
		ELASTIC_SNIFF:        getEnvBool("ELASTIC_SNIFF", false),
		BONUS_AUDIT_INDEX:    getEnvString("BONUS_AUDIT_INDEX", "bonus_runs"),
		REPORT_TEMPLATE_PATH: getEnvString("REPORT_TEMPLATE_PATH", ""),
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	DefaultEnvConfig = cfg
	return nil
}

func (c *envConfig) Validate() error {
	switch c.SALES_SOURCE {
	case SalesSourcePostgres:
	case SalesSourceDatastore:
		if c.DATASTORE_PROJECT_ID == "" {
			return fmt.Errorf("SALES_SOURCE=datastore requires DATASTORE_PROJECT_ID")
		}
	default:
		return fmt.Errorf("unknown SALES_SOURCE %q", c.SALES_SOURCE)
	}
	if c.DB_PORT <= 0 {
		return fmt.Errorf("invalid DB_PORT %d", c.DB_PORT)
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
