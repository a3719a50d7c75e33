package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	HTTPAddr string

	// CatalogPath points at the optional YAML file overriding the
	// built-in category and condition tables.
	CatalogPath string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	API APIConfig
}

// APIConfig is the submission-side contract: which base URL to talk to,
// the shared service key, and the retry budget.
type APIConfig struct {
	ProductionURL string
	LocalURL      string
	UseProduction bool
	ServiceKey    string
	Timeout       time.Duration
	MaxRetries    int
	RetryBackoff  time.Duration
}

// BaseURL returns the configured endpoint base with any trailing slash
// stripped. Local wins only when UseProduction is off.
func (a APIConfig) BaseURL() string {
	base := a.ProductionURL
	if !a.UseProduction {
		base = a.LocalURL
	}
	return strings.TrimRight(strings.TrimSpace(base), "/")
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "kollect-catalog"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		CatalogPath: strings.TrimSpace(getenv("CATALOG_CONFIG", "")),

		DBType:            getenv("DATABASE_TYPE", "sqlite"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "kollect.db"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 10),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),

		API: APIConfig{
			ProductionURL: getenv("API_PRODUCTION_URL", "https://kollect-it.com"),
			LocalURL:      getenv("API_LOCAL_URL", "http://localhost:3000"),
			UseProduction: getenvBool("API_USE_PRODUCTION", true),
			ServiceKey:    strings.TrimSpace(getenv("SERVICE_API_KEY", "")),
			Timeout:       time.Duration(getenvInt("API_TIMEOUT_SECONDS", 30)) * time.Second,
			MaxRetries:    getenvInt("API_RETRY_ATTEMPTS", 3),
			RetryBackoff:  time.Duration(getenvInt("API_RETRY_BACKOFF_MS", 500)) * time.Millisecond,
		},
	}
}

// Module wires configuration loading for the application.
var Module = fx.Module("config",
	fx.Provide(Load),
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
