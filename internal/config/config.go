package config

import (
	"errors"  // Sentinel errors
	"fmt"     // Error formatting
	"strconv" // Port validation
	"strings" // Error aggregation
	"time"    // Cache TTL

	"github.com/caarlos0/env/v11" // Environment parsing
	"github.com/joho/godotenv"    // For loading .env files
)

// Supported database drivers
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// ErrInvalidConfig reports environment variables that failed validation
var ErrInvalidConfig = errors.New("environment variables not valid")

// Config holds the application configuration
type Config struct {
	AppPort    string        `env:"APP_PORT" envDefault:"8080"`                    // Application port
	DBDriver   string        `env:"DB_DRIVER" envDefault:"sqlite"`                 // mysql or sqlite
	DBUser     string        `env:"DB_USER"`                                       // Database user
	DBPassword string        `env:"DB_PASSWORD"`                                   // Database password
	DBHost     string        `env:"DB_HOST" envDefault:"127.0.0.1"`                // Database host
	DBPort     string        `env:"DB_PORT" envDefault:"3306"`                     // Database port
	DBName     string        `env:"DB_NAME" envDefault:"travel_itineraries"`       // Database name
	SQLitePath string        `env:"SQLITE_PATH" envDefault:"travelItineraries.db"` // SQLite database file
	JWTSecret  string        `env:"JWT_SECRET"`                                    // Session signing secret
	RedisAddr  string        `env:"REDIS_ADDR"`                                    // Redis server address, empty disables caching
	RedisPass  string        `env:"REDIS_PASS"`                                    // Redis password
	RedisDB    int           `env:"REDIS_DB" envDefault:"0"`                       // Redis database number
	CacheTTL   time.Duration `env:"CACHE_TTL" envDefault:"60s"`                    // Destination list cache TTL
	LogLevel   string        `env:"LOG_LEVEL" envDefault:"info"`                   // Logrus level
	IsProd     bool          `env:"IS_PROD" envDefault:"false"`                    // Is production environment
}

// LoadConfig loads configuration from the environment and an optional .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DSN returns the MySQL Data Source Name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// validate collects every invalid setting into a single error
func (c *Config) validate() error {
	var problems []string

	port, err := strconv.Atoi(c.AppPort)
	if err != nil {
		problems = append(problems, "APP_PORT is not a valid number")
	} else if port < 1 || port > 65535 {
		problems = append(problems, "APP_PORT is out of valid range (1-65535)")
	}

	switch c.DBDriver {
	case DriverMySQL:
		if c.DBUser == "" {
			problems = append(problems, "DB_USER is required for mysql")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH is required for sqlite")
		}
	default:
		problems = append(problems, "DB_DRIVER must be mysql or sqlite")
	}

	if c.CacheTTL <= 0 {
		problems = append(problems, "CACHE_TTL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, ", "))
	}
	return nil
}
