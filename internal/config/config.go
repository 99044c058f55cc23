package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration
type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// Auth
	JWTSecret         string
	JWTExpirationDur  time.Duration
	OwnerUsername     string
	OwnerPasswordHash string

	// Events
	AMQPURL      string
	AMQPExchange string

	// Display
	Currency string
}

var appConfig *Config

var defaults = map[string]any{
	"PORT":           "8080",
	"ENV":            "development",
	"LOG_LEVEL":      "",
	"DB_DRIVER":      DriverPostgres,
	"DB_HOST":        "localhost",
	"DB_PORT":        "5432",
	"DB_USER":        "fintrack",
	"DB_PASSWORD":    "fintrack",
	"DB_NAME":        "fintrack",
	"DB_SSLMODE":     "disable",
	"DB_PATH":        "fintrack.db",
	"JWT_SECRET":     "fallback-secret-key-for-dev-only",
	"JWT_EXPIRES_IN": "24h",
	"OWNER_USERNAME": "owner",
	"AMQP_EXCHANGE":  "fintrack.events",
	"CURRENCY":       "USD",
}

// Load loads configuration from a .env file and the environment.
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := FromViper(viper.GetViper())
	appConfig = config
	return config, nil
}

// FromViper resolves the configuration from v, registering defaults and
// environment lookups first. Values bound from command-line flags take
// precedence over the environment.
func FromViper(v *viper.Viper) *Config {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	config := &Config{
		Port:     v.GetString("PORT"),
		Env:      v.GetString("ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),

		DBDriver:   strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),
		DBPath:     v.GetString("DB_PATH"),

		JWTSecret:         v.GetString("JWT_SECRET"),
		OwnerUsername:     v.GetString("OWNER_USERNAME"),
		OwnerPasswordHash: v.GetString("OWNER_PASSWORD_HASH"),

		AMQPURL:      v.GetString("AMQP_URL"),
		AMQPExchange: v.GetString("AMQP_EXCHANGE"),

		Currency: strings.ToUpper(v.GetString("CURRENCY")),
	}

	// Parse JWT expiration duration
	expStr := v.GetString("JWT_EXPIRES_IN")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	if config.DBDriver != DriverSQLite {
		config.DBDriver = DriverPostgres
	}

	return config
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// EventsEnabled reports whether an AMQP broker is configured.
func (c *Config) EventsEnabled() bool { return c.AMQPURL != "" }
