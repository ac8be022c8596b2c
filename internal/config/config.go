// Package config loads service settings from the environment.
// A .env file is read first when present, then viper resolves every
// key against the environment with the defaults declared below.
package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the service.
type Config struct {
	Env  string `mapstructure:"ENV"`
	Port string `mapstructure:"PORT"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	DBConnMaxIdleTime time.Duration `mapstructure:"DB_CONN_MAX_IDLE_TIME"`

	// RedisHost left empty selects the in-process cache.
	RedisHost     string        `mapstructure:"REDIS_HOST"`
	RedisPort     string        `mapstructure:"REDIS_PORT"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	SwitchBaseURL     string        `mapstructure:"SWITCH_BASE_URL"`
	SwitchDisplayName string        `mapstructure:"SWITCH_DISPLAY_NAME"`
	SwitchTimeout     time.Duration `mapstructure:"SWITCH_TIMEOUT"`
	SwitchMaxAttempts int           `mapstructure:"SWITCH_MAX_ATTEMPTS"`
	SwitchBackoff     time.Duration `mapstructure:"SWITCH_BACKOFF"`

	UploadDir     string `mapstructure:"UPLOAD_DIR"`
	SweepSchedule string `mapstructure:"SWEEP_SCHEDULE"`
	DispatchQueue int    `mapstructure:"DISPATCH_QUEUE"`

	CORSOrigins string `mapstructure:"CORS_ORIGINS"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
}

var defaults = map[string]interface{}{
	"ENV":  "development",
	"PORT": "8000",

	"DB_HOST":     "localhost",
	"DB_PORT":     "5432",
	"DB_USER":     "postgres",
	"DB_PASSWORD": "postgres",
	"DB_NAME":     "bulkpay",

	"DB_MAX_IDLE_CONNS":     10,
	"DB_MAX_OPEN_CONNS":     100,
	"DB_CONN_MAX_LIFETIME":  "1h",
	"DB_CONN_MAX_IDLE_TIME": "30m",

	"REDIS_HOST":     "",
	"REDIS_PORT":     "6379",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,
	"CACHE_TTL":      "10m",

	"SWITCH_BASE_URL":     "http://localhost:4001",
	"SWITCH_DISPLAY_NAME": "Bulk Transfer Client",
	"SWITCH_TIMEOUT":      "30s",
	"SWITCH_MAX_ATTEMPTS": 3,
	"SWITCH_BACKOFF":      "500ms",

	"UPLOAD_DIR":     "uploads",
	"SWEEP_SCHEDULE": "@every 1m",
	"DISPATCH_QUEUE": 64,

	"CORS_ORIGINS": "http://localhost:5173",
	"LOG_LEVEL":    "info",
}

// Load reads .env (if any) and the environment into a Config.
func Load() (*Config, error) {
	LoadEnv()

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}
