// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable; see Load for names and defaults.
type Config struct {
	Env            string // application environment (dev, test, prod), used for log decoration
	Port           string // HTTP port to listen on
	LogLevel       string // zerolog level name
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	AutoMigrate    bool   // create tables on startup
	JWTSecret      string // secret used to sign access tokens
	AccessTTLMin   int    // access token time-to-live in minutes
	BcryptCost     int    // bcrypt cost for password hashing
	AllowedOrigins []string

	Cache   CacheConfig
	Storage StorageConfig
	Queue   QueueConfig
}

// DefaultPort is the single port default for every entry point.
const DefaultPort = "3000"

// Load reads configuration values from the environment. Unlike a fatal
// loader it reports problems as an error so callers decide how to exit.
func Load() (Config, error) {
	var errs []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			errs = append(errs, "missing required env var: "+key)
		}
		return v
	}
	num := func(key string, def int) int {
		v := os.Getenv(key)
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid int for %s: %q", key, v))
			return def
		}
		return n
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = getenv("PORT", DefaultPort)
	}

	cfg := Config{
		Env:            getenv("APP_ENV", "dev"),
		Port:           port,
		LogLevel:       getenv("LOG_LEVEL", "info"),
		DBUser:         req("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         getenv("DB_HOST", "localhost"),
		DBPort:         getenv("DB_PORT", "3306"),
		DBName:         req("DB_NAME"),
		AutoMigrate:    envBool("DB_AUTO_MIGRATE", true),
		JWTSecret:      req("JWT_SECRET"),
		AccessTTLMin:   num("ACCESS_TOKEN_TTL_MIN", 15),
		BcryptCost:     num("BCRYPT_COST", 12),
		AllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		Cache:          LoadCacheConfig(),
		Storage:        LoadStorageConfig(),
		Queue:          LoadQueueConfig(),
	}
	if cfg.AccessTTLMin <= 0 {
		errs = append(errs, "ACCESS_TOKEN_TTL_MIN must be positive")
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		errs = append(errs, fmt.Sprintf("BCRYPT_COST out of range: %d", cfg.BcryptCost))
	}
	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// IsDev reports whether the application runs in a development environment.
func (c Config) IsDev() bool {
	return c.Env == "dev" || c.Env == "development"
}
