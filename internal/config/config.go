package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database holds the settings for one database bind. pkg/db maps it onto a
// dialector; keeping the struct here leaves pkg/db free to depend on config
// without a cycle.
type Database struct {
	Type            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	// Tenant routing. Requests to <slug>.<BaseDomain> bind to that tenant's
	// database; DefaultTenantSlug keeps single-tenant and dev setups working
	// without subdomains.
	BaseDomain        string
	DefaultTenantSlug string

	AuthJWTSecret string
	AuthTokenTTL  time.Duration

	// BootstrapDefaults seeds the status vocabulary, roles, and a default
	// admin on startup. Meant for self-hosted and dev setups.
	BootstrapDefaults bool

	// DB is the process default bind; PlatformDB is the registry bind.
	// They may point at the same database in small deployments.
	DB         Database
	PlatformDB Database
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "orbitcrm"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		BaseDomain:        strings.ToLower(strings.TrimSpace(getenv("BASE_DOMAIN", ""))),
		DefaultTenantSlug: strings.TrimSpace(getenv("DEFAULT_TENANT_SLUG", "")),

		AuthJWTSecret: strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),
		AuthTokenTTL:  getenvDuration("AUTH_TOKEN_TTL", 12*time.Hour),

		BootstrapDefaults: getenv("BOOTSTRAP_DEFAULTS", "true") == "true",

		DB:         loadDB("DATABASE"),
		PlatformDB: loadDB("PLATFORM_DATABASE"),
	}

	// Fall back to the default bind when no dedicated platform database is
	// configured.
	if cfg.PlatformDB.Name == "" {
		cfg.PlatformDB = cfg.DB
	}

	return cfg
}

func loadDB(prefix string) Database {
	return Database{
		Type:            getenv(prefix+"_TYPE", "postgres"),
		Host:            getenv(prefix+"_HOST", "localhost"),
		Port:            getenv(prefix+"_PORT", "5432"),
		Name:            getenv(prefix+"_NAME", ""),
		User:            getenv(prefix+"_USER", "postgres"),
		Password:        getenv(prefix+"_PASSWORD", ""),
		SSLMode:         getenv(prefix+"_SSLMODE", "disable"),
		MaxIdleConn:     getenvInt(prefix+"_MAX_IDLE_CONN", 5),
		MaxOpenConn:     getenvInt(prefix+"_MAX_OPEN_CONN", 25),
		ConnMaxLifetime: getenvDuration(prefix+"_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnMaxIdleTime: getenvDuration(prefix+"_CONN_MAX_IDLE_TIME", 5*time.Minute),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
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

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
