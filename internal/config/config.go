package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Token storage backends.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config holds everything the web client needs at startup.
type Config struct {
	ServerPort          string
	APIBaseURL          string
	APITimeout          time.Duration
	PostalBaseURL       string
	PostalTimeout       time.Duration
	KitchenPollInterval time.Duration
	WorkspaceIdleTTL    time.Duration
	CookieSecure        bool
	LogLevel            string
	GinMode             string

	TokenStorage  string
	RedisAddr     string
	RedisPassword string
	DB            *DBConfig
}

// Load reads the .env file (if any) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:          getenv("SERVER_PORT", "8080"),
		APIBaseURL:          strings.TrimRight(getenv("API_BASE_URL", "http://localhost:8081"), "/"),
		APITimeout:          getenvDuration("API_TIMEOUT", 30*time.Second),
		PostalBaseURL:       strings.TrimRight(getenv("POSTAL_BASE_URL", "https://viacep.com.br/ws"), "/"),
		PostalTimeout:       getenvDuration("POSTAL_TIMEOUT", 5*time.Second),
		KitchenPollInterval: getenvDuration("KITCHEN_POLL_INTERVAL", 30*time.Second),
		WorkspaceIdleTTL:    getenvDuration("WORKSPACE_IDLE_TTL", 2*time.Hour),
		CookieSecure:        getenvBool("COOKIE_SECURE", false),
		LogLevel:            getenv("LOG_LEVEL", "info"),
		GinMode:             getenv("GIN_MODE", "debug"),
		TokenStorage:        strings.ToLower(getenv("TOKEN_STORAGE", StorageMemory)),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
	}

	switch cfg.TokenStorage {
	case StorageMemory:
	case StorageRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("TOKEN_STORAGE=redis requires REDIS_ADDR")
		}
	case StoragePostgres:
		dbCfg, err := LoadDBConfig()
		if err != nil {
			return nil, err
		}
		cfg.DB = dbCfg
	default:
		return nil, fmt.Errorf("unknown TOKEN_STORAGE %q (memory, redis, postgres)", cfg.TokenStorage)
	}

	if cfg.KitchenPollInterval <= 0 {
		return nil, fmt.Errorf("KITCHEN_POLL_INTERVAL must be positive")
	}
	return cfg, nil
}

// DevAPIConfig configures the in-memory development backend.
type DevAPIConfig struct {
	Port               string
	JWTSecret          string
	JWTExpirationHours int64
	SeedAdminEmail     string
	SeedAdminPassword  string
}

// LoadDevAPI reads the development backend settings.
func LoadDevAPI() (*DevAPIConfig, error) {
	_ = godotenv.Load()

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY not set in environment")
	}
	hours, err := strconv.ParseInt(getenv("JWT_EXPIRATION_HOURS", "24"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_HOURS: %w", err)
	}
	return &DevAPIConfig{
		Port:               getenv("DEVAPI_PORT", "8081"),
		JWTSecret:          secret,
		JWTExpirationHours: hours,
		SeedAdminEmail:     os.Getenv("SEED_ADMIN_EMAIL"),
		SeedAdminPassword:  os.Getenv("SEED_ADMIN_PASSWORD"),
	}, nil
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
