package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Document store backends
const (
	StoreSQL    = "sql"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// SQL drivers
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Session stores
const (
	SessionStoreCookie = "cookie"
	SessionStoreRedis  = "redis"
)

type Config struct {
	HTTPAddr string
	GinMode  string
	LogLevel string

	DocStore   string
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisPrefix   string

	SessionStore  string
	SessionSecret string

	RejectPastDueDate bool
	RequireDueDate    bool
	MaxDueDateDays    int
	StrictOwnership   bool

	AuthRateLimit float64
	AuthRateBurst int
}

func Load() *Config {
	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DocStore:   getEnv("DOC_STORE", StoreSQL),
		DBDriver:   getEnv("DB_DRIVER", DriverSQLite),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "taskuser"),
		DBPassword: getEnv("DB_PASSWORD", "taskpassword"),
		DBName:     getEnv("DB_NAME", "taskboard"),
		SQLitePath: getEnv("SQLITE_PATH", "taskboard.db"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisPrefix:   getEnv("REDIS_PREFIX", "taskboard:"),

		SessionStore:  getEnv("SESSION_STORE", SessionStoreCookie),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),

		RejectPastDueDate: getEnvBool("TASK_REJECT_PAST_DUE_DATE", true),
		RequireDueDate:    getEnvBool("TASK_REQUIRE_DUE_DATE", false),
		MaxDueDateDays:    getEnvInt("TASK_MAX_DUE_DATE_DAYS", 0),
		StrictOwnership:   getEnvBool("TASK_STRICT_OWNERSHIP", true),

		AuthRateLimit: getEnvFloat("AUTH_RATE_LIMIT", 5),
		AuthRateBurst: getEnvInt("AUTH_RATE_BURST", 10),
	}
}

// RedisAddr joins host and port.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}
