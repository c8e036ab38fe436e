package config

import (
	"os"
	"strconv"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Port                       string
	StorageDriver              string
	SQLitePath                 string
	DatabaseURL                string
	SeedFile                   string
	ActivityLogLimit           int
	RateLimitPerMinute         int
	RateLimitBurst             int
	OperatorRateLimitPerMinute int
	OperatorRateLimitBurst     int
	SessionTTL                 time.Duration
	SessionSweepInterval       time.Duration
	TrustProxyHeaders          bool
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return Config{
		Port:                       port,
		StorageDriver:              readString("STORAGE_DRIVER", DriverSQLite),
		SQLitePath:                 readString("SQLITE_PATH", "smartpark.db"),
		DatabaseURL:                os.Getenv("DB_DSN"),
		SeedFile:                   os.Getenv("SEED_FILE"),
		ActivityLogLimit:           readInt("ACTIVITY_LOG_LIMIT", 50),
		RateLimitPerMinute:         readInt("RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:             readInt("RATE_LIMIT_BURST", 30),
		OperatorRateLimitPerMinute: readInt("OPERATOR_RATE_LIMIT_PER_MIN", 600),
		OperatorRateLimitBurst:     readInt("OPERATOR_RATE_LIMIT_BURST", 120),
		SessionTTL:                 readDurationSeconds("SESSION_TTL_SECONDS", 43200),
		SessionSweepInterval:       readDurationSeconds("SESSION_SWEEP_INTERVAL_SECONDS", 300),
		TrustProxyHeaders:          readBool("TRUST_PROXY_HEADERS", true),
	}
}

func readString(key, fallback string) string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	return raw
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
