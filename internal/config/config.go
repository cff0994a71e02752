package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN      string
	ServerPort string

	JWTSecret   string
	JWTTTLHours int

	InsightVMBaseURL       string
	InsightVMUsername      string
	InsightVMPassword      string
	InsightVMTimeout       time.Duration
	InsightVMPageSize      int
	InsightVMSkipTLSVerify bool

	// команда, получающая активы, созданные синком (0 — брать первую из БД)
	SyncFallbackTeamID uint

	AdminUsername string
	AdminPassword string
	AdminEmail    string

	LogLevel      string
	LogFormat     string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBDSN:      os.Getenv("DB_DSN"),
		ServerPort: os.Getenv("SERVER_PORT"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTTLHours: envInt("JWT_TTL_HOURS", 24),

		InsightVMBaseURL:       os.Getenv("INSIGHTVM_BASE_URL"),
		InsightVMUsername:      os.Getenv("INSIGHTVM_USERNAME"),
		InsightVMPassword:      os.Getenv("INSIGHTVM_PASSWORD"),
		InsightVMTimeout:       time.Duration(envInt("INSIGHTVM_TIMEOUT_SECONDS", 30)) * time.Second,
		InsightVMPageSize:      envInt("INSIGHTVM_PAGE_SIZE", 500),
		InsightVMSkipTLSVerify: envBool("INSIGHTVM_SKIP_TLS_VERIFY", true),

		SyncFallbackTeamID: uint(envInt("SYNC_FALLBACK_TEAM_ID", 0)),

		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),

		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogFormat:     os.Getenv("LOG_FORMAT"),
		LogFile:       os.Getenv("LOG_FILE"),
		LogMaxSizeMB:  envInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: envInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: envInt("LOG_MAX_AGE_DAYS", 30),
	}

	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN is not set")
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	return cfg
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("%s must be an integer, got %q", key, raw)
	}
	return v
}

func envBool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Fatalf("%s must be a boolean, got %q", key, raw)
	}
	return v
}
