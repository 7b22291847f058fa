package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Cache
	RedisURL       string
	CacheTTLOpen   time.Duration
	CacheTTLClosed time.Duration

	// Day view
	WallClockTimezone string
	WallClock         *time.Location
	CountriesFile     string

	// Snapshot
	SnapshotInterval      time.Duration
	SnapshotMaxConcurrent int
	SnapshotLookbackDays  int
	CleanupInterval       time.Duration

	// Rate Limit
	RateLimitGeneral int

	// Logging
	LogLevel string

	// Server
	ServerPort string
	BaseURL    string

	// CORS
	CORSAllowedOrigin string
}

// LoadDotEnv はpathの.envファイルを環境変数に読み込む。
// ファイルが存在しない場合は何もしない。既に設定済みの環境変数は上書きしない。
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合、またはタイムゾーンが解決できない場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.BaseURL = strings.TrimRight(os.Getenv("BASE_URL"), "/")
	if cfg.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.RedisURL = getEnvString("REDIS_URL", "")
	cfg.CacheTTLOpen = getEnvDuration("CACHE_TTL_OPEN", 10*time.Minute)
	cfg.CacheTTLClosed = getEnvDuration("CACHE_TTL_CLOSED", 168*time.Hour)
	cfg.WallClockTimezone = getEnvString("WALL_CLOCK_TIMEZONE", "UTC")
	cfg.CountriesFile = getEnvString("COUNTRIES_FILE", "")
	cfg.SnapshotInterval = getEnvDuration("SNAPSHOT_INTERVAL", time.Hour)
	cfg.SnapshotMaxConcurrent = getEnvInt("SNAPSHOT_MAX_CONCURRENT", 4)
	cfg.SnapshotLookbackDays = getEnvInt("SNAPSHOT_LOOKBACK_DAYS", 3)
	cfg.CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", 24*time.Hour)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	loc, err := time.LoadLocation(cfg.WallClockTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid WALL_CLOCK_TIMEZONE %q: %w", cfg.WallClockTimezone, err)
	}
	cfg.WallClock = loc

	if cfg.SnapshotMaxConcurrent < 1 {
		cfg.SnapshotMaxConcurrent = 1
	}
	if cfg.SnapshotLookbackDays < 1 {
		cfg.SnapshotLookbackDays = 1
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
