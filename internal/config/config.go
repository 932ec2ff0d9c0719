package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreDriverFile     = "file"
	StoreDriverRedis    = "redis"
	StoreDriverPostgres = "postgres"
)

// Location sources accepted by LOCATION_SOURCE.
const (
	LocationSourceNone  = "none"
	LocationSourceFixed = "fixed"
)

// Config aggregates runtime configuration for the client core.
type Config struct {
	App          AppConfig
	Remote       RemoteConfig
	Store        StoreConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	SOS          SOSConfig
	Trigger      TriggerConfig
	Location     LocationConfig
	Notification NotificationConfig
}

// AppConfig controls the local control API.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// RemoteConfig points at the backend API.
type RemoteConfig struct {
	BaseURL        string
	TimeoutSeconds int
}

// StoreConfig selects the local record store backend.
type StoreConfig struct {
	Driver string
	Dir    string
}

// PostgresConfig holds DB connection values for the postgres store driver.
type PostgresConfig struct {
	DSN           string
	MaxConns      int32
	RunMigrations bool
}

// RedisConfig holds Redis connection values for the redis store driver.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
	File  string
}

// AuthConfig defines local credential and session parameters.
type AuthConfig struct {
	BcryptCost         int
	SessionTimeoutDays int
}

// SOSConfig tunes the active emergency loop.
type SOSConfig struct {
	LocationUpdateIntervalSeconds int
}

// TriggerConfig tunes the hardware button pattern.
type TriggerConfig struct {
	Threshold int
	WindowMS  int
}

// LocationConfig selects the platform location source.
type LocationConfig struct {
	Source          string
	FixedLatitude   float64
	FixedLongitude  float64
	FixedAccuracy   float64
	IntervalSeconds int
}

// NotificationConfig holds notification sink settings.
type NotificationConfig struct {
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
// Extra env files are loaded first; variables already set in the environment win.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	lat, err := getEnvAsFloat("LOCATION_FIXED_LAT", 0)
	if err != nil {
		return nil, err
	}
	lon, err := getEnvAsFloat("LOCATION_FIXED_LON", 0)
	if err != nil {
		return nil, err
	}
	accuracy, err := getEnvAsFloat("LOCATION_FIXED_ACCURACY", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "raksha"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "127.0.0.1"),
			Port:                  getEnv("APP_PORT", "8765"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Remote: RemoteConfig{
			BaseURL:        getEnv("API_BASE_URL", "http://127.0.0.1:5000"),
			TimeoutSeconds: getEnvAsInt("REMOTE_TIMEOUT_SECONDS", 10),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", StoreDriverFile),
			Dir:    getEnv("STORAGE_DIR", defaultStorageDir()),
		},
		Postgres: PostgresConfig{
			DSN:           os.Getenv("POSTGRES_DSN"),
			MaxConns:      int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			RunMigrations: getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "raksha:"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  os.Getenv("LOG_FILE"),
		},
		Auth: AuthConfig{
			BcryptCost:         getEnvAsInt("AUTH_BCRYPT_COST", 10),
			SessionTimeoutDays: getEnvAsInt("SESSION_TIMEOUT_DAYS", 30),
		},
		SOS: SOSConfig{
			LocationUpdateIntervalSeconds: getEnvAsInt("SOS_LOCATION_UPDATE_INTERVAL", 10),
		},
		Trigger: TriggerConfig{
			Threshold: getEnvAsInt("TRIGGER_THRESHOLD", 5),
			WindowMS:  getEnvAsInt("TRIGGER_WINDOW_MS", 3000),
		},
		Location: LocationConfig{
			Source:          getEnv("LOCATION_SOURCE", LocationSourceNone),
			FixedLatitude:   lat,
			FixedLongitude:  lon,
			FixedAccuracy:   accuracy,
			IntervalSeconds: getEnvAsInt("LOCATION_FIXED_INTERVAL_SECONDS", 1),
		},
		Notification: NotificationConfig{
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	switch cfg.Store.Driver {
	case StoreDriverFile, StoreDriverRedis, StoreDriverPostgres:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", cfg.Store.Driver)
	}
	if cfg.Store.Driver == StoreDriverPostgres && cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout bounds every backend call.
func (r RemoteConfig) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// SessionTimeout returns how long a saved session stays valid.
func (a AuthConfig) SessionTimeout() time.Duration {
	days := a.SessionTimeoutDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

// LocationUpdateInterval returns the tick period while an SOS is active.
func (s SOSConfig) LocationUpdateInterval() time.Duration {
	if s.LocationUpdateIntervalSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.LocationUpdateIntervalSeconds) * time.Second
}

// Window returns the press window as a duration.
func (t TriggerConfig) Window() time.Duration {
	if t.WindowMS <= 0 {
		return 3 * time.Second
	}
	return time.Duration(t.WindowMS) * time.Millisecond
}

// Interval returns the fixed source delivery period.
func (l LocationConfig) Interval() time.Duration {
	if l.IntervalSeconds <= 0 {
		return time.Second
	}
	return time.Duration(l.IntervalSeconds) * time.Second
}

func defaultStorageDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".raksha"
	}
	return filepath.Join(home, ".raksha")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
