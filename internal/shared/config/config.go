package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Storage    StorageConfig
	Encryption EncryptionConfig
	Scheduler  SchedulerConfig
	TLS        TLSConfig
	Telemetry  TelemetryConfig
	Redis      RedisConfig
	RabbitMQ   RabbitMQConfig
	Reports    ReportsConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
	Seed        bool
}

type StorageConfig struct {
	Driver string
}

type EncryptionConfig struct {
	Key string
}

type SchedulerConfig struct {
	Enabled       bool
	ScheduleTimes []string
	WorkerCount   int
	JobDelay      time.Duration
	QueueSize     int
	RunOnStartup  bool
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	Environment  string
	MetricsPort  string
}

// RedisConfig enables distributed account locks when URL is set
type RedisConfig struct {
	URL        string
	LockPrefix string
	LockTTL    time.Duration
}

// RabbitMQConfig enables ledger event publishing when URL is set
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type ReportsConfig struct {
	BudgetDefaultMonth string
}

var defaults = map[string]any{
	"PORT":                     "8080",
	"HOST":                     "0.0.0.0",
	"ALLOWED_HOSTS":            "",
	"STORAGE_DRIVER":           StoragePostgres,
	"DB_HOST":                  "localhost",
	"DB_PORT":                  "5432",
	"DB_USER":                  "wealthtrackr",
	"DB_PASSWORD":              "",
	"DB_NAME":                  "wealthtrackr",
	"DB_SSLMODE":               "disable",
	"DB_AUTO_MIGRATE":          "true",
	"DB_SEED":                  "true",
	"ENCRYPTION_KEY":           "",
	"SCHEDULER_ENABLED":        "false",
	"SCHEDULER_TIMES":          "06:00,18:00",
	"SCHEDULER_WORKERS":        "3",
	"SCHEDULER_JOB_DELAY":      "1s",
	"SCHEDULER_QUEUE_SIZE":     "100",
	"SCHEDULER_RUN_ON_STARTUP": "false",
	"TLS_ENABLED":              "false",
	"TLS_CERT_PATH":            "",
	"TLS_KEY_PATH":             "",
	"TLS_REDIRECT_HTTP":        "false",
	"OTEL_ENABLED":             "false",
	"OTEL_SERVICE_NAME":        "wealthtrackr-api",
	"OTEL_EXPORTER_ENDPOINT":   "localhost:4317",
	"OTEL_ENVIRONMENT":         "development",
	"METRICS_PORT":             "9464",
	"REDIS_URL":                "",
	"REDIS_LOCK_PREFIX":        "wealthtrackr:lock",
	"REDIS_LOCK_TTL":           "30s",
	"RABBITMQ_URL":             "",
	"RABBITMQ_EXCHANGE":        "ledger_events",
	"BUDGET_DEFAULT_MONTH":     "",
}

// Load resolves the configuration from the environment, falling back to a
// .env file in the working directory and then to defaults.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if _, err := os.Stat(".env"); err == nil {
		v.SetConfigFile(".env")
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}

	dbPort, err := strconv.Atoi(v.GetString("DB_PORT"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	// Parse scheduler configuration
	schedulerWorkers, err := strconv.Atoi(v.GetString("SCHEDULER_WORKERS"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_WORKERS: %w", err)
	}
	schedulerJobDelay, err := time.ParseDuration(v.GetString("SCHEDULER_JOB_DELAY"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_JOB_DELAY: %w", err)
	}
	schedulerQueueSize, err := strconv.Atoi(v.GetString("SCHEDULER_QUEUE_SIZE"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_QUEUE_SIZE: %w", err)
	}

	lockTTL, err := time.ParseDuration(v.GetString("REDIS_LOCK_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_LOCK_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			Host:         v.GetString("HOST"),
			AllowedHosts: splitList(v.GetString("ALLOWED_HOSTS")),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        dbPort,
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE"),
			Seed:        getBool(v, "DB_SEED"),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		},
		Encryption: EncryptionConfig{
			Key: v.GetString("ENCRYPTION_KEY"),
		},
		Scheduler: SchedulerConfig{
			Enabled:       getBool(v, "SCHEDULER_ENABLED"),
			ScheduleTimes: splitList(v.GetString("SCHEDULER_TIMES")),
			WorkerCount:   schedulerWorkers,
			JobDelay:      schedulerJobDelay,
			QueueSize:     schedulerQueueSize,
			RunOnStartup:  getBool(v, "SCHEDULER_RUN_ON_STARTUP"),
		},
		TLS: TLSConfig{
			Enabled:      getBool(v, "TLS_ENABLED"),
			CertPath:     v.GetString("TLS_CERT_PATH"),
			KeyPath:      v.GetString("TLS_KEY_PATH"),
			RedirectHTTP: getBool(v, "TLS_REDIRECT_HTTP"),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBool(v, "OTEL_ENABLED"),
			ServiceName:  v.GetString("OTEL_SERVICE_NAME"),
			OTLPEndpoint: v.GetString("OTEL_EXPORTER_ENDPOINT"),
			Environment:  v.GetString("OTEL_ENVIRONMENT"),
			MetricsPort:  v.GetString("METRICS_PORT"),
		},
		Redis: RedisConfig{
			URL:        v.GetString("REDIS_URL"),
			LockPrefix: v.GetString("REDIS_LOCK_PREFIX"),
			LockTTL:    lockTTL,
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("RABBITMQ_URL"),
			Exchange: v.GetString("RABBITMQ_EXCHANGE"),
		},
		Reports: ReportsConfig{
			BudgetDefaultMonth: v.GetString("BUDGET_DEFAULT_MONTH"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Encryption.Key == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if len(c.Encryption.Key) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes")
	}

	if c.Storage.Driver != StoragePostgres && c.Storage.Driver != StorageMemory {
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage.Driver)
	}

	// Validate TLS configuration
	if c.TLS.Enabled {
		if c.TLS.CertPath == "" {
			return fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if c.TLS.KeyPath == "" {
			return fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}

	if c.Scheduler.Enabled {
		if c.Scheduler.WorkerCount < 1 {
			return fmt.Errorf("SCHEDULER_WORKERS must be at least 1")
		}
		for _, hhmm := range c.Scheduler.ScheduleTimes {
			if _, _, err := ParseClock(hhmm); err != nil {
				return fmt.Errorf("invalid SCHEDULER_TIMES entry: %w", err)
			}
		}
	}

	return nil
}

// ParseClock parses an HH:MM time of day.
func ParseClock(hhmm string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not HH:MM", hhmm)
	}
	return t.Hour(), t.Minute(), nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// splitList splits a comma-separated list, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getBool(v *viper.Viper, key string) bool {
	if value, ok := parseBool(v.GetString(key)); ok {
		return value
	}
	value, _ := parseBool(fmt.Sprint(defaults[key]))
	return value
}

// parseBool accepts true, false, 1, 0, yes, no (case-insensitive)
func parseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	default:
		return false, false
	}
}
