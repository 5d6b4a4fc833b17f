package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("ENCRYPTION_KEY", "01234567890123456789012345678901") // 32 bytes
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, 5432)
	}
	if cfg.Storage.Driver != StoragePostgres {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, StoragePostgres)
	}
	if !cfg.Database.AutoMigrate || !cfg.Database.Seed {
		t.Errorf("AutoMigrate/Seed = %v/%v, want true/true", cfg.Database.AutoMigrate, cfg.Database.Seed)
	}
	if cfg.Scheduler.Enabled {
		t.Error("Scheduler.Enabled = true, want false")
	}
	if !reflect.DeepEqual(cfg.Scheduler.ScheduleTimes, []string{"06:00", "18:00"}) {
		t.Errorf("Scheduler.ScheduleTimes = %v", cfg.Scheduler.ScheduleTimes)
	}
	if cfg.Redis.LockTTL != 30*time.Second || cfg.Redis.LockPrefix != "wealthtrackr:lock" {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.RabbitMQ.Exchange != "ledger_events" {
		t.Errorf("RabbitMQ.Exchange = %q", cfg.RabbitMQ.Exchange)
	}
	if cfg.Telemetry.ServiceName != "wealthtrackr-api" {
		t.Errorf("Telemetry.ServiceName = %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("ALLOWED_HOSTS", "https://app.example.com, ,http://localhost:3000")
	t.Setenv("SCHEDULER_ENABLED", "yes")
	t.Setenv("SCHEDULER_TIMES", "07:30")
	t.Setenv("DB_SEED", "0")
	t.Setenv("REDIS_LOCK_TTL", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Storage.Driver != StorageMemory {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, StorageMemory)
	}
	want := []string{"https://app.example.com", "http://localhost:3000"}
	if !reflect.DeepEqual(cfg.Server.AllowedHosts, want) {
		t.Errorf("AllowedHosts = %v, want %v", cfg.Server.AllowedHosts, want)
	}
	if !cfg.Scheduler.Enabled {
		t.Error("Scheduler.Enabled = false, want true")
	}
	if cfg.Database.Seed {
		t.Error("Database.Seed = true, want false")
	}
	if cfg.Redis.LockTTL != 5*time.Second {
		t.Errorf("Redis.LockTTL = %v", cfg.Redis.LockTTL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "Missing encryption key", env: map[string]string{"ENCRYPTION_KEY": ""}, wantErr: "ENCRYPTION_KEY is required"},
		{name: "Short encryption key", env: map[string]string{"ENCRYPTION_KEY": "too-short"}, wantErr: "exactly 32 bytes"},
		{name: "Invalid DB port", env: map[string]string{"DB_PORT": "not-a-number"}, wantErr: "DB_PORT"},
		{name: "Unknown storage driver", env: map[string]string{"STORAGE_DRIVER": "sqlite"}, wantErr: "STORAGE_DRIVER"},
		{name: "TLS without cert", env: map[string]string{"TLS_ENABLED": "true"}, wantErr: "TLS_CERT_PATH"},
		{name: "TLS without key", env: map[string]string{"TLS_ENABLED": "true", "TLS_CERT_PATH": "/etc/cert.pem"}, wantErr: "TLS_KEY_PATH"},
		{name: "Bad schedule time", env: map[string]string{"SCHEDULER_ENABLED": "true", "SCHEDULER_TIMES": "25:00"}, wantErr: "SCHEDULER_TIMES"},
		{name: "Bad job delay", env: map[string]string{"SCHEDULER_JOB_DELAY": "soon"}, wantErr: "SCHEDULER_JOB_DELAY"},
		{name: "Bad lock ttl", env: map[string]string{"REDIS_LOCK_TTL": "forever"}, wantErr: "REDIS_LOCK_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnvVars(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
				if v == "" {
					os.Unsetenv(k)
				}
			}

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	hour, minute, err := ParseClock("06:45")
	if err != nil || hour != 6 || minute != 45 {
		t.Errorf("ParseClock(06:45) = %d, %d, %v", hour, minute, err)
	}
	if _, _, err := ParseClock("6pm"); err == nil {
		t.Error("ParseClock(6pm) expected error")
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "ledger", SSLMode: "require"}
	want := "host=db port=5433 user=u password=p dbname=ledger sslmode=require"
	if got := c.ConnectionString(); got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}
