package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"CONFIG_FILE", "APP_NAME", "SERVER_HOST", "SERVER_PORT", "SERVER_READ_TIMEOUT",
	"DB_DRIVER", "DB_PATH", "DATABASE_URL", "DB_HOST", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"REQUEST_TIMEOUT_SECONDS", "LOG_LEVEL", "RUN_MIGRATIONS", "MONITOR_INTERVAL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Database.Path != "./data/todos.db" {
		t.Errorf("path = %q", cfg.Database.Path)
	}
	if cfg.Address() != "0.0.0.0:3001" {
		t.Errorf("address = %q", cfg.Address())
	}
	if cfg.Context.RequestTimeout != 5*time.Second {
		t.Errorf("request timeout = %v", cfg.Context.RequestTimeout)
	}
	if cfg.Database.URL != "" {
		t.Errorf("sqlite driver should not build a postgres url, got %q", cfg.Database.URL)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_READ_TIMEOUT", "3")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "250ms")
	t.Setenv("DB_DRIVER", "POSTGRES")
	t.Setenv("DB_USER", "alice")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "tasks")
	t.Setenv("RUN_MIGRATIONS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.HTTP.Port != "9090" {
		t.Errorf("port = %q", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeout != 3*time.Second {
		t.Errorf("read timeout = %v", cfg.HTTP.ReadTimeout)
	}
	if cfg.Context.RequestTimeout != 250*time.Millisecond {
		t.Errorf("request timeout = %v", cfg.Context.RequestTimeout)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
	want := "postgres://alice:secret@db:5432/tasks?sslmode=disable"
	if cfg.Database.URL != want {
		t.Errorf("url = %q, want %q", cfg.Database.URL, want)
	}
	if cfg.Migrations.Enabled {
		t.Error("migrations should be disabled")
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "todo.toml")
	content := `
app_name = "todo-from-file"

[http]
port = "4000"

[database]
driver = "bolt"
path = "/var/lib/todo/todos.bolt"

[logger]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.AppName != "todo-from-file" {
		t.Errorf("app name = %q", cfg.AppName)
	}
	if cfg.HTTP.Port != "4000" {
		t.Errorf("port = %q", cfg.HTTP.Port)
	}
	if cfg.HTTP.Host != "0.0.0.0" {
		t.Errorf("host default lost: %q", cfg.HTTP.Host)
	}
	if cfg.Database.Driver != DriverBolt || cfg.Database.Path != "/var/lib/todo/todos.bolt" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Logger.Level != "warn" {
		t.Errorf("environment should win over file, level = %q", cfg.Logger.Level)
	}
}

func TestLoadConfigFileMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.toml"))

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "unknown DB_DRIVER"},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "DB_PATH"},
		{name: "postgres without url", mutate: func(c *Config) { c.Database.Driver = DriverPostgres }, wantErr: "DATABASE_URL"},
		{name: "missing port", mutate: func(c *Config) { c.HTTP.Port = "" }, wantErr: "SERVER_PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
