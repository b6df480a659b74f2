package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Storage drivers understood by DatabaseConfig.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string           `toml:"app_name"`
	Environment string           `toml:"environment"`
	HTTP        HTTPConfig       `toml:"http"`
	Database    DatabaseConfig   `toml:"database"`
	Context     ContextConfig    `toml:"context"`
	Logger      LoggerConfig     `toml:"logger"`
	Migrations  MigrationsConfig `toml:"migrations"`
	Monitor     MonitorConfig    `toml:"monitor"`
}

type HTTPConfig struct {
	Host         string        `toml:"host"`
	Port         string        `toml:"port"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	IdleTimeout  time.Duration `toml:"idle_timeout"`
	MaxConn      int           `toml:"max_conn"`
}

type DatabaseConfig struct {
	Driver          string        `toml:"driver"`
	Path            string        `toml:"path"`
	URL             string        `toml:"url"`
	Host            string        `toml:"host"`
	Port            string        `toml:"port"`
	Name            string        `toml:"name"`
	User            string        `toml:"user"`
	Password        string        `toml:"password"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	MaxConnLifetime time.Duration `toml:"max_conn_lifetime"`
	SSLMode         string        `toml:"sslmode"`
}

type ContextConfig struct {
	RequestTimeout  time.Duration `toml:"request_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level    string `toml:"level"`
	Encoding string `toml:"encoding"`
}

type MigrationsConfig struct {
	Enabled bool `toml:"enabled"`
	// Path is a directory of golang-migrate files. Empty uses the embedded set.
	Path string `toml:"path"`
}

type MonitorConfig struct {
	Interval time.Duration `toml:"interval"`
}

// Load builds the configuration from defaults, an optional TOML file named by
// CONFIG_FILE, an optional .env file and finally the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.Database.URL == "" && cfg.Database.Driver == DriverPostgres {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func defaults() *Config {
	return &Config{
		AppName:     "todo-api",
		Environment: "development",
		HTTP: HTTPConfig{
			Host:         "0.0.0.0",
			Port:         "3001",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			Path:            "./data/todos.db",
			Host:            "localhost",
			Port:            "5432",
			Name:            "todos",
			User:            "todo",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			MaxConnLifetime: time.Hour,
			SSLMode:         "disable",
		},
		Context: ContextConfig{
			RequestTimeout:  5 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logger: LoggerConfig{
			Level:    "info",
			Encoding: "json",
		},
		Migrations: MigrationsConfig{
			Enabled: true,
		},
		Monitor: MonitorConfig{
			Interval: 10 * time.Second,
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.AppName = getString("APP_NAME", cfg.AppName)
	cfg.Environment = getString("APP_ENV", cfg.Environment)

	cfg.HTTP.Host = getString("SERVER_HOST", cfg.HTTP.Host)
	cfg.HTTP.Port = getString("SERVER_PORT", cfg.HTTP.Port)
	cfg.HTTP.ReadTimeout = getDuration("SERVER_READ_TIMEOUT", cfg.HTTP.ReadTimeout)
	cfg.HTTP.WriteTimeout = getDuration("SERVER_WRITE_TIMEOUT", cfg.HTTP.WriteTimeout)
	cfg.HTTP.IdleTimeout = getDuration("SERVER_IDLE_TIMEOUT", cfg.HTTP.IdleTimeout)
	cfg.HTTP.MaxConn = getInt("SERVER_MAX_CONN", cfg.HTTP.MaxConn)

	cfg.Database.Driver = strings.ToLower(getString("DB_DRIVER", cfg.Database.Driver))
	cfg.Database.Path = getString("DB_PATH", cfg.Database.Path)
	cfg.Database.URL = getString("DATABASE_URL", cfg.Database.URL)
	cfg.Database.Host = getString("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getString("DB_PORT", cfg.Database.Port)
	cfg.Database.Name = getString("DB_NAME", cfg.Database.Name)
	cfg.Database.User = getString("DB_USER", cfg.Database.User)
	cfg.Database.Password = getString("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.MaxOpenConns = getInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.MaxConnLifetime = getDuration("DB_CONN_LIFETIME", cfg.Database.MaxConnLifetime)
	cfg.Database.SSLMode = getString("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.Context.RequestTimeout = getDuration("REQUEST_TIMEOUT_SECONDS", cfg.Context.RequestTimeout)
	cfg.Context.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT_SECONDS", cfg.Context.ShutdownTimeout)

	cfg.Logger.Level = getString("LOG_LEVEL", cfg.Logger.Level)
	cfg.Logger.Encoding = getString("LOG_ENCODING", cfg.Logger.Encoding)

	cfg.Migrations.Enabled = getBool("RUN_MIGRATIONS", cfg.Migrations.Enabled)
	cfg.Migrations.Path = getString("MIGRATIONS_PATH", cfg.Migrations.Path)

	cfg.Monitor.Interval = getDuration("MONITOR_INTERVAL", cfg.Monitor.Interval)
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverBolt:
		if c.Database.Path == "" {
			return fmt.Errorf("config: DB_PATH is required for driver %q", c.Database.Driver)
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.Database.Driver)
	}
	if c.HTTP.Port == "" {
		return fmt.Errorf("config: SERVER_PORT is required")
	}
	return nil
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
