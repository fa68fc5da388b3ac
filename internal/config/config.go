package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultMaxFileSize is the per-file upload cap (10 MiB)
const DefaultMaxFileSize int64 = 10 << 20

// Session store backends
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port      string `yaml:"port" env:"SERVER_PORT"`
		Mode      string `yaml:"mode" env:"SERVER_MODE"`
		StaticDir string `yaml:"static_dir" env:"SERVER_STATIC_DIR"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		RunMigrations   bool   `yaml:"run_migrations" env:"DB_RUN_MIGRATIONS"`
	} `yaml:"database"`

	Session struct {
		Secret       string `yaml:"secret" env:"SESSION_SECRET"`
		TTL          string `yaml:"ttl" env:"SESSION_TTL"`
		CookieName   string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME"`
		SecureCookie bool   `yaml:"secure_cookie" env:"SESSION_SECURE_COOKIE"`
		Store        string `yaml:"store" env:"SESSION_STORE"`
	} `yaml:"session"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
	} `yaml:"redis"`

	Upload struct {
		MaxFileSize int64 `yaml:"max_file_size" env:"UPLOAD_MAX_FILE_SIZE"`
	} `yaml:"upload"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from defaults, an optional YAML file,
// an optional .env file and the process environment, in that order.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env only fills variables that are not already set in the environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func setDefaults(config *Config) {
	config.Server.Port = "3000"
	config.Server.Mode = "development"

	config.Database.Host = "localhost"
	config.Database.Port = "5400"
	config.Database.User = "postgres"
	config.Database.Password = "postgrePassword"
	config.Database.DBName = "dhbw_klausuren"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.RunMigrations = true

	config.Session.Secret = "dhbw-altklausuren-secret-key-2025"
	config.Session.TTL = "24h"
	config.Session.CookieName = "altklausuren.sid"
	config.Session.Store = SessionStoreMemory

	config.Redis.Addr = "localhost:6379"

	config.Upload.MaxFileSize = DefaultMaxFileSize

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database connection lifetime: %w", err)
	}

	if config.Session.Secret == "" {
		return fmt.Errorf("session secret is required")
	}

	ttl, err := time.ParseDuration(config.Session.TTL)
	if err != nil {
		return fmt.Errorf("invalid session ttl format: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}

	switch strings.ToLower(config.Session.Store) {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if config.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for the redis session store")
		}
	default:
		return fmt.Errorf("unknown session store %q", config.Session.Store)
	}

	if config.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("upload max file size must be positive")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// SessionTTL returns the parsed session lifetime
func (c *Config) SessionTTL() time.Duration {
	ttl, err := time.ParseDuration(c.Session.TTL)
	if err != nil || ttl <= 0 {
		return 24 * time.Hour
	}
	return ttl
}

// ConnMaxLifetime returns the parsed pool connection lifetime
func (c *Config) ConnMaxLifetime() time.Duration {
	d, err := time.ParseDuration(c.Database.ConnMaxLifetime)
	if err != nil {
		return time.Hour
	}
	return d
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Server.Mode) == "production"
}
