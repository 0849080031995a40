package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Refresh  RefreshConfig  `yaml:"refresh" envconfig:"REFRESH"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration.
// Relative paths are resolved against the working directory.
type PathsConfig struct {
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR"`
	DatabaseFile string `yaml:"database_file" envconfig:"DATABASE_FILE"`
	WebDir       string `yaml:"web_dir" envconfig:"WEB_DIR"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	UsersFile    string `yaml:"users_file" envconfig:"USERS_FILE"`
}

// RefreshConfig controls the watcher for the out-of-band data refresh
type RefreshConfig struct {
	Enabled  bool   `yaml:"enabled" envconfig:"ENABLED"`
	Schedule string `yaml:"schedule" envconfig:"SCHEDULE"`
}

// Load loads configuration from an optional YAML file and the environment.
// Environment variables (prefix DRE) take precedence over file values.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = fileConfig
	}

	if err := envconfig.Process("DRE", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnsureDirectories creates the directories the application writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogsDir, filepath.Dir(c.Paths.DatabaseFile)}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ListenAddr returns the host:port pair the server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Paths.DatabaseFile == "" {
		return fmt.Errorf("database file path must be set")
	}

	if c.Paths.UsersFile == "" {
		return fmt.Errorf("users file path must be set")
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "console" {
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			DataDir:      "data",
			DatabaseFile: "data/dre.db",
			WebDir:       "web",
			LogsDir:      "logs",
			UsersFile:    "users.yaml",
		},
		Refresh: RefreshConfig{
			Enabled:  true,
			Schedule: "*/5 * * * *",
		},
	}
}
