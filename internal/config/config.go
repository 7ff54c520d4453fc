package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
)

const (
	DefaultDatabaseURL = "sqlite:///data/todo.db"
	DefaultPort        = "8080"
	DefaultSessionName = "todo-session"
	DefaultConfigFile  = "todo.toml"
)

type Config struct {
	SecretKey     []byte `toml:"-"`
	Secret        string `toml:"secret_key"`
	DatabaseURL   string `toml:"database_url"`
	Port          string `toml:"port"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	SessionName   string `toml:"session_name"`
	SessionSecure bool   `toml:"session_secure"`

	// GeneratedSecret is set when no secret was configured and a random
	// one was created for this process.
	GeneratedSecret bool `toml:"-"`
}

// LoadConfig reads configuration in priority order: defaults, the TOML file
// (TODO_CONFIG or ./todo.toml), then environment variables, which may come
// from a .env file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		DatabaseURL: DefaultDatabaseURL,
		Port:        DefaultPort,
		LogLevel:    "info",
		LogFormat:   "text",
		SessionName: DefaultSessionName,
	}

	configFile := os.Getenv("TODO_CONFIG")
	explicit := configFile != ""
	if !explicit {
		configFile = DefaultConfigFile
	}
	if err := loadConfigFile(cfg, configFile, explicit); err != nil {
		return nil, err
	}

	loadFromEnv(cfg)

	if err := finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		cfg.Secret = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("SESSION_NAME"); v != "" {
		cfg.SessionName = v
	}
	if v := os.Getenv("SESSION_SECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SessionSecure = b
		}
	}
}

func finalize(cfg *Config) error {
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT %q: %w", cfg.Port, err)
	}

	if cfg.Secret != "" {
		cfg.SecretKey = []byte(cfg.Secret)
		return nil
	}
	key := securecookie.GenerateRandomKey(32)
	if key == nil {
		return fmt.Errorf("failed to generate session secret")
	}
	cfg.SecretKey = key
	cfg.GeneratedSecret = true
	return nil
}
