package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Plan          PlanConfig   `toml:"plan"`
	Store         StoreConfig  `toml:"store"`
	Notifications NotifyConfig `toml:"notifications"`
	Server        ServerConfig `toml:"server"`
	Log           LogConfig    `toml:"log"`
	AI            AIConfig     `toml:"ai"`
}

type PlanConfig struct {
	DailyHours      float64 `toml:"daily_hours"`
	StaggerSessions bool    `toml:"stagger_sessions"`
}

type StoreConfig struct {
	Path string `toml:"path"`
}

type NotifyConfig struct {
	Enabled      bool `toml:"enabled"`
	LeadMinutes  int  `toml:"lead_minutes"`
	CheckMinutes int  `toml:"check_minutes"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

type AIConfig struct {
	Provider string `toml:"provider"` // "openai" or "claude-cli"
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
}

func DefaultConfig() Config {
	return Config{
		Plan: PlanConfig{
			DailyHours: 3,
		},
		Notifications: NotifyConfig{
			Enabled:      true,
			LeadMinutes:  15,
			CheckMinutes: 5,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		AI: AIConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
		},
	}
}

func ConfigDir() (string, error) {
	if dir := os.Getenv("STUDYR_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "studyr"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the config at path over the defaults. A missing file is
// not an error.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STUDYR_DB"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("STUDYR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("STUDYR_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("STUDYR_DAILY_HOURS"); v != "" {
		if h, err := strconv.ParseFloat(v, 64); err == nil && h > 0 {
			cfg.Plan.DailyHours = h
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.AI.APIKey == "" {
		cfg.AI.APIKey = v
	}
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// WriteDefault writes the default config to path as TOML.
func WriteDefault(path string) error {
	out, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}

// SaveDailyHours persists the daily hour budget using a read-modify-write
// so other settings in the file are preserved.
func SaveDailyHours(path string, hours float64) error {
	cfg := make(map[string]any)

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}
	if len(data) > 0 {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	plan, ok := cfg["plan"].(map[string]any)
	if !ok {
		plan = make(map[string]any)
	}
	plan["daily_hours"] = hours
	cfg["plan"] = plan

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}
