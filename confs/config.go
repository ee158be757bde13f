package confs

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Host                string
	Port                int
	LogLevel            string
	LogFormat           string
	OnlineWindowMinutes int
	MetricsHistorySize  int
	ArchiveInterval     time.Duration
	DB                  DB
}

// DB holds the optional archive database settings. Either URL or the
// individual fields may be set.
type DB struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Enabled reports whether any database settings were provided.
func (d DB) Enabled() bool {
	return d.URL != "" || d.Host != ""
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig loads variables from a .env file if present; a missing file is
// not an error.
func LoadConfig(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load reads .env, then the environment, applying defaults.
func Load(files ...string) (*Config, error) {
	if err := LoadConfig(files...); err != nil {
		return nil, err
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 5030)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("online_window_minutes", 5)
	v.SetDefault("metrics_history_size", 720)
	v.SetDefault("archive_interval", "5m")
	v.SetDefault("db_url", "")
	v.SetDefault("db_host", "")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "")
	v.SetDefault("db_password", "")
	v.SetDefault("db_name", "")

	cfg := &Config{
		Host:                v.GetString("host"),
		Port:                v.GetInt("port"),
		LogLevel:            strings.ToLower(v.GetString("log_level")),
		LogFormat:           strings.ToLower(v.GetString("log_format")),
		OnlineWindowMinutes: v.GetInt("online_window_minutes"),
		MetricsHistorySize:  v.GetInt("metrics_history_size"),
		ArchiveInterval:     v.GetDuration("archive_interval"),
		DB: DB{
			URL:      v.GetString("db_url"),
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			Name:     v.GetString("db_name"),
		},
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.MetricsHistorySize <= 0 {
		cfg.MetricsHistorySize = 720
	}
	if cfg.ArchiveInterval <= 0 {
		cfg.ArchiveInterval = 5 * time.Minute
	}
	if cfg.OnlineWindowMinutes < 0 {
		cfg.OnlineWindowMinutes = -cfg.OnlineWindowMinutes
	}
	return cfg, nil
}
