// Package config loads archifinance settings from a TOML file, a .env file
// and ARCHIFINANCE_* environment variables, in that order of precedence
// (later wins).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Version is reported in settings and by the API.
const Version = "1.0.0"

// Config holds all archifinance configuration.
type Config struct {
	General       GeneralConfig       `toml:"general"`
	Profile       ProfileConfig       `toml:"profile"`
	Notifications NotificationsConfig `toml:"notifications"`
	Auth          AuthConfig          `toml:"auth"`
	Appearance    AppearanceConfig    `toml:"appearance"`
	Server        ServerConfig        `toml:"server"`
	Log           LogConfig           `toml:"log"`
}

// GeneralConfig holds storage and view preferences.
type GeneralConfig struct {
	DataDir       string `toml:"data_dir,omitempty"`
	UseStore      bool   `toml:"use_store"`
	DefaultPeriod string `toml:"default_period"`
}

// ProfileConfig describes the account owner.
type ProfileConfig struct {
	Name    string `toml:"name"`
	Role    string `toml:"role"`
	Email   string `toml:"email"`
	Phone   string `toml:"phone"`
	Company string `toml:"company"`
}

// NotificationsConfig holds the notification toggles.
type NotificationsConfig struct {
	EmailAlerts       bool `toml:"email_alerts"`
	PushNotifications bool `toml:"push_notifications"`
	WeeklyReports     bool `toml:"weekly_reports"`
	ProjectUpdates    bool `toml:"project_updates"`
}

// AuthConfig holds the login account and API token settings.
type AuthConfig struct {
	Email         string `toml:"email,omitempty"`
	PasswordHash  string `toml:"password_hash,omitempty"`
	TokenSecret   string `toml:"token_secret,omitempty"`
	TokenTTLHours int    `toml:"token_ttl_hours"`
}

// Configured reports whether an account has been set up.
func (a AuthConfig) Configured() bool {
	return a.Email != "" && a.PasswordHash != ""
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ServerConfig holds the local API settings.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	PollIntervalSec int      `toml:"poll_interval_sec"`
	EventsBuffer    int      `toml:"events_buffer"`
	AllowedOrigins  []string `toml:"allowed_origins,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			UseStore:      true,
			DefaultPeriod: "month",
		},
		Profile: ProfileConfig{
			Name:    "Ethan Carter",
			Role:    "Architect",
			Email:   "ethan.carter@archifinance.com",
			Phone:   "+57 300 123 4567",
			Company: "Carter Architecture Studio",
		},
		Notifications: NotificationsConfig{
			EmailAlerts:       true,
			PushNotifications: true,
			WeeklyReports:     false,
			ProjectUpdates:    true,
		},
		Auth: AuthConfig{
			TokenTTLHours: 24,
		},
		Appearance: AppearanceConfig{
			Theme: "archi-blue",
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8788",
			PollIntervalSec: 15,
			EventsBuffer:    200,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "archifinance")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "archifinance")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist, then
// applies .env and environment overrides.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg, err := LoadFile(Path())
	if err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile reads one TOML file over the defaults. A missing file is not an
// error.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays ARCHIFINANCE_* variables onto cfg.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("ARCHIFINANCE_DATA_DIR", &cfg.General.DataDir)
	str("ARCHIFINANCE_DEFAULT_PERIOD", &cfg.General.DefaultPeriod)
	str("ARCHIFINANCE_THEME", &cfg.Appearance.Theme)
	str("ARCHIFINANCE_AUTH_EMAIL", &cfg.Auth.Email)
	str("ARCHIFINANCE_AUTH_PASSWORD_HASH", &cfg.Auth.PasswordHash)
	str("ARCHIFINANCE_TOKEN_SECRET", &cfg.Auth.TokenSecret)
	str("ARCHIFINANCE_SERVER_ADDR", &cfg.Server.Addr)
	str("ARCHIFINANCE_LOG_LEVEL", &cfg.Log.Level)
	str("ARCHIFINANCE_LOG_FILE", &cfg.Log.File)

	if v, ok := lookup("ARCHIFINANCE_USE_STORE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ARCHIFINANCE_USE_STORE: %w", err)
		}
		cfg.General.UseStore = b
	}
	if v, ok := lookup("ARCHIFINANCE_POLL_INTERVAL_SEC"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("ARCHIFINANCE_POLL_INTERVAL_SEC: invalid value %q", v)
		}
		cfg.Server.PollIntervalSec = n
	}
	if v, ok := lookup("ARCHIFINANCE_ALLOWED_ORIGINS"); ok && v != "" {
		cfg.Server.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, o)
			}
		}
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes cfg to path with owner-only permissions.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // path is the user's own config
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// DBPath returns the database path under the configured data dir, or ""
// when no data dir is configured.
func (c Config) DBPath() string {
	if c.General.DataDir == "" {
		return ""
	}
	return filepath.Join(c.General.DataDir, "archifinance.db")
}
