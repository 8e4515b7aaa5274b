package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile_MissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Appearance.Theme != "archi-blue" {
		t.Fatalf("Theme = %q, want archi-blue", cfg.Appearance.Theme)
	}
	if !cfg.General.UseStore || cfg.Server.PollIntervalSec != 15 || cfg.Auth.TokenTTLHours != 24 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Notifications.WeeklyReports || !cfg.Notifications.EmailAlerts {
		t.Fatalf("notification defaults = %+v", cfg.Notifications)
	}
}

func TestSaveToAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archifinance", "config.toml")
	cfg := DefaultConfig()
	cfg.Profile.Name = "Lucía Restrepo"
	cfg.General.DefaultPeriod = "quarter"
	cfg.Server.AllowedOrigins = []string{"http://localhost:5173"}

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("mode = %o, want 600", perm)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.Profile.Name != "Lucía Restrepo" || got.General.DefaultPeriod != "quarter" {
		t.Fatalf("loaded = %+v", got)
	}
	if len(got.Server.AllowedOrigins) != 1 {
		t.Fatalf("AllowedOrigins = %v", got.Server.AllowedOrigins)
	}
}

func TestLoadFile_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[appearance]\ntheme = \"flexoki-dark\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Appearance.Theme != "flexoki-dark" {
		t.Fatalf("Theme = %q", cfg.Appearance.Theme)
	}
	if cfg.Server.Addr != "127.0.0.1:8788" {
		t.Fatalf("Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestLoadFile_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("LoadFile should fail on malformed TOML")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ARCHIFINANCE_THEME":             "catppuccin-mocha",
		"ARCHIFINANCE_USE_STORE":         "false",
		"ARCHIFINANCE_POLL_INTERVAL_SEC": "30",
		"ARCHIFINANCE_ALLOWED_ORIGINS":   "http://a, http://b ,",
		"ARCHIFINANCE_LOG_LEVEL":         "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	cfg := DefaultConfig()
	if err := ApplyEnv(&cfg, lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Appearance.Theme != "catppuccin-mocha" || cfg.General.UseStore || cfg.Server.PollIntervalSec != 30 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "http://b" {
		t.Fatalf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("empty env value overrode Level: %q", cfg.Log.Level)
	}

	env["ARCHIFINANCE_POLL_INTERVAL_SEC"] = "soon"
	if err := ApplyEnv(&cfg, lookup); err == nil {
		t.Fatal("ApplyEnv should reject a non-numeric interval")
	}
}

func TestPathHonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if got, want := Path(), filepath.Join(dir, "archifinance", "config.toml"); got != want {
		t.Fatalf("Path() = %q, want %q", got, want)
	}
	if Exists() {
		t.Fatal("Exists() = true for empty config dir")
	}
}

func TestDBPath(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DBPath() != "" {
		t.Fatalf("DBPath without data dir = %q", cfg.DBPath())
	}
	cfg.General.DataDir = "/srv/af"
	if cfg.DBPath() != filepath.Join("/srv/af", "archifinance.db") {
		t.Fatalf("DBPath = %q", cfg.DBPath())
	}
}
