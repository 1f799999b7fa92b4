package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadLayered_CLIOverridesEverything(t *testing.T) {
	embedded := []byte("logging:\n  level: \"warn\"\nsettings:\n  dir: \"/embedded\"")
	t.Setenv("UMS_LOG_LEVEL", "error")
	cli := CLIOverrides{LogLevel: "debug", SettingsDir: "/cli"}

	cfg, err := LoadLayered(cli, embedded, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want CLI override", cfg.Logging.Level)
	}
	if cfg.Settings.Dir != "/cli" {
		t.Errorf("Dir = %q, want CLI override", cfg.Settings.Dir)
	}
}

func TestLoadLayered_EnvOverridesEmbed(t *testing.T) {
	embedded := []byte("logging:\n  level: \"warn\"\nsettings:\n  dir: \"/embedded\"")
	t.Setenv("UMS_LOG_LEVEL", "error")

	cfg, err := LoadLayered(CLIOverrides{}, embedded, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Level = %q, want env override", cfg.Logging.Level)
	}
	if cfg.Settings.Dir != "/embedded" {
		t.Errorf("Dir = %q, want embedded value", cfg.Settings.Dir)
	}
}

func TestLoadLayered_FileOverridesEmbed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("monitor:\n  poll_interval: 250ms\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadLayered(CLIOverrides{}, []byte("monitor:\n  poll_interval: 5s\n"), path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Monitor.PollInterval.Duration != 250*time.Millisecond {
		t.Errorf("PollInterval = %v, want 250ms from file", cfg.Monitor.PollInterval.Duration)
	}
}

func TestLoadLayered_DefaultsWhenEmpty(t *testing.T) {
	cfg, err := LoadLayered(CLIOverrides{}, nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Monitor.PollInterval.Duration != time.Second {
		t.Errorf("PollInterval = %v, want 1s default", cfg.Monitor.PollInterval.Duration)
	}
	if cfg.Settings.Dir == "" {
		t.Error("Settings.Dir is empty, want a per-user default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("UMS_SETTINGS_DIR", "/from-env")
	t.Setenv("UMS_LOG_FILE", "/tmp/ums.log")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Settings.Dir != "/from-env" {
		t.Errorf("Dir = %q, want env override", cfg.Settings.Dir)
	}
	if cfg.Logging.File != "/tmp/ums.log" {
		t.Errorf("File = %q, want env override", cfg.Logging.File)
	}
}

func TestLoadFromBytes_InvalidDuration(t *testing.T) {
	if _, err := LoadFromBytes([]byte("monitor:\n  poll_interval: soon\n")); err == nil {
		t.Error("expected an error for an unparsable duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown level", func(c *Config) { c.Logging.Level = "chatty" }, true},
		{"zero interval", func(c *Config) { c.Monitor.PollInterval = Duration{} }, true},
		{"no settings dir", func(c *Config) { c.Settings.Dir = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteConfig_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Monitor.PollInterval = Duration{2 * time.Second}

	if err := WriteConfig(cfg, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Monitor.PollInterval.Duration != 2*time.Second {
		t.Errorf("PollInterval = %v, want 2s after round trip", loaded.Monitor.PollInterval.Duration)
	}
}
