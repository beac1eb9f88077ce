package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Pomodoro.LongBreakInterval != 4 {
		t.Errorf("expected default long_break_interval=4, got %d", cfg.Pomodoro.LongBreakInterval)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("expected default backend sqlite, got %q", cfg.Storage.Backend)
	}

	pc := cfg.ToPomodoroDomainConfig()
	if pc.WorkDuration != 25*time.Minute || pc.ShortBreakDuration != 5*time.Minute || pc.LongBreakDuration != 15*time.Minute {
		t.Errorf("unexpected domain config %+v", pc)
	}
}

func TestLoadFrom_CreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be created: %v", err)
	}
	if time.Duration(cfg.Pomodoro.WorkDuration) != 25*time.Minute {
		t.Errorf("expected work duration 25m, got %v", cfg.Pomodoro.WorkDuration)
	}
	if strings.HasPrefix(cfg.Storage.DataDir, "~") {
		t.Errorf("expected data dir to be expanded, got %q", cfg.Storage.DataDir)
	}
}

func TestLoadFrom_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `user_id = "alice"

[pomodoro]
work_duration = "50m"
short_break = "10m"
long_break = "30m"
long_break_interval = 2

[storage]
backend = "file"
data_dir = "/tmp/airth-test"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.UserID != "alice" {
		t.Errorf("expected user_id alice, got %q", cfg.UserID)
	}
	pc := cfg.ToPomodoroDomainConfig()
	if pc.WorkDuration != 50*time.Minute || pc.LongBreakInterval != 2 {
		t.Errorf("unexpected pomodoro config %+v", pc)
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("expected backend file, got %q", cfg.Storage.Backend)
	}
	if GetStateDir(cfg) != filepath.Join("/tmp/airth-test", "storage") {
		t.Errorf("unexpected state dir %q", GetStateDir(cfg))
	}
	if GetDBPath(cfg) != filepath.Join("/tmp/airth-test", "airth.db") {
		t.Errorf("unexpected db path %q", GetDBPath(cfg))
	}
	// Unset keys fall back to defaults.
	if cfg.Server.Addr != "127.0.0.1:8420" {
		t.Errorf("expected default server addr, got %q", cfg.Server.Addr)
	}
}

func TestLoadFrom_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("AIRTH_POMODORO_WORK_DURATION", "45m")
	t.Setenv("AIRTH_USER_ID", "bob")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if time.Duration(cfg.Pomodoro.WorkDuration) != 45*time.Minute {
		t.Errorf("expected env work duration 45m, got %v", cfg.Pomodoro.WorkDuration)
	}
	if cfg.UserID != "bob" {
		t.Errorf("expected env user_id bob, got %q", cfg.UserID)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad backend", "[storage]\nbackend = \"dynamo\"\n"},
		{"zero interval", "[pomodoro]\nlong_break_interval = 0\n"},
		{"bad duration", "[pomodoro]\nwork_duration = \"soon\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFrom(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.UserID = "carol"
	cfg.Pomodoro.WorkDuration = Duration(40 * time.Minute)
	cfg.Storage.DataDir = t.TempDir()

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.UserID != "carol" || time.Duration(loaded.Pomodoro.WorkDuration) != 40*time.Minute {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1h30m")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if time.Duration(d) != 90*time.Minute {
		t.Errorf("expected 90m, got %v", d)
	}
	out, _ := d.MarshalText()
	if string(out) != "1h30m0s" {
		t.Errorf("expected 1h30m0s, got %s", out)
	}
}
