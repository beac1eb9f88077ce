// Package config provides configuration management for Airth.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/xvierd/tec-office/internal/domain"
)

// EnvPrefix prefixes environment overrides, e.g. AIRTH_POMODORO_WORK_DURATION.
const EnvPrefix = "AIRTH"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config holds all configuration for the Airth timers.
type Config struct {
	UserID        string             `mapstructure:"user_id"`
	Pomodoro      PomodoroConfig     `mapstructure:"pomodoro"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Log           LogConfig          `mapstructure:"log"`
	Server        ServerConfig       `mapstructure:"server"`
	Persona       PersonaConfig      `mapstructure:"persona"`
	Theme         ThemeConfig        `mapstructure:"theme"`
}

// PomodoroConfig holds pomodoro timer settings.
type PomodoroConfig struct {
	WorkDuration      Duration `mapstructure:"work_duration"`
	ShortBreak        Duration `mapstructure:"short_break"`
	LongBreak         Duration `mapstructure:"long_break"`
	LongBreakInterval int      `mapstructure:"long_break_interval"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	DataDir string `mapstructure:"data_dir"`
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Sound   bool `mapstructure:"sound"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// PersonaConfig points at an optional persona YAML file.
type PersonaConfig struct {
	File string `mapstructure:"file"`
}

// ThemeConfig holds the watch view colors.
type ThemeConfig struct {
	ColorWork           string `mapstructure:"color_work"`
	ColorBreak          string `mapstructure:"color_break"`
	ColorPaused         string `mapstructure:"color_paused"`
	ColorHelp           string `mapstructure:"color_help"`
	WorkGradientStart   string `mapstructure:"work_gradient_start"`
	WorkGradientEnd     string `mapstructure:"work_gradient_end"`
	BreakGradientStart  string `mapstructure:"break_gradient_start"`
	BreakGradientEnd    string `mapstructure:"break_gradient_end"`
	PausedGradientStart string `mapstructure:"paused_gradient_start"`
	PausedGradientEnd   string `mapstructure:"paused_gradient_end"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorWork:           "#7C6FE0",
		ColorBreak:          "#4ECDC4",
		ColorPaused:         "#6B7280",
		ColorHelp:           "#95A5A6",
		WorkGradientStart:   "#7C6FE0",
		WorkGradientEnd:     "#A78BFA",
		BreakGradientStart:  "#4ECDC4",
		BreakGradientEnd:    "#2ECC71",
		PausedGradientStart: "#6B7280",
		PausedGradientEnd:   "#4B5563",
	}
}

// Duration is a wrapper around time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

const defaultDataDir = "~/.airth"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		UserID: "default",
		Pomodoro: PomodoroConfig{
			WorkDuration:      Duration(25 * time.Minute),
			ShortBreak:        Duration(5 * time.Minute),
			LongBreak:         Duration(15 * time.Minute),
			LongBreakInterval: 4,
		},
		Storage: StorageConfig{
			Backend: BackendSQLite,
			DataDir: defaultDataDir,
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Sound:   true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8420",
		},
		Theme: DefaultThemeConfig(),
	}
}

// Load loads the configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads the configuration from path, creating it with defaults
// when missing. An empty path selects ~/.airth/config.toml. Environment
// variables prefixed with AIRTH_ override file values.
func LoadFrom(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = GetConfigPath(); err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveTo(DefaultConfig(), path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := newViper(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	dataDir, err := expandHome(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.Storage.DataDir = dataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save saves the configuration to the default config file.
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration to path.
func SaveTo(cfg *Config, path string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := newViper(path)

	// Set all values
	v.Set("user_id", cfg.UserID)
	v.Set("pomodoro.work_duration", cfg.Pomodoro.WorkDuration.String())
	v.Set("pomodoro.short_break", cfg.Pomodoro.ShortBreak.String())
	v.Set("pomodoro.long_break", cfg.Pomodoro.LongBreak.String())
	v.Set("pomodoro.long_break_interval", cfg.Pomodoro.LongBreakInterval)
	v.Set("storage.backend", cfg.Storage.Backend)
	v.Set("storage.data_dir", cfg.Storage.DataDir)
	v.Set("notifications.enabled", cfg.Notifications.Enabled)
	v.Set("notifications.sound", cfg.Notifications.Sound)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("server.addr", cfg.Server.Addr)
	v.Set("persona.file", cfg.Persona.File)
	v.Set("theme.color_work", cfg.Theme.ColorWork)
	v.Set("theme.color_break", cfg.Theme.ColorBreak)
	v.Set("theme.color_paused", cfg.Theme.ColorPaused)
	v.Set("theme.color_help", cfg.Theme.ColorHelp)
	v.Set("theme.work_gradient_start", cfg.Theme.WorkGradientStart)
	v.Set("theme.work_gradient_end", cfg.Theme.WorkGradientEnd)
	v.Set("theme.break_gradient_start", cfg.Theme.BreakGradientStart)
	v.Set("theme.break_gradient_end", cfg.Theme.BreakGradientEnd)
	v.Set("theme.paused_gradient_start", cfg.Theme.PausedGradientStart)
	v.Set("theme.paused_gradient_end", cfg.Theme.PausedGradientEnd)

	return v.WriteConfigAs(path)
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".airth", "config.toml"), nil
}

// GetDBPath returns the path to the database file.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "airth.db")
}

// GetStateDir returns the directory of the file store.
func GetStateDir(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "storage")
}

// Validate checks durations and the storage backend.
func (c *Config) Validate() error {
	if err := c.ToPomodoroDomainConfig().Validate(); err != nil {
		return err
	}
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile:
	default:
		return fmt.Errorf("unknown storage backend %q: must be sqlite or file", c.Storage.Backend)
	}
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("user_id must not be empty")
	}
	return nil
}

// ToPomodoroDomainConfig converts the config to the domain PomodoroConfig.
func (c *Config) ToPomodoroDomainConfig() domain.PomodoroConfig {
	return domain.PomodoroConfig{
		WorkDuration:       time.Duration(c.Pomodoro.WorkDuration),
		ShortBreakDuration: time.Duration(c.Pomodoro.ShortBreak),
		LongBreakDuration:  time.Duration(c.Pomodoro.LongBreak),
		LongBreakInterval:  c.Pomodoro.LongBreakInterval,
	}
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults sets default values for viper.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("user_id", defaults.UserID)
	v.SetDefault("pomodoro.work_duration", "25m")
	v.SetDefault("pomodoro.short_break", "5m")
	v.SetDefault("pomodoro.long_break", "15m")
	v.SetDefault("pomodoro.long_break_interval", 4)
	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.data_dir", defaultDataDir)
	v.SetDefault("notifications.enabled", true)
	v.SetDefault("notifications.sound", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("persona.file", "")

	// Theme defaults
	v.SetDefault("theme.color_work", defaults.Theme.ColorWork)
	v.SetDefault("theme.color_break", defaults.Theme.ColorBreak)
	v.SetDefault("theme.color_paused", defaults.Theme.ColorPaused)
	v.SetDefault("theme.color_help", defaults.Theme.ColorHelp)
	v.SetDefault("theme.work_gradient_start", defaults.Theme.WorkGradientStart)
	v.SetDefault("theme.work_gradient_end", defaults.Theme.WorkGradientEnd)
	v.SetDefault("theme.break_gradient_start", defaults.Theme.BreakGradientStart)
	v.SetDefault("theme.break_gradient_end", defaults.Theme.BreakGradientEnd)
	v.SetDefault("theme.paused_gradient_start", defaults.Theme.PausedGradientStart)
	v.SetDefault("theme.paused_gradient_end", defaults.Theme.PausedGradientEnd)
}

func expandHome(path string) (string, error) {
	if path == "" {
		path = defaultDataDir
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~")), nil
}
