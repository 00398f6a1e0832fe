// Package config provides configuration management for countdown.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config holds all configuration for the countdown application.
type Config struct {
	DefaultDuration Duration            `mapstructure:"default_duration"`
	Presets         map[string]Duration `mapstructure:"presets"`
	Notifications   NotificationConfig  `mapstructure:"notifications"`
	History         HistoryConfig       `mapstructure:"history"`
	Storage         StorageConfig       `mapstructure:"storage"`
	Log             LogConfig           `mapstructure:"log"`
	Theme           ThemeConfig         `mapstructure:"theme"`
}

// ThemeConfig holds theme customization settings (colors and icons).
type ThemeConfig struct {
	ColorRunning         string `mapstructure:"color_running"`
	ColorPaused          string `mapstructure:"color_paused"`
	ColorExpired         string `mapstructure:"color_expired"`
	ColorTitle           string `mapstructure:"color_title"`
	ColorHelp            string `mapstructure:"color_help"`
	ColorDisabled        string `mapstructure:"color_disabled"`
	RunningGradientStart string `mapstructure:"running_gradient_start"`
	RunningGradientEnd   string `mapstructure:"running_gradient_end"`
	PausedGradientStart  string `mapstructure:"paused_gradient_start"`
	PausedGradientEnd    string `mapstructure:"paused_gradient_end"`
	IconApp              string `mapstructure:"icon_app"`
	IconPaused           string `mapstructure:"icon_paused"`
	IconExpired          string `mapstructure:"icon_expired"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorRunning:         "#7C6FE0",
		ColorPaused:          "#6B7280",
		ColorExpired:         "#E5484D",
		ColorTitle:           "#6B7280",
		ColorHelp:            "#95A5A6",
		ColorDisabled:        "#4B5563",
		RunningGradientStart: "#7C6FE0",
		RunningGradientEnd:   "#A78BFA",
		PausedGradientStart:  "#6B7280",
		PausedGradientEnd:    "#4B5563",
		IconApp:              "⏳",
		IconPaused:           "⏸",
		IconExpired:          "⏰",
	}
}

// Preset is a named countdown duration.
type Preset struct {
	Name     string
	Duration time.Duration
}

// GetPresets returns the configured presets sorted by name.
func (c *Config) GetPresets() []Preset {
	presets := make([]Preset, 0, len(c.Presets))
	for name, d := range c.Presets {
		presets = append(presets, Preset{Name: name, Duration: time.Duration(d)})
	}
	sort.Slice(presets, func(i, j int) bool {
		return presets[i].Name < presets[j].Name
	})
	return presets
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Sound   bool `mapstructure:"sound"`
}

// HistoryConfig holds run history settings.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Limit   int  `mapstructure:"limit"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// LogConfig holds logging settings. An empty File disables logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
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

const defaultDataDir = "~/.countdown"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultDuration: Duration(5 * time.Minute),
		Presets: map[string]Duration{
			"tea":      Duration(3 * time.Minute),
			"pomodoro": Duration(25 * time.Minute),
			"break":    Duration(5 * time.Minute),
			"stretch":  Duration(90 * time.Second),
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Sound:   true,
		},
		History: HistoryConfig{
			Enabled: true,
			Limit:   20,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir,
		},
		Log: LogConfig{
			Level: "info",
		},
		Theme: DefaultThemeConfig(),
	}
}

// Load loads the configuration from the config file, creating it with
// defaults on first run.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFile(configPath)
}

// LoadFile loads the configuration from an explicit path.
func LoadFile(configPath string) (*Config, error) {
	cfg, err := readFile(configPath, true)
	if err != nil {
		return nil, err
	}

	dataDir, err := expandHome(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.Storage.DataDir = dataDir

	if cfg.Log.File != "" {
		logFile, err := expandHome(cfg.Log.File)
		if err != nil {
			return nil, err
		}
		cfg.Log.File = logFile
	}

	return cfg, nil
}

// Edit applies fn to the configuration stored at the default path and
// writes it back.
func Edit(fn func(*Config)) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return EditFile(configPath, fn)
}

// EditFile applies fn to the configuration as written in configPath, without
// environment overrides or home expansion, and saves the result.
func EditFile(configPath string, fn func(*Config)) error {
	cfg, err := readFile(configPath, false)
	if err != nil {
		return err
	}
	fn(cfg)
	return SaveFile(cfg, configPath)
}

// readFile decodes configPath, creating it with defaults on first use.
func readFile(configPath string, withEnv bool) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveFile(DefaultConfig(), configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	if withEnv {
		v.SetEnvPrefix("COUNTDOWN")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// SaveFile writes the configuration to an explicit path.
func SaveFile(cfg *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	presets := make(map[string]any, len(cfg.Presets))
	for name, d := range cfg.Presets {
		presets[name] = d.String()
	}

	v.Set("default_duration", cfg.DefaultDuration.String())
	v.Set("presets", presets)
	v.Set("notifications.enabled", cfg.Notifications.Enabled)
	v.Set("notifications.sound", cfg.Notifications.Sound)
	v.Set("history.enabled", cfg.History.Enabled)
	v.Set("history.limit", cfg.History.Limit)
	v.Set("storage.data_dir", cfg.Storage.DataDir)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)
	v.Set("theme.color_running", cfg.Theme.ColorRunning)
	v.Set("theme.color_paused", cfg.Theme.ColorPaused)
	v.Set("theme.color_expired", cfg.Theme.ColorExpired)
	v.Set("theme.color_title", cfg.Theme.ColorTitle)
	v.Set("theme.color_help", cfg.Theme.ColorHelp)
	v.Set("theme.color_disabled", cfg.Theme.ColorDisabled)
	v.Set("theme.running_gradient_start", cfg.Theme.RunningGradientStart)
	v.Set("theme.running_gradient_end", cfg.Theme.RunningGradientEnd)
	v.Set("theme.paused_gradient_start", cfg.Theme.PausedGradientStart)
	v.Set("theme.paused_gradient_end", cfg.Theme.PausedGradientEnd)
	v.Set("theme.icon_app", cfg.Theme.IconApp)
	v.Set("theme.icon_paused", cfg.Theme.IconPaused)
	v.Set("theme.icon_expired", cfg.Theme.IconExpired)

	return v.WriteConfig()
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".countdown", "config.toml"), nil
}

// GetDBPath returns the path to the history database file.
func GetDBPath(cfg *Config) string {
	dir, err := expandHome(cfg.Storage.DataDir)
	if err != nil {
		dir = cfg.Storage.DataDir
	}
	return filepath.Join(dir, "countdown.db")
}

// expandHome replaces a leading ~ with the user's home directory.
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

// setDefaults sets default values for viper.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("default_duration", defaults.DefaultDuration.String())
	v.SetDefault("notifications.enabled", defaults.Notifications.Enabled)
	v.SetDefault("notifications.sound", defaults.Notifications.Sound)
	v.SetDefault("history.enabled", defaults.History.Enabled)
	v.SetDefault("history.limit", defaults.History.Limit)
	v.SetDefault("storage.data_dir", defaults.Storage.DataDir)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", "")

	// Theme defaults
	theme := defaults.Theme
	v.SetDefault("theme.color_running", theme.ColorRunning)
	v.SetDefault("theme.color_paused", theme.ColorPaused)
	v.SetDefault("theme.color_expired", theme.ColorExpired)
	v.SetDefault("theme.color_title", theme.ColorTitle)
	v.SetDefault("theme.color_help", theme.ColorHelp)
	v.SetDefault("theme.color_disabled", theme.ColorDisabled)
	v.SetDefault("theme.running_gradient_start", theme.RunningGradientStart)
	v.SetDefault("theme.running_gradient_end", theme.RunningGradientEnd)
	v.SetDefault("theme.paused_gradient_start", theme.PausedGradientStart)
	v.SetDefault("theme.paused_gradient_end", theme.PausedGradientEnd)
	v.SetDefault("theme.icon_app", theme.IconApp)
	v.SetDefault("theme.icon_paused", theme.IconPaused)
	v.SetDefault("theme.icon_expired", theme.IconExpired)
}
