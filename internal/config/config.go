// Package config loads the lunafocus YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/lunafocus/internal/timer"
)

// Config is the user configuration.
type Config struct {
	Timer         TimerConfig         `yaml:"timer"`
	Stats         StatsConfig         `yaml:"stats"`
	Sync          SyncConfig          `yaml:"sync"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Sound         SoundConfig         `yaml:"sound"`

	// DataDir holds the database and log file. Set from flags.
	DataDir string `yaml:"-"`
}

type TimerConfig struct {
	Presets []timer.Preset `yaml:"presets"`
	// DefaultPreset defaults to the first preset.
	DefaultPreset string `yaml:"default_preset"`
	AutoStart     bool   `yaml:"auto_start"`
	Muted         bool   `yaml:"muted"`
	// TickInterval is how often the TUI reconciles. It does not affect
	// accuracy, only display latency.
	TickInterval time.Duration `yaml:"tick_interval"`
}

type StatsConfig struct {
	// DailyGoalMinutes seeds the daily goal until one is set in the app.
	DailyGoalMinutes int `yaml:"daily_goal_minutes"`
}

type SyncConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	CredentialsFile string `yaml:"credentials_file"`
	SheetName       string `yaml:"sheet_name"`
}

// Enabled reports whether both the spreadsheet and credentials are set.
func (s SyncConfig) Enabled() bool {
	return s.SpreadsheetID != "" && s.CredentialsFile != ""
}

type NotificationsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type SoundConfig struct {
	Enabled    bool   `yaml:"enabled"`
	CustomFile string `yaml:"custom_file"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timer: TimerConfig{
			Presets:      timer.DefaultPresets(),
			TickInterval: time.Second,
		},
		Stats: StatsConfig{
			DailyGoalMinutes: 60,
		},
		Sync: SyncConfig{
			SheetName: "Sheet1",
		},
		Notifications: NotificationsConfig{Enabled: true},
		Sound:         SoundConfig{Enabled: true},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			cfg.DataDir = dataDir
			cfg.resolvePaths(filepath.Dir(configPath))
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if len(c.Timer.Presets) == 0 {
		c.Timer.Presets = defaults.Timer.Presets
	}
	for i := range c.Timer.Presets {
		p := &c.Timer.Presets[i]
		if p.Name == "" {
			p.Name = fmt.Sprintf("Preset %d", i+1)
		}
		if p.ID == "" {
			p.ID = presetID(*p)
		}
		if p.Sets == 0 {
			p.Sets = 1
		}
	}
	if c.Timer.DefaultPreset == "" {
		c.Timer.DefaultPreset = c.Timer.Presets[0].ID
	}
	if c.Timer.TickInterval == 0 {
		c.Timer.TickInterval = defaults.Timer.TickInterval
	}
	if c.Stats.DailyGoalMinutes == 0 {
		c.Stats.DailyGoalMinutes = defaults.Stats.DailyGoalMinutes
	}
	if c.Sync.SheetName == "" {
		c.Sync.SheetName = defaults.Sync.SheetName
	}
}

// presetID derives an id from the preset's name and durations, so the same
// config file yields the same ids on every load.
func presetID(p timer.Preset) string {
	key := fmt.Sprintf("%s/%d/%d", p.Name, p.FocusMinutes, p.BreakMinutes)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

// resolvePaths makes relative file paths relative to the config directory.
func (c *Config) resolvePaths(dir string) {
	for _, p := range []*string{&c.Sync.CredentialsFile, &c.Sound.CustomFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
