package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hay-kot/criterio"

	"github.com/sadopc/lunafocus/internal/timer"
)

// Validate performs structural validation of the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	return criterio.ValidateStruct(
		criterio.Run("timer.tick_interval", c.Timer.TickInterval, positiveDuration),
		criterio.Run("stats.daily_goal_minutes", c.Stats.DailyGoalMinutes, positiveInt),
		c.validatePresets(),
		c.validateSync(),
		criterio.Run("sound.custom_file", c.Sound.CustomFile, fileOrEmpty),
	)
}

func (c *Config) validatePresets() error {
	var errs criterio.FieldErrorsBuilder
	seen := make(map[string]bool, len(c.Timer.Presets))
	for i, p := range c.Timer.Presets {
		field := fmt.Sprintf("timer.presets[%d]", i)
		if err := p.Validate(); err != nil {
			errs = errs.Append(field, err)
		}
		if seen[p.ID] {
			errs = errs.Append(field+".id", fmt.Errorf("duplicate preset id %q", p.ID))
		}
		seen[p.ID] = true
	}
	if _, ok := timer.FindPreset(c.Timer.Presets, c.Timer.DefaultPreset); !ok {
		errs = errs.Append("timer.default_preset", fmt.Errorf("no preset with id %q", c.Timer.DefaultPreset))
	}
	return errs.ToError()
}

func (c *Config) validateSync() error {
	s := c.Sync
	if s.SpreadsheetID == "" && s.CredentialsFile == "" {
		return nil
	}
	if s.SpreadsheetID == "" {
		return criterio.NewFieldErrors("sync.spreadsheet_id", errors.New("required when credentials_file is set"))
	}
	if s.CredentialsFile == "" {
		return criterio.NewFieldErrors("sync.credentials_file", errors.New("required when spreadsheet_id is set"))
	}
	return criterio.Run("sync.credentials_file", s.CredentialsFile, fileOrEmpty)
}

func positiveDuration(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func positiveInt(n int) error {
	if n <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

// fileOrEmpty validates that a path is empty or names a regular file.
func fileOrEmpty(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	return nil
}
