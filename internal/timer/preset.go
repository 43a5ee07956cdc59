package timer

import (
	"errors"
	"fmt"
)

// Preset is a named pair of focus and break durations.
type Preset struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	FocusMinutes int    `json:"focusDuration" yaml:"focus_minutes"`
	BreakMinutes int    `json:"breakDuration" yaml:"break_minutes"`
	Sets         int    `json:"sets" yaml:"sets"`
}

var (
	Pomodoro    = Preset{ID: "pomodoro", Name: "Pomodoro", FocusMinutes: 25, BreakMinutes: 5, Sets: 4}
	LongFocus   = Preset{ID: "long", Name: "Long Focus", FocusMinutes: 50, BreakMinutes: 10, Sets: 2}
	QuickSprint = Preset{ID: "sprint", Name: "Quick Sprint", FocusMinutes: 15, BreakMinutes: 5, Sets: 3}
)

// DefaultPresets returns the built-in presets, Pomodoro first.
func DefaultPresets() []Preset {
	return []Preset{Pomodoro, LongFocus, QuickSprint}
}

var ErrInvalidPreset = errors.New("invalid preset")

// Validate checks that both durations are positive.
func (p Preset) Validate() error {
	if p.FocusMinutes <= 0 || p.BreakMinutes <= 0 {
		return fmt.Errorf("%w: %q needs positive focus and break minutes", ErrInvalidPreset, p.ID)
	}
	return nil
}

// Seconds returns the duration of mode under p.
func (p Preset) Seconds(mode Mode) int {
	if mode == Break {
		return p.BreakMinutes * 60
	}
	return p.FocusMinutes * 60
}

// FindPreset returns the preset with id.
func FindPreset(presets []Preset, id string) (Preset, bool) {
	for _, p := range presets {
		if p.ID == id {
			return p, true
		}
	}
	return Preset{}, false
}

// NextPreset returns the preset after current in presets, wrapping around.
func NextPreset(presets []Preset, current Preset) Preset {
	if len(presets) == 0 {
		return current
	}
	for i, p := range presets {
		if p.ID == current.ID {
			return presets[(i+1)%len(presets)]
		}
	}
	return presets[0]
}
