package timer

import (
	"fmt"
	"time"
)

// Status is the run state of the countdown.
type Status string

const (
	Idle    Status = "idle"
	Running Status = "running"
	Paused  Status = "paused"
)

// Mode is the kind of session being timed.
type Mode string

const (
	Focus Mode = "focus"
	Break Mode = "break"
)

// Other returns the mode that follows m.
func (m Mode) Other() Mode {
	if m == Focus {
		return Break
	}
	return Focus
}

// Label is the capitalized display name of m.
func (m Mode) Label() string {
	if m == Break {
		return "Break"
	}
	return "Focus"
}

// ParseMode accepts "focus" or "break".
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Focus, Break:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// State is a read-only snapshot of the engine.
type State struct {
	Status        Status
	Mode          Mode
	TimeLeft      int
	Initial       int
	EndAt         time.Time
	Preset        Preset
	AutoStart     bool
	Muted         bool
	SetsCompleted int
}

// Progress returns the elapsed fraction of the session in [0, 1].
func (s State) Progress() float64 {
	if s.Initial <= 0 {
		return 0
	}
	p := 1 - float64(s.TimeLeft)/float64(s.Initial)
	return min(1, max(0, p))
}

// FormatClock renders seconds as MM:SS. Minutes may exceed two digits.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
