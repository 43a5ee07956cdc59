package habit

import (
	"fmt"
	"strings"
)

// Status is the habit outcome recorded for one day.
type Status string

const (
	None      Status = "none"
	Completed Status = "completed"
	Missed    Status = "missed"
	Skipped   Status = "skipped"
	Planned   Status = "planned"
)

// AllStatuses lists every status in toggle order.
var AllStatuses = []Status{None, Completed, Missed, Skipped, Planned}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case None, Completed, Missed, Skipped, Planned:
		return true
	}
	return false
}

// Next returns the status that follows s in the toggle cycle
// None -> Completed -> Missed -> Skipped -> Planned -> None.
// Unknown values restart the cycle at Completed.
func (s Status) Next() Status {
	switch s {
	case Completed:
		return Missed
	case Missed:
		return Skipped
	case Skipped:
		return Planned
	case Planned:
		return None
	default:
		return Completed
	}
}

// Symbol is a one-cell marker for calendar rendering.
func (s Status) Symbol() string {
	switch s {
	case Completed:
		return "✓"
	case Missed:
		return "✗"
	case Skipped:
		return "-"
	case Planned:
		return "•"
	default:
		return " "
	}
}

// ParseStatus parses a status name case-insensitively. An empty string is None.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return None, nil
	}
	if !st.Valid() {
		return "", fmt.Errorf("unknown habit status %q", s)
	}
	return st, nil
}
