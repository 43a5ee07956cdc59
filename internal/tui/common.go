package tui

import (
	"time"

	"github.com/sadopc/lunafocus/internal/sheetsync"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewHabits
	viewReports
	viewSettings
)

var viewNames = []string{"Timer", "Habits", "Reports", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type syncDoneMsg struct {
	action string
	result sheetsync.Result
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func errStatus(prefix string, err error) statusMsg {
	return statusMsg{text: prefix + ": " + err.Error(), isError: true}
}
