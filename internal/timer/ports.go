package timer

import (
	"context"

	"github.com/sadopc/lunafocus/internal/datekey"
	"github.com/sadopc/lunafocus/internal/focus"
)

// Notifier presents the countdown outside the process.
type Notifier interface {
	ShowRunning(ctx context.Context, timeLeft, total int, mode Mode) error
	ShowPaused(ctx context.Context, timeLeft, total int, mode Mode) error
	Cancel(ctx context.Context) error
}

// Music is the background music volume control.
type Music interface {
	Duck(ctx context.Context) error
	Restore(ctx context.Context) error
}

// Sound plays the session completion cue.
type Sound interface {
	PlayCompletion(ctx context.Context) error
}

// Stats is the focus-minute ledger the engine credits.
type Stats interface {
	AddMinutes(ctx context.Context, date datekey.Key, n int) error
	Minutes(ctx context.Context, date datekey.Key) int
	UpdateGoalStreak(ctx context.Context, today datekey.Key, todayMinutes int) (int, error)
}

// Habits is the habit ledger marked when a focus session completes.
type Habits interface {
	MarkCompleted(ctx context.Context, date datekey.Key) error
}

// SessionLog records completed sessions.
type SessionLog interface {
	RecordSession(ctx context.Context, s focus.Session) error
}

type nopNotifier struct{}

func (nopNotifier) ShowRunning(context.Context, int, int, Mode) error { return nil }
func (nopNotifier) ShowPaused(context.Context, int, int, Mode) error  { return nil }
func (nopNotifier) Cancel(context.Context) error                      { return nil }

type nopMusic struct{}

func (nopMusic) Duck(context.Context) error    { return nil }
func (nopMusic) Restore(context.Context) error { return nil }

type nopSound struct{}

func (nopSound) PlayCompletion(context.Context) error { return nil }

type nopSessions struct{}

func (nopSessions) RecordSession(context.Context, focus.Session) error { return nil }
