// Package notify renders countdown state as a notification and provides
// presenters the timer engine can drive.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sadopc/lunafocus/internal/timer"
)

// Button is an action offered on a notification.
type Button struct {
	Label  string
	Action timer.Action
}

// Notification is the rendered form of the countdown.
type Notification struct {
	Title    string
	Body     string
	Paused   bool
	Mode     timer.Mode
	Progress float64
	Buttons  []Button
}

// Format renders a running or paused countdown.
func Format(timeLeft, total int, mode timer.Mode, paused bool) Notification {
	n := Notification{
		Title:  fmt.Sprintf("%s • %d:%02d remaining", mode.Label(), timeLeft/60, timeLeft%60),
		Paused: paused,
		Mode:   mode,
	}
	if total > 0 {
		n.Progress = 1 - float64(timeLeft)/float64(total)
	}
	if paused {
		n.Body = "Timer Paused"
		n.Buttons = []Button{{"Resume", timer.ActionResume}, {"Stop", timer.ActionStop}}
	} else {
		n.Body = "Up next: " + mode.Other().Label()
		n.Buttons = []Button{{"Pause", timer.ActionPause}, {"Stop", timer.ActionStop}}
	}
	return n
}

// Banner keeps the latest notification in memory for an in-terminal display.
type Banner struct {
	mu      sync.Mutex
	current *Notification
}

var _ timer.Notifier = (*Banner)(nil)

func NewBanner() *Banner { return &Banner{} }

func (b *Banner) ShowRunning(_ context.Context, timeLeft, total int, mode timer.Mode) error {
	b.set(Format(timeLeft, total, mode, false))
	return nil
}

func (b *Banner) ShowPaused(_ context.Context, timeLeft, total int, mode timer.Mode) error {
	b.set(Format(timeLeft, total, mode, true))
	return nil
}

func (b *Banner) Cancel(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = nil
	return nil
}

// Current returns the notification on display, if any.
func (b *Banner) Current() (Notification, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Notification{}, false
	}
	return *b.current, true
}

func (b *Banner) set(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = &n
}

// Log writes state changes to a logger. Repeated running updates within the
// same minute are suppressed.
type Log struct {
	mu   sync.Mutex
	log  zerolog.Logger
	last string
}

var _ timer.Notifier = (*Log)(nil)

func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log.With().Str("component", "notify").Logger()}
}

func (l *Log) ShowRunning(_ context.Context, timeLeft, total int, mode timer.Mode) error {
	l.emit(Format(timeLeft, total, mode, false), fmt.Sprintf("run:%s:%d", mode, timeLeft/60))
	return nil
}

func (l *Log) ShowPaused(_ context.Context, timeLeft, total int, mode timer.Mode) error {
	l.emit(Format(timeLeft, total, mode, true), fmt.Sprintf("pause:%s:%d", mode, timeLeft))
	return nil
}

func (l *Log) Cancel(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.last != "" {
		l.log.Debug().Msg("notification cancelled")
	}
	l.last = ""
	return nil
}

func (l *Log) emit(n Notification, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if key == l.last {
		return
	}
	l.last = key
	l.log.Debug().Str("title", n.Title).Str("body", n.Body).Msg("notification")
}

// Multi fans every call out to each presenter and joins their errors.
type Multi []timer.Notifier

var _ timer.Notifier = Multi(nil)

func (m Multi) ShowRunning(ctx context.Context, timeLeft, total int, mode timer.Mode) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.ShowRunning(ctx, timeLeft, total, mode))
	}
	return errors.Join(errs...)
}

func (m Multi) ShowPaused(ctx context.Context, timeLeft, total int, mode timer.Mode) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.ShowPaused(ctx, timeLeft, total, mode))
	}
	return errors.Join(errs...)
}

func (m Multi) Cancel(ctx context.Context) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.Cancel(ctx))
	}
	return errors.Join(errs...)
}
