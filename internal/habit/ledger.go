// Package habit records a daily habit status per calendar day and derives
// streaks and month views from it.
package habit

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sadopc/lunafocus/internal/datekey"
	"github.com/sadopc/lunafocus/internal/kv"
)

const KeyHabits = "user_habits"

// Ledger stores habit statuses keyed by local date.
type Ledger struct {
	log zerolog.Logger
	mu  sync.Mutex
	doc *kv.Doc[map[datekey.Key]Status]
}

func NewLedger(store kv.Store, log zerolog.Logger) *Ledger {
	return &Ledger{
		log: log.With().Str("component", "habit").Logger(),
		doc: kv.JSON[map[datekey.Key]Status](store, KeyHabits),
	}
}

// All returns every recorded status. Unreadable data is treated as empty.
func (l *Ledger) All(ctx context.Context) map[datekey.Key]Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, err := l.load(ctx)
	if err != nil {
		l.log.Warn().Err(err).Msg("treating unreadable habits as empty")
		return map[datekey.Key]Status{}
	}
	return m
}

// Status returns the status of date, None when unset.
func (l *Ledger) Status(ctx context.Context, date datekey.Key) Status {
	if s, ok := l.All(ctx)[date]; ok {
		return s
	}
	return None
}

// SetStatus overwrites the status of date.
func (l *Ledger) SetStatus(ctx context.Context, date datekey.Key, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("set habit status: unknown status %q", status)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.set(ctx, date, status)
}

// Toggle advances date to the next status in the cycle and returns it.
func (l *Ledger) Toggle(ctx context.Context, date datekey.Key) (Status, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, err := l.load(ctx)
	if err != nil {
		return "", err
	}
	cur, ok := m[date]
	if !ok {
		cur = None
	}
	next := cur.Next()
	m[date] = next
	if err := l.doc.Save(ctx, m); err != nil {
		return "", fmt.Errorf("toggle habit: %w", err)
	}
	return next, nil
}

// MarkCompleted records date as Completed. Repeating it is harmless.
func (l *Ledger) MarkCompleted(ctx context.Context, date datekey.Key) error {
	return l.SetStatus(ctx, date, Completed)
}

// Streak computes the current streak ending at today.
func (l *Ledger) Streak(ctx context.Context, today datekey.Key) int {
	return ComputeStreak(l.All(ctx), today)
}

// Snapshot returns every recorded status, failing on unreadable data.
func (l *Ledger) Snapshot(ctx context.Context) (map[datekey.Key]Status, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// Replace swaps the stored statuses for statuses wholesale.
func (l *Ledger) Replace(ctx context.Context, statuses map[datekey.Key]Status) error {
	for d, s := range statuses {
		if !s.Valid() {
			return fmt.Errorf("replace habits: %s has unknown status %q", d, s)
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	m := maps.Clone(statuses)
	if m == nil {
		m = map[datekey.Key]Status{}
	}
	if err := l.doc.Save(ctx, m); err != nil {
		return fmt.Errorf("replace habits: %w", err)
	}
	return nil
}

func (l *Ledger) set(ctx context.Context, date datekey.Key, status Status) error {
	m, err := l.load(ctx)
	if err != nil {
		return err
	}
	m[date] = status
	if err := l.doc.Save(ctx, m); err != nil {
		return fmt.Errorf("set habit status: %w", err)
	}
	l.log.Debug().Str("date", date.String()).Str("status", string(status)).Msg("habit status set")
	return nil
}

func (l *Ledger) load(ctx context.Context) (map[datekey.Key]Status, error) {
	m, _, err := l.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = map[datekey.Key]Status{}
	}
	return m, nil
}
