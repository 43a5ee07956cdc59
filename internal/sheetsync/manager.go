// Package sheetsync pushes and pulls today's focus total to a remote
// spreadsheet. Sync is manual; failures are reported, never retried.
package sheetsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/sadopc/lunafocus/internal/clock"
	"github.com/sadopc/lunafocus/internal/datekey"
	"github.com/sadopc/lunafocus/internal/habit"
)

// NotDone is the habit column value for days without a status.
const NotDone = "not_done"

var ErrNotConfigured = errors.New("sync is not configured")

// Row is one spreadsheet row. Date uses the DD-MM-YYYY form.
type Row struct {
	Date         string
	FocusMinutes int
	HabitStatus  string
}

// Client talks to the remote spreadsheet.
type Client interface {
	PullTotal(ctx context.Context, date string) (found bool, minutes int, err error)
	PushRow(ctx context.Context, row Row) error
}

// Stats is the focus ledger the manager reconciles against.
type Stats interface {
	Minutes(ctx context.Context, date datekey.Key) int
	SetMinutes(ctx context.Context, date datekey.Key, n int) error
	UnsyncedMinutes(ctx context.Context, date datekey.Key) int
	ClearUnsyncedMinutes(ctx context.Context, date datekey.Key) error
	SetRemoteBaseline(ctx context.Context, minutes int) error
}

// Habits supplies today's habit status for the pushed row.
type Habits interface {
	Status(ctx context.Context, date datekey.Key) habit.Status
}

// Result is the outcome of a manual sync action.
type Result struct {
	Success bool
	Message string
	Found   bool
	Minutes int
	Err     error
}

// Manager coordinates pulls and pushes for today's date.
type Manager struct {
	client Client
	stats  Stats
	habits Habits
	clock  clock.Clock
	log    zerolog.Logger
	group  singleflight.Group
}

// NewManager creates a Manager. A nil client makes every action report
// ErrNotConfigured.
func NewManager(client Client, stats Stats, habits Habits, c clock.Clock, log zerolog.Logger) *Manager {
	return &Manager{
		client: client,
		stats:  stats,
		habits: habits,
		clock:  c,
		log:    log.With().Str("component", "sync").Logger(),
	}
}

// Configured reports whether a remote client is available.
func (m *Manager) Configured() bool { return m.client != nil }

// Pull fetches today's remote total and records it as the baseline. The
// local ledger is not changed; the value is for display only.
func (m *Manager) Pull(ctx context.Context) Result {
	if m.client == nil {
		return failure(ErrNotConfigured)
	}
	today := datekey.Today(m.clock)
	v, err, _ := m.group.Do("pull", func() (any, error) {
		found, minutes, err := m.client.PullTotal(ctx, today.Remote())
		if err != nil {
			return nil, err
		}
		if err := m.stats.SetRemoteBaseline(ctx, minutes); err != nil {
			m.log.Warn().Err(err).Msg("store remote baseline failed")
		}
		return Result{Success: true, Found: found, Minutes: minutes}, nil
	})
	if err != nil {
		m.log.Error().Err(err).Msg("pull failed")
		return failure(fmt.Errorf("pull: %w", err))
	}
	res := v.(Result)
	m.log.Info().Bool("found", res.Found).Int("minutes", res.Minutes).Msg("pulled remote total")
	return res
}

// Push adds today's unsynced minutes to the remote total. Concurrent calls
// share one push. On failure the unsynced minutes are kept so a later push
// resends them.
func (m *Manager) Push(ctx context.Context) Result {
	if m.client == nil {
		return failure(ErrNotConfigured)
	}
	v, err, _ := m.group.Do("push", func() (any, error) {
		return m.push(ctx)
	})
	if err != nil {
		m.log.Error().Err(err).Msg("push failed")
		return failure(fmt.Errorf("push: %w", err))
	}
	return v.(Result)
}

func (m *Manager) push(ctx context.Context) (Result, error) {
	today := datekey.Today(m.clock)
	unsynced := m.stats.UnsyncedMinutes(ctx, today)
	if unsynced <= 0 {
		return Result{Success: true, Message: "No new data"}, nil
	}

	_, remote, err := m.client.PullTotal(ctx, today.Remote())
	if err != nil {
		return Result{}, err
	}
	newTotal := remote + unsynced

	status := NotDone
	if s := m.habits.Status(ctx, today); s != habit.None {
		status = string(s)
	}
	row := Row{Date: today.Remote(), FocusMinutes: newTotal, HabitStatus: status}
	if err := m.client.PushRow(ctx, row); err != nil {
		return Result{}, err
	}

	if err := m.stats.ClearUnsyncedMinutes(ctx, today); err != nil {
		m.log.Warn().Err(err).Msg("clear unsynced minutes failed; next push will resend them")
	}
	if err := m.stats.SetRemoteBaseline(ctx, newTotal); err != nil {
		m.log.Warn().Err(err).Msg("store remote baseline failed")
	}
	if m.stats.Minutes(ctx, today) < newTotal {
		if err := m.stats.SetMinutes(ctx, today, newTotal); err != nil {
			m.log.Warn().Err(err).Msg("raise local total failed")
		}
	}

	m.log.Info().Int("pushed", unsynced).Int("total", newTotal).Msg("pushed focus minutes")
	return Result{
		Success: true,
		Message: fmt.Sprintf("Synced %d min (remote total %d)", unsynced, newTotal),
		Minutes: newTotal,
	}, nil
}

func failure(err error) Result {
	return Result{Success: false, Message: err.Error(), Err: err}
}
