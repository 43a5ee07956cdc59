// Package focus keeps the per-day focus-minute ledgers: the credited totals,
// the unsynced delta awaiting a remote push, the remote baseline, and the
// daily goal with its goal streak.
package focus

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/lunafocus/internal/datekey"
	"github.com/sadopc/lunafocus/internal/kv"
)

const (
	KeyTotals         = "user_focus_stats"
	KeyUnsynced       = "user_unsynced_focus_stats"
	KeyRemoteBaseline = "user_remote_focus_baseline"
	KeyDailyGoal      = "user_daily_goal"
	KeyGoalStreak     = "user_streak"
	KeyLastStreakDate = "user_last_streak_date"
	KeyShowStreak     = "user_show_streak"

	DefaultDailyGoal = 60
)

var ErrInvalidMinutes = errors.New("invalid minutes")

// Session is one completed timer session.
type Session struct {
	Mode        string
	PresetID    string
	Seconds     int
	Day         string
	CompletedAt time.Time
}

// Ledger stores focus minutes per local calendar day.
//
// Reads treat unreadable or malformed data as absent. Writes that would need
// to rewrite a map they could not read fail instead, so one bad read never
// wipes other days.
type Ledger struct {
	store    kv.Store
	log      zerolog.Logger
	mu       sync.Mutex
	totals   *kv.Doc[map[datekey.Key]int]
	unsynced *kv.Doc[map[datekey.Key]int]

	defaultGoal int
}

// NewLedger creates a Ledger over store.
func NewLedger(store kv.Store, log zerolog.Logger) *Ledger {
	return &Ledger{
		store:    store,
		log:      log.With().Str("component", "focus").Logger(),
		totals:   kv.JSON[map[datekey.Key]int](store, KeyTotals),
		unsynced: kv.JSON[map[datekey.Key]int](store, KeyUnsynced),

		defaultGoal: DefaultDailyGoal,
	}
}

// SetDefaultDailyGoal sets the goal reported when none has been stored.
// Non-positive values are ignored.
func (l *Ledger) SetDefaultDailyGoal(minutes int) {
	if minutes > 0 {
		l.defaultGoal = minutes
	}
}

// Minutes returns the minutes credited on date, 0 if none.
func (l *Ledger) Minutes(ctx context.Context, date datekey.Key) int {
	return l.read(ctx, l.totals)[date]
}

// UnsyncedMinutes returns the minutes credited on date since the last
// successful push.
func (l *Ledger) UnsyncedMinutes(ctx context.Context, date datekey.Key) int {
	return l.read(ctx, l.unsynced)[date]
}

// AddMinutes credits n minutes to both the total and the unsynced delta of
// date. Both writes land or neither does.
func (l *Ledger) AddMinutes(ctx context.Context, date datekey.Key, n int) error {
	if n < 1 {
		return fmt.Errorf("add %d minutes: %w", n, ErrInvalidMinutes)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	totals, err := l.load(ctx, l.totals)
	if err != nil {
		return err
	}
	unsynced, err := l.load(ctx, l.unsynced)
	if err != nil {
		return err
	}

	prev := totals[date]
	totals[date] = prev + n
	if err := l.totals.Save(ctx, totals); err != nil {
		return fmt.Errorf("add minutes: %w", err)
	}

	unsynced[date] += n
	if err := l.unsynced.Save(ctx, unsynced); err != nil {
		totals[date] = prev
		if rbErr := l.totals.Save(ctx, totals); rbErr != nil {
			l.log.Error().Err(rbErr).Str("date", date.String()).Msg("rollback of focus total failed")
		}
		return fmt.Errorf("add unsynced minutes: %w", err)
	}

	l.log.Debug().Str("date", date.String()).Int("added", n).Int("total", prev+n).Msg("credited focus minutes")
	return nil
}

// SetMinutes overwrites the total for date. The unsynced delta is untouched.
func (l *Ledger) SetMinutes(ctx context.Context, date datekey.Key, n int) error {
	if n < 0 {
		return fmt.Errorf("set %d minutes: %w", n, ErrInvalidMinutes)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	totals, err := l.load(ctx, l.totals)
	if err != nil {
		return err
	}
	totals[date] = n
	if err := l.totals.Save(ctx, totals); err != nil {
		return fmt.Errorf("set minutes: %w", err)
	}
	return nil
}

// ClearUnsyncedMinutes zeroes the unsynced delta for date.
func (l *Ledger) ClearUnsyncedMinutes(ctx context.Context, date datekey.Key) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	unsynced, err := l.load(ctx, l.unsynced)
	if err != nil {
		return err
	}
	unsynced[date] = 0
	if err := l.unsynced.Save(ctx, unsynced); err != nil {
		return fmt.Errorf("clear unsynced minutes: %w", err)
	}
	return nil
}

// RemoteBaseline returns the last known remote total.
func (l *Ledger) RemoteBaseline(ctx context.Context) int {
	return l.readInt(ctx, KeyRemoteBaseline, 0)
}

func (l *Ledger) SetRemoteBaseline(ctx context.Context, minutes int) error {
	return l.writeInt(ctx, KeyRemoteBaseline, minutes)
}

// Snapshot returns a copy of every day's credited total.
func (l *Ledger) Snapshot(ctx context.Context) (map[datekey.Key]int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx, l.totals)
}

// Replace swaps the totals for stats wholesale. The unsynced delta is
// discarded since imported minutes were never credited locally.
func (l *Ledger) Replace(ctx context.Context, stats map[datekey.Key]int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if stats == nil {
		stats = map[datekey.Key]int{}
	}
	if err := l.totals.Save(ctx, stats); err != nil {
		return fmt.Errorf("replace focus stats: %w", err)
	}
	if err := l.unsynced.Save(ctx, map[datekey.Key]int{}); err != nil {
		return fmt.Errorf("reset unsynced focus stats: %w", err)
	}
	return nil
}

// load returns the decoded map, or an empty map when the key is absent.
func (l *Ledger) load(ctx context.Context, doc *kv.Doc[map[datekey.Key]int]) (map[datekey.Key]int, error) {
	m, _, err := doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = map[datekey.Key]int{}
	}
	return m, nil
}

func (l *Ledger) read(ctx context.Context, doc *kv.Doc[map[datekey.Key]int]) map[datekey.Key]int {
	m, err := l.load(ctx, doc)
	if err != nil {
		l.log.Warn().Err(err).Str("key", doc.Key()).Msg("treating unreadable focus stats as empty")
		return map[datekey.Key]int{}
	}
	return m
}

// Scalars are stored as bare decimal strings.
func (l *Ledger) readInt(ctx context.Context, key string, def int) int {
	raw, ok, err := l.store.Get(ctx, key)
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("read failed")
		return def
	}
	if !ok || raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		l.log.Warn().Err(err).Str("key", key).Msg("malformed integer")
		return def
	}
	return n
}

func (l *Ledger) writeInt(ctx context.Context, key string, n int) error {
	if err := l.store.Set(ctx, key, strconv.Itoa(n)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
