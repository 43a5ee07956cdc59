package timer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/lunafocus/internal/clock"
	"github.com/sadopc/lunafocus/internal/datekey"
	"github.com/sadopc/lunafocus/internal/focus"
	"github.com/sadopc/lunafocus/internal/habit"
	"github.com/sadopc/lunafocus/internal/kv"
	"github.com/sadopc/lunafocus/internal/kv/kvtest"
)

var epoch = time.Date(2024, 3, 9, 9, 0, 0, 0, time.Local)

// recorder captures every presentation side effect.
type recorder struct {
	mu       sync.Mutex
	calls    []string
	failWith error
	sessions []focus.Session
}

func (r *recorder) add(call string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
	return r.failWith
}

func (r *recorder) ShowRunning(context.Context, int, int, Mode) error { return r.add("running") }
func (r *recorder) ShowPaused(context.Context, int, int, Mode) error  { return r.add("paused") }
func (r *recorder) Cancel(context.Context) error                      { return r.add("cancel") }
func (r *recorder) Duck(context.Context) error                        { return r.add("duck") }
func (r *recorder) Restore(context.Context) error                     { return r.add("restore") }
func (r *recorder) PlayCompletion(context.Context) error              { return r.add("sound") }

func (r *recorder) RecordSession(_ context.Context, s focus.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, s)
	return nil
}

func (r *recorder) count(call string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return ""
	}
	return r.calls[len(r.calls)-1]
}

type fixture struct {
	clock  *clock.Fake
	store  *kvtest.Flaky
	stats  *focus.Ledger
	habits *habit.Ledger
	rec    *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := kvtest.NewFlaky(kv.NewMemory())
	return &fixture{
		clock:  clock.NewFake(epoch),
		store:  store,
		stats:  focus.NewLedger(store, zerolog.Nop()),
		habits: habit.NewLedger(store, zerolog.Nop()),
		rec:    &recorder{},
	}
}

func (f *fixture) engine(t *testing.T, settings Settings) *Engine {
	t.Helper()
	return New(context.Background(), Deps{
		Clock:    f.clock,
		Store:    f.store,
		Stats:    f.stats,
		Habits:   f.habits,
		Notifier: f.rec,
		Music:    f.rec,
		Sound:    f.rec,
		Sessions: f.rec,
		Logger:   zerolog.Nop(),
	}, settings)
}

func (f *fixture) today() datekey.Key { return datekey.Today(f.clock) }

// ==================== Defaults ====================

func TestNew_DefaultsToIdleFocusOnFirstPreset(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})

	s := e.State()
	assert.Equal(t, Idle, s.Status)
	assert.Equal(t, Focus, s.Mode)
	assert.Equal(t, Pomodoro, s.Preset)
	assert.Equal(t, 25*60, s.TimeLeft)
	assert.Equal(t, 25*60, s.Initial)
	assert.True(t, s.EndAt.IsZero())
}

func TestNew_UsesConfiguredDefaultPreset(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{DefaultPreset: "sprint"})
	assert.Equal(t, QuickSprint, e.State().Preset)
	assert.Equal(t, 15*60, e.State().TimeLeft)
}

// ==================== Commands ====================

func TestStart_SetsEndTimestamp(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()

	e.Start(ctx)

	s := e.State()
	assert.Equal(t, Running, s.Status)
	assert.Equal(t, epoch.Add(25*time.Minute), s.EndAt)
	assert.Equal(t, 1, f.rec.count("running"))
	assert.Equal(t, 1, f.rec.count("restore"))
}

func TestStartFor_ReplacesTimeLeft(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()

	require.NoError(t, e.StartFor(ctx, 90))
	assert.Equal(t, 90, e.State().TimeLeft)
	assert.Equal(t, epoch.Add(90*time.Second), e.State().EndAt)

	assert.ErrorIs(t, e.StartFor(ctx, 0), ErrInvalidDuration)
}

func TestPause_ReconcilesFirst(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()

	e.Start(ctx)
	f.clock.Advance(90*time.Second + 400*time.Millisecond)
	e.Pause(ctx)

	s := e.State()
	assert.Equal(t, Paused, s.Status)
	assert.Equal(t, 25*60-90, s.TimeLeft)
	assert.True(t, s.EndAt.IsZero())
	assert.Equal(t, 1, f.rec.count("paused"))
	assert.Equal(t, "duck", f.rec.last())
	assert.Equal(t, 2, f.stats.Minutes(ctx, f.today()))

	// Paused time does not count.
	f.clock.Advance(time.Hour)
	e.Reconcile(ctx)
	assert.Equal(t, 25*60-90, e.State().TimeLeft)

	e.Start(ctx)
	assert.Equal(t, f.clock.Now().Add(time.Duration(25*60-90)*time.Second), e.State().EndAt)
}

func TestToggle(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()

	e.Toggle(ctx)
	assert.Equal(t, Running, e.State().Status)
	e.Toggle(ctx)
	assert.Equal(t, Paused, e.State().Status)
}

func TestReset_RestoresModeDuration(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()

	e.Start(ctx)
	f.clock.Advance(5 * time.Minute)
	e.Reset(ctx)

	s := e.State()
	assert.Equal(t, Idle, s.Status)
	assert.Equal(t, 25*60, s.TimeLeft)
	assert.Equal(t, 5, f.stats.Minutes(ctx, f.today()), "elapsed minutes are kept")
	assert.Equal(t, 1, f.rec.count("cancel"))
	assert.Equal(t, 1, f.rec.count("duck"))
}

func TestSwitchMode(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()

	e.Start(ctx)
	e.SwitchMode(ctx, Break)

	s := e.State()
	assert.Equal(t, Idle, s.Status)
	assert.Equal(t, Break, s.Mode)
	assert.Equal(t, 5*60, s.TimeLeft)
	assert.Equal(t, 5*60, s.Initial)
}

func TestChangePreset(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()

	e.SwitchMode(ctx, Break)
	require.NoError(t, e.ChangePreset(ctx, LongFocus))

	s := e.State()
	assert.Equal(t, LongFocus, s.Preset)
	assert.Equal(t, Focus, s.Mode)
	assert.Equal(t, Idle, s.Status)
	assert.Equal(t, 50*60, s.TimeLeft)

	assert.ErrorIs(t, e.ChangePreset(ctx, Preset{ID: "bad"}), ErrInvalidPreset)
}

func TestSetDuration_OnlyWhileIdle(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()

	require.NoError(t, e.SetDuration(ctx, 600))
	assert.Equal(t, 600, e.State().TimeLeft)
	assert.Equal(t, 600, e.State().Initial)

	assert.ErrorIs(t, e.SetDuration(ctx, -5), ErrInvalidDuration)

	e.Start(ctx)
	assert.ErrorIs(t, e.SetDuration(ctx, 300), ErrNotIdle)
	e.Pause(ctx)
	assert.ErrorIs(t, e.SetDuration(ctx, 300), ErrNotIdle)
}

func TestHandleAction(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()

	require.NoError(t, e.HandleAction(ctx, ActionResume))
	assert.Equal(t, Running, e.State().Status)
	require.NoError(t, e.HandleAction(ctx, ActionPause))
	assert.Equal(t, Paused, e.State().Status)
	require.NoError(t, e.HandleAction(ctx, ActionStop))
	assert.Equal(t, Idle, e.State().Status)

	assert.Error(t, e.HandleAction(ctx, Action("snooze")))

	a, err := ParseAction("stop")
	require.NoError(t, err)
	assert.Equal(t, ActionStop, a)
}

// ==================== Reconciliation ====================

func TestReconcile_MinuteCreditingIsSplitIndependent(t *testing.T) {
	const elapsed = 17*60 + 42

	ticks := newFixture(t)
	byTicks := ticks.engine(t, Settings{})
	jump := newFixture(t)
	byJump := jump.engine(t, Settings{})
	ctx := context.Background()

	byTicks.Start(ctx)
	for range elapsed {
		ticks.clock.Advance(time.Second)
		byTicks.Reconcile(ctx)
	}

	byJump.Start(ctx)
	jump.clock.Advance(elapsed * time.Second)
	byJump.Resume(ctx)

	want := 25 - (25*60-elapsed)/60
	assert.Equal(t, want, ticks.stats.Minutes(ctx, ticks.today()))
	assert.Equal(t, want, jump.stats.Minutes(ctx, jump.today()))
	assert.Equal(t, want, jump.stats.UnsyncedMinutes(ctx, jump.today()))
	assert.Equal(t, byTicks.State().TimeLeft, byJump.State().TimeLeft)
}

func TestReconcile_JitteredTicksCarrySubSecondRemainders(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()

	e.Start(ctx)
	// Ten ticks of 1.3s: 13s of wall time.
	for range 10 {
		f.clock.Advance(1300 * time.Millisecond)
		e.Reconcile(ctx)
	}
	assert.Equal(t, 25*60-13, e.State().TimeLeft)
	assert.Equal(t, epoch.Add(25*time.Minute), e.State().EndAt)
}

func TestReconcile_RandomSplitsMatchFormula(t *testing.T) {
	splits := [][]time.Duration{
		{59 * time.Second, time.Second, 61 * time.Second},
		{500 * time.Millisecond, 500 * time.Millisecond, 10 * time.Minute},
		{3 * time.Minute, 2*time.Minute + 999*time.Millisecond, time.Millisecond},
	}
	for i, split := range splits {
		f := newFixture(t)
		e := f.engine(t, Settings{})
		ctx := context.Background()
		e.Start(ctx)

		var total time.Duration
		for _, d := range split {
			f.clock.Advance(d)
			total += d
			e.Reconcile(ctx)
		}
		secs := int(total / time.Second)
		want := 25 - max(0, 25*60-secs)/60
		assert.Equal(t, want, f.stats.Minutes(ctx, f.today()), "split %d", i)
	}
}

func TestReconcile_ClampInvariant(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()

	e.Start(ctx)
	for _, d := range []time.Duration{time.Second, 10 * time.Minute, 3 * time.Hour, 2 * time.Second} {
		f.clock.Advance(d)
		s := e.Reconcile(ctx)
		assert.GreaterOrEqual(t, s.TimeLeft, 0)
		assert.LessOrEqual(t, s.TimeLeft, s.Initial)
	}
}

func TestReconcile_ClockMovedBackwardsKeepsTimeLeft(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()

	e.Start(ctx)
	f.clock.Advance(10 * time.Second)
	e.Reconcile(ctx)
	f.clock.Advance(-time.Hour)
	s := e.Reconcile(ctx)

	assert.Equal(t, 25*60-10, s.TimeLeft)
	assert.Equal(t, Running, s.Status)
	assert.Equal(t, f.clock.Now().Add(time.Duration(s.TimeLeft)*time.Second), s.EndAt)

	f.clock.Advance(5 * time.Second)
	assert.Equal(t, 25*60-15, e.Reconcile(ctx).TimeLeft)
}

func TestReconcile_NoCreditInBreak(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()

	e.SwitchMode(ctx, Break)
	e.Start(ctx)
	f.clock.Advance(3 * time.Minute)
	e.Reconcile(ctx)

	assert.Equal(t, 0, f.stats.Minutes(ctx, f.today()))
}

// ==================== Completion ====================

func TestCompletion_FocusAdvancesToBreak(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()

	e.Start(ctx)
	f.clock.Advance(2 * time.Hour)
	s := e.Resume(ctx)

	assert.Equal(t, Idle, s.Status)
	assert.Equal(t, Break, s.Mode)
	assert.Equal(t, 5*60, s.TimeLeft)
	assert.Equal(t, 5*60, s.Initial)
	assert.Equal(t, 1, s.SetsCompleted)
	assert.Equal(t, 25, f.stats.Minutes(ctx, f.today()))
	assert.Equal(t, habit.Completed, f.habits.Status(ctx, f.today()))
	assert.Equal(t, 1, f.rec.count("sound"))
	assert.Equal(t, "cancel", f.rec.last())

	require.Len(t, f.rec.sessions, 1)
	assert.Equal(t, "focus", f.rec.sessions[0].Mode)
	assert.Equal(t, 25*60, f.rec.sessions[0].Seconds)
	assert.Equal(t, "pomodoro", f.rec.sessions[0].PresetID)
}

func TestCompletion_BreakAdvancesToFocusWithoutHabitMark(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()

	e.SwitchMode(ctx, Break)
	e.Start(ctx)
	f.clock.Advance(5 * time.Minute)
	s := e.Reconcile(ctx)

	assert.Equal(t, Focus, s.Mode)
	assert.Equal(t, 25*60, s.TimeLeft)
	assert.Equal(t, Idle, s.Status)
	assert.Equal(t, habit.None, f.habits.Status(ctx, f.today()))
	assert.Equal(t, 0, s.SetsCompleted)
}

func TestCompletion_AutoStartRunsNextSession(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{AutoStart: true})
	ctx := context.Background()

	e.Start(ctx)
	f.clock.Advance(25*time.Minute + 40*time.Second)
	s := e.Reconcile(ctx)

	assert.Equal(t, Running, s.Status)
	assert.Equal(t, Break, s.Mode)
	// The leftover 40s is not carried into the break.
	assert.Equal(t, 5*60, s.TimeLeft)
	assert.Equal(t, f.clock.Now().Add(5*time.Minute), s.EndAt)
}

func TestCompletion_MutedSkipsSound(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()
	e.SetMuted(true)

	require.NoError(t, e.StartFor(ctx, 3))
	f.clock.Advance(3 * time.Second)
	e.Reconcile(ctx)

	assert.Equal(t, 0, f.rec.count("sound"))
	assert.Equal(t, Break, e.State().Mode)
}

func TestCompletion_UpdatesGoalStreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.stats.SetDailyGoal(ctx, 25))
	e := f.engine(t, Settings{})

	e.Start(ctx)
	f.clock.Advance(25 * time.Minute)
	e.Reconcile(ctx)

	assert.Equal(t, 1, f.stats.GoalStreak(ctx))
}

// ==================== Failures ====================

func TestPresenterFailuresDoNotBlockTransitions(t *testing.T) {
	f := newFixture(t)
	f.rec.failWith = errors.New("permission denied")
	e := f.engine(t, Settings{})
	ctx := context.Background()

	e.Start(ctx)
	f.clock.Advance(2 * time.Minute)
	e.Pause(ctx)
	assert.Equal(t, Paused, e.State().Status)
	assert.Equal(t, 2, f.stats.Minutes(ctx, f.today()))

	e.Start(ctx)
	f.clock.Advance(time.Hour)
	assert.Equal(t, Break, e.Reconcile(ctx).Mode)
}

func TestStorageWriteFailureKeepsMemoryAuthoritative(t *testing.T) {
	f := newFixture(t)
	e := f.engine(t, Settings{})
	ctx := context.Background()
	f.store.FailAllWrites(true)

	e.Start(ctx)
	f.clock.Advance(3 * time.Minute)
	s := e.Reconcile(ctx)

	assert.Equal(t, Running, s.Status)
	assert.Equal(t, 25*60-180, s.TimeLeft)
	assert.Equal(t, 0, f.stats.Minutes(ctx, f.today()))
}
