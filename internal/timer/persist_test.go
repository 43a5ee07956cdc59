package timer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersist_RelaunchReconcilesGap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.engine(t, Settings{})
	first.Start(ctx)
	f.clock.Advance(2*time.Minute + 30*time.Second)
	first.Reconcile(ctx)
	require.Equal(t, 3, f.stats.Minutes(ctx, f.today()))

	// Process dies; 10 minutes later a new one starts.
	f.clock.Advance(10 * time.Minute)
	second := f.engine(t, Settings{})

	s := second.State()
	assert.Equal(t, Running, s.Status)
	assert.Equal(t, 25*60-750, s.TimeLeft)
	assert.Equal(t, epoch.Add(25*time.Minute), s.EndAt)
	assert.Equal(t, 13, f.stats.Minutes(ctx, f.today()), "gap credited exactly once")
}

func TestPersist_RelaunchPastEndCompletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.engine(t, Settings{})
	first.Start(ctx)
	f.clock.Advance(3 * time.Hour)

	second := f.engine(t, Settings{})
	s := second.State()
	assert.Equal(t, Idle, s.Status)
	assert.Equal(t, Break, s.Mode)
	assert.Equal(t, 25, f.stats.Minutes(ctx, f.today()))
}

func TestPersist_PausedAndIdleRestoreRemaining(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.engine(t, Settings{})
	require.NoError(t, first.ChangePreset(ctx, LongFocus))
	first.Start(ctx)
	f.clock.Advance(61 * time.Second)
	first.Pause(ctx)

	f.clock.Advance(time.Hour)
	s := f.engine(t, Settings{}).State()
	assert.Equal(t, Paused, s.Status)
	assert.Equal(t, LongFocus, s.Preset)
	assert.Equal(t, 50*60-61, s.TimeLeft)
	assert.Equal(t, 50*60, s.Initial)
}

func TestPersist_StoredFormat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.engine(t, Settings{})
	e.Start(ctx)

	raw, ok, err := f.store.Get(ctx, KeyState)
	require.NoError(t, err)
	require.True(t, ok)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "RUNNING", doc["status"])
	assert.Equal(t, "focus", doc["mode"])
	assert.EqualValues(t, epoch.Add(25*time.Minute).UnixMilli(), doc["endTime"])
	assert.EqualValues(t, epoch.UnixMilli(), doc["lastTick"])
	assert.EqualValues(t, 1500, doc["initialDuration"])
	assert.Nil(t, doc["pausedRemaining"])

	preset := doc["currentPreset"].(map[string]any)
	assert.Equal(t, "pomodoro", preset["id"])
	assert.EqualValues(t, 25, preset["focusDuration"])
}

func TestPersist_CorruptStateFallsBackToIdle(t *testing.T) {
	cases := map[string]string{
		"malformed json": `{"status":`,
		"unknown status": `{"status":"SPINNING","mode":"focus","initialDuration":60,"pausedRemaining":10,"currentPreset":{"id":"x","focusDuration":1,"breakDuration":1}}`,
		"bad mode":       `{"status":"IDLE","mode":"nap","initialDuration":60,"pausedRemaining":10,"currentPreset":{"id":"x","focusDuration":1,"breakDuration":1}}`,
		"zero initial":   `{"status":"IDLE","mode":"focus","initialDuration":0,"pausedRemaining":0,"currentPreset":{"id":"x","focusDuration":1,"breakDuration":1}}`,
		"running no end": `{"status":"RUNNING","mode":"focus","initialDuration":60,"currentPreset":{"id":"x","focusDuration":1,"breakDuration":1}}`,
		"invalid preset": `{"status":"IDLE","mode":"focus","initialDuration":60,"pausedRemaining":10,"currentPreset":{"id":"x"}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			require.NoError(t, f.store.Set(ctx, KeyState, raw))

			s := f.engine(t, Settings{}).State()
			assert.Equal(t, Idle, s.Status)
			assert.Equal(t, Focus, s.Mode)
			assert.Equal(t, Pomodoro, s.Preset)
			assert.Equal(t, 25*60, s.TimeLeft)
		})
	}
}

func TestPersist_RemainingIsClamped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	raw := `{"status":"PAUSED","mode":"focus","initialDuration":600,"pausedRemaining":9000,"lastTick":0,` +
		`"currentPreset":{"id":"x","name":"X","focusDuration":10,"breakDuration":2,"sets":1}}`
	require.NoError(t, f.store.Set(ctx, KeyState, raw))

	s := f.engine(t, Settings{}).State()
	assert.Equal(t, Paused, s.Status)
	assert.Equal(t, 600, s.TimeLeft)
}

func TestPersist_ReloadAdoptsPauseFromAnotherProcess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	open := f.engine(t, Settings{})
	open.Start(ctx)

	// A second process reconciles the shared state and pauses it.
	f.clock.Advance(90 * time.Second)
	other := f.engine(t, Settings{})
	other.Pause(ctx)
	require.Equal(t, 2, f.stats.Minutes(ctx, f.today()))

	f.clock.Advance(3 * time.Minute)
	s := open.Reload(ctx)
	assert.Equal(t, Paused, s.Status)
	assert.Equal(t, 25*60-90, s.TimeLeft)
	assert.Equal(t, "paused", f.rec.last())
	assert.Equal(t, 2, f.stats.Minutes(ctx, f.today()), "minutes credited by the other process are not credited again")

	// Resuming continues from the adopted countdown.
	open.Start(ctx)
	f.clock.Advance(30 * time.Second)
	s = open.Reload(ctx)
	assert.Equal(t, Running, s.Status)
	assert.Equal(t, 25*60-120, s.TimeLeft)
}

func TestPersist_ReloadWithoutForeignChangesOnlyReconciles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e := f.engine(t, Settings{})
	e.Start(ctx)
	f.clock.Advance(61 * time.Second)

	s := e.Reload(ctx)
	assert.Equal(t, Running, s.Status)
	assert.Equal(t, 25*60-61, s.TimeLeft)
	assert.Equal(t, 1, f.stats.Minutes(ctx, f.today()))
}

func TestPersist_ReloadKeepsMemoryStateAfterFailedWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e := f.engine(t, Settings{})
	e.Start(ctx)
	f.store.FailSet(KeyState)
	e.Pause(ctx)

	s := e.Reload(ctx)
	assert.Equal(t, Paused, s.Status, "a stale stored state does not override the engine")
	f.store.Heal()
}
