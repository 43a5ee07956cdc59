// Package timer implements the focus/break countdown engine.
//
// The engine never advances the countdown by a fixed decrement. Every pass
// derives elapsed whole seconds from the wall clock since the last processed
// instant, so delayed ticks, sleep and process restarts are all absorbed by
// the same arithmetic.
package timer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/lunafocus/internal/clock"
	"github.com/sadopc/lunafocus/internal/datekey"
	"github.com/sadopc/lunafocus/internal/focus"
	"github.com/sadopc/lunafocus/internal/kv"
)

var (
	ErrNotIdle         = errors.New("timer is not idle")
	ErrInvalidDuration = errors.New("duration must be positive")
)

// Deps are the collaborators of an Engine. Clock, Store, Stats and Habits
// are required; the presentation ports default to no-ops.
type Deps struct {
	Clock    clock.Clock
	Store    kv.Store
	Stats    Stats
	Habits   Habits
	Notifier Notifier
	Music    Music
	Sound    Sound
	Sessions SessionLog
	Logger   zerolog.Logger
}

// Settings are the user preferences the engine starts with.
type Settings struct {
	Presets       []Preset
	DefaultPreset string
	AutoStart     bool
	Muted         bool
}

// Engine owns the countdown state. All methods are safe for concurrent use;
// commands and reconciliation passes are serialized.
type Engine struct {
	mu sync.Mutex

	clock    clock.Clock
	stats    Stats
	habits   Habits
	notifier Notifier
	music    Music
	sound    Sound
	sessions SessionLog
	log      zerolog.Logger
	saved    *kv.Doc[persistedState]
	// lastSaved is the state this engine last wrote or read.
	lastSaved persistedState

	presets []Preset
	preset  Preset

	status   Status
	mode     Mode
	timeLeft int
	initial  int
	endAt    time.Time
	// lastProcessed advances only by whole consumed seconds so sub-second
	// remainders carry into the next pass.
	lastProcessed time.Time

	autoStart     bool
	muted         bool
	setsCompleted int
}

// New builds an engine, restores any persisted state and runs one
// reconciliation pass so a relaunch credits the time spent while the
// process was gone.
func New(ctx context.Context, deps Deps, settings Settings) *Engine {
	presets := settings.Presets
	if len(presets) == 0 {
		presets = DefaultPresets()
	}
	e := &Engine{
		clock:     deps.Clock,
		stats:     deps.Stats,
		habits:    deps.Habits,
		notifier:  deps.Notifier,
		music:     deps.Music,
		sound:     deps.Sound,
		sessions:  deps.Sessions,
		log:       deps.Logger.With().Str("component", "timer").Logger(),
		saved:     kv.JSON[persistedState](deps.Store, KeyState),
		presets:   presets,
		autoStart: settings.AutoStart,
		muted:     settings.Muted,
	}
	if e.clock == nil {
		e.clock = clock.Real{}
	}
	if e.notifier == nil {
		e.notifier = nopNotifier{}
	}
	if e.music == nil {
		e.music = nopMusic{}
	}
	if e.sound == nil {
		e.sound = nopSound{}
	}
	if e.sessions == nil {
		e.sessions = nopSessions{}
	}

	e.preset = presets[0]
	if p, ok := FindPreset(presets, settings.DefaultPreset); ok {
		e.preset = p
	}
	e.status = Idle
	e.mode = Focus
	e.timeLeft = e.preset.Seconds(Focus)
	e.initial = e.timeLeft
	e.lastProcessed = e.clock.Now()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.restore(ctx)
	e.reconcile(ctx)
	return e
}

// State returns a snapshot of the engine.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// Presets returns the selectable presets.
func (e *Engine) Presets() []Preset {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Preset(nil), e.presets...)
}

// Start begins or resumes the countdown from the current time left.
// Starting a running timer is a no-op.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == Running {
		return
	}
	e.start(ctx)
	e.persist(ctx)
}

// StartFor starts the countdown with seconds replacing the time left.
func (e *Engine) StartFor(ctx context.Context, seconds int) error {
	if seconds <= 0 {
		return ErrInvalidDuration
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reconcile(ctx)
	e.timeLeft = seconds
	if seconds > e.initial {
		e.initial = seconds
	}
	e.start(ctx)
	e.persist(ctx)
	return nil
}

// Pause freezes the countdown at its reconciled value.
func (e *Engine) Pause(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != Running {
		return
	}
	e.reconcile(ctx)
	if e.status != Running {
		// The pass completed the session.
		return
	}
	e.status = Paused
	e.endAt = time.Time{}
	e.log.Debug().Int("time_left", e.timeLeft).Msg("paused")

	if err := e.notifier.ShowPaused(ctx, e.timeLeft, e.initial, e.mode); err != nil {
		e.log.Warn().Err(err).Msg("show paused notification failed")
	}
	e.duck(ctx)
	e.persist(ctx)
}

// Toggle pauses a running timer and starts any other.
func (e *Engine) Toggle(ctx context.Context) {
	if e.State().Status == Running {
		e.Pause(ctx)
		return
	}
	e.Start(ctx)
}

// Reset stops the countdown and restores the full duration of the current
// mode from the active preset.
func (e *Engine) Reset(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reconcile(ctx)
	e.stop(ctx, e.mode, e.preset.Seconds(e.mode))
	e.duck(ctx)
	e.log.Debug().Str("mode", string(e.mode)).Msg("reset")
	e.persist(ctx)
}

// SwitchMode stops the countdown and loads the full duration of mode.
func (e *Engine) SwitchMode(ctx context.Context, mode Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reconcile(ctx)
	e.stop(ctx, mode, e.preset.Seconds(mode))
	e.log.Debug().Str("mode", string(mode)).Msg("switched mode")
	e.persist(ctx)
}

// ChangePreset selects p and resets to an idle focus session.
func (e *Engine) ChangePreset(ctx context.Context, p Preset) error {
	if err := p.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reconcile(ctx)
	e.preset = p
	e.stop(ctx, Focus, p.Seconds(Focus))
	e.log.Debug().Str("preset", p.ID).Msg("changed preset")
	e.persist(ctx)
	return nil
}

// SetDuration replaces the session length. Only allowed while idle.
func (e *Engine) SetDuration(ctx context.Context, seconds int) error {
	if seconds <= 0 {
		return ErrInvalidDuration
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != Idle {
		return ErrNotIdle
	}
	e.timeLeft = seconds
	e.initial = seconds
	e.persist(ctx)
	return nil
}

// SetAutoStart controls whether the next session starts on completion.
func (e *Engine) SetAutoStart(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoStart = on
}

// SetMuted suppresses the completion sound.
func (e *Engine) SetMuted(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.muted = on
}

// Reconcile runs one reconciliation pass. Periodic ticks and resume from
// suspension both call it.
func (e *Engine) Reconcile(ctx context.Context) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reconcile(ctx)
	return e.snapshot()
}

// Resume is called when the process returns to the foreground.
func (e *Engine) Resume(ctx context.Context) State {
	return e.Reconcile(ctx)
}

func (e *Engine) reconcile(ctx context.Context) {
	if e.status != Running {
		return
	}
	now := e.clock.Now()
	delta := now.Sub(e.lastProcessed)
	if delta < 0 {
		// The wall clock moved backwards. Keep the time left and re-anchor.
		e.log.Warn().Dur("delta", delta).Msg("clock moved backwards")
		e.lastProcessed = now
		e.endAt = now.Add(time.Duration(e.timeLeft) * time.Second)
		return
	}
	elapsed := int(delta / time.Second)
	if elapsed == 0 && e.timeLeft > 0 {
		return
	}

	before := e.timeLeft
	after := min(max(before-elapsed, 0), e.initial)
	e.timeLeft = after
	e.lastProcessed = e.lastProcessed.Add(time.Duration(elapsed) * time.Second)

	credited := 0
	if e.mode == Focus {
		credited = before/60 - after/60
	}
	if credited > 0 {
		e.credit(ctx, credited)
	}

	if after == 0 {
		e.complete(ctx)
		return
	}
	if err := e.notifier.ShowRunning(ctx, e.timeLeft, e.initial, e.mode); err != nil {
		e.log.Warn().Err(err).Msg("update running notification failed")
	}
	if credited > 0 {
		e.persist(ctx)
	}
}

func (e *Engine) credit(ctx context.Context, minutes int) {
	today := datekey.Today(e.clock)
	if err := e.stats.AddMinutes(ctx, today, minutes); err != nil {
		e.log.Warn().Err(err).Int("minutes", minutes).Msg("credit focus minutes failed")
		return
	}
	total := e.stats.Minutes(ctx, today)
	if _, err := e.stats.UpdateGoalStreak(ctx, today, total); err != nil {
		e.log.Warn().Err(err).Msg("update goal streak failed")
	}
}

func (e *Engine) complete(ctx context.Context) {
	finished := e.mode
	seconds := e.initial
	now := e.clock.Now()
	today := datekey.FromTime(now)

	e.status = Idle
	e.endAt = time.Time{}
	e.duck(ctx)
	if !e.muted {
		if err := e.sound.PlayCompletion(ctx); err != nil {
			e.log.Warn().Err(err).Msg("play completion sound failed")
		}
	}

	if finished == Focus {
		if err := e.habits.MarkCompleted(ctx, today); err != nil {
			e.log.Warn().Err(err).Msg("mark habit completed failed")
		}
		e.setsCompleted++
	}
	if err := e.sessions.RecordSession(ctx, focus.Session{
		Mode:        string(finished),
		PresetID:    e.preset.ID,
		Seconds:     seconds,
		Day:         today.String(),
		CompletedAt: now,
	}); err != nil {
		e.log.Warn().Err(err).Msg("record session failed")
	}

	e.mode = finished.Other()
	e.timeLeft = e.preset.Seconds(e.mode)
	e.initial = e.timeLeft
	e.log.Info().Str("finished", string(finished)).Str("next", string(e.mode)).Bool("auto_start", e.autoStart).Msg("session complete")

	if e.autoStart {
		e.start(ctx)
	} else if err := e.notifier.Cancel(ctx); err != nil {
		e.log.Warn().Err(err).Msg("cancel notification failed")
	}
	e.persist(ctx)
}

func (e *Engine) start(ctx context.Context) {
	now := e.clock.Now()
	e.status = Running
	e.lastProcessed = now
	e.endAt = now.Add(time.Duration(e.timeLeft) * time.Second)
	e.log.Debug().Str("mode", string(e.mode)).Int("time_left", e.timeLeft).Msg("started")

	if err := e.music.Restore(ctx); err != nil {
		e.log.Warn().Err(err).Msg("restore music volume failed")
	}
	if err := e.notifier.ShowRunning(ctx, e.timeLeft, e.initial, e.mode); err != nil {
		e.log.Warn().Err(err).Msg("show running notification failed")
	}
}

// stop moves to Idle with a fresh session of seconds in mode.
func (e *Engine) stop(ctx context.Context, mode Mode, seconds int) {
	e.status = Idle
	e.mode = mode
	e.timeLeft = seconds
	e.initial = seconds
	e.endAt = time.Time{}
	if err := e.notifier.Cancel(ctx); err != nil {
		e.log.Warn().Err(err).Msg("cancel notification failed")
	}
}

func (e *Engine) duck(ctx context.Context) {
	if err := e.music.Duck(ctx); err != nil {
		e.log.Warn().Err(err).Msg("duck music failed")
	}
}

func (e *Engine) snapshot() State {
	return State{
		Status:        e.status,
		Mode:          e.mode,
		TimeLeft:      e.timeLeft,
		Initial:       e.initial,
		EndAt:         e.endAt,
		Preset:        e.preset,
		AutoStart:     e.autoStart,
		Muted:         e.muted,
		SetsCompleted: e.setsCompleted,
	}
}
