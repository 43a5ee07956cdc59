package timer

import (
	"context"
	"strings"
	"time"
)

// KeyState is the storage key of the persisted countdown.
const KeyState = "timer_state_v2"

// persistedState is the stored form of the countdown. Timestamps are Unix
// milliseconds. While running, the time left is endTime minus lastTick.
type persistedState struct {
	Status          string `json:"status"`
	EndTime         *int64 `json:"endTime"`
	PausedRemaining *int   `json:"pausedRemaining"`
	Mode            string `json:"mode"`
	LastTick        int64  `json:"lastTick"`
	InitialDuration int    `json:"initialDuration"`
	CurrentPreset   Preset `json:"currentPreset"`
}

func (e *Engine) persist(ctx context.Context) {
	ps := persistedState{
		Status:          strings.ToUpper(string(e.status)),
		Mode:            string(e.mode),
		LastTick:        e.lastProcessed.UnixMilli(),
		InitialDuration: e.initial,
		CurrentPreset:   e.preset,
	}
	if e.status == Running {
		end := e.endAt.UnixMilli()
		ps.EndTime = &end
	} else {
		remaining := e.timeLeft
		ps.PausedRemaining = &remaining
	}
	if err := e.saved.Save(ctx, ps); err != nil {
		e.log.Warn().Err(err).Msg("persist timer state failed")
		return
	}
	e.lastSaved = ps
}

// same reports whether ps and o describe the same stored countdown.
func (ps persistedState) same(o persistedState) bool {
	return ps.Status == o.Status &&
		ps.Mode == o.Mode &&
		ps.LastTick == o.LastTick &&
		ps.InitialDuration == o.InitialDuration &&
		ps.CurrentPreset == o.CurrentPreset &&
		derefEqual(ps.EndTime, o.EndTime) &&
		derefEqual(ps.PausedRemaining, o.PausedRemaining)
}

func derefEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// restore loads the persisted countdown. Missing, unreadable or
// inconsistent state leaves the engine at its idle default.
func (e *Engine) restore(ctx context.Context) {
	ps, ok, err := e.saved.Load(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("discarding unreadable timer state")
		return
	}
	if !ok {
		return
	}
	e.apply(ps)
}

// apply replaces the countdown with ps. Inconsistent state is ignored.
func (e *Engine) apply(ps persistedState) bool {
	status := Status(strings.ToLower(ps.Status))
	mode, modeErr := ParseMode(ps.Mode)
	if modeErr != nil || ps.InitialDuration <= 0 || ps.CurrentPreset.Validate() != nil {
		e.log.Warn().Str("status", ps.Status).Str("mode", ps.Mode).Msg("discarding inconsistent timer state")
		return false
	}

	var timeLeft int
	lastTick := time.UnixMilli(ps.LastTick)
	switch status {
	case Running:
		if ps.EndTime == nil {
			e.log.Warn().Msg("discarding running timer state without end time")
			return false
		}
		timeLeft = int(time.UnixMilli(*ps.EndTime).Sub(lastTick) / time.Second)
	case Idle, Paused:
		if ps.PausedRemaining == nil {
			e.log.Warn().Msg("discarding timer state without remaining time")
			return false
		}
		timeLeft = *ps.PausedRemaining
	default:
		e.log.Warn().Str("status", ps.Status).Msg("discarding timer state with unknown status")
		return false
	}

	e.preset = ps.CurrentPreset
	e.mode = mode
	e.status = status
	e.initial = ps.InitialDuration
	e.timeLeft = min(max(timeLeft, 0), e.initial)
	e.endAt = time.Time{}
	if status == Running {
		e.lastProcessed = lastTick
		e.endAt = lastTick.Add(time.Duration(e.timeLeft) * time.Second)
	}
	e.lastSaved = ps
	e.log.Debug().Str("status", string(status)).Str("mode", string(mode)).Int("time_left", e.timeLeft).Msg("restored timer state")
	return true
}

// Reload adopts countdown state that another process stored since this
// engine last saved or loaded it, then runs one reconciliation pass. A
// long-lived process calls it so commands run from other processes, such
// as a pause, are not overwritten by its next save.
func (e *Engine) Reload(ctx context.Context) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	ps, ok, err := e.saved.Load(ctx)
	switch {
	case err != nil:
		e.log.Warn().Err(err).Msg("reload timer state failed")
	case ok && !ps.same(e.lastSaved) && e.apply(ps):
		e.announce(ctx)
	}
	e.reconcile(ctx)
	return e.snapshot()
}

// announce brings the notifier in line with the current status.
func (e *Engine) announce(ctx context.Context) {
	var err error
	switch e.status {
	case Running:
		err = e.notifier.ShowRunning(ctx, e.timeLeft, e.initial, e.mode)
	case Paused:
		err = e.notifier.ShowPaused(ctx, e.timeLeft, e.initial, e.mode)
	default:
		err = e.notifier.Cancel(ctx)
	}
	if err != nil {
		e.log.Warn().Err(err).Msg("update notification failed")
	}
}
