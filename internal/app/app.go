// Package app wires the ledgers, the timer engine and the sync and backup
// services into one value that commands and the TUI share.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/sadopc/lunafocus/internal/backup"
	"github.com/sadopc/lunafocus/internal/clock"
	"github.com/sadopc/lunafocus/internal/config"
	"github.com/sadopc/lunafocus/internal/datekey"
	"github.com/sadopc/lunafocus/internal/focus"
	"github.com/sadopc/lunafocus/internal/habit"
	"github.com/sadopc/lunafocus/internal/notify"
	"github.com/sadopc/lunafocus/internal/prefs"
	"github.com/sadopc/lunafocus/internal/sheetsync"
	"github.com/sadopc/lunafocus/internal/sound"
	"github.com/sadopc/lunafocus/internal/store"
	"github.com/sadopc/lunafocus/internal/timer"
)

// App is the central entry point for all lunafocus operations.
// Commands and TUI consume App instead of cherry-picking raw dependencies.
type App struct {
	Config *config.Config
	Clock  clock.Clock
	Store  *store.Store

	Focus  *focus.Ledger
	Habits *habit.Ledger
	Prefs  *prefs.Store

	Timer  *timer.Engine
	Banner *notify.Banner
	Mixer  *sound.Mixer

	Sync   *sheetsync.Manager
	Backup *backup.Service

	log zerolog.Logger
}

// Options override collaborators that are normally built from the config.
type Options struct {
	Clock      clock.Clock
	SyncClient sheetsync.Client
	Sound      timer.Sound
}

// New builds an App over st. The timer engine restores and reconciles its
// persisted state before New returns.
func New(ctx context.Context, cfg *config.Config, st *store.Store, log zerolog.Logger, opts Options) (*App, error) {
	c := opts.Clock
	if c == nil {
		c = clock.Real{}
	}

	a := &App{
		Config: cfg,
		Clock:  c,
		Store:  st,
		Focus:  focus.NewLedger(st, log),
		Habits: habit.NewLedger(st, log),
		Prefs:  prefs.New(st, log),
		Banner: notify.NewBanner(),
		Mixer:  sound.NewMixer(log),
		log:    log.With().Str("component", "app").Logger(),
	}
	a.Focus.SetDefaultDailyGoal(cfg.Stats.DailyGoalMinutes)

	client, err := syncClient(ctx, cfg.Sync, opts.SyncClient)
	if err != nil {
		return nil, err
	}
	a.Sync = sheetsync.NewManager(client, a.Focus, a.Habits, c, log)
	a.Backup = backup.New(a.Habits, a.Focus, a.Prefs, c, log)

	var notifier timer.Notifier = a.Banner
	if cfg.Notifications.Enabled {
		notifier = notify.Multi{a.Banner, notify.NewLog(log)}
	}

	var player timer.Sound = opts.Sound
	if player == nil && cfg.Sound.Enabled {
		player = sound.NewPlayer(cfg.Sound.CustomFile, os.Stderr)
	}

	tp := a.Prefs.Timer(ctx, prefs.Timer{
		PresetID:  cfg.Timer.DefaultPreset,
		AutoStart: cfg.Timer.AutoStart,
		Muted:     cfg.Timer.Muted,
	})

	a.Timer = timer.New(ctx, timer.Deps{
		Clock:    c,
		Store:    st,
		Stats:    a.Focus,
		Habits:   a.Habits,
		Notifier: notifier,
		Music:    a.Mixer,
		Sound:    player,
		Sessions: st,
		Logger:   log,
	}, timer.Settings{
		Presets:       cfg.Timer.Presets,
		DefaultPreset: tp.PresetID,
		AutoStart:     tp.AutoStart,
		Muted:         tp.Muted,
	})

	return a, nil
}

// syncClient returns override if set, a Sheets client if sync is
// configured, and a nil interface otherwise.
func syncClient(ctx context.Context, cfg config.SyncConfig, override sheetsync.Client) (sheetsync.Client, error) {
	if override != nil {
		return override, nil
	}
	if !cfg.Enabled() {
		return nil, nil
	}
	c, err := sheetsync.NewSheetsClient(ctx, sheetsync.SheetsConfig{
		SpreadsheetID:   cfg.SpreadsheetID,
		SheetName:       cfg.SheetName,
		CredentialsFile: cfg.CredentialsFile,
	})
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return c, nil
}

// Today returns the current local day key.
func (a *App) Today() datekey.Key {
	return datekey.Today(a.Clock)
}

// SaveTimerPrefs stores the engine's preset and toggles so the next launch
// starts with them.
func (a *App) SaveTimerPrefs(ctx context.Context) error {
	s := a.Timer.State()
	return a.Prefs.SetTimer(ctx, prefs.Timer{
		PresetID:  s.Preset.ID,
		AutoStart: s.AutoStart,
		Muted:     s.Muted,
	})
}

// SetAutoStart updates the engine and stores the choice.
func (a *App) SetAutoStart(ctx context.Context, on bool) error {
	a.Timer.SetAutoStart(on)
	return a.SaveTimerPrefs(ctx)
}

// SetMuted updates the engine and stores the choice.
func (a *App) SetMuted(ctx context.Context, on bool) error {
	a.Timer.SetMuted(on)
	return a.SaveTimerPrefs(ctx)
}

// ChangePreset switches the engine to the preset with id and stores it.
func (a *App) ChangePreset(ctx context.Context, id string) error {
	p, ok := timer.FindPreset(a.Timer.Presets(), id)
	if !ok {
		return fmt.Errorf("unknown preset %q", id)
	}
	if err := a.Timer.ChangePreset(ctx, p); err != nil {
		return err
	}
	return a.SaveTimerPrefs(ctx)
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}
