// Package prefs stores user preferences that are not part of the ledgers:
// timer behaviour, appearance and the progress emoji set.
package prefs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sadopc/lunafocus/internal/kv"
)

const (
	KeySettings    = "user_settings"
	KeyVisualSet   = "user_visual_set"
	KeyTheme       = "user_theme"
	KeyCustomColor = "user_custom_primary_color"
	KeyCustomSound = "user_custom_sound"
)

// Timer holds the timer behaviour choices.
type Timer struct {
	PresetID  string `json:"presetId,omitempty"`
	AutoStart bool   `json:"autoStart"`
	Muted     bool   `json:"muted"`
}

// Appearance is the part of the preferences carried in backups.
type Appearance struct {
	Theme              string `json:"theme,omitempty"`
	CustomPrimaryColor string `json:"customPrimaryColor,omitempty"`
	CustomSoundURI     string `json:"customSoundUri,omitempty"`
}

// Store reads and writes preferences. Reads fall back to defaults.
type Store struct {
	kv    kv.Store
	timer *kv.Doc[Timer]
	log   zerolog.Logger
}

func New(store kv.Store, log zerolog.Logger) *Store {
	return &Store{
		kv:    store,
		timer: kv.JSON[Timer](store, KeySettings),
		log:   log.With().Str("component", "prefs").Logger(),
	}
}

// Timer returns the stored timer settings, or def if none are stored or
// they cannot be read.
func (s *Store) Timer(ctx context.Context, def Timer) Timer {
	t, ok, err := s.timer.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("using default timer settings")
		return def
	}
	if !ok {
		return def
	}
	return t
}

func (s *Store) SetTimer(ctx context.Context, t Timer) error {
	return s.timer.Save(ctx, t)
}

// VisualSet returns the chosen progress emoji set, moon by default.
func (s *Store) VisualSet(ctx context.Context) VisualSet {
	v := VisualSet(s.raw(ctx, KeyVisualSet))
	if _, ok := visualSets[v]; !ok {
		return Moon
	}
	return v
}

func (s *Store) SetVisualSet(ctx context.Context, v VisualSet) error {
	if _, ok := visualSets[v]; !ok {
		return fmt.Errorf("unknown visual set %q", v)
	}
	return s.setRaw(ctx, KeyVisualSet, string(v))
}

// Appearance returns the stored theme settings.
func (s *Store) Appearance(ctx context.Context) Appearance {
	return Appearance{
		Theme:              s.raw(ctx, KeyTheme),
		CustomPrimaryColor: s.raw(ctx, KeyCustomColor),
		CustomSoundURI:     s.raw(ctx, KeyCustomSound),
	}
}

// SetAppearance writes the non-empty fields of a.
func (s *Store) SetAppearance(ctx context.Context, a Appearance) error {
	for key, v := range map[string]string{
		KeyTheme:       a.Theme,
		KeyCustomColor: a.CustomPrimaryColor,
		KeyCustomSound: a.CustomSoundURI,
	} {
		if v == "" {
			continue
		}
		if err := s.setRaw(ctx, key, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) raw(ctx context.Context, key string) string {
	v, _, err := s.kv.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("read preference failed")
		return ""
	}
	return v
}

func (s *Store) setRaw(ctx context.Context, key, v string) error {
	if err := s.kv.Set(ctx, key, v); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
