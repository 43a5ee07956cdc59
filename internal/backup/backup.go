// Package backup exports the habit and focus ledgers with appearance
// settings to a JSON document and restores them from one.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/lunafocus/internal/clock"
	"github.com/sadopc/lunafocus/internal/datekey"
	"github.com/sadopc/lunafocus/internal/habit"
	"github.com/sadopc/lunafocus/internal/prefs"
)

// Version is the document format written by Export.
const Version = 1

var ErrInvalidBackup = errors.New("invalid backup")

// Document is the backup file format.
type Document struct {
	Version    int                          `json:"version"`
	Timestamp  string                       `json:"timestamp"`
	Habits     map[datekey.Key]habit.Status `json:"habits"`
	FocusStats map[datekey.Key]int          `json:"focusStats"`
	Settings   prefs.Appearance             `json:"settings"`
}

type HabitLedger interface {
	Snapshot(ctx context.Context) (map[datekey.Key]habit.Status, error)
	Replace(ctx context.Context, statuses map[datekey.Key]habit.Status) error
}

type FocusLedger interface {
	Snapshot(ctx context.Context) (map[datekey.Key]int, error)
	Replace(ctx context.Context, stats map[datekey.Key]int) error
}

type Preferences interface {
	Appearance(ctx context.Context) prefs.Appearance
	SetAppearance(ctx context.Context, a prefs.Appearance) error
}

// Service produces and applies backups.
type Service struct {
	habits HabitLedger
	focus  FocusLedger
	prefs  Preferences
	clock  clock.Clock
	log    zerolog.Logger
}

func New(habits HabitLedger, focus FocusLedger, p Preferences, c clock.Clock, log zerolog.Logger) *Service {
	return &Service{
		habits: habits,
		focus:  focus,
		prefs:  p,
		clock:  c,
		log:    log.With().Str("component", "backup").Logger(),
	}
}

// Export snapshots both ledgers and the appearance settings.
func (s *Service) Export(ctx context.Context) (Document, error) {
	habits, err := s.habits.Snapshot(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("export habits: %w", err)
	}
	stats, err := s.focus.Snapshot(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("export focus stats: %w", err)
	}
	return Document{
		Version:    Version,
		Timestamp:  s.clock.Now().UTC().Format(time.RFC3339),
		Habits:     habits,
		FocusStats: stats,
		Settings:   s.prefs.Appearance(ctx),
	}, nil
}

// Write encodes an export to w.
func (s *Service) Write(ctx context.Context, w io.Writer) error {
	doc, err := s.Export(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// WriteFile writes an export to path.
func (s *Service) WriteFile(ctx context.Context, path string) error {
	var buf bytes.Buffer
	if err := s.Write(ctx, &buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write backup file: %w", err)
	}
	s.log.Info().Str("path", path).Msg("backup written")
	return nil
}

// Import validates data completely, then replaces both ledgers and applies
// the appearance settings. Invalid input is rejected with ErrInvalidBackup
// before anything is written.
func (s *Service) Import(ctx context.Context, data []byte) error {
	doc, err := Decode(data)
	if err != nil {
		return err
	}
	if err := s.habits.Replace(ctx, doc.Habits); err != nil {
		return fmt.Errorf("import habits: %w", err)
	}
	if err := s.focus.Replace(ctx, doc.FocusStats); err != nil {
		return fmt.Errorf("import focus stats: %w", err)
	}
	if err := s.prefs.SetAppearance(ctx, doc.Settings); err != nil {
		return fmt.Errorf("import settings: %w", err)
	}
	s.log.Info().Int("habits", len(doc.Habits)).Int("days", len(doc.FocusStats)).Msg("backup imported")
	return nil
}

// ImportFile reads and imports the backup at path.
func (s *Service) ImportFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read backup file: %w", err)
	}
	return s.Import(ctx, data)
}

// Decode parses and validates a backup document.
func Decode(data []byte) (Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	for _, field := range []string{"habits", "focusStats"} {
		if raw, ok := probe[field]; !ok || string(raw) == "null" {
			return Document{}, fmt.Errorf("%w: missing %s", ErrInvalidBackup, field)
		}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if doc.Version < 1 || doc.Version > Version {
		return Document{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidBackup, doc.Version)
	}
	for d, st := range doc.Habits {
		if _, err := datekey.Parse(d.String()); err != nil {
			return Document{}, fmt.Errorf("%w: habits: %v", ErrInvalidBackup, err)
		}
		if !st.Valid() {
			return Document{}, fmt.Errorf("%w: habits: %s has unknown status %q", ErrInvalidBackup, d, st)
		}
	}
	for d, n := range doc.FocusStats {
		if _, err := datekey.Parse(d.String()); err != nil {
			return Document{}, fmt.Errorf("%w: focusStats: %v", ErrInvalidBackup, err)
		}
		if n < 0 {
			return Document{}, fmt.Errorf("%w: focusStats: %s has negative minutes", ErrInvalidBackup, d)
		}
	}
	return doc, nil
}
