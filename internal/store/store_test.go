package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/lunafocus/internal/focus"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s := newTestStore(t)

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentVersion, version)
}

func TestNewWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "lunafocus.db")
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), "k", "v"))
	require.NoError(t, s.Close())
	assert.FileExists(t, path)

	// Reopening keeps data and skips applied migrations.
	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestDefaultDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "lunafocus.db"), DefaultDBPath("data"))
}

// ============================================================
// Key-value port
// ============================================================

func TestKV_GetMissing(t *testing.T) {
	s := newTestStore(t)
	v, ok, err := s.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestKV_SetOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "focus_stats", `{"2024-03-09":5}`))
	require.NoError(t, s.Set(ctx, "focus_stats", `{"2024-03-09":30}`))

	v, ok, err := s.Get(ctx, "focus_stats")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"2024-03-09":30}`, v)
}

func TestKV_Remove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Remove(ctx, "k"))
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing an absent key is not an error.
	assert.NoError(t, s.Remove(ctx, "k"))
}

func TestKV_KeysSorted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, k := range []string{"b", "c", "a"} {
		require.NoError(t, s.Set(ctx, k, "x"))
	}

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestKV_ClosedStoreFails(t *testing.T) {
	s, err := NewMemory()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, _, err = s.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, s.Set(context.Background(), "k", "v"))
}

// ============================================================
// Session log
// ============================================================

func TestSessions_RecordAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 9, 9, 25, 0, 0, time.UTC)

	require.NoError(t, s.RecordSession(ctx, focus.Session{
		Mode: "focus", PresetID: "pomodoro", Seconds: 1500, Day: "2024-03-09", CompletedAt: at,
	}))
	require.NoError(t, s.RecordSession(ctx, focus.Session{
		Mode: "break", PresetID: "pomodoro", Seconds: 300, Day: "2024-03-09", CompletedAt: at.Add(5 * time.Minute),
	}))
	require.NoError(t, s.RecordSession(ctx, focus.Session{
		Mode: "focus", PresetID: "long", Seconds: 3000, Day: "2024-03-01", CompletedAt: at.AddDate(0, 0, -8),
	}))

	got, err := s.ListSessions(ctx, "2024-03-09", "2024-03-09")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "break", got[0].Mode)
	assert.Equal(t, "focus", got[1].Mode)
	assert.Equal(t, 1500, got[1].Seconds)
	assert.True(t, at.Equal(got[1].CompletedAt))

	all, err := s.ListSessions(ctx, "2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSessions_CountByDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 9, 9, 0, 0, 0, time.UTC)

	for _, day := range []string{"2024-03-08", "2024-03-09", "2024-03-09"} {
		require.NoError(t, s.RecordSession(ctx, focus.Session{Mode: "focus", Day: day, CompletedAt: at}))
	}
	require.NoError(t, s.RecordSession(ctx, focus.Session{Mode: "break", Day: "2024-03-09", CompletedAt: at}))

	counts, err := s.CountSessions(ctx, "focus", "2024-03-03", "2024-03-09")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2024-03-08": 1, "2024-03-09": 2}, counts)

	empty, err := s.CountSessions(ctx, "focus", "2024-01-01", "2024-01-07")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
