package backup

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
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
	"github.com/sadopc/lunafocus/internal/prefs"
)

type fixture struct {
	store  *kv.Memory
	habits *habit.Ledger
	stats  *focus.Ledger
	prefs  *prefs.Store
	svc    *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := kv.NewMemory()
	f := &fixture{
		store:  store,
		habits: habit.NewLedger(store, zerolog.Nop()),
		stats:  focus.NewLedger(store, zerolog.Nop()),
		prefs:  prefs.New(store, zerolog.Nop()),
	}
	c := clock.NewFake(time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC))
	f.svc = New(f.habits, f.stats, f.prefs, c, zerolog.Nop())
	return f
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.habits.SetStatus(ctx, "2024-03-08", habit.Completed))
	require.NoError(t, f.habits.SetStatus(ctx, "2024-03-09", habit.Skipped))
	require.NoError(t, f.stats.AddMinutes(ctx, "2024-03-08", 50))
	require.NoError(t, f.stats.SetMinutes(ctx, "2024-03-01", 5))
	require.NoError(t, f.prefs.SetAppearance(ctx, prefs.Appearance{Theme: "dark"}))
}

// ==================== Round trip ====================

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t)
	src.seed(t)

	var buf bytes.Buffer
	require.NoError(t, src.svc.Write(ctx, &buf))

	before, err := src.svc.Export(ctx)
	require.NoError(t, err)

	// Mutate, then restore.
	require.NoError(t, src.habits.SetStatus(ctx, "2024-03-09", habit.Missed))
	require.NoError(t, src.stats.AddMinutes(ctx, "2024-03-10", 3))
	require.NoError(t, src.svc.Import(ctx, buf.Bytes()))

	after, err := src.svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Habits, after.Habits)
	assert.Equal(t, before.FocusStats, after.FocusStats)
	assert.Equal(t, "dark", after.Settings.Theme)
}

func TestExport_Document(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	doc, err := f.svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, "2024-03-09T12:00:00Z", doc.Timestamp)
	assert.Equal(t, 50, doc.FocusStats["2024-03-08"])
	assert.Equal(t, habit.Skipped, doc.Habits["2024-03-09"])
}

func TestImport_ReplacesRatherThanMerges(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)

	raw := `{"version":1,"timestamp":"x","habits":{"2023-01-01":"missed"},"focusStats":{"2023-01-01":12},"settings":{}}`
	require.NoError(t, f.svc.Import(ctx, []byte(raw)))

	assert.Equal(t, map[datekey.Key]habit.Status{"2023-01-01": habit.Missed}, f.habits.All(ctx))
	assert.Equal(t, 0, f.stats.Minutes(ctx, "2024-03-08"))
	assert.Equal(t, 12, f.stats.Minutes(ctx, "2023-01-01"))
	assert.Equal(t, "dark", f.prefs.Appearance(ctx).Theme, "absent settings are left alone")
}

func TestImport_RejectsInvalidWithoutWriting(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"version":1,`,
		"missing habits":  `{"version":1,"focusStats":{}}`,
		"null focusStats": `{"version":1,"habits":{},"focusStats":null}`,
		"bad version":     `{"version":7,"habits":{},"focusStats":{}}`,
		"bad status":      `{"version":1,"habits":{"2024-01-01":"great"},"focusStats":{}}`,
		"bad date":        `{"version":1,"habits":{"01-01-2024":"completed"},"focusStats":{}}`,
		"negative":        `{"version":1,"habits":{},"focusStats":{"2024-01-01":-3}}`,
		"wrong type":      `{"version":1,"habits":[],"focusStats":{}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			f.seed(t)
			before, _ := f.svc.Export(ctx)

			err := f.svc.Import(ctx, []byte(raw))
			require.ErrorIs(t, err, ErrInvalidBackup)

			after, _ := f.svc.Export(ctx)
			assert.Equal(t, before.Habits, after.Habits)
			assert.Equal(t, before.FocusStats, after.FocusStats)
		})
	}
}

func TestWriteFileAndImportFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)
	path := filepath.Join(t.TempDir(), "backup.json")

	require.NoError(t, f.svc.WriteFile(ctx, path))

	g := newFixture(t)
	require.NoError(t, g.svc.ImportFile(ctx, path))
	assert.Equal(t, 50, g.stats.Minutes(ctx, "2024-03-08"))

	assert.Error(t, g.svc.ImportFile(ctx, filepath.Join(t.TempDir(), "missing.json")))
}

// ==================== CSV ====================

func TestWriteCSV(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t)
	path := filepath.Join(t.TempDir(), "stats.csv")

	require.NoError(t, f.svc.WriteCSV(ctx, path))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Equal(t, []string{"Date", "Remote Date", "Focus (min)", "Focus", "Habit"}, records[0])
	assert.Equal(t, []string{"2024-03-01", "01-03-2024", "5", "00:05", "not_done"}, records[1])
	assert.Equal(t, []string{"2024-03-08", "08-03-2024", "50", "00:50", "completed"}, records[2])
	assert.Equal(t, []string{"2024-03-09", "09-03-2024", "0", "00:00", "skipped"}, records[3])
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "01:35", formatMinutes(95))
	assert.Equal(t, "00:00", formatMinutes(0))
}
