package habit

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/lunafocus/internal/datekey"
	"github.com/sadopc/lunafocus/internal/kv"
	"github.com/sadopc/lunafocus/internal/kv/kvtest"
)

const today = datekey.Key("2024-03-09")

// ==================== Streak ====================

func TestComputeStreak(t *testing.T) {
	tests := []struct {
		name     string
		statuses map[datekey.Key]Status
		want     int
	}{
		{
			name: "skip is neutral",
			statuses: map[datekey.Key]Status{
				today:             Completed,
				today.AddDays(-1): Completed,
				today.AddDays(-2): Skipped,
				today.AddDays(-3): Completed,
				today.AddDays(-4): Missed,
			},
			want: 3,
		},
		{
			name: "missed today is zero",
			statuses: map[datekey.Key]Status{
				today:             Missed,
				today.AddDays(-1): Completed,
			},
			want: 0,
		},
		{
			name: "unset today walks from yesterday",
			statuses: map[datekey.Key]Status{
				today.AddDays(-1): Completed,
				today.AddDays(-2): Completed,
			},
			want: 2,
		},
		{
			name: "planned today walks from yesterday",
			statuses: map[datekey.Key]Status{
				today:             Planned,
				today.AddDays(-1): Completed,
			},
			want: 1,
		},
		{
			name: "planned yesterday stops",
			statuses: map[datekey.Key]Status{
				today:             Completed,
				today.AddDays(-1): Planned,
				today.AddDays(-2): Completed,
			},
			want: 1,
		},
		{
			name:     "empty",
			statuses: map[datekey.Key]Status{},
			want:     0,
		},
		{
			name: "only skips",
			statuses: map[datekey.Key]Status{
				today.AddDays(-1): Skipped,
				today.AddDays(-2): Skipped,
			},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStreak(tt.statuses, today))
		})
	}
}

func TestComputeStreak_CrossesMonthBoundary(t *testing.T) {
	statuses := map[datekey.Key]Status{
		"2024-03-01": Completed,
		"2024-02-29": Completed,
		"2024-02-28": Completed,
	}
	assert.Equal(t, 3, ComputeStreak(statuses, "2024-03-01"))
}

// ==================== Status ====================

func TestStatusNext_Cycle(t *testing.T) {
	s := None
	var seen []Status
	for range 5 {
		s = s.Next()
		seen = append(seen, s)
	}
	assert.Equal(t, []Status{Completed, Missed, Skipped, Planned, None}, seen)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Completed")
	require.NoError(t, err)
	assert.Equal(t, Completed, s)

	s, err = ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, None, s)

	_, err = ParseStatus("done")
	assert.Error(t, err)
}

// ==================== Ledger ====================

func newTestLedger(t *testing.T) (*Ledger, *kvtest.Flaky) {
	t.Helper()
	store := kvtest.NewFlaky(kv.NewMemory())
	return NewLedger(store, zerolog.Nop()), store
}

func TestLedger_SetStatusAndToggle(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	assert.Equal(t, None, l.Status(ctx, today))

	require.NoError(t, l.SetStatus(ctx, today, Skipped))
	assert.Equal(t, Skipped, l.Status(ctx, today))

	next, err := l.Toggle(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, Planned, next)

	next, err = l.Toggle(ctx, today.AddDays(1))
	require.NoError(t, err)
	assert.Equal(t, Completed, next)

	assert.Error(t, l.SetStatus(ctx, today, Status("bogus")))
}

func TestLedger_MarkCompletedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)

	require.NoError(t, l.MarkCompleted(ctx, today))
	require.NoError(t, l.MarkCompleted(ctx, today))

	assert.Equal(t, map[datekey.Key]Status{today: Completed}, l.All(ctx))
	assert.Equal(t, 1, l.Streak(ctx, today))
}

func TestLedger_CorruptDataReadsEmptyAndBlocksWrites(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)
	require.NoError(t, store.Set(ctx, KeyHabits, "not json"))

	assert.Empty(t, l.All(ctx))
	assert.Error(t, l.MarkCompleted(ctx, today))
}

func TestLedger_WriteFailure(t *testing.T) {
	ctx := context.Background()
	l, store := newTestLedger(t)
	store.FailSet(KeyHabits)

	require.ErrorIs(t, l.MarkCompleted(ctx, today), kvtest.ErrInjected)
	assert.Equal(t, None, l.Status(ctx, today))
}

func TestLedger_Replace(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLedger(t)
	require.NoError(t, l.MarkCompleted(ctx, today))

	in := map[datekey.Key]Status{"2024-01-01": Missed}
	require.NoError(t, l.Replace(ctx, in))

	snap, err := l.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, snap)

	assert.Error(t, l.Replace(ctx, map[datekey.Key]Status{"2024-01-02": "nope"}))
}

// ==================== Calendar ====================

func TestMonth_PadsToWholeWeeks(t *testing.T) {
	// March 2024 starts on a Friday and ends on a Sunday.
	grid := Month(2024, time.March, today)

	require.Len(t, grid, 5+31+6)
	assert.Equal(t, datekey.Key("2024-02-25"), grid[0].Date)
	assert.False(t, grid[0].IsCurrentMonth)
	assert.Equal(t, datekey.Key("2024-03-01"), grid[5].Date)
	assert.True(t, grid[5].IsCurrentMonth)
	assert.Equal(t, datekey.Key("2024-04-06"), grid[len(grid)-1].Date)
	assert.Zero(t, len(grid)%7)

	var todays int
	for _, d := range grid {
		if d.IsToday {
			todays++
			assert.Equal(t, today, d.Date)
		}
	}
	assert.Equal(t, 1, todays)
}

func TestMonth_EndingOnSaturdayHasNoTrailingPadding(t *testing.T) {
	// August 2024 ends on a Saturday.
	grid := Month(2024, time.August, today)
	assert.Equal(t, datekey.Key("2024-08-31"), grid[len(grid)-1].Date)
	assert.Zero(t, len(grid)%7)
}

func TestMonthlyStats_IgnoresPaddingDays(t *testing.T) {
	grid := Month(2024, time.March, today)
	statuses := map[datekey.Key]Status{
		"2024-02-29": Completed,
		"2024-03-01": Completed,
		"2024-03-02": Missed,
		"2024-03-03": Skipped,
		"2024-03-04": Planned,
	}
	assert.Equal(t, Stats{Completed: 1, Missed: 1, Skipped: 1}, MonthlyStats(statuses, grid))
}
