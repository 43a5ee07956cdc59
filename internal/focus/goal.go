package focus

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sadopc/lunafocus/internal/datekey"
)

// DailyGoal returns the daily focus goal in minutes.
func (l *Ledger) DailyGoal(ctx context.Context) int {
	goal := l.readInt(ctx, KeyDailyGoal, l.defaultGoal)
	if goal <= 0 {
		return l.defaultGoal
	}
	return goal
}

func (l *Ledger) SetDailyGoal(ctx context.Context, minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("daily goal %d: %w", minutes, ErrInvalidMinutes)
	}
	return l.writeInt(ctx, KeyDailyGoal, minutes)
}

// GoalStreak returns the cached count of consecutive days the goal was met.
func (l *Ledger) GoalStreak(ctx context.Context) int {
	return l.readInt(ctx, KeyGoalStreak, 0)
}

// LastGoalDate returns the last day counted toward the goal streak.
func (l *Ledger) LastGoalDate(ctx context.Context) (datekey.Key, bool) {
	raw, ok, err := l.store.Get(ctx, KeyLastStreakDate)
	if err != nil {
		l.log.Warn().Err(err).Msg("read last streak date failed")
		return "", false
	}
	if !ok || raw == "" {
		return "", false
	}
	k, err := datekey.Parse(raw)
	if err != nil {
		return "", false
	}
	return k, true
}

// UpdateGoalStreak counts today toward the goal streak once todayMinutes
// reaches the daily goal. A day is counted at most once; the streak grows
// when the previous counted day was yesterday and restarts at 1 otherwise.
// It returns the resulting streak.
func (l *Ledger) UpdateGoalStreak(ctx context.Context, today datekey.Key, todayMinutes int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	streak := l.GoalStreak(ctx)
	if todayMinutes < l.DailyGoal(ctx) {
		return streak, nil
	}

	last, ok := l.LastGoalDate(ctx)
	switch {
	case ok && last == today:
		return streak, nil
	case ok && last.AddDays(1) == today:
		streak++
	default:
		streak = 1
	}

	if err := l.writeInt(ctx, KeyGoalStreak, streak); err != nil {
		return streak, err
	}
	if err := l.store.Set(ctx, KeyLastStreakDate, today.String()); err != nil {
		return streak, fmt.Errorf("set %s: %w", KeyLastStreakDate, err)
	}
	l.log.Debug().Str("date", today.String()).Int("streak", streak).Msg("goal streak updated")
	return streak, nil
}

// ShowStreak reports whether the goal streak should be displayed. It defaults
// to true.
func (l *Ledger) ShowStreak(ctx context.Context) bool {
	raw, ok, err := l.store.Get(ctx, KeyShowStreak)
	if err != nil || !ok {
		return true
	}
	show, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return show
}

func (l *Ledger) SetShowStreak(ctx context.Context, show bool) error {
	if err := l.store.Set(ctx, KeyShowStreak, strconv.FormatBool(show)); err != nil {
		return fmt.Errorf("set %s: %w", KeyShowStreak, err)
	}
	return nil
}
