package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/sadopc/lunafocus/internal/app"
	"github.com/sadopc/lunafocus/internal/timer"
)

type StatusCmd struct {
	flags *Flags
	app   *app.App

	// flags
	jsonOutput bool
}

// NewStatusCmd creates a new status command
func NewStatusCmd(flags *Flags, a *app.App) *StatusCmd {
	return &StatusCmd{flags: flags, app: a}
}

// Register adds the status command to the application
func (cmd *StatusCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "status",
		Usage: "Show the timer and today's progress",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.Run,
	})
	return root
}

type statusOutput struct {
	Mode        string `json:"mode"`
	Status      string `json:"status"`
	TimeLeft    int    `json:"timeLeft"`
	Preset      string `json:"preset"`
	Today       string `json:"today"`
	Minutes     int    `json:"focusMinutes"`
	Unsynced    int    `json:"unsyncedMinutes"`
	DailyGoal   int    `json:"dailyGoal"`
	GoalStreak  int    `json:"goalStreak"`
	Habit       string `json:"habit"`
	HabitStreak int    `json:"habitStreak"`
}

// Run prints the status. Exported for use as the non-interactive default.
func (cmd *StatusCmd) Run(ctx context.Context, c *cli.Command) error {
	a := cmd.app
	s := a.Timer.Reconcile(ctx)
	today := a.Today()

	info := statusOutput{
		Mode:        string(s.Mode),
		Status:      string(s.Status),
		TimeLeft:    s.TimeLeft,
		Preset:      s.Preset.ID,
		Today:       today.String(),
		Minutes:     a.Focus.Minutes(ctx, today),
		Unsynced:    a.Focus.UnsyncedMinutes(ctx, today),
		DailyGoal:   a.Focus.DailyGoal(ctx),
		GoalStreak:  a.Focus.GoalStreak(ctx),
		Habit:       string(a.Habits.Status(ctx, today)),
		HabitStreak: a.Habits.Streak(ctx, today),
	}

	out := c.Root().Writer
	if cmd.jsonOutput {
		return json.NewEncoder(out).Encode(info)
	}

	_, _ = fmt.Fprintf(out, "Mode:         %s\n", s.Mode.Label())
	_, _ = fmt.Fprintf(out, "Status:       %s\n", s.Status)
	_, _ = fmt.Fprintf(out, "Time left:    %s\n", timer.FormatClock(s.TimeLeft))
	_, _ = fmt.Fprintf(out, "Preset:       %s (%d/%d)\n", s.Preset.Name, s.Preset.FocusMinutes, s.Preset.BreakMinutes)
	_, _ = fmt.Fprintf(out, "Today:        %d / %d min (%d unsynced)\n", info.Minutes, info.DailyGoal, info.Unsynced)
	if a.Focus.ShowStreak(ctx) {
		_, _ = fmt.Fprintf(out, "Goal streak:  %d days\n", info.GoalStreak)
	}
	_, _ = fmt.Fprintf(out, "Habit:        %s (streak %d)\n", info.Habit, info.HabitStreak)
	return nil
}
