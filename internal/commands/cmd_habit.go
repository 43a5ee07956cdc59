package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/sadopc/lunafocus/internal/app"
	"github.com/sadopc/lunafocus/internal/datekey"
	"github.com/sadopc/lunafocus/internal/habit"
)

type HabitCmd struct {
	flags *Flags
	app   *app.App
}

// NewHabitCmd creates a new habit command
func NewHabitCmd(flags *Flags, a *app.App) *HabitCmd {
	return &HabitCmd{flags: flags, app: a}
}

// Register adds the habit command to the application
func (cmd *HabitCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "habit",
		Usage: "Record the daily habit",
		Description: `Dates are YYYY-MM-DD or "today". Statuses are none, completed,
missed, skipped and planned.`,
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Set the status of a day",
				ArgsUsage: "<date> <status>",
				Action:    cmd.runSet,
			},
			{
				Name:      "toggle",
				Usage:     "Advance a day to its next status",
				ArgsUsage: "[date]",
				Action:    cmd.runToggle,
			},
			{
				Name:   "streak",
				Usage:  "Show the current streak",
				Action: cmd.runStreak,
			},
		},
	})
	return root
}

func (cmd *HabitCmd) runSet(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("expected <date> <status>")
	}
	date, err := cmd.parseDate(c.Args().Get(0))
	if err != nil {
		return err
	}
	status, err := habit.ParseStatus(c.Args().Get(1))
	if err != nil {
		return err
	}
	if err := cmd.app.Habits.SetStatus(ctx, date, status); err != nil {
		return fmt.Errorf("set habit: %w", err)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "%s %s %s\n", date, status.Symbol(), status)
	return nil
}

func (cmd *HabitCmd) runToggle(ctx context.Context, c *cli.Command) error {
	date, err := cmd.parseDate(c.Args().First())
	if err != nil {
		return err
	}
	status, err := cmd.app.Habits.Toggle(ctx, date)
	if err != nil {
		return fmt.Errorf("toggle habit: %w", err)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "%s %s %s\n", date, status.Symbol(), status)
	return nil
}

func (cmd *HabitCmd) runStreak(ctx context.Context, c *cli.Command) error {
	n := cmd.app.Habits.Streak(ctx, cmd.app.Today())
	_, _ = fmt.Fprintf(c.Root().Writer, "%d\n", n)
	return nil
}

func (cmd *HabitCmd) parseDate(s string) (datekey.Key, error) {
	if s == "" || s == "today" {
		return cmd.app.Today(), nil
	}
	return datekey.Parse(s)
}
