package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/sadopc/lunafocus/internal/app"
)

type GoalCmd struct {
	flags *Flags
	app   *app.App

	// flags
	showStreak string
}

// NewGoalCmd creates a new goal command
func NewGoalCmd(flags *Flags, a *app.App) *GoalCmd {
	return &GoalCmd{flags: flags, app: a}
}

// Register adds the goal command to the application
func (cmd *GoalCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:      "goal",
		Usage:     "Show or set the daily focus goal",
		ArgsUsage: "[minutes]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "show-streak",
				Usage:       "show the goal streak (true, false)",
				Destination: &cmd.showStreak,
			},
		},
		Action: cmd.run,
	})
	return root
}

func (cmd *GoalCmd) run(ctx context.Context, c *cli.Command) error {
	f := cmd.app.Focus

	if cmd.showStreak != "" {
		show, err := strconv.ParseBool(cmd.showStreak)
		if err != nil {
			return fmt.Errorf("--show-streak: %w", err)
		}
		if err := f.SetShowStreak(ctx, show); err != nil {
			return err
		}
	}

	if arg := c.Args().First(); arg != "" {
		minutes, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid minutes %q", arg)
		}
		if err := f.SetDailyGoal(ctx, minutes); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "Daily goal: %d min, streak %d days\n", f.DailyGoal(ctx), f.GoalStreak(ctx))
	return nil
}
