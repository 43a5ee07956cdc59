package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/sadopc/lunafocus/internal/app"
	"github.com/sadopc/lunafocus/internal/timer"
)

type TimerCmd struct {
	flags *Flags
	app   *app.App

	// flags
	minutes int
}

// NewTimerCmd creates a new timer command
func NewTimerCmd(flags *Flags, a *app.App) *TimerCmd {
	return &TimerCmd{flags: flags, app: a}
}

// Register adds the timer command to the application
func (cmd *TimerCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "timer",
		Usage: "Control the focus timer",
		Description: `The timer keeps running between invocations. Every command first
credits the focus minutes elapsed since the last one.`,
		Commands: []*cli.Command{
			{
				Name:  "start",
				Usage: "Start or resume the countdown",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "minutes",
						Aliases:     []string{"m"},
						Usage:       "start with this many minutes instead of the time left",
						Destination: &cmd.minutes,
					},
				},
				Action: cmd.runStart,
			},
			{
				Name:   "pause",
				Usage:  "Pause the countdown",
				Action: cmd.simple(func(ctx context.Context) { cmd.app.Timer.Pause(ctx) }),
			},
			{
				Name:   "reset",
				Usage:  "Stop and restore the full duration",
				Action: cmd.simple(func(ctx context.Context) { cmd.app.Timer.Reset(ctx) }),
			},
			{
				Name:      "mode",
				Usage:     "Switch to focus or break",
				ArgsUsage: "<focus|break>",
				Action:    cmd.runMode,
			},
			{
				Name:      "preset",
				Usage:     "Select a preset by id",
				ArgsUsage: "<id>",
				Action:    cmd.runPreset,
			},
			{
				Name:      "action",
				Usage:     "Dispatch a notification action",
				ArgsUsage: "<pause|resume|stop>",
				Action:    cmd.runAction,
			},
		},
	})
	return root
}

func (cmd *TimerCmd) simple(fn func(ctx context.Context)) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		fn(ctx)
		return cmd.print(c)
	}
}

func (cmd *TimerCmd) runStart(ctx context.Context, c *cli.Command) error {
	if cmd.minutes != 0 {
		if err := cmd.app.Timer.StartFor(ctx, cmd.minutes*60); err != nil {
			return err
		}
	} else {
		cmd.app.Timer.Start(ctx)
	}
	return cmd.print(c)
}

func (cmd *TimerCmd) runMode(ctx context.Context, c *cli.Command) error {
	mode, err := timer.ParseMode(c.Args().First())
	if err != nil {
		return err
	}
	cmd.app.Timer.SwitchMode(ctx, mode)
	return cmd.print(c)
}

func (cmd *TimerCmd) runPreset(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected a preset id")
	}
	if err := cmd.app.ChangePreset(ctx, c.Args().First()); err != nil {
		return err
	}
	return cmd.print(c)
}

func (cmd *TimerCmd) runAction(ctx context.Context, c *cli.Command) error {
	action, err := timer.ParseAction(c.Args().First())
	if err != nil {
		return err
	}
	if err := cmd.app.Timer.HandleAction(ctx, action); err != nil {
		return err
	}
	return cmd.print(c)
}

func (cmd *TimerCmd) print(c *cli.Command) error {
	s := cmd.app.Timer.State()
	_, err := fmt.Fprintf(c.Root().Writer, "%s %s %s\n", s.Mode.Label(), s.Status, timer.FormatClock(s.TimeLeft))
	return err
}
