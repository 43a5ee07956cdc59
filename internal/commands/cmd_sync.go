package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/sadopc/lunafocus/internal/app"
	"github.com/sadopc/lunafocus/internal/sheetsync"
)

type SyncCmd struct {
	flags *Flags
	app   *app.App
}

// NewSyncCmd creates a new sync command
func NewSyncCmd(flags *Flags, a *app.App) *SyncCmd {
	return &SyncCmd{flags: flags, app: a}
}

// Register adds the sync command to the application
func (cmd *SyncCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "sync",
		Usage: "Sync today's focus total with the spreadsheet",
		Description: `Requires sync.spreadsheet_id and sync.credentials_file in the config.

'push' adds the minutes focused since the last push to the remote total.
'pull' reads the remote total for today without changing local data.`,
		Commands: []*cli.Command{
			{
				Name:   "pull",
				Usage:  "Read today's remote total",
				Action: cmd.run(func(ctx context.Context) sheetsync.Result { return cmd.app.Sync.Pull(ctx) }),
			},
			{
				Name:   "push",
				Usage:  "Add unsynced minutes to the remote total",
				Action: cmd.run(func(ctx context.Context) sheetsync.Result { return cmd.app.Sync.Push(ctx) }),
			},
		},
	})
	return root
}

func (cmd *SyncCmd) run(fn func(context.Context) sheetsync.Result) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		res := fn(ctx)
		if !res.Success {
			return res.Err
		}
		out := c.Root().Writer
		switch {
		case res.Message != "":
			_, _ = fmt.Fprintln(out, res.Message)
		case res.Found:
			_, _ = fmt.Fprintf(out, "Remote total: %d min\n", res.Minutes)
		default:
			_, _ = fmt.Fprintln(out, "No remote row for today")
		}
		return nil
	}
}
