package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/sadopc/lunafocus/internal/app"
)

type BackupCmd struct {
	flags *Flags
	app   *app.App

	// flags
	out string
}

// NewBackupCmd creates a new backup command
func NewBackupCmd(flags *Flags, a *app.App) *BackupCmd {
	return &BackupCmd{flags: flags, app: a}
}

// Register adds the backup command to the application
func (cmd *BackupCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "backup",
		Usage: "Export and restore habits and focus history",
		Commands: []*cli.Command{
			{
				Name:  "export",
				Usage: "Write a JSON backup",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "out",
						Aliases:     []string{"o"},
						Usage:       "output file (stdout if not provided)",
						Destination: &cmd.out,
					},
				},
				Action: cmd.runExport,
			},
			{
				Name:        "import",
				Usage:       "Replace habits and focus history from a JSON backup",
				Description: "The file is validated before anything is written. Unsynced minutes are reset.",
				ArgsUsage:   "<file>",
				Action:      cmd.runImport,
			},
			{
				Name:  "csv",
				Usage: "Write per-day focus minutes and habit status as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "out",
						Aliases:     []string{"o"},
						Usage:       "output file",
						Required:    true,
						Destination: &cmd.out,
					},
				},
				Action: cmd.runCSV,
			},
		},
	})
	return root
}

func (cmd *BackupCmd) runExport(ctx context.Context, c *cli.Command) error {
	if cmd.out == "" {
		return cmd.app.Backup.Write(ctx, c.Root().Writer)
	}
	if err := cmd.app.Backup.WriteFile(ctx, cmd.out); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Backup written to %s\n", cmd.out)
	return nil
}

func (cmd *BackupCmd) runImport(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected a backup file")
	}
	path := c.Args().First()
	if err := cmd.app.Backup.ImportFile(ctx, path); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "Restored from %s\n", path)
	return nil
}

func (cmd *BackupCmd) runCSV(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Backup.WriteCSV(ctx, cmd.out); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "CSV written to %s\n", cmd.out)
	return nil
}
