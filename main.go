package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/sadopc/lunafocus/internal/app"
	"github.com/sadopc/lunafocus/internal/commands"
	"github.com/sadopc/lunafocus/internal/config"
	"github.com/sadopc/lunafocus/internal/logging"
	"github.com/sadopc/lunafocus/internal/store"
)

// Build information. Populated at build-time via -ldflags flag.
var (
	version = "dev"
	commit  = "HEAD"
)

func build() string {
	v, c := version, commit
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					c = s.Value
				}
			}
		}
	}
	if len(c) > 7 {
		c = c[:7]
	}
	return fmt.Sprintf("%s (%s)", v, c)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		focusApp  = &app.App{}
	)

	flags := &commands.Flags{}

	root := &cli.Command{
		Name:      "lunafocus",
		Usage:     "Focus timer and daily habit tracker",
		UsageText: "lunafocus [global options] command [command options]",
		Description: `lunafocus runs focus/break sessions, credits focus minutes per day and
tracks one daily habit with streaks.

Run 'lunafocus' with no arguments to open the interactive timer.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("LUNAFOCUS_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/lunafocus.log)",
				Sources:     cli.EnvVars("LUNAFOCUS_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("LUNAFOCUS_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("LUNAFOCUS_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file so output never mixes with the TUI.
			logFile := flags.LogFile
			if logFile == "" {
				logFile = logging.DefaultFile(flags.DataDir)
			}

			logger, closer, err := logging.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			st, err := store.New(store.DefaultDBPath(cfg.DataDir))
			if err != nil {
				return ctx, fmt.Errorf("open database: %w", err)
			}

			a, err := app.New(ctx, cfg, st, logger, app.Options{})
			if err != nil {
				_ = st.Close()
				return ctx, err
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*focusApp = *a
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if err := focusApp.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close database")
				return err
			}
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, focusApp)
	statusCmd := commands.NewStatusCmd(flags, focusApp)

	root = tuiCmd.Register(root)
	root = statusCmd.Register(root)
	root = commands.NewTimerCmd(flags, focusApp).Register(root)
	root = commands.NewHabitCmd(flags, focusApp).Register(root)
	root = commands.NewStatsCmd(flags, focusApp).Register(root)
	root = commands.NewGoalCmd(flags, focusApp).Register(root)
	root = commands.NewSyncCmd(flags, focusApp).Register(root)
	root = commands.NewBackupCmd(flags, focusApp).Register(root)

	// Open the TUI when no subcommand is given and stdout is a terminal.
	root.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'lunafocus --help' for usage", c.Args().First())
		}
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return tuiCmd.Run(ctx, c)
		}
		return statusCmd.Run(ctx, c)
	}

	exitCode := 0
	if err := root.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
