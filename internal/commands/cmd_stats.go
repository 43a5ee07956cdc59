package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/sadopc/lunafocus/internal/app"
	"github.com/sadopc/lunafocus/internal/datekey"
	"github.com/sadopc/lunafocus/internal/timer"
)

type StatsCmd struct {
	flags *Flags
	app   *app.App

	// flags
	days int
	raw  bool
}

// NewStatsCmd creates a new stats command
func NewStatsCmd(flags *Flags, a *app.App) *StatsCmd {
	return &StatsCmd{flags: flags, app: a}
}

// Register adds the stats command to the application
func (cmd *StatsCmd) Register(root *cli.Command) *cli.Command {
	root.Commands = append(root.Commands, &cli.Command{
		Name:  "stats",
		Usage: "Show focus minutes per day",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "days",
				Aliases:     []string{"d"},
				Usage:       "number of days to show",
				Value:       7,
				Destination: &cmd.days,
			},
			&cli.BoolFlag{
				Name:        "raw",
				Usage:       "print markdown without rendering",
				Destination: &cmd.raw,
			},
		},
		Action: cmd.run,
	})
	return root
}

func (cmd *StatsCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	md, err := cmd.markdown(ctx)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	if cmd.raw {
		_, err := fmt.Fprint(out, md)
		return err
	}

	style := "notty"
	if term.IsTerminal(int(os.Stdout.Fd())) {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return err
	}
	rendered, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, rendered)
	return err
}

func (cmd *StatsCmd) markdown(ctx context.Context) (string, error) {
	a := cmd.app
	today := a.Today()
	days := datekey.Range(today, cmd.days)

	sessions, err := a.Store.CountSessions(ctx, string(timer.Focus), days[0].String(), today.String())
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Focus, last %d days\n\n", cmd.days)
	b.WriteString("| Day | Minutes | Sessions | Habit |\n")
	b.WriteString("|-----|--------:|---------:|-------|\n")

	total := 0
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		mins := a.Focus.Minutes(ctx, d)
		total += mins
		status := a.Habits.Status(ctx, d)
		fmt.Fprintf(&b, "| %s | %d | %d | %s %s |\n", d, mins, sessions[d.String()], status.Symbol(), status)
	}

	fmt.Fprintf(&b, "\n**Total:** %d min  \n", total)
	fmt.Fprintf(&b, "**Daily goal:** %d min  \n", a.Focus.DailyGoal(ctx))
	if a.Focus.ShowStreak(ctx) {
		fmt.Fprintf(&b, "**Goal streak:** %d days  \n", a.Focus.GoalStreak(ctx))
	}
	fmt.Fprintf(&b, "**Habit streak:** %d days\n", a.Habits.Streak(ctx, today))
	return b.String(), nil
}
