package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/lunafocus/internal/app"
	"github.com/sadopc/lunafocus/internal/datekey"
	"github.com/sadopc/lunafocus/internal/timer"
)

type dayTotal struct {
	date     datekey.Key
	minutes  int
	sessions int
}

type reportsModel struct {
	ctx    context.Context
	app    *app.App
	width  int
	height int

	offset int // 7-day blocks back from today (0 = current)
	days   []dayTotal

	goal       int
	goalStreak int
	unsynced   int
	baseline   int

	syncing  bool
	lastSync string

	chart barchart.Model
}

func newReportsModel(ctx context.Context, a *app.App) reportsModel {
	return reportsModel{
		ctx:   ctx,
		app:   a,
		chart: barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.buildChart()
}

type reportsDataMsg struct {
	days       []dayTotal
	goal       int
	goalStreak int
	unsynced   int
	baseline   int
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		a, ctx := r.app, r.ctx
		today := a.Today()
		dates := datekey.Range(today.AddDays(-7*r.offset), 7)

		sessions, err := a.Store.CountSessions(ctx, string(timer.Focus), dates[0].String(), dates[len(dates)-1].String())
		if err != nil {
			return errStatus("Reports", err)
		}

		days := make([]dayTotal, len(dates))
		for i, k := range dates {
			days[i] = dayTotal{date: k, minutes: a.Focus.Minutes(ctx, k), sessions: sessions[k.String()]}
		}
		return reportsDataMsg{
			days:       days,
			goal:       a.Focus.DailyGoal(ctx),
			goalStreak: a.Focus.GoalStreak(ctx),
			unsynced:   a.Focus.UnsyncedMinutes(ctx, today),
			baseline:   a.Focus.RemoteBaseline(ctx),
		}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.days = msg.days
		r.goal = msg.goal
		r.goalStreak = msg.goalStreak
		r.unsynced = msg.unsynced
		r.baseline = msg.baseline
		r.buildChart()
		return r, nil

	case syncDoneMsg:
		r.syncing = false
		res := msg.result
		if res.Success {
			r.lastSync = successStyle.Render(msg.action + ": " + syncSummary(msg))
			return r, tea.Batch(r.refresh(), statusCmd(statusMsg{text: "Sync " + msg.action + " done"}))
		}
		r.lastSync = errorStyle.Render(msg.action + ": " + res.Message)
		return r, statusCmd(statusMsg{text: "Sync " + msg.action + " failed", isError: true})

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Pull):
			return r.startSync("pull")
		case key.Matches(msg, keys.Push):
			return r.startSync("push")
		}
	}
	return r, nil
}

func (r reportsModel) startSync(action string) (reportsModel, tea.Cmd) {
	if r.syncing {
		return r, nil
	}
	if !r.app.Sync.Configured() {
		return r, statusCmd(statusMsg{text: "Sync is not configured", isError: true})
	}
	r.syncing = true
	a, ctx := r.app, r.ctx
	return r, func() tea.Msg {
		if action == "pull" {
			return syncDoneMsg{action: action, result: a.Sync.Pull(ctx)}
		}
		return syncDoneMsg{action: action, result: a.Sync.Push(ctx)}
	}
}

func syncSummary(msg syncDoneMsg) string {
	res := msg.result
	switch {
	case res.Message != "":
		return res.Message
	case res.Found:
		return fmt.Sprintf("remote total %d min", res.Minutes)
	}
	return "no remote row for today"
}

func (r *reportsModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, d := range r.days {
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if r.goal > 0 && d.minutes >= r.goal {
			style = lipgloss.NewStyle().Foreground(colorSuccess)
		}
		bars = append(bars, barchart.BarData{
			Label: d.date.Time().Format("Mon 02"),
			Values: []barchart.BarValue{{
				Name:  "Focus",
				Value: float64(d.minutes),
				Style: style,
			}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	var dateLabel string
	if len(r.days) > 0 {
		from := r.days[0].date.Time()
		to := r.days[len(r.days)-1].date.Time()
		dateLabel = mutedStyle.Render(fmt.Sprintf("%s to %s", from.Format("Jan 02"), to.Format("Jan 02, 2006")))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Focus Minutes"), "  ", dateLabel,
	)

	summary := highlightStyle.Render(fmt.Sprintf("Goal %d min · goal streak %d days", r.goal, r.goalStreak))

	syncLine := mutedStyle.Render(fmt.Sprintf("Unsynced today: %d min · last remote total: %d min", r.unsynced, r.baseline))
	if r.syncing {
		syncLine += warningStyle.Render("  syncing...")
	}

	rows := []string{header, "", r.chart.View(), "", summary, "", r.renderTable(w), "", syncLine}
	if r.lastSync != "" {
		rows = append(rows, r.lastSync)
	}
	rows = append(rows, "", mutedStyle.Render("  ←/→: navigate  f: fetch remote  u: upload  e: export"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (r reportsModel) renderTable(w int) string {
	if len(r.days) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %10s %10s", "Date", "Minutes", "Sessions")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(max(w-6, 1), 34))))

	total := 0
	for i := len(r.days) - 1; i >= 0; i-- {
		d := r.days[i]
		total += d.minutes
		rows = append(rows, fmt.Sprintf("  %-12s %10d %10d", d.date, d.minutes, d.sessions))
	}
	rows = append(rows, titleStyle.Render(fmt.Sprintf("  %-12s %10d", "Total", total)))
	return strings.Join(rows, "\n")
}
