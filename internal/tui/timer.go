package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/lunafocus/internal/app"
	"github.com/sadopc/lunafocus/internal/notify"
	"github.com/sadopc/lunafocus/internal/prefs"
	"github.com/sadopc/lunafocus/internal/timer"
)

type timerModel struct {
	ctx    context.Context
	app    *app.App
	width  int
	height int

	state  timer.State
	visual prefs.VisualSet
	today  int
	goal   int

	bar progress.Model
}

func newTimerModel(ctx context.Context, a *app.App) timerModel {
	t := timerModel{
		ctx: ctx,
		app: a,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
	t.refresh(a.Timer.State())
	return t
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
	t.bar.Width = min(max(w-16, 10), 60)
}

// refresh reloads the engine snapshot and today's totals.
func (t *timerModel) refresh(s timer.State) {
	t.state = s
	t.visual = t.app.Prefs.VisualSet(t.ctx)
	t.today = t.app.Focus.Minutes(t.ctx, t.app.Today())
	t.goal = t.app.Focus.DailyGoal(t.ctx)
}

func (t timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		t.refresh(t.app.Timer.Reload(t.ctx))
		return t, nil

	case tea.KeyMsg:
		cmd := t.handleKey(msg)
		t.refresh(t.app.Timer.State())
		return t, cmd
	}
	return t, nil
}

func (t timerModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	ctx, e, s := t.ctx, t.app.Timer, t.state

	switch {
	case key.Matches(msg, keys.Toggle):
		e.Toggle(ctx)
	case key.Matches(msg, keys.Reset):
		e.Reset(ctx)
	case key.Matches(msg, keys.Mode):
		e.SwitchMode(ctx, s.Mode.Other())
	case key.Matches(msg, keys.Preset):
		next := timer.NextPreset(e.Presets(), s.Preset)
		if err := t.app.ChangePreset(ctx, next.ID); err != nil {
			return statusCmd(errStatus("Preset", err))
		}
		return statusCmd(statusMsg{text: "Preset: " + next.Name})
	case key.Matches(msg, keys.Longer), key.Matches(msg, keys.Shorter):
		if s.Status != timer.Idle {
			return statusCmd(statusMsg{text: "Stop the timer to change its length"})
		}
		delta := 60
		if key.Matches(msg, keys.Shorter) {
			delta = -60
		}
		if err := e.SetDuration(ctx, max(s.TimeLeft+delta, 60)); err != nil {
			return statusCmd(errStatus("Duration", err))
		}
	case key.Matches(msg, keys.Visual):
		if err := t.app.Prefs.SetVisualSet(ctx, t.visual.Next()); err != nil {
			return statusCmd(errStatus("Visual", err))
		}
	case key.Matches(msg, keys.AutoStart):
		if err := t.app.SetAutoStart(ctx, !s.AutoStart); err != nil {
			return statusCmd(errStatus("Auto-start", err))
		}
		return statusCmd(statusMsg{text: "Auto-start " + onOff(!s.AutoStart)})
	case key.Matches(msg, keys.Mute):
		if err := t.app.SetMuted(ctx, !s.Muted); err != nil {
			return statusCmd(errStatus("Sound", err))
		}
		return statusCmd(statusMsg{text: "Sound " + onOff(s.Muted)})
	}
	return nil
}

func (t timerModel) view() string {
	w := t.width - 4
	s := t.state

	modeStyle := accentStyle
	if s.Mode == timer.Break {
		modeStyle = successStyle
	}

	var label string
	switch s.Status {
	case timer.Running:
		label = successStyle.Render("RUNNING")
	case timer.Paused:
		label = warningStyle.Render("PAUSED")
	default:
		label = mutedStyle.Render("Ready to start")
	}

	clock := modeStyle.Bold(true).Width(max(w-6, 10)).Align(lipgloss.Center).
		Render(timer.FormatClock(s.TimeLeft))

	content := lipgloss.JoinVertical(lipgloss.Center,
		modeStyle.Bold(true).Render(strings.ToUpper(s.Mode.Label())),
		"",
		t.visual.Emoji(s.Progress()),
		clock,
		label,
		"",
		t.bar.ViewAs(s.Progress()),
		"",
		t.renderSets(),
		mutedStyle.Render(fmt.Sprintf("%s · %d/%d min", s.Preset.Name, s.Preset.FocusMinutes, s.Preset.BreakMinutes)),
		t.renderToday(),
		mutedStyle.Render(fmt.Sprintf("auto-start %s · sound %s", onOff(s.AutoStart), onOff(!s.Muted))),
	)

	if n, ok := t.app.Banner.Current(); ok {
		content = lipgloss.JoinVertical(lipgloss.Center, content, "", renderBanner(n))
	}

	var controls string
	switch s.Status {
	case timer.Running:
		controls = mutedStyle.Render("space: pause  x: stop  m: switch mode")
	case timer.Paused:
		controls = mutedStyle.Render("space: resume  x: stop  m: switch mode")
	default:
		controls = mutedStyle.Render("space: start  m: switch mode  p: preset  +/-: length  v: visual")
	}

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

func (t timerModel) renderSets() string {
	sets := max(t.state.Preset.Sets, 1)
	done := t.state.SetsCompleted % sets
	if done == 0 && t.state.SetsCompleted > 0 && t.state.Mode == timer.Break {
		done = sets
	}

	var parts []string
	for i := range sets {
		switch {
		case i < done:
			parts = append(parts, successStyle.Render("●"))
		case i == done && t.state.Mode == timer.Focus && t.state.Status != timer.Idle:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d/%d", done, sets))
	return strings.Join(parts, " ") + counter
}

func (t timerModel) renderToday() string {
	text := fmt.Sprintf("Today %d/%d min", t.today, t.goal)
	if t.today >= t.goal {
		return successStyle.Render(text + " ✓")
	}
	return highlightStyle.Render(text)
}

func renderBanner(n notify.Notification) string {
	var buttons []string
	for _, b := range n.Buttons {
		buttons = append(buttons, highlightStyle.Render("["+actionKey(b.Action)+"]")+" "+b.Label)
	}
	return bannerStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(n.Title),
		mutedStyle.Render(n.Body),
		strings.Join(buttons, "  "),
	))
}

// actionKey is the key that triggers a notification action.
func actionKey(a timer.Action) string {
	if a == timer.ActionStop {
		return keys.Reset.Help().Key
	}
	return keys.Toggle.Help().Key
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func statusCmd(msg statusMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}
