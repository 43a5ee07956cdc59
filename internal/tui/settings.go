package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/lunafocus/internal/app"
	"github.com/sadopc/lunafocus/internal/prefs"
)

// settingsValues backs the form fields. Held by pointer so values survive
// model copies.
type settingsValues struct {
	preset     string
	autoStart  bool
	muted      bool
	dailyGoal  string
	visual     string
	showStreak bool
}

type settingRow struct {
	label string
	value string
}

type settingsModel struct {
	ctx    context.Context
	app    *app.App
	width  int
	height int

	rows       []settingRow
	formActive bool
	form       *huh.Form
	values     *settingsValues
}

func newSettingsModel(ctx context.Context, a *app.App) settingsModel {
	return settingsModel{
		ctx:    ctx,
		app:    a,
		values: &settingsValues{},
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	rows []settingRow
}

type settingsSavedMsg struct{}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		v := s.current()
		preset := v.preset
		for _, p := range s.app.Timer.Presets() {
			if p.ID == v.preset {
				preset = fmt.Sprintf("%s (%d/%d min, %d sets)", p.Name, p.FocusMinutes, p.BreakMinutes, p.Sets)
			}
		}
		return settingsDataMsg{rows: []settingRow{
			{"Preset", preset},
			{"Auto-start", onOff(v.autoStart)},
			{"Sound", onOff(!v.muted)},
			{"Daily goal", v.dailyGoal + " min"},
			{"Show goal streak", onOff(v.showStreak)},
			{"Visual", v.visual},
			{"Sync", onOff(s.app.Sync.Configured())},
		}}
	}
}

// current reads the live settings.
func (s settingsModel) current() settingsValues {
	ctx, a := s.ctx, s.app
	st := a.Timer.State()
	return settingsValues{
		preset:     st.Preset.ID,
		autoStart:  st.AutoStart,
		muted:      st.Muted,
		dailyGoal:  strconv.Itoa(a.Focus.DailyGoal(ctx)),
		visual:     string(a.Prefs.VisualSet(ctx)),
		showStreak: a.Focus.ShowStreak(ctx),
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.rows = msg.rows
		return s, nil

	case settingsSavedMsg:
		return s, tea.Batch(s.refresh(), statusCmd(statusMsg{text: "Settings saved"}))

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.values = s.current()

	var presetOpts []huh.Option[string]
	for _, p := range s.app.Timer.Presets() {
		presetOpts = append(presetOpts, huh.NewOption(fmt.Sprintf("%s (%d/%d)", p.Name, p.FocusMinutes, p.BreakMinutes), p.ID))
	}
	var visualOpts []huh.Option[string]
	for _, v := range prefs.VisualSets {
		visualOpts = append(visualOpts, huh.NewOption(v.Emoji(1)+" "+string(v), string(v)))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Preset").Options(presetOpts...).Value(&s.values.preset),
			huh.NewConfirm().Title("Start the next session automatically").Value(&s.values.autoStart),
			huh.NewConfirm().Title("Mute completion sound").Value(&s.values.muted),
		).Title("Timer"),
		huh.NewGroup(
			huh.NewInput().Title("Daily goal (min)").Value(&s.values.dailyGoal).Validate(validateGoal),
			huh.NewConfirm().Title("Show goal streak").Value(&s.values.showStreak),
			huh.NewSelect[string]().Title("Progress visual").Options(visualOpts...).Value(&s.values.visual),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateGoal(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return errors.New("enter a positive number of minutes")
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, keys.Back) {
		s.formActive = false
		s.form = nil
		return s, nil
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.save(*s.values)
	}

	return s, cmd
}

// save applies v. The preset only changes when a different one was picked,
// since changing it resets the timer.
func (s settingsModel) save(v settingsValues) tea.Cmd {
	return func() tea.Msg {
		ctx, a := s.ctx, s.app
		var errs []error

		if v.preset != a.Timer.State().Preset.ID {
			errs = append(errs, a.ChangePreset(ctx, v.preset))
		}
		errs = append(errs,
			a.SetAutoStart(ctx, v.autoStart),
			a.SetMuted(ctx, v.muted),
			a.Prefs.SetVisualSet(ctx, prefs.VisualSet(v.visual)),
			a.Focus.SetShowStreak(ctx, v.showStreak),
		)
		if goal, err := strconv.Atoi(v.dailyGoal); err != nil {
			errs = append(errs, fmt.Errorf("daily goal: %w", err))
		} else {
			errs = append(errs, a.Focus.SetDailyGoal(ctx, goal))
		}

		if err := errors.Join(errs...); err != nil {
			return errStatus("Settings", err)
		}
		return settingsSavedMsg{}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	for _, r := range s.rows {
		label := lipgloss.NewStyle().Width(20).Render(r.label)
		rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(r.value)))
	}
	rows = append(rows, "",
		mutedStyle.Render(fmt.Sprintf("Data dir: %s", s.app.Config.DataDir)),
		mutedStyle.Render("Press enter to edit settings"),
	)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
