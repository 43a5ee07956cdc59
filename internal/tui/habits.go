package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/lunafocus/internal/app"
	"github.com/sadopc/lunafocus/internal/datekey"
	"github.com/sadopc/lunafocus/internal/habit"
)

type habitsModel struct {
	ctx    context.Context
	app    *app.App
	width  int
	height int

	year   int
	month  time.Month
	cursor datekey.Key

	statuses map[datekey.Key]habit.Status
	streak   int
}

func newHabitsModel(ctx context.Context, a *app.App) habitsModel {
	today := a.Today()
	t := today.Time()
	return habitsModel{
		ctx:    ctx,
		app:    a,
		year:   t.Year(),
		month:  t.Month(),
		cursor: today,
	}
}

func (h *habitsModel) setSize(w, height int) {
	h.width = w
	h.height = height
}

type habitsDataMsg struct {
	statuses map[datekey.Key]habit.Status
	streak   int
}

type habitToggledMsg struct {
	date   datekey.Key
	status habit.Status
}

func (h habitsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return habitsDataMsg{
			statuses: h.app.Habits.All(h.ctx),
			streak:   h.app.Habits.Streak(h.ctx, h.app.Today()),
		}
	}
}

func (h habitsModel) update(msg tea.Msg) (habitsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case habitsDataMsg:
		h.statuses = msg.statuses
		h.streak = msg.streak
		return h, nil

	case habitToggledMsg:
		return h, tea.Batch(
			h.refresh(),
			statusCmd(statusMsg{text: fmt.Sprintf("%s: %s", msg.date, msg.status)}),
		)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			h.moveCursor(-1)
		case key.Matches(msg, keys.Right):
			h.moveCursor(1)
		case key.Matches(msg, keys.Up):
			h.moveCursor(-7)
		case key.Matches(msg, keys.Down):
			h.moveCursor(7)
		case key.Matches(msg, keys.PrevMonth):
			h.shiftMonth(-1)
		case key.Matches(msg, keys.NextMonth):
			h.shiftMonth(1)
		case key.Matches(msg, keys.Enter):
			return h, h.toggle()
		}
	}
	return h, nil
}

func (h *habitsModel) moveCursor(days int) {
	h.cursor = h.cursor.AddDays(days)
	t := h.cursor.Time()
	h.year, h.month = t.Year(), t.Month()
}

func (h *habitsModel) shiftMonth(n int) {
	first := time.Date(h.year, h.month+time.Month(n), 1, 0, 0, 0, 0, time.Local)
	h.year, h.month = first.Year(), first.Month()
	h.cursor = datekey.FromTime(first)
}

func (h habitsModel) toggle() tea.Cmd {
	date := h.cursor
	return func() tea.Msg {
		status, err := h.app.Habits.Toggle(h.ctx, date)
		if err != nil {
			return errStatus("Habit", err)
		}
		return habitToggledMsg{date: date, status: status}
	}
}

func (h habitsModel) view() string {
	w := h.width - 4
	grid := habit.Month(h.year, h.month, h.app.Today())

	title := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Daily Habit"), "  ",
		highlightStyle.Render(fmt.Sprintf("%s %d", h.month, h.year)),
	)

	var header []string
	for _, d := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
		header = append(header, mutedStyle.Inherit(cellStyle).Render(d))
	}
	rows := []string{title, "", lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	for week := 0; week < len(grid); week += 7 {
		var cells []string
		for _, d := range grid[week : week+7] {
			cells = append(cells, h.renderCell(d))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	stats := habit.MonthlyStats(h.statuses, grid)
	rows = append(rows, "",
		fmt.Sprintf("%s %d  %s %d  %s %d",
			successStyle.Render(habit.Completed.Symbol()), stats.Completed,
			errorStyle.Render(habit.Missed.Symbol()), stats.Missed,
			warningStyle.Render(habit.Skipped.Symbol()), stats.Skipped,
		),
		highlightStyle.Render("Streak: "+strconv.Itoa(h.streak)+" days"),
		mutedStyle.Render(fmt.Sprintf("Selected %s: %s", h.cursor, h.status(h.cursor))),
		"",
		mutedStyle.Render("arrows: move  enter: cycle status  [/]: month"),
	)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// status returns the loaded status of date, None if unset.
func (h habitsModel) status(date datekey.Key) habit.Status {
	if s, ok := h.statuses[date]; ok {
		return s
	}
	return habit.None
}

func (h habitsModel) renderCell(d habit.Day) string {
	status := h.status(d.Date)
	text := strconv.Itoa(d.Day)
	if sym := strings.TrimSpace(status.Symbol()); sym != "" {
		text += statusStyle(status).Render(sym)
	}

	switch {
	case d.Date == h.cursor:
		return cursorCellStyle.Render(text)
	case !d.IsCurrentMonth:
		return outsideCellStyle.Render(text)
	case d.IsToday:
		return todayCellStyle.Render(text)
	}
	return cellStyle.Render(text)
}
