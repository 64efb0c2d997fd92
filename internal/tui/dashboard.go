package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/baturay/inkwell/internal/report"
	"github.com/baturay/inkwell/internal/store"
	"github.com/baturay/inkwell/internal/timer"
)

type dashboardModel struct {
	store  *store.Store
	engine *timer.Engine
	width  int
	height int

	today  *report.DayStats
	timers []store.ActiveTimer
	debt   []report.DebtItem
}

func newDashboardModel(s *store.Store, e *timer.Engine) dashboardModel {
	return dashboardModel{store: s, engine: e}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d dashboardModel) refresh() tea.Cmd {
	return func() tea.Msg {
		now := time.Now()
		today, _ := report.Today(d.store, now)
		timers, _ := d.store.ListActiveTimers()
		debt, _ := report.DocumentationDebt(d.store, now)
		return dashboardDataMsg{today: today, timers: timers, debt: debt}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.today = msg.today
		d.timers = msg.timers
		d.debt = msg.debt
		return d, nil
	case tickMsg:
		// Elapsed readouts derive from start times; only a repaint is needed.
		return d, nil
	}
	return d, nil
}

func (d dashboardModel) view() string {
	w := d.width - 4

	sections := []string{
		d.renderToday(),
		"",
		d.renderTimers(),
		"",
		d.renderDebt(),
	}
	return panelStyle.Width(w).Render(strings.Join(sections, "\n"))
}

func (d dashboardModel) renderToday() string {
	title := titleStyle.Render("Today")
	if d.today == nil || d.today.Sessions == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, "",
			mutedStyle.Render("  No time recorded yet today."))
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  %s across %d sessions",
		highlightStyle.Render(formatMinutes(d.today.TotalMinutes)), d.today.Sessions))

	for _, phase := range store.WorkPhases {
		minutes, ok := d.today.ByPhase[phase]
		if !ok || minutes == 0 {
			continue
		}
		rows = append(rows, fmt.Sprintf("  %-18s %s", phase, formatMinutes(minutes)))
	}
	return strings.Join(rows, "\n")
}

func (d dashboardModel) renderTimers() string {
	title := titleStyle.Render("Active Timers")
	if len(d.timers) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, "",
			mutedStyle.Render("  No timers running. Start one from the Tracker tab."))
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for _, t := range d.timers {
		elapsed := timer.FormatDuration(d.engine.ElapsedSince(t.StartTime))
		state := timerRunningStyle.Render("● " + elapsed)
		if t.Status == store.TimerPaused {
			state = timerPausedStyle.Render("⏸ " + elapsed)
		}
		rows = append(rows, fmt.Sprintf("  %s  %-24s %-16s %s",
			state, t.ProjectName, t.Type, mutedStyle.Render(t.Description)))
	}
	return strings.Join(rows, "\n")
}

func (d dashboardModel) renderDebt() string {
	title := titleStyle.Render("Documentation Debt")
	if len(d.debt) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, "",
			successStyle.Render("  Everything is fresh."))
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for _, item := range d.debt {
		age := mutedStyle.Render("never updated")
		if item.Project.LastUpdated != nil {
			days := int(time.Since(*item.Project.LastUpdated).Hours() / 24)
			age = mutedStyle.Render(fmt.Sprintf("%d days old", days))
		}
		rows = append(rows, fmt.Sprintf("  %-10s %-28s %s",
			maintenanceBadge(item.Status), item.Project.Name, age))
	}
	return strings.Join(rows, "\n")
}
