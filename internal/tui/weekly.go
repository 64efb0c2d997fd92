package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/baturay/inkwell/internal/report"
	"github.com/baturay/inkwell/internal/store"
)

type weeklyModel struct {
	store  *store.Store
	width  int
	height int

	offset    int // weeks back from the current week (0 = this week)
	stats     *report.WeekStats
	summaries []store.WeeklySummary

	chart barchart.Model
}

func newWeeklyModel(s *store.Store) weeklyModel {
	return weeklyModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (m *weeklyModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m weeklyModel) weekAnchor() time.Time {
	return time.Now().AddDate(0, 0, -7*m.offset)
}

func (m weeklyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		stats, _ := report.Week(m.store, m.weekAnchor())
		summaries, _ := m.store.ListWeeklySummaries()
		return weeklyDataMsg{stats: stats, summaries: summaries}
	}
}

func (m weeklyModel) update(msg tea.Msg) (weeklyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case weeklyDataMsg:
		m.stats = msg.stats
		m.summaries = msg.summaries
		m.buildChart()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			m.offset++
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			if m.offset > 0 {
				m.offset--
			}
			return m, m.refresh()
		case key.Matches(msg, keys.Save):
			return m, m.saveSummary()
		}
	}
	return m, nil
}

func (m weeklyModel) saveSummary() tea.Cmd {
	return func() tea.Msg {
		if _, err := report.SaveWeek(m.store, m.weekAnchor()); err != nil {
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		return statusMsg{text: "Weekly summary saved"}
	}
}

func (m *weeklyModel) buildChart() {
	chartWidth := m.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if m.height > 30 {
		chartHeight = 14
	}

	m.chart = barchart.New(chartWidth, chartHeight)

	if m.stats == nil {
		return
	}

	phaseStyles := []lipgloss.Style{
		successStyle, highlightStyle, warningStyle, accentStyle, errorStyle, mutedStyle,
	}

	var bars []barchart.BarData
	for i, phase := range store.WorkPhases {
		hours := float64(m.stats.ByPhase[phase]) / 60.0
		style := phaseStyles[i%len(phaseStyles)]
		bars = append(bars, barchart.BarData{
			Label: shortPhase(phase),
			Values: []barchart.BarValue{
				{Name: phase, Value: hours, Style: style},
			},
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func shortPhase(phase string) string {
	switch phase {
	case "review-editing":
		return "review"
	case "version-updates":
		return "versions"
	case "publishing":
		return "publish"
	case "maintenance":
		return "maint"
	default:
		return phase
	}
}

func (m weeklyModel) view() string {
	w := m.width - 4

	if m.stats == nil {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading..."))
	}

	dateLabel := mutedStyle.Render(fmt.Sprintf("%s — %s",
		m.stats.WeekStart.Format("Jan 02"), m.stats.WeekEnd.Format("Jan 02, 2006")))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Weekly Summary"), "  ", dateLabel,
	)

	total := fmt.Sprintf("  %s across %d sessions (hours per phase below)",
		highlightStyle.Render(formatMinutes(m.stats.TotalMinutes)), m.stats.Sessions)

	chartView := m.chart.View()
	tableView := m.renderProjectTable(w)
	savedView := m.renderSaved()

	nav := mutedStyle.Render("  ←/→: navigate weeks  w: save summary")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", total, "", chartView, "", tableView, "", savedView, "", nav,
		),
	)
}

func (m weeklyModel) renderProjectTable(w int) string {
	if len(m.stats.Projects) == 0 {
		return mutedStyle.Render("  No time recorded this week")
	}

	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-26s %-16s %10s %8s", "Project", "Team", "Time", "Blocks"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 62))))

	for _, p := range m.stats.Projects {
		rows = append(rows, fmt.Sprintf("  %-26s %-16s %10s %8d",
			p.ProjectName, p.ProjectTeam, formatMinutes(p.Minutes), p.Blocks))
	}

	return strings.Join(rows, "\n")
}

func (m weeklyModel) renderSaved() string {
	if len(m.summaries) == 0 {
		return ""
	}
	shown := m.summaries
	if len(shown) > 3 {
		shown = shown[:3]
	}
	var rows []string
	rows = append(rows, mutedStyle.Render("  Saved summaries:"))
	for _, ws := range shown {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("   - week of %s (saved %s)",
			ws.WeekStart.Format("Jan 02"), ws.CreatedAt.Format("Jan 02"))))
	}
	return strings.Join(rows, "\n")
}
