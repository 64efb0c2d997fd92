package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/baturay/inkwell/internal/store"
	"github.com/baturay/inkwell/internal/timer"
	"github.com/baturay/inkwell/internal/version"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	engine *timer.Engine
	notes  *channelNotifier
	width  int
	height int

	activeView viewState
	showHelp   bool

	dashboard dashboardModel
	tracker   trackerModel
	projects  projectsModel
	teams     teamsModel
	weekly    weeklyModel
	settings  settingsModel

	help   help.Model
	status string
	isErr  bool
}

// NewApp wires the views. The engine's notifier must be the one returned by
// NewNotifier so status messages reach the UI.
func NewApp(s *store.Store, engine *timer.Engine, notes *channelNotifier) App {
	h := help.New()
	h.ShowAll = false

	return App{
		store:      s,
		engine:     engine,
		notes:      notes,
		activeView: viewDashboard,
		dashboard:  newDashboardModel(s, engine),
		tracker:    newTrackerModel(s, engine),
		projects:   newProjectsModel(s),
		teams:      newTeamsModel(s),
		weekly:     newWeeklyModel(s),
		settings:   newSettingsModel(s),
		help:       h,
	}
}

// NewNotifier returns the notifier to hand to timer.New before calling
// NewApp.
func NewNotifier() *channelNotifier {
	return newChannelNotifier()
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.dashboard.refresh(),
		a.notes.wait(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.tracker.setSize(a.width, contentHeight)
		a.projects.setSize(a.width, contentHeight)
		a.teams.setSize(a.width, contentHeight)
		a.weekly.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// A child form owns the keyboard while it is open.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewDashboard
			return a, a.dashboard.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTracker
			return a, a.tracker.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewProjects
			return a, a.projects.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewTeams
			return a, a.teams.refresh()
		case key.Matches(msg, keys.Tab5):
			a.activeView = viewWeekly
			return a, a.weekly.refresh()
		case key.Matches(msg, keys.Tab6):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 6
			return a, a.refreshCurrentView()
		}

	case tickMsg:
		var cmds []tea.Cmd
		cmds = append(cmds, tickCmd())
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		a.tracker, cmd = a.tracker.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.isErr = msg.isError
		return a, a.notes.wait()
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewTracker:
		a.tracker, cmd = a.tracker.update(msg)
	case viewProjects:
		a.projects, cmd = a.projects.update(msg)
	case viewTeams:
		a.teams, cmd = a.teams.update(msg)
	case viewWeekly:
		a.weekly, cmd = a.weekly.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTracker:
		return a.tracker.formActive
	case viewProjects:
		return a.projects.formActive
	case viewTeams:
		return a.teams.formActive
	case viewSettings:
		return a.settings.capturing()
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.refresh()
	case viewTracker:
		return a.tracker.refresh()
	case viewProjects:
		return a.projects.refresh()
	case viewTeams:
		return a.teams.refresh()
	case viewWeekly:
		return a.weekly.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewTracker:
		content = a.tracker.view()
	case viewProjects:
		content = a.projects.view()
	case viewTeams:
		content = a.teams.view()
	case viewWeekly:
		content = a.weekly.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render(version.AppName)
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.isErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Running-timer count in the footer, visible from any view.
	timerInfo := ""
	if n := a.tracker.runningCount(); n > 0 {
		timerInfo = timerRunningStyle.Render(fmt.Sprintf(" ● %d running", n))
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}
