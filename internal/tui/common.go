package tui

import (
	"time"

	"github.com/baturay/inkwell/internal/backup"
	"github.com/baturay/inkwell/internal/report"
	"github.com/baturay/inkwell/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewTracker
	viewProjects
	viewTeams
	viewWeekly
	viewSettings
)

var viewNames = []string{"Dashboard", "Tracker", "Projects", "Teams", "Weekly", "Settings"}

// --- Messages ---

type tickMsg time.Time

type statusMsg struct {
	text    string
	isError bool
}

type dashboardDataMsg struct {
	today  *report.DayStats
	timers []store.ActiveTimer
	debt   []report.DebtItem
}

type timersDataMsg struct {
	timers []store.ActiveTimer
}

type projectsDataMsg struct {
	projects []store.Project
}

type teamsDataMsg struct {
	teams []report.TeamStat
}

type weeklyDataMsg struct {
	stats     *report.WeekStats
	summaries []store.WeeklySummary
}

type backupDoneMsg struct {
	path string
}

type importPreviewMsg struct {
	preview *backup.Preview
	path    string
}

type importDoneMsg struct{}

// --- Helpers ---

func formatMinutes(minutes int64) string {
	return report.FormatMinutes(minutes)
}

func maintenanceBadge(status string) string {
	switch status {
	case store.MaintenanceCurrent:
		return successStyle.Render("current")
	case store.MaintenanceStale:
		return warningStyle.Render("stale")
	case store.MaintenanceOutdated:
		return accentStyle.Render("outdated")
	case store.MaintenanceCritical:
		return errorStyle.Render("critical")
	default:
		return mutedStyle.Render("-")
	}
}

func teamColorStyle(color string) string {
	switch color {
	case "blue":
		return "#3498DB"
	case "green":
		return "#2ECC71"
	case "purple":
		return "#9B59B6"
	case "red":
		return "#E74C3C"
	case "orange":
		return "#F39C12"
	case "teal":
		return "#2EC4B6"
	default:
		return "#6C63FF"
	}
}
