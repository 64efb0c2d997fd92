// Package report computes the dashboard and weekly summary aggregates.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/baturay/inkwell/internal/store"
)

// WeekRange returns the Monday 00:00 start and the following Monday 00:00
// for the week containing now, in now's location.
func WeekRange(now time.Time) (time.Time, time.Time) {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	year, month, day := now.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -(weekday - 1))
	return start, start.AddDate(0, 0, 7)
}

// DayRange returns midnight-to-midnight bounds for the day containing now.
func DayRange(now time.Time) (time.Time, time.Time) {
	year, month, day := now.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// DayStats is a single day's recorded work.
type DayStats struct {
	TotalMinutes int64
	Sessions     int
	ByPhase      map[string]int64
}

// Today aggregates completed blocks for the day containing now.
func Today(s *store.Store, now time.Time) (*DayStats, error) {
	from, to := DayRange(now)
	byPhase, err := s.PhaseTotals(from, to)
	if err != nil {
		return nil, err
	}
	sessions, err := s.CompletedSessions(from, to)
	if err != nil {
		return nil, err
	}
	stats := &DayStats{Sessions: sessions, ByPhase: byPhase}
	for _, m := range byPhase {
		stats.TotalMinutes += m
	}
	return stats, nil
}

// WeekStats is one week's recorded work plus per-project breakdown.
type WeekStats struct {
	WeekStart    time.Time
	WeekEnd      time.Time
	TotalMinutes int64
	Sessions     int
	ByPhase      map[string]int64
	Projects     []store.ProjectTotal
}

// Week aggregates completed blocks for the week containing now.
func Week(s *store.Store, now time.Time) (*WeekStats, error) {
	from, to := WeekRange(now)
	byPhase, err := s.PhaseTotals(from, to)
	if err != nil {
		return nil, err
	}
	sessions, err := s.CompletedSessions(from, to)
	if err != nil {
		return nil, err
	}
	projects, err := s.ProjectTotals(from, to)
	if err != nil {
		return nil, err
	}
	stats := &WeekStats{
		WeekStart: from,
		WeekEnd:   to.AddDate(0, 0, -1),
		Sessions:  sessions,
		ByPhase:   byPhase,
		Projects:  projects,
	}
	for _, m := range byPhase {
		stats.TotalMinutes += m
	}
	return stats, nil
}

// TeamStat is one team's workload summary.
type TeamStat struct {
	Team           store.Team
	ActiveProjects int
	TotalProjects  int
	RecentMinutes  int64
}

// Teams summarizes every non-archived team: project counts and minutes
// recorded in the last 30 days.
func Teams(s *store.Store, now time.Time) ([]TeamStat, error) {
	teams, err := s.ListTeams(false)
	if err != nil {
		return nil, err
	}
	from := now.AddDate(0, 0, -30)

	var stats []TeamStat
	for _, team := range teams {
		all, err := s.ListProjects(store.ProjectFilter{Team: team.Name, IncludeArchived: true})
		if err != nil {
			return nil, err
		}
		active := 0
		for _, p := range all {
			if p.Status != store.ProjectArchived && p.Status != store.ProjectPublished {
				active++
			}
		}
		minutes, err := s.TeamMinutes(team.Name, from, now)
		if err != nil {
			return nil, err
		}
		stats = append(stats, TeamStat{
			Team:           team,
			ActiveProjects: active,
			TotalProjects:  len(all),
			RecentMinutes:  minutes,
		})
	}
	return stats, nil
}

// DebtItem is a project needing maintenance attention.
type DebtItem struct {
	Project store.Project
	Status  string
}

// DocumentationDebt lists non-archived projects whose freshness, recomputed
// against now rather than the cached value, is outdated or critical. Worst
// first.
func DocumentationDebt(s *store.Store, now time.Time) ([]DebtItem, error) {
	projects, err := s.ListProjects(store.ProjectFilter{})
	if err != nil {
		return nil, err
	}
	var items []DebtItem
	for _, p := range projects {
		status := store.ComputeMaintenanceStatus(p.LastUpdated, now)
		if status == store.MaintenanceOutdated || status == store.MaintenanceCritical {
			items = append(items, DebtItem{Project: p, Status: status})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Status == store.MaintenanceCritical &&
			items[j].Status != store.MaintenanceCritical
	})
	return items, nil
}

// EmailSummary renders a week's stats as a plain-text status update ready
// to paste into an email.
func EmailSummary(w *WeekStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Weekly Summary: %s - %s\n\n",
		w.WeekStart.Format("Jan 2"), w.WeekEnd.Format("Jan 2, 2006"))
	fmt.Fprintf(&b, "Total time: %s across %d sessions\n\n",
		FormatMinutes(w.TotalMinutes), w.Sessions)

	if len(w.ByPhase) > 0 {
		b.WriteString("By phase:\n")
		phases := make([]string, 0, len(w.ByPhase))
		for phase := range w.ByPhase {
			phases = append(phases, phase)
		}
		sort.Slice(phases, func(i, j int) bool {
			return w.ByPhase[phases[i]] > w.ByPhase[phases[j]]
		})
		for _, phase := range phases {
			fmt.Fprintf(&b, "  - %s: %s\n", phase, FormatMinutes(w.ByPhase[phase]))
		}
		b.WriteString("\n")
	}

	if len(w.Projects) > 0 {
		b.WriteString("By project:\n")
		for _, p := range w.Projects {
			fmt.Fprintf(&b, "  - %s (%s): %s\n", p.ProjectName, p.ProjectTeam, FormatMinutes(p.Minutes))
		}
	}
	return b.String()
}

// SaveWeek archives the rendered summary for the week containing now.
func SaveWeek(s *store.Store, now time.Time) (int64, error) {
	stats, err := Week(s, now)
	if err != nil {
		return 0, err
	}
	return s.CreateWeeklySummary(stats.WeekStart, stats.WeekEnd, EmailSummary(stats))
}

// FormatMinutes renders minutes as "3h 25m", dropping zero components.
func FormatMinutes(minutes int64) string {
	h := minutes / 60
	m := minutes % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}
