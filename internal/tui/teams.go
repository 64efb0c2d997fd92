package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/baturay/inkwell/internal/report"
	"github.com/baturay/inkwell/internal/store"
)

var teamColors = []string{"blue", "green", "purple", "red", "orange", "teal"}

type teamsModel struct {
	store  *store.Store
	width  int
	height int

	stats  []report.TeamStat
	cursor int

	formActive bool
	form       *huh.Form
	editingID  int64

	// Form field pointers (survive value copies)
	formName  *string
	formLead  *string
	formColor *string
	formDesc  *string
}

func newTeamsModel(s *store.Store) teamsModel {
	name, lead, color, desc := "", "", teamColors[0], ""
	return teamsModel{
		store:     s,
		formName:  &name,
		formLead:  &lead,
		formColor: &color,
		formDesc:  &desc,
	}
}

func (t *teamsModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t teamsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		stats, _ := report.Teams(t.store, time.Now())
		return teamsDataMsg{teams: stats}
	}
}

func (t teamsModel) update(msg tea.Msg) (teamsModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case teamsDataMsg:
		t.stats = msg.teams
		if t.cursor >= len(t.stats) {
			t.cursor = max(0, len(t.stats)-1)
		}
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if t.cursor > 0 {
				t.cursor--
			}
		case key.Matches(msg, keys.Down):
			if t.cursor < len(t.stats)-1 {
				t.cursor++
			}
		case key.Matches(msg, keys.New):
			return t.showForm(0)
		case key.Matches(msg, keys.Edit):
			if len(t.stats) > 0 {
				return t.showForm(t.stats[t.cursor].Team.ID)
			}
		case key.Matches(msg, keys.Delete):
			if len(t.stats) > 0 {
				t.store.ArchiveTeam(t.stats[t.cursor].Team.ID)
				return t, t.refresh()
			}
		}
	}
	return t, nil
}

func (t teamsModel) showForm(editID int64) (teamsModel, tea.Cmd) {
	t.editingID = editID
	*t.formName = ""
	*t.formLead = ""
	*t.formColor = teamColors[0]
	*t.formDesc = ""

	if editID != 0 {
		team := t.stats[t.cursor].Team
		*t.formName = team.Name
		*t.formLead = team.Lead
		*t.formColor = team.Color
		*t.formDesc = team.Description
	}

	colorOptions := make([]huh.Option[string], len(teamColors))
	for i, c := range teamColors {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(teamColorStyle(c))).Render("●")
		colorOptions[i] = huh.NewOption(fmt.Sprintf("%s %s", dot, c), c)
	}

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Team Name").Value(t.formName),
			huh.NewInput().Title("Lead").Value(t.formLead),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(t.formColor),
			huh.NewInput().Title("Description").Value(t.formDesc),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t teamsModel) updateForm(msg tea.Msg) (teamsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		if *t.formName != "" {
			if t.editingID == 0 {
				t.store.CreateTeam(store.Team{
					Name:        *t.formName,
					Lead:        *t.formLead,
					Color:       *t.formColor,
					Description: *t.formDesc,
				})
			} else {
				t.store.UpdateTeam(t.editingID, store.TeamUpdate{
					Name:        t.formName,
					Lead:        t.formLead,
					Color:       t.formColor,
					Description: t.formDesc,
				})
			}
		}
		return t, t.refresh()
	}

	return t, cmd
}

func (t teamsModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		title := titleStyle.Render("New Team")
		if t.editingID != 0 {
			title = titleStyle.Render("Edit Team")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", t.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Teams")

	if len(t.stats) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No teams yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-20s %-16s %8s %8s %12s",
		"", "Name", "Lead", "Active", "Total", "Last 30d"))
	rows = append(rows, header)

	for i, stat := range t.stats {
		dot := lipgloss.NewStyle().
			Foreground(lipgloss.Color(teamColorStyle(stat.Team.Color))).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, cursor+dot+style.Render(fmt.Sprintf(" %-20s %-16s %8d %8d %12s",
			stat.Team.Name, stat.Team.Lead, stat.ActiveProjects, stat.TotalProjects,
			formatMinutes(stat.RecentMinutes))))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: archive"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
