package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/baturay/inkwell/internal/store"
)

var projectStatuses = []string{
	store.ProjectPlanning,
	store.ProjectInProgress,
	store.ProjectReview,
	store.ProjectPublished,
	store.ProjectArchived,
}

var projectPriorities = []string{"low", "medium", "high", "urgent"}

type projectsModel struct {
	store  *store.Store
	width  int
	height int

	projects     []store.Project
	cursor       int
	showArchived bool

	formActive bool
	form       *huh.Form
	editingID  int64 // 0 = creating

	// Form field pointers (survive value copies)
	formName        *string
	formTeam        *string
	formStatus      *string
	formPriority    *string
	formContentType *string
	formVersion     *string
	formDesc        *string
}

func newProjectsModel(s *store.Store) projectsModel {
	name, team, status, priority := "", "", projectStatuses[0], "medium"
	contentType, ver, desc := "", "", ""
	return projectsModel{
		store:           s,
		formName:        &name,
		formTeam:        &team,
		formStatus:      &status,
		formPriority:    &priority,
		formContentType: &contentType,
		formVersion:     &ver,
		formDesc:        &desc,
	}
}

func (p *projectsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p projectsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		projects, _ := p.store.ListProjects(store.ProjectFilter{IncludeArchived: p.showArchived})
		return projectsDataMsg{projects: projects}
	}
}

func (p projectsModel) update(msg tea.Msg) (projectsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case projectsDataMsg:
		p.projects = msg.projects
		if p.cursor >= len(p.projects) {
			p.cursor = max(0, len(p.projects)-1)
		}
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
		case key.Matches(msg, keys.Down):
			if p.cursor < len(p.projects)-1 {
				p.cursor++
			}
		case key.Matches(msg, keys.New):
			return p.showForm(0)
		case key.Matches(msg, keys.Edit):
			if len(p.projects) > 0 {
				return p.showForm(p.projects[p.cursor].ID)
			}
		case key.Matches(msg, keys.Delete):
			if len(p.projects) > 0 {
				p.store.ArchiveProject(p.projects[p.cursor].ID)
				return p, p.refresh()
			}
		case key.Matches(msg, keys.Enter):
			// Mark the selected project freshly updated.
			if len(p.projects) > 0 {
				now := time.Now()
				p.store.UpdateProject(p.projects[p.cursor].ID, store.ProjectUpdate{LastUpdated: &now})
				return p, p.refresh()
			}
		case key.Matches(msg, keys.Left), key.Matches(msg, keys.Right):
			p.showArchived = !p.showArchived
			return p, p.refresh()
		}
	}
	return p, nil
}

func (p projectsModel) showForm(editID int64) (projectsModel, tea.Cmd) {
	teams, err := p.store.ListTeams(false)
	if err != nil || len(teams) == 0 {
		return p, func() tea.Msg {
			return statusMsg{text: "Create a team before adding projects", isError: true}
		}
	}

	p.editingID = editID
	*p.formName = ""
	*p.formTeam = teams[0].Name
	*p.formStatus = projectStatuses[0]
	*p.formPriority = "medium"
	*p.formContentType = ""
	*p.formVersion = ""
	*p.formDesc = ""

	if editID != 0 {
		proj := p.projects[p.cursor]
		*p.formName = proj.Name
		*p.formTeam = proj.Team
		*p.formStatus = proj.Status
		*p.formPriority = proj.Priority
		*p.formContentType = proj.ContentType
		*p.formVersion = proj.Version
		*p.formDesc = proj.Description
	}

	teamOptions := make([]huh.Option[string], len(teams))
	for i, t := range teams {
		teamOptions[i] = huh.NewOption(t.Name, t.Name)
	}
	statusOptions := make([]huh.Option[string], len(projectStatuses))
	for i, s := range projectStatuses {
		statusOptions[i] = huh.NewOption(s, s)
	}
	priorityOptions := make([]huh.Option[string], len(projectPriorities))
	for i, pr := range projectPriorities {
		priorityOptions[i] = huh.NewOption(pr, pr)
	}
	contentOptions := make([]huh.Option[string], 0, len(store.ContentTypes)+1)
	contentOptions = append(contentOptions, huh.NewOption("(none)", ""))
	for _, ct := range store.ContentTypes {
		contentOptions = append(contentOptions, huh.NewOption(ct, ct))
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(p.formName),
			huh.NewSelect[string]().Title("Team").Options(teamOptions...).Value(p.formTeam),
			huh.NewSelect[string]().Title("Status").Options(statusOptions...).Value(p.formStatus),
			huh.NewSelect[string]().Title("Priority").Options(priorityOptions...).Value(p.formPriority),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Content Type").Options(contentOptions...).Value(p.formContentType),
			huh.NewInput().Title("Doc Version").Value(p.formVersion),
			huh.NewInput().Title("Description").Value(p.formDesc),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p projectsModel) updateForm(msg tea.Msg) (projectsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		if *p.formName != "" {
			if p.editingID == 0 {
				p.store.CreateProject(store.Project{
					Name:        *p.formName,
					Team:        *p.formTeam,
					Status:      *p.formStatus,
					Priority:    *p.formPriority,
					ContentType: *p.formContentType,
					Version:     *p.formVersion,
					Description: *p.formDesc,
				})
			} else {
				p.store.UpdateProject(p.editingID, store.ProjectUpdate{
					Name:        p.formName,
					Team:        p.formTeam,
					Status:      p.formStatus,
					Priority:    p.formPriority,
					ContentType: p.formContentType,
					Version:     p.formVersion,
					Description: p.formDesc,
				})
			}
		}
		return p, p.refresh()
	}

	return p, cmd
}

func (p projectsModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Project")
		if p.editingID != 0 {
			title = titleStyle.Render("Edit Project")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Projects")
	if p.showArchived {
		title += mutedStyle.Render("  (including archived)")
	}

	if len(p.projects) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No projects yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-26s %-16s %-12s %-10s %s",
		"Name", "Team", "Status", "Freshness", "Content"))
	rows = append(rows, header)

	for i, proj := range p.projects {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		// Maintenance badge carries its own style, so it sits outside the row style.
		row := style.Render(fmt.Sprintf("%s%-26s %-16s %-12s ", cursor, proj.Name, proj.Team, proj.Status)) +
			maintenanceBadge(proj.MaintenanceStatus) + mutedStyle.Render("  "+proj.ContentType)
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: archive  enter: mark updated  ←/→: toggle archived"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
