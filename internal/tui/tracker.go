package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/baturay/inkwell/internal/store"
	"github.com/baturay/inkwell/internal/timer"
)

type trackerModel struct {
	store  *store.Store
	engine *timer.Engine
	width  int
	height int

	timers []store.ActiveTimer
	cursor int

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formProject     *string
	formPhase       *string
	formContentType *string
	formDesc        *string
}

func newTrackerModel(s *store.Store, e *timer.Engine) trackerModel {
	project, phase, contentType, desc := "", store.WorkPhases[0], "", ""
	return trackerModel{
		store:           s,
		engine:          e,
		formProject:     &project,
		formPhase:       &phase,
		formContentType: &contentType,
		formDesc:        &desc,
	}
}

func (t *trackerModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t trackerModel) refresh() tea.Cmd {
	return func() tea.Msg {
		timers, _ := t.store.ListActiveTimers()
		return timersDataMsg{timers: timers}
	}
}

func (t trackerModel) runningCount() int {
	n := 0
	for _, at := range t.timers {
		if at.Status == store.TimerActive {
			n++
		}
	}
	return n
}

func (t trackerModel) update(msg tea.Msg) (trackerModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case timersDataMsg:
		t.timers = msg.timers
		if t.cursor >= len(t.timers) {
			t.cursor = max(0, len(t.timers)-1)
		}
		return t, nil

	case tickMsg:
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if t.cursor > 0 {
				t.cursor--
			}
		case key.Matches(msg, keys.Down):
			if t.cursor < len(t.timers)-1 {
				t.cursor++
			}
		case key.Matches(msg, keys.Start), key.Matches(msg, keys.New):
			return t.showStartForm()
		case key.Matches(msg, keys.Pause):
			if len(t.timers) > 0 {
				at := t.timers[t.cursor]
				if at.Status == store.TimerPaused {
					t.engine.Resume(at.ID)
				} else {
					t.engine.Pause(at.ID)
				}
				return t, t.refresh()
			}
		case key.Matches(msg, keys.Stop):
			if len(t.timers) > 0 {
				t.engine.Stop(t.timers[t.cursor].ID)
				return t, t.refresh()
			}
		case key.Matches(msg, keys.Delete):
			if len(t.timers) > 0 {
				t.engine.Discard(t.timers[t.cursor].ID)
				return t, t.refresh()
			}
		}
	}
	return t, nil
}

func (t trackerModel) showStartForm() (trackerModel, tea.Cmd) {
	projects, err := t.store.ListProjects(store.ProjectFilter{})
	if err != nil || len(projects) == 0 {
		return t, func() tea.Msg {
			return statusMsg{text: "Create a project before starting a timer", isError: true}
		}
	}

	projectOptions := make([]huh.Option[string], len(projects))
	for i, p := range projects {
		projectOptions[i] = huh.NewOption(fmt.Sprintf("%s (%s)", p.Name, p.Team), fmt.Sprint(p.ID))
	}
	phaseOptions := make([]huh.Option[string], len(store.WorkPhases))
	for i, phase := range store.WorkPhases {
		phaseOptions[i] = huh.NewOption(phase, phase)
	}
	contentOptions := make([]huh.Option[string], 0, len(store.ContentTypes)+1)
	contentOptions = append(contentOptions, huh.NewOption("(none)", ""))
	for _, ct := range store.ContentTypes {
		contentOptions = append(contentOptions, huh.NewOption(ct, ct))
	}

	*t.formProject = fmt.Sprint(projects[0].ID)
	*t.formPhase = store.WorkPhases[0]
	*t.formContentType = ""
	*t.formDesc = ""

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Project").Options(projectOptions...).Value(t.formProject),
			huh.NewSelect[string]().Title("Work Phase").Options(phaseOptions...).Value(t.formPhase),
			huh.NewSelect[string]().Title("Content Type").Options(contentOptions...).Value(t.formContentType),
			huh.NewInput().Title("Description").Value(t.formDesc),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t trackerModel) updateForm(msg tea.Msg) (trackerModel, tea.Cmd) {
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
		var projectID int64
		fmt.Sscan(*t.formProject, &projectID)
		t.engine.Start(*t.formPhase, projectID, *t.formDesc, *t.formContentType)
		return t, t.refresh()
	}

	return t, cmd
}

func (t trackerModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		title := titleStyle.Render("Start Timer")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", t.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Time Tracker")

	if len(t.timers) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No timers running. Press s to start one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-11s %-24s %-16s %-14s %s",
		"Elapsed", "Project", "Phase", "Content", "Description"))
	rows = append(rows, header)

	for i, at := range t.timers {
		elapsed := timer.FormatDuration(t.engine.ElapsedSince(at.StartTime))
		state := timerRunningStyle.Render("● " + elapsed)
		if at.Status == store.TimerPaused {
			state = timerPausedStyle.Render("⏸ " + elapsed)
		}
		cursor := "  "
		style := normalItemStyle
		if i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, cursor+state+style.Render(fmt.Sprintf(" %-24s %-16s %-14s %s",
			at.ProjectName, at.Type, at.ContentType, at.Description)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  s: start  space: pause/resume  x: stop  d: discard"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
