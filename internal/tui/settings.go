package tui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/baturay/inkwell/internal/backup"
	"github.com/baturay/inkwell/internal/store"
)

type settingsMode int

const (
	settingsIdle settingsMode = iota
	settingsImportPath
	settingsImportConfirm
	settingsClearConfirm
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	mode    settingsMode
	form    *huh.Form
	preview *backup.Preview

	lastBackup string
	theme      string
	counts     map[store.Collection]int

	// Form field pointers (survive value copies)
	importPath    *string
	confirmImport *bool
	restoreTimers *bool
	confirmClear  *bool
	formTheme     *string
}

func newSettingsModel(s *store.Store) settingsModel {
	path, theme := "", "dark"
	ci, rt, cc := false, false, false
	return settingsModel{
		store:         s,
		importPath:    &path,
		confirmImport: &ci,
		restoreTimers: &rt,
		confirmClear:  &cc,
		formTheme:     &theme,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) capturing() bool {
	return s.mode != settingsIdle
}

type settingsDataMsg struct {
	lastBackup string
	theme      string
	counts     map[store.Collection]int
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		last, _ := s.store.GetPreference(store.PrefLastBackupDate)
		theme, err := s.store.GetPreference(store.PrefTheme)
		if err != nil {
			theme = "dark"
		}
		counts, _ := s.store.Counts()
		return settingsDataMsg{lastBackup: last, theme: theme, counts: counts}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.mode != settingsIdle && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.lastBackup = msg.lastBackup
		s.theme = msg.theme
		s.counts = msg.counts
		return s, nil

	case importPreviewMsg:
		s.preview = msg.preview
		return s.showImportConfirm()

	case importDoneMsg:
		return s, s.refresh()

	case backupDoneMsg:
		return s, tea.Batch(s.refresh(), func() tea.Msg {
			return statusMsg{text: "Backup written to " + msg.path}
		})

	case tea.KeyMsg:
		switch msg.String() {
		case "b":
			return s, s.doExport()
		case "i":
			return s.showImportPathForm()
		case "t":
			return s.toggleTheme()
		case "C":
			return s.showClearConfirm()
		}
	}
	return s, nil
}

func (s settingsModel) toggleTheme() (settingsModel, tea.Cmd) {
	next := "dark"
	if s.theme == "dark" {
		next = "light"
	}
	s.store.SetPreference(store.PrefTheme, next)
	return s, s.refresh()
}

func (s settingsModel) doExport() tea.Cmd {
	return func() tea.Msg {
		home, err := os.UserHomeDir()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Backup error: %v", err), isError: true}
		}
		path, err := backup.ExportToFile(s.store, home)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Backup error: %v", err), isError: true}
		}
		return backupDoneMsg{path: path}
	}
}

func (s settingsModel) showImportPathForm() (settingsModel, tea.Cmd) {
	*s.importPath = ""
	s.mode = settingsImportPath
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Backup file path").Value(s.importPath),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return s, s.form.Init()
}

func (s settingsModel) showImportConfirm() (settingsModel, tea.Cmd) {
	*s.confirmImport = false
	*s.restoreTimers = false
	s.mode = settingsImportConfirm
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Replace ALL current data with this backup?").
				Value(s.confirmImport),
			huh.NewConfirm().
				Title("Restore the backup's running timers (they come back paused)?").
				Value(s.restoreTimers),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return s, s.form.Init()
}

func (s settingsModel) showClearConfirm() (settingsModel, tea.Cmd) {
	*s.confirmClear = false
	s.mode = settingsClearConfirm
	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete ALL data? This cannot be undone.").
				Value(s.confirmClear),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.mode = settingsIdle
			s.form = nil
			s.preview = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		mode := s.mode
		s.mode = settingsIdle
		s.form = nil

		switch mode {
		case settingsImportPath:
			path := strings.TrimSpace(*s.importPath)
			if path == "" {
				return s, nil
			}
			return s, func() tea.Msg {
				preview, err := backup.ValidateFile(path)
				if err != nil {
					return statusMsg{text: fmt.Sprintf("Invalid backup: %v", err), isError: true}
				}
				return importPreviewMsg{preview: preview, path: path}
			}

		case settingsImportConfirm:
			preview := s.preview
			s.preview = nil
			if preview == nil || !*s.confirmImport {
				return s, func() tea.Msg { return statusMsg{text: "Import cancelled"} }
			}
			restore := *s.restoreTimers
			return s, func() tea.Msg {
				err := backup.Import(s.store, preview.Doc, backup.Options{RestoreActiveTimers: restore})
				if err != nil {
					return statusMsg{text: fmt.Sprintf("Import failed, data unchanged: %v", err), isError: true}
				}
				return importDoneMsg{}
			}

		case settingsClearConfirm:
			if !*s.confirmClear {
				return s, nil
			}
			if err := s.store.ClearAll(); err != nil {
				return s, func() tea.Msg {
					return statusMsg{text: fmt.Sprintf("Clear failed: %v", err), isError: true}
				}
			}
			return s, tea.Batch(s.refresh(), func() tea.Msg {
				return statusMsg{text: "All data cleared"}
			})
		}
	}

	return s, cmd
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.mode != settingsIdle && s.form != nil {
		title := titleStyle.Render("Settings")
		body := s.form.View()
		if s.mode == settingsImportConfirm && s.preview != nil {
			body = s.renderPreview() + "\n\n" + body
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", body),
		)
	}

	title := titleStyle.Render("Settings")

	last := "never"
	if s.lastBackup != "" {
		last = s.lastBackup
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  %-18s %s", "Theme", highlightStyle.Render(s.theme)))
	rows = append(rows, fmt.Sprintf("  %-18s %s", "Last backup", highlightStyle.Render(last)))
	rows = append(rows, "")

	if s.counts != nil {
		rows = append(rows, mutedStyle.Render("  Stored records:"))
		for _, c := range []store.Collection{
			store.CollectionTimeBlocks, store.CollectionProjects, store.CollectionTeams,
			store.CollectionActiveTimers, store.CollectionWeeklySummaries, store.CollectionPreferences,
		} {
			rows = append(rows, fmt.Sprintf("    %-18s %d", string(c), s.counts[c]))
		}
		rows = append(rows, "")
	}

	rows = append(rows, mutedStyle.Render("  b: backup  i: import  t: toggle theme  C: clear all data"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (s settingsModel) renderPreview() string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  Backup version %s", s.preview.Doc.Version)))
	for _, c := range []store.Collection{
		store.CollectionTimeBlocks, store.CollectionProjects, store.CollectionTeams,
		store.CollectionActiveTimers, store.CollectionWeeklySummaries, store.CollectionPreferences,
	} {
		rows = append(rows, fmt.Sprintf("    %-18s %d", string(c), s.preview.Counts[c]))
	}
	if s.preview.Warning != "" {
		rows = append(rows, warningStyle.Render("  "+s.preview.Warning))
	}
	return strings.Join(rows, "\n")
}
