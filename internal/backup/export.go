// Package backup reads and writes full-database JSON backups. The format is
// versioned; documents older than the current format are upgraded during
// import.
package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/baturay/inkwell/internal/store"
	"github.com/baturay/inkwell/internal/version"
)

// FormatVersion is the backup document version this build writes.
const FormatVersion = "2.0"

// Collections holds every exported record collection.
type Collections struct {
	TimeBlocks      []store.TimeBlock     `json:"timeBlocks"`
	Projects        []store.Project       `json:"projects"`
	Teams           []store.Team          `json:"teams"`
	ActiveTimers    []store.ActiveTimer   `json:"activeTimers"`
	Preferences     []store.Preference    `json:"preferences"`
	WeeklySummaries []store.WeeklySummary `json:"weeklySummaries"`
}

// LocalSettings carries the display settings stored outside the record
// collections.
type LocalSettings struct {
	Theme          string `json:"theme,omitempty"`
	LastBackupDate string `json:"lastBackupDate,omitempty"`
}

// Document is a complete backup file.
type Document struct {
	Version          string        `json:"version"`
	ExportDate       time.Time     `json:"exportDate"`
	AppVersion       string        `json:"appVersion"`
	Data             Collections   `json:"data"`
	LocalStorageData LocalSettings `json:"localStorageData"`
}

// Export assembles a backup document from the full store contents and
// records the backup date preference.
func Export(s *store.Store) (*Document, error) {
	blocks, err := s.ListTimeBlocks(store.BlockFilter{})
	if err != nil {
		return nil, fmt.Errorf("export time blocks: %w", err)
	}
	projects, err := s.ListProjects(store.ProjectFilter{IncludeArchived: true})
	if err != nil {
		return nil, fmt.Errorf("export projects: %w", err)
	}
	teams, err := s.ListTeams(true)
	if err != nil {
		return nil, fmt.Errorf("export teams: %w", err)
	}
	timers, err := s.ListActiveTimers()
	if err != nil {
		return nil, fmt.Errorf("export active timers: %w", err)
	}
	prefs, err := s.ListPreferences()
	if err != nil {
		return nil, fmt.Errorf("export preferences: %w", err)
	}
	summaries, err := s.ListWeeklySummaries()
	if err != nil {
		return nil, fmt.Errorf("export weekly summaries: %w", err)
	}

	now := time.Now().UTC()
	doc := &Document{
		Version:    FormatVersion,
		ExportDate: now,
		AppVersion: version.Version,
		Data: Collections{
			TimeBlocks:      blocks,
			Projects:        projects,
			Teams:           teams,
			ActiveTimers:    timers,
			Preferences:     prefs,
			WeeklySummaries: summaries,
		},
	}
	for _, p := range prefs {
		switch p.Key {
		case store.PrefTheme:
			doc.LocalStorageData.Theme = p.Value
		case store.PrefLastBackupDate:
			doc.LocalStorageData.LastBackupDate = p.Value
		}
	}

	backupDate := now.Format(time.RFC3339)
	doc.LocalStorageData.LastBackupDate = backupDate
	if err := s.SetPreference(store.PrefLastBackupDate, backupDate); err != nil {
		return nil, fmt.Errorf("record backup date: %w", err)
	}
	return doc, nil
}

// Write serializes a document as indented JSON.
func Write(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// ExportToFile writes a backup into dir with the dated default name and
// returns the full path.
func ExportToFile(s *store.Store, dir string) (string, error) {
	doc, err := Export(s)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(doc.ExportDate))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close()
	if err := Write(f, doc); err != nil {
		return "", err
	}
	return path, nil
}

// FileName returns the conventional backup file name for a given date.
func FileName(t time.Time) string {
	return fmt.Sprintf("%s-backup-%s.json", version.AppName, t.Format("2006-01-02"))
}
