package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/baturay/inkwell/internal/store"
)

// Options controls import behavior.
type Options struct {
	// RestoreActiveTimers restores the backup's running timers. They come
	// back paused regardless of the status they were exported with.
	RestoreActiveTimers bool
}

// Preview is the result of validating a backup document before import.
type Preview struct {
	Doc     *Document
	Counts  map[store.Collection]int
	Warning string
}

// rawDocument mirrors Document with presence-checkable fields so structural
// problems are reported before any typed decoding.
type rawDocument struct {
	Version    *string         `json:"version"`
	ExportDate json.RawMessage `json:"exportDate"`
	Data       json.RawMessage `json:"data"`
}

type rawCollections struct {
	TimeBlocks json.RawMessage `json:"timeBlocks"`
	Projects   json.RawMessage `json:"projects"`
}

// Validate parses and structurally checks a backup. The document must have
// a version, an export date, a data object, and array-valued timeBlocks and
// projects collections. Documents written by a newer app produce a warning,
// not an error.
func Validate(r io.Reader) (*Preview, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}

	var raw rawDocument
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: not a valid backup file: %v", store.ErrValidation, err)
	}
	if raw.Version == nil || *raw.Version == "" {
		return nil, fmt.Errorf("%w: backup has no version", store.ErrValidation)
	}
	if len(raw.ExportDate) == 0 || string(raw.ExportDate) == "null" {
		return nil, fmt.Errorf("%w: backup has no export date", store.ErrValidation)
	}
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return nil, fmt.Errorf("%w: backup has no data section", store.ErrValidation)
	}

	var rawData rawCollections
	if err := json.Unmarshal(raw.Data, &rawData); err != nil {
		return nil, fmt.Errorf("%w: malformed data section: %v", store.ErrValidation, err)
	}
	if !isJSONArray(rawData.TimeBlocks) {
		return nil, fmt.Errorf("%w: timeBlocks must be an array", store.ErrValidation)
	}
	if !isJSONArray(rawData.Projects) {
		return nil, fmt.Errorf("%w: projects must be an array", store.ErrValidation)
	}

	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("%w: malformed backup: %v", store.ErrValidation, err)
	}

	preview := &Preview{
		Doc: &doc,
		Counts: map[store.Collection]int{
			store.CollectionTimeBlocks:      len(doc.Data.TimeBlocks),
			store.CollectionProjects:        len(doc.Data.Projects),
			store.CollectionTeams:           len(doc.Data.Teams),
			store.CollectionActiveTimers:    len(doc.Data.ActiveTimers),
			store.CollectionPreferences:     len(doc.Data.Preferences),
			store.CollectionWeeklySummaries: len(doc.Data.WeeklySummaries),
		},
	}
	if compareVersions(doc.Version, FormatVersion) > 0 {
		preview.Warning = fmt.Sprintf(
			"backup was written by a newer version (%s); some data may not import cleanly", doc.Version)
	}
	return preview, nil
}

// ValidateFile is Validate against a file on disk.
func ValidateFile(path string) (*Preview, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read backup file: %w", err)
	}
	return Validate(bytes.NewReader(payload))
}

// Import replaces the store's entire contents with the backup document in a
// single transaction. Documents older than format 2.0 have their teams
// synthesized from project team names plus the default set. On failure the
// store keeps its previous contents.
func Import(s *store.Store, doc *Document, opts Options) error {
	snap := store.Snapshot{
		TimeBlocks:      doc.Data.TimeBlocks,
		Projects:        doc.Data.Projects,
		Teams:           doc.Data.Teams,
		WeeklySummaries: doc.Data.WeeklySummaries,
		Preferences:     doc.Data.Preferences,
	}

	if compareVersions(doc.Version, "2.0") < 0 {
		snap.Teams = synthesizeTeams(doc.Data.Projects)
	}

	if opts.RestoreActiveTimers {
		for _, t := range doc.Data.ActiveTimers {
			t.Status = store.TimerPaused
			snap.ActiveTimers = append(snap.ActiveTimers, t)
		}
	}

	snap.Preferences = mergeSettings(snap.Preferences, doc.LocalStorageData)

	if err := s.ReplaceAll(snap); err != nil {
		return err
	}
	return nil
}

// synthesizeTeams builds a team list for pre-2.0 backups: the default set
// plus one team per distinct project team name, deduplicated without regard
// to case.
func synthesizeTeams(projects []store.Project) []store.Team {
	teams := store.DefaultTeams()
	seen := make(map[string]bool, len(teams))
	for _, t := range teams {
		seen[strings.ToLower(t.Name)] = true
	}
	for _, p := range projects {
		name := strings.TrimSpace(p.Team)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		teams = append(teams, store.Team{Name: name, Color: "blue", Status: store.TeamActive})
	}
	return teams
}

// mergeSettings folds the document's display settings into the preference
// list; explicit preference rows win over localStorageData.
func mergeSettings(prefs []store.Preference, ls LocalSettings) []store.Preference {
	have := make(map[string]bool, len(prefs))
	for _, p := range prefs {
		have[p.Key] = true
	}
	if ls.Theme != "" && !have[store.PrefTheme] {
		prefs = append(prefs, store.Preference{Key: store.PrefTheme, Value: ls.Theme})
	}
	if ls.LastBackupDate != "" && !have[store.PrefLastBackupDate] {
		prefs = append(prefs, store.Preference{Key: store.PrefLastBackupDate, Value: ls.LastBackupDate})
	}
	return prefs
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// compareVersions orders dotted numeric versions: -1, 0 or 1. Unparseable
// segments compare as zero.
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		var an, bn int
		if i < len(as) {
			an, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bn, _ = strconv.Atoi(bs[i])
		}
		if an != bn {
			if an < bn {
				return -1
			}
			return 1
		}
	}
	return 0
}
