package backup

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/baturay/inkwell/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *store.Store) (projectID int64) {
	t.Helper()
	pid, err := s.CreateProject(store.Project{Name: "Style Guide", Team: "Documentation"})
	if err != nil {
		t.Fatal(err)
	}
	start := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	_, err = s.CreateTimeBlock(store.TimeBlock{
		Type: "writing", ProjectID: &pid, StartTime: start, Duration: 90,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetPreference(store.PrefTheme, "dark"); err != nil {
		t.Fatal(err)
	}
	return pid
}

// ============================================================
// Export
// ============================================================

func TestExportRoundTrip(t *testing.T) {
	src := newTestStore(t)
	seed(t, src)
	_, err := src.CreateActiveTimer(store.ActiveTimer{
		Type: "research", ProjectID: 1, StartTime: time.Now().UTC(),
	})
	if err != nil {
		t.Fatal(err)
	}

	doc, err := Export(src)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Version != FormatVersion {
		t.Fatalf("version %q", doc.Version)
	}
	if len(doc.Data.Teams) != 3 || len(doc.Data.Projects) != 1 || len(doc.Data.TimeBlocks) != 1 {
		t.Fatalf("unexpected collection sizes: %d teams, %d projects, %d blocks",
			len(doc.Data.Teams), len(doc.Data.Projects), len(doc.Data.TimeBlocks))
	}
	if doc.LocalStorageData.LastBackupDate == "" {
		t.Fatal("backup date not set")
	}
	// The export records its own backup date preference.
	if _, err := src.GetPreference(store.PrefLastBackupDate); err != nil {
		t.Fatalf("last backup date preference: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		t.Fatal(err)
	}

	preview, err := Validate(&buf)
	if err != nil {
		t.Fatalf("exported document failed validation: %v", err)
	}

	dst := newTestStore(t)
	if err := Import(dst, preview.Doc, Options{RestoreActiveTimers: true}); err != nil {
		t.Fatal(err)
	}

	counts, err := dst.Counts()
	if err != nil {
		t.Fatal(err)
	}
	if counts[store.CollectionProjects] != 1 || counts[store.CollectionTimeBlocks] != 1 ||
		counts[store.CollectionTeams] != 3 || counts[store.CollectionActiveTimers] != 1 {
		t.Fatalf("round trip counts: %+v", counts)
	}
	theme, err := dst.GetPreference(store.PrefTheme)
	if err != nil || theme != "dark" {
		t.Fatalf("theme preference: %q %v", theme, err)
	}
}

func TestExportToFile(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	path, err := ExportToFile(s, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filepath.Base(path), "inkwell-backup-") {
		t.Fatalf("unexpected backup name %q", path)
	}
	if _, err := ValidateFile(path); err != nil {
		t.Fatalf("written backup failed validation: %v", err)
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC)
	if got := FileName(at); got != "inkwell-backup-2026-08-28.json" {
		t.Fatalf("got %q", got)
	}
}

// ============================================================
// Validation
// ============================================================

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := Validate(strings.NewReader("not json at all"))
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidateRejectsMissingVersion(t *testing.T) {
	doc := `{"exportDate": "2026-08-28T12:00:00Z", "data": {"timeBlocks": [], "projects": []}}`
	_, err := Validate(strings.NewReader(doc))
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidateRejectsMissingExportDate(t *testing.T) {
	for _, doc := range []string{
		`{"version": "2.0", "data": {"timeBlocks": [], "projects": []}}`,
		`{"version": "2.0", "exportDate": null, "data": {"timeBlocks": [], "projects": []}}`,
	} {
		if _, err := Validate(strings.NewReader(doc)); !errors.Is(err, store.ErrValidation) {
			t.Errorf("expected ErrValidation for %s, got %v", doc, err)
		}
	}
}

func TestValidateRejectsMissingData(t *testing.T) {
	doc := `{"version": "2.0", "exportDate": "2026-08-28T12:00:00Z"}`
	_, err := Validate(strings.NewReader(doc))
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestValidateRejectsNonArrayCollections(t *testing.T) {
	for _, doc := range []string{
		`{"version": "2.0", "exportDate": "2026-08-28T12:00:00Z", "data": {"timeBlocks": {}, "projects": []}}`,
		`{"version": "2.0", "exportDate": "2026-08-28T12:00:00Z", "data": {"timeBlocks": [], "projects": "nope"}}`,
		`{"version": "2.0", "exportDate": "2026-08-28T12:00:00Z", "data": {"projects": []}}`,
	} {
		if _, err := Validate(strings.NewReader(doc)); !errors.Is(err, store.ErrValidation) {
			t.Errorf("expected ErrValidation for %s, got %v", doc, err)
		}
	}
}

func TestValidateWarnsOnNewerVersion(t *testing.T) {
	doc := `{"version": "3.1", "exportDate": "2026-08-28T12:00:00Z", "data": {"timeBlocks": [], "projects": []}}`
	preview, err := Validate(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if preview.Warning == "" {
		t.Fatal("expected a newer-version warning")
	}
}

func TestValidateFailureLeavesStoreUntouched(t *testing.T) {
	s := newTestStore(t)
	pid := seed(t, s)

	doc := `{"version": "2.0", "exportDate": "2026-08-28T12:00:00Z", "data": {"timeBlocks": "bad", "projects": []}}`
	if _, err := Validate(strings.NewReader(doc)); err == nil {
		t.Fatal("expected validation failure")
	}
	if _, err := s.GetProject(pid); err != nil {
		t.Fatalf("store changed by failed validation: %v", err)
	}
}

// ============================================================
// Import
// ============================================================

func TestImportLegacySynthesizesTeams(t *testing.T) {
	legacy := `{
		"version": "1.0",
		"exportDate": "2026-08-28T12:00:00Z",
		"data": {
			"timeBlocks": [],
			"projects": [
				{"id": 1, "name": "A", "team": "Alpha", "status": "planning", "priority": "medium"},
				{"id": 2, "name": "B", "team": "alpha", "status": "planning", "priority": "medium"},
				{"id": 3, "name": "C", "team": "Beta", "status": "planning", "priority": "low"}
			]
		}
	}`
	preview, err := Validate(strings.NewReader(legacy))
	if err != nil {
		t.Fatal(err)
	}

	s := newTestStore(t)
	if err := Import(s, preview.Doc, Options{}); err != nil {
		t.Fatal(err)
	}

	teams, err := s.ListTeams(true)
	if err != nil {
		t.Fatal(err)
	}
	// Three defaults plus Alpha and Beta; "alpha" must not duplicate.
	if len(teams) != 5 {
		t.Fatalf("expected 5 teams, got %d: %+v", len(teams), teams)
	}
	if _, err := s.GetTeamByName("Alpha"); err != nil {
		t.Fatalf("Alpha missing: %v", err)
	}
	if _, err := s.GetTeamByName("Beta"); err != nil {
		t.Fatalf("Beta missing: %v", err)
	}
}

func TestImportForcesTimersPaused(t *testing.T) {
	doc := `{
		"version": "2.0",
		"exportDate": "2026-08-28T12:00:00Z",
		"data": {
			"timeBlocks": [],
			"projects": [],
			"teams": [{"id": 1, "name": "Docs", "status": "active", "color": "blue"}],
			"activeTimers": [
				{"id": 1, "type": "writing", "projectId": 1, "projectName": "X",
				 "projectTeam": "Docs", "startTime": "2026-08-28T09:00:00Z", "status": "active"}
			]
		}
	}`
	preview, err := Validate(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	s := newTestStore(t)
	if err := Import(s, preview.Doc, Options{RestoreActiveTimers: true}); err != nil {
		t.Fatal(err)
	}
	timers, err := s.ListActiveTimers()
	if err != nil {
		t.Fatal(err)
	}
	if len(timers) != 1 || timers[0].Status != store.TimerPaused {
		t.Fatalf("expected one paused timer, got %+v", timers)
	}

	// Without the option, timers are dropped entirely.
	s2 := newTestStore(t)
	if err := Import(s2, preview.Doc, Options{}); err != nil {
		t.Fatal(err)
	}
	timers, _ = s2.ListActiveTimers()
	if len(timers) != 0 {
		t.Fatalf("expected no timers, got %d", len(timers))
	}
}

func TestImportFailureRollsBack(t *testing.T) {
	s := newTestStore(t)
	pid := seed(t, s)

	bad := &Document{
		Version: "2.0",
		Data: Collections{
			Teams: []store.Team{
				{ID: 1, Name: "Dup"},
				{ID: 1, Name: "Dup Again"},
			},
		},
	}
	err := Import(s, bad, Options{})
	if !errors.Is(err, store.ErrPartialImport) {
		t.Fatalf("expected ErrPartialImport, got %v", err)
	}
	if _, err := s.GetProject(pid); err != nil {
		t.Fatalf("store lost data on failed import: %v", err)
	}
}

// ============================================================
// Version comparison
// ============================================================

func TestCompareVersions(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.0", "2.0", -1},
		{"2.0", "2.0", 0},
		{"2.1", "2.0", 1},
		{"2.0.1", "2.0", 1},
		{"10.0", "9.0", 1},
		{"junk", "2.0", -1},
	}
	for _, tc := range cases {
		if got := compareVersions(tc.a, tc.b); got != tc.want {
			t.Errorf("compareVersions(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}
