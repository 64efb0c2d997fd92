package report

import (
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

func addBlock(t *testing.T, s *store.Store, pid int64, phase string, start time.Time, minutes int64) {
	t.Helper()
	_, err := s.CreateTimeBlock(store.TimeBlock{
		Type: phase, ProjectID: &pid, StartTime: start, Duration: minutes,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestWeekRange(t *testing.T) {
	// Friday 2026-08-28 -> week of Monday the 24th.
	now := time.Date(2026, 8, 28, 15, 30, 0, 0, time.UTC)
	start, end := WeekRange(now)
	if !start.Equal(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start %v", start)
	}
	if !end.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("end %v", end)
	}

	// Sunday belongs to the week that began the previous Monday.
	sunday := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)
	start2, _ := WeekRange(sunday)
	if !start2.Equal(start) {
		t.Fatalf("sunday week start %v", start2)
	}

	// Monday starts its own week.
	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	start3, _ := WeekRange(monday)
	if !start3.Equal(monday) {
		t.Fatalf("monday week start %v", start3)
	}
}

func TestTodayAndWeek(t *testing.T) {
	s := newTestStore(t)
	pid, err := s.CreateProject(store.Project{Name: "Guide", Team: "Documentation"})
	if err != nil {
		t.Fatal(err)
	}

	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	addBlock(t, s, pid, "writing", now.Add(-2*time.Hour), 60)
	addBlock(t, s, pid, "research", now.Add(-4*time.Hour), 30)
	addBlock(t, s, pid, "writing", now.AddDate(0, 0, -2), 45)  // earlier this week
	addBlock(t, s, pid, "writing", now.AddDate(0, 0, -10), 99) // previous week

	today, err := Today(s, now)
	if err != nil {
		t.Fatal(err)
	}
	if today.TotalMinutes != 90 || today.Sessions != 2 {
		t.Fatalf("today: %+v", today)
	}

	week, err := Week(s, now)
	if err != nil {
		t.Fatal(err)
	}
	if week.TotalMinutes != 135 || week.Sessions != 3 {
		t.Fatalf("week: %+v", week)
	}
	if week.ByPhase["writing"] != 105 || week.ByPhase["research"] != 30 {
		t.Fatalf("week phases: %+v", week.ByPhase)
	}
	if len(week.Projects) != 1 || week.Projects[0].Minutes != 135 {
		t.Fatalf("week projects: %+v", week.Projects)
	}
}

func TestTeams(t *testing.T) {
	s := newTestStore(t)
	pid, err := s.CreateProject(store.Project{Name: "Guide", Team: "Documentation"})
	if err != nil {
		t.Fatal(err)
	}
	published, err := s.CreateProject(store.Project{
		Name: "Done Guide", Team: "Documentation", Status: store.ProjectPublished,
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = published

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	addBlock(t, s, pid, "writing", now.AddDate(0, 0, -5), 120)
	addBlock(t, s, pid, "writing", now.AddDate(0, 0, -60), 500) // outside 30d window

	stats, err := Teams(s, now)
	if err != nil {
		t.Fatal(err)
	}
	var docs *TeamStat
	for i := range stats {
		if stats[i].Team.Name == "Documentation" {
			docs = &stats[i]
		}
	}
	if docs == nil {
		t.Fatal("Documentation stat missing")
	}
	if docs.TotalProjects != 2 || docs.ActiveProjects != 1 {
		t.Fatalf("project counts: %+v", docs)
	}
	if docs.RecentMinutes != 120 {
		t.Fatalf("recent minutes: %d", docs.RecentMinutes)
	}
}

func TestDocumentationDebt(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	mk := func(name string, lastUpdated *time.Time) {
		t.Helper()
		_, err := s.CreateProject(store.Project{
			Name: name, Team: "Documentation", LastUpdated: lastUpdated,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	fresh := now.AddDate(0, 0, -10)
	stale := now.AddDate(0, 0, -100)
	outdated := now.AddDate(0, 0, -200)
	mk("Fresh", &fresh)
	mk("Stale", &stale)
	mk("Outdated", &outdated)
	mk("Never", nil)

	debt, err := DocumentationDebt(s, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(debt) != 2 {
		t.Fatalf("expected 2 debt items, got %d: %+v", len(debt), debt)
	}
	// Critical before outdated.
	if debt[0].Status != store.MaintenanceCritical || debt[0].Project.Name != "Never" {
		t.Fatalf("worst first: %+v", debt[0])
	}
	if debt[1].Status != store.MaintenanceOutdated {
		t.Fatalf("second: %+v", debt[1])
	}
}

func TestEmailSummaryAndSave(t *testing.T) {
	s := newTestStore(t)
	pid, err := s.CreateProject(store.Project{Name: "Guide", Team: "Documentation"})
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	addBlock(t, s, pid, "writing", now.Add(-time.Hour), 125)

	week, err := Week(s, now)
	if err != nil {
		t.Fatal(err)
	}
	text := EmailSummary(week)
	for _, want := range []string{"Weekly Summary", "2h 5m", "writing", "Guide", "Documentation"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}

	id, err := SaveWeek(s, now)
	if err != nil {
		t.Fatal(err)
	}
	saved, err := s.GetWeeklySummary(id)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Summary != text {
		t.Fatal("archived summary differs from rendered one")
	}
	if !saved.WeekStart.Equal(week.WeekStart) {
		t.Fatalf("week start %v", saved.WeekStart)
	}
}

func TestFormatMinutes(t *testing.T) {
	cases := []struct {
		minutes int64
		want    string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h"},
		{125, "2h 5m"},
	}
	for _, tc := range cases {
		if got := FormatMinutes(tc.minutes); got != tc.want {
			t.Errorf("FormatMinutes(%d) = %q, want %q", tc.minutes, got, tc.want)
		}
	}
}
