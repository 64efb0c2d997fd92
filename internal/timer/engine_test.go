package timer

import (
	"errors"
	"testing"
	"time"

	"github.com/baturay/inkwell/internal/store"
)

type recordingNotifier struct {
	kinds    []Kind
	messages []string
}

func (r *recordingNotifier) Notify(kind Kind, message string) {
	r.kinds = append(r.kinds, kind)
	r.messages = append(r.messages, message)
}

func (r *recordingNotifier) last() (Kind, string) {
	if len(r.kinds) == 0 {
		return KindSuccess, ""
	}
	return r.kinds[len(r.kinds)-1], r.messages[len(r.messages)-1]
}

func newTestEngine(t *testing.T) (*Engine, *store.Store, *recordingNotifier) {
	t.Helper()
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	notes := &recordingNotifier{}
	e := New(s, notes)
	return e, s, notes
}

func createProject(t *testing.T, s *store.Store) int64 {
	t.Helper()
	id, err := s.CreateProject(store.Project{Name: "Style Guide", Team: "Documentation"})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestStart(t *testing.T) {
	e, s, notes := newTestEngine(t)
	pid := createProject(t, s)

	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	e.SetClock(func() time.Time { return start })

	id, err := e.Start("writing", pid, "drafting intro", "user-guides")
	if err != nil {
		t.Fatal(err)
	}

	at, err := s.GetActiveTimer(id)
	if err != nil {
		t.Fatal(err)
	}
	if at.Status != store.TimerActive || at.Type != "writing" || at.ContentType != "user-guides" {
		t.Fatalf("unexpected timer: %+v", at)
	}
	if !at.StartTime.Equal(start) {
		t.Fatalf("start time not from clock: %v", at.StartTime)
	}
	if at.ProjectName != "Style Guide" {
		t.Fatalf("project not denormalized: %q", at.ProjectName)
	}

	kind, msg := notes.last()
	if kind != KindSuccess || msg == "" {
		t.Fatalf("expected success notification, got %v %q", kind, msg)
	}
}

func TestStartMissingProject(t *testing.T) {
	e, _, notes := newTestEngine(t)

	_, err := e.Start("writing", 999, "", "")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	kind, _ := notes.last()
	if kind != KindError {
		t.Fatal("expected error notification")
	}
}

func TestStartArchivedProject(t *testing.T) {
	e, s, _ := newTestEngine(t)
	pid := createProject(t, s)
	if err := s.ArchiveProject(pid); err != nil {
		t.Fatal(err)
	}

	_, err := e.Start("writing", pid, "", "")
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestPauseResumeTransitions(t *testing.T) {
	e, s, _ := newTestEngine(t)
	pid := createProject(t, s)
	id, err := e.Start("writing", pid, "", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := e.Pause(id); err != nil {
		t.Fatal(err)
	}
	if err := e.Pause(id); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("double pause: expected ErrValidation, got %v", err)
	}
	if err := e.Resume(id); err != nil {
		t.Fatal(err)
	}
	if err := e.Resume(id); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("double resume: expected ErrValidation, got %v", err)
	}

	if err := e.Pause(999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("pause missing: expected ErrNotFound, got %v", err)
	}
	if err := e.Resume(999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("resume missing: expected ErrNotFound, got %v", err)
	}
}

func TestElapsedIgnoresPause(t *testing.T) {
	e, s, _ := newTestEngine(t)
	pid := createProject(t, s)

	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	now := start
	e.SetClock(func() time.Time { return now })

	id, err := e.Start("writing", pid, "", "")
	if err != nil {
		t.Fatal(err)
	}

	now = start.Add(10 * time.Minute)
	if err := e.Pause(id); err != nil {
		t.Fatal(err)
	}

	// Wall clock keeps moving while paused.
	now = start.Add(30 * time.Minute)
	elapsed, err := e.Elapsed(id)
	if err != nil {
		t.Fatal(err)
	}
	if elapsed != 30*time.Minute {
		t.Fatalf("paused timer should keep counting, got %v", elapsed)
	}
}

func TestStop(t *testing.T) {
	e, s, notes := newTestEngine(t)
	pid := createProject(t, s)

	start := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	now := start
	e.SetClock(func() time.Time { return now })

	id, err := e.Start("writing", pid, "drafting", "")
	if err != nil {
		t.Fatal(err)
	}

	// 47 minutes 59 seconds: floor to 47.
	now = start.Add(47*time.Minute + 59*time.Second)
	blockID, err := e.Stop(id)
	if err != nil {
		t.Fatal(err)
	}

	b, err := s.GetTimeBlock(blockID)
	if err != nil {
		t.Fatal(err)
	}
	if b.Duration != 47 {
		t.Fatalf("expected 47 minutes, got %d", b.Duration)
	}
	if b.Status != store.BlockCompleted {
		t.Fatalf("expected completed, got %q", b.Status)
	}

	if _, err := s.GetActiveTimer(id); !errors.Is(err, store.ErrNotFound) {
		t.Fatal("timer should be deleted after stop")
	}
	blocks, _ := s.ListTimeBlocks(store.BlockFilter{})
	if len(blocks) != 1 {
		t.Fatalf("expected exactly one block, got %d", len(blocks))
	}

	kind, _ := notes.last()
	if kind != KindSuccess {
		t.Fatal("expected success notification")
	}
}

func TestStopMissing(t *testing.T) {
	e, _, notes := newTestEngine(t)
	if _, err := e.Stop(999); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	kind, _ := notes.last()
	if kind != KindError {
		t.Fatal("expected error notification")
	}
}

func TestDiscard(t *testing.T) {
	e, s, _ := newTestEngine(t)
	pid := createProject(t, s)
	id, err := e.Start("writing", pid, "", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := e.Discard(id); err != nil {
		t.Fatal(err)
	}
	blocks, _ := s.ListTimeBlocks(store.BlockFilter{})
	if len(blocks) != 0 {
		t.Fatal("discard must not record a block")
	}
	if err := e.Discard(id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{-5 * time.Second, "0:00"},
		{5 * time.Second, "0:05"},
		{125 * time.Second, "2:05"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{time.Hour, "1:00:00"},
		{3725 * time.Second, "1:02:05"},
		{25*time.Hour + 6*time.Minute + 7*time.Second, "25:06:07"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
