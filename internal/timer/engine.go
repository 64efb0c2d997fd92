// Package timer drives concurrent work timers on top of the store. Elapsed
// time is always now minus start time; pausing is a status flag only, so a
// paused timer keeps accumulating wall-clock time until stopped.
package timer

import (
	"errors"
	"fmt"
	"time"

	"github.com/baturay/inkwell/internal/store"
)

// Kind classifies a notification.
type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

// Notifier receives a message for every timer transition. Implementations
// must not block.
type Notifier interface {
	Notify(kind Kind, message string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(Kind, string) {}

// Engine coordinates timer lifecycle against the store. Multiple timers may
// run at once; each is independent.
type Engine struct {
	store    *store.Store
	notifier Notifier
	now      func() time.Time
}

// New creates an engine. A nil notifier is replaced with NopNotifier.
func New(s *store.Store, n Notifier) *Engine {
	if n == nil {
		n = NopNotifier{}
	}
	return &Engine{store: s, notifier: n, now: time.Now}
}

// SetClock overrides the engine's time source.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Start begins a new timer for the given project. The project must exist
// and not be archived. Returns the new timer's id.
func (e *Engine) Start(workPhase string, projectID int64, description, contentType string) (int64, error) {
	p, err := e.store.GetProject(projectID)
	if err != nil {
		e.notifier.Notify(KindError, "Could not start timer: project not found")
		return 0, fmt.Errorf("start timer: %w", err)
	}
	if p.Status == store.ProjectArchived {
		e.notifier.Notify(KindError, fmt.Sprintf("Cannot track time on archived project %q", p.Name))
		return 0, fmt.Errorf("start timer: project %q is archived: %w", p.Name, store.ErrValidation)
	}

	id, err := e.store.CreateActiveTimer(store.ActiveTimer{
		Type:        workPhase,
		ProjectID:   projectID,
		ProjectName: p.Name,
		ProjectTeam: p.Team,
		Description: description,
		ContentType: contentType,
		StartTime:   e.now().UTC(),
		Status:      store.TimerActive,
	})
	if err != nil {
		e.notifier.Notify(KindError, "Could not start timer")
		return 0, err
	}
	e.notifier.Notify(KindSuccess, fmt.Sprintf("Timer started for %s", p.Name))
	return id, nil
}

// Pause marks a running timer paused. Pausing an already paused timer is
// an error; a missing id reports not found.
func (e *Engine) Pause(id int64) error {
	t, err := e.store.GetActiveTimer(id)
	if err != nil {
		e.notifier.Notify(KindError, "Timer not found")
		return fmt.Errorf("pause timer: %w", err)
	}
	if t.Status == store.TimerPaused {
		return fmt.Errorf("pause timer %d: already paused: %w", id, store.ErrValidation)
	}
	if err := e.store.UpdateActiveTimerStatus(id, store.TimerPaused); err != nil {
		return fmt.Errorf("pause timer: %w", err)
	}
	e.notifier.Notify(KindSuccess, fmt.Sprintf("Timer paused for %s", t.ProjectName))
	return nil
}

// Resume marks a paused timer active again. The start time is unchanged.
func (e *Engine) Resume(id int64) error {
	t, err := e.store.GetActiveTimer(id)
	if err != nil {
		e.notifier.Notify(KindError, "Timer not found")
		return fmt.Errorf("resume timer: %w", err)
	}
	if t.Status == store.TimerActive {
		return fmt.Errorf("resume timer %d: already running: %w", id, store.ErrValidation)
	}
	if err := e.store.UpdateActiveTimerStatus(id, store.TimerActive); err != nil {
		return fmt.Errorf("resume timer: %w", err)
	}
	e.notifier.Notify(KindSuccess, fmt.Sprintf("Timer resumed for %s", t.ProjectName))
	return nil
}

// Stop completes a timer: one finished time block is recorded and the timer
// is removed, atomically. Returns the recorded block's id.
func (e *Engine) Stop(id int64) (int64, error) {
	t, err := e.store.GetActiveTimer(id)
	if err != nil {
		e.notifier.Notify(KindError, "Timer not found")
		return 0, fmt.Errorf("stop timer: %w", err)
	}

	blockID, err := e.store.CompleteActiveTimer(id, e.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.notifier.Notify(KindError, "Timer not found")
		} else {
			e.notifier.Notify(KindError, "Could not stop timer")
		}
		return 0, fmt.Errorf("stop timer: %w", err)
	}

	elapsed := e.now().Sub(t.StartTime)
	e.notifier.Notify(KindSuccess,
		fmt.Sprintf("Logged %s on %s", FormatDuration(elapsed), t.ProjectName))
	return blockID, nil
}

// Discard removes a timer without recording a time block.
func (e *Engine) Discard(id int64) error {
	if err := e.store.DeleteActiveTimer(id); err != nil {
		e.notifier.Notify(KindError, "Timer not found")
		return fmt.Errorf("discard timer: %w", err)
	}
	e.notifier.Notify(KindSuccess, "Timer discarded")
	return nil
}

// Elapsed reports how long the timer with id has been running.
func (e *Engine) Elapsed(id int64) (time.Duration, error) {
	t, err := e.store.GetActiveTimer(id)
	if err != nil {
		return 0, fmt.Errorf("timer elapsed: %w", err)
	}
	return e.ElapsedSince(t.StartTime), nil
}

// ElapsedSince reports wall-clock time since start, never negative.
func (e *Engine) ElapsedSince(start time.Time) time.Duration {
	d := e.now().Sub(start)
	if d < 0 {
		return 0
	}
	return d
}

// FormatDuration renders a duration as H:MM:SS once it reaches an hour,
// M:SS below that.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
