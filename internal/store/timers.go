package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateActiveTimer inserts a running timer. The project's name and team are
// copied onto the row at creation.
func (s *Store) CreateActiveTimer(t ActiveTimer) (int64, error) {
	if t.Type == "" {
		return 0, fmt.Errorf("%w: timer type is required", ErrValidation)
	}
	if t.Status == "" {
		t.Status = TimerActive
	}
	if t.ProjectName == "" {
		p, err := s.GetProject(t.ProjectID)
		if err != nil {
			return 0, err
		}
		t.ProjectName = p.Name
		t.ProjectTeam = p.Team
	}

	now := s.now().UTC()
	if t.StartTime.IsZero() {
		t.StartTime = now
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}

	res, err := s.db.Exec(
		`INSERT INTO active_timers (type, project_id, project_name, project_team,
		                            description, content_type, start_time, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Type, t.ProjectID, t.ProjectName, t.ProjectTeam,
		t.Description, t.ContentType, fmtTime(t.StartTime), t.Status, fmtTime(t.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("create active timer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create active timer: %w", err)
	}
	s.notify(CollectionActiveTimers)
	return id, nil
}

// GetActiveTimer fetches a single timer by id.
func (s *Store) GetActiveTimer(id int64) (*ActiveTimer, error) {
	row := s.db.QueryRow(timerSelect+" WHERE id = ?", id)
	return scanTimer(row.Scan)
}

// ListActiveTimers returns all running and paused timers, oldest first.
func (s *Store) ListActiveTimers() ([]ActiveTimer, error) {
	rows, err := s.db.Query(timerSelect + " ORDER BY start_time ASC")
	if err != nil {
		return nil, fmt.Errorf("list active timers: %w", err)
	}
	defer rows.Close()

	var timers []ActiveTimer
	for rows.Next() {
		t, err := scanTimer(rows.Scan)
		if err != nil {
			return nil, err
		}
		timers = append(timers, *t)
	}
	return timers, rows.Err()
}

// UpdateActiveTimerStatus flips a timer between active and paused. The start
// time is never touched, so elapsed time keeps counting through a pause.
func (s *Store) UpdateActiveTimerStatus(id int64, status string) error {
	res, err := s.db.Exec("UPDATE active_timers SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("update timer status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update timer status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update timer %d: %w", id, ErrNotFound)
	}
	s.notify(CollectionActiveTimers)
	return nil
}

// DeleteActiveTimer discards a timer without recording any time.
func (s *Store) DeleteActiveTimer(id int64) error {
	res, err := s.db.Exec("DELETE FROM active_timers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete active timer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete active timer: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete active timer %d: %w", id, ErrNotFound)
	}
	s.notify(CollectionActiveTimers)
	return nil
}

// ClearActiveTimers deletes every timer.
func (s *Store) ClearActiveTimers() error {
	if _, err := s.db.Exec("DELETE FROM active_timers"); err != nil {
		return fmt.Errorf("clear active timers: %w", err)
	}
	s.notify(CollectionActiveTimers)
	return nil
}

// CompleteActiveTimer converts a timer into exactly one completed time block
// and deletes the timer row, in a single transaction. The block's duration
// is whole elapsed minutes, floor-rounded, regardless of any time spent
// paused. Returns the new block's id.
func (s *Store) CompleteActiveTimer(id int64, end time.Time) (int64, error) {
	t, err := s.GetActiveTimer(id)
	if err != nil {
		return 0, err
	}

	end = end.UTC()
	minutes := int64(end.Sub(t.StartTime).Minutes())
	if minutes < 0 {
		minutes = 0
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("complete timer: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO time_blocks (type, content_type, project_id, project_name, project_team,
		                          description, date, start_time, end_time, duration, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Type, t.ContentType, t.ProjectID, t.ProjectName, t.ProjectTeam,
		t.Description, fmtTime(t.StartTime), fmtTime(t.StartTime), fmtTime(end),
		minutes, BlockCompleted, fmtTime(s.now()),
	)
	if err != nil {
		return 0, fmt.Errorf("complete timer: insert block: %w", err)
	}
	blockID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("complete timer: %w", err)
	}

	del, err := tx.Exec("DELETE FROM active_timers WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("complete timer: delete timer: %w", err)
	}
	if n, _ := del.RowsAffected(); n == 0 {
		return 0, fmt.Errorf("complete timer %d: %w", id, ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("complete timer: %w", err)
	}

	s.notify(CollectionActiveTimers)
	s.notify(CollectionTimeBlocks)
	return blockID, nil
}

const timerSelect = `SELECT id, type, project_id, project_name, project_team,
	description, content_type, start_time, status, created_at FROM active_timers`

func scanTimer(scan func(...any) error) (*ActiveTimer, error) {
	var t ActiveTimer
	var start, created string
	err := scan(&t.ID, &t.Type, &t.ProjectID, &t.ProjectName, &t.ProjectTeam,
		&t.Description, &t.ContentType, &start, &t.Status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan active timer: %w", err)
	}
	t.StartTime = parseTime(start)
	t.CreatedAt = parseTime(created)
	return &t, nil
}
