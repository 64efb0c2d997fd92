package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateWeeklySummary archives a generated report for the given week.
func (s *Store) CreateWeeklySummary(weekStart, weekEnd time.Time, summary string) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO weekly_summaries (week_start, week_end, summary, created_at)
		 VALUES (?, ?, ?, ?)`,
		fmtTime(weekStart), fmtTime(weekEnd), summary, fmtTime(s.now()),
	)
	if err != nil {
		return 0, fmt.Errorf("create weekly summary: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create weekly summary: %w", err)
	}
	s.notify(CollectionWeeklySummaries)
	return id, nil
}

// GetWeeklySummary fetches a single summary by id.
func (s *Store) GetWeeklySummary(id int64) (*WeeklySummary, error) {
	row := s.db.QueryRow(
		`SELECT id, week_start, week_end, summary, created_at
		 FROM weekly_summaries WHERE id = ?`, id)
	var ws WeeklySummary
	var start, end, created string
	err := row.Scan(&ws.ID, &start, &end, &ws.Summary, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get weekly summary: %w", err)
	}
	ws.WeekStart = parseTime(start)
	ws.WeekEnd = parseTime(end)
	ws.CreatedAt = parseTime(created)
	return &ws, nil
}

// ListWeeklySummaries returns all archived summaries, newest week first.
func (s *Store) ListWeeklySummaries() ([]WeeklySummary, error) {
	rows, err := s.db.Query(
		`SELECT id, week_start, week_end, summary, created_at
		 FROM weekly_summaries ORDER BY week_start DESC`)
	if err != nil {
		return nil, fmt.Errorf("list weekly summaries: %w", err)
	}
	defer rows.Close()

	var summaries []WeeklySummary
	for rows.Next() {
		var ws WeeklySummary
		var start, end, created string
		if err := rows.Scan(&ws.ID, &start, &end, &ws.Summary, &created); err != nil {
			return nil, err
		}
		ws.WeekStart = parseTime(start)
		ws.WeekEnd = parseTime(end)
		ws.CreatedAt = parseTime(created)
		summaries = append(summaries, ws)
	}
	return summaries, rows.Err()
}

// DeleteWeeklySummary removes an archived summary.
func (s *Store) DeleteWeeklySummary(id int64) error {
	res, err := s.db.Exec("DELETE FROM weekly_summaries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete weekly summary: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete weekly summary: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete weekly summary %d: %w", id, ErrNotFound)
	}
	s.notify(CollectionWeeklySummaries)
	return nil
}

// ClearWeeklySummaries deletes every archived summary.
func (s *Store) ClearWeeklySummaries() error {
	if _, err := s.db.Exec("DELETE FROM weekly_summaries"); err != nil {
		return fmt.Errorf("clear weekly summaries: %w", err)
	}
	s.notify(CollectionWeeklySummaries)
	return nil
}
