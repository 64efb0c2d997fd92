package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CreateTimeBlock inserts a completed or manual time block. When ProjectID
// is set, the project's name and team are copied onto the row so history
// survives later renames and deletions. Duration is minutes.
func (s *Store) CreateTimeBlock(b TimeBlock) (int64, error) {
	if b.Type == "" {
		return 0, fmt.Errorf("%w: time block type is required", ErrValidation)
	}
	if b.Status == "" {
		b.Status = BlockCompleted
	}
	if b.ProjectID != nil && b.ProjectName == "" {
		p, err := s.GetProject(*b.ProjectID)
		switch {
		case errors.Is(err, ErrNotFound):
			b.ProjectName = "Unknown Project"
		case err != nil:
			return 0, err
		default:
			b.ProjectName = p.Name
			b.ProjectTeam = p.Team
		}
	}

	now := s.now().UTC()
	if b.Date.IsZero() {
		b.Date = b.StartTime
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}

	res, err := s.db.Exec(
		`INSERT INTO time_blocks (type, content_type, project_id, project_name, project_team,
		                          description, date, start_time, end_time, duration, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Type, b.ContentType, b.ProjectID, b.ProjectName, b.ProjectTeam,
		b.Description, fmtTime(b.Date), fmtTime(b.StartTime), fmtTimePtr(b.EndTime),
		b.Duration, b.Status, fmtTime(b.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("create time block: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create time block: %w", err)
	}
	s.notify(CollectionTimeBlocks)
	return id, nil
}

// GetTimeBlock fetches a single time block by id.
func (s *Store) GetTimeBlock(id int64) (*TimeBlock, error) {
	row := s.db.QueryRow(blockSelect+" WHERE id = ?", id)
	return scanBlock(row.Scan)
}

// ListTimeBlocks returns blocks matching the filter, newest first.
func (s *Store) ListTimeBlocks(f BlockFilter) ([]TimeBlock, error) {
	query := blockSelect
	conds, args := blockConds(f)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY start_time DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	} else if f.Offset > 0 {
		// sqlite accepts OFFSET only after a LIMIT clause; -1 means no limit.
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", f.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list time blocks: %w", err)
	}
	defer rows.Close()

	var blocks []TimeBlock
	for rows.Next() {
		b, err := scanBlock(rows.Scan)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, *b)
	}
	return blocks, rows.Err()
}

// DeleteTimeBlock removes a single block.
func (s *Store) DeleteTimeBlock(id int64) error {
	res, err := s.db.Exec("DELETE FROM time_blocks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete time block: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete time block: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete time block %d: %w", id, ErrNotFound)
	}
	s.notify(CollectionTimeBlocks)
	return nil
}

// ClearTimeBlocks deletes every time block.
func (s *Store) ClearTimeBlocks() error {
	if _, err := s.db.Exec("DELETE FROM time_blocks"); err != nil {
		return fmt.Errorf("clear time blocks: %w", err)
	}
	s.notify(CollectionTimeBlocks)
	return nil
}

// PhaseTotals sums completed minutes per work phase between from and to.
func (s *Store) PhaseTotals(from, to time.Time) (map[string]int64, error) {
	rows, err := s.db.Query(
		`SELECT type, COALESCE(SUM(duration), 0) FROM time_blocks
		 WHERE status = ? AND start_time >= ? AND start_time < ?
		 GROUP BY type`,
		BlockCompleted, fmtTime(from), fmtTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("phase totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var phase string
		var minutes int64
		if err := rows.Scan(&phase, &minutes); err != nil {
			return nil, err
		}
		totals[phase] = minutes
	}
	return totals, rows.Err()
}

// ProjectTotals aggregates completed minutes and session counts per
// denormalized project name, largest total first.
func (s *Store) ProjectTotals(from, to time.Time) ([]ProjectTotal, error) {
	rows, err := s.db.Query(
		`SELECT project_name, project_team, COALESCE(SUM(duration), 0), COUNT(*)
		 FROM time_blocks
		 WHERE status = ? AND project_name != '' AND start_time >= ? AND start_time < ?
		 GROUP BY project_name, project_team
		 ORDER BY SUM(duration) DESC`,
		BlockCompleted, fmtTime(from), fmtTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("project totals: %w", err)
	}
	defer rows.Close()

	var totals []ProjectTotal
	for rows.Next() {
		var t ProjectTotal
		if err := rows.Scan(&t.ProjectName, &t.ProjectTeam, &t.Minutes, &t.Blocks); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// TeamMinutes sums completed minutes recorded against a team name between
// from and to. Matching is case-insensitive.
func (s *Store) TeamMinutes(team string, from, to time.Time) (int64, error) {
	var minutes int64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(duration), 0) FROM time_blocks
		 WHERE status = ? AND project_team = ? COLLATE NOCASE
		   AND start_time >= ? AND start_time < ?`,
		BlockCompleted, team, fmtTime(from), fmtTime(to),
	).Scan(&minutes)
	if err != nil {
		return 0, fmt.Errorf("team minutes: %w", err)
	}
	return minutes, nil
}

// CompletedSessions counts completed blocks between from and to.
func (s *Store) CompletedSessions(from, to time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM time_blocks
		 WHERE status = ? AND start_time >= ? AND start_time < ?`,
		BlockCompleted, fmtTime(from), fmtTime(to),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("completed sessions: %w", err)
	}
	return n, nil
}

func blockConds(f BlockFilter) ([]string, []any) {
	var conds []string
	var args []any
	if f.ProjectID != nil {
		conds = append(conds, "project_id = ?")
		args = append(args, *f.ProjectID)
	}
	if f.Team != "" {
		conds = append(conds, "project_team = ? COLLATE NOCASE")
		args = append(args, f.Team)
	}
	if f.Phase != "" {
		conds = append(conds, "type = ?")
		args = append(args, f.Phase)
	}
	if f.ContentType != "" {
		conds = append(conds, "content_type = ?")
		args = append(args, f.ContentType)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.From != nil {
		conds = append(conds, "start_time >= ?")
		args = append(args, fmtTime(*f.From))
	}
	if f.To != nil {
		conds = append(conds, "start_time < ?")
		args = append(args, fmtTime(*f.To))
	}
	return conds, args
}

const blockSelect = `SELECT id, type, content_type, project_id, project_name, project_team,
	description, date, start_time, end_time, duration, status, created_at FROM time_blocks`

func scanBlock(scan func(...any) error) (*TimeBlock, error) {
	var b TimeBlock
	var projectID sql.NullInt64
	var date, start, created string
	var end sql.NullString
	err := scan(&b.ID, &b.Type, &b.ContentType, &projectID, &b.ProjectName, &b.ProjectTeam,
		&b.Description, &date, &start, &end, &b.Duration, &b.Status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan time block: %w", err)
	}
	if projectID.Valid {
		b.ProjectID = &projectID.Int64
	}
	b.Date = parseTime(date)
	b.StartTime = parseTime(start)
	b.EndTime = parseTimePtr(end)
	b.CreatedAt = parseTime(created)
	return &b, nil
}
