package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TeamUpdate carries optional field changes for UpdateTeam. Nil fields are
// left untouched.
type TeamUpdate struct {
	Name        *string
	Description *string
	Lead        *string
	Status      *string
	Color       *string
}

// CreateTeam inserts a team. Names are unique case-insensitively.
func (s *Store) CreateTeam(t Team) (int64, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return 0, fmt.Errorf("%w: team name is required", ErrValidation)
	}
	if t.Status == "" {
		t.Status = TeamActive
	}
	if t.Color == "" {
		t.Color = "blue"
	}

	exists, err := s.teamExists(t.Name)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, fmt.Errorf("%w: team %q already exists", ErrValidation, t.Name)
	}

	now := s.now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO teams (name, description, lead, status, color, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Name, t.Description, t.Lead, t.Status, t.Color, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("create team: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create team: %w", err)
	}
	s.notify(CollectionTeams)
	return id, nil
}

// GetTeam fetches a single team by id.
func (s *Store) GetTeam(id int64) (*Team, error) {
	row := s.db.QueryRow(teamSelect+" WHERE id = ?", id)
	return scanTeam(row)
}

// GetTeamByName fetches a team by name, case-insensitively.
func (s *Store) GetTeamByName(name string) (*Team, error) {
	row := s.db.QueryRow(teamSelect+" WHERE name = ? COLLATE NOCASE", name)
	return scanTeam(row)
}

// ListTeams returns all teams ordered by name. Archived teams are included
// only when includeArchived is set.
func (s *Store) ListTeams(includeArchived bool) ([]Team, error) {
	query := teamSelect
	if !includeArchived {
		query += " WHERE status != '" + TeamArchived + "'"
	}
	query += " ORDER BY name COLLATE NOCASE"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		t, err := scanTeamRows(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

// UpdateTeam applies the non-nil fields of u to the team. A name change is
// checked against the case-insensitive uniqueness rule.
func (s *Store) UpdateTeam(id int64, u TeamUpdate) error {
	current, err := s.GetTeam(id)
	if err != nil {
		return err
	}

	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return fmt.Errorf("%w: team name is required", ErrValidation)
		}
		if !strings.EqualFold(name, current.Name) {
			exists, err := s.teamExists(name)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("%w: team %q already exists", ErrValidation, name)
			}
		}
		u.Name = &name
	}

	var sets []string
	var args []any
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if u.Name != nil {
		set("name", *u.Name)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.Lead != nil {
		set("lead", *u.Lead)
	}
	if u.Status != nil {
		set("status", *u.Status)
	}
	if u.Color != nil {
		set("color", *u.Color)
	}
	if len(sets) == 0 {
		return nil
	}
	set("updated_at", s.now().UTC().Format(time.RFC3339))
	args = append(args, id)

	_, err = s.db.Exec("UPDATE teams SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	s.notify(CollectionTeams)
	return nil
}

// ArchiveTeam marks a team archived without touching its projects.
func (s *Store) ArchiveTeam(id int64) error {
	status := TeamArchived
	return s.UpdateTeam(id, TeamUpdate{Status: &status})
}

// DeleteTeam removes a team. Projects referencing it keep their team name
// string; history is never rewritten.
func (s *Store) DeleteTeam(id int64) error {
	res, err := s.db.Exec("DELETE FROM teams WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete team %d: %w", id, ErrNotFound)
	}
	s.notify(CollectionTeams)
	return nil
}

// ClearTeams deletes every team.
func (s *Store) ClearTeams() error {
	if _, err := s.db.Exec("DELETE FROM teams"); err != nil {
		return fmt.Errorf("clear teams: %w", err)
	}
	s.notify(CollectionTeams)
	return nil
}

func (s *Store) teamExists(name string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM teams WHERE name = ? COLLATE NOCASE", name,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check team %q: %w", name, err)
	}
	return n > 0, nil
}

const teamSelect = `SELECT id, name, description, lead, status, color, created_at, updated_at FROM teams`

func scanTeam(row *sql.Row) (*Team, error) {
	var t Team
	var created, updated string
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Lead, &t.Status, &t.Color, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan team: %w", err)
	}
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return &t, nil
}

func scanTeamRows(rows *sql.Rows) (*Team, error) {
	var t Team
	var created, updated string
	if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Lead, &t.Status, &t.Color, &created, &updated); err != nil {
		return nil, fmt.Errorf("scan team: %w", err)
	}
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	return &t, nil
}
