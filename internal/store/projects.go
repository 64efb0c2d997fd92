package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Maintenance age thresholds in days.
const (
	maintenanceCurrentDays  = 90
	maintenanceStaleDays    = 180
	maintenanceOutdatedDays = 365
)

// ComputeMaintenanceStatus classifies a project's freshness from its
// last-updated timestamp. A nil or zero timestamp is critical. Exactly 90
// days old is already stale; the current window is strictly under 90 days.
func ComputeMaintenanceStatus(lastUpdated *time.Time, now time.Time) string {
	if lastUpdated == nil || lastUpdated.IsZero() {
		return MaintenanceCritical
	}
	days := int(now.Sub(*lastUpdated).Hours() / 24)
	switch {
	case days < maintenanceCurrentDays:
		return MaintenanceCurrent
	case days < maintenanceStaleDays:
		return MaintenanceStale
	case days < maintenanceOutdatedDays:
		return MaintenanceOutdated
	default:
		return MaintenanceCritical
	}
}

// ProjectUpdate carries optional field changes for UpdateProject. Nil fields
// are left untouched. Clearing DueDate or LastUpdated is done by pointing at
// a zero time.
type ProjectUpdate struct {
	Name        *string
	Team        *string
	Description *string
	Status      *string
	Priority    *string
	ContentType *string
	Version     *string
	DueDate     *time.Time
	LastUpdated *time.Time
}

// CreateProject inserts a project. The team name must match an existing
// team, compared case-insensitively. The maintenance status is computed
// from LastUpdated and cached on the row.
func (s *Store) CreateProject(p Project) (int64, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return 0, fmt.Errorf("%w: project name is required", ErrValidation)
	}
	if p.Team != "" {
		exists, err := s.teamExists(p.Team)
		if err != nil {
			return 0, err
		}
		if !exists {
			return 0, fmt.Errorf("%w: team %q", ErrReferential, p.Team)
		}
	}
	if p.Status == "" {
		p.Status = ProjectPlanning
	}
	if p.Priority == "" {
		p.Priority = "medium"
	}

	now := s.now().UTC()
	maintenance := ComputeMaintenanceStatus(p.LastUpdated, now)

	res, err := s.db.Exec(
		`INSERT INTO projects (name, team, description, status, priority, content_type,
		                       version, due_date, last_updated, maintenance_status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Team, p.Description, p.Status, p.Priority, p.ContentType,
		p.Version, fmtTimePtr(p.DueDate), fmtTimePtr(p.LastUpdated), maintenance,
		fmtTime(now), fmtTime(now),
	)
	if err != nil {
		return 0, fmt.Errorf("create project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create project: %w", err)
	}
	s.notify(CollectionProjects)
	return id, nil
}

// GetProject fetches a single project by id.
func (s *Store) GetProject(id int64) (*Project, error) {
	row := s.db.QueryRow(projectSelect+" WHERE id = ?", id)
	p, err := scanProject(row.Scan)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns projects matching the filter, ordered by name.
// Archived projects are excluded unless IncludeArchived is set.
func (s *Store) ListProjects(f ProjectFilter) ([]Project, error) {
	query := projectSelect
	var conds []string
	var args []any

	if f.Team != "" {
		conds = append(conds, "team = ? COLLATE NOCASE")
		args = append(args, f.Team)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	} else if !f.IncludeArchived {
		conds = append(conds, "status != ?")
		args = append(args, ProjectArchived)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name COLLATE NOCASE"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// UpdateProject applies the non-nil fields of u. A team change is validated
// against the teams collection. The cached maintenance status is recomputed
// whenever LastUpdated changes.
func (s *Store) UpdateProject(id int64, u ProjectUpdate) error {
	if _, err := s.GetProject(id); err != nil {
		return err
	}

	if u.Team != nil && *u.Team != "" {
		exists, err := s.teamExists(*u.Team)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: team %q", ErrReferential, *u.Team)
		}
	}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return fmt.Errorf("%w: project name is required", ErrValidation)
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
	if u.Team != nil {
		set("team", *u.Team)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.Status != nil {
		set("status", *u.Status)
	}
	if u.Priority != nil {
		set("priority", *u.Priority)
	}
	if u.ContentType != nil {
		set("content_type", *u.ContentType)
	}
	if u.Version != nil {
		set("version", *u.Version)
	}
	if u.DueDate != nil {
		if u.DueDate.IsZero() {
			set("due_date", nil)
		} else {
			set("due_date", fmtTime(*u.DueDate))
		}
	}
	if u.LastUpdated != nil {
		if u.LastUpdated.IsZero() {
			set("last_updated", nil)
			set("maintenance_status", ComputeMaintenanceStatus(nil, s.now()))
		} else {
			set("last_updated", fmtTime(*u.LastUpdated))
			set("maintenance_status", ComputeMaintenanceStatus(u.LastUpdated, s.now()))
		}
	}
	if len(sets) == 0 {
		return nil
	}
	set("updated_at", fmtTime(s.now()))
	args = append(args, id)

	_, err := s.db.Exec("UPDATE projects SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	s.notify(CollectionProjects)
	return nil
}

// ArchiveProject marks a project archived. Its time blocks keep their
// denormalized name and team.
func (s *Store) ArchiveProject(id int64) error {
	status := ProjectArchived
	return s.UpdateProject(id, ProjectUpdate{Status: &status})
}

// DeleteProject removes a project. Completed time blocks survive with their
// denormalized copies; later backfills render the gone project as
// "Unknown Project" only for rows that never got a copy.
func (s *Store) DeleteProject(id int64) error {
	res, err := s.db.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete project %d: %w", id, ErrNotFound)
	}
	s.notify(CollectionProjects)
	return nil
}

// ClearProjects deletes every project.
func (s *Store) ClearProjects() error {
	if _, err := s.db.Exec("DELETE FROM projects"); err != nil {
		return fmt.Errorf("clear projects: %w", err)
	}
	s.notify(CollectionProjects)
	return nil
}

const projectSelect = `SELECT id, name, team, description, status, priority, content_type,
	version, due_date, last_updated, maintenance_status, created_at, updated_at FROM projects`

func scanProject(scan func(...any) error) (*Project, error) {
	var p Project
	var due, last sql.NullString
	var created, updated string
	err := scan(&p.ID, &p.Name, &p.Team, &p.Description, &p.Status, &p.Priority,
		&p.ContentType, &p.Version, &due, &last, &p.MaintenanceStatus, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan project: %w", err)
	}
	p.DueDate = parseTimePtr(due)
	p.LastUpdated = parseTimePtr(last)
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	return &p, nil
}
