package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/baturay/inkwell/pkg/logger"
)

const currentVersion = 3

// Store owns the embedded database holding all six record collections.
// A single connection; all methods are safe for the single-UI-goroutine
// access pattern this app uses.
type Store struct {
	db  *sql.DB
	now func() time.Time

	mu      sync.Mutex
	subs    map[int64]func(Change)
	nextSub int64
}

// Open opens (or creates) the database at dbPath, applies schema versions
// and runs the data migrations.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("%w: create db directory: %v", ErrStoreUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", ErrStoreUnavailable, err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: exec pragma %q: %v", ErrStoreUnavailable, p, err)
		}
	}

	s := &Store{db: db, now: time.Now, subs: make(map[int64]func(Change))}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if _, err := s.MigrateTimeBlocks(); err != nil {
		db.Close()
		return nil, fmt.Errorf("backfill time blocks: %w", err)
	}
	if err := s.MigrateTeamsData(); err != nil {
		db.Close()
		return nil, fmt.Errorf("backfill teams: %w", err)
	}
	return s, nil
}

// OpenMemory creates an in-memory store for testing.
func OpenMemory() (*Store, error) {
	return Open(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}
	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}
	if version < 3 {
		if err := s.migrateV3(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

// migrateV1 is the original store layout: time blocks, projects, weekly
// summaries and preferences.
func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS time_blocks (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		type        TEXT NOT NULL,
		project_id  INTEGER,
		description TEXT NOT NULL DEFAULT '',
		date        TEXT NOT NULL,
		start_time  TEXT NOT NULL,
		end_time    TEXT,
		duration    INTEGER NOT NULL DEFAULT 0,
		status      TEXT NOT NULL DEFAULT 'completed',
		created_at  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_blocks_date    ON time_blocks(date);
	CREATE INDEX IF NOT EXISTS idx_blocks_type    ON time_blocks(type);
	CREATE INDEX IF NOT EXISTS idx_blocks_project ON time_blocks(project_id);
	CREATE INDEX IF NOT EXISTS idx_blocks_start   ON time_blocks(start_time);

	CREATE TABLE IF NOT EXISTS projects (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		team        TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'planning',
		priority    TEXT NOT NULL DEFAULT 'medium',
		due_date    TEXT,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_projects_name   ON projects(name);
	CREATE INDEX IF NOT EXISTS idx_projects_team   ON projects(team);
	CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status);

	CREATE TABLE IF NOT EXISTS weekly_summaries (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		week_start  TEXT NOT NULL,
		week_end    TEXT NOT NULL,
		summary     TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_summaries_week ON weekly_summaries(week_start);

	CREATE TABLE IF NOT EXISTS preferences (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// migrateV2 adds the documentation bookkeeping fields: content type and work
// phase indexes on time blocks, version/freshness tracking on projects.
func (s *Store) migrateV2() error {
	const ddl = `
	ALTER TABLE time_blocks ADD COLUMN content_type TEXT NOT NULL DEFAULT '';
	CREATE INDEX IF NOT EXISTS idx_blocks_content ON time_blocks(content_type);

	ALTER TABLE projects ADD COLUMN content_type TEXT NOT NULL DEFAULT '';
	ALTER TABLE projects ADD COLUMN version TEXT NOT NULL DEFAULT '';
	ALTER TABLE projects ADD COLUMN last_updated TEXT;
	ALTER TABLE projects ADD COLUMN maintenance_status TEXT NOT NULL DEFAULT '';
	CREATE INDEX IF NOT EXISTS idx_projects_content     ON projects(content_type);
	CREATE INDEX IF NOT EXISTS idx_projects_maintenance ON projects(maintenance_status);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// migrateV3 introduces teams and multi-timer support, and the denormalized
// project fields carried by time blocks and timers.
func (s *Store) migrateV3() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS teams (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		lead        TEXT NOT NULL DEFAULT '',
		status      TEXT NOT NULL DEFAULT 'active',
		color       TEXT NOT NULL DEFAULT 'blue',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_teams_name ON teams(name COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS active_timers (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		type         TEXT NOT NULL,
		project_id   INTEGER NOT NULL,
		project_name TEXT NOT NULL DEFAULT '',
		project_team TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT '',
		content_type TEXT NOT NULL DEFAULT '',
		start_time   TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'active',
		created_at   TEXT NOT NULL
	);

	ALTER TABLE time_blocks ADD COLUMN project_name TEXT NOT NULL DEFAULT '';
	ALTER TABLE time_blocks ADD COLUMN project_team TEXT NOT NULL DEFAULT '';
	CREATE INDEX IF NOT EXISTS idx_blocks_team ON time_blocks(project_team);
	`
	_, err := s.db.Exec(ddl)
	return err
}

// MigrateTimeBlocks backfills the denormalized project_name/project_team
// columns on rows created before those columns existed. Blocks whose project
// no longer exists get "Unknown Project". Idempotent; returns the number of
// repaired rows.
func (s *Store) MigrateTimeBlocks() (int64, error) {
	res, err := s.db.Exec(`
		UPDATE time_blocks SET
			project_name = COALESCE(
				(SELECT p.name FROM projects p WHERE p.id = time_blocks.project_id),
				'Unknown Project'),
			project_team = COALESCE(
				(SELECT p.team FROM projects p WHERE p.id = time_blocks.project_id),
				'')
		WHERE project_id IS NOT NULL AND project_name = ''`)
	if err != nil {
		return 0, fmt.Errorf("backfill time blocks: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.notify(CollectionTimeBlocks)
	}
	return n, nil
}

// DefaultTeams returns the fixed team set seeded into every store.
func DefaultTeams() []Team {
	return []Team{
		{Name: "Documentation", Color: "blue", Status: TeamActive},
		{Name: "Engineering", Color: "green", Status: TeamActive},
		{Name: "Product", Color: "purple", Status: TeamActive},
	}
}

// MigrateTeamsData seeds the default team set and creates a team row for
// every project team name that has no matching team (projects predating the
// teams collection stored team as a free string). Idempotent.
func (s *Store) MigrateTeamsData() error {
	changed := false
	for _, t := range DefaultTeams() {
		ok, err := s.teamExists(t.Name)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := s.insertTeam(t); err != nil {
			return err
		}
		changed = true
	}

	rows, err := s.db.Query(`
		SELECT DISTINCT team FROM projects
		WHERE team != ''
		  AND NOT EXISTS (SELECT 1 FROM teams WHERE name = team COLLATE NOCASE)`)
	if err != nil {
		return fmt.Errorf("find orphan team names: %w", err)
	}
	defer rows.Close()

	var missing []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		missing = append(missing, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, name := range missing {
		if err := s.insertTeam(Team{Name: name, Color: "blue", Status: TeamActive}); err != nil {
			return err
		}
		changed = true
	}

	if changed {
		s.notify(CollectionTeams)
	}
	return nil
}

func (s *Store) insertTeam(t Team) error {
	now := s.now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO teams (name, description, lead, status, color, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Name, t.Description, t.Lead, t.Status, t.Color, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert team %q: %w", t.Name, err)
	}
	return nil
}

// ClearAll wipes every collection in one transaction, children before
// parents so no intermediate state has dangling references.
func (s *Store) ClearAll() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("clear all: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{
		"active_timers", "time_blocks", "weekly_summaries", "preferences", "projects", "teams",
	} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("clear all: %w", err)
	}

	s.notifyAll()
	return nil
}

// ReplaceAll atomically replaces the contents of every collection with the
// snapshot, preserving record ids. Collections are cleared children-first
// and loaded parents-first. On failure the transaction rolls back and the
// store keeps its previous contents.
func (s *Store) ReplaceAll(snap Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrPartialImport, err)
	}
	defer tx.Rollback()

	for _, table := range []string{
		"active_timers", "time_blocks", "weekly_summaries", "preferences", "projects", "teams",
	} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("%w: clear %s: %v", ErrPartialImport, table, err)
		}
	}

	for _, t := range snap.Teams {
		_, err := tx.Exec(
			`INSERT INTO teams (id, name, description, lead, status, color, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			nullID(t.ID), t.Name, t.Description, t.Lead, t.Status, t.Color,
			fmtTime(t.CreatedAt), fmtTime(t.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("%w: load team %q: %v", ErrPartialImport, t.Name, err)
		}
	}

	for _, p := range snap.Projects {
		_, err := tx.Exec(
			`INSERT INTO projects (id, name, team, description, status, priority, content_type,
			                       version, due_date, last_updated, maintenance_status, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			nullID(p.ID), p.Name, p.Team, p.Description, p.Status, p.Priority, p.ContentType,
			p.Version, fmtTimePtr(p.DueDate), fmtTimePtr(p.LastUpdated), p.MaintenanceStatus,
			fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("%w: load project %q: %v", ErrPartialImport, p.Name, err)
		}
	}

	for _, b := range snap.TimeBlocks {
		_, err := tx.Exec(
			`INSERT INTO time_blocks (id, type, content_type, project_id, project_name, project_team,
			                          description, date, start_time, end_time, duration, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			nullID(b.ID), b.Type, b.ContentType, b.ProjectID, b.ProjectName, b.ProjectTeam,
			b.Description, fmtTime(b.Date), fmtTime(b.StartTime), fmtTimePtr(b.EndTime),
			b.Duration, b.Status, fmtTime(b.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("%w: load time block %d: %v", ErrPartialImport, b.ID, err)
		}
	}

	for _, t := range snap.ActiveTimers {
		_, err := tx.Exec(
			`INSERT INTO active_timers (id, type, project_id, project_name, project_team,
			                            description, content_type, start_time, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			nullID(t.ID), t.Type, t.ProjectID, t.ProjectName, t.ProjectTeam,
			t.Description, t.ContentType, fmtTime(t.StartTime), t.Status, fmtTime(t.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("%w: load active timer %d: %v", ErrPartialImport, t.ID, err)
		}
	}

	for _, ws := range snap.WeeklySummaries {
		_, err := tx.Exec(
			`INSERT INTO weekly_summaries (id, week_start, week_end, summary, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			nullID(ws.ID), fmtTime(ws.WeekStart), fmtTime(ws.WeekEnd), ws.Summary, fmtTime(ws.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("%w: load weekly summary %d: %v", ErrPartialImport, ws.ID, err)
		}
	}

	for _, p := range snap.Preferences {
		if _, err := tx.Exec(`INSERT INTO preferences (key, value) VALUES (?, ?)`, p.Key, p.Value); err != nil {
			return fmt.Errorf("%w: load preference %q: %v", ErrPartialImport, p.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrPartialImport, err)
	}

	s.notifyAll()
	return nil
}

// Counts reports the number of rows per collection.
func (s *Store) Counts() (map[Collection]int, error) {
	tables := map[Collection]string{
		CollectionTimeBlocks:      "time_blocks",
		CollectionProjects:        "projects",
		CollectionTeams:           "teams",
		CollectionActiveTimers:    "active_timers",
		CollectionWeeklySummaries: "weekly_summaries",
		CollectionPreferences:     "preferences",
	}
	counts := make(map[Collection]int, len(tables))
	for coll, table := range tables {
		var n int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[coll] = n
	}
	return counts, nil
}

// DefaultDBPath returns ~/.config/inkwell/inkwell.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "inkwell", "inkwell.db"), nil
}

// --- Timestamp helpers ---

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// Imported rows can carry timestamps this app never wrote.
		logger.Debugf("unparseable timestamp %q: %v", s, err)
	}
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
