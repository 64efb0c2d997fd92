package store

import "time"

// Record statuses. TimeBlock rows are immutable once completed; active
// timers are deleted on stop, never completed in place.
const (
	BlockActive    = "active"
	BlockCompleted = "completed"

	TimerActive = "active"
	TimerPaused = "paused"

	ProjectPlanning   = "planning"
	ProjectInProgress = "in-progress"
	ProjectReview     = "review"
	ProjectPublished  = "published"
	ProjectArchived   = "archived"

	TeamActive   = "active"
	TeamArchived = "archived"
)

// Maintenance status classifications derived from a project's last-updated age.
const (
	MaintenanceCurrent  = "current"
	MaintenanceStale    = "stale"
	MaintenanceOutdated = "outdated"
	MaintenanceCritical = "critical"
)

// WorkPhases are the categorical tags a time block or timer carries.
var WorkPhases = []string{
	"research",
	"writing",
	"review-editing",
	"version-updates",
	"publishing",
	"maintenance",
}

// ContentTypes classify the documentation being worked on.
var ContentTypes = []string{
	"api-docs",
	"user-guides",
	"release-notes",
	"tutorials",
	"technical-specs",
	"reference",
	"troubleshooting",
	"onboarding",
	"other",
}

// Team groups projects by the team name they reference.
type Team struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Lead        string    `json:"lead,omitempty"`
	Status      string    `json:"status"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Project is a documentation project. Team is a name reference validated at
// write time. MaintenanceStatus is derived from LastUpdated and cached on
// write; recompute with MaintenanceStatus() for a fresh classification.
type Project struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Team              string     `json:"team"`
	Description       string     `json:"description,omitempty"`
	Status            string     `json:"status"`
	Priority          string     `json:"priority"`
	ContentType       string     `json:"contentType,omitempty"`
	Version           string     `json:"version,omitempty"`
	DueDate           *time.Time `json:"dueDate,omitempty"`
	LastUpdated       *time.Time `json:"lastUpdated,omitempty"`
	MaintenanceStatus string     `json:"maintenanceStatus,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// TimeBlock is a completed (or, for legacy rows, still open) record of time
// spent. ProjectName and ProjectTeam are denormalized copies taken from the
// project at creation time; renaming a project does not rewrite history.
type TimeBlock struct {
	ID          int64      `json:"id"`
	Type        string     `json:"type"`
	ContentType string     `json:"contentType,omitempty"`
	ProjectID   *int64     `json:"projectId,omitempty"`
	ProjectName string     `json:"projectName,omitempty"`
	ProjectTeam string     `json:"projectTeam,omitempty"`
	Description string     `json:"description,omitempty"`
	Date        time.Time  `json:"date"`
	StartTime   time.Time  `json:"startTime"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	Duration    int64      `json:"duration"` // minutes, floor-rounded
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ActiveTimer is a running or paused timer. Elapsed time is always derived
// from StartTime; pausing changes status only.
type ActiveTimer struct {
	ID          int64     `json:"id"`
	Type        string    `json:"type"`
	ProjectID   int64     `json:"projectId"`
	ProjectName string    `json:"projectName"`
	ProjectTeam string    `json:"projectTeam"`
	Description string    `json:"description,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	StartTime   time.Time `json:"startTime"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Preference is a simple key-value row.
type Preference struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Well-known preference keys.
const (
	PrefTheme          = "theme"
	PrefLastBackupDate = "lastBackupDate"
)

// WeeklySummary is an archival snapshot of a generated weekly report.
// Never mutated after creation.
type WeeklySummary struct {
	ID        int64     `json:"id"`
	WeekStart time.Time `json:"weekStart"`
	WeekEnd   time.Time `json:"weekEnd"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
}

// BlockFilter selects time blocks in queries. Nil/empty fields are ignored.
type BlockFilter struct {
	ProjectID   *int64
	Team        string
	Phase       string
	ContentType string
	Status      string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// ProjectFilter selects projects in queries.
type ProjectFilter struct {
	Team            string
	Status          string
	IncludeArchived bool
}

// ProjectTotal is an aggregated per-project time total.
type ProjectTotal struct {
	ProjectName string
	ProjectTeam string
	Minutes     int64
	Blocks      int
}

// Snapshot carries the full contents of every collection, used by backup
// restore. Record ids are preserved.
type Snapshot struct {
	TimeBlocks      []TimeBlock
	Projects        []Project
	Teams           []Team
	ActiveTimers    []ActiveTimer
	WeeklySummaries []WeeklySummary
	Preferences     []Preference
}
