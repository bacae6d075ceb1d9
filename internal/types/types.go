// Package types defines core data structures for the sysapp task and ticket tracker.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Layouts used for the split date/time columns on delegation tasks.
const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04:05"
	TimestampLayout = "2006-01-02 15:04:05"
)

// Role identifies what a user is allowed to see and change.
type Role string

// Role constants
const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleDoer    Role = "doer"
	RoleClient  Role = "client"
)

// IsValid checks if the role value is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleDoer, RoleClient:
		return true
	}
	return false
}

// User is an account that can act on tasks and items.
type User struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email,omitempty"`
	Role            Role   `json:"role"`
	ManagerID       *int64 `json:"manager_id,omitempty"`
	DepartmentID    *int64 `json:"department_id,omitempty"`
	ClientAccountID *int64 `json:"client_account_id,omitempty"`
}

// Actor is the role context a request runs under. It is resolved once per
// request and passed explicitly to every service call.
type Actor struct {
	UserID          int64
	Name            string
	Role            Role
	ClientAccountID *int64
}

// ActorFromUser builds the request context for u.
func ActorFromUser(u *User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{
		UserID:          u.ID,
		Name:            u.Name,
		Role:            u.Role,
		ClientAccountID: u.ClientAccountID,
	}
}

func (a Actor) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a Actor) IsManager() bool { return a.Role == RoleManager }
func (a Actor) IsDoer() bool    { return a.Role == RoleDoer }
func (a Actor) IsClient() bool  { return a.Role == RoleClient }

// Department groups doers for reporting.
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ClientAccount groups client users belonging to one customer.
type ClientAccount struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ItemType categorizes work items on the ticket page
type ItemType string

// Item type constants
const (
	ItemTask     ItemType = "Task"
	ItemTicket   ItemType = "Ticket"
	ItemRequired ItemType = "Required"
)

// IsValid checks if the item type value is valid
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTask, ItemTicket, ItemRequired:
		return true
	}
	return false
}

// ParseItemType accepts any casing of a known item type.
func ParseItemType(raw string) (ItemType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "task":
		return ItemTask, true
	case "ticket":
		return ItemTicket, true
	case "required", "requirement":
		return ItemRequired, true
	}
	return "", false
}

// ItemStatus is the lifecycle state of a work item.
type ItemStatus string

// Work item status constants
const (
	StatusAssigned   ItemStatus = "Assigned"
	StatusWorking    ItemStatus = "Working"
	StatusReview     ItemStatus = "Review"
	StatusRevise     ItemStatus = "Revise"
	StatusApproved   ItemStatus = "Approved"
	StatusCompleted  ItemStatus = "Completed"
	StatusRaised     ItemStatus = "Raised"
	StatusInProgress ItemStatus = "In Progress"
	StatusResolved   ItemStatus = "Resolved"
	StatusRequested  ItemStatus = "Requested"
	StatusProvided   ItemStatus = "Provided"
	StatusDropped    ItemStatus = "Dropped" // Terminal soft-removal for every item type
)

// WorkItem is a Task, Ticket or Required entry on the ticket page.
type WorkItem struct {
	ID                  int64      `json:"id"`
	Type                ItemType   `json:"type"`
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	Status              ItemStatus `json:"status"`
	CreatedBy           int64      `json:"created_by"`
	CreatedByName       string     `json:"created_by_name,omitempty"`
	AssignedTo          *int64     `json:"assigned_to,omitempty"`
	AssignedToName      string     `json:"assigned_to_name,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	StatusUpdatedAt     time.Time  `json:"status_updated_at"`
	Attachments         []string   `json:"attachments,omitempty"`
	ProvidedDescription *string    `json:"provided_description,omitempty"`
	ProvidedAttachments []string   `json:"provided_attachments,omitempty"`
}

// IsDropped reports whether the item has been soft-removed.
func (i *WorkItem) IsDropped() bool {
	return i.Status == StatusDropped
}

// HasAttachment reports whether name is one of the item's own or provided attachments.
func (i *WorkItem) HasAttachment(name string) bool {
	for _, a := range i.Attachments {
		if a == name {
			return true
		}
	}
	for _, a := range i.ProvidedAttachments {
		if a == name {
			return true
		}
	}
	return false
}

// Validate checks if the item has valid field values
func (i *WorkItem) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(i.Title) > 255 {
		return fmt.Errorf("title must be 255 characters or less (got %d)", len(i.Title))
	}
	if !i.Type.IsValid() {
		return fmt.Errorf("invalid item type: %s", i.Type)
	}
	if i.CreatedBy <= 0 {
		return fmt.Errorf("created_by is required")
	}
	return nil
}

// TaskStatus is the state of a delegation or checklist task.
type TaskStatus string

// Task status constants
const (
	TaskPending    TaskStatus = "pending"
	TaskCompleted  TaskStatus = "completed"
	TaskNotDone    TaskStatus = "not_done"
	TaskCantBeDone TaskStatus = "cant_be_done"
	TaskShifted    TaskStatus = "shifted" // Old row of a shift into another week
)

// IsValid checks if the task status value is valid
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskPending, TaskCompleted, TaskNotDone, TaskCantBeDone, TaskShifted:
		return true
	}
	return false
}

// IsDone reports whether the task carries an actual completion timestamp.
func (s TaskStatus) IsDone() bool {
	return s == TaskCompleted || s == TaskShifted
}

// IsTerminal reports whether the task can no longer be rescheduled.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskCompleted || s == TaskShifted || s == TaskCantBeDone
}

// Label is the human-readable status text used in listings.
func (s TaskStatus) Label() string {
	switch s {
	case TaskPending:
		return "Pending"
	case TaskCompleted:
		return "Completed"
	case TaskNotDone:
		return "Not Done"
	case TaskCantBeDone:
		return "Can't Be Done"
	case TaskShifted:
		return "Shifted"
	}
	return string(s)
}

// TaskType distinguishes one-off delegations from recurring checklist entries.
type TaskType string

// Task type constants
const (
	TaskTypeDelegation TaskType = "delegation"
	TaskTypeChecklist  TaskType = "checklist"
)

// IsValid checks if the task type value is valid
func (t TaskType) IsValid() bool {
	return t == TaskTypeDelegation || t == TaskTypeChecklist
}

// AssignedByType records whether a doer created the task for themselves.
type AssignedByType string

const (
	AssignedBySelf    AssignedByType = "self"
	AssignedByManager AssignedByType = "manager"
)

// DelegationTask is a dated unit of work assigned to a doer.
type DelegationTask struct {
	ID              int64          `json:"id"`
	UniqueID        string         `json:"unique_id"`
	TaskType        TaskType       `json:"task_type"`
	Description     string         `json:"description"`
	PlannedDate     string         `json:"planned_date"`
	PlannedTime     string         `json:"planned_time"`
	DurationMinutes int            `json:"duration_minutes"`
	DoerID          int64          `json:"doer_id"`
	DoerName        string         `json:"doer_name,omitempty"`
	ManagerID       *int64         `json:"manager_id,omitempty"`
	AssignedBy      *int64         `json:"assigned_by,omitempty"`
	AssignedByType  AssignedByType `json:"assigned_by_type"`
	DepartmentID    *int64         `json:"department_id,omitempty"`
	DepartmentName  string         `json:"department_name,omitempty"`
	Status          TaskStatus     `json:"status"`
	ActualDate      *string        `json:"actual_date,omitempty"`
	ActualTime      *string        `json:"actual_time,omitempty"`
	IsDelayed       bool           `json:"is_delayed"`
	DelayDuration   string         `json:"delay_duration,omitempty"`
	ShiftedCount    int            `json:"shifted_count"`
	ShiftedFrom     *string        `json:"shifted_from,omitempty"` // unique_id of the row this one replaced
	ShiftedTo       *string        `json:"shifted_to,omitempty"`   // unique_id of the replacement row
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// PlannedAt combines planned_date and planned_time in loc.
func (t *DelegationTask) PlannedAt(loc *time.Location) (time.Time, error) {
	return CombineDateTime(t.PlannedDate, t.PlannedTime, loc)
}

// ActualAt combines actual_date and actual_time in loc. ok is false when the
// task has no actual timestamp yet.
func (t *DelegationTask) ActualAt(loc *time.Location) (at time.Time, ok bool, err error) {
	if t.ActualDate == nil || strings.TrimSpace(*t.ActualDate) == "" {
		return time.Time{}, false, nil
	}
	actualTime := ""
	if t.ActualTime != nil {
		actualTime = *t.ActualTime
	}
	at, err = CombineDateTime(*t.ActualDate, actualTime, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return at, true, nil
}

// CombineDateTime parses a YYYY-MM-DD date and an optional HH:MM[:SS] time.
func CombineDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	date = strings.TrimSpace(date)
	clock = NormalizeClock(clock)
	if clock == "" {
		clock = "00:00:00"
	}
	ts, err := time.ParseInLocation(TimestampLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %q %q: %w", date, clock, err)
	}
	return ts, nil
}

// NormalizeClock pads HH:MM to HH:MM:SS; other input is returned trimmed.
func NormalizeClock(clock string) string {
	clock = strings.TrimSpace(clock)
	if len(clock) == len("15:04") && strings.Count(clock, ":") == 1 {
		return clock + ":00"
	}
	return clock
}

// Event represents an audit trail entry
type Event struct {
	ID        int64     `json:"id"`
	Entity    string    `json:"entity"`
	EntityID  int64     `json:"entity_id"`
	EventType EventType `json:"event_type"`
	ActorID   int64     `json:"actor_id"`
	OldValue  *string   `json:"old_value,omitempty"`
	NewValue  *string   `json:"new_value,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EventType categorizes audit trail events
type EventType string

// Event type constants for audit trail
const (
	EventCreated       EventType = "created"
	EventUpdated       EventType = "updated"
	EventStatusChanged EventType = "status_changed"
	EventDropped       EventType = "dropped"
	EventProvided      EventType = "provided"
	EventShifted       EventType = "shifted"
)

// Audit entity names
const (
	EntityItem = "item"
	EntityTask = "task"
)

// DoerStatus narrows a doer's own task list.
type DoerStatus string

const (
	DoerStatusAll       DoerStatus = "all"
	DoerStatusPending   DoerStatus = "pending"
	DoerStatusCompleted DoerStatus = "completed"
	DoerStatusDelayed   DoerStatus = "delayed"
)

// TaskFilter is used to filter task queries. All set fields combine with AND.
type TaskFilter struct {
	IDs                 []int64
	UniqueIDContains    string
	DescriptionContains string
	DoerContains        string
	DepartmentContains  string
	Status              *TaskStatus
	PlannedFrom         string // inclusive YYYY-MM-DD
	PlannedTo           string // inclusive YYYY-MM-DD
	DoerStatus          DoerStatus
	DoerID              *int64

	// Now anchors the "delayed" doer status; zero means time.Now().
	Now time.Time

	// Visibility restricts results to what the actor may see. Nil means unrestricted.
	Visibility *Actor
}

// ItemFilter is used to filter work item queries
type ItemFilter struct {
	IDs        []int64
	Type       *ItemType
	Status     *ItemStatus
	Visibility *Actor
}

// UserFilter is used to filter user queries
type UserFilter struct {
	Role            *Role
	ClientAccountID *int64
	ManagerID       *int64
}
