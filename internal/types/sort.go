package types

import "strings"

// TaskSortField identifies the column a task listing is ordered by.
type TaskSortField string

// Sort field constants
const (
	SortFieldID          TaskSortField = "id"
	SortFieldUniqueID    TaskSortField = "unique_id"
	SortFieldDescription TaskSortField = "description"
	SortFieldDoer        TaskSortField = "doer_name"
	SortFieldDepartment  TaskSortField = "department"
	SortFieldPlanned     TaskSortField = "planned_date"
	SortFieldActual      TaskSortField = "actual_date"
	SortFieldStatus      TaskSortField = "status"
	SortFieldDelay       TaskSortField = "delay_duration"
	SortFieldDuration    TaskSortField = "duration"
	SortFieldCreated     TaskSortField = "created_at"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// TaskSortOption is a single column + direction.
type TaskSortOption struct {
	Field     TaskSortField
	Direction SortDirection
}

// DefaultTaskSortOption returns the ordering used when the request names
// no valid column: planned date, newest first.
func DefaultTaskSortOption() TaskSortOption {
	return TaskSortOption{Field: SortFieldPlanned, Direction: SortDesc}
}

// ParseTaskSortOption maps raw query values onto a sort option. Unknown
// columns and directions fall back to the defaults instead of failing.
func ParseTaskSortOption(column, direction string) TaskSortOption {
	opt := DefaultTaskSortOption()
	if field := mapSortField(column); field != "" {
		opt.Field = field
	}
	if dir := mapSortDirection(direction); dir != "" {
		opt.Direction = dir
	}
	return opt
}

// Encode returns the canonical query values for the option.
func (o TaskSortOption) Encode() (string, string) {
	return string(o.Field), string(o.Direction)
}

func mapSortField(raw string) TaskSortField {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "id":
		return SortFieldID
	case "unique_id", "task_id", "uniqueid":
		return SortFieldUniqueID
	case "description", "task", "task_description":
		return SortFieldDescription
	case "doer_name", "doer", "name":
		return SortFieldDoer
	case "department", "department_name":
		return SortFieldDepartment
	case "planned_date", "planned", "planned_time", "date":
		return SortFieldPlanned
	case "actual_date", "actual", "actual_time":
		return SortFieldActual
	case "status":
		return SortFieldStatus
	case "delay_duration", "delay":
		return SortFieldDelay
	case "duration", "duration_minutes":
		return SortFieldDuration
	case "created_at", "created":
		return SortFieldCreated
	default:
		return ""
	}
}

func mapSortDirection(raw string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "asc", "ascending":
		return SortAsc
	case "desc", "descending":
		return SortDesc
	default:
		return ""
	}
}
