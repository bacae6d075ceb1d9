package query

import (
	"strings"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

var taskStatusSynonyms = map[string]types.TaskStatus{
	"pending":         types.TaskPending,
	"open":            types.TaskPending,
	"todo":            types.TaskPending,
	"in_progress":     types.TaskPending,
	"in progress":     types.TaskPending,
	"completed":       types.TaskCompleted,
	"complete":        types.TaskCompleted,
	"done":            types.TaskCompleted,
	"finished":        types.TaskCompleted,
	"not_done":        types.TaskNotDone,
	"not done":        types.TaskNotDone,
	"notdone":         types.TaskNotDone,
	"not-done":        types.TaskNotDone,
	"cant_be_done":    types.TaskCantBeDone,
	"can't be done":   types.TaskCantBeDone,
	"cant be done":    types.TaskCantBeDone,
	"cannot be done":  types.TaskCantBeDone,
	"can not be done": types.TaskCantBeDone,
	"shifted":         types.TaskShifted,
}

// NormalizeTaskStatus maps the many spellings used by filters and forms
// onto a canonical task status.
func NormalizeTaskStatus(raw string) (types.TaskStatus, bool) {
	key := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	key = strings.ReplaceAll(key, "’", "'")
	s, ok := taskStatusSynonyms[key]
	return s, ok
}

// ParseDoerStatus reads the doer_status query value. Unknown values mean all.
func ParseDoerStatus(raw string) types.DoerStatus {
	switch types.DoerStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case types.DoerStatusPending:
		return types.DoerStatusPending
	case types.DoerStatusCompleted:
		return types.DoerStatusCompleted
	case types.DoerStatusDelayed:
		return types.DoerStatusDelayed
	}
	return types.DoerStatusAll
}
