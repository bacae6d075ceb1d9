package query

import (
	"strings"
	"time"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

// Column references used by the task listing query. The store aliases
// delegation_tasks as t, the doer as u and the department as d.
const (
	colTaskID          = "t.id"
	colTaskUniqueID    = "t.unique_id"
	colTaskDescription = "t.description"
	colTaskStatus      = "t.status"
	colTaskPlannedDate = "t.planned_date"
	colTaskPlannedTime = "t.planned_time"
	colTaskDoerID      = "t.doer_id"
	colTaskManagerID   = "t.manager_id"
	colTaskAssignedBy  = "t.assigned_by"
	colTaskIsDelayed   = "t.is_delayed"
	colDoerName        = "u.name"
	colDepartmentName  = "d.name"

	colItemID         = "i.id"
	colItemType       = "i.item_type"
	colItemStatus     = "i.status"
	colItemCreatedBy  = "i.created_by"
	colItemAssignedTo = "i.assigned_to"
)

// TaskWhere translates f into a WHERE clause over the task listing join.
func TaskWhere(f types.TaskFilter) (string, []any) {
	b := &Builder{}
	if len(f.IDs) > 0 {
		b.Where(In(colTaskID, f.IDs))
	}
	if s := strings.TrimSpace(f.UniqueIDContains); s != "" {
		b.Where(Contains(colTaskUniqueID, s))
	}
	if s := strings.TrimSpace(f.DescriptionContains); s != "" {
		b.Where(Contains(colTaskDescription, s))
	}
	if s := strings.TrimSpace(f.DoerContains); s != "" {
		b.Where(Contains(colDoerName, s))
	}
	if s := strings.TrimSpace(f.DepartmentContains); s != "" {
		b.Where(Contains(colDepartmentName, s))
	}
	if f.Status != nil {
		b.Where(Eq(colTaskStatus, string(*f.Status)))
	}
	if f.PlannedFrom != "" {
		b.Where(Raw(colTaskPlannedDate+" >= ?", f.PlannedFrom))
	}
	if f.PlannedTo != "" {
		b.Where(Raw(colTaskPlannedDate+" <= ?", f.PlannedTo))
	}
	if f.DoerID != nil {
		b.Where(Eq(colTaskDoerID, *f.DoerID))
	}
	b.Where(doerStatusPredicate(f.DoerStatus, f.Now))
	if f.Visibility != nil {
		b.Where(TaskVisibility(*f.Visibility))
	}
	return b.Build()
}

func doerStatusPredicate(ds types.DoerStatus, now time.Time) Predicate {
	switch ds {
	case types.DoerStatusPending:
		return In(colTaskStatus, []string{string(types.TaskPending), string(types.TaskNotDone)})
	case types.DoerStatusCompleted:
		return Eq(colTaskStatus, string(types.TaskCompleted))
	case types.DoerStatusDelayed:
		if now.IsZero() {
			now = time.Now()
		}
		today := now.Format(types.DateLayout)
		clock := now.Format(types.TimeLayout)
		overdue := And(
			In(colTaskStatus, []string{string(types.TaskPending), string(types.TaskNotDone)}),
			Or(
				Raw(colTaskPlannedDate+" < ?", today),
				And(Eq(colTaskPlannedDate, today), Raw(colTaskPlannedTime+" < ?", clock)),
			),
		)
		return Or(Raw(colTaskIsDelayed+" = 1"), overdue)
	}
	return Predicate{}
}

// TaskVisibility restricts tasks to those the actor may see. Managers see
// tasks they manage, assigned, or own, tasks of their reports, and legacy
// rows with neither a manager nor an assigner.
func TaskVisibility(a types.Actor) Predicate {
	switch a.Role {
	case types.RoleAdmin:
		return Predicate{}
	case types.RoleManager:
		return Or(
			Eq(colTaskManagerID, a.UserID),
			Eq(colTaskAssignedBy, a.UserID),
			Eq(colTaskDoerID, a.UserID),
			Raw(colTaskDoerID+" IN (SELECT id FROM users WHERE manager_id = ?)", a.UserID),
			Raw("("+colTaskAssignedBy+" IS NULL AND "+colTaskManagerID+" IS NULL)"),
		)
	case types.RoleDoer:
		return Eq(colTaskDoerID, a.UserID)
	}
	return Raw("1 = 0")
}

// ItemWhere translates f into a WHERE clause over work items aliased as i.
func ItemWhere(f types.ItemFilter) (string, []any) {
	b := &Builder{}
	if len(f.IDs) > 0 {
		b.Where(In(colItemID, f.IDs))
	}
	if f.Type != nil {
		b.Where(Eq(colItemType, string(*f.Type)))
	}
	if f.Status != nil {
		b.Where(Eq(colItemStatus, string(*f.Status)))
	}
	if f.Visibility != nil {
		b.Where(ItemVisibility(*f.Visibility))
	}
	return b.Build()
}

// ItemVisibility restricts work items to those the actor may see.
func ItemVisibility(a types.Actor) Predicate {
	switch a.Role {
	case types.RoleAdmin:
		return Predicate{}
	case types.RoleManager:
		return Or(
			Eq(colItemCreatedBy, a.UserID),
			Eq(colItemAssignedTo, a.UserID),
			Raw(colItemCreatedBy+" IN (SELECT id FROM users WHERE manager_id = ?)", a.UserID),
			Raw(colItemCreatedBy+" IN (SELECT id FROM users WHERE role = ?)", string(types.RoleClient)),
		)
	case types.RoleClient:
		if a.ClientAccountID == nil {
			return Eq(colItemCreatedBy, a.UserID)
		}
		return Raw(colItemCreatedBy+" IN (SELECT id FROM users WHERE client_account_id = ?)", *a.ClientAccountID)
	case types.RoleDoer:
		return Eq(colItemAssignedTo, a.UserID)
	}
	return Raw("1 = 0")
}
