package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Fooracles/SystemApp-sub000/internal/query"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

const taskSelect = `
	SELECT t.id, t.unique_id, t.task_type, t.description, t.planned_date, t.planned_time, t.duration_minutes,
	       t.doer_id, COALESCE(u.name, ''), t.manager_id, t.assigned_by, t.assigned_by_type,
	       t.department_id, COALESCE(d.name, ''), t.status, t.actual_date, t.actual_time,
	       t.is_delayed, t.delay_duration, t.shifted_count, t.shifted_from, t.shifted_to,
	       t.created_at, t.updated_at
	FROM delegation_tasks t
	LEFT JOIN users u ON u.id = t.doer_id
	LEFT JOIN departments d ON d.id = t.department_id`

// allowedTaskFields lists the columns UpdateTask may set.
var allowedTaskFields = map[string]bool{
	"task_type":        true,
	"description":      true,
	"planned_date":     true,
	"planned_time":     true,
	"duration_minutes": true,
	"doer_id":          true,
	"manager_id":       true,
	"assigned_by":      true,
	"department_id":    true,
	"status":           true,
	"actual_date":      true,
	"actual_time":      true,
	"is_delayed":       true,
	"delay_duration":   true,
	"shifted_count":    true,
	"shifted_to":       true,
}

// CreateTask inserts a delegation task and records a created event.
func (s *Store) CreateTask(ctx context.Context, task *types.DelegationTask, actorID int64) error {
	return s.withTx(ctx, func(q *queries) error {
		return q.createTask(ctx, task, actorID)
	})
}

// GetTask retrieves a task by row ID.
func (s *Store) GetTask(ctx context.Context, id int64) (*types.DelegationTask, error) {
	return s.queries(s.db).getTask(ctx, id)
}

// UpdateTask applies updates to a task and records an event.
func (s *Store) UpdateTask(ctx context.Context, id int64, updates map[string]interface{}, actorID int64) error {
	return s.withTx(ctx, func(q *queries) error {
		return q.updateTask(ctx, id, updates, actorID)
	})
}

// SearchTasks returns tasks matching filter ordered by row ID. Callers
// apply column sorting and pagination over the full result.
func (s *Store) SearchTasks(ctx context.Context, filter types.TaskFilter) ([]*types.DelegationTask, error) {
	where, args := query.TaskWhere(filter)
	// #nosec G202 - where is built from parameterized predicates
	rows, err := s.db.QueryContext(ctx, taskSelect+" "+where+" ORDER BY t.id", args...)
	if err != nil {
		return nil, wrapDBError("search tasks", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*types.DelegationTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (q *queries) createTask(ctx context.Context, task *types.DelegationTask, actorID int64) error {
	if strings.TrimSpace(task.UniqueID) == "" {
		return fmt.Errorf("validation failed: unique_id is required")
	}
	if task.DoerID <= 0 {
		return fmt.Errorf("validation failed: doer is required")
	}
	if task.TaskType == "" {
		task.TaskType = types.TaskTypeDelegation
	}
	if task.Status == "" {
		task.Status = types.TaskPending
	}
	if task.AssignedByType == "" {
		task.AssignedByType = types.AssignedByManager
	}
	now := q.now().UTC()
	stamp := now.Format(timestampLayout)
	task.CreatedAt = parseTimestamp(stamp)
	task.UpdatedAt = task.CreatedAt

	res, err := q.q.ExecContext(ctx, `
		INSERT INTO delegation_tasks (unique_id, task_type, description, planned_date, planned_time, duration_minutes,
			doer_id, manager_id, assigned_by, assigned_by_type, department_id, status, actual_date, actual_time,
			is_delayed, delay_duration, shifted_count, shifted_from, shifted_to, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, task.UniqueID, string(task.TaskType), task.Description, task.PlannedDate, types.NormalizeClock(task.PlannedTime), task.DurationMinutes,
		task.DoerID, int64PtrArg(task.ManagerID), int64PtrArg(task.AssignedBy), string(task.AssignedByType), int64PtrArg(task.DepartmentID),
		string(task.Status), stringPtrArg(task.ActualDate), stringPtrArg(task.ActualTime),
		boolArg(task.IsDelayed), task.DelayDuration, task.ShiftedCount, stringPtrArg(task.ShiftedFrom), stringPtrArg(task.ShiftedTo),
		stamp, stamp)
	if err != nil {
		return wrapDBErrorf(err, "insert task %s", task.UniqueID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapDBError("task id", err)
	}
	task.ID = id
	return q.recordEvent(ctx, types.EntityTask, id, types.EventCreated, actorID, nil, encodeEventValue(task))
}

func (q *queries) getTask(ctx context.Context, id int64) (*types.DelegationTask, error) {
	row := q.q.QueryRowContext(ctx, taskSelect+" WHERE t.id = ?", id)
	task, err := scanTask(row)
	if err != nil {
		return nil, wrapDBErrorf(err, "get task %d", id)
	}
	return task, nil
}

func (q *queries) updateTask(ctx context.Context, id int64, updates map[string]interface{}, actorID int64) error {
	old, err := q.getTask(ctx, id)
	if err != nil {
		return err
	}

	setClauses := []string{"updated_at = ?"}
	args := []interface{}{q.stamp()}
	for _, key := range sortedKeys(updates) {
		if !allowedTaskFields[key] {
			return fmt.Errorf("invalid field for update: %s", key)
		}
		v, err := normalizeValue(updates[key])
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		setClauses = append(setClauses, key+" = ?")
		args = append(args, v)
	}
	args = append(args, id)

	// #nosec G202 - column names come from allowedTaskFields
	if _, err := q.q.ExecContext(ctx, "UPDATE delegation_tasks SET "+strings.Join(setClauses, ", ")+" WHERE id = ?", args...); err != nil {
		return wrapDBErrorf(err, "update task %d", id)
	}
	return q.recordEvent(ctx, types.EntityTask, id, taskEventType(updates), actorID, encodeEventValue(old), encodeEventValue(updates))
}

func taskEventType(updates map[string]interface{}) types.EventType {
	if _, ok := updates["shifted_count"]; ok {
		return types.EventShifted
	}
	if status, ok := updates["status"]; ok {
		if fmt.Sprint(status) == string(types.TaskShifted) {
			return types.EventShifted
		}
		return types.EventStatusChanged
	}
	return types.EventUpdated
}

func scanTask(row scanner) (*types.DelegationTask, error) {
	var (
		t                    types.DelegationTask
		taskType, byType     string
		status               string
		managerID            sql.NullInt64
		assignedBy           sql.NullInt64
		departmentID         sql.NullInt64
		actualDate           sql.NullString
		actualTime           sql.NullString
		isDelayed            int
		shiftedFrom          sql.NullString
		shiftedTo            sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&t.ID, &t.UniqueID, &taskType, &t.Description, &t.PlannedDate, &t.PlannedTime, &t.DurationMinutes,
		&t.DoerID, &t.DoerName, &managerID, &assignedBy, &byType,
		&departmentID, &t.DepartmentName, &status, &actualDate, &actualTime,
		&isDelayed, &t.DelayDuration, &t.ShiftedCount, &shiftedFrom, &shiftedTo,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	t.TaskType = types.TaskType(taskType)
	t.AssignedByType = types.AssignedByType(byType)
	t.Status = types.TaskStatus(status)
	t.ManagerID = nullInt64Ptr(managerID)
	t.AssignedBy = nullInt64Ptr(assignedBy)
	t.DepartmentID = nullInt64Ptr(departmentID)
	t.ActualDate = nullStringPtr(actualDate)
	t.ActualTime = nullStringPtr(actualTime)
	t.IsDelayed = isDelayed != 0
	t.ShiftedFrom = nullStringPtr(shiftedFrom)
	t.ShiftedTo = nullStringPtr(shiftedTo)
	t.CreatedAt = parseTimestamp(createdAt)
	t.UpdatedAt = parseTimestamp(updatedAt)
	return &t, nil
}
