package workflow

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/Fooracles/SystemApp-sub000/internal/delay"
	"github.com/Fooracles/SystemApp-sub000/internal/query"
	"github.com/Fooracles/SystemApp-sub000/internal/shift"
	"github.com/Fooracles/SystemApp-sub000/internal/storage"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

// TaskRow is a task as listed: the stored row plus its live delay.
type TaskRow struct {
	*types.DelegationTask
	StatusLabel  string `json:"status_label"`
	DelayDisplay string `json:"delay_display"`
	DelaySeconds int64  `json:"delay_seconds"`
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks []TaskRow  `json:"tasks"`
	Page  query.Page `json:"page"`
}

// ListTasksInput carries the listing filters, sort and page.
type ListTasksInput struct {
	Filter   types.TaskFilter
	Sort     types.TaskSortOption
	Page     int
	PageSize int
}

// ListTasks filters tasks visible to actor, sorts the full result and
// returns the requested page.
func (s *Service) ListTasks(ctx context.Context, actor types.Actor, in ListTasksInput) (*TaskPage, error) {
	now := s.clock()
	f := in.Filter
	f.Visibility = &actor
	if f.Now.IsZero() {
		f.Now = now
	}
	tasks, err := s.store.SearchTasks(ctx, f)
	if err != nil {
		return nil, s.internal(ctx, "list tasks", err)
	}

	sortOpt := in.Sort
	if sortOpt.Field == "" {
		sortOpt = types.DefaultTaskSortOption()
	}
	query.TaskSorter{Option: sortOpt, Now: now, Loc: s.loc}.Sort(tasks)

	size := in.PageSize
	if size <= 0 {
		size = s.pageSize
	}
	pageTasks, page := query.Paginate(tasks, in.Page, size)
	rows := make([]TaskRow, 0, len(pageTasks))
	for _, t := range pageTasks {
		rows = append(rows, s.taskRow(t, now))
	}
	return &TaskPage{Tasks: rows, Page: page}, nil
}

func (s *Service) taskRow(t *types.DelegationTask, now time.Time) TaskRow {
	d := delay.Compute(t, now, s.loc)
	return TaskRow{
		DelegationTask: t,
		StatusLabel:    t.Status.Label(),
		DelayDisplay:   d.Display,
		DelaySeconds:   query.DelaySeconds(t, now, s.loc),
	}
}

// loadTask fetches a task and checks that actor may see it.
func (s *Service) loadTask(ctx context.Context, actor types.Actor, id int64) (*types.DelegationTask, error) {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, s.internal(ctx, "get task", err, "task_id", id)
	}
	if actor.IsAdmin() {
		return task, nil
	}
	visible, err := s.store.SearchTasks(ctx, types.TaskFilter{IDs: []int64{id}, Visibility: &actor})
	if err != nil {
		return nil, s.internal(ctx, "check task visibility", err, "task_id", id)
	}
	if len(visible) == 0 {
		return nil, fmt.Errorf("task %d: %w", id, ErrForbidden)
	}
	return task, nil
}

// TaskStatusResult is what the status endpoint reports back so the caller
// can refresh the row without reloading.
type TaskStatusResult struct {
	Task          *types.DelegationTask
	Icon          string
	ActualDisplay string
	DelayHTML     string
}

// UpdateTaskStatus sets a task's status. Completing a task stamps the
// actual time and stores its delay; other statuses clear both.
func (s *Service) UpdateTaskStatus(ctx context.Context, actor types.Actor, id int64, rawStatus string) (*TaskStatusResult, error) {
	status, ok := query.NormalizeTaskStatus(rawStatus)
	if !ok || status == types.TaskShifted {
		return nil, fmt.Errorf("task status %q: %w", rawStatus, ErrInvalidStatus)
	}
	task, err := s.loadTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if task.Status == types.TaskShifted {
		return nil, fmt.Errorf("task %s was shifted to %s: %w", task.UniqueID, deref(task.ShiftedTo), ErrTerminal)
	}

	now := s.clock()
	task.Status = status
	if status == types.TaskCompleted {
		date, clock := now.Format(types.DateLayout), now.Format(types.TimeLayout)
		task.ActualDate, task.ActualTime = &date, &clock
	} else {
		task.ActualDate, task.ActualTime = nil, nil
	}
	d := delay.Compute(task, now, s.loc)
	task.IsDelayed = status == types.TaskCompleted && d.Delayed
	task.DelayDuration = ""
	if status == types.TaskCompleted && d.Applicable {
		task.DelayDuration = d.Display
	}

	updates := map[string]interface{}{
		"status":         status,
		"actual_date":    task.ActualDate,
		"actual_time":    task.ActualTime,
		"is_delayed":     task.IsDelayed,
		"delay_duration": task.DelayDuration,
	}
	if err := s.store.UpdateTask(ctx, id, updates, actor.UserID); err != nil {
		return nil, s.internal(ctx, "update task status", err, "task_id", id)
	}
	s.logger.InfoContext(ctx, "task status changed", "task", task.UniqueID, "status", status, "actor", actor.UserID)

	return &TaskStatusResult{
		Task:          task,
		Icon:          StatusIcon(status),
		ActualDisplay: ActualDisplay(task),
		DelayHTML:     DelayHTML(d),
	}, nil
}

// StatusIcon is the glyph shown next to a task status.
func StatusIcon(s types.TaskStatus) string {
	switch s {
	case types.TaskCompleted:
		return "✅"
	case types.TaskNotDone:
		return "❌"
	case types.TaskCantBeDone:
		return "⛔"
	case types.TaskShifted:
		return "↪"
	}
	return "⏳"
}

// ActualDisplay renders the actual completion time, or "-" when unset.
func ActualDisplay(t *types.DelegationTask) string {
	if t.ActualDate == nil || *t.ActualDate == "" {
		return delay.NoValue
	}
	clock := deref(t.ActualTime)
	if len(clock) >= 5 {
		clock = clock[:5]
	}
	return strings.TrimSpace(*t.ActualDate + " " + clock)
}

// DelayHTML wraps a delay display in a span whose class reflects lateness.
func DelayHTML(r delay.Result) string {
	class := "delay-none"
	switch {
	case r.Delayed:
		class = "delay-late"
	case r.Display == delay.OnTime:
		class = "delay-ontime"
	}
	return fmt.Sprintf(`<span class="%s">%s</span>`, class, html.EscapeString(r.Display))
}

// ShiftResult describes what a shift did.
type ShiftResult struct {
	Kind shift.Kind
	// Task is the row now carrying the planned slot: the same row for an
	// in-place shift, the replacement for a new-week shift.
	Task *types.DelegationTask
	// Previous is the closed row of a new-week shift.
	Previous *types.DelegationTask
}

// ShiftTask moves a task to a new planned slot. Within the same week the row
// is rescheduled in place; otherwise the row is closed as shifted and a
// replacement is created in one transaction.
func (s *Service) ShiftTask(ctx context.Context, actor types.Actor, id int64, newDate, newTime string) (*ShiftResult, error) {
	task, err := s.loadTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	plan, err := shift.PlanShift(task, strings.TrimSpace(newDate), strings.TrimSpace(newTime), s.loc)
	if err != nil {
		if errors.Is(err, shift.ErrBadTarget) || errors.Is(err, shift.ErrSameSlot) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, err
	}

	if plan.Kind == shift.InPlace {
		shift.ApplyInPlace(task, plan)
		updates := map[string]interface{}{
			"planned_date":   task.PlannedDate,
			"planned_time":   task.PlannedTime,
			"shifted_count":  task.ShiftedCount,
			"status":         task.Status,
			"actual_date":    nil,
			"actual_time":    nil,
			"is_delayed":     false,
			"delay_duration": "",
		}
		if err := s.store.UpdateTask(ctx, id, updates, actor.UserID); err != nil {
			return nil, s.internal(ctx, "shift task", err, "task_id", id)
		}
		s.logger.InfoContext(ctx, "task shifted in place", "task", task.UniqueID, "planned", task.PlannedDate)
		return &ShiftResult{Kind: plan.Kind, Task: task}, nil
	}

	next := shift.NewTaskFromShift(task, plan, NewUniqueID())
	shift.CloseForNewWeek(task, next.UniqueID, s.clock())
	err = s.store.RunInTransaction(ctx, func(tx storage.Transaction) error {
		closeUpdates := map[string]interface{}{
			"status":         task.Status,
			"actual_date":    task.ActualDate,
			"actual_time":    task.ActualTime,
			"is_delayed":     false,
			"delay_duration": "",
			"shifted_to":     task.ShiftedTo,
		}
		if err := tx.UpdateTask(ctx, task.ID, closeUpdates, actor.UserID); err != nil {
			return err
		}
		return tx.CreateTask(ctx, next, actor.UserID)
	})
	if err != nil {
		return nil, s.internal(ctx, "shift task to new week", err, "task_id", id)
	}
	s.logger.InfoContext(ctx, "task shifted to new week", "from", task.UniqueID, "to", next.UniqueID, "planned", next.PlannedDate)
	return &ShiftResult{Kind: plan.Kind, Task: next, Previous: task}, nil
}

// EditTaskInput is the inline edit form.
type EditTaskInput struct {
	TaskID          int64
	TaskType        string
	Description     string
	Doer            string // user id or exact name
	DurationMinutes string
}

// EditTask updates the editable fields of a task. Admins and managers may
// edit any visible task; doers only tasks they assigned themselves.
func (s *Service) EditTask(ctx context.Context, actor types.Actor, in EditTaskInput) (*types.DelegationTask, error) {
	task, err := s.loadTask(ctx, actor, in.TaskID)
	if err != nil {
		return nil, err
	}
	if actor.IsDoer() && !(task.DoerID == actor.UserID && task.AssignedByType == types.AssignedBySelf) {
		return nil, fmt.Errorf("doers may only edit their own tasks: %w", ErrForbidden)
	}
	if task.Status.IsTerminal() {
		return nil, fmt.Errorf("task %s is %s: %w", task.UniqueID, task.Status, ErrTerminal)
	}

	fe := FieldErrors{}
	taskType := task.TaskType
	if raw := strings.TrimSpace(in.TaskType); raw != "" {
		taskType = types.TaskType(strings.ToLower(raw))
		if !taskType.IsValid() {
			fe.add("task_type", "must be delegation or checklist")
		}
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		fe.add("description", "is required")
	}
	minutes, ok := parseMinutes(in.DurationMinutes)
	if !ok {
		fe.add("duration", "must be a positive number of minutes")
	}
	doer := &types.User{ID: task.DoerID, DepartmentID: task.DepartmentID}
	if strings.TrimSpace(in.Doer) != "" {
		doer, err = s.resolveDoer(ctx, in.Doer)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				return nil, s.internal(ctx, "resolve doer", err)
			}
			fe.add("doer", "no such user")
		}
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	if actor.IsDoer() && doer.ID != actor.UserID {
		return nil, fmt.Errorf("doers may not reassign tasks: %w", ErrForbidden)
	}

	updates := map[string]interface{}{
		"task_type":        taskType,
		"description":      desc,
		"duration_minutes": minutes,
		"doer_id":          doer.ID,
		"department_id":    doer.DepartmentID,
	}
	if err := s.store.UpdateTask(ctx, task.ID, updates, actor.UserID); err != nil {
		return nil, s.internal(ctx, "edit task", err, "task_id", task.ID)
	}
	edited, err := s.store.GetTask(ctx, task.ID)
	if err != nil {
		return nil, s.internal(ctx, "reload task", err, "task_id", task.ID)
	}
	return edited, nil
}

// CreateTaskInput is the add-task form.
type CreateTaskInput struct {
	TaskType        string
	Description     string
	Doer            string // user id or exact name; ignored for doers
	PlannedDate     string
	PlannedTime     string
	DurationMinutes string
}

// CreateTask validates the form and inserts a new pending task. All field
// problems are reported together and nothing is written when any exist.
func (s *Service) CreateTask(ctx context.Context, actor types.Actor, in CreateTaskInput) (*types.DelegationTask, error) {
	if !actor.IsAdmin() && !actor.IsManager() && !actor.IsDoer() {
		return nil, fmt.Errorf("%s may not create tasks: %w", actor.Role, ErrForbidden)
	}

	fe := FieldErrors{}
	taskType := types.TaskTypeDelegation
	if raw := strings.TrimSpace(in.TaskType); raw != "" {
		taskType = types.TaskType(strings.ToLower(raw))
		if !taskType.IsValid() {
			fe.add("task_type", "must be delegation or checklist")
		}
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		fe.add("description", "is required")
	}
	date := strings.TrimSpace(in.PlannedDate)
	if date == "" {
		fe.add("planned_date", "is required")
	} else if _, err := time.ParseInLocation(types.DateLayout, date, s.loc); err != nil {
		fe.add("planned_date", "must be YYYY-MM-DD")
	}
	clock := types.NormalizeClock(in.PlannedTime)
	if clock == "" {
		fe.add("planned_time", "is required")
	} else if _, err := time.Parse(types.TimeLayout, clock); err != nil {
		fe.add("planned_time", "must be HH:MM or HH:MM:SS")
	}
	minutes, ok := parseMinutes(in.DurationMinutes)
	if !ok {
		fe.add("duration", "must be a positive number of minutes")
	}

	var doer *types.User
	var err error
	switch {
	case actor.IsDoer():
		doer, err = s.store.GetUser(ctx, actor.UserID)
	case strings.TrimSpace(in.Doer) == "":
		fe.add("doer", "is required")
	default:
		doer, err = s.resolveDoer(ctx, in.Doer)
	}
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, s.internal(ctx, "resolve doer", err)
		}
		fe.add("doer", "no such user")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	task := &types.DelegationTask{
		UniqueID:        NewUniqueID(),
		TaskType:        taskType,
		Description:     desc,
		PlannedDate:     date,
		PlannedTime:     clock,
		DurationMinutes: minutes,
		DoerID:          doer.ID,
		DepartmentID:    doer.DepartmentID,
		Status:          types.TaskPending,
	}
	if actor.IsDoer() {
		task.AssignedByType = types.AssignedBySelf
		task.ManagerID = doer.ManagerID
	} else {
		by := actor.UserID
		task.AssignedBy = &by
		task.AssignedByType = types.AssignedByManager
		task.ManagerID = doer.ManagerID
		if actor.IsManager() {
			task.ManagerID = &by
		}
	}

	if err := s.store.CreateTask(ctx, task, actor.UserID); err != nil {
		return nil, s.internal(ctx, "create task", err, "doer_id", doer.ID)
	}
	s.logger.InfoContext(ctx, "task created", "task", task.UniqueID, "doer_id", doer.ID, "actor", actor.UserID)
	return s.store.GetTask(ctx, task.ID)
}

// BackfillDelays rewrites stored delays still in the legacy
// "X days Y hrs Z mins" format. It returns how many tasks were (or, with
// dryRun, would be) changed.
func (s *Service) BackfillDelays(ctx context.Context, dryRun bool) (int, error) {
	tasks, err := s.store.SearchTasks(ctx, types.TaskFilter{})
	if err != nil {
		return 0, s.internal(ctx, "backfill delays", err)
	}
	changed := 0
	for _, t := range tasks {
		if !delay.IsLegacy(t.DelayDuration) {
			continue
		}
		secs, ok := delay.Parse(t.DelayDuration)
		if !ok {
			continue
		}
		formatted := delay.Format(secs)
		if secs == 0 {
			formatted = delay.OnTime
		}
		changed++
		if dryRun {
			continue
		}
		if err := s.store.UpdateTask(ctx, t.ID, map[string]interface{}{"delay_duration": formatted}, 0); err != nil {
			return changed - 1, s.internal(ctx, "backfill delays", err, "task_id", t.ID)
		}
	}
	return changed, nil
}

// resolveDoer accepts a numeric user id or an exact user name.
func (s *Service) resolveDoer(ctx context.Context, ref string) (*types.User, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return s.store.GetUser(ctx, id)
	}
	return s.store.FindUserByName(ctx, ref)
}

// NewUniqueID returns a sortable identifier for a new task row.
func NewUniqueID() string {
	return ulid.Make().String()
}

func parseMinutes(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
