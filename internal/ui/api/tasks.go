package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Fooracles/SystemApp-sub000/internal/query"
	"github.com/Fooracles/SystemApp-sub000/internal/shift"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
	"github.com/Fooracles/SystemApp-sub000/internal/workflow"
)

// TaskService is the subset of workflow.Service the task endpoints use.
type TaskService interface {
	UpdateTaskStatus(ctx context.Context, actor types.Actor, id int64, status string) (*workflow.TaskStatusResult, error)
	ShiftTask(ctx context.Context, actor types.Actor, id int64, newDate, newTime string) (*workflow.ShiftResult, error)
	EditTask(ctx context.Context, actor types.Actor, in workflow.EditTaskInput) (*types.DelegationTask, error)
	CreateTask(ctx context.Context, actor types.Actor, in workflow.CreateTaskInput) (*types.DelegationTask, error)
	ListTasks(ctx context.Context, actor types.Actor, in workflow.ListTasksInput) (*workflow.TaskPage, error)
}

type taskResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`

	NewStatusIcon           string `json:"new_status_icon,omitempty"`
	UpdatedActualDisplay    string `json:"updated_actual_display,omitempty"`
	UpdatedDelayDisplayHTML string `json:"updated_delay_display_html,omitempty"`

	Task   *types.DelegationTask `json:"task,omitempty"`
	Errors workflow.FieldErrors  `json:"errors,omitempty"`
}

func taskSuccess(w http.ResponseWriter, status int, resp taskResponse) {
	resp.Status = "success"
	writeJSON(w, status, resp)
}

func taskError(w http.ResponseWriter, err error) {
	resp := taskResponse{Status: "error", Message: errorMessage(err)}
	code := statusForError(err)
	var fe workflow.FieldErrors
	if errors.As(err, &fe) {
		resp.Message = "Please correct the highlighted fields"
		resp.Errors = fe
		code = http.StatusUnprocessableEntity
	}
	writeJSON(w, code, resp)
}

func taskRequest(w http.ResponseWriter, r *http.Request) (types.Actor, url.Values, int64, bool) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return types.Actor{}, nil, 0, false
	}
	values, err := formValues(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, taskResponse{Status: "error", Message: fmt.Sprintf("decode payload: %v", err)})
		return types.Actor{}, nil, 0, false
	}
	id, ok := int64Value(values, "task_id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, taskResponse{Status: "error", Message: "task_id is required"})
		return types.Actor{}, nil, 0, false
	}
	return actor, values, id, true
}

// NewTaskStatusHandler returns an HTTP handler that changes a task's status.
func NewTaskStatusHandler(svc TaskService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, values, id, ok := taskRequest(w, r)
		if !ok {
			return
		}
		status := strings.TrimSpace(values.Get("status"))
		if status == "" {
			writeJSON(w, http.StatusBadRequest, taskResponse{Status: "error", Message: "status is required"})
			return
		}
		res, err := svc.UpdateTaskStatus(r.Context(), actor, id, status)
		if err != nil {
			taskError(w, err)
			return
		}
		taskSuccess(w, http.StatusOK, taskResponse{
			Message:                 "Status updated to " + res.Task.Status.Label(),
			NewStatusIcon:           res.Icon,
			UpdatedActualDisplay:    res.ActualDisplay,
			UpdatedDelayDisplayHTML: res.DelayHTML,
		})
	})
}

// NewTaskShiftHandler returns an HTTP handler that moves a task to a new slot.
func NewTaskShiftHandler(svc TaskService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, values, id, ok := taskRequest(w, r)
		if !ok {
			return
		}
		if action := values.Get("action"); action != "" && action != "shift_task" {
			writeJSON(w, http.StatusBadRequest, taskResponse{Status: "error", Message: "unknown action " + action})
			return
		}
		date := strings.TrimSpace(values.Get("new_planned_date"))
		if date == "" {
			writeJSON(w, http.StatusBadRequest, taskResponse{Status: "error", Message: "new_planned_date is required"})
			return
		}
		res, err := svc.ShiftTask(r.Context(), actor, id, date, values.Get("new_planned_time"))
		if err != nil {
			taskError(w, err)
			return
		}
		msg := fmt.Sprintf("Task rescheduled to %s %s", res.Task.PlannedDate, res.Task.PlannedTime)
		if res.Kind == shift.NewWeek {
			msg = fmt.Sprintf("Task moved to %s as %s", res.Task.PlannedDate, res.Task.UniqueID)
		}
		taskSuccess(w, http.StatusOK, taskResponse{Message: msg, Task: res.Task})
	})
}

// NewTaskEditHandler returns an HTTP handler for inline task edits.
func NewTaskEditHandler(svc TaskService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, values, id, ok := taskRequest(w, r)
		if !ok {
			return
		}
		task, err := svc.EditTask(r.Context(), actor, workflow.EditTaskInput{
			TaskID:          id,
			TaskType:        values.Get("task_type"),
			Description:     values.Get("description"),
			Doer:            values.Get("doer"),
			DurationMinutes: values.Get("duration"),
		})
		if err != nil {
			taskError(w, err)
			return
		}
		taskSuccess(w, http.StatusOK, taskResponse{Message: "Task updated", Task: task})
	})
}

// NewTaskCreateHandler returns an HTTP handler that adds a task.
func NewTaskCreateHandler(svc TaskService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		values, err := formValues(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, taskResponse{Status: "error", Message: fmt.Sprintf("decode payload: %v", err)})
			return
		}
		task, err := svc.CreateTask(r.Context(), actor, workflow.CreateTaskInput{
			TaskType:        values.Get("task_type"),
			Description:     values.Get("description"),
			Doer:            firstNonEmpty(values.Get("doer"), values.Get("doer_id")),
			PlannedDate:     values.Get("planned_date"),
			PlannedTime:     values.Get("planned_time"),
			DurationMinutes: firstNonEmpty(values.Get("duration"), values.Get("duration_minutes")),
		})
		if err != nil {
			taskError(w, err)
			return
		}
		w.Header().Set("Location", "/api/tasks?filter_id="+url.QueryEscape(task.UniqueID))
		taskSuccess(w, http.StatusCreated, taskResponse{Message: "Task created", Task: task})
	})
}

type taskListResponse struct {
	Status     string             `json:"status"`
	Tasks      []workflow.TaskRow `json:"tasks"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
	Total      int                `json:"total"`
	Sort       string             `json:"sort"`
	Dir        string             `json:"dir"`
}

// NewTaskListHandler returns an HTTP handler that lists tasks with filters,
// sorting and pagination taken from the query string.
func NewTaskListHandler(svc TaskService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		in := workflow.ListTasksInput{
			Filter: TaskFilterFromQuery(q),
			Sort: types.ParseTaskSortOption(
				firstNonEmpty(q.Get("sort"), q.Get("sort_column")),
				firstNonEmpty(q.Get("dir"), q.Get("sort_order")),
			),
		}
		if p, err := strconv.Atoi(q.Get("page_delegation")); err == nil {
			in.Page = p
		}
		if n, err := strconv.Atoi(q.Get("page_size")); err == nil && n > 0 && n <= 500 {
			in.PageSize = n
		}

		page, err := svc.ListTasks(r.Context(), actor, in)
		if err != nil {
			taskError(w, err)
			return
		}
		sortCol, sortDir := in.Sort.Encode()
		writeJSON(w, http.StatusOK, taskListResponse{
			Status:     "success",
			Tasks:      page.Tasks,
			Page:       page.Page.Number,
			PageSize:   page.Page.Size,
			TotalPages: page.Page.TotalPages,
			Total:      page.Page.Total,
			Sort:       sortCol,
			Dir:        sortDir,
		})
	})
}

// TaskFilterFromQuery reads the listing filter parameters. An unrecognised
// filter_status is ignored.
func TaskFilterFromQuery(q url.Values) types.TaskFilter {
	f := types.TaskFilter{
		UniqueIDContains:    q.Get("filter_id"),
		DescriptionContains: q.Get("filter_description"),
		DoerContains:        q.Get("filter_doer"),
		DepartmentContains:  q.Get("filter_department"),
		PlannedFrom:         strings.TrimSpace(q.Get("filter_date_from")),
		PlannedTo:           strings.TrimSpace(q.Get("filter_date_to")),
		DoerStatus:          query.ParseDoerStatus(q.Get("doer_status")),
	}
	if raw := strings.TrimSpace(q.Get("filter_status")); raw != "" {
		if st, ok := query.NormalizeTaskStatus(raw); ok {
			f.Status = &st
		}
	}
	return f
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
