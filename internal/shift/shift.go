// Package shift decides how a delegation task moves to a new planned slot.
package shift

import (
	"errors"
	"fmt"
	"time"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

var (
	ErrTerminal  = errors.New("task can no longer be shifted")
	ErrSameSlot  = errors.New("task is already planned for that slot")
	ErrBadTarget = errors.New("invalid target date or time")
)

// Kind is the branch a shift takes.
type Kind int

const (
	// InPlace reschedules the existing row (same ISO week).
	InPlace Kind = iota
	// NewWeek closes the existing row and opens a replacement.
	NewWeek
)

func (k Kind) String() string {
	if k == NewWeek {
		return "new_week"
	}
	return "in_place"
}

// Plan is the outcome of PlanShift.
type Plan struct {
	Kind        Kind
	PlannedDate string
	PlannedTime string
}

// SameWeek reports whether a and b fall in the same ISO week.
func SameWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}

// PlanShift validates the target slot for task and picks the branch.
func PlanShift(task *types.DelegationTask, newDate, newTime string, loc *time.Location) (Plan, error) {
	if task.Status.IsTerminal() {
		return Plan{}, fmt.Errorf("task %s is %s: %w", task.UniqueID, task.Status, ErrTerminal)
	}
	current, err := task.PlannedAt(loc)
	if err != nil {
		return Plan{}, err
	}
	if newTime == "" {
		newTime = task.PlannedTime
	}
	target, err := types.CombineDateTime(newDate, newTime, loc)
	if err != nil {
		return Plan{}, fmt.Errorf("%v: %w", err, ErrBadTarget)
	}
	if target.Equal(current) {
		return Plan{}, ErrSameSlot
	}

	plan := Plan{
		Kind:        InPlace,
		PlannedDate: target.Format(types.DateLayout),
		PlannedTime: target.Format(types.TimeLayout),
	}
	if !SameWeek(current, target) {
		plan.Kind = NewWeek
	}
	return plan, nil
}

// ApplyInPlace reschedules task according to plan. The shift count grows by
// one and any recorded delay is cleared.
func ApplyInPlace(task *types.DelegationTask, plan Plan) {
	task.PlannedDate = plan.PlannedDate
	task.PlannedTime = plan.PlannedTime
	task.ShiftedCount++
	task.IsDelayed = false
	task.DelayDuration = ""
	task.ActualDate = nil
	task.ActualTime = nil
	if task.Status == types.TaskNotDone {
		task.Status = types.TaskPending
	}
}

// CloseForNewWeek marks old as shifted at now and links it to newUniqueID.
func CloseForNewWeek(old *types.DelegationTask, newUniqueID string, now time.Time) {
	date := now.Format(types.DateLayout)
	clock := now.Format(types.TimeLayout)
	old.Status = types.TaskShifted
	old.ActualDate = &date
	old.ActualTime = &clock
	old.IsDelayed = false
	old.DelayDuration = ""
	old.ShiftedTo = &newUniqueID
}

// NewTaskFromShift builds the replacement row for a new-week shift. It
// carries the assignment forward and starts its shift count at 2 so delay
// is computed normally.
func NewTaskFromShift(old *types.DelegationTask, plan Plan, uniqueID string) *types.DelegationTask {
	from := old.UniqueID
	return &types.DelegationTask{
		UniqueID:        uniqueID,
		TaskType:        old.TaskType,
		Description:     old.Description,
		PlannedDate:     plan.PlannedDate,
		PlannedTime:     plan.PlannedTime,
		DurationMinutes: old.DurationMinutes,
		DoerID:          old.DoerID,
		DoerName:        old.DoerName,
		ManagerID:       old.ManagerID,
		AssignedBy:      old.AssignedBy,
		AssignedByType:  old.AssignedByType,
		DepartmentID:    old.DepartmentID,
		DepartmentName:  old.DepartmentName,
		Status:          types.TaskPending,
		ShiftedCount:    2,
		ShiftedFrom:     &from,
	}
}
