package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

func mondayTask() *types.DelegationTask {
	dept := int64(4)
	mgr := int64(2)
	// 2024-03-04 is a Monday.
	return &types.DelegationTask{
		UniqueID:        "T-1",
		TaskType:        types.TaskTypeDelegation,
		Description:     "Call supplier",
		PlannedDate:     "2024-03-04",
		PlannedTime:     "10:00:00",
		DurationMinutes: 45,
		DoerID:          9,
		DoerName:        "Ravi",
		ManagerID:       &mgr,
		AssignedBy:      &mgr,
		AssignedByType:  types.AssignedByManager,
		DepartmentID:    &dept,
		Status:          types.TaskPending,
		IsDelayed:       true,
		DelayDuration:   "2 h",
	}
}

func TestSameWeek(t *testing.T) {
	mon := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	sun := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)
	nextMon := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameWeek(mon, sun))
	assert.False(t, SameWeek(sun, nextMon))

	// ISO week 1 of 2025 starts on 2024-12-30.
	assert.True(t, SameWeek(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))
}

func TestShiftSameWeek(t *testing.T) {
	task := mondayTask()
	plan, err := PlanShift(task, "2024-03-06", "14:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, InPlace, plan.Kind)

	ApplyInPlace(task, plan)
	assert.Equal(t, 1, task.ShiftedCount)
	assert.Equal(t, "2024-03-06", task.PlannedDate)
	assert.Equal(t, "14:30:00", task.PlannedTime)
	assert.False(t, task.IsDelayed)
	assert.Empty(t, task.DelayDuration)
}

func TestShiftNewWeek(t *testing.T) {
	old := mondayTask()
	plan, err := PlanShift(old, "2024-03-25", "", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, NewWeek, plan.Kind)
	assert.Equal(t, "10:00:00", plan.PlannedTime)

	next := NewTaskFromShift(old, plan, "T-2")
	CloseForNewWeek(old, next.UniqueID, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))

	assert.Equal(t, types.TaskShifted, old.Status)
	assert.True(t, old.Status.IsTerminal())
	require.NotNil(t, old.ShiftedTo)
	assert.Equal(t, "T-2", *old.ShiftedTo)
	require.NotNil(t, old.ActualDate)
	assert.Equal(t, "2024-03-05", *old.ActualDate)

	assert.Equal(t, 2, next.ShiftedCount)
	assert.Equal(t, old.DoerID, next.DoerID)
	assert.Equal(t, old.DepartmentID, next.DepartmentID)
	assert.Equal(t, old.DurationMinutes, next.DurationMinutes)
	assert.Equal(t, old.Description, next.Description)
	assert.Equal(t, types.TaskPending, next.Status)
	require.NotNil(t, next.ShiftedFrom)
	assert.Equal(t, "T-1", *next.ShiftedFrom)
}

func TestShiftRejections(t *testing.T) {
	task := mondayTask()
	_, err := PlanShift(task, "2024-03-04", "10:00", time.UTC)
	assert.ErrorIs(t, err, ErrSameSlot)

	_, err = PlanShift(task, "next tuesday", "10:00", time.UTC)
	assert.ErrorIs(t, err, ErrBadTarget)

	for _, s := range []types.TaskStatus{types.TaskCompleted, types.TaskShifted, types.TaskCantBeDone} {
		task.Status = s
		_, err = PlanShift(task, "2024-03-05", "10:00", time.UTC)
		assert.ErrorIs(t, err, ErrTerminal)
	}
}
