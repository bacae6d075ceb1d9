package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fooracles/SystemApp-sub000/internal/storage"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

func newTask(uniqueID string, f fixture, managerID *int64) *types.DelegationTask {
	return &types.DelegationTask{
		UniqueID:        uniqueID,
		Description:     "Reconcile invoices",
		PlannedDate:     "2024-03-04",
		PlannedTime:     "10:00",
		DurationMinutes: 30,
		DoerID:          f.doer.ID,
		ManagerID:       managerID,
		AssignedBy:      managerID,
		DepartmentID:    &f.dept.ID,
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	got, err := s.GetUser(ctx, f.doer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dev Doer", got.Name)
	require.NotNil(t, got.ManagerID)
	assert.Equal(t, f.manager.ID, *got.ManagerID)

	byName, err := s.FindUserByName(ctx, "  dev doer ")
	require.NoError(t, err)
	assert.Equal(t, f.doer.ID, byName.ID)

	_, err = s.GetUser(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	clients, err := s.ListUsers(ctx, types.UserFilter{ClientAccountID: &f.account.ID})
	require.NoError(t, err)
	assert.Len(t, clients, 2)

	err = s.CreateDepartment(ctx, &types.Department{Name: "Operations"})
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestCreateAndSearchTasks(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	task := newTask("T-100", f, &f.manager.ID)
	require.NoError(t, s.CreateTask(ctx, task, f.manager.ID))
	require.NotZero(t, task.ID)

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "10:00:00", got.PlannedTime)
	assert.Equal(t, types.TaskPending, got.Status)
	assert.Equal(t, "Dev Doer", got.DoerName)
	assert.Equal(t, "Operations", got.DepartmentName)
	assert.Equal(t, types.TaskTypeDelegation, got.TaskType)

	dup := newTask("T-100", f, nil)
	assert.True(t, errors.Is(s.CreateTask(ctx, dup, f.admin.ID), storage.ErrConflict))

	found, err := s.SearchTasks(ctx, types.TaskFilter{DoerContains: "DEV", DepartmentContains: "oper"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "T-100", found[0].UniqueID)

	none, err := s.SearchTasks(ctx, types.TaskFilter{DescriptionContains: "100%"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTaskVisibility(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	mine := newTask("T-1", f, &f.manager.ID)
	other := newTask("T-2", f, &f.otherManager.ID)
	other.DoerID = f.otherManager.ID
	legacy := newTask("T-3", f, nil)
	legacy.DoerID = f.otherManager.ID
	for _, task := range []*types.DelegationTask{mine, other, legacy} {
		require.NoError(t, s.CreateTask(ctx, task, f.admin.ID))
	}

	ids := func(actor types.Actor) []string {
		tasks, err := s.SearchTasks(ctx, types.TaskFilter{Visibility: &actor})
		require.NoError(t, err)
		var out []string
		for _, task := range tasks {
			out = append(out, task.UniqueID)
		}
		return out
	}

	assert.Equal(t, []string{"T-1", "T-2", "T-3"}, ids(types.ActorFromUser(f.admin)))
	assert.Equal(t, []string{"T-1", "T-3"}, ids(types.ActorFromUser(f.manager)))
	assert.Equal(t, []string{"T-2", "T-3"}, ids(types.ActorFromUser(f.otherManager)))
	assert.Equal(t, []string{"T-1"}, ids(types.ActorFromUser(f.doer)))
	assert.Empty(t, ids(types.ActorFromUser(f.client)))
}

func TestUpdateTaskRecordsEvent(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	task := newTask("T-5", f, &f.manager.ID)
	require.NoError(t, s.CreateTask(ctx, task, f.manager.ID))

	date, clock := "2024-03-04", "11:00:00"
	require.NoError(t, s.UpdateTask(ctx, task.ID, map[string]interface{}{
		"status":      types.TaskCompleted,
		"actual_date": &date,
		"actual_time": clock,
		"is_delayed":  true,
	}, f.doer.ID))

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TaskCompleted, got.Status)
	assert.True(t, got.IsDelayed)
	require.NotNil(t, got.ActualTime)
	assert.Equal(t, "11:00:00", *got.ActualTime)

	events, err := s.GetEvents(ctx, types.EntityTask, task.ID, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, types.EventStatusChanged, events[0].EventType)
	assert.Equal(t, f.doer.ID, events[0].ActorID)
	assert.Equal(t, types.EventCreated, events[1].EventType)

	err = s.UpdateTask(ctx, task.ID, map[string]interface{}{"unique_id": "X"}, f.admin.ID)
	assert.ErrorContains(t, err, "invalid field")

	err = s.UpdateTask(ctx, 424242, map[string]interface{}{"status": "completed"}, f.admin.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRunInTransactionRollsBack(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	task := newTask("T-7", f, &f.manager.ID)
	require.NoError(t, s.CreateTask(ctx, task, f.manager.ID))

	boom := errors.New("boom")
	err := s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		if err := tx.UpdateTask(ctx, task.ID, map[string]interface{}{"status": types.TaskShifted}, f.manager.ID); err != nil {
			return err
		}
		if err := tx.CreateTask(ctx, newTask("T-8", f, &f.manager.ID), f.manager.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TaskPending, got.Status)

	all, err := s.SearchTasks(ctx, types.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRunInTransactionCommits(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	task := newTask("T-9", f, &f.manager.ID)
	require.NoError(t, s.CreateTask(ctx, task, f.manager.ID))

	err := s.RunInTransaction(ctx, func(tx storage.Transaction) error {
		next := newTask("T-10", f, &f.manager.ID)
		if err := tx.CreateTask(ctx, next, f.manager.ID); err != nil {
			return err
		}
		return tx.UpdateTask(ctx, task.ID, map[string]interface{}{"status": types.TaskShifted, "shifted_to": next.UniqueID}, f.manager.ID)
	})
	require.NoError(t, err)

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, types.TaskShifted, got.Status)
	require.NotNil(t, got.ShiftedTo)
	assert.Equal(t, "T-10", *got.ShiftedTo)

	events, err := s.GetEvents(ctx, types.EntityTask, task.ID, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, types.EventShifted, events[0].EventType)
}

func TestItemsAndVisibility(t *testing.T) {
	s := newTestStore(t)
	f := seed(t, s)
	ctx := context.Background()

	ticket := &types.WorkItem{Type: types.ItemTicket, Title: "Login broken", Status: types.StatusRaised, CreatedBy: f.client.ID,
		Attachments: []string{"a.png"}}
	require.NoError(t, s.CreateItem(ctx, ticket, f.client.ID))
	internal := &types.WorkItem{Type: types.ItemTask, Title: "Write report", Status: types.StatusAssigned, CreatedBy: f.otherManager.ID,
		AssignedTo: &f.doer.ID}
	require.NoError(t, s.CreateItem(ctx, internal, f.otherManager.ID))

	got, err := s.GetItem(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png"}, got.Attachments)
	assert.Equal(t, "Cleo Client", got.CreatedByName)

	visible := func(u *types.User) int {
		actor := types.ActorFromUser(u)
		items, err := s.SearchItems(ctx, types.ItemFilter{Visibility: &actor})
		require.NoError(t, err)
		return len(items)
	}
	assert.Equal(t, 2, visible(f.admin))
	assert.Equal(t, 1, visible(f.manager))      // client-created ticket only
	assert.Equal(t, 2, visible(f.otherManager)) // own task plus client ticket
	assert.Equal(t, 1, visible(f.client2))      // same client account
	assert.Equal(t, 1, visible(f.doer))         // assigned task

	require.NoError(t, s.UpdateItem(ctx, ticket.ID, map[string]interface{}{"status": types.StatusDropped}, f.manager.ID))
	events, err := s.GetEvents(ctx, types.EntityItem, ticket.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, types.EventDropped, events[0].EventType)

	assert.Error(t, s.CreateItem(ctx, &types.WorkItem{Type: types.ItemTicket, CreatedBy: f.client.ID}, f.client.ID))
}

func TestTaskEventType(t *testing.T) {
	tests := []struct {
		name    string
		updates map[string]interface{}
		want    types.EventType
	}{
		{
			name:    "status only",
			updates: map[string]interface{}{"status": types.TaskCompleted},
			want:    types.EventStatusChanged,
		},
		{
			name: "same-week reschedule carries status",
			updates: map[string]interface{}{
				"planned_date":  "2024-03-06",
				"shifted_count": 1,
				"status":        types.TaskPending,
			},
			want: types.EventShifted,
		},
		{
			name:    "closed for a new week",
			updates: map[string]interface{}{"status": types.TaskShifted, "shifted_to": "01HRDQ"},
			want:    types.EventShifted,
		},
		{
			name:    "edit",
			updates: map[string]interface{}{"description": "x"},
			want:    types.EventUpdated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, taskEventType(tt.updates))
		})
	}
}
