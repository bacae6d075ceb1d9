package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

func item(t types.ItemType, s types.ItemStatus) *types.WorkItem {
	return &types.WorkItem{ID: 7, Type: t, Title: "x", Status: s, CreatedBy: 1}
}

func TestStatusOptionsForItem(t *testing.T) {
	tests := []struct {
		name string
		item *types.WorkItem
		role types.Role
		want []types.ItemStatus
	}{
		{"admin task", item(types.ItemTask, types.StatusAssigned), types.RoleAdmin, Sequence(types.ItemTask)},
		{"manager task", item(types.ItemTask, types.StatusWorking), types.RoleManager,
			[]types.ItemStatus{types.StatusWorking, types.StatusReview, types.StatusRevise, types.StatusApproved, types.StatusCompleted}},
		{"client task in sequence order", item(types.ItemTask, types.StatusReview), types.RoleClient,
			[]types.ItemStatus{types.StatusAssigned, types.StatusRevise, types.StatusApproved}},
		{"manager ticket", item(types.ItemTicket, types.StatusRaised), types.RoleManager,
			[]types.ItemStatus{types.StatusRaised, types.StatusInProgress, types.StatusResolved}},
		{"client ticket", item(types.ItemTicket, types.StatusRaised), types.RoleClient, nil},
		{"client required", item(types.ItemRequired, types.StatusRequested), types.RoleClient,
			[]types.ItemStatus{types.StatusRequested, types.StatusProvided}},
		{"doer anything", item(types.ItemTask, types.StatusAssigned), types.RoleDoer, nil},
		{"dropped admin", item(types.ItemTask, types.StatusDropped), types.RoleAdmin, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOptionsForItem(tt.item, tt.role))
		})
	}
}

func TestCanChangeStatus(t *testing.T) {
	assert.False(t, CanChangeStatus(item(types.ItemTicket, types.StatusDropped), types.RoleAdmin))
	assert.False(t, CanChangeStatus(item(types.ItemTicket, types.StatusRaised), types.RoleClient))
	assert.True(t, CanChangeStatus(item(types.ItemTicket, types.StatusRaised), types.RoleManager))
}

func TestValidateTransitionTicketResolve(t *testing.T) {
	tk := item(types.ItemTicket, types.StatusInProgress)
	require.NoError(t, ValidateTransition(tk, types.RoleManager, types.StatusResolved))

	err := ValidateTransition(tk, types.RoleClient, types.StatusResolved)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotPermitted))
}

func TestValidateTransitionRejectsDroppedAndForeignStatuses(t *testing.T) {
	tk := item(types.ItemTicket, types.StatusRaised)
	assert.ErrorIs(t, ValidateTransition(tk, types.RoleAdmin, types.StatusDropped), ErrInvalidStatus)
	assert.ErrorIs(t, ValidateTransition(tk, types.RoleAdmin, types.StatusApproved), ErrInvalidStatus)

	dropped := item(types.ItemTicket, types.StatusDropped)
	assert.ErrorIs(t, ValidateTransition(dropped, types.RoleAdmin, types.StatusRaised), ErrDropped)
}

func TestValidateDrop(t *testing.T) {
	require.NoError(t, ValidateDrop(item(types.ItemRequired, types.StatusRequested), types.RoleManager))
	require.NoError(t, ValidateDrop(item(types.ItemTask, types.StatusReview), types.RoleAdmin))
	assert.ErrorIs(t, ValidateDrop(item(types.ItemTask, types.StatusReview), types.RoleClient), ErrNotPermitted)
	assert.ErrorIs(t, ValidateDrop(item(types.ItemTask, types.StatusDropped), types.RoleAdmin), ErrDropped)
}

func TestValidateProvide(t *testing.T) {
	require.NoError(t, ValidateProvide(item(types.ItemRequired, types.StatusRequested), types.RoleClient))
	assert.ErrorIs(t, ValidateProvide(item(types.ItemTicket, types.StatusRaised), types.RoleAdmin), ErrInvalidStatus)
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus(types.ItemTicket, "in progress")
	require.True(t, ok)
	assert.Equal(t, types.StatusInProgress, s)

	_, ok = ParseStatus(types.ItemTicket, "Approved")
	assert.False(t, ok)

	s, ok = ParseStatus(types.ItemRequired, "dropped")
	require.True(t, ok)
	assert.Equal(t, types.StatusDropped, s)
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, types.StatusAssigned, InitialStatus(types.ItemTask))
	assert.Equal(t, types.StatusRaised, InitialStatus(types.ItemTicket))
	assert.Equal(t, types.StatusRequested, InitialStatus(types.ItemRequired))
}

func TestTimeline(t *testing.T) {
	steps := Timeline(item(types.ItemTicket, types.StatusInProgress))
	require.Len(t, steps, 3)
	assert.Equal(t, StepDone, steps[0].State)
	assert.Equal(t, StepCurrent, steps[1].State)
	assert.Equal(t, StepUpcoming, steps[2].State)

	for _, st := range Timeline(item(types.ItemRequired, types.StatusDropped)) {
		assert.Equal(t, StepDropped, st.State)
	}
}
