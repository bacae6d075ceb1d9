package ticketview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

func sample() []*types.WorkItem {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return []*types.WorkItem{
		{ID: 1, Type: types.ItemTicket, Title: "Printer jam", Status: types.StatusRaised, CreatedByName: "Cleo", CreatedAt: base},
		{ID: 2, Type: types.ItemTask, Title: "Write brief", Status: types.StatusWorking, CreatedByName: "Mona", CreatedAt: base.Add(time.Hour)},
		{ID: 3, Type: types.ItemRequired, Title: "VPN access", Status: types.StatusDropped, CreatedByName: "Mona", CreatedAt: base.Add(2 * time.Hour)},
		{ID: 4, Type: types.ItemTicket, Title: "app crash", Description: "printer driver", Status: types.StatusResolved, CreatedByName: "Cleo", CreatedAt: base.Add(3 * time.Hour)},
	}
}

func ids(items []*types.WorkItem) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestVisibleHidesDroppedAndSortsNewestFirst(t *testing.T) {
	s := New(10)
	s.Load(sample())
	assert.Equal(t, []int64{4, 2, 1}, ids(s.Visible()))

	s.SetFilters(Filters{ShowDropped: true})
	assert.Equal(t, []int64{4, 3, 2, 1}, ids(s.Visible()))

	s.SetFilters(Filters{Status: types.StatusDropped})
	assert.Equal(t, []int64{3}, ids(s.Visible()))
}

func TestFiltersCombine(t *testing.T) {
	s := New(10)
	s.Load(sample())
	s.SetFilters(Filters{Search: "PRINTER", CreatedBy: "cleo"})
	assert.Equal(t, []int64{4, 1}, ids(s.Visible()))

	s.SetFilters(Filters{Search: "printer", Type: types.ItemTicket, Status: types.StatusRaised})
	assert.Equal(t, []int64{1}, ids(s.Visible()))
}

func TestToggleSort(t *testing.T) {
	s := New(10)
	s.Load(sample())
	s.ToggleSort(SortTitle)
	assert.Equal(t, []int64{4, 1, 2}, ids(s.Visible()), "text sort ignores case")
	s.ToggleSort(SortTitle)
	assert.Equal(t, []int64{2, 1, 4}, ids(s.Visible()))
	assert.Equal(t, SortCreated, ParseSortColumn("bogus"))
}

func TestPagingClamps(t *testing.T) {
	s := New(2)
	s.Load(sample())
	assert.Equal(t, 2, s.TotalPages())
	s.Page = 9
	assert.Equal(t, []int64{1}, ids(s.PageItems()))
	assert.Equal(t, 2, s.Page)

	s.SetFilters(Filters{Search: "nothing matches"})
	assert.Empty(t, s.PageItems())
	assert.Equal(t, 1, s.TotalPages())
}

func TestApplyRevertCommit(t *testing.T) {
	s := New(10)
	s.Load(sample())

	require.True(t, s.Apply(1, func(it *types.WorkItem) { it.Status = types.StatusResolved }))
	require.True(t, s.Apply(1, func(it *types.WorkItem) { it.Title = "changed" }))
	require.True(t, s.Revert(1))
	item := s.Items()[0]
	assert.Equal(t, types.StatusRaised, item.Status, "revert restores the value before the first Apply")
	assert.Equal(t, "Printer jam", item.Title)
	assert.False(t, s.Revert(1))

	s.Apply(2, func(it *types.WorkItem) { it.Status = types.StatusReview })
	s.Commit(&types.WorkItem{ID: 2, Type: types.ItemTask, Title: "Write brief", Status: types.StatusReview})
	assert.False(t, s.Revert(2))
	assert.False(t, s.Apply(99, func(*types.WorkItem) {}))
}
