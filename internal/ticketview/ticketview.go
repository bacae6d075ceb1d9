// Package ticketview holds the state behind the ticket page: a snapshot of
// items plus the filters, sort and page applied to it. It does no I/O;
// callers load items and render the result.
package ticketview

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

// SortColumn is a column the item table can be ordered by.
type SortColumn string

const (
	SortID         SortColumn = "id"
	SortTitle      SortColumn = "title"
	SortType       SortColumn = "type"
	SortStatus     SortColumn = "status"
	SortCreatedBy  SortColumn = "created_by"
	SortAssignedTo SortColumn = "assigned_to"
	SortCreated    SortColumn = "created_at"
	SortUpdated    SortColumn = "status_updated_at"
)

// ParseSortColumn maps a raw column name; unknown names give SortCreated.
func ParseSortColumn(raw string) SortColumn {
	switch c := SortColumn(strings.ToLower(strings.TrimSpace(raw))); c {
	case SortID, SortTitle, SortType, SortStatus, SortCreatedBy, SortAssignedTo, SortCreated, SortUpdated:
		return c
	}
	return SortCreated
}

// Filters narrow the snapshot. Zero values match everything.
type Filters struct {
	Search      string // substring of title or description
	Type        types.ItemType
	Status      types.ItemStatus
	CreatedBy   string
	AssignedTo  string
	ShowDropped bool
}

// State is the ticket page model.
type State struct {
	items    []*types.WorkItem
	Filters  Filters
	Sort     SortColumn
	Desc     bool
	Page     int
	PageSize int

	saved map[int64]types.WorkItem
}

// New returns an empty state sorted newest first.
func New(pageSize int) *State {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &State{Sort: SortCreated, Desc: true, Page: 1, PageSize: pageSize}
}

// Load replaces the snapshot and returns to the first page.
func (s *State) Load(items []*types.WorkItem) {
	s.items = slices.Clone(items)
	s.saved = nil
	s.Page = 1
}

// Items returns the snapshot in load order.
func (s *State) Items() []*types.WorkItem {
	return slices.Clone(s.items)
}

// SetFilters applies new filters and returns to the first page.
func (s *State) SetFilters(f Filters) {
	s.Filters = f
	s.Page = 1
}

// ToggleSort sorts by col. Choosing the current column again flips the direction.
func (s *State) ToggleSort(col SortColumn) {
	if s.Sort == col {
		s.Desc = !s.Desc
		return
	}
	s.Sort = col
	s.Desc = false
}

// Visible returns the filtered, sorted snapshot.
func (s *State) Visible() []*types.WorkItem {
	out := make([]*types.WorkItem, 0, len(s.items))
	for _, it := range s.items {
		if s.matches(it) {
			out = append(out, it)
		}
	}
	cmpFn := comparator(s.Sort)
	slices.SortStableFunc(out, func(a, b *types.WorkItem) int {
		c := cmpFn(a, b)
		if s.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// TotalPages is at least 1.
func (s *State) TotalPages() int {
	n := len(s.Visible())
	pages := (n + s.PageSize - 1) / s.PageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// PageItems returns the current page of Visible, clamping Page into range.
func (s *State) PageItems() []*types.WorkItem {
	vis := s.Visible()
	pages := (len(vis) + s.PageSize - 1) / s.PageSize
	if pages < 1 {
		pages = 1
	}
	s.Page = min(max(s.Page, 1), pages)
	start := (s.Page - 1) * s.PageSize
	end := min(start+s.PageSize, len(vis))
	return vis[start:end]
}

// Apply records an optimistic change to one item. The previous value is
// kept until Commit or Revert.
func (s *State) Apply(id int64, change func(*types.WorkItem)) bool {
	for _, it := range s.items {
		if it.ID != id {
			continue
		}
		if s.saved == nil {
			s.saved = map[int64]types.WorkItem{}
		}
		if _, pending := s.saved[id]; !pending {
			s.saved[id] = *it
		}
		change(it)
		return true
	}
	return false
}

// Commit replaces an item with the server's copy and forgets the saved value.
func (s *State) Commit(updated *types.WorkItem) {
	delete(s.saved, updated.ID)
	for i, it := range s.items {
		if it.ID == updated.ID {
			s.items[i] = updated
			return
		}
	}
	s.items = append(s.items, updated)
}

// Revert restores the value saved by Apply after a failed request.
func (s *State) Revert(id int64) bool {
	prev, ok := s.saved[id]
	if !ok {
		return false
	}
	delete(s.saved, id)
	for _, it := range s.items {
		if it.ID == id {
			*it = prev
		}
	}
	return true
}

func (s *State) matches(it *types.WorkItem) bool {
	f := s.Filters
	if it.IsDropped() && !f.ShowDropped && f.Status != types.StatusDropped {
		return false
	}
	if f.Type != "" && it.Type != f.Type {
		return false
	}
	if f.Status != "" && it.Status != f.Status {
		return false
	}
	if f.CreatedBy != "" && !strings.EqualFold(it.CreatedByName, f.CreatedBy) {
		return false
	}
	if f.AssignedTo != "" && !strings.EqualFold(it.AssignedToName, f.AssignedTo) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(it.Title), q) && !strings.Contains(strings.ToLower(it.Description), q) {
			return false
		}
	}
	return true
}

func comparator(col SortColumn) func(a, b *types.WorkItem) int {
	text := func(key func(*types.WorkItem) string) func(a, b *types.WorkItem) int {
		return func(a, b *types.WorkItem) int {
			return strings.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
		}
	}
	switch col {
	case SortID:
		return func(a, b *types.WorkItem) int { return cmp.Compare(a.ID, b.ID) }
	case SortTitle:
		return text(func(i *types.WorkItem) string { return i.Title })
	case SortType:
		return text(func(i *types.WorkItem) string { return string(i.Type) })
	case SortStatus:
		return text(func(i *types.WorkItem) string { return string(i.Status) })
	case SortCreatedBy:
		return text(func(i *types.WorkItem) string { return i.CreatedByName })
	case SortAssignedTo:
		return text(func(i *types.WorkItem) string { return i.AssignedToName })
	case SortUpdated:
		return func(a, b *types.WorkItem) int { return a.StatusUpdatedAt.Compare(b.StatusUpdatedAt) }
	}
	return func(a, b *types.WorkItem) int { return a.CreatedAt.Compare(b.CreatedAt) }
}
