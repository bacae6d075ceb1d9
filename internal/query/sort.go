package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/Fooracles/SystemApp-sub000/internal/delay"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

// TaskSorter orders tasks by one column. Ties fall back to row id
// ascending so paging is stable.
type TaskSorter struct {
	Option types.TaskSortOption
	Now    time.Time
	Loc    *time.Location
}

// Sort orders tasks in place.
func (s TaskSorter) Sort(tasks []*types.DelegationTask) {
	now := s.Now
	if now.IsZero() {
		now = time.Now()
	}
	loc := s.Loc
	if loc == nil {
		loc = time.Local
	}
	compare := s.comparator(now, loc)
	desc := s.Option.Direction == types.SortDesc
	slices.SortStableFunc(tasks, func(a, b *types.DelegationTask) int {
		c := compare(a, b)
		if desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func (s TaskSorter) comparator(now time.Time, loc *time.Location) func(a, b *types.DelegationTask) int {
	switch s.Option.Field {
	case types.SortFieldID:
		return func(a, b *types.DelegationTask) int { return cmp.Compare(a.ID, b.ID) }
	case types.SortFieldUniqueID:
		return textCompare(func(t *types.DelegationTask) string { return t.UniqueID })
	case types.SortFieldDescription:
		return textCompare(func(t *types.DelegationTask) string { return t.Description })
	case types.SortFieldDoer:
		return textCompare(func(t *types.DelegationTask) string { return t.DoerName })
	case types.SortFieldDepartment:
		return textCompare(func(t *types.DelegationTask) string { return t.DepartmentName })
	case types.SortFieldStatus:
		return textCompare(func(t *types.DelegationTask) string { return string(t.Status) })
	case types.SortFieldActual:
		return func(a, b *types.DelegationTask) int {
			return cmp.Compare(actualUnix(a, loc), actualUnix(b, loc))
		}
	case types.SortFieldDelay:
		return func(a, b *types.DelegationTask) int {
			return cmp.Compare(DelaySeconds(a, now, loc), DelaySeconds(b, now, loc))
		}
	case types.SortFieldDuration:
		return func(a, b *types.DelegationTask) int { return cmp.Compare(a.DurationMinutes, b.DurationMinutes) }
	case types.SortFieldCreated:
		return func(a, b *types.DelegationTask) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
	return func(a, b *types.DelegationTask) int {
		return cmp.Compare(plannedUnix(a, loc), plannedUnix(b, loc))
	}
}

// DelaySeconds is the delay value a task sorts by. Live computation wins;
// otherwise the stored display string is parsed, and anything unparseable
// counts as zero.
func DelaySeconds(t *types.DelegationTask, now time.Time, loc *time.Location) int64 {
	res := delay.Compute(t, now, loc)
	if res.Applicable {
		return res.Seconds
	}
	if t.ShiftedCount == 1 {
		return 0
	}
	return delay.SortKey(t.DelayDuration)
}

func textCompare(key func(*types.DelegationTask) string) func(a, b *types.DelegationTask) int {
	return func(a, b *types.DelegationTask) int {
		return strings.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
	}
}

func plannedUnix(t *types.DelegationTask, loc *time.Location) int64 {
	ts, err := t.PlannedAt(loc)
	if err != nil {
		return 0
	}
	return ts.Unix()
}

// actualUnix puts tasks without an actual timestamp first.
func actualUnix(t *types.DelegationTask, loc *time.Location) int64 {
	ts, ok, err := t.ActualAt(loc)
	if err != nil || !ok {
		return 0
	}
	return ts.Unix()
}

// Page describes one slice of a paginated listing.
type Page struct {
	Number     int `json:"page"`
	Size       int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Paginate returns the requested page of items. Page numbers start at 1 and
// are clamped into range.
func Paginate[T any](items []T, page, size int) ([]T, Page) {
	if size <= 0 {
		size = len(items)
		if size == 0 {
			size = 1
		}
	}
	total := len(items)
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := min(start+size, total)
	if start > total {
		start = total
	}
	return items[start:end], Page{Number: page, Size: size, Total: total, TotalPages: pages}
}
