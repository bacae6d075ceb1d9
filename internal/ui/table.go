package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

// TaskLine is the data for one task table row.
type TaskLine struct {
	Task  *types.DelegationTask
	Delay string
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// RenderTaskTable renders tasks as a bordered table.
func RenderTaskTable(lines []TaskLine) string {
	t := newTable("ID", "Task", "Doer", "Department", "Planned", "Actual", "Status", "Delay")
	for _, l := range lines {
		task := l.Task
		actual := "-"
		if task.ActualDate != nil {
			actual = *task.ActualDate + " " + shortClock(deref(task.ActualTime))
		}
		t.Row(
			strconv.FormatInt(task.ID, 10),
			truncate(task.Description, 40),
			task.DoerName,
			task.DepartmentName,
			task.PlannedDate+" "+shortClock(task.PlannedTime),
			actual,
			RenderTaskStatus(task.Status),
			RenderDelay(l.Delay),
		)
	}
	return t.Render()
}

// RenderItemTable renders work items as a bordered table.
func RenderItemTable(items []*types.WorkItem) string {
	t := newTable("ID", "Type", "Title", "Status", "Created by", "Assigned to", "Created")
	for _, it := range items {
		t.Row(
			strconv.FormatInt(it.ID, 10),
			string(it.Type),
			truncate(it.Title, 48),
			RenderItemStatus(it.Status),
			it.CreatedByName,
			it.AssignedToName,
			it.CreatedAt.Format("2006-01-02"),
		)
	}
	return t.Render()
}

// RenderPageFooter renders "page X of Y (N total)".
func RenderPageFooter(page, pages, total int) string {
	return RenderMuted(fmt.Sprintf("page %d of %d (%d total)", page, pages, total))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(MutedStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func shortClock(clock string) string {
	if len(clock) >= 5 {
		return clock[:5]
	}
	return clock
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
