package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Fooracles/SystemApp-sub000/internal/delay"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

// Ayu theme color palette
// Dark: https://terminalcolors.com/themes/ayu/dark/
// Light: https://terminalcolors.com/themes/ayu/light/
var (
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#86b300",
		Dark:  "#c2d94c",
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#f2ae49",
		Dark:  "#ffb454",
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#f07171",
		Dark:  "#f07178",
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99",
		Dark:  "#6c7680",
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6",
		Dark:  "#59c2ff",
	}
)

var (
	PassStyle     = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle     = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle     = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle   = lipgloss.NewStyle().Foreground(ColorAccent)
	CategoryStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
)

const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
)

const SeparatorLight = "──────────────────────────────────────────"

func RenderPass(s string) string   { return PassStyle.Render(s) }
func RenderWarn(s string) string   { return WarnStyle.Render(s) }
func RenderFail(s string) string   { return FailStyle.Render(s) }
func RenderMuted(s string) string  { return MutedStyle.Render(s) }
func RenderAccent(s string) string { return AccentStyle.Render(s) }

// RenderCategory renders a section header in uppercase with accent color
func RenderCategory(s string) string {
	return CategoryStyle.Render(strings.ToUpper(s))
}

// RenderSeparator renders the light separator line in muted color
func RenderSeparator() string {
	return MutedStyle.Render(SeparatorLight)
}

// RenderTaskStatus colours a task status label.
func RenderTaskStatus(s types.TaskStatus) string {
	switch s {
	case types.TaskCompleted:
		return RenderPass(s.Label())
	case types.TaskNotDone, types.TaskCantBeDone:
		return RenderFail(s.Label())
	case types.TaskShifted:
		return RenderMuted(s.Label())
	}
	return RenderWarn(s.Label())
}

// RenderItemStatus colours a work item status by where it sits in its lifecycle.
func RenderItemStatus(s types.ItemStatus) string {
	switch s {
	case types.StatusCompleted, types.StatusResolved, types.StatusProvided, types.StatusApproved:
		return RenderPass(string(s))
	case types.StatusRevise:
		return RenderWarn(string(s))
	case types.StatusDropped:
		return RenderMuted(string(s))
	}
	return RenderAccent(string(s))
}

// RenderDelay colours a delay display.
func RenderDelay(display string) string {
	switch display {
	case delay.OnTime:
		return RenderPass(display)
	case delay.NotApplicable, delay.NoValue, "":
		return RenderMuted(display)
	}
	return RenderFail(display)
}
