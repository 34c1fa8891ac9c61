package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives all human-readable command output. Logs go to the
// logger's writer instead.
var stdout io.Writer = os.Stdout

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleUpdated     = lipgloss.NewStyle().Foreground(colorGreen)
	styleSkipped     = lipgloss.NewStyle().Foreground(colorGray)
	styleShared      = lipgloss.NewStyle().Foreground(colorYellow)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status lines
// =============================================================================

// statusKind selects the icon and color of a status line.
type statusKind int

const (
	statusInfo statusKind = iota
	statusSuccess
	statusWarning
	statusError
)

var statusIcons = map[statusKind]struct {
	icon  string
	style lipgloss.Style
}{
	statusInfo:    {iconInfo, lipgloss.NewStyle().Foreground(colorGray)},
	statusSuccess: {iconSuccess, lipgloss.NewStyle().Foreground(colorGreen)},
	statusWarning: {iconWarning, lipgloss.NewStyle().Foreground(colorYellow)},
	statusError:   {iconError, lipgloss.NewStyle().Foreground(colorRed)},
}

func status(kind statusKind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if kind == statusWarning {
		msg = StyleWarning.Render(msg)
	}
	s := statusIcons[kind]
	fmt.Fprintln(stdout, s.style.Render(s.icon)+" "+msg)
}

func printSuccess(format string, args ...any) { status(statusSuccess, format, args...) }
func printError(format string, args ...any)   { status(statusError, format, args...) }
func printWarning(format string, args ...any) { status(statusWarning, format, args...) }
func printInfo(format string, args ...any)    { status(statusInfo, format, args...) }

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile lists a file written under the output directory.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(stdout) }

// =============================================================================
// Release summaries
// =============================================================================

type summaryCount struct {
	n     int
	label string
}

// printSummary prints non-zero counters on one dim line, e.g.
// "3 updated · 1 unchanged".
func printSummary(counts ...summaryCount) {
	var parts []string
	for _, c := range counts {
		if c.n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", c.n, c.label))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintln(stdout, "  "+StyleDim.Render(strings.Join(parts, " · ")))
	}
}

// badge marks a merge outcome: "updated" or "unchanged".
func badge(skipped bool) string {
	if skipped {
		return styleSkipped.Render("unchanged")
	}
	return styleUpdated.Render("updated")
}
