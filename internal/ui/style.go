package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// SetColor forces colored output on or off.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

// Warn writes a styled warning line to stderr.
func Warn(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", Yellow("⚠️  Warning:"), fmt.Sprintf(format, args...))
}

// taskColors is a palette of distinct background colors for Gantt bars.
var taskColors = []*color.Color{
	color.New(color.BgCyan, color.FgBlack),
	color.New(color.BgMagenta, color.FgBlack),
	color.New(color.BgYellow, color.FgBlack),
	color.New(color.BgGreen, color.FgBlack),
	color.New(color.BgHiBlue, color.FgBlack),
	color.New(color.BgHiRed, color.FgBlack),
	color.New(color.BgHiCyan, color.FgBlack),
	color.New(color.BgHiMagenta, color.FgBlack),
}

// TaskBar renders text with the background color assigned to task.
func TaskBar(task int, text string) string {
	return taskColors[task%len(taskColors)].Sprint(text)
}

// TaskLabel returns the bold "t<id>" label used across reports.
func TaskLabel(task int) string {
	return BoldMagenta(fmt.Sprintf("t%d", task))
}

// ProcessorLabel returns the "P<id>" label for a processor row.
func ProcessorLabel(processor int) string {
	return BoldWhite(fmt.Sprintf("P%d", processor))
}

// TerminalWidth returns the width of stdout, or fallback when stdout is not a
// terminal.
func TerminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return fallback
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}
