package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette, in ANSI 256 colours.
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

// Exported styles are shared with the editor and the table renderers.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const iconError = "✗"

// statusKind selects the icon and colour of a one-line status message.
type statusKind int

const (
	statusSuccess statusKind = iota
	statusError
	statusWarning
	statusInfo
)

var statusIcons = map[statusKind]struct {
	icon  string
	style lipgloss.Style
}{
	statusSuccess: {"✓", lipgloss.NewStyle().Foreground(colorGreen)},
	statusError:   {iconError, styleIconError},
	statusWarning: {"!", lipgloss.NewStyle().Foreground(colorYellow)},
	statusInfo:    {"›", lipgloss.NewStyle().Foreground(colorGray)},
}

func printStatus(kind statusKind, format string, args ...any) {
	s := statusIcons[kind]
	msg := fmt.Sprintf(format, args...)
	if kind == statusWarning {
		msg = StyleWarning.Render(msg)
	}
	fmt.Println(s.style.Render(s.icon) + " " + msg)
}

func printSuccess(format string, args ...any) { printStatus(statusSuccess, format, args...) }
func printError(format string, args ...any)   { printStatus(statusError, format, args...) }
func printWarning(format string, args ...any) { printStatus(statusWarning, format, args...) }
func printInfo(format string, args ...any)    { printStatus(statusInfo, format, args...) }

// printDetail prints an indented, dimmed line under a status message.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path a command wrote to.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printLayoutStats prints a dimmed summary such as
// "3 widgets · 1200px wide · cached".
func printLayoutStats(widgets int, width float64, cached bool) {
	source := lipgloss.NewStyle().Foreground(colorGray).Render("fresh")
	if cached {
		source = StyleSuccess.Render("cached")
	}
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d widgets", widgets)),
		StyleDim.Render(fmt.Sprintf("%gpx wide", width)),
		source,
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() { fmt.Println() }
