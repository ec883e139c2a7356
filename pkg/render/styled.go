package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gridboard/pkg/grid"
)

var palette = []lipgloss.Color{
	lipgloss.Color("75"),  // light blue
	lipgloss.Color("35"),  // green
	lipgloss.Color("177"), // violet
	lipgloss.Color("214"), // orange
	lipgloss.Color("44"),  // aqua
	lipgloss.Color("204"), // pink
}

var (
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleLocked   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleOverlap  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("167"))
)

func styleFor(s grid.Snapshot, owner int, selected string) (lipgloss.Style, bool) {
	switch {
	case owner == ownerOverlap:
		return styleOverlap, true
	case owner < 0:
		return lipgloss.Style{}, false
	case s[owner].ID == selected:
		return styleSelected, true
	case s[owner].Locked:
		return styleLocked, true
	}
	return lipgloss.NewStyle().Foreground(palette[owner%len(palette)]), true
}

// Styled renders the snapshot like Text, colouring each widget and drawing
// opts.Selected in bold.
func Styled(s grid.Snapshot, cols int, opts Options) string {
	c := draw(s, cols, opts)
	if len(c.cells) == 0 {
		return ""
	}

	var sb strings.Builder
	for y, row := range c.cells {
		line := []rune(strings.TrimRight(string(row), " "))
		for x := 0; x < len(line); {
			owner := c.owner[y][x]
			end := x
			for end < len(line) && c.owner[y][end] == owner {
				end++
			}
			run := string(line[x:end])
			if style, ok := styleFor(s, owner, opts.Selected); ok {
				run = style.Render(run)
			}
			sb.WriteString(run)
			x = end
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
