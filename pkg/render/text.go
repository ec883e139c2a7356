package render

import (
	"strings"

	"github.com/matzehuels/gridboard/pkg/grid"
)

const (
	defaultCellWidth  = 6
	defaultCellHeight = 2

	lockMark    = "*"
	overlapRune = '#'
)

// Options controls the character grid.
type Options struct {
	// CellWidth is the number of characters per grid column.
	CellWidth int
	// CellHeight is the number of lines per grid row.
	CellHeight int
	// Selected is the id of the widget Styled highlights.
	Selected string
}

func (o Options) withDefaults() Options {
	if o.CellWidth <= 0 {
		o.CellWidth = defaultCellWidth
	}
	if o.CellHeight <= 0 {
		o.CellHeight = defaultCellHeight
	}
	return o
}

// Owner values for canvas cells that no single widget owns.
const (
	ownerNone    = -1
	ownerOverlap = -2
)

// canvas is a rune grid plus, for every cell, the index of the widget that
// drew it.
type canvas struct {
	cells [][]rune
	owner [][]int
}

// box is a widget's extent on the canvas, inclusive.
type box struct {
	x0, y0, x1, y1 int
}

func boxFor(w grid.Widget, o Options) box {
	p := w.Position
	if p.X < 0 || p.Y < 0 || p.W < 1 || p.H < 1 {
		return box{x1: -1, y1: -1}
	}
	b := box{
		x0: p.X * o.CellWidth,
		y0: p.Y * o.CellHeight,
		x1: p.Right()*o.CellWidth - 1,
		y1: p.Bottom()*o.CellHeight - 1,
	}
	if w.Collapsed {
		b.y1 = b.y0
	}
	return b
}

func draw(s grid.Snapshot, cols int, o Options) *canvas {
	o = o.withDefaults()

	width, height := cols*o.CellWidth, 0
	boxes := make([]box, len(s))
	for i, w := range s {
		boxes[i] = boxFor(w, o)
		width = max(width, boxes[i].x1+1)
		height = max(height, boxes[i].y1+1)
	}

	c := &canvas{
		cells: make([][]rune, height),
		owner: make([][]int, height),
	}
	cover := make([][]int, height)
	for y := range c.cells {
		c.cells[y] = []rune(strings.Repeat(" ", width))
		c.owner[y] = make([]int, width)
		cover[y] = make([]int, width)
		for x := range c.owner[y] {
			c.owner[y][x] = ownerNone
		}
	}

	for i, w := range s {
		b := boxes[i]
		if b.x1 < b.x0 || b.y1 < b.y0 {
			continue
		}
		for y := b.y0; y <= b.y1; y++ {
			for x := b.x0; x <= b.x1; x++ {
				c.cells[y][x] = border(w, b, x, y)
				c.owner[y][x] = i
				cover[y][x]++
			}
		}
		c.title(w, b)
	}

	for y := range cover {
		for x, n := range cover[y] {
			if n > 1 {
				c.cells[y][x] = overlapRune
				c.owner[y][x] = ownerOverlap
			}
		}
	}
	return c
}

// border returns the frame rune of w at canvas cell (x, y).
func border(w grid.Widget, b box, x, y int) rune {
	if w.Collapsed {
		switch x {
		case b.x0:
			return '['
		case b.x1:
			return ']'
		}
		return '-'
	}

	edgeX := x == b.x0 || x == b.x1
	edgeY := y == b.y0 || y == b.y1
	switch {
	case edgeX && edgeY:
		return '+'
	case edgeY:
		return '-'
	case edgeX:
		return '|'
	}
	return ' '
}

// title writes the widget label into the top border.
func (c *canvas) title(w grid.Widget, b box) {
	label := w.Title
	if label == "" {
		label = w.ID
	}
	if w.Locked {
		label = lockMark + label
	}

	room := b.x1 - b.x0 - 1
	if room <= 0 {
		return
	}
	r := []rune(label)
	if len(r) > room {
		r = r[:room]
	}
	copy(c.cells[b.y0][b.x0+1:], r)
}

func (c *canvas) lines() []string {
	out := make([]string, len(c.cells))
	for y, row := range c.cells {
		out[y] = strings.TrimRight(string(row), " ")
	}
	return out
}

// Text renders the snapshot on a character grid cols columns wide. The
// result ends with a newline unless the snapshot is empty.
func Text(s grid.Snapshot, cols int, opts Options) string {
	lines := draw(s, cols, opts).lines()
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
