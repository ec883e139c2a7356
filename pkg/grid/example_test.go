package grid_test

import (
	"fmt"

	"github.com/matzehuels/gridboard/pkg/grid"
)

func ExamplePixelRect() {
	cfg := grid.Config{Cols: 12, RowHeight: 100, Gap: 16, Width: 1184}
	w := grid.Widget{ID: "sales", Position: grid.Position{X: 2, Y: 1, W: 3, H: 2}}

	r := grid.PixelRect(w, cfg)
	fmt.Printf("left=%g top=%g width=%g height=%g\n", r.Left, r.Top, r.Width, r.Height)
	// Output:
	// left=200 top=116 width=284 height=216
}

func ExampleDrag() {
	cfg := grid.Config{Cols: 12, RowHeight: 100, Gap: 16, Width: 1184}
	s := grid.Snapshot{
		{ID: "a", Position: grid.Position{X: 0, Y: 0, W: 3, H: 2}},
		{ID: "b", Position: grid.Position{X: 3, Y: 0, W: 3, H: 2}},
	}
	opts := grid.Options{PreventCollision: true}

	// 200px is two columns: A would overlap B.
	_, ok := grid.Drag(s, "a", 200, 0, cfg, opts)
	fmt.Println("two columns:", ok)

	// 600px is six columns: A lands clear of B.
	next, ok := grid.Drag(s, "a", 600, 0, cfg, opts)
	a, _ := next.Find("a")
	fmt.Println("six columns:", ok, a.Position)
	// Output:
	// two columns: false
	// six columns: true (6,0,3,2)
}

func ExampleCompact() {
	s := grid.Snapshot{
		{ID: "a", Position: grid.Position{X: 0, Y: 5, W: 2, H: 2}},
		{ID: "b", Position: grid.Position{X: 0, Y: 0, W: 2, H: 2}},
	}

	for _, w := range grid.Compact(s, grid.CompactVertical, 12) {
		fmt.Println(w.ID, w.Position)
	}
	// Output:
	// a (0,2,2,2)
	// b (0,0,2,2)
}
