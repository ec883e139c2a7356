package grid

import (
	"cmp"
	"slices"
)

// Compact removes gaps by moving widgets toward the origin along one axis.
//
// Vertical compaction visits widgets in (y, x) order and gives each the
// smallest row at which it does not overlap a widget already placed; x, w
// and h are unchanged. Horizontal compaction visits widgets in (x, y) order
// and gives each the smallest column in [0, cols-w] that is free, keeping y.
// When every column of that row is taken, as after an overlapping drag, the
// widget drops to the first lower row with a free column.
//
// Locked widgets are pinned: they keep their position and the others flow
// around them.
//
// The result keeps the input order and differs only in positions, and no
// unlocked widget overlaps another widget. Compact is a pure function of its
// input and is idempotent for any input: compacting a compacted snapshot
// returns the same positions. CompactNone returns s unchanged.
func Compact(s Snapshot, kind CompactType, cols int) Snapshot {
	if kind != CompactVertical && kind != CompactHorizontal {
		return s
	}

	order := make([]int, len(s))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		pa, pb := s[a].Position, s[b].Position
		if kind == CompactVertical {
			return cmp.Or(cmp.Compare(pa.Y, pb.Y), cmp.Compare(pa.X, pb.X))
		}
		return cmp.Or(cmp.Compare(pa.X, pb.X), cmp.Compare(pa.Y, pb.Y))
	})

	out := s.Clone()
	placed := make([]Position, 0, len(s))
	for _, w := range s {
		if w.Locked {
			placed = append(placed, w.Position)
		}
	}
	for _, i := range order {
		if out[i].Locked {
			continue
		}
		p := out[i].Position
		if kind == CompactVertical {
			p.Y = firstFreeRow(placed, p)
		} else {
			p = firstFreeColumn(placed, p, cols)
		}
		out[i].Position = p
		placed = append(placed, p)
	}
	return out
}

// firstFreeRow returns the smallest y >= 0 at which p overlaps nothing in
// placed. The search always terminates: below every placed widget the column
// range is empty.
func firstFreeRow(placed []Position, p Position) int {
	for y := 0; ; y++ {
		p.Y = y
		if !overlapsAny(placed, p) {
			return y
		}
	}
}

// firstFreeColumn moves p to the smallest x in [0, cols-w] at which it
// overlaps nothing in placed. If its row has no such column it tries the
// rows below in turn. Every blocker of a column left of the result starts
// further left, so a second pass visits it first and finds the same slot.
func firstFreeColumn(placed []Position, p Position, cols int) Position {
	last := max(cols-p.W, 0)
	for y := max(p.Y, 0); ; y++ {
		candidate := p
		candidate.Y = y
		for x := 0; x <= last; x++ {
			candidate.X = x
			if !overlapsAny(placed, candidate) {
				return candidate
			}
		}
	}
}

func overlapsAny(placed []Position, p Position) bool {
	for _, q := range placed {
		if Overlaps(q, p) {
			return true
		}
	}
	return false
}
