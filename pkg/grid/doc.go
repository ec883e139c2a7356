// Package grid implements the dashboard grid layout engine.
//
// A dashboard is a set of rectangular widgets placed on an abstract grid of
// columns and rows. This package translates grid positions into pixel
// geometry for rendering, and translates pointer deltas into new grid
// positions and sizes while respecting size bounds, optional collision
// prevention and optional compaction.
//
// # Snapshots
//
// Every operation takes a [Snapshot] and returns a new one; inputs are never
// mutated. The hosting view owns the current snapshot between gestures and
// replaces it with whatever the engine returns:
//
//	next, ok := grid.Drag(start, "sales", dx, dy, cfg, grid.Options{
//	    PreventCollision: true,
//	    Compact:          grid.CompactVertical,
//	})
//	if !ok {
//	    // rejected by collision, locked, or unknown id: next == start
//	}
//
// # Failure Semantics
//
// Engine operations are total. A move that would collide is rejected and
// reported through the boolean result, out-of-range sizes and positions are
// clamped, and an unknown widget id is a no-op. Malformed bounds such as
// MinW > MaxW are a caller precondition; the engine always applies the max
// clamp first and the min clamp second, so the min bound wins.
//
// # Coordinates
//
// Grid positions are zero-based integers. Columns are bounded by
// [Config.Cols]; rows are unbounded and the grid grows downward with its
// content.
package grid
