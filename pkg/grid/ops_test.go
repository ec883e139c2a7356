package grid

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func pairAB() Snapshot {
	return Snapshot{
		{ID: "a", Position: Position{0, 0, 3, 2}},
		{ID: "b", Position: Position{3, 0, 3, 2}},
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Position
		want bool
	}{
		{"identical", Position{0, 0, 2, 2}, Position{0, 0, 2, 2}, true},
		{"partial", Position{0, 0, 3, 2}, Position{2, 1, 3, 2}, true},
		{"contained", Position{0, 0, 6, 6}, Position{2, 2, 1, 1}, true},
		{"touching right edge", Position{0, 0, 3, 2}, Position{3, 0, 3, 2}, false},
		{"touching bottom edge", Position{0, 0, 3, 2}, Position{0, 2, 3, 2}, false},
		{"far apart", Position{0, 0, 1, 1}, Position{5, 5, 1, 1}, false},
		{"diagonal corner", Position{0, 0, 2, 2}, Position{2, 2, 2, 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlaps(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := Overlaps(tt.b, tt.a); got != tt.want {
				t.Errorf("Overlaps is not symmetric for %s, %s", tt.a, tt.b)
			}
		})
	}
}

func TestDragRejectedByCollision(t *testing.T) {
	cfg := testConfig()
	start := pairAB()

	// Two columns right puts A on [2,5), overlapping B on [3,6).
	got, ok := Drag(start, "a", 200, 0, cfg, Options{PreventCollision: true})
	if ok {
		t.Fatal("Drag() accepted an overlapping move")
	}
	if diff := cmp.Diff(start, got); diff != "" {
		t.Errorf("rejected drag changed snapshot (-want +got):\n%s", diff)
	}
}

func TestDragAcceptedPastNeighbour(t *testing.T) {
	cfg := testConfig()

	got, ok := Drag(pairAB(), "a", 600, 0, cfg, Options{PreventCollision: true})
	if !ok {
		t.Fatal("Drag() rejected a free target")
	}
	want := Position{6, 0, 3, 2}
	if a, _ := got.Find("a"); a.Position != want {
		t.Errorf("A = %s, want %s", a.Position, want)
	}
	if b, _ := got.Find("b"); b.Position != (Position{3, 0, 3, 2}) {
		t.Errorf("B moved to %s", b.Position)
	}
}

func TestDragWithoutCollisionPreventionOverlaps(t *testing.T) {
	got, ok := Drag(pairAB(), "a", 200, 0, testConfig(), Options{})
	if !ok {
		t.Fatal("Drag() rejected move with collision prevention off")
	}
	if a, _ := got.Find("a"); a.Position.X != 2 {
		t.Errorf("A.X = %d, want 2", a.Position.X)
	}
}

func TestDragClamps(t *testing.T) {
	cfg := testConfig()
	s := Snapshot{{ID: "w", Position: Position{4, 2, 3, 1}}}

	tests := []struct {
		name   string
		dx, dy float64
		want   Position
	}{
		{"far right", 5000, 0, Position{9, 2, 3, 1}},
		{"far left", -5000, 0, Position{0, 2, 3, 1}},
		{"above top", 0, -5000, Position{4, 0, 3, 1}},
		{"unbounded down", 0, 116 * 40, Position{4, 42, 3, 1}},
		{"sub-cell jitter", 30, -40, Position{4, 2, 3, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Drag(s, "w", tt.dx, tt.dy, cfg, Options{})
			if !ok {
				t.Fatal("Drag() rejected")
			}
			if got[0].Position != tt.want {
				t.Errorf("position = %s, want %s", got[0].Position, tt.want)
			}
		})
	}
}

func TestDragGates(t *testing.T) {
	cfg := testConfig()
	s := Snapshot{
		{ID: "locked", Position: Position{0, 0, 2, 2}, Locked: true},
		{ID: "pinned", Position: Position{2, 0, 2, 2}, Draggable: Bool(false)},
		{ID: "free", Position: Position{4, 0, 2, 2}, Draggable: Bool(true)},
	}

	for _, id := range []string{"locked", "pinned", "missing"} {
		got, ok := Drag(s, id, 300, 300, cfg, Options{})
		if ok {
			t.Errorf("Drag(%q) reported accepted", id)
		}
		if diff := cmp.Diff(s, got); diff != "" {
			t.Errorf("Drag(%q) changed snapshot (-want +got):\n%s", id, diff)
		}
	}

	if _, ok := Drag(s, "free", 300, 0, cfg, Options{}); !ok {
		t.Error("Drag(free) rejected")
	}
}

func TestDragDoesNotMutateInput(t *testing.T) {
	start := Snapshot{
		{ID: "a", Position: Position{0, 0, 2, 2}, Payload: map[string]any{"k": "v"}},
		{ID: "b", Position: Position{0, 4, 2, 2}},
	}
	before := start.Clone()

	got, _ := Drag(start, "b", 400, 0, testConfig(), Options{Compact: CompactVertical})
	got[0].Payload["k"] = "changed"

	if diff := cmp.Diff(before, start); diff != "" {
		t.Errorf("Drag() mutated input (-want +got):\n%s", diff)
	}
}

func TestDragCompactsAfterMove(t *testing.T) {
	s := Snapshot{
		{ID: "a", Position: Position{0, 0, 3, 2}},
		{ID: "b", Position: Position{3, 0, 3, 2}},
	}

	// Drop A three rows down; vertical compaction pulls it back to row 0.
	got, ok := Drag(s, "a", 0, 3*116, testConfig(), Options{Compact: CompactVertical})
	if !ok {
		t.Fatal("Drag() rejected")
	}
	if a, _ := got.Find("a"); a.Position != (Position{0, 0, 3, 2}) {
		t.Errorf("A = %s, want compacted to row 0", a.Position)
	}
}

func TestResizeBounds(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name   string
		widget Widget
		dx, dy float64
		want   Position
	}{
		{
			name:   "grow",
			widget: Widget{ID: "w", Position: Position{0, 0, 2, 2}},
			dx:     200, dy: 116,
			want: Position{0, 0, 4, 3},
		},
		{
			name:   "shrink to default minimum",
			widget: Widget{ID: "w", Position: Position{0, 0, 3, 3}},
			dx:     -1000, dy: -1000,
			want: Position{0, 0, 1, 1},
		},
		{
			name:   "explicit minimum",
			widget: Widget{ID: "w", Position: Position{0, 0, 4, 4}, MinW: 2, MinH: 3},
			dx:     -1000, dy: -1000,
			want: Position{0, 0, 2, 3},
		},
		{
			name:   "explicit maximum",
			widget: Widget{ID: "w", Position: Position{0, 0, 2, 2}, MaxW: 4, MaxH: 3},
			dx:     1000, dy: 1000,
			want: Position{0, 0, 4, 3},
		},
		{
			name:   "default max width is cols",
			widget: Widget{ID: "w", Position: Position{0, 0, 2, 2}},
			dx:     5000,
			want:   Position{0, 0, 12, 2},
		},
		{
			name:   "height unbounded by default",
			widget: Widget{ID: "w", Position: Position{0, 0, 2, 2}},
			dy:     116 * 30,
			want:   Position{0, 0, 2, 32},
		},
		{
			name:   "clipped at right edge",
			widget: Widget{ID: "w", Position: Position{10, 0, 2, 2}},
			dx:     300,
			want:   Position{10, 0, 2, 2},
		},
		{
			name:   "min wins over max",
			widget: Widget{ID: "w", Position: Position{0, 0, 3, 3}, MinW: 4, MaxW: 2},
			want:   Position{0, 0, 4, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resize(Snapshot{tt.widget}, "w", tt.dx, tt.dy, cfg, Options{})
			if !ok {
				t.Fatal("Resize() rejected")
			}
			if got[0].Position != tt.want {
				t.Errorf("position = %s, want %s", got[0].Position, tt.want)
			}
		})
	}
}

func TestResizeRejectedByCollision(t *testing.T) {
	start := pairAB()
	got, ok := Resize(start, "a", 100, 0, testConfig(), Options{PreventCollision: true})
	if ok {
		t.Fatal("Resize() accepted growth into neighbour")
	}
	if diff := cmp.Diff(start, got); diff != "" {
		t.Errorf("rejected resize changed snapshot (-want +got):\n%s", diff)
	}

	// Growing downward is free.
	got, ok = Resize(start, "a", 0, 116, testConfig(), Options{PreventCollision: true})
	if !ok {
		t.Fatal("Resize() rejected free growth")
	}
	if a, _ := got.Find("a"); a.Position.H != 3 {
		t.Errorf("A.H = %d, want 3", a.Position.H)
	}
}

func TestResizeGates(t *testing.T) {
	s := Snapshot{
		{ID: "locked", Position: Position{0, 0, 2, 2}, Locked: true},
		{ID: "fixed", Position: Position{2, 0, 2, 2}, Resizable: Bool(false)},
		{ID: "collapsed", Position: Position{4, 0, 2, 2}, Collapsed: true},
	}
	for _, id := range []string{"locked", "fixed", "collapsed", "missing"} {
		got, ok := Resize(s, id, 300, 300, testConfig(), Options{})
		if ok {
			t.Errorf("Resize(%q) reported accepted", id)
		}
		if diff := cmp.Diff(s, got); diff != "" {
			t.Errorf("Resize(%q) changed snapshot (-want +got):\n%s", id, diff)
		}
	}
}

func TestResizeNeverExceedsGrid(t *testing.T) {
	cfg := testConfig()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		w := Widget{
			ID:       "w",
			Position: Position{X: rng.Intn(12), Y: rng.Intn(5), W: 1, H: 1 + rng.Intn(3)},
			MinH:     rng.Intn(3),
			MaxH:     rng.Intn(6),
			MaxW:     rng.Intn(8),
		}
		w.MinW = min(rng.Intn(4), 12-w.Position.X)
		if w.MaxW > 0 {
			w.MaxW = max(w.MaxW, w.MinW)
		}
		if w.MaxH > 0 {
			w.MaxH = max(w.MaxH, w.MinH)
		}

		dx := float64(rng.Intn(2400) - 1200)
		dy := float64(rng.Intn(2400) - 1200)
		got, _ := Resize(Snapshot{w}, "w", dx, dy, cfg, Options{})
		p := got[0].Position

		if p.Right() > cfg.Cols {
			t.Fatalf("case %d: x+w = %d > cols", i, p.Right())
		}
		if p.W < w.minW() {
			t.Fatalf("case %d: w = %d < minW %d", i, p.W, w.minW())
		}
		if w.MaxW > 0 && p.W > w.MaxW {
			t.Fatalf("case %d: w = %d > maxW %d", i, p.W, w.MaxW)
		}
		if p.H < w.minH() {
			t.Fatalf("case %d: h = %d < minH %d", i, p.H, w.minH())
		}
		if w.MaxH > 0 && p.H > w.MaxH {
			t.Fatalf("case %d: h = %d > maxH %d", i, p.H, w.MaxH)
		}
	}
}

func TestDragPreservesNoOverlap(t *testing.T) {
	cfg := testConfig()
	rng := rand.New(rand.NewSource(42))
	opts := Options{PreventCollision: true}

	for round := 0; round < 50; round++ {
		s := Compact(randomSnapshot(rng, 8, cfg.Cols), CompactVertical, cfg.Cols)
		if pairs := s.Overlapping(); len(pairs) != 0 {
			t.Fatalf("round %d: seed layout overlaps: %v", round, pairs)
		}

		for step := 0; step < 40; step++ {
			id := s[rng.Intn(len(s))].ID
			dx := float64(rng.Intn(1000) - 500)
			dy := float64(rng.Intn(700) - 350)
			if rng.Intn(2) == 0 {
				s, _ = Drag(s, id, dx, dy, cfg, opts)
			} else {
				s, _ = Resize(s, id, dx, dy, cfg, opts)
			}
			if pairs := s.Overlapping(); len(pairs) != 0 {
				t.Fatalf("round %d step %d: overlap after moving %q: %v", round, step, id, pairs)
			}
		}
	}
}

func TestLockedWidgetsUnaffected(t *testing.T) {
	cfg := testConfig()
	s := Snapshot{
		{ID: "locked", Position: Position{0, 3, 4, 2}, Locked: true},
		{ID: "a", Position: Position{4, 0, 2, 2}},
		{ID: "b", Position: Position{0, 0, 4, 1}},
	}
	lockedBefore, _ := s.Find("locked")

	check := func(op string, got Snapshot) {
		t.Helper()
		after, ok := got.Find("locked")
		if !ok {
			t.Fatalf("%s removed the locked widget", op)
		}
		if diff := cmp.Diff(lockedBefore, after); diff != "" {
			t.Errorf("%s changed the locked widget (-want +got):\n%s", op, diff)
		}
	}

	opts := Options{Compact: CompactVertical}
	got, _ := Drag(s, "locked", -300, -300, cfg, opts)
	check("drag locked", got)
	got, _ = Resize(s, "locked", 300, 300, cfg, opts)
	check("resize locked", got)
	got, _ = Remove(s, "locked")
	check("remove locked", got)

	// Compaction triggered by another widget does not move it either.
	got, _ = Drag(s, "a", 0, 116*6, cfg, opts)
	check("compaction after drag", got)
}

func TestToggleLockAndCollapse(t *testing.T) {
	s := pairAB()

	locked := ToggleLock(s, "a")
	if a, _ := locked.Find("a"); !a.Locked {
		t.Error("ToggleLock did not lock")
	}
	if a, _ := s.Find("a"); a.Locked {
		t.Error("ToggleLock mutated input")
	}
	if a, _ := ToggleLock(locked, "a").Find("a"); a.Locked {
		t.Error("second ToggleLock did not unlock")
	}

	collapsed := ToggleCollapse(s, "b")
	b, _ := collapsed.Find("b")
	if !b.Collapsed {
		t.Error("ToggleCollapse did not collapse")
	}
	if b.Position != (Position{3, 0, 3, 2}) {
		t.Errorf("collapse changed footprint to %s", b.Position)
	}

	if diff := cmp.Diff(s, ToggleLock(s, "missing")); diff != "" {
		t.Errorf("ToggleLock(missing) changed snapshot:\n%s", diff)
	}
	if diff := cmp.Diff(s, ToggleCollapse(s, "missing")); diff != "" {
		t.Errorf("ToggleCollapse(missing) changed snapshot:\n%s", diff)
	}
}

func TestRemove(t *testing.T) {
	s := Snapshot{
		{ID: "a", Position: Position{0, 0, 1, 1}},
		{ID: "b", Position: Position{1, 0, 1, 1}, Locked: true},
		{ID: "c", Position: Position{2, 0, 1, 1}},
	}

	got, ok := Remove(s, "a")
	if !ok {
		t.Fatal("Remove(a) reported not removed")
	}
	if diff := cmp.Diff([]string{"b", "c"}, ids(got)); diff != "" {
		t.Errorf("Remove(a) ids (-want +got):\n%s", diff)
	}
	if len(s) != 3 {
		t.Error("Remove mutated input")
	}

	for _, id := range []string{"b", "missing"} {
		got, ok := Remove(s, id)
		if ok {
			t.Errorf("Remove(%q) reported removed", id)
		}
		if len(got) != 3 {
			t.Errorf("Remove(%q) dropped a widget", id)
		}
	}
}

func TestSnapshotValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Snapshot
		wantErr bool
	}{
		{"valid", pairAB(), false},
		{"empty id", Snapshot{{Position: Position{0, 0, 1, 1}}}, true},
		{"duplicate id", Snapshot{{ID: "a", Position: Position{0, 0, 1, 1}}, {ID: "a", Position: Position{1, 0, 1, 1}}}, true},
		{"negative x", Snapshot{{ID: "a", Position: Position{-1, 0, 1, 1}}}, true},
		{"zero width", Snapshot{{ID: "a", Position: Position{0, 0, 0, 1}}}, true},
		{"past last column", Snapshot{{ID: "a", Position: Position{10, 0, 3, 1}}}, true},
		{"below min height", Snapshot{{ID: "a", Position: Position{0, 0, 1, 1}, MinH: 2}}, true},
		{"above max width", Snapshot{{ID: "a", Position: Position{0, 0, 5, 1}, MaxW: 4}}, true},
		{"clipped at edge below min width", Snapshot{{ID: "a", Position: Position{11, 0, 1, 1}, MinW: 3}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate(12)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseCompactType(t *testing.T) {
	tests := []struct {
		in      string
		want    CompactType
		wantErr bool
	}{
		{"", CompactNone, false},
		{"none", CompactNone, false},
		{"vertical", CompactVertical, false},
		{"horizontal", CompactHorizontal, false},
		{"diagonal", CompactNone, true},
	}
	for _, tt := range tests {
		got, err := ParseCompactType(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseCompactType(%q) = %q, %v", tt.in, got, err)
		}
	}
}

// randomSnapshot returns n widgets with random positions that fit in cols
// columns. The widgets may overlap.
func randomSnapshot(rng *rand.Rand, n, cols int) Snapshot {
	s := make(Snapshot, n)
	for i := range s {
		w := 1 + rng.Intn(4)
		s[i] = Widget{
			ID: string(rune('a' + i)),
			Position: Position{
				X: rng.Intn(cols - w + 1),
				Y: rng.Intn(10),
				W: w,
				H: 1 + rng.Intn(3),
			},
		}
	}
	return s
}

func ids(s Snapshot) []string {
	out := make([]string, len(s))
	for i, w := range s {
		out[i] = w.ID
	}
	return out
}
