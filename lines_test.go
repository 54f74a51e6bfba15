package linetrack

import (
	"math"
	"testing"

	"github.com/aeroinspect/linetrack/geom"
)

func seg(x1, y1, x2, y2 int) geom.SegmentI {
	return geom.SegmentI{
		P1: geom.PointI{X: x1, Y: y1},
		P2: geom.PointI{X: x2, Y: y2},
	}
}

func TestAngleRangeContains(t *testing.T) {
	r := AngleRange{Center: 0, Tolerance: 0.1}

	if !r.Contains(0.05) {
		t.Error("in-range angle rejected")
	}
	if r.Contains(0.5) {
		t.Error("out-of-range angle accepted")
	}
	// Modulo π: an angle near π is the same orientation as 0.
	if !r.Contains(math.Pi - 0.05) {
		t.Error("π-wrapped angle rejected")
	}
	if !r.Contains(-0.08) {
		t.Error("negative in-range angle rejected")
	}
}

func TestGroupLinesByDistTransitiveClosure(t *testing.T) {
	// a-b are near, b-c are near, a-c are NOT directly near: the chain
	// still puts all three in one group.
	a := seg(0, 0, 10, 0)
	b := seg(14, 0, 24, 0)
	c := seg(28, 0, 38, 0)
	far := seg(100, 100, 110, 100)

	groups := GroupLinesByDist([]geom.SegmentI{a, b, c, far}, 5)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	sizes := map[int]int{}
	for _, g := range groups {
		sizes[g.Len()]++
	}
	if sizes[3] != 1 || sizes[1] != 1 {
		t.Errorf("group sizes = %v, want one of 3 and one of 1", sizes)
	}
}

// referenceGroups is the O(N²) fixed-point reference implementation the
// union-find grouping must agree with.
func referenceGroups(segments []geom.SegmentI, dist float64) [][]int {
	n := len(segments)
	label := make([]int, n)
	for i := range label {
		label[i] = i
	}
	for changed := true; changed; {
		changed = false
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if segmentsNear(segments[i], segments[j], dist) && label[j] < label[i] {
					label[i] = label[j]
					changed = true
				}
			}
		}
	}
	byLabel := map[int][]int{}
	for i, l := range label {
		byLabel[l] = append(byLabel[l], i)
	}
	out := make([][]int, 0, len(byLabel))
	for _, members := range byLabel {
		out = append(out, members)
	}
	return out
}

func TestGroupLinesMatchesReference(t *testing.T) {
	// Pseudo-random-ish but deterministic layout.
	var segments []geom.SegmentI
	for i := 0; i < 40; i++ {
		x := (i * 37) % 200
		y := (i * 91) % 150
		segments = append(segments, seg(x, y, x+(i%13), y+(i%7)))
	}

	const dist = 12.0
	groups := GroupLinesByDist(segments, dist)
	ref := referenceGroups(segments, dist)

	if len(groups) != len(ref) {
		t.Fatalf("got %d groups, reference has %d", len(groups), len(ref))
	}

	refSizes := map[int]int{}
	for _, members := range ref {
		refSizes[len(members)]++
	}
	gotSizes := map[int]int{}
	total := 0
	for _, g := range groups {
		gotSizes[g.Len()]++
		total += g.Len()
	}
	if total != len(segments) {
		t.Errorf("grouped %d segments, want %d", total, len(segments))
	}
	for size, count := range refSizes {
		if gotSizes[size] != count {
			t.Errorf("size %d: got %d groups, reference %d", size, gotSizes[size], count)
		}
	}
}

func TestLineGroupCaches(t *testing.T) {
	groups := GroupLinesByDist([]geom.SegmentI{
		seg(0, 0, 10, 0),
		seg(12, 2, 20, 6),
	}, 5)
	if len(groups) != 1 {
		t.Fatalf("got %d groups", len(groups))
	}

	g := groups[0]
	w := g.Window()
	if w.P1 != (geom.PointI{0, 0}) || w.P2 != (geom.PointI{20, 6}) {
		t.Errorf("cached window = %v", w)
	}
	c := g.Centroid()
	if math.Abs(c.X-10.5) > 1e-12 || math.Abs(c.Y-2) > 1e-12 {
		t.Errorf("centroid = %v", c)
	}
}

func TestJoinLinesByDist(t *testing.T) {
	// Two collinear pieces with a small gap fuse into one span.
	pieces := []geom.SegmentI{
		seg(0, 0, 40, 0),
		seg(45, 0, 90, 0),
	}
	joined := JoinLinesByDist(pieces, 10)
	if len(joined) != 1 {
		t.Fatalf("got %d segments, want 1", len(joined))
	}
	if joined[0].Length() != 90 {
		t.Errorf("joined span length = %v, want 90", joined[0].Length())
	}
}

func TestJoinLinesRespectsAngle(t *testing.T) {
	// Near but far from collinear: 45° apart stays separate.
	pieces := []geom.SegmentI{
		seg(0, 0, 40, 0),
		seg(42, 0, 70, 28),
	}
	joined := JoinLinesByDist(pieces, 10)
	if len(joined) != 2 {
		t.Errorf("got %d segments, want 2 (angle gate)", len(joined))
	}
}

func TestJoinLinesRespectsDistance(t *testing.T) {
	pieces := []geom.SegmentI{
		seg(0, 0, 40, 0),
		seg(100, 0, 140, 0),
	}
	joined := JoinLinesByDist(pieces, 10)
	if len(joined) != 2 {
		t.Errorf("got %d segments, want 2 (distance gate)", len(joined))
	}
}

func TestJoinLinesCascades(t *testing.T) {
	// Three pieces in a row collapse to a single span through repeated
	// pairwise joins.
	pieces := []geom.SegmentI{
		seg(0, 0, 30, 0),
		seg(34, 0, 60, 0),
		seg(64, 0, 100, 0),
	}
	joined := JoinLinesByDist(pieces, 8)
	if len(joined) != 1 {
		t.Fatalf("got %d segments, want 1", len(joined))
	}
	if joined[0].Length() != 100 {
		t.Errorf("cascaded span = %v, want 100", joined[0].Length())
	}
}

func TestDelLinesGroupBySize(t *testing.T) {
	groups := []*LineGroup{
		newLineGroup(seg(0, 0, 1, 1)),
		newLineGroup(seg(0, 0, 1, 1)),
	}
	groups[0].add(seg(1, 1, 2, 2))
	groups[0].add(seg(2, 2, 3, 3))

	kept := DelLinesGroupBySize(groups, 2)
	if len(kept) != 1 || kept[0].Len() != 3 {
		t.Errorf("kept %d groups", len(kept))
	}
}

func TestPolarToSegment(t *testing.T) {
	bounds := geom.WindowF{P1: geom.PointF{0, 0}, P2: geom.PointF{99, 99}}

	// A horizontal line y = 50: theta = π/2, rho = 50.
	s, ok := polarToSegment(50, math.Pi/2, bounds)
	if !ok {
		t.Fatal("horizontal line rejected")
	}
	if s.P1.Y != 50 || s.P2.Y != 50 {
		t.Errorf("horizontal polar line = %v", s)
	}
	if s.Length() < 98 {
		t.Errorf("span %v too short", s.Length())
	}

	// rho far outside the raster produces nothing.
	if _, ok := polarToSegment(500, math.Pi/2, bounds); ok {
		t.Error("off-raster line accepted")
	}
}
