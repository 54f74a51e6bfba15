package linetrack

import (
	"math"

	"github.com/aeroinspect/linetrack/geom"
)

// Angular tolerance for joining near-collinear segments.
const joinAngleTolerance = 3 * math.Pi / 180

// LineGroup is a set of segments sharing spatial locality. Groups are
// created by GroupLinesByDist; consumers read the cached window and
// centroid.
type LineGroup struct {
	segments []geom.SegmentI
	window   geom.WindowI
}

// newLineGroup seeds a group with its first segment.
func newLineGroup(s geom.SegmentI) *LineGroup {
	return &LineGroup{
		segments: []geom.SegmentI{s},
		window:   s.Window(),
	}
}

// add extends the group, keeping the cached window current.
func (g *LineGroup) add(s geom.SegmentI) {
	g.segments = append(g.segments, s)
	g.window = g.window.Union(s.Window())
}

// merge absorbs the segments of another group.
func (g *LineGroup) merge(o *LineGroup) {
	g.segments = append(g.segments, o.segments...)
	g.window = g.window.Union(o.window)
}

// Lines returns the member segments.
func (g *LineGroup) Lines() []geom.SegmentI {
	return g.segments
}

// Len returns the member count.
func (g *LineGroup) Len() int {
	return len(g.segments)
}

// Window returns the cached bounding window of the group.
func (g *LineGroup) Window() geom.WindowI {
	return g.window
}

// Centroid returns the mean of all member endpoints.
func (g *LineGroup) Centroid() geom.PointF {
	var cx, cy float64
	for _, s := range g.segments {
		cx += float64(s.P1.X) + float64(s.P2.X)
		cy += float64(s.P1.Y) + float64(s.P2.Y)
	}
	n := float64(2 * len(g.segments))
	return geom.PointF{X: cx / n, Y: cy / n}
}

// segmentsNear reports whether any endpoint of a is within dist of any
// endpoint of b.
func segmentsNear(a, b geom.SegmentI, dist float64) bool {
	for _, p := range [2]geom.PointI{a.P1, a.P2} {
		for _, q := range [2]geom.PointI{b.P1, b.P2} {
			if p.Dist(q) <= dist {
				return true
			}
		}
	}
	return false
}

// GroupLinesByDist partitions segments into groups under the transitive
// closure of the "any endpoints within dist" relation: two segments
// land in the same group iff a chain of near segments connects them.
func GroupLinesByDist(segments []geom.SegmentI, dist float64) []*LineGroup {
	// Union-find over segment indices.
	parent := make([]int, len(segments))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(i, j int) {
		ri, rj := find(i), find(j)
		if ri != rj {
			parent[rj] = ri
		}
	}

	for i := 0; i < len(segments); i++ {
		for j := i + 1; j < len(segments); j++ {
			if segmentsNear(segments[i], segments[j], dist) {
				union(i, j)
			}
		}
	}

	groupsByRoot := make(map[int]*LineGroup)
	var groups []*LineGroup
	for i, s := range segments {
		root := find(i)
		if g, ok := groupsByRoot[root]; ok {
			g.add(s)
		} else {
			g := newLineGroup(s)
			groupsByRoot[root] = g
			groups = append(groups, g)
		}
	}
	return groups
}

// JoinLinesByDist reduces a segment list by repeatedly fusing pairs
// that are near-collinear (orientation difference within 3°) and whose
// nearest endpoints are within dist. A joined segment spans the two
// farthest endpoints of the pair.
func JoinLinesByDist(segments []geom.SegmentI, dist float64) []geom.SegmentI {
	out := append([]geom.SegmentI(nil), segments...)

	for {
		joined := false
	scan:
		for i := 0; i < len(out); i++ {
			for j := i + 1; j < len(out); j++ {
				if !geom.Collinear(geom.SegToF(out[i]), geom.SegToF(out[j]), joinAngleTolerance) {
					continue
				}
				if !segmentsNear(out[i], out[j], dist) {
					continue
				}
				out[i] = spanSegment(out[i], out[j])
				out = append(out[:j], out[j+1:]...)
				joined = true
				break scan
			}
		}
		if !joined {
			return out
		}
	}
}

// spanSegment returns the segment between the two farthest endpoints of
// a pair of segments.
func spanSegment(a, b geom.SegmentI) geom.SegmentI {
	pts := [4]geom.PointI{a.P1, a.P2, b.P1, b.P2}
	best := geom.SegmentI{P1: pts[0], P2: pts[1]}
	bestDist := pts[0].Dist(pts[1])
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if d := pts[i].Dist(pts[j]); d > bestDist {
				bestDist = d
				best = geom.SegmentI{P1: pts[i], P2: pts[j]}
			}
		}
	}
	return best
}

// DelLinesGroupBySize drops groups with fewer than minCount members.
func DelLinesGroupBySize(groups []*LineGroup, minCount int) []*LineGroup {
	kept := groups[:0]
	for _, g := range groups {
		if g.Len() >= minCount {
			kept = append(kept, g)
		}
	}
	return kept
}
