package geom

import "math"

// Polyline is an ordered sequence of vertices.
type Polyline[T Scalar] struct {
	Points []Point[T]
}

type (
	PolylineI = Polyline[int]
	PolylineF = Polyline[float64]
)

// Length returns the summed length of all polyline edges.
func (p Polyline[T]) Length() float64 {
	total := 0.0
	for i := 1; i < len(p.Points); i++ {
		total += p.Points[i-1].Dist(p.Points[i])
	}
	return total
}

// Window returns the bounding window of the polyline vertices.
func (p Polyline[T]) Window() (Window[T], error) {
	return boundingWindow(p.Points)
}

// Polygon is a closed ring of vertices. The closing edge from the last
// vertex back to the first is implicit.
type Polygon[T Scalar] struct {
	Vertices []Point[T]
}

type (
	PolygonI = Polygon[int]
	PolygonF = Polygon[float64]
)

// ContainsPoint reports whether p lies inside the polygon, using the
// even-odd ray casting rule.
func (pg Polygon[T]) ContainsPoint(p Point[T]) bool {
	n := len(pg.Vertices)
	if n < 3 {
		return false
	}
	px, py := float64(p.X), float64(p.Y)
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := float64(pg.Vertices[i].X), float64(pg.Vertices[i].Y)
		xj, yj := float64(pg.Vertices[j].X), float64(pg.Vertices[j].Y)
		if (yi > py) != (yj > py) &&
			px < (xj-xi)*(py-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Perimeter returns the length of the polygon boundary, closing edge
// included.
func (pg Polygon[T]) Perimeter() float64 {
	n := len(pg.Vertices)
	if n < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < n; i++ {
		total += pg.Vertices[i].Dist(pg.Vertices[(i+1)%n])
	}
	return total
}

// Window returns the bounding window of the polygon vertices.
func (pg Polygon[T]) Window() (Window[T], error) {
	return boundingWindow(pg.Vertices)
}

// LineBuffer builds the rectangular buffer polygon of a segment: the
// rectangle of half-width width/2 on each side, perpendicular to the
// segment direction. Vertices run P1-side first, counterclockwise for a
// Y-down raster frame.
func LineBuffer(s SegmentF, width float64) (PolygonF, error) {
	length := s.Length()
	if length == 0 {
		return PolygonF{}, ErrEmptyGeometry
	}
	// Unit normal to the segment direction.
	nx := -(s.P2.Y - s.P1.Y) / length
	ny := (s.P2.X - s.P1.X) / length
	h := width / 2

	return PolygonF{Vertices: []PointF{
		{s.P1.X + nx*h, s.P1.Y + ny*h},
		{s.P2.X + nx*h, s.P2.Y + ny*h},
		{s.P2.X - nx*h, s.P2.Y - ny*h},
		{s.P1.X - nx*h, s.P1.Y - ny*h},
	}}, nil
}

func boundingWindow[T Scalar](pts []Point[T]) (Window[T], error) {
	if len(pts) == 0 {
		return Window[T]{}, ErrEmptyGeometry
	}
	w := Window[T]{P1: pts[0], P2: pts[0]}
	for _, p := range pts[1:] {
		w.P1.X = minT(w.P1.X, p.X)
		w.P1.Y = minT(w.P1.Y, p.Y)
		w.P2.X = maxT(w.P2.X, p.X)
		w.P2.Y = maxT(w.P2.Y, p.Y)
	}
	return w, nil
}

// Collinear reports whether the orientations of two segments differ by
// at most tol radians, modulo π (opposite directions count as
// collinear).
func Collinear(a, b SegmentF, tol float64) bool {
	diff := math.Abs(a.AngleOX() - b.AngleOX())
	diff = math.Mod(diff, math.Pi)
	if diff > math.Pi/2 {
		diff = math.Pi - diff
	}
	return diff <= tol
}
