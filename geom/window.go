package geom

// Window is an axis-aligned rectangle stored as its minimum corner P1
// and maximum corner P2. Constructors and mutating operations keep
// P1.X <= P2.X and P1.Y <= P2.Y; the only windows that break the
// ordering are empty ones, which Intersect produces for disjoint input.
type Window[T Scalar] struct {
	P1, P2 Point[T]
}

type (
	WindowI = Window[int]
	WindowF = Window[float64]
)

// NewWindow builds a window from two arbitrary corners, normalizing so
// P1 holds the minima and P2 the maxima.
func NewWindow[T Scalar](p1, p2 Point[T]) Window[T] {
	w := Window[T]{P1: p1, P2: p2}
	if w.P1.X > w.P2.X {
		w.P1.X, w.P2.X = w.P2.X, w.P1.X
	}
	if w.P1.Y > w.P2.Y {
		w.P1.Y, w.P2.Y = w.P2.Y, w.P1.Y
	}
	return w
}

// IsEmpty reports whether the window contains no area at all. Windows
// produced by intersecting disjoint windows are empty.
func (w Window[T]) IsEmpty() bool {
	return w.P2.X < w.P1.X || w.P2.Y < w.P1.Y
}

// ContainsPoint reports whether p lies inside the window, borders
// included.
func (w Window[T]) ContainsPoint(p Point[T]) bool {
	return p.X >= w.P1.X && p.X <= w.P2.X && p.Y >= w.P1.Y && p.Y <= w.P2.Y
}

// Width returns the window extent along X.
func (w Window[T]) Width() T {
	return w.P2.X - w.P1.X
}

// Height returns the window extent along Y.
func (w Window[T]) Height() T {
	return w.P2.Y - w.P1.Y
}

// Center returns the window center in float coordinates.
func (w Window[T]) Center() PointF {
	return PointF{
		X: (float64(w.P1.X) + float64(w.P2.X)) / 2,
		Y: (float64(w.P1.Y) + float64(w.P2.Y)) / 2,
	}
}

// Expand grows (or shrinks, for negative by) the window by the same
// absolute amount on every side.
func (w Window[T]) Expand(by T) Window[T] {
	return w.Expand2(by, by)
}

// Expand2 grows the window by dx on the left and right sides and dy on
// the top and bottom sides. The result is re-normalized so shrinking
// past the center still yields a valid window.
func (w Window[T]) Expand2(dx, dy T) Window[T] {
	return NewWindow(
		Point[T]{w.P1.X - dx, w.P1.Y - dy},
		Point[T]{w.P2.X + dx, w.P2.Y + dy},
	)
}

// Intersect returns the intersection of two windows. Disjoint windows
// yield an empty window (IsEmpty() == true).
func (w Window[T]) Intersect(o Window[T]) Window[T] {
	r := Window[T]{
		P1: Point[T]{maxT(w.P1.X, o.P1.X), maxT(w.P1.Y, o.P1.Y)},
		P2: Point[T]{minT(w.P2.X, o.P2.X), minT(w.P2.Y, o.P2.Y)},
	}
	return r
}

// Union returns the smallest window covering both inputs. Empty inputs
// are ignored.
func (w Window[T]) Union(o Window[T]) Window[T] {
	if w.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return w
	}
	return Window[T]{
		P1: Point[T]{minT(w.P1.X, o.P1.X), minT(w.P1.Y, o.P1.Y)},
		P2: Point[T]{maxT(w.P2.X, o.P2.X), maxT(w.P2.Y, o.P2.Y)},
	}
}

// WinToF converts a window to float64 coordinates.
func WinToF[T Scalar](w Window[T]) WindowF {
	return WindowF{P1: ToF(w.P1), P2: ToF(w.P2)}
}

func minT[T Scalar](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func maxT[T Scalar](a, b T) T {
	if a > b {
		return a
	}
	return b
}
