package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aeroinspect/linetrack/geom"
	"github.com/aeroinspect/linetrack/internal/linalg"
)

// Projective is the eight-parameter planar homography with the
// conventional normalization h33 = 1.
//
//	x' = (a·x + b·y + c) / (g·x + h·y + 1)
//	y' = (d·x + e·y + f) / (g·x + h·y + 1)
type Projective struct {
	a, b, c, d, e, f, g, h float64

	// Inverse coefficient pack, normalized the same way.
	ai, bi, ci, di, ei, fi, gi, hi float64
	inverseValid                   bool
}

// NewProjective builds an identity projective transform.
func NewProjective() *Projective {
	p := &Projective{a: 1, e: 1}
	p.updateInverse()
	return p
}

// Coefficients returns the eight fitted coefficients
// (a, b, c, d, e, f, g, h).
func (t *Projective) Coefficients() [8]float64 {
	return [8]float64{t.a, t.b, t.c, t.d, t.e, t.f, t.g, t.h}
}

// MinimumPoints returns 4.
func (t *Projective) MinimumPoints() int { return 4 }

// IsNull reports whether the transform is the identity within tolerance.
func (t *Projective) IsNull() bool {
	return math.Abs(t.a-1) < nullTol &&
		math.Abs(t.b) < nullTol &&
		math.Abs(t.c) < nullTol &&
		math.Abs(t.d) < nullTol &&
		math.Abs(t.e-1) < nullTol &&
		math.Abs(t.f) < nullTol &&
		math.Abs(t.g) < nullTol &&
		math.Abs(t.h) < nullTol
}

// Compute fits the eight coefficients from correspondences.
func (t *Projective) Compute(src, dst []geom.PointF) (Result, error) {
	if err := checkInput(src, dst, t.MinimumPoints()); err != nil {
		return Result{}, err
	}

	// Stacked equations, two rows per correspondence:
	//   [x, y, 1, 0, 0, 0, -x·x', -y·x'] · h = x'
	//   [0, 0, 0, x, y, 1, -x·y', -y·y'] · h = y'
	n := len(src)
	a := mat.NewDense(2*n, 8, nil)
	rhs := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		x, y := src[i].X, src[i].Y
		xp, yp := dst[i].X, dst[i].Y

		a.Set(2*i, 0, x)
		a.Set(2*i, 1, y)
		a.Set(2*i, 2, 1)
		a.Set(2*i, 6, -x*xp)
		a.Set(2*i, 7, -y*xp)
		rhs[2*i] = xp

		a.Set(2*i+1, 3, x)
		a.Set(2*i+1, 4, y)
		a.Set(2*i+1, 5, 1)
		a.Set(2*i+1, 6, -x*yp)
		a.Set(2*i+1, 7, -y*yp)
		rhs[2*i+1] = yp
	}

	c, err := linalg.Solve(a, rhs)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNumericFailure, err)
	}

	t.a, t.b, t.c, t.d = c[0], c[1], c[2], c[3]
	t.e, t.f, t.g, t.h = c[4], c[5], c[6], c[7]
	t.updateInverse()

	return fitResult(t.forward, src, dst, t.MinimumPoints()), nil
}

func (t *Projective) forward(p geom.PointF) geom.PointF {
	w := t.g*p.X + t.h*p.Y + 1
	if w == 0 {
		w = linalg.Eps
	}
	return geom.PointF{
		X: (t.a*p.X + t.b*p.Y + t.c) / w,
		Y: (t.d*p.X + t.e*p.Y + t.f) / w,
	}
}

// updateInverse rebuilds the inverse pack by inverting the 3x3
// homography matrix and renormalizing so its (3,3) entry is 1. A
// singular homography leaves the inverse invalid.
func (t *Projective) updateInverse() {
	m := mat.NewDense(3, 3, []float64{
		t.a, t.b, t.c,
		t.d, t.e, t.f,
		t.g, t.h, 1,
	})
	inv, err := linalg.Inverse(m)
	if err != nil {
		t.inverseValid = false
		return
	}
	w := inv.At(2, 2)
	if math.Abs(w) < linalg.Eps {
		t.inverseValid = false
		return
	}
	t.ai, t.bi, t.ci = inv.At(0, 0)/w, inv.At(0, 1)/w, inv.At(0, 2)/w
	t.di, t.ei, t.fi = inv.At(1, 0)/w, inv.At(1, 1)/w, inv.At(1, 2)/w
	t.gi, t.hi = inv.At(2, 0)/w, inv.At(2, 1)/w
	t.inverseValid = true
}

// Apply maps a point forward or, for Inverse order, through the cached
// inverse pack.
func (t *Projective) Apply(p geom.PointF, order Order) (geom.PointF, error) {
	if order == Direct {
		return t.forward(p), nil
	}
	if !t.inverseValid {
		return geom.PointF{}, ErrNoInverse
	}
	w := t.gi*p.X + t.hi*p.Y + 1
	if w == 0 {
		w = linalg.Eps
	}
	return geom.PointF{
		X: (t.ai*p.X + t.bi*p.Y + t.ci) / w,
		Y: (t.di*p.X + t.ei*p.Y + t.fi) / w,
	}, nil
}

// ApplySlice maps a point list.
func (t *Projective) ApplySlice(in []geom.PointF, order Order) ([]geom.PointF, error) {
	return applySlice(t, in, order)
}
