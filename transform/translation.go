package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aeroinspect/linetrack/geom"
	"github.com/aeroinspect/linetrack/internal/linalg"
)

// Translation is a pure 2D shift.
type Translation struct {
	tx, ty float64
}

// NewTranslation builds a translation with the given offsets.
func NewTranslation(tx, ty float64) *Translation {
	return &Translation{tx: tx, ty: ty}
}

// Tx returns the fitted X offset.
func (t *Translation) Tx() float64 { return t.tx }

// Ty returns the fitted Y offset.
func (t *Translation) Ty() float64 { return t.ty }

// MinimumPoints returns 1.
func (t *Translation) MinimumPoints() int { return 1 }

// IsNull reports whether both offsets are zero within tolerance.
func (t *Translation) IsNull() bool {
	return math.Abs(t.tx) < nullTol && math.Abs(t.ty) < nullTol
}

// Compute fits the translation from point correspondences.
func (t *Translation) Compute(src, dst []geom.PointF) (Result, error) {
	if err := checkInput(src, dst, t.MinimumPoints()); err != nil {
		return Result{}, err
	}

	n := len(src)
	a := mat.NewDense(2*n, 2, nil)
	b := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		a.Set(2*i, 0, 1)
		b[2*i] = dst[i].X - src[i].X
		a.Set(2*i+1, 1, 1)
		b[2*i+1] = dst[i].Y - src[i].Y
	}

	c, err := linalg.Solve(a, b)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNumericFailure, err)
	}

	t.tx, t.ty = c[0], c[1]
	return fitResult(func(p geom.PointF) geom.PointF {
		return geom.PointF{X: p.X + t.tx, Y: p.Y + t.ty}
	}, src, dst, t.MinimumPoints()), nil
}

// Apply shifts a point by the fitted offsets (or their negation for
// Inverse order).
func (t *Translation) Apply(p geom.PointF, order Order) (geom.PointF, error) {
	if order == Inverse {
		return geom.PointF{X: p.X - t.tx, Y: p.Y - t.ty}, nil
	}
	return geom.PointF{X: p.X + t.tx, Y: p.Y + t.ty}, nil
}

// ApplySlice shifts a point list.
func (t *Translation) ApplySlice(in []geom.PointF, order Order) ([]geom.PointF, error) {
	return applySlice(t, in, order)
}
