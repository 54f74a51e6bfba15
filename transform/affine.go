package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aeroinspect/linetrack/geom"
	"github.com/aeroinspect/linetrack/internal/linalg"
)

// Affine is the six-parameter planar transform: independent axis scales,
// rotation and translation.
//
//	x' = a·x + b·y + tx
//	y' = c·x + d·y + ty
type Affine struct {
	tx, ty   float64
	scaleX   float64
	scaleY   float64
	rotation float64

	a, b, c, d float64

	ai, bi, ci, di float64
	txi, tyi       float64
	inverseValid   bool
}

// NewAffine builds an affine transform from translation, axis scales and
// rotation.
func NewAffine(tx, ty, scaleX, scaleY, rotation float64) *Affine {
	t := &Affine{}
	t.SetParameters(tx, ty, scaleX, scaleY, rotation)
	return t
}

// SetParameters sets the transform from translation, axis scales and
// rotation, refreshing both coefficient packs.
func (t *Affine) SetParameters(tx, ty, scaleX, scaleY, rotation float64) {
	t.tx, t.ty = tx, ty
	t.scaleX, t.scaleY = scaleX, scaleY
	t.rotation = rotation
	sin, cos := math.Sincos(rotation)
	t.a = scaleX * cos
	t.b = -scaleY * sin
	t.c = scaleX * sin
	t.d = scaleY * cos
	t.updateInverse()
}

// Parameters returns the 2x3 coefficient matrix [[a, b, tx], [c, d, ty]].
func (t *Affine) Parameters() *mat.Dense {
	return mat.NewDense(2, 3, []float64{
		t.a, t.b, t.tx,
		t.c, t.d, t.ty,
	})
}

// Tx returns the fitted X offset.
func (t *Affine) Tx() float64 { return t.tx }

// Ty returns the fitted Y offset.
func (t *Affine) Ty() float64 { return t.ty }

// ScaleX returns the fitted scale along X.
func (t *Affine) ScaleX() float64 { return t.scaleX }

// ScaleY returns the fitted scale along Y.
func (t *Affine) ScaleY() float64 { return t.scaleY }

// Rotation returns the fitted rotation in radians.
func (t *Affine) Rotation() float64 { return t.rotation }

// MinimumPoints returns 3.
func (t *Affine) MinimumPoints() int { return 3 }

// IsNull reports whether the transform is the identity within tolerance.
func (t *Affine) IsNull() bool {
	return math.Abs(t.tx) < nullTol &&
		math.Abs(t.ty) < nullTol &&
		math.Abs(t.scaleX-1) < nullTol &&
		math.Abs(t.scaleY-1) < nullTol &&
		math.Abs(t.rotation) < nullTol
}

// Compute fits the six coefficients from correspondences and recovers
// scales and rotation from them.
func (t *Affine) Compute(src, dst []geom.PointF) (Result, error) {
	if err := checkInput(src, dst, t.MinimumPoints()); err != nil {
		return Result{}, err
	}

	// Stacked equations, two rows per correspondence:
	//   [x, y, 0, 0, 1, 0] · [a b c d tx ty]ᵀ = x'
	//   [0, 0, x, y, 0, 1] · [a b c d tx ty]ᵀ = y'
	n := len(src)
	a := mat.NewDense(2*n, 6, nil)
	rhs := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		a.Set(2*i, 0, src[i].X)
		a.Set(2*i, 1, src[i].Y)
		a.Set(2*i, 4, 1)
		rhs[2*i] = dst[i].X

		a.Set(2*i+1, 2, src[i].X)
		a.Set(2*i+1, 3, src[i].Y)
		a.Set(2*i+1, 5, 1)
		rhs[2*i+1] = dst[i].Y
	}

	c, err := linalg.Solve(a, rhs)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNumericFailure, err)
	}

	t.a, t.b, t.c, t.d = c[0], c[1], c[2], c[3]
	t.tx, t.ty = c[4], c[5]
	t.rotation = (math.Atan2(t.c, t.a) + math.Atan2(-t.b, t.d)) / 2
	t.scaleX = linalg.Module(t.a, t.c)
	t.scaleY = linalg.Module(t.b, t.d)
	t.updateInverse()

	return fitResult(t.forward, src, dst, t.MinimumPoints()), nil
}

func (t *Affine) forward(p geom.PointF) geom.PointF {
	return geom.PointF{
		X: t.a*p.X + t.b*p.Y + t.tx,
		Y: t.c*p.X + t.d*p.Y + t.ty,
	}
}

// updateInverse refreshes the inverse coefficient pack from the forward
// one. A singular coefficient matrix leaves the inverse invalid.
func (t *Affine) updateInverse() {
	det := linalg.Det2(t.a, t.b, t.c, t.d)
	if math.Abs(det) < linalg.Eps {
		t.inverseValid = false
		return
	}
	t.ai = t.d / det
	t.bi = -t.b / det
	t.ci = -t.c / det
	t.di = t.a / det
	t.txi = -(t.ai*t.tx + t.bi*t.ty)
	t.tyi = -(t.ci*t.tx + t.di*t.ty)
	t.inverseValid = true
}

// Apply maps a point forward or, for Inverse order, through the cached
// inverse pack.
func (t *Affine) Apply(p geom.PointF, order Order) (geom.PointF, error) {
	if order == Inverse {
		if !t.inverseValid {
			return geom.PointF{}, ErrNoInverse
		}
		return geom.PointF{
			X: t.ai*p.X + t.bi*p.Y + t.txi,
			Y: t.ci*p.X + t.di*p.Y + t.tyi,
		}, nil
	}
	return t.forward(p), nil
}

// ApplySlice maps a point list.
func (t *Affine) ApplySlice(in []geom.PointF, order Order) ([]geom.PointF, error) {
	return applySlice(t, in, order)
}
