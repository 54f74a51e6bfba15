package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/aeroinspect/linetrack/geom"
	"github.com/aeroinspect/linetrack/internal/linalg"
)

// Helmert2D is the four-parameter similarity transform: translation plus
// uniform scale and rotation.
//
//	x' = a·x − b·y + tx        a = s·cos θ
//	y' = b·x + a·y + ty        b = s·sin θ
type Helmert2D struct {
	tx, ty   float64
	scale    float64
	rotation float64

	// Forward and inverse coefficient packs, kept consistent with the
	// parameters after every successful Compute.
	a, b           float64
	ai, bi         float64
	txi, tyi       float64
	inverseValid   bool
}

// NewHelmert2D builds a similarity transform from explicit parameters.
func NewHelmert2D(tx, ty, scale, rotation float64) *Helmert2D {
	h := &Helmert2D{tx: tx, ty: ty, scale: scale, rotation: rotation}
	h.a = scale * math.Cos(rotation)
	h.b = scale * math.Sin(rotation)
	h.updateInverse()
	return h
}

// Tx returns the fitted X offset.
func (h *Helmert2D) Tx() float64 { return h.tx }

// Ty returns the fitted Y offset.
func (h *Helmert2D) Ty() float64 { return h.ty }

// Scale returns the fitted uniform scale.
func (h *Helmert2D) Scale() float64 { return h.scale }

// Rotation returns the fitted rotation in radians.
func (h *Helmert2D) Rotation() float64 { return h.rotation }

// MinimumPoints returns 2.
func (h *Helmert2D) MinimumPoints() int { return 2 }

// IsNull reports whether the transform is the identity within tolerance.
func (h *Helmert2D) IsNull() bool {
	return math.Abs(h.tx) < nullTol &&
		math.Abs(h.ty) < nullTol &&
		math.Abs(h.scale-1) < nullTol &&
		math.Abs(h.rotation) < nullTol
}

// Compute fits the four parameters (a, b, tx, ty) from correspondences.
func (h *Helmert2D) Compute(src, dst []geom.PointF) (Result, error) {
	if err := checkInput(src, dst, h.MinimumPoints()); err != nil {
		return Result{}, err
	}

	// Stacked equations, two rows per correspondence:
	//   [x, -y, 1, 0] · [a b tx ty]ᵀ = x'
	//   [y,  x, 0, 1] · [a b tx ty]ᵀ = y'
	n := len(src)
	a := mat.NewDense(2*n, 4, nil)
	rhs := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		a.Set(2*i, 0, src[i].X)
		a.Set(2*i, 1, -src[i].Y)
		a.Set(2*i, 2, 1)
		rhs[2*i] = dst[i].X

		a.Set(2*i+1, 0, src[i].Y)
		a.Set(2*i+1, 1, src[i].X)
		a.Set(2*i+1, 3, 1)
		rhs[2*i+1] = dst[i].Y
	}

	c, err := linalg.Solve(a, rhs)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrNumericFailure, err)
	}

	h.a, h.b = c[0], c[1]
	h.tx, h.ty = c[2], c[3]
	h.rotation = math.Atan2(h.b, h.a)
	h.scale = linalg.Module(h.a, h.b)
	h.updateInverse()

	return fitResult(h.forward, src, dst, h.MinimumPoints()), nil
}

func (h *Helmert2D) forward(p geom.PointF) geom.PointF {
	return geom.PointF{
		X: h.a*p.X - h.b*p.Y + h.tx,
		Y: h.b*p.X + h.a*p.Y + h.ty,
	}
}

// updateInverse refreshes the inverse coefficient pack from the forward
// parameters. A zero-scale transform has no inverse.
func (h *Helmert2D) updateInverse() {
	det := h.a*h.a + h.b*h.b
	if det < linalg.Eps {
		h.inverseValid = false
		return
	}
	h.ai = h.a / det
	h.bi = -h.b / det
	h.txi = -(h.ai*h.tx - h.bi*h.ty)
	h.tyi = -(h.bi*h.tx + h.ai*h.ty)
	h.inverseValid = true
}

// Apply maps a point forward or, for Inverse order, back through the
// cached inverse pack.
func (h *Helmert2D) Apply(p geom.PointF, order Order) (geom.PointF, error) {
	if order == Inverse {
		if !h.inverseValid {
			return geom.PointF{}, ErrNoInverse
		}
		return geom.PointF{
			X: h.ai*p.X - h.bi*p.Y + h.txi,
			Y: h.bi*p.X + h.ai*p.Y + h.tyi,
		}, nil
	}
	return h.forward(p), nil
}

// ApplySlice maps a point list.
func (h *Helmert2D) ApplySlice(in []geom.PointF, order Order) ([]geom.PointF, error) {
	return applySlice(h, in, order)
}
