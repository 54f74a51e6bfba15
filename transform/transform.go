// Package transform implements the planar transform algebra: a family
// of 2D transforms (translation, Helmert similarity, affine, projective)
// behind one interface, each supporting forward and inverse evaluation,
// least-squares fit from point correspondences, and RMSE reporting.
//
// Fits minimize squared residuals in the destination frame by solving
// the stacked linear system with an SVD-based least-squares solver.
// A failed Compute never touches the previously fitted parameters.
package transform

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/aeroinspect/linetrack/geom"
)

// Order selects the direction a transform is applied in.
type Order int

const (
	// Direct applies the fitted source→destination mapping.
	Direct Order = iota
	// Inverse applies the destination→source mapping.
	Inverse
)

var (
	// ErrInsufficientPoints is returned by Compute when fewer than
	// MinimumPoints correspondences are supplied.
	ErrInsufficientPoints = errors.New("transform: insufficient points")

	// ErrSizeMismatch is returned by Compute when the source and
	// destination slices differ in length.
	ErrSizeMismatch = errors.New("transform: source and destination sizes differ")

	// ErrNumericFailure is returned when the underlying solver fails.
	ErrNumericFailure = errors.New("transform: numeric failure")

	// ErrNoInverse is returned by Apply with Inverse order when the
	// fitted transform is not invertible.
	ErrNoInverse = errors.New("transform: transform is not invertible")

	// ErrNotApplicable is returned when an operation is invoked on a
	// composite transform that does not support it.
	ErrNotApplicable = errors.New("transform: operation not applicable")
)

// Result carries the per-point residuals and RMSE of a successful fit.
type Result struct {
	// Residuals holds the Euclidean error of each correspondence in the
	// destination frame.
	Residuals []float64

	// RMSE is sqrt(sum(residual²) / (2·(n − minimumPoints))), or 0 when
	// the fit is exactly determined.
	RMSE float64
}

// Transform is a fitted planar transform.
type Transform interface {
	// Compute fits the transform to the given correspondences. On
	// failure the previously fitted parameters are left intact.
	Compute(src, dst []geom.PointF) (Result, error)

	// Apply maps a single point in the requested direction.
	Apply(p geom.PointF, order Order) (geom.PointF, error)

	// ApplySlice maps a point list in the requested direction.
	ApplySlice(in []geom.PointF, order Order) ([]geom.PointF, error)

	// IsNull reports whether the transform is the identity within
	// numerical tolerance.
	IsNull() bool

	// MinimumPoints is the smallest number of correspondences Compute
	// accepts.
	MinimumPoints() int
}

const nullTol = 1e-12

// checkInput validates the shared Compute preconditions.
func checkInput(src, dst []geom.PointF, minPoints int) error {
	if len(src) != len(dst) {
		return fmt.Errorf("%w: %d vs %d", ErrSizeMismatch, len(src), len(dst))
	}
	if len(src) < minPoints {
		return fmt.Errorf("%w: got %d, need %d", ErrInsufficientPoints, len(src), minPoints)
	}
	return nil
}

// fitResult evaluates the fitted forward mapping against the
// correspondences and builds the residual vector and RMSE. When the fit
// is exactly determined (n == minPoints) the RMSE is reported as 0.
func fitResult(apply func(geom.PointF) geom.PointF, src, dst []geom.PointF, minPoints int) Result {
	n := len(src)
	res := Result{Residuals: make([]float64, n)}
	sum := 0.0
	for i := range src {
		out := apply(src[i])
		dx := out.X - dst[i].X
		dy := out.Y - dst[i].Y
		e2 := dx*dx + dy*dy
		res.Residuals[i] = math.Sqrt(e2)
		sum += e2
	}
	if denom := 2 * (n - minPoints); denom > 0 {
		res.RMSE = math.Sqrt(sum / float64(denom))
	}
	return res
}

// applySlice maps a point list through a single-point apply.
func applySlice(t Transform, in []geom.PointF, order Order) ([]geom.PointF, error) {
	out := make([]geom.PointF, len(in))
	for i, p := range in {
		q, err := t.Apply(p, order)
		if err != nil {
			return nil, err
		}
		out[i] = q
	}
	return out, nil
}

// ApplyParallel maps a point list through the transform with a chunked
// worker pool. The transform must not be refitted while the call is in
// flight; Apply itself is read-only on the fitted parameters.
func ApplyParallel(t Transform, in []geom.PointF, order Order) ([]geom.PointF, error) {
	n := len(in)
	if n == 0 {
		return nil, nil
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	out := make([]geom.PointF, n)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				q, err := t.Apply(in[i], order)
				if err != nil {
					errs[w] = err
					return
				}
				out[i] = q
			}
		}(w, lo, hi)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
