package linalg

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrNoConvergence is returned when the SVD factorization does not
// converge.
var ErrNoConvergence = errors.New("linalg: svd did not converge")

// Decomposition holds a thin singular value decomposition A = U Σ Vᵀ
// with the singular values in descending order.
type Decomposition struct {
	U      *mat.Dense
	V      *mat.Dense
	Sigma  []float64
	m, n   int
}

// Decompose computes the thin SVD of an m x n matrix with m >= n. The
// sign of each singular pair is chosen so that the majority of entries
// in the corresponding U column are non-negative.
func Decompose(a *mat.Dense) (*Decomposition, error) {
	m, n := a.Dims()
	if m == 0 || n == 0 {
		return nil, fmt.Errorf("linalg: svd of empty %dx%d matrix", m, n)
	}
	if m < n {
		return nil, fmt.Errorf("linalg: svd requires rows >= cols, got %dx%d", m, n)
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, ErrNoConvergence
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sigma := svd.Values(nil)

	d := &Decomposition{U: &u, V: &v, Sigma: sigma, m: m, n: n}
	d.fixSigns()
	return d, nil
}

// fixSigns flips each (U column, V column) pair so that most entries of
// the U column are non-negative. Both columns flip together, leaving
// the product U Σ Vᵀ unchanged.
func (d *Decomposition) fixSigns() {
	for j := 0; j < d.n; j++ {
		neg := 0
		for i := 0; i < d.m; i++ {
			if d.U.At(i, j) < 0 {
				neg++
			}
		}
		if neg*2 > d.m {
			for i := 0; i < d.m; i++ {
				d.U.Set(i, j, -d.U.At(i, j))
			}
			for i := 0; i < d.n; i++ {
				d.V.Set(i, j, -d.V.At(i, j))
			}
		}
	}
}

// Solve returns the least-squares solution x of A x = b through the
// pseudo-inverse: x = V Σ⁺ Uᵀ b. Singular values below
// 0.5·√(m+n+1)·σmax·ε are treated as zero and contribute nothing to the
// solution.
func Solve(a *mat.Dense, b []float64) ([]float64, error) {
	m, n := a.Dims()
	if len(b) != m {
		return nil, fmt.Errorf("linalg: solve dimension mismatch: A is %dx%d, b has %d", m, n, len(b))
	}

	d, err := Decompose(a)
	if err != nil {
		return nil, err
	}

	sigmaMax := 0.0
	if len(d.Sigma) > 0 {
		sigmaMax = d.Sigma[0]
	}
	threshold := 0.5 * math.Sqrt(float64(m+n+1)) * sigmaMax * Eps

	// y = Σ⁺ Uᵀ b, dropping components below the threshold.
	y := make([]float64, n)
	for j := 0; j < n; j++ {
		if d.Sigma[j] <= threshold {
			continue
		}
		dot := 0.0
		for i := 0; i < m; i++ {
			dot += d.U.At(i, j) * b[i]
		}
		y[j] = dot / d.Sigma[j]
	}

	// x = V y
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += d.V.At(i, j) * y[j]
		}
		x[i] = sum
	}
	return x, nil
}
