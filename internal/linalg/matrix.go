package linalg

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrSingular is returned when a matrix inverse is requested for a
// numerically singular matrix.
var ErrSingular = errors.New("linalg: singular matrix")

// ErrIndexOutOfRange is returned by bounds-checked element access.
var ErrIndexOutOfRange = errors.New("linalg: index out of range")

// At is a bounds-checked element read on a dense matrix. gonum panics on
// out-of-range access; this variant reports it as an error instead so
// callers on hot paths can fail cleanly.
func At(m *mat.Dense, r, c int) (float64, error) {
	rows, cols := m.Dims()
	if r < 0 || r >= rows || c < 0 || c >= cols {
		return 0, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrIndexOutOfRange, r, c, rows, cols)
	}
	return m.At(r, c), nil
}

// Det2 returns the determinant of the 2x2 matrix [[a, b], [c, d]].
func Det2(a, b, c, d float64) float64 {
	return a*d - b*c
}

// Det3 returns the determinant of a 3x3 matrix given row-major.
func Det3(m [9]float64) float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// Det4 returns the determinant of a 4x4 matrix given row-major, expanded
// along the first row over 3x3 cofactors.
func Det4(m [16]float64) float64 {
	c0 := Det3([9]float64{m[5], m[6], m[7], m[9], m[10], m[11], m[13], m[14], m[15]})
	c1 := Det3([9]float64{m[4], m[6], m[7], m[8], m[10], m[11], m[12], m[14], m[15]})
	c2 := Det3([9]float64{m[4], m[5], m[7], m[8], m[9], m[11], m[12], m[13], m[15]})
	c3 := Det3([9]float64{m[4], m[5], m[6], m[8], m[9], m[10], m[12], m[13], m[14]})
	return m[0]*c0 - m[1]*c1 + m[2]*c2 - m[3]*c3
}

// Det returns the determinant of a square matrix. Sizes 2 to 4 use the
// closed forms; larger matrices use LU decomposition with partial
// pivoting. A pivot below machine epsilon makes the result exactly zero.
func Det(m *mat.Dense) (float64, error) {
	rows, cols := m.Dims()
	if rows != cols {
		return 0, fmt.Errorf("linalg: determinant of non-square %dx%d matrix", rows, cols)
	}
	switch rows {
	case 0:
		return 0, fmt.Errorf("linalg: determinant of empty matrix")
	case 1:
		return m.At(0, 0), nil
	case 2:
		return Det2(m.At(0, 0), m.At(0, 1), m.At(1, 0), m.At(1, 1)), nil
	case 3:
		return Det3([9]float64{
			m.At(0, 0), m.At(0, 1), m.At(0, 2),
			m.At(1, 0), m.At(1, 1), m.At(1, 2),
			m.At(2, 0), m.At(2, 1), m.At(2, 2),
		}), nil
	case 4:
		return Det4([16]float64{
			m.At(0, 0), m.At(0, 1), m.At(0, 2), m.At(0, 3),
			m.At(1, 0), m.At(1, 1), m.At(1, 2), m.At(1, 3),
			m.At(2, 0), m.At(2, 1), m.At(2, 2), m.At(2, 3),
			m.At(3, 0), m.At(3, 1), m.At(3, 2), m.At(3, 3),
		}), nil
	}
	return detLU(m), nil
}

// detLU computes a determinant by Gaussian elimination with partial
// pivoting on a scratch copy.
func detLU(m *mat.Dense) float64 {
	n, _ := m.Dims()
	a := mat.DenseCopyOf(m)
	det := 1.0

	for k := 0; k < n; k++ {
		// Pick the pivot row.
		pivot := k
		maxAbs := abs(a.At(k, k))
		for r := k + 1; r < n; r++ {
			if v := abs(a.At(r, k)); v > maxAbs {
				maxAbs = v
				pivot = r
			}
		}
		if maxAbs < Eps {
			return 0
		}
		if pivot != k {
			swapRows(a, pivot, k)
			det = -det
		}
		det *= a.At(k, k)
		for r := k + 1; r < n; r++ {
			f := a.At(r, k) / a.At(k, k)
			for c := k; c < n; c++ {
				a.Set(r, c, a.At(r, c)-f*a.At(k, c))
			}
		}
	}
	return det
}

// Inverse computes the inverse of a square matrix. Sizes 2 to 4 use
// the adjugate closed forms; larger sizes defer to gonum. ErrSingular
// is returned instead of an undefined result.
func Inverse(m *mat.Dense) (*mat.Dense, error) {
	rows, cols := m.Dims()
	if rows != cols {
		return nil, fmt.Errorf("linalg: inverse of non-square %dx%d matrix", rows, cols)
	}

	switch rows {
	case 2:
		det := Det2(m.At(0, 0), m.At(0, 1), m.At(1, 0), m.At(1, 1))
		if abs(det) < Eps {
			return nil, ErrSingular
		}
		return mat.NewDense(2, 2, []float64{
			m.At(1, 1) / det, -m.At(0, 1) / det,
			-m.At(1, 0) / det, m.At(0, 0) / det,
		}), nil
	case 3:
		return inverse3(m)
	case 4:
		return inverse4(m)
	}

	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return &inv, nil
}

// inverse3 inverts a 3x3 matrix through its adjugate.
func inverse3(m *mat.Dense) (*mat.Dense, error) {
	a := [9]float64{
		m.At(0, 0), m.At(0, 1), m.At(0, 2),
		m.At(1, 0), m.At(1, 1), m.At(1, 2),
		m.At(2, 0), m.At(2, 1), m.At(2, 2),
	}
	det := Det3(a)
	if abs(det) < Eps {
		return nil, ErrSingular
	}
	adj := [9]float64{
		a[4]*a[8] - a[5]*a[7], a[2]*a[7] - a[1]*a[8], a[1]*a[5] - a[2]*a[4],
		a[5]*a[6] - a[3]*a[8], a[0]*a[8] - a[2]*a[6], a[2]*a[3] - a[0]*a[5],
		a[3]*a[7] - a[4]*a[6], a[1]*a[6] - a[0]*a[7], a[0]*a[4] - a[1]*a[3],
	}
	for i := range adj {
		adj[i] /= det
	}
	return mat.NewDense(3, 3, adj[:]), nil
}

// inverse4 inverts a 4x4 matrix through its adjugate: the transposed
// cofactor matrix over the closed-form determinant.
func inverse4(m *mat.Dense) (*mat.Dense, error) {
	var a [16]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			a[r*4+c] = m.At(r, c)
		}
	}
	det := Det4(a)
	if abs(det) < Eps {
		return nil, ErrSingular
	}

	inv := make([]float64, 16)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			minor := minor4(a, r, c)
			cof := Det3(minor)
			if (r+c)%2 != 0 {
				cof = -cof
			}
			// Adjugate transposes the cofactor matrix.
			inv[c*4+r] = cof / det
		}
	}
	return mat.NewDense(4, 4, inv), nil
}

// minor4 extracts the 3x3 minor of a row-major 4x4 matrix obtained by
// deleting the given row and column.
func minor4(a [16]float64, row, col int) [9]float64 {
	var out [9]float64
	i := 0
	for r := 0; r < 4; r++ {
		if r == row {
			continue
		}
		for c := 0; c < 4; c++ {
			if c == col {
				continue
			}
			out[i] = a[r*4+c]
			i++
		}
	}
	return out
}

func swapRows(a *mat.Dense, i, j int) {
	_, cols := a.Dims()
	for c := 0; c < cols; c++ {
		vi, vj := a.At(i, c), a.At(j, c)
		a.Set(i, c, vj)
		a.Set(j, c, vi)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
