// Package testutil holds the comparison helpers shared by the package
// tests: float and matrix tolerance checks and raster similarity.
package testutil

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// AlmostEqual reports whether two floats agree within tolerance.
func AlmostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// AssertAlmostEqual fails the test when two floats disagree beyond
// tolerance.
func AssertAlmostEqual(t *testing.T, got, want, tolerance float64, label string) {
	t.Helper()
	if !AlmostEqual(got, want, tolerance) {
		t.Errorf("%s: got %v, want %v (tolerance %v)", label, got, want, tolerance)
	}
}

// AssertMatrixAlmostEqual fails the test when two matrices disagree
// beyond tolerance in any element.
func AssertMatrixAlmostEqual(t *testing.T, got, want *mat.Dense, tolerance float64, label string) {
	t.Helper()
	gr, gc := got.Dims()
	wr, wc := want.Dims()
	if gr != wr || gc != wc {
		t.Errorf("%s: dimensions %dx%d, want %dx%d", label, gr, gc, wr, wc)
		return
	}
	if !mat.EqualApprox(got, want, tolerance) {
		t.Errorf("%s:\ngot:\n%v\nwant:\n%v", label, mat.Formatted(got), mat.Formatted(want))
	}
}
