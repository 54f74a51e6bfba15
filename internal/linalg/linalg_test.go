package linalg

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestModule(t *testing.T) {
	if got := Module(3, 4); got != 5 {
		t.Errorf("Module(3,4) = %v, want 5", got)
	}
}

func TestAngleOX(t *testing.T) {
	cases := []struct {
		x, y, want float64
	}{
		{1, 0, 0},
		{0, 1, math.Pi / 2},
		{-1, 0, math.Pi},
		{1, 1, math.Pi / 4},
	}
	for _, c := range cases {
		if got := AngleOX(c.x, c.y); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("AngleOX(%v,%v) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestAzimut(t *testing.T) {
	// North is 0, east is π/2, west is 3π/2.
	cases := []struct {
		x, y, want float64
	}{
		{0, 1, 0},
		{1, 0, math.Pi / 2},
		{0, -1, math.Pi},
		{-1, 0, 3 * math.Pi / 2},
	}
	for _, c := range cases {
		if got := Azimut(c.x, c.y); math.Abs(got-c.want) > 1e-12 {
			t.Errorf("Azimut(%v,%v) = %v, want %v", c.x, c.y, got, c.want)
		}
		if got := Azimut(c.x, c.y); got < 0 || got >= 2*math.Pi {
			t.Errorf("Azimut(%v,%v) = %v outside [0, 2π)", c.x, c.y, got)
		}
	}
}

func TestCross3(t *testing.T) {
	got := Cross3([3]float64{1, 0, 0}, [3]float64{0, 1, 0})
	want := [3]float64{0, 0, 1}
	if got != want {
		t.Errorf("Cross3(x,y) = %v, want %v", got, want)
	}
}

func TestDetSpecializedSizes(t *testing.T) {
	cases := []struct {
		name string
		m    *mat.Dense
		want float64
	}{
		{"2x2", mat.NewDense(2, 2, []float64{1, 2, 3, 4}), -2},
		{"3x3", mat.NewDense(3, 3, []float64{2, 0, 0, 0, 3, 0, 0, 0, 4}), 24},
		{"4x4", mat.NewDense(4, 4, []float64{
			1, 0, 0, 0,
			0, 2, 0, 0,
			0, 0, 3, 0,
			0, 0, 0, 4,
		}), 24},
	}
	for _, c := range cases {
		got, err := Det(c.m)
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if math.Abs(got-c.want) > 1e-12 {
			t.Errorf("%s: det = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestDetSingularIsExactlyZero(t *testing.T) {
	m := mat.NewDense(5, 5, nil)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			m.Set(i, j, float64(i+1)) // rank 1
		}
	}
	got, err := Det(m)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("det of singular matrix = %v, want exactly 0", got)
	}
}

func TestDetGeneralLU(t *testing.T) {
	// Permutation-heavy matrix exercising pivoting (odd permutation).
	m := mat.NewDense(5, 5, []float64{
		0, 1, 0, 0, 0,
		1, 0, 0, 0, 0,
		0, 0, 0, 0, 1,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	})
	got, err := Det(m)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got+1) > 1e-12 {
		t.Errorf("det of permutation = %v, want -1", got)
	}
}

func TestInverse(t *testing.T) {
	for _, n := range []int{2, 3, 4} {
		m := mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					m.Set(i, j, 2)
				} else {
					m.Set(i, j, 0.5)
				}
			}
		}
		inv, err := Inverse(m)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		var prod mat.Dense
		prod.Mul(m, inv)
		eye := mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			eye.Set(i, i, 1)
		}
		if !mat.EqualApprox(&prod, eye, 1e-10) {
			t.Errorf("n=%d: M·M⁻¹ != I:\n%v", n, mat.Formatted(&prod))
		}
	}
}

func TestInverseSingular(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 2, 4})
	if _, err := Inverse(m); !errors.Is(err, ErrSingular) {
		t.Errorf("inverse of singular matrix: err = %v, want ErrSingular", err)
	}

	// Rank-deficient 4x4 exercises the closed-form path.
	m4 := mat.NewDense(4, 4, []float64{
		1, 2, 3, 4,
		2, 4, 6, 8,
		0, 1, 0, 1,
		1, 0, 1, 0,
	})
	if _, err := Inverse(m4); !errors.Is(err, ErrSingular) {
		t.Errorf("inverse of singular 4x4: err = %v, want ErrSingular", err)
	}
}

func TestAtBounds(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if v, err := At(m, 1, 1); err != nil || v != 4 {
		t.Errorf("At(1,1) = %v, %v", v, err)
	}
	if _, err := At(m, 2, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("At(2,0): err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestSolveExact(t *testing.T) {
	// 2x + y = 5; x - y = 1 → x = 2, y = 1.
	a := mat.NewDense(2, 2, []float64{2, 1, 1, -1})
	x, err := Solve(a, []float64{5, 1})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x[0]-2) > 1e-10 || math.Abs(x[1]-1) > 1e-10 {
		t.Errorf("solve = %v, want [2, 1]", x)
	}
}

func TestSolveLeastSquares(t *testing.T) {
	// Overdetermined fit of y = 2t + 1 with an outlier-free sample:
	// exact solution recoverable.
	ts := []float64{0, 1, 2, 3}
	a := mat.NewDense(4, 2, nil)
	b := make([]float64, 4)
	for i, tv := range ts {
		a.Set(i, 0, tv)
		a.Set(i, 1, 1)
		b[i] = 2*tv + 1
	}
	x, err := Solve(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x[0]-2) > 1e-10 || math.Abs(x[1]-1) > 1e-10 {
		t.Errorf("least squares = %v, want [2, 1]", x)
	}
}

func TestSolveRankDeficient(t *testing.T) {
	// Second column duplicates the first; pseudo-inverse semantics
	// split the energy rather than blowing up.
	a := mat.NewDense(3, 2, []float64{
		1, 1,
		1, 1,
		1, 1,
	})
	x, err := Solve(a, []float64{2, 2, 2})
	if err != nil {
		t.Fatal(err)
	}
	// Minimum-norm solution of x1 + x2 = 2 is (1, 1).
	if math.Abs(x[0]-1) > 1e-10 || math.Abs(x[1]-1) > 1e-10 {
		t.Errorf("rank-deficient solve = %v, want [1, 1]", x)
	}
}

func TestSolveSizeMismatch(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	if _, err := Solve(a, []float64{1}); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestDecomposeOrderAndSigns(t *testing.T) {
	a := mat.NewDense(4, 2, []float64{
		3, 0,
		0, 1,
		0, 0,
		0, 0,
	})
	d, err := Decompose(a)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Sigma) != 2 || d.Sigma[0] < d.Sigma[1] {
		t.Errorf("singular values not descending: %v", d.Sigma)
	}
	// Majority-non-negative sign convention on each U column.
	for j := 0; j < 2; j++ {
		neg := 0
		for i := 0; i < 4; i++ {
			if d.U.At(i, j) < 0 {
				neg++
			}
		}
		if neg*2 > 4 {
			t.Errorf("U column %d has a negative majority", j)
		}
	}
	// Reconstruction U Σ Vᵀ must give A back.
	sigma := mat.NewDense(2, 2, nil)
	sigma.Set(0, 0, d.Sigma[0])
	sigma.Set(1, 1, d.Sigma[1])
	var us, rec mat.Dense
	us.Mul(d.U, sigma)
	rec.Mul(&us, d.V.T())
	if !mat.EqualApprox(&rec, a, 1e-10) {
		t.Errorf("U Σ Vᵀ != A:\n%v", mat.Formatted(&rec))
	}
}

func TestRotationEuler(t *testing.T) {
	// Pure Z rotation by 90° maps x onto y.
	r := RotationEuler(0, 0, math.Pi/2)
	v := mat.NewDense(3, 1, []float64{1, 0, 0})
	var out mat.Dense
	out.Mul(r, v)
	if math.Abs(out.At(0, 0)) > 1e-12 || math.Abs(out.At(1, 0)-1) > 1e-12 {
		t.Errorf("Rz(90°)·x = (%v, %v, %v), want (0, 1, 0)",
			out.At(0, 0), out.At(1, 0), out.At(2, 0))
	}
}
