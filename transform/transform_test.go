package transform

import (
	"errors"
	"math"
	"testing"

	"github.com/aeroinspect/linetrack/geom"
	"github.com/aeroinspect/linetrack/internal/testutil"
)

func pts(coords ...float64) []geom.PointF {
	out := make([]geom.PointF, len(coords)/2)
	for i := range out {
		out[i] = geom.PointF{X: coords[2*i], Y: coords[2*i+1]}
	}
	return out
}

func TestAffineIdentityRoundTrip(t *testing.T) {
	src := pts(0, 0, 1, 0, 0, 1, 1, 1)

	a := NewAffine(0, 0, 1, 1, 0)
	res, err := a.Compute(src, src)
	if err != nil {
		t.Fatal(err)
	}

	testutil.AssertAlmostEqual(t, res.RMSE, 0, 1e-10, "identity RMSE")
	testutil.AssertAlmostEqual(t, a.Tx(), 0, 1e-10, "tx")
	testutil.AssertAlmostEqual(t, a.Ty(), 0, 1e-10, "ty")
	testutil.AssertAlmostEqual(t, a.ScaleX(), 1, 1e-10, "scaleX")
	testutil.AssertAlmostEqual(t, a.ScaleY(), 1, 1e-10, "scaleY")
	testutil.AssertAlmostEqual(t, a.Rotation(), 0, 1e-10, "rotation")

	params := a.Parameters()
	want := []float64{1, 0, 0, 0, 1, 0} // a b tx / c d ty rows
	flat := []float64{
		params.At(0, 0), params.At(0, 1), params.At(0, 2),
		params.At(1, 0), params.At(1, 1), params.At(1, 2),
	}
	wantFlat := []float64{want[0], want[1], want[2], want[3], want[4], want[5]}
	for i := range flat {
		testutil.AssertAlmostEqual(t, flat[i], wantFlat[i], 1e-10, "parameters")
	}
}

func TestAffinePureRotation90(t *testing.T) {
	src := pts(1, 0, 0, 1, -1, 0, 0, -1)
	dst := pts(0, 1, -1, 0, 0, -1, 1, 0)

	a := NewAffine(0, 0, 1, 1, 0)
	if _, err := a.Compute(src, dst); err != nil {
		t.Fatal(err)
	}

	testutil.AssertAlmostEqual(t, a.Rotation(), math.Pi/2, 1e-9, "rotation")
	testutil.AssertAlmostEqual(t, a.ScaleX(), 1, 1e-9, "scaleX")
	testutil.AssertAlmostEqual(t, a.ScaleY(), 1, 1e-9, "scaleY")
}

func TestProjectiveSquareToQuadrilateral(t *testing.T) {
	src := pts(0, 0, 1, 0, 1, 1, 0, 1)
	dst := pts(0, 0, 2, 0, 2.5, 2, 0, 2)

	p := NewProjective()
	res, err := p.Compute(src, dst)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertAlmostEqual(t, res.RMSE, 0, 1e-9, "exact fit RMSE")

	// The interior point maps per the 8-parameter formula.
	in := geom.PointF{X: 0.5, Y: 0.5}
	out, err := p.Apply(in, Direct)
	if err != nil {
		t.Fatal(err)
	}
	c := p.Coefficients()
	w := c[6]*in.X + c[7]*in.Y + 1
	wantX := (c[0]*in.X + c[1]*in.Y + c[2]) / w
	wantY := (c[3]*in.X + c[4]*in.Y + c[5]) / w
	testutil.AssertAlmostEqual(t, out.X, wantX, 1e-12, "forward x")
	testutil.AssertAlmostEqual(t, out.Y, wantY, 1e-12, "forward y")

	// And the inverse maps it back.
	back, err := p.Apply(out, Inverse)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertAlmostEqual(t, back.X, in.X, 1e-9, "inverse x")
	testutil.AssertAlmostEqual(t, back.Y, in.Y, 1e-9, "inverse y")
}

func TestHelmertRecoversParameters(t *testing.T) {
	want := NewHelmert2D(12, -7, 1.5, 0.3)
	src := pts(0, 0, 10, 0, 10, 10, 0, 10, 5, 3)
	dst, err := want.ApplySlice(src, Direct)
	if err != nil {
		t.Fatal(err)
	}

	h := NewHelmert2D(0, 0, 1, 0)
	res, err := h.Compute(src, dst)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertAlmostEqual(t, res.RMSE, 0, 1e-9, "noiseless RMSE")
	testutil.AssertAlmostEqual(t, h.Tx(), 12, 1e-9, "tx")
	testutil.AssertAlmostEqual(t, h.Ty(), -7, 1e-9, "ty")
	testutil.AssertAlmostEqual(t, h.Scale(), 1.5, 1e-9, "scale")
	testutil.AssertAlmostEqual(t, h.Rotation(), 0.3, 1e-9, "rotation")
}

func TestInverseRoundTripAllTransforms(t *testing.T) {
	square := pts(0, 0, 10, 0, 10, 10, 0, 10)

	transforms := []struct {
		name string
		trf  Transform
	}{
		{"translation", NewTranslation(5, -3)},
		{"helmert", NewHelmert2D(2, 3, 1.2, 0.4)},
		{"affine", NewAffine(1, 2, 1.5, 0.8, 0.25)},
		{"projective", func() Transform {
			p := NewProjective()
			dst := pts(1, 1, 12, 0, 13, 9, -1, 11)
			if _, err := p.Compute(square, dst); err != nil {
				t.Fatal(err)
			}
			return p
		}()},
	}

	probe := pts(0.5, 0.5, 3, 7, -2, 4, 100, -50)
	for _, tc := range transforms {
		for _, p := range probe {
			fwd, err := tc.trf.Apply(p, Direct)
			if err != nil {
				t.Fatalf("%s forward: %v", tc.name, err)
			}
			back, err := tc.trf.Apply(fwd, Inverse)
			if err != nil {
				t.Fatalf("%s inverse: %v", tc.name, err)
			}
			scale := 1e-6 * math.Max(1, p.Norm())
			if p.Dist(back) > scale {
				t.Errorf("%s: round trip %v → %v → %v", tc.name, p, fwd, back)
			}
		}
	}
}

func TestComputeErrorConditions(t *testing.T) {
	a := NewAffine(0, 0, 1, 1, 0)

	_, err := a.Compute(pts(0, 0, 1, 1), pts(0, 0, 1, 1))
	if !errors.Is(err, ErrInsufficientPoints) {
		t.Errorf("short input: err = %v, want ErrInsufficientPoints", err)
	}

	_, err = a.Compute(pts(0, 0, 1, 1, 2, 2), pts(0, 0, 1, 1))
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("size mismatch: err = %v, want ErrSizeMismatch", err)
	}
}

func TestComputeFailureKeepsState(t *testing.T) {
	h := NewHelmert2D(9, 8, 2, 0.5)
	if _, err := h.Compute(pts(0, 0), pts(0, 0)); err == nil {
		t.Fatal("expected failure")
	}
	testutil.AssertAlmostEqual(t, h.Tx(), 9, 0, "tx preserved")
	testutil.AssertAlmostEqual(t, h.Scale(), 2, 0, "scale preserved")
}

func TestRMSEMatchesRecomputation(t *testing.T) {
	src := pts(0, 0, 10, 0, 10, 10, 0, 10, 5, 5, 2, 8)
	// Destination with a deliberate perturbation so the RMSE is nonzero.
	dst := pts(1, 1, 11.2, 0.9, 11, 11, 0.8, 11.1, 6, 5.9, 3.1, 9)

	a := NewAffine(0, 0, 1, 1, 0)
	res, err := a.Compute(src, dst)
	if err != nil {
		t.Fatal(err)
	}

	// Recompute from the published forward parameters.
	sum := 0.0
	for i := range src {
		out, _ := a.Apply(src[i], Direct)
		dx, dy := out.X-dst[i].X, out.Y-dst[i].Y
		sum += dx*dx + dy*dy
	}
	want := math.Sqrt(sum / float64(2*(len(src)-a.MinimumPoints())))
	testutil.AssertAlmostEqual(t, res.RMSE, want, 1e-12, "RMSE recomputation")

	if len(res.Residuals) != len(src) {
		t.Errorf("residual count %d, want %d", len(res.Residuals), len(src))
	}
}

func TestMinimumPointsExactFit(t *testing.T) {
	cases := []struct {
		name string
		trf  Transform
		n    int
	}{
		{"helmert", NewHelmert2D(0, 0, 1, 0), 2},
		{"affine", NewAffine(0, 0, 1, 1, 0), 3},
		{"projective", NewProjective(), 4},
	}
	corners := pts(0, 0, 10, 0, 10, 10, 0, 10)
	shifted := pts(1, 2, 11, 2, 11, 12, 1, 12)

	for _, c := range cases {
		if got := c.trf.MinimumPoints(); got != c.n {
			t.Errorf("%s: MinimumPoints = %d, want %d", c.name, got, c.n)
		}
		res, err := c.trf.Compute(corners[:c.n], shifted[:c.n])
		if err != nil {
			t.Fatalf("%s exact fit: %v", c.name, err)
		}
		testutil.AssertAlmostEqual(t, res.RMSE, 0, 1e-9, c.name+" exact-fit RMSE")
	}
}

func TestIsNull(t *testing.T) {
	if !NewTranslation(0, 0).IsNull() {
		t.Error("zero translation not null")
	}
	if NewTranslation(1, 0).IsNull() {
		t.Error("unit translation null")
	}
	if !NewAffine(0, 0, 1, 1, 0).IsNull() {
		t.Error("identity affine not null")
	}
	if !NewProjective().IsNull() {
		t.Error("identity projective not null")
	}
}

func TestChain(t *testing.T) {
	c := NewChain(NewTranslation(5, 0), NewHelmert2D(0, 0, 2, 0))

	if _, err := c.Compute(pts(0, 0), pts(0, 0)); !errors.Is(err, ErrNotApplicable) {
		t.Errorf("chain compute: err = %v, want ErrNotApplicable", err)
	}

	// (1, 1) → translate → (6, 1) → scale ×2 → (12, 2).
	out, err := c.Apply(geom.PointF{X: 1, Y: 1}, Direct)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertAlmostEqual(t, out.X, 12, 1e-12, "chain x")
	testutil.AssertAlmostEqual(t, out.Y, 2, 1e-12, "chain y")

	back, err := c.Apply(out, Inverse)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertAlmostEqual(t, back.X, 1, 1e-12, "chain inverse x")
	testutil.AssertAlmostEqual(t, back.Y, 1, 1e-12, "chain inverse y")
}

func TestApplyParallelMatchesSequential(t *testing.T) {
	a := NewAffine(3, -2, 1.1, 0.9, 0.2)

	in := make([]geom.PointF, 1000)
	for i := range in {
		in[i] = geom.PointF{X: float64(i), Y: float64(i % 37)}
	}

	seq, err := a.ApplySlice(in, Direct)
	if err != nil {
		t.Fatal(err)
	}
	par, err := ApplyParallel(a, in, Direct)
	if err != nil {
		t.Fatal(err)
	}
	for i := range seq {
		if seq[i] != par[i] {
			t.Fatalf("index %d: sequential %v, parallel %v", i, seq[i], par[i])
		}
	}
}

func TestApplyGeometry(t *testing.T) {
	trf := NewTranslation(10, 20)

	seg, err := ApplySegment(trf, geom.SegmentF{P1: geom.PointF{0, 0}, P2: geom.PointF{5, 5}}, Direct)
	if err != nil {
		t.Fatal(err)
	}
	if seg.P1 != (geom.PointF{10, 20}) || seg.P2 != (geom.PointF{15, 25}) {
		t.Errorf("segment = %v", seg)
	}

	w, err := ApplyWindow(trf, geom.WindowF{P1: geom.PointF{0, 0}, P2: geom.PointF{4, 4}}, Direct)
	if err != nil {
		t.Fatal(err)
	}
	if w.P1 != (geom.PointF{10, 20}) || w.P2 != (geom.PointF{14, 24}) {
		t.Errorf("window = %v", w)
	}

	poly, err := ApplyPolygon(trf, geom.PolygonF{Vertices: []geom.PointF{{0, 0}, {1, 0}, {0, 1}}}, Direct)
	if err != nil {
		t.Fatal(err)
	}
	if poly.Vertices[2] != (geom.PointF{10, 21}) {
		t.Errorf("polygon vertex = %v", poly.Vertices[2])
	}
}

func TestNonInvertibleAffine(t *testing.T) {
	// Zero scale along X collapses the plane; inverse must fail
	// explicitly.
	a := NewAffine(0, 0, 0, 1, 0)
	if _, err := a.Apply(geom.PointF{X: 1, Y: 1}, Inverse); !errors.Is(err, ErrNoInverse) {
		t.Errorf("inverse of singular affine: err = %v, want ErrNoInverse", err)
	}
}
