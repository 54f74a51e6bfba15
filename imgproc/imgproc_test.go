package imgproc

import (
	"errors"
	"image"
	"testing"

	"gocv.io/x/gocv"
)

// grayMat builds a single-row 8-bit raster from explicit values.
func grayMat(t *testing.T, values []uint8) gocv.Mat {
	t.Helper()
	m := gocv.NewMatWithSize(1, len(values), gocv.MatTypeCV8U)
	for i, v := range values {
		m.SetUCharAt(0, i, v)
	}
	return m
}

func matValues(m gocv.Mat) []uint8 {
	out := make([]uint8, m.Cols())
	for i := range out {
		out[i] = m.GetUCharAt(0, i)
	}
	return out
}

func TestNormalizeThenBinarize(t *testing.T) {
	in := grayMat(t, []uint8{0, 10, 20, 30, 255})
	defer in.Close()

	normalize, err := NewNormalize(0, 255)
	if err != nil {
		t.Fatal(err)
	}
	binarize, err := NewBinarize(128, 255, false)
	if err != nil {
		t.Fatal(err)
	}

	out := gocv.NewMat()
	defer out.Close()
	pipeline := NewPipeline(normalize, binarize)
	if err := pipeline.Run(in, &out); err != nil {
		t.Fatal(err)
	}

	want := []uint8{0, 0, 0, 0, 255}
	got := matValues(out)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pipeline output = %v, want %v", got, want)
		}
	}
}

func TestBinarizeInverted(t *testing.T) {
	in := grayMat(t, []uint8{0, 10, 20, 30, 255})
	defer in.Close()

	binarize, err := NewBinarize(128, 255, true)
	if err != nil {
		t.Fatal(err)
	}

	out := gocv.NewMat()
	defer out.Close()
	if err := binarize.Run(in, &out); err != nil {
		t.Fatal(err)
	}

	want := []uint8{255, 255, 255, 255, 0}
	got := matValues(out)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("inverted output = %v, want %v", got, want)
		}
	}
}

func TestBinarizeIdempotentOnBinaryInput(t *testing.T) {
	in := grayMat(t, []uint8{0, 255, 255, 0, 255})
	defer in.Close()

	binarize, err := NewBinarize(128, 255, false)
	if err != nil {
		t.Fatal(err)
	}

	once := gocv.NewMat()
	twice := gocv.NewMat()
	defer once.Close()
	defer twice.Close()
	if err := binarize.Run(in, &once); err != nil {
		t.Fatal(err)
	}
	if err := binarize.Run(once, &twice); err != nil {
		t.Fatal(err)
	}

	a, b := matValues(once), matValues(twice)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("binarize not idempotent: %v vs %v", a, b)
		}
	}
}

func TestPipelineMatchesExplicitChaining(t *testing.T) {
	in := gocv.NewMatWithSize(16, 16, gocv.MatTypeCV8U)
	defer in.Close()
	for r := 0; r < 16; r++ {
		for c := 0; c < 16; c++ {
			in.SetUCharAt(r, c, uint8((r*16+c)%256))
		}
	}

	blur, _ := NewGaussianBlur(3, 0, 0)
	binarize, _ := NewBinarize(100, 255, false)

	piped := gocv.NewMat()
	defer piped.Close()
	if err := NewPipeline(blur, binarize).Run(in, &piped); err != nil {
		t.Fatal(err)
	}

	mid := gocv.NewMat()
	explicit := gocv.NewMat()
	defer mid.Close()
	defer explicit.Close()
	if err := blur.Run(in, &mid); err != nil {
		t.Fatal(err)
	}
	if err := binarize.Run(mid, &explicit); err != nil {
		t.Fatal(err)
	}

	for r := 0; r < 16; r++ {
		for c := 0; c < 16; c++ {
			if piped.GetUCharAt(r, c) != explicit.GetUCharAt(r, c) {
				t.Fatalf("pipeline diverges from explicit chaining at (%d,%d)", r, c)
			}
		}
	}
}

func TestPipelineAbortsOnFailure(t *testing.T) {
	in := grayMat(t, []uint8{1, 2, 3})
	defer in.Close()

	fail, _ := NewFunctionProcess(func(in gocv.Mat, out *gocv.Mat) error {
		return ErrProcess
	})
	called := false
	after, _ := NewFunctionProcess(func(in gocv.Mat, out *gocv.Mat) error {
		called = true
		in.CopyTo(out)
		return nil
	})

	out := gocv.NewMat()
	defer out.Close()
	err := NewPipeline(fail, after).Run(in, &out)
	if !errors.Is(err, ErrProcess) {
		t.Errorf("err = %v, want ErrProcess", err)
	}
	if called {
		t.Error("downstream op invoked after failure")
	}
}

func TestEmptyInputFailsEverywhere(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	normalize, _ := NewNormalize(0, 255)
	binarize, _ := NewBinarize(128, 255, false)
	blur, _ := NewGaussianBlur(3, 0, 0)
	median, _ := NewMedianBlur(3)
	sobel, _ := NewSobel(1, 0, 3, 1, 0, gocv.MatTypeCV16S)
	canny, _ := NewCanny(50, 150, 3)
	erode, _ := NewErode(DefaultMorphOptions())
	resize, _ := NewResizeAbsolute(10, 10)
	thin, _ := NewThinning(ZhangSuen)

	ops := []Process{
		normalize, binarize, NewEqualizeHistogram(), blur, median,
		sobel, canny, erode, resize, thin,
	}
	out := gocv.NewMat()
	defer out.Close()
	for _, op := range ops {
		if err := op.Run(empty, &out); !errors.Is(err, ErrDataEmpty) {
			t.Errorf("op %d: err = %v, want ErrDataEmpty", op.ProcessType(), err)
		}
	}

	if err := NewPipeline(normalize).Run(empty, &out); !errors.Is(err, ErrDataEmpty) {
		t.Errorf("pipeline on empty: err = %v", err)
	}
}

func TestConstructorValidation(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"normalize", func() error { _, err := NewNormalize(10, 5); return err }()},
		{"gaussian even kernel", func() error { _, err := NewGaussianBlur(4, 0, 0); return err }()},
		{"median kernel 1", func() error { _, err := NewMedianBlur(1); return err }()},
		{"bilateral diameter", func() error { _, err := NewBilateralFilter(0, 50, 50); return err }()},
		{"sobel orders", func() error { _, err := NewSobel(0, 0, 3, 1, 0, gocv.MatTypeCV16S); return err }()},
		{"canny aperture", func() error { _, err := NewCanny(10, 20, 4); return err }()},
		{"morph size", func() error {
			opts := DefaultMorphOptions()
			opts.Size = 0
			_, err := NewErode(opts)
			return err
		}()},
		{"morph off-center anchor", func() error {
			opts := DefaultMorphOptions()
			opts.Anchor = image.Pt(1, 2)
			_, err := NewDilate(opts)
			return err
		}()},
		{"morph border value", func() error {
			opts := DefaultMorphOptions()
			v := 255.0
			opts.BorderValue = &v
			_, err := NewClosing(opts)
			return err
		}()},
		{"resize zero", func() error { _, err := NewResizeAbsolute(0, 10); return err }()},
		{"function nil", func() error { _, err := NewFunctionProcess(nil); return err }()},
	}
	for _, c := range cases {
		if !errors.Is(c.err, ErrInvalidArgument) {
			t.Errorf("%s: err = %v, want ErrInvalidArgument", c.name, c.err)
		}
	}
}

func TestResizeIdentity(t *testing.T) {
	in := grayMat(t, []uint8{1, 2, 3, 4})
	defer in.Close()

	// Absolute resize to the current size is the identity.
	abs, _ := NewResizeAbsolute(4, 1)
	out := gocv.NewMat()
	defer out.Close()
	if err := abs.Run(in, &out); err != nil {
		t.Fatal(err)
	}
	got := matValues(out)
	for i, v := range []uint8{1, 2, 3, 4} {
		if got[i] != v {
			t.Fatalf("absolute identity resize altered values: %v", got)
		}
	}

	// Scale 1.0 likewise.
	scale, _ := NewResizeScale(1.0, 1.0)
	if err := scale.Run(in, &out); err != nil {
		t.Fatal(err)
	}
	got = matValues(out)
	for i, v := range []uint8{1, 2, 3, 4} {
		if got[i] != v {
			t.Fatalf("scale identity resize altered values: %v", got)
		}
	}
}

func TestResizeScales(t *testing.T) {
	in := gocv.NewMatWithSize(10, 20, gocv.MatTypeCV8U)
	defer in.Close()

	scale, _ := NewResizeScale(0.5, 0.5)
	out := gocv.NewMat()
	defer out.Close()
	if err := scale.Run(in, &out); err != nil {
		t.Fatal(err)
	}
	if out.Rows() != 5 || out.Cols() != 10 {
		t.Errorf("scaled to %dx%d, want 5x10", out.Rows(), out.Cols())
	}
}

func TestThinningReducesToThinLine(t *testing.T) {
	for _, alg := range []ThinningAlgorithm{ZhangSuen, GuoHall} {
		in := gocv.NewMatWithSize(20, 20, gocv.MatTypeCV8U)
		// A 4-pixel-thick horizontal bar.
		for r := 8; r < 12; r++ {
			for c := 2; c < 18; c++ {
				in.SetUCharAt(r, c, 255)
			}
		}

		thin, err := NewThinning(alg)
		if err != nil {
			t.Fatal(err)
		}
		out := gocv.NewMat()
		if err := thin.Run(in, &out); err != nil {
			t.Fatal(err)
		}

		// Every remaining column of the bar is at most one pixel tall.
		for c := 4; c < 16; c++ {
			count := 0
			for r := 0; r < 20; r++ {
				if out.GetUCharAt(r, c) != 0 {
					count++
				}
			}
			if count > 1 {
				t.Errorf("alg %d: column %d has %d foreground pixels", alg, c, count)
			}
		}
		// The skeleton is non-empty.
		nonzero := 0
		for r := 0; r < 20; r++ {
			for c := 0; c < 20; c++ {
				if out.GetUCharAt(r, c) != 0 {
					nonzero++
				}
			}
		}
		if nonzero == 0 {
			t.Errorf("alg %d: thinning erased everything", alg)
		}
		in.Close()
		out.Close()
	}
}

func TestEqualizeRejectsColorInput(t *testing.T) {
	in := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer in.Close()

	out := gocv.NewMat()
	defer out.Close()
	if err := NewEqualizeHistogram().Run(in, &out); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("color equalize: err = %v, want ErrInvalidArgument", err)
	}
}

func TestFunctionProcessRuns(t *testing.T) {
	in := grayMat(t, []uint8{5, 5})
	defer in.Close()

	fn, err := NewFunctionProcess(func(in gocv.Mat, out *gocv.Mat) error {
		in.CopyTo(out)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if fn.ProcessType() != TypeFunction {
		t.Errorf("type = %v", fn.ProcessType())
	}

	out := gocv.NewMat()
	defer out.Close()
	if err := fn.Run(in, &out); err != nil {
		t.Fatal(err)
	}
	if out.Cols() != 2 {
		t.Errorf("output cols = %d", out.Cols())
	}
}
