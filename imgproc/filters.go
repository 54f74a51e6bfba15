package imgproc

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Normalize rescales raster values linearly into [Lower, Upper].
type Normalize struct {
	Lower, Upper float64
}

// NewNormalize builds a normalization into the given range.
func NewNormalize(lower, upper float64) (*Normalize, error) {
	if lower >= upper {
		return nil, fmt.Errorf("%w: normalize range [%g, %g]", ErrInvalidArgument, lower, upper)
	}
	return &Normalize{Lower: lower, Upper: upper}, nil
}

// ProcessType returns TypeNormalize.
func (p *Normalize) ProcessType() Type { return TypeNormalize }

// Run rescales in into [Lower, Upper].
func (p *Normalize) Run(in gocv.Mat, out *gocv.Mat) error {
	if err := checkInput(in); err != nil {
		return err
	}
	gocv.Normalize(in, out, p.Lower, p.Upper, gocv.NormMinMax)
	return nil
}

// GaussianBlur smooths with a Gaussian kernel.
type GaussianBlur struct {
	KernelSize     int
	SigmaX, SigmaY float64
	Border         gocv.BorderType
}

// NewGaussianBlur builds a Gaussian smoothing step. The kernel size must
// be odd and positive.
func NewGaussianBlur(kernelSize int, sigmaX, sigmaY float64) (*GaussianBlur, error) {
	if kernelSize <= 0 || kernelSize%2 == 0 {
		return nil, fmt.Errorf("%w: gaussian kernel size %d", ErrInvalidArgument, kernelSize)
	}
	return &GaussianBlur{
		KernelSize: kernelSize,
		SigmaX:     sigmaX,
		SigmaY:     sigmaY,
		Border:     gocv.BorderDefault,
	}, nil
}

// ProcessType returns TypeGaussianBlur.
func (p *GaussianBlur) ProcessType() Type { return TypeGaussianBlur }

// Run applies the blur.
func (p *GaussianBlur) Run(in gocv.Mat, out *gocv.Mat) error {
	if err := checkInput(in); err != nil {
		return err
	}
	gocv.GaussianBlur(in, out, image.Pt(p.KernelSize, p.KernelSize), p.SigmaX, p.SigmaY, p.Border)
	return nil
}

// BilateralFilter smooths while preserving edges.
type BilateralFilter struct {
	Diameter   int
	SigmaColor float64
	SigmaSpace float64
}

// NewBilateralFilter builds an edge-preserving smoothing step.
func NewBilateralFilter(diameter int, sigmaColor, sigmaSpace float64) (*BilateralFilter, error) {
	if diameter <= 0 {
		return nil, fmt.Errorf("%w: bilateral diameter %d", ErrInvalidArgument, diameter)
	}
	return &BilateralFilter{Diameter: diameter, SigmaColor: sigmaColor, SigmaSpace: sigmaSpace}, nil
}

// ProcessType returns TypeBilateralFilter.
func (p *BilateralFilter) ProcessType() Type { return TypeBilateralFilter }

// Run applies the filter. The OpenCV kernel cannot work in place, so an
// aliased output goes through an internal buffer.
func (p *BilateralFilter) Run(in gocv.Mat, out *gocv.Mat) error {
	if err := checkInput(in); err != nil {
		return err
	}
	buf := gocv.NewMat()
	defer buf.Close()
	gocv.BilateralFilter(in, &buf, p.Diameter, p.SigmaColor, p.SigmaSpace)
	buf.CopyTo(out)
	return nil
}

// MedianBlur smooths with a median kernel.
type MedianBlur struct {
	KernelSize int
}

// NewMedianBlur builds a median smoothing step. The kernel size must be
// odd and greater than 1.
func NewMedianBlur(kernelSize int) (*MedianBlur, error) {
	if kernelSize <= 1 || kernelSize%2 == 0 {
		return nil, fmt.Errorf("%w: median kernel size %d", ErrInvalidArgument, kernelSize)
	}
	return &MedianBlur{KernelSize: kernelSize}, nil
}

// ProcessType returns TypeMedianBlur.
func (p *MedianBlur) ProcessType() Type { return TypeMedianBlur }

// Run applies the blur.
func (p *MedianBlur) Run(in gocv.Mat, out *gocv.Mat) error {
	if err := checkInput(in); err != nil {
		return err
	}
	gocv.MedianBlur(in, out, p.KernelSize)
	return nil
}

// Sobel computes image derivatives with the Sobel operator.
type Sobel struct {
	Dx, Dy     int
	KernelSize int
	Scale      float64
	Delta      float64
	Depth      gocv.MatType
	Border     gocv.BorderType
}

// NewSobel builds a Sobel derivative step.
func NewSobel(dx, dy, kernelSize int, scale, delta float64, depth gocv.MatType) (*Sobel, error) {
	if dx < 0 || dy < 0 || dx+dy == 0 {
		return nil, fmt.Errorf("%w: sobel orders dx=%d dy=%d", ErrInvalidArgument, dx, dy)
	}
	if kernelSize != 1 && kernelSize != 3 && kernelSize != 5 && kernelSize != 7 {
		return nil, fmt.Errorf("%w: sobel kernel size %d", ErrInvalidArgument, kernelSize)
	}
	return &Sobel{
		Dx: dx, Dy: dy,
		KernelSize: kernelSize,
		Scale:      scale,
		Delta:      delta,
		Depth:      depth,
		Border:     gocv.BorderDefault,
	}, nil
}

// ProcessType returns TypeSobel.
func (p *Sobel) ProcessType() Type { return TypeSobel }

// Run computes the derivative.
func (p *Sobel) Run(in gocv.Mat, out *gocv.Mat) error {
	if err := checkInput(in); err != nil {
		return err
	}
	gocv.Sobel(in, out, p.Depth, p.Dx, p.Dy, p.KernelSize, p.Scale, p.Delta, p.Border)
	return nil
}

// Canny runs the Canny edge detector. Zero thresholds derive the
// hysteresis band from the mean and standard deviation of the input.
//
// Aperture is validated and recorded, but the gocv Canny binding
// exposes no aperture parameter and always runs with the OpenCV
// default of 3; a non-default aperture is therefore rejected at
// construction rather than silently ignored.
type Canny struct {
	Threshold1 float64
	Threshold2 float64
	Aperture   int
}

// NewCanny builds an edge-detection step. Thresholds of zero select
// automatic derivation from image statistics. Only aperture 3 is
// accepted (see the type comment).
func NewCanny(threshold1, threshold2 float64, aperture int) (*Canny, error) {
	if threshold1 < 0 || threshold2 < 0 {
		return nil, fmt.Errorf("%w: canny thresholds (%g, %g)", ErrInvalidArgument, threshold1, threshold2)
	}
	if aperture != 3 {
		return nil, fmt.Errorf("%w: canny aperture %d (the backing binding supports only 3)", ErrInvalidArgument, aperture)
	}
	return &Canny{Threshold1: threshold1, Threshold2: threshold2, Aperture: aperture}, nil
}

// ProcessType returns TypeCanny.
func (p *Canny) ProcessType() Type { return TypeCanny }

// Run detects edges.
func (p *Canny) Run(in gocv.Mat, out *gocv.Mat) error {
	if err := checkInput(in); err != nil {
		return err
	}
	t1, t2 := p.Threshold1, p.Threshold2
	if t1 == 0 && t2 == 0 {
		m, s := meanStdDev(in)
		t1 = m - s
		if t1 < 0 {
			t1 = 0
		}
		t2 = m + s
	}
	gocv.Canny(in, out, float32(t1), float32(t2))
	return nil
}

// meanStdDev returns the mean and standard deviation of the first
// channel of a raster.
func meanStdDev(m gocv.Mat) (mean, stddev float64) {
	meanMat := gocv.NewMat()
	stdMat := gocv.NewMat()
	defer meanMat.Close()
	defer stdMat.Close()
	gocv.MeanStdDev(m, &meanMat, &stdMat)
	return meanMat.GetDoubleAt(0, 0), stdMat.GetDoubleAt(0, 0)
}
