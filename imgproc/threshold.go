package imgproc

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Binarize thresholds a raster to two levels. With both Threshold and
// MaxValue zero the threshold is derived as mean + stddev over the full
// frame and the high level is 255.
type Binarize struct {
	Threshold float64
	MaxValue  float64
	Invert    bool
}

// NewBinarize builds a binarization step.
func NewBinarize(threshold, maxValue float64, invert bool) (*Binarize, error) {
	if threshold < 0 || maxValue < 0 {
		return nil, fmt.Errorf("%w: binarize threshold=%g max=%g", ErrInvalidArgument, threshold, maxValue)
	}
	return &Binarize{Threshold: threshold, MaxValue: maxValue, Invert: invert}, nil
}

// ProcessType returns TypeBinarize.
func (p *Binarize) ProcessType() Type { return TypeBinarize }

// Run thresholds the raster. Binarizing an already binary raster is
// idempotent.
func (p *Binarize) Run(in gocv.Mat, out *gocv.Mat) error {
	if err := checkInput(in); err != nil {
		return err
	}

	thresh, maxVal := p.Threshold, p.MaxValue
	if thresh == 0 && maxVal == 0 {
		m, s := meanStdDev(in)
		thresh = m + s
		maxVal = 255
	}

	typ := gocv.ThresholdBinary
	if p.Invert {
		typ = gocv.ThresholdBinaryInv
	}
	gocv.Threshold(in, out, float32(thresh), float32(maxVal), typ)
	return nil
}

// EqualizeHistogram equalizes the histogram of a single-channel 8-bit
// raster.
type EqualizeHistogram struct{}

// NewEqualizeHistogram builds a histogram-equalization step.
func NewEqualizeHistogram() *EqualizeHistogram {
	return &EqualizeHistogram{}
}

// ProcessType returns TypeEqualizeHistogram.
func (p *EqualizeHistogram) ProcessType() Type { return TypeEqualizeHistogram }

// Run equalizes the raster. Inputs that are not single-channel 8-bit
// are rejected.
func (p *EqualizeHistogram) Run(in gocv.Mat, out *gocv.Mat) error {
	if err := checkInput(in); err != nil {
		return err
	}
	if in.Channels() != 1 || in.Type() != gocv.MatTypeCV8U {
		return fmt.Errorf("%w: equalize needs single-channel 8-bit input, got type %d with %d channels",
			ErrInvalidArgument, in.Type(), in.Channels())
	}
	gocv.EqualizeHist(in, out)
	return nil
}
