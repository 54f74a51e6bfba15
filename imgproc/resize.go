package imgproc

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Resize rescales a raster. Exactly one sizing mode is active at a
// time: an absolute output size, or scale factors per axis.
type Resize struct {
	Width, Height  int
	ScaleX, ScaleY float64
	Interpolation  gocv.InterpolationFlags
}

// NewResizeAbsolute builds a resize to a fixed output size.
func NewResizeAbsolute(width, height int) (*Resize, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: resize to %dx%d", ErrInvalidArgument, width, height)
	}
	return &Resize{Width: width, Height: height, Interpolation: gocv.InterpolationLinear}, nil
}

// NewResizeScale builds a resize by per-axis scale factors.
func NewResizeScale(scaleX, scaleY float64) (*Resize, error) {
	if scaleX <= 0 || scaleY <= 0 {
		return nil, fmt.Errorf("%w: resize scale (%g, %g)", ErrInvalidArgument, scaleX, scaleY)
	}
	return &Resize{ScaleX: scaleX, ScaleY: scaleY, Interpolation: gocv.InterpolationLinear}, nil
}

// ProcessType returns TypeResize.
func (p *Resize) ProcessType() Type { return TypeResize }

// Run rescales the raster. Resizing to the current size is the
// identity.
func (p *Resize) Run(in gocv.Mat, out *gocv.Mat) error {
	if err := checkInput(in); err != nil {
		return err
	}

	w, h := p.Width, p.Height
	if w == 0 && h == 0 {
		w = int(float64(in.Cols()) * p.ScaleX)
		h = int(float64(in.Rows()) * p.ScaleY)
	}
	if w == in.Cols() && h == in.Rows() {
		in.CopyTo(out)
		return nil
	}
	gocv.Resize(in, out, image.Pt(w, h), 0, 0, p.Interpolation)
	return nil
}
