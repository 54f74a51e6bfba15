package imgproc

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// StructuringShape selects the structuring element geometry.
type StructuringShape int

const (
	ShapeRect StructuringShape = iota
	ShapeCross
	ShapeEllipse
)

func (s StructuringShape) morphShape() (gocv.MorphShape, error) {
	switch s {
	case ShapeRect:
		return gocv.MorphRect, nil
	case ShapeCross:
		return gocv.MorphCross, nil
	case ShapeEllipse:
		return gocv.MorphEllipse, nil
	}
	return 0, fmt.Errorf("%w: structuring shape %d", ErrInvalidArgument, s)
}

// MorphOptions configures a morphological operation.
//
// Anchor and BorderValue are part of the option surface, but the gocv
// morphology entry point used here (MorphologyExWithParams) exposes
// neither: the anchor is fixed at the element center and the constant
// border value at the OpenCV default. A non-center anchor or an
// explicit border value is therefore rejected at construction rather
// than silently ignored.
type MorphOptions struct {
	Shape      StructuringShape
	Size       int
	Anchor     image.Point
	Iterations int
	Border     gocv.BorderType

	// BorderValue is the constant fill used with a constant border
	// mode. Nil selects the backing library's default.
	BorderValue *float64
}

// anchorCenter is the element-center anchor, the only one the backing
// binding can express.
var anchorCenter = image.Pt(-1, -1)

// DefaultMorphOptions returns a 3x3 rectangular element anchored at its
// center with one iteration.
func DefaultMorphOptions() MorphOptions {
	return MorphOptions{
		Shape:      ShapeRect,
		Size:       3,
		Anchor:     anchorCenter,
		Iterations: 1,
		Border:     gocv.BorderConstant,
	}
}

func (o MorphOptions) validate() error {
	if o.Size <= 0 {
		return fmt.Errorf("%w: structuring element size %d", ErrInvalidArgument, o.Size)
	}
	if o.Iterations <= 0 {
		return fmt.Errorf("%w: iterations %d", ErrInvalidArgument, o.Iterations)
	}
	if _, err := o.Shape.morphShape(); err != nil {
		return err
	}
	// The zero value counts as unset and maps to the center anchor.
	if o.Anchor != anchorCenter && o.Anchor != (image.Point{}) {
		return fmt.Errorf("%w: anchor %v (the backing binding supports only the element center)", ErrInvalidArgument, o.Anchor)
	}
	if o.BorderValue != nil {
		return fmt.Errorf("%w: explicit border value (the backing binding supports only the default)", ErrInvalidArgument)
	}
	return nil
}

// morphProcess is the shared runner behind all morphological steps.
type morphProcess struct {
	typ  Type
	op   gocv.MorphType
	opts MorphOptions
}

func newMorphProcess(typ Type, op gocv.MorphType, opts MorphOptions) (*morphProcess, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &morphProcess{typ: typ, op: op, opts: opts}, nil
}

// ProcessType returns the tag of the concrete morphological operation.
func (p *morphProcess) ProcessType() Type { return p.typ }

// Run applies the operation with the configured structuring element.
func (p *morphProcess) Run(in gocv.Mat, out *gocv.Mat) error {
	if err := checkInput(in); err != nil {
		return err
	}
	shape, _ := p.opts.Shape.morphShape()
	kernel := gocv.GetStructuringElement(shape, image.Pt(p.opts.Size, p.opts.Size))
	defer kernel.Close()
	gocv.MorphologyExWithParams(in, out, p.op, kernel, p.opts.Iterations, p.opts.Border)
	return nil
}

// NewErode builds an erosion step.
func NewErode(opts MorphOptions) (Process, error) {
	return newMorphProcess(TypeErode, gocv.MorphErode, opts)
}

// NewDilate builds a dilation step.
func NewDilate(opts MorphOptions) (Process, error) {
	return newMorphProcess(TypeDilate, gocv.MorphDilate, opts)
}

// NewOpening builds an opening step (erosion then dilation).
func NewOpening(opts MorphOptions) (Process, error) {
	return newMorphProcess(TypeOpening, gocv.MorphOpen, opts)
}

// NewClosing builds a closing step (dilation then erosion).
func NewClosing(opts MorphOptions) (Process, error) {
	return newMorphProcess(TypeClosing, gocv.MorphClose, opts)
}

// NewGradient builds a morphological gradient step (dilation minus
// erosion, an edge image).
func NewGradient(opts MorphOptions) (Process, error) {
	return newMorphProcess(TypeGradient, gocv.MorphGradient, opts)
}

// NewTopHat builds a top-hat step (input minus its opening).
func NewTopHat(opts MorphOptions) (Process, error) {
	return newMorphProcess(TypeTopHat, gocv.MorphTophat, opts)
}

// NewBlackHat builds a black-hat step (closing minus input).
func NewBlackHat(opts MorphOptions) (Process, error) {
	return newMorphProcess(TypeBlackHat, gocv.MorphBlackhat, opts)
}
