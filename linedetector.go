package linetrack

import (
	"fmt"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/aeroinspect/linetrack/geom"
)

// AngleRange restricts detected lines to orientations within
// [Center-Tolerance, Center+Tolerance] radians, modulo π.
type AngleRange struct {
	Center    float64
	Tolerance float64
}

// FullAngleRange accepts every orientation.
func FullAngleRange() AngleRange {
	return AngleRange{Center: 0, Tolerance: math.Pi}
}

// Contains reports whether a segment orientation angle passes the
// filter. Orientations are compared modulo π, so a line and its
// reversal always agree.
func (a AngleRange) Contains(angle float64) bool {
	diff := math.Mod(math.Abs(angle-a.Center), math.Pi)
	if diff > math.Pi/2 {
		diff = math.Pi - diff
	}
	return diff <= a.Tolerance
}

// LineDetector maps a preprocessed raster into 2D line segments. A
// detector is reusable across frames; Lines returns the result of the
// most recent run.
type LineDetector interface {
	// Run detects lines on the raster with the detector's configured
	// angle range.
	Run(raster gocv.Mat) error

	// RunWithAngle detects lines, keeping only those whose orientation
	// falls inside the given range.
	RunWithAngle(raster gocv.Mat, angles AngleRange) error

	// Lines returns the segments from the most recent run.
	Lines() []geom.SegmentI

	// DrawLines renders the detected segments onto the canvas. The
	// detector itself is not mutated.
	DrawLines(canvas *gocv.Mat, c color.RGBA, thickness int)
}

// detectorBase carries the pieces every strategy shares: the configured
// angle range, the detected segments, and the angular filter.
type detectorBase struct {
	angles AngleRange
	lines  []geom.SegmentI
}

// Lines returns the segments from the most recent run.
func (d *detectorBase) Lines() []geom.SegmentI {
	return d.lines
}

// DrawLines renders the detected segments onto the canvas.
func (d *detectorBase) DrawLines(canvas *gocv.Mat, c color.RGBA, thickness int) {
	drawSegments(canvas, d.lines, c, thickness)
}

// publish applies the angular filter and stores the surviving segments.
func (d *detectorBase) publish(segments []geom.SegmentI, angles AngleRange) {
	kept := segments[:0]
	for _, s := range segments {
		if angles.Contains(s.AngleOX()) {
			kept = append(kept, s)
		}
	}
	d.lines = kept
}

func checkRaster(raster gocv.Mat) error {
	if raster.Empty() {
		return ErrDataEmpty
	}
	return nil
}

// HoughDetector runs the classical Hough transform. Lines are returned
// clipped to the raster bounds.
type HoughDetector struct {
	detectorBase
	// Threshold is the accumulator vote count a line needs.
	Threshold int
}

// NewHoughDetector builds a classical Hough strategy.
func NewHoughDetector(threshold int) *HoughDetector {
	return &HoughDetector{
		detectorBase: detectorBase{angles: FullAngleRange()},
		Threshold:    threshold,
	}
}

// Run detects lines with the configured angle range.
func (d *HoughDetector) Run(raster gocv.Mat) error {
	return d.RunWithAngle(raster, d.angles)
}

// RunWithAngle detects lines within the given angular range.
func (d *HoughDetector) RunWithAngle(raster gocv.Mat, angles AngleRange) error {
	if err := checkRaster(raster); err != nil {
		return err
	}
	if d.Threshold <= 0 {
		return fmt.Errorf("%w: hough threshold %d", ErrInvalidArgument, d.Threshold)
	}

	found := gocv.NewMat()
	defer found.Close()
	gocv.HoughLines(raster, &found, 1, math.Pi/180, d.Threshold)

	bounds := rasterWindow(raster)
	var segments []geom.SegmentI
	for i := 0; i < found.Rows(); i++ {
		v := found.GetVecfAt(i, 0)
		rho, theta := float64(v[0]), float64(v[1])
		if s, ok := polarToSegment(rho, theta, bounds); ok {
			segments = append(segments, s)
		}
	}

	d.publish(segments, angles)
	return nil
}

// HoughPDetector runs the probabilistic Hough transform, which returns
// finite segments directly.
type HoughPDetector struct {
	detectorBase
	Threshold     int
	MinLineLength float64
	MaxLineGap    float64
}

// NewHoughPDetector builds a probabilistic Hough strategy.
func NewHoughPDetector(threshold int, minLineLength, maxLineGap float64) *HoughPDetector {
	return &HoughPDetector{
		detectorBase:  detectorBase{angles: FullAngleRange()},
		Threshold:     threshold,
		MinLineLength: minLineLength,
		MaxLineGap:    maxLineGap,
	}
}

// Run detects segments with the configured angle range.
func (d *HoughPDetector) Run(raster gocv.Mat) error {
	return d.RunWithAngle(raster, d.angles)
}

// RunWithAngle detects segments within the given angular range.
func (d *HoughPDetector) RunWithAngle(raster gocv.Mat, angles AngleRange) error {
	if err := checkRaster(raster); err != nil {
		return err
	}
	if d.Threshold <= 0 {
		return fmt.Errorf("%w: hough threshold %d", ErrInvalidArgument, d.Threshold)
	}

	found := gocv.NewMat()
	defer found.Close()
	gocv.HoughLinesPWithParams(raster, &found, 1, math.Pi/180, d.Threshold,
		float32(d.MinLineLength), float32(d.MaxLineGap))

	var segments []geom.SegmentI
	for i := 0; i < found.Rows(); i++ {
		v := found.GetVeciAt(i, 0)
		segments = append(segments, geom.SegmentI{
			P1: geom.PointI{X: int(v[0]), Y: int(v[1])},
			P2: geom.PointI{X: int(v[2]), Y: int(v[3])},
		})
	}

	d.publish(segments, angles)
	return nil
}

// rasterWindow returns the pixel bounds of a raster as a float window.
func rasterWindow(raster gocv.Mat) geom.WindowF {
	return geom.WindowF{
		P1: geom.PointF{X: 0, Y: 0},
		P2: geom.PointF{X: float64(raster.Cols() - 1), Y: float64(raster.Rows() - 1)},
	}
}

// polarToSegment converts a (rho, theta) Hough line into the segment
// covering its span across the raster bounds.
func polarToSegment(rho, theta float64, bounds geom.WindowF) (geom.SegmentI, bool) {
	a, b := math.Cos(theta), math.Sin(theta)
	x0, y0 := rho*a, rho*b
	ext := bounds.P2.X + bounds.P2.Y // longer than any chord

	s := geom.SegmentF{
		P1: geom.PointF{X: x0 - ext*b, Y: y0 + ext*a},
		P2: geom.PointF{X: x0 + ext*b, Y: y0 - ext*a},
	}
	clipped, ok := geom.ClipSegment(s, bounds)
	if !ok {
		return geom.SegmentI{}, false
	}
	return geom.SegmentI{
		P1: geom.RoundI(clipped.P1),
		P2: geom.RoundI(clipped.P2),
	}, true
}

// drawSegments renders segments onto a canvas.
func drawSegments(canvas *gocv.Mat, segments []geom.SegmentI, c color.RGBA, thickness int) {
	for _, s := range segments {
		gocv.Line(canvas,
			segPoint(s.P1),
			segPoint(s.P2),
			c, thickness)
	}
}
