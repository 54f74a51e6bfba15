package linetrack

import (
	"math"
	"sort"

	"gocv.io/x/gocv"

	"github.com/aeroinspect/linetrack/geom"
)

// LSD parameters for the standard refine mode.
const (
	lsdAngleTolerance = 22.5 * math.Pi / 180
	lsdMinRegionSize  = 20
	lsdGradThreshold  = 20.0
)

// LSDDetector finds segments by growing regions of pixels whose
// level-line orientation agrees, the approach of the Line Segment
// Detector. Seeds are visited in decreasing gradient magnitude; each
// region is reduced to the segment spanned by its principal axis.
type LSDDetector struct {
	detectorBase
}

// NewLSDDetector builds an LSD strategy in standard refine mode.
func NewLSDDetector() *LSDDetector {
	return &LSDDetector{
		detectorBase: detectorBase{angles: FullAngleRange()},
	}
}

// Run detects segments with the configured angle range.
func (d *LSDDetector) Run(raster gocv.Mat) error {
	return d.RunWithAngle(raster, d.angles)
}

// RunWithAngle detects segments within the given angular range.
func (d *LSDDetector) RunWithAngle(raster gocv.Mat, angles AngleRange) error {
	if err := checkRaster(raster); err != nil {
		return err
	}

	rows, cols := raster.Rows(), raster.Cols()

	gx := gocv.NewMat()
	gy := gocv.NewMat()
	defer gx.Close()
	defer gy.Close()
	gocv.Sobel(raster, &gx, gocv.MatTypeCV32F, 1, 0, 3, 1, 0, gocv.BorderDefault)
	gocv.Sobel(raster, &gy, gocv.MatTypeCV32F, 0, 1, 3, 1, 0, gocv.BorderDefault)

	magnitude := make([]float64, rows*cols)
	levelAngle := make([]float64, rows*cols)
	type seed struct {
		idx int
		mag float64
	}
	var seeds []seed
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			dx := float64(gx.GetFloatAt(r, c))
			dy := float64(gy.GetFloatAt(r, c))
			i := r*cols + c
			magnitude[i] = math.Hypot(dx, dy)
			// Level-line angle: perpendicular to the gradient.
			levelAngle[i] = math.Atan2(dx, -dy)
			if magnitude[i] >= lsdGradThreshold {
				seeds = append(seeds, seed{idx: i, mag: magnitude[i]})
			}
		}
	}
	sort.Slice(seeds, func(i, j int) bool { return seeds[i].mag > seeds[j].mag })

	used := make([]bool, rows*cols)
	var segments []geom.SegmentI

	for _, sd := range seeds {
		if used[sd.idx] {
			continue
		}
		region := growRegion(sd.idx, rows, cols, magnitude, levelAngle, used)
		if len(region) < lsdMinRegionSize {
			continue
		}
		if s, ok := regionToSegment(region, cols); ok {
			segments = append(segments, s)
		}
	}

	d.publish(segments, angles)
	return nil
}

// growRegion collects the 8-connected pixels around the seed whose
// level-line orientation stays within tolerance of the running region
// orientation.
func growRegion(seedIdx, rows, cols int, magnitude, levelAngle []float64, used []bool) []int {
	regionAngle := levelAngle[seedIdx]
	sumSin := math.Sin(regionAngle)
	sumCos := math.Cos(regionAngle)

	region := []int{seedIdx}
	used[seedIdx] = true

	for head := 0; head < len(region); head++ {
		idx := region[head]
		r, c := idx/cols, idx%cols
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				nr, nc := r+dr, c+dc
				if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
					continue
				}
				ni := nr*cols + nc
				if used[ni] || magnitude[ni] < lsdGradThreshold {
					continue
				}
				if angleDiff(levelAngle[ni], regionAngle) > lsdAngleTolerance {
					continue
				}
				used[ni] = true
				region = append(region, ni)
				sumSin += math.Sin(levelAngle[ni])
				sumCos += math.Cos(levelAngle[ni])
				regionAngle = math.Atan2(sumSin, sumCos)
			}
		}
	}
	return region
}

// regionToSegment fits the principal axis of a pixel region and returns
// the segment between the extreme projections onto it.
func regionToSegment(region []int, cols int) (geom.SegmentI, bool) {
	n := float64(len(region))
	var cx, cy float64
	for _, idx := range region {
		cx += float64(idx % cols)
		cy += float64(idx / cols)
	}
	cx /= n
	cy /= n

	var sxx, syy, sxy float64
	for _, idx := range region {
		dx := float64(idx%cols) - cx
		dy := float64(idx/cols) - cy
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}

	// Principal axis direction from the 2x2 covariance eigenvector.
	theta := 0.5 * math.Atan2(2*sxy, sxx-syy)
	ux, uy := math.Cos(theta), math.Sin(theta)

	tMin, tMax := math.Inf(1), math.Inf(-1)
	for _, idx := range region {
		t := (float64(idx%cols)-cx)*ux + (float64(idx/cols)-cy)*uy
		if t < tMin {
			tMin = t
		}
		if t > tMax {
			tMax = t
		}
	}
	if tMax-tMin < 1 {
		return geom.SegmentI{}, false
	}

	return geom.SegmentI{
		P1: geom.RoundI(geom.PointF{X: cx + tMin*ux, Y: cy + tMin*uy}),
		P2: geom.RoundI(geom.PointF{X: cx + tMax*ux, Y: cy + tMax*uy}),
	}, true
}

// angleDiff returns the absolute angular difference modulo π.
func angleDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), math.Pi)
	if d > math.Pi/2 {
		d = math.Pi - d
	}
	return d
}
