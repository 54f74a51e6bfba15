package linetrack

import (
	"math"
	"sort"

	"gocv.io/x/gocv"

	"github.com/aeroinspect/linetrack/geom"
)

// Accumulator gate of the fast Hough variant. Peaks below the weight
// fraction of the strongest cell are dropped, and at most maxCount
// peaks survive one run.
const (
	fastHoughMinWeight = 0.5
	fastHoughMaxCount  = 50
	fastHoughThetaBins = 180
)

// FastHoughDetector is a Hough variant without a tunable vote
// threshold: candidate lines are the local extrema of the vote
// accumulator, gated by an internal weight fraction.
type FastHoughDetector struct {
	detectorBase
}

// NewFastHoughDetector builds the fast Hough strategy.
func NewFastHoughDetector() *FastHoughDetector {
	return &FastHoughDetector{
		detectorBase: detectorBase{angles: FullAngleRange()},
	}
}

// Run detects lines with the configured angle range.
func (d *FastHoughDetector) Run(raster gocv.Mat) error {
	return d.RunWithAngle(raster, d.angles)
}

// RunWithAngle detects lines within the given angular range.
func (d *FastHoughDetector) RunWithAngle(raster gocv.Mat, angles AngleRange) error {
	if err := checkRaster(raster); err != nil {
		return err
	}

	rows, cols := raster.Rows(), raster.Cols()
	diag := int(math.Ceil(math.Hypot(float64(rows), float64(cols))))
	rhoBins := 2*diag + 1

	// Precomputed sin/cos per theta bin.
	sinT := make([]float64, fastHoughThetaBins)
	cosT := make([]float64, fastHoughThetaBins)
	for t := 0; t < fastHoughThetaBins; t++ {
		theta := float64(t) * math.Pi / fastHoughThetaBins
		sinT[t] = math.Sin(theta)
		cosT[t] = math.Cos(theta)
	}

	acc := make([][]int, fastHoughThetaBins)
	for t := range acc {
		acc[t] = make([]int, rhoBins)
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if raster.GetUCharAt(r, c) == 0 {
				continue
			}
			for t := 0; t < fastHoughThetaBins; t++ {
				rho := float64(c)*cosT[t] + float64(r)*sinT[t]
				acc[t][int(math.Round(rho))+diag]++
			}
		}
	}

	peaks := localExtrema(acc)
	bounds := rasterWindow(raster)
	var segments []geom.SegmentI
	for _, p := range peaks {
		rho := float64(p.rho - diag)
		theta := float64(p.theta) * math.Pi / fastHoughThetaBins
		if s, ok := polarToSegment(rho, theta, bounds); ok {
			segments = append(segments, s)
		}
	}

	d.publish(segments, angles)
	return nil
}

type houghPeak struct {
	theta, rho, votes int
}

// localExtrema finds accumulator cells that dominate their eight
// neighbors and pass the internal weight gate, strongest first. A cell
// must strictly exceed the three neighbors in the previous theta row and
// the one at the previous rho; ties with the other four neighbors are
// allowed, so a plateau of equal votes is not rejected outright.
func localExtrema(acc [][]int) []houghPeak {
	thetaBins := len(acc)
	rhoBins := len(acc[0])

	maxVotes := 0
	for t := 0; t < thetaBins; t++ {
		for r := 0; r < rhoBins; r++ {
			if acc[t][r] > maxVotes {
				maxVotes = acc[t][r]
			}
		}
	}
	if maxVotes == 0 {
		return nil
	}
	gate := int(math.Ceil(fastHoughMinWeight * float64(maxVotes)))

	var peaks []houghPeak
	for t := 0; t < thetaBins; t++ {
		for r := 1; r < rhoBins-1; r++ {
			v := acc[t][r]
			if v < gate {
				continue
			}
			// Theta wraps around; rho does not.
			tPrev := (t - 1 + thetaBins) % thetaBins
			tNext := (t + 1) % thetaBins
			if v <= acc[tPrev][r-1] || v <= acc[tPrev][r] || v <= acc[tPrev][r+1] ||
				v <= acc[t][r-1] || v < acc[t][r+1] ||
				v < acc[tNext][r-1] || v < acc[tNext][r] || v < acc[tNext][r+1] {
				continue
			}
			peaks = append(peaks, houghPeak{theta: t, rho: r, votes: v})
		}
	}

	sort.Slice(peaks, func(i, j int) bool { return peaks[i].votes > peaks[j].votes })
	if len(peaks) > fastHoughMaxCount {
		peaks = peaks[:fastHoughMaxCount]
	}
	return peaks
}
