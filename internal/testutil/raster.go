package testutil

import (
	"testing"

	"gocv.io/x/gocv"
)

// ImageSimilarity compares two rasters pixel by pixel with a per-channel
// tolerance and returns the matching ratio in [0, 1].
func ImageSimilarity(a, b *gocv.Mat, pixelTolerance int) float64 {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() || a.Channels() != b.Channels() {
		return 0.0
	}

	total := a.Rows() * a.Cols()
	matching := 0
	for y := 0; y < a.Rows(); y++ {
		for x := 0; x < a.Cols(); x++ {
			pa := a.GetVecbAt(y, x)
			pb := b.GetVecbAt(y, x)
			ok := true
			for c := 0; c < a.Channels(); c++ {
				diff := int(pa[c]) - int(pb[c])
				if diff < 0 {
					diff = -diff
				}
				if diff > pixelTolerance {
					ok = false
					break
				}
			}
			if ok {
				matching++
			}
		}
	}
	return float64(matching) / float64(total)
}

// AssertRastersSimilar fails the test when two rasters differ in more
// than (1 - similarity) of their pixels.
func AssertRastersSimilar(t *testing.T, got, want *gocv.Mat, similarity float64) {
	t.Helper()
	if s := ImageSimilarity(got, want, 5); s < similarity {
		t.Errorf("raster similarity %.2f%% below threshold %.2f%%", s*100, similarity*100)
	}
}

// DrawSegmentRow paints a horizontal run of foreground pixels, a
// convenience for synthetic detector inputs.
func DrawSegmentRow(m *gocv.Mat, row, colFrom, colTo int) {
	for c := colFrom; c <= colTo; c++ {
		m.SetUCharAt(row, c, 255)
	}
}
