package linetrack

import (
	"fmt"
	"math"
	"sort"

	"gocv.io/x/gocv"

	"github.com/aeroinspect/linetrack/internal/assign"
)

// Default factor of the min-distance match filter.
const defaultDistanceFactor = 3.0

// Default ratio of the Lowe ratio test.
const defaultLoweRatio = 0.8

// Matcher wraps a descriptor matching strategy: brute force under a
// norm, or FLANN. The matcher is reusable across frames; match lists
// are invalidated when either descriptor set is rebuilt.
type Matcher struct {
	bf    *gocv.BFMatcher
	flann *gocv.FlannBasedMatcher
}

// NewBFMatcher builds a brute-force matcher under the given norm
// (typically NormL1, NormL2 for float descriptors or NormHamming for
// binary ones).
func NewBFMatcher(norm gocv.NormType) *Matcher {
	bf := gocv.NewBFMatcherWithParams(norm, false)
	return &Matcher{bf: &bf}
}

// NewFlannMatcher builds a FLANN-based matcher.
func NewFlannMatcher() *Matcher {
	flann := gocv.NewFlannBasedMatcher()
	return &Matcher{flann: &flann}
}

// Close releases the underlying matcher.
func (m *Matcher) Close() error {
	if m.bf != nil {
		return m.bf.Close()
	}
	return m.flann.Close()
}

// KnnMatch returns the k best train candidates for every query row.
func (m *Matcher) KnnMatch(query, train gocv.Mat, k int) [][]gocv.DMatch {
	if m.bf != nil {
		return m.bf.KnnMatch(query, train, k)
	}
	return m.flann.KnnMatch(query, train, k)
}

// Match writes the unfiltered best-match list between two descriptor
// sets.
func (m *Matcher) Match(query, train gocv.Mat) []gocv.DMatch {
	knn := m.KnnMatch(query, train, 1)
	matches := make([]gocv.DMatch, 0, len(knn))
	for _, cands := range knn {
		if len(cands) > 0 {
			matches = append(matches, cands[0])
		}
	}
	return matches
}

// GoodMatchesTop keeps the best ratio·N matches by ascending distance.
func GoodMatchesTop(matches []gocv.DMatch, ratio float64) []gocv.DMatch {
	sorted := append([]gocv.DMatch(nil), matches...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Distance < sorted[j].Distance
	})
	n := int(ratio * float64(len(sorted)))
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// GoodMatchesDistance keeps matches within factor times the minimum
// observed distance. A non-positive factor selects the default of 3.
func GoodMatchesDistance(matches []gocv.DMatch, factor float64) []gocv.DMatch {
	if len(matches) == 0 {
		return nil
	}
	if factor <= 0 {
		factor = defaultDistanceFactor
	}
	minDist := math.Inf(1)
	for _, m := range matches {
		if m.Distance < minDist {
			minDist = m.Distance
		}
	}
	var good []gocv.DMatch
	for _, m := range matches {
		if m.Distance <= minDist*factor {
			good = append(good, m)
		}
	}
	return good
}

// GoodMatchesRANSAC keeps the matches consistent with a robustly
// estimated planar mapping between the two keypoint sets, at the given
// reprojection distance and confidence.
func GoodMatchesRANSAC(matches []gocv.DMatch, kpQuery, kpTrain []gocv.KeyPoint, distance, confidence float64) ([]gocv.DMatch, error) {
	if len(matches) < 4 {
		return nil, fmt.Errorf("%w: ransac filter needs at least 4 matches, got %d", ErrInvalidArgument, len(matches))
	}

	src := keyPointsToMat(matches, kpQuery, true)
	dst := keyPointsToMat(matches, kpTrain, false)
	defer src.Close()
	defer dst.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	h := gocv.FindHomography(src, dst, gocv.HomographyMethodRANSAC, distance, &mask, 2000, confidence)
	defer h.Close()
	if h.Empty() {
		return nil, fmt.Errorf("%w: homography estimation failed", ErrInvalidArgument)
	}

	var inliers []gocv.DMatch
	for i := 0; i < mask.Rows(); i++ {
		if mask.GetUCharAt(i, 0) != 0 {
			inliers = append(inliers, matches[i])
		}
	}
	return inliers, nil
}

// keyPointsToMat packs the matched keypoint coordinates into the
// two-channel float Mat the homography estimator expects.
func keyPointsToMat(matches []gocv.DMatch, kps []gocv.KeyPoint, query bool) gocv.Mat {
	data := make([]float32, len(matches)*2)
	for i, m := range matches {
		idx := m.TrainIdx
		if query {
			idx = m.QueryIdx
		}
		data[i*2] = float32(kps[idx].X)
		data[i*2+1] = float32(kps[idx].Y)
	}
	m, err := gocv.NewMatFromBytes(len(matches), 1, gocv.MatTypeCV32FC2, float32ToBytes(data))
	if err != nil {
		return gocv.NewMat()
	}
	return m
}

func float32ToBytes(data []float32) []byte {
	out := make([]byte, len(data)*4)
	for i, v := range data {
		bits := math.Float32bits(v)
		out[i*4] = byte(bits)
		out[i*4+1] = byte(bits >> 8)
		out[i*4+2] = byte(bits >> 16)
		out[i*4+3] = byte(bits >> 24)
	}
	return out
}

// RobustMatcher combines the Lowe ratio test with a symmetry test:
// a match survives only when each keypoint is the other's best
// candidate in both match directions.
type RobustMatcher struct {
	matcher *Matcher

	// Ratio is the Lowe ratio; a best match must beat the second best
	// by this factor. Defaults to 0.8.
	Ratio float64
}

// NewRobustMatcher builds a robust matcher over a base strategy.
func NewRobustMatcher(matcher *Matcher) *RobustMatcher {
	return &RobustMatcher{matcher: matcher, Ratio: defaultLoweRatio}
}

// FastMatch runs the ratio test only, in the query→train direction.
func (r *RobustMatcher) FastMatch(query, train gocv.Mat) []gocv.DMatch {
	return r.ratioTest(r.matcher.KnnMatch(query, train, 2))
}

// Match runs the full path: ratio test in both directions, the symmetry
// test on the survivors, and a final optimal one-to-one assignment on
// any residual conflicts.
func (r *RobustMatcher) Match(query, train gocv.Mat) []gocv.DMatch {
	fwd := r.ratioTest(r.matcher.KnnMatch(query, train, 2))
	rev := r.ratioTest(r.matcher.KnnMatch(train, query, 2))
	sym := symmetryTest(fwd, rev)
	return uniqueMatches(sym)
}

// ratioTest keeps the best candidate of each row when it beats the
// second best by the configured ratio.
func (r *RobustMatcher) ratioTest(knn [][]gocv.DMatch) []gocv.DMatch {
	ratio := r.Ratio
	if ratio <= 0 {
		ratio = defaultLoweRatio
	}
	var kept []gocv.DMatch
	for _, cands := range knn {
		if len(cands) < 2 {
			continue
		}
		if cands[0].Distance < ratio*cands[1].Distance {
			kept = append(kept, cands[0])
		}
	}
	return kept
}

// symmetryTest keeps a forward match (i → j) iff the reverse direction
// matched (j → i).
func symmetryTest(fwd, rev []gocv.DMatch) []gocv.DMatch {
	reverse := make(map[[2]int]bool, len(rev))
	for _, m := range rev {
		reverse[[2]int{m.QueryIdx, m.TrainIdx}] = true
	}
	var sym []gocv.DMatch
	for _, m := range fwd {
		if reverse[[2]int{m.TrainIdx, m.QueryIdx}] {
			sym = append(sym, m)
		}
	}
	return sym
}

// uniqueMatches resolves any remaining many-to-one conflicts with an
// optimal assignment over the candidate pairs.
func uniqueMatches(matches []gocv.DMatch) []gocv.DMatch {
	if len(matches) < 2 {
		return matches
	}

	// Compact the query and train indices that appear.
	queryIdx := map[int]int{}
	trainIdx := map[int]int{}
	for _, m := range matches {
		if _, ok := queryIdx[m.QueryIdx]; !ok {
			queryIdx[m.QueryIdx] = len(queryIdx)
		}
		if _, ok := trainIdx[m.TrainIdx]; !ok {
			trainIdx[m.TrainIdx] = len(trainIdx)
		}
	}
	if len(queryIdx) == len(matches) && len(trainIdx) == len(matches) {
		// Already one-to-one.
		return matches
	}

	const unmatchable = math.MaxFloat32
	cost := make([][]float64, len(queryIdx))
	for i := range cost {
		cost[i] = make([]float64, len(trainIdx))
		for j := range cost[i] {
			cost[i][j] = unmatchable
		}
	}
	candidates := map[[2]int]gocv.DMatch{}
	for _, m := range matches {
		qi, ti := queryIdx[m.QueryIdx], trainIdx[m.TrainIdx]
		cost[qi][ti] = m.Distance
		candidates[[2]int{qi, ti}] = m
	}

	pairs, _, _ := assign.Optimal(cost, unmatchable-1)
	var out []gocv.DMatch
	for _, p := range pairs {
		if m, ok := candidates[[2]int{p.Row, p.Col}]; ok {
			out = append(out, m)
		}
	}
	return out
}
