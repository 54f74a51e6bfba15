package linetrack

import (
	"github.com/aeroinspect/linetrack/geom"
	"github.com/aeroinspect/linetrack/transform"
)

// EstimateMotion fits the similarity transform mapping matched points
// of one frame onto the next. Returns nil when the fit fails, typically
// for too few or degenerate correspondences.
func EstimateMotion(src, dst []geom.PointF) *transform.Helmert2D {
	h := transform.NewHelmert2D(0, 0, 1, 0)
	if _, err := h.Compute(src, dst); err != nil {
		return nil
	}
	return h
}

// EstimateRectification fits the projective transform mapping image
// points onto a reference plane. Returns nil when the fit fails.
func EstimateRectification(src, dst []geom.PointF) *transform.Projective {
	p := transform.NewProjective()
	if _, err := p.Compute(src, dst); err != nil {
		return nil
	}
	return p
}
