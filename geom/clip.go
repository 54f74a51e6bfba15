package geom

// ClipSegment clips a segment to an axis-aligned window with the
// Liang-Barsky algorithm. The second return is false when the segment
// lies entirely outside the window.
func ClipSegment(s SegmentF, w WindowF) (SegmentF, bool) {
	dx := s.P2.X - s.P1.X
	dy := s.P2.Y - s.P1.Y

	t0, t1 := 0.0, 1.0
	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{
		s.P1.X - w.P1.X,
		w.P2.X - s.P1.X,
		s.P1.Y - w.P1.Y,
		w.P2.Y - s.P1.Y,
	}

	for i := 0; i < 4; i++ {
		if p[i] == 0 {
			if q[i] < 0 {
				return SegmentF{}, false
			}
			continue
		}
		r := q[i] / p[i]
		if p[i] < 0 {
			if r > t1 {
				return SegmentF{}, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return SegmentF{}, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}

	return SegmentF{
		P1: PointF{s.P1.X + t0*dx, s.P1.Y + t0*dy},
		P2: PointF{s.P1.X + t1*dx, s.P1.Y + t1*dy},
	}, true
}
