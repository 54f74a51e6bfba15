package transform

import "github.com/aeroinspect/linetrack/geom"

// ApplySegment maps both endpoints of a segment.
func ApplySegment(t Transform, s geom.SegmentF, order Order) (geom.SegmentF, error) {
	p1, err := t.Apply(s.P1, order)
	if err != nil {
		return geom.SegmentF{}, err
	}
	p2, err := t.Apply(s.P2, order)
	if err != nil {
		return geom.SegmentF{}, err
	}
	return geom.SegmentF{P1: p1, P2: p2}, nil
}

// ApplyWindow maps the corners of a window and returns the normalized
// bounding window of the result. Under rotation the output covers the
// transformed rectangle rather than matching it exactly.
func ApplyWindow(t Transform, w geom.WindowF, order Order) (geom.WindowF, error) {
	corners := []geom.PointF{
		w.P1,
		{X: w.P2.X, Y: w.P1.Y},
		w.P2,
		{X: w.P1.X, Y: w.P2.Y},
	}
	out, err := t.ApplySlice(corners, order)
	if err != nil {
		return geom.WindowF{}, err
	}
	r := geom.NewWindow(out[0], out[0])
	for _, p := range out[1:] {
		r = r.Union(geom.NewWindow(p, p))
	}
	return r, nil
}

// ApplyPolyline maps every vertex of a polyline.
func ApplyPolyline(t Transform, p geom.PolylineF, order Order) (geom.PolylineF, error) {
	pts, err := t.ApplySlice(p.Points, order)
	if err != nil {
		return geom.PolylineF{}, err
	}
	return geom.PolylineF{Points: pts}, nil
}

// ApplyPolygon maps every vertex of a polygon.
func ApplyPolygon(t Transform, p geom.PolygonF, order Order) (geom.PolygonF, error) {
	pts, err := t.ApplySlice(p.Vertices, order)
	if err != nil {
		return geom.PolygonF{}, err
	}
	return geom.PolygonF{Vertices: pts}, nil
}
