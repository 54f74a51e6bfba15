package geom

import "errors"

var (
	// ErrParallelLines is returned when a line intersection does not
	// exist because the carrier lines are parallel.
	ErrParallelLines = errors.New("geom: lines are parallel")

	// ErrEmptyGeometry is returned by operations that need at least one
	// point or vertex.
	ErrEmptyGeometry = errors.New("geom: empty geometry")
)
