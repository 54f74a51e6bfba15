package linetrack

import "errors"

var (
	// ErrIOFailure is returned when a file or video source cannot be
	// opened or read.
	ErrIOFailure = errors.New("linetrack: i/o failure")

	// ErrDataEmpty is returned when an operation receives an empty
	// raster or empty point list where non-empty input is required.
	ErrDataEmpty = errors.New("linetrack: empty input")

	// ErrInvalidArgument is returned when a parameter is outside its
	// documented domain.
	ErrInvalidArgument = errors.New("linetrack: invalid argument")

	// ErrStreamState is returned when a video stream operation is not
	// valid in the stream's current status.
	ErrStreamState = errors.New("linetrack: invalid stream state")
)
