package linetrack

import (
	"image"
	"log"
	"os"
	"sync"

	"gocv.io/x/gocv"
	"golang.org/x/term"

	"github.com/aeroinspect/linetrack/geom"
)

// GetTerminalSize returns the terminal dimensions (columns, lines),
// falling back to the provided defaults when no terminal is attached.
func GetTerminalSize(defaultCols, defaultLines int) (cols, lines int) {
	for _, f := range []*os.File{os.Stdin, os.Stdout, os.Stderr} {
		if width, height, err := term.GetSize(int(f.Fd())); err == nil {
			return width, height
		}
	}
	return defaultCols, defaultLines
}

// CropToWindow extracts the region of img covered by w, clamped to the
// image bounds. The returned Mat is an owned copy; an empty window
// yields an empty Mat.
func CropToWindow(img gocv.Mat, w geom.WindowI) gocv.Mat {
	x1, y1 := w.P1.X, w.P1.Y
	x2, y2 := w.P2.X+1, w.P2.Y+1

	if x1 < 0 {
		x1 = 0
	}
	if y1 < 0 {
		y1 = 0
	}
	if x2 > img.Cols() {
		x2 = img.Cols()
	}
	if y2 > img.Rows() {
		y2 = img.Rows()
	}
	if x1 >= x2 || y1 >= y2 {
		return gocv.NewMat()
	}

	region := img.Region(image.Rect(x1, y1, x2, y2))
	defer region.Close()
	return region.Clone()
}

// segPoint converts a geometry point to the image.Point gocv drawing
// calls expect.
func segPoint(p geom.PointI) image.Point {
	return image.Pt(p.X, p.Y)
}

// warnedMessages tracks which messages have been warned about.
var warnedMessages sync.Map

// WarnOnce logs a warning message only once; repeat calls with the same
// message are ignored. Safe for concurrent use.
func WarnOnce(message string) {
	if _, loaded := warnedMessages.LoadOrStore(message, true); !loaded {
		log.Printf("WARNING: %s", message)
	}
}
