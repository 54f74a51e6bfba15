package linetrack

import (
	"fmt"
	"path/filepath"

	"gocv.io/x/gocv"
	"gopkg.in/ini.v1"
)

// videoCaptureSource backs a stream with a video container.
type videoCaptureSource struct {
	capture *gocv.VideoCapture
	width   int
	height  int
	rate    float64
	count   int
	pos     int
}

func openVideoCaptureSource(path string) (*videoCaptureSource, error) {
	capture, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open video %s: %v", ErrIOFailure, path, err)
	}
	return &videoCaptureSource{
		capture: capture,
		rate:    capture.Get(gocv.VideoCaptureFPS),
		width:   int(capture.Get(gocv.VideoCaptureFrameWidth)),
		height:  int(capture.Get(gocv.VideoCaptureFrameHeight)),
		count:   int(capture.Get(gocv.VideoCaptureFrameCount)),
	}, nil
}

func (s *videoCaptureSource) read(out *gocv.Mat) bool {
	if !s.capture.Read(out) {
		return false
	}
	s.pos++
	return true
}

func (s *videoCaptureSource) setPos(frame int) bool {
	if s.count > 0 && frame >= s.count {
		return false
	}
	if frame != s.pos {
		s.capture.Set(gocv.VideoCapturePosFrames, float64(frame))
		s.pos = frame
	}
	return true
}

func (s *videoCaptureSource) fps() float64 { return s.rate }

func (s *videoCaptureSource) frameCount() int { return s.count }

func (s *videoCaptureSource) frameSize() (int, int) { return s.width, s.height }

func (s *videoCaptureSource) posMillis() float64 {
	return s.capture.Get(gocv.VideoCapturePosMsec)
}

func (s *videoCaptureSource) close() error {
	return s.capture.Close()
}

// imagesSource backs a stream with an ordered image list played at a
// fixed rate.
type imagesSource struct {
	paths  []string
	rate   float64
	pos    int
	width  int
	height int
}

func newImagesSource(paths []string, fps float64) (*imagesSource, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("%w: fps %g", ErrInvalidArgument, fps)
	}

	// Probe the first image for the frame size.
	probe := gocv.IMRead(paths[0], gocv.IMReadColor)
	if probe.Empty() {
		return nil, fmt.Errorf("%w: read image %s", ErrIOFailure, paths[0])
	}
	defer probe.Close()

	return &imagesSource{
		paths:  paths,
		rate:   fps,
		width:  probe.Cols(),
		height: probe.Rows(),
	}, nil
}

// openSequenceDir reads a sequence directory described by seqinfo.ini,
// with the frame rate, image directory, extension and length in its
// [Sequence] section.
func openSequenceDir(dir string) (*imagesSource, error) {
	cfg, err := ini.Load(filepath.Join(dir, "seqinfo.ini"))
	if err != nil {
		return nil, fmt.Errorf("%w: load seqinfo.ini: %v", ErrIOFailure, err)
	}

	section := cfg.Section("Sequence")
	length := section.Key("seqLength").MustInt(0)
	fps := section.Key("frameRate").MustInt(30)
	imExt := section.Key("imExt").MustString(".jpg")
	imDir := section.Key("imDir").MustString("img1")

	if length == 0 {
		return nil, fmt.Errorf("%w: seqinfo.ini missing seqLength", ErrIOFailure)
	}

	paths := make([]string, length)
	for i := 0; i < length; i++ {
		paths[i] = filepath.Join(dir, imDir, fmt.Sprintf("%06d%s", i+1, imExt))
	}
	return newImagesSource(paths, float64(fps))
}

func (s *imagesSource) read(out *gocv.Mat) bool {
	if s.pos >= len(s.paths) {
		return false
	}
	frame := gocv.IMRead(s.paths[s.pos], gocv.IMReadColor)
	if frame.Empty() {
		frame.Close()
		return false
	}
	frame.CopyTo(out)
	frame.Close()
	s.pos++
	return true
}

func (s *imagesSource) setPos(frame int) bool {
	if frame < 0 || frame >= len(s.paths) {
		return false
	}
	s.pos = frame
	return true
}

func (s *imagesSource) fps() float64 { return s.rate }

func (s *imagesSource) frameCount() int { return len(s.paths) }

func (s *imagesSource) frameSize() (int, int) { return s.width, s.height }

func (s *imagesSource) posMillis() float64 {
	return float64(s.pos) / s.rate * 1000
}

func (s *imagesSource) close() error { return nil }
