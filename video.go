package linetrack

import (
	"fmt"
	"image"
	"math"
	"time"

	"gocv.io/x/gocv"
)

// StreamStatus is the lifecycle state of a video stream.
type StreamStatus int

const (
	StatusStart StreamStatus = iota
	StatusRunning
	StatusPaused
	StatusStopping
	StatusStopped
	StatusFinalized
)

// SkipMode selects how NextFrame advances through the source.
type SkipMode int

const (
	// SkipNone advances one frame at a time.
	SkipNone SkipMode = iota
	// SkipFrames advances a fixed number of frames.
	SkipFrames
	// SkipMilliseconds advances by a time interval. Intervals shorter
	// than one frame behave as SkipNone.
	SkipMilliseconds
)

// FrameSizeMode selects how frames are sized before delivery.
type FrameSizeMode int

const (
	// SizeOriginal delivers frames at source resolution.
	SizeOriginal FrameSizeMode = iota
	// SizeResize rescales frames to a target size, optionally
	// preserving aspect ratio.
	SizeResize
	// SizeCrop extracts a centered rectangle, clamped to the source
	// bounds.
	SizeCrop
)

// Laplacian-variance floor below which a frame counts as blurred.
const blurVarianceFloor = 70.0

// Listener observes the frame loop. Callbacks are invoked synchronously
// from Run, per frame in the order OnPositionChange, OnRead, OnShow.
type Listener interface {
	OnInitialize()
	OnRead(frame gocv.Mat)
	OnPositionChange(pos int)
	OnShow(frame gocv.Mat)
	OnPause()
	OnResume()
	OnStop()
	OnFinish()
}

// ListenerFuncs adapts optional callbacks to the Listener interface.
// Nil fields are skipped.
type ListenerFuncs struct {
	Initialize     func()
	Read           func(frame gocv.Mat)
	PositionChange func(pos int)
	Show           func(frame gocv.Mat)
	Pause          func()
	Resume         func()
	Stop           func()
	Finish         func()
}

func (l *ListenerFuncs) OnInitialize() {
	if l.Initialize != nil {
		l.Initialize()
	}
}
func (l *ListenerFuncs) OnRead(frame gocv.Mat) {
	if l.Read != nil {
		l.Read(frame)
	}
}
func (l *ListenerFuncs) OnPositionChange(pos int) {
	if l.PositionChange != nil {
		l.PositionChange(pos)
	}
}
func (l *ListenerFuncs) OnShow(frame gocv.Mat) {
	if l.Show != nil {
		l.Show(frame)
	}
}
func (l *ListenerFuncs) OnPause() {
	if l.Pause != nil {
		l.Pause()
	}
}
func (l *ListenerFuncs) OnResume() {
	if l.Resume != nil {
		l.Resume()
	}
}
func (l *ListenerFuncs) OnStop() {
	if l.Stop != nil {
		l.Stop()
	}
}
func (l *ListenerFuncs) OnFinish() {
	if l.Finish != nil {
		l.Finish()
	}
}

// KeyHandler polls for interactive keyboard input during Run. A nil
// handler disables interaction entirely.
type KeyHandler interface {
	// Poll waits up to delayMs milliseconds and returns the pressed key
	// code, or a negative value when no key was pressed.
	Poll(delayMs int) int
}

// Interactive key codes understood by Run.
const (
	keyEscape = 27
	keySpace  = 32
	keyPlus   = '+'
	keyMinus  = '-'
)

// frameSource abstracts the backing sequence: a video container or an
// image list.
type frameSource interface {
	read(out *gocv.Mat) bool
	setPos(frame int) bool
	fps() float64
	frameCount() int
	frameSize() (width, height int)
	posMillis() float64
	close() error
}

// VideoStream is a pull-based frame source with frame skipping, blur
// rejection, rescaling or cropping, and listener dispatch.
type VideoStream struct {
	source frameSource
	status StreamStatus

	skipMode  SkipMode
	skipValue int

	blurReject bool

	sizeMode   FrameSizeMode
	outWidth   int
	outHeight  int
	keepAspect bool

	listeners []Listener
	keys      KeyHandler

	pos int // next frame index to deliver
}

// OpenVideoStream opens a file-backed stream. Opening fails cleanly
// when the container cannot be read.
func OpenVideoStream(path string) (*VideoStream, error) {
	src, err := openVideoCaptureSource(path)
	if err != nil {
		return nil, err
	}
	return &VideoStream{source: src, status: StatusStart}, nil
}

// NewImagesStream builds a stream over an explicit image list played at
// the given frame rate.
func NewImagesStream(paths []string, fps float64) (*VideoStream, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: empty image list", ErrDataEmpty)
	}
	src, err := newImagesSource(paths, fps)
	if err != nil {
		return nil, err
	}
	return &VideoStream{source: src, status: StatusStart}, nil
}

// OpenImagesDir builds a stream over a sequence directory described by
// a seqinfo.ini file.
func OpenImagesDir(dir string) (*VideoStream, error) {
	src, err := openSequenceDir(dir)
	if err != nil {
		return nil, err
	}
	return &VideoStream{source: src, status: StatusStart}, nil
}

// Status returns the current lifecycle state.
func (v *VideoStream) Status() StreamStatus { return v.status }

// Fps returns the source frame rate.
func (v *VideoStream) Fps() float64 { return v.source.fps() }

// FrameCount returns the number of frames in the source.
func (v *VideoStream) FrameCount() int { return v.source.frameCount() }

// FrameSize returns the source frame dimensions.
func (v *VideoStream) FrameSize() (width, height int) { return v.source.frameSize() }

// PosFrames returns the index of the next frame to deliver.
func (v *VideoStream) PosFrames() int { return v.pos }

// PosMillis returns the source position in milliseconds.
func (v *VideoStream) PosMillis() float64 { return v.source.posMillis() }

// SetSkipFrames advances n frames per NextFrame call.
func (v *VideoStream) SetSkipFrames(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: skip frames %d", ErrInvalidArgument, n)
	}
	v.skipMode = SkipFrames
	v.skipValue = n
	return nil
}

// SetSkipMilliseconds advances by a time interval per NextFrame call.
func (v *VideoStream) SetSkipMilliseconds(ms int) error {
	if ms < 1 {
		return fmt.Errorf("%w: skip milliseconds %d", ErrInvalidArgument, ms)
	}
	v.skipMode = SkipMilliseconds
	v.skipValue = ms
	return nil
}

// SetSkipNone restores frame-by-frame advancement.
func (v *VideoStream) SetSkipNone() {
	v.skipMode = SkipNone
	v.skipValue = 0
}

// EnableBlurRejection toggles skipping of frames whose Laplacian
// variance falls below the empirical floor.
func (v *VideoStream) EnableBlurRejection(enable bool) {
	v.blurReject = enable
}

// SetResize delivers frames rescaled to width x height. With keepAspect
// the frame is scaled to fit inside the target while preserving its
// aspect ratio.
func (v *VideoStream) SetResize(width, height int, keepAspect bool) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: resize to %dx%d", ErrInvalidArgument, width, height)
	}
	v.sizeMode = SizeResize
	v.outWidth, v.outHeight = width, height
	v.keepAspect = keepAspect
	return nil
}

// SetCrop delivers the centered width x height rectangle of each frame,
// clamped to the source bounds.
func (v *VideoStream) SetCrop(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: crop to %dx%d", ErrInvalidArgument, width, height)
	}
	v.sizeMode = SizeCrop
	v.outWidth, v.outHeight = width, height
	return nil
}

// SetOriginalSize restores source-resolution delivery.
func (v *VideoStream) SetOriginalSize() {
	v.sizeMode = SizeOriginal
}

// Listen registers a listener. Listeners are called in registration
// order from the frame loop; registration is not synchronized with a
// running loop.
func (v *VideoStream) Listen(l Listener) {
	v.listeners = append(v.listeners, l)
}

// SetKeyHandler installs the interactive key source. A nil handler (the
// default) disables keyboard control.
func (v *VideoStream) SetKeyHandler(k KeyHandler) {
	v.keys = k
}

// stepSize returns the frame advance of the active skip policy.
func (v *VideoStream) stepSize() int {
	switch v.skipMode {
	case SkipFrames:
		return v.skipValue
	case SkipMilliseconds:
		frames := int(math.Round(float64(v.skipValue) * v.source.fps() / 1000))
		if frames < 1 {
			return 1
		}
		return frames
	}
	return 1
}

// NextFrame advances per the active skip policy and writes the next
// frame to out, returning its position. With blur rejection enabled,
// blurred frames are passed over until a sharp frame or EOF. An
// exhausted source returns ErrStreamState wrapping the EOF condition.
func (v *VideoStream) NextFrame(out *gocv.Mat) (int, error) {
	for {
		count := v.source.frameCount()
		if count > 0 && v.pos >= count {
			return 0, fmt.Errorf("%w: end of stream", ErrStreamState)
		}
		if !v.source.setPos(v.pos) {
			return 0, fmt.Errorf("%w: end of stream", ErrStreamState)
		}

		frame := gocv.NewMat()
		if !v.source.read(&frame) || frame.Empty() {
			frame.Close()
			return 0, fmt.Errorf("%w: end of stream", ErrStreamState)
		}

		pos := v.pos
		v.pos += v.stepSize()

		if v.blurReject && laplacianVariance(frame) < blurVarianceFloor {
			frame.Close()
			continue
		}

		err := v.deliver(frame, out)
		frame.Close()
		if err != nil {
			return 0, err
		}
		return pos, nil
	}
}

// deliver applies the sizing mode and writes the frame to out.
func (v *VideoStream) deliver(frame gocv.Mat, out *gocv.Mat) error {
	switch v.sizeMode {
	case SizeResize:
		w, h := v.outWidth, v.outHeight
		if v.keepAspect {
			scale := math.Min(
				float64(w)/float64(frame.Cols()),
				float64(h)/float64(frame.Rows()),
			)
			w = int(float64(frame.Cols()) * scale)
			h = int(float64(frame.Rows()) * scale)
		}
		gocv.Resize(frame, out, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)
	case SizeCrop:
		w, h := v.outWidth, v.outHeight
		if w > frame.Cols() {
			w = frame.Cols()
		}
		if h > frame.Rows() {
			h = frame.Rows()
		}
		x := (frame.Cols() - w) / 2
		y := (frame.Rows() - h) / 2
		region := frame.Region(image.Rect(x, y, x+w, y+h))
		region.CopyTo(out)
		region.Close()
	default:
		frame.CopyTo(out)
	}
	return nil
}

// Run drives the frame loop until EOF or Stop, dispatching listener
// callbacks synchronously. Interactive control is active only when a
// key handler is installed.
func (v *VideoStream) Run() error {
	if v.status != StatusStart && v.status != StatusStopped {
		return fmt.Errorf("%w: run from status %d", ErrStreamState, v.status)
	}

	v.status = StatusRunning
	for _, l := range v.listeners {
		l.OnInitialize()
	}

	frame := gocv.NewMat()
	defer frame.Close()

	for {
		if v.status == StatusStopping {
			v.status = StatusStopped
			for _, l := range v.listeners {
				l.OnStop()
			}
			return nil
		}

		if v.status == StatusPaused {
			if v.keys == nil {
				time.Sleep(50 * time.Millisecond)
			} else {
				v.pollKeys(50)
			}
			continue
		}

		pos, err := v.NextFrame(&frame)
		if err != nil {
			v.status = StatusFinalized
			for _, l := range v.listeners {
				l.OnFinish()
			}
			return nil
		}

		for _, l := range v.listeners {
			l.OnPositionChange(pos)
		}
		for _, l := range v.listeners {
			l.OnRead(frame)
		}
		for _, l := range v.listeners {
			l.OnShow(frame)
		}

		v.pollKeys(1)
	}
}

// pollKeys translates interactive input into stream control.
func (v *VideoStream) pollKeys(delayMs int) {
	if v.keys == nil {
		return
	}
	switch v.keys.Poll(delayMs) {
	case keyEscape:
		v.Stop()
	case keySpace:
		if v.status == StatusPaused {
			v.Resume()
		} else {
			v.Pause()
		}
	case keyPlus:
		if v.skipMode == SkipNone {
			v.skipMode = SkipFrames
			v.skipValue = 1
		}
		v.skipValue++
	case keyMinus:
		if v.skipMode != SkipNone && v.skipValue > 1 {
			v.skipValue--
		}
	}
}

// Pause suspends frame delivery; Run keeps polling for input.
func (v *VideoStream) Pause() {
	if v.status == StatusRunning {
		v.status = StatusPaused
		for _, l := range v.listeners {
			l.OnPause()
		}
	}
}

// Resume continues a paused stream.
func (v *VideoStream) Resume() {
	if v.status == StatusPaused {
		v.status = StatusRunning
		for _, l := range v.listeners {
			l.OnResume()
		}
	}
}

// Stop requests a cooperative shutdown; the loop observes it at the
// next frame boundary.
func (v *VideoStream) Stop() {
	if v.status == StatusRunning || v.status == StatusPaused {
		v.status = StatusStopping
	}
}

// Close releases the backing source.
func (v *VideoStream) Close() error {
	return v.source.close()
}

// laplacianVariance measures frame sharpness as the variance of the
// Laplacian response.
func laplacianVariance(frame gocv.Mat) float64 {
	gray := frame
	owned := false
	if frame.Channels() != 1 {
		gray = gocv.NewMat()
		owned = true
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	}

	lap := gocv.NewMat()
	gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, 3, 1, 0, gocv.BorderDefault)

	meanMat := gocv.NewMat()
	stdMat := gocv.NewMat()
	gocv.MeanStdDev(lap, &meanMat, &stdMat)
	std := stdMat.GetDoubleAt(0, 0)

	meanMat.Close()
	stdMat.Close()
	lap.Close()
	if owned {
		gray.Close()
	}
	return std * std
}

// WindowKeyHandler polls a display window for key presses.
type WindowKeyHandler struct {
	Window *gocv.Window
}

// Poll waits up to delayMs for a key press on the window.
func (w *WindowKeyHandler) Poll(delayMs int) int {
	return w.Window.WaitKey(delayMs)
}

// DisplayListener shows frames in a window, optionally downsampled for
// slow connections. It also serves as the stream's key handler.
type DisplayListener struct {
	ListenerFuncs
	Title           string
	DownsampleRatio float64

	window *gocv.Window
}

// OnInitialize opens the display window.
func (d *DisplayListener) OnInitialize() {
	if d.window == nil {
		title := d.Title
		if title == "" {
			title = "linetrack"
		}
		d.window = gocv.NewWindow(title)
	}
}

// OnShow renders the frame.
func (d *DisplayListener) OnShow(frame gocv.Mat) {
	if d.window == nil {
		return
	}
	if d.DownsampleRatio > 0 && d.DownsampleRatio != 1.0 {
		resized := gocv.NewMat()
		defer resized.Close()
		w := int(float64(frame.Cols()) * d.DownsampleRatio)
		h := int(float64(frame.Rows()) * d.DownsampleRatio)
		gocv.Resize(frame, &resized, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)
		d.window.IMShow(resized)
		return
	}
	d.window.IMShow(frame)
}

// Poll implements KeyHandler over the display window.
func (d *DisplayListener) Poll(delayMs int) int {
	if d.window == nil {
		return -1
	}
	return d.window.WaitKey(delayMs)
}

// OnFinish closes the window.
func (d *DisplayListener) OnFinish() {
	if d.window != nil {
		d.window.Close()
		d.window = nil
	}
}
