package linetrack

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"gocv.io/x/gocv"
)

// ProgressListener renders a terminal progress bar over the frame loop.
type ProgressListener struct {
	ListenerFuncs

	// Label is appended to the bar description.
	Label string
	// Source names the stream, typically the input path.
	Source string

	frameCount int
	bar        *progressbar.ProgressBar
}

// NewProgressListener builds a progress listener for a stream.
func NewProgressListener(stream *VideoStream, source, label string) *ProgressListener {
	return &ProgressListener{
		Label:      label,
		Source:     source,
		frameCount: stream.FrameCount(),
	}
}

// OnInitialize sets up the bar.
func (p *ProgressListener) OnInitialize() {
	length := p.frameCount
	if length <= 0 {
		length = -1
	}
	p.bar = progressbar.NewOptions(length,
		progressbar.OptionSetDescription(p.description()),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("fps"),
		progressbar.OptionSetPredictTime(p.frameCount > 0),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// OnPositionChange advances the bar to the delivered frame index, so
// skipped frames still count.
func (p *ProgressListener) OnPositionChange(pos int) {
	if p.bar != nil {
		_ = p.bar.Set(pos + 1)
	}
}

// OnRead is a no-op; progress tracks positions, not reads.
func (p *ProgressListener) OnRead(gocv.Mat) {}

// OnFinish completes the bar.
func (p *ProgressListener) OnFinish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// OnStop completes the bar on early shutdown.
func (p *ProgressListener) OnStop() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// description builds the bar label, middle-truncated to the terminal
// width with room reserved for the bar itself.
func (p *ProgressListener) description() string {
	desc := filepath.Base(p.Source)
	if p.Label != "" {
		desc = fmt.Sprintf("%s - %s", desc, p.Label)
	}

	termCols, _ := GetTerminalSize(80, 24)
	maxLen := termCols - 25
	if len(desc) > maxLen && maxLen > 10 {
		start := desc[:maxLen/2-2]
		end := desc[len(desc)-(maxLen/2-3):]
		desc = start + " ... " + end
	}
	return desc
}
