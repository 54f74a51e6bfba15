// Command towerdetect scans aerial video for transmission-tower
// candidates: preprocess each frame, detect near-vertical line
// segments, group them by proximity, and report groups dense enough to
// be a tower.
package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"github.com/aeroinspect/linetrack"
	"github.com/aeroinspect/linetrack/cli"
	"github.com/aeroinspect/linetrack/color"
	"github.com/aeroinspect/linetrack/imgproc"
	"github.com/aeroinspect/linetrack/msg"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := cli.NewCommand("towerdetect", "detect transmission towers in aerial video")
	input := cli.AddArgument(cmd, "input", "input video path", true, "")
	outDir := cli.AddArgument(cmd, "out", "output directory for overlays", false, ".")
	skip := cli.AddArgument(cmd, "skip", "frames to skip between reads", false, 5)
	minLines := cli.AddArgument(cmd, "min-lines", "minimum segments for a tower group", false, 10)
	show := cli.AddArgument(cmd, "show", "display frames while processing", false, false)

	if err := cmd.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, cmd.Usage())
		return cli.ExitFailure
	}

	log := msg.Default()
	log.AddSink(msg.NewConsoleSink())

	stream, err := linetrack.OpenVideoStream(input.Value())
	if err != nil {
		log.Error("open %s: %v", input.Value(), err)
		return cli.ExitFailure
	}
	defer stream.Close()

	if err := stream.SetSkipFrames(skip.Value()); err != nil {
		log.Error("skip policy: %v", err)
		return cli.ExitFailure
	}
	stream.EnableBlurRejection(true)

	// Towers read as dense clusters of near-vertical edges.
	gauss, _ := imgproc.NewGaussianBlur(5, 1.5, 1.5)
	canny, _ := imgproc.NewCanny(0, 0, 3)
	pipeline := imgproc.NewPipeline(gauss, canny)

	detector := linetrack.NewHoughPDetector(50, 30, 10)
	vertical := linetrack.AngleRange{Center: math.Pi / 2, Tolerance: 0.2}

	pen := color.DefaultPen()
	frameIdx := 0

	stream.Listen(&linetrack.ListenerFuncs{
		PositionChange: func(pos int) { frameIdx = pos },
		Read: func(frame gocv.Mat) {
			gray := gocv.NewMat()
			defer gray.Close()
			gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

			edges := gocv.NewMat()
			defer edges.Close()
			if err := pipeline.Run(gray, &edges); err != nil {
				log.Warning("frame %d: pipeline: %v", frameIdx, err)
				return
			}
			if err := detector.RunWithAngle(edges, vertical); err != nil {
				log.Warning("frame %d: detector: %v", frameIdx, err)
				return
			}

			groups := linetrack.GroupLinesByDist(detector.Lines(), 10)
			groups = linetrack.DelLinesGroupBySize(groups, minLines.Value())
			if len(groups) == 0 {
				return
			}

			overlay := frame.Clone()
			defer overlay.Close()
			detector.DrawLines(&overlay, pen.Color.ToRGBA(), pen.Width)
			for _, g := range groups {
				w := g.Window()
				log.Info("frame %d: tower candidate at (%d,%d)-(%d,%d) with %d segments",
					frameIdx, w.P1.X, w.P1.Y, w.P2.X, w.P2.Y, g.Len())
			}

			out := filepath.Join(outDir.Value(), fmt.Sprintf("tower_%06d.png", frameIdx))
			if !gocv.IMWrite(out, overlay) {
				log.Warning("frame %d: write %s failed", frameIdx, out)
			}
		},
	})

	stream.Listen(linetrack.NewProgressListener(stream, input.Value(), "towerdetect"))

	if show.Value() {
		display := &linetrack.DisplayListener{Title: "towerdetect"}
		stream.Listen(display)
		stream.SetKeyHandler(display)
	}

	if err := stream.Run(); err != nil {
		log.Error("stream: %v", err)
		return cli.ExitFailure
	}
	return cli.ExitSuccess
}
