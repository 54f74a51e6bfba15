// Command tracklines follows conductor lines across an aerial video:
// detect near-horizontal segments per frame, join them into conductor
// candidates, and estimate the inter-frame camera motion from matched
// keypoints with a similarity transform.
package main

import (
	"fmt"
	"os"

	"gocv.io/x/gocv"

	"github.com/aeroinspect/linetrack"
	"github.com/aeroinspect/linetrack/cli"
	"github.com/aeroinspect/linetrack/geom"
	"github.com/aeroinspect/linetrack/imgproc"
	"github.com/aeroinspect/linetrack/msg"
)

func main() {
	os.Exit(run())
}

func run() int {
	cmd := cli.NewCommand("tracklines", "track conductor lines across aerial video")
	input := cli.AddArgument(cmd, "input", "input video path", true, "")
	angle := cli.AddArgument(cmd, "angle", "expected conductor orientation in radians", false, 0.0)
	tolerance := cli.AddArgument(cmd, "tolerance", "angular tolerance in radians", false, 0.15)
	joinDist := cli.AddArgument(cmd, "join-dist", "distance for joining collinear segments", false, 40.0)

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
	stream.EnableBlurRejection(true)

	equalize := imgproc.NewEqualizeHistogram()
	canny, _ := imgproc.NewCanny(0, 0, 3)
	pipeline := imgproc.NewPipeline(equalize, canny)

	detector := linetrack.NewHoughPDetector(40, 50, 15)
	angles := linetrack.AngleRange{Center: angle.Value(), Tolerance: tolerance.Value()}

	orb := gocv.NewORB()
	defer orb.Close()
	features := linetrack.NewFeatures2D(&orb, &orb, "orb", "orb")
	defer features.Close()
	matcher := linetrack.NewBFMatcher(gocv.NormHamming)
	defer matcher.Close()
	robust := linetrack.NewRobustMatcher(matcher)

	var (
		prevKps  []gocv.KeyPoint
		prevDesc gocv.Mat
		havePrev bool
		frameIdx int
	)
	defer func() {
		if havePrev {
			prevDesc.Close()
		}
	}()

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
			if err := detector.RunWithAngle(edges, angles); err != nil {
				log.Warning("frame %d: detector: %v", frameIdx, err)
				return
			}

			for _, group := range linetrack.GroupLinesByDist(detector.Lines(), 20) {
				joined := linetrack.JoinLinesByDist(group.Lines(), joinDist.Value())
				for _, s := range joined {
					log.Info("frame %d: conductor (%d,%d)-(%d,%d) length %.0f",
						frameIdx, s.P1.X, s.P1.Y, s.P2.X, s.P2.Y, s.Length())
				}
			}

			// Frame-to-frame motion from matched keypoints.
			if err := features.CalcDescriptor(gray); err != nil {
				log.Warning("frame %d: features: %v", frameIdx, err)
				return
			}
			kps := append([]gocv.KeyPoint(nil), features.KeyPoints()...)
			desc := features.Descriptors().Clone()

			if havePrev && !prevDesc.Empty() && !desc.Empty() {
				matches := robust.Match(prevDesc, desc)
				if len(matches) >= 2 {
					src := make([]geom.PointF, len(matches))
					dst := make([]geom.PointF, len(matches))
					for i, m := range matches {
						src[i] = geom.PointF{X: prevKps[m.QueryIdx].X, Y: prevKps[m.QueryIdx].Y}
						dst[i] = geom.PointF{X: kps[m.TrainIdx].X, Y: kps[m.TrainIdx].Y}
					}
					motion := linetrack.EstimateMotion(src, dst)
					if motion != nil {
						log.Info("frame %d: motion dx=%.1f dy=%.1f rot=%.3f scale=%.3f",
							frameIdx, motion.Tx(), motion.Ty(), motion.Rotation(), motion.Scale())
					}
				}
			}

			if havePrev {
				prevDesc.Close()
			}
			prevKps, prevDesc, havePrev = kps, desc, true
		},
	})

	stream.Listen(linetrack.NewProgressListener(stream, input.Value(), "tracklines"))

	if err := stream.Run(); err != nil {
		log.Error("stream: %v", err)
		return cli.ExitFailure
	}
	return cli.ExitSuccess
}
