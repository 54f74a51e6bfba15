/*
Package linetrack detects and tracks power-line infrastructure in aerial
video and still imagery.

The package composes four subsystems: the image-processing pipeline
(package imgproc), a strategy-dispatched line detector with segment
grouping and joining, a planar transform algebra (package transform) for
motion and rectification estimation, and a pull-based video stream with
listener dispatch. Keypoint detection and robust descriptor matching tie
consecutive frames together.

# Basic Usage

	stream, _ := linetrack.OpenVideoStream("flight.mp4")
	defer stream.Close()

	detector := linetrack.NewHoughPDetector(50, 30, 10)

	stream.Listen(&linetrack.ListenerFuncs{
		Read: func(frame gocv.Mat) {
			gray := gocv.NewMat()
			defer gray.Close()
			gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

			if err := detector.Run(gray); err != nil {
				return
			}
			groups := linetrack.GroupLinesByDist(detector.Lines(), 10)
			groups = linetrack.DelLinesGroupBySize(groups, 10)
			// candidate towers are the group windows
			_ = groups
		},
	})
	stream.Run()

# Detection strategies

Hough, probabilistic Hough, a fast Hough variant with an internal weight
gate, and an LSD-style gradient-alignment detector all satisfy
LineDetector; every strategy shares the angular filter and the grouping
and joining post-processing.
*/
package linetrack
