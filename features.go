package linetrack

import (
	"encoding/base64"
	"fmt"

	"gocv.io/x/gocv"
	"gopkg.in/ini.v1"

	"github.com/aeroinspect/linetrack/geom"
)

// KeyPointDetector finds interest points in a raster. The gocv feature
// types (ORB, AKAZE, BRISK, SIFT) satisfy it.
type KeyPointDetector interface {
	Detect(src gocv.Mat) []gocv.KeyPoint
}

// DescriptorExtractor computes keypoints together with their
// descriptors, one descriptor row per keypoint.
type DescriptorExtractor interface {
	DetectAndCompute(src gocv.Mat, mask gocv.Mat) ([]gocv.KeyPoint, gocv.Mat)
}

// Features2D pairs a keypoint detector with a descriptor extractor and
// holds their latest output. The internal buffers are overwritten on
// each call; callers needing isolation copy before the next detect.
type Features2D struct {
	detector  KeyPointDetector
	extractor DescriptorExtractor

	detectorName  string
	extractorName string

	keyPoints   []gocv.KeyPoint
	descriptors gocv.Mat
}

// NewFeatures2D builds a feature adapter over the two strategies. The
// names are recorded in the persistence format.
func NewFeatures2D(detector KeyPointDetector, extractor DescriptorExtractor, detectorName, extractorName string) *Features2D {
	return &Features2D{
		detector:      detector,
		extractor:     extractor,
		detectorName:  detectorName,
		extractorName: extractorName,
		descriptors:   gocv.NewMat(),
	}
}

// Close releases the descriptor buffer. The strategy handles belong to
// the caller.
func (f *Features2D) Close() error {
	return f.descriptors.Close()
}

// DetectKeyPoints fills the internal keypoint list and returns the
// count. A non-nil mask keeps only keypoints on its nonzero pixels.
func (f *Features2D) DetectKeyPoints(img gocv.Mat, mask *gocv.Mat) (int, error) {
	if img.Empty() {
		return 0, ErrDataEmpty
	}

	kps := f.detector.Detect(img)
	if mask != nil && !mask.Empty() {
		kept := kps[:0]
		for _, kp := range kps {
			x, y := int(kp.X), int(kp.Y)
			if x >= 0 && x < mask.Cols() && y >= 0 && y < mask.Rows() &&
				mask.GetUCharAt(y, x) != 0 {
				kept = append(kept, kp)
			}
		}
		kps = kept
	}

	f.keyPoints = kps
	return len(kps), nil
}

// CalcDescriptor fills the descriptor matrix. Extraction refreshes the
// keypoint list so that descriptor row i always corresponds to keypoint
// i.
func (f *Features2D) CalcDescriptor(img gocv.Mat) error {
	if img.Empty() {
		return ErrDataEmpty
	}
	mask := gocv.NewMat()
	defer mask.Close()

	kps, desc := f.extractor.DetectAndCompute(img, mask)
	f.keyPoints = kps
	f.descriptors.Close()
	f.descriptors = desc
	return nil
}

// KeyPoints returns the current keypoint list. The slice is invalidated
// by the next detect or extract call.
func (f *Features2D) KeyPoints() []gocv.KeyPoint {
	return f.keyPoints
}

// Descriptors returns the current descriptor matrix, one row per
// keypoint. The Mat is invalidated by the next extract call.
func (f *Features2D) Descriptors() gocv.Mat {
	return f.descriptors
}

// FilterWindow crops the raster to w and runs detection and description
// again on the crop, so afterwards the keypoint list holds only points
// inside w, in crop coordinates. The keypoints held before the call are
// replaced, not filtered: they are not carried over to the new list.
// The returned Mat is owned by the caller.
func (f *Features2D) FilterWindow(img gocv.Mat, w geom.WindowI) (gocv.Mat, error) {
	if img.Empty() {
		return gocv.NewMat(), ErrDataEmpty
	}

	cropped := CropToWindow(img, w)
	if cropped.Empty() {
		return cropped, fmt.Errorf("%w: window outside raster", ErrInvalidArgument)
	}

	if err := f.CalcDescriptor(cropped); err != nil {
		cropped.Close()
		return gocv.NewMat(), err
	}
	return cropped, nil
}

// Persistence field names of the key-value feature file.
const (
	featSection = "features"
	descSection = "descriptor"
)

// Save writes the keypoints and descriptors to a structured key-value
// file. The descriptor matrix round-trips bitwise.
func (f *Features2D) Save(path string) error {
	cfg := ini.Empty()

	sec, err := cfg.NewSection(featSection)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	sec.NewKey("detector-type", f.detectorName)
	sec.NewKey("descriptor-type", f.extractorName)
	sec.NewKey("count", fmt.Sprintf("%d", len(f.keyPoints)))

	for i, kp := range f.keyPoints {
		kpSec, err := cfg.NewSection(fmt.Sprintf("keypoint.%d", i))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
		kpSec.NewKey("x", fmt.Sprintf("%.17g", kp.X))
		kpSec.NewKey("y", fmt.Sprintf("%.17g", kp.Y))
		kpSec.NewKey("size", fmt.Sprintf("%.17g", kp.Size))
		kpSec.NewKey("angle", fmt.Sprintf("%.17g", kp.Angle))
		kpSec.NewKey("response", fmt.Sprintf("%.17g", kp.Response))
		kpSec.NewKey("octave", fmt.Sprintf("%d", kp.Octave))
		kpSec.NewKey("class_id", fmt.Sprintf("%d", kp.ClassID))
	}

	dSec, err := cfg.NewSection(descSection)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	dSec.NewKey("dtype", fmt.Sprintf("%d", int(f.descriptors.Type())))
	dSec.NewKey("rows", fmt.Sprintf("%d", f.descriptors.Rows()))
	dSec.NewKey("cols", fmt.Sprintf("%d", f.descriptors.Cols()))
	if !f.descriptors.Empty() {
		dSec.NewKey("data", base64.StdEncoding.EncodeToString(f.descriptors.ToBytes()))
	}

	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("%w: save %s: %v", ErrIOFailure, path, err)
	}
	return nil
}

// Read restores keypoints and descriptors previously written by Save.
func (f *Features2D) Read(path string) error {
	cfg, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("%w: load %s: %v", ErrIOFailure, path, err)
	}

	sec := cfg.Section(featSection)
	f.detectorName = sec.Key("detector-type").String()
	f.extractorName = sec.Key("descriptor-type").String()
	count := sec.Key("count").MustInt(0)

	kps := make([]gocv.KeyPoint, count)
	for i := 0; i < count; i++ {
		kpSec := cfg.Section(fmt.Sprintf("keypoint.%d", i))
		kps[i] = gocv.KeyPoint{
			X:        kpSec.Key("x").MustFloat64(0),
			Y:        kpSec.Key("y").MustFloat64(0),
			Size:     kpSec.Key("size").MustFloat64(0),
			Angle:    kpSec.Key("angle").MustFloat64(0),
			Response: kpSec.Key("response").MustFloat64(0),
			Octave:   kpSec.Key("octave").MustInt(0),
			ClassID:  kpSec.Key("class_id").MustInt(0),
		}
	}
	f.keyPoints = kps

	dSec := cfg.Section(descSection)
	rows := dSec.Key("rows").MustInt(0)
	cols := dSec.Key("cols").MustInt(0)
	dtype := gocv.MatType(dSec.Key("dtype").MustInt(0))

	f.descriptors.Close()
	if rows == 0 || cols == 0 {
		f.descriptors = gocv.NewMat()
		return nil
	}

	data, err := base64.StdEncoding.DecodeString(dSec.Key("data").String())
	if err != nil {
		return fmt.Errorf("%w: descriptor data: %v", ErrIOFailure, err)
	}
	m, err := gocv.NewMatFromBytes(rows, cols, dtype, data)
	if err != nil {
		return fmt.Errorf("%w: descriptor matrix: %v", ErrIOFailure, err)
	}
	f.descriptors = m
	return nil
}
