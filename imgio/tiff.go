// Package imgio carries the raster output options for TIFF output. The
// options are validated for value ranges and mutually exclusive
// combinations. Only the compression scheme is lowered to an imwrite
// parameter; the other settings are carried in TiffOptions but are not
// passed to imwrite.
package imgio

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

// ErrConflict is returned when mutually exclusive TIFF options are
// combined.
var ErrConflict = errors.New("imgio: conflicting options")

// TiffCompression enumerates the supported TIFF compression schemes.
type TiffCompression int

const (
	CompressionNone TiffCompression = iota
	CompressionLZW
	CompressionPackBits
	CompressionDeflate
	CompressionJPEG
	CompressionCCITTRLE
	CompressionCCITTFax3
	CompressionCCITTFax4
	CompressionLZMA
)

// libtiff compression tags, forwarded verbatim.
var tiffCompressionTags = map[TiffCompression]int{
	CompressionNone:      1,
	CompressionCCITTRLE:  2,
	CompressionCCITTFax3: 3,
	CompressionCCITTFax4: 4,
	CompressionLZW:       5,
	CompressionJPEG:      7,
	CompressionDeflate:   8,
	CompressionPackBits:  32773,
	CompressionLZMA:      34925,
}

// BigTiffMode selects when the 64-bit container format is used.
type BigTiffMode int

const (
	BigTiffNo BigTiffMode = iota
	BigTiffYes
	BigTiffIfNeeded
	BigTiffIfSafer
)

// TiffOptions is the full option set for TIFF output.
type TiffOptions struct {
	// Sidecar files.
	TFWSidecar bool
	RPBSidecar bool

	// Tiling.
	Tiled      bool
	TileWidth  int
	TileHeight int

	// Compression. JPEGQuality applies only with CompressionJPEG,
	// DeflateLevel only with CompressionDeflate.
	Compression  TiffCompression
	JPEGQuality  int
	DeflateLevel int

	BigTiff BigTiffMode

	// Carried as given; Params does not pass these to imwrite.
	Photometric    string
	Alpha          string
	Profile        string
	PixelType      string
	GeoTiffVersion string
}

// DefaultTiffOptions returns the library defaults: untiled (tile size
// 256x256 when enabled), JPEG quality 75, DEFLATE level 6.
func DefaultTiffOptions() TiffOptions {
	return TiffOptions{
		TileWidth:    256,
		TileHeight:   256,
		Compression:  CompressionNone,
		JPEGQuality:  75,
		DeflateLevel: 6,
		BigTiff:      BigTiffIfNeeded,
	}
}

// Validate checks the value ranges (JPEG quality, DEFLATE level, tile
// size, compression scheme) and the mutually exclusive combinations.
func (o TiffOptions) Validate() error {
	if o.JPEGQuality < 1 || o.JPEGQuality > 100 {
		return fmt.Errorf("imgio: jpeg quality %d outside [1, 100]", o.JPEGQuality)
	}
	if o.DeflateLevel < 1 || o.DeflateLevel > 9 {
		return fmt.Errorf("imgio: deflate level %d outside [1, 9]", o.DeflateLevel)
	}
	if o.Tiled && (o.TileWidth <= 0 || o.TileHeight <= 0) {
		return fmt.Errorf("imgio: tiling enabled with tile size %dx%d", o.TileWidth, o.TileHeight)
	}
	if _, ok := tiffCompressionTags[o.Compression]; !ok {
		return fmt.Errorf("imgio: unknown compression %d", o.Compression)
	}
	if o.Compression == CompressionJPEG && o.Tiled && (o.TileWidth%16 != 0 || o.TileHeight%16 != 0) {
		return fmt.Errorf("%w: JPEG compression requires tile sizes that are multiples of 16", ErrConflict)
	}
	ccitt := o.Compression == CompressionCCITTRLE ||
		o.Compression == CompressionCCITTFax3 ||
		o.Compression == CompressionCCITTFax4
	if ccitt && o.PixelType != "" && o.PixelType != "bilevel" {
		return fmt.Errorf("%w: CCITT compression requires bilevel pixels, got %q", ErrConflict, o.PixelType)
	}
	return nil
}

// imwrite parameter id for TIFF output (OpenCV ImwriteFlags).
const imwriteTiffCompression = 259

// Params lowers the compression scheme to the imwrite parameter list;
// no other option is passed on.
func (o TiffOptions) Params() ([]int, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return []int{
		imwriteTiffCompression, tiffCompressionTags[o.Compression],
	}, nil
}

// WriteTiff writes a raster as TIFF with the given options. Sidecar and
// tiling settings that the backing imwrite cannot express are accepted
// and validated here for callers that post-process the output.
func WriteTiff(path string, img gocv.Mat, opts TiffOptions) error {
	params, err := opts.Params()
	if err != nil {
		return err
	}
	if img.Empty() {
		return fmt.Errorf("imgio: empty raster")
	}
	if !gocv.IMWriteWithParams(path, img, params) {
		return fmt.Errorf("imgio: write %s failed", path)
	}
	return nil
}
