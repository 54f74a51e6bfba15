// Package color provides the BGR color vocabulary and overlay pen
// styles used for debug drawing.
package color

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is an OpenCV color in BGR channel order.
type Color struct {
	B, G, R uint8
}

// ToRGBA converts Color to the color.RGBA format gocv drawing calls
// expect.
func (c Color) ToRGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Common color constants.
var (
	Black   = Color{B: 0, G: 0, R: 0}
	White   = Color{B: 255, G: 255, R: 255}
	Red     = Color{B: 0, G: 0, R: 255}
	Green   = Color{B: 0, G: 128, R: 0}
	Lime    = Color{B: 0, G: 255, R: 0}
	Blue    = Color{B: 255, G: 0, R: 0}
	Cyan    = Color{B: 255, G: 255, R: 0}
	Magenta = Color{B: 255, G: 0, R: 255}
	Yellow  = Color{B: 0, G: 255, R: 255}
	Orange  = Color{B: 0, G: 165, R: 255}
)

// HexToBGR converts a hex color string to BGR Color. Both 3-char (#RGB)
// and 6-char (#RRGGBB) forms are accepted.
func HexToBGR(hex string) (Color, error) {
	hex = strings.TrimPrefix(hex, "#")

	parse := func(s string) (uint8, error) {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid hex color: %s", hex)
		}
		return uint8(v), nil
	}

	var rs, gs, bs string
	switch len(hex) {
	case 3:
		rs = string(hex[0]) + string(hex[0])
		gs = string(hex[1]) + string(hex[1])
		bs = string(hex[2]) + string(hex[2])
	case 6:
		rs, gs, bs = hex[0:2], hex[2:4], hex[4:6]
	default:
		return Color{}, fmt.Errorf("invalid hex color length: %s (expected 3 or 6 chars)", hex)
	}

	r, err := parse(rs)
	if err != nil {
		return Color{}, err
	}
	g, err := parse(gs)
	if err != nil {
		return Color{}, err
	}
	b, err := parse(bs)
	if err != nil {
		return Color{}, err
	}
	return Color{B: b, G: g, R: r}, nil
}

// LineStyle selects how overlay strokes are rendered.
type LineStyle int

const (
	Solid LineStyle = iota
	Dashed
	Dotted
)

// Pen is the stroke vocabulary for debug overlays.
type Pen struct {
	Color Color
	Width int
	Style LineStyle
}

// DefaultPen is a one-pixel solid lime stroke.
func DefaultPen() Pen {
	return Pen{Color: Lime, Width: 1, Style: Solid}
}
