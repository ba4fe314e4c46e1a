// Package display presents composited frames to a calibrated output.
//
// A Surface owns the correction model of one display. It composites layers,
// applies the model once per frame and encodes the result into the
// surface's pixel format. Recalibrating swaps the model atomically; a frame
// already being presented keeps the model it started with.
package display

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Format is the pixel format of a presented frame.
type Format uint8

const (
	// RGBA8Unorm stores 8 bits per channel in R, G, B, A byte order.
	RGBA8Unorm Format = iota
	// BGRA8Unorm stores 8 bits per channel in B, G, R, A byte order, the
	// common swapchain format.
	BGRA8Unorm
	// RGB10A2Unorm packs 10 bits per colour channel and 2 bits of alpha
	// into a little-endian uint32, red in the low bits.
	RGB10A2Unorm
	// RGBA16Float stores linear half floats.
	RGBA16Float
	formatCount
)

var formatNames = [formatCount]string{"rgba8unorm", "bgra8unorm", "rgb10a2unorm", "rgba16float"}

// String returns the WebGPU-style name of the format.
func (f Format) String() string {
	if f < formatCount {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// ParseFormat parses a format name as written by String.
func ParseFormat(s string) (Format, error) {
	for i, name := range formatNames {
		if name == s {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("display: unknown format %q", s)
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f < formatCount
}

// TextureFormat returns the matching GPU texture format.
func (f Format) TextureFormat() gputypes.TextureFormat {
	switch f {
	case RGBA8Unorm:
		return gputypes.TextureFormatRGBA8Unorm
	case BGRA8Unorm:
		return gputypes.TextureFormatBGRA8Unorm
	case RGB10A2Unorm:
		return gputypes.TextureFormatRGB10A2Unorm
	case RGBA16Float:
		return gputypes.TextureFormatRGBA16Float
	default:
		return gputypes.TextureFormatUndefined
	}
}

// BitsPerChannel returns the colour channel depth.
func (f Format) BitsPerChannel() int {
	switch f {
	case RGB10A2Unorm:
		return 10
	case RGBA16Float:
		return 16
	default:
		return 8
	}
}

// BytesPerPixel returns the size of one pixel.
func (f Format) BytesPerPixel() int {
	if f == RGBA16Float {
		return 8
	}
	return 4
}

// IsFloat reports whether the format stores floating point values.
func (f Format) IsFloat() bool {
	return f == RGBA16Float
}
