// Package compose is the compositing stage of the pipeline.
//
// Layers are premultiplied linear-light RGBA buffers. They are blended
// back to front in linear light and the display correction model is then
// applied exactly once to the result. Colours authored in any space reach
// a buffer through psycolor.Converter.ToPremultipliedLinear; LMS and DKL
// stimuli are converted before they get here, so blending only ever
// happens in linear RGB.
package compose

import (
	"errors"
	"fmt"

	"github.com/gogpu/psycolor"
	"github.com/gogpu/psycolor/internal/blend"
	"github.com/gogpu/psycolor/internal/color"
)

// Errors returned by the compositing stage.
var (
	// ErrNoLayers is returned when Composite is called with no layers.
	ErrNoLayers = errors.New("compose: no layers")

	// ErrSizeMismatch is returned when layers differ in size.
	ErrSizeMismatch = errors.New("compose: layer size mismatch")

	// ErrInvalidDimensions is returned for non-positive buffer sizes.
	ErrInvalidDimensions = errors.New("compose: invalid dimensions")
)

// Pixel is a premultiplied linear-light RGBA pixel.
type Pixel = color.Linear

// Buffer is a width x height grid of premultiplied linear pixels in
// row-major order.
type Buffer struct {
	Width, Height int
	Pix           []Pixel
}

// NewBuffer allocates a transparent buffer.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Buffer{Width: width, Height: height, Pix: make([]Pixel, width*height)}, nil
}

// At returns the pixel at (x, y).
func (b *Buffer) At(x, y int) Pixel {
	return b.Pix[y*b.Width+x]
}

// Set stores the pixel at (x, y).
func (b *Buffer) Set(x, y int, p Pixel) {
	b.Pix[y*b.Width+x] = p
}

// Row returns the pixels of row y.
func (b *Buffer) Row(y int) []Pixel {
	return b.Pix[y*b.Width : (y+1)*b.Width]
}

// Clear makes every pixel transparent.
func (b *Buffer) Clear() {
	clear(b.Pix)
}

// Fill replaces every pixel with p.
func (b *Buffer) Fill(p Pixel) {
	for i := range b.Pix {
		b.Pix[i] = p
	}
}

// FillRect composites p over the rectangle [x0,x1) x [y0,y1), clipped to
// the buffer.
func (b *Buffer) FillRect(x0, y0, x1, y1 int, p Pixel) {
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, b.Width), min(y1, b.Height)
	if x0 >= x1 {
		return
	}
	for y := y0; y < y1; y++ {
		blend.Fill(b.Row(y)[x0:x1], p, blend.ModeSourceOver)
	}
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{Width: b.Width, Height: b.Height, Pix: append([]Pixel(nil), b.Pix...)}
}

// sameSize reports whether b and o have the same dimensions.
func (b *Buffer) sameSize(o *Buffer) bool {
	return b.Width == o.Width && b.Height == o.Height
}

// FillColor converts v to premultiplied linear sRGB with conv and fills the
// buffer with it. A nil conv uses a converter without an observer, so LMS
// and DKL colours then fail with psycolor.ErrMissingCalibrationData.
func (b *Buffer) FillColor(conv *psycolor.Converter, v psycolor.ColorValue) error {
	p, err := PixelOf(conv, v)
	if err != nil {
		return err
	}
	b.Fill(p)
	return nil
}

// PixelOf converts v to a premultiplied linear sRGB pixel.
func PixelOf(conv *psycolor.Converter, v psycolor.ColorValue) (Pixel, error) {
	if conv == nil {
		conv = psycolor.NewConverter()
	}
	c, err := conv.ToPremultipliedLinear(v, psycolor.LinearSRGBA)
	if err != nil {
		return Pixel{}, err
	}
	return Pixel{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
}
