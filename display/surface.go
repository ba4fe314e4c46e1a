package display

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/psycolor"
	"github.com/gogpu/psycolor/compose"
	"github.com/gogpu/psycolor/correction"
)

// ErrUnsupportedFormat is returned for unknown formats and for frames that
// cannot be viewed as an image.Image.
var ErrUnsupportedFormat = errors.New("display: unsupported format")

// Surface is a calibrated output of fixed size and format.
//
// Present is meant for the render goroutine; Recalibrate and Model may be
// called from any goroutine.
type Surface struct {
	width, height int
	format        Format
	handle        *correction.Handle
	compositor    *compose.Compositor
	logger        *slog.Logger
	workers       int
	pool          *compose.Pool
}

// Option configures a Surface.
type Option func(*Surface)

// WithLogger overrides the package logger for this surface.
func WithLogger(l *slog.Logger) Option {
	return func(s *Surface) {
		s.logger = l
	}
}

// WithWorkers splits compositing across n goroutines.
func WithWorkers(n int) Option {
	return func(s *Surface) {
		s.workers = n
	}
}

// WithPool shares a buffer pool between surfaces of the same size.
func WithPool(p *compose.Pool) Option {
	return func(s *Surface) {
		s.pool = p
	}
}

// NewSurface creates a surface using model for correction. A nil model
// means no correction.
func NewSurface(width, height int, format Format, model correction.Model, opts ...Option) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("display: invalid surface size %dx%d", width, height)
	}
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	s := &Surface{
		width:  width,
		height: height,
		format: format,
		handle: correction.NewHandle(model),
	}
	for _, opt := range opts {
		opt(s)
	}

	copts := []compose.Option{compose.WithWorkers(s.workers)}
	if s.logger != nil {
		copts = append(copts, compose.WithLogger(s.logger))
	}
	if s.pool != nil {
		copts = append(copts, compose.WithPool(s.pool))
	}
	s.compositor = compose.New(s.handle, copts...)

	s.log().Info("display: surface created",
		"width", width, "height", height, "format", format, "model", s.handle.Load().Kind())
	return s, nil
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.width }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.height }

// Format returns the pixel format.
func (s *Surface) Format() Format { return s.format }

// Model returns the active correction model.
func (s *Surface) Model() correction.Model {
	return s.handle.Load()
}

// Recalibrate replaces the correction model. Frames presented after it
// returns use the new model; a frame in progress finishes with the old one.
func (s *Surface) Recalibrate(model correction.Model) {
	old := s.handle.Swap(model)
	s.log().Info("display: recalibrated", "from", old.Kind(), "to", s.handle.Load().Kind())
}

// NewBuffer returns a transparent layer buffer of the surface size.
func (s *Surface) NewBuffer() *compose.Buffer {
	b, _ := compose.NewBuffer(s.width, s.height)
	return b
}

// Present composites layers, applies the correction model and encodes the
// result in the surface format.
func (s *Surface) Present(layers []compose.Layer) (*Frame, error) {
	for i, l := range layers {
		if l.Buffer != nil && (l.Buffer.Width != s.width || l.Buffer.Height != s.height) {
			return nil, fmt.Errorf("%w: layer %d is %dx%d, surface is %dx%d",
				compose.ErrSizeMismatch, i, l.Buffer.Width, l.Buffer.Height, s.width, s.height)
		}
	}
	buf, stats, err := s.compositor.Composite(layers)
	if err != nil {
		return nil, fmt.Errorf("display: present: %w", err)
	}
	defer s.compositor.Release(buf)

	bpp := s.format.BytesPerPixel()
	f := &Frame{
		Width:  s.width,
		Height: s.height,
		Format: s.format,
		Stride: s.width * bpp,
		Stats:  stats,
	}
	f.Pix = make([]byte, f.Stride*f.Height)
	srgb := stats.Model == correction.KindNone && !s.format.IsFloat()
	encodeRows(f.Pix, f.Stride, buf, encoderFor(s.format, srgb), bpp, 0, s.height)
	return f, nil
}

// GPUParams returns the correction uniform for the active model, for
// surfaces that run the correction pass on the GPU. Models the shader cannot
// evaluate return correction.ErrNoGPULayout.
func (s *Surface) GPUParams() (correction.Params, error) {
	return correction.ParamsFor(s.handle.Load())
}

// ColorTarget returns the render target state of the surface format.
func (s *Surface) ColorTarget() gputypes.ColorTargetState {
	return compose.ColorTarget(s.format.TextureFormat())
}

// Close releases worker goroutines.
func (s *Surface) Close() {
	s.compositor.Close()
}

func (s *Surface) log() *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return psycolor.Logger()
}
