package compose

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/psycolor"
	"github.com/gogpu/psycolor/correction"
	"github.com/gogpu/psycolor/internal/blend"
	"github.com/gogpu/psycolor/internal/color"
	"github.com/gogpu/psycolor/internal/parallel"
)

// Stats describes one composite.
type Stats struct {
	// Layers is the number of layers blended.
	Layers int
	// Model is the correction model applied.
	Model correction.Kind
	// Corrected is the number of non-transparent pixels passed through the model.
	Corrected int
	// InvalidInputs counts pixels the model had to repair. They are still
	// written; the count is a calibration diagnostic.
	InvalidInputs int
}

// Compositor blends layers and applies the display correction.
//
// A Compositor is intended for one render goroutine. The correction model
// may be swapped through its Handle from any goroutine; each Composite call
// loads it exactly once.
type Compositor struct {
	handle  *correction.Handle
	pool    *Pool
	workers *parallel.WorkerPool
	logger  *slog.Logger
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithPool sets the buffer pool composites are drawn from.
func WithPool(p *Pool) Option {
	return func(c *Compositor) {
		c.pool = p
	}
}

// WithLogger overrides the package logger for this compositor.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compositor) {
		c.logger = l
	}
}

// WithWorkers splits blending and correction across n goroutines.
// n <= 1 keeps everything on the calling goroutine.
func WithWorkers(n int) Option {
	return func(c *Compositor) {
		if n > 1 {
			c.workers = parallel.NewWorkerPool(n)
		}
	}
}

// New returns a Compositor applying the model held by handle. A nil handle
// means no correction.
func New(handle *correction.Handle, opts ...Option) *Compositor {
	if handle == nil {
		handle = correction.NewHandle(nil)
	}
	c := &Compositor{handle: handle}
	for _, opt := range opts {
		opt(c)
	}
	if c.pool == nil {
		c.pool = NewPool(4)
	}
	return c
}

// Handle returns the correction handle the compositor reads.
func (c *Compositor) Handle() *correction.Handle {
	return c.handle
}

// Close stops any worker goroutines.
func (c *Compositor) Close() {
	if c.workers != nil {
		c.workers.Close()
	}
}

// Release returns a composite to the pool once it has been presented.
func (c *Compositor) Release(b *Buffer) {
	c.pool.Put(b)
}

// Composite blends layers back to front onto a transparent buffer and
// applies the current correction model once. The result holds premultiplied
// drive values and belongs to the caller until passed to Release.
func (c *Compositor) Composite(layers []Layer) (*Buffer, Stats, error) {
	if len(layers) == 0 {
		return nil, Stats{}, ErrNoLayers
	}
	first := layers[0].Buffer
	for i, l := range layers {
		if l.Buffer == nil {
			return nil, Stats{}, fmt.Errorf("compose: layer %d has no buffer", i)
		}
		if !l.Buffer.sameSize(first) {
			return nil, Stats{}, fmt.Errorf("%w: layer %d is %dx%d, want %dx%d",
				ErrSizeMismatch, i, l.Buffer.Width, l.Buffer.Height, first.Width, first.Height)
		}
	}

	out, err := c.pool.Get(first.Width, first.Height)
	if err != nil {
		return nil, Stats{}, err
	}

	model := c.handle.Load()
	stats := Stats{Layers: len(layers), Model: model.Kind()}
	counts := make([]Stats, c.bands(out.Height))

	c.rows(out.Height, func(band, y0, y1 int) {
		lo, hi := y0*out.Width, y1*out.Width
		for _, l := range layers {
			blend.Span(out.Pix[lo:hi], l.Buffer.Pix[lo:hi], l.Mode, l.Opacity())
		}
		counts[band] = correct(out.Pix[lo:hi], model)
	})

	for _, s := range counts {
		stats.Corrected += s.Corrected
		stats.InvalidInputs += s.InvalidInputs
	}
	if stats.InvalidInputs > 0 {
		c.log().Debug("compose: repaired correction inputs",
			"model", stats.Model, "pixels", stats.InvalidInputs)
	}
	return out, stats, nil
}

// Correct applies the current model to b in place. It is for buffers that
// were composited elsewhere, such as on the GPU without the correction pass.
func (c *Compositor) Correct(b *Buffer) Stats {
	model := c.handle.Load()
	stats := Stats{Model: model.Kind()}
	counts := make([]Stats, c.bands(b.Height))
	c.rows(b.Height, func(band, y0, y1 int) {
		counts[band] = correct(b.Pix[y0*b.Width:y1*b.Width], model)
	})
	for _, s := range counts {
		stats.Corrected += s.Corrected
		stats.InvalidInputs += s.InvalidInputs
	}
	return stats
}

// correct unpremultiplies, corrects and re-premultiplies each visible pixel.
func correct(pix []Pixel, model correction.Model) Stats {
	var s Stats
	if model.Kind() == correction.KindNone {
		return s
	}
	for i, p := range pix {
		if p.A <= 0 {
			continue
		}
		r, g, b := p.Unpremultiply()
		rgb, err := model.Correct(correction.RGB{R: r, G: g, B: b})
		if err != nil && errors.Is(err, psycolor.ErrInvalidCorrectionInput) {
			s.InvalidInputs++
		}
		pix[i] = color.Premultiply(rgb.R, rgb.G, rgb.B, p.A)
		s.Corrected++
	}
	return s
}

func (c *Compositor) bands(height int) int {
	if c.workers == nil {
		return 1
	}
	return c.workers.Bands(height)
}

func (c *Compositor) rows(height int, fn func(band, y0, y1 int)) {
	if c.workers == nil {
		fn(0, 0, height)
		return
	}
	c.workers.Rows(height, fn)
}

func (c *Compositor) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return psycolor.Logger()
}
