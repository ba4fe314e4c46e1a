package compose

import "github.com/gogpu/psycolor/internal/blend"

// BlendMode is the Porter-Duff operator used to composite a layer.
type BlendMode = blend.Mode

// Blend modes.
const (
	// Normal is source-over: out = src + dst*(1-srcA).
	Normal = blend.ModeSourceOver
	// Source replaces the destination.
	Source = blend.ModeSource
	// Plus adds source and destination.
	Plus = blend.ModePlus
	// Multiply multiplies source and destination component-wise.
	Multiply = blend.ModeModulate
	// DestinationOut erases the destination where the source is opaque.
	DestinationOut = blend.ModeDestinationOut
	// SourceAtop draws the source only where the destination exists.
	SourceAtop = blend.ModeSourceAtop
)

// ParseBlendMode parses a mode name such as "source-over" or "plus".
func ParseBlendMode(s string) (BlendMode, error) {
	return blend.ParseMode(s)
}

// Layer is one input of a composite: a buffer and the operator that blends
// it onto the layers below.
//
// Transparency fades the layer out and is clamped to [0,1]. Its zero value
// is opaque, so Layer{Buffer: b, Mode: Normal} composites b fully.
type Layer struct {
	Buffer       *Buffer
	Mode         BlendMode
	Transparency float32
}

// NewLayer returns an opaque Normal layer.
func NewLayer(b *Buffer) Layer {
	return Layer{Buffer: b, Mode: Normal}
}

// WithOpacity returns a copy of l with the given opacity, i.e. a
// transparency of 1-opacity.
func (l Layer) WithOpacity(opacity float32) Layer {
	l.Transparency = 1 - opacity
	return l
}

// WithMode returns a copy of l with the given blend mode.
func (l Layer) WithMode(m BlendMode) Layer {
	l.Mode = m
	return l
}

// Opacity returns the effective opacity, 1 minus the clamped transparency.
func (l Layer) Opacity() float32 {
	switch {
	case !(l.Transparency > 0):
		return 1
	case l.Transparency > 1:
		return 0
	}
	return 1 - l.Transparency
}
