// Package correction implements per-display photometric correction models.
//
// A Model maps the theoretical linear RGB produced by compositing to the
// drive values a particular display needs to emit that light. Models are
// fit by external calibration tooling, constructed once, and never mutated;
// the owning surface publishes them through a Handle so a recalibration is
// an atomic swap that can never be observed half-way through a frame.
//
// The numeric Kind codes match the GPU uniform consumed by
// shaders/correction.wgsl.
package correction

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/gogpu/psycolor"
)

// Kind identifies a correction model.
type Kind uint32

const (
	// KindNone applies no correction.
	KindNone Kind = iota
	// KindPsychopy is PsychoPy's generalised gamma with black-level offset.
	KindPsychopy
	// KindPolyLog4 is a degree 4 polynomial in log(v).
	KindPolyLog4
	// KindPolyLog5 is a degree 5 polynomial in log(v).
	KindPolyLog5
	// KindPolyLog6 is a degree 6 polynomial in log(v).
	KindPolyLog6
)

var kindNames = map[Kind]string{
	KindNone:     "none",
	KindPsychopy: "psychopy",
	KindPolyLog4: "polylog4",
	KindPolyLog5: "polylog5",
	KindPolyLog6: "polylog6",
}

// String returns the lower case name used in profiles.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint32(k))
}

// ParseKind parses a kind name as written by String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("correction: unknown model kind %q", s)
}

// RGB is an unpremultiplied linear RGB triple.
type RGB struct {
	R, G, B float32
}

// Model is a display correction model.
//
// Correct always returns a finite, usable result. A non-nil error wraps
// psycolor.ErrInvalidCorrectionInput and means at least one channel was
// repaired before evaluation; callers count it and carry on.
// Results are not clamped; the output surface clamps to [0,1].
type Model interface {
	Kind() Kind
	Correct(rgb RGB) (RGB, error)
}

// errInvalidInput is shared so the per-pixel path never allocates.
var errInvalidInput = fmt.Errorf("correction: %w", psycolor.ErrInvalidCorrectionInput)

// None is the identity model.
type None struct{}

// Kind implements Model.
func (None) Kind() Kind { return KindNone }

// Correct returns rgb unchanged.
func (None) Correct(rgb RGB) (RGB, error) { return rgb, nil }

// channelFunc evaluates one channel. repaired is true when the input (or
// the result) had to be replaced to stay finite.
type channelFunc func(ch int, v float32) (out float32, repaired bool)

func correctChannels(rgb RGB, f channelFunc) (RGB, error) {
	r, fixR := f(0, rgb.R)
	g, fixG := f(1, rgb.G)
	b, fixB := f(2, rgb.B)
	out := RGB{R: r, G: g, B: b}
	if fixR || fixG || fixB {
		return out, errInvalidInput
	}
	return out, nil
}

// finite replaces NaN and -Inf with lo and +Inf with hi. repaired is true
// when a replacement was made.
func finite(v, lo, hi float32) (out float32, repaired bool) {
	switch {
	case math32.IsNaN(v), math32.IsInf(v, -1):
		return lo, true
	case math32.IsInf(v, 1):
		return hi, true
	}
	return v, false
}
