package psycolor

import (
	"fmt"

	"github.com/gogpu/psycolor/transfer"
)

// Converter converts ColorValues between spaces.
//
// Conversions go through CIE XYZ (D65) unless a direct path is registered
// for the (source, target) pair. Converter is immutable after construction
// and safe for concurrent use; converting stimuli in parallel before they
// are submitted to the compositor is fine.
//
// Conversion is not lossless. Out-of-gamut results are passed through
// unclamped unless WithGamutClamp is set, and a value that leaves the target
// gamut will not survive a round trip. Repeated round trips also accumulate
// floating-point error. Only in-gamut values round-trip within a small
// epsilon.
type Converter struct {
	observer *Observer
	clamp    bool
}

// Option configures a Converter.
type Option func(*Converter)

// WithObserver supplies the cone and background calibration needed for LMS
// and DKL conversions.
func WithObserver(o *Observer) Option {
	return func(c *Converter) {
		c.observer = o
	}
}

// WithGamutClamp clamps every RGB result to [0,1]. Without it out-of-gamut
// values are returned as computed.
func WithGamutClamp() Option {
	return func(c *Converter) {
		c.clamp = true
	}
}

// NewConverter returns a Converter configured by opts.
//
// Example:
//
//	obs, _ := psycolor.HPEObserver(psycolor.Gray)
//	conv := psycolor.NewConverter(psycolor.WithObserver(obs))
//	dkl, err := conv.Convert(psycolor.Red, psycolor.DKLA)
func NewConverter(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// defaultConverter has no observer and does not clamp.
var defaultConverter = &Converter{}

// Convert converts v to target using a Converter without an Observer.
// LMS and DKL targets fail with ErrMissingCalibrationData.
func Convert(v ColorValue, target Space) (ColorValue, error) {
	return defaultConverter.Convert(v, target)
}

// Convert converts v to the target space. Alpha is copied unchanged.
func (c *Converter) Convert(v ColorValue, target Space) (ColorValue, error) {
	if !v.Space.Valid() || !target.Valid() {
		return ColorValue{}, fmt.Errorf("psycolor: convert %s to %s: %w", v.Space, target, ErrUnsupportedConversion)
	}
	out := v.C
	if v.Space != target {
		var err error
		out, err = c.convert(v.Space, target, v.C)
		if err != nil {
			return ColorValue{}, fmt.Errorf("psycolor: convert %s to %s: %w", v.Space, target, err)
		}
	}
	if c.clamp && target.IsRGB() {
		for i := range out {
			out[i] = transfer.Clamp01(out[i])
		}
	}
	return ColorValue{Space: target, C: out, A: v.A}, nil
}

// ToPremultipliedLinear converts v to a linear RGB working space and
// premultiplies the colour channels by alpha. This is the form rasterisers
// write into compositing layers. working must be LinearSRGBA or
// LinearDisplayP3RGBA.
func (c *Converter) ToPremultipliedLinear(v ColorValue, working Space) ([4]float32, error) {
	if working != LinearSRGBA && working != LinearDisplayP3RGBA {
		return [4]float32{}, fmt.Errorf("psycolor: %s is not a linear working space: %w", working, ErrUnsupportedConversion)
	}
	lin, err := c.Convert(v, working)
	if err != nil {
		return [4]float32{}, err
	}
	a := lin.A
	return [4]float32{lin.C[0] * a, lin.C[1] * a, lin.C[2] * a, a}, nil
}

func (c *Converter) convert(from, to Space, ch [3]float32) ([3]float32, error) {
	if f, ok := direct[pair{from, to}]; ok {
		return f(c.observer, ch)
	}
	xyz, err := toXYZ[from](c.observer, ch)
	if err != nil {
		return [3]float32{}, err
	}
	if to == XYZA {
		return xyz, nil
	}
	return fromXYZ[to](c.observer, xyz)
}

// toHub converts a value that needs no observer to XYZ (D65).
func toHub(v ColorValue) ([3]float32, error) {
	if !v.Space.Valid() {
		return [3]float32{}, ErrUnsupportedConversion
	}
	return toXYZ[v.Space](nil, v.C)
}

// convFunc converts three channels. The observer may be nil.
type convFunc func(o *Observer, c [3]float32) ([3]float32, error)

type pair struct {
	from, to Space
}

// direct holds conversions that skip the XYZ hub, either because they are
// cheaper or because they avoid matrix round-off.
var direct = map[pair]convFunc{
	{SRGBA, LinearSRGBA}:                 decodeWith(transfer.SRGB{}),
	{LinearSRGBA, SRGBA}:                 encodeWith(transfer.SRGB{}),
	{DisplayP3RGBA, LinearDisplayP3RGBA}: decodeWith(transfer.SRGB{}),
	{LinearDisplayP3RGBA, DisplayP3RGBA}: encodeWith(transfer.SRGB{}),
	{XYZA, YxyA}:                         xyzToYxy,
	{YxyA, XYZA}:                         yxyToXYZ,
	{LMSA, DKLA}:                         lmsToDKL,
	{DKLA, LMSA}:                         dklToLMS,
}

var toXYZ = [spaceCount]convFunc{
	SRGBA:               rgbToXYZ(SRGBA),
	LinearSRGBA:         rgbToXYZ(LinearSRGBA),
	XYZA:                identityConv,
	YxyA:                yxyToXYZ,
	DisplayP3RGBA:       rgbToXYZ(DisplayP3RGBA),
	LinearDisplayP3RGBA: rgbToXYZ(LinearDisplayP3RGBA),
	LMSA:                lmsToXYZ,
	DKLA:                chain(dklToLMS, lmsToXYZ),
	XYZD50A:             d50ToXYZ,
}

var fromXYZ = [spaceCount]convFunc{
	SRGBA:               xyzToRGB(SRGBA),
	LinearSRGBA:         xyzToRGB(LinearSRGBA),
	XYZA:                identityConv,
	YxyA:                xyzToYxy,
	DisplayP3RGBA:       xyzToRGB(DisplayP3RGBA),
	LinearDisplayP3RGBA: xyzToRGB(LinearDisplayP3RGBA),
	LMSA:                xyzToLMS,
	DKLA:                chain(xyzToLMS, lmsToDKL),
	XYZD50A:             xyzToD50,
}

func identityConv(_ *Observer, c [3]float32) ([3]float32, error) {
	return c, nil
}

func chain(a, b convFunc) convFunc {
	return func(o *Observer, c [3]float32) ([3]float32, error) {
		mid, err := a(o, c)
		if err != nil {
			return [3]float32{}, err
		}
		return b(o, mid)
	}
}

func decodeWith(f transfer.Function) convFunc {
	return func(_ *Observer, c [3]float32) ([3]float32, error) {
		return transfer.DecodeRGB(f, c), nil
	}
}

func encodeWith(f transfer.Function) convFunc {
	return func(_ *Observer, c [3]float32) ([3]float32, error) {
		return transfer.EncodeRGB(f, c), nil
	}
}

func rgbMatrix(s Space) ConversionMatrix {
	if s == DisplayP3RGBA || s == LinearDisplayP3RGBA {
		return matrixDisplayP3
	}
	return matrixSRGB
}

func rgbToXYZ(s Space) convFunc {
	tf := s.Transfer()
	return func(_ *Observer, c [3]float32) ([3]float32, error) {
		return apply(rgbMatrix(s).ToXYZ, transfer.DecodeRGB(tf, c)), nil
	}
}

func xyzToRGB(s Space) convFunc {
	tf := s.Transfer()
	return func(_ *Observer, c [3]float32) ([3]float32, error) {
		return transfer.EncodeRGB(tf, apply(rgbMatrix(s).FromXYZ, c)), nil
	}
}

// xyzToYxy returns (Y, x, y). Black has no chromaticity; it is given the
// D65 white chromaticity so it round-trips.
func xyzToYxy(_ *Observer, c [3]float32) ([3]float32, error) {
	sum := float64(c[0]) + float64(c[1]) + float64(c[2])
	if sum == 0 {
		return [3]float32{c[1], float32(WhiteD65.X), float32(WhiteD65.Y)}, nil
	}
	return [3]float32{c[1], float32(float64(c[0]) / sum), float32(float64(c[1]) / sum)}, nil
}

// yxyToXYZ maps (Y, x, y) to XYZ. y = 0 yields black.
func yxyToXYZ(_ *Observer, c [3]float32) ([3]float32, error) {
	lum, x, y := float64(c[0]), float64(c[1]), float64(c[2])
	if y == 0 {
		return [3]float32{}, nil
	}
	return [3]float32{float32(x * lum / y), float32(lum), float32((1 - x - y) * lum / y)}, nil
}

func d50ToXYZ(_ *Observer, c [3]float32) ([3]float32, error) {
	return applyMat(adaptD50ToD65, c), nil
}

func xyzToD50(_ *Observer, c [3]float32) ([3]float32, error) {
	return applyMat(adaptD65ToD50, c), nil
}

func xyzToLMS(o *Observer, c [3]float32) ([3]float32, error) {
	if o == nil {
		return [3]float32{}, ErrMissingCalibrationData
	}
	return o.xyzToLMS(c), nil
}

func lmsToXYZ(o *Observer, c [3]float32) ([3]float32, error) {
	if o == nil {
		return [3]float32{}, ErrMissingCalibrationData
	}
	return o.lmsToXYZ(c), nil
}

func lmsToDKL(o *Observer, c [3]float32) ([3]float32, error) {
	if o == nil || !o.hasBackground {
		return [3]float32{}, ErrMissingCalibrationData
	}
	return o.lmsToDKL(c), nil
}

func dklToLMS(o *Observer, c [3]float32) ([3]float32, error) {
	if o == nil || !o.hasBackground {
		return [3]float32{}, ErrMissingCalibrationData
	}
	return o.dklToLMS(c), nil
}
