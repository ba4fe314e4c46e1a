// Package transfer implements the transfer functions (EOTF/OETF pairs) of
// the RGB colour spaces supported by psycolor.
//
// Decode maps an encoded signal to linear light (EOTF) and Encode maps
// linear light back to the encoded signal (OETF). Both operate on a single
// channel; alpha is always linear and never passes through a transfer function.
//
// Inputs are not clamped. Values below 0 or above 1 are passed through so
// that wide-gamut and HDR intermediates survive a decode/encode cycle.
// Wrap a function with Clamped to opt into clamping.
//
// References:
//   - IEC 61966-2-1:1999 (sRGB)
//   - W3C CSS Color Module Level 4, section 10 (extended transfer functions)
package transfer

import "math"

// Function is a per-channel transfer function.
type Function interface {
	// Encode converts a linear value to its encoded form (OETF).
	Encode(linear float32) float32
	// Decode converts an encoded value to linear light (EOTF).
	Decode(encoded float32) float32
}

// sRGB piecewise constants.
const (
	srgbDecodeThreshold = 0.04045
	srgbEncodeThreshold = 0.0031308
	srgbSlope           = 12.92
	srgbOffset          = 0.055
	srgbScale           = 1.055
	srgbExponent        = 2.4
)

// SRGB is the sRGB transfer function. Display P3 uses the same curve.
type SRGB struct{}

// Decode implements the sRGB EOTF.
// Formula: if c <= 0.04045: c/12.92; else: ((c+0.055)/1.055)^2.4
func (SRGB) Decode(c float32) float32 {
	if c <= srgbDecodeThreshold {
		return c / srgbSlope
	}
	return float32(math.Pow(float64((c+srgbOffset)/srgbScale), srgbExponent))
}

// Encode implements the sRGB OETF.
// Formula: if l <= 0.0031308: l*12.92; else: 1.055*l^(1/2.4)-0.055
func (SRGB) Encode(l float32) float32 {
	if l <= srgbEncodeThreshold {
		return l * srgbSlope
	}
	return float32(srgbScale*math.Pow(float64(l), 1/srgbExponent) - srgbOffset)
}

// Linear is the identity transfer function used by linear RGB spaces.
type Linear struct{}

// Decode returns c unchanged.
func (Linear) Decode(c float32) float32 { return c }

// Encode returns l unchanged.
func (Linear) Encode(l float32) float32 { return l }

// Gamma is a pure power-law transfer function with the given exponent,
// for example 2.6 for DCI-P3 projection. Negative values are mirrored
// around zero so the function stays odd and invertible.
type Gamma float32

// Decode returns sign(c) * |c|^g.
func (g Gamma) Decode(c float32) float32 {
	return signedPow(c, float64(g))
}

// Encode returns sign(l) * |l|^(1/g).
func (g Gamma) Encode(l float32) float32 {
	return signedPow(l, 1/float64(g))
}

func signedPow(v float32, e float64) float32 {
	if v < 0 {
		return -float32(math.Pow(float64(-v), e))
	}
	return float32(math.Pow(float64(v), e))
}

// clamped wraps a Function and clamps its inputs to [0,1].
type clamped struct {
	f Function
}

// Clamped returns a Function that clamps inputs to [0,1] before delegating
// to f. Use it when the caller wants gamut clipping at the transfer stage.
func Clamped(f Function) Function {
	if c, ok := f.(clamped); ok {
		return c
	}
	return clamped{f: f}
}

func (c clamped) Decode(v float32) float32 { return c.f.Decode(Clamp01(v)) }
func (c clamped) Encode(v float32) float32 { return c.f.Encode(Clamp01(v)) }

// EncodeRGB encodes three linear channels.
func EncodeRGB(f Function, rgb [3]float32) [3]float32 {
	return [3]float32{f.Encode(rgb[0]), f.Encode(rgb[1]), f.Encode(rgb[2])}
}

// DecodeRGB decodes three encoded channels.
func DecodeRGB(f Function, rgb [3]float32) [3]float32 {
	return [3]float32{f.Decode(rgb[0]), f.Decode(rgb[1]), f.Decode(rgb[2])}
}

// Clamp01 clamps v to [0,1]. NaN maps to 0.
func Clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
