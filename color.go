package psycolor

import "fmt"

// ColorValue is a colour tagged with the space its channels are expressed in.
//
// There is deliberately no untagged RGB type: the same three numbers mean
// different colours in different spaces, so every value that crosses an API
// boundary carries its Space. Alpha is always linear coverage in [0,1] and is
// never touched by conversion.
type ColorValue struct {
	Space Space
	C     [3]float32
	A     float32
}

// New returns a ColorValue in space s.
func New(s Space, c0, c1, c2, a float32) ColorValue {
	return ColorValue{Space: s, C: [3]float32{c0, c1, c2}, A: a}
}

// SRGB returns an sRGB colour with channels in [0,1].
func SRGB(r, g, b, a float32) ColorValue { return New(SRGBA, r, g, b, a) }

// LinearSRGB returns a linear sRGB colour.
func LinearSRGB(r, g, b, a float32) ColorValue { return New(LinearSRGBA, r, g, b, a) }

// XYZ returns a CIE XYZ (D65) colour.
func XYZ(x, y, z, a float32) ColorValue { return New(XYZA, x, y, z, a) }

// Yxy returns a colour from luminance Y and chromaticity (x, y).
func Yxy(lum, x, y, a float32) ColorValue { return New(YxyA, lum, x, y, a) }

// DisplayP3 returns a Display P3 colour with the sRGB transfer function applied.
func DisplayP3(r, g, b, a float32) ColorValue { return New(DisplayP3RGBA, r, g, b, a) }

// LinearDisplayP3 returns a linear Display P3 colour.
func LinearDisplayP3(r, g, b, a float32) ColorValue { return New(LinearDisplayP3RGBA, r, g, b, a) }

// LMS returns a colour given as cone excitations.
func LMS(l, m, s, a float32) ColorValue { return New(LMSA, l, m, s, a) }

// DKL returns a colour in DKL cone-contrast coordinates.
func DKL(lum, lm, s, a float32) ColorValue { return New(DKLA, lum, lm, s, a) }

// XYZD50 returns a CIE XYZ colour relative to D50.
func XYZD50(x, y, z, a float32) ColorValue { return New(XYZD50A, x, y, z, a) }

// SRGBHex returns an opaque sRGB colour from a 0xRRGGBB value.
//
// Example:
//
//	red := psycolor.SRGBHex(0xff0000)
func SRGBHex(hex uint32) ColorValue {
	return SRGB(
		float32((hex>>16)&0xff)/255,
		float32((hex>>8)&0xff)/255,
		float32(hex&0xff)/255,
		1,
	)
}

// The basic colour keywords of CSS Color Module Level 4, in sRGB.
var (
	Black       = SRGBHex(0x000000)
	Silver      = SRGBHex(0xC0C0C0)
	Gray        = SRGBHex(0x808080)
	White       = SRGBHex(0xFFFFFF)
	Maroon      = SRGBHex(0x800000)
	Red         = SRGBHex(0xFF0000)
	Purple      = SRGBHex(0x800080)
	Fuchsia     = SRGBHex(0xFF00FF)
	Green       = SRGBHex(0x008000)
	Lime        = SRGBHex(0x00FF00)
	Olive       = SRGBHex(0x808000)
	Yellow      = SRGBHex(0xFFFF00)
	Navy        = SRGBHex(0x000080)
	Blue        = SRGBHex(0x0000FF)
	Teal        = SRGBHex(0x008080)
	Aqua        = SRGBHex(0x00FFFF)
	Transparent = SRGB(0, 0, 0, 0)
)

// WithAlpha returns a copy of c with alpha set to a.
func (c ColorValue) WithAlpha(a float32) ColorValue {
	c.A = a
	return c
}

// String implements fmt.Stringer.
func (c ColorValue) String() string {
	return fmt.Sprintf("%s(%g, %g, %g, %g)", c.Space, c.C[0], c.C[1], c.C[2], c.A)
}

// InGamut reports whether an RGB value lies inside [0,1] on every channel.
// Values in non-RGB spaces are reported as in gamut; convert them to the
// target RGB space first.
func InGamut(c ColorValue) bool {
	if !c.Space.IsRGB() {
		return true
	}
	for _, v := range c.C {
		if v < 0 || v > 1 {
			return false
		}
	}
	return true
}
