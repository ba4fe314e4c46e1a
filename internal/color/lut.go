package color

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/psycolor/transfer"
)

// decodeLUT maps an sRGB byte to linear light.
var decodeLUT [256]float32

// encodeLUT maps a 12-bit linear value to an sRGB byte.
// 4096 entries are enough for 8-bit output.
var encodeLUT [4096]uint8

func init() {
	var f transfer.SRGB
	for i := range decodeLUT {
		decodeLUT[i] = f.Decode(float32(i) / 255)
	}
	for i := range encodeLUT {
		encodeLUT[i] = Quantize8(f.Encode(float32(i) / 4095))
	}
}

// DecodeSRGB8 converts an sRGB byte to linear light using a lookup table.
func DecodeSRGB8(s uint8) float32 {
	return decodeLUT[s]
}

// EncodeSRGB8 converts linear light to an sRGB byte using a lookup table.
// Input is clamped to [0,1]; NaN maps to 0.
func EncodeSRGB8(l float32) uint8 {
	l = transfer.Clamp01(l)
	return encodeLUT[int(l*4095+0.5)]
}

// EncodeSRGB8Exact converts linear light to an sRGB byte by evaluating the
// OETF. Unlike EncodeSRGB8 it never differs from rounding the exact curve,
// which matters near black where the 12-bit table is too coarse.
// Input is clamped to [0,1]; NaN maps to 0.
func EncodeSRGB8Exact(l float32) uint8 {
	var f transfer.SRGB
	return Quantize8(f.Encode(transfer.Clamp01(l)))
}

// Quantize8 clamps v to [0,1] and rounds it to a byte.
func Quantize8(v float32) uint8 {
	return uint8(QuantizeUnorm(v, 8))
}

// QuantizeUnorm clamps v to [0,1] and rounds it to an unsigned normalised
// integer of the given bit depth. NaN maps to 0.
func QuantizeUnorm(v float32, bits uint) uint32 {
	top := float32(uint32(1)<<bits - 1)
	v = transfer.Clamp01(v)
	return uint32(math32.Round(v * top))
}

// DecodeSRGBPremultiplied converts an 8-bit premultiplied sRGB pixel, as
// stored by image.RGBA, to premultiplied linear light.
func DecodeSRGBPremultiplied(c U8) Linear {
	if c.A == 0 {
		return Linear{}
	}
	a := float32(c.A) / 255
	if c.A == 255 {
		return Linear{R: decodeLUT[c.R], G: decodeLUT[c.G], B: decodeLUT[c.B], A: 1}
	}
	var f transfer.SRGB
	return Premultiply(
		f.Decode(float32(c.R)/255/a),
		f.Decode(float32(c.G)/255/a),
		f.Decode(float32(c.B)/255/a),
		a,
	)
}

// DecodeSRGBStraight converts an 8-bit straight-alpha sRGB pixel, as
// stored by image.NRGBA, to premultiplied linear light.
func DecodeSRGBStraight(c U8) Linear {
	return Premultiply(decodeLUT[c.R], decodeLUT[c.G], decodeLUT[c.B], float32(c.A)/255)
}

// EncodeSRGBStraight converts a premultiplied linear pixel to 8-bit
// straight-alpha sRGB.
func EncodeSRGBStraight(p Linear) U8 {
	r, g, b := p.Unpremultiply()
	return U8{R: EncodeSRGB8(r), G: EncodeSRGB8(g), B: EncodeSRGB8(b), A: Quantize8(p.A)}
}
