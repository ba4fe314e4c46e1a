package display

import (
	"encoding/binary"

	"github.com/x448/float16"

	"github.com/gogpu/psycolor/compose"
	"github.com/gogpu/psycolor/internal/color"
	"github.com/gogpu/psycolor/transfer"
)

// encoder writes one straight-alpha pixel into dst.
type encoder func(dst []byte, r, g, b, a float32)

// encoderFor picks the encoder of a format. srgb selects the sRGB OETF for
// unorm formats; it is set when no correction model produced drive values.
func encoderFor(f Format, srgb bool) encoder {
	switch f {
	case RGBA8Unorm:
		if srgb {
			return func(dst []byte, r, g, b, a float32) {
				dst[0], dst[1], dst[2], dst[3] = color.EncodeSRGB8Exact(r), color.EncodeSRGB8Exact(g), color.EncodeSRGB8Exact(b), color.Quantize8(a)
			}
		}
		return func(dst []byte, r, g, b, a float32) {
			dst[0], dst[1], dst[2], dst[3] = color.Quantize8(r), color.Quantize8(g), color.Quantize8(b), color.Quantize8(a)
		}
	case BGRA8Unorm:
		rgba := encoderFor(RGBA8Unorm, srgb)
		return func(dst []byte, r, g, b, a float32) {
			rgba(dst, b, g, r, a)
		}
	case RGB10A2Unorm:
		return func(dst []byte, r, g, b, a float32) {
			if srgb {
				var f transfer.SRGB
				r, g, b = f.Encode(r), f.Encode(g), f.Encode(b)
			}
			v := color.QuantizeUnorm(r, 10) |
				color.QuantizeUnorm(g, 10)<<10 |
				color.QuantizeUnorm(b, 10)<<20 |
				color.QuantizeUnorm(a, 2)<<30
			binary.LittleEndian.PutUint32(dst, v)
		}
	default:
		return func(dst []byte, r, g, b, a float32) {
			for i, v := range [4]float32{r, g, b, a} {
				binary.LittleEndian.PutUint16(dst[i*2:], float16.Fromfloat32(transfer.Clamp01(v)).Bits())
			}
		}
	}
}

// encodeRows encodes rows [y0, y1) of buf into pix.
func encodeRows(pix []byte, stride int, buf *compose.Buffer, enc encoder, bpp, y0, y1 int) {
	for y := y0; y < y1; y++ {
		row := pix[y*stride:]
		for x, p := range buf.Row(y) {
			r, g, b := p.Unpremultiply()
			enc(row[x*bpp:], r, g, b, p.A)
		}
	}
}
