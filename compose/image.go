package compose

import (
	"image"
	stdcolor "image/color"

	"github.com/gogpu/psycolor/internal/color"
)

// FromImage decodes an 8-bit sRGB image into a premultiplied linear buffer.
// Pixel formats other than RGBA and NRGBA go through color.NRGBAModel.
func FromImage(img image.Image) (*Buffer, error) {
	bounds := img.Bounds()
	buf, err := NewBuffer(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}

	switch src := img.(type) {
	case *image.RGBA:
		for y := range buf.Height {
			row := src.Pix[y*src.Stride:]
			for x := range buf.Width {
				o := x * 4
				buf.Set(x, y, color.DecodeSRGBPremultiplied(color.U8{R: row[o], G: row[o+1], B: row[o+2], A: row[o+3]}))
			}
		}
	case *image.NRGBA:
		for y := range buf.Height {
			row := src.Pix[y*src.Stride:]
			for x := range buf.Width {
				o := x * 4
				buf.Set(x, y, color.DecodeSRGBStraight(color.U8{R: row[o], G: row[o+1], B: row[o+2], A: row[o+3]}))
			}
		}
	default:
		return fromGeneric(img, buf), nil
	}
	return buf, nil
}

func fromGeneric(img image.Image, buf *Buffer) *Buffer {
	b := img.Bounds()
	for y := range buf.Height {
		for x := range buf.Width {
			c := stdcolor.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(stdcolor.NRGBA)
			buf.Set(x, y, color.DecodeSRGBStraight(color.U8{R: c.R, G: c.G, B: c.B, A: c.A}))
		}
	}
	return buf
}

// ToNRGBA encodes b as 8-bit straight-alpha sRGB. It is meant for
// inspecting linear buffers; display surfaces do their own encoding.
func (b *Buffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := range b.Height {
		for x, p := range b.Row(y) {
			c := color.EncodeSRGBStraight(p)
			o := y*img.Stride + x*4
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = c.R, c.G, c.B, c.A
		}
	}
	return img
}
