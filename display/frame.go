package display

import (
	"encoding/binary"
	"fmt"
	"image"

	"github.com/x448/float16"

	"github.com/gogpu/psycolor/compose"
)

// Frame is one encoded frame. Pixels hold straight (non-premultiplied)
// alpha. Colour channels are drive values: sRGB encoded when the surface
// had no correction model, the model output otherwise, and linear for
// float formats.
type Frame struct {
	Width, Height int
	Format        Format
	Stride        int
	Pix           []byte
	Stats         compose.Stats
}

// RGBA returns the channels at (x, y) normalised to [0,1].
func (f *Frame) RGBA(x, y int) [4]float32 {
	o := y*f.Stride + x*f.Format.BytesPerPixel()
	p := f.Pix[o:]
	switch f.Format {
	case RGBA8Unorm:
		return [4]float32{unorm(uint32(p[0]), 8), unorm(uint32(p[1]), 8), unorm(uint32(p[2]), 8), unorm(uint32(p[3]), 8)}
	case BGRA8Unorm:
		return [4]float32{unorm(uint32(p[2]), 8), unorm(uint32(p[1]), 8), unorm(uint32(p[0]), 8), unorm(uint32(p[3]), 8)}
	case RGB10A2Unorm:
		v := binary.LittleEndian.Uint32(p)
		return [4]float32{unorm(v&0x3ff, 10), unorm(v>>10&0x3ff, 10), unorm(v>>20&0x3ff, 10), unorm(v>>30, 2)}
	default:
		var out [4]float32
		for i := range out {
			out[i] = float16.Frombits(binary.LittleEndian.Uint16(p[i*2:])).Float32()
		}
		return out
	}
}

func unorm(v uint32, bits uint) float32 {
	return float32(v) / float32(uint32(1)<<bits-1)
}

// Image returns the frame as an image. 8-bit frames become *image.NRGBA
// and 10-bit frames *image.NRGBA64. Float frames hold linear values that
// are not meaningful as an encoded image and return ErrUnsupportedFormat.
func (f *Frame) Image() (image.Image, error) {
	rect := image.Rect(0, 0, f.Width, f.Height)
	switch f.Format {
	case RGBA8Unorm, BGRA8Unorm:
		img := image.NewNRGBA(rect)
		for y := range f.Height {
			src := f.Pix[y*f.Stride : y*f.Stride+f.Width*4]
			dst := img.Pix[y*img.Stride:]
			copy(dst, src)
			if f.Format == BGRA8Unorm {
				for x := 0; x < len(src); x += 4 {
					dst[x], dst[x+2] = dst[x+2], dst[x]
				}
			}
		}
		return img, nil
	case RGB10A2Unorm:
		img := image.NewNRGBA64(rect)
		for y := range f.Height {
			for x := range f.Width {
				c := f.RGBA(x, y)
				o := y*img.Stride + x*8
				for i, v := range c {
					binary.BigEndian.PutUint16(img.Pix[o+i*2:], uint16(v*65535+0.5))
				}
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("%w: %s frame has no image view", ErrUnsupportedFormat, f.Format)
	}
}
