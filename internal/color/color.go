// Package color holds the pixel-level colour helpers shared by the
// compositor and the display surfaces: premultiplied linear pixels,
// sRGB lookup tables and unorm quantisation.
package color

// Linear is a premultiplied linear-light RGBA pixel.
// Alpha is always linear and R, G, B are already multiplied by it.
type Linear struct {
	R, G, B, A float32
}

// Premultiply returns a premultiplied pixel from straight linear RGB and alpha.
func Premultiply(r, g, b, a float32) Linear {
	return Linear{R: r * a, G: g * a, B: b * a, A: a}
}

// Unpremultiply returns the straight RGB of p. A fully transparent pixel
// has no colour and yields zeros.
func (p Linear) Unpremultiply() (r, g, b float32) {
	if p.A <= 0 {
		return 0, 0, 0
	}
	inv := 1 / p.A
	return p.R * inv, p.G * inv, p.B * inv
}

// Scale multiplies every component, alpha included, by k.
func (p Linear) Scale(k float32) Linear {
	return Linear{R: p.R * k, G: p.G * k, B: p.B * k, A: p.A * k}
}

// U8 is an 8-bit RGBA pixel. Whether it is premultiplied or encoded is
// given by context.
type U8 struct {
	R, G, B, A uint8
}
