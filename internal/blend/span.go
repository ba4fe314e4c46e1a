package blend

import "github.com/gogpu/psycolor/internal/color"

// Span composites src onto dst in place using mode. Opacity acts as
// coverage: the result is dst blended towards mode(src, dst) by opacity, so
// opacity 0 leaves dst untouched for every mode. For source-over this equals
// scaling src by opacity.
// src and dst must have the same length.
func Span(dst, src []color.Linear, mode Mode, opacity float32) {
	if opacity <= 0 {
		return
	}
	f := GetFunc(mode)
	if opacity >= 1 {
		for i := range dst {
			dst[i] = f(src[i], dst[i])
		}
		return
	}
	for i := range dst {
		dst[i] = lerp2(f(src[i], dst[i]), opacity, dst[i], 1-opacity)
	}
}

// Fill composites a single premultiplied colour onto every pixel of dst.
func Fill(dst []color.Linear, c color.Linear, mode Mode) {
	f := GetFunc(mode)
	for i := range dst {
		dst[i] = f(c, dst[i])
	}
}
