package compose

import (
	"errors"
	"image"
	stdcolor "image/color"
	"math"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/psycolor"
	"github.com/gogpu/psycolor/correction"
)

const epsilon = 1e-5

func near(a, b Pixel) bool {
	return math.Abs(float64(a.R-b.R)) < epsilon &&
		math.Abs(float64(a.G-b.G)) < epsilon &&
		math.Abs(float64(a.B-b.B)) < epsilon &&
		math.Abs(float64(a.A-b.A)) < epsilon
}

func filled(t *testing.T, w, h int, p Pixel) *Buffer {
	t.Helper()
	b, err := NewBuffer(w, h)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	b.Fill(p)
	return b
}

// gradient returns a buffer whose pixels all differ.
func gradient(t *testing.T, w, h int) *Buffer {
	t.Helper()
	b := filled(t, w, h, Pixel{})
	for y := range h {
		for x := range w {
			a := 0.25 + 0.75*float32(x)/float32(w)
			b.Set(x, y, Pixel{R: a * float32(y) / float32(h), G: a * 0.5, B: 0, A: a})
		}
	}
	return b
}

var (
	opaqueRed  = Pixel{R: 1, A: 1}
	opaqueBlue = Pixel{B: 1, A: 1}
)

func TestNewBuffer(t *testing.T) {
	if _, err := NewBuffer(0, 4); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("NewBuffer(0, 4) error = %v, want ErrInvalidDimensions", err)
	}
	b, err := NewBuffer(3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Pix) != 6 || len(b.Row(1)) != 3 {
		t.Errorf("buffer layout wrong: %d pixels, row %d", len(b.Pix), len(b.Row(1)))
	}
}

func TestCompositeSingleOpaqueLayerUnchanged(t *testing.T) {
	c := New(nil)
	src := filled(t, 4, 4, Pixel{R: 0.2, G: 0.4, B: 0.6, A: 1})
	src.Set(1, 2, Pixel{R: 1, G: 0, B: 0.5, A: 1})

	out, stats, err := c.Composite([]Layer{NewLayer(src)})
	if err != nil {
		t.Fatal(err)
	}
	for i := range src.Pix {
		if out.Pix[i] != src.Pix[i] {
			t.Fatalf("pixel %d = %+v, want %+v", i, out.Pix[i], src.Pix[i])
		}
	}
	if stats.Layers != 1 || stats.Model != correction.KindNone || stats.Corrected != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCompositeTransparentTopLeavesBottom(t *testing.T) {
	bottom := gradient(t, 8, 5)
	top := filled(t, 8, 5, Pixel{})
	out, _, err := New(nil).Composite([]Layer{NewLayer(bottom), NewLayer(top)})
	if err != nil {
		t.Fatal(err)
	}
	for i := range bottom.Pix {
		if !near(out.Pix[i], bottom.Pix[i]) {
			t.Fatalf("pixel %d = %+v, want %+v", i, out.Pix[i], bottom.Pix[i])
		}
	}
}

func TestCompositeRedOverBlue(t *testing.T) {
	out, _, err := New(nil).Composite([]Layer{
		NewLayer(filled(t, 2, 2, opaqueBlue)),
		NewLayer(filled(t, 2, 2, opaqueRed)),
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range out.Pix {
		if p != opaqueRed {
			t.Errorf("pixel %d = %+v, want red", i, p)
		}
	}
}

func TestCompositeOpacityAndModes(t *testing.T) {
	tests := []struct {
		name  string
		layer Layer
		want  Pixel
	}{
		{"half opacity", NewLayer(filled(t, 1, 1, opaqueRed)).WithOpacity(0.5), Pixel{R: 0.5, B: 0.5, A: 1}},
		{"zero opacity", NewLayer(filled(t, 1, 1, opaqueRed)).WithOpacity(0), opaqueBlue},
		{"opacity above one", NewLayer(filled(t, 1, 1, opaqueRed)).WithOpacity(3), opaqueRed},
		{"source", NewLayer(filled(t, 1, 1, Pixel{R: 0.5, A: 0.5})).WithMode(Source), Pixel{R: 0.5, A: 0.5}},
		{"plus", NewLayer(filled(t, 1, 1, opaqueRed)).WithMode(Plus), Pixel{R: 1, B: 1, A: 1}},
		{"multiply", NewLayer(filled(t, 1, 1, Pixel{R: 1, G: 1, B: 0.5, A: 1})).WithMode(Multiply), Pixel{B: 0.5, A: 1}},
		{"destination out", NewLayer(filled(t, 1, 1, opaqueRed)).WithMode(DestinationOut), Pixel{}},
		{"source atop", NewLayer(filled(t, 1, 1, opaqueRed)).WithMode(SourceAtop), opaqueRed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := New(nil).Composite([]Layer{NewLayer(filled(t, 1, 1, opaqueBlue)), tt.layer})
			if err != nil {
				t.Fatal(err)
			}
			if !near(out.Pix[0], tt.want) {
				t.Errorf("got %+v, want %+v", out.Pix[0], tt.want)
			}
		})
	}
}

func TestCompositeErrors(t *testing.T) {
	c := New(nil)
	if _, _, err := c.Composite(nil); !errors.Is(err, ErrNoLayers) {
		t.Errorf("empty layers error = %v, want ErrNoLayers", err)
	}
	_, _, err := c.Composite([]Layer{
		NewLayer(filled(t, 2, 2, opaqueRed)),
		NewLayer(filled(t, 3, 2, opaqueRed)),
	})
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("size mismatch error = %v, want ErrSizeMismatch", err)
	}
	if _, _, err := c.Composite([]Layer{{Mode: Normal}}); err == nil {
		t.Error("nil buffer should fail")
	}
}

// squareModel squares every channel and flags negatives.
type squareModel struct{}

func (squareModel) Kind() correction.Kind { return correction.KindPsychopy }

func (squareModel) Correct(rgb correction.RGB) (correction.RGB, error) {
	var err error
	if rgb.R < 0 {
		rgb.R, err = 0, psycolor.ErrInvalidCorrectionInput
	}
	return correction.RGB{R: rgb.R * rgb.R, G: rgb.G * rgb.G, B: rgb.B * rgb.B}, err
}

func TestCompositeAppliesCorrectionOnce(t *testing.T) {
	h := correction.NewHandle(squareModel{})
	src := filled(t, 3, 3, Pixel{R: 0.25, G: 0.25, B: 0.5, A: 0.5}) // straight (0.5, 0.5, 1)
	src.Set(0, 0, Pixel{})
	src.Set(1, 0, Pixel{R: -0.1, A: 1})

	out, stats, err := New(h).Composite([]Layer{NewLayer(src)})
	if err != nil {
		t.Fatal(err)
	}
	want := Pixel{R: 0.125, G: 0.125, B: 0.5, A: 0.5}
	if !near(out.At(2, 2), want) {
		t.Errorf("corrected = %+v, want %+v", out.At(2, 2), want)
	}
	if out.At(0, 0) != (Pixel{}) {
		t.Errorf("transparent pixel changed: %+v", out.At(0, 0))
	}
	if stats.Corrected != 8 || stats.InvalidInputs != 1 || stats.Model != correction.KindPsychopy {
		t.Errorf("stats = %+v", stats)
	}
}

// Coefficients of a polylog5 fit from a lab display.
var (
	labR = []float64{0.9972361456765942, 0.5718201120693766, 0.1494526003308258, 0.021348959590415988, 0.0016066519145011171, 4.956890077371443e-05}
	labG = []float64{1.0058002029776596, 0.5695706025327177, 0.14551632725612368, 0.020115266744271217, 0.0014548822571441762, 4.3086307473990124e-05}
	labB = []float64{1.0116733520722856, 0.5329488652553003, 0.11728724922990535, 0.012259928984426039, 0.000528402626505164, 4.086604661837748e-06}
)

func TestCompositeWithRealModels(t *testing.T) {
	lab, err := correction.NewPolyLog(5, labR, labG, labB)
	if err != nil {
		t.Fatal(err)
	}
	c := correction.PsychopyCoeffs{A: 0.05, B: 0.95, C: 2.2}
	psy, err := correction.NewPsychopy(c, c, c)
	if err != nil {
		t.Fatal(err)
	}
	nan := float32(math.NaN())
	bad := []Pixel{
		{R: 0, G: 0.5, B: 0.5, A: 1},
		{R: 0.5, G: nan, B: 0.5, A: 1},
		{R: nan, G: nan, B: nan, A: 1},
	}

	for _, m := range []correction.Model{lab, psy} {
		t.Run(m.Kind().String(), func(t *testing.T) {
			comp := New(correction.NewHandle(m), WithWorkers(2))
			defer comp.Close()
			src := filled(t, 8, 8, Pixel{R: 0.2, G: 0.3, B: 0.4, A: 0.8})

			_, stats, err := comp.Composite([]Layer{NewLayer(src)})
			if err != nil {
				t.Fatal(err)
			}
			if stats.Corrected != 64 || stats.InvalidInputs != 0 {
				t.Errorf("valid frame stats = %+v, want 64 corrected and no invalid inputs", stats)
			}

			for i, p := range bad {
				src.Set(i, 0, p)
			}
			out, stats, err := comp.Composite([]Layer{NewLayer(src)})
			if err != nil {
				t.Fatal(err)
			}
			// Zero is a valid input to the psychopy model.
			want := len(bad)
			if m.Kind() == correction.KindPsychopy {
				want = len(bad) - 1
			}
			if stats.InvalidInputs != want {
				t.Errorf("InvalidInputs = %d, want %d", stats.InvalidInputs, want)
			}
			for i, p := range out.Pix {
				for _, v := range []float32{p.R, p.G, p.B, p.A} {
					if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
						t.Fatalf("pixel %d = %+v is not finite", i, p)
					}
				}
			}
		})
	}
}

func TestZeroTransparencyLayerIsOpaque(t *testing.T) {
	layer := Layer{Buffer: filled(t, 1, 1, opaqueRed), Mode: Normal}
	if layer.Opacity() != 1 {
		t.Errorf("Opacity() = %v, want 1", layer.Opacity())
	}
	out, _, err := New(nil).Composite([]Layer{NewLayer(filled(t, 1, 1, opaqueBlue)), layer})
	if err != nil {
		t.Fatal(err)
	}
	if !near(out.Pix[0], opaqueRed) {
		t.Errorf("got %+v, want opaque red", out.Pix[0])
	}

	tests := []struct {
		transparency, want float32
	}{
		{-1, 1},
		{0.25, 0.75},
		{1, 0},
		{2, 0},
		{float32(math.NaN()), 1},
	}
	for _, tt := range tests {
		l := Layer{Transparency: tt.transparency}
		if got := l.Opacity(); math.Abs(float64(got-tt.want)) > epsilon {
			t.Errorf("Transparency %v: Opacity() = %v, want %v", tt.transparency, got, tt.want)
		}
	}
}

func TestCompositeParallelMatchesSerial(t *testing.T) {
	h := correction.NewHandle(squareModel{})
	layers := []Layer{NewLayer(gradient(t, 16, 37)), NewLayer(filled(t, 16, 37, Pixel{G: 0.1, A: 0.2}))}

	serial, s1, err := New(h).Composite(layers)
	if err != nil {
		t.Fatal(err)
	}
	c := New(h, WithWorkers(4))
	defer c.Close()
	par, s2, err := c.Composite(layers)
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Errorf("stats differ: %+v vs %+v", s1, s2)
	}
	for i := range serial.Pix {
		if serial.Pix[i] != par.Pix[i] {
			t.Fatalf("pixel %d differs: %+v vs %+v", i, serial.Pix[i], par.Pix[i])
		}
	}
}

func TestCompositeModelSwapBetweenFrames(t *testing.T) {
	h := correction.NewHandle(nil)
	c := New(h)
	layers := []Layer{NewLayer(filled(t, 2, 2, Pixel{R: 0.5, G: 0.5, B: 0.5, A: 1}))}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 100 {
			if i%2 == 0 {
				h.Store(squareModel{})
			} else {
				h.Store(nil)
			}
		}
	}()
	for range 50 {
		out, stats, err := c.Composite(layers)
		if err != nil {
			t.Fatal(err)
		}
		want := float32(0.5)
		if stats.Model != correction.KindNone {
			want = 0.25
		}
		for i, p := range out.Pix {
			if p.R != want {
				t.Fatalf("pixel %d R = %v under model %s: frame mixed models", i, p.R, stats.Model)
			}
		}
		c.Release(out)
	}
	wg.Wait()
}

func TestCorrectInPlace(t *testing.T) {
	c := New(correction.NewHandle(squareModel{}))
	b := filled(t, 2, 1, Pixel{R: 0.5, A: 1})
	stats := c.Correct(b)
	if stats.Corrected != 2 || b.At(0, 0).R != 0.25 {
		t.Errorf("Correct: stats %+v pixel %+v", stats, b.At(0, 0))
	}
}

func TestPoolReuse(t *testing.T) {
	p := NewPool(1)
	b, err := p.Get(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	b.Fill(opaqueRed)
	p.Put(b)
	p.Put(filled(t, 4, 4, opaqueRed))
	if p.Len() != 1 {
		t.Errorf("Len = %d, want 1 (bucket capacity)", p.Len())
	}
	again, _ := p.Get(4, 4)
	if again != b {
		t.Error("pool did not reuse buffer")
	}
	if again.At(0, 0) != (Pixel{}) {
		t.Error("reused buffer not cleared")
	}
	p.Put(nil)
}

func TestCompositorReleaseReuses(t *testing.T) {
	pool := NewPool(2)
	c := New(nil, WithPool(pool))
	layers := []Layer{NewLayer(filled(t, 2, 2, opaqueRed))}
	out, _, _ := c.Composite(layers)
	c.Release(out)
	next, _, _ := c.Composite(layers)
	if next != out {
		t.Error("composite did not reuse released buffer")
	}
}

func TestFillColorAndFillRect(t *testing.T) {
	b := filled(t, 4, 4, Pixel{})
	if err := b.FillColor(nil, psycolor.SRGB(0.5, 0.5, 0.5, 1)); err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(b.At(0, 0).R)-0.214) > 1e-3 {
		t.Errorf("mid grey linear = %v, want ~0.214", b.At(0, 0).R)
	}

	b.FillRect(-1, -1, 2, 2, opaqueRed)
	if b.At(1, 1) != opaqueRed || b.At(2, 2) == opaqueRed {
		t.Error("FillRect did not clip to rectangle")
	}

	err := b.FillColor(nil, psycolor.DKL(0.1, 0, 0, 1))
	if !errors.Is(err, psycolor.ErrMissingCalibrationData) {
		t.Errorf("DKL without observer error = %v", err)
	}
}

func TestFromImage(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
	rgba.SetRGBA(0, 0, stdcolor.RGBA{R: 255, A: 255})
	rgba.SetRGBA(1, 0, stdcolor.RGBA{G: 128, A: 128})

	b, err := FromImage(rgba)
	if err != nil {
		t.Fatal(err)
	}
	if !near(b.At(0, 0), opaqueRed) {
		t.Errorf("red = %+v", b.At(0, 0))
	}
	if g := b.At(1, 0); math.Abs(float64(g.G-g.A)) > 1e-3 {
		t.Errorf("half green should be full intensity premultiplied: %+v", g)
	}

	gray := image.NewGray(image.Rect(0, 0, 1, 1))
	gray.SetGray(0, 0, stdcolor.Gray{Y: 188})
	b, err = FromImage(gray)
	if err != nil {
		t.Fatal(err)
	}
	if r := b.At(0, 0).R; math.Abs(float64(r)-0.5) > 0.01 {
		t.Errorf("gray 188 linear = %v, want ~0.5", r)
	}

	sub := rgba.SubImage(image.Rect(1, 0, 2, 1))
	b, err = FromImage(sub)
	if err != nil {
		t.Fatal(err)
	}
	if b.Width != 1 || b.At(0, 0).R != 0 {
		t.Errorf("sub-image decode = %+v", b.At(0, 0))
	}
}

func TestToNRGBA(t *testing.T) {
	b := filled(t, 1, 1, Pixel{R: 0.214, G: 0.214, B: 0.214, A: 1})
	img := b.ToNRGBA()
	if r := img.Pix[0]; r < 127 || r > 128 {
		t.Errorf("R = %d, want ~128", r)
	}
}

func TestColorTarget(t *testing.T) {
	target := ColorTarget(gputypes.TextureFormatRGBA8Unorm)
	if target.Format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format = %v", target.Format)
	}
	if target.Blend == nil {
		t.Fatal("Blend is nil")
	}
	if *target.Blend != gputypes.BlendStatePremultiplied() {
		t.Error("Blend is not premultiplied source-over")
	}
	if target.WriteMask != gputypes.ColorWriteMaskAll {
		t.Errorf("WriteMask = %v", target.WriteMask)
	}
}

func TestParseBlendMode(t *testing.T) {
	m, err := ParseBlendMode("plus")
	if err != nil || m != Plus {
		t.Errorf("ParseBlendMode(plus) = %v, %v", m, err)
	}
}
