// Command psycolor renders a calibration test pattern through the colour
// pipeline and writes the presented frame as a PNG.
//
// The pattern is a mid-grey field with patches authored in several colour
// spaces, a row of DKL modulations around the background and a linear
// luminance ramp for photometer checks.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gogpu/psycolor"
	"github.com/gogpu/psycolor/compose"
	"github.com/gogpu/psycolor/display"
	"github.com/gogpu/psycolor/profile"
)

func main() {
	var (
		profilePath = flag.String("profile", "", "display profile (.toml or .yaml)")
		width       = flag.Int("width", 800, "image width")
		height      = flag.Int("height", 600, "image height")
		output      = flag.String("output", "pattern.png", "output file")
		verbose     = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *verbose {
		psycolor.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	p, err := loadProfile(*profilePath)
	if err != nil {
		log.Fatalf("Failed to load profile: %v", err)
	}
	format, err := p.SurfaceFormat()
	if err != nil {
		log.Fatal(err)
	}
	model, err := p.Model()
	if err != nil {
		log.Fatal(err)
	}
	conv, err := p.Converter()
	if err != nil {
		log.Fatal(err)
	}

	surface, err := display.NewSurface(*width, *height, format, model)
	if err != nil {
		log.Fatal(err)
	}
	defer surface.Close()

	layers, err := drawPattern(surface, conv)
	if err != nil {
		log.Fatalf("Failed to draw pattern: %v", err)
	}
	frame, err := surface.Present(layers)
	if err != nil {
		log.Fatalf("Failed to present: %v", err)
	}
	if frame.Stats.InvalidInputs > 0 {
		log.Printf("%d pixels had invalid correction input", frame.Stats.InvalidInputs)
	}

	if err := savePNG(frame, *output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Pattern saved to %s (%dx%d %s, correction %s)\n",
		*output, *width, *height, format, frame.Stats.Model)
}

// loadProfile reads the profile at path, or returns the default profile:
// no correction, 8-bit output and an HPE observer adapted to mid grey.
func loadProfile(path string) (*profile.Profile, error) {
	if path == "" {
		bg := profile.ColorOf(psycolor.SRGB(0.5, 0.5, 0.5, 1))
		return &profile.Profile{
			Name:     "default",
			Observer: &profile.Observer{Background: &bg},
		}, nil
	}
	enc, err := profile.EncodingFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return profile.Decode(f, enc)
}

func drawPattern(s *display.Surface, conv *psycolor.Converter) ([]compose.Layer, error) {
	w, h := s.Width(), s.Height()

	background := s.NewBuffer()
	if err := background.FillColor(conv, psycolor.SRGB(0.5, 0.5, 0.5, 1)); err != nil {
		return nil, err
	}

	patches := s.NewBuffer()
	top := []psycolor.ColorValue{
		psycolor.Red,
		psycolor.DisplayP3(0, 1, 0, 1),
		psycolor.XYZ(0.1805, 0.0722, 0.9505, 1),
		psycolor.Yxy(0.5, 0.3127, 0.3290, 1),
		psycolor.SRGBHex(0xff8800),
	}
	if err := drawRow(patches, conv, top, 0, h/3); err != nil {
		return nil, err
	}

	var dkl []psycolor.ColorValue
	if observerReady(conv) {
		dkl = []psycolor.ColorValue{
			psycolor.DKL(0.5, 0, 0, 1),
			psycolor.DKL(-0.5, 0, 0, 1),
			psycolor.DKL(0, 0.08, 0, 1),
			psycolor.DKL(0, -0.08, 0, 1),
			psycolor.DKL(0, 0, 0.8, 1),
			psycolor.DKL(0, 0, -0.8, 1),
		}
	}
	if err := drawRow(patches, conv, dkl, h/3, 2*h/3); err != nil {
		return nil, err
	}

	ramp := s.NewBuffer()
	steps := 16
	for i := range steps {
		v := float32(i) / float32(steps-1)
		ramp.FillRect(i*w/steps, 2*h/3+h/24, (i+1)*w/steps, h-h/24, compose.Pixel{R: v, G: v, B: v, A: 1})
	}

	overlay := s.NewBuffer()
	if err := overlay.FillColor(conv, psycolor.White); err != nil {
		return nil, err
	}

	return []compose.Layer{
		compose.NewLayer(background),
		compose.NewLayer(patches),
		compose.NewLayer(ramp),
		compose.NewLayer(overlay).WithOpacity(0.05),
	}, nil
}

// drawRow draws colors as equal patches between rows y0 and y1.
func drawRow(b *compose.Buffer, conv *psycolor.Converter, colors []psycolor.ColorValue, y0, y1 int) error {
	if len(colors) == 0 {
		return nil
	}
	cell := b.Width / len(colors)
	pad := min(cell, y1-y0) / 8
	for i, c := range colors {
		p, err := compose.PixelOf(conv, c)
		if err != nil {
			return fmt.Errorf("patch %s: %w", c, err)
		}
		b.FillRect(i*cell+pad, y0+pad, (i+1)*cell-pad, y1-pad, p)
	}
	return nil
}

// observerReady reports whether conv can convert DKL stimuli.
func observerReady(conv *psycolor.Converter) bool {
	_, err := conv.Convert(psycolor.DKL(0, 0, 0, 1), psycolor.LinearSRGBA)
	return err == nil
}

func savePNG(frame *display.Frame, path string) error {
	img, err := frame.Image()
	if err != nil {
		return err
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
