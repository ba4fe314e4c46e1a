// Package profile reads and writes display profiles: the correction model,
// output format and observer of one calibrated display, as produced by
// calibration tooling.
//
// A profile in TOML looks like:
//
//	name = "lab-monitor-2"
//	format = "rgb10a2unorm"
//
//	[correction]
//	kind = "polylog5"
//	r = [0.997, 0.572, 0.149, 0.0213, 0.00161, 4.96e-05]
//	g = [1.006, 0.570, 0.146, 0.0201, 0.00145, 4.31e-05]
//	b = [1.012, 0.533, 0.117, 0.0123, 0.000528, 4.09e-06]
//
//	[observer.background]
//	space = "sRGB"
//	values = [0.5, 0.5, 0.5]
//
// Profiles carry data only; reading files is left to the caller.
package profile

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/psycolor"
	"github.com/gogpu/psycolor/correction"
	"github.com/gogpu/psycolor/display"
)

// Encoding is a profile document syntax.
type Encoding uint8

const (
	// TOML is parsed with go-toml v2.
	TOML Encoding = iota
	// YAML is parsed with yaml.v3.
	YAML
)

// String returns the lower case name of the encoding.
func (e Encoding) String() string {
	switch e {
	case TOML:
		return "toml"
	case YAML:
		return "yaml"
	}
	return fmt.Sprintf("Encoding(%d)", uint8(e))
}

// EncodingFor guesses the encoding from a file name extension.
func EncodingFor(filename string) (Encoding, error) {
	switch {
	case strings.HasSuffix(filename, ".toml"):
		return TOML, nil
	case strings.HasSuffix(filename, ".yaml"), strings.HasSuffix(filename, ".yml"):
		return YAML, nil
	}
	return 0, fmt.Errorf("profile: cannot tell encoding of %q", filename)
}

// ErrNoObserver is returned by Profile.Observer when the profile has no
// observer section.
var ErrNoObserver = errors.New("profile: no observer")

// Profile describes one calibrated display.
type Profile struct {
	Name       string     `toml:"name" yaml:"name"`
	Format     string     `toml:"format,omitempty" yaml:"format,omitempty"`
	Correction Correction `toml:"correction" yaml:"correction"`
	Observer   *Observer  `toml:"observer,omitempty" yaml:"observer,omitempty"`
}

// Correction holds the fitted model. Kind is one of none, psychopy,
// polylog4, polylog5 and polylog6. For psychopy each channel lists a, b
// and c; for polylogN each channel lists N+1 coefficients, lowest order
// first.
type Correction struct {
	Kind  string    `toml:"kind" yaml:"kind"`
	Floor float64   `toml:"floor,omitempty" yaml:"floor,omitempty"`
	R     []float64 `toml:"r,omitempty" yaml:"r,omitempty"`
	G     []float64 `toml:"g,omitempty" yaml:"g,omitempty"`
	B     []float64 `toml:"b,omitempty" yaml:"b,omitempty"`
}

// Observer holds the cone fundamentals and adaptation background used for
// LMS and DKL stimuli. An empty ConeMatrix means the Hunt-Pointer-Estévez
// matrix.
type Observer struct {
	ConeMatrix []float32 `toml:"cone_matrix,omitempty" yaml:"cone_matrix,omitempty"`
	Background *Color    `toml:"background,omitempty" yaml:"background,omitempty"`
}

// Color is a colour value written as a space name and three channels.
type Color struct {
	Space  string     `toml:"space" yaml:"space"`
	Values [3]float32 `toml:"values" yaml:"values,flow"`
	Alpha  *float32   `toml:"alpha,omitempty" yaml:"alpha,omitempty"`
}

// Decode reads a profile and checks that it builds.
func Decode(r io.Reader, enc Encoding) (*Profile, error) {
	var p Profile
	switch enc {
	case TOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("profile: decode toml: %w", err)
		}
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("profile: decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("profile: unknown encoding %s", enc)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Encode writes p.
func (p *Profile) Encode(w io.Writer, enc Encoding) error {
	switch enc {
	case TOML:
		if err := toml.NewEncoder(w).Encode(p); err != nil {
			return fmt.Errorf("profile: encode toml: %w", err)
		}
	case YAML:
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		if err := e.Encode(p); err != nil {
			return fmt.Errorf("profile: encode yaml: %w", err)
		}
		if err := e.Close(); err != nil {
			return fmt.Errorf("profile: encode yaml: %w", err)
		}
	default:
		return fmt.Errorf("profile: unknown encoding %s", enc)
	}
	return nil
}

// Validate checks that every section of p builds.
func (p *Profile) Validate() error {
	if _, err := p.SurfaceFormat(); err != nil {
		return err
	}
	if _, err := p.Model(); err != nil {
		return err
	}
	if p.Observer != nil {
		if _, err := p.BuildObserver(); err != nil {
			return err
		}
	}
	return nil
}

// SurfaceFormat returns the output format. An empty format means
// display.RGBA8Unorm.
func (p *Profile) SurfaceFormat() (display.Format, error) {
	if p.Format == "" {
		return display.RGBA8Unorm, nil
	}
	f, err := display.ParseFormat(strings.ToLower(p.Format))
	if err != nil {
		return 0, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return f, nil
}

// Model builds the correction model.
func (p *Profile) Model() (correction.Model, error) {
	m, err := p.Correction.model()
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return m, nil
}

func (c Correction) model() (correction.Model, error) {
	if c.Kind == "" {
		return correction.None{}, nil
	}
	kind, err := correction.ParseKind(strings.ToLower(c.Kind))
	if err != nil {
		return nil, err
	}
	switch kind {
	case correction.KindNone:
		return correction.None{}, nil
	case correction.KindPsychopy:
		var coeffs [3]correction.PsychopyCoeffs
		for i, ch := range [3][]float64{c.R, c.G, c.B} {
			if len(ch) != 3 {
				return nil, fmt.Errorf("psychopy needs a, b and c per channel, channel %s has %d values",
					[...]string{"R", "G", "B"}[i], len(ch))
			}
			coeffs[i] = correction.PsychopyCoeffs{A: ch[0], B: ch[1], C: ch[2]}
		}
		return correction.NewPsychopy(coeffs[0], coeffs[1], coeffs[2])
	default:
		var opts []correction.PolyLogOption
		if c.Floor != 0 {
			opts = append(opts, correction.WithFloor(c.Floor))
		}
		degree := int(kind-correction.KindPolyLog4) + 4
		return correction.NewPolyLog(degree, c.R, c.G, c.B, opts...)
	}
}

// BuildObserver builds the observer, or returns ErrNoObserver when the
// profile has none.
func (p *Profile) BuildObserver() (*psycolor.Observer, error) {
	if p.Observer == nil {
		return nil, ErrNoObserver
	}
	cone := psycolor.HPEConeMatrix
	if len(p.Observer.ConeMatrix) > 0 {
		if len(p.Observer.ConeMatrix) != 9 {
			return nil, fmt.Errorf("profile %q: cone_matrix has %d values, want 9", p.Name, len(p.Observer.ConeMatrix))
		}
		copy(cone[:], p.Observer.ConeMatrix)
	}
	o, err := psycolor.NewObserver(cone)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	if p.Observer.Background == nil {
		return o, nil
	}
	bg, err := p.Observer.Background.Value()
	if err != nil {
		return nil, fmt.Errorf("profile %q: background: %w", p.Name, err)
	}
	if o, err = o.WithBackground(bg); err != nil {
		return nil, fmt.Errorf("profile %q: %w", p.Name, err)
	}
	return o, nil
}

// Converter returns a converter using the profile's observer, if any.
func (p *Profile) Converter() (*psycolor.Converter, error) {
	if p.Observer == nil {
		return psycolor.NewConverter(), nil
	}
	o, err := p.BuildObserver()
	if err != nil {
		return nil, err
	}
	return psycolor.NewConverter(psycolor.WithObserver(o)), nil
}

// Value returns c as a ColorValue. A missing alpha means opaque.
func (c Color) Value() (psycolor.ColorValue, error) {
	s, err := psycolor.ParseSpace(c.Space)
	if err != nil {
		return psycolor.ColorValue{}, err
	}
	a := float32(1)
	if c.Alpha != nil {
		a = *c.Alpha
	}
	return psycolor.New(s, c.Values[0], c.Values[1], c.Values[2], a), nil
}

// ColorOf returns the document form of v.
func ColorOf(v psycolor.ColorValue) Color {
	c := Color{Space: v.Space.String(), Values: v.C}
	if v.A != 1 {
		a := v.A
		c.Alpha = &a
	}
	return c
}

// FromModel returns the correction section describing m.
func FromModel(m correction.Model) Correction {
	switch m := m.(type) {
	case *correction.Psychopy:
		c := Correction{Kind: m.Kind().String()}
		for i, dst := range []*[]float64{&c.R, &c.G, &c.B} {
			k := m.Coeffs(i)
			*dst = []float64{k.A, k.B, k.C}
		}
		return c
	case *correction.PolyLog:
		c := Correction{Kind: m.Kind().String(), R: m.Coeffs(0), G: m.Coeffs(1), B: m.Coeffs(2)}
		if m.Floor() != correction.DefaultFloor {
			c.Floor = m.Floor()
		}
		return c
	}
	return Correction{Kind: correction.KindNone.String()}
}
