package psycolor

import (
	"errors"
	"fmt"

	"golang.org/x/image/math/f32"
)

// HPEConeMatrix is the Hunt-Pointer-Estévez XYZ to LMS matrix normalised to
// D65. It is a reasonable default when no measured cone fundamentals for the
// display and observer are available.
var HPEConeMatrix = f32.Mat3{
	0.4002, 0.7076, -0.0808,
	-0.2263, 1.1653, 0.0457,
	0.0, 0.0, 0.9182,
}

// Observer carries the calibration data needed for LMS and DKL conversions.
// It is immutable after construction and safe for concurrent use.
type Observer struct {
	toLMS   mat3
	fromLMS mat3

	// DKL is only available when a background was supplied.
	hasBackground bool
	background    vec3 // LMS of the adaptation background
	toDKL         mat3
	fromDKL       mat3
}

// NewObserver returns an Observer using the given XYZ (D65) to LMS matrix.
// The observer supports LMS but not DKL; use WithBackground for DKL.
func NewObserver(cone f32.Mat3) (*Observer, error) {
	toLMS := fromF32(cone)
	fromLMS, ok := toLMS.inverse()
	if !ok {
		return nil, errors.New("psycolor: cone matrix is singular")
	}
	return &Observer{toLMS: toLMS, fromLMS: fromLMS}, nil
}

// HPEObserver returns an Observer using HPEConeMatrix adapted to the given
// background.
func HPEObserver(background ColorValue) (*Observer, error) {
	o, err := NewObserver(HPEConeMatrix)
	if err != nil {
		return nil, err
	}
	return o.WithBackground(background)
}

// WithBackground returns a copy of o whose DKL axes are centred on
// background. The background may be in any space except LMS and DKL.
//
// The DKL coordinates are cone contrasts relative to the background
// (L0, M0, S0):
//
//	lum = (ΔL + ΔM) / (L0 + M0)
//	l-m = ΔL/L0 - ΔM/M0
//	s   = ΔS/S0 - lum
func (o *Observer) WithBackground(background ColorValue) (*Observer, error) {
	if background.Space == LMSA || background.Space == DKLA {
		return nil, fmt.Errorf("psycolor: background must not be in %s: %w", background.Space, ErrUnsupportedConversion)
	}
	xyz, err := toHub(background)
	if err != nil {
		return nil, err
	}
	lms := o.toLMS.mulVec(vec3{float64(xyz[0]), float64(xyz[1]), float64(xyz[2])})
	if lms[0] <= 0 || lms[1] <= 0 || lms[2] <= 0 {
		return nil, fmt.Errorf("psycolor: background cone excitations must be positive, got %v", lms)
	}
	lm := lms[0] + lms[1]
	toDKL := mat3{
		1 / lm, 1 / lm, 0,
		1 / lms[0], -1 / lms[1], 0,
		-1 / lm, -1 / lm, 1 / lms[2],
	}
	fromDKL, ok := toDKL.inverse()
	if !ok {
		return nil, errors.New("psycolor: DKL matrix is singular")
	}
	c := *o
	c.hasBackground = true
	c.background = lms
	c.toDKL = toDKL
	c.fromDKL = fromDKL
	return &c, nil
}

// ConeMatrix returns the XYZ to LMS matrix.
func (o *Observer) ConeMatrix() f32.Mat3 {
	return o.toLMS.f32()
}

// HasBackground reports whether o supports DKL conversions.
func (o *Observer) HasBackground() bool {
	return o.hasBackground
}

func (o *Observer) xyzToLMS(c [3]float32) [3]float32 {
	return applyMat(o.toLMS, c)
}

func (o *Observer) lmsToXYZ(c [3]float32) [3]float32 {
	return applyMat(o.fromLMS, c)
}

func (o *Observer) lmsToDKL(c [3]float32) [3]float32 {
	d := vec3{float64(c[0]) - o.background[0], float64(c[1]) - o.background[1], float64(c[2]) - o.background[2]}
	v := o.toDKL.mulVec(d)
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}

func (o *Observer) dklToLMS(c [3]float32) [3]float32 {
	d := o.fromDKL.mulVec(vec3{float64(c[0]), float64(c[1]), float64(c[2])})
	return [3]float32{
		float32(d[0] + o.background[0]),
		float32(d[1] + o.background[1]),
		float32(d[2] + o.background[2]),
	}
}

func applyMat(m mat3, c [3]float32) [3]float32 {
	v := m.mulVec(vec3{float64(c[0]), float64(c[1]), float64(c[2])})
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}
}
