package correction

import (
	"fmt"
	"math"
)

// DefaultFloor is the default lower bound applied to inputs before taking
// the logarithm.
const DefaultFloor = 1e-3

// PolyLog evaluates, per channel, a polynomial in ln(v):
//
//	c0 + c1*ln(v) + c2*ln(v)^2 + ... + cN*ln(v)^N
//
// using Horner's method. ln is undefined for v <= 0, so inputs are floored
// to Floor before evaluation. Zero, negative and non-finite inputs are
// reported as invalid; positive inputs below Floor are floored silently.
type PolyLog struct {
	degree int
	coeffs [3][]float64
	floor  float64
}

// PolyLogOption configures a PolyLog model.
type PolyLogOption func(*PolyLog)

// WithFloor sets the epsilon inputs are floored to. It must be positive.
func WithFloor(floor float64) PolyLogOption {
	return func(m *PolyLog) {
		m.floor = floor
	}
}

// NewPolyLog returns a PolyLog model of the given degree (4, 5 or 6).
// Each channel needs degree+1 coefficients, lowest order first.
func NewPolyLog(degree int, r, g, b []float64, opts ...PolyLogOption) (*PolyLog, error) {
	if degree < 4 || degree > 6 {
		return nil, fmt.Errorf("correction: polylog degree %d not in [4,6]", degree)
	}
	m := &PolyLog{degree: degree, floor: DefaultFloor}
	for i, c := range [3][]float64{r, g, b} {
		if len(c) != degree+1 {
			return nil, fmt.Errorf("correction: polylog%d channel %s has %d coefficients, want %d",
				degree, channelName(i), len(c), degree+1)
		}
		for _, v := range c {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("correction: polylog%d channel %s has a non-finite coefficient", degree, channelName(i))
			}
		}
		m.coeffs[i] = append([]float64(nil), c...)
	}
	for _, opt := range opts {
		opt(m)
	}
	if !(m.floor > 0) || math.IsInf(m.floor, 0) {
		return nil, fmt.Errorf("correction: polylog floor %g must be positive and finite", m.floor)
	}
	return m, nil
}

// Kind implements Model.
func (m *PolyLog) Kind() Kind {
	return KindPolyLog4 + Kind(m.degree-4)
}

// Degree returns the polynomial degree.
func (m *PolyLog) Degree() int { return m.degree }

// Floor returns the input floor.
func (m *PolyLog) Floor() float64 { return m.floor }

// Coeffs returns a copy of the coefficients of channel 0 (R), 1 (G) or 2 (B).
func (m *PolyLog) Coeffs(ch int) []float64 {
	return append([]float64(nil), m.coeffs[ch]...)
}

// Correct implements Model.
func (m *PolyLog) Correct(rgb RGB) (RGB, error) {
	return correctChannels(rgb, m.channel)
}

func (m *PolyLog) channel(ch int, v float32) (float32, bool) {
	t := float64(v)
	repaired := false
	switch {
	case math.IsNaN(t), t <= 0:
		t, repaired = m.floor, true
	case math.IsInf(t, 1):
		t, repaired = 1, true
	case t < m.floor:
		t = m.floor
	}
	return float32(horner(m.coeffs[ch], math.Log(t))), repaired
}

// horner evaluates sum(c[i] * x^i).
func horner(c []float64, x float64) float64 {
	var p float64
	for i := len(c) - 1; i >= 0; i-- {
		p = p*x + c[i]
	}
	return p
}
