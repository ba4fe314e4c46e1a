package correction

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
)

// PsychopyCoeffs are the per-channel parameters of the PsychoPy model.
// A is the black-level offset, B the gain and C the exponent.
type PsychopyCoeffs struct {
	A, B, C float64
}

// Psychopy is the generalised gamma model used by PsychoPy's monitor
// calibration. Per channel it evaluates
//
//	(((1-v)*a^c + v*(a+b)^c)^(1/c) - a) / b
//
// which maps 0 to 0 and 1 to 1 for any valid coefficients. Inputs are
// clamped to [0,1] first because the power is undefined for negative bases.
type Psychopy struct {
	coeffs [3]PsychopyCoeffs
}

// NewPsychopy validates the coefficients and returns the model.
func NewPsychopy(r, g, b PsychopyCoeffs) (*Psychopy, error) {
	for i, c := range [3]PsychopyCoeffs{r, g, b} {
		if err := c.validate(); err != nil {
			return nil, fmt.Errorf("correction: psychopy channel %s: %w", channelName(i), err)
		}
	}
	return &Psychopy{coeffs: [3]PsychopyCoeffs{r, g, b}}, nil
}

func (c PsychopyCoeffs) validate() error {
	for _, v := range []float64{c.A, c.B, c.C} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite coefficient")
		}
	}
	switch {
	case c.A < 0:
		return fmt.Errorf("black level a = %g must not be negative", c.A)
	case c.B <= 0:
		return fmt.Errorf("gain b = %g must be positive", c.B)
	case c.C == 0:
		return fmt.Errorf("exponent c must not be zero")
	case c.C < 0 && c.A == 0:
		return fmt.Errorf("negative exponent c = %g needs a positive black level a", c.C)
	}
	return nil
}

// Kind implements Model.
func (*Psychopy) Kind() Kind { return KindPsychopy }

// Coeffs returns the coefficients of channel 0 (R), 1 (G) or 2 (B).
func (m *Psychopy) Coeffs(ch int) PsychopyCoeffs { return m.coeffs[ch] }

// Correct implements Model.
func (m *Psychopy) Correct(rgb RGB) (RGB, error) {
	return correctChannels(rgb, m.channel)
}

func (m *Psychopy) channel(ch int, v float32) (float32, bool) {
	v, repaired := finite(v, 0, 1)
	v = math32.Max(0, math32.Min(v, 1))
	c := m.coeffs[ch]
	t := float64(v)
	ac := math.Pow(c.A, c.C)
	abc := math.Pow(c.A+c.B, c.C)
	out := float32((math.Pow((1-t)*ac+t*abc, 1/c.C) - c.A) / c.B)
	// Extreme exponents can still overflow the powers; fall back to the
	// identity so the output stays in range.
	if math32.IsNaN(out) || math32.IsInf(out, 0) {
		return v, true
	}
	return out, repaired
}

func channelName(i int) string {
	return [...]string{"R", "G", "B"}[i]
}
