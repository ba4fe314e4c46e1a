package correction

import (
	"fmt"
	"math"
)

// Sample is one photometer reading taken by calibration tooling: the linear
// RGB that was requested and the linear RGB the display actually emitted,
// both normalised to the display's white.
type Sample struct {
	Requested RGB
	Measured  RGB
}

// Residuals summarise how well a model inverts a set of measurements.
type Residuals struct {
	// Max is the largest absolute channel error.
	Max float64
	// RMS is the root mean square channel error.
	RMS float64
	// Invalid counts samples that produced ErrInvalidCorrectionInput.
	Invalid int
}

// Evaluate applies m to each measured value and compares the result with the
// value that was requested. A well fit model maps what the display does back
// to what was asked for.
func Evaluate(m Model, samples []Sample) (Residuals, error) {
	if len(samples) == 0 {
		return Residuals{}, fmt.Errorf("correction: no calibration samples")
	}
	var res Residuals
	var sum float64
	for _, s := range samples {
		got, err := m.Correct(s.Measured)
		if err != nil {
			res.Invalid++
		}
		for _, d := range [3]float64{
			float64(got.R - s.Requested.R),
			float64(got.G - s.Requested.G),
			float64(got.B - s.Requested.B),
		} {
			d = math.Abs(d)
			res.Max = math.Max(res.Max, d)
			sum += d * d
		}
	}
	res.RMS = math.Sqrt(sum / float64(3*len(samples)))
	return res, nil
}

// CheckMonotonic samples every channel of m at n evenly spaced points in
// [lo, hi] and returns an error naming the first channel whose output
// decreases. A non-monotonic model would reorder intensities on screen.
func CheckMonotonic(m Model, lo, hi float32, n int) error {
	if n < 2 || !(hi > lo) {
		return fmt.Errorf("correction: invalid monotonic range [%g, %g] with %d steps", lo, hi, n)
	}
	var prev RGB
	for i := range n {
		v := lo + (hi-lo)*float32(i)/float32(n-1)
		cur, err := m.Correct(RGB{R: v, G: v, B: v})
		if err != nil {
			return fmt.Errorf("correction: monotonic check at %g: %w", v, err)
		}
		if i > 0 {
			for ch, pair := range [3][2]float32{{prev.R, cur.R}, {prev.G, cur.G}, {prev.B, cur.B}} {
				if pair[1] < pair[0] {
					return fmt.Errorf("correction: %s channel of %s decreases at %g (%g -> %g)",
						channelName(ch), m.Kind(), v, pair[0], pair[1])
				}
			}
		}
		prev = cur
	}
	return nil
}
