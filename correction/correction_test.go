package correction

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/psycolor"
)

// Coefficients of a real polylog5 fit from a lab display.
var (
	labR = []float64{0.9972361456765942, 0.5718201120693766, 0.1494526003308258, 0.021348959590415988, 0.0016066519145011171, 4.956890077371443e-05}
	labG = []float64{1.0058002029776596, 0.5695706025327177, 0.14551632725612368, 0.020115266744271217, 0.0014548822571441762, 4.3086307473990124e-05}
	labB = []float64{1.0116733520722856, 0.5329488652553003, 0.11728724922990535, 0.012259928984426039, 0.000528402626505164, 4.086604661837748e-06}
)

func labModel(t *testing.T) *PolyLog {
	t.Helper()
	m, err := NewPolyLog(5, labR, labG, labB)
	require.NoError(t, err)
	return m
}

func TestKindString(t *testing.T) {
	for _, k := range []Kind{KindNone, KindPsychopy, KindPolyLog4, KindPolyLog5, KindPolyLog6} {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	assert.Equal(t, "Kind(9)", Kind(9).String())
	_, err := ParseKind("cubic")
	assert.Error(t, err)
}

func TestNoneIsIdentity(t *testing.T) {
	for _, v := range []RGB{{}, {R: 1, G: 1, B: 1}, {R: 0.25, G: 0.5, B: 0.75}, {R: -1, G: 2, B: 0}} {
		got, err := None{}.Correct(v)
		assert.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestPsychopyEndpoints(t *testing.T) {
	c := PsychopyCoeffs{A: 0.05, B: 0.95, C: 2.2}
	m, err := NewPsychopy(c, c, c)
	require.NoError(t, err)
	assert.Equal(t, KindPsychopy, m.Kind())

	black, err := m.Correct(RGB{})
	require.NoError(t, err)
	assert.InDelta(t, 0, black.R, 1e-6)

	white, err := m.Correct(RGB{R: 1, G: 1, B: 1})
	require.NoError(t, err)
	assert.InDelta(t, 1, white.G, 1e-6)

	require.NoError(t, CheckMonotonic(m, 0, 1, 256))
}

func TestPsychopyValue(t *testing.T) {
	// With a = 0 the model reduces to v^(1/c).
	c := PsychopyCoeffs{A: 0, B: 1, C: 2}
	m, err := NewPsychopy(c, c, c)
	require.NoError(t, err)
	got, err := m.Correct(RGB{R: 0.25, G: 0.64, B: 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got.R, 1e-6)
	assert.InDelta(t, 0.8, got.G, 1e-6)
	assert.InDelta(t, 1, got.B, 1e-6)
}

func TestPsychopyClampsRange(t *testing.T) {
	c := PsychopyCoeffs{A: 0.05, B: 0.95, C: 2.2}
	m, err := NewPsychopy(c, c, c)
	require.NoError(t, err)
	got, err := m.Correct(RGB{R: -0.5, G: 1.5, B: 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0, got.R, 1e-6)
	assert.InDelta(t, 1, got.G, 1e-6)
}

func TestPsychopyInvalidCoefficients(t *testing.T) {
	good := PsychopyCoeffs{A: 0, B: 1, C: 2}
	tests := []struct {
		name string
		c    PsychopyCoeffs
	}{
		{"negative black", PsychopyCoeffs{A: -0.1, B: 1, C: 2}},
		{"zero gain", PsychopyCoeffs{A: 0, B: 0, C: 2}},
		{"zero exponent", PsychopyCoeffs{A: 0, B: 1, C: 0}},
		{"nan", PsychopyCoeffs{A: math.NaN(), B: 1, C: 2}},
		{"negative exponent without black", PsychopyCoeffs{A: 0, B: 1, C: -2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPsychopy(good, tt.c, good)
			assert.Error(t, err)
		})
	}
}

func TestPsychopyNegativeExponent(t *testing.T) {
	c := PsychopyCoeffs{A: 0.05, B: 0.95, C: -2}
	m, err := NewPsychopy(c, c, c)
	require.NoError(t, err)
	for _, v := range []float32{0, 0.25, 0.5, 1} {
		got, err := m.Correct(RGB{R: v, G: v, B: v})
		require.NoError(t, err)
		assert.False(t, math.IsNaN(float64(got.R)) || math.IsInf(float64(got.R), 0), "v=%g got %g", v, got.R)
		assert.True(t, got.R >= -1e-6 && got.R <= 1+1e-6, "v=%g got %g", v, got.R)
	}
	require.NoError(t, CheckMonotonic(m, 0, 1, 256))
	got, err := m.Correct(RGB{R: 1, G: 1, B: 1})
	require.NoError(t, err)
	assert.InDelta(t, 1, got.R, 1e-5)
}

func TestPsychopyOverflowIsRepaired(t *testing.T) {
	c := PsychopyCoeffs{A: 1, B: 1, C: 2000}
	m, err := NewPsychopy(c, c, c)
	require.NoError(t, err)
	got, err := m.Correct(RGB{R: 0.5, G: 0.5, B: 0.5})
	assert.True(t, errors.Is(err, psycolor.ErrInvalidCorrectionInput))
	assert.False(t, math.IsNaN(float64(got.R)) || math.IsInf(float64(got.R), 0))
}

func TestCorrectReportsRepairs(t *testing.T) {
	c := PsychopyCoeffs{A: 0.05, B: 0.95, C: 2.2}
	psy, err := NewPsychopy(c, c, c)
	require.NoError(t, err)
	nan := float32(math.NaN())

	tests := []struct {
		name    string
		in      RGB
		wantErr bool
	}{
		{"mid grey", RGB{R: 0.5, G: 0.5, B: 0.5}, false},
		{"white", RGB{R: 1, G: 1, B: 1}, false},
		{"one nan", RGB{R: nan, G: 0.5, B: 0.5}, true},
		{"all nan", RGB{R: nan, G: nan, B: nan}, true},
		{"all +inf", RGB{R: float32(math.Inf(1)), G: float32(math.Inf(1)), B: float32(math.Inf(1))}, true},
	}
	for _, m := range []Model{psy, labModel(t)} {
		for _, tt := range tests {
			t.Run(m.Kind().String()+"/"+tt.name, func(t *testing.T) {
				got, err := m.Correct(tt.in)
				if tt.wantErr {
					assert.True(t, errors.Is(err, psycolor.ErrInvalidCorrectionInput), "err = %v", err)
				} else {
					assert.NoError(t, err)
				}
				for _, v := range []float32{got.R, got.G, got.B} {
					assert.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0))
				}
			})
		}
	}
}

func TestPolyLogConstruction(t *testing.T) {
	_, err := NewPolyLog(3, labR[:4], labG[:4], labB[:4])
	assert.Error(t, err, "degree below 4")

	_, err = NewPolyLog(5, labR[:5], labG, labB)
	assert.Error(t, err, "short coefficient list")

	_, err = NewPolyLog(5, labR, labG, labB, WithFloor(0))
	assert.Error(t, err, "zero floor")

	bad := append([]float64(nil), labB...)
	bad[2] = math.Inf(1)
	_, err = NewPolyLog(5, labR, labG, bad)
	assert.Error(t, err, "infinite coefficient")

	for degree, want := range map[int]Kind{4: KindPolyLog4, 5: KindPolyLog5, 6: KindPolyLog6} {
		c := make([]float64, degree+1)
		m, err := NewPolyLog(degree, c, c, c)
		require.NoError(t, err)
		assert.Equal(t, want, m.Kind())
		assert.Equal(t, degree, m.Degree())
	}
}

func TestPolyLogCopiesCoefficients(t *testing.T) {
	r := append([]float64(nil), labR...)
	m, err := NewPolyLog(5, r, labG, labB)
	require.NoError(t, err)
	r[0] = 42
	assert.Equal(t, labR[0], m.Coeffs(0)[0])
}

func TestPolyLogAtWhite(t *testing.T) {
	// ln(1) = 0 so the result is the constant term.
	m := labModel(t)
	got, err := m.Correct(RGB{R: 1, G: 1, B: 1})
	require.NoError(t, err)
	assert.InDelta(t, labR[0], got.R, 1e-6)
	assert.InDelta(t, labG[0], got.G, 1e-6)
	assert.InDelta(t, labB[0], got.B, 1e-6)
}

func TestPolyLogHorner(t *testing.T) {
	m := labModel(t)
	got, err := m.Correct(RGB{R: 0.5, G: 0.5, B: 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.6659388, got.R, 1e-5)
	assert.InDelta(t, 0.6745478, got.G, 1e-5)
	assert.InDelta(t, 0.6946508, got.B, 1e-5)
}

func TestPolyLogMonotonic(t *testing.T) {
	require.NoError(t, CheckMonotonic(labModel(t), DefaultFloor, 1, 1000))
}

func TestPolyLogInvalidInput(t *testing.T) {
	m := labModel(t)
	atFloor, err := m.Correct(RGB{R: DefaultFloor, G: DefaultFloor, B: DefaultFloor})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   float32
		want float32
	}{
		{"zero", 0, atFloor.R},
		{"negative", -0.25, atFloor.R},
		{"nan", float32(math.NaN()), atFloor.R},
		{"-inf", float32(math.Inf(-1)), atFloor.R},
		{"+inf", float32(math.Inf(1)), float32(labR[0])},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Correct(RGB{R: tt.in, G: 0.5, B: 0.5})
			require.Error(t, err)
			assert.True(t, errors.Is(err, psycolor.ErrInvalidCorrectionInput))
			assert.InDelta(t, tt.want, got.R, 1e-6)
			assert.False(t, math.IsNaN(float64(got.G)))
		})
	}
}

func TestPolyLogBelowFloorIsSilent(t *testing.T) {
	m := labModel(t)
	atFloor, _ := m.Correct(RGB{R: DefaultFloor})
	got, err := m.Correct(RGB{R: 1e-5, G: 1e-5, B: 1e-5})
	require.NoError(t, err)
	assert.InDelta(t, atFloor.R, got.R, 1e-6)
}

func TestHandle(t *testing.T) {
	var zero Handle
	assert.Equal(t, KindNone, zero.Load().Kind())

	h := NewHandle(nil)
	assert.Equal(t, KindNone, h.Load().Kind())

	m := labModel(t)
	prev := h.Swap(m)
	assert.Equal(t, KindNone, prev.Kind())
	assert.Same(t, m, h.Load())

	h.Store(nil)
	assert.Equal(t, KindNone, h.Load().Kind())
}

func TestHandleConcurrentSwap(t *testing.T) {
	a := labModel(t)
	c := PsychopyCoeffs{A: 0, B: 1, C: 2}
	b, err := NewPsychopy(c, c, c)
	require.NoError(t, err)

	h := NewHandle(a)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := range 200 {
				if i%2 == 0 {
					if j%2 == 0 {
						h.Store(a)
					} else {
						h.Store(b)
					}
					continue
				}
				k := h.Load().Kind()
				if k != KindPolyLog5 && k != KindPsychopy {
					t.Errorf("observed unexpected model %s", k)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestEvaluate(t *testing.T) {
	// A display that emits v^2 is inverted exactly by v^(1/2).
	c := PsychopyCoeffs{A: 0, B: 1, C: 2}
	m, err := NewPsychopy(c, c, c)
	require.NoError(t, err)

	var samples []Sample
	for _, v := range []float32{0.1, 0.3, 0.5, 0.8, 1} {
		samples = append(samples, Sample{
			Requested: RGB{R: v, G: v, B: v},
			Measured:  RGB{R: v * v, G: v * v, B: v * v},
		})
	}
	res, err := Evaluate(m, samples)
	require.NoError(t, err)
	assert.Less(t, res.Max, 1e-5)
	assert.Less(t, res.RMS, 1e-5)
	assert.Zero(t, res.Invalid)

	res, err = Evaluate(None{}, samples)
	require.NoError(t, err)
	assert.Greater(t, res.Max, 0.2)

	_, err = Evaluate(m, nil)
	assert.Error(t, err)
}

func TestCheckMonotonicDetectsDecrease(t *testing.T) {
	// Negative linear term in ln(v) makes the curve fall.
	c := []float64{0.5, -0.1, 0, 0, 0}
	m, err := NewPolyLog(4, c, c, c)
	require.NoError(t, err)
	assert.Error(t, CheckMonotonic(m, DefaultFloor, 1, 64))
	assert.Error(t, CheckMonotonic(m, 1, 0, 64))
}
