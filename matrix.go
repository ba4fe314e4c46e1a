package psycolor

import (
	"fmt"

	"golang.org/x/image/math/f32"
)

// ConversionMatrix is the linear transform between a linear RGB space and
// CIE XYZ (D65). Matrices are row major, as in golang.org/x/image/math/f32.
type ConversionMatrix struct {
	ToXYZ   f32.Mat3
	FromXYZ f32.Mat3
}

// Chromaticity is a CIE 1931 xy chromaticity coordinate.
type Chromaticity struct {
	X, Y float64
}

// Primaries describes an RGB space by the chromaticities of its primaries.
type Primaries struct {
	R, G, B Chromaticity
}

// Reference white points.
var (
	// WhiteD65 is the D65 chromaticity used by sRGB and Display P3.
	WhiteD65 = Chromaticity{0.3127, 0.3290}
	// WhiteD50 is the D50 chromaticity.
	WhiteD50 = Chromaticity{0.3457, 0.3585}
)

var (
	// PrimariesSRGB are the ITU-R BT.709 primaries.
	PrimariesSRGB = Primaries{
		R: Chromaticity{0.640, 0.330},
		G: Chromaticity{0.300, 0.600},
		B: Chromaticity{0.150, 0.060},
	}
	// PrimariesDisplayP3 are the DCI-P3 primaries.
	PrimariesDisplayP3 = Primaries{
		R: Chromaticity{0.680, 0.320},
		G: Chromaticity{0.265, 0.690},
		B: Chromaticity{0.150, 0.060},
	}
)

// ICC D50 white with the Z value from the ICC specification.
var xyzD50 = vec3{0.96422, 1.0, 0.82491}

// Bradford cone response matrix.
var bradford = mat3{
	0.8951, 0.2664, -0.1614,
	-0.7502, 1.7135, 0.0367,
	0.0389, -0.0685, 1.0296,
}

// Fixed matrices computed at init.
var (
	matrixSRGB      ConversionMatrix
	matrixDisplayP3 ConversionMatrix
	adaptD65ToD50   mat3
	adaptD50ToD65   mat3
)

func init() {
	var err error
	if matrixSRGB, err = NewConversionMatrix(PrimariesSRGB, WhiteD65); err != nil {
		panic(err)
	}
	if matrixDisplayP3, err = NewConversionMatrix(PrimariesDisplayP3, WhiteD65); err != nil {
		panic(err)
	}
	d65 := WhiteD65.xyz()
	adaptD65ToD50 = bradfordAdaptation(d65, xyzD50)
	adaptD50ToD65 = bradfordAdaptation(xyzD50, d65)
}

// MatrixFor returns the conversion matrix of a linear or encoded RGB space.
func MatrixFor(s Space) (ConversionMatrix, error) {
	switch s {
	case SRGBA, LinearSRGBA:
		return matrixSRGB, nil
	case DisplayP3RGBA, LinearDisplayP3RGBA:
		return matrixDisplayP3, nil
	}
	return ConversionMatrix{}, fmt.Errorf("psycolor: no RGB matrix for %s: %w", s, ErrUnsupportedConversion)
}

// NewConversionMatrix derives the RGB to XYZ (D65) matrix from primaries and
// a white point. The columns of the primaries matrix are scaled so that
// RGB (1,1,1) maps to the white point; a white point other than D65 is then
// Bradford-adapted to the D65 hub.
func NewConversionMatrix(p Primaries, white Chromaticity) (ConversionMatrix, error) {
	if p.R.Y == 0 || p.G.Y == 0 || p.B.Y == 0 || white.Y == 0 {
		return ConversionMatrix{}, fmt.Errorf("psycolor: degenerate chromaticity (y = 0)")
	}
	r, g, b := p.R.xyz(), p.G.xyz(), p.B.xyz()
	prim := mat3{
		r[0], g[0], b[0],
		r[1], g[1], b[1],
		r[2], g[2], b[2],
	}
	inv, ok := prim.inverse()
	if !ok {
		return ConversionMatrix{}, fmt.Errorf("psycolor: primaries are collinear")
	}
	w := white.xyz()
	s := inv.mulVec(w)
	toXYZ := prim.mul(diag(s))
	if white != WhiteD65 {
		toXYZ = bradfordAdaptation(w, WhiteD65.xyz()).mul(toXYZ)
	}
	fromXYZ, ok := toXYZ.inverse()
	if !ok {
		return ConversionMatrix{}, fmt.Errorf("psycolor: singular RGB matrix")
	}
	return ConversionMatrix{ToXYZ: toXYZ.f32(), FromXYZ: fromXYZ.f32()}, nil
}

// xyz returns the XYZ tristimulus of a chromaticity with Y = 1.
func (c Chromaticity) xyz() vec3 {
	return vec3{c.X / c.Y, 1, (1 - c.X - c.Y) / c.Y}
}

// bradfordAdaptation returns the matrix adapting XYZ values from the source
// white to the target white using the Bradford method.
func bradfordAdaptation(src, dst vec3) mat3 {
	s := bradford.mulVec(src)
	d := bradford.mulVec(dst)
	inv, _ := bradford.inverse()
	return inv.mul(diag(vec3{d[0] / s[0], d[1] / s[1], d[2] / s[2]})).mul(bradford)
}

// vec3 and mat3 are float64 working types. Matrices are derived in double
// precision and only stored as f32.Mat3.
type vec3 [3]float64

type mat3 [9]float64

func diag(v vec3) mat3 {
	return mat3{v[0], 0, 0, 0, v[1], 0, 0, 0, v[2]}
}

func (a mat3) mul(b mat3) mat3 {
	var c mat3
	for i := range 3 {
		for j := range 3 {
			var sum float64
			for k := range 3 {
				sum += a[i*3+k] * b[k*3+j]
			}
			c[i*3+j] = sum
		}
	}
	return c
}

func (a mat3) mulVec(v vec3) vec3 {
	return vec3{
		a[0]*v[0] + a[1]*v[1] + a[2]*v[2],
		a[3]*v[0] + a[4]*v[1] + a[5]*v[2],
		a[6]*v[0] + a[7]*v[1] + a[8]*v[2],
	}
}

func (a mat3) det() float64 {
	return a[0]*(a[4]*a[8]-a[5]*a[7]) -
		a[1]*(a[3]*a[8]-a[5]*a[6]) +
		a[2]*(a[3]*a[7]-a[4]*a[6])
}

// inverse returns the inverse of a via the adjugate. ok is false when a is
// singular.
func (a mat3) inverse() (mat3, bool) {
	det := a.det()
	if det == 0 {
		return mat3{}, false
	}
	inv := mat3{
		a[4]*a[8] - a[5]*a[7], a[2]*a[7] - a[1]*a[8], a[1]*a[5] - a[2]*a[4],
		a[5]*a[6] - a[3]*a[8], a[0]*a[8] - a[2]*a[6], a[2]*a[3] - a[0]*a[5],
		a[3]*a[7] - a[4]*a[6], a[1]*a[6] - a[0]*a[7], a[0]*a[4] - a[1]*a[3],
	}
	for i := range inv {
		inv[i] /= det
	}
	return inv, true
}

func (a mat3) f32() f32.Mat3 {
	var m f32.Mat3
	for i, v := range a {
		m[i] = float32(v)
	}
	return m
}

func fromF32(m f32.Mat3) mat3 {
	var a mat3
	for i, v := range m {
		a[i] = float64(v)
	}
	return a
}

// apply multiplies a float32 triple by m, accumulating in float64.
func apply(m f32.Mat3, c [3]float32) [3]float32 {
	return applyMat(fromF32(m), c)
}
