package psycolor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/psycolor/transfer"
)

// Space tags the colour space a ColorValue is expressed in.
type Space uint8

const (
	// SRGBA is sRGB with the sRGB transfer function (IEC 61966-2-1),
	// Rec. 709 primaries and a D65 white point. Channels are R, G, B.
	SRGBA Space = iota
	// LinearSRGBA shares the sRGB primaries and white point but uses a
	// linear transfer function. 50% grey in SRGBA is about 21% here.
	LinearSRGBA
	// XYZA is CIE 1931 XYZ relative to D65 with Y = 1 for white. It is the
	// hub every other space converts through. Values are unconstrained.
	XYZA
	// YxyA is CIE xyY reordered as (Y, x, y): luminance first, then the
	// chromaticity coordinates.
	YxyA
	// DisplayP3RGBA uses the DCI-P3 primaries with a D65 white point and the
	// sRGB transfer function.
	DisplayP3RGBA
	// LinearDisplayP3RGBA is Display P3 with a linear transfer function.
	LinearDisplayP3RGBA
	// LMSA holds cone excitations. Conversions need an Observer.
	LMSA
	// DKLA holds Derrington-Krauskopf-Lennie coordinates in Cartesian
	// cone-contrast form (luminance, L-M, S-(L+M)) around the observer's
	// background. Conversions need an Observer with a background.
	DKLA
	// XYZD50A is CIE XYZ relative to the D50 illuminant (the ICC profile
	// connection space). Converting to and from it applies Bradford
	// chromatic adaptation.
	XYZD50A

	spaceCount
)

var spaceNames = [spaceCount]string{
	SRGBA:               "sRGB",
	LinearSRGBA:         "linear sRGB",
	XYZA:                "XYZ",
	YxyA:                "Yxy",
	DisplayP3RGBA:       "Display P3",
	LinearDisplayP3RGBA: "linear Display P3",
	LMSA:                "LMS",
	DKLA:                "DKL",
	XYZD50A:             "XYZ D50",
}

// String returns the human readable name of the space.
func (s Space) String() string {
	if s < spaceCount {
		return spaceNames[s]
	}
	return "Space(" + strconv.Itoa(int(s)) + ")"
}

// Valid reports whether s is a known space.
func (s Space) Valid() bool {
	return s < spaceCount
}

// IsRGB reports whether s is an RGB space.
func (s Space) IsRGB() bool {
	switch s {
	case SRGBA, LinearSRGBA, DisplayP3RGBA, LinearDisplayP3RGBA:
		return true
	}
	return false
}

// IsLinear reports whether the channels of s are linear in light.
// Yxy is not, because x and y are ratios.
func (s Space) IsLinear() bool {
	switch s {
	case LinearSRGBA, LinearDisplayP3RGBA, XYZA, XYZD50A, LMSA:
		return true
	}
	return false
}

// Transfer returns the canonical transfer function of an RGB space.
// Linear RGB spaces return transfer.Linear. Non-RGB spaces return nil.
func (s Space) Transfer() transfer.Function {
	switch s {
	case SRGBA, DisplayP3RGBA:
		return transfer.SRGB{}
	case LinearSRGBA, LinearDisplayP3RGBA:
		return transfer.Linear{}
	}
	return nil
}

// linearOf returns the linear counterpart of an RGB space.
func (s Space) linearOf() Space {
	switch s {
	case SRGBA:
		return LinearSRGBA
	case DisplayP3RGBA:
		return LinearDisplayP3RGBA
	}
	return s
}

// ParseSpace returns the space whose String matches name, ignoring case.
func ParseSpace(name string) (Space, error) {
	for i, n := range spaceNames {
		if strings.EqualFold(n, name) {
			return Space(i), nil
		}
	}
	return 0, fmt.Errorf("psycolor: unknown space %q: %w", name, ErrUnsupportedConversion)
}
