// Package psycolor converts stimulus colours between colour spaces for
// vision-science displays.
//
// # Overview
//
// A ColorValue is three channels and an alpha tagged with the Space they
// are expressed in. Converter moves values between sRGB, linear sRGB,
// CIE XYZ (D65 and D50), Yxy, Display P3, LMS cone space and the DKL
// opponent space. Every conversion goes through XYZ D65 except the direct
// shortcuts between an RGB space and its linear form and between XYZ and Yxy.
//
// LMS and DKL depend on the observer, so they need an Observer built from a
// cone matrix and, for DKL, an adaptation background:
//
//	obs, err := psycolor.HPEObserver(psycolor.SRGB(0.5, 0.5, 0.5, 1))
//	conv := psycolor.NewConverter(psycolor.WithObserver(obs))
//	rgb, err := conv.Convert(psycolor.DKL(0, 0.05, 0, 1), psycolor.SRGBA)
//
// Without one, those conversions fail with ErrMissingCalibrationData.
//
// # Gamut
//
// Conversions do not clamp. Out-of-gamut results keep their negative or
// greater-than-one channels so a round trip through a wider space is
// lossless; InGamut reports whether an RGB value is displayable and
// WithGamutClamp opts into clamping. Round trips are not exact once a value
// has been clamped.
//
// # Pipeline
//
// The sub-packages form the rest of the output path:
//
//   - transfer: the EOTF/OETF pairs of the RGB spaces
//   - correction: display correction models and their atomic Handle
//   - compose: linear premultiplied compositing with one correction pass
//   - display: surfaces that encode frames for 8, 10 and 16 bit outputs
//   - profile: TOML and YAML display profiles
//
// # Logging
//
// The library is silent by default. SetLogger installs an slog.Logger used
// by every sub-package.
package psycolor
