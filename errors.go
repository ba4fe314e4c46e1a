package psycolor

import "errors"

// Errors returned by conversion and correction. Callers match them with
// errors.Is; the returned errors wrap them with the spaces involved.
var (
	// ErrMissingCalibrationData is returned when a conversion to or from LMS
	// or DKL is requested without an Observer (or, for DKL, without a
	// background). The conversion is aborted.
	ErrMissingCalibrationData = errors.New("psycolor: missing calibration data")

	// ErrUnsupportedConversion is returned when no conversion path exists
	// for the requested pair of spaces.
	ErrUnsupportedConversion = errors.New("psycolor: unsupported conversion")

	// ErrInvalidCorrectionInput reports a non-finite or non-positive input to
	// a display correction model. The model has already repaired the value
	// (floored to its epsilon) when this is returned; it is never fatal and
	// exists so callers can count it for calibration diagnostics.
	ErrInvalidCorrectionInput = errors.New("psycolor: invalid correction input")
)
