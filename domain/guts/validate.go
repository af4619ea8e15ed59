package guts

import (
	"gonum.org/v1/gonum/floats"
)

// Validators return MsgNone when the input is acceptable, otherwise the first
// failing rule in priority order.

// ValidateExposure checks a concentration profile
func ValidateExposure(conc, times []float64) MessageCode {
	switch {
	case len(conc) < MinSeriesLength:
		return MsgConcentrationTooShort
	case len(times) < MinSeriesLength:
		return MsgExposureTimeTooShort
	case len(conc) != len(times):
		return MsgExposureLengthMismatch
	case times[0] != 0:
		return MsgExposureStart
	case !strictlyIncreasing(times):
		return MsgExposureOrder
	}
	return MsgNone
}

// ValidateSurvivors checks an observed survivor series
func ValidateSurvivors(counts []int, times []float64) MessageCode {
	switch {
	case len(counts) < MinSeriesLength:
		return MsgSurvivorsTooShort
	case len(times) < MinSeriesLength:
		return MsgSurvivorTimeTooShort
	case len(counts) != len(times):
		return MsgSurvivorLengthMismatch
	case times[0] != 0:
		return MsgSurvivorStart
	case !strictlyIncreasing(times):
		return MsgSurvivorOrder
	}
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[i-1] {
			return MsgSurvivorsAscend
		}
	}
	return MsgNone
}

// ValidateParameters checks a user vector against a schema. Negative values and
// a spread without location are warnings; a wrong length is an error.
func ValidateParameters(schema Schema, par []float64) MessageCode {
	if len(par) != schema.Len() {
		return MsgParameterLength
	}
	if floats.HasNaN(par) || floats.Min(par) < 0 {
		return MsgNegativeParameter
	}
	w := schema.Resolve(par)
	if w.M == 0 && w.SD != 0 {
		return MsgSpreadWithoutLocation
	}
	return MsgNone
}

// ValidateSampleResolution checks the threshold grid size
func ValidateSampleResolution(n int) MessageCode {
	if n < MinSampleResolution {
		return MsgSampleResolution
	}
	return MsgNone
}

// ValidateTimeResolution checks the number of integration steps
func ValidateTimeResolution(m int) MessageCode {
	if m < MinTimeResolution {
		return MsgTimeResolution
	}
	return MsgNone
}

// ValidateInterval checks the lognormal quantile widening factor
func ValidateInterval(interval float64) MessageCode {
	if !(interval > 1) {
		return MsgInterval
	}
	return MsgNone
}

// ValidateSample checks a user-supplied threshold sample
func ValidateSample(sample []float64) MessageCode {
	if len(sample) < MinSampleLength {
		return MsgSampleTooShort
	}
	if floats.HasNaN(sample) || floats.Min(sample) < 0 {
		return MsgNegativeSample
	}
	return MsgNone
}

// strictlyIncreasing guards the later division by time differences; NaN fails.
func strictlyIncreasing(v []float64) bool {
	for i := 1; i < len(v); i++ {
		if !(v[i]-v[i-1] > 0) {
			return false
		}
	}
	return true
}
