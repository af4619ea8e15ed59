package guts

import (
	"fmt"

	"guts/domain/core"
)

// Category is one slot of the diagnostics record. Each category is owned by
// exactly one setter or computation step.
type Category int

const (
	CategoryExposure Category = iota
	CategorySurvivors
	CategoryDistribution
	CategorySubmodel
	CategoryParameters
	CategoryParameterWarning
	CategorySampleResolution
	CategoryTimeResolution
	CategoryInterval
	CategoryEmpiricalSample
	CategoryThresholdGrid
	CategorySurvival
	CategoryLikelihood

	categoryCount
)

var categoryNames = [categoryCount]string{
	"exposure",
	"survivors",
	"distribution",
	"submodel",
	"parameters",
	"parameter_warning",
	"sample_resolution",
	"time_resolution",
	"interval",
	"empirical_sample",
	"threshold_grid",
	"survival",
	"likelihood",
}

// Categories returns every category in record order
func Categories() []Category {
	out := make([]Category, categoryCount)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// String returns the category key used in message maps
func (c Category) String() string {
	if c < 0 || c >= categoryCount {
		return "unknown"
	}
	return categoryNames[c]
}

// Severity distinguishes rejected input from accepted-but-degenerate input
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the severity label
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// MessageCode identifies a diagnostic message. MsgNone means the category is clear.
type MessageCode int

const (
	MsgNone MessageCode = 0

	MsgExposureNotSet   MessageCode = 11
	MsgSurvivorsNotSet  MessageCode = 12
	MsgParametersNotSet MessageCode = 13
	MsgSampleNotSet     MessageCode = 14

	MsgConcentrationTooShort  MessageCode = 21
	MsgExposureTimeTooShort   MessageCode = 22
	MsgExposureLengthMismatch MessageCode = 23
	MsgExposureStart          MessageCode = 24
	MsgExposureOrder          MessageCode = 25

	MsgSurvivorsTooShort      MessageCode = 31
	MsgSurvivorTimeTooShort   MessageCode = 32
	MsgSurvivorLengthMismatch MessageCode = 33
	MsgSurvivorStart          MessageCode = 34
	MsgSurvivorsAscend        MessageCode = 35
	MsgSurvivorOrder          MessageCode = 36

	MsgUnknownDistribution MessageCode = 41
	MsgUnknownSubmodel     MessageCode = 46

	MsgParameterLength       MessageCode = 51
	MsgNegativeParameter     MessageCode = 61
	MsgSpreadWithoutLocation MessageCode = 62

	MsgSampleResolution      MessageCode = 71
	MsgSampleResolutionFixed MessageCode = 72
	MsgTimeResolution        MessageCode = 73
	MsgInterval              MessageCode = 75

	MsgSampleTooShort MessageCode = 81
	MsgNegativeSample MessageCode = 82

	MsgSamplingFailed      MessageCode = 91
	MsgSurvivalFailed      MessageCode = 101
	MsgExposureHorizon     MessageCode = 111
	MsgZeroInitialSurvival MessageCode = 112
	MsgLikelihoodFailed    MessageCode = 121
)

var messageText = map[MessageCode]string{
	MsgExposureNotSet:   "concentrations not set",
	MsgSurvivorsNotSet:  "survivors not set",
	MsgParametersNotSet: "parameters not set",
	MsgSampleNotSet:     "no empirical sample present",

	MsgConcentrationTooShort:  "concentration vector must contain at least 2 values",
	MsgExposureTimeTooShort:   "concentration time vector must contain at least 2 values",
	MsgExposureLengthMismatch: "concentration and time vectors must have the same length",
	MsgExposureStart:          "concentration time vector must start at 0",
	MsgExposureOrder:          "concentration time vector must be strictly increasing",

	MsgSurvivorsTooShort:      "survivor vector must contain at least 2 values",
	MsgSurvivorTimeTooShort:   "survivor time vector must contain at least 2 values",
	MsgSurvivorLengthMismatch: "survivor and time vectors must have the same length",
	MsgSurvivorStart:          "survivor time vector must start at 0",
	MsgSurvivorsAscend:        "survivor counts must not increase",
	MsgSurvivorOrder:          "survivor time vector must be strictly increasing",

	MsgUnknownDistribution: "unknown distribution (valid: lognormal, delta, empirical)",
	MsgUnknownSubmodel:     "unknown submodel (valid: proper, it)",

	MsgParameterLength:       "wrong parameter vector length",
	MsgNegativeParameter:     "parameters must be non-negative, log-likelihood is -Inf",
	MsgSpreadWithoutLocation: "threshold spread must be 0 when location is 0, log-likelihood is -Inf",

	MsgSampleResolution:      "sample resolution must be at least 3",
	MsgSampleResolutionFixed: "sample resolution is fixed by the empirical sample length",
	MsgTimeResolution:        "time resolution must be at least 2",
	MsgInterval:              "interval factor must be greater than 1",

	MsgSampleTooShort: "empirical sample must contain at least 3 values",
	MsgNegativeSample: "empirical sample must contain non-negative values",

	MsgSamplingFailed:      "threshold sampling failed",
	MsgSurvivalFailed:      "calculation of survival probabilities failed",
	MsgExposureHorizon:     "calculation of survival probabilities failed, exposure ends before the last observation",
	MsgZeroInitialSurvival: "calculation of survival probabilities failed, survival at the first observation is 0",
	MsgLikelihoodFailed:    "calculation of log-likelihood failed",
}

// String returns the human-readable message
func (c MessageCode) String() string {
	if text, ok := messageText[c]; ok {
		return text
	}
	return fmt.Sprintf("message %d", int(c))
}

// Severity reports whether the code rejects input or only degrades the result
func (c MessageCode) Severity() Severity {
	switch c {
	case MsgNegativeParameter, MsgSpreadWithoutLocation:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// Diagnostic is one active entry of the record
type Diagnostic struct {
	Category Category
	Code     MessageCode
	Severity Severity
	Message  string
}

// Diagnostics is the per-category record. It is a value type: Set and Clear
// return a modified copy.
type Diagnostics struct {
	codes [categoryCount]MessageCode
}

// Set records code against a category
func (d Diagnostics) Set(c Category, code MessageCode) Diagnostics {
	if c >= 0 && c < categoryCount {
		d.codes[c] = code
	}
	return d
}

// Clear resets a category
func (d Diagnostics) Clear(c Category) Diagnostics {
	return d.Set(c, MsgNone)
}

// Code returns the code recorded against a category
func (d Diagnostics) Code(c Category) MessageCode {
	if c < 0 || c >= categoryCount {
		return MsgNone
	}
	return d.codes[c]
}

// Has reports whether a category is active
func (d Diagnostics) Has(c Category) bool {
	return d.Code(c) != MsgNone
}

// Any reports whether any of the categories is active
func (d Diagnostics) Any(cs ...Category) bool {
	for _, c := range cs {
		if d.Has(c) {
			return true
		}
	}
	return false
}

// Empty reports whether no category is active
func (d Diagnostics) Empty() bool {
	for _, code := range d.codes {
		if code != MsgNone {
			return false
		}
	}
	return true
}

// HasErrors reports whether any active entry has error severity
func (d Diagnostics) HasErrors() bool {
	for _, code := range d.codes {
		if code != MsgNone && code.Severity() == SeverityError {
			return true
		}
	}
	return false
}

// Active lists the active entries in category order
func (d Diagnostics) Active() []Diagnostic {
	var out []Diagnostic
	for i, code := range d.codes {
		if code == MsgNone {
			continue
		}
		out = append(out, Diagnostic{
			Category: Category(i),
			Code:     code,
			Severity: code.Severity(),
			Message:  code.String(),
		})
	}
	return out
}

// Messages maps category names to message text, for active categories only
func (d Diagnostics) Messages() map[string]string {
	out := make(map[string]string)
	for _, diag := range d.Active() {
		out[diag.Category.String()] = diag.Message
	}
	return out
}

// DiagnosticError is returned by setters that reject their input and by
// computation steps that fail
type DiagnosticError struct {
	Category Category
	Code     MessageCode
}

// NewDiagnosticError builds the error for a category and code
func NewDiagnosticError(c Category, code MessageCode) *DiagnosticError {
	return &DiagnosticError{Category: c, Code: code}
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s: %s (%d)", e.Category, e.Code, int(e.Code))
}

// Unwrap exposes the domain sentinel for errors.Is
func (e *DiagnosticError) Unwrap() error {
	switch e.Category {
	case CategoryExposure:
		return core.ErrInvalidExposure
	case CategorySurvivors:
		return core.ErrInvalidSurvivor
	case CategoryDistribution:
		return core.ErrUnknownDistribution
	case CategorySubmodel:
		return core.ErrUnknownSubmodel
	case CategoryParameters, CategoryParameterWarning:
		return core.ErrInvalidParameters
	case CategorySampleResolution, CategoryTimeResolution, CategoryInterval:
		return core.ErrInvalidResolution
	case CategoryEmpiricalSample:
		return core.ErrInvalidSample
	case CategoryThresholdGrid:
		return core.ErrSamplingFailed
	case CategorySurvival:
		return core.ErrSurvivalFailed
	case CategoryLikelihood:
		return core.ErrLikelihoodFailed
	default:
		return core.ErrComputationFailed
	}
}
