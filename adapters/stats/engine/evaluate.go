package engine

import (
	"errors"
	"math"

	"guts/domain/guts"
)

// gridSource yields the threshold grid for a model
type gridSource func(m guts.Model) (*guts.ThresholdGrid, error)

func buildModelGrid(m guts.Model) (*guts.ThresholdGrid, error) {
	return BuildGrid(m.Distribution(), m.WorkingParameters(), m.SampleResolution(), m.Interval(), m.Sample())
}

// Evaluate computes survival probabilities and the log-likelihood of a model.
// It never fails: every problem is reported through the result diagnostics,
// with S undefined and LL NaN, or LL -Inf under a parameter warning.
func Evaluate(m guts.Model) *guts.Result {
	return evaluate(m, buildModelGrid, true)
}

// EvaluateSurvival computes survival probabilities only; LL is left NaN
func EvaluateSurvival(m guts.Model) *guts.Result {
	return evaluate(m, buildModelGrid, false)
}

// Predict evaluates survival at arbitrary time points by substituting a zero
// survivor series observed at times
func Predict(m guts.Model, times []float64) *guts.Result {
	return predict(m, times, buildModelGrid)
}

// PredictSteps evaluates survival at 0, 1, ..., n-1
func PredictSteps(m guts.Model, n int) *guts.Result {
	return Predict(m, guts.StepTimes(n))
}

func predict(m guts.Model, times []float64, grids gridSource) *guts.Result {
	next, err := m.WithSurvivors(make([]int, len(times)), times)
	if err != nil {
		d := next.Diagnostics().Set(guts.CategorySurvival, guts.MsgSurvivalFailed)
		return undefinedResult(times, d)
	}
	return evaluate(next, grids, false)
}

func evaluate(m guts.Model, grids gridSource, withLikelihood bool) *guts.Result {
	d := m.Diagnostics()
	survivors := m.Survivors()
	warned := d.Has(guts.CategoryParameterWarning)

	// threshold grid
	var grid *guts.ThresholdGrid
	switch {
	case d.Any(guts.CategoryParameters, guts.CategorySubmodel, guts.CategoryDistribution,
		guts.CategorySampleResolution, guts.CategoryInterval, guts.CategoryEmpiricalSample):
		d = d.Set(guts.CategoryThresholdGrid, guts.MsgSamplingFailed)
	case warned:
		d = d.Clear(guts.CategoryThresholdGrid)
	default:
		g, err := grids(m)
		if err != nil {
			d = d.Set(guts.CategoryThresholdGrid, guts.MsgSamplingFailed)
		} else {
			grid = g
			d = d.Clear(guts.CategoryThresholdGrid)
		}
	}

	// survival probabilities
	result := undefinedResult(survivors.Time, d)
	switch {
	case d.Any(guts.CategoryThresholdGrid, guts.CategorySurvivors, guts.CategoryExposure, guts.CategoryTimeResolution):
		d = d.Set(guts.CategorySurvival, guts.MsgSurvivalFailed)
	case warned:
		d = d.Clear(guts.CategorySurvival)
	default:
		surv, err := Integrate(m.Exposure(), survivors.Time, m.WorkingParameters(), grid, m.TimeResolution())
		if err != nil {
			d = d.Set(guts.CategorySurvival, codeOf(err, guts.MsgSurvivalFailed))
		} else {
			result.S = surv.S
			result.DiffS = surv.DiffS
			d = d.Clear(guts.CategorySurvival)
		}
	}

	// log-likelihood
	if withLikelihood {
		switch {
		case warned:
			result.LL = math.Inf(-1)
			d = d.Clear(guts.CategoryLikelihood)
		case d.Any(guts.CategorySurvivors, guts.CategorySurvival):
			result.LL = math.NaN()
			d = d.Set(guts.CategoryLikelihood, guts.MsgLikelihoodFailed)
		default:
			result.LL = LogLikelihood(result.DiffS, survivors.Deaths())
			d = d.Clear(guts.CategoryLikelihood)
		}
	}

	result.Diagnostics = d
	return result
}

func undefinedResult(times []float64, d guts.Diagnostics) *guts.Result {
	return &guts.Result{
		Times:       append([]float64(nil), times...),
		S:           guts.Undefined(len(times)),
		DiffS:       guts.Undefined(len(times)),
		LL:          math.NaN(),
		Diagnostics: d,
	}
}

func codeOf(err error, fallback guts.MessageCode) guts.MessageCode {
	var diag *guts.DiagnosticError
	if errors.As(err, &diag) {
		return diag.Code
	}
	return fallback
}
