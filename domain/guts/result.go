package guts

import "math"

// ThresholdGrid is the discretized threshold distribution: ascending values and
// aligned log-weights
type ThresholdGrid struct {
	Z       []float64
	Weights []float64
}

// Len returns the number of grid points
func (g *ThresholdGrid) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Z)
}

// Clone returns a deep copy
func (g *ThresholdGrid) Clone() *ThresholdGrid {
	if g == nil {
		return nil
	}
	return &ThresholdGrid{Z: cloneFloats(g.Z), Weights: cloneFloats(g.Weights)}
}

// Result is one evaluation: survival probabilities aligned to Times, the
// paired differences used by the likelihood, and the log-likelihood
type Result struct {
	Times       []float64
	S           []float64
	DiffS       []float64
	LL          float64
	Diagnostics Diagnostics
}

// Clone returns a deep copy
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	return &Result{
		Times:       cloneFloats(r.Times),
		S:           cloneFloats(r.S),
		DiffS:       cloneFloats(r.DiffS),
		LL:          r.LL,
		Diagnostics: r.Diagnostics,
	}
}

// Defined reports whether survival probabilities were computed
func (r *Result) Defined() bool {
	return r != nil && !r.Diagnostics.Any(CategorySurvival, CategoryParameterWarning) && len(r.S) > 0 && !math.IsNaN(r.S[0])
}

// Undefined returns a NaN vector of length n, the value of S when no
// computation took place
func Undefined(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
