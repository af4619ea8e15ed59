// Package guts holds the model state of the General Unified Threshold model of
// Survival: exposure and survivor series, the distribution and submodel choice,
// the parameter vector and numerical resolutions, plus the diagnostics that
// validation and computation record against them.
package guts

import (
	"math"
	"strings"
)

// Numerical defaults and lower bounds
const (
	DefaultSampleResolution = 1000
	DefaultTimeResolution   = 10000
	DefaultInterval         = 4.0

	MinSampleResolution = 3
	MinTimeResolution   = 2
	MinSampleLength     = 3
	MinSeriesLength     = 2
)

// InfiniteRate encodes an infinite killing rate. exp(-InfiniteRate*x) is 0 for
// any positive x, and InfiniteRate*0 stays 0 instead of NaN.
const InfiniteRate = math.MaxFloat64

// Distribution selects the threshold distribution family
type Distribution int

const (
	Lognormal Distribution = iota
	PointMass
	Empirical
)

var distributionNames = map[string]Distribution{
	"lognormal": Lognormal,
	"delta":     PointMass,
	"pointmass": PointMass,
	"empirical": Empirical,
}

// String returns the canonical identifier
func (d Distribution) String() string {
	switch d {
	case Lognormal:
		return "lognormal"
	case PointMass:
		return "delta"
	case Empirical:
		return "empirical"
	default:
		return "unknown"
	}
}

// ParseDistribution resolves a case-insensitive distribution name
func ParseDistribution(name string) (Distribution, bool) {
	d, ok := distributionNames[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// Submodel selects how damage above threshold kills
type Submodel int

const (
	// StochasticDeath applies a finite killing rate once damage exceeds the threshold
	StochasticDeath Submodel = iota
	// IndividualTolerance kills deterministically at the threshold (infinite killing rate)
	IndividualTolerance
)

var submodelNames = map[string]Submodel{
	"proper":               StochasticDeath,
	"sd":                   StochasticDeath,
	"stochastic-death":     StochasticDeath,
	"it":                   IndividualTolerance,
	"individual-tolerance": IndividualTolerance,
}

// String returns the canonical identifier
func (s Submodel) String() string {
	switch s {
	case StochasticDeath:
		return "proper"
	case IndividualTolerance:
		return "it"
	default:
		return "unknown"
	}
}

// ParseSubmodel resolves a case-insensitive submodel name
func ParseSubmodel(name string) (Submodel, bool) {
	s, ok := submodelNames[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// ExposureSeries is a concentration profile, linear between time points
type ExposureSeries struct {
	Time          []float64
	Concentration []float64
}

// Len returns the number of points
func (e ExposureSeries) Len() int { return len(e.Time) }

// Horizon returns the last exposure time, or NaN when empty
func (e ExposureSeries) Horizon() float64 {
	if len(e.Time) == 0 {
		return math.NaN()
	}
	return e.Time[len(e.Time)-1]
}

func (e ExposureSeries) clone() ExposureSeries {
	return ExposureSeries{Time: cloneFloats(e.Time), Concentration: cloneFloats(e.Concentration)}
}

// SurvivorSeries is an observed count of survivors over time
type SurvivorSeries struct {
	Time  []float64
	Count []int
}

// Len returns the number of observations
func (s SurvivorSeries) Len() int { return len(s.Time) }

// Deaths returns the deaths observed in each interval. The last entry is the
// final survivor count itself, i.e. the deaths beyond the observation horizon.
func (s SurvivorSeries) Deaths() []int {
	n := len(s.Count)
	if n == 0 {
		return nil
	}
	deaths := make([]int, n)
	for i := 1; i < n; i++ {
		deaths[i-1] = s.Count[i-1] - s.Count[i]
	}
	deaths[n-1] = s.Count[n-1]
	return deaths
}

// StepTimes returns the unit-spaced observation times 0, 1, ..., n-1
func StepTimes(n int) []float64 {
	if n < 0 {
		n = 0
	}
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i)
	}
	return times
}

func (s SurvivorSeries) clone() SurvivorSeries {
	return SurvivorSeries{Time: cloneFloats(s.Time), Count: cloneInts(s.Count)}
}

// WorkingParameters is the full five-slot parameter set the engine works on
type WorkingParameters struct {
	Hb float64 // background mortality rate
	Kr float64 // damage recovery rate
	Kk float64 // killing rate, InfiniteRate when pinned
	M  float64 // threshold distribution location
	SD float64 // threshold distribution spread
}

func cloneFloats(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func cloneInts(v []int) []int {
	if v == nil {
		return nil
	}
	out := make([]int, len(v))
	copy(out, v)
	return out
}
