package engine

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"guts/domain/guts"
)

// BuildGrid discretizes the threshold distribution into n ascending values
// with aligned log-weights
func BuildGrid(dist guts.Distribution, w guts.WorkingParameters, n int, interval float64, sample []float64) (*guts.ThresholdGrid, error) {
	if n < guts.MinSampleResolution {
		return nil, guts.NewDiagnosticError(guts.CategoryThresholdGrid, guts.MsgSamplingFailed)
	}

	var grid *guts.ThresholdGrid
	switch dist {
	case guts.PointMass:
		grid = pointMassGrid(w.M, n)
	case guts.Lognormal:
		if w.SD == 0 {
			grid = pointMassGrid(w.M, n)
			break
		}
		grid = lognormalGrid(w.M, w.SD, n, interval)
	case guts.Empirical:
		if len(sample) != n {
			return nil, guts.NewDiagnosticError(guts.CategoryThresholdGrid, guts.MsgSamplingFailed)
		}
		grid = &guts.ThresholdGrid{
			Z:       append([]float64(nil), sample...),
			Weights: make([]float64, n),
		}
	default:
		return nil, guts.NewDiagnosticError(guts.CategoryThresholdGrid, guts.MsgSamplingFailed)
	}

	if floats.HasNaN(grid.Z) || floats.HasNaN(grid.Weights) || math.IsInf(floats.Max(grid.Z), 1) {
		return nil, guts.NewDiagnosticError(guts.CategoryThresholdGrid, guts.MsgSamplingFailed)
	}
	return grid, nil
}

func pointMassGrid(m float64, n int) *guts.ThresholdGrid {
	z := make([]float64, n)
	for i := range z {
		z[i] = m
	}
	return &guts.ThresholdGrid{Z: z, Weights: make([]float64, n)}
}

// lognormalGrid spreads n points symmetrically in log space over
// mu +/- interval*sigma; the weights are the unnormalized log-density.
func lognormalGrid(m, sd float64, n int, interval float64) *guts.ThresholdGrid {
	mu, sigma2 := lognormalMoments(m, sd)
	spread := math.Sqrt(sigma2) * interval

	z := make([]float64, n)
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		u := float64(2*i-n+1) / float64(n-1)
		z[i] = math.Exp(u*spread + mu)
		w[i] = -0.5 * (u * spread) * (u * spread) / sigma2
	}
	return &guts.ThresholdGrid{Z: z, Weights: w}
}

// lognormalMoments converts an arithmetic mean and standard deviation into the
// log-space location and variance
func lognormalMoments(m, sd float64) (mu, sigma2 float64) {
	sigma2 = math.Log(1 + (sd/m)*(sd/m))
	mu = math.Log(m) - sigma2/2
	return mu, sigma2
}

// GridSummary describes a threshold grid for reports
type GridSummary struct {
	Points   int     `json:"points"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Coverage float64 `json:"coverage"`
}

// SummarizeGrid computes descriptive statistics of the grid values. For a
// lognormal distribution Coverage is the probability mass between the
// smallest and largest grid value; otherwise it is 1.
func SummarizeGrid(grid *guts.ThresholdGrid, dist guts.Distribution, w guts.WorkingParameters) (GridSummary, error) {
	if grid.Len() == 0 {
		return GridSummary{}, guts.NewDiagnosticError(guts.CategoryThresholdGrid, guts.MsgSamplingFailed)
	}
	data := stats.Float64Data(grid.Z)

	summary := GridSummary{Points: grid.Len(), Coverage: 1}
	var err error
	if summary.Min, err = data.Min(); err != nil {
		return GridSummary{}, err
	}
	if summary.Max, err = data.Max(); err != nil {
		return GridSummary{}, err
	}
	if summary.Mean, err = data.Mean(); err != nil {
		return GridSummary{}, err
	}
	if summary.Median, err = data.Median(); err != nil {
		return GridSummary{}, err
	}

	if dist == guts.Lognormal && w.SD > 0 && w.M > 0 {
		mu, sigma2 := lognormalMoments(w.M, w.SD)
		ln := distuv.LogNormal{Mu: mu, Sigma: math.Sqrt(sigma2)}
		summary.Coverage = ln.CDF(summary.Max) - ln.CDF(summary.Min)
	}
	return summary, nil
}
