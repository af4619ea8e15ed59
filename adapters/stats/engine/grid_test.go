package engine

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"guts/domain/core"
	"guts/domain/guts"
)

// TestLognormalMoments tests the moment conversion against gonum's lognormal
func TestLognormalMoments(t *testing.T) {
	for _, tc := range []struct{ m, sd float64 }{{1, 0.5}, {3, 1.5}, {0.2, 2}} {
		mu, sigma2 := lognormalMoments(tc.m, tc.sd)
		ln := distuv.LogNormal{Mu: mu, Sigma: math.Sqrt(sigma2)}
		assert.InDelta(t, tc.m, ln.Mean(), 1e-9*tc.m)
		assert.InDelta(t, tc.sd, ln.StdDev(), 1e-9*tc.sd)
	}
}

// TestLognormalGrid tests ordering, symmetry and weights of the lognormal grid
func TestLognormalGrid(t *testing.T) {
	w := guts.WorkingParameters{M: 2, SD: 1}
	grid, err := BuildGrid(guts.Lognormal, w, 11, guts.DefaultInterval, nil)
	require.NoError(t, err)
	require.Equal(t, 11, grid.Len())

	assert.True(t, sort.Float64sAreSorted(grid.Z))
	mu, sigma2 := lognormalMoments(2, 1)
	assert.InDelta(t, math.Exp(mu), grid.Z[5], 1e-12, "middle point is the median")
	assert.Equal(t, 0.0, grid.Weights[5])

	for i := 0; i < 11; i++ {
		assert.InDelta(t, 2*mu, math.Log(grid.Z[i])+math.Log(grid.Z[10-i]), 1e-12)
		assert.InDelta(t, grid.Weights[i], grid.Weights[10-i], 1e-12)
		assert.LessOrEqual(t, grid.Weights[i], 0.0)
	}

	spread := math.Sqrt(sigma2) * guts.DefaultInterval
	assert.InDelta(t, math.Exp(mu-spread), grid.Z[0], 1e-12)
	assert.InDelta(t, -0.5*guts.DefaultInterval*guts.DefaultInterval, grid.Weights[0], 1e-12)
}

// TestPointMassGrid tests pointmass and the sd == 0 collapse
func TestPointMassGrid(t *testing.T) {
	w := guts.WorkingParameters{M: 4}
	delta, err := BuildGrid(guts.PointMass, w, 5, guts.DefaultInterval, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 4, 4, 4, 4}, delta.Z)
	assert.Equal(t, make([]float64, 5), delta.Weights)

	collapsed, err := BuildGrid(guts.Lognormal, w, 5, guts.DefaultInterval, nil)
	require.NoError(t, err)
	assert.Equal(t, delta, collapsed)
}

// TestBuildGridFailures tests invalid sampling requests
func TestBuildGridFailures(t *testing.T) {
	_, err := BuildGrid(guts.PointMass, guts.WorkingParameters{M: 1}, 2, guts.DefaultInterval, nil)
	assert.True(t, errors.Is(err, core.ErrSamplingFailed))

	_, err = BuildGrid(guts.Empirical, guts.WorkingParameters{}, 3, guts.DefaultInterval, nil)
	assert.True(t, errors.Is(err, core.ErrSamplingFailed))

	_, err = BuildGrid(guts.Lognormal, guts.WorkingParameters{M: 0, SD: 1}, 5, guts.DefaultInterval, nil)
	assert.True(t, errors.Is(err, core.ErrSamplingFailed))

	_, err = BuildGrid(guts.Distribution(9), guts.WorkingParameters{M: 1}, 5, guts.DefaultInterval, nil)
	assert.True(t, errors.Is(err, core.ErrSamplingFailed))
}

// TestSummarizeGrid tests descriptive statistics and lognormal coverage
func TestSummarizeGrid(t *testing.T) {
	w := guts.WorkingParameters{M: 2, SD: 1}
	grid, err := BuildGrid(guts.Lognormal, w, 101, guts.DefaultInterval, nil)
	require.NoError(t, err)

	s, err := SummarizeGrid(grid, guts.Lognormal, w)
	require.NoError(t, err)
	assert.Equal(t, 101, s.Points)
	assert.Equal(t, grid.Z[0], s.Min)
	assert.Equal(t, grid.Z[100], s.Max)
	assert.InDelta(t, grid.Z[50], s.Median, 1e-12)
	assert.InDelta(t, 1-2*distuv.UnitNormal.CDF(-guts.DefaultInterval), s.Coverage, 1e-9)

	empty, err := SummarizeGrid(nil, guts.PointMass, w)
	assert.Error(t, err)
	assert.Equal(t, GridSummary{}, empty)

	delta, err := BuildGrid(guts.PointMass, w, 3, guts.DefaultInterval, nil)
	require.NoError(t, err)
	s, err = SummarizeGrid(delta, guts.PointMass, w)
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Coverage)
	assert.Equal(t, 2.0, s.Mean)
}
