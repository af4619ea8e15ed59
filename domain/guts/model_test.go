package guts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guts/domain/core"
)

// TestNewModel tests the initial not-set record and defaults
func TestNewModel(t *testing.T) {
	m := NewModel()
	d := m.Diagnostics()

	assert.Equal(t, MsgExposureNotSet, d.Code(CategoryExposure))
	assert.Equal(t, MsgSurvivorsNotSet, d.Code(CategorySurvivors))
	assert.Equal(t, MsgParametersNotSet, d.Code(CategoryParameters))
	assert.Equal(t, Lognormal, m.Distribution())
	assert.Equal(t, StochasticDeath, m.Submodel())
	assert.Equal(t, DefaultSampleResolution, m.SampleResolution())
	assert.Equal(t, DefaultTimeResolution, m.TimeResolution())
	assert.Equal(t, DefaultInterval, m.Interval())
}

// TestModelRejectionKeepsPreviousValue tests that a rejected setter leaves the
// last valid entity in place
func TestModelRejectionKeepsPreviousValue(t *testing.T) {
	m, err := NewModel().WithExposure([]float64{0, 10, 10}, []float64{0, 1, 2})
	require.NoError(t, err)

	m, err = m.WithExposure([]float64{1, 2}, []float64{1, 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidExposure))

	var diag *DiagnosticError
	require.True(t, errors.As(err, &diag))
	assert.Equal(t, MsgExposureStart, diag.Code)

	assert.Equal(t, MsgExposureStart, m.Diagnostics().Code(CategoryExposure))
	assert.Equal(t, []float64{0, 10, 10}, m.Exposure().Concentration)
}

// TestModelImmutability tests that setters never modify the receiver and that
// getters return copies
func TestModelImmutability(t *testing.T) {
	base := NewModel()
	conc := []float64{0, 1, 2}
	next, err := base.WithExposure(conc, []float64{0, 1, 2})
	require.NoError(t, err)

	assert.True(t, base.Diagnostics().Has(CategoryExposure))
	assert.False(t, next.Diagnostics().Has(CategoryExposure))

	conc[0] = 99
	got := next.Exposure()
	assert.Equal(t, 0.0, got.Concentration[0])
	got.Concentration[1] = 42
	assert.Equal(t, 1.0, next.Exposure().Concentration[1])
}

// TestModelParameterWarnings tests that warnings store the vector and errors do not
func TestModelParameterWarnings(t *testing.T) {
	m, err := NewModel().WithDistribution("delta")
	require.NoError(t, err)

	m, err = m.WithParameters([]float64{-1, 1, 0.1, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 1, 0.1, 1}, m.Parameters())
	assert.Equal(t, MsgNegativeParameter, m.Diagnostics().Code(CategoryParameterWarning))
	assert.False(t, m.Diagnostics().Has(CategoryParameters))

	m, err = m.WithParameters([]float64{0, 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrInvalidParameters))
	assert.Equal(t, MsgParameterLength, m.Diagnostics().Code(CategoryParameters))
	assert.False(t, m.Diagnostics().Has(CategoryParameterWarning))
	assert.Equal(t, []float64{-1, 1, 0.1, 1}, m.Parameters())

	m, err = m.WithParameters([]float64{0, 1, 0.1, 1})
	require.NoError(t, err)
	assert.False(t, m.Diagnostics().Any(CategoryParameters, CategoryParameterWarning))
}

// TestModelSpreadWarning tests the lognormal sd-without-m warning
func TestModelSpreadWarning(t *testing.T) {
	m, err := NewModel().WithParameters([]float64{0, 1, 0.1, 0, 0.5})
	require.NoError(t, err)
	assert.Equal(t, MsgSpreadWithoutLocation, m.Diagnostics().Code(CategoryParameterWarning))
}

// TestModelDistributionChangeRevalidates tests that switching distribution
// re-checks the stored vector against the new schema
func TestModelDistributionChangeRevalidates(t *testing.T) {
	m, err := NewModel().WithDistribution("delta")
	require.NoError(t, err)
	m, err = m.WithParameters([]float64{0, 1, 0.1, 2})
	require.NoError(t, err)

	m, err = m.WithDistribution("lognormal")
	require.NoError(t, err, "a distribution change is accepted even when it invalidates parameters")
	assert.Equal(t, MsgParameterLength, m.Diagnostics().Code(CategoryParameters))

	m, err = m.WithDistribution("delta")
	require.NoError(t, err)
	assert.False(t, m.Diagnostics().Has(CategoryParameters))

	m, err = m.WithSubmodel("it")
	require.NoError(t, err)
	assert.Equal(t, MsgParameterLength, m.Diagnostics().Code(CategoryParameters))

	_, err = m.WithDistribution("gamma")
	assert.True(t, errors.Is(err, core.ErrUnknownDistribution))
	_, err = m.WithSubmodel("gompertz")
	assert.True(t, errors.Is(err, core.ErrUnknownSubmodel))
}

// TestModelEmpiricalSample tests sorting, the distribution switch and the
// sample resolution lock
func TestModelEmpiricalSample(t *testing.T) {
	m, err := NewModel().WithEmpiricalSample([]float64{3, 1, 2, 5})
	require.NoError(t, err)

	assert.Equal(t, Empirical, m.Distribution())
	assert.Equal(t, []float64{1, 2, 3, 5}, m.Sample())
	assert.Equal(t, 4, m.SampleResolution())

	_, err = m.WithSampleResolution(10)
	require.Error(t, err)
	var diag *DiagnosticError
	require.True(t, errors.As(err, &diag))
	assert.Equal(t, MsgSampleResolutionFixed, diag.Code)

	m, err = m.WithSampleResolution(4)
	require.NoError(t, err)

	m, err = m.WithDistribution("lognormal")
	require.NoError(t, err)
	m, err = m.WithSampleResolution(10)
	require.NoError(t, err)

	m, err = m.WithDistribution("empirical")
	require.NoError(t, err)
	assert.Equal(t, 4, m.SampleResolution(), "returning to empirical restores N from the sample")
}

// TestModelEmpiricalWithoutSample tests the missing sample marker
func TestModelEmpiricalWithoutSample(t *testing.T) {
	m, err := NewModel().WithDistribution("empirical")
	require.NoError(t, err)
	assert.Equal(t, MsgSampleNotSet, m.Diagnostics().Code(CategoryEmpiricalSample))

	m, err = m.WithDistribution("lognormal")
	require.NoError(t, err)
	assert.False(t, m.Diagnostics().Has(CategoryEmpiricalSample))
}

// TestModelResolutions tests rejected resolutions and intervals
func TestModelResolutions(t *testing.T) {
	m := NewModel()

	_, err := m.WithSampleResolution(2)
	assert.True(t, errors.Is(err, core.ErrInvalidResolution))
	_, err = m.WithTimeResolution(1)
	assert.True(t, errors.Is(err, core.ErrInvalidResolution))
	bad, err := m.WithInterval(0.5)
	assert.True(t, errors.Is(err, core.ErrInvalidResolution))
	assert.Equal(t, DefaultInterval, bad.Interval())

	m, err = m.WithTimeResolution(50)
	require.NoError(t, err)
	assert.Equal(t, 50, m.TimeResolution())
}

// TestModelKeys tests that fingerprints track the inputs they cover
func TestModelKeys(t *testing.T) {
	a, _ := NewModel().WithParameters([]float64{0, 1, 0.1, 2, 1})
	b, _ := NewModel().WithParameters([]float64{0, 1, 0.1, 2, 1})
	c, _ := NewModel().WithParameters([]float64{0.5, 3, 0.1, 2, 1})
	d, _ := NewModel().WithParameters([]float64{0, 1, 0.1, 2, 1.5})

	assert.True(t, a.Key().Equals(b.Key()))
	assert.False(t, a.Key().Equals(c.Key()))
	assert.True(t, a.GridKey().Equals(c.GridKey()), "h_b and k_r do not shape the grid")
	assert.False(t, a.GridKey().Equals(d.GridKey()))
}
