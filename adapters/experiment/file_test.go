package experiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guts/adapters/excel"
	"guts/domain/guts"
	"guts/internal"
	"guts/internal/errors"
)

const inlineExperiment = `
name: reference
distribution: delta
submodel: proper
time_resolution: 5000
parameters: [0, 1, 0.1, 1]
exposure:
  time: [0, 1, 2, 3]
  values: [0, 10, 10, 10]
survivors:
  time: [0, 1, 2, 3]
  values: [10, 10, 8, 5]
sweep:
  - [0, 1, 0.1, 1]
  - [0, 1, 0.2, 1]
predict: [0, 0.5, 1]
`

func writeExperiment(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadInline tests decoding and model construction from inline series
func TestLoadInline(t *testing.T) {
	path := writeExperiment(t, t.TempDir(), inlineExperiment)

	exp, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "reference", exp.Name)
	assert.Len(t, exp.Sweep, 2)
	assert.Equal(t, []float64{0, 0.5, 1}, exp.Predict)

	m, err := exp.Model(guts.NewModel(), nil)
	require.NoError(t, err)
	assert.Equal(t, guts.PointMass, m.Distribution())
	assert.Equal(t, guts.StochasticDeath, m.Submodel())
	assert.Equal(t, 5000, m.TimeResolution())
	assert.Equal(t, guts.DefaultSampleResolution, m.SampleResolution())
	assert.Equal(t, []int{10, 10, 8, 5}, m.Survivors().Count)
	assert.Equal(t, []float64{0, 10, 10, 10}, m.Exposure().Concentration)
	assert.False(t, m.Diagnostics().HasErrors(), "diagnostics: %v", m.Diagnostics().Messages())
}

// TestLoadDefaultsName tests that the file name stands in for a missing name
func TestLoadDefaultsName(t *testing.T) {
	path := writeExperiment(t, t.TempDir(), "distribution: lognormal\n")
	exp, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "experiment.yaml", exp.Name)
}

// TestModelFileSeries tests series referenced relative to the experiment file
func TestModelFileSeries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "exposure.csv"),
		[]byte("time,conc\n0,0\n1,10\n2,10\n3,10\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "survivors.csv"),
		[]byte("time,survivors\n0,10\n1,10\n2,8\n3,5\n"), 0o644))

	path := writeExperiment(t, dir, `
distribution: delta
parameters: [0, 1, 0.1, 1]
exposure:
  file: exposure.csv
survivors:
  file: survivors.csv
`)
	exp, err := Load(path)
	require.NoError(t, err)

	reader := excel.NewDataReader(internal.NewLogger(internal.LogLevelError))
	m, err := exp.Model(guts.NewModel(), reader)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 2, 3}, m.Exposure().Time)
	assert.Equal(t, []int{10, 10, 8, 5}, m.Survivors().Count)
}

// TestModelEmpiricalSample tests that a sample switches the distribution
func TestModelEmpiricalSample(t *testing.T) {
	exp, err := Parse([]byte(`
submodel: it
sample: [3, 1, 2, 5]
parameters: [0, 1]
`), "")
	require.NoError(t, err)

	m, err := exp.Model(guts.NewModel(), nil)
	require.NoError(t, err)
	assert.Equal(t, guts.Empirical, m.Distribution())
	assert.Equal(t, 4, m.SampleResolution())
	assert.Equal(t, []float64{1, 2, 3, 5}, m.Sample())
	assert.Equal(t, []float64{0, 1}, m.Parameters())
}

// TestModelErrors tests that the failing field is named and classified
func TestModelErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		field   string
		errCode string
	}{
		{
			name:    "unknown distribution",
			yaml:    "distribution: gamma\n",
			field:   "distribution",
			errCode: errors.CodeConfigInvalid,
		},
		{
			name:    "parameter length",
			yaml:    "distribution: delta\nparameters: [1, 2]\n",
			field:   "parameters",
			errCode: errors.CodeValidationError,
		},
		{
			name:    "fractional survivors",
			yaml:    "survivors:\n  time: [0, 1]\n  values: [10, 9.5]\n",
			field:   "survivors",
			errCode: errors.CodeValidationError,
		},
		{
			name:    "file without reader",
			yaml:    "exposure:\n  file: exposure.csv\n",
			field:   "no series reader",
			errCode: errors.CodeInvalidInput,
		},
		{
			name:    "bad exposure",
			yaml:    "exposure:\n  time: [1, 2]\n  values: [0, 1]\n",
			field:   "exposure",
			errCode: errors.CodeValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp, err := Parse([]byte(tt.yaml), "")
			require.NoError(t, err)

			_, err = exp.Model(guts.NewModel(), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
			assert.Equal(t, tt.errCode, errors.GetCode(err))
		})
	}
}

// TestParseRejects tests malformed experiment files
func TestParseRejects(t *testing.T) {
	_, err := Parse([]byte("distribution: delta\nunknown_key: 1\n"), "")
	assert.Error(t, err)

	_, err = Parse([]byte("exposure:\n  file: a.csv\n  time: [0, 1]\n"), "")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeIOError, errors.GetCode(err))

	path := writeExperiment(t, t.TempDir(), "parameters: not-a-list\n")
	_, err = Load(path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeParseError, errors.GetCode(err))
}
