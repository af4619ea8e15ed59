package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guts/domain/guts"
	"guts/internal"
	"guts/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{
			Distribution:     "delta",
			Submodel:         "proper",
			SampleResolution: guts.DefaultSampleResolution,
			TimeResolution:   guts.DefaultTimeResolution,
			Interval:         guts.DefaultInterval,
		},
		Sweep: config.SweepConfig{Workers: 2},
		Log:   config.LogConfig{Level: "error"},
	}
}

// TestNewRejectsNil tests constructor guards
func TestNewRejectsNil(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = NewWithLogger(testConfig(), nil)
	assert.Error(t, err)
}

// TestContainerWiring tests that every dependency is wired
func TestContainerWiring(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)

	assert.NotNil(t, c.Logger)
	assert.Equal(t, internal.LogLevelError, c.Logger.GetLevel())
	assert.NotNil(t, c.Reader)
	assert.NotNil(t, c.Sweep)
	require.NotNil(t, c.NewEvaluator)

	// each call yields an independent engine
	assert.NotSame(t, c.NewEvaluator(), c.NewEvaluator())

	m, err := c.BaseModel()
	require.NoError(t, err)
	assert.Equal(t, guts.PointMass, m.Distribution())
}

// TestContainerExperimentRoundTrip tests loading an experiment and running it
// through a session and a sweep
func TestContainerExperimentRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "survivors.csv"),
		[]byte("time,survivors\n0,10\n1,10\n2,8\n3,5\n"), 0o644))
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: round-trip
parameters: [0, 1, 0.1, 1]
exposure:
  time: [0, 1, 2, 3]
  values: [0, 10, 10, 10]
survivors:
  file: survivors.csv
sweep:
  - [0, 1, 0.1, 1]
  - [0, 1, 0.3, 1]
`), 0o644))

	c, err := New(testConfig())
	require.NoError(t, err)

	exp, m, err := c.LoadExperiment(path)
	require.NoError(t, err)
	assert.Equal(t, "round-trip", exp.Name)

	session := c.NewSession(m)
	assert.InDelta(t, -12.1790798310, session.CalcLoglikelihood(), 1e-5)

	report, err := c.Sweep.Run(context.Background(), m, exp.Sweep)
	require.NoError(t, err)
	assert.Len(t, report.Entries, 2)
	assert.InDelta(t, session.Loglikelihood(), report.Entries[0].LL, 1e-12)
}

// TestContainerExperimentFailure tests that loader errors propagate
func TestContainerExperimentFailure(t *testing.T) {
	c, err := New(testConfig())
	require.NoError(t, err)

	_, _, err = c.LoadExperiment(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
