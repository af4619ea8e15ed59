package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guts/internal/errors"
)

const experimentYAML = `
name: cli
distribution: delta
parameters: [0, 1, 0.1, 1]
exposure:
  time: [0, 1, 2, 3]
  values: [0, 10, 10, 10]
survivors:
  time: [0, 1, 2, 3]
  values: [10, 10, 8, 5]
sweep:
  - [0, 1, 0.1, 1]
  - [0, -1, 0.1, 1]
  - [0, 1]
`

func setupExperiment(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	path := filepath.Join(dir, "experiment.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (map[string]interface{}, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))
	err := cmd.Execute()

	var decoded map[string]interface{}
	if out.Len() > 0 {
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded), "output: %s", out.String())
	}
	return decoded, err
}

// TestLoglikCommand tests the log-likelihood command output
func TestLoglikCommand(t *testing.T) {
	path := setupExperiment(t, experimentYAML)

	out, err := run(t, "loglik", path)
	require.NoError(t, err)
	assert.Equal(t, "cli", out["experiment"])
	assert.Equal(t, "delta", out["distribution"])

	result := out["result"].(map[string]interface{})
	assert.InDelta(t, -12.1790798310, result["loglikelihood"].(float64), 1e-5)
	assert.Len(t, result["survival"], 4)
}

// TestSurvivalCommandTimes tests prediction at explicit time points with a
// grid summary
func TestSurvivalCommandTimes(t *testing.T) {
	path := setupExperiment(t, experimentYAML)

	out, err := run(t, "survival", path, "--times", "0,0.5,1", "--grid")
	require.NoError(t, err)

	result := out["result"].(map[string]interface{})
	assert.Equal(t, []interface{}{0.0, 0.5, 1.0}, result["times"])
	assert.Equal(t, "NaN", result["loglikelihood"])

	grid := out["grid"].(map[string]interface{})
	summary := grid["summary"].(map[string]interface{})
	assert.Equal(t, 1000.0, summary["points"])
	assert.Equal(t, 1.0, summary["min"])
}

// TestSurvivalCommandExclusiveFlags tests flag validation
func TestSurvivalCommandExclusiveFlags(t *testing.T) {
	path := setupExperiment(t, experimentYAML)

	_, err := run(t, "survival", path, "--times", "0,1", "--steps", "3")
	require.Error(t, err)
	assert.Equal(t, 2, errors.ExitCode(err))
}

// TestSurvivalCommandHorizon tests that an undefined result still prints and
// maps to the computation exit status
func TestSurvivalCommandHorizon(t *testing.T) {
	path := setupExperiment(t, experimentYAML)

	out, err := run(t, "survival", path, "--steps", "10")
	require.Error(t, err)
	assert.Equal(t, 5, errors.ExitCode(err))

	result := out["result"].(map[string]interface{})
	messages := result["messages"].(map[string]interface{})
	assert.Contains(t, messages, "survival")
}

// TestSweepCommand tests sweep output including -Inf and rejected entries
func TestSweepCommand(t *testing.T) {
	path := setupExperiment(t, experimentYAML)

	out, err := run(t, "sweep", path, "--workers", "2")
	require.NoError(t, err)

	entries := out["entries"].([]interface{})
	require.Len(t, entries, 3)
	first := entries[0].(map[string]interface{})
	assert.InDelta(t, -12.1790798310, first["loglikelihood"].(float64), 1e-5)
	assert.Equal(t, "-Inf", entries[1].(map[string]interface{})["loglikelihood"])
	third := entries[2].(map[string]interface{})
	assert.Equal(t, "NaN", third["loglikelihood"])
	assert.Equal(t, true, third["rejected"])
	assert.Equal(t, 0.0, out["best"])
}

// TestSweepCommandWithoutVectors tests the missing sweep section
func TestSweepCommandWithoutVectors(t *testing.T) {
	path := setupExperiment(t, "distribution: delta\n")

	_, err := run(t, "sweep", path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

// TestSchemaCommand tests schema listing
func TestSchemaCommand(t *testing.T) {
	setupExperiment(t, "")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"schema", "lognormal", "it"})
	require.NoError(t, cmd.Execute())

	var schemas []map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &schemas))
	require.Len(t, schemas, 1)
	assert.Equal(t, []interface{}{"h_b", "k_r", "m", "sd"}, schemas[0]["parameters"])

	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"schema", "gamma"})
	assert.Error(t, cmd.Execute())
}

// TestMissingExperiment tests the IO exit status
func TestMissingExperiment(t *testing.T) {
	setupExperiment(t, "")
	_, err := run(t, "loglik", "missing.yaml")
	require.Error(t, err)
	assert.Equal(t, 4, errors.ExitCode(err))
}

// TestNumberMarshal tests non-finite float encoding
func TestNumberMarshal(t *testing.T) {
	data, err := json.Marshal([]number{1.5, number(math.NaN()), number(math.Inf(1)), number(math.Inf(-1))})
	require.NoError(t, err)
	assert.Equal(t, `[1.5,"NaN","+Inf","-Inf"]`, string(data))
}

// TestClassifyCobraErrors tests that argument and flag errors exit as invalid
// input while structured errors keep their code
func TestClassifyCobraErrors(t *testing.T) {
	setupExperiment(t, "")

	_, err := run(t, "loglik")
	require.Error(t, err)
	assert.Equal(t, 2, errors.ExitCode(classify(err)))

	_, err = run(t, "schema", "--no-such-flag")
	require.Error(t, err)
	assert.Equal(t, 2, errors.ExitCode(classify(err)))

	_, err = run(t, "loglik", "missing.yaml")
	require.Error(t, err)
	assert.Equal(t, 4, errors.ExitCode(classify(err)))
	assert.Nil(t, classify(nil))
}
