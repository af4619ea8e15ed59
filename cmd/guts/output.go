package main

import (
	"encoding/json"
	"io"
	"math"
	"strconv"

	"guts/adapters/stats/engine"
	"guts/app"
	"guts/domain/guts"
	"guts/internal/errors"
)

// number renders NaN and infinities as JSON strings, which encoding/json
// refuses to marshal as numbers
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	v := float64(n)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 64)), nil
}

func numbers(v []float64) []number {
	out := make([]number, len(v))
	for i, x := range v {
		out[i] = number(x)
	}
	return out
}

type modelOutput struct {
	Experiment     string             `json:"experiment"`
	Distribution   string             `json:"distribution"`
	Submodel       string             `json:"submodel"`
	ParameterNames []string           `json:"parameter_names"`
	Parameters     []number           `json:"parameters"`
	Result         *resultOutput      `json:"result,omitempty"`
	Grid           *gridSummaryOutput `json:"grid,omitempty"`
	Fingerprint    string             `json:"fingerprint"`
	Messages       map[string]string  `json:"messages,omitempty"`
}

type resultOutput struct {
	Times         []number          `json:"times"`
	Survival      []number          `json:"survival"`
	Loglikelihood number            `json:"loglikelihood"`
	Messages      map[string]string `json:"messages,omitempty"`
}

type gridSummaryOutput struct {
	Summary *engine.GridSummary `json:"summary,omitempty"`
	Error   string              `json:"error,omitempty"`
}

type schemaOutput struct {
	Distribution string   `json:"distribution"`
	Submodel     string   `json:"submodel"`
	Parameters   []string `json:"parameters"`
}

type sweepEntryOutput struct {
	ID            string            `json:"id"`
	Index         int               `json:"index"`
	Parameters    []number          `json:"parameters"`
	Loglikelihood number            `json:"loglikelihood"`
	Rejected      bool              `json:"rejected,omitempty"`
	Messages      map[string]string `json:"messages,omitempty"`
}

type sweepOutput struct {
	Experiment   string             `json:"experiment"`
	Distribution string             `json:"distribution"`
	Submodel     string             `json:"submodel"`
	RunID        string             `json:"run_id"`
	Fingerprint  string             `json:"fingerprint"`
	Best         int                `json:"best"`
	Summary      app.SweepSummary   `json:"summary"`
	RuntimeMs    int64              `json:"runtime_ms"`
	Entries      []sweepEntryOutput `json:"entries"`
}

func newModelOutput(name string, m guts.Model) *modelOutput {
	out := &modelOutput{
		Experiment:     name,
		Distribution:   m.Distribution().String(),
		Submodel:       m.Submodel().String(),
		ParameterNames: m.Schema().Names(),
		Parameters:     numbers(m.Parameters()),
		Fingerprint:    m.Key().String(),
	}
	if msgs := m.Diagnostics().Messages(); len(msgs) > 0 {
		out.Messages = msgs
	}
	return out
}

func newResultOutput(r *guts.Result) *resultOutput {
	if r == nil {
		return nil
	}
	out := &resultOutput{
		Times:         numbers(r.Times),
		Survival:      numbers(r.S),
		Loglikelihood: number(r.LL),
	}
	if msgs := r.Diagnostics.Messages(); len(msgs) > 0 {
		out.Messages = msgs
	}
	return out
}

func newSweepOutput(name string, m guts.Model, report *app.SweepReport) *sweepOutput {
	out := &sweepOutput{
		Experiment:   name,
		Distribution: m.Distribution().String(),
		Submodel:     m.Submodel().String(),
		RunID:        report.RunID.String(),
		Fingerprint:  report.Fingerprint.String(),
		Best:         report.Best,
		Summary:      report.Summary,
		RuntimeMs:    report.RuntimeMs,
		Entries:      make([]sweepEntryOutput, len(report.Entries)),
	}
	for i, e := range report.Entries {
		out.Entries[i] = sweepEntryOutput{
			ID:            e.ID.String(),
			Index:         e.Index,
			Parameters:    numbers(e.Parameters),
			Loglikelihood: number(e.LL),
			Rejected:      e.Rejected,
			Messages:      e.Messages,
		}
	}
	return out
}

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(errors.InternalError(err.Error()), "failed to encode output")
	}
	return nil
}
