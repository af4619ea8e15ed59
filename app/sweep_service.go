package app

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"guts/domain/core"
	"guts/domain/guts"
	"guts/internal"
	"guts/ports"
)

// SweepService evaluates many parameter vectors against one base model. Each
// task gets its own evaluator, so the engine itself stays single-threaded.
type SweepService struct {
	newEvaluator ports.EvaluatorFactory
	workers      int
	logger       *internal.Logger
}

// SweepEntry is the outcome for one parameter vector
type SweepEntry struct {
	ID         core.EvaluationID `json:"id"`
	Index      int               `json:"index"`
	Parameters []float64         `json:"parameters"`
	LL         float64           `json:"loglikelihood"`
	Messages   map[string]string `json:"messages,omitempty"`
	Rejected   bool              `json:"rejected"`
}

// SweepSummary describes the distribution of finite log-likelihoods
type SweepSummary struct {
	Evaluated int     `json:"evaluated"`
	Finite    int     `json:"finite"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Mean      float64 `json:"mean"`
	Median    float64 `json:"median"`
	StdDev    float64 `json:"std_dev"`
}

// SweepReport contains the complete output of a sweep
type SweepReport struct {
	RunID       core.RunID   `json:"run_id"`
	Entries     []SweepEntry `json:"entries"`
	Best        int          `json:"best"`
	Summary     SweepSummary `json:"summary"`
	Fingerprint core.Hash    `json:"fingerprint"`
	RuntimeMs   int64        `json:"runtime_ms"`
}

// NewSweepService creates a sweep service running at most workers tasks at once
func NewSweepService(newEvaluator ports.EvaluatorFactory, workers int, logger *internal.Logger) *SweepService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SweepService{
		newEvaluator: newEvaluator,
		workers:      workers,
		logger:       logger,
	}
}

// Run evaluates every vector against base. A vector the model rejects yields
// an entry with LL NaN and Rejected set; it does not fail the sweep.
// Cancellation of ctx stops scheduling and returns the context error.
func (s *SweepService) Run(ctx context.Context, base guts.Model, vectors [][]float64) (*SweepReport, error) {
	startTime := time.Now()
	runID := core.NewRunID()
	s.logger.Info("sweep %s: evaluating %d parameter vectors with %d workers", runID, len(vectors), s.workers)

	entries := make([]SweepEntry, len(vectors))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, vec := range vectors {
		if err := gctx.Err(); err != nil {
			break
		}
		i, vec := i, vec // per-iteration copies: go.mod targets go 1.21
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = s.evaluate(i, base, vec)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sweep %s cancelled: %w", runID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sweep %s cancelled: %w", runID, err)
	}

	report := &SweepReport{
		RunID:       runID,
		Entries:     entries,
		Best:        bestEntry(entries),
		Summary:     summarize(entries),
		Fingerprint: sweepFingerprint(base, vectors),
		RuntimeMs:   time.Since(startTime).Milliseconds(),
	}
	s.logger.Info("sweep %s: %d of %d finite, best index %d, %d ms",
		runID, report.Summary.Finite, report.Summary.Evaluated, report.Best, report.RuntimeMs)
	return report, nil
}

func (s *SweepService) evaluate(i int, base guts.Model, vec []float64) SweepEntry {
	entry := SweepEntry{
		ID:         core.NewEvaluationID(),
		Index:      i,
		Parameters: append([]float64(nil), vec...),
	}

	m, err := base.WithParameters(vec)
	if err != nil {
		entry.LL = math.NaN()
		entry.Rejected = true
		entry.Messages = m.Diagnostics().Messages()
		s.logger.Debug("sweep vector %d rejected: %v", i, err)
		return entry
	}

	r := s.newEvaluator().Evaluate(m)
	entry.LL = r.LL
	if msgs := r.Diagnostics.Messages(); len(msgs) > 0 {
		entry.Messages = msgs
	}
	s.logger.Trace("sweep vector %d: LL=%g", i, r.LL)
	return entry
}

// bestEntry returns the index of the largest finite log-likelihood, or -1
func bestEntry(entries []SweepEntry) int {
	best := -1
	for i, e := range entries {
		if !isFinite(e.LL) {
			continue
		}
		if best < 0 || e.LL > entries[best].LL {
			best = i
		}
	}
	return best
}

func summarize(entries []SweepEntry) SweepSummary {
	summary := SweepSummary{Evaluated: len(entries)}

	var finite stats.Float64Data
	for _, e := range entries {
		if isFinite(e.LL) {
			finite = append(finite, e.LL)
		}
	}
	summary.Finite = len(finite)
	if len(finite) == 0 {
		return summary
	}

	summary.Min, _ = finite.Min()
	summary.Max, _ = finite.Max()
	summary.Mean, _ = finite.Mean()
	summary.Median, _ = finite.Median()
	if len(finite) > 1 {
		summary.StdDev, _ = finite.StandardDeviationSample()
	}
	return summary
}

func sweepFingerprint(base guts.Model, vectors [][]float64) core.Hash {
	f := core.NewFingerprint().Tag("sweep").Tag(base.Key().String()).Int(len(vectors))
	for _, v := range vectors {
		f.Floats(v)
	}
	return f.Sum()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
