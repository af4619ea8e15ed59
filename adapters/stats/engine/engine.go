package engine

import (
	"guts/domain/core"
	"guts/domain/guts"
)

// Logger is the subset of the application logger the engine writes to
type Logger interface {
	Debug(format string, args ...interface{})
	Trace(format string, args ...interface{})
}

// Stats counts cache activity
type Stats struct {
	GridHits     int `json:"grid_hits"`
	GridMisses   int `json:"grid_misses"`
	ResultHits   int `json:"result_hits"`
	ResultMisses int `json:"result_misses"`
}

// Engine evaluates models and remembers the last threshold grid and the last
// result of each kind, keyed by input fingerprints. An Engine is not safe for
// concurrent use; create one per goroutine.
type Engine struct {
	logger Logger

	gridKey core.Hash
	grid    *guts.ThresholdGrid

	results map[resultKind]cachedResult
	stats   Stats
}

type resultKind int

const (
	kindLikelihood resultKind = iota
	kindSurvival
)

type cachedResult struct {
	key    core.Hash
	result *guts.Result
}

// NewEngine creates a new evaluation engine. logger may be nil.
func NewEngine(logger Logger) *Engine {
	return &Engine{
		logger:  logger,
		results: make(map[resultKind]cachedResult),
	}
}

// Evaluate computes survival probabilities and the log-likelihood
func (e *Engine) Evaluate(m guts.Model) *guts.Result {
	return e.cached(kindLikelihood, m, func() *guts.Result {
		return evaluate(m, e.thresholdGrid, true)
	})
}

// EvaluateSurvival computes survival probabilities only
func (e *Engine) EvaluateSurvival(m guts.Model) *guts.Result {
	return e.cached(kindSurvival, m, func() *guts.Result {
		return evaluate(m, e.thresholdGrid, false)
	})
}

// Predict evaluates survival at arbitrary time points. The grid cache is
// shared with regular evaluations; results are not cached.
func (e *Engine) Predict(m guts.Model, times []float64) *guts.Result {
	return predict(m, times, e.thresholdGrid)
}

// Grid returns the threshold grid of a model, from cache when possible
func (e *Engine) Grid(m guts.Model) (*guts.ThresholdGrid, error) {
	g, err := e.thresholdGrid(m)
	if err != nil {
		return nil, err
	}
	return g.Clone(), nil
}

// Stats returns the cache counters
func (e *Engine) Stats() Stats {
	return e.stats
}

// Reset drops every cached value
func (e *Engine) Reset() {
	e.gridKey = ""
	e.grid = nil
	e.results = make(map[resultKind]cachedResult)
}

func (e *Engine) cached(kind resultKind, m guts.Model, compute func() *guts.Result) *guts.Result {
	key := m.Key()
	if c, ok := e.results[kind]; ok && c.key.Equals(key) {
		e.stats.ResultHits++
		e.trace("result cache hit %s", key.String()[:12])
		return c.result.Clone()
	}

	e.stats.ResultMisses++
	r := compute()
	e.results[kind] = cachedResult{key: key, result: r}
	e.debug("evaluated model %s: LL=%g, active diagnostics=%d", key.String()[:12], r.LL, len(r.Diagnostics.Active()))
	return r.Clone()
}

func (e *Engine) thresholdGrid(m guts.Model) (*guts.ThresholdGrid, error) {
	key := m.GridKey()
	if e.grid != nil && e.gridKey.Equals(key) {
		e.stats.GridHits++
		return e.grid, nil
	}

	e.stats.GridMisses++
	g, err := buildModelGrid(m)
	if err != nil {
		e.debug("threshold sampling failed for %s: %v", m.Distribution(), err)
		return nil, err
	}
	e.gridKey = key
	e.grid = g
	e.debug("built %s threshold grid with %d points", m.Distribution(), g.Len())
	return g, nil
}

func (e *Engine) debug(format string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Debug(format, args...)
	}
}

func (e *Engine) trace(format string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Trace(format, args...)
	}
}
