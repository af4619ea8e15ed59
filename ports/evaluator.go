package ports

import (
	"guts/domain/guts"
)

// Evaluator computes survival probabilities and log-likelihoods for models.
// Implementations may cache and need not be safe for concurrent use.
type Evaluator interface {
	Evaluate(m guts.Model) *guts.Result
	EvaluateSurvival(m guts.Model) *guts.Result
	Predict(m guts.Model, times []float64) *guts.Result
}

// EvaluatorFactory creates an independent Evaluator, one per concurrent task
type EvaluatorFactory func() Evaluator
