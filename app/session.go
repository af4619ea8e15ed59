package app

import (
	"math"

	"guts/domain/guts"
	"guts/internal"
	"guts/ports"
)

// Session is the stateful GUTS object: it owns the current model, forwards
// computations to an evaluator and keeps the last result. Setters keep the
// previous valid value on rejection and report why through Messages.
//
// A Session is not safe for concurrent use.
type Session struct {
	model     guts.Model
	evaluator ports.Evaluator
	logger    *internal.Logger
	result    *guts.Result
}

// NewSession creates a session over a fresh model
func NewSession(evaluator ports.Evaluator, logger *internal.Logger) *Session {
	return NewSessionFrom(guts.NewModel(), evaluator, logger)
}

// NewSessionFrom creates a session over an existing model
func NewSessionFrom(model guts.Model, evaluator ports.Evaluator, logger *internal.Logger) *Session {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Session{
		model:     model,
		evaluator: evaluator,
		logger:    logger,
	}
}

// apply stores the model returned by a setter and drops the stale result
func (s *Session) apply(op string, next guts.Model, err error) error {
	s.model = next
	s.result = nil
	if err != nil {
		s.logger.Warn("%s rejected: %v", op, err)
		return err
	}
	return nil
}

// SetExposure sets the concentrations C at time points Ct
func (s *Session) SetExposure(conc, times []float64) error {
	next, err := s.model.WithExposure(conc, times)
	return s.apply("exposure", next, err)
}

// SetSurvivors sets the survivor counts y at time points yt
func (s *Session) SetSurvivors(counts []int, times []float64) error {
	next, err := s.model.WithSurvivors(counts, times)
	return s.apply("survivors", next, err)
}

// SetDistribution selects lognormal, delta or empirical
func (s *Session) SetDistribution(name string) error {
	next, err := s.model.WithDistribution(name)
	return s.apply("distribution", next, err)
}

// SetSubmodel selects proper (stochastic death) or it (individual tolerance)
func (s *Session) SetSubmodel(name string) error {
	next, err := s.model.WithSubmodel(name)
	return s.apply("submodel", next, err)
}

// SetParameters sets the parameter vector in schema order
func (s *Session) SetParameters(par []float64) error {
	next, err := s.model.WithParameters(par)
	if code := next.Diagnostics().Code(guts.CategoryParameterWarning); err == nil && code != guts.MsgNone {
		s.logger.Warn("parameters accepted with warning: %s", code)
	}
	return s.apply("parameters", next, err)
}

// SetSampleResolution sets N
func (s *Session) SetSampleResolution(n int) error {
	next, err := s.model.WithSampleResolution(n)
	return s.apply("sample resolution", next, err)
}

// SetTimeResolution sets M
func (s *Session) SetTimeResolution(m int) error {
	next, err := s.model.WithTimeResolution(m)
	return s.apply("time resolution", next, err)
}

// SetInterval sets the lognormal quantile widening factor
func (s *Session) SetInterval(interval float64) error {
	next, err := s.model.WithInterval(interval)
	return s.apply("interval", next, err)
}

// SetEmpiricalSample sets the threshold sample and switches to the empirical
// distribution
func (s *Session) SetEmpiricalSample(sample []float64) error {
	next, err := s.model.WithEmpiricalSample(sample)
	return s.apply("empirical sample", next, err)
}

// CalcSurvivalProbabilities computes S at the survivor time points
func (s *Session) CalcSurvivalProbabilities() []float64 {
	s.result = s.evaluator.EvaluateSurvival(s.model)
	s.logResult("survival")
	return s.SurvivalProbabilities()
}

// CalcSurvivalProbabilitiesAt predicts S at arbitrary time points. The
// session's survivor series and last result are left untouched.
func (s *Session) CalcSurvivalProbabilitiesAt(times []float64) *guts.Result {
	r := s.evaluator.Predict(s.model, times)
	s.logger.Debug("predicted survival at %d time points, diagnostics=%v", len(times), r.Diagnostics.Messages())
	return r
}

// CalcSurvivalProbabilitiesN predicts S at 0, 1, ..., n-1
func (s *Session) CalcSurvivalProbabilitiesN(n int) *guts.Result {
	return s.CalcSurvivalProbabilitiesAt(guts.StepTimes(n))
}

// CalcLoglikelihood computes S and the log-likelihood
func (s *Session) CalcLoglikelihood() float64 {
	s.result = s.evaluator.Evaluate(s.model)
	s.logResult("log-likelihood")
	return s.result.LL
}

func (s *Session) logResult(kind string) {
	d := s.result.Diagnostics
	if d.Any(guts.CategoryThresholdGrid, guts.CategorySurvival, guts.CategoryLikelihood) {
		s.logger.Warn("%s computation failed: %v", kind, d.Messages())
		return
	}
	s.logger.Debug("%s computed: LL=%g", kind, s.result.LL)
}

// Model returns the current immutable model
func (s *Session) Model() guts.Model { return s.model }

// Exposure returns C and Ct
func (s *Session) Exposure() guts.ExposureSeries { return s.model.Exposure() }

// Survivors returns y and yt
func (s *Session) Survivors() guts.SurvivorSeries { return s.model.Survivors() }

// Distribution returns the distribution identifier
func (s *Session) Distribution() string { return s.model.Distribution().String() }

// Submodel returns the submodel identifier
func (s *Session) Submodel() string { return s.model.Submodel().String() }

// ParameterNames returns the active parameter names in order
func (s *Session) ParameterNames() []string { return s.model.Schema().Names() }

// Parameters returns the parameter vector as supplied
func (s *Session) Parameters() []float64 { return s.model.Parameters() }

// WorkingParameters returns the five working parameters
func (s *Session) WorkingParameters() guts.WorkingParameters { return s.model.WorkingParameters() }

// Sample returns the sorted empirical sample
func (s *Session) Sample() []float64 { return s.model.Sample() }

// SampleResolution returns N
func (s *Session) SampleResolution() int { return s.model.SampleResolution() }

// TimeResolution returns M
func (s *Session) TimeResolution() int { return s.model.TimeResolution() }

// Interval returns the lognormal quantile widening factor
func (s *Session) Interval() float64 { return s.model.Interval() }

// SurvivalProbabilities returns S from the last computation, or nil
func (s *Session) SurvivalProbabilities() []float64 {
	if s.result == nil {
		return nil
	}
	return append([]float64(nil), s.result.S...)
}

// Loglikelihood returns the last log-likelihood, NaN before any computation
func (s *Session) Loglikelihood() float64 {
	if s.result == nil {
		return math.NaN()
	}
	return s.result.LL
}

// Result returns a copy of the last result, or nil
func (s *Session) Result() *guts.Result { return s.result.Clone() }

// Diagnostics returns the record of the last computation, or of the model
// when nothing has been computed since the last change
func (s *Session) Diagnostics() guts.Diagnostics {
	if s.result != nil {
		return s.result.Diagnostics
	}
	return s.model.Diagnostics()
}

// Messages maps active diagnostic categories to human-readable text
func (s *Session) Messages() map[string]string {
	return s.Diagnostics().Messages()
}
