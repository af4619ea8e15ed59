package guts

import (
	"sort"

	"guts/domain/core"
)

// Model is an immutable snapshot of everything a likelihood evaluation needs.
//
// Every With* setter returns a new Model. On acceptance the entity is replaced
// and its category cleared. On rejection the returned Model keeps the previous
// valid entity (or none), records the message code, and a *DiagnosticError is
// returned alongside it. Warnings store the input, record the code and return
// a nil error.
type Model struct {
	exposure         ExposureSeries
	survivors        SurvivorSeries
	distribution     Distribution
	submodel         Submodel
	parameters       []float64
	sample           []float64
	sampleResolution int
	timeResolution   int
	interval         float64
	diagnostics      Diagnostics
}

// NewModel returns a lognormal stochastic-death model with default resolutions
// and nothing else set
func NewModel() Model {
	d := Diagnostics{}.
		Set(CategoryExposure, MsgExposureNotSet).
		Set(CategorySurvivors, MsgSurvivorsNotSet).
		Set(CategoryParameters, MsgParametersNotSet)
	return Model{
		distribution:     Lognormal,
		submodel:         StochasticDeath,
		sampleResolution: DefaultSampleResolution,
		timeResolution:   DefaultTimeResolution,
		interval:         DefaultInterval,
		diagnostics:      d,
	}
}

func (m Model) reject(c Category, code MessageCode) (Model, error) {
	m.diagnostics = m.diagnostics.Set(c, code)
	return m, NewDiagnosticError(c, code)
}

// WithExposure sets the concentration profile
func (m Model) WithExposure(conc, times []float64) (Model, error) {
	if code := ValidateExposure(conc, times); code != MsgNone {
		return m.reject(CategoryExposure, code)
	}
	m.exposure = ExposureSeries{Time: cloneFloats(times), Concentration: cloneFloats(conc)}
	m.diagnostics = m.diagnostics.Clear(CategoryExposure)
	return m, nil
}

// WithSurvivors sets the observed survivor series
func (m Model) WithSurvivors(counts []int, times []float64) (Model, error) {
	if code := ValidateSurvivors(counts, times); code != MsgNone {
		return m.reject(CategorySurvivors, code)
	}
	m.survivors = SurvivorSeries{Time: cloneFloats(times), Count: cloneInts(counts)}
	m.diagnostics = m.diagnostics.Clear(CategorySurvivors)
	return m, nil
}

// WithDistribution switches the threshold distribution by name and
// re-validates the stored parameters against the new schema
func (m Model) WithDistribution(name string) (Model, error) {
	dist, ok := ParseDistribution(name)
	if !ok {
		return m.reject(CategoryDistribution, MsgUnknownDistribution)
	}
	m.distribution = dist
	m.diagnostics = m.diagnostics.Clear(CategoryDistribution)
	return m.revalidate(), nil
}

// WithSubmodel switches the submodel by name and re-validates the stored
// parameters against the new schema
func (m Model) WithSubmodel(name string) (Model, error) {
	sub, ok := ParseSubmodel(name)
	if !ok {
		return m.reject(CategorySubmodel, MsgUnknownSubmodel)
	}
	m.submodel = sub
	m.diagnostics = m.diagnostics.Clear(CategorySubmodel)
	return m.revalidate(), nil
}

// WithParameters sets the user parameter vector in schema order
func (m Model) WithParameters(par []float64) (Model, error) {
	code := ValidateParameters(m.Schema(), par)
	if code != MsgNone && code.Severity() == SeverityError {
		m.diagnostics = m.diagnostics.Clear(CategoryParameterWarning)
		return m.reject(CategoryParameters, code)
	}
	m.parameters = cloneFloats(par)
	m.diagnostics = m.diagnostics.Clear(CategoryParameters).Set(CategoryParameterWarning, code)
	return m, nil
}

// WithSampleResolution sets the threshold grid size N
func (m Model) WithSampleResolution(n int) (Model, error) {
	if code := ValidateSampleResolution(n); code != MsgNone {
		return m.reject(CategorySampleResolution, code)
	}
	if m.distribution == Empirical && m.sample != nil && n != len(m.sample) {
		return m.reject(CategorySampleResolution, MsgSampleResolutionFixed)
	}
	m.sampleResolution = n
	m.diagnostics = m.diagnostics.Clear(CategorySampleResolution)
	return m, nil
}

// WithTimeResolution sets the number of integration steps M
func (m Model) WithTimeResolution(steps int) (Model, error) {
	if code := ValidateTimeResolution(steps); code != MsgNone {
		return m.reject(CategoryTimeResolution, code)
	}
	m.timeResolution = steps
	m.diagnostics = m.diagnostics.Clear(CategoryTimeResolution)
	return m, nil
}

// WithInterval sets the factor that widens the lognormal quantile range
func (m Model) WithInterval(interval float64) (Model, error) {
	if code := ValidateInterval(interval); code != MsgNone {
		return m.reject(CategoryInterval, code)
	}
	m.interval = interval
	m.diagnostics = m.diagnostics.Clear(CategoryInterval)
	return m, nil
}

// WithEmpiricalSample stores a sorted copy of the sample, switches the
// distribution to empirical and sets N to the sample length
func (m Model) WithEmpiricalSample(sample []float64) (Model, error) {
	if code := ValidateSample(sample); code != MsgNone {
		return m.reject(CategoryEmpiricalSample, code)
	}
	sorted := cloneFloats(sample)
	sort.Float64s(sorted)
	m.sample = sorted
	m.distribution = Empirical
	m.sampleResolution = len(sorted)
	m.diagnostics = m.diagnostics.
		Clear(CategoryEmpiricalSample).
		Clear(CategoryDistribution).
		Clear(CategorySampleResolution)
	return m.revalidate(), nil
}

// revalidate re-derives the categories that depend on the distribution and
// submodel choice
func (m Model) revalidate() Model {
	if m.parameters != nil {
		code := ValidateParameters(m.Schema(), m.parameters)
		m.diagnostics = m.diagnostics.Clear(CategoryParameters).Clear(CategoryParameterWarning)
		switch {
		case code == MsgNone:
		case code.Severity() == SeverityError:
			m.diagnostics = m.diagnostics.Set(CategoryParameters, code)
		default:
			m.diagnostics = m.diagnostics.Set(CategoryParameterWarning, code)
		}
	}

	switch {
	case m.distribution == Empirical && m.sample == nil:
		m.diagnostics = m.diagnostics.Set(CategoryEmpiricalSample, MsgSampleNotSet)
	case m.distribution == Empirical:
		m.sampleResolution = len(m.sample)
		m.diagnostics = m.diagnostics.Clear(CategorySampleResolution)
	case m.diagnostics.Code(CategoryEmpiricalSample) == MsgSampleNotSet:
		m.diagnostics = m.diagnostics.Clear(CategoryEmpiricalSample)
	}
	return m
}

// Exposure returns a copy of the concentration profile
func (m Model) Exposure() ExposureSeries { return m.exposure.clone() }

// Survivors returns a copy of the survivor series
func (m Model) Survivors() SurvivorSeries { return m.survivors.clone() }

// Distribution returns the threshold distribution
func (m Model) Distribution() Distribution { return m.distribution }

// Submodel returns the submodel
func (m Model) Submodel() Submodel { return m.submodel }

// Schema returns the active-parameter schema
func (m Model) Schema() Schema { return SchemaFor(m.distribution, m.submodel) }

// Parameters returns a copy of the user parameter vector as supplied
func (m Model) Parameters() []float64 { return cloneFloats(m.parameters) }

// WorkingParameters maps the stored vector onto the five working slots
func (m Model) WorkingParameters() WorkingParameters {
	return m.Schema().Resolve(m.parameters)
}

// Sample returns a copy of the sorted empirical sample
func (m Model) Sample() []float64 { return cloneFloats(m.sample) }

// SampleResolution returns N
func (m Model) SampleResolution() int { return m.sampleResolution }

// TimeResolution returns M
func (m Model) TimeResolution() int { return m.timeResolution }

// Interval returns the lognormal quantile widening factor
func (m Model) Interval() float64 { return m.interval }

// Diagnostics returns the validation record
func (m Model) Diagnostics() Diagnostics { return m.diagnostics }

// GridKey fingerprints the inputs of the threshold grid
func (m Model) GridKey() core.Hash {
	w := m.WorkingParameters()
	f := core.NewFingerprint().
		Tag("grid").
		Int(int(m.distribution)).
		Int(m.sampleResolution).
		Float(m.interval)
	switch m.distribution {
	case Empirical:
		f.Floats(m.sample)
	default:
		f.Float(w.M).Float(w.SD)
	}
	return f.Sum()
}

// Key fingerprints every input of an evaluation, diagnostics included
func (m Model) Key() core.Hash {
	f := core.NewFingerprint().
		Tag("model").
		Floats(m.exposure.Time).
		Floats(m.exposure.Concentration).
		Floats(m.survivors.Time).
		Ints(m.survivors.Count).
		Int(int(m.distribution)).
		Int(int(m.submodel)).
		Floats(m.parameters).
		Floats(m.sample).
		Int(m.sampleResolution).
		Int(m.timeResolution).
		Float(m.interval)
	for _, c := range Categories() {
		f.Int(int(m.diagnostics.Code(c)))
	}
	return f.Sum()
}
