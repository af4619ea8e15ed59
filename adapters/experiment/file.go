package experiment

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"guts/domain/core"
	"guts/domain/guts"
	"guts/internal/errors"
	"guts/ports"
)

// MaxFileSize bounds the size of an experiment file (1MB)
const MaxFileSize = 1024 * 1024

// Experiment is a model setup read from YAML. Zero-valued fields leave the
// defaults untouched.
type Experiment struct {
	Name             string      `yaml:"name"`
	Distribution     string      `yaml:"distribution"`
	Submodel         string      `yaml:"submodel"`
	SampleResolution int         `yaml:"sample_resolution"`
	TimeResolution   int         `yaml:"time_resolution"`
	Interval         float64     `yaml:"interval"`
	Parameters       []float64   `yaml:"parameters"`
	Sample           []float64   `yaml:"sample"`
	Exposure         Series      `yaml:"exposure"`
	Survivors        Series      `yaml:"survivors"`
	Sweep            [][]float64 `yaml:"sweep"`
	Predict          []float64   `yaml:"predict"`

	// dir resolves relative series file references
	dir string
}

// Series is either inline (time and values) or a file reference read through
// a ports.SeriesReader
type Series struct {
	File   string    `yaml:"file"`
	Time   []float64 `yaml:"time"`
	Values []float64 `yaml:"values"`
}

// IsZero reports whether the series was left out of the file
func (s Series) IsZero() bool {
	return s.File == "" && s.Time == nil && s.Values == nil
}

// Load reads and decodes an experiment file. Unknown keys are rejected.
func Load(path string) (*Experiment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.IOError(path, eris.Wrap(err, "stat failed"))
	}
	if info.Size() > MaxFileSize {
		return nil, errors.ParseError(path, eris.Errorf("file exceeds %d bytes", MaxFileSize))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError(path, eris.Wrap(err, "read failed"))
	}

	exp, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, errors.ParseError(path, err)
	}
	if exp.Name == "" {
		exp.Name = filepath.Base(path)
	}
	return exp, nil
}

// Parse decodes experiment YAML. dir is the base for relative file references.
func Parse(data []byte, dir string) (*Experiment, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var exp Experiment
	if err := dec.Decode(&exp); err != nil {
		return nil, eris.Wrap(err, "invalid experiment YAML")
	}
	if exp.Exposure.File != "" && exp.Exposure.Time != nil {
		return nil, eris.New("exposure: give either file or inline time/values")
	}
	if exp.Survivors.File != "" && exp.Survivors.Time != nil {
		return nil, eris.New("survivors: give either file or inline time/values")
	}
	exp.dir = dir
	return &exp, nil
}

// Model applies the experiment on top of defaults. Distribution and submodel
// are set before the parameters so the vector is checked against the final
// schema. reader may be nil when every series is inline.
func (e *Experiment) Model(defaults guts.Model, reader ports.SeriesReader) (guts.Model, error) {
	m := defaults
	var err error

	if e.Distribution != "" {
		if m, err = m.WithDistribution(e.Distribution); err != nil {
			return m, e.wrap(err, "distribution")
		}
	}
	if e.Submodel != "" {
		if m, err = m.WithSubmodel(e.Submodel); err != nil {
			return m, e.wrap(err, "submodel")
		}
	}
	if e.SampleResolution != 0 {
		if m, err = m.WithSampleResolution(e.SampleResolution); err != nil {
			return m, e.wrap(err, "sample_resolution")
		}
	}
	if e.TimeResolution != 0 {
		if m, err = m.WithTimeResolution(e.TimeResolution); err != nil {
			return m, e.wrap(err, "time_resolution")
		}
	}
	if e.Interval != 0 {
		if m, err = m.WithInterval(e.Interval); err != nil {
			return m, e.wrap(err, "interval")
		}
	}
	if e.Sample != nil {
		if m, err = m.WithEmpiricalSample(e.Sample); err != nil {
			return m, e.wrap(err, "sample")
		}
	}

	if !e.Exposure.IsZero() {
		exposure, err := e.exposure(reader)
		if err != nil {
			return m, err
		}
		if m, err = m.WithExposure(exposure.Concentration, exposure.Time); err != nil {
			return m, e.wrap(err, "exposure")
		}
	}
	if !e.Survivors.IsZero() {
		survivors, err := e.survivors(reader)
		if err != nil {
			return m, err
		}
		if m, err = m.WithSurvivors(survivors.Count, survivors.Time); err != nil {
			return m, e.wrap(err, "survivors")
		}
	}

	if e.Parameters != nil {
		if m, err = m.WithParameters(e.Parameters); err != nil {
			return m, e.wrap(err, "parameters")
		}
	}
	return m, nil
}

func (e *Experiment) exposure(reader ports.SeriesReader) (guts.ExposureSeries, error) {
	if e.Exposure.File == "" {
		return guts.ExposureSeries{Time: e.Exposure.Time, Concentration: e.Exposure.Values}, nil
	}
	if reader == nil {
		return guts.ExposureSeries{}, errors.InvalidInput("exposure file given but no series reader configured")
	}
	series, err := reader.ReadExposure(e.resolve(e.Exposure.File))
	if err != nil {
		return guts.ExposureSeries{}, e.wrap(err, "exposure file")
	}
	return series, nil
}

func (e *Experiment) survivors(reader ports.SeriesReader) (guts.SurvivorSeries, error) {
	if e.Survivors.File == "" {
		counts, err := wholeCounts(e.Survivors.Values)
		if err != nil {
			return guts.SurvivorSeries{}, e.wrap(err, "survivors")
		}
		return guts.SurvivorSeries{Time: e.Survivors.Time, Count: counts}, nil
	}
	if reader == nil {
		return guts.SurvivorSeries{}, errors.InvalidInput("survivors file given but no series reader configured")
	}
	series, err := reader.ReadSurvivors(e.resolve(e.Survivors.File))
	if err != nil {
		return guts.SurvivorSeries{}, e.wrap(err, "survivors file")
	}
	return series, nil
}

func (e *Experiment) resolve(path string) string {
	if filepath.IsAbs(path) || e.dir == "" {
		return path
	}
	return filepath.Join(e.dir, path)
}

func (e *Experiment) label(field string) string {
	if e.Name == "" {
		return field
	}
	return fmt.Sprintf("experiment %s: %s", e.Name, field)
}

func (e *Experiment) wrap(err error, field string) error {
	return errors.Wrap(err, e.label(field))
}

func wholeCounts(values []float64) ([]int, error) {
	out := make([]int, len(values))
	for i, v := range values {
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, core.NewValidationError(fmt.Sprintf("survivors[%d]", i), fmt.Sprintf("%v is not a whole count", v))
		}
		out[i] = int(v)
	}
	return out, nil
}
