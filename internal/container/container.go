package container

import (
	"fmt"

	"guts/adapters/excel"
	"guts/adapters/experiment"
	"guts/adapters/stats/engine"
	"guts/app"
	"guts/domain/guts"
	"guts/internal"
	"guts/internal/config"
	"guts/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Engine
	NewEvaluator ports.EvaluatorFactory

	// Data access
	Reader ports.SeriesReader

	// Services
	Sweep *app.SweepService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return NewWithLogger(cfg, internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level)))
}

// NewWithLogger creates a container that logs through logger
func NewWithLogger(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	engineLogger := logger.Named("engine")
	c.NewEvaluator = func() ports.Evaluator {
		return engine.NewEngine(engineLogger)
	}
	c.Reader = excel.NewDataReader(logger.Named("reader"))
	c.Sweep = app.NewSweepService(c.NewEvaluator, cfg.Sweep.Workers, logger.Named("sweep"))

	logger.Debug("container initialized: distribution=%s submodel=%s N=%d M=%d workers=%d",
		cfg.Engine.Distribution, cfg.Engine.Submodel,
		cfg.Engine.SampleResolution, cfg.Engine.TimeResolution, cfg.Sweep.Workers)
	return c, nil
}

// BaseModel returns a model carrying the configured engine defaults
func (c *Container) BaseModel() (guts.Model, error) {
	return c.Config.Engine.Model()
}

// LoadExperiment reads an experiment file and applies it to the configured
// defaults
func (c *Container) LoadExperiment(path string) (*experiment.Experiment, guts.Model, error) {
	base, err := c.BaseModel()
	if err != nil {
		return nil, base, err
	}
	exp, err := experiment.Load(path)
	if err != nil {
		return nil, base, err
	}
	m, err := exp.Model(base, c.Reader)
	if err != nil {
		return exp, m, err
	}
	c.Logger.Info("loaded experiment %s (%s/%s, %d parameters)",
		exp.Name, m.Distribution(), m.Submodel(), len(m.Parameters()))
	return exp, m, nil
}

// NewSession creates a session over model backed by a fresh engine
func (c *Container) NewSession(model guts.Model) *app.Session {
	return app.NewSessionFrom(model, c.NewEvaluator(), c.Logger.Named("session"))
}
