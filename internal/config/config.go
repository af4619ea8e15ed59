package config

import (
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"guts/domain/guts"
	"guts/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`
	Sweep  SweepConfig  `yaml:"sweep" mapstructure:"sweep"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// EngineConfig holds the numerical defaults applied to every new model
type EngineConfig struct {
	Distribution     string  `yaml:"distribution" mapstructure:"distribution"`
	Submodel         string  `yaml:"submodel" mapstructure:"submodel"`
	SampleResolution int     `yaml:"sample_resolution" mapstructure:"sample_resolution"`
	TimeResolution   int     `yaml:"time_resolution" mapstructure:"time_resolution"`
	Interval         float64 `yaml:"interval" mapstructure:"interval"`
}

// SweepConfig holds parameter sweep settings
type SweepConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// Load reads configuration from an optional guts.yaml in the working
// directory, a .env file and GUTS_* environment variables
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile reads configuration like Load, taking the YAML file from path when
// it is not empty
func LoadFile(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("guts")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GUTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to read configuration file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to decode configuration")
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.distribution", guts.Lognormal.String())
	v.SetDefault("engine.submodel", guts.StochasticDeath.String())
	v.SetDefault("engine.sample_resolution", guts.DefaultSampleResolution)
	v.SetDefault("engine.time_resolution", guts.DefaultTimeResolution)
	v.SetDefault("engine.interval", guts.DefaultInterval)
	v.SetDefault("sweep.workers", runtime.NumCPU())
	v.SetDefault("log.level", "info")
}

func validateConfig(config *Config) error {
	if _, ok := guts.ParseDistribution(config.Engine.Distribution); !ok {
		return errors.ConfigInvalid("engine.distribution must be one of lognormal, delta, empirical")
	}
	if _, ok := guts.ParseSubmodel(config.Engine.Submodel); !ok {
		return errors.ConfigInvalid("engine.submodel must be one of proper, it")
	}
	if guts.ValidateSampleResolution(config.Engine.SampleResolution) != guts.MsgNone {
		return errors.ConfigInvalid("engine.sample_resolution must be at least 3")
	}
	if guts.ValidateTimeResolution(config.Engine.TimeResolution) != guts.MsgNone {
		return errors.ConfigInvalid("engine.time_resolution must be at least 2")
	}
	if guts.ValidateInterval(config.Engine.Interval) != guts.MsgNone {
		return errors.ConfigInvalid("engine.interval must be greater than 1")
	}
	if config.Sweep.Workers < 1 {
		return errors.ConfigInvalid("sweep.workers must be positive")
	}
	return nil
}

// Model returns a fresh model carrying the configured defaults
func (e EngineConfig) Model() (guts.Model, error) {
	m := guts.NewModel()
	var err error
	if m, err = m.WithDistribution(e.Distribution); err != nil {
		return m, errors.Wrap(err, "engine.distribution")
	}
	if m, err = m.WithSubmodel(e.Submodel); err != nil {
		return m, errors.Wrap(err, "engine.submodel")
	}
	if m, err = m.WithSampleResolution(e.SampleResolution); err != nil {
		return m, errors.Wrap(err, "engine.sample_resolution")
	}
	if m, err = m.WithTimeResolution(e.TimeResolution); err != nil {
		return m, errors.Wrap(err, "engine.time_resolution")
	}
	if m, err = m.WithInterval(e.Interval); err != nil {
		return m, errors.Wrap(err, "engine.interval")
	}
	return m, nil
}
