package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrConfig is returned for invalid configuration values.
var ErrConfig = errors.New("config: invalid value")

const envPrefix = "QCOLSIM"

var outputFormats = []string{"text", "table", "yaml"}

// Config is the effective configuration after defaults, file, environment and flags.
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Simulate SimulateConfig `mapstructure:"simulate" yaml:"simulate"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type SimulateConfig struct {
	Strict    bool    `mapstructure:"strict" yaml:"strict"`
	Workers   int     `mapstructure:"workers" yaml:"workers"`
	Observe   bool    `mapstructure:"observe" yaml:"observe"`
	Seed      uint64  `mapstructure:"seed" yaml:"seed"`
	Tolerance float64 `mapstructure:"tolerance" yaml:"tolerance"`
}

type OutputConfig struct {
	Format    string  `mapstructure:"format" yaml:"format"`
	Precision int     `mapstructure:"precision" yaml:"precision"`
	Threshold float64 `mapstructure:"threshold" yaml:"threshold"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("simulate.strict", true)
	v.SetDefault("simulate.workers", 1)
	v.SetDefault("simulate.observe", false)
	v.SetDefault("simulate.seed", 1)
	v.SetDefault("simulate.tolerance", defaultTolerance)
	v.SetDefault("output.format", "text")
	v.SetDefault("output.precision", 6)
	v.SetDefault("output.threshold", 0.0)
}

// newViper returns a viper instance with defaults and QCOLSIM_* environment lookup.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig reads the optional config file at path and decodes the result.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the simulator cannot use.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level %q: %w", c.Log.Level, ErrConfig)
	}
	if c.Simulate.Workers < 1 {
		return fmt.Errorf("simulate.workers %d: must be at least 1: %w", c.Simulate.Workers, ErrConfig)
	}
	if c.Simulate.Tolerance <= 0 {
		return fmt.Errorf("simulate.tolerance %g: must be positive: %w", c.Simulate.Tolerance, ErrConfig)
	}
	if !slices.Contains(outputFormats, c.Output.Format) {
		return fmt.Errorf("output.format %q: want one of %s: %w", c.Output.Format, strings.Join(outputFormats, ", "), ErrConfig)
	}
	if c.Output.Precision < 0 || c.Output.Precision > 15 {
		return fmt.Errorf("output.precision %d: must be in 0..15: %w", c.Output.Precision, ErrConfig)
	}
	if c.Output.Threshold < 0 {
		return fmt.Errorf("output.threshold %g: must not be negative: %w", c.Output.Threshold, ErrConfig)
	}
	return nil
}

// SimulatorOptions maps the simulate section onto simulator options.
func (c *Config) SimulatorOptions(logger *log.Logger) []Option {
	opts := []Option{
		WithStrict(c.Simulate.Strict),
		WithWorkers(c.Simulate.Workers),
		WithTolerance(c.Simulate.Tolerance),
		WithLogger(logger),
	}
	if c.Simulate.Observe {
		opts = append(opts, WithObserve(c.Simulate.Seed))
	}
	return opts
}

// YAML renders the effective configuration.
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(out), nil
}
