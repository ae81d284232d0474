/*
PURPOSE:
  Defines the configuration structure and loading logic for the option pricer.

REQUIREMENTS:
  User-specified:
  - Configure the contract (type, strike), the model parameters and the
    simulation (paths, generator, sampler, seed).

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Needs environment overrides for CI runs (OPTION_PRICER_SEED, ...).
  - Output, server and logging sections for the surrounding tooling.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine, internal/server
  - Dependencies: gopkg.in/yaml.v3

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing default files fall back to DefaultConfig().
  - Validate() wraps model.ErrInvalidArgument.

USAGE:
  cfg, err := config.Load("option_pricer.yaml")

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Higerald/OptionPricing/internal/gaussian"
	"github.com/Higerald/OptionPricing/internal/model"
	"github.com/Higerald/OptionPricing/internal/path"
	"github.com/Higerald/OptionPricing/internal/payoff"
)

// OptionConfig describes the contract and the market it is priced in.
type OptionConfig struct {
	Type       string  `yaml:"type"` // call | put
	Strike     float64 `yaml:"strike"`
	Spot       float64 `yaml:"spot"`
	Volatility float64 `yaml:"volatility"`
	Rate       float64 `yaml:"rate"`
	Expiry     float64 `yaml:"expiry"` // years
}

// SimulationConfig controls the Monte Carlo run.
type SimulationConfig struct {
	Paths     int    `yaml:"paths"`
	Generator string `yaml:"generator"` // direct | monthly
	Sampler   string `yaml:"sampler"`   // polar | direct | summation
	// Seed 0 means "pick one from the clock"; the chosen seed is logged and
	// recorded with the results.
	Seed        uint64 `yaml:"seed"`
	TraceEvery  int    `yaml:"trace_every"`
	CompareWith bool   `yaml:"compare_analytic"`
}

// OutputConfig controls where run records go.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	CSVFile     string `yaml:"csv_file"`
	JSONFile    string `yaml:"json_file"`
	MetricsFile string `yaml:"metrics_file"` // Prometheus textfile, empty disables
	StoreDir    string `yaml:"store_dir"`    // convergence trace object store
}

// ServerConfig controls the HTTP pricing endpoint.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	MaxPaths int    `yaml:"max_paths"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}

// Config represents the full configuration.
type Config struct {
	Option     OptionConfig     `yaml:"option"`
	Simulation SimulationConfig `yaml:"simulation"`
	Output     OutputConfig     `yaml:"output"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DefaultConfig returns the default configuration: the textbook
// out-of-the-money call.
func DefaultConfig() *Config {
	return &Config{
		Option: OptionConfig{
			Type:       "call",
			Strike:     105,
			Spot:       100,
			Volatility: 0.2,
			Rate:       0.05,
			Expiry:     1,
		},
		Simulation: SimulationConfig{
			Paths:       100000,
			Generator:   path.NameDirect,
			Sampler:     string(gaussian.MethodPolar),
			TraceEvery:  10000,
			CompareWith: true,
		},
		Output: OutputConfig{
			Dir:      ".",
			CSVFile:  "pricing_results.csv",
			JSONFile: "pricing_results.jsonl",
			StoreDir: ".option-pricer",
		},
		Server: ServerConfig{
			Addr:     ":8080",
			MaxPaths: 2000000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultFiles are searched in order when no path is given.
var DefaultFiles = []string{"option_pricer.yaml", "pricer.yaml"}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches DefaultFiles in order.
// If no file is found, returns the default config.
// Environment overrides are applied last in every case.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				break
			}
		}
	}

	if data != nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("OPTION_PRICER_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("OPTION_PRICER_SEED: %w", err)
		}
		cfg.Simulation.Seed = seed
	}
	if v := os.Getenv("OPTION_PRICER_PATHS"); v != "" {
		paths, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("OPTION_PRICER_PATHS: %w", err)
		}
		cfg.Simulation.Paths = paths
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	return nil
}

// Parameters returns the model parameters of the configured option.
func (c *Config) Parameters() model.Parameters {
	return model.Parameters{
		Spot:       c.Option.Spot,
		Volatility: c.Option.Volatility,
		Rate:       c.Option.Rate,
		Expiry:     c.Option.Expiry,
	}
}

// Payoff builds the configured payoff.
func (c *Config) Payoff() (payoff.Payoff, error) {
	kind, err := payoff.ParseKind(c.Option.Type)
	if err != nil {
		return payoff.Payoff{}, err
	}
	return payoff.New(kind, c.Option.Strike)
}

// Validate checks every field the engine depends on.
func (c *Config) Validate() error {
	if _, err := c.Payoff(); err != nil {
		return err
	}
	gen, err := path.Parse(c.Simulation.Generator)
	if err != nil {
		return err
	}
	if err := gen.Validate(c.Parameters()); err != nil {
		return err
	}
	if _, err := gaussian.ParseMethod(c.Simulation.Sampler); err != nil {
		return err
	}
	if c.Simulation.Paths < 2 {
		return fmt.Errorf("%w: simulation.paths must be at least 2, got %d", model.ErrInvalidArgument, c.Simulation.Paths)
	}
	if c.Server.MaxPaths < 2 {
		return fmt.Errorf("%w: server.max_paths must be at least 2, got %d", model.ErrInvalidArgument, c.Server.MaxPaths)
	}
	return nil
}
