/*
PURPOSE:
  Defines the root Cobra command for the option pricer CLI.
  Handles global flags, config loading and logger setup.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Every subcommand loads config the same way, so the loading and the
    simulation flag overrides live here.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/option-pricer/main.go
  - Calls: Child commands (price, compare, trace, show-trace, serve)
  - Modifies: output.Logger (installed from config/flags).

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Overrides only apply when the flag was set explicitly.

USAGE:
  Called by main.go.

RELATED FILES:
  - cmd/option-pricer/main.go
  - internal/config/config.go
*/

package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Higerald/OptionPricing/internal/config"
	"github.com/Higerald/OptionPricing/internal/output"
)

var (
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile   string
	logLevel  string
	logFormat string

	rootCmd = &cobra.Command{
		Use:   "option-pricer",
		Short: "Monte Carlo pricer for European options",
		Long: `Prices European calls and puts by Monte Carlo simulation of geometric
Brownian motion. Use 'price --help' for pricing options.`,
		SilenceUsage: true,
	}
)

// overrides holds the simulation flags shared by the pricing commands.
type overrides struct {
	optionType string
	strike     float64
	spot       float64
	volatility float64
	rate       float64
	expiry     float64
	paths      int
	generator  string
	sampler    string
	seed       uint64
	outputDir  string
}

var flagValues overrides

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./option_pricer.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
}

// addSimulationFlags registers the option and simulation overrides on cmd.
func addSimulationFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&flagValues.optionType, "type", "t", "", "option type: call or put")
	f.Float64VarP(&flagValues.strike, "strike", "k", 0, "strike price")
	f.Float64Var(&flagValues.spot, "spot", 0, "spot price")
	f.Float64Var(&flagValues.volatility, "vol", 0, "annualised volatility")
	f.Float64VarP(&flagValues.rate, "rate", "r", 0, "continuously compounded risk-free rate")
	f.Float64Var(&flagValues.expiry, "expiry", 0, "time to expiry in years")
	f.IntVarP(&flagValues.paths, "paths", "n", 0, "number of simulated paths")
	f.StringVarP(&flagValues.generator, "generator", "g", "", "path generator: direct or monthly")
	f.StringVarP(&flagValues.sampler, "sampler", "s", "", "gaussian sampler: polar, direct or summation")
	f.Uint64Var(&flagValues.seed, "seed", 0, "random seed (0 picks one from the clock)")
	f.StringVarP(&flagValues.outputDir, "output-dir", "o", "", "output directory for results (CSV/JSON)")
}

// loadConfig loads the config file, applies explicitly set flags and
// installs the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if err := output.Configure(os.Stderr, cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return nil, err
	}

	f := cmd.Flags()
	set := func(name string) bool {
		return f.Lookup(name) != nil && f.Changed(name)
	}
	if set("type") {
		cfg.Option.Type = flagValues.optionType
	}
	if set("strike") {
		cfg.Option.Strike = flagValues.strike
	}
	if set("spot") {
		cfg.Option.Spot = flagValues.spot
	}
	if set("vol") {
		cfg.Option.Volatility = flagValues.volatility
	}
	if set("rate") {
		cfg.Option.Rate = flagValues.rate
	}
	if set("expiry") {
		cfg.Option.Expiry = flagValues.expiry
	}
	if set("paths") {
		cfg.Simulation.Paths = flagValues.paths
	}
	if set("generator") {
		cfg.Simulation.Generator = flagValues.generator
	}
	if set("sampler") {
		cfg.Simulation.Sampler = flagValues.sampler
	}
	if set("seed") {
		cfg.Simulation.Seed = flagValues.seed
	}
	if set("output-dir") {
		cfg.Output.Dir = flagValues.outputDir
	}
	return cfg, nil
}
