/*
PURPOSE:
  Defines the 'price' subcommand.
  Runs one Monte Carlo simulation and prints the discounted price.

REQUIREMENTS:
  User-specified:
  - Price the option.
  - Specific flags for overrides.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Price()
  - Uses: internal/config, internal/metrics

ERROR HANDLING:
  - Returns error if config load fails or the simulation fails.

USAGE:
  option-pricer price --strike 105 --paths 400000
*/

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Higerald/OptionPricing/internal/engine"
	"github.com/Higerald/OptionPricing/internal/metrics"
	"github.com/Higerald/OptionPricing/internal/model"
	"github.com/Higerald/OptionPricing/internal/output"
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price the configured option",
	Long: `Simulates the configured number of paths and reports the discounted mean
payoff together with its standard error.

Results are appended to the CSV and JSON-lines files in the output directory.`,
	Example: `  # Run with defaults (uses option_pricer.yaml if present)
  option-pricer price

  # A put on monthly-averaged prices with a fixed seed
  option-pricer price -t put -k 95 -g monthly --seed 42

  # Four times the paths, roughly half the standard error
  option-pricer price -n 400000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		rec, err := engine.Price(cfg, metrics.New())
		if err != nil {
			return err
		}
		printRecord(rec)
		return nil
	},
}

func printRecord(rec model.Record) {
	fmt.Printf("%s %s  S=%g sigma=%g r=%g T=%g\n",
		rec.OptionType, output.FormatMoney(rec.Strike),
		rec.Parameters.Spot, rec.Parameters.Volatility, rec.Parameters.Rate, rec.Parameters.Expiry)
	fmt.Printf("  generator:      %s (%s sampler, seed %d)\n", rec.Generator, rec.Sampler, rec.Seed)
	fmt.Printf("  paths:          %d\n", rec.Paths)
	fmt.Printf("  price:          %s\n", output.FormatMoney(rec.Price))
	fmt.Printf("  standard error: %s\n", output.FormatMoney(rec.StandardError))
	if rec.AnalyticPrice != nil {
		fmt.Printf("  black-scholes:  %s\n", output.FormatMoney(*rec.AnalyticPrice))
	}
}

func init() {
	rootCmd.AddCommand(priceCmd)
	addSimulationFlags(priceCmd)
}
