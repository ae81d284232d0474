package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Higerald/OptionPricing/internal/engine"
	"github.com/Higerald/OptionPricing/internal/metrics"
	"github.com/Higerald/OptionPricing/internal/output"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Price with every generator under one seed",
	Long: `Runs the direct terminal and the monthly averaged generators with the same
seed and prints both next to the Black-Scholes price. The monthly generator
prices an average, so it is expected to land away from the closed form.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		records, err := engine.Compare(cfg, metrics.New())
		if err != nil {
			return err
		}

		fmt.Printf("%-10s %12s %12s %12s\n", "GENERATOR", "PRICE", "STD ERROR", "ANALYTIC")
		for _, rec := range records {
			analytic := "-"
			if rec.AnalyticPrice != nil {
				analytic = output.FormatMoney(*rec.AnalyticPrice)
			}
			fmt.Printf("%-10s %12s %12s %12s\n", rec.Generator,
				output.FormatMoney(rec.Price), output.FormatMoney(rec.StandardError), analytic)
		}
		if len(records) > 0 {
			fmt.Printf("seed %d, %d paths\n", records[0].Seed, records[0].Paths)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	addSimulationFlags(compareCmd)
}
