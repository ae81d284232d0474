package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Higerald/OptionPricing/internal/engine"
	"github.com/Higerald/OptionPricing/internal/metrics"
	"github.com/Higerald/OptionPricing/internal/model"
	"github.com/Higerald/OptionPricing/internal/output"
	"github.com/Higerald/OptionPricing/internal/store"
)

var (
	traceEvery int
	listAll    bool
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Price with convergence checkpoints and store the trace",
	Long: `Runs like 'price' but finalizes the running statistics every --every paths.
The checkpoints are stored compressed in the trace store and can be read back
with 'show-trace'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("every") {
			cfg.Simulation.TraceEvery = traceEvery
		}
		rec, cps, hash, err := engine.Trace(cfg, metrics.New())
		if err != nil {
			return err
		}
		printRecord(rec)
		printCheckpoints(cps)
		fmt.Printf("trace %s\n", hash[:12])
		return nil
	},
}

var showTraceCmd = &cobra.Command{
	Use:   "show-trace [hash]",
	Short: "Print a stored convergence trace",
	Long: `Prints the checkpoints of a stored trace. Without an argument the latest
trace is shown; --all lists every stored trace instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg.Output.StoreDir)
		if err != nil {
			return err
		}
		if listAll {
			return printTraceList(st)
		}

		ref := "latest"
		if len(args) == 1 {
			ref = args[0]
		}
		m, cps, err := st.LoadTrace(ref)
		if err != nil {
			return err
		}
		printRecord(m.Record)
		printCheckpoints(cps)
		return nil
	},
}

var deleteTraceCmd = &cobra.Command{
	Use:   "delete-trace <hash>",
	Short: "Delete a stored convergence trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cfg.Output.StoreDir)
		if err != nil {
			return err
		}
		hash, err := st.DeleteTrace(args[0])
		if err != nil {
			return err
		}
		output.Logger.Info("Trace deleted", "hash", hash)
		fmt.Printf("deleted trace %s\n", hash[:12])
		return nil
	},
}

func openStore(dir string) (*store.Store, error) {
	st := store.New(dir)
	if !st.Exists() {
		return nil, fmt.Errorf("no trace store at %s", dir)
	}
	return st, nil
}

func printTraceList(st *store.Store) error {
	traces, err := st.ListTraces()
	if err != nil {
		return err
	}
	fmt.Printf("%-12s %-20s %-5s %-8s %10s %12s %12s\n", "TRACE", "TIME", "TYPE", "GEN", "PATHS", "PRICE", "STD ERROR")
	for _, tr := range traces {
		rec := tr.Manifest.Record
		fmt.Printf("%-12s %-20s %-5s %-8s %10d %12s %12s\n", tr.Hash[:12],
			rec.Timestamp.Format("2006-01-02 15:04:05"), rec.OptionType, rec.Generator, rec.Paths,
			output.FormatMoney(rec.Price), output.FormatMoney(rec.StandardError))
	}
	return nil
}

func printCheckpoints(cps []model.Checkpoint) {
	fmt.Printf("%12s %12s %12s\n", "PATHS", "PRICE", "STD ERROR")
	for _, cp := range cps {
		fmt.Printf("%12d %12s %12s\n", cp.Paths, output.FormatMoney(cp.Price), output.FormatMoney(cp.StandardError))
	}
}

func init() {
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(showTraceCmd)
	rootCmd.AddCommand(deleteTraceCmd)
	addSimulationFlags(traceCmd)
	traceCmd.Flags().IntVar(&traceEvery, "every", 0, "paths between checkpoints")
	showTraceCmd.Flags().BoolVarP(&listAll, "all", "a", false, "list every stored trace")
}
