package cmd

import (
	"github.com/spf13/cobra"
)

var (
	flagDryRun  bool
	flagVerbose bool
	flagTrials  int
)

var rootCmd = &cobra.Command{
	Use:   "backtest-engine",
	Short: "Historical trade replay and statistical validation",
	Long: `Backtest engine for the trading desk: replays closed trades from the
Mission Control API and validates performance against a Monte Carlo random
baseline. Answers the question: "Are we beating chance, or just getting
lucky?"`,
	// Bare invocation runs a full validation, the most common use.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBacktest(cmd, "validate")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDryRun, "dry-run", false, "no API writes (reads still work)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "extra debug logging")
	rootCmd.PersistentFlags().IntVar(&flagTrials, "trials", 0, "number of random portfolios (default from config: 50)")

	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(randomCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(confidenceCmd)
	rootCmd.AddCommand(serveCmd)
}
