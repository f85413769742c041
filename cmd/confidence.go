package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"backtest-engine/internal/dto"
	"backtest-engine/internal/repository"
	"backtest-engine/internal/service"
	"backtest-engine/pkg/utils"

	"github.com/spf13/cobra"
)

var (
	flagTicker      string
	flagSetup       string
	flagDirection   string
	flagSentiment   float64
	flagCost        float64
	flagTheoretical float64
)

var confidenceCmd = &cobra.Command{
	Use:   "confidence",
	Short: "Score a prospective play 0-100 before entry",
	Example: `  backtest-engine confidence --ticker AAPL --setup "bull call spread" --direction bullish`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		appDep, err := NewAppDependency()
		if err != nil {
			return err
		}
		defer appDep.Close()

		repo := repository.NewRepository(appDep.cfg, appDep.cache, appDep.log)
		services := service.NewService(appDep.cfg, appDep.log, repo)

		play := dto.Play{
			Ticker:           strings.ToUpper(flagTicker),
			Strategy:         flagSetup,
			Direction:        flagDirection,
			Cost:             flagCost,
			TheoreticalValue: flagTheoretical,
		}
		if cmd.Flags().Changed("sentiment") {
			play.SentimentScore = utils.ToPointer(flagSentiment)
		}

		score, err := services.ConfidenceService.Score(ctx, play, nil)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(score, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	confidenceCmd.Flags().StringVar(&flagTicker, "ticker", "", "ticker symbol (required)")
	confidenceCmd.Flags().StringVar(&flagSetup, "setup", "", `setup type (e.g. "bull call spread")`)
	confidenceCmd.Flags().StringVar(&flagDirection, "direction", "", "direction (bullish/bearish)")
	confidenceCmd.Flags().Float64Var(&flagSentiment, "sentiment", 0, "sentiment score (-1..1 or -100..100)")
	confidenceCmd.Flags().Float64Var(&flagCost, "cost", 0, "entry cost / debit")
	confidenceCmd.Flags().Float64Var(&flagTheoretical, "theoretical", 0, "theoretical fair value")
	confidenceCmd.MarkFlagRequired("ticker")
}
