package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backtest-engine/internal/repository"
	"backtest-engine/internal/service"
	"backtest-engine/pkg/common"
	"backtest-engine/pkg/logger"

	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay closed trades and compute performance metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBacktest(cmd, "replay")
	},
}

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Generate random baseline portfolios (Monte Carlo)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBacktest(cmd, "random")
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Full validation: replay + random + statistical comparison",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBacktest(cmd, "validate")
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate summary report and post it to the activity feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBacktest(cmd, "report")
	},
}

func runBacktest(cmd *cobra.Command, command string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency()
	if err != nil {
		return err
	}
	defer appDep.Close()

	if flagDryRun {
		appDep.log.Info("Mode: DRY RUN (no writes)")
	}
	appDep.log.Info("Running backtest", logger.StringField("command", command))

	repo := repository.NewRepository(appDep.cfg, appDep.cache, appDep.log)
	services := service.NewService(appDep.cfg, appDep.log, repo)

	opts := service.RunOptions{Trials: flagTrials, DryRun: flagDryRun}

	startTime := time.Now()

	switch command {
	case "replay":
		_, err = services.BacktestService.Replay(ctx)
	case "random":
		_, err = services.BacktestService.Random(ctx, opts)
	case "validate":
		_, err = services.BacktestService.Validate(ctx, opts)
	case "report":
		_, err = services.BacktestService.Report(ctx, opts)
	}

	if err != nil {
		appDep.log.Error("Backtest run failed",
			logger.StringField("command", command),
			logger.ErrorField(err),
			logger.Field(common.KEY_LOG_HOOK_SEND_ALERT, true),
		)
		return err
	}

	appDep.log.Info("Backtest complete",
		logger.StringField("command", command),
		logger.StringField("elapsed", time.Since(startTime).Round(100*time.Millisecond).String()),
	)
	return nil
}
