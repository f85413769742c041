package cmd

import (
	"context"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	deliveryhttp "backtest-engine/internal/delivery/http"
	"backtest-engine/internal/repository"
	"backtest-engine/internal/service"
	"backtest-engine/pkg/logger"
	"backtest-engine/pkg/utils"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the backtest HTTP API (and optional scheduled reports)",
	Run:   Serve,
}

func Serve(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency()
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	repo := repository.NewRepository(appDep.cfg, appDep.cache, appDep.log)
	services := service.NewService(appDep.cfg, appDep.log, repo)
	httpHandler := deliveryhttp.NewHttpAPIHandler(ctx, appDep.echo, appDep.validator, services)

	apiServer := NewHTTPServer(ctx, appDep, httpHandler)
	go func() {
		if err := apiServer.Start(); err != nil && err != stdhttp.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Optional scheduled report: posts the daily summary to the activity
	// feed without an operator running the CLI.
	var scheduler *cron.Cron
	if spec := appDep.cfg.Scheduler.ReportCron; spec != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(spec, func() {
			utils.GoSafe(func() {
				if _, err := services.BacktestService.Report(ctx, service.RunOptions{}); err != nil {
					appDep.log.Error("Scheduled report failed", logger.ErrorField(err))
				}
			})
		})
		if err != nil {
			log.Fatalf("Invalid report cron spec %q: %v", spec, err)
		}
		scheduler.Start()
		appDep.log.Info("Scheduled report enabled", logger.StringField("cron", spec))
	}

	<-ctx.Done()
	log.Println("Shutting down gracefully...")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	if err := apiServer.Stop(); err != nil {
		log.Fatalf("Failed to stop HTTP server: %v", err)
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}
