package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/app"
	"clipforge/pkg/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scheduler mode: fire channels on their cron schedules",
	Long: `Run continuously, checking every few minutes which channels are due
per their cron schedules and executing a pipeline pass for them.
Failed uploads are retried periodically in the background.`,
	RunE: runScheduler,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg := config.Load()

	result, err := app.BuildService(ctx, cfg, verbose)
	if err != nil {
		return err
	}
	defer result.Store.Close()

	pipeline := app.NewPipeline(result.Service)

	checkEvery := time.Duration(cfg.Scheduler.CheckMinutes) * time.Minute
	retryEvery := time.Duration(cfg.Scheduler.RetryHours) * time.Hour
	// The due window must equal the tick interval: consecutive ticks then
	// cover disjoint half-open intervals and a cron fire lands in exactly one.
	window := checkEvery

	slog.Info("scheduler started", "check_interval", checkEvery, "retry_interval", retryEvery)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	tick := func(now time.Time) {
		channels, err := result.Store.EnabledChannels(ctx)
		if err != nil {
			slog.Error("could not load channels", "error", err)
			return
		}
		due := app.DueChannels(channels, now, window)
		if len(due) == 0 {
			slog.Debug("no channels due", "checked", len(channels))
			return
		}
		slog.Info("channels due", "count", len(due))
		if err := pipeline.Execute(ctx, due); err != nil {
			slog.Error("pipeline pass failed", "error", err)
		}
	}

	checkTicker := time.NewTicker(checkEvery)
	defer checkTicker.Stop()
	retryTicker := time.NewTicker(retryEvery)
	defer retryTicker.Stop()

	tick(time.Now())

	for {
		select {
		case <-sigChan:
			slog.Info("shutting down")
			return nil
		case <-ctx.Done():
			return nil
		case now := <-checkTicker.C:
			tick(now)
		case <-retryTicker.C:
			if err := pipeline.RetryPendingUploads(ctx); err != nil {
				slog.Error("retry sweep failed", "error", err)
			}
		}
	}
}
