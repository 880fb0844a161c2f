package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"clipforge/internal/app"
	"clipforge/internal/store"
	"clipforge/pkg/config"
)

var onceChannel string

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run one pipeline pass immediately",
	Long: `Run a single pipeline pass over all enabled channels regardless of
their schedules, or over one channel with --channel.`,
	RunE: runOnce,
}

func init() {
	onceCmd.Flags().StringVarP(&onceChannel, "channel", "c", "", "Run only the named channel")
	rootCmd.AddCommand(onceCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Load()

	result, err := app.BuildService(ctx, cfg, verbose)
	if err != nil {
		return err
	}
	defer result.Store.Close()

	channels, err := result.Store.EnabledChannels(ctx)
	if err != nil {
		return fmt.Errorf("load channels: %w", err)
	}
	if onceChannel != "" {
		channels = filterByName(channels, onceChannel)
		if len(channels) == 0 {
			return fmt.Errorf("no enabled channel named %q", onceChannel)
		}
	}
	if len(channels) == 0 {
		slog.Info("no enabled channels configured")
		return nil
	}

	slog.Info("running pipeline pass", "channels", len(channels))
	return app.NewPipeline(result.Service).Execute(ctx, channels)
}

func filterByName(channels []store.Channel, name string) []store.Channel {
	var matched []store.Channel
	for _, ch := range channels {
		if ch.Name == name {
			matched = append(matched, ch)
		}
	}
	return matched
}
