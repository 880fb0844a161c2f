package cmd

import (
	"github.com/spf13/cobra"

	"clipforge/internal/app"
	"clipforge/pkg/config"
)

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Retry failed uploads once",
	Long: `Sweep videos whose upload failed or hit quota limits and retry them
with the metadata stored at render time.`,
	RunE: runRetry,
}

func init() {
	rootCmd.AddCommand(retryCmd)
}

func runRetry(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Load()

	result, err := app.BuildService(ctx, cfg, verbose)
	if err != nil {
		return err
	}
	defer result.Store.Close()

	return app.NewPipeline(result.Service).RetryPendingUploads(ctx)
}
