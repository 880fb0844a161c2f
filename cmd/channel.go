package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/store"
	"clipforge/pkg/config"
)

var channelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Manage channels",
}

var channelEnableCmd = &cobra.Command{
	Use:   "enable NAME",
	Short: "Enable a channel for scheduling",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setChannelEnabled(cmd, args[0], true)
	},
}

var channelDisableCmd = &cobra.Command{
	Use:   "disable NAME",
	Short: "Disable a channel",
	Long: `Disable a channel. Its pending uploads are no longer retried and the
scheduler skips it until it is enabled again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setChannelEnabled(cmd, args[0], false)
	},
}

func init() {
	channelCmd.AddCommand(channelEnableCmd)
	channelCmd.AddCommand(channelDisableCmd)
	rootCmd.AddCommand(channelCmd)
}

func setChannelEnabled(cmd *cobra.Command, name string, enabled bool) error {
	ctx := cmd.Context()
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set in .env")
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	ch, err := db.ChannelByName(ctx, name)
	if err != nil {
		return fmt.Errorf("channel %q not found: %w", name, err)
	}
	if err := db.SetChannelEnabled(ctx, ch.ID, enabled); err != nil {
		return err
	}

	if enabled {
		fmt.Println(authSuccessStyle.Render("✓ Channel enabled: " + ch.Name))
	} else {
		fmt.Println(authInfoStyle.Render("○ Channel disabled: " + ch.Name))
	}
	return nil
}
