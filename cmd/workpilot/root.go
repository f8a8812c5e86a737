package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/workpilot/internal/config"
	"github.com/mmynk/workpilot/pkg/logging"
)

func execute() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// options is shared by every subcommand.
type options struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "workpilot",
		Short:         "Weekly report collection bot",
		Long:          "WorkPilot collects weekly reports in Telegram groups, reminds members who have not submitted and exports summaries.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("config") {
				if v := os.Getenv("WORKPILOT_CONFIG"); v != "" {
					opts.configPath = v
				}
			}
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			opts.cfg = cfg
			opts.logger = logging.Setup(cfg.Log.Level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to the YAML config file")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newRemindCmd(opts))
	rootCmd.AddCommand(newExportCmd(opts))
	rootCmd.AddCommand(newHashPasswordCmd())
	return rootCmd
}
