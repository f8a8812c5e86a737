package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/workpilot/internal/transport/telegram"
)

func newRemindCmd(opts *options) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Send one reminder round to every registered group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.cfg.Telegram.Token == "" {
				return errors.New("telegram token is required (set TELEGRAM_BOT_TOKEN)")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client, err := telegram.New(opts.cfg.Telegram.Token, opts.logger)
			if err != nil {
				return err
			}
			a, err := newApp(ctx, opts.cfg, client, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			batch, err := a.reports.Dispatcher.DispatchToAllGroups(ctx, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s period %s: %d groups, %d sent, %d skipped, %d failed\n",
				batch.RunID, batch.Period, batch.Groups, batch.Sent, batch.Skipped, batch.Failed)
			for groupID, err := range batch.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "group %d: %v\n", groupID, err)
			}
			if batch.Failed > 0 {
				return fmt.Errorf("%d of %d groups failed", batch.Failed, batch.Groups)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall deadline for the reminder round")
	return cmd
}
