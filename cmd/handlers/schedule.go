package handlers

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"curator/internal/llm"
	"curator/internal/logger"
	"curator/internal/pipeline"
	"curator/internal/scheduler"
)

// NewScheduleCmd creates the scheduled runner command
func NewScheduleCmd() *cobra.Command {
	var cronSpec string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the full pipeline on a cron schedule",
		Long: `Run the pipeline repeatedly on a cron schedule until interrupted.
The schedule comes from configuration and can be overridden with --cron.

Examples:
  curator schedule
  curator schedule --cron "0 7 * * *"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := setup()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := cfg.ValidateScoring(); err != nil {
				return err
			}
			if err := cfg.ValidateDelivery(); err != nil {
				return err
			}
			if cronSpec == "" {
				cronSpec = cfg.Schedule.Cron
			}

			generator, err := llm.NewClient(cmd.Context(), cfg.Gemini)
			if err != nil {
				return err
			}
			p := pipeline.New(cfg, st, generator)

			sched, err := scheduler.New(cronSpec, func(ctx context.Context) {
				summary, err := p.Run(ctx, cfg.Digest.Hours, cfg.Digest.TopN)
				if err != nil {
					logger.Error("Scheduled run failed", err)
					return
				}
				logger.Info("Scheduled run finished", "success", summary.Success, "profiles", len(summary.Profiles))
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cronSpec, "cron", "", "cron expression (default from config)")

	return cmd
}
