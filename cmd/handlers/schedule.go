package handlers

import (
	"blogagent/internal/agent"

	"github.com/spf13/cobra"
)

// NewScheduleCmd creates the schedule command
func NewScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Publish posts on the configured cron schedule",
		Long: `Run one random-keyword post per activation of scheduler.cron
(5 fields, e.g. "0 10 * * *"). Runs never overlap. Stops on Ctrl+C after
the current run finishes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			image, _ := cmd.Flags().GetString("image")

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			runner, err := agent.NewRunnerFromConfig(ctx, cfg)
			if err != nil {
				return err
			}
			return startSchedule(ctx, runner, image)
		},
	}

	cmd.Flags().StringP("image", "i", "", "Featured image path (random from images.dir when empty)")
	return cmd
}
