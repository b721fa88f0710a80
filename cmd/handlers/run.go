package handlers

import (
	"context"
	"fmt"

	"blogagent/internal/agent"
	"blogagent/internal/logger"
	"blogagent/internal/scheduler"

	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate and publish one post",
		Long: `Generate one article and publish it.

Without --keyword a random keyword is drawn from keywords.file. When
scheduler.enabled is true and no keyword is given, the recurring schedule
starts instead.`,
		Args: cobra.NoArgs,
		RunE: runRun,
	}

	cmd.Flags().StringP("keyword", "k", "", "Primary keyword (random from the keyword file when empty)")
	cmd.Flags().StringP("secondary", "s", "", "Secondary keyword or context")
	cmd.Flags().StringP("image", "i", "", "Featured image path (random from images.dir when empty)")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	keyword, _ := cmd.Flags().GetString("keyword")
	secondary, _ := cmd.Flags().GetString("secondary")
	image, _ := cmd.Flags().GetString("image")

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	runner, err := agent.NewRunnerFromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	if keyword == "" && cfg.Scheduler.Enabled {
		logger.Info("Scheduler enabled, starting recurring runs", "cron", cfg.Scheduler.Cron)
		return startSchedule(ctx, runner, image)
	}

	res, err := runner.RunOnce(ctx, agent.RunRequest{Primary: keyword, Secondary: secondary, ImagePath: image})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Done. Post ID: %d\n", res.PostID)
	return nil
}

func startSchedule(ctx context.Context, runner *agent.Runner, image string) error {
	sched, err := scheduler.New(cfg.Scheduler.Cron, func(ctx context.Context) error {
		_, err := runner.RunOnce(ctx, agent.RunRequest{ImagePath: image})
		return err
	}, logger.Get())
	if err != nil {
		return err
	}
	return sched.Run(ctx)
}
