package handlers

import (
	"fmt"

	"blogagent/internal/agent"
	"blogagent/internal/keywords"
	"blogagent/internal/logger"

	"github.com/spf13/cobra"
)

// NewBatchCmd creates the batch command
func NewBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Publish one post per keyword in a file",
		Long: `Process every keyword of a CSV or Excel file in order. Failures are
recorded and the batch continues. Results go to <file>_results.csv with
keyword, post_id and status columns.`,
		Args: cobra.NoArgs,
		RunE: batchRun,
	}

	cmd.Flags().String("file", "", "Keyword file (defaults to keywords.file)")
	cmd.Flags().StringP("image", "i", "", "Featured image path (random per post when empty)")

	return cmd
}

func batchRun(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	image, _ := cmd.Flags().GetString("image")
	if file == "" {
		file = cfg.Keywords.File
	}

	src, err := keywords.Load(file)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	runner, err := agent.NewRunnerFromConfig(ctx, cfg)
	if err != nil {
		return err
	}

	results := runner.Batch(ctx, src.Keywords(), image)

	failed := 0
	for _, r := range results {
		if r.PostID == 0 {
			failed++
			logger.Warn("Keyword failed", "keyword", r.Keyword, "status", r.Status)
		}
	}

	path := agent.ResultsPath(file)
	if err := agent.WriteResultsCSV(path, results); err != nil {
		logger.Error("Failed to write batch results", err, "path", path)
		return err
	}

	logger.Info("Batch finished", "total", src.Len(), "processed", len(results), "failed", failed, "results", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Processed %d/%d keywords (%d failed). Results: %s\n", len(results), src.Len(), failed, path)
	return nil
}
