package handlers

import (
	"fmt"

	"blogagent/internal/agent"
	"blogagent/internal/core"
	"blogagent/internal/logger"
	"blogagent/internal/render"

	"github.com/spf13/cobra"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an article without publishing it",
		Long: `Run the article pipeline for one keyword and write the result to a
file, or stdout when --out is empty. Nothing is uploaded.

Examples:
  blogagent generate --keyword "EOR Spain"
  blogagent generate -k "payroll services California" --format markdown --out out/payroll.md`,
		Args: cobra.NoArgs,
		RunE: generateRun,
	}

	cmd.Flags().StringP("keyword", "k", "", "Primary keyword (required)")
	cmd.Flags().StringP("secondary", "s", "", "Secondary keyword or context")
	cmd.Flags().StringP("format", "f", render.FormatHTML, "Output format: html or markdown")
	cmd.Flags().StringP("out", "o", "", "Output file (stdout when empty)")
	_ = cmd.MarkFlagRequired("keyword")

	return cmd
}

func generateRun(cmd *cobra.Command, args []string) error {
	keyword, _ := cmd.Flags().GetString("keyword")
	secondary, _ := cmd.Flags().GetString("secondary")
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	kw, err := core.NewKeywordPair(keyword, secondary)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	pipe, err := agent.NewPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	result, err := pipe.Generate(ctx, kw)
	if err != nil {
		return err
	}

	content, err := render.Bundle(*result.Bundle, format)
	if err != nil {
		return err
	}

	if out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), content)
		return nil
	}
	if err := render.WriteFile(content, out); err != nil {
		return err
	}

	logger.Info("Article written",
		"path", out,
		"sections", result.Stats.Sections,
		"links_added", result.Stats.LinksAdded,
		"duration", result.Stats.ProcessingTime)
	fmt.Fprintf(cmd.OutOrStdout(), "Article written to %s\n", out)
	return nil
}
