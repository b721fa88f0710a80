// Package agent runs the full keyword-to-post flow, once or over a batch.
package agent

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"blogagent/internal/core"
	"blogagent/internal/keywords"
	"blogagent/internal/logger"

	"github.com/google/uuid"
)

// ArticleGenerator produces a finished bundle for one keyword pair
type ArticleGenerator interface {
	Run(ctx context.Context, kw core.KeywordPair) (*core.ArticleBundle, error)
}

// ArticlePublisher turns a bundle into a post
type ArticlePublisher interface {
	Publish(ctx context.Context, bundle core.ArticleBundle, imagePath string) (core.PublishResult, error)
}

// KeywordLoader returns the keyword source, loading it on first use
type KeywordLoader func() (*keywords.Source, error)

// RunRequest is the input of a single run. An empty Primary picks a random
// keyword from the source.
type RunRequest struct {
	Primary   string
	Secondary string
	ImagePath string
}

// BatchResult records the outcome for one keyword of a batch
type BatchResult struct {
	Keyword string
	PostID  int
	Status  string
}

// Runner ties generation to publishing. Runs are processed one at a time
// and share no mutable state.
type Runner struct {
	generator ArticleGenerator
	publisher ArticlePublisher
	keywords  KeywordLoader
	log       *slog.Logger
}

// NewRunner creates a runner. A nil log uses the default logger.
func NewRunner(gen ArticleGenerator, pub ArticlePublisher, kws KeywordLoader, log *slog.Logger) *Runner {
	if log == nil {
		log = logger.Get()
	}
	return &Runner{generator: gen, publisher: pub, keywords: kws, log: log}
}

// RunOnce generates and publishes one article. Nothing is published when
// generation fails.
func (r *Runner) RunOnce(ctx context.Context, req RunRequest) (core.PublishResult, error) {
	primary := strings.TrimSpace(req.Primary)
	if primary == "" {
		picked, err := r.pickKeyword()
		if err != nil {
			return core.PublishResult{}, err
		}
		primary = picked
	}

	kw, err := core.NewKeywordPair(primary, req.Secondary)
	if err != nil {
		return core.PublishResult{}, err
	}

	log := r.log.With("run_id", uuid.NewString(), "keyword", kw.Primary)
	start := time.Now()
	log.Info("Run started", "secondary", kw.Secondary, "image", req.ImagePath)

	bundle, err := r.generator.Run(ctx, kw)
	if err != nil {
		log.Error("Generation failed", "error", err)
		return core.PublishResult{}, err
	}

	res, err := r.publisher.Publish(ctx, *bundle, req.ImagePath)
	if err != nil {
		log.Error("Publish failed", "error", err)
		return core.PublishResult{}, err
	}

	log.Info("Run finished", "post_id", res.PostID, "duration", time.Since(start))
	return res, nil
}

func (r *Runner) pickKeyword() (string, error) {
	if r.keywords == nil {
		return "", fmt.Errorf("%w: no keyword source configured", core.ErrNoKeywords)
	}
	src, err := r.keywords()
	if err != nil {
		return "", err
	}
	kw := src.Random()
	r.log.Info("Keyword chosen from source", "keyword", kw, "pool_size", src.Len())
	return kw, nil
}

// Batch runs every keyword in order, continuing past failures. It stops
// early only when ctx is done.
func (r *Runner) Batch(ctx context.Context, kws []string, imagePath string) []BatchResult {
	results := make([]BatchResult, 0, len(kws))
	for i, kw := range kws {
		if ctx.Err() != nil {
			r.log.Warn("Batch interrupted", "completed", i, "total", len(kws))
			break
		}
		r.log.Info("Batch item", "index", i+1, "total", len(kws), "keyword", kw)

		res, err := r.RunOnce(ctx, RunRequest{Primary: kw, ImagePath: imagePath})
		if err != nil {
			results = append(results, BatchResult{Keyword: kw, Status: "error: " + err.Error()})
			continue
		}
		results = append(results, BatchResult{Keyword: kw, PostID: res.PostID, Status: "ok"})
	}
	return results
}

// ResultsPath derives the batch report path from the keyword file path.
func ResultsPath(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + "_results.csv"
}

// WriteResultsCSV writes keyword,post_id,status rows. Failed keywords have
// an empty post_id.
func WriteResultsCSV(path string, results []BatchResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"keyword", "post_id", "status"}); err != nil {
		return err
	}
	for _, r := range results {
		id := ""
		if r.PostID != 0 {
			id = strconv.Itoa(r.PostID)
		}
		if err := w.Write([]string{r.Keyword, id, r.Status}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return f.Close()
}
