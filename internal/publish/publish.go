// Package publish turns a finished article bundle into a visible post: image
// upload, draft creation, SEO metadata, then the status flip.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"blogagent/internal/config"
	"blogagent/internal/core"
	"blogagent/internal/logger"
	"blogagent/internal/seo"
	"blogagent/internal/visual"
	"blogagent/internal/wordpress"

	"github.com/PuerkitoBio/goquery"
)

// CMS is the subset of the WordPress API the publisher needs.
type CMS interface {
	UploadMedia(ctx context.Context, path string) (*wordpress.Media, error)
	UpdateMedia(ctx context.Context, id int, meta wordpress.MediaMeta) error
	CreatePost(ctx context.Context, post wordpress.Post) (int, error)
	UpdatePost(ctx context.Context, id int, update wordpress.PostUpdate) error
	UpdateSEOMeta(ctx context.Context, payload any) error
}

// Options configures publishing.
type Options struct {
	ImageDir      string // Random featured image pool; empty disables it
	Image         visual.Options
	PublishStatus string
	Brand         string
}

// OptionsFromConfig builds Options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ImageDir:      cfg.Images.Dir,
		Image:         visual.OptionsFromConfig(cfg.Images),
		PublishStatus: cfg.WordPress.PublishStatus,
		Brand:         cfg.Content.Brand,
	}
}

// Publisher runs the publish sequence. Steps are strictly sequential and
// nothing is rolled back.
type Publisher struct {
	cms  CMS
	opts Options
	log  *slog.Logger
}

// New creates a Publisher. A nil log uses the default logger.
func New(cms CMS, opts Options, log *slog.Logger) *Publisher {
	if opts.PublishStatus == "" {
		opts.PublishStatus = "publish"
	}
	if log == nil {
		log = logger.Get()
	}
	return &Publisher{cms: cms, opts: opts, log: log}
}

// Publish uploads the featured image (imagePath, else a random pool image),
// creates the post as a draft, writes SEO metadata and publishes it. Only
// upload and create failures are returned; once the post exists its id is
// returned even if metadata could not be written.
func (p *Publisher) Publish(ctx context.Context, bundle core.ArticleBundle, imagePath string) (core.PublishResult, error) {
	focus := bundle.FocusKeyword()
	log := p.log.With("keyword", focus)

	body := StripImages(bundle.HTML)

	title := strings.TrimSpace(bundle.MetaTitle)
	if title == "" {
		title = focus
	}

	mediaID, err := p.featuredImage(ctx, log, imagePath, bundle, focus)
	if err != nil {
		return core.PublishResult{}, err
	}

	slug := seo.Slugify(focus)
	if slug == "" {
		slug = seo.Slugify(title)
	}
	postID, err := p.cms.CreatePost(ctx, wordpress.Post{
		Title:         title,
		Slug:          slug,
		Content:       body,
		Status:        "draft",
		FeaturedMedia: mediaID,
	})
	if err != nil {
		return core.PublishResult{}, fmt.Errorf("%w: create post: %w", core.ErrPublish, err)
	}
	log = log.With("post_id", postID)
	log.Info("Draft created", "slug", slug, "featured_media", mediaID)

	metaTitle := seo.EnsureMetaTitle(bundle.MetaTitle, focus, p.opts.Brand)
	metaDesc := seo.EnsureMetaDescription(bundle.MetaDescription, focus, body)

	p.writeSEOMeta(ctx, log, postID, metaTitle, metaDesc, focus)
	p.finalize(ctx, log, postID, metaTitle, metaDesc, focus)

	return core.PublishResult{PostID: postID}, nil
}

// featuredImage returns the uploaded media id, or 0 when there is no image.
func (p *Publisher) featuredImage(ctx context.Context, log *slog.Logger, imagePath string, bundle core.ArticleBundle, focus string) (int, error) {
	path := imagePath
	if path == "" && p.opts.ImageDir != "" {
		picked, err := visual.PickRandom(p.opts.ImageDir)
		if err != nil {
			log.Info("No featured image available", "dir", p.opts.ImageDir, "reason", err)
			return 0, nil
		}
		path = picked
	}
	if path == "" {
		return 0, nil
	}

	uploadPath, err := visual.Optimize(path, p.opts.Image)
	if err != nil {
		log.Warn("Image optimization failed, uploading original", "path", path, "error", err)
		uploadPath = path
	}

	media, err := p.cms.UploadMedia(ctx, uploadPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %w: %s: %w", core.ErrPublish, core.ErrUpload, uploadPath, err)
	}
	log.Info("Featured image uploaded", "media_id", media.ID, "path", uploadPath)

	meta := wordpress.MediaMeta{
		AltText:     strings.TrimSpace(focus + " - " + bundle.MetaDescription),
		Caption:     bundle.MetaTitle,
		Description: bundle.MetaDescription,
	}
	if err := p.cms.UpdateMedia(ctx, media.ID, meta); err != nil {
		log.Warn("Failed to set image alt text", "media_id", media.ID, "error", err)
	}
	return media.ID, nil
}

// writeSEOMeta tries each RankMath payload shape until one is accepted.
// Failure is logged only; finalize writes the same fields again.
func (p *Publisher) writeSEOMeta(ctx context.Context, log *slog.Logger, postID int, title, desc, focus string) {
	var errs []error
	for i, payload := range RankMathPayloads(postID, title, desc, focus) {
		err := p.cms.UpdateSEOMeta(ctx, payload)
		if err == nil {
			log.Info("SEO metadata written", "variant", i+1)
			return
		}
		errs = append(errs, fmt.Errorf("variant %d: %w", i+1, err))
	}
	log.Warn("SEO endpoint rejected every payload variant", "error", errors.Join(errs...))
}

// finalize writes the generic meta fields and flips the status in one
// request, falling back to a bare status flip.
func (p *Publisher) finalize(ctx context.Context, log *slog.Logger, postID int, title, desc, focus string) {
	err := p.cms.UpdatePost(ctx, postID, wordpress.PostUpdate{
		Status: p.opts.PublishStatus,
		Meta:   rankMathMeta(title, desc, focus),
	})
	if err == nil {
		log.Info("Post published", "status", p.opts.PublishStatus)
		return
	}
	log.Warn("Meta update with status flip failed, retrying status only", "error", err)

	if err := p.cms.UpdatePost(ctx, postID, wordpress.PostUpdate{Status: p.opts.PublishStatus}); err != nil {
		log.Warn("Status flip failed, post left as draft", "error", err)
		return
	}
	log.Info("Post published without meta", "status", p.opts.PublishStatus)
}

func rankMathMeta(title, desc, focus string) map[string]string {
	return map[string]string{
		"rank_math_title":         title,
		"rank_math_description":   desc,
		"rank_math_focus_keyword": focus,
	}
}

// RankMathPayloads returns the updateMeta payload shapes accepted by
// different RankMath versions, in the order they are tried.
func RankMathPayloads(postID int, title, desc, focus string) []map[string]any {
	meta := rankMathMeta(title, desc, focus)
	return []map[string]any{
		{"objectType": "post", "objectID": postID, "meta": meta},
		{"objectType": "post", "objectId": postID, "meta": meta},
		{"object_type": "post", "object_id": postID, "meta": meta},
		{"post_id": postID, "title": title, "description": desc, "focus_keyword": focus},
	}
}

// StripImages removes <img> and <figure> markup; the post carries a single
// featured image instead. Bodies without images are returned unchanged.
func StripImages(body string) string {
	if !strings.Contains(strings.ToLower(body), "<img") && !strings.Contains(strings.ToLower(body), "<figure") {
		return body
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body
	}
	doc.Find("figure, img").Remove()
	out, err := doc.Find("body").Html()
	if err != nil {
		return body
	}
	return strings.TrimSpace(out)
}
