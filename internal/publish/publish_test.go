package publish

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"blogagent/internal/config"
	"blogagent/internal/core"
	"blogagent/internal/logger"
	"blogagent/internal/visual"
	"blogagent/internal/wordpress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCMS struct {
	uploadErr    error
	createErr    error
	seoFailUntil int // SEO variants failing before one succeeds; -1 fails all
	updateFails  int // UpdatePost calls that fail before succeeding

	uploads    []string
	mediaMeta  []wordpress.MediaMeta
	posts      []wordpress.Post
	updates    []wordpress.PostUpdate
	seoPayload []map[string]any
}

func (f *fakeCMS) UploadMedia(ctx context.Context, path string) (*wordpress.Media, error) {
	f.uploads = append(f.uploads, path)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &wordpress.Media{ID: 99}, nil
}

func (f *fakeCMS) UpdateMedia(ctx context.Context, id int, meta wordpress.MediaMeta) error {
	f.mediaMeta = append(f.mediaMeta, meta)
	return errors.New("alt text endpoint down")
}

func (f *fakeCMS) CreatePost(ctx context.Context, post wordpress.Post) (int, error) {
	f.posts = append(f.posts, post)
	if f.createErr != nil {
		return 0, f.createErr
	}
	return 123, nil
}

func (f *fakeCMS) UpdatePost(ctx context.Context, id int, update wordpress.PostUpdate) error {
	f.updates = append(f.updates, update)
	if len(f.updates) <= f.updateFails {
		return errors.New("update failed")
	}
	return nil
}

func (f *fakeCMS) UpdateSEOMeta(ctx context.Context, payload any) error {
	f.seoPayload = append(f.seoPayload, payload.(map[string]any))
	if f.seoFailUntil < 0 || len(f.seoPayload) <= f.seoFailUntil {
		return errors.New("404")
	}
	return nil
}

func sampleBundle() core.ArticleBundle {
	return core.ArticleBundle{
		HTML:            `<h2 id="a">Employer of Record Guide</h2><p>Intro <img src="x.png"></p><figure><img src="y.png"><figcaption>c</figcaption></figure><p>End</p>`,
		MetaTitle:       "Employer of Record Guide for Finance Teams",
		KeywordsLine:    "Employer of Record, EOR costs",
		MetaDescription: "Employer of Record explained for CFOs.",
	}
}

func writeImage(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 8, 8))))
	require.NoError(t, f.Close())
	return path
}

func TestPublish_FullSequence(t *testing.T) {
	img := writeImage(t, t.TempDir(), "cover.png")
	cms := &fakeCMS{seoFailUntil: 2}
	p := New(cms, Options{Image: visual.DefaultOptions(), Brand: "NNRoad"}, logger.Discard())

	res, err := p.Publish(context.Background(), sampleBundle(), img)
	require.NoError(t, err)
	assert.Equal(t, 123, res.PostID)

	require.Len(t, cms.uploads, 1)
	assert.Equal(t, img, cms.uploads[0], "small images upload unchanged")
	require.Len(t, cms.mediaMeta, 1)
	assert.Equal(t, "Employer of Record - Employer of Record explained for CFOs.", cms.mediaMeta[0].AltText)
	assert.Equal(t, "Employer of Record Guide for Finance Teams", cms.mediaMeta[0].Caption)

	require.Len(t, cms.posts, 1)
	post := cms.posts[0]
	assert.Equal(t, "draft", post.Status)
	assert.Equal(t, "employer-of-record", post.Slug)
	assert.Equal(t, 99, post.FeaturedMedia)
	assert.NotContains(t, post.Content, "<img")
	assert.NotContains(t, post.Content, "figcaption")
	assert.Contains(t, post.Content, "<p>End</p>")

	assert.Len(t, cms.seoPayload, 3, "stops at the first accepted variant")
	assert.Contains(t, cms.seoPayload[2], "object_id")

	require.Len(t, cms.updates, 1)
	assert.Equal(t, "publish", cms.updates[0].Status)
	assert.Equal(t, "Employer of Record", cms.updates[0].Meta["rank_math_focus_keyword"])
}

func TestPublish_AllSEOVariantsFail(t *testing.T) {
	cms := &fakeCMS{seoFailUntil: -1}
	p := New(cms, Options{}, logger.Discard())

	res, err := p.Publish(context.Background(), sampleBundle(), "")
	require.NoError(t, err)
	assert.Equal(t, 123, res.PostID)
	assert.Len(t, cms.seoPayload, 4)
	assert.Empty(t, cms.uploads)
	assert.Equal(t, 0, cms.posts[0].FeaturedMedia)
}

func TestPublish_StatusFlipFallback(t *testing.T) {
	cms := &fakeCMS{updateFails: 1}
	p := New(cms, Options{PublishStatus: "future"}, logger.Discard())

	res, err := p.Publish(context.Background(), sampleBundle(), "")
	require.NoError(t, err)
	assert.Equal(t, 123, res.PostID)

	require.Len(t, cms.updates, 2)
	assert.NotEmpty(t, cms.updates[0].Meta)
	assert.Equal(t, wordpress.PostUpdate{Status: "future"}, cms.updates[1])
}

func TestPublish_EveryUpdateFailsStillReturnsID(t *testing.T) {
	cms := &fakeCMS{updateFails: 10, seoFailUntil: -1}
	p := New(cms, Options{}, logger.Discard())

	res, err := p.Publish(context.Background(), sampleBundle(), "")
	require.NoError(t, err)
	assert.Equal(t, 123, res.PostID)
	assert.Len(t, cms.updates, 2)
}

func TestPublish_UploadFailureAborts(t *testing.T) {
	img := writeImage(t, t.TempDir(), "cover.png")
	cms := &fakeCMS{uploadErr: errors.New("413 too large")}
	p := New(cms, Options{}, logger.Discard())

	_, err := p.Publish(context.Background(), sampleBundle(), img)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUpload)
	assert.ErrorIs(t, err, core.ErrPublish)
	assert.Empty(t, cms.posts, "no post is created after an upload failure")
}

func TestPublish_CreateFailure(t *testing.T) {
	cms := &fakeCMS{createErr: errors.New("500")}
	p := New(cms, Options{}, logger.Discard())

	_, err := p.Publish(context.Background(), sampleBundle(), "")
	assert.ErrorIs(t, err, core.ErrPublish)
	assert.NotErrorIs(t, err, core.ErrUpload)
	assert.Empty(t, cms.seoPayload)
}

func TestPublish_RandomPoolImage(t *testing.T) {
	dir := t.TempDir()
	img := writeImage(t, dir, "only.png")
	cms := &fakeCMS{}
	p := New(cms, Options{ImageDir: dir, Image: visual.DefaultOptions()}, logger.Discard())

	_, err := p.Publish(context.Background(), sampleBundle(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{img}, cms.uploads)
}

func TestPublish_EmptyPoolSkipsImage(t *testing.T) {
	cms := &fakeCMS{}
	p := New(cms, Options{ImageDir: t.TempDir()}, logger.Discard())

	_, err := p.Publish(context.Background(), sampleBundle(), "")
	require.NoError(t, err)
	assert.Empty(t, cms.uploads)
}

func TestPublish_MetaGuaranteesReapplied(t *testing.T) {
	bundle := sampleBundle()
	bundle.MetaTitle = "Hiring guide"
	bundle.MetaDescription = ""
	cms := &fakeCMS{}
	p := New(cms, Options{Brand: "NNRoad"}, logger.Discard())

	_, err := p.Publish(context.Background(), bundle, "")
	require.NoError(t, err)

	meta := cms.updates[0].Meta
	assert.Equal(t, "Employer of Record | NNRoad", meta["rank_math_title"])
	assert.True(t, strings.HasPrefix(meta["rank_math_description"], "Employer of Record — Intro"))
	assert.Equal(t, "Hiring guide", cms.posts[0].Title)
}

func TestRankMathPayloads(t *testing.T) {
	payloads := RankMathPayloads(5, "T", "D", "K")
	require.Len(t, payloads, 4)
	assert.Equal(t, 5, payloads[0]["objectID"])
	assert.Equal(t, 5, payloads[1]["objectId"])
	assert.Equal(t, 5, payloads[2]["object_id"])
	assert.Equal(t, "K", payloads[3]["focus_keyword"])
}

func TestStripImages(t *testing.T) {
	plain := "<p>a &amp; b</p>"
	assert.Equal(t, plain, StripImages(plain))
	assert.Equal(t, "<p>a</p>", StripImages(`<p>a<img src="x"/></p>`))
}

// TestPublish_AgainstHTTPServer runs the sequence against a fake WordPress
// whose SEO endpoint rejects every payload shape.
func TestPublish_AgainstHTTPServer(t *testing.T) {
	var mu sync.Mutex
	var seoCalls int
	var statuses []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/wp-json/rankmath/v1/updateMeta":
			seoCalls++
			http.Error(w, "no route", http.StatusNotFound)
		case "/wp-json/wp/v2/posts":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 555}`))
		case "/wp-json/wp/v2/posts/555":
			var update map[string]any
			_ = json.Unmarshal(body, &update)
			statuses = append(statuses, update["status"].(string))
			_, _ = w.Write([]byte(`{"id": 555}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := wordpress.NewClient(config.WordPress{BaseURL: srv.URL, User: "u", AppPassword: "p", Timeout: 5 * time.Second}, nil)
	p := New(client, Options{}, logger.Discard())

	res, err := p.Publish(context.Background(), sampleBundle(), "")
	require.NoError(t, err)
	assert.Equal(t, 555, res.PostID)
	assert.Equal(t, 4, seoCalls)
	assert.Equal(t, []string{"publish"}, statuses)
}
