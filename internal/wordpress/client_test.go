package wordpress

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
	"testing"
	"time"

	"blogagent/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.WordPress{
		BaseURL:     srv.URL + "/",
		User:        "editor",
		AppPassword: "abcd efgh",
		UserAgent:   "ai-blog-agent/1.0",
		Timeout:     5 * time.Second,
	}, nil)
}

func TestUploadMedia(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	require.NoError(t, f.Close())

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wp/v2/media", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "editor", user)
		assert.Equal(t, "abcd efgh", pass)
		assert.Equal(t, "ai-blog-agent/1.0", r.UserAgent())

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer func() { _ = file.Close() }()
		assert.Equal(t, "cover.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 42, "source_url": "https://example.com/cover.png"}`))
	})

	media, err := client.UploadMedia(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 42, media.ID)
	assert.Equal(t, "https://example.com/cover.png", media.SourceURL)
}

func TestUploadMedia_ServerError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cover.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not really a jpeg"), 0644))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"rest_cannot_create"}`, http.StatusForbidden)
	})

	_, err := client.UploadMedia(context.Background(), path)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "rest_cannot_create")
}

func TestUploadMedia_MissingFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := client.UploadMedia(context.Background(), "/does/not/exist.png")
	assert.Error(t, err)
}

func TestCreateAndUpdatePost(t *testing.T) {
	var created map[string]any
	var updated map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		switch r.URL.Path {
		case "/wp-json/wp/v2/posts":
			assert.NoError(t, json.Unmarshal(body, &created))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id": 7}`))
		case "/wp-json/wp/v2/posts/7":
			assert.NoError(t, json.Unmarshal(body, &updated))
			_, _ = w.Write([]byte(`{"id": 7}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	id, err := client.CreatePost(context.Background(), Post{
		Title: "T", Slug: "t", Content: "<p>x</p>", Status: "draft", FeaturedMedia: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	assert.Equal(t, "draft", created["status"])
	assert.Equal(t, float64(3), created["featured_media"])

	err = client.UpdatePost(context.Background(), 7, PostUpdate{Status: "publish"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "publish"}, updated)
}

func TestCreatePost_NoFeaturedMediaOmitted(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, present := payload["featured_media"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{"id": 1}`))
	})

	_, err := client.CreatePost(context.Background(), Post{Title: "T", Content: "c", Status: "draft"})
	require.NoError(t, err)
}

func TestUpdateMediaAndSEOMeta(t *testing.T) {
	paths := []string{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/wp-json/rankmath/v1/updateMeta" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})

	require.NoError(t, client.UpdateMedia(context.Background(), 5, MediaMeta{AltText: "alt"}))
	err := client.UpdateSEOMeta(context.Background(), map[string]any{"post_id": 1})
	assert.Error(t, err)
	assert.Equal(t, []string{"/wp-json/wp/v2/media/5", "/wp-json/rankmath/v1/updateMeta"}, paths)
}
