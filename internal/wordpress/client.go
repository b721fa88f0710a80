// Package wordpress is a minimal client for the WordPress REST API and the
// RankMath SEO endpoint, authenticated with an application password.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"blogagent/internal/config"

	"github.com/gabriel-vasile/mimetype"
)

const (
	mediaPath      = "/wp-json/wp/v2/media"
	postsPath      = "/wp-json/wp/v2/posts"
	rankMathPath   = "/wp-json/rankmath/v1/updateMeta"
	maxErrorBody   = 512
	defaultTimeout = 60 * time.Second
)

// Client talks to one WordPress site.
type Client struct {
	baseURL    string
	user       string
	password   string
	userAgent  string
	httpClient *http.Client
}

// Media is an uploaded attachment.
type Media struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
}

// MediaMeta holds the editable text of an attachment.
type MediaMeta struct {
	AltText     string `json:"alt_text,omitempty"`
	Caption     string `json:"caption,omitempty"`
	Description string `json:"description,omitempty"`
}

// Post is the payload for creating a post.
type Post struct {
	Title         string `json:"title"`
	Slug          string `json:"slug,omitempty"`
	Content       string `json:"content"`
	Status        string `json:"status"`
	FeaturedMedia int    `json:"featured_media,omitempty"`
}

// PostUpdate changes selected fields of an existing post.
type PostUpdate struct {
	Status string            `json:"status,omitempty"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// NewClient creates a client. A nil httpClient gets one with the configured
// timeout.
func NewClient(cfg config.WordPress, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		user:       cfg.User,
		password:   cfg.AppPassword,
		userAgent:  cfg.UserAgent,
		httpClient: httpClient,
	}
}

// UploadMedia uploads a local file as a multipart attachment.
func (c *Client) UploadMedia(ctx context.Context, path string) (*Media, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read media file: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	name := filepath.Base(path)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", mimetype.Detect(data).String())

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, mediaPath, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	var media Media
	if err := c.do(req, "upload media", &media); err != nil {
		return nil, err
	}
	if media.ID == 0 {
		return nil, fmt.Errorf("upload media: response has no id")
	}
	return &media, nil
}

// UpdateMedia sets alt text, caption and description of an attachment.
func (c *Client) UpdateMedia(ctx context.Context, id int, meta MediaMeta) error {
	return c.postJSON(ctx, mediaPath+"/"+strconv.Itoa(id), "update media", meta, nil)
}

// CreatePost creates a post and returns its id.
func (c *Client) CreatePost(ctx context.Context, post Post) (int, error) {
	var created struct {
		ID int `json:"id"`
	}
	if err := c.postJSON(ctx, postsPath, "create post", post, &created); err != nil {
		return 0, err
	}
	if created.ID == 0 {
		return 0, fmt.Errorf("create post: response has no id")
	}
	return created.ID, nil
}

// UpdatePost updates an existing post.
func (c *Client) UpdatePost(ctx context.Context, id int, update PostUpdate) error {
	return c.postJSON(ctx, postsPath+"/"+strconv.Itoa(id), "update post", update, nil)
}

// UpdateSEOMeta posts one payload shape to the RankMath updateMeta endpoint.
func (c *Client) UpdateSEOMeta(ctx context.Context, payload any) error {
	return c.postJSON(ctx, rankMathPath, "update seo meta", payload, nil)
}

func (c *Client) postJSON(ctx context.Context, path, op string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: failed to encode payload: %w", op, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.user, c.password)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}
