package facebook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Client publishes content to a Facebook page through the Graph API.
type Client interface {
	PostText(ctx context.Context, message string) (string, error)
	PostPhotoURL(ctx context.Context, photoURL, caption string) (string, error)
	PostPhotoFile(ctx context.Context, path, caption string) (string, error)
	UploadVideo(ctx context.Context, path, description string, resume *VideoUploadState) (string, *VideoUploadState, error)
}

type GraphClient struct {
	baseURL      string
	graphVersion string
	pageID       string
	accessToken  string
	client       *http.Client
	chunkSize    int64
	logger       *logrus.Logger
}

type ClientConfig struct {
	BaseURL      string
	GraphVersion string
	PageID       string
	AccessToken  string
	ChunkSize    int64
	Timeout      time.Duration
}

func NewClient(cfg ClientConfig, logger *logrus.Logger) *GraphClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 4 * 1024 * 1024
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	return &GraphClient{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		graphVersion: cfg.GraphVersion,
		pageID:       cfg.PageID,
		accessToken:  cfg.AccessToken,
		client:       &http.Client{Timeout: cfg.Timeout},
		chunkSize:    cfg.ChunkSize,
		logger:       logger,
	}
}

func (c *GraphClient) endpoint(edge string) string {
	return fmt.Sprintf("%s/%s/%s/%s", c.baseURL, c.graphVersion, c.pageID, edge)
}

// PostText publishes a plain text post to the page feed.
func (c *GraphClient) PostText(ctx context.Context, message string) (string, error) {
	form := url.Values{}
	form.Set("message", message)
	form.Set("access_token", c.accessToken)

	var result PostResponse
	if err := c.postForm(ctx, c.endpoint("feed"), form, &result); err != nil {
		return "", err
	}

	c.logger.WithField("postId", result.ID).Debug("Published text post")
	return result.ID, nil
}

// PostPhotoURL publishes a photo the platform fetches itself from a public URL.
func (c *GraphClient) PostPhotoURL(ctx context.Context, photoURL, caption string) (string, error) {
	form := url.Values{}
	form.Set("url", photoURL)
	form.Set("caption", caption)
	form.Set("access_token", c.accessToken)

	var result PostResponse
	if err := c.postForm(ctx, c.endpoint("photos"), form, &result); err != nil {
		return "", err
	}

	return photoPostID(result), nil
}

// PostPhotoFile publishes a local image as a multipart upload.
func (c *GraphClient) PostPhotoFile(ctx context.Context, path, caption string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open photo file: %w", err)
	}
	defer file.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("source", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("failed to copy photo content: %w", err)
	}

	_ = writer.WriteField("caption", caption)
	_ = writer.WriteField("access_token", c.accessToken)
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	var result PostResponse
	if err := c.postMultipart(ctx, c.endpoint("photos"), writer.FormDataContentType(), body, &result); err != nil {
		return "", err
	}

	return photoPostID(result), nil
}

// photoPostID prefers the page-scoped post id over the raw photo id.
func photoPostID(r PostResponse) string {
	if r.PostID != "" {
		return r.PostID
	}
	return r.ID
}

func (c *GraphClient) postForm(ctx context.Context, endpoint string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req, out)
}

func (c *GraphClient) postMultipart(ctx context.Context, endpoint, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	return c.do(req, out)
}

// do executes the request and decodes either the expected payload or the
// uniform {error: {message}} envelope.
func (c *GraphClient) do(req *http.Request, out interface{}) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != nil {
		return envelope.Error
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("graph API request failed with status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
