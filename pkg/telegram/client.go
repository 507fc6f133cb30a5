package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Client talks to the Bot API for the two calls this system needs: resolving
// a file reference to a server path and streaming the binary down.
type Client interface {
	GetFile(ctx context.Context, fileID string) (*File, error)
	DownloadFile(ctx context.Context, filePath string, w io.Writer) error
}

type BotClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *logrus.Logger
}

func NewClient(baseURL, token string, httpClient *http.Client, logger *logrus.Logger) *BotClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	return &BotClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  httpClient,
		logger:  logger,
	}
}

// GetFile resolves an opaque file_id into a retrievable file path via the
// getFile metadata call.
func (c *BotClient) GetFile(ctx context.Context, fileID string) (*File, error) {
	endpoint := fmt.Sprintf("%s/bot%s/getFile?file_id=%s", c.baseURL, c.token, fileID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create getFile request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send getFile request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode getFile response: %w", err)
	}
	if !envelope.OK {
		return nil, fmt.Errorf("telegram API error: %s", envelope.Description)
	}

	var file File
	if err := json.Unmarshal(envelope.Result, &file); err != nil {
		return nil, fmt.Errorf("failed to decode file metadata: %w", err)
	}
	if file.FilePath == "" {
		return nil, fmt.Errorf("telegram returned empty file path for %s", fileID)
	}

	c.logger.WithFields(logrus.Fields{
		"fileId":   fileID,
		"filePath": file.FilePath,
		"size":     file.FileSize,
	}).Debug("Resolved Telegram file reference")

	return &file, nil
}

// DownloadFile streams the binary at the given server-side file path into w.
func (c *BotClient) DownloadFile(ctx context.Context, filePath string, w io.Writer) error {
	endpoint := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, filePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("file download failed with status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to read file data: %w", err)
	}

	return nil
}
