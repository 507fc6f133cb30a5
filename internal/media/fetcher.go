package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"telebook/internal/errors"
	"telebook/internal/security"
	"telebook/pkg/telegram"

	"github.com/sirupsen/logrus"
)

// Fetcher retrieves source-platform media into a dedicated scratch directory.
// The caller owns cleanup: every fetched path must be released via Cleanup
// after the delivery attempt, success or not.
type Fetcher struct {
	client     telegram.Client
	scratchDir string
	logger     *logrus.Logger
}

func NewFetcher(client telegram.Client, scratchDir string, logger *logrus.Logger) (*Fetcher, error) {
	if err := os.MkdirAll(scratchDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Fetcher{
		client:     client,
		scratchDir: scratchDir,
		logger:     logger,
	}, nil
}

// Fetch resolves the opaque file reference via the metadata call and streams
// the binary into a timestamp-prefixed scratch file. A partial download is
// removed before the error is returned.
func (f *Fetcher) Fetch(ctx context.Context, fileID string) (string, error) {
	meta, err := f.client.GetFile(ctx, fileID)
	if err != nil {
		return "", errors.WrapRetryable(err, errors.ErrCodeMediaDownload, "failed to resolve file reference")
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), sanitizeName(meta.FilePath))
	localPath := filepath.Join(f.scratchDir, name)

	out, err := os.Create(localPath) // #nosec G304 - Path is built from the scratch dir
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeMediaDownload, "failed to create scratch file")
	}

	if err := f.client.DownloadFile(ctx, meta.FilePath, out); err != nil {
		out.Close()
		os.Remove(localPath)
		return "", errors.WrapRetryable(err, errors.ErrCodeMediaDownload, "failed to download media")
	}
	if err := out.Close(); err != nil {
		os.Remove(localPath)
		return "", errors.Wrap(err, errors.ErrCodeMediaDownload, "failed to flush scratch file")
	}

	f.logger.WithFields(logrus.Fields{
		"fileId": fileID,
		"path":   localPath,
	}).Debug("Fetched media to scratch area")

	return localPath, nil
}

// Cleanup deletes a fetched scratch file. Only paths inside the scratch
// directory are eligible; anything else is refused so an arbitrary path
// recorded as "local media" can never be deleted through this call. A path
// that is already gone is not an error.
func (f *Fetcher) Cleanup(path string) error {
	if err := security.ValidateScratchPath(path, f.scratchDir); err != nil {
		return fmt.Errorf("refusing to delete %s: %w", path, err)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete scratch file: %w", err)
	}
	return nil
}

// ScratchDir exposes the scratch root, used by the status surface and tests.
func (f *Fetcher) ScratchDir() string {
	return f.scratchDir
}

// sanitizeName flattens a server-side file path into a single safe filename
// component.
func sanitizeName(remote string) string {
	base := filepath.Base(remote)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)
}
