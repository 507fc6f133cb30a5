package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"telebook/internal/queue"
	"telebook/pkg/facebook"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PostText(ctx context.Context, message string) (string, error) {
	args := m.Called(ctx, message)
	return args.String(0), args.Error(1)
}

func (m *mockPublisher) PostPhotoURL(ctx context.Context, photoURL, caption string) (string, error) {
	args := m.Called(ctx, photoURL, caption)
	return args.String(0), args.Error(1)
}

func (m *mockPublisher) PostPhotoFile(ctx context.Context, path, caption string) (string, error) {
	args := m.Called(ctx, path, caption)
	return args.String(0), args.Error(1)
}

func (m *mockPublisher) UploadVideo(ctx context.Context, path, description string, resume *facebook.VideoUploadState) (string, *facebook.VideoUploadState, error) {
	args := m.Called(ctx, path, description, resume)
	var state *facebook.VideoUploadState
	if s := args.Get(1); s != nil {
		state = s.(*facebook.VideoUploadState)
	}
	return args.String(0), state, args.Error(2)
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, fileID string) (string, error) {
	args := m.Called(ctx, fileID)
	return args.String(0), args.Error(1)
}

func (m *mockFetcher) Cleanup(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestManager(t *testing.T) *queue.Manager {
	t.Helper()
	store := queue.NewFileStore(filepath.Join(t.TempDir(), "queue.json"), testLogger())
	return queue.NewManager(store)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
