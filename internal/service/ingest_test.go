package service

import (
	"context"
	"strings"
	"testing"

	"telebook/internal/metrics"
	"telebook/internal/models"
	"telebook/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIngestor(t *testing.T) (*Ingestor, *queue.Manager, *metrics.Registry) {
	t.Helper()
	manager := newTestManager(t)
	registry := metrics.NewRegistry()
	return NewIngestor(manager, registry, testLogger()), manager, registry
}

func TestAddToQueue_Success(t *testing.T) {
	ingestor, manager, registry := newTestIngestor(t)

	result, err := ingestor.AddToQueue(context.Background(), &models.IngestRequest{
		Source:    "channel-1",
		Text:      "fresh news",
		MediaType: models.MediaTypeText,
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotNil(t, result.Item)

	assert.NotEmpty(t, result.Item.ID)
	assert.Len(t, result.Item.ContentHash, 16)
	assert.Equal(t, models.StatusPending, result.Item.Status)
	assert.Nil(t, result.Item.ScheduledFor)

	q := manager.Snapshot()
	require.Len(t, q.Pending, 1)
	assert.Equal(t, result.Item.ID, q.Pending[0].ID)
	assert.Equal(t, float64(1), registry.CounterValue(metrics.ItemsIngested, nil))
}

func TestAddToQueue_ValidationFailure(t *testing.T) {
	ingestor, manager, _ := newTestIngestor(t)

	result, err := ingestor.AddToQueue(context.Background(), &models.IngestRequest{
		Text:      strings.Repeat("x", 2201),
		MediaType: models.MediaTypeText,
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, ReasonValidation, result.Reason)
	assert.NotEmpty(t, result.Errors)
	assert.Empty(t, manager.Snapshot().Pending)
}

func TestAddToQueue_DuplicateOfPublishedContent(t *testing.T) {
	ingestor, manager, registry := newTestIngestor(t)

	hash := queue.Hash("same text", models.MediaTypeText)
	require.NoError(t, manager.Update(func(q *models.Queue) error {
		q.PostedHashes = append(q.PostedHashes, hash)
		return nil
	}))

	result, err := ingestor.AddToQueue(context.Background(), &models.IngestRequest{
		Text:      "same text",
		MediaType: models.MediaTypeText,
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, ReasonDuplicate, result.Reason)
	assert.Empty(t, manager.Snapshot().Pending)
	assert.Equal(t, float64(1), registry.CounterValue(metrics.ItemsDuplicate, nil))
}

func TestAddToQueue_PendingDuplicateIsAdmitted(t *testing.T) {
	ingestor, manager, _ := newTestIngestor(t)

	req := &models.IngestRequest{Text: "breaking", MediaType: models.MediaTypeText}

	first, err := ingestor.AddToQueue(context.Background(), req)
	require.NoError(t, err)
	require.True(t, first.Success)

	// Suppression only consults published fingerprints, so an identical
	// item still waiting in pending goes through.
	second, err := ingestor.AddToQueue(context.Background(), req)
	require.NoError(t, err)
	require.True(t, second.Success)

	q := manager.Snapshot()
	require.Len(t, q.Pending, 2)
	assert.Equal(t, q.Pending[0].ContentHash, q.Pending[1].ContentHash)
	assert.NotEqual(t, q.Pending[0].ID, q.Pending[1].ID)
}

func TestAddToQueue_SameTextDifferentMediaTypeNotDuplicate(t *testing.T) {
	ingestor, _, _ := newTestIngestor(t)

	hash := queue.Hash("caption", models.MediaTypeText)
	imageHash := queue.Hash("caption", models.MediaTypeImage)
	require.NotEqual(t, hash, imageHash)

	result, err := ingestor.AddToQueue(context.Background(), &models.IngestRequest{
		Text:           "caption",
		MediaType:      models.MediaTypeImage,
		MediaReference: "file-9",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, imageHash, result.Item.ContentHash)
}
