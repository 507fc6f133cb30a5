package service

import (
	"testing"
	"time"

	"telebook/internal/models"
	"telebook/internal/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusReporter(t *testing.T) {
	manager := newTestManager(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, manager.Update(func(q *models.Queue) error {
		queue.AddPending(q, models.QueueItem{ID: "a", Text: "x", MediaType: models.MediaTypeText, Status: models.StatusPending})
		queue.AddPending(q, models.QueueItem{ID: "b", Text: "y", MediaType: models.MediaTypeText, Status: models.StatusPending, ScheduledFor: timePtr(now)})
		q.Posted = append(q.Posted, models.QueueItem{ID: "c", Status: models.StatusPosted})
		return nil
	}))

	cfg := &models.Config{
		Facebook: models.FacebookConfig{PageID: "123", AccessToken: "real-token"},
	}
	status := NewStatusReporter(manager, cfg).Current()

	assert.Equal(t, 2, status.PendingCount)
	assert.Equal(t, 1, status.ScheduledCount)
	assert.Equal(t, 1, status.PostedCount)
	assert.False(t, status.DryRun)
	assert.True(t, status.ConfigValid)
}

func TestStatusReporter_PlaceholderCredentials(t *testing.T) {
	manager := newTestManager(t)

	cfg := &models.Config{
		Facebook: models.FacebookConfig{PageID: "123", AccessToken: "YOUR_ACCESS_TOKEN"},
	}
	status := NewStatusReporter(manager, cfg).Current()

	assert.False(t, status.ConfigValid)
}

func TestStatusReporter_DryRunIsAlwaysValid(t *testing.T) {
	manager := newTestManager(t)

	cfg := &models.Config{DryRun: true}
	status := NewStatusReporter(manager, cfg).Current()

	assert.True(t, status.DryRun)
	assert.True(t, status.ConfigValid)
}
