package queue

import (
	"fmt"
	"testing"
	"time"

	"telebook/internal/constants"
	"telebook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingItem(id, text string) models.QueueItem {
	return models.QueueItem{
		ID:          id,
		Source:      "telegram",
		Text:        text,
		MediaType:   models.MediaTypeText,
		ContentHash: Hash(text, models.MediaTypeText),
		AddedAt:     time.Now().UTC(),
		Status:      models.StatusPending,
	}
}

// assertPartition checks the queue invariant: every item belongs to exactly
// one of pending/posted and ids are unique across the union.
func assertPartition(t *testing.T, q *models.Queue) {
	t.Helper()
	seen := map[string]bool{}
	for _, item := range q.Pending {
		assert.False(t, seen[item.ID], "duplicate id %s", item.ID)
		seen[item.ID] = true
		assert.NotEqual(t, models.StatusPosted, item.Status)
	}
	for _, item := range q.Posted {
		assert.False(t, seen[item.ID], "id %s present in both collections", item.ID)
		seen[item.ID] = true
		assert.Equal(t, models.StatusPosted, item.Status)
	}
}

func TestMarkPosted(t *testing.T) {
	q := models.NewQueue()
	AddPending(q, pendingItem("1", "first"))
	AddPending(q, pendingItem("2", "second"))

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, MarkPosted(q, "1", "page_post_99", now))

	assert.Len(t, q.Pending, 1)
	require.Len(t, q.Posted, 1)
	assert.Equal(t, "1", q.Posted[0].ID)
	assert.Equal(t, "page_post_99", q.Posted[0].ExternalPostID)
	require.NotNil(t, q.Posted[0].PostedAt)
	assert.True(t, q.Posted[0].PostedAt.Equal(now))
	require.NotNil(t, q.LastPostTime)
	assert.True(t, q.LastPostTime.Equal(now))
	assert.Equal(t, []string{Hash("first", models.MediaTypeText)}, q.PostedHashes)
	assertPartition(t, q)
}

func TestMarkPostedUnknownID(t *testing.T) {
	q := models.NewQueue()
	assert.Error(t, MarkPosted(q, "ghost", "x", time.Now()))
}

func TestMarkPostedClearsUploadState(t *testing.T) {
	q := models.NewQueue()
	item := pendingItem("1", "video post")
	item.MediaType = models.MediaTypeVideo
	item.UploadSessionID = "sess"
	item.UploadVideoID = "vid"
	item.UploadOffset = 4096
	item.ErrorMessage = "previous attempt failed"
	AddPending(q, item)

	require.NoError(t, MarkPosted(q, "1", "vid", time.Now()))
	assert.Empty(t, q.Posted[0].UploadSessionID)
	assert.Empty(t, q.Posted[0].ErrorMessage)
	assert.Zero(t, q.Posted[0].UploadOffset)
}

func TestPostedHashEviction(t *testing.T) {
	q := models.NewQueue()
	now := time.Now().UTC()

	for i := 0; i < constants.PostedHashCapacity+1; i++ {
		item := pendingItem(fmt.Sprintf("id-%d", i), fmt.Sprintf("post number %d", i))
		AddPending(q, item)
		require.NoError(t, MarkPosted(q, item.ID, fmt.Sprintf("ext-%d", i), now))
	}

	assert.Len(t, q.PostedHashes, constants.PostedHashCapacity)
	// Oldest fingerprint evicted, most recent retained.
	assert.False(t, HasPostedHash(q, Hash("post number 0", models.MediaTypeText)))
	assert.True(t, HasPostedHash(q, Hash("post number 1", models.MediaTypeText)))
	assert.True(t, HasPostedHash(q, Hash(fmt.Sprintf("post number %d", constants.PostedHashCapacity), models.MediaTypeText)))
}

func TestMarkFailedBackoff(t *testing.T) {
	q := models.NewQueue()
	AddPending(q, pendingItem("1", "flaky"))

	next := time.Now().Add(5 * time.Minute)
	require.NoError(t, MarkFailed(q, "1", "graph api error", next, 5))

	item := FindPending(q, "1")
	require.NotNil(t, item)
	assert.Equal(t, models.StatusPending, item.Status)
	assert.Equal(t, 1, item.Attempts)
	assert.Equal(t, "graph api error", item.ErrorMessage)
	require.NotNil(t, item.NextAttemptAt)
	assert.True(t, item.NextAttemptAt.Equal(next))
	assertPartition(t, q)
}

func TestMarkFailedExhaustsAttempts(t *testing.T) {
	q := models.NewQueue()
	AddPending(q, pendingItem("1", "doomed"))

	next := time.Now().Add(time.Minute)
	for i := 0; i < 3; i++ {
		require.NoError(t, MarkFailed(q, "1", "still broken", next, 3))
	}

	item := FindPending(q, "1")
	require.NotNil(t, item)
	assert.Equal(t, models.StatusFailed, item.Status)
	assert.Equal(t, 3, item.Attempts)
	assert.Nil(t, item.NextAttemptAt)

	// Exhausted items are never due again, tag or no tag.
	assert.Empty(t, DueItems(q, time.Now().Add(time.Hour), "#postnow"))
}

func TestDueItems(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	q := models.NewQueue()

	scheduled := pendingItem("due", "scheduled and due")
	scheduled.ScheduledFor = &past
	AddPending(q, scheduled)

	notYet := pendingItem("later", "scheduled later")
	notYet.ScheduledFor = &future
	AddPending(q, notYet)

	unscheduled := pendingItem("unscheduled", "no slot yet")
	AddPending(q, unscheduled)

	forced := pendingItem("forced", "urgent #postnow please")
	forced.ScheduledFor = &future
	AddPending(q, forced)

	backingOff := pendingItem("backoff", "retrying soon")
	backingOff.ScheduledFor = &past
	backingOff.NextAttemptAt = &future
	AddPending(q, backingOff)

	due := DueItems(q, now, "#postnow")
	assert.Equal(t, []string{"due", "forced"}, due)
}

func TestDueItemsExactBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	q := models.NewQueue()
	item := pendingItem("1", "on the dot")
	item.ScheduledFor = &now
	AddPending(q, item)

	// scheduledFor == now counts as due.
	assert.Equal(t, []string{"1"}, DueItems(q, now, ""))
}

func TestCountScheduled(t *testing.T) {
	now := time.Now()
	q := models.NewQueue()
	a := pendingItem("a", "one")
	a.ScheduledFor = &now
	AddPending(q, a)
	AddPending(q, pendingItem("b", "two"))

	assert.Equal(t, 1, CountScheduled(q))
}
