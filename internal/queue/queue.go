package queue

import (
	"fmt"
	"strings"
	"time"

	"telebook/internal/constants"
	"telebook/internal/models"
)

// AddPending appends a freshly ingested item to the pending collection,
// preserving arrival order.
func AddPending(q *models.Queue, item models.QueueItem) {
	q.Pending = append(q.Pending, item)
}

// HasPostedHash reports whether the fingerprint is in the posted-hash window.
// Only hashes of items that actually reached the page are tracked, so an
// identical item still sitting in pending is not detected here.
func HasPostedHash(q *models.Queue, hash string) bool {
	for _, h := range q.PostedHashes {
		if h == hash {
			return true
		}
	}
	return false
}

// MarkPosted moves a pending item to the posted collection, records the
// external post id and timestamp, appends its fingerprint (evicting the
// oldest once the window is full) and advances the rate-limit clock.
func MarkPosted(q *models.Queue, id, externalPostID string, now time.Time) error {
	idx := findPending(q, id)
	if idx < 0 {
		return fmt.Errorf("item %s not found in pending", id)
	}

	item := q.Pending[idx]
	item.Status = models.StatusPosted
	item.PostedAt = &now
	item.ExternalPostID = externalPostID
	item.ErrorMessage = ""
	item.NextAttemptAt = nil
	item.UploadSessionID = ""
	item.UploadVideoID = ""
	item.UploadOffset = 0

	q.Pending = append(q.Pending[:idx], q.Pending[idx+1:]...)
	q.Posted = append(q.Posted, item)

	q.PostedHashes = append(q.PostedHashes, item.ContentHash)
	if len(q.PostedHashes) > constants.PostedHashCapacity {
		q.PostedHashes = q.PostedHashes[len(q.PostedHashes)-constants.PostedHashCapacity:]
	}

	q.LastPostTime = &now
	return nil
}

// MarkFailed records a failed delivery attempt in place. The item stays in
// pending with an incremented attempt counter and a backoff-delayed next
// attempt; once maxAttempts is reached it flips to StatusFailed and is never
// selected as due again.
func MarkFailed(q *models.Queue, id, errMsg string, nextAttempt time.Time, maxAttempts int) error {
	idx := findPending(q, id)
	if idx < 0 {
		return fmt.Errorf("item %s not found in pending", id)
	}

	item := &q.Pending[idx]
	item.Attempts++
	item.ErrorMessage = errMsg
	if item.Attempts >= maxAttempts {
		item.Status = models.StatusFailed
		item.NextAttemptAt = nil
	} else {
		t := nextAttempt
		item.NextAttemptAt = &t
	}
	return nil
}

// DueItems returns ids of pending items ready for delivery, in arrival order.
// An item is due when its scheduled time has arrived, or when its text carries
// the immediate-post tag (independent of schedule). Items waiting out a retry
// backoff or exhausted (StatusFailed) are skipped.
func DueItems(q *models.Queue, now time.Time, postNowTag string) []string {
	var due []string
	for _, item := range q.Pending {
		if item.Status == models.StatusFailed {
			continue
		}
		if item.NextAttemptAt != nil && item.NextAttemptAt.After(now) {
			continue
		}

		forced := postNowTag != "" && strings.Contains(item.Text, postNowTag)
		scheduled := item.ScheduledFor != nil && !item.ScheduledFor.After(now)
		if forced || scheduled {
			due = append(due, item.ID)
		}
	}
	return due
}

// FindPending returns the pending item with the given id, or nil.
func FindPending(q *models.Queue, id string) *models.QueueItem {
	idx := findPending(q, id)
	if idx < 0 {
		return nil
	}
	return &q.Pending[idx]
}

func findPending(q *models.Queue, id string) int {
	for i := range q.Pending {
		if q.Pending[i].ID == id {
			return i
		}
	}
	return -1
}

// CountScheduled returns how many pending items have a slot assigned.
func CountScheduled(q *models.Queue) int {
	n := 0
	for _, item := range q.Pending {
		if item.ScheduledFor != nil {
			n++
		}
	}
	return n
}
