package models

import "time"

// MediaType identifies what kind of content a queue item carries.
type MediaType string

const (
	MediaTypeText  MediaType = "text"
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// IsValid reports whether the media type is one the pipeline can deliver.
func (m MediaType) IsValid() bool {
	switch m {
	case MediaTypeText, MediaTypeImage, MediaTypeVideo:
		return true
	}
	return false
}

// ItemStatus is the delivery state of a queue item.
type ItemStatus string

const (
	// StatusPending items are awaiting delivery (possibly between retry attempts).
	StatusPending ItemStatus = "pending"
	// StatusPosted items were delivered to the page.
	StatusPosted ItemStatus = "posted"
	// StatusFailed items exhausted their retry budget and are never retried again.
	StatusFailed ItemStatus = "failed"
)

// QueueItem is a unit of content awaiting or having completed delivery.
//
// ContentHash is computed once at ingestion over (text, mediaType) and never
// recomputed. ScheduledFor is nil until the scheduler assigns a slot.
type QueueItem struct {
	ID             string     `json:"id"`
	Source         string     `json:"source"`
	Text           string     `json:"text"`
	MediaType      MediaType  `json:"mediaType"`
	MediaReference string     `json:"mediaReference,omitempty"`
	ContentHash    string     `json:"contentHash"`
	AddedAt        time.Time  `json:"addedAt"`
	ScheduledFor   *time.Time `json:"scheduledFor"`
	Status         ItemStatus `json:"status"`

	PostedAt       *time.Time `json:"postedAt,omitempty"`
	ExternalPostID string     `json:"externalPostId,omitempty"`
	ErrorMessage   string     `json:"errorMessage,omitempty"`

	// Retry bookkeeping: transient failures increment Attempts and push
	// NextAttemptAt out with exponential backoff; once Attempts reaches the
	// configured ceiling the item flips to StatusFailed for good.
	Attempts      int        `json:"attempts,omitempty"`
	NextAttemptAt *time.Time `json:"nextAttemptAt,omitempty"`

	// Resumable video upload state. Populated when a transfer phase dies
	// partway so the next attempt can continue from UploadOffset instead of
	// restarting the session.
	UploadSessionID string `json:"uploadSessionId,omitempty"`
	UploadVideoID   string `json:"uploadVideoId,omitempty"`
	UploadOffset    int64  `json:"uploadOffset,omitempty"`
}

// HasMedia reports whether the item references source-platform media that must
// be fetched before publishing.
func (i *QueueItem) HasMedia() bool {
	return i.MediaType != MediaTypeText && i.MediaReference != ""
}

// Queue is the aggregate root persisted as a single JSON document.
//
// Pending keeps arrival order; scheduling never reorders it. Posted is
// append-only. PostedHashes is a bounded window of content fingerprints used
// for duplicate suppression, oldest evicted first.
type Queue struct {
	Pending      []QueueItem `json:"pending"`
	Posted       []QueueItem `json:"posted"`
	LastPostTime *time.Time  `json:"lastPostTime"`
	PostedHashes []string    `json:"postedHashes"`
}

// NewQueue returns an empty queue with non-nil collections so the persisted
// document always carries the pending/posted/postedHashes keys.
func NewQueue() *Queue {
	return &Queue{
		Pending:      []QueueItem{},
		Posted:       []QueueItem{},
		PostedHashes: []string{},
	}
}

// IngestRequest is the payload handed to the ingestion entrypoint by the
// source-platform adapters.
type IngestRequest struct {
	Source         string    `json:"source"`
	Text           string    `json:"text"`
	MediaType      MediaType `json:"mediaType"`
	MediaReference string    `json:"mediaReference,omitempty"`
}

// IngestResult reports the outcome of an ingestion attempt.
type IngestResult struct {
	Success bool       `json:"success"`
	Item    *QueueItem `json:"item,omitempty"`
	Errors  []string   `json:"errors,omitempty"`
	Reason  string     `json:"reason,omitempty"`
}

// Status is the read-only health surface: current persisted counts plus
// config posture, computed fresh on every call.
type Status struct {
	PendingCount   int  `json:"pendingCount"`
	ScheduledCount int  `json:"scheduledCount"`
	PostedCount    int  `json:"postedCount"`
	DryRun         bool `json:"dryRun"`
	ConfigValid    bool `json:"configValid"`
}
