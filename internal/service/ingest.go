package service

import (
	"context"
	"time"

	"telebook/internal/metrics"
	"telebook/internal/models"
	"telebook/internal/queue"
	"telebook/internal/tracing"
	"telebook/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// ReasonValidation marks items rejected before touching the queue.
	ReasonValidation = "validation"
	// ReasonDuplicate marks items whose fingerprint matches an already
	// published post.
	ReasonDuplicate = "duplicate"
)

// Ingestor admits source-platform content into the durable queue. Rejections
// (validation, duplicate) are reported through the result, not the error; the
// error is reserved for persistence failures.
type Ingestor struct {
	manager  *queue.Manager
	registry *metrics.Registry
	logger   *logrus.Logger
	now      func() time.Time
}

func NewIngestor(manager *queue.Manager, registry *metrics.Registry, logger *logrus.Logger) *Ingestor {
	return &Ingestor{
		manager:  manager,
		registry: registry,
		logger:   logger,
		now:      time.Now,
	}
}

// AddToQueue validates the request, fingerprints it, suppresses content
// already published, and persists the new item at the tail of pending.
// Duplicate detection consults only the published-hash window: an identical
// item still waiting in pending is admitted and will be caught here once the
// first copy posts.
func (s *Ingestor) AddToQueue(ctx context.Context, req *models.IngestRequest) (*models.IngestResult, error) {
	ctx, span := tracing.StartSpan(ctx, "ingest.add_to_queue")
	defer span.End()

	if err := validation.ValidateIngest(req); err != nil {
		s.logger.WithError(err).Warn("Rejected ingest request")
		return &models.IngestResult{
			Success: false,
			Errors:  []string{err.Error()},
			Reason:  ReasonValidation,
		}, nil
	}

	hash := queue.Hash(req.Text, req.MediaType)
	tracing.AddSpanAttributes(ctx,
		attribute.String("contentHash", hash),
		attribute.String("mediaType", string(req.MediaType)),
	)

	item := models.QueueItem{
		ID:             uuid.New().String(),
		Source:         req.Source,
		Text:           req.Text,
		MediaType:      req.MediaType,
		MediaReference: req.MediaReference,
		ContentHash:    hash,
		AddedAt:        s.now().UTC(),
		Status:         models.StatusPending,
	}

	duplicate := false
	err := s.manager.Update(func(q *models.Queue) error {
		if queue.HasPostedHash(q, hash) {
			duplicate = true
			return nil
		}
		queue.AddPending(q, item)
		return nil
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	if duplicate {
		s.registry.IncrementCounter(metrics.ItemsDuplicate, nil)
		s.logger.WithFields(logrus.Fields{
			"contentHash": hash,
			"mediaType":   req.MediaType,
		}).Info("Suppressed duplicate of already published content")
		return &models.IngestResult{
			Success: false,
			Reason:  ReasonDuplicate,
		}, nil
	}

	s.registry.IncrementCounter(metrics.ItemsIngested, nil)
	s.logger.WithFields(logrus.Fields{
		"itemId":      item.ID,
		"source":      item.Source,
		"mediaType":   item.MediaType,
		"contentHash": hash,
	}).Info("Queued item for publishing")

	return &models.IngestResult{
		Success: true,
		Item:    &item,
	}, nil
}
