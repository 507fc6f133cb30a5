package service

import (
	"context"
	"time"

	"telebook/internal/errors"
	"telebook/internal/metrics"
	"telebook/internal/models"
	"telebook/internal/queue"
	"telebook/internal/retry"
	"telebook/internal/scheduler"
	"telebook/internal/tracing"
	"telebook/pkg/facebook"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Processor drives delivery passes over the durable queue: selecting due
// items, publishing them through the pipeline, and reconciling every outcome
// back into the store in a single persisted write per pass.
type Processor struct {
	manager    *queue.Manager
	pipeline   *Pipeline
	scheduler  *scheduler.Scheduler
	policy     retry.Policy
	postNowTag string
	registry   *metrics.Registry
	logger     *logrus.Logger
	now        func() time.Time
}

func NewProcessor(
	manager *queue.Manager,
	pipeline *Pipeline,
	sched *scheduler.Scheduler,
	policy retry.Policy,
	postNowTag string,
	registry *metrics.Registry,
	logger *logrus.Logger,
) *Processor {
	return &Processor{
		manager:    manager,
		pipeline:   pipeline,
		scheduler:  sched,
		policy:     policy,
		postNowTag: postNowTag,
		registry:   registry,
		logger:     logger,
		now:        time.Now,
	}
}

// deliveryOutcome records what happened to one item during a pass so all
// queue mutations can be applied together at the end.
type deliveryOutcome struct {
	itemID      string
	mediaType   models.MediaType
	postID      string
	uploadState *facebook.VideoUploadState
	postedAt    time.Time
	err         error
}

// Run executes one delivery pass. Deliveries happen outside the queue lock
// against a snapshot; the reconciliation at the end re-reads the persisted
// queue, so items ingested mid-pass are never lost. Rate-limited and
// unconfigured skips leave items untouched, without charging a retry attempt.
func (p *Processor) Run(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "process.run")
	defer span.End()

	snapshot := p.manager.Snapshot()
	now := p.now().UTC()
	due := queue.DueItems(snapshot, now, p.postNowTag)

	p.registry.SetGauge(metrics.QueuePendingDepth, float64(len(snapshot.Pending)), nil)
	tracing.AddSpanAttributes(ctx, attribute.Int("dueCount", len(due)))

	if len(due) == 0 {
		return nil
	}

	p.logger.WithField("dueCount", len(due)).Info("Starting delivery pass")

	lastPost := snapshot.LastPostTime
	var outcomes []deliveryOutcome

	for _, id := range due {
		item := queue.FindPending(snapshot, id)
		if item == nil {
			continue
		}

		outcome, stop := p.deliverOne(ctx, item, lastPost)
		if stop {
			break
		}
		if outcome == nil {
			continue
		}

		outcomes = append(outcomes, *outcome)
		if outcome.err == nil {
			t := outcome.postedAt
			lastPost = &t
		}
	}

	if len(outcomes) == 0 {
		return nil
	}
	return p.reconcile(outcomes)
}

// deliverOne runs the pipeline for a single item. A nil outcome with
// stop=true ends the pass (the gate blocking this item blocks every later
// one too); nil with stop=false skips just this item.
func (p *Processor) deliverOne(ctx context.Context, item *models.QueueItem, lastPost *time.Time) (*deliveryOutcome, bool) {
	ctx, span := tracing.StartSpan(ctx, "process.deliver",
		attribute.String("itemId", item.ID),
		attribute.String("mediaType", string(item.MediaType)),
	)
	defer span.End()

	start := p.now()
	postID, state, err := p.pipeline.Deliver(ctx, item, lastPost)
	p.registry.RecordTimer(metrics.DeliveryDuration, p.now().Sub(start), nil)

	if err != nil {
		switch errors.GetCode(err) {
		case errors.ErrCodeRateLimit:
			p.registry.IncrementCounter(metrics.ItemsRateLimited, nil)
			p.logger.WithField("itemId", item.ID).Debug("Delivery pass paused by minimum post interval")
			return nil, true
		case errors.ErrCodeMissingConfig:
			p.logger.Warn("Skipping delivery pass: page credentials are not configured")
			return nil, true
		}

		tracing.RecordError(ctx, err)
		p.registry.IncrementCounter(metrics.ItemsFailed, map[string]string{"mediaType": string(item.MediaType)})
		p.logger.WithError(err).WithFields(logrus.Fields{
			"itemId":  item.ID,
			"attempt": item.Attempts + 1,
		}).Error("Delivery attempt failed")

		return &deliveryOutcome{
			itemID:      item.ID,
			mediaType:   item.MediaType,
			uploadState: state,
			err:         err,
		}, false
	}

	if p.pipeline.dryRun {
		p.registry.IncrementCounter(metrics.ItemsDryRun, nil)
	} else {
		p.registry.IncrementCounter(metrics.ItemsDelivered, map[string]string{"mediaType": string(item.MediaType)})
	}
	p.logger.WithFields(logrus.Fields{
		"itemId": item.ID,
		"postId": postID,
	}).Info("Delivered item")

	return &deliveryOutcome{
		itemID:    item.ID,
		mediaType: item.MediaType,
		postID:    postID,
		postedAt:  p.now().UTC(),
	}, false
}

// reconcile applies every outcome of a pass to the persisted queue in one
// load-mutate-save cycle.
func (p *Processor) reconcile(outcomes []deliveryOutcome) error {
	return p.manager.Update(func(q *models.Queue) error {
		for _, oc := range outcomes {
			if oc.err == nil {
				if err := queue.MarkPosted(q, oc.itemID, oc.postID, oc.postedAt); err != nil {
					p.logger.WithError(err).WithField("itemId", oc.itemID).Warn("Delivered item vanished before reconciliation")
				}
				continue
			}

			item := queue.FindPending(q, oc.itemID)
			if item == nil {
				p.logger.WithField("itemId", oc.itemID).Warn("Failed item vanished before reconciliation")
				continue
			}
			if oc.uploadState != nil {
				item.UploadSessionID = oc.uploadState.SessionID
				item.UploadVideoID = oc.uploadState.VideoID
				item.UploadOffset = oc.uploadState.Offset
			}

			next := p.policy.NextAttemptAt(p.now().UTC(), item.Attempts+1)
			if err := queue.MarkFailed(q, oc.itemID, oc.err.Error(), next, p.policy.MaxAttempts); err != nil {
				p.logger.WithError(err).WithField("itemId", oc.itemID).Warn("Could not record failed attempt")
				continue
			}
			if item.Status == models.StatusFailed {
				p.logger.WithFields(logrus.Fields{
					"itemId":   oc.itemID,
					"attempts": item.Attempts,
				}).Error("Item exhausted its retry budget")
			}
		}
		return nil
	})
}

// Assign runs one scheduling pass, giving unscheduled pending items concrete
// posting slots.
func (p *Processor) Assign(ctx context.Context) (int, error) {
	_, span := tracing.StartSpan(ctx, "schedule.assign")
	defer span.End()

	assigned := 0
	err := p.manager.Update(func(q *models.Queue) error {
		assigned = p.scheduler.AssignSlots(q, p.now())
		return nil
	})
	if err != nil {
		return 0, err
	}

	if assigned > 0 {
		p.registry.AddToCounter(metrics.SlotsAssigned, float64(assigned), nil)
	}
	return assigned, nil
}
