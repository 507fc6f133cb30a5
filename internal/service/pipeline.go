package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"telebook/internal/constants"
	"telebook/internal/errors"
	"telebook/internal/models"
	"telebook/pkg/facebook"

	"github.com/sirupsen/logrus"
)

// MediaFetcher retrieves source-platform media into local scratch storage.
type MediaFetcher interface {
	Fetch(ctx context.Context, fileID string) (string, error)
	Cleanup(path string) error
}

// Pipeline publishes a single queue item to the page. It owns the dry-run
// short circuit, the credential gate, the minimum-interval rate gate and
// media staging; the caller owns queue bookkeeping.
type Pipeline struct {
	publisher   facebook.Client
	fetcher     MediaFetcher
	dryRun      bool
	configured  bool
	minInterval time.Duration
	logger      *logrus.Logger
	now         func() time.Time
}

type PipelineConfig struct {
	DryRun      bool
	Configured  bool
	MinInterval time.Duration
}

func NewPipeline(publisher facebook.Client, fetcher MediaFetcher, cfg PipelineConfig, logger *logrus.Logger) *Pipeline {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = constants.MinPostIntervalSec * time.Second
	}
	return &Pipeline{
		publisher:   publisher,
		fetcher:     fetcher,
		dryRun:      cfg.DryRun,
		configured:  cfg.Configured,
		minInterval: cfg.MinInterval,
		logger:      logger,
		now:         time.Now,
	}
}

// Deliver publishes one item and returns the external post id. A RATE_LIMIT
// or MISSING_CONFIG error means the item was not attempted at all; the caller
// must not charge a retry attempt for those. For videos, a non-nil upload
// state alongside the error carries resumable session progress that must be
// persisted on the item.
func (p *Pipeline) Deliver(ctx context.Context, item *models.QueueItem, lastPostTime *time.Time) (string, *facebook.VideoUploadState, error) {
	if p.dryRun {
		p.logger.WithFields(logrus.Fields{
			"itemId":    item.ID,
			"mediaType": item.MediaType,
		}).Info("Dry run: skipping network delivery")
		return constants.DryRunIDPrefix + item.ID, nil, nil
	}

	if !p.configured {
		return "", nil, errors.New(errors.ErrCodeMissingConfig, "page credentials are not configured")
	}

	if lastPostTime != nil {
		elapsed := p.now().Sub(*lastPostTime)
		if elapsed < p.minInterval {
			return "", nil, errors.New(errors.ErrCodeRateLimit,
				fmt.Sprintf("last post was %s ago, minimum interval is %s", elapsed.Round(time.Second), p.minInterval))
		}
	}

	// A media reference that is already a public URL skips local staging:
	// the Graph API fetches it server side.
	if item.MediaType == models.MediaTypeImage && isURL(item.MediaReference) {
		postID, err := p.publisher.PostPhotoURL(ctx, item.MediaReference, item.Text)
		if err != nil {
			return "", nil, errors.WrapRetryable(err, errors.ErrCodeFacebookAPI, "failed to publish photo post")
		}
		return postID, nil, nil
	}

	var localPath string
	if item.HasMedia() {
		path, err := p.fetcher.Fetch(ctx, item.MediaReference)
		if err != nil {
			return "", nil, err
		}
		localPath = path
		defer func() {
			if cleanupErr := p.fetcher.Cleanup(localPath); cleanupErr != nil {
				p.logger.WithError(cleanupErr).WithField("path", localPath).Warn("Failed to clean up scratch media")
			}
		}()
	}

	switch item.MediaType {
	case models.MediaTypeText:
		postID, err := p.publisher.PostText(ctx, item.Text)
		if err != nil {
			return "", nil, errors.WrapRetryable(err, errors.ErrCodeFacebookAPI, "failed to publish text post")
		}
		return postID, nil, nil

	case models.MediaTypeImage:
		postID, err := p.publisher.PostPhotoFile(ctx, localPath, item.Text)
		if err != nil {
			return "", nil, errors.WrapRetryable(err, errors.ErrCodeFacebookAPI, "failed to publish photo post")
		}
		return postID, nil, nil

	case models.MediaTypeVideo:
		videoID, state, err := p.publisher.UploadVideo(ctx, localPath, item.Text, resumeState(item))
		if err != nil {
			return "", state, errors.WrapRetryable(err, errors.ErrCodeFacebookAPI, "failed to publish video post")
		}
		return videoID, nil, nil

	default:
		return "", nil, errors.New(errors.ErrCodeValidationFailed,
			fmt.Sprintf("cannot deliver media type %q", item.MediaType))
	}
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// resumeState rebuilds upload session progress persisted on the item, nil
// when no partial upload is recorded.
func resumeState(item *models.QueueItem) *facebook.VideoUploadState {
	if item.UploadSessionID == "" {
		return nil
	}
	return &facebook.VideoUploadState{
		SessionID: item.UploadSessionID,
		VideoID:   item.UploadVideoID,
		Offset:    item.UploadOffset,
	}
}
