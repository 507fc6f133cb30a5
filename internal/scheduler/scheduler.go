package scheduler

import (
	"fmt"
	"time"

	"telebook/internal/config"
	"telebook/internal/models"

	"github.com/sirupsen/logrus"
)

// Scheduler assigns future delivery slots to unscheduled pending items,
// following the configured daily cadence and fixed time-of-day slots in the
// configured timezone.
type Scheduler struct {
	postsPerDay int
	postTimes   []string
	location    *time.Location
	logger      *logrus.Logger
}

func New(cfg models.ScheduleConfig, logger *logrus.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	for _, slot := range cfg.PostTimes {
		if _, _, err := config.ParseSlot(slot); err != nil {
			return nil, fmt.Errorf("invalid post time %q: %w", slot, err)
		}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		postsPerDay: cfg.PostsPerDay,
		postTimes:   cfg.PostTimes,
		location:    loc,
		logger:      logger,
	}, nil
}

// AssignSlots gives delivery timestamps to at most postsPerDay unscheduled
// pending items, in arrival order. Items scheduled within the same pass are
// staggered: each gets the next slot strictly after the one assigned before
// it, so a burst of ingested items spreads over successive slots instead of
// piling onto one.
func (s *Scheduler) AssignSlots(q *models.Queue, now time.Time) int {
	assigned := 0
	cursor := now

	for i := range q.Pending {
		if assigned >= s.postsPerDay {
			break
		}
		item := &q.Pending[i]
		if item.ScheduledFor != nil || item.Status != models.StatusPending {
			continue
		}

		slot := s.NextSlot(cursor)
		item.ScheduledFor = &slot
		cursor = slot
		assigned++

		s.logger.WithFields(logrus.Fields{
			"itemId":       item.ID,
			"scheduledFor": slot.Format(time.RFC3339),
		}).Info("Assigned delivery slot")
	}

	return assigned
}

// NextSlot returns the first configured time-of-day slot strictly later than
// the given instant, projected into the scheduler's timezone. When every slot
// for that day has passed, it wraps to the first configured slot tomorrow.
func (s *Scheduler) NextSlot(after time.Time) time.Time {
	local := after.In(s.location)

	for _, slot := range s.postTimes {
		hour, minute, _ := config.ParseSlot(slot)
		candidate := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, s.location)
		if candidate.After(local) {
			return candidate
		}
	}

	hour, minute, _ := config.ParseSlot(s.postTimes[0])
	tomorrow := local.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), hour, minute, 0, 0, s.location)
}
