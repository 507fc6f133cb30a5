package service

import (
	"telebook/internal/config"
	"telebook/internal/models"
	"telebook/internal/queue"
)

// StatusReporter computes the live health surface from the persisted queue
// and the running configuration.
type StatusReporter struct {
	manager *queue.Manager
	cfg     *models.Config
}

func NewStatusReporter(manager *queue.Manager, cfg *models.Config) *StatusReporter {
	return &StatusReporter{manager: manager, cfg: cfg}
}

// Current loads a fresh snapshot and summarizes it. ConfigValid reflects
// whether deliveries can actually reach the page: real credentials, or dry
// run where none are needed.
func (s *StatusReporter) Current() models.Status {
	q := s.manager.Snapshot()

	return models.Status{
		PendingCount:   len(q.Pending),
		ScheduledCount: queue.CountScheduled(q),
		PostedCount:    len(q.Posted),
		DryRun:         s.cfg.DryRun,
		ConfigValid:    s.cfg.DryRun || config.IsFacebookConfigured(s.cfg),
	}
}
