package queue

import (
	"sync"

	"telebook/internal/models"
)

// Manager serializes access to the durable queue. All mutations go through
// Update, which performs a load-mutate-save cycle under a single lock, so
// ingestion, scheduling and processing can never lose each other's writes
// within this process. Multi-process access remains an operating constraint,
// not something the store solves.
type Manager struct {
	mu    sync.Mutex
	store *FileStore
}

func NewManager(store *FileStore) *Manager {
	return &Manager{store: store}
}

// Update loads the queue, applies fn and persists the result. If fn returns
// an error the queue is not saved and the error is passed through.
func (m *Manager) Update(fn func(q *models.Queue) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.store.Load()
	if err := fn(q); err != nil {
		return err
	}
	return m.store.Save(q)
}

// Snapshot returns a freshly loaded copy of the persisted queue for read-only
// use. Mutating the returned value has no effect on the store.
func (m *Manager) Snapshot() *models.Queue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Load()
}
