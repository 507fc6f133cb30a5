package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"telebook/internal/errors"
	"telebook/internal/models"

	"github.com/sirupsen/logrus"
)

// FileStore persists the whole queue document as pretty-printed JSON. It is
// the single source of truth: every operation loads the full structure,
// mutates in memory and writes the full structure back.
type FileStore struct {
	path   string
	logger *logrus.Logger
}

func NewFileStore(path string, logger *logrus.Logger) *FileStore {
	if logger == nil {
		logger = logrus.New()
	}
	return &FileStore{path: path, logger: logger}
}

// Load reads the persisted queue. A missing file yields a fresh empty queue;
// so does an unreadable or corrupt one — data loss is favored over crashing,
// the incident is logged. A document predating the postedHashes field loads
// with an empty window.
func (s *FileStore) Load() *models.Queue {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).WithField("path", s.path).Error("Failed to read queue store, starting empty")
		}
		return models.NewQueue()
	}

	var q models.Queue
	if err := json.Unmarshal(data, &q); err != nil {
		s.logger.WithError(err).WithField("path", s.path).Error("Failed to parse queue store, starting empty")
		return models.NewQueue()
	}

	if q.Pending == nil {
		q.Pending = []models.QueueItem{}
	}
	if q.Posted == nil {
		q.Posted = []models.QueueItem{}
	}
	if q.PostedHashes == nil {
		q.PostedHashes = []string{}
	}

	return &q
}

// Save atomically overwrites the persisted document (write to a temp file in
// the same directory, then rename). Unlike Load it fails loudly: the caller
// must not assume the write succeeded.
func (s *FileStore) Save(q *models.Queue) error {
	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePersistenceFailed, "failed to encode queue")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return errors.Wrap(err, errors.ErrCodePersistenceFailed, "failed to create queue directory")
	}

	tmp, err := os.CreateTemp(dir, ".queue-*.json")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePersistenceFailed, "failed to create temp file")
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, errors.ErrCodePersistenceFailed, "failed to write queue")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, errors.ErrCodePersistenceFailed, "failed to flush queue")
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, errors.ErrCodePersistenceFailed, fmt.Sprintf("failed to replace %s", s.path))
	}

	return nil
}
