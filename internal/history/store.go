// Package history keeps the persisted, newest-first list of stroke records and
// derives statistics from it.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/puttlink/internal/kv"
)

// DefaultKey is the storage key holding the serialized history.
const DefaultKey = "puttHistory"

// Store is the in-memory history mirrored to a kv.Blob under one key.
type Store struct {
	mu      sync.RWMutex
	records []Record // newest first

	backend kv.Blob
	key     string
	ids     *idSource
	now     func() time.Time
	logger  *logrus.Logger
}

// Open loads the history once from backend. A missing key is an empty history;
// an unreadable or corrupt value is logged and also treated as empty.
func Open(ctx context.Context, backend kv.Blob, key string, logger *logrus.Logger) (*Store, error) {
	if backend == nil {
		return nil, errors.New("history: nil backend")
	}
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = logrus.New()
	}

	s := &Store{
		backend: backend,
		key:     key,
		ids:     newIDSource(time.Now()),
		now:     time.Now,
		logger:  logger,
	}

	data, err := backend.Get(ctx, key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return s, nil
	case err != nil:
		logger.WithError(err).WithField("key", key).Warn("Failed to load history, starting empty")
		return s, nil
	}

	var loaded []Record
	if err := json.Unmarshal(data, &loaded); err != nil {
		logger.WithError(err).WithField("key", key).Warn("Corrupt history blob, starting empty")
		return s, nil
	}
	s.records = loaded

	logger.WithFields(logrus.Fields{
		"key":     key,
		"records": len(loaded),
	}).Debug("Loaded history")
	return s, nil
}

// Append stores a new record in front of the history and persists the whole
// sequence. ID is always assigned here; a zero RecordedAt becomes now. A
// RecordedAt outside the ULID range is kept as given, with the id minted from
// now. On a persist failure the record stays in memory and the error is returned.
func (s *Store) Append(ctx context.Context, label string, confidence float64, recordedAt time.Time) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if recordedAt.IsZero() {
		recordedAt = now
	}
	id, err := s.ids.next(recordedAt, now)
	if err != nil {
		return Record{}, err
	}
	rec := Record{
		ID:         id,
		Label:      label,
		Confidence: confidence,
		RecordedAt: recordedAt,
	}

	s.records = append([]Record{rec}, s.records...)

	s.logger.WithFields(logrus.Fields{
		"id":         rec.ID,
		"label":      rec.Label,
		"confidence": rec.Confidence,
	}).Debug("Appended history record")

	if err := s.persistLocked(ctx); err != nil {
		return rec, err
	}
	return rec, nil
}

// ClearAll empties the history. Memory is cleared before the backend delete,
// so the store is empty even when the returned error is non-nil.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	if err := s.backend.Delete(ctx, s.key); err != nil {
		s.logger.WithError(err).WithField("key", s.key).Warn("Failed to delete persisted history")
		return fmt.Errorf("clear history: %w", err)
	}
	s.logger.WithField("key", s.key).Debug("Cleared history")
	return nil
}

// Recent returns a copy of the newest n records (all when n exceeds the size).
func (s *Store) Recent(n int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return []Record{}
	}
	if n > len(s.records) {
		n = len(s.records)
	}
	out := make([]Record, n)
	copy(out, s.records[:n])
	return out
}

// All returns a copy of every record, newest first.
func (s *Store) All() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record{}, s.records...)
}

func (s *Store) persistLocked(ctx context.Context) error {
	records := s.records
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.backend.Put(ctx, s.key, data); err != nil {
		s.logger.WithError(err).WithField("key", s.key).Warn("Failed to persist history")
		return fmt.Errorf("persist history: %w", err)
	}
	return nil
}
