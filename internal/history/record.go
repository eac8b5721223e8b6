package history

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Record is one saved stroke classification. Records are immutable once stored.
type Record struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	RecordedAt time.Time `json:"timestamp"`
}

// idSource hands out lexically sortable ids. Not safe for concurrent use; the
// store calls it under its write lock.
type idSource struct {
	entropy *ulid.MonotonicEntropy
}

func newIDSource(t time.Time) *idSource {
	return &idSource{entropy: ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)}
}

// next returns an id for t. Times a ULID cannot encode (before the Unix epoch
// or past year 10889) take their id time from fallback instead.
func (s *idSource) next(t, fallback time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(t), s.entropy)
	if errors.Is(err, ulid.ErrBigTime) {
		id, err = ulid.New(ulid.Timestamp(fallback), s.entropy)
	}
	if err != nil {
		return "", fmt.Errorf("generate record id: %w", err)
	}
	return id.String(), nil
}
