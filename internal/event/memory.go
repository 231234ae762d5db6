package event

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu      sync.RWMutex
	streams map[string][]Event
}

// NewMemoryStore creates a concurrency-safe in-memory event log, used in
// development mode and unit tests.
func NewMemoryStore() Store {
	return &memoryStore{streams: make(map[string][]Event)}
}

func (s *memoryStore) Append(_ context.Context, aggregateKind, aggregateID string, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stream := s.streams[aggregateID]
	head := int64(len(stream))
	now := time.Now().UTC()

	for i, e := range events {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.RecordedAt.IsZero() {
			e.RecordedAt = now
		}
		e.AggregateKind = aggregateKind
		e.AggregateID = aggregateID
		e.Version = head + int64(i) + 1
		stream = append(stream, e)
	}
	s.streams[aggregateID] = stream
	return nil
}

func (s *memoryStore) Read(_ context.Context, aggregateID string, fromVersion int64) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, e := range s.streams[aggregateID] {
		if e.Version > fromVersion {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memoryStore) ReadByCorrelation(_ context.Context, correlationID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, stream := range s.streams {
		for _, e := range stream {
			if e.CorrelationID == correlationID {
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RecordedAt.Equal(out[j].RecordedAt) {
			return out[i].RecordedAt.Before(out[j].RecordedAt)
		}
		return out[i].Version < out[j].Version
	})
	return out, nil
}
