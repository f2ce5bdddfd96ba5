package genstore

import (
	"context"
	"sync"
)

// LocalGenStore keeps epochs in a process-wide map behind a RWMutex.
type LocalGenStore struct {
	mu     sync.RWMutex
	epochs map[string]uint64
}

var _ GenStore = (*LocalGenStore)(nil)

func NewLocalGenStore() *LocalGenStore {
	return &LocalGenStore{epochs: make(map[string]uint64)}
}

func (s *LocalGenStore) Snapshot(_ context.Context, k string) (uint64, error) {
	s.mu.RLock()
	e := s.epochs[k]
	s.mu.RUnlock()
	return e, nil
}

// SnapshotMany takes the read lock once so the returned epochs are mutually
// consistent.
func (s *LocalGenStore) SnapshotMany(_ context.Context, ks []string) (map[string]uint64, error) {
	out := make(map[string]uint64, len(ks))
	s.mu.RLock()
	for _, k := range ks {
		out[k] = s.epochs[k]
	}
	s.mu.RUnlock()
	return out, nil
}

func (s *LocalGenStore) Bump(_ context.Context, k string) (uint64, error) {
	s.mu.Lock()
	s.epochs[k]++
	e := s.epochs[k]
	s.mu.Unlock()
	return e, nil
}

// Len reports how many keys have ever been bumped.
func (s *LocalGenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.epochs)
}

func (s *LocalGenStore) Close(context.Context) error { return nil }
