package storage

import (
	"context"
	"log/slog"
	"sync"
)

// Backend persists the full dedup state.
type Backend interface {
	// Read returns the stored state, or an empty state when nothing has been
	// stored yet. An error means the stored record could not be read.
	Read(ctx context.Context) (*State, error)
	Write(ctx context.Context, s *State) error
	Close() error
}

// Store applies the load/save policy over a Backend: loading never fails and
// save failures are logged, not returned.
type Store struct {
	backend Backend

	mu     sync.RWMutex
	counts map[string]int
}

func NewStore(b Backend) *Store {
	return &Store{backend: b, counts: map[string]int{}}
}

// Load returns the stored state, or an empty one when the record is missing
// or unreadable. A broken record is discarded, not repaired.
func (s *Store) Load(ctx context.Context) *State {
	st, err := s.backend.Read(ctx)
	if err != nil {
		slog.Error("Failed to read state, starting fresh", "error", err)
		st = NewState()
	}
	if st == nil {
		st = NewState()
	}
	st.normalize()
	s.setCounts(st)
	return st
}

// Save writes st. It reports whether the write succeeded.
func (s *Store) Save(ctx context.Context, st *State) bool {
	if err := s.backend.Write(ctx, st); err != nil {
		slog.Error("Failed to save state", "error", err)
		return false
	}
	s.setCounts(st)
	return true
}

// Counts returns the per-feed number of links as of the last load or save.
func (s *Store) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) setCounts(st *State) {
	counts := st.Counts()
	s.mu.Lock()
	s.counts = counts
	s.mu.Unlock()
}
