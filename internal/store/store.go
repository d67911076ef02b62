// Package store keeps the most recent artifact per region in memory.
package store

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/fairyhunter13/price-stock-merger/internal/model"
)

// Sequencer provides monotonically increasing sequence numbers.
type Sequencer struct{ n atomic.Uint64 }

// Next returns the next sequence number.
func (s *Sequencer) Next() uint64 { return s.n.Add(1) }

type Store struct {
	mu sync.RWMutex
	m  map[string]model.Artifact
}

func New() *Store {
	return &Store{m: make(map[string]model.Artifact)}
}

func (s *Store) Get(region string) (model.Artifact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.m[region]
	return a, ok
}

// Put stores a as the region's latest artifact unless an artifact with an equal
// or higher sequence is already held. It reports whether a was stored.
func (s *Store) Put(a model.Artifact) bool {
	if a.Region == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.m[a.Region]; ok && a.Sequence <= cur.Sequence {
		return false
	}
	s.m[a.Region] = a
	return true
}

// Regions lists the regions holding an artifact, sorted.
func (s *Store) Regions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.m))
	for r := range s.m {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
