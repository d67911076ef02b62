package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/price-stock-merger/internal/model"
)

func TestStorePutGet(t *testing.T) {
	s := New()
	_, ok := s.Get("UK")
	assert.False(t, ok)

	require.True(t, s.Put(model.Artifact{ID: "a1", Region: "UK", Sequence: 1, CSV: []byte("x\n")}))
	got, ok := s.Get("UK")
	require.True(t, ok)
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, []string{"UK"}, s.Regions())
}

func TestStoreLastSequenceWins(t *testing.T) {
	s := New()
	s.Put(model.Artifact{ID: "new", Region: "EU", Sequence: 2})
	assert.False(t, s.Put(model.Artifact{ID: "old", Region: "EU", Sequence: 1}))
	assert.False(t, s.Put(model.Artifact{ID: "dup", Region: "EU", Sequence: 2}))
	got, _ := s.Get("EU")
	assert.Equal(t, "new", got.ID)
}

func TestStoreIgnoresUnnamedRegion(t *testing.T) {
	s := New()
	assert.False(t, s.Put(model.Artifact{ID: "x", Sequence: 1}))
	assert.Empty(t, s.Regions())
}

func TestStoreConcurrentPuts(t *testing.T) {
	s := New()
	var seq Sequencer
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Put(model.Artifact{Region: "UK", Sequence: seq.Next()})
		}()
	}
	wg.Wait()
	got, ok := s.Get("UK")
	require.True(t, ok)
	assert.EqualValues(t, 100, got.Sequence)
}

func TestSequencerMonotonic(t *testing.T) {
	var seq Sequencer
	prev := uint64(0)
	for i := 0; i < 10; i++ {
		n := seq.Next()
		assert.Greater(t, n, prev)
		prev = n
	}
}
