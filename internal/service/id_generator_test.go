package service

import (
	"strings"
	"sync"
	"testing"

	"scms_backend/internal/util"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDGenerator(t *testing.T) {
	g := NewSequentialIDGenerator()

	assert.Equal(t, "COMP-001", g.NextID())
	assert.Equal(t, "COMP-002", g.NextID())

	g.Observe("COMP-010")
	assert.Equal(t, "COMP-011", g.NextID())

	g.Observe("COMP-004")
	g.Observe("not-an-id")
	g.Observe("COMP-abc")
	assert.Equal(t, "COMP-012", g.NextID())
}

func TestSequentialIDGeneratorWidth(t *testing.T) {
	g := NewSequentialIDGenerator()
	g.Observe("COMP-999")
	assert.Equal(t, "COMP-1000", g.NextID())
}

func TestSequentialIDGeneratorConcurrent(t *testing.T) {
	g := NewSequentialIDGenerator()

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.NextID()
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}

func TestParseComplaintSequence(t *testing.T) {
	n, ok := ParseComplaintSequence("COMP-042")
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	for _, id := range []string{"COMP-000", "COMP--3", "comp-001", "", "COMP-"} {
		_, ok := ParseComplaintSequence(id)
		assert.False(t, ok, id)
	}
}

func TestUUIDGenerator(t *testing.T) {
	g := NewIDGenerator(util.IDStrategyUUID)

	a, b := g.NextID(), g.NextID()
	assert.True(t, strings.HasPrefix(a, util.ComplaintIDPrefix))
	assert.NotEqual(t, a, b)

	assert.IsType(t, &SequentialIDGenerator{}, NewIDGenerator(util.IDStrategySequential))
}
