package mocks

import (
	"sync"

	"github.com/mcoot/gameofchests/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing
type MockRandom struct {
	mu      sync.Mutex
	results []int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result reduced into [0, n), or 0 if none remain
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.results) == 0 || n <= 0 {
		return 0
	}
	result := r.results[0]
	r.results = r.results[1:]
	return result % n
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, values...)
}
