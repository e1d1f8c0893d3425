package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/lighthouse/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued strings are returned first; after that it counts upwards so
// every value is still unique. It is safe for concurrent use.
type MockRandom struct {
	mu      sync.Mutex
	queued  []string
	counter int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// String returns the next queued result, or a zero padded counter of the
// requested length once the queue is empty
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queued) > 0 {
		result := r.queued[0]
		r.queued = r.queued[1:]
		return result
	}
	r.counter++
	return fmt.Sprintf("%0*d", length, r.counter)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	r.queued = append(r.queued, values...)
	r.mu.Unlock()
}

// Reset clears the queue and the counter
func (r *MockRandom) Reset() {
	r.mu.Lock()
	r.queued = nil
	r.counter = 0
	r.mu.Unlock()
}
