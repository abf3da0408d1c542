package inmemory

import (
	"sync"

	"github.com/leofalp/unichat/providers/ai"
	"github.com/leofalp/unichat/providers/memory"
)

// ArrayMemory is a simple, concurrency-safe in-memory message store.
// It uses RWMutex to guard access and is efficient for read-heavy workloads.
type ArrayMemory struct {
	mu       sync.RWMutex
	messages []ai.Message
}

// New returns a new [ArrayMemory] holding a copy of seed.
func New(seed ...ai.Message) *ArrayMemory {
	m := &ArrayMemory{}
	m.Reset(seed...)
	return m
}

// Ensure ArrayMemory implements memory.Provider at compile time.
var _ memory.Provider = (*ArrayMemory)(nil)

// AppendMessage stores message at the end of the history.
func (m *ArrayMemory) AppendMessage(message ai.Message) {
	m.mu.Lock()
	m.messages = append(m.messages, message)
	m.mu.Unlock()
}

// Count returns the number of messages stored.
func (m *ArrayMemory) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages)
}

// AllMessages returns a copy of all messages to avoid external mutation of internal state.
// The result is never nil.
func (m *ArrayMemory) AllMessages() []ai.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ai.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// LastMessages returns up to the last n messages as a new, independent slice.
// If n exceeds the total number of stored messages, all messages are returned.
// Returns an empty, non-nil slice when n is zero or negative.
func (m *ArrayMemory) LastMessages(n int) []ai.Message {
	if n <= 0 {
		return []ai.Message{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if n > len(m.messages) {
		n = len(m.messages)
	}
	out := make([]ai.Message, n)
	copy(out, m.messages[len(m.messages)-n:])
	return out
}

// Reset replaces the history with a copy of seed, retaining the underlying
// slice capacity when it is large enough.
func (m *ArrayMemory) Reset(seed ...ai.Message) {
	m.mu.Lock()
	m.messages = append(m.messages[:0], seed...)
	m.mu.Unlock()
}
