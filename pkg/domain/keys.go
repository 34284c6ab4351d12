package domain

import (
	"sync"
	"sync/atomic"
)

// KeyGenerator hands out source keys unique within an owning context. A
// generator is an explicit service object passed by handle; key assignment is
// never hidden global state.
type KeyGenerator interface {
	// NextSourceKey returns the next unused key, or ok=false when the key
	// space is exhausted.
	NextSourceKey() (key int, ok bool)
}

// SequentialKeys is the standard study-scoped generator: ascending keys from
// a seed, exhausted at MaxSourceKey.
type SequentialKeys struct {
	mu   sync.Mutex
	next int
	max  int
}

// NewSequentialKeys returns a generator whose first key is next. Seeds at or
// below zero start at one.
func NewSequentialKeys(next int) *SequentialKeys {
	if next <= 0 {
		next = 1
	}
	return &SequentialKeys{next: next, max: MaxSourceKey}
}

// NextSourceKey implements KeyGenerator.
func (g *SequentialKeys) NextSourceKey() (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next > g.max {
		return 0, false
	}
	key := g.next
	g.next++
	return key, true
}

// Peek returns the key the next call would hand out, without consuming it.
// Persistence uses it to record the study's key sequence.
func (g *SequentialKeys) Peek() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next
}

// TemporaryKeys generates context-free keys for records with no study, such
// as standalone import sets. Keys are negative and descend, so they can never
// collide with study-assigned keys.
type TemporaryKeys struct {
	last int64
}

// NewTemporaryKeys returns a fresh temporary generator.
func NewTemporaryKeys() *TemporaryKeys { return &TemporaryKeys{} }

// NextSourceKey implements KeyGenerator. Temporary keys never exhaust.
func (g *TemporaryKeys) NextSourceKey() (int, bool) {
	return int(atomic.AddInt64(&g.last, -1)), true
}
