package observability

import (
	"sync"

	"github.com/wonny/inout/backend/internal/contracts"
)

// Recorder keeps the most recent decisions in memory for the status API
type Recorder struct {
	mu    sync.RWMutex
	limit int
	items []contracts.Decision
}

// NewRecorder creates a recorder holding at most limit decisions
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = 500
	}
	return &Recorder{limit: limit}
}

// Publish implements contracts.Publisher
func (r *Recorder) Publish(d *contracts.Decision) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = append(r.items, *d)
	if len(r.items) > r.limit {
		r.items = r.items[len(r.items)-r.limit:]
	}
}

// Recent returns up to n decisions, newest first
func (r *Recorder) Recent(n int) []contracts.Decision {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n <= 0 || n > len(r.items) {
		n = len(r.items)
	}
	out := make([]contracts.Decision, 0, n)
	for i := len(r.items) - 1; i >= len(r.items)-n; i-- {
		out = append(out, r.items[i])
	}
	return out
}

// All returns every held decision, oldest first
func (r *Recorder) All() []contracts.Decision {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]contracts.Decision(nil), r.items...)
}

// Multi fans a decision out to several publishers in order
type Multi []contracts.Publisher

// Publish implements contracts.Publisher
func (m Multi) Publish(d *contracts.Decision) {
	for _, p := range m {
		if p != nil {
			p.Publish(d)
		}
	}
}
