// Package transcript retains recent execution output so late observers can
// catch up on what the interpreter printed.
package transcript

import (
	"sync"
	"time"

	"github.com/viant/runcell/internal/clock"
)

// Entry is a single retained output fragment.
type Entry struct {
	RunID string    `json:"runId,omitempty"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

// Buffer is a fixed-capacity circular buffer of output entries.
type Buffer struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	pos      int
	full     bool
}

// NewBuffer creates a buffer retaining up to capacity entries.
func NewBuffer(capacity int) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer{
		entries:  make([]Entry, capacity),
		capacity: capacity,
	}
}

// Append records a fragment of output attributed to a run.
func (b *Buffer) Append(runID, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[b.pos] = Entry{RunID: runID, Text: text, At: clock.Now()}
	b.pos = (b.pos + 1) % b.capacity
	if b.pos == 0 {
		b.full = true
	}
}

// Entries returns retained entries in chronological order.
func (b *Buffer) Entries() []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.full {
		result := make([]Entry, b.pos)
		copy(result, b.entries[:b.pos])
		return result
	}
	result := make([]Entry, b.capacity)
	copy(result, b.entries[b.pos:])
	copy(result[b.capacity-b.pos:], b.entries[:b.pos])
	return result
}

// Text concatenates retained output in chronological order.
func (b *Buffer) Text() string {
	var out string
	for _, entry := range b.Entries() {
		out += entry.Text
	}
	return out
}

// Len returns the number of retained entries.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.full {
		return b.capacity
	}
	return b.pos
}
