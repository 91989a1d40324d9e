package mreasoner

import (
	"sync"
	"time"
)

// TraceDirection tells which side of the pipe produced a trace entry.
type TraceDirection string

const (
	// TraceSent is a command written to the child's stdin.
	TraceSent TraceDirection = "sent"

	// TraceReceived is a raw line read from the child's output.
	TraceReceived TraceDirection = "received"
)

// TraceEntry is one recorded protocol line.
type TraceEntry struct {
	Dir  TraceDirection
	Line string
	Time time.Time
}

// TraceBuffer is a bounded ring of protocol lines, oldest entries
// overwritten first. It is safe for concurrent append: the background
// reader records received lines while the caller records sends. A long
// fitting session issues tens of thousands of round trips, so the ring
// never grows past its capacity.
type TraceBuffer struct {
	mu      sync.Mutex
	entries []TraceEntry
	next    int
	full    bool
}

// NewTraceBuffer creates a ring holding at most capacity entries.
func NewTraceBuffer(capacity int) *TraceBuffer {
	if capacity <= 0 {
		capacity = 1024
	}
	return &TraceBuffer{entries: make([]TraceEntry, capacity)}
}

// Sent records a command written to the child.
func (b *TraceBuffer) Sent(line string) { b.record(TraceSent, line) }

// Received records a raw output line from the child.
func (b *TraceBuffer) Received(line string) { b.record(TraceReceived, line) }

func (b *TraceBuffer) record(dir TraceDirection, line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[b.next] = TraceEntry{Dir: dir, Line: line, Time: time.Now()}
	b.next++
	if b.next == len(b.entries) {
		b.next = 0
		b.full = true
	}
}

// Entries returns a copy of the recorded lines, oldest first.
func (b *TraceBuffer) Entries() []TraceEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.full {
		return append([]TraceEntry(nil), b.entries[:b.next]...)
	}
	out := make([]TraceEntry, 0, len(b.entries))
	out = append(out, b.entries[b.next:]...)
	out = append(out, b.entries[:b.next]...)
	return out
}
