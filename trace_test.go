package mreasoner

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceBuffer_KeepsNewestEntries(t *testing.T) {
	b := NewTraceBuffer(4)
	for i := 1; i <= 6; i++ {
		b.Sent(fmt.Sprintf("cmd %d", i))
	}

	entries := b.Entries()
	require.Len(t, entries, 4)
	for i, e := range entries {
		assert.Equal(t, TraceSent, e.Dir)
		assert.Equal(t, fmt.Sprintf("cmd %d", i+3), e.Line, "oldest surviving entry first")
	}
}

func TestTraceBuffer_PartialFill(t *testing.T) {
	b := NewTraceBuffer(8)
	b.Sent("(quit)")
	b.Received("? NIL")

	entries := b.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, TraceSent, entries[0].Dir)
	assert.Equal(t, "(quit)", entries[0].Line)
	assert.Equal(t, TraceReceived, entries[1].Dir)
	assert.Equal(t, "? NIL", entries[1].Line)
	assert.False(t, entries[0].Time.IsZero())
}

func TestWithTrace_RecordsProtocolTraffic(t *testing.T) {
	trace := NewTraceBuffer(16)
	e := newFakeEngine(t, WithTrace(trace))
	e.emit("? NIL")

	_, err := e.r.Query(testCtx(t), "AA1")
	require.NoError(t, err)

	var sent, received bool
	for _, entry := range trace.Entries() {
		switch {
		case entry.Dir == TraceSent && entry.Line ==
			"(setf resp (what-follows? (list (parse '(All A are B)) (parse '(All B are C)))))":
			sent = true
		case entry.Dir == TraceReceived && entry.Line == "? NIL":
			received = true
		}
	}
	assert.True(t, sent, "generation command not traced")
	assert.True(t, received, "engine response not traced")
}
