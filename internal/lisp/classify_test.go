package lisp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		kind    Kind
		payload string
	}{
		{"comment", ";Loading level 3...", KindComment, ";Loading level 3..."},
		{"comment with spaces", "  ; compiled", KindComment, "; compiled"},
		{"sentinel", `"TERMINATE"`, KindSentinel, `"TERMINATE"`},
		{"sentinel embedded", `? "TERMINATE"`, KindSentinel, `? "TERMINATE"`},
		{"error report", "> Error: Unbound variable: FOO", KindHalt, "> Error: Unbound variable: FOO"},
		{"while executing", "While executing: WHAT-FOLLOWS?", KindHalt, "While executing: WHAT-FOLLOWS?"},
		{"float echo", "? 3.14", KindFloat, "3.14"},
		{"integer echo", "? 4", KindFloat, "4"},
		{"quantified result", "? (Aac Ice)", KindQuantified, "(Aac Ice)"},
		{"intension list", "? (#<Q-INTENSION 123> #<Q-INTENSION 456>)", KindQuantified, "(#<Q-INTENSION 123> #<Q-INTENSION 456>)"},
		{"string result", `? "Aac"`, KindString, "Aac"},
		{"nil result", "? NIL", KindNil, "NIL"},
		{"marker noise", "? #P\"/tmp/mReasoner.lx64fsl\"", KindNoise, "#P\"/tmp/mReasoner.lx64fsl\""},
		{"bare marker", "? ", KindNoise, ""},
		{"console chatter", "Welcome to Clozure Common Lisp", KindNoise, "Welcome to Clozure Common Lisp"},
		{"empty line", "", KindNoise, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.line)
			assert.Equal(t, tt.kind, res.Kind, "kind for %q", tt.line)
			assert.Equal(t, tt.payload, res.Payload, "payload for %q", tt.line)
		})
	}
}

// A commented line containing the termination keyword must stay a
// comment: rule order is part of the protocol.
func TestClassify_CommentWinsOverSentinel(t *testing.T) {
	res := Classify("; printing TERMINATE soon")
	assert.Equal(t, KindComment, res.Kind)
}

func TestClassify_SentinelWinsOverHalt(t *testing.T) {
	res := Classify("Error: TERMINATE")
	assert.Equal(t, KindSentinel, res.Kind)
}

func TestKind_Forwarded(t *testing.T) {
	forwarded := map[Kind]bool{
		KindHalt:       true,
		KindQuantified: true,
		KindString:     true,
		KindNil:        true,
	}
	for kind := KindNoise; kind <= KindNil; kind++ {
		assert.Equal(t, forwarded[kind], kind.forwarded(), "kind %s", kind)
	}
}
