package lisp

import (
	"strconv"
	"strings"
)

// Kind tags a classified output line from the Lisp child process.
type Kind int

const (
	// KindNoise is ordinary console chatter. Dropped.
	KindNoise Kind = iota

	// KindComment is a ;-prefixed reader comment. Dropped.
	KindComment

	// KindSentinel is the cooperative-termination keyword. It stops the
	// read loop; nothing is forwarded.
	KindSentinel

	// KindHalt marks an engine runtime error. Forwarded so a caller
	// blocked on the result queue is released with a failure signal.
	KindHalt

	// KindFloat is a numeric echo of an evaluated expression. Dropped.
	KindFloat

	// KindQuantified is a parenthesized intension list. Forwarded verbatim.
	KindQuantified

	// KindString is a quoted string result. Forwarded with quotes stripped.
	KindString

	// KindNil is the literal NIL result. Forwarded.
	KindNil
)

var kindNames = map[Kind]string{
	KindNoise:      "noise",
	KindComment:    "comment",
	KindSentinel:   "sentinel",
	KindHalt:       "halt",
	KindFloat:      "float",
	KindQuantified: "quantified",
	KindString:     "string",
	KindNil:        "nil",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// forwarded reports whether the read loop pushes this kind onto the
// result queue. Exactly one forwarded entry per source line, in read
// order, so the queue stays 1:1 with consumer expectations.
func (k Kind) forwarded() bool {
	switch k {
	case KindHalt, KindQuantified, KindString, KindNil:
		return true
	}
	return false
}

// Result is one classified output line. For forwarded kinds, Payload
// carries the query-result text (marker stripped, strings unquoted);
// otherwise it carries the trimmed line for logging.
type Result struct {
	Kind    Kind
	Payload string
}

const (
	commentMarker  = ";"
	resultMarker   = "? "
	terminateToken = "TERMINATE"
	nilLiteral     = "NIL"
)

// Classify maps one output line to its protocol meaning. Pure function;
// rule order matters and mirrors the engine's output precedence: comments
// win over everything (a commented TERMINATE is not a sentinel), then the
// termination keyword, then error reports, then marker-prefixed query
// results sniffed by shape. Anything else is console noise.
func Classify(line string) Result {
	text := strings.TrimSpace(line)

	if strings.HasPrefix(text, commentMarker) {
		return Result{Kind: KindComment, Payload: text}
	}
	if strings.Contains(text, terminateToken) {
		return Result{Kind: KindSentinel, Payload: text}
	}
	if strings.Contains(text, "While executing:") || strings.Contains(text, "Error:") {
		return Result{Kind: KindHalt, Payload: text}
	}
	if !strings.HasPrefix(text, resultMarker) {
		return Result{Kind: KindNoise, Payload: text}
	}

	payload := text[len(resultMarker):]
	if payload == "" {
		return Result{Kind: KindNoise, Payload: payload}
	}
	if _, err := strconv.ParseFloat(payload, 64); err == nil {
		return Result{Kind: KindFloat, Payload: payload}
	}
	switch {
	case payload[0] == '(' && payload[len(payload)-1] == ')':
		return Result{Kind: KindQuantified, Payload: payload}
	case payload[0] == '"' && payload[len(payload)-1] == '"':
		return Result{Kind: KindString, Payload: strings.ReplaceAll(payload, `"`, "")}
	case payload == nilLiteral:
		return Result{Kind: KindNil, Payload: payload}
	}
	return Result{Kind: KindNoise, Payload: payload}
}
