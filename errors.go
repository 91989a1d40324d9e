package mreasoner

import "errors"

// Sentinel errors for engine operations.
var (
	// ErrUnavailable indicates the child process failed to launch or
	// bootstrap. Surfaced by New; fatal for the instance.
	ErrUnavailable = errors.New("mreasoner: engine unavailable")

	// ErrTerminated indicates the engine is no longer running: the
	// reader has stopped and no further responses can arrive.
	ErrTerminated = errors.New("mreasoner: engine terminated")

	// ErrInvalidParameter indicates a parameter name outside
	// epsilon/lambda/omega/sigma. Local and recoverable; process state
	// is untouched.
	ErrInvalidParameter = errors.New("mreasoner: invalid parameter")

	// ErrInvalidSyllogism indicates a malformed syllogism identifier.
	ErrInvalidSyllogism = errors.New("mreasoner: invalid syllogism")

	// ErrHalted indicates the engine reported a runtime error instead of
	// a reasoning result. The caller decides whether to retry, drop the
	// current fit evaluation, or propagate.
	ErrHalted = errors.New("mreasoner: engine halted")

	// ErrInvalidResponse indicates the engine answered a query phase
	// with a shape the protocol cannot interpret. A protocol mismatch,
	// never silently coerced.
	ErrInvalidResponse = errors.New("mreasoner: invalid engine response")

	// ErrTimeout indicates a blocking receive outlived its deadline,
	// typically a wedged child process.
	ErrTimeout = errors.New("mreasoner: timed out")
)
