// Package mreasoner drives the Lisp-based mReasoner engine as a
// long-lived child process and fits its four model parameters to
// observed syllogistic response data.
//
// The engine is opaque: this package only speaks its line-oriented text
// protocol. A single background reader classifies every output line
// (comments, error reports, typed query results, a termination sentinel)
// and hands typed results to the synchronous caller through a FIFO
// queue; all commands and their responses are serialized behind one
// request mutex, so the half-duplex protocol discipline is an enforced
// invariant rather than a calling convention.
//
// # Core Types
//
//   - [Reasoner] — supervises the child process and exposes the protocol
//   - [Syllogism] — a two-quantifier + figure problem identifier ("AA1")
//   - [FitResult] — the outcome of a parameter search
//   - [TraceBuffer] — optional bounded ring of sent/received lines
//
// # Quick Start
//
//	r, err := mreasoner.New("ccl", srcDir)
//	if err != nil { log.Fatal(err) }
//	defer r.Terminate(context.Background())
//
//	candidates, err := r.Query(ctx, "AA1")
//	fit, err := r.Fit(ctx, tasks, responses, 10)
package mreasoner
