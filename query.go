package mreasoner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cogsim/mreasoner/internal/lisp"

	"go.uber.org/zap"
)

// NoConclusion is the engine's null-result outcome: the premises license
// no valid conclusion. Query returns it as the sole candidate so scoring
// treats it like any other response encoding.
const NoConclusion = "NVC"

// Intension markers in the engine's phase-one echo.
const (
	quantIntensionToken = "Q-INTENSION"
	nullIntensionToken  = "NULL-INTENSION"
)

// Query asks the engine what follows from the given syllogism and
// returns the candidate conclusion encodings (e.g. "Aac", "Ica"), or
// [NoConclusion] alone when the engine derives nothing.
//
// The protocol is two-phase: a generation command stores the intension
// list in the child's response variable, then, only for a non-empty
// quantified result, an interpretation command abbreviates every
// element into its surface encoding. Each phase blocks on exactly one
// queue entry, bounded by the configured query timeout.
//
// Errors: ErrHalted when the engine reports a runtime error, ErrTimeout
// on a wedged child, ErrInvalidResponse on a protocol mismatch.
func (r *Reasoner) Query(ctx context.Context, syl Syllogism) ([]string, error) {
	p1, p2, err := syl.Premises()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cmd := fmt.Sprintf("(setf resp (what-follows? (list (parse '(%s)) (parse '(%s)))))", p1, p2)
	if err := r.proc.Send(cmd); err != nil {
		return nil, err
	}
	res, err := r.receive(ctx)
	if err != nil {
		return nil, fmt.Errorf("generation phase: %w", err)
	}

	switch {
	case res.Kind == lisp.KindHalt:
		return nil, fmt.Errorf("%w: %s", ErrHalted, res.Payload)
	case strings.Contains(res.Payload, quantIntensionToken):
		return r.interpret(ctx, syl)
	case res.Kind == lisp.KindNil || strings.Contains(res.Payload, nullIntensionToken):
		r.log.Debug("no valid conclusion", zap.String("syllogism", string(syl)))
		return []string{NoConclusion}, nil
	}
	return nil, fmt.Errorf("%w: generation phase returned %q", ErrInvalidResponse, res.Payload)
}

// interpret runs the second protocol phase: abbreviate every intension
// in the stored response list and split the quoted list into candidate
// encodings. Callers hold r.mu.
func (r *Reasoner) interpret(ctx context.Context, syl Syllogism) ([]string, error) {
	if err := r.proc.Send("(map 'list (lambda (x) (abbreviate x)) resp)"); err != nil {
		return nil, err
	}
	res, err := r.receive(ctx)
	if err != nil {
		return nil, fmt.Errorf("interpretation phase: %w", err)
	}
	if res.Kind == lisp.KindHalt {
		return nil, fmt.Errorf("%w: %s", ErrHalted, res.Payload)
	}

	candidates := splitCandidates(res.Payload)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: interpretation phase returned %q", ErrInvalidResponse, res.Payload)
	}
	r.log.Debug("query answered",
		zap.String("syllogism", string(syl)),
		zap.Strings("candidates", candidates))
	return candidates, nil
}

// splitCandidates strips quoting and parenthesis punctuation from an
// abbreviated conclusion list and splits it on whitespace.
func splitCandidates(payload string) []string {
	clean := strings.NewReplacer(`"`, "", "(", "", ")", "").Replace(payload)
	return strings.Fields(clean)
}

// receive blocks on the result queue with the configured deadline and
// translates transport errors into the package taxonomy.
func (r *Reasoner) receive(ctx context.Context) (lisp.Result, error) {
	if r.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.queryTimeout)
		defer cancel()
	}

	res, err := r.proc.Receive(ctx)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return res, fmt.Errorf("%w: %w", ErrTimeout, err)
	case errors.Is(err, lisp.ErrStopped):
		return res, fmt.Errorf("%w: %w", ErrTerminated, err)
	}
	return res, err
}
