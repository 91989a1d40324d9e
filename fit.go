package mreasoner

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// Default search sizes, matching the engine's published fitting setup.
const (
	DefaultFitStarts   = 10
	DefaultGridPoints  = 10
	DefaultRandomDraws = 10
)

// FailedFitScore is the sentinel returned when every run of a
// multi-start fit fails. It is not a valid inaccuracy (the objective
// lives in [0, 1]); callers must treat it as "fitting did not succeed".
const FailedFitScore = -1

// FitResult is the outcome of a parameter search: the winning inaccuracy
// score and the parameter vector (canonical order) that produced it.
// Every fit routine also writes the winning vector back into the store,
// so subsequent queries use the fitted configuration.
type FitResult struct {
	Score  float64
	Params []float64
}

// inaccuracy is the black-box objective: set the candidate parameters,
// query the engine for every task, and score partial credit 1/|candidates|
// per hit. Returns 1 - Σscore/|tasks|, so 0 is a perfect fit.
//
// Evaluating mutates the parameter store before issuing the queries.
func (r *Reasoner) inaccuracy(ctx context.Context, params []float64, tasks []Syllogism, observed []string) (float64, error) {
	if err := r.SetParamVector(params); err != nil {
		return 0, err
	}

	var score float64
	for i, task := range tasks {
		candidates, err := r.Query(ctx, task)
		if err != nil {
			return 0, fmt.Errorf("evaluate %s: %w", task, err)
		}
		for _, c := range candidates {
			if c == observed[i] {
				score += 1 / float64(len(candidates))
				break
			}
		}
	}

	inacc := 1 - score/float64(len(tasks))
	r.log.Debug("fit evaluation",
		zap.Float64s("params", params),
		zap.Float64("inaccuracy", inacc))
	return inacc, nil
}

// Fit runs numStarts independent bounded local searches from uniformly
// sampled starting points and keeps the best successful run. Runs where
// the engine halts or the search fails to converge are dropped; if every
// run fails, the store is reset to factory defaults and the result
// carries FailedFitScore.
//
// Context cancellation and transport failures (timeout, terminated
// engine) abort the whole fit rather than being dropped per run.
func (r *Reasoner) Fit(ctx context.Context, tasks []Syllogism, observed []string, numStarts int) (FitResult, error) {
	if err := validateTraining(tasks, observed); err != nil {
		return FitResult{}, err
	}
	if numStarts <= 0 {
		numStarts = DefaultFitStarts
	}

	var runs []FitResult
	for i := 0; i < numStarts; i++ {
		run, err := r.minimize(ctx, r.randomVector(), tasks, observed)
		if err != nil {
			if fatal := fitAbortErr(ctx, err); fatal != nil {
				return FitResult{}, fatal
			}
			r.log.Warn("fit run failed",
				zap.Int("run", i+1),
				zap.Int("starts", numStarts),
				zap.Error(err))
			continue
		}
		runs = append(runs, run)
	}

	if len(runs) == 0 {
		// Nothing converged: fall back to factory defaults and report
		// the sentinel so the caller cannot mistake this for a fit.
		r.log.Warn("all fit runs failed, restoring defaults")
		if err := r.SetParamVector(r.defaultVector()); err != nil {
			return FitResult{}, err
		}
		return FitResult{Score: FailedFitScore, Params: r.defaultVector()}, nil
	}

	best := runs[0]
	for _, run := range runs[1:] {
		if run.Score < best.Score {
			best = run
		}
	}
	if err := r.SetParamVector(best.Params); err != nil {
		return FitResult{}, err
	}
	return best, nil
}

// FitGrid evaluates the objective on the full Cartesian product of num
// evenly spaced values per parameter and returns the minimum.
func (r *Reasoner) FitGrid(ctx context.Context, tasks []Syllogism, observed []string, num int) (FitResult, error) {
	if err := validateTraining(tasks, observed); err != nil {
		return FitResult{}, err
	}
	if num <= 1 {
		num = DefaultGridPoints
	}

	axes := make([][]float64, len(ParamBounds))
	for i, b := range ParamBounds {
		axes[i] = floats.Span(make([]float64, num), b.Min, b.Max)
	}

	best := FitResult{Score: math.Inf(1)}
	for _, eps := range axes[0] {
		for _, lam := range axes[1] {
			for _, om := range axes[2] {
				for _, sig := range axes[3] {
					params := []float64{eps, lam, om, sig}
					score, err := r.inaccuracy(ctx, params, tasks, observed)
					if err != nil {
						return FitResult{}, err
					}
					if score < best.Score {
						best = FitResult{Score: score, Params: params}
					}
				}
			}
		}
	}

	if err := r.SetParamVector(best.Params); err != nil {
		return FitResult{}, err
	}
	return best, nil
}

// FitRandom evaluates num uniformly sampled points and returns the
// minimum. A non-nil seed vector (for example a previous best) is
// evaluated first so the search can only improve on it.
func (r *Reasoner) FitRandom(ctx context.Context, tasks []Syllogism, observed []string, num int, seed []float64) (FitResult, error) {
	if err := validateTraining(tasks, observed); err != nil {
		return FitResult{}, err
	}
	if num <= 0 {
		num = DefaultRandomDraws
	}

	best := FitResult{Score: math.Inf(1)}
	if seed != nil {
		score, err := r.inaccuracy(ctx, seed, tasks, observed)
		if err != nil {
			return FitResult{}, err
		}
		best = FitResult{Score: score, Params: append([]float64(nil), seed...)}
	}

	for i := 0; i < num; i++ {
		params := r.randomVector()
		score, err := r.inaccuracy(ctx, params, tasks, observed)
		if err != nil {
			return FitResult{}, err
		}
		if score < best.Score {
			best = FitResult{Score: score, Params: params}
		}
	}

	if err := r.SetParamVector(best.Params); err != nil {
		return FitResult{}, err
	}
	return best, nil
}

// minimize runs one bounded local search. The objective is derivative
// free (the engine's predictions make it piecewise constant, so
// finite-difference gradients vanish); candidate points outside the
// bound box are clamped before evaluation.
func (r *Reasoner) minimize(ctx context.Context, start []float64, tasks []Syllogism, observed []string) (FitResult, error) {
	var evalErr error
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if evalErr != nil {
				return math.Inf(1)
			}
			score, err := r.inaccuracy(ctx, clampToBounds(x), tasks, observed)
			if err != nil {
				evalErr = err
				return math.Inf(1)
			}
			return score
		},
	}

	// The iteration cap stops runaway simplex walks once every
	// evaluation short-circuits to +Inf after an engine failure.
	settings := &optimize.Settings{MajorIterations: 200}
	result, err := optimize.Minimize(problem, start, settings, &optimize.NelderMead{})
	if evalErr != nil {
		return FitResult{}, evalErr
	}
	if err != nil {
		return FitResult{}, fmt.Errorf("minimize: %w", err)
	}
	return FitResult{Score: result.F, Params: clampToBounds(result.X)}, nil
}

// fitAbortErr decides whether a failed run aborts the whole fit. Engine
// halts and non-convergence are per-run failures; everything else (a
// cancelled context, a wedged or terminated child, an invalid response)
// will not get better on the next start point.
func fitAbortErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrTerminated) || errors.Is(err, ErrInvalidResponse) {
		return err
	}
	return nil
}

// randomVector samples uniformly inside the bound box.
func (r *Reasoner) randomVector() []float64 {
	params := make([]float64, len(ParamBounds))
	for i, b := range ParamBounds {
		params[i] = b.Min + r.rng.Float64()*(b.Max-b.Min)
	}
	return params
}

// defaultVector returns the factory defaults in canonical order.
func (r *Reasoner) defaultVector() []float64 {
	values := make([]float64, len(ParamOrder))
	for i, name := range ParamOrder {
		values[i] = r.defaults[name]
	}
	return values
}

// clampToBounds projects a candidate point back into the bound box.
func clampToBounds(x []float64) []float64 {
	out := make([]float64, len(ParamBounds))
	for i, b := range ParamBounds {
		out[i] = math.Min(math.Max(x[i], b.Min), b.Max)
	}
	return out
}

func validateTraining(tasks []Syllogism, observed []string) error {
	if len(tasks) == 0 {
		return fmt.Errorf("%w: empty training set", ErrInvalidSyllogism)
	}
	if len(tasks) != len(observed) {
		return fmt.Errorf("mreasoner: %d tasks but %d observed responses", len(tasks), len(observed))
	}
	return nil
}
