package mreasoner

import "fmt"

// ParamName identifies one of the engine's four model parameters.
type ParamName string

const (
	ParamEpsilon ParamName = "epsilon"
	ParamLambda  ParamName = "lambda"
	ParamOmega   ParamName = "omega"
	ParamSigma   ParamName = "sigma"
)

// ParamOrder is the canonical vector order for SetParamVector,
// ParamVector, and every fit routine.
var ParamOrder = [4]ParamName{ParamEpsilon, ParamLambda, ParamOmega, ParamSigma}

// Bound is a closed parameter interval.
type Bound struct {
	Min, Max float64
}

// ParamBounds holds the valid interval per parameter, in canonical order.
// Bounds are advisory metadata consumed by the fitting routines; SetParam
// does not enforce them.
var ParamBounds = [4]Bound{
	{0.0, 1.0}, // epsilon
	{0.1, 8.0}, // lambda
	{0.0, 1.0}, // omega
	{0.0, 1.0}, // sigma
}

// DefaultParams returns the engine's factory-default parameter vector.
func DefaultParams() []float64 {
	return []float64{0.0, 4.0, 1.0, 0.0}
}

// SetParam updates one engine parameter, both in the store and inside
// the running child. Unknown names fail with ErrInvalidParameter and
// leave all state unchanged. Values outside the declared bound are
// accepted (bounds bind the optimizer, not direct assignment).
func (r *Reasoner) SetParam(name ParamName, value float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setParam(name, value)
}

// SetParamVector applies all four parameters in canonical order
// (epsilon, lambda, omega, sigma) under a single request lock.
func (r *Reasoner) SetParamVector(values []float64) error {
	if len(values) != len(ParamOrder) {
		return fmt.Errorf("%w: want %d values, got %d",
			ErrInvalidParameter, len(ParamOrder), len(values))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, name := range ParamOrder {
		if err := r.setParam(name, values[i]); err != nil {
			return err
		}
	}
	return nil
}

// ParamVector reads back the current parameter values in canonical order.
func (r *Reasoner) ParamVector() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	values := make([]float64, len(ParamOrder))
	for i, name := range ParamOrder {
		values[i] = r.params[name]
	}
	return values
}

// setParam is the lock-free core of SetParam. Callers hold r.mu.
func (r *Reasoner) setParam(name ParamName, value float64) error {
	if _, ok := r.params[name]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidParameter, name)
	}
	r.params[name] = value
	// Fixed six-decimal formatting: the child binds +name+ specials.
	return r.proc.Send(fmt.Sprintf("(setf +%s+ %f)", name, value))
}
