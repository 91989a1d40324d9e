package mreasoner

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cogsim/mreasoner/internal/lisp"
)

// Engine source and compiled-artifact naming inside the source directory.
const engineSourceFile = "+mReasoner.lisp"

// faslSuffixes maps GOOS to the compiled-artifact suffix the Lisp
// runtime produces on that platform.
var faslSuffixes = map[string]string{
	"darwin":  "dx64fsl",
	"windows": "wx64fsl",
	"linux":   "lx64fsl",
}

// Reasoner supervises one mReasoner child process. It owns the process
// handle exclusively: all pipe traffic goes through its command channel
// and background reader.
//
// All exported methods serialize their full command/response round trip
// behind one mutex, so the half-duplex protocol discipline holds even
// under concurrent callers.
type Reasoner struct {
	log          *zap.Logger
	proc         *lisp.Process
	queryTimeout time.Duration
	rng          *rand.Rand

	mu       sync.Mutex // serializes round trips and guards params
	params   map[ParamName]float64
	defaults map[ParamName]float64
}

// New launches the Lisp executable, loads the engine from sourceDir
// (compiling it first when no cached artifact exists for this platform),
// declares the response holder, and applies the factory-default
// parameters. Failures wrap ErrUnavailable.
func New(lispPath, sourceDir string, opts ...Option) (*Reasoner, error) {
	o := resolveOptions(opts...)

	binary, err := exec.LookPath(lispPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, lispPath, err)
	}

	var recorder lisp.Recorder
	if o.trace != nil {
		recorder = o.trace
	}
	proc, err := lisp.Start(binary, lisp.Options{
		Logger:      o.logger.Named("lisp"),
		Recorder:    recorder,
		GracePeriod: o.gracePeriod,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	r := newReasoner(proc, o)
	if err := r.bootstrap(sourceDir); err != nil {
		proc.Kill()
		return nil, fmt.Errorf("%w: bootstrap: %w", ErrUnavailable, err)
	}
	return r, nil
}

// newReasoner wires a Reasoner around a running process. Split from New
// so tests can drive the protocol over in-memory pipes.
func newReasoner(proc *lisp.Process, o settings) *Reasoner {
	def := DefaultParams()
	params := make(map[ParamName]float64, len(ParamOrder))
	defaults := make(map[ParamName]float64, len(ParamOrder))
	for i, name := range ParamOrder {
		params[name] = def[i]
		defaults[name] = def[i]
	}
	return &Reasoner{
		log:          o.logger,
		proc:         proc,
		queryTimeout: o.queryTimeout,
		rng:          o.rng,
		params:       params,
		defaults:     defaults,
	}
}

// bootstrap issues the startup command sequence. None of these commands
// produce a forwarded result: loads echo pathnames and parameter sets
// echo floats, both of which the reader drops.
func (r *Reasoner) bootstrap(sourceDir string) error {
	suffix, ok := faslSuffixes[runtime.GOOS]
	if !ok {
		suffix = faslSuffixes["linux"]
	}
	fasl := filepath.Join(sourceDir, "+mReasoner."+suffix)
	src := filepath.Join(sourceDir, engineSourceFile)

	// The child runs commands sequentially, so the load below sees the
	// artifact the compile produces.
	if _, err := os.Stat(fasl); err != nil {
		cmd := fmt.Sprintf("(compile-file %q)", filepath.ToSlash(src))
		if err := r.proc.Send(cmd); err != nil {
			return err
		}
	}
	if err := r.proc.Send(fmt.Sprintf("(load %q)", filepath.ToSlash(fasl))); err != nil {
		return err
	}
	if err := r.proc.Send("(defvar resp 0)"); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range ParamOrder {
		if err := r.setParam(name, r.defaults[name]); err != nil {
			return err
		}
	}
	return nil
}

// Terminate shuts the engine down cooperatively: the sentinel handshake
// confirms the reader has stopped before the quit command is sent and
// the process handle released. Bounded by ctx; a child that never echoes
// the sentinel is killed and reported rather than waited on forever.
func (r *Reasoner) Terminate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.proc.Terminate(ctx)
}
