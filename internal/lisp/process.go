package lisp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrStopped is returned by Receive after the read loop has exited:
// either the termination sentinel was observed or the child closed its
// output stream. No further results will ever arrive.
var ErrStopped = errors.New("lisp: reader stopped")

// Default process configuration values.
const (
	defaultResultBuffer = 16
	defaultScannerSize  = 1 << 20 // 1 MB
	defaultGracePeriod  = 5 * time.Second

	sentinelCommand = `(prin1 "TERMINATE")`
	quitCommand     = "(quit)"
)

// Recorder receives a copy of every protocol line for post-hoc inspection.
// Implementations must be safe for concurrent use: the read loop and the
// sending caller append from different goroutines.
type Recorder interface {
	Sent(line string)
	Received(line string)
}

// Options configure a Process. The zero value is usable; nil Logger means
// no logging, nil Recorder means no trace.
type Options struct {
	Logger       *zap.Logger
	Recorder     Recorder
	ResultBuffer int
	ScannerSize  int
	GracePeriod  time.Duration
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.ResultBuffer <= 0 {
		o.ResultBuffer = defaultResultBuffer
	}
	if o.ScannerSize <= 0 {
		o.ScannerSize = defaultScannerSize
	}
	if o.GracePeriod <= 0 {
		o.GracePeriod = defaultGracePeriod
	}
	return o
}

// Process owns a running Lisp child and its two pipes. Commands go down
// the stdin pipe through Send; classified results come back through
// Receive in strict FIFO order, pumped by a single background read loop
// over the child's merged stdout+stderr stream.
//
// The protocol is half-duplex at the application level: Process does not
// serialize command/response round trips itself, callers must (the
// Reasoner facade holds one mutex across each full round trip).
type Process struct {
	log   *zap.Logger
	rec   Recorder
	grace time.Duration

	cmd *exec.Cmd // nil for pipe-backed processes (tests)

	mu     sync.Mutex // guards stdin
	stdin  io.WriteCloser
	closed bool

	results    chan Result
	done       chan struct{} // closed exactly once when the read loop exits
	cancelRead context.CancelFunc
}

// Start launches the Lisp executable with its stdin piped and stderr
// merged into stdout, and begins the read loop.
func Start(binary string, opts Options) (*Process, error) {
	cmd := exec.Command(binary)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("lisp: stdin pipe: %w", err)
	}

	// One pipe for both output streams: engine error reports arrive on
	// stderr but are classified by the same reader.
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("lisp: output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, fmt.Errorf("lisp: start %s: %w", binary, err)
	}
	// The child holds the write end now; keeping ours open would stop the
	// reader from ever seeing EOF.
	pw.Close()

	p := New(stdin, pr, opts)
	p.cmd = cmd
	return p, nil
}

// New wires a Process around explicit pipes and starts its read loop.
// Used by Start and by tests that script the child over io.Pipe.
func New(stdin io.WriteCloser, stdout io.Reader, opts Options) *Process {
	opts = opts.withDefaults()
	readCtx, cancelRead := context.WithCancel(context.Background())

	p := &Process{
		log:        opts.Logger,
		rec:        opts.Recorder,
		grace:      opts.GracePeriod,
		stdin:      stdin,
		results:    make(chan Result, opts.ResultBuffer),
		done:       make(chan struct{}),
		cancelRead: cancelRead,
	}
	go p.readLoop(readCtx, stdout, opts.ScannerSize)
	return p
}

// readLoop is the single background reader: one line in, at most one
// queue entry out, until the termination sentinel or EOF.
func (p *Process) readLoop(ctx context.Context, stdout io.Reader, scannerSize int) {
	defer close(p.done)

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 4096), scannerSize)

	for scanner.Scan() {
		line := scanner.Text()
		if p.rec != nil {
			p.rec.Received(line)
		}

		res := Classify(line)
		if res.Kind == KindSentinel {
			p.log.Debug("termination sentinel observed")
			return
		}
		if !res.Kind.forwarded() {
			p.log.Debug("dropped line",
				zap.Stringer("kind", res.Kind),
				zap.String("line", line))
			continue
		}

		p.log.Debug("queued result",
			zap.Stringer("kind", res.Kind),
			zap.String("payload", res.Payload))
		select {
		case p.results <- res:
		case <-ctx.Done():
			// Shutdown gave up on the handshake; stop referencing the pipe.
			return
		}
	}
	if err := scanner.Err(); err != nil {
		p.log.Warn("output scanner failed", zap.Error(err))
	}
}

// Send writes one newline-terminated command to the child's stdin.
// Every command must be a complete expression in the child's input
// language; Send does not validate beyond formatting.
func (p *Process) Send(command string) error {
	command = strings.TrimSpace(command)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrStopped
	}
	if p.rec != nil {
		p.rec.Sent(command)
	}
	p.log.Debug("send", zap.String("command", command))
	if _, err := io.WriteString(p.stdin, command+"\n"); err != nil {
		return fmt.Errorf("lisp: write stdin: %w", err)
	}
	return nil
}

// Receive blocks for the next forwarded result. It returns ErrStopped if
// the read loop has exited with no result pending, or the context error
// on cancellation/deadline.
func (p *Process) Receive(ctx context.Context) (Result, error) {
	// Results already queued win over a concurrently closing reader.
	select {
	case res := <-p.results:
		return res, nil
	default:
	}

	select {
	case res := <-p.results:
		return res, nil
	case <-p.done:
		// A final result may have raced the shutdown; drain once more.
		select {
		case res := <-p.results:
			return res, nil
		default:
		}
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Terminate runs the cooperative shutdown handshake: ask the child to
// print the sentinel, wait for the read loop to observe it and exit (so
// no goroutine is left referencing a closed pipe), then quit the child
// and release the process handle.
//
// The handshake is bounded by ctx. On expiry the reader is cancelled and
// the child killed rather than hanging forever on a wedged process.
func (p *Process) Terminate(ctx context.Context) error {
	defer p.cancelRead()

	sendErr := p.Send(sentinelCommand)

	select {
	case <-p.done:
	case <-ctx.Done():
		// The reader may be blocked inside a pipe read; killing the child
		// closes the write end and releases it, so kill before waiting is
		// the only order that cannot hang.
		p.cancelRead()
		p.closeStdin()
		p.kill()
		return fmt.Errorf("lisp: termination handshake: %w", ctx.Err())
	}

	if sendErr == nil {
		// Reader is gone; the quit echo goes unobserved.
		_ = p.Send(quitCommand)
	}
	p.closeStdin()
	return p.waitExit()
}

// Kill abandons the child without a handshake. Used when construction
// fails partway through bootstrap.
func (p *Process) Kill() {
	p.cancelRead()
	p.closeStdin()
	p.kill()
	<-p.done
}

func (p *Process) closeStdin() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		_ = p.stdin.Close() // best effort, pipe may already be gone
	}
}

func (p *Process) kill() {
	if p.cmd == nil || p.cmd.Process == nil {
		return
	}
	_ = p.cmd.Process.Kill()
	_, _ = p.cmd.Process.Wait()
}

// waitExit reaps the child, escalating to SIGKILL if quit does not take
// effect within the grace period.
func (p *Process) waitExit() error {
	if p.cmd == nil {
		return nil
	}

	waitErr := make(chan error, 1)
	go func() { waitErr <- p.cmd.Wait() }()

	select {
	case err := <-waitErr:
		if err != nil {
			return fmt.Errorf("lisp: wait: %w", err)
		}
		return nil
	case <-time.After(p.grace):
		_ = p.cmd.Process.Kill()
		<-waitErr
		return nil
	}
}

// Done exposes read-loop termination to callers that need to confirm the
// reader has stopped (the facade's handshake tests rely on this).
func (p *Process) Done() <-chan struct{} {
	return p.done
}
