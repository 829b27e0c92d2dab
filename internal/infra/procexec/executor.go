package procexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/MarcoAyalaT/Vicente/internal/domain"
)

const defaultOutputLimit = 1 << 20

// Command is one invocation of an external tool.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string // appended to the current environment
}

func (c Command) String() string {
	return fmt.Sprintf("%s %v", c.Name, c.Args)
}

// Result captures the output and timing of a finished process.
type Result struct {
	ExitCode  int
	Output    []byte // combined stdout+stderr, tail only when Truncated
	Truncated bool
	Duration  time.Duration
}

// ExitError reports a process that ran but exited non-zero.
type ExitError struct {
	Cmd  string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Cmd, e.Code)
}

// Executor runs external tools with a timeout and measures them.
type Executor struct {
	timeout     time.Duration
	outputLimit int
	log         *slog.Logger
}

// ExecutorOption allows configuring an Executor.
type ExecutorOption func(*Executor)

// WithTimeout bounds every process; zero means only the context bounds it.
func WithTimeout(timeout time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = timeout }
}

// WithOutputLimit caps how many trailing output bytes are kept.
func WithOutputLimit(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.outputLimit = n
		}
	}
}

// WithLogger mirrors every output line to the logger at debug level.
func WithLogger(l *slog.Logger) ExecutorOption {
	return func(e *Executor) { e.log = l }
}

func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{outputLimit: defaultOutputLimit}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the command and waits for it. A missing binary is a
// not_found error, a canceled or expired ctx is returned as the context
// error, the executor's own timeout is an execution error wrapping
// context.DeadlineExceeded (see IsTimeout), and a non-zero exit is an
// *ExitError with the output still in Result.
func (e *Executor) Run(ctx context.Context, c Command) (Result, error) {
	runCtx := ctx
	cancel := func() {}
	if e.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
	}
	defer cancel()

	path, err := e.LookPath(c.Name)
	if err != nil {
		return Result{ExitCode: -1}, err
	}

	out := newTailBuffer(e.outputLimit)
	var w lineWriter = out
	if e.log != nil {
		w = newLogWriter(out, e.log, c.Name)
	}

	cmd := exec.CommandContext(runCtx, path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	cmd.Stdout = w
	cmd.Stderr = w
	// Children that inherit the pipes must not keep Wait blocked after a kill.
	cmd.WaitDelay = time.Second

	start := time.Now()
	runErr := cmd.Run()
	w.Flush()

	res := Result{
		Output:    out.Bytes(),
		Truncated: out.Truncated(),
		Duration:  time.Since(start),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if runErr == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("%s: %w", c.Name, ctxErr)
	}
	if runCtx.Err() != nil {
		return res, &domain.OpError{
			Op:   "procexec.timeout",
			Kind: domain.KindExecution,
			Path: path,
			Err:  fmt.Errorf("%s timed out after %s: %w", c.Name, e.timeout, context.DeadlineExceeded),
		}
	}

	var ee *exec.ExitError
	if errors.As(runErr, &ee) {
		return res, &ExitError{Cmd: c.Name, Code: ee.ExitCode()}
	}
	return res, &domain.OpError{
		Op:   "procexec.run",
		Kind: domain.KindExecution,
		Path: path,
		Err:  runErr,
	}
}

// IsTimeout reports whether err is the executor's own timeout rather than
// the caller's context ending.
func IsTimeout(err error) bool {
	var oe *domain.OpError
	return errors.As(err, &oe) && oe.Op == "procexec.timeout"
}

// LookPath resolves a tool binary the way Run does.
func (e *Executor) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", &domain.OpError{
			Op:   "procexec.lookpath",
			Kind: domain.KindNotFound,
			Path: name,
			Err:  err,
		}
	}
	return path, nil
}
