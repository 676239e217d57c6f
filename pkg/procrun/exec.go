package procrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	tracerName = "hunkstage/procrun"

	// defaultWaitDelay bounds how long Wait keeps reading output after the
	// child exits or is killed, in case a grandchild still holds the pipes.
	defaultWaitDelay = 5 * time.Second

	exitUnknown = -1
)

// ExecRunner runs invocations with os/exec.
type ExecRunner struct {
	logger    *slog.Logger
	tracer    trace.Tracer
	recorder  Recorder
	waitDelay time.Duration
}

// Option configures an ExecRunner.
type Option func(*ExecRunner)

// WithLogger sets the logger. Invocations are logged at debug level and
// failures at warn level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *ExecRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracer sets the tracer used for the per-invocation span.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *ExecRunner) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// WithRecorder sets the process metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *ExecRunner) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithWaitDelay overrides how long output is drained after the child exits.
func WithWaitDelay(d time.Duration) Option {
	return func(r *ExecRunner) {
		r.waitDelay = d
	}
}

// NewExecRunner creates an ExecRunner using the global tracer and the default
// logger unless overridden.
func NewExecRunner(opts ...Option) *ExecRunner {
	r := &ExecRunner{
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
		recorder:  nopRecorder{},
		waitDelay: defaultWaitDelay,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run spawns inv, writes its inputs to standard input in a single write and
// closes it, then waits for exit with both output streams read to the end.
// A non-zero exit or spawn failure yields a *ProcessError. Cancelling ctx
// kills the child, which also surfaces as a *ProcessError.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (Output, error) {
	ctx, span := r.tracer.Start(ctx, "procrun.Run", trace.WithAttributes(
		attribute.String("process.executable.name", inv.Name),
		attribute.StringSlice("process.command_args", inv.Args),
		attribute.Int("process.inputs", len(inv.Inputs)),
	))
	defer span.End()

	r.logger.DebugContext(ctx, "run process",
		"argv", inv.Argv(), "dir", inv.Dir, "inputs", len(inv.Inputs))

	start := time.Now()
	out, err := r.run(ctx, inv)
	elapsed := time.Since(start)

	exitCode := 0

	var procErr *ProcessError
	if errors.As(err, &procErr) {
		exitCode = procErr.ExitCode
	}

	r.recorder.RecordProcess(ctx, inv.Name, exitCode, elapsed)
	span.SetAttributes(attribute.Int("process.exit.code", exitCode))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "process failed")
		r.logger.WarnContext(ctx, "process failed",
			"argv", inv.Argv(), "exit_code", exitCode, "duration", elapsed)

		return Output{}, err
	}

	r.logger.DebugContext(ctx, "process finished",
		"argv", inv.Argv(), "duration", elapsed,
		"stdout_bytes", len(out.Stdout), "stderr_bytes", len(out.Stderr))

	return out, nil
}

func (r *ExecRunner) run(ctx context.Context, inv Invocation) (Output, error) {
	var stdout, stderr bytes.Buffer

	fail := func(code int, err error) error {
		return &ProcessError{
			Argv:     inv.Argv(),
			Dir:      inv.Dir,
			ExitCode: code,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = r.waitDelay

	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return Output{}, fail(exitUnknown, fmt.Errorf("open stdin: %w", err))
	}

	err = cmd.Start()
	if err != nil {
		return Output{}, fail(exitUnknown, fmt.Errorf("start: %w", err))
	}

	// The output copiers started with the process; stdin is fed alongside Wait.
	var g errgroup.Group

	g.Go(func() error {
		return writeInputs(stdin, inv.Inputs)
	})

	waitErr := cmd.Wait()
	writeErr := g.Wait()

	if waitErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			waitErr = errors.Join(waitErr, ctxErr)
		}

		return Output{}, fail(exitCodeOf(waitErr), waitErr)
	}

	if writeErr != nil {
		r.logger.DebugContext(ctx, "stdin write incomplete", "argv", inv.Argv(), "error", writeErr)
	}

	return Output{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}

// writeInputs writes every input followed by a newline in one write and
// closes w. A child that exits without reading is not an error here.
func writeInputs(w io.WriteCloser, inputs []string) error {
	var writeErr error

	if len(inputs) > 0 {
		_, writeErr = io.WriteString(w, strings.Join(inputs, "\n")+"\n")
	}

	closeErr := w.Close()

	return errors.Join(ignoreClosedPipe(writeErr), ignoreClosedPipe(closeErr))
}

func ignoreClosedPipe(err error) error {
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) {
		return nil
	}

	return err
}

func exitCodeOf(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	return exitUnknown
}
