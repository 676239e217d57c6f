// Package stager turns hunk-level staging decisions on a parsed diff into
// index updates, either by scripting git's interactive patch mode or by
// applying a rendered partial patch to the index.
package stager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/hunkstage/pkg/gitcmd"
	"github.com/Sumatoshi-tech/hunkstage/pkg/opqueue"
	"github.com/Sumatoshi-tech/hunkstage/pkg/procrun"
	"github.com/Sumatoshi-tech/hunkstage/pkg/unidiff"
)

const tracerName = "hunkstage/stager"

// Backend selects how decisions reach the index.
type Backend string

const (
	// BackendPatch scripts "git add --patch" / "git reset --patch".
	BackendPatch Backend = "patch"
	// BackendApply pipes Diff.StagedPatch to "git apply --cached".
	BackendApply Backend = "apply"
)

// Session outcomes reported to the Recorder.
const (
	StatusOK       = "ok"
	StatusNoop     = "noop"
	StatusMismatch = "mismatch"
	StatusError    = "error"
)

const (
	opStage   = "stage"
	opUnstage = "unstage"
)

// Options configures a Stager.
type Options struct {
	Backend Backend
	// Terminator ends a patch session after the last scripted answer.
	Terminator string
	// VerifyPrompts runs a dry session that declines every prompt and
	// compares git's prompts with the parsed chunks before the real run.
	// With BackendApply it runs "git apply --check" first instead.
	VerifyPrompts bool
	// CrossCheck compares hunk counts with an independent parser first.
	CrossCheck bool
}

// Recorder receives one observation per session.
type Recorder interface {
	RecordSession(ctx context.Context, op, backend, status string, selected, total int, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordSession(context.Context, string, string, string, int, int, time.Duration) {}

// Result describes a finished session.
type Result struct {
	Backend Backend
	// Responses is the script sent to git; empty for BackendApply.
	Responses []string
	// Prompts is the number of prompts git asked in the real session.
	Prompts  int
	Selected int
	Total    int
	Output   procrun.Output
}

// Stager applies staging decisions to a repository.
type Stager struct {
	git      *gitcmd.Git
	queue    *opqueue.Queue
	opts     Options
	logger   *slog.Logger
	tracer   trace.Tracer
	recorder Recorder
}

// Option configures optional collaborators.
type Option func(*Stager)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stager) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Stager) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithRecorder sets the session metrics recorder.
func WithRecorder(rec Recorder) Option {
	return func(s *Stager) {
		if rec != nil {
			s.recorder = rec
		}
	}
}

// New creates a Stager. An empty backend means BackendPatch.
func New(git *gitcmd.Git, queue *opqueue.Queue, opts Options, options ...Option) *Stager {
	if opts.Backend == "" {
		opts.Backend = BackendPatch
	}

	s := &Stager{
		git:      git,
		queue:    queue,
		opts:     opts,
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
		recorder: nopRecorder{},
	}

	for _, opt := range options {
		opt(s)
	}

	return s
}

// Stage adds the included chunks of d, a diff of the work tree against the
// index, to the index of the repository in dir.
func (s *Stager) Stage(ctx context.Context, dir string, d unidiff.Diff) (Result, error) {
	return s.run(ctx, opStage, dir, d)
}

// Unstage removes the included chunks of d, a diff of the index against
// HEAD, from the index of the repository in dir.
func (s *Stager) Unstage(ctx context.Context, dir string, d unidiff.Diff) (Result, error) {
	return s.run(ctx, opUnstage, dir, d)
}

func (s *Stager) run(ctx context.Context, op, dir string, d unidiff.Diff) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "stager."+op, trace.WithAttributes(
		attribute.String("stager.backend", string(s.opts.Backend)),
		attribute.Int("stager.hunks", d.ChunkCount()),
		attribute.Int("stager.selected", d.StagedCount()),
	))
	defer span.End()

	start := time.Now()
	res := Result{Backend: s.opts.Backend, Selected: d.StagedCount(), Total: d.ChunkCount()}

	err := s.session(ctx, op, dir, d, &res)

	status := sessionStatus(res, err)
	s.recorder.RecordSession(ctx, op, string(s.opts.Backend), status, res.Selected, res.Total, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
		s.logger.WarnContext(ctx, op+" failed", "dir", dir, "status", status, "error", err)

		return res, err
	}

	s.logger.InfoContext(ctx, op+" finished",
		"dir", dir, "selected", res.Selected, "hunks", res.Total, "prompts", res.Prompts)

	return res, nil
}

func sessionStatus(res Result, err error) string {
	switch {
	case errors.Is(err, ErrPromptMismatch):
		return StatusMismatch
	case err != nil:
		return StatusError
	case res.Selected == 0:
		return StatusNoop
	default:
		return StatusOK
	}
}

func (s *Stager) session(ctx context.Context, op, dir string, d unidiff.Diff, res *Result) error {
	if err := checkMergeable(d); err != nil {
		return err
	}

	if s.opts.CrossCheck {
		if err := unidiff.CrossCheck(d); err != nil {
			return err
		}
	}

	if s.opts.Backend == BackendPatch {
		if err := checkWholeHunks(d); err != nil {
			return err
		}
	}

	if res.Selected == 0 {
		return nil
	}

	return s.queue.Do(ctx, opqueue.KindIndex, dir, func(ctx context.Context) error {
		status, err := s.git.Status(ctx, dir)
		if err != nil {
			return err
		}

		if unmerged := status.Unmerged(); len(unmerged) > 0 {
			return fmt.Errorf("%w: %s", ErrUnmergedPaths, strings.Join(unmerged, ", "))
		}

		if s.opts.Backend == BackendApply {
			return s.apply(ctx, op, dir, d, res)
		}

		return s.patch(ctx, op, dir, d, res)
	})
}

func checkMergeable(d unidiff.Diff) error {
	if paths := d.UnmergedPaths(); len(paths) > 0 {
		return fmt.Errorf("%w: %s", ErrUnmergedPaths, strings.Join(paths, ", "))
	}

	for _, f := range d.Files() {
		if f.IsCombined() {
			return fmt.Errorf("%w: %s has a combined diff", ErrUnmergedPaths, f.FilePathDisplay())
		}
	}

	return nil
}

func checkWholeHunks(d unidiff.Diff) error {
	ids := d.LineSelections()
	if len(ids) == 0 {
		return nil
	}

	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = d.File(id.File).FilePathDisplay() + ":" + strconv.Itoa(id.Chunk+1)
	}

	return fmt.Errorf("%w: %s", ErrLineSelectionNeedsApply, strings.Join(names, ", "))
}

func (s *Stager) patch(ctx context.Context, op, dir string, d unidiff.Diff, res *Result) error {
	script := Script(d, s.opts.Terminator)
	paths := sessionPaths(d)
	want := expectedPrompts(d)

	if s.opts.VerifyPrompts {
		dry, err := s.interact(ctx, op, dir, refusals(script, s.opts.Terminator), paths)
		if err != nil {
			return fmt.Errorf("verification session: %w", err)
		}

		if err := comparePrompts(want, dry.Prompts); err != nil {
			return err
		}
	}

	session, err := s.interact(ctx, op, dir, script, paths)
	if err != nil {
		return err
	}

	res.Responses = script
	res.Prompts = len(session.Prompts)
	res.Output = session.Output

	if s.opts.VerifyPrompts {
		if err := comparePrompts(want, session.Prompts); err != nil {
			return fmt.Errorf("after session: %w", err)
		}
	}

	return nil
}

func (s *Stager) interact(ctx context.Context, op, dir string, responses, paths []string) (gitcmd.PatchSession, error) {
	if op == opUnstage {
		return s.git.ResetPatch(ctx, dir, gitcmd.ResetPatchCommand{Responses: responses, Paths: paths})
	}

	return s.git.AddPatch(ctx, dir, gitcmd.AddPatchCommand{Responses: responses, Paths: paths})
}

func comparePrompts(want []string, got []gitcmd.Prompt) error {
	kinds := promptKinds(got)
	if slices.Equal(want, kinds) {
		return nil
	}

	return fmt.Errorf("%w: expected %d (%s), git asked %d (%s)",
		ErrPromptMismatch, len(want), strings.Join(want, " "), len(kinds), strings.Join(kinds, " "))
}

func (s *Stager) apply(ctx context.Context, op, dir string, d unidiff.Diff, res *Result) error {
	cmd := gitcmd.ApplyCachedCommand{Patch: d.StagedPatch(), Reverse: op == opUnstage}
	if cmd.Patch == "" {
		return nil
	}

	if s.opts.VerifyPrompts {
		check := cmd
		check.Check = true

		if _, err := s.git.ApplyCached(ctx, dir, check); err != nil {
			return fmt.Errorf("check patch: %w", err)
		}
	}

	out, err := s.git.ApplyCached(ctx, dir, cmd)
	if err != nil {
		return err
	}

	res.Output = out

	return nil
}
