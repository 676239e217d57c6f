package gitcmd

import (
	"context"
	"regexp"
	"strings"

	"github.com/Sumatoshi-tech/hunkstage/pkg/procrun"
)

// promptPattern matches the question git asks before each hunk in patch
// mode, e.g. "(2/3) Stage this hunk [y,n,q,a,d,j,J,g,/,e,p,?]? ". Older
// versions omit the "(k/n) " counter.
var promptPattern = regexp.MustCompile(
	`(?:\((\d+)/(\d+)\) )?(Stage|Unstage|Apply|Discard) (this hunk|mode change|deletion|addition)[^\[\n]*\[[a-zA-Z,/?]+\]\?`,
)

const noChangesMessage = "No changes."

// Prompt is one question asked during a patch session.
type Prompt struct {
	Verb    string
	Subject string
}

// PatchSession is the outcome of an interactive patch-mode run.
type PatchSession struct {
	Prompts []Prompt
	Output  procrun.Output
}

// CountPrompts returns the patch-mode prompts found in text, in order.
func CountPrompts(text string) []Prompt {
	matches := promptPattern.FindAllStringSubmatch(text, -1)
	prompts := make([]Prompt, 0, len(matches))

	for _, m := range matches {
		prompts = append(prompts, Prompt{Verb: m[3], Subject: m[4]})
	}

	return prompts
}

func parseSession(out procrun.Output) (PatchSession, error) {
	prompts := CountPrompts(out.Stdout)
	prompts = append(prompts, CountPrompts(out.Stderr)...)

	if len(prompts) == 0 && (strings.Contains(out.Stdout, noChangesMessage) || strings.Contains(out.Stderr, noChangesMessage)) {
		return PatchSession{Output: out}, ErrNoChanges
	}

	return PatchSession{Prompts: prompts, Output: out}, nil
}

// AddPatchCommand runs "git add --patch", answering each prompt in turn with
// Responses.
type AddPatchCommand struct {
	Responses []string
	Paths     []string
}

// Args implements Command.
func (c AddPatchCommand) Args() []string {
	return withPaths([]string{"add", "--patch"}, c.Paths)
}

// Inputs implements Scripted.
func (c AddPatchCommand) Inputs() []string { return c.Responses }

// Parse implements Command.
func (c AddPatchCommand) Parse(out procrun.Output) (PatchSession, error) {
	return parseSession(out)
}

// ResetPatchCommand runs "git reset --patch", removing hunks from the index.
type ResetPatchCommand struct {
	Responses []string
	Paths     []string
}

// Args implements Command.
func (c ResetPatchCommand) Args() []string {
	return withPaths([]string{"reset", "--patch"}, c.Paths)
}

// Inputs implements Scripted.
func (c ResetPatchCommand) Inputs() []string { return c.Responses }

// Parse implements Command.
func (c ResetPatchCommand) Parse(out procrun.Output) (PatchSession, error) {
	return parseSession(out)
}

// ApplyCachedCommand applies a patch read from standard input to the index.
type ApplyCachedCommand struct {
	Patch   string
	Reverse bool
	// Check validates the patch without touching the index.
	Check bool
}

// Args implements Command.
func (c ApplyCachedCommand) Args() []string {
	args := []string{"apply", "--cached", "--whitespace=nowarn"}

	if c.Reverse {
		args = append(args, "--reverse")
	}

	if c.Check {
		args = append(args, "--check")
	}

	return append(args, "-")
}

// Inputs implements Scripted. The harness terminates the last line itself.
func (c ApplyCachedCommand) Inputs() []string {
	if c.Patch == "" {
		return nil
	}

	return []string{strings.TrimSuffix(c.Patch, "\n")}
}

// Parse implements Command.
func (c ApplyCachedCommand) Parse(out procrun.Output) (procrun.Output, error) {
	return out, nil
}

func withPaths(args, paths []string) []string {
	if len(paths) == 0 {
		return args
	}

	args = append(args, "--")

	return append(args, literal(paths)...)
}

// AddPatch runs an AddPatchCommand.
func (g *Git) AddPatch(ctx context.Context, dir string, cmd AddPatchCommand) (PatchSession, error) {
	return Run[PatchSession](ctx, g, dir, cmd)
}

// ResetPatch runs a ResetPatchCommand.
func (g *Git) ResetPatch(ctx context.Context, dir string, cmd ResetPatchCommand) (PatchSession, error) {
	return Run[PatchSession](ctx, g, dir, cmd)
}

// ApplyCached runs an ApplyCachedCommand.
func (g *Git) ApplyCached(ctx context.Context, dir string, cmd ApplyCachedCommand) (procrun.Output, error) {
	return Run[procrun.Output](ctx, g, dir, cmd)
}
