package stager_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hunkstage/pkg/procrun"
	"github.com/Sumatoshi-tech/hunkstage/pkg/unidiff"
)

func joinLines(lines ...string) string {
	return strings.Join(lines, "\n")
}

var twoHunkFile = joinLines(
	"diff --git a/main.go b/main.go",
	"index 83db48f..bf269f4 100644",
	"--- a/main.go",
	"+++ b/main.go",
	"@@ -1,3 +1,3 @@",
	" package main",
	"-var a = 1",
	"+var a = 2",
	" ",
	"@@ -10,2 +10,3 @@ func helper() {",
	" 	x := 1",
	"+	y := 2",
	" 	return",
)

var modeChangeFile = joinLines(
	"diff --git a/run.sh b/run.sh",
	"old mode 100644",
	"new mode 100755",
	"index 3b18e51..e69de29",
	"--- a/run.sh",
	"+++ b/run.sh",
	"@@ -1 +1 @@",
	"-echo hi",
	"+echo hello",
)

var renamedFile = joinLines(
	"diff --git a/old_name.txt b/new_name.txt",
	"similarity index 90%",
	"rename from old_name.txt",
	"rename to new_name.txt",
	"--- a/old_name.txt",
	"+++ b/new_name.txt",
	"@@ -1,2 +1,2 @@",
	" keep",
	"-before",
	"+after",
)

var combinedFile = joinLines(
	"diff --cc conflict.txt",
	"index 1234567,89abcde..0000000",
	"--- a/conflict.txt",
	"+++ b/conflict.txt",
	"@@@ -1,1 -1,1 +1,2 @@@",
	"++ours",
	"++theirs",
)

func mustParse(t *testing.T, raw string) unidiff.Diff {
	t.Helper()

	d, err := unidiff.Parse(raw)
	require.NoError(t, err)

	return d
}

const hunkPrompt = "(1/1) Stage this hunk [y,n,q,a,d,e,p,?]? "

// fakeGit answers git invocations by subcommand.
type fakeGit struct {
	calls   []procrun.Invocation
	outputs map[string]procrun.Output
	errs    map[string]error
}

func newFakeGit() *fakeGit {
	return &fakeGit{outputs: map[string]procrun.Output{}, errs: map[string]error{}}
}

func (f *fakeGit) Run(_ context.Context, inv procrun.Invocation) (procrun.Output, error) {
	f.calls = append(f.calls, inv)
	sub := subcommand(inv)

	return f.outputs[sub], f.errs[sub]
}

func subArgs(inv procrun.Invocation) []string {
	args := inv.Args
	for len(args) >= 2 && args[0] == "-c" {
		args = args[2:]
	}

	return args
}

func subcommand(inv procrun.Invocation) string {
	args := subArgs(inv)
	if len(args) == 0 {
		return ""
	}

	return args[0]
}

func (f *fakeGit) callsTo(sub string) []procrun.Invocation {
	var out []procrun.Invocation

	for _, c := range f.calls {
		if subcommand(c) == sub {
			out = append(out, c)
		}
	}

	return out
}

type sessionRecord struct {
	op, backend, status string
	selected, total     int
}

type fakeRecorder struct {
	sessions []sessionRecord
}

func (f *fakeRecorder) RecordSession(
	_ context.Context, op, backend, status string, selected, total int, _ time.Duration,
) {
	f.sessions = append(f.sessions, sessionRecord{op, backend, status, selected, total})
}
