package procrun

import (
	"fmt"
	"strings"
)

// ProcessError reports a child that could not be spawned or that exited with
// a non-zero status. Stdout and Stderr hold whatever was captured.
type ProcessError struct {
	Argv     []string
	Dir      string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "run %s", strings.Join(e.Argv, " "))

	if e.Dir != "" {
		fmt.Fprintf(&sb, " (in %s)", e.Dir)
	}

	fmt.Fprintf(&sb, ": %v", e.Err)

	if e.Stdout != "" {
		fmt.Fprintf(&sb, "\nstdout:\n%s", strings.TrimRight(e.Stdout, "\n"))
	}

	if e.Stderr != "" {
		fmt.Fprintf(&sb, "\nstderr:\n%s", strings.TrimRight(e.Stderr, "\n"))
	}

	return sb.String()
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}
