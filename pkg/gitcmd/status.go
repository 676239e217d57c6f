package gitcmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/hunkstage/pkg/procrun"
)

var errMalformedStatus = errors.New("malformed status entry")

// StatusEntry is one path from "git status --porcelain=v1".
type StatusEntry struct {
	Index    byte
	Worktree byte
	Path     string
	// OrigPath is the source of a rename or copy.
	OrigPath string
}

// Unmerged reports whether the entry is a conflict.
func (e StatusEntry) Unmerged() bool {
	switch string([]byte{e.Index, e.Worktree}) {
	case "DD", "AU", "UD", "UA", "DU", "AA", "UU":
		return true
	}

	return false
}

// Status is the parsed porcelain status.
type Status struct {
	Entries []StatusEntry
}

// Unmerged returns the conflicted paths.
func (s Status) Unmerged() []string {
	var paths []string

	for _, e := range s.Entries {
		if e.Unmerged() {
			paths = append(paths, e.Path)
		}
	}

	return paths
}

// StatusCommand runs "git status --porcelain=v1 -z".
type StatusCommand struct{}

// Args implements Command.
func (StatusCommand) Args() []string {
	return []string{"status", "--porcelain=v1", "-z", "--untracked-files=no"}
}

// Parse implements Command.
func (StatusCommand) Parse(out procrun.Output) (Status, error) {
	var status Status

	fields := strings.Split(out.Stdout, "\x00")

	for i := 0; i < len(fields); i++ {
		field := fields[i]
		if field == "" {
			continue
		}

		if len(field) < 4 || field[2] != ' ' {
			return Status{}, fmt.Errorf("%w: %q", errMalformedStatus, field)
		}

		entry := StatusEntry{Index: field[0], Worktree: field[1], Path: field[3:]}

		if entry.Index == 'R' || entry.Index == 'C' {
			if i+1 >= len(fields) || fields[i+1] == "" {
				return Status{}, fmt.Errorf("%w: %q has no source path", errMalformedStatus, field)
			}

			i++
			entry.OrigPath = fields[i]
		}

		status.Entries = append(status.Entries, entry)
	}

	return status, nil
}

// Status runs a StatusCommand.
func (g *Git) Status(ctx context.Context, dir string) (Status, error) {
	return Run[Status](ctx, g, dir, StatusCommand{})
}
