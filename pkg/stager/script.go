package stager

import (
	"github.com/Sumatoshi-tech/hunkstage/pkg/gitcmd"
	"github.com/Sumatoshi-tech/hunkstage/pkg/unidiff"
)

const (
	promptMode = "mode"
	promptHunk = "hunk"
)

// Script returns the responses for a patch-mode session over d, followed by
// terminator when it is non-empty. It is StageStrings with one extra answer
// in front of each file whose mode changed, since git asks about the mode
// before that file's hunks. The mode change is accepted when any chunk of
// the file is included.
func Script(d unidiff.Diff, terminator string) []string {
	out := make([]string, 0, d.ChunkCount()+1)
	stages := d.StageStrings()
	next := 0

	for _, f := range d.Files() {
		n := f.ChunkCount()
		answers := stages[next : next+n]
		next += n

		if f.HasModeChange() {
			mode := unidiff.ResponseNo

			for _, a := range answers {
				if a == unidiff.ResponseYes {
					mode = unidiff.ResponseYes

					break
				}
			}

			out = append(out, mode)
		}

		out = append(out, answers...)
	}

	if terminator != "" {
		out = append(out, terminator)
	}

	return out
}

// expectedPrompts lists the prompt kinds git should ask for d, in order.
func expectedPrompts(d unidiff.Diff) []string {
	var out []string

	for _, f := range d.Files() {
		if f.HasModeChange() {
			out = append(out, promptMode)
		}

		for range f.ChunkCount() {
			out = append(out, promptHunk)
		}
	}

	return out
}

func promptKinds(prompts []gitcmd.Prompt) []string {
	out := make([]string, len(prompts))

	for i, p := range prompts {
		if p.Subject == "mode change" {
			out[i] = promptMode
		} else {
			out[i] = promptHunk
		}
	}

	return out
}

// refusals answers every prompt of script with "no", keeping the terminator.
func refusals(script []string, terminator string) []string {
	out := make([]string, len(script))

	for i := range script {
		out[i] = unidiff.ResponseNo
	}

	if terminator != "" && len(out) > 0 {
		out[len(out)-1] = terminator
	}

	return out
}

// sessionPaths returns the literal paths touched by d, sources of renames included.
func sessionPaths(d unidiff.Diff) []string {
	var paths []string

	seen := make(map[string]bool)
	add := func(p string) {
		if p != "" && p != "/dev/null" && !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, f := range d.Files() {
		add(f.FilePathDisplay())
		add(f.OldPath())
	}

	return paths
}
