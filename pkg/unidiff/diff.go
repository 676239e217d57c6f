// Package unidiff parses git unified and combined diff text into an
// immutable model of files, hunks and lines, and carries per-hunk staging
// intent as a copy-on-write overlay on that model.
//
// Parsing is lossless: every FileDiff keeps the exact text it was parsed
// from, and joining the file texts with newlines reproduces the input after
// its preamble (leading "* Unmerged path" advisories or commit headers).
package unidiff

import (
	"slices"
	"strings"
)

// unmergedPrefix starts the advisory lines git prints for conflicted paths.
const unmergedPrefix = "* Unmerged path "

// Diff is an ordered sequence of file diffs parsed from one diff text.
// Diff values are immutable; staging operations return new values.
type Diff struct {
	raw      string
	preamble string
	files    []FileDiff
	unmerged []string
}

// Parse parses the output of git diff or git show. It fails with a
// *ParseError when raw is empty or holds no file diff block.
func Parse(raw string) (Diff, error) {
	if raw == "" {
		return Diff{}, &ParseError{Reason: ErrEmptyInput}
	}

	lines := strings.Split(raw, "\n")

	first := -1

	for i, line := range lines {
		if isBlockStart(line) {
			first = i

			break
		}
	}

	if first < 0 {
		return Diff{}, &ParseError{Reason: ErrNoFileBlocks, Size: len(raw)}
	}

	d := Diff{raw: raw}

	if first > 0 {
		d.preamble = strings.Join(lines[:first], "\n") + "\n"
		d.unmerged = unmergedPaths(lines[:first])
	}

	start := first
	for i := first + 1; i <= len(lines); i++ {
		if i < len(lines) && !isBlockStart(lines[i]) {
			continue
		}

		d.files = append(d.files, ParseFileDiff(strings.Join(lines[start:i], "\n")))
		start = i
	}

	return d, nil
}

func isBlockStart(line string) bool {
	return strings.HasPrefix(line, gitHeaderPrefix) ||
		strings.HasPrefix(line, ccHeaderPrefix) ||
		strings.HasPrefix(line, combinedHeaderPrefix)
}

func unmergedPaths(lines []string) []string {
	var paths []string

	for _, line := range lines {
		if path, ok := strings.CutPrefix(line, unmergedPrefix); ok {
			paths = append(paths, unquotePath(path))
		}
	}

	return paths
}

// Raw returns the original text, preamble included.
func (d Diff) Raw() string { return d.raw }

// Preamble returns the text stripped before the first file block, with its
// trailing newline. Preamble() + Body() == Raw().
func (d Diff) Preamble() string { return d.preamble }

// Body returns the text of the file blocks, equal to their raws joined by "\n".
func (d Diff) Body() string { return d.raw[len(d.preamble):] }

// UnmergedPaths returns the paths named by "* Unmerged path" advisories.
func (d Diff) UnmergedPaths() []string { return slices.Clone(d.unmerged) }

// Files returns a copy of the file diff list.
func (d Diff) Files() []FileDiff { return slices.Clone(d.files) }

// FileCount returns the number of file diffs.
func (d Diff) FileCount() int { return len(d.files) }

// File returns the i-th file diff.
func (d Diff) File(i int) FileDiff { return d.files[i] }

// IsZero reports whether d is the zero Diff, as returned for empty output.
func (d Diff) IsZero() bool { return d.raw == "" && len(d.files) == 0 }
