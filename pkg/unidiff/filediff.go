package unidiff

import (
	"slices"
	"strconv"
	"strings"
)

// File block header prefixes.
const (
	gitHeaderPrefix      = "diff --git "
	ccHeaderPrefix       = "diff --cc "
	combinedHeaderPrefix = "diff --combined "
)

// Extended header and from/to markers.
const (
	fromFilePrefix    = "--- "
	toFilePrefix      = "+++ "
	renameFromPrefix  = "rename from "
	renameToPrefix    = "rename to "
	copyFromPrefix    = "copy from "
	copyToPrefix      = "copy to "
	newFilePrefix     = "new file mode "
	deletedFilePrefix = "deleted file mode "
	oldModePrefix     = "old mode "
	binaryFilesPrefix = "Binary files "
	binaryPatchLine   = "GIT binary patch"
	srcPrefix         = "a/"
	dstPrefix         = "b/"
	devNull           = "/dev/null"
)

// FileDiff is the diff block of one file. FileDiffs are immutable values.
type FileDiff struct {
	raw      string
	header   string
	extended []string
	fromTo   []string
	chunks   []Chunk
}

// ParseFileDiff parses one file block, starting at its "diff ..." header
// line. It never fails: text that does not follow the expected layout ends
// up in the header sections and the chunk list stays empty.
func ParseFileDiff(raw string) FileDiff {
	lines := strings.Split(raw, "\n")
	fd := FileDiff{raw: raw, header: lines[0]}

	i := 1
	for i < len(lines) && !isHunkStart(lines[i]) && !isFromToLine(lines[i]) {
		fd.extended = append(fd.extended, lines[i])
		i++
	}

	for i < len(lines) && !isHunkStart(lines[i]) {
		fd.fromTo = append(fd.fromTo, lines[i])
		i++
	}

	for i < len(lines) {
		end := i + 1
		for end < len(lines) && !isHunkStart(lines[end]) {
			end++
		}

		fd.chunks = append(fd.chunks, ParseChunk(strings.Join(lines[i:end], "\n")))
		i = end
	}

	return fd
}

func isHunkStart(line string) bool {
	return strings.HasPrefix(line, hunkPrefix)
}

func isFromToLine(line string) bool {
	return strings.HasPrefix(line, fromFilePrefix) || strings.HasPrefix(line, toFilePrefix)
}

// Raw returns the exact text of the block.
func (f FileDiff) Raw() string { return f.raw }

// Header returns the "diff ..." line.
func (f FileDiff) Header() string { return f.header }

// ExtendedHeaderLines returns a copy of the metadata lines between the
// header and the from/to lines.
func (f FileDiff) ExtendedHeaderLines() []string { return slices.Clone(f.extended) }

// FromFileToFileLines returns a copy of the "---"/"+++" lines.
func (f FileDiff) FromFileToFileLines() []string { return slices.Clone(f.fromTo) }

// Chunks returns a copy of the chunk list.
func (f FileDiff) Chunks() []Chunk { return slices.Clone(f.chunks) }

// ChunkCount returns the number of chunks.
func (f FileDiff) ChunkCount() int { return len(f.chunks) }

// Chunk returns the i-th chunk.
func (f FileDiff) Chunk(i int) Chunk { return f.chunks[i] }

// Reconstruct joins the parsed sections back into diff text. For any block
// produced by ParseFileDiff it equals Raw.
func (f FileDiff) Reconstruct() string {
	parts := make([]string, 0, 1+len(f.extended)+len(f.fromTo)+len(f.chunks))
	parts = append(parts, f.header)
	parts = append(parts, f.extended...)
	parts = append(parts, f.fromTo...)

	for _, c := range f.chunks {
		parts = append(parts, c.raw)
	}

	return strings.Join(parts, "\n")
}

// IsCombined reports whether the block is a combined (merge) diff.
func (f FileDiff) IsCombined() bool {
	return strings.HasPrefix(f.header, ccHeaderPrefix) || strings.HasPrefix(f.header, combinedHeaderPrefix)
}

// IsNew reports whether the file is created by the diff.
func (f FileDiff) IsNew() bool { return f.hasExtended(newFilePrefix) }

// IsDeleted reports whether the file is deleted by the diff.
func (f FileDiff) IsDeleted() bool { return f.hasExtended(deletedFilePrefix) }

// IsRename reports whether the diff renames the file.
func (f FileDiff) IsRename() bool { return f.hasExtended(renameFromPrefix) }

// HasModeChange reports whether the diff changes the file mode.
func (f FileDiff) HasModeChange() bool { return f.hasExtended(oldModePrefix) }

// IsBinary reports whether the diff carries binary content.
func (f FileDiff) IsBinary() bool {
	for _, line := range f.extended {
		line = trimCR(line)
		if strings.HasPrefix(line, binaryFilesPrefix) || line == binaryPatchLine {
			return true
		}
	}

	return false
}

func (f FileDiff) hasExtended(prefix string) bool {
	_, ok := f.extendedValue(prefix)

	return ok
}

func (f FileDiff) extendedValue(prefix string) (string, bool) {
	for _, line := range f.extended {
		if value, ok := strings.CutPrefix(trimCR(line), prefix); ok {
			return value, true
		}
	}

	return "", false
}

func (f FileDiff) fromToValue(prefix, side string) (string, bool) {
	for _, line := range f.fromTo {
		value, ok := strings.CutPrefix(line, prefix)
		if !ok {
			continue
		}

		value = unquotePath(strings.TrimRight(trimCR(value), "\t"))
		if value == devNull {
			return "", false
		}

		return strings.TrimPrefix(value, side), true
	}

	return "", false
}

// FilePathDisplay returns the path shown for the block: the destination
// side of "diff --git a/P b/Q", or the path of "diff --cc P".
func (f FileDiff) FilePathDisplay() string {
	if path, ok := f.combinedPath(); ok {
		return path
	}

	rest, ok := strings.CutPrefix(trimCR(f.header), gitHeaderPrefix)
	if !ok {
		return ""
	}

	if _, dst, ok := splitGitPaths(rest); ok {
		return dst
	}

	for _, prefix := range []string{renameToPrefix, copyToPrefix} {
		if value, ok := f.extendedValue(prefix); ok {
			return unquotePath(value)
		}
	}

	if value, ok := f.fromToValue(toFilePrefix, dstPrefix); ok {
		return value
	}

	if i := strings.LastIndex(rest, " "+dstPrefix); i >= 0 {
		return rest[i+1+len(dstPrefix):]
	}

	return rest
}

// OldPath returns the source path of the block. It equals FilePathDisplay
// unless the file was renamed or copied.
func (f FileDiff) OldPath() string {
	if path, ok := f.combinedPath(); ok {
		return path
	}

	rest, ok := strings.CutPrefix(trimCR(f.header), gitHeaderPrefix)
	if !ok {
		return ""
	}

	if src, _, ok := splitGitPaths(rest); ok {
		return src
	}

	for _, prefix := range []string{renameFromPrefix, copyFromPrefix} {
		if value, ok := f.extendedValue(prefix); ok {
			return unquotePath(value)
		}
	}

	if value, ok := f.fromToValue(fromFilePrefix, srcPrefix); ok {
		return value
	}

	if i := strings.LastIndex(rest, " "+dstPrefix); i >= 0 {
		return strings.TrimPrefix(rest[:i], srcPrefix)
	}

	return rest
}

func (f FileDiff) combinedPath() (string, bool) {
	for _, prefix := range []string{ccHeaderPrefix, combinedHeaderPrefix} {
		if path, ok := strings.CutPrefix(trimCR(f.header), prefix); ok {
			return unquotePath(path), true
		}
	}

	return "", false
}

// trimCR drops the carriage return left on lines of CRLF input.
func trimCR(line string) string {
	return strings.TrimSuffix(line, "\r")
}

// splitGitPaths splits the "a/P b/Q" part of a git header when it can be
// done without ambiguity: both sides quoted, or identical unquoted paths.
func splitGitPaths(rest string) (src, dst string, ok bool) {
	if strings.HasPrefix(rest, `"`) {
		first, remainder, found := readQuoted(rest)
		if !found || !strings.HasPrefix(remainder, " ") {
			return "", "", false
		}

		second := strings.TrimPrefix(remainder, " ")
		if strings.HasPrefix(second, `"`) {
			second, _, found = readQuoted(second)
			if !found {
				return "", "", false
			}
		}

		return strings.TrimPrefix(first, srcPrefix), strings.TrimPrefix(second, dstPrefix), true
	}

	if strings.HasSuffix(rest, `"`) {
		if i := strings.LastIndex(rest, ` "`); i >= 0 {
			second, _, found := readQuoted(rest[i+1:])
			if found {
				return strings.TrimPrefix(rest[:i], srcPrefix), strings.TrimPrefix(second, dstPrefix), true
			}
		}
	}

	// "a/P b/P": both halves have the same length.
	const fixed = len(srcPrefix) + 1 + len(dstPrefix)
	if len(rest) < fixed || (len(rest)-fixed)%2 != 0 {
		return "", "", false
	}

	n := (len(rest) - fixed) / 2
	left := rest[:len(srcPrefix)+n]
	right := rest[len(srcPrefix)+n+1:]

	if !strings.HasPrefix(left, srcPrefix) || !strings.HasPrefix(right, dstPrefix) {
		return "", "", false
	}

	if left[len(srcPrefix):] != right[len(dstPrefix):] {
		return "", "", false
	}

	return left[len(srcPrefix):], right[len(dstPrefix):], true
}

// readQuoted reads one C-style quoted token from the start of s.
func readQuoted(s string) (value, remainder string, ok bool) {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			unquoted, err := strconv.Unquote(s[:i+1])
			if err != nil {
				return "", "", false
			}

			return unquoted, s[i+1:], true
		}
	}

	return "", "", false
}

// unquotePath removes git's C-style quoting when present.
func unquotePath(path string) string {
	if len(path) < 2 || path[0] != '"' {
		return path
	}

	value, remainder, ok := readQuoted(path)
	if !ok || remainder != "" {
		return path
	}

	return value
}

// withChunk returns a copy of the file diff with chunk i replaced.
func (f FileDiff) withChunk(i int, c Chunk) FileDiff {
	chunks := slices.Clone(f.chunks)
	chunks[i] = c
	f.chunks = chunks

	return f
}

// withAllStages returns a copy of the file diff with every chunk set to s.
func (f FileDiff) withAllStages(s Stage) FileDiff {
	chunks := make([]Chunk, len(f.chunks))
	for i, c := range f.chunks {
		chunks[i] = c.WithStage(s)
	}

	f.chunks = chunks

	return f
}
