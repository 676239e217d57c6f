package unidiff

import "strings"

// LineKind classifies one physical line of a hunk.
type LineKind int

const (
	// LineHeader is the "@@ ... @@" hunk header line.
	LineHeader LineKind = iota
	// LineUnchanged is a context line present in both versions.
	LineUnchanged
	// LineAdded is present only in the resulting file.
	LineAdded
	// LineRemoved is present only in a source file.
	LineRemoved
	// LineNoNewline is the "\ No newline at end of file" marker.
	LineNoNewline
)

// Marker characters used in hunk bodies.
const (
	markerContext   = ' '
	markerAdded     = '+'
	markerRemoved   = '-'
	markerNoNewline = '\\'
	hunkPrefix      = "@@"
)

// String returns a short name for the kind.
func (k LineKind) String() string {
	switch k {
	case LineHeader:
		return "header"
	case LineUnchanged:
		return "unchanged"
	case LineAdded:
		return "added"
	case LineRemoved:
		return "removed"
	case LineNoNewline:
		return "no-newline"
	default:
		return "unknown"
	}
}

// Line is one physical line of a hunk. Lines are immutable values.
type Line struct {
	raw    string
	kind   LineKind
	toLine int // zero when the line has no position in the resulting file
}

// Raw returns the original text including its marker column(s).
func (l Line) Raw() string { return l.raw }

// Kind returns the classification of the line.
func (l Line) Kind() LineKind { return l.kind }

// ToFileLine returns the 1-based line number the content occupies in the
// resulting file. ok is false for header, removed and no-newline lines.
func (l Line) ToFileLine() (line int, ok bool) {
	if l.toLine == 0 {
		return 0, false
	}

	return l.toLine, true
}

// Content returns the text without the marker column(s).
func (l Line) Content(parents int) string {
	if l.kind == LineHeader || l.kind == LineNoNewline {
		return l.raw
	}

	if len(l.raw) <= parents {
		return ""
	}

	return l.raw[parents:]
}

// ClassifyLine returns the kind of a hunk line for a hunk with the given
// number of parent marker columns (1 for plain diffs, 2 for "@@@" combined
// diffs). A line is added or removed if any marker column carries that
// marker, and unchanged only if every column is blank.
func ClassifyLine(raw string, parents int) LineKind {
	if strings.HasPrefix(raw, hunkPrefix) {
		return LineHeader
	}

	if raw != "" && raw[0] == markerNoNewline {
		return LineNoNewline
	}

	if parents < 1 {
		parents = 1
	}

	columns := raw
	if len(columns) > parents {
		columns = columns[:parents]
	}

	switch {
	case strings.IndexByte(columns, markerAdded) >= 0:
		return LineAdded
	case strings.IndexByte(columns, markerRemoved) >= 0:
		return LineRemoved
	default:
		return LineUnchanged
	}
}

// occupiesResult reports whether a line of kind k takes a position in the
// resulting file.
func occupiesResult(k LineKind) bool {
	return k == LineUnchanged || k == LineAdded
}
