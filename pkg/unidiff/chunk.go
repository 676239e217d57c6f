package unidiff

import (
	"slices"
	"strconv"
	"strings"
)

// Stage is the tri-state staging intent of a chunk.
type Stage int

const (
	// StageUnset means no decision was recorded. It serialises as "n".
	StageUnset Stage = iota
	// StageInclude means the chunk should be staged.
	StageInclude
	// StageExclude means the chunk should not be staged.
	StageExclude
)

// Patch-mode responses.
const (
	ResponseYes = "y"
	ResponseNo  = "n"
)

// StageOf converts a boolean decision into a Stage.
func StageOf(stage bool) Stage {
	if stage {
		return StageInclude
	}

	return StageExclude
}

// String returns "unset", "include" or "exclude".
func (s Stage) String() string {
	switch s {
	case StageInclude:
		return "include"
	case StageExclude:
		return "exclude"
	default:
		return "unset"
	}
}

// Response returns the patch-mode answer for the stage. Unresolved intent
// answers "do not stage".
func (s Stage) Response() string {
	if s == StageInclude {
		return ResponseYes
	}

	return ResponseNo
}

// Chunk is one hunk of a file diff. Chunks are immutable values; WithStage
// returns a modified copy.
type Chunk struct {
	raw      string
	lines    []Line
	section  string
	stage    Stage
	keep     []bool
	parents  int
	oldStart int
	oldCount int
	newStart int
	newCount int
}

// hunkRange is one "-a,b" or "+c,d" token of a hunk header.
type hunkRange struct {
	start int
	count int
}

// ParseChunk parses the text of one hunk, starting at its "@@" header line.
// The destination start line is taken from the last "+" range of the header,
// so combined "@@@ -a,b -c,d +e,f @@@" headers number lines in the merge
// result. Unparsable headers yield a chunk whose lines carry no positions.
func ParseChunk(raw string) Chunk {
	physical := strings.Split(raw, "\n")
	if len(physical) > 1 && physical[len(physical)-1] == "" {
		physical = physical[:len(physical)-1]
	}

	chunk := Chunk{raw: raw, stage: StageUnset, parents: 1}
	chunk.parseHeader(physical[0])

	chunk.lines = make([]Line, 0, len(physical))
	chunk.lines = append(chunk.lines, Line{raw: physical[0], kind: LineHeader})

	next := chunk.newStart

	for _, text := range physical[1:] {
		kind := ClassifyLine(text, chunk.parents)
		if kind == LineHeader {
			// A second "@@" line inside one chunk is content of a malformed hunk.
			kind = LineUnchanged
		}

		line := Line{raw: text, kind: kind}

		if occupiesResult(kind) && next > 0 {
			line.toLine = next
			next++
		}

		chunk.lines = append(chunk.lines, line)
	}

	return chunk
}

func (c *Chunk) parseHeader(header string) {
	markers := 0
	for markers < len(header) && header[markers] == '@' {
		markers++
	}

	if markers < len(hunkPrefix) {
		return
	}

	c.parents = markers - 1

	closing := strings.Repeat("@", markers)
	body := header[markers:]

	end := strings.Index(body, closing)
	if end < 0 {
		return
	}

	c.section = strings.TrimPrefix(body[end+markers:], " ")

	var oldSeen bool

	for _, token := range strings.Fields(body[:end]) {
		switch token[0] {
		case '-':
			if oldSeen {
				continue
			}

			if r, ok := parseRange(token[1:]); ok {
				c.oldStart, c.oldCount = r.start, r.count
				oldSeen = true
			}
		case '+':
			if r, ok := parseRange(token[1:]); ok {
				c.newStart, c.newCount = r.start, r.count
			}
		}
	}
}

// parseRange parses "start[,count]". A missing count means one line.
func parseRange(s string) (hunkRange, bool) {
	startText, countText, hasCount := strings.Cut(s, ",")

	start, err := strconv.Atoi(startText)
	if err != nil || start < 0 {
		return hunkRange{}, false
	}

	count := 1

	if hasCount {
		count, err = strconv.Atoi(countText)
		if err != nil || count < 0 {
			return hunkRange{}, false
		}
	}

	return hunkRange{start: start, count: count}, true
}

// formatRange renders a range the way git does: the count is omitted when it is one.
func formatRange(r hunkRange) string {
	if r.count == 1 {
		return strconv.Itoa(r.start)
	}

	return strconv.Itoa(r.start) + "," + strconv.Itoa(r.count)
}

// Raw returns the exact hunk text including its header.
func (c Chunk) Raw() string { return c.raw }

// Header returns the "@@ ... @@" line.
func (c Chunk) Header() string { return c.lines[0].raw }

// Section returns the text following the closing header marker, usually the
// enclosing function signature.
func (c Chunk) Section() string { return c.section }

// Parents returns the number of marker columns: 1 for plain hunks, 2 for
// combined two-parent hunks.
func (c Chunk) Parents() int { return c.parents }

// NewStart returns the destination start line declared by the header.
func (c Chunk) NewStart() int { return c.newStart }

// NewCount returns the destination line count declared by the header.
func (c Chunk) NewCount() int { return c.newCount }

// OldStart returns the first source start line declared by the header.
func (c Chunk) OldStart() int { return c.oldStart }

// OldCount returns the first source line count declared by the header.
func (c Chunk) OldCount() int { return c.oldCount }

// Stage returns the staging intent.
func (c Chunk) Stage() Stage { return c.stage }

// Lines returns a copy of the chunk lines, header first.
func (c Chunk) Lines() []Line { return slices.Clone(c.lines) }

// Len returns the number of lines including the header.
func (c Chunk) Len() int { return len(c.lines) }

// Line returns the i-th line, header at index zero.
func (c Chunk) Line(i int) Line { return c.lines[i] }

// Added returns the number of added lines.
func (c Chunk) Added() int { return c.count(LineAdded) }

// Removed returns the number of removed lines.
func (c Chunk) Removed() int { return c.count(LineRemoved) }

func (c Chunk) count(kind LineKind) int {
	n := 0

	for _, line := range c.lines {
		if line.kind == kind {
			n++
		}
	}

	return n
}

// WithStage returns a copy of the chunk carrying stage s.
func (c Chunk) WithStage(s Stage) Chunk {
	c.stage = s

	return c
}

// WithSelection returns a copy of a single-parent chunk that records which
// changes to keep. keep receives the index into Lines() and the line; it is
// consulted for added and removed lines only. Raw and Lines are unchanged;
// Selected renders the selection. Combined chunks are returned unchanged.
func (c Chunk) WithSelection(keep func(i int, line Line) bool) Chunk {
	if c.parents != 1 {
		return c
	}

	mask := make([]bool, len(c.lines))

	for i, line := range c.lines {
		switch line.kind {
		case LineAdded, LineRemoved:
			mask[i] = keep(i, line)
		default:
			mask[i] = true
		}
	}

	c.keep = mask

	return c
}

// HasLineSelection reports whether a recorded selection drops at least one
// change of the chunk.
func (c Chunk) HasLineSelection() bool {
	for _, kept := range c.keep {
		if !kept {
			return true
		}
	}

	return false
}

// Selected renders the recorded selection as a standalone chunk: dropped
// additions disappear, dropped removals turn into context, and the header
// counts are recomputed. Without a selection the chunk is returned as is.
func (c Chunk) Selected() Chunk {
	if !c.HasLineSelection() {
		return c
	}

	body := make([]string, 0, len(c.lines))
	oldCount, newCount := 0, 0
	prevKept := false

	for i, line := range c.lines[1:] {
		kept := c.keep[i+1]

		switch line.kind {
		case LineUnchanged:
			body = append(body, line.raw)
			oldCount++
			newCount++
			prevKept = true
		case LineAdded:
			prevKept = kept
			if kept {
				body = append(body, line.raw)
				newCount++
			}
		case LineRemoved:
			if kept {
				body = append(body, line.raw)
				oldCount++
			} else {
				body = append(body, string(markerContext)+line.Content(1))
				oldCount++
				newCount++
			}

			prevKept = true
		case LineNoNewline:
			if prevKept {
				body = append(body, line.raw)
			}
		case LineHeader:
		}
	}

	header := renderHeader(
		hunkRange{start: c.oldStart, count: oldCount},
		hunkRange{start: c.newStart, count: newCount},
		c.section,
	)

	out := ParseChunk(strings.Join(append([]string{header}, body...), "\n"))
	out.stage = c.stage

	return out
}

// withNewStart returns a copy of a single-parent chunk whose header declares
// destination start line start.
func (c Chunk) withNewStart(start int) Chunk {
	if c.parents != 1 || start == c.newStart {
		return c
	}

	header := renderHeader(
		hunkRange{start: c.oldStart, count: c.oldCount},
		hunkRange{start: start, count: c.newCount},
		c.section,
	)

	rest := ""
	if i := strings.IndexByte(c.raw, '\n'); i >= 0 {
		rest = c.raw[i:]
	}

	out := ParseChunk(header + rest)
	out.stage = c.stage

	return out
}

func renderHeader(old, updated hunkRange, section string) string {
	header := "@@ -" + formatRange(old) + " +" + formatRange(updated) + " @@"
	if section != "" {
		header += " " + section
	}

	return header
}
