package unidiff

import "strings"

// StagedPatch renders a patch holding only the chunks marked included,
// suitable for "git apply --cached". Destination start lines are shifted
// to account for excluded chunks earlier in the same file. Combined and
// binary file diffs are skipped since git apply cannot take them. The
// result is empty when nothing is included.
func (d Diff) StagedPatch() string {
	var sb strings.Builder

	for _, f := range d.files {
		if f.IsCombined() || f.IsBinary() {
			continue
		}

		chunks := f.stagedChunks()
		if len(chunks) == 0 {
			continue
		}

		sb.WriteString(f.header)
		sb.WriteByte('\n')

		for _, line := range f.extended {
			if line == "" {
				continue
			}

			sb.WriteString(line)
			sb.WriteByte('\n')
		}

		for _, line := range f.fromTo {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}

		for _, c := range chunks {
			sb.WriteString(strings.TrimSuffix(c.raw, "\n"))
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

// stagedChunks returns the included chunks of f, with line selections
// rendered and destination starts recomputed as if only those chunks were
// applied. Selections that keep no change are skipped.
func (f FileDiff) stagedChunks() []Chunk {
	var (
		out   []Chunk
		delta int
	)

	for _, c := range f.chunks {
		if c.stage != StageInclude {
			continue
		}

		c = c.Selected()
		if c.Added() == 0 && c.Removed() == 0 {
			continue
		}

		oldPos := c.oldStart
		if c.oldCount == 0 {
			oldPos++
		}

		newStart := oldPos + delta
		if c.newCount == 0 {
			newStart--
		}

		out = append(out, c.withNewStart(newStart))
		delta += c.newCount - c.oldCount
	}

	return out
}
