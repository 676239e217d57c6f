package unidiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hunkstage/pkg/unidiff"
)

// toFileLines collects ToFileLine results, using 0 for lines without a position.
func toFileLines(c unidiff.Chunk) []int {
	out := make([]int, 0, c.Len())

	for _, line := range c.Lines() {
		n, ok := line.ToFileLine()
		if !ok {
			n = 0
		}

		out = append(out, n)
	}

	return out
}

func kinds(c unidiff.Chunk) []unidiff.LineKind {
	out := make([]unidiff.LineKind, 0, c.Len())
	for _, line := range c.Lines() {
		out = append(out, line.Kind())
	}

	return out
}

func TestParseChunk_Header(t *testing.T) {
	t.Parallel()

	c := unidiff.ParseChunk("@@ -10,3 +11,4 @@ func helper() {\n 	a := 1")

	assert.Equal(t, 1, c.Parents())
	assert.Equal(t, 10, c.OldStart())
	assert.Equal(t, 3, c.OldCount())
	assert.Equal(t, 11, c.NewStart())
	assert.Equal(t, 4, c.NewCount())
	assert.Equal(t, "func helper() {", c.Section())
	assert.Equal(t, unidiff.StageUnset, c.Stage())
}

func TestParseChunk_HeaderWithoutCounts(t *testing.T) {
	t.Parallel()

	c := unidiff.ParseChunk("@@ -3 +7 @@\n-a\n+b")

	assert.Equal(t, 3, c.OldStart())
	assert.Equal(t, 1, c.OldCount())
	assert.Equal(t, 7, c.NewStart())
	assert.Equal(t, 1, c.NewCount())
	assert.Empty(t, c.Section())
	assert.Equal(t, []int{0, 0, 7}, toFileLines(c))
}

func TestParseChunk_LineNumbering(t *testing.T) {
	t.Parallel()

	f := unidiff.ParseFileDiff(plainFileDiff)
	c := f.Chunk(0)

	assert.Equal(t, []unidiff.LineKind{
		unidiff.LineHeader,
		unidiff.LineUnchanged,
		unidiff.LineUnchanged,
		unidiff.LineAdded,
		unidiff.LineUnchanged,
		unidiff.LineRemoved,
		unidiff.LineAdded,
	}, kinds(c))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 0, 5}, toFileLines(c))
	assert.Equal(t, 2, c.Added())
	assert.Equal(t, 1, c.Removed())

	second := f.Chunk(1)
	first, ok := second.Line(1).ToFileLine()
	require.True(t, ok)
	assert.Equal(t, 11, first)
}

func TestParseChunk_CombinedNumbering(t *testing.T) {
	t.Parallel()

	f := unidiff.ParseFileDiff(combinedFileDiff)
	c := f.Chunk(0)

	assert.Equal(t, 2, c.Parents())
	assert.Equal(t, 1, c.NewStart())
	assert.Equal(t, 7, c.NewCount())
	assert.Equal(t, 1, c.OldStart())
	assert.Equal(t, []unidiff.LineKind{
		unidiff.LineHeader,
		unidiff.LineUnchanged,
		unidiff.LineAdded,
		unidiff.LineAdded,
		unidiff.LineAdded,
		unidiff.LineAdded,
		unidiff.LineAdded,
		unidiff.LineUnchanged,
	}, kinds(c))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, toFileLines(c))
	assert.Equal(t, "ours", c.Line(3).Content(c.Parents()))
}

func TestParseChunk_CombinedRemovals(t *testing.T) {
	t.Parallel()

	c := unidiff.ParseChunk("@@@ -4,2 -4,2 +4,1 @@@\n  kept\n- gone from ours\n -gone from theirs")

	assert.Equal(t, 4, c.NewStart())
	assert.Equal(t, []unidiff.LineKind{
		unidiff.LineHeader,
		unidiff.LineUnchanged,
		unidiff.LineRemoved,
		unidiff.LineRemoved,
	}, kinds(c))
	assert.Equal(t, []int{0, 4, 0, 0}, toFileLines(c))
}

func TestParseChunk_NoNewlineMarker(t *testing.T) {
	t.Parallel()

	f := unidiff.ParseFileDiff(newFileDiff)
	c := f.Chunk(0)

	assert.Equal(t, []unidiff.LineKind{
		unidiff.LineHeader,
		unidiff.LineAdded,
		unidiff.LineAdded,
		unidiff.LineNoNewline,
	}, kinds(c))
	assert.Equal(t, []int{0, 1, 2, 0}, toFileLines(c))
}

func TestParseChunk_TrailingNewlineIsNotALine(t *testing.T) {
	t.Parallel()

	raw := "@@ -1 +1 @@\n-a\n+b\n"
	c := unidiff.ParseChunk(raw)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, raw, c.Raw())
}

func TestParseChunk_EmptyContextLine(t *testing.T) {
	t.Parallel()

	c := unidiff.ParseChunk("@@ -1,3 +1,3 @@\n a\n\n-b\n+c")

	assert.Equal(t, unidiff.LineUnchanged, c.Line(2).Kind())
	n, ok := c.Line(2).ToFileLine()
	require.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Empty(t, c.Line(2).Content(1))
}

func TestParseChunk_MalformedHeader(t *testing.T) {
	t.Parallel()

	c := unidiff.ParseChunk("@@ garbage\n+x")

	assert.Equal(t, 0, c.NewStart())
	assert.Equal(t, unidiff.LineAdded, c.Line(1).Kind())

	_, ok := c.Line(1).ToFileLine()
	assert.False(t, ok)
}

func TestChunk_WithStageReturnsCopy(t *testing.T) {
	t.Parallel()

	c := unidiff.ParseChunk("@@ -1 +1 @@\n-a\n+b")
	staged := c.WithStage(unidiff.StageInclude)

	assert.Equal(t, unidiff.StageUnset, c.Stage())
	assert.Equal(t, unidiff.StageInclude, staged.Stage())
	assert.Equal(t, c.Raw(), staged.Raw())
}

func TestChunk_SelectedKeepsOnlyChosenChanges(t *testing.T) {
	t.Parallel()

	c := unidiff.ParseFileDiff(plainFileDiff).Chunk(0)

	onlyRemoval := c.WithSelection(func(_ int, line unidiff.Line) bool {
		return line.Kind() == unidiff.LineRemoved
	})

	assert.Equal(t, c.Raw(), onlyRemoval.Raw())
	assert.Equal(t, c.Lines(), onlyRemoval.Lines())
	assert.True(t, onlyRemoval.HasLineSelection())
	assert.Equal(t, joinLines(
		"@@ -1,4 +1,3 @@",
		" package main",
		" ",
		" func main() {",
		`-	println("hi")`,
	), onlyRemoval.Selected().Raw())

	onlyImport := c.WithSelection(func(i int, _ unidiff.Line) bool {
		return i == 3
	})

	assert.Equal(t, joinLines(
		"@@ -1,4 +1,5 @@",
		" package main",
		" ",
		`+import "fmt"`,
		" func main() {",
		` 	println("hi")`,
	), onlyImport.Selected().Raw())
}

func TestChunk_SelectionKeepingEverythingIsNotPartial(t *testing.T) {
	t.Parallel()

	c := unidiff.ParseFileDiff(plainFileDiff).Chunk(0)
	all := c.WithSelection(func(int, unidiff.Line) bool { return true })

	assert.False(t, c.HasLineSelection())
	assert.False(t, all.HasLineSelection())
	assert.Equal(t, c.Raw(), all.Selected().Raw())
}

func TestChunk_SelectedDropsNoNewlineWithItsLine(t *testing.T) {
	t.Parallel()

	c := unidiff.ParseFileDiff(newFileDiff).Chunk(0)

	firstOnly := c.WithSelection(func(i int, _ unidiff.Line) bool { return i == 1 })

	assert.Equal(t, "@@ -0,0 +1 @@\n+first", firstOnly.Selected().Raw())
}

func TestChunk_SelectionIgnoresCombined(t *testing.T) {
	t.Parallel()

	c := unidiff.ParseFileDiff(combinedFileDiff).Chunk(0)
	selected := c.WithSelection(func(int, unidiff.Line) bool { return false })

	assert.False(t, selected.HasLineSelection())
	assert.Equal(t, c.Raw(), selected.Selected().Raw())
}

func TestStage_Response(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "y", unidiff.StageInclude.Response())
	assert.Equal(t, "n", unidiff.StageExclude.Response())
	assert.Equal(t, "n", unidiff.StageUnset.Response())
	assert.Equal(t, unidiff.StageInclude, unidiff.StageOf(true))
	assert.Equal(t, unidiff.StageExclude, unidiff.StageOf(false))
	assert.Equal(t, "unset", unidiff.StageUnset.String())
}
