package unidiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/hunkstage/pkg/unidiff"
)

func TestClassifyLine_SingleParent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, unidiff.LineHeader, unidiff.ClassifyLine("@@ -1 +1 @@", 1))
	assert.Equal(t, unidiff.LineUnchanged, unidiff.ClassifyLine(" context", 1))
	assert.Equal(t, unidiff.LineAdded, unidiff.ClassifyLine("+added", 1))
	assert.Equal(t, unidiff.LineRemoved, unidiff.ClassifyLine("-removed", 1))
	assert.Equal(t, unidiff.LineNoNewline, unidiff.ClassifyLine(`\ No newline at end of file`, 1))
	assert.Equal(t, unidiff.LineUnchanged, unidiff.ClassifyLine("", 1))
}

func TestClassifyLine_MarkerOnlyInFirstColumn(t *testing.T) {
	t.Parallel()

	// Markers inside the content are not marker columns.
	assert.Equal(t, unidiff.LineUnchanged, unidiff.ClassifyLine(" +not added", 1))
	assert.Equal(t, unidiff.LineRemoved, unidiff.ClassifyLine("-+x", 1))
}

func TestClassifyLine_TwoParents(t *testing.T) {
	t.Parallel()

	assert.Equal(t, unidiff.LineUnchanged, unidiff.ClassifyLine("  both", 2))
	assert.Equal(t, unidiff.LineAdded, unidiff.ClassifyLine("++both added", 2))
	assert.Equal(t, unidiff.LineAdded, unidiff.ClassifyLine(" +second", 2))
	assert.Equal(t, unidiff.LineAdded, unidiff.ClassifyLine("+ first", 2))
	assert.Equal(t, unidiff.LineRemoved, unidiff.ClassifyLine("- first", 2))
	assert.Equal(t, unidiff.LineRemoved, unidiff.ClassifyLine(" -second", 2))
	assert.Equal(t, unidiff.LineUnchanged, unidiff.ClassifyLine(" ", 2))
}

func TestClassifyLine_ZeroParentsTreatedAsOne(t *testing.T) {
	t.Parallel()

	assert.Equal(t, unidiff.LineAdded, unidiff.ClassifyLine("+x", 0))
}

func TestLineKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "header", unidiff.LineHeader.String())
	assert.Equal(t, "unchanged", unidiff.LineUnchanged.String())
	assert.Equal(t, "added", unidiff.LineAdded.String())
	assert.Equal(t, "removed", unidiff.LineRemoved.String())
	assert.Equal(t, "no-newline", unidiff.LineNoNewline.String())
	assert.Equal(t, "unknown", unidiff.LineKind(42).String())
}

func TestLine_Content(t *testing.T) {
	t.Parallel()

	c := unidiff.ParseChunk("@@ -1 +1 @@\n-old\n+new")

	assert.Equal(t, "@@ -1 +1 @@", c.Line(0).Content(1))
	assert.Equal(t, "old", c.Line(1).Content(1))
	assert.Equal(t, "new", c.Line(2).Content(1))
	assert.Equal(t, "+new", c.Line(2).Raw())
}
