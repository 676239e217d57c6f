package unidiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hunkstage/pkg/unidiff"
)

func parseThree(t *testing.T) unidiff.Diff {
	t.Helper()

	d, err := unidiff.Parse(threeFileDiff)
	require.NoError(t, err)

	return d
}

func TestDiff_ChunkIDsInDocumentOrder(t *testing.T) {
	t.Parallel()

	d := parseThree(t)

	assert.Equal(t, []unidiff.ChunkID{
		{File: 0, Chunk: 0},
		{File: 0, Chunk: 1},
		{File: 1, Chunk: 0},
		{File: 2, Chunk: 0},
	}, d.ChunkIDs())
	assert.Equal(t, "2:0", unidiff.ChunkID{File: 2, Chunk: 0}.String())
}

func TestDiff_UpdateAll(t *testing.T) {
	t.Parallel()

	d := parseThree(t)

	all := d.UpdateAll(true)
	assert.Equal(t, []string{"y", "y", "y", "y"}, all.StageStrings())
	assert.Equal(t, 4, all.StagedCount())

	none := all.UpdateAll(false)
	assert.Equal(t, []string{"n", "n", "n", "n"}, none.StageStrings())
	assert.Equal(t, 0, none.StagedCount())

	c, err := none.Chunk(unidiff.ChunkID{File: 1, Chunk: 0})
	require.NoError(t, err)
	assert.Equal(t, unidiff.StageExclude, c.Stage())
}

func TestDiff_UpdateChunkStageIsolatesChunk(t *testing.T) {
	t.Parallel()

	d := parseThree(t)

	updated, err := d.UpdateChunkStage(unidiff.ChunkID{File: 0, Chunk: 1}, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"n", "y", "n", "n"}, updated.StageStrings())

	for _, id := range updated.ChunkIDs() {
		c, chunkErr := updated.Chunk(id)
		require.NoError(t, chunkErr)

		if id == (unidiff.ChunkID{File: 0, Chunk: 1}) {
			assert.Equal(t, unidiff.StageInclude, c.Stage())

			continue
		}

		assert.Equal(t, unidiff.StageUnset, c.Stage(), id.String())
	}

	// The receiver is left untouched.
	assert.Equal(t, 0, d.StagedCount())
	assert.Equal(t, threeFileDiff, updated.Raw())
}

func TestDiff_UpdateChunkStageKeepsOtherValues(t *testing.T) {
	t.Parallel()

	d := parseThree(t).UpdateAll(true)

	updated, err := d.UpdateChunkStage(unidiff.ChunkID{File: 1, Chunk: 0}, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"y", "y", "n", "y"}, updated.StageStrings())
	assert.Equal(t, []string{"y", "y", "y", "y"}, d.StageStrings())
}

func TestDiff_UpdateChunkStageUnknownID(t *testing.T) {
	t.Parallel()

	d := parseThree(t)

	for _, id := range []unidiff.ChunkID{
		{File: 3, Chunk: 0},
		{File: 0, Chunk: 2},
		{File: -1, Chunk: 0},
		{File: 0, Chunk: -1},
	} {
		_, err := d.UpdateChunkStage(id, true)
		require.ErrorIs(t, err, unidiff.ErrChunkNotFound, id.String())
	}

	_, err := d.Chunk(unidiff.ChunkID{File: 9, Chunk: 9})
	require.ErrorIs(t, err, unidiff.ErrChunkNotFound)
}

func TestDiff_UpdateFileStage(t *testing.T) {
	t.Parallel()

	d := parseThree(t)

	updated, err := d.UpdateFileStage(0, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "y", "n", "n"}, updated.StageStrings())

	_, err = d.UpdateFileStage(5, true)
	require.ErrorIs(t, err, unidiff.ErrChunkNotFound)
}

func TestDiff_ToggleChunkStage(t *testing.T) {
	t.Parallel()

	d := parseThree(t)
	id := unidiff.ChunkID{File: 2, Chunk: 0}

	on, err := d.ToggleChunkStage(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"n", "n", "n", "y"}, on.StageStrings())

	off, err := on.ToggleChunkStage(id)
	require.NoError(t, err)

	c, err := off.Chunk(id)
	require.NoError(t, err)
	assert.Equal(t, unidiff.StageExclude, c.Stage())
}

func TestDiff_SelectLinesMarksChunkIncluded(t *testing.T) {
	t.Parallel()

	d := parseThree(t)
	id := unidiff.ChunkID{File: 0, Chunk: 0}

	selected, err := d.SelectLines(id, func(_ int, line unidiff.Line) bool {
		return line.Kind() == unidiff.LineRemoved
	})
	require.NoError(t, err)

	c, err := selected.Chunk(id)
	require.NoError(t, err)

	assert.Equal(t, unidiff.StageInclude, c.Stage())
	assert.Equal(t, "@@ -1,4 +1,5 @@", c.Header())
	assert.Equal(t, "@@ -1,4 +1,3 @@", c.Selected().Header())
	assert.Equal(t, []string{"y", "n", "n", "n"}, selected.StageStrings())
	assert.Equal(t, []unidiff.ChunkID{id}, selected.LineSelections())
}

func TestDiff_SelectLinesKeepsParsedText(t *testing.T) {
	t.Parallel()

	d := parseThree(t)

	selected, err := d.SelectLines(unidiff.ChunkID{File: 0, Chunk: 0}, func(_ int, line unidiff.Line) bool {
		return line.Kind() == unidiff.LineAdded
	})
	require.NoError(t, err)

	assert.Equal(t, threeFileDiff, selected.Raw())

	for _, f := range selected.Files() {
		assert.Equal(t, f.Raw(), f.Reconstruct())
	}

	require.NoError(t, unidiff.VerifyRoundTrip(selected))
	require.NoError(t, unidiff.CrossCheck(selected))
}

func TestDiff_LineSelectionsIgnoresWholeHunks(t *testing.T) {
	t.Parallel()

	d := parseThree(t).UpdateAll(true)
	assert.Empty(t, d.LineSelections())

	id := unidiff.ChunkID{File: 0, Chunk: 0}

	partial, err := d.SelectLines(id, func(i int, _ unidiff.Line) bool { return i == 3 })
	require.NoError(t, err)

	excluded, err := partial.UpdateChunkStage(id, false)
	require.NoError(t, err)
	assert.Empty(t, excluded.LineSelections())
}

func TestDiff_StageStringsEmptyForZeroDiff(t *testing.T) {
	t.Parallel()

	assert.Empty(t, unidiff.Diff{}.StageStrings())
	assert.Empty(t, unidiff.Diff{}.ChunkIDs())
}
