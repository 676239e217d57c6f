package stager_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hunkstage/pkg/stager"
	"github.com/Sumatoshi-tech/hunkstage/pkg/unidiff"
)

func TestScript_AppendsTerminator(t *testing.T) {
	t.Parallel()

	d, err := mustParse(t, twoHunkFile).UpdateChunkStage(unidiff.ChunkID{File: 0, Chunk: 1}, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"n", "y", "q"}, stager.Script(d, "q"))
	assert.Equal(t, []string{"n", "y"}, stager.Script(d, ""))
}

func TestScript_AnswersModeChangeBeforeHunks(t *testing.T) {
	t.Parallel()

	d := mustParse(t, joinLines(modeChangeFile, twoHunkFile))

	assert.Equal(t, []string{"n", "n", "n", "n", "q"}, stager.Script(d, "q"))

	staged, err := d.UpdateChunkStage(unidiff.ChunkID{File: 0, Chunk: 0}, true)
	require.NoError(t, err)

	assert.Equal(t, []string{"y", "y", "n", "n", "q"}, stager.Script(staged, "q"))
	assert.Len(t, staged.StageStrings(), 3)
}
