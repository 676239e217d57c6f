package unidiff

import (
	"fmt"
	"slices"
)

// ChunkID addresses a chunk by its position: the index of its file diff and
// its index within that file diff.
type ChunkID struct {
	File  int
	Chunk int
}

func (id ChunkID) String() string {
	return fmt.Sprintf("%d:%d", id.File, id.Chunk)
}

// ChunkIDs returns the ids of all chunks in document order.
func (d Diff) ChunkIDs() []ChunkID {
	ids := make([]ChunkID, 0, d.ChunkCount())

	for fi, f := range d.files {
		for ci := range f.chunks {
			ids = append(ids, ChunkID{File: fi, Chunk: ci})
		}
	}

	return ids
}

// ChunkCount returns the number of chunks across all file diffs.
func (d Diff) ChunkCount() int {
	n := 0
	for _, f := range d.files {
		n += len(f.chunks)
	}

	return n
}

// Chunk returns the chunk addressed by id.
func (d Diff) Chunk(id ChunkID) (Chunk, error) {
	if !d.valid(id) {
		return Chunk{}, fmt.Errorf("%w: %s", ErrChunkNotFound, id)
	}

	return d.files[id.File].chunks[id.Chunk], nil
}

func (d Diff) valid(id ChunkID) bool {
	return id.File >= 0 && id.File < len(d.files) &&
		id.Chunk >= 0 && id.Chunk < len(d.files[id.File].chunks)
}

// UpdateAll returns a copy of d with every chunk set to stage.
func (d Diff) UpdateAll(stage bool) Diff {
	s := StageOf(stage)
	files := make([]FileDiff, len(d.files))

	for i, f := range d.files {
		files[i] = f.withAllStages(s)
	}

	d.files = files

	return d
}

// UpdateFileStage returns a copy of d with every chunk of file diff file set
// to stage.
func (d Diff) UpdateFileStage(file int, stage bool) (Diff, error) {
	if file < 0 || file >= len(d.files) {
		return Diff{}, fmt.Errorf("%w: file %d", ErrChunkNotFound, file)
	}

	files := slices.Clone(d.files)
	files[file] = files[file].withAllStages(StageOf(stage))
	d.files = files

	return d, nil
}

// UpdateChunkStage returns a copy of d in which only the chunk addressed by
// id carries stage. Every other chunk keeps its previous value, unset included.
func (d Diff) UpdateChunkStage(id ChunkID, stage bool) (Diff, error) {
	return d.replaceChunk(id, func(c Chunk) Chunk {
		return c.WithStage(StageOf(stage))
	})
}

// ToggleChunkStage returns a copy of d with the addressed chunk flipped:
// included chunks become excluded, unset and excluded chunks become included.
func (d Diff) ToggleChunkStage(id ChunkID) (Diff, error) {
	return d.replaceChunk(id, func(c Chunk) Chunk {
		return c.WithStage(StageOf(c.stage != StageInclude))
	})
}

// SelectLines returns a copy of d in which the addressed chunk records the
// changes accepted by keep (see Chunk.WithSelection) and is marked included.
// Raw keeps the parsed source text; only StagedPatch reflects the selection.
func (d Diff) SelectLines(id ChunkID, keep func(i int, line Line) bool) (Diff, error) {
	return d.replaceChunk(id, func(c Chunk) Chunk {
		return c.WithSelection(keep).WithStage(StageInclude)
	})
}

// LineSelections returns the ids of included chunks whose recorded selection
// drops changes. Patch mode can only stage whole hunks.
func (d Diff) LineSelections() []ChunkID {
	var ids []ChunkID

	for fi, f := range d.files {
		for ci, c := range f.chunks {
			if c.stage == StageInclude && c.HasLineSelection() {
				ids = append(ids, ChunkID{File: fi, Chunk: ci})
			}
		}
	}

	return ids
}

func (d Diff) replaceChunk(id ChunkID, update func(Chunk) Chunk) (Diff, error) {
	if !d.valid(id) {
		return Diff{}, fmt.Errorf("%w: %s", ErrChunkNotFound, id)
	}

	files := slices.Clone(d.files)
	files[id.File] = files[id.File].withChunk(id.Chunk, update(files[id.File].chunks[id.Chunk]))
	d.files = files

	return d, nil
}

// StageStrings returns one patch-mode response per chunk, in file order and
// then chunk order: "y" for included chunks, "n" otherwise.
func (d Diff) StageStrings() []string {
	out := make([]string, 0, d.ChunkCount())

	for _, f := range d.files {
		for _, c := range f.chunks {
			out = append(out, c.stage.Response())
		}
	}

	return out
}

// StagedCount returns the number of chunks marked included.
func (d Diff) StagedCount() int {
	n := 0

	for _, f := range d.files {
		for _, c := range f.chunks {
			if c.stage == StageInclude {
				n++
			}
		}
	}

	return n
}
