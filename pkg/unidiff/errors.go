package unidiff

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the parser and the staging overlay.
var (
	// ErrEmptyInput is the reason of a ParseError for empty diff text.
	ErrEmptyInput = errors.New("diff text is empty")
	// ErrNoFileBlocks is the reason of a ParseError when no "diff --git" or
	// "diff --cc" block is present.
	ErrNoFileBlocks = errors.New("no file diff blocks found")
	// ErrChunkNotFound is returned when a ChunkID does not address a chunk.
	ErrChunkNotFound = errors.New("chunk not found")
	// ErrRoundTrip is returned when parsed structure does not reproduce its input.
	ErrRoundTrip = errors.New("round trip mismatch")
	// ErrHunkMismatch is returned when an independent parser disagrees on hunk counts.
	ErrHunkMismatch = errors.New("hunk count mismatch")
)

// ParseError reports diff text that cannot be parsed at the top level.
type ParseError struct {
	// Reason is one of ErrEmptyInput or ErrNoFileBlocks.
	Reason error
	// Size is the length in bytes of the rejected input.
	Size int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse diff (%d bytes): %v", e.Size, e.Reason)
}

// Unwrap exposes Reason to errors.Is.
func (e *ParseError) Unwrap() error {
	return e.Reason
}
