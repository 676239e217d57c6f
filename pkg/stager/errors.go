package stager

import "errors"

var (
	// ErrInvalidSelector reports a hunk selector that cannot be parsed or
	// does not match the diff.
	ErrInvalidSelector = errors.New("invalid selector")
	// ErrPromptMismatch reports that git's patch-mode prompts do not line up
	// with the chunks of the parsed diff.
	ErrPromptMismatch = errors.New("patch prompts do not match diff hunks")
	// ErrLineSelectionNeedsApply reports chunks with a line selection handed
	// to the patch backend, which can only answer for whole hunks.
	ErrLineSelectionNeedsApply = errors.New("line selections require the apply backend")
	// ErrUnmergedPaths reports a repository or diff with unresolved conflicts.
	ErrUnmergedPaths = errors.New("unmerged paths present")
)
