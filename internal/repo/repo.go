// Package repo locates the repository a command operates on and reports
// index state that makes hunk staging unsafe.
package repo

import (
	"errors"
	"fmt"
	"path/filepath"

	git2go "github.com/libgit2/git2go/v34"
)

var (
	// ErrBareRepository is returned for repositories without a work tree.
	ErrBareRepository = errors.New("repository has no work tree")
	// ErrConflictedIndex is returned when the index holds conflict entries.
	ErrConflictedIndex = errors.New("index has unresolved conflicts")
)

// Repository is a discovered non-bare repository.
type Repository struct {
	repo    *git2go.Repository
	workdir string
}

// Discover finds the repository containing start and opens it.
func Discover(start string) (*Repository, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", start, err)
	}

	gitdir, err := git2go.Discover(abs, false, nil)
	if err != nil {
		return nil, fmt.Errorf("discover repository from %s: %w", abs, err)
	}

	native, err := git2go.OpenRepository(gitdir)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	if native.IsBare() {
		native.Free()

		return nil, fmt.Errorf("%w: %s", ErrBareRepository, gitdir)
	}

	return &Repository{repo: native, workdir: filepath.Clean(native.Workdir())}, nil
}

// Workdir returns the absolute work tree root.
func (r *Repository) Workdir() string {
	return r.workdir
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Branch returns the short name of HEAD, or "" when HEAD is unborn or detached.
func (r *Repository) Branch() string {
	unborn, err := r.repo.IsHeadUnborn()
	if err != nil || unborn {
		return ""
	}

	detached, err := r.repo.IsHeadDetached()
	if err != nil || detached {
		return ""
	}

	ref, err := r.repo.Head()
	if err != nil {
		return ""
	}
	defer ref.Free()

	return ref.Shorthand()
}

// Operation names the multi-step operation in progress, or "" if none.
func (r *Repository) Operation() string {
	switch r.repo.State() {
	case git2go.RepositoryStateNone:
		return ""
	case git2go.RepositoryStateMerge:
		return "merge"
	case git2go.RepositoryStateRevert:
		return "revert"
	case git2go.RepositoryStateCherrypick:
		return "cherry-pick"
	case git2go.RepositoryStateBisect:
		return "bisect"
	case git2go.RepositoryStateApplyMailbox, git2go.RepositoryStateApplyMailboxOrRebase:
		return "am"
	default:
		return "rebase"
	}
}

// CheckIndex fails with ErrConflictedIndex when the index has conflict entries.
func (r *Repository) CheckIndex() error {
	index, err := r.repo.Index()
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}
	defer index.Free()

	if !index.HasConflicts() {
		return nil
	}

	if op := r.Operation(); op != "" {
		return fmt.Errorf("%w (%s in progress)", ErrConflictedIndex, op)
	}

	return ErrConflictedIndex
}
