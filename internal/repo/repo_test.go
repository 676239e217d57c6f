package repo_test

import (
	"os"
	"path/filepath"
	"testing"

	git2go "github.com/libgit2/git2go/v34"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hunkstage/internal/repo"
)

func initRepo(t *testing.T, bare bool) (string, *git2go.Repository) {
	t.Helper()

	dir := t.TempDir()

	native, err := git2go.InitRepository(dir, bare)
	require.NoError(t, err)
	t.Cleanup(native.Free)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	return resolved, native
}

func TestDiscover_FromSubdirectory(t *testing.T) {
	t.Parallel()

	dir, _ := initRepo(t, false)
	sub := filepath.Join(dir, "pkg", "deep")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	r, err := repo.Discover(sub)
	require.NoError(t, err)

	defer r.Free()

	assert.Equal(t, dir, r.Workdir())
	assert.Empty(t, r.Branch(), "unborn HEAD has no branch")
	assert.Empty(t, r.Operation())
	require.NoError(t, r.CheckIndex())
}

func TestDiscover_Bare(t *testing.T) {
	t.Parallel()

	dir, _ := initRepo(t, true)

	_, err := repo.Discover(dir)
	require.ErrorIs(t, err, repo.ErrBareRepository)
}

func TestDiscover_NotARepository(t *testing.T) {
	t.Parallel()

	_, err := repo.Discover(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discover repository")
}

func TestCheckIndex_Conflicts(t *testing.T) {
	t.Parallel()

	dir, native := initRepo(t, false)

	entry := func(content string) *git2go.IndexEntry {
		oid, err := native.CreateBlobFromBuffer([]byte(content))
		require.NoError(t, err)

		return &git2go.IndexEntry{Path: "conflict.txt", Mode: git2go.FilemodeBlob, Id: oid}
	}

	index, err := native.Index()
	require.NoError(t, err)

	defer index.Free()

	require.NoError(t, index.AddConflict(entry("base\n"), entry("ours\n"), entry("theirs\n")))
	require.NoError(t, index.Write())

	r, err := repo.Discover(dir)
	require.NoError(t, err)

	defer r.Free()

	require.ErrorIs(t, r.CheckIndex(), repo.ErrConflictedIndex)
}
