package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleDiffPath = "testdata/sample.diff"

type result struct {
	stdout string
	stderr string
	err    error
}

// execute runs the command tree with args, feeding stdin.
func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer

	root := NewRootCommand()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())

	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hunkstage.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func readSample(t *testing.T) string {
	t.Helper()

	data, err := os.ReadFile(sampleDiffPath)
	require.NoError(t, err)

	return string(data)
}
