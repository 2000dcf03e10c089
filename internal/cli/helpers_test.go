package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

const (
	idleFile    = "testdata/idle.cue"
	circuitsDir = "testdata/circuits"
	lintFile    = "testdata/lint.cue"
	badDtFile   = "testdata/bad_dt.cue"
)

// testOptions returns root options as PersistentPreRunE would leave
// them, with a store in a temp dir.
func testOptions(t *testing.T, format string) *RootOptions {
	t.Helper()
	return &RootOptions{
		Format: format,
		DB:     filepath.Join(t.TempDir(), "qdelay.db"),
		Logger: zerolog.Nop(),
	}
}

// executeRoot runs the full command tree and returns stdout and stderr.
func executeRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
