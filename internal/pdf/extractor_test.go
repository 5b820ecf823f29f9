package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	name   string
	args   []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

func writeFakePDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake pdf content"), 0o644))
	return path
}

func TestExtract_SplitsPages(t *testing.T) {
	runner := &mockRunner{output: []byte("Title\n\nIntro text.\n\fSecond page.\n\f")}
	path := writeFakePDF(t)

	pages, err := NewWithRunner(runner).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Title\n\nIntro text.", "Second page."}, pages)

	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, path, runner.args[len(runner.args)-2])
	assert.Equal(t, "-", runner.args[len(runner.args)-1])
}

func TestExtract_MissingFile(t *testing.T) {
	runner := &mockRunner{}
	_, err := NewWithRunner(runner).Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, runner.name, "runner must not be invoked for a missing file")
}

func TestExtract_Directory(t *testing.T) {
	_, err := NewWithRunner(&mockRunner{}).Extract(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func TestExtract_RunnerError(t *testing.T) {
	runner := &mockRunner{err: errors.New("pdftotext crashed")}

	pages, err := NewWithRunner(runner).Extract(context.Background(), writeFakePDF(t))
	assert.Nil(t, pages)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext failed")
}

func TestExtract_ToolMissing(t *testing.T) {
	runner := &mockRunner{err: ErrPDFToolNotFound}
	_, err := NewWithRunner(runner).Extract(context.Background(), writeFakePDF(t))
	assert.ErrorIs(t, err, ErrPDFToolNotFound)
}

func TestSplitPages(t *testing.T) {
	assert.Nil(t, splitPages(""))
	assert.Equal(t, []string{"only page"}, splitPages("only page\n"))
	assert.Equal(t, []string{"a", "", "c"}, splitPages("a\f\fc\f"))
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

// Integration test - only runs if pdftotext is available.
func TestExtract_Integration(t *testing.T) {
	if err := CheckAvailable(); err != nil {
		t.Skip("pdftotext not available, skipping integration test")
	}
	t.Skip("integration test requires sample PDF file")
}
