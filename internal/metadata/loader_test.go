package metadata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRecord = `{
    "arxiv_id": "2401.01234v1",
    "title": "Sparse Attention at Scale",
    "authors": ["Ada Lovelace", "Alan Turing"],
    "published": "2024-01-03T18:00:00Z",
    "summary": "We study attention.",
    "pdf_url": "http://arxiv.org/pdf/2401.01234v1.pdf"
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoader_LoadSibling(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2401.01234v1.json"), sampleRecord)

	meta, err := NewLoader("", nil).Load(filepath.Join(dir, "2401.01234v1.pdf"))
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "Sparse Attention at Scale", meta.Title)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, meta.Authors)
	assert.Equal(t, "2401.01234v1", meta.ArxivID)
	assert.Equal(t, "http://arxiv.org/pdf/2401.01234v1.pdf", meta.PDFURL)
}

func TestLoader_LoadFromMetadataDir(t *testing.T) {
	root := t.TempDir()
	metaDir := filepath.Join(root, "metadata")
	writeFile(t, filepath.Join(metaDir, "paper.json"), sampleRecord)

	meta, err := NewLoader(metaDir, nil).Load(filepath.Join(root, "pdfs", "paper.pdf"))
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "2024-01-03T18:00:00Z", meta.Published)
}

func TestLoader_SiblingWinsOverDir(t *testing.T) {
	root := t.TempDir()
	metaDir := filepath.Join(root, "metadata")
	writeFile(t, filepath.Join(metaDir, "paper.json"), `{"title": "from dir"}`)
	writeFile(t, filepath.Join(root, "pdfs", "paper.json"), `{"title": "sibling"}`)

	meta, err := NewLoader(metaDir, nil).Load(filepath.Join(root, "pdfs", "paper.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "sibling", meta.Title)
}

func TestLoader_LoadMissing(t *testing.T) {
	meta, err := NewLoader(t.TempDir(), nil).Load(filepath.Join(t.TempDir(), "none.pdf"))
	assert.NoError(t, err)
	assert.Nil(t, meta)
}

func TestLoader_LoadInvalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.json"), `{"title": `)

	meta, err := NewLoader("", nil).Load(filepath.Join(dir, "bad.pdf"))
	assert.Nil(t, meta)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoader_ListRecent(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"old", "mid", "new"} {
		path := filepath.Join(dir, name+".json")
		writeFile(t, path, `{"title": "`+name+`"}`)
		ts := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, ts, ts))
	}
	writeFile(t, filepath.Join(dir, "broken.json"), `not json`)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "broken.json"), base, base))
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	entries, err := NewLoader(dir, nil).ListRecent(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "new", entries[0].Metadata.Title)
	assert.Equal(t, "mid", entries[1].Metadata.Title)

	all, err := NewLoader(dir, nil).ListRecent(10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLoader_ListRecentWithoutDir(t *testing.T) {
	entries, err := NewLoader("", nil).ListRecent(5)
	assert.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = NewLoader(filepath.Join(t.TempDir(), "missing"), nil).ListRecent(5)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}
