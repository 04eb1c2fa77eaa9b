package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/dinoprep/api"
	"github.com/agentic-research/dinoprep/internal/materialize"
)

// writeTree creates a source file and a symlink to it, mirroring what
// the materializer does, and records the link in a fresh manifest.
func writeTree(t *testing.T) (dbPath, link, source string) {
	t.Helper()
	dir := t.TempDir()

	source = filepath.Join(dir, "src.png")
	require.NoError(t, os.WriteFile(source, []byte("img"), 0o644))

	link = filepath.Join(dir, "link.png")
	require.NoError(t, os.Symlink(source, link))

	dbPath = filepath.Join(dir, "manifest.db")
	w, err := NewWriter(dbPath)
	require.NoError(t, err)
	require.NoError(t, w.Record(materialize.Link{
		Path:     link,
		Source:   source,
		Category: "catA",
		Phase:    api.PhaseTest,
		Bucket:   "scratch",
	}))
	require.NoError(t, w.Close())
	return dbPath, link, source
}

func TestVerify_Consistent(t *testing.T) {
	dbPath, _, _ := writeTree(t)

	res, err := Verify(dbPath)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Checked)
	assert.True(t, res.OK())
}

func TestVerify_BrokenLink(t *testing.T) {
	dbPath, link, _ := writeTree(t)
	require.NoError(t, os.Remove(link))

	res, err := Verify(dbPath)
	require.NoError(t, err)
	assert.False(t, res.OK())
	require.Len(t, res.BrokenLinks, 1)
	assert.Equal(t, link, res.BrokenLinks[0].Path)
}

func TestVerify_MissingSource(t *testing.T) {
	dbPath, link, source := writeTree(t)
	require.NoError(t, os.Remove(source))

	res, err := Verify(dbPath)
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Empty(t, res.BrokenLinks, "dangling symlink is still a present link")
	require.Len(t, res.MissingSources, 1)
	assert.Equal(t, link, res.MissingSources[0].Path)
}

func TestVerify_NoManifest(t *testing.T) {
	_, err := Verify(filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}

func TestWriter_RecordIsUpsert(t *testing.T) {
	dbPath, link, source := writeTree(t)

	// Re-recording the same path must not grow the manifest.
	w, err := NewWriter(dbPath)
	require.NoError(t, err)
	require.NoError(t, w.Record(materialize.Link{
		Path:   link,
		Source: source,
	}))
	require.NoError(t, w.Close())

	res, err := Verify(dbPath)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Checked)
}
