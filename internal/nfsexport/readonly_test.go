package nfsexport

import (
	"io"
	"os"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOnly(t *testing.T) {
	base := memfs.New()
	require.NoError(t, util.WriteFile(base, "/a/b.png", []byte("img"), 0o644))

	fs := ReadOnly(base)

	// Reads pass through.
	f, err := fs.Open("/a/b.png")
	require.NoError(t, err)
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "img", string(content))

	entries, err := fs.ReadDir("/a")
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// Writes are rejected.
	_, err = fs.Create("/a/new.png")
	assert.ErrorIs(t, err, os.ErrPermission)
	_, err = fs.OpenFile("/a/b.png", os.O_WRONLY, 0o644)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.ErrorIs(t, fs.Remove("/a/b.png"), os.ErrPermission)
	assert.ErrorIs(t, fs.Rename("/a/b.png", "/a/c.png"), os.ErrPermission)
	assert.ErrorIs(t, fs.MkdirAll("/new", 0o755), os.ErrPermission)
	assert.ErrorIs(t, fs.Symlink("/a/b.png", "/a/l.png"), os.ErrPermission)

	// Nothing leaked through to the backing filesystem.
	_, err = base.Stat("/a/new.png")
	assert.Error(t, err)
}
