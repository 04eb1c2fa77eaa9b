package nfsexport

import (
	"os"

	billy "github.com/go-git/go-billy/v5"
)

// roFS rejects every mutating operation of the wrapped filesystem.
// NFS clients mount the export read-write by default; this keeps the
// dataset tree immutable regardless of client mount options.
type roFS struct {
	billy.Filesystem
}

// ReadOnly wraps fs so all mutating operations fail with a permission
// error.
func ReadOnly(fs billy.Filesystem) billy.Filesystem {
	return &roFS{Filesystem: fs}
}

func (fs *roFS) Create(filename string) (billy.File, error) {
	return nil, pathErr("create", filename)
}

func (fs *roFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
		return nil, pathErr("open", filename)
	}
	return fs.Filesystem.OpenFile(filename, flag, perm)
}

func (fs *roFS) Rename(oldpath, newpath string) error {
	return pathErr("rename", oldpath)
}

func (fs *roFS) Remove(filename string) error {
	return pathErr("remove", filename)
}

func (fs *roFS) MkdirAll(filename string, perm os.FileMode) error {
	return pathErr("mkdir", filename)
}

func (fs *roFS) Symlink(target, link string) error {
	return pathErr("symlink", link)
}

func (fs *roFS) TempFile(dir, prefix string) (billy.File, error) {
	return nil, pathErr("tempfile", dir)
}

func pathErr(op, path string) error {
	return &os.PathError{Op: op, Path: path, Err: os.ErrPermission}
}
