package goums

import (
	"errors"
	"io"
	"os"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/aligator/goums/checkpoint"
	"github.com/aligator/goums/fs"
)

// AferoFs exposes a mounted volume as a path-based afero.Fs. All lookups
// resolve through the UsbFile tree, so the usual FAT32 case-insensitive
// semantics apply.
type AferoFs struct {
	fileSystem fs.FileSystem
}

var _ afero.Fs = (*AferoFs)(nil)

// NewAferoFs wraps a mounted filesystem.
func NewAferoFs(fileSystem fs.FileSystem) *AferoFs {
	return &AferoFs{fileSystem: fileSystem}
}

// splitPath splits a cleaned path into the parent directory path and the
// base name.
func splitPath(name string) (dir, base string) {
	name = strings.Trim(path.Clean("/"+name), "/")
	if name == "" {
		return "", ""
	}

	dir, base = path.Split(name)
	return strings.Trim(dir, "/"), base
}

// resolve looks up a path starting at the root. A miss yields
// os.ErrNotExist.
func (a *AferoFs) resolve(name string) (fs.UsbFile, error) {
	found, err := a.fileSystem.RootDirectory().Search(strings.Trim(name, "/"))
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, checkpoint.Wrap(os.ErrNotExist, ErrReadFile)
	}
	return found, nil
}

// resolveDir resolves a path that has to be a directory.
func (a *AferoFs) resolveDir(name string) (fs.UsbFile, error) {
	found, err := a.resolve(name)
	if err != nil {
		return nil, err
	}
	if !found.IsDirectory() {
		return nil, checkpoint.Wrap(syscall.ENOTDIR, ErrReadDir)
	}
	return found, nil
}

func (a *AferoFs) Create(name string) (afero.File, error) {
	dir, base := splitPath(name)
	parent, err := a.resolveDir(dir)
	if err != nil {
		return nil, err
	}

	created, err := parent.CreateFile(base)
	if err != nil {
		return nil, err
	}
	return newFile(created, name), nil
}

func (a *AferoFs) Mkdir(name string, perm os.FileMode) error {
	dir, base := splitPath(name)
	parent, err := a.resolveDir(dir)
	if err != nil {
		return err
	}

	_, err = parent.CreateDirectory(base)
	return err
}

func (a *AferoFs) MkdirAll(p string, perm os.FileMode) error {
	current := a.fileSystem.RootDirectory()

	for _, segment := range strings.Split(strings.Trim(path.Clean("/"+p), "/"), "/") {
		if segment == "" {
			continue
		}

		next, err := current.Search(segment)
		if err != nil {
			return err
		}
		if next == nil {
			next, err = current.CreateDirectory(segment)
			if err != nil {
				return err
			}
		}
		if !next.IsDirectory() {
			return checkpoint.Wrap(syscall.ENOTDIR, ErrReadDir)
		}
		current = next
	}

	return nil
}

func (a *AferoFs) Open(name string) (afero.File, error) {
	found, err := a.resolve(name)
	if err != nil {
		return nil, err
	}
	return newFile(found, name), nil
}

func (a *AferoFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	found, err := a.resolve(name)
	if err != nil {
		if flag&os.O_CREATE == 0 || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return a.Create(name)
	}

	file := newFile(found, name)
	if flag&os.O_TRUNC != 0 && !found.IsDirectory() {
		if err := found.SetLength(0); err != nil {
			return nil, err
		}
	}
	if flag&os.O_APPEND != 0 {
		if _, err := file.Seek(0, io.SeekEnd); err != nil {
			return nil, err
		}
	}

	return file, nil
}

// Remove deletes a file or an empty directory.
func (a *AferoFs) Remove(name string) error {
	found, err := a.resolve(name)
	if err != nil {
		return err
	}

	if found.IsDirectory() {
		children, err := found.List()
		if err != nil {
			return err
		}
		if len(children) > 0 {
			return checkpoint.Wrap(syscall.ENOTEMPTY, ErrReadDir)
		}
	}

	return found.Delete()
}

// RemoveAll deletes a path and everything below it. A missing path is not
// an error.
func (a *AferoFs) RemoveAll(p string) error {
	found, err := a.resolve(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	return found.Delete()
}

// Rename moves and/or renames a file or directory.
func (a *AferoFs) Rename(oldname, newname string) error {
	found, err := a.resolve(oldname)
	if err != nil {
		return err
	}

	oldDir, oldBase := splitPath(oldname)
	newDir, newBase := splitPath(newname)

	if oldDir != newDir {
		destination, err := a.resolveDir(newDir)
		if err != nil {
			return err
		}
		if err := found.MoveTo(destination); err != nil {
			return err
		}
	}

	if oldBase != newBase {
		return found.SetName(newBase)
	}
	return nil
}

func (a *AferoFs) Stat(name string) (os.FileInfo, error) {
	found, err := a.resolve(name)
	if err != nil {
		return nil, err
	}
	return fileInfo{found}, nil
}

func (a *AferoFs) Name() string {
	return "goums"
}

// Chmod is not supported, FAT32 has no permission bits.
func (a *AferoFs) Chmod(name string, mode os.FileMode) error {
	return checkpoint.From(fs.ErrUnsupported)
}

// Chown is not supported, FAT32 has no owners.
func (a *AferoFs) Chown(name string, uid, gid int) error {
	return checkpoint.From(fs.ErrUnsupported)
}

// Chtimes is not supported; timestamps are maintained by the write path.
func (a *AferoFs) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return checkpoint.From(fs.ErrUnsupported)
}
