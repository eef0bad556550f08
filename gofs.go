package goums

import (
	iofs "io/fs"

	"github.com/aligator/goums/fs"
)

// GoDirEntry adapts an os.FileInfo to io/fs.DirEntry.
type GoDirEntry struct {
	iofs.FileInfo
}

func (g GoDirEntry) Type() iofs.FileMode {
	return g.FileInfo.Mode().Type()
}

func (g GoDirEntry) Info() (iofs.FileInfo, error) {
	return g.FileInfo, nil
}

// GoFile adapts a File to io/fs.File and io/fs.ReadDirFile.
type GoFile struct {
	*File
}

func (g GoFile) Stat() (iofs.FileInfo, error) {
	return g.File.Stat()
}

func (g GoFile) ReadDir(n int) ([]iofs.DirEntry, error) {
	entries, err := g.File.Readdir(n)

	goEntries := make([]iofs.DirEntry, len(entries))
	for i, e := range entries {
		goEntries[i] = GoDirEntry{e}
	}

	return goEntries, err
}

// GoFs wraps the afero facade to be compatible with io/fs.FS.
type GoFs struct {
	AferoFs
}

// NewGoFs exposes a mounted volume as an io/fs.FS compatible filesystem.
func NewGoFs(fileSystem fs.FileSystem) *GoFs {
	return &GoFs{AferoFs{fileSystem: fileSystem}}
}

func (g GoFs) Open(name string) (iofs.File, error) {
	file, err := g.AferoFs.Open(name)
	if err != nil {
		return nil, err
	}

	return GoFile{file.(*File)}, nil
}
