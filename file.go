package goums

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/spf13/afero"

	"github.com/aligator/goums/checkpoint"
	"github.com/aligator/goums/fs"
)

// These errors may occur while processing a file.
var (
	ErrReadFile  = errors.New("could not read file")
	ErrWriteFile = errors.New("could not write file")
	ErrSeekFile  = errors.New("could not seek inside of the file")
	ErrReadDir   = errors.New("could not read the directory")
)

// File adapts an fs.UsbFile to afero.File, adding the read/write cursor
// the flat offset-based UsbFile API does not have.
type File struct {
	file fs.UsbFile
	path string

	offset    int64
	dirOffset int
}

var _ afero.File = (*File)(nil)

func newFile(file fs.UsbFile, path string) *File {
	return &File{
		file: file,
		path: path,
	}
}

func (f *File) size() int64 {
	length, err := f.file.Length()
	if err != nil {
		return 0
	}
	return length
}

func (f *File) Close() error {
	if f.file == nil {
		return nil
	}

	var err error
	if !f.file.IsDirectory() {
		err = f.file.Close()
	}

	f.file = nil
	f.path = ""
	f.offset = 0
	f.dirOffset = 0
	return err
}

func (f *File) Read(p []byte) (int, error) {
	n, err := f.ReadAt(p, f.offset)
	f.offset += int64(n)
	return n, err
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.file.IsDirectory() {
		return 0, checkpoint.Wrap(syscall.EISDIR, ErrReadFile)
	}
	if len(p) == 0 {
		return 0, nil
	}

	size := f.size()
	if off >= size {
		return 0, io.EOF
	}

	toRead := p
	if off+int64(len(p)) > size {
		toRead = p[:size-off]
	}

	if err := f.file.Read(off, toRead); err != nil {
		return 0, checkpoint.Wrap(err, ErrReadFile)
	}

	if len(toRead) < len(p) {
		return len(toRead), io.EOF
	}
	return len(toRead), nil
}

// Seek jumps to a specific offset in the file. This affects all Read and
// Write operations except ReadAt and WriteAt.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset = f.offset + offset
	case io.SeekEnd:
		offset = f.size() + offset
	default:
		return 0, checkpoint.Wrap(ErrSeekFile, fmt.Errorf("%w, offset: %v, whence: %v", syscall.EINVAL, offset, whence))
	}

	if offset < 0 {
		return 0, checkpoint.Wrap(afero.ErrOutOfRange, ErrSeekFile)
	}

	f.offset = offset
	return offset, nil
}

func (f *File) Write(p []byte) (int, error) {
	n, err := f.WriteAt(p, f.offset)
	f.offset += int64(n)
	return n, err
}

func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if f.file.IsDirectory() {
		return 0, checkpoint.Wrap(syscall.EISDIR, ErrWriteFile)
	}
	if len(p) == 0 {
		return 0, nil
	}

	if err := f.file.Write(off, p); err != nil {
		return 0, checkpoint.Wrap(err, ErrWriteFile)
	}
	return len(p), nil
}

func (f *File) Name() string {
	return f.path
}

// Readdir reads the contents of the directory and returns up to count
// entries, continuing where the last call stopped.
// May return syscall.ENOTDIR if the current File is no directory.
func (f *File) Readdir(count int) ([]os.FileInfo, error) {
	if !f.file.IsDirectory() {
		return nil, checkpoint.Wrap(syscall.ENOTDIR, ErrReadDir)
	}

	children, err := f.file.ListFiles()
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrReadDir)
	}

	if f.dirOffset >= len(children) {
		if count > 0 {
			return nil, io.EOF
		}
		return nil, nil
	}
	children = children[f.dirOffset:]

	var eof error
	if count > 0 {
		if count >= len(children) {
			eof = io.EOF
		} else {
			children = children[:count]
		}
	}
	f.dirOffset += len(children)

	result := make([]os.FileInfo, len(children))
	for i, child := range children {
		result[i] = fileInfo{child}
	}

	return result, eof
}

func (f *File) Readdirnames(count int) ([]string, error) {
	content, err := f.Readdir(count)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(content))
	for i, entry := range content {
		names[i] = entry.Name()
	}

	return names, nil
}

func (f *File) Stat() (os.FileInfo, error) {
	return fileInfo{f.file}, nil
}

// Sync makes pending size and timestamp changes durable.
func (f *File) Sync() error {
	if f.file.IsDirectory() {
		return nil
	}
	return f.file.Flush()
}

func (f *File) Truncate(size int64) error {
	if f.file.IsDirectory() {
		return checkpoint.Wrap(syscall.EISDIR, ErrWriteFile)
	}
	return f.file.SetLength(size)
}

func (f *File) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}
