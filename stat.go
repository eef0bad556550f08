package goums

import (
	"os"
	"time"

	"github.com/aligator/goums/fs"
)

// fileInfo adapts an fs.UsbFile to os.FileInfo.
type fileInfo struct {
	file fs.UsbFile
}

func (i fileInfo) Name() string {
	return i.file.Name()
}

func (i fileInfo) Size() int64 {
	if i.file.IsDirectory() {
		return 0
	}

	length, err := i.file.Length()
	if err != nil {
		return 0
	}
	return length
}

func (i fileInfo) Mode() os.FileMode {
	if i.IsDir() {
		return os.ModeDir | 0o777
	}
	return 0o666
}

func (i fileInfo) ModTime() time.Time {
	return i.file.LastModified()
}

func (i fileInfo) IsDir() bool {
	return i.file.IsDirectory()
}

func (i fileInfo) Sys() interface{} {
	return i.file
}
