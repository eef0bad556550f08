package fat32

import (
	"time"

	"github.com/aligator/goums/checkpoint"
	"github.com/aligator/goums/driver"
	"github.com/aligator/goums/fs"
)

// File is a regular file on a FAT32 volume. It is backed by a cluster
// chain and the directory entry held by its parent directory.
type File struct {
	device     driver.BlockDevice
	fat        *FAT
	bootSector *BootSector

	entry  *LfnEntry
	parent *Directory
	chain  *ClusterChain
}

var _ fs.UsbFile = (*File)(nil)

func newFile(entry *LfnEntry, device driver.BlockDevice, fat *FAT, bootSector *BootSector, parent *Directory) *File {
	return &File{
		device:     device,
		fat:        fat,
		bootSector: bootSector,
		entry:      entry,
		parent:     parent,
	}
}

// initChain builds the cluster chain lazily on first access.
func (f *File) initChain() error {
	if f.chain != nil {
		return nil
	}

	chain, err := newClusterChain(f.entry.StartCluster(), f.device, f.fat, f.bootSector)
	if err != nil {
		return err
	}
	f.chain = chain
	return nil
}

func (f *File) IsDirectory() bool {
	return false
}

func (f *File) IsRoot() bool {
	return false
}

func (f *File) Name() string {
	return f.entry.Name()
}

func (f *File) SetName(newName string) error {
	return f.parent.renameEntry(f.entry, newName)
}

func (f *File) CreatedAt() time.Time {
	return f.entry.ActualEntry().CreatedAt()
}

func (f *File) LastModified() time.Time {
	return f.entry.ActualEntry().LastModified()
}

func (f *File) LastAccessed() time.Time {
	return f.entry.ActualEntry().LastAccessed()
}

func (f *File) Parent() fs.UsbFile {
	return f.parent
}

func (f *File) Length() (int64, error) {
	return int64(f.entry.FileSize()), nil
}

// SetLength resizes the cluster chain and records the new size in the
// directory entry. The entry only becomes durable with Flush or the next
// directory rewrite.
func (f *File) SetLength(length int64) error {
	if err := f.initChain(); err != nil {
		return err
	}

	if err := f.chain.SetLength(length); err != nil {
		return err
	}

	f.entry.SetFileSize(uint32(length))
	return nil
}

// Read fills dst with the file contents at offset. Reading past the file
// size fails.
func (f *File) Read(offset int64, dst []byte) error {
	if offset+int64(len(dst)) > int64(f.entry.FileSize()) {
		return checkpoint.From(ErrOutOfChain)
	}

	if err := f.initChain(); err != nil {
		return err
	}

	f.entry.ActualEntry().SetLastAccessed(time.Now())
	return f.chain.Read(offset, dst)
}

// Write stores src at offset, growing the file first if it ends beyond
// the current size.
func (f *File) Write(offset int64, src []byte) error {
	if err := f.initChain(); err != nil {
		return err
	}

	end := offset + int64(len(src))
	if end > int64(f.entry.FileSize()) {
		if err := f.SetLength(end); err != nil {
			return err
		}
	}

	if err := f.chain.Write(offset, src); err != nil {
		return err
	}

	f.entry.ActualEntry().SetLastModified(time.Now())
	return nil
}

// Flush writes the parent's entry table so size and timestamp changes
// become durable.
func (f *File) Flush() error {
	return f.parent.write()
}

func (f *File) Close() error {
	return f.Flush()
}

func (f *File) List() ([]string, error) {
	return nil, checkpoint.From(fs.ErrNotDirectory)
}

func (f *File) ListFiles() ([]fs.UsbFile, error) {
	return nil, checkpoint.From(fs.ErrNotDirectory)
}

func (f *File) CreateFile(name string) (fs.UsbFile, error) {
	return nil, checkpoint.From(fs.ErrNotDirectory)
}

func (f *File) CreateDirectory(name string) (fs.UsbFile, error) {
	return nil, checkpoint.From(fs.ErrNotDirectory)
}

func (f *File) Search(path string) (fs.UsbFile, error) {
	return nil, checkpoint.From(fs.ErrNotDirectory)
}

// Delete removes the file from its parent and releases its clusters.
func (f *File) Delete() error {
	if err := f.initChain(); err != nil {
		return err
	}

	f.parent.removeEntry(f.entry)
	if err := f.parent.write(); err != nil {
		return err
	}

	return f.chain.SetLength(0)
}

// MoveTo moves the file into the destination directory.
func (f *File) MoveTo(destination fs.UsbFile) error {
	destDir, err := f.parent.move(f.entry, destination)
	if err != nil {
		return err
	}

	f.parent = destDir
	return nil
}
