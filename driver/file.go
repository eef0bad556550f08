package driver

import (
	"errors"
	"io"

	"github.com/aligator/goums/checkpoint"
)

// These errors may occur while accessing a FileBlockDevice.
var (
	ErrUnalignedAccess = errors.New("access is not aligned to the block size")
	ErrOutOfBounds     = errors.New("access beyond the end of the device")
	ErrDeviceIO        = errors.New("could not access the backing stream")
)

// DefaultBlockSize is used by NewFileBlockDevice. 512 matches what nearly
// every mass storage device and image file uses.
const DefaultBlockSize = 512

// FileBlockDevice presents an io.ReadWriteSeeker, typically an *os.File
// holding a raw disk image, as a BlockDevice. It enforces the same
// alignment rules as the SCSI driver so the filesystem layer behaves
// identically on images and on real devices.
type FileBlockDevice struct {
	stream    io.ReadWriteSeeker
	blockSize int
	blocks    int64
}

// NewFileBlockDevice creates a FileBlockDevice with the default block size.
func NewFileBlockDevice(stream io.ReadWriteSeeker) *FileBlockDevice {
	return NewFileBlockDeviceWithBlockSize(stream, DefaultBlockSize)
}

// NewFileBlockDeviceWithBlockSize creates a FileBlockDevice with a custom
// block size, for images taken from 4096-byte-sector media.
func NewFileBlockDeviceWithBlockSize(stream io.ReadWriteSeeker, blockSize int) *FileBlockDevice {
	return &FileBlockDevice{
		stream:    stream,
		blockSize: blockSize,
	}
}

// Init determines the device size from the backing stream.
func (f *FileBlockDevice) Init() error {
	size, err := f.stream.Seek(0, io.SeekEnd)
	if err != nil {
		return checkpoint.Wrap(err, ErrDeviceIO)
	}

	f.blocks = size / int64(f.blockSize)
	return nil
}

func (f *FileBlockDevice) checkAccess(deviceOffset int64, length int) error {
	if deviceOffset%int64(f.blockSize) != 0 || length%f.blockSize != 0 {
		return checkpoint.From(ErrUnalignedAccess)
	}
	if deviceOffset+int64(length) > f.blocks*int64(f.blockSize) {
		return checkpoint.From(ErrOutOfBounds)
	}
	return nil
}

func (f *FileBlockDevice) Read(deviceOffset int64, dst []byte) error {
	if err := f.checkAccess(deviceOffset, len(dst)); err != nil {
		return err
	}

	if _, err := f.stream.Seek(deviceOffset, io.SeekStart); err != nil {
		return checkpoint.Wrap(err, ErrDeviceIO)
	}

	if _, err := io.ReadFull(f.stream, dst); err != nil {
		return checkpoint.Wrap(err, ErrDeviceIO)
	}

	return nil
}

func (f *FileBlockDevice) Write(deviceOffset int64, src []byte) error {
	if err := f.checkAccess(deviceOffset, len(src)); err != nil {
		return err
	}

	if _, err := f.stream.Seek(deviceOffset, io.SeekStart); err != nil {
		return checkpoint.Wrap(err, ErrDeviceIO)
	}

	if _, err := f.stream.Write(src); err != nil {
		return checkpoint.Wrap(err, ErrDeviceIO)
	}

	return nil
}

func (f *FileBlockDevice) BlockSize() int {
	return f.blockSize
}

func (f *FileBlockDevice) Blocks() int64 {
	return f.blocks
}
