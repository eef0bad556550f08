package fat32

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/aligator/goums/checkpoint"
	"github.com/aligator/goums/driver"
	"github.com/aligator/goums/fs"
)

// FileSystem is a mounted FAT32 volume.
type FileSystem struct {
	device     driver.BlockDevice
	bootSector *BootSector
	fsInfo     *FsInfoStructure
	fat        *FAT
	root       *Directory
}

var _ fs.FileSystem = (*FileSystem)(nil)

// NewFileSystem mounts the FAT32 volume starting at byte 0 of the given
// device (typically a partition view). It reads and validates the boot
// sector and the FSInfo sector and parses the root directory.
func NewFileSystem(device driver.BlockDevice) (*FileSystem, error) {
	buffer := make([]byte, device.BlockSize())
	if err := device.Read(0, buffer); err != nil {
		return nil, checkpoint.From(err)
	}

	bootSector, err := ParseBootSector(buffer)
	if err != nil {
		return nil, err
	}

	// The filesystem addresses the device in sectors. Supporting media
	// whose transfer block differs from the FAT sector size would need
	// another translation layer.
	if bootSector.BytesPerSector() != device.BlockSize() {
		return nil, checkpoint.Wrap(
			fmt.Errorf("sector size %d does not match the device block size %d",
				bootSector.BytesPerSector(), device.BlockSize()),
			fs.ErrUnsupported)
	}

	fsInfo, err := readFsInfo(device, bootSector.FsInfoOffset())
	if err != nil {
		return nil, err
	}

	fat := newFAT(device, bootSector, fsInfo)

	root, err := readRoot(device, fat, bootSector)
	if err != nil {
		return nil, err
	}

	log.Debugf("fat32: mounted volume %q with %d clusters of %d bytes",
		bootSector.VolumeLabel(), bootSector.DataClusters(), bootSector.BytesPerCluster())

	return &FileSystem{
		device:     device,
		bootSector: bootSector,
		fsInfo:     fsInfo,
		fat:        fat,
		root:       root,
	}, nil
}

// RootDirectory returns the root of the tree.
func (f *FileSystem) RootDirectory() fs.UsbFile {
	return f.root
}

// VolumeLabel returns the label from the root directory, falling back to
// the one stored in the boot sector.
func (f *FileSystem) VolumeLabel() string {
	if label := f.root.VolumeLabel(); label != "" {
		return label
	}
	return f.bootSector.VolumeLabel()
}

// Capacity returns the size of the data area in bytes.
func (f *FileSystem) Capacity() int64 {
	return int64(f.bootSector.DataClusters()) * f.bootSector.BytesPerCluster()
}

// FreeSpace returns the free space in bytes, derived from the FSInfo
// hint or a FAT scan if the hint is stale.
func (f *FileSystem) FreeSpace() (int64, error) {
	freeClusters, err := f.fat.FreeClusterCount()
	if err != nil {
		return 0, err
	}
	return freeClusters * f.bootSector.BytesPerCluster(), nil
}

// OccupiedSpace returns the occupied space in bytes.
func (f *FileSystem) OccupiedSpace() (int64, error) {
	free, err := f.FreeSpace()
	if err != nil {
		return 0, err
	}
	return f.Capacity() - free, nil
}

// ChunkSize returns the allocation unit size in bytes.
func (f *FileSystem) ChunkSize() int64 {
	return f.bootSector.BytesPerCluster()
}
