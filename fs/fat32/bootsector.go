// Package fat32 implements the FAT32 filesystem on top of a block device:
// boot sector and FSInfo parsing, the file allocation table with cluster
// chains, and the directory tree with long file name support.
package fat32

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/aligator/goums/checkpoint"
	"github.com/aligator/goums/fs"
)

// bootSectorLayout matches the BIOS parameter block of a FAT32 volume
// byte for byte.
type bootSectorLayout struct {
	JumpBoot            [3]byte
	OEMName             [8]byte
	BytesPerSector      uint16
	SectorsPerCluster   byte
	ReservedSectorCount uint16
	NumFATs             byte
	RootEntryCount      uint16
	TotalSectors16      uint16
	Media               byte
	FATSize16           uint16
	SectorsPerTrack     uint16
	NumberOfHeads       uint16
	HiddenSectors       uint32
	TotalSectors32      uint32
	FATSize32           uint32
	ExtFlags            uint16
	FSVersion           uint16
	RootCluster         uint32
	FSInfoSector        uint16
	BkBootSector        uint16
	Reserved            [12]byte
	DriveNumber         byte
	Reserved1           byte
	BootSignature       byte
	VolumeID            uint32
	VolumeLabel         [11]byte
	FileSystemType      [8]byte
}

const bootSectorSize = 512

// BootSector is the parsed boot sector of a FAT32 partition together with
// the values derived from it. It is pure data, there is no I/O beyond the
// initial read.
type BootSector struct {
	layout bootSectorLayout

	bytesPerCluster int64
	dataAreaOffset  int64
	dataClusters    uint32
}

// ParseBootSector reads and validates the boot sector from the first 512
// bytes of a partition.
func ParseBootSector(data []byte) (*BootSector, error) {
	if len(data) < bootSectorSize {
		return nil, checkpoint.Wrap(fmt.Errorf("boot sector needs %d bytes, got %d", bootSectorSize, len(data)), fs.ErrInvalidFormat)
	}

	if data[510] != 0x55 || data[511] != 0xAA {
		return nil, checkpoint.Wrap(fmt.Errorf("boot signature 0x%02x%02x", data[510], data[511]), fs.ErrInvalidFormat)
	}

	b := &BootSector{}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &b.layout); err != nil {
		return nil, checkpoint.Wrap(err, fs.ErrInvalidFormat)
	}

	// FAT only supports these sector sizes.
	switch b.layout.BytesPerSector {
	case 512, 1024, 2048, 4096:
	default:
		return nil, checkpoint.Wrap(fmt.Errorf("sector size %d", b.layout.BytesPerSector), fs.ErrInvalidFormat)
	}

	// Sectors per cluster has to be a power of two and greater than 0.
	if b.layout.SectorsPerCluster == 0 || b.layout.SectorsPerCluster&(b.layout.SectorsPerCluster-1) != 0 {
		return nil, checkpoint.Wrap(fmt.Errorf("sectors per cluster %d", b.layout.SectorsPerCluster), fs.ErrInvalidFormat)
	}

	if b.layout.ReservedSectorCount == 0 || b.layout.NumFATs == 0 {
		return nil, checkpoint.Wrap(fmt.Errorf("reserved sectors %d, fats %d", b.layout.ReservedSectorCount, b.layout.NumFATs), fs.ErrInvalidFormat)
	}

	// A FAT12/16 volume carries its FAT size and root directory size in
	// the 16 bit fields. Those are not supported here.
	if b.layout.FATSize32 == 0 || b.layout.FATSize16 != 0 || b.layout.RootEntryCount != 0 {
		return nil, checkpoint.Wrap(fmt.Errorf("not a FAT32 volume"), fs.ErrUnsupported)
	}

	if b.layout.TotalSectors32 == 0 || b.layout.RootCluster < 2 {
		return nil, checkpoint.Wrap(fmt.Errorf("total sectors %d, root cluster %d", b.layout.TotalSectors32, b.layout.RootCluster), fs.ErrInvalidFormat)
	}

	b.bytesPerCluster = int64(b.layout.BytesPerSector) * int64(b.layout.SectorsPerCluster)

	dataStartSector := int64(b.layout.ReservedSectorCount) + int64(b.layout.NumFATs)*int64(b.layout.FATSize32)
	b.dataAreaOffset = dataStartSector * int64(b.layout.BytesPerSector)
	b.dataClusters = uint32((int64(b.layout.TotalSectors32) - dataStartSector) / int64(b.layout.SectorsPerCluster))

	return b, nil
}

func (b *BootSector) BytesPerSector() int {
	return int(b.layout.BytesPerSector)
}

func (b *BootSector) SectorsPerCluster() int {
	return int(b.layout.SectorsPerCluster)
}

// BytesPerCluster returns the size of one allocation unit in bytes.
func (b *BootSector) BytesPerCluster() int64 {
	return b.bytesPerCluster
}

// FatCount returns the number of FAT copies, usually 2.
func (b *BootSector) FatCount() int {
	return int(b.layout.NumFATs)
}

// FatOffset returns the byte offset of the FAT copy with the given index
// into the partition.
func (b *BootSector) FatOffset(index int) int64 {
	return (int64(b.layout.ReservedSectorCount) + int64(index)*int64(b.layout.FATSize32)) * int64(b.layout.BytesPerSector)
}

// FatSize returns the size of one FAT copy in bytes.
func (b *BootSector) FatSize() int64 {
	return int64(b.layout.FATSize32) * int64(b.layout.BytesPerSector)
}

// DataAreaOffset returns the byte offset of cluster 2 into the partition.
func (b *BootSector) DataAreaOffset() int64 {
	return b.dataAreaOffset
}

// DataClusters returns the number of clusters in the data area.
func (b *BootSector) DataClusters() uint32 {
	return b.dataClusters
}

// RootDirStartCluster returns the first cluster of the root directory.
func (b *BootSector) RootDirStartCluster() uint32 {
	return b.layout.RootCluster
}

// FsInfoOffset returns the byte offset of the FSInfo sector into the
// partition.
func (b *BootSector) FsInfoOffset() int64 {
	return int64(b.layout.FSInfoSector) * int64(b.layout.BytesPerSector)
}

// VolumeLabel returns the label stored in the boot sector. The canonical
// label lives in the root directory and takes precedence if present.
func (b *BootSector) VolumeLabel() string {
	return strings.TrimRight(string(b.layout.VolumeLabel[:]), " ")
}

func (b *BootSector) TotalSectors() int64 {
	return int64(b.layout.TotalSectors32)
}
