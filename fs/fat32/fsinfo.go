package fat32

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/aligator/goums/checkpoint"
	"github.com/aligator/goums/driver"
	"github.com/aligator/goums/fs"
)

// ErrStaleFsInfo marks FSInfo hints which cannot be trusted and have to be
// recomputed by scanning the FAT.
var ErrStaleFsInfo = errors.New("fsinfo hints are stale")

const (
	fsInfoLeadSignature   uint32 = 0x41615252
	fsInfoStructSignature uint32 = 0x61417272
	fsInfoTrailSignature  uint32 = 0xAA550000

	fsInfoStructSignatureOffset = 484
	fsInfoFreeCountOffset       = 488
	fsInfoNextFreeOffset        = 492
	fsInfoTrailSignatureOffset  = 508

	// fsInfoUnknown marks a hint whose value is not known.
	fsInfoUnknown uint32 = 0xFFFFFFFF
)

// FsInfoStructure mirrors the two hints of the FSInfo sector: the free
// cluster count and the next free cluster. Both are hints, the FAT itself
// stays authoritative.
type FsInfoStructure struct {
	device driver.BlockDevice
	offset int64
	buffer []byte
}

// readFsInfo loads and validates the FSInfo sector at the given byte
// offset into the partition.
func readFsInfo(device driver.BlockDevice, offset int64) (*FsInfoStructure, error) {
	info := &FsInfoStructure{
		device: device,
		offset: offset,
		buffer: make([]byte, device.BlockSize()),
	}

	if err := device.Read(offset, info.buffer); err != nil {
		return nil, checkpoint.From(err)
	}

	lead := binary.LittleEndian.Uint32(info.buffer[0:4])
	inner := binary.LittleEndian.Uint32(info.buffer[fsInfoStructSignatureOffset:])
	trail := binary.LittleEndian.Uint32(info.buffer[fsInfoTrailSignatureOffset:])
	if lead != fsInfoLeadSignature || inner != fsInfoStructSignature || trail != fsInfoTrailSignature {
		return nil, checkpoint.Wrap(
			fmt.Errorf("fsinfo signatures 0x%08x 0x%08x 0x%08x", lead, inner, trail),
			fs.ErrInvalidFormat)
	}

	return info, nil
}

// FreeClusterCount returns the last known count of free clusters, or
// fsInfoUnknown.
func (i *FsInfoStructure) FreeClusterCount() uint32 {
	return binary.LittleEndian.Uint32(i.buffer[fsInfoFreeCountOffset:])
}

func (i *FsInfoStructure) SetFreeClusterCount(count uint32) {
	binary.LittleEndian.PutUint32(i.buffer[fsInfoFreeCountOffset:], count)
}

// DecrementFreeClusters subtracts count freshly allocated clusters from
// the hint. Unknown hints stay unknown.
func (i *FsInfoStructure) DecrementFreeClusters(count uint32) {
	if i.FreeClusterCount() == fsInfoUnknown {
		return
	}
	i.SetFreeClusterCount(i.FreeClusterCount() - count)
}

// IncrementFreeClusters adds count freed clusters to the hint. Unknown
// hints stay unknown.
func (i *FsInfoStructure) IncrementFreeClusters(count uint32) {
	if i.FreeClusterCount() == fsInfoUnknown {
		return
	}
	i.SetFreeClusterCount(i.FreeClusterCount() + count)
}

// LastAllocatedHint returns the cluster allocation should continue after,
// or fsInfoUnknown.
func (i *FsInfoStructure) LastAllocatedHint() uint32 {
	return binary.LittleEndian.Uint32(i.buffer[fsInfoNextFreeOffset:])
}

func (i *FsInfoStructure) SetLastAllocatedHint(cluster uint32) {
	binary.LittleEndian.PutUint32(i.buffer[fsInfoNextFreeOffset:], cluster)
}

// Write stores the sector back to the device.
func (i *FsInfoStructure) Write() error {
	return checkpoint.From(i.device.Write(i.offset, i.buffer))
}
