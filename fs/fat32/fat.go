package fat32

import (
	"encoding/binary"
	"fmt"

	"github.com/boljen/go-bitmap"

	"github.com/aligator/goums/checkpoint"
	"github.com/aligator/goums/driver"
	"github.com/aligator/goums/fs"
)

const (
	fatEntrySize = 4

	// fatEntryMask strips the four reserved high bits of a FAT32 entry.
	// They have to be preserved on writes.
	fatEntryMask uint32 = 0x0FFFFFFF

	// fatStartCluster is the first usable data cluster. Clusters 0 and 1
	// are reserved.
	fatStartCluster uint32 = 2

	fatFreeMark   uint32 = 0
	fatBadMark    uint32 = 0x0FFFFFF7
	fatEndMinimum uint32 = 0x0FFFFFF8
	fatEndOfChain uint32 = 0x0FFFFFFF
)

// FAT is the file allocation table: an array of 32 bit successor pointers
// where entry n names the cluster following cluster n. It owns cluster
// allocation and release, mirrors every mutation to all FAT copies, and
// keeps the FSInfo hints in step.
//
// A FAT has single-writer semantics, access is serialized by the caller.
type FAT struct {
	device  driver.BlockDevice
	fsInfo  *FsInfoStructure
	offsets []int64

	dataClusters uint32
	blockSize    int64

	// window buffers the last FAT block an entry lookup touched so that
	// chain walks do not hit the device once per cluster.
	window       []byte
	windowOffset int64

	// freeMap is a lazily built map of the free clusters, used by the
	// allocator scan and the free count recomputation. A set bit means
	// the cluster is free. Kept in step by setEntry once built.
	freeMap     bitmap.Bitmap
	haveFreeMap bool
}

func newFAT(device driver.BlockDevice, bootSector *BootSector, fsInfo *FsInfoStructure) *FAT {
	offsets := make([]int64, bootSector.FatCount())
	for i := range offsets {
		offsets[i] = bootSector.FatOffset(i)
	}

	return &FAT{
		device:       device,
		fsInfo:       fsInfo,
		offsets:      offsets,
		dataClusters: bootSector.DataClusters(),
		blockSize:    int64(device.BlockSize()),
		window:       make([]byte, device.BlockSize()),
		windowOffset: -1,
	}
}

// lastCluster returns the highest valid cluster number.
func (f *FAT) lastCluster() uint32 {
	return f.dataClusters + 1
}

// entry reads the successor pointer of the given cluster from the first
// FAT copy.
func (f *FAT) entry(cluster uint32) (uint32, error) {
	if cluster > f.lastCluster() {
		return 0, checkpoint.Wrap(fmt.Errorf("cluster %d beyond the data area", cluster), fs.ErrInvalidFormat)
	}

	byteOffset := f.offsets[0] + int64(cluster)*fatEntrySize
	blockOffset := byteOffset - byteOffset%f.blockSize

	if f.windowOffset != blockOffset {
		if err := f.device.Read(blockOffset, f.window); err != nil {
			return 0, checkpoint.From(err)
		}
		f.windowOffset = blockOffset
	}

	return binary.LittleEndian.Uint32(f.window[byteOffset-blockOffset:]) & fatEntryMask, nil
}

// setEntry writes the successor pointer of the given cluster to every FAT
// copy, preserving the reserved high bits.
func (f *FAT) setEntry(cluster, value uint32) error {
	buffer := make([]byte, f.blockSize)

	for _, fatOffset := range f.offsets {
		byteOffset := fatOffset + int64(cluster)*fatEntrySize
		blockOffset := byteOffset - byteOffset%f.blockSize

		if err := f.device.Read(blockOffset, buffer); err != nil {
			return checkpoint.From(err)
		}

		within := byteOffset - blockOffset
		old := binary.LittleEndian.Uint32(buffer[within:])
		binary.LittleEndian.PutUint32(buffer[within:], old&^fatEntryMask|value&fatEntryMask)

		if err := f.device.Write(blockOffset, buffer); err != nil {
			return checkpoint.From(err)
		}

		if blockOffset == f.windowOffset && fatOffset == f.offsets[0] {
			copy(f.window, buffer)
		}
	}

	if f.haveFreeMap {
		f.freeMap.Set(int(cluster), value&fatEntryMask == fatFreeMark)
	}

	return nil
}

// Chain follows the successor pointers from startCluster until the end of
// chain mark. A start cluster of 0 yields an empty chain. Reserved or bad
// entries and cycles fail the walk.
func (f *FAT) Chain(startCluster uint32) ([]uint32, error) {
	if startCluster == 0 {
		return nil, nil
	}

	var chain []uint32
	cluster := startCluster
	for {
		if cluster < fatStartCluster || cluster > f.lastCluster() || cluster == fatBadMark {
			return nil, checkpoint.Wrap(fmt.Errorf("chain hit invalid cluster %d", cluster), fs.ErrInvalidFormat)
		}

		chain = append(chain, cluster)
		// A chain longer than the data area can only mean a cycle.
		if uint32(len(chain)) > f.dataClusters {
			return nil, checkpoint.Wrap(fmt.Errorf("chain starting at %d has a cycle", startCluster), fs.ErrInvalidFormat)
		}

		next, err := f.entry(cluster)
		if err != nil {
			return nil, err
		}
		if next >= fatEndMinimum {
			return chain, nil
		}
		cluster = next
	}
}

// ensureFreeMap scans the first FAT copy once and records every free
// cluster in the bitmap.
func (f *FAT) ensureFreeMap() error {
	if f.haveFreeMap {
		return nil
	}

	freeMap := bitmap.New(int(f.lastCluster()) + 1)
	buffer := make([]byte, f.blockSize)

	entries := int64(f.lastCluster()) + 1
	for blockOffset := int64(0); blockOffset*f.blockSize < entries*fatEntrySize; blockOffset++ {
		if err := f.device.Read(f.offsets[0]+blockOffset*f.blockSize, buffer); err != nil {
			return checkpoint.From(err)
		}

		firstEntry := blockOffset * f.blockSize / fatEntrySize
		for i := int64(0); i < f.blockSize/fatEntrySize; i++ {
			cluster := firstEntry + i
			if cluster < int64(fatStartCluster) || cluster > int64(f.lastCluster()) {
				continue
			}
			if binary.LittleEndian.Uint32(buffer[i*fatEntrySize:])&fatEntryMask == fatFreeMark {
				freeMap.Set(int(cluster), true)
			}
		}
	}

	f.freeMap = freeMap
	f.haveFreeMap = true
	return nil
}

// FreeClusterCount returns the number of free clusters. The FSInfo hint is
// used when plausible, otherwise the FAT is scanned and the hint repaired.
func (f *FAT) FreeClusterCount() (int64, error) {
	hint := f.fsInfo.FreeClusterCount()
	if hint != fsInfoUnknown && hint <= f.dataClusters {
		return int64(hint), nil
	}

	if err := f.ensureFreeMap(); err != nil {
		return 0, checkpoint.Wrap(err, ErrStaleFsInfo)
	}

	var count int64
	for cluster := fatStartCluster; cluster <= f.lastCluster(); cluster++ {
		if f.freeMap.Get(int(cluster)) {
			count++
		}
	}

	f.fsInfo.SetFreeClusterCount(uint32(count))
	if err := f.fsInfo.Write(); err != nil {
		return 0, err
	}

	return count, nil
}

// Alloc grows the chain by count clusters and returns the new chain. The
// scan starts after the FSInfo hint and wraps around once. The linkage is
// written to every FAT copy and the FSInfo hints are updated. Fails with
// fs.ErrOutOfSpace when not enough free clusters exist, without modifying
// anything.
func (f *FAT) Alloc(chain []uint32, count int) ([]uint32, error) {
	if count == 0 {
		return chain, nil
	}

	if err := f.ensureFreeMap(); err != nil {
		return nil, err
	}

	start := f.fsInfo.LastAllocatedHint()
	if start == fsInfoUnknown || start < fatStartCluster || start > f.lastCluster() {
		start = fatStartCluster
	}

	newClusters := make([]uint32, 0, count)
	total := int64(f.lastCluster()) - int64(fatStartCluster) + 1
	cluster := start
	for scanned := int64(0); scanned < total && len(newClusters) < count; scanned++ {
		cluster++
		if cluster > f.lastCluster() {
			cluster = fatStartCluster
		}
		if f.freeMap.Get(int(cluster)) {
			newClusters = append(newClusters, cluster)
		}
	}

	if len(newClusters) < count {
		return nil, checkpoint.Wrap(fmt.Errorf("%d clusters requested, %d free", count, len(newClusters)), fs.ErrOutOfSpace)
	}

	// Write the linkage: old tail to first new cluster, every new cluster
	// to its successor, the last one to the end of chain mark.
	if len(chain) > 0 {
		if err := f.setEntry(chain[len(chain)-1], newClusters[0]); err != nil {
			return nil, err
		}
	}
	for i, cluster := range newClusters {
		next := fatEndOfChain
		if i+1 < len(newClusters) {
			next = newClusters[i+1]
		}
		if err := f.setEntry(cluster, next); err != nil {
			return nil, err
		}
	}

	f.fsInfo.DecrementFreeClusters(uint32(count))
	f.fsInfo.SetLastAllocatedHint(newClusters[len(newClusters)-1])
	if err := f.fsInfo.Write(); err != nil {
		return nil, err
	}

	return append(chain, newClusters...), nil
}

// Free releases the last count clusters of the chain and returns the
// shortened chain. The new tail gets the end of chain mark.
func (f *FAT) Free(chain []uint32, count int) ([]uint32, error) {
	if count > len(chain) {
		return nil, checkpoint.From(fmt.Errorf("cannot free %d clusters of a chain of %d", count, len(chain)))
	}

	keep := len(chain) - count
	for _, cluster := range chain[keep:] {
		if err := f.setEntry(cluster, fatFreeMark); err != nil {
			return nil, err
		}
	}

	if keep > 0 {
		if err := f.setEntry(chain[keep-1], fatEndOfChain); err != nil {
			return nil, err
		}
	}

	f.fsInfo.IncrementFreeClusters(uint32(count))
	if err := f.fsInfo.Write(); err != nil {
		return nil, err
	}

	return chain[:keep], nil
}
