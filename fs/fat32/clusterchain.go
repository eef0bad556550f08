package fat32

import (
	"errors"
	"fmt"

	"github.com/aligator/goums/checkpoint"
	"github.com/aligator/goums/driver"
)

// ErrOutOfChain marks access beyond the allocated length of a chain.
var ErrOutOfChain = errors.New("access beyond the end of the cluster chain")

// ClusterChain presents the non-contiguous clusters of one file or
// directory as a contiguous byte stream. The chain list is cached; growth
// and truncation go through the FAT.
//
// The underlying device only accepts block-aligned access, so the first
// and last partial block of a request are buffered through a scratch
// block, aligned middle regions go to the device directly.
type ClusterChain struct {
	device     driver.BlockDevice
	fat        *FAT
	bootSector *BootSector

	chain   []uint32
	scratch []byte
}

// newClusterChain builds the chain view for the given start cluster. A
// start cluster of 0 yields an empty chain.
func newClusterChain(startCluster uint32, device driver.BlockDevice, fat *FAT, bootSector *BootSector) (*ClusterChain, error) {
	chain, err := fat.Chain(startCluster)
	if err != nil {
		return nil, err
	}

	return &ClusterChain{
		device:     device,
		fat:        fat,
		bootSector: bootSector,
		chain:      chain,
		scratch:    make([]byte, device.BlockSize()),
	}, nil
}

// Length returns the allocated length in bytes, always a multiple of the
// cluster size.
func (c *ClusterChain) Length() int64 {
	return int64(len(c.chain)) * c.bootSector.BytesPerCluster()
}

// ClusterCount returns the number of clusters of the chain.
func (c *ClusterChain) ClusterCount() int {
	return len(c.chain)
}

// StartCluster returns the first cluster, or 0 for an empty chain.
func (c *ClusterChain) StartCluster() uint32 {
	if len(c.chain) == 0 {
		return 0
	}
	return c.chain[0]
}

// SetLength allocates or frees clusters so that at least length bytes fit.
func (c *ClusterChain) SetLength(length int64) error {
	clusterSize := c.bootSector.BytesPerCluster()
	required := int((length + clusterSize - 1) / clusterSize)

	var err error
	switch {
	case required > len(c.chain):
		c.chain, err = c.fat.Alloc(c.chain, required-len(c.chain))
	case required < len(c.chain):
		c.chain, err = c.fat.Free(c.chain, len(c.chain)-required)
	}

	return err
}

func (c *ClusterChain) checkBounds(offset int64, length int) error {
	if offset < 0 || offset+int64(length) > c.Length() {
		return checkpoint.Wrap(fmt.Errorf("offset %d length %d, chain has %d bytes", offset, length, c.Length()), ErrOutOfChain)
	}
	return nil
}

// deviceOffset maps an offset into the chain to the absolute byte offset
// on the device.
func (c *ClusterChain) deviceOffset(offset int64) int64 {
	clusterSize := c.bootSector.BytesPerCluster()
	cluster := c.chain[offset/clusterSize]
	return c.bootSector.DataAreaOffset() + int64(cluster-fatStartCluster)*clusterSize + offset%clusterSize
}

// Read fills dst starting at the given offset into the chain.
func (c *ClusterChain) Read(offset int64, dst []byte) error {
	if err := c.checkBounds(offset, len(dst)); err != nil {
		return err
	}

	clusterSize := c.bootSector.BytesPerCluster()
	for len(dst) > 0 {
		// Regions never span a cluster boundary, consecutive clusters may
		// live anywhere on the device.
		chunk := int(clusterSize - offset%clusterSize)
		if chunk > len(dst) {
			chunk = len(dst)
		}

		if err := c.readAligned(c.deviceOffset(offset), dst[:chunk]); err != nil {
			return err
		}

		offset += int64(chunk)
		dst = dst[chunk:]
	}

	return nil
}

// Write stores src starting at the given offset into the chain.
func (c *ClusterChain) Write(offset int64, src []byte) error {
	if err := c.checkBounds(offset, len(src)); err != nil {
		return err
	}

	clusterSize := c.bootSector.BytesPerCluster()
	for len(src) > 0 {
		chunk := int(clusterSize - offset%clusterSize)
		if chunk > len(src) {
			chunk = len(src)
		}

		if err := c.writeAligned(c.deviceOffset(offset), src[:chunk]); err != nil {
			return err
		}

		offset += int64(chunk)
		src = src[chunk:]
	}

	return nil
}

// readAligned reads a contiguous device region, buffering unaligned edges
// through the scratch block.
func (c *ClusterChain) readAligned(deviceOffset int64, dst []byte) error {
	blockSize := int64(c.device.BlockSize())

	// Leading partial block.
	if within := deviceOffset % blockSize; within != 0 {
		if err := c.device.Read(deviceOffset-within, c.scratch); err != nil {
			return err
		}
		n := copy(dst, c.scratch[within:])
		deviceOffset += int64(n)
		dst = dst[n:]
	}

	// Aligned middle.
	if aligned := len(dst) - len(dst)%int(blockSize); aligned > 0 {
		if err := c.device.Read(deviceOffset, dst[:aligned]); err != nil {
			return err
		}
		deviceOffset += int64(aligned)
		dst = dst[aligned:]
	}

	// Trailing partial block.
	if len(dst) > 0 {
		if err := c.device.Read(deviceOffset, c.scratch); err != nil {
			return err
		}
		copy(dst, c.scratch)
	}

	return nil
}

// writeAligned writes a contiguous device region, read-modify-writing
// unaligned edges through the scratch block.
func (c *ClusterChain) writeAligned(deviceOffset int64, src []byte) error {
	blockSize := int64(c.device.BlockSize())

	if within := deviceOffset % blockSize; within != 0 {
		blockStart := deviceOffset - within
		if err := c.device.Read(blockStart, c.scratch); err != nil {
			return err
		}
		n := copy(c.scratch[within:], src)
		if err := c.device.Write(blockStart, c.scratch); err != nil {
			return err
		}
		deviceOffset += int64(n)
		src = src[n:]
	}

	if aligned := len(src) - len(src)%int(blockSize); aligned > 0 {
		if err := c.device.Write(deviceOffset, src[:aligned]); err != nil {
			return err
		}
		deviceOffset += int64(aligned)
		src = src[aligned:]
	}

	if len(src) > 0 {
		if err := c.device.Read(deviceOffset, c.scratch); err != nil {
			return err
		}
		copy(c.scratch, src)
		if err := c.device.Write(deviceOffset, c.scratch); err != nil {
			return err
		}
	}

	return nil
}
