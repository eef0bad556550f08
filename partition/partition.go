// Package partition parses the classic master boot record and exposes a
// partition as a byte-offset view onto the underlying block device.
package partition

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/aligator/goums/checkpoint"
	"github.com/aligator/goums/driver"
)

// These errors may occur while reading the partition table.
var (
	ErrReadTable        = errors.New("could not read the partition table")
	ErrInvalidSignature = errors.New("invalid master boot record signature")
)

const (
	tableOffset = 0x1BE
	entrySize   = 16
	entryCount  = 4

	signatureOffset = 510
)

// FAT32 partition type ids: plain, LBA-mapped, and their hidden variants.
var fat32Types = map[byte]bool{
	0x0B: true,
	0x0C: true,
	0x1B: true,
	0x1C: true,
}

// TableEntry is one of the four primary partition slots of the MBR.
type TableEntry struct {
	Type        byte
	FirstLBA    uint32
	SectorCount uint32
}

// IsFat32 reports whether the partition type id is one of the FAT32 ids.
func (e TableEntry) IsFat32() bool {
	return fat32Types[e.Type]
}

// Table holds the primary partition entries of a master boot record.
type Table struct {
	Entries []TableEntry
}

// ReadTable parses the master boot record from block 0 of the device.
// Empty slots (type 0 or no sectors) are left out.
func ReadTable(device driver.BlockDevice) (*Table, error) {
	buffer := make([]byte, device.BlockSize())
	if err := device.Read(0, buffer); err != nil {
		return nil, checkpoint.Wrap(err, ErrReadTable)
	}

	if buffer[signatureOffset] != 0x55 || buffer[signatureOffset+1] != 0xAA {
		return nil, checkpoint.Wrap(
			fmt.Errorf("0x%02x%02x", buffer[signatureOffset], buffer[signatureOffset+1]),
			ErrInvalidSignature)
	}

	table := &Table{}
	for i := 0; i < entryCount; i++ {
		entry := buffer[tableOffset+i*entrySize : tableOffset+(i+1)*entrySize]

		partitionType := entry[4]
		firstLBA := binary.LittleEndian.Uint32(entry[8:12])
		sectorCount := binary.LittleEndian.Uint32(entry[12:16])
		if partitionType == 0 || sectorCount == 0 {
			continue
		}

		table.Entries = append(table.Entries, TableEntry{
			Type:        partitionType,
			FirstLBA:    firstLBA,
			SectorCount: sectorCount,
		})
	}

	return table, nil
}

// Partition shifts every access by the partition start so that byte 0 is
// the first byte of the partition. It implements driver.BlockDevice.
type Partition struct {
	device     driver.BlockDevice
	byteOffset int64
	blocks     int64
}

// New creates the block device view for the given table entry.
func New(device driver.BlockDevice, entry TableEntry) *Partition {
	return &Partition{
		device:     device,
		byteOffset: int64(entry.FirstLBA) * int64(device.BlockSize()),
		blocks:     int64(entry.SectorCount),
	}
}

// NewWholeDevice treats the whole device as a single partition. Media
// formatted without a partition table ("superfloppy") carry the boot
// sector directly at block 0.
func NewWholeDevice(device driver.BlockDevice) *Partition {
	return &Partition{
		device: device,
		blocks: device.Blocks(),
	}
}

func (p *Partition) Init() error {
	return nil
}

func (p *Partition) Read(deviceOffset int64, dst []byte) error {
	return p.device.Read(p.byteOffset+deviceOffset, dst)
}

func (p *Partition) Write(deviceOffset int64, src []byte) error {
	return p.device.Write(p.byteOffset+deviceOffset, src)
}

func (p *Partition) BlockSize() int {
	return p.device.BlockSize()
}

func (p *Partition) Blocks() int64 {
	return p.blocks
}
