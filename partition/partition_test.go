package partition

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/aligator/goums/driver"
)

func newTestDevice(t *testing.T, blocks int) (*driver.FileBlockDevice, []byte) {
	t.Helper()

	backing := make([]byte, blocks*driver.DefaultBlockSize)
	device := driver.NewFileBlockDevice(bytesextra.NewReadWriteSeeker(backing))
	require.NoError(t, device.Init())
	return device, backing
}

func writeTableEntry(mbr []byte, index int, partitionType byte, firstLBA, sectorCount uint32) {
	entry := mbr[tableOffset+index*entrySize:]
	entry[4] = partitionType
	binary.LittleEndian.PutUint32(entry[8:], firstLBA)
	binary.LittleEndian.PutUint32(entry[12:], sectorCount)
}

func TestReadTable(t *testing.T) {
	device, backing := newTestDevice(t, 64)
	backing[510], backing[511] = 0x55, 0xAA
	writeTableEntry(backing, 0, 0x0C, 8, 32)
	writeTableEntry(backing, 1, 0x83, 40, 16)

	table, err := ReadTable(device)
	require.NoError(t, err)
	require.Len(t, table.Entries, 2)

	assert.True(t, table.Entries[0].IsFat32())
	assert.Equal(t, uint32(8), table.Entries[0].FirstLBA)
	assert.Equal(t, uint32(32), table.Entries[0].SectorCount)

	// A Linux partition is listed but not FAT32.
	assert.False(t, table.Entries[1].IsFat32())
}

func TestReadTable_SkipsEmptySlots(t *testing.T) {
	device, backing := newTestDevice(t, 64)
	backing[510], backing[511] = 0x55, 0xAA
	writeTableEntry(backing, 2, 0x0B, 8, 32)

	table, err := ReadTable(device)
	require.NoError(t, err)
	require.Len(t, table.Entries, 1)
	assert.Equal(t, byte(0x0B), table.Entries[0].Type)
}

func TestReadTable_InvalidSignature(t *testing.T) {
	device, _ := newTestDevice(t, 64)

	_, err := ReadTable(device)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestPartition_OffsetsAccess(t *testing.T) {
	device, backing := newTestDevice(t, 64)

	p := New(device, TableEntry{Type: 0x0C, FirstLBA: 8, SectorCount: 32})
	assert.Equal(t, int64(32), p.Blocks())
	assert.Equal(t, driver.DefaultBlockSize, p.BlockSize())

	payload := make([]byte, driver.DefaultBlockSize)
	for i := range payload {
		payload[i] = 0x5A
	}
	require.NoError(t, p.Write(driver.DefaultBlockSize, payload))

	// Block 1 of the partition is block 9 of the device.
	assert.Equal(t, payload, backing[9*driver.DefaultBlockSize:10*driver.DefaultBlockSize])

	readBack := make([]byte, driver.DefaultBlockSize)
	require.NoError(t, p.Read(driver.DefaultBlockSize, readBack))
	assert.Equal(t, payload, readBack)
}

func TestNewWholeDevice(t *testing.T) {
	device, _ := newTestDevice(t, 64)

	p := NewWholeDevice(device)
	assert.Equal(t, int64(64), p.Blocks())
}
