package fat32

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/aligator/goums/driver"
)

// Test volumes use the layout a freshly formatted thumb drive would
// have: 512 byte sectors, 4096 byte clusters, two FATs, label TESTVOL.
const (
	testSectorSize        = 512
	testSectorsPerCluster = 8
	testReservedSectors   = 32
	testLabel             = "TESTVOL"
)

// formatTestImage builds a freshly formatted FAT32 volume in memory. The
// root directory holds only the volume label entry.
func formatTestImage(size int64) []byte {
	image := make([]byte, size)
	totalSectors := uint32(size / testSectorSize)

	clustersEstimate := totalSectors / testSectorsPerCluster
	fatBytes := (clustersEstimate + 2) * fatEntrySize
	fatSectors := (fatBytes + testSectorSize - 1) / testSectorSize

	paddedLabel := testLabel + "           "

	bs := image[:bootSectorSize]
	bs[0], bs[1], bs[2] = 0xEB, 0x58, 0x90
	copy(bs[3:11], "MSDOS5.0")
	binary.LittleEndian.PutUint16(bs[11:], testSectorSize)
	bs[13] = testSectorsPerCluster
	binary.LittleEndian.PutUint16(bs[14:], testReservedSectors)
	bs[16] = 2
	bs[21] = 0xF8
	binary.LittleEndian.PutUint32(bs[32:], totalSectors)
	binary.LittleEndian.PutUint32(bs[36:], fatSectors)
	binary.LittleEndian.PutUint32(bs[44:], 2)
	binary.LittleEndian.PutUint16(bs[48:], 1)
	bs[66] = 0x29
	copy(bs[71:82], paddedLabel)
	copy(bs[82:90], "FAT32   ")
	bs[510], bs[511] = 0x55, 0xAA

	dataStartSector := uint32(testReservedSectors) + 2*fatSectors
	dataClusters := (totalSectors - dataStartSector) / testSectorsPerCluster

	info := image[testSectorSize : 2*testSectorSize]
	binary.LittleEndian.PutUint32(info[0:], fsInfoLeadSignature)
	binary.LittleEndian.PutUint32(info[fsInfoStructSignatureOffset:], fsInfoStructSignature)
	binary.LittleEndian.PutUint32(info[fsInfoFreeCountOffset:], dataClusters-1)
	binary.LittleEndian.PutUint32(info[fsInfoNextFreeOffset:], 2)
	binary.LittleEndian.PutUint32(info[fsInfoTrailSignatureOffset:], fsInfoTrailSignature)

	for i := uint32(0); i < 2; i++ {
		fat := image[(testReservedSectors+i*fatSectors)*testSectorSize:]
		binary.LittleEndian.PutUint32(fat[0:], 0x0FFFFFF8)
		binary.LittleEndian.PutUint32(fat[4:], fatEndOfChain)
		binary.LittleEndian.PutUint32(fat[8:], fatEndOfChain)
	}

	root := image[dataStartSector*testSectorSize:]
	copy(root[0:11], paddedLabel)
	root[11] = attrVolumeLabel

	return image
}

// mountImage opens the volume like the library would open a partition of
// a real device.
func mountImage(t *testing.T, image []byte) *FileSystem {
	t.Helper()

	device := driver.NewFileBlockDevice(bytesextra.NewReadWriteSeeker(image))
	require.NoError(t, device.Init())

	fileSystem, err := NewFileSystem(device)
	require.NoError(t, err)
	return fileSystem
}

// newTestVolume formats and mounts a fresh volume.
func newTestVolume(t *testing.T, size int64) ([]byte, *FileSystem) {
	t.Helper()

	image := formatTestImage(size)
	return image, mountImage(t, image)
}
