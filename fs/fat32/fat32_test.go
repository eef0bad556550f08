package fat32

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aligator/goums/fs"
)

const testVolumeSize = 64 * 1024 * 1024

func TestFileSystem_EmptyVolume(t *testing.T) {
	_, fileSystem := newTestVolume(t, testVolumeSize)

	names, err := fileSystem.RootDirectory().List()
	require.NoError(t, err)
	assert.Empty(t, names)

	assert.Equal(t, testLabel, fileSystem.VolumeLabel())
	assert.Equal(t, int64(4096), fileSystem.ChunkSize())
}

func TestFileSystem_CreateWriteReopenRead(t *testing.T) {
	image, fileSystem := newTestVolume(t, testVolumeSize)

	file, err := fileSystem.RootDirectory().CreateFile("hello.txt")
	require.NoError(t, err)
	require.NoError(t, file.Write(0, []byte("Hello")))
	require.NoError(t, file.Close())

	// A fresh mount has to see the file with the durable content.
	reopened := mountImage(t, image)
	found, err := reopened.RootDirectory().Search("hello.txt")
	require.NoError(t, err)
	require.NotNil(t, found)

	length, err := found.Length()
	require.NoError(t, err)
	assert.Equal(t, int64(5), length)

	content := make([]byte, 5)
	require.NoError(t, found.Read(0, content))
	assert.Equal(t, "Hello", string(content))

	foundFile := found.(*File)
	assert.Equal(t, "HELLO.TXT", foundFile.entry.ActualEntry().ShortName().String())
}

func TestFileSystem_ManyFiles(t *testing.T) {
	image, fileSystem := newTestVolume(t, testVolumeSize)
	root := fileSystem.RootDirectory()

	names := make([]string, 100)
	for i := range names {
		names[i] = fmt.Sprintf("f%03d.txt", i)
		_, err := root.CreateFile(names[i])
		require.NoError(t, err)
	}

	listed, err := root.List()
	require.NoError(t, err)
	assert.Len(t, listed, 100)

	// All generated short names have to be unique.
	reopened := mountImage(t, image)
	shortNames := map[ShortName]bool{}
	for _, entry := range reopened.root.entries {
		shortNames[entry.ActualEntry().ShortName()] = true
	}
	assert.Len(t, shortNames, 100)
}

func TestFileSystem_ShortNameCollisions(t *testing.T) {
	_, fileSystem := newTestVolume(t, testVolumeSize)
	root := fileSystem.RootDirectory()

	expected := []string{"LONGFILE.TXT", "LONGFI~1.TXT", "LONGFI~2.TXT"}
	for i, name := range []string{"longfilename1.txt", "longfilename2.txt", "longfilename3.txt"} {
		file, err := root.CreateFile(name)
		require.NoError(t, err)
		assert.Equal(t, expected[i], file.(*File).entry.ActualEntry().ShortName().String())
	}
}

func TestFileSystem_MoveIntoDirectory(t *testing.T) {
	_, fileSystem := newTestVolume(t, testVolumeSize)
	root := fileSystem.RootDirectory()

	file, err := root.CreateFile("hello.txt")
	require.NoError(t, err)
	dir, err := root.CreateDirectory("d")
	require.NoError(t, err)

	require.NoError(t, file.MoveTo(dir))

	names, err := root.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, names)

	moved, err := root.Search("d/hello.txt")
	require.NoError(t, err)
	require.NotNil(t, moved)

	// The dotdot entry of a directory directly below the root points at
	// cluster 0.
	dotDot, err := root.Search("d/..")
	require.NoError(t, err)
	require.NotNil(t, dotDot)
	assert.Equal(t, uint32(0), dotDot.(*Directory).entry.StartCluster())
}

func TestFileSystem_CaseInsensitiveSearch(t *testing.T) {
	_, fileSystem := newTestVolume(t, testVolumeSize)
	root := fileSystem.RootDirectory()

	dir, err := root.CreateDirectory("A")
	require.NoError(t, err)
	_, err = dir.CreateFile("b.TXT")
	require.NoError(t, err)

	upper, err := root.Search("A/b.TXT")
	require.NoError(t, err)
	require.NotNil(t, upper)

	lower, err := root.Search("a/B.txt")
	require.NoError(t, err)
	require.NotNil(t, lower)

	// Same entry, and the stored casing is preserved.
	assert.Equal(t, upper.Name(), lower.Name())
	assert.Equal(t, "b.TXT", lower.Name())
}

func TestFileSystem_TruncateAndReuse(t *testing.T) {
	_, fileSystem := newTestVolume(t, testVolumeSize)
	root := fileSystem.RootDirectory()

	big, err := root.CreateFile("big.bin")
	require.NoError(t, err)
	require.NoError(t, big.Write(0, make([]byte, 10*1024*1024)))
	require.NoError(t, big.Flush())

	freeBefore, err := fileSystem.FreeSpace()
	require.NoError(t, err)

	require.NoError(t, big.SetLength(2*1024*1024))
	require.NoError(t, big.Flush())

	length, err := big.Length()
	require.NoError(t, err)
	assert.Equal(t, int64(2*1024*1024), length)

	freeAfterTruncate, err := fileSystem.FreeSpace()
	require.NoError(t, err)
	assert.Equal(t, int64(8*1024*1024), freeAfterTruncate-freeBefore)

	// A new file must not use more than one extra cluster beyond its size.
	extra, err := root.CreateFile("extra.bin")
	require.NoError(t, err)
	require.NoError(t, extra.Write(0, make([]byte, 1024*1024)))
	require.NoError(t, extra.Flush())

	freeAfterExtra, err := fileSystem.FreeSpace()
	require.NoError(t, err)
	used := freeAfterTruncate - freeAfterExtra
	assert.LessOrEqual(t, used, int64(1024*1024)+fileSystem.ChunkSize())
}

func TestFileSystem_RenameToLongUnicodeName(t *testing.T) {
	image, fileSystem := newTestVolume(t, testVolumeSize)
	root := fileSystem.RootDirectory()

	file, err := root.CreateFile("a.txt")
	require.NoError(t, err)

	// 200 characters including CJK, each one UTF-16 code unit.
	newName := strings.Repeat("中文", 50) + strings.Repeat("x", 100)
	require.Len(t, []rune(newName), 200)
	require.NoError(t, file.SetName(newName))

	names, err := root.List()
	require.NoError(t, err)
	assert.Equal(t, []string{newName}, names)

	// On disk the name takes ceil(200/13) = 16 LFN records plus the short
	// entry, all bound by a matching checksum.
	reopened := mountImage(t, image)
	entry := reopened.root.findEntry(newName)
	require.NotNil(t, entry)
	assert.Equal(t, 17, entry.EntryCount())

	raw := make([]byte, reopened.root.chain.Length())
	require.NoError(t, reopened.root.chain.Read(0, raw))

	lfnRecords := 0
	expectedChecksum := entry.ActualEntry().ShortName().CheckSum()
	for offset := 0; offset+dirEntrySize <= len(raw); offset += dirEntrySize {
		if raw[offset] == 0 {
			break
		}
		if raw[offset+11] == attrLfn {
			lfnRecords++
			assert.Equal(t, expectedChecksum, raw[offset+13])
		}
	}
	assert.Equal(t, 16, lfnRecords)
}

func TestFileSystem_DirectoryClusterGrowth(t *testing.T) {
	_, fileSystem := newTestVolume(t, testVolumeSize)
	root := fileSystem.root

	require.Equal(t, 1, root.chain.ClusterCount())

	// Each file takes one LFN record plus the short entry: 64 bytes. The
	// label takes another 32, so 70 files spill over the 4096 byte
	// cluster.
	for i := 0; i < 70; i++ {
		_, err := root.CreateFile(fmt.Sprintf("file-%02d.txt", i))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, root.chain.ClusterCount())

	// The rewrite after deleting them shrinks the chain again.
	children, err := root.ListFiles()
	require.NoError(t, err)
	for _, child := range children {
		require.NoError(t, child.Delete())
	}
	assert.Equal(t, 1, root.chain.ClusterCount())
}

func TestFileSystem_DeleteRecursive(t *testing.T) {
	_, fileSystem := newTestVolume(t, testVolumeSize)
	root := fileSystem.RootDirectory()

	freeBefore, err := fileSystem.FreeSpace()
	require.NoError(t, err)

	dir, err := root.CreateDirectory("nested")
	require.NoError(t, err)
	sub, err := dir.CreateDirectory("deeper")
	require.NoError(t, err)
	file, err := sub.CreateFile("data.bin")
	require.NoError(t, err)
	require.NoError(t, file.Write(0, bytes.Repeat([]byte{0xAB}, 10000)))
	require.NoError(t, file.Flush())

	require.NoError(t, dir.Delete())

	names, err := root.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	freeAfter, err := fileSystem.FreeSpace()
	require.NoError(t, err)
	assert.Equal(t, freeBefore, freeAfter)
}

func TestFileSystem_RootIsProtected(t *testing.T) {
	_, fileSystem := newTestVolume(t, testVolumeSize)
	root := fileSystem.RootDirectory()

	assert.ErrorIs(t, root.Delete(), fs.ErrReadOnly)
	assert.ErrorIs(t, root.SetName("other"), fs.ErrReadOnly)
	assert.ErrorIs(t, root.SetLength(10), fs.ErrIsDirectory)
}

func TestFileSystem_CreateExisting(t *testing.T) {
	_, fileSystem := newTestVolume(t, testVolumeSize)
	root := fileSystem.RootDirectory()

	_, err := root.CreateFile("Some.txt")
	require.NoError(t, err)

	// Lookups fold case, so the same name in another casing collides.
	_, err = root.CreateFile("some.TXT")
	assert.ErrorIs(t, err, fs.ErrAlreadyExists)
	_, err = root.CreateDirectory("SOME.TXT")
	assert.ErrorIs(t, err, fs.ErrAlreadyExists)
}

func TestFileSystem_FlushTwiceIsStable(t *testing.T) {
	image, fileSystem := newTestVolume(t, testVolumeSize)
	root := fileSystem.RootDirectory()

	file, err := root.CreateFile("stable.txt")
	require.NoError(t, err)
	require.NoError(t, file.Write(0, []byte("payload")))
	require.NoError(t, file.Flush())

	snapshot := make([]byte, len(image))
	copy(snapshot, image)

	// A second flush without a mutation must not change anything on disk.
	require.NoError(t, file.Flush())
	assert.Equal(t, snapshot, image)
}

func TestFileSystem_SearchMiss(t *testing.T) {
	_, fileSystem := newTestVolume(t, testVolumeSize)

	found, err := fileSystem.RootDirectory().Search("does/not/exist")
	require.NoError(t, err)
	assert.Nil(t, found)
}
