package fat32

import (
	"bytes"
	"encoding/binary"
	"io"
	"time"
)

// dirEntrySize is the size of every record in a directory, regular or LFN.
const dirEntrySize = 32

// Attribute flags of a regular directory entry. An entry whose attribute
// byte equals attrLfn is a long file name record instead.
const (
	attrReadOnly    byte = 0x01
	attrHidden      byte = 0x02
	attrSystem      byte = 0x04
	attrVolumeLabel byte = 0x08
	attrDirectory   byte = 0x10
	attrArchive     byte = 0x20

	attrLfn = attrReadOnly | attrHidden | attrSystem | attrVolumeLabel
)

// deletedMarker in the first name byte marks a free, previously used slot.
const deletedMarker = 0xE5

// entryLayout matches the 32 byte on-disk record of a regular (short
// name) directory entry.
type entryLayout struct {
	Name            [11]byte
	Attribute       byte
	NTReserved      byte
	CreateTimeTenth byte
	CreateTime      uint16
	CreateDate      uint16
	LastAccessDate  uint16
	FirstClusterHI  uint16
	WriteTime       uint16
	WriteDate       uint16
	FirstClusterLO  uint16
	FileSize        uint32
}

// DirectoryEntry is one 32 byte directory record.
type DirectoryEntry struct {
	layout entryLayout
}

// parseDirectoryEntry decodes one record. The caller has to hand in
// exactly dirEntrySize bytes.
func parseDirectoryEntry(data []byte) (*DirectoryEntry, error) {
	e := &DirectoryEntry{}
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &e.layout); err != nil {
		return nil, err
	}
	return e, nil
}

// newDirectoryEntry creates a fresh entry with all timestamps set to now.
func newDirectoryEntry() *DirectoryEntry {
	e := &DirectoryEntry{}
	now := time.Now()
	e.SetCreatedAt(now)
	e.SetLastModified(now)
	e.SetLastAccessed(now)
	return e
}

// Serialize writes the record to w.
func (e *DirectoryEntry) Serialize(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, &e.layout)
}

func (e *DirectoryEntry) IsLfnEntry() bool {
	return e.layout.Attribute&(attrLfn|attrDirectory|attrArchive) == attrLfn
}

func (e *DirectoryEntry) IsDirectory() bool {
	return e.layout.Attribute&attrDirectory != 0 && !e.IsLfnEntry()
}

func (e *DirectoryEntry) IsVolumeLabel() bool {
	return e.layout.Attribute&attrVolumeLabel != 0 && !e.IsLfnEntry() && !e.IsDirectory()
}

func (e *DirectoryEntry) IsHidden() bool {
	return e.layout.Attribute&attrHidden != 0 && !e.IsLfnEntry()
}

func (e *DirectoryEntry) IsReadOnlyFlag() bool {
	return e.layout.Attribute&attrReadOnly != 0
}

func (e *DirectoryEntry) IsSystem() bool {
	return e.layout.Attribute&attrSystem != 0 && !e.IsLfnEntry()
}

func (e *DirectoryEntry) IsDeleted() bool {
	return e.layout.Name[0] == deletedMarker
}

// IsEnd reports the zero-filled sentinel terminating a directory.
func (e *DirectoryEntry) IsEnd() bool {
	return e.layout.Name[0] == 0
}

func (e *DirectoryEntry) SetDirectory() {
	e.layout.Attribute |= attrDirectory
}

func (e *DirectoryEntry) ShortName() ShortName {
	return ParseShortName(e.layout.Name[:])
}

func (e *DirectoryEntry) SetShortName(name ShortName) {
	name.Serialize(e.layout.Name[:])
}

// VolumeLabel renders the 11 name bytes of a volume label entry.
func (e *DirectoryEntry) VolumeLabel() string {
	label := e.layout.Name[:]
	end := len(label)
	for end > 0 && (label[end-1] == ' ' || label[end-1] == 0) {
		end--
	}
	return string(label[:end])
}

// createVolumeLabel builds the special root directory entry holding the
// volume label.
func createVolumeLabel(label string) *DirectoryEntry {
	e := &DirectoryEntry{}
	for i := range e.layout.Name {
		e.layout.Name[i] = ' '
	}
	copy(e.layout.Name[:], label)
	e.layout.Attribute = attrVolumeLabel
	return e
}

func (e *DirectoryEntry) StartCluster() uint32 {
	return uint32(e.layout.FirstClusterHI)<<16 | uint32(e.layout.FirstClusterLO)
}

func (e *DirectoryEntry) SetStartCluster(cluster uint32) {
	e.layout.FirstClusterHI = uint16(cluster >> 16)
	e.layout.FirstClusterLO = uint16(cluster)
}

func (e *DirectoryEntry) FileSize() uint32 {
	return e.layout.FileSize
}

func (e *DirectoryEntry) SetFileSize(size uint32) {
	e.layout.FileSize = size
}

func (e *DirectoryEntry) CreatedAt() time.Time {
	return parseDateTime(e.layout.CreateDate, e.layout.CreateTime, e.layout.CreateTimeTenth)
}

func (e *DirectoryEntry) SetCreatedAt(t time.Time) {
	e.layout.CreateDate = serializeDate(t)
	e.layout.CreateTime = serializeTime(t)
	e.layout.CreateTimeTenth = serializeTenths(t)
}

func (e *DirectoryEntry) LastModified() time.Time {
	return parseDateTime(e.layout.WriteDate, e.layout.WriteTime, 0)
}

func (e *DirectoryEntry) SetLastModified(t time.Time) {
	e.layout.WriteDate = serializeDate(t)
	e.layout.WriteTime = serializeTime(t)
}

// LastAccessed only has date resolution, the time of day is always
// midnight.
func (e *DirectoryEntry) LastAccessed() time.Time {
	return parseDate(e.layout.LastAccessDate)
}

func (e *DirectoryEntry) SetLastAccessed(t time.Time) {
	e.layout.LastAccessDate = serializeDate(t)
}
