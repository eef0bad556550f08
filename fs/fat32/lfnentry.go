package fat32

import (
	"bytes"
	"encoding/binary"
	"io"
	"unicode/utf16"

	log "github.com/sirupsen/logrus"
)

// lfnCodeUnits is the number of UCS-2 code units one LFN record carries.
const lfnCodeUnits = 13

// lfnLastMarker is OR-ed onto the sequence number of the logically last
// LFN record, which is stored physically first.
const lfnLastMarker = 0x40

// lfnLayout matches one 32 byte long file name record. The 13 code units
// are scattered over three runs.
type lfnLayout struct {
	Sequence     byte
	First        [5]uint16
	Attribute    byte
	EntryType    byte
	Checksum     byte
	Second       [6]uint16
	StartCluster [2]byte
	Third        [2]uint16
}

// LfnEntry is one logical directory entry: a long Unicode name encoded in
// a run of LFN records plus the trailing short name entry which carries
// the attributes, timestamps, start cluster and size. Entries without a
// long name (dot entries, pre-LFN volumes) consist of the short entry
// alone.
type LfnEntry struct {
	actual  *DirectoryEntry
	lfnName string
}

// newLfnEntry creates a fresh logical entry for the given long name.
func newLfnEntry(name string, shortName ShortName) *LfnEntry {
	actual := newDirectoryEntry()
	actual.SetShortName(shortName)

	return &LfnEntry{
		actual:  actual,
		lfnName: name,
	}
}

// newShortOnlyEntry creates an entry that has no long name, used for the
// dot and dotdot entries.
func newShortOnlyEntry(shortName ShortName) *LfnEntry {
	actual := newDirectoryEntry()
	actual.SetShortName(shortName)

	return &LfnEntry{actual: actual}
}

// readLfnEntry combines the buffered LFN records (in physical order,
// highest sequence first) with their short entry. A checksum mismatch
// discards the long name and falls back to the short name.
func readLfnEntry(actual *DirectoryEntry, lfnRecords []*DirectoryEntry) *LfnEntry {
	entry := &LfnEntry{actual: actual}
	if len(lfnRecords) == 0 {
		return entry
	}

	expected := actual.ShortName().CheckSum()
	units := make([]uint16, 0, len(lfnRecords)*lfnCodeUnits)

	// The records are stored in reverse: the physically first record
	// holds the end of the name. Walk them backwards to assemble it.
	for i := len(lfnRecords) - 1; i >= 0; i-- {
		record, err := parseLfnRecord(lfnRecords[i])
		if err != nil || record.Checksum != expected {
			log.Warnf("fat32: lfn checksum mismatch for %q, falling back to the short name", actual.ShortName().String())
			return entry
		}

		units = append(units, record.First[:]...)
		units = append(units, record.Second[:]...)
		units = append(units, record.Third[:]...)
	}

	// The name ends at the 0x0000 terminator, the rest is 0xFFFF padding.
	for i, unit := range units {
		if unit == 0 {
			units = units[:i]
			break
		}
	}

	entry.lfnName = string(utf16.Decode(units))
	return entry
}

func parseLfnRecord(e *DirectoryEntry) (*lfnLayout, error) {
	buffer := &bytes.Buffer{}
	if err := e.Serialize(buffer); err != nil {
		return nil, err
	}

	record := &lfnLayout{}
	if err := binary.Read(buffer, binary.LittleEndian, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ActualEntry returns the short name entry carrying the metadata.
func (e *LfnEntry) ActualEntry() *DirectoryEntry {
	return e.actual
}

// Name returns the long name, or the rendered short name if there is
// none.
func (e *LfnEntry) Name() string {
	if e.lfnName != "" {
		return e.lfnName
	}
	return e.actual.ShortName().String()
}

// SetName changes the long name and the short name backing it.
func (e *LfnEntry) SetName(name string, shortName ShortName) {
	e.lfnName = name
	e.actual.SetShortName(shortName)
}

// EntryCount returns the number of 32 byte records this entry serializes
// to: ceil(len/13) LFN records plus the short entry.
func (e *LfnEntry) EntryCount() int {
	if e.lfnName == "" {
		return 1
	}

	units := len(utf16.Encode([]rune(e.lfnName)))
	return (units+lfnCodeUnits-1)/lfnCodeUnits + 1
}

// Serialize writes the LFN records (highest sequence first) followed by
// the short entry.
func (e *LfnEntry) Serialize(w io.Writer) error {
	if e.lfnName != "" {
		units := utf16.Encode([]rune(e.lfnName))
		checksum := e.actual.ShortName().CheckSum()
		records := (len(units) + lfnCodeUnits - 1) / lfnCodeUnits

		for i := records - 1; i >= 0; i-- {
			record := lfnLayout{
				Sequence:  byte(i + 1),
				Attribute: attrLfn,
				Checksum:  checksum,
			}
			if i == records-1 {
				record.Sequence |= lfnLastMarker
			}

			chunk := units[i*lfnCodeUnits:]
			if len(chunk) > lfnCodeUnits {
				chunk = chunk[:lfnCodeUnits]
			}
			fillLfnUnits(&record, chunk)

			if err := binary.Write(w, binary.LittleEndian, &record); err != nil {
				return err
			}
		}
	}

	return e.actual.Serialize(w)
}

// fillLfnUnits spreads up to 13 code units over the three runs of the
// record, terminating a short chunk with 0x0000 and padding the rest with
// 0xFFFF.
func fillLfnUnits(record *lfnLayout, chunk []uint16) {
	padded := make([]uint16, lfnCodeUnits)
	for i := range padded {
		switch {
		case i < len(chunk):
			padded[i] = chunk[i]
		case i == len(chunk):
			padded[i] = 0x0000
		default:
			padded[i] = 0xFFFF
		}
	}

	copy(record.First[:], padded[0:5])
	copy(record.Second[:], padded[5:11])
	copy(record.Third[:], padded[11:13])
}

// copyDateTime copies all three timestamps from one entry to another,
// used for the dot entries of a new directory.
func copyDateTime(from, to *LfnEntry) {
	fromActual := from.ActualEntry()
	toActual := to.ActualEntry()
	toActual.SetCreatedAt(fromActual.CreatedAt())
	toActual.SetLastModified(fromActual.LastModified())
	toActual.SetLastAccessed(fromActual.LastAccessed())
}

// Convenience accessors delegating to the short entry.

func (e *LfnEntry) IsDirectory() bool        { return e.actual.IsDirectory() }
func (e *LfnEntry) SetDirectory()            { e.actual.SetDirectory() }
func (e *LfnEntry) StartCluster() uint32     { return e.actual.StartCluster() }
func (e *LfnEntry) SetStartCluster(c uint32) { e.actual.SetStartCluster(c) }
func (e *LfnEntry) FileSize() uint32         { return e.actual.FileSize() }
func (e *LfnEntry) SetFileSize(size uint32)  { e.actual.SetFileSize(size) }
