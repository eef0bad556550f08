package fat32

import (
	"strings"
	"time"

	"github.com/noxer/bytewriter"
	log "github.com/sirupsen/logrus"

	"github.com/aligator/goums/checkpoint"
	"github.com/aligator/goums/driver"
	"github.com/aligator/goums/fs"
)

// Directory is a directory on a FAT32 volume. The entries are read from
// the cluster chain once and cached; every structural mutation
// re-serializes the whole entry table and writes it back immediately.
type Directory struct {
	device     driver.BlockDevice
	fat        *FAT
	bootSector *BootSector

	chain *ClusterChain

	// entries stays nil until init ran. The two maps index it: lfnMap by
	// the lowercase folded name because FAT32 is case-insensitive,
	// shortNameMap for collision checks when generating short names.
	entries      []*LfnEntry
	lfnMap       map[string]*LfnEntry
	shortNameMap map[ShortName]*DirectoryEntry

	// parent and entry are nil for the root directory.
	parent *Directory
	entry  *LfnEntry

	volumeLabel string
}

var _ fs.UsbFile = (*Directory)(nil)

func newDirectory(entry *LfnEntry, device driver.BlockDevice, fat *FAT, bootSector *BootSector, parent *Directory) *Directory {
	return &Directory{
		device:       device,
		fat:          fat,
		bootSector:   bootSector,
		entry:        entry,
		parent:       parent,
		lfnMap:       map[string]*LfnEntry{},
		shortNameMap: map[ShortName]*DirectoryEntry{},
	}
}

// readRoot reads the root directory of the volume.
func readRoot(device driver.BlockDevice, fat *FAT, bootSector *BootSector) (*Directory, error) {
	root := newDirectory(nil, device, fat, bootSector, nil)

	chain, err := newClusterChain(bootSector.RootDirStartCluster(), device, fat, bootSector)
	if err != nil {
		return nil, err
	}
	root.chain = chain

	if err := root.init(); err != nil {
		return nil, err
	}
	return root, nil
}

// init lazily builds the cluster chain and reads the entries. It is
// idempotent: once entries exist nothing is read again, so the dot
// entries of a freshly created directory are not clobbered by stale disk
// data.
func (d *Directory) init() error {
	if d.chain == nil {
		chain, err := newClusterChain(d.entry.StartCluster(), d.device, d.fat, d.bootSector)
		if err != nil {
			return err
		}
		d.chain = chain
	}

	if d.entries == nil {
		d.entries = []*LfnEntry{}
		return d.readEntries()
	}

	return nil
}

// readEntries parses the serialized entry table from the cluster chain.
// LFN records are buffered until their short entry arrives.
func (d *Directory) readEntries() error {
	buffer := make([]byte, d.chain.Length())
	if err := d.chain.Read(0, buffer); err != nil {
		return err
	}

	var lfnRecords []*DirectoryEntry
	for offset := 0; offset+dirEntrySize <= len(buffer); offset += dirEntrySize {
		e, err := parseDirectoryEntry(buffer[offset : offset+dirEntrySize])
		if err != nil {
			return checkpoint.Wrap(err, fs.ErrInvalidFormat)
		}

		if e.IsEnd() {
			break
		}

		// A deleted entry also invalidates any long name records before it.
		if e.IsDeleted() {
			lfnRecords = nil
			continue
		}

		if e.IsLfnEntry() {
			lfnRecords = append(lfnRecords, e)
			continue
		}

		if e.IsVolumeLabel() {
			if !d.IsRoot() {
				log.Warnf("fat32: volume label outside the root directory")
			}
			d.volumeLabel = e.VolumeLabel()
			log.Debugf("fat32: volume label %q", d.volumeLabel)
			continue
		}

		if e.IsHidden() {
			log.Debugf("fat32: skipping hidden entry %q", e.ShortName().String())
			continue
		}

		d.addEntry(readLfnEntry(e, lfnRecords), e)
		lfnRecords = nil
	}

	return nil
}

// addEntry registers the entry in the list and both indexes. The change
// is not written to the device, call write for that.
func (d *Directory) addEntry(entry *LfnEntry, actual *DirectoryEntry) {
	d.entries = append(d.entries, entry)
	d.lfnMap[strings.ToLower(entry.Name())] = entry
	d.shortNameMap[actual.ShortName()] = actual
}

// removeEntry unregisters the entry. The change is not written to the
// device, call write for that.
func (d *Directory) removeEntry(entry *LfnEntry) {
	for i, e := range d.entries {
		if e == entry {
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			break
		}
	}
	delete(d.lfnMap, strings.ToLower(entry.Name()))
	delete(d.shortNameMap, entry.ActualEntry().ShortName())
}

// renameEntry gives the entry a new long name and a freshly generated
// short name, then rewrites the directory.
func (d *Directory) renameEntry(entry *LfnEntry, newName string) error {
	if entry.Name() == newName {
		return nil
	}

	if err := d.init(); err != nil {
		return err
	}

	d.removeEntry(entry)
	entry.SetName(newName, GenerateShortName(newName, d.shortNameMap))
	d.addEntry(entry, entry.ActualEntry())

	return d.write()
}

// write serializes the whole entry table and stores it through the
// cluster chain, resizing the chain first. The layout is: volume label
// (root only), then per logical entry the LFN records followed by the
// short entry, then a zero filled sentinel if the table does not fill the
// chain exactly.
func (d *Directory) write() error {
	if err := d.init(); err != nil {
		return err
	}

	writeVolumeLabel := d.IsRoot() && d.volumeLabel != ""

	totalEntries := 0
	for _, entry := range d.entries {
		totalEntries += entry.EntryCount()
	}
	if writeVolumeLabel {
		totalEntries++
	}

	totalBytes := int64(totalEntries) * dirEntrySize
	if totalBytes == 0 {
		// An empty root still needs one cluster for the sentinel.
		totalBytes = dirEntrySize
	}

	if err := d.chain.SetLength(totalBytes); err != nil {
		return err
	}

	buffer := make([]byte, d.chain.Length())
	w := bytewriter.New(buffer)
	if writeVolumeLabel {
		if err := createVolumeLabel(d.volumeLabel).Serialize(w); err != nil {
			return checkpoint.From(err)
		}
	}
	for _, entry := range d.entries {
		if err := entry.Serialize(w); err != nil {
			return checkpoint.From(err)
		}
	}

	// The rest of the buffer stays zero which includes the sentinel.
	return d.chain.Write(0, buffer)
}

func (d *Directory) IsDirectory() bool {
	return true
}

// IsRoot reports whether this is the root directory, which has no entry
// in any parent.
func (d *Directory) IsRoot() bool {
	return d.entry == nil
}

// VolumeLabel returns the label found in the root directory, or "".
func (d *Directory) VolumeLabel() string {
	return d.volumeLabel
}

func (d *Directory) Name() string {
	if d.IsRoot() {
		return ""
	}
	return d.entry.Name()
}

func (d *Directory) SetName(newName string) error {
	if d.IsRoot() {
		return checkpoint.From(fs.ErrReadOnly)
	}
	return d.parent.renameEntry(d.entry, newName)
}

func (d *Directory) CreatedAt() time.Time {
	if d.IsRoot() {
		return time.Time{}
	}
	return d.entry.ActualEntry().CreatedAt()
}

func (d *Directory) LastModified() time.Time {
	if d.IsRoot() {
		return time.Time{}
	}
	return d.entry.ActualEntry().LastModified()
}

func (d *Directory) LastAccessed() time.Time {
	if d.IsRoot() {
		return time.Time{}
	}
	return d.entry.ActualEntry().LastAccessed()
}

func (d *Directory) Parent() fs.UsbFile {
	if d.parent == nil {
		return nil
	}
	return d.parent
}

func (d *Directory) Length() (int64, error) {
	return 0, checkpoint.From(fs.ErrIsDirectory)
}

func (d *Directory) SetLength(length int64) error {
	return checkpoint.From(fs.ErrIsDirectory)
}

func (d *Directory) Read(offset int64, dst []byte) error {
	return checkpoint.From(fs.ErrIsDirectory)
}

func (d *Directory) Write(offset int64, src []byte) error {
	return checkpoint.From(fs.ErrIsDirectory)
}

func (d *Directory) Flush() error {
	return checkpoint.From(fs.ErrIsDirectory)
}

func (d *Directory) Close() error {
	return checkpoint.From(fs.ErrIsDirectory)
}

// isDotEntry filters the "." and ".." bookkeeping entries from listings.
func isDotEntry(name string) bool {
	return name == "." || name == ".."
}

// List returns the names of all entries except the dot entries.
func (d *Directory) List() ([]string, error) {
	if err := d.init(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(d.entries))
	for _, entry := range d.entries {
		if !isDotEntry(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// ListFiles returns a file or directory view for every entry except the
// dot entries.
func (d *Directory) ListFiles() ([]fs.UsbFile, error) {
	if err := d.init(); err != nil {
		return nil, err
	}

	files := make([]fs.UsbFile, 0, len(d.entries))
	for _, entry := range d.entries {
		if isDotEntry(entry.Name()) {
			continue
		}
		files = append(files, d.view(entry))
	}
	return files, nil
}

// view wraps an entry into its file or directory representation.
func (d *Directory) view(entry *LfnEntry) fs.UsbFile {
	if entry.IsDirectory() {
		return newDirectory(entry, d.device, d.fat, d.bootSector, d)
	}
	return newFile(entry, d.device, d.fat, d.bootSector, d)
}

// CreateFile creates an empty file with one allocated cluster and writes
// the updated entry table immediately.
func (d *Directory) CreateFile(name string) (fs.UsbFile, error) {
	if err := d.init(); err != nil {
		return nil, err
	}
	if _, exists := d.lfnMap[strings.ToLower(name)]; exists {
		return nil, checkpoint.From(fs.ErrAlreadyExists)
	}

	shortName := GenerateShortName(name, d.shortNameMap)
	entry := newLfnEntry(name, shortName)

	newChain, err := d.fat.Alloc(nil, 1)
	if err != nil {
		return nil, err
	}
	entry.SetStartCluster(newChain[0])

	log.Debugf("fat32: creating file %q with short name %q", name, shortName.String())
	d.addEntry(entry, entry.ActualEntry())
	if err := d.write(); err != nil {
		return nil, err
	}

	return newFile(entry, d.device, d.fat, d.bootSector, d), nil
}

// CreateDirectory creates a directory with its dot entries and writes
// both entry tables immediately.
func (d *Directory) CreateDirectory(name string) (fs.UsbFile, error) {
	if err := d.init(); err != nil {
		return nil, err
	}
	if _, exists := d.lfnMap[strings.ToLower(name)]; exists {
		return nil, checkpoint.From(fs.ErrAlreadyExists)
	}

	shortName := GenerateShortName(name, d.shortNameMap)
	entry := newLfnEntry(name, shortName)
	entry.SetDirectory()

	newChain, err := d.fat.Alloc(nil, 1)
	if err != nil {
		return nil, err
	}
	startCluster := newChain[0]
	entry.SetStartCluster(startCluster)

	log.Debugf("fat32: creating directory %q with short name %q", name, shortName.String())
	d.addEntry(entry, entry.ActualEntry())
	if err := d.write(); err != nil {
		return nil, err
	}

	child := newDirectory(entry, d.device, d.fat, d.bootSector, d)
	// Mark the child initialized so the dot entries are not overwritten
	// by whatever the fresh cluster contains.
	child.entries = []*LfnEntry{}

	dot := newShortOnlyEntry(NewShortName(".", ""))
	dot.SetDirectory()
	dot.SetStartCluster(startCluster)
	copyDateTime(entry, dot)
	child.addEntry(dot, dot.ActualEntry())

	// The dotdot entry points at the parent, or cluster 0 if the parent
	// is the root directory.
	dotDot := newShortOnlyEntry(NewShortName("..", ""))
	dotDot.SetDirectory()
	if !d.IsRoot() {
		dotDot.SetStartCluster(d.entry.StartCluster())
	}
	copyDateTime(entry, dotDot)
	child.addEntry(dotDot, dotDot.ActualEntry())

	if err := child.write(); err != nil {
		return nil, err
	}

	return child, nil
}

// Search resolves a path relative to this directory. It returns nil
// without an error when nothing is found.
func (d *Directory) Search(path string) (fs.UsbFile, error) {
	if err := d.init(); err != nil {
		return nil, err
	}

	path = strings.Trim(path, fs.Separator)
	if path == "" {
		return d, nil
	}

	name, rest, descend := strings.Cut(path, fs.Separator)
	entry := d.findEntry(name)
	if entry == nil {
		return nil, nil
	}

	if !descend {
		return d.view(entry), nil
	}

	if !entry.IsDirectory() {
		return nil, nil
	}
	subDir := newDirectory(entry, d.device, d.fat, d.bootSector, d)
	return subDir.Search(rest)
}

// findEntry looks up a child by name, case-insensitively.
func (d *Directory) findEntry(name string) *LfnEntry {
	return d.lfnMap[strings.ToLower(name)]
}

// Delete removes the directory together with all its contents, then
// releases its clusters. The root directory cannot be deleted.
func (d *Directory) Delete() error {
	if d.IsRoot() {
		return checkpoint.From(fs.ErrReadOnly)
	}

	if err := d.init(); err != nil {
		return err
	}

	children, err := d.ListFiles()
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := child.Delete(); err != nil {
			return err
		}
	}

	d.parent.removeEntry(d.entry)
	if err := d.parent.write(); err != nil {
		return err
	}

	return d.chain.SetLength(0)
}

// MoveTo moves this directory into the destination directory.
func (d *Directory) MoveTo(destination fs.UsbFile) error {
	if d.IsRoot() {
		return checkpoint.From(fs.ErrReadOnly)
	}

	destDir, err := d.parent.move(d.entry, destination)
	if err != nil {
		return err
	}

	d.parent = destDir
	return nil
}

// move transfers an entry currently stored in this directory to the
// destination, writing both entry tables. It returns the destination so
// the caller can update its parent reference.
func (d *Directory) move(entry *LfnEntry, destination fs.UsbFile) (*Directory, error) {
	if destination == nil || !destination.IsDirectory() {
		return nil, checkpoint.From(fs.ErrNotDirectory)
	}

	destDir, ok := destination.(*Directory)
	if !ok || destDir.fat != d.fat {
		return nil, checkpoint.From(fs.ErrCrossFileSystem)
	}

	if err := d.init(); err != nil {
		return nil, err
	}
	if err := destDir.init(); err != nil {
		return nil, err
	}

	if _, exists := destDir.lfnMap[strings.ToLower(entry.Name())]; exists {
		return nil, checkpoint.From(fs.ErrAlreadyExists)
	}

	d.removeEntry(entry)
	destDir.addEntry(entry, entry.ActualEntry())

	if err := d.write(); err != nil {
		return nil, err
	}
	if err := destDir.write(); err != nil {
		return nil, err
	}

	return destDir, nil
}
