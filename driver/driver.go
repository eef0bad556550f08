// Package driver contains the block device abstraction the filesystem
// layer is written against, together with a file-backed implementation for
// working on plain image files.
package driver

// BlockDevice is a block-addressed storage device.
//
// Read and Write take a byte offset into the device which must be aligned
// to BlockSize, and a buffer whose length must be a multiple of BlockSize.
// Callers that need unaligned access have to buffer the partial regions
// through a scratch block themselves.
type BlockDevice interface {
	// Init prepares the device for I/O. It must be called once before the
	// first Read or Write.
	Init() error

	// Read fills dst with the blocks starting at the given byte offset.
	Read(deviceOffset int64, dst []byte) error

	// Write stores src at the given byte offset.
	Write(deviceOffset int64, src []byte) error

	// BlockSize returns the size of a single block in bytes.
	BlockSize() int

	// Blocks returns the total number of blocks of the device.
	Blocks() int64
}
