package scsi

import (
	"encoding/binary"
	"fmt"

	"github.com/noxer/bytewriter"

	"github.com/aligator/goums/checkpoint"
)

const (
	// cbwSignature spells 'USBC' in little-endian.
	cbwSignature uint32 = 0x43425355
	// cswSignature spells 'USBS' in little-endian.
	cswSignature uint32 = 0x53425355

	cbwSize = 31
	cswSize = 13

	// cbwFlagsIn marks the data phase of a command as device-to-host.
	cbwFlagsIn byte = 0x80

	cswStatusPassed     byte = 0
	cswStatusFailed     byte = 1
	cswStatusPhaseError byte = 2
)

// commandBlockWrapper describes one SCSI command before it is framed into
// the 31 byte CBW of the bulk-only transport. The tag is assigned at send
// time by the block device so it stays monotonic per endpoint pair.
type commandBlockWrapper struct {
	transferLength uint32
	flags          byte
	lun            byte
	cb             []byte
}

func (c commandBlockWrapper) dataIn() bool {
	return c.flags&cbwFlagsIn != 0
}

// serialize frames the command into a fresh CBW buffer.
func (c commandBlockWrapper) serialize(tag uint32) []byte {
	buffer := make([]byte, cbwSize)
	w := bytewriter.New(buffer)

	binary.Write(w, binary.LittleEndian, cbwSignature)
	binary.Write(w, binary.LittleEndian, tag)
	binary.Write(w, binary.LittleEndian, c.transferLength)
	w.Write([]byte{c.flags, c.lun, byte(len(c.cb))})
	w.Write(c.cb)

	return buffer
}

// commandStatusWrapper is the 13 byte status frame which concludes every
// command.
type commandStatusWrapper struct {
	signature   uint32
	tag         uint32
	dataResidue uint32
	status      byte
}

func parseCommandStatusWrapper(data []byte) (*commandStatusWrapper, error) {
	if len(data) != cswSize {
		return nil, checkpoint.Wrap(fmt.Errorf("%d bytes instead of %d", len(data), cswSize), ErrInvalidStatus)
	}

	csw := &commandStatusWrapper{
		signature:   binary.LittleEndian.Uint32(data[0:4]),
		tag:         binary.LittleEndian.Uint32(data[4:8]),
		dataResidue: binary.LittleEndian.Uint32(data[8:12]),
		status:      data[12],
	}

	if csw.signature != cswSignature {
		return nil, checkpoint.Wrap(fmt.Errorf("signature 0x%08x", csw.signature), ErrInvalidStatus)
	}

	return csw, nil
}

// SCSI operation codes used by the driver.
const (
	opTestUnitReady byte = 0x00
	opRequestSense  byte = 0x03
	opInquiry       byte = 0x12
	opModeSense6    byte = 0x1A
	opReadCapacity  byte = 0x25
	opRead10        byte = 0x28
	opWrite10       byte = 0x2A
)

func newTestUnitReady(lun byte) commandBlockWrapper {
	return commandBlockWrapper{
		lun: lun,
		cb:  []byte{opTestUnitReady, 0, 0, 0, 0, 0},
	}
}

const inquiryLength = 36

func newInquiry(lun byte) commandBlockWrapper {
	return commandBlockWrapper{
		transferLength: inquiryLength,
		flags:          cbwFlagsIn,
		lun:            lun,
		cb:             []byte{opInquiry, 0, 0, 0, inquiryLength, 0},
	}
}

const requestSenseLength = 18

func newRequestSense(lun byte) commandBlockWrapper {
	return commandBlockWrapper{
		transferLength: requestSenseLength,
		flags:          cbwFlagsIn,
		lun:            lun,
		cb:             []byte{opRequestSense, 0, 0, 0, requestSenseLength, 0},
	}
}

const readCapacityLength = 8

func newReadCapacity(lun byte) commandBlockWrapper {
	return commandBlockWrapper{
		transferLength: readCapacityLength,
		flags:          cbwFlagsIn,
		lun:            lun,
		cb:             []byte{opReadCapacity, 0, 0, 0, 0, 0, 0, 0, 0, 0},
	}
}

// powerConditionPage is the mode page queried during Init. The result is
// not interpreted, some devices just expect the request before the first
// media access.
const powerConditionPage = 0x1A

func newModeSense6(lun byte) commandBlockWrapper {
	return commandBlockWrapper{
		transferLength: 192,
		flags:          cbwFlagsIn,
		lun:            lun,
		cb:             []byte{opModeSense6, 0, powerConditionPage, 0, 192, 0},
	}
}

// newRead10 builds a READ(10) for transferBytes starting at the given
// logical block address. The command block carries big-endian fields, only
// the surrounding CBW is little-endian.
func newRead10(lun byte, blockAddress uint32, transferBytes uint32, blockSize uint32) commandBlockWrapper {
	cb := make([]byte, 10)
	cb[0] = opRead10
	binary.BigEndian.PutUint32(cb[2:6], blockAddress)
	binary.BigEndian.PutUint16(cb[7:9], uint16(transferBytes/blockSize))

	return commandBlockWrapper{
		transferLength: transferBytes,
		flags:          cbwFlagsIn,
		lun:            lun,
		cb:             cb,
	}
}

func newWrite10(lun byte, blockAddress uint32, transferBytes uint32, blockSize uint32) commandBlockWrapper {
	cb := make([]byte, 10)
	cb[0] = opWrite10
	binary.BigEndian.PutUint32(cb[2:6], blockAddress)
	binary.BigEndian.PutUint16(cb[7:9], uint16(transferBytes/blockSize))

	return commandBlockWrapper{
		transferLength: transferBytes,
		lun:            lun,
		cb:             cb,
	}
}

// InquiryResponse holds the interesting parts of the standard INQUIRY data.
type InquiryResponse struct {
	PeripheralQualifier  byte
	PeripheralDeviceType byte
	Removable            bool
	SpcVersion           byte
	ResponseDataFormat   byte
}

// peripheralDeviceTypeDirectAccess identifies a direct-access block device
// (SBC), the only peripheral type this driver supports.
const peripheralDeviceTypeDirectAccess = 0x00

func parseInquiryResponse(data []byte) (*InquiryResponse, error) {
	if len(data) < 5 {
		return nil, checkpoint.Wrap(fmt.Errorf("inquiry data too short: %d bytes", len(data)), ErrInvalidStatus)
	}

	return &InquiryResponse{
		PeripheralQualifier:  data[0] >> 5,
		PeripheralDeviceType: data[0] & 0x1F,
		Removable:            data[1]&0x80 != 0,
		SpcVersion:           data[2],
		ResponseDataFormat:   data[3] & 0x0F,
	}, nil
}

// Sense carries the fixed-format sense data of a failed command.
type Sense struct {
	Key  byte
	ASC  byte
	ASCQ byte
}

func parseSense(data []byte) *Sense {
	if len(data) < 14 {
		return nil
	}

	return &Sense{
		Key:  data[2] & 0x0F,
		ASC:  data[12],
		ASCQ: data[13],
	}
}

func (s *Sense) Error() string {
	return fmt.Sprintf("sense key 0x%02x asc 0x%02x ascq 0x%02x", s.Key, s.ASC, s.ASCQ)
}
