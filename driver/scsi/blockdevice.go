// Package scsi implements a block device driver speaking the SCSI
// transparent command set over the USB mass storage bulk-only transport.
// Every command travels as a command block wrapper (CBW), followed by an
// optional data phase on the bulk endpoints, concluded by a command status
// wrapper (CSW).
package scsi

import (
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/aligator/goums/checkpoint"
	"github.com/aligator/goums/driver"
	"github.com/aligator/goums/usb"
)

// These errors may occur while talking to the device.
var (
	ErrTransport            = errors.New("bulk transfer failed")
	ErrCommandFailed        = errors.New("scsi command failed")
	ErrPhaseError           = errors.New("device reported a phase error")
	ErrInvalidStatus        = errors.New("invalid command status wrapper")
	ErrShortRead            = errors.New("device returned less data than requested")
	ErrUnitNotReady         = errors.New("unit not ready")
	ErrNoDirectAccessDevice = errors.New("peripheral is not a direct access block device")
)

// initAttempts is how often TEST UNIT READY is sent during Init before
// giving up. Spinning disks and freshly attached card readers need a
// moment before they report ready.
const initAttempts = 20

// BlockDevice talks to one logical unit of a mass storage device.
//
// It is not safe for concurrent use: the bulk endpoint pair is exclusive
// and the CBW tags must stay monotonic, so callers have to serialize
// access themselves.
type BlockDevice struct {
	comm   usb.Communication
	config usb.DeviceConfig

	tag              uint32
	blockSize        uint32
	lastBlockAddress uint32
	inquiry          *InquiryResponse
}

// NewBlockDevice creates a driver for the logical unit selected by
// config.LUN on the given transport. Init must be called before any I/O.
func NewBlockDevice(comm usb.Communication, config usb.DeviceConfig) *BlockDevice {
	return &BlockDevice{
		comm:   comm,
		config: config,
	}
}

// Init spins up the unit: TEST UNIT READY (retried while the device
// settles), INQUIRY to make sure a direct access block device is
// attached, READ CAPACITY for the block size and count, and a best-effort
// MODE SENSE(6) some devices expect before the first media access.
func (b *BlockDevice) Init() error {
	for attempt := 0; ; attempt++ {
		err := b.transfer(newTestUnitReady(b.config.LUN), nil)
		if err == nil {
			break
		}
		if attempt+1 >= initAttempts {
			return checkpoint.Wrap(err, ErrUnitNotReady)
		}

		log.Debugf("scsi: unit not ready (attempt %d): %v", attempt+1, err)
		time.Sleep(100 * time.Millisecond)
	}

	inquiryData := make([]byte, inquiryLength)
	if err := b.transfer(newInquiry(b.config.LUN), inquiryData); err != nil {
		return checkpoint.From(err)
	}

	inquiry, err := parseInquiryResponse(inquiryData)
	if err != nil {
		return checkpoint.From(err)
	}
	if inquiry.PeripheralQualifier != 0 || inquiry.PeripheralDeviceType != peripheralDeviceTypeDirectAccess {
		return checkpoint.Wrap(
			fmt.Errorf("peripheral qualifier %d type 0x%02x", inquiry.PeripheralQualifier, inquiry.PeripheralDeviceType),
			ErrNoDirectAccessDevice)
	}
	b.inquiry = inquiry

	capacity := make([]byte, readCapacityLength)
	if err := b.transfer(newReadCapacity(b.config.LUN), capacity); err != nil {
		return checkpoint.From(err)
	}
	// READ CAPACITY data is big-endian: last addressable block, then the
	// block size in bytes.
	b.lastBlockAddress = uint32(capacity[0])<<24 | uint32(capacity[1])<<16 | uint32(capacity[2])<<8 | uint32(capacity[3])
	b.blockSize = uint32(capacity[4])<<24 | uint32(capacity[5])<<16 | uint32(capacity[6])<<8 | uint32(capacity[7])

	log.Debugf("scsi: %d blocks of %d bytes", int64(b.lastBlockAddress)+1, b.blockSize)

	modeSense := make([]byte, 192)
	if err := b.transfer(newModeSense6(b.config.LUN), modeSense); err != nil {
		log.Debugf("scsi: mode sense failed, ignoring: %v", err)
	}

	return nil
}

// Inquiry returns the INQUIRY data collected during Init.
func (b *BlockDevice) Inquiry() *InquiryResponse {
	return b.inquiry
}

// Read fills dst with blocks starting at deviceOffset. The offset and the
// buffer length must be multiples of the block size.
func (b *BlockDevice) Read(deviceOffset int64, dst []byte) error {
	if err := b.checkAccess(deviceOffset, len(dst)); err != nil {
		return err
	}
	if len(dst) == 0 {
		return nil
	}

	command := newRead10(b.config.LUN, uint32(deviceOffset/int64(b.blockSize)), uint32(len(dst)), b.blockSize)
	return b.transferWithRetry(command, dst)
}

// Write stores src at deviceOffset. The offset and the buffer length must
// be multiples of the block size.
func (b *BlockDevice) Write(deviceOffset int64, src []byte) error {
	if err := b.checkAccess(deviceOffset, len(src)); err != nil {
		return err
	}
	if len(src) == 0 {
		return nil
	}

	command := newWrite10(b.config.LUN, uint32(deviceOffset/int64(b.blockSize)), uint32(len(src)), b.blockSize)
	return b.transferWithRetry(command, src)
}

func (b *BlockDevice) BlockSize() int {
	return int(b.blockSize)
}

func (b *BlockDevice) Blocks() int64 {
	return int64(b.lastBlockAddress) + 1
}

func (b *BlockDevice) checkAccess(deviceOffset int64, length int) error {
	if deviceOffset%int64(b.blockSize) != 0 || length%int(b.blockSize) != 0 {
		return checkpoint.From(driver.ErrUnalignedAccess)
	}
	if deviceOffset+int64(length) > b.Blocks()*int64(b.blockSize) {
		return checkpoint.From(driver.ErrOutOfBounds)
	}
	return nil
}

// transferWithRetry runs one command and, if the transport itself failed,
// resets the bulk-only transport and retries exactly once. A failure after
// the reset is fatal for the operation.
func (b *BlockDevice) transferWithRetry(command commandBlockWrapper, data []byte) error {
	err := b.transfer(command, data)
	if err == nil || !errors.Is(err, ErrTransport) {
		return err
	}

	log.Warnf("scsi: transport error, running reset recovery: %v", err)
	if resetErr := b.resetRecovery(); resetErr != nil {
		return checkpoint.Wrap(resetErr, ErrTransport)
	}

	return b.transfer(command, data)
}

// transfer runs the three phases of a single command: CBW out, data in or
// out, CSW in.
func (b *BlockDevice) transfer(command commandBlockWrapper, data []byte) error {
	b.tag++
	tag := b.tag

	if err := b.bulkOutAll(command.serialize(tag)); err != nil {
		return checkpoint.Wrap(err, ErrTransport)
	}

	if len(data) > 0 {
		var err error
		if command.dataIn() {
			err = b.bulkInAll(data)
		} else {
			err = b.bulkOutAll(data)
		}
		if err != nil {
			return checkpoint.Wrap(err, ErrTransport)
		}
	}

	cswData := make([]byte, cswSize)
	if err := b.bulkInAll(cswData); err != nil {
		return checkpoint.Wrap(err, ErrTransport)
	}

	csw, err := parseCommandStatusWrapper(cswData)
	if err != nil {
		return err
	}
	if csw.tag != tag {
		return checkpoint.Wrap(fmt.Errorf("tag %d does not match %d", csw.tag, tag), ErrInvalidStatus)
	}

	switch csw.status {
	case cswStatusPassed:
		if command.dataIn() && csw.dataResidue > 0 {
			return checkpoint.Wrap(fmt.Errorf("%d bytes missing", csw.dataResidue), ErrShortRead)
		}
		return nil
	case cswStatusFailed:
		if sense := b.requestSense(command); sense != nil {
			return checkpoint.Wrap(sense, ErrCommandFailed)
		}
		return checkpoint.From(ErrCommandFailed)
	case cswStatusPhaseError:
		log.Warnf("scsi: phase error, running reset recovery")
		if resetErr := b.resetRecovery(); resetErr != nil {
			return checkpoint.Wrap(resetErr, ErrPhaseError)
		}
		return checkpoint.From(ErrPhaseError)
	default:
		return checkpoint.Wrap(fmt.Errorf("status 0x%02x", csw.status), ErrInvalidStatus)
	}
}

// requestSense fetches sense data after a failed command, best-effort.
// It never recurses: a failing REQUEST SENSE is not sensed again.
func (b *BlockDevice) requestSense(failed commandBlockWrapper) *Sense {
	if len(failed.cb) > 0 && failed.cb[0] == opRequestSense {
		return nil
	}

	data := make([]byte, requestSenseLength)
	if err := b.transfer(newRequestSense(b.config.LUN), data); err != nil {
		log.Debugf("scsi: request sense failed: %v", err)
		return nil
	}

	return parseSense(data)
}

// resetRecovery runs the bulk-only transport reset sequence: the class
// specific reset request followed by clearing the halt condition on both
// bulk endpoints.
func (b *BlockDevice) resetRecovery() error {
	var result *multierror.Error

	_, err := b.comm.ControlTransfer(usb.RequestTypeBulkOnlyReset, usb.RequestBulkOnlyReset,
		0, uint16(b.config.InterfaceNumber), nil)
	result = multierror.Append(result, err)

	for _, endpoint := range []byte{b.config.InEndpointAddress, b.config.OutEndpointAddress} {
		_, err = b.comm.ControlTransfer(usb.RequestTypeClearFeature, usb.RequestClearFeature,
			usb.FeatureEndpointHalt, uint16(endpoint), nil)
		result = multierror.Append(result, err)
	}

	return checkpoint.From(result.ErrorOrNil())
}

func (b *BlockDevice) bulkOutAll(data []byte) error {
	for len(data) > 0 {
		transferred, err := b.comm.BulkOutTransfer(data)
		if err != nil {
			return err
		}
		if transferred <= 0 {
			return fmt.Errorf("bulk out transferred %d bytes", transferred)
		}
		data = data[transferred:]
	}
	return nil
}

func (b *BlockDevice) bulkInAll(data []byte) error {
	for len(data) > 0 {
		transferred, err := b.comm.BulkInTransfer(data)
		if err != nil {
			return err
		}
		if transferred <= 0 {
			return fmt.Errorf("bulk in transferred %d bytes", transferred)
		}
		data = data[transferred:]
	}
	return nil
}
