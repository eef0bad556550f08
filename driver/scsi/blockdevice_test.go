package scsi

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aligator/goums/usb"
	"github.com/aligator/goums/usb/mockusb"
)

var testConfig = usb.DeviceConfig{
	VendorID:           0x1234,
	ProductID:          0x5678,
	InterfaceNumber:    0,
	InEndpointAddress:  0x81,
	OutEndpointAddress: 0x02,
	LUN:                0,
}

// fakeBulkDevice emulates a bulk-only mass storage device backed by a
// byte slice. It understands just enough of the protocol to exercise the
// driver: CBW parsing, data phases and CSW generation.
type fakeBulkDevice struct {
	data      []byte
	blockSize uint32

	// queued bulk-in payloads, data phase first, then the CSW.
	inQueue [][]byte

	// pending WRITE(10) data phase.
	dataOutRemaining uint32
	dataOutOffset    int64

	// fault injection
	failNextCommand    bool
	phaseErrorNext     bool
	transportErrorNext bool

	controlRequests []byte
}

func newFakeBulkDevice(blocks int) *fakeBulkDevice {
	return &fakeBulkDevice{
		data:      make([]byte, blocks*512),
		blockSize: 512,
	}
}

func (f *fakeBulkDevice) Open() error  { return nil }
func (f *fakeBulkDevice) Close() error { return nil }

func (f *fakeBulkDevice) ControlTransfer(requestType, request byte, value, index uint16, data []byte) (int, error) {
	f.controlRequests = append(f.controlRequests, request)
	return 0, nil
}

func (f *fakeBulkDevice) queueCsw(tag uint32, status byte) {
	csw := make([]byte, 13)
	binary.LittleEndian.PutUint32(csw[0:], cswSignature)
	binary.LittleEndian.PutUint32(csw[4:], tag)
	csw[12] = status
	f.inQueue = append(f.inQueue, csw)
}

func (f *fakeBulkDevice) BulkOutTransfer(p []byte) (int, error) {
	if f.transportErrorNext {
		f.transportErrorNext = false
		return 0, errors.New("injected transport error")
	}

	if f.dataOutRemaining > 0 {
		copy(f.data[f.dataOutOffset:], p)
		f.dataOutOffset += int64(len(p))
		f.dataOutRemaining -= uint32(len(p))
		return len(p), nil
	}

	if len(p) != cbwSize || binary.LittleEndian.Uint32(p[0:4]) != cbwSignature {
		return 0, errors.New("unexpected bulk out data")
	}

	tag := binary.LittleEndian.Uint32(p[4:8])
	transferLength := binary.LittleEndian.Uint32(p[8:12])
	cb := p[15:]

	if f.phaseErrorNext {
		f.phaseErrorNext = false
		// The data phase still takes place, the failure only shows up in
		// the status.
		if p[12]&cbwFlagsIn != 0 && transferLength > 0 {
			f.inQueue = append(f.inQueue, make([]byte, transferLength))
		}
		f.queueCsw(tag, cswStatusPhaseError)
		return len(p), nil
	}
	if f.failNextCommand && cb[0] != opRequestSense {
		f.failNextCommand = false
		if p[12]&cbwFlagsIn != 0 && transferLength > 0 {
			f.inQueue = append(f.inQueue, make([]byte, transferLength))
		}
		f.queueCsw(tag, cswStatusFailed)
		return len(p), nil
	}

	switch cb[0] {
	case opTestUnitReady:
	case opInquiry:
		response := make([]byte, transferLength)
		response[1] = 0x80
		response[2] = 0x04
		f.inQueue = append(f.inQueue, response)
	case opRequestSense:
		sense := make([]byte, transferLength)
		sense[0] = 0x70
		sense[2] = 0x03
		sense[12] = 0x11
		sense[13] = 0x01
		f.inQueue = append(f.inQueue, sense)
	case opReadCapacity:
		response := make([]byte, 8)
		binary.BigEndian.PutUint32(response[0:], uint32(len(f.data))/f.blockSize-1)
		binary.BigEndian.PutUint32(response[4:], f.blockSize)
		f.inQueue = append(f.inQueue, response)
	case opModeSense6:
		f.inQueue = append(f.inQueue, make([]byte, transferLength))
	case opRead10:
		lba := binary.BigEndian.Uint32(cb[2:6])
		offset := int64(lba) * int64(f.blockSize)
		response := make([]byte, transferLength)
		copy(response, f.data[offset:])
		f.inQueue = append(f.inQueue, response)
	case opWrite10:
		lba := binary.BigEndian.Uint32(cb[2:6])
		f.dataOutOffset = int64(lba) * int64(f.blockSize)
		f.dataOutRemaining = transferLength
		f.queueCsw(tag, cswStatusPassed)
		return len(p), nil
	default:
		return 0, errors.New("unexpected command")
	}

	f.queueCsw(tag, cswStatusPassed)
	return len(p), nil
}

func (f *fakeBulkDevice) BulkInTransfer(p []byte) (int, error) {
	if len(f.inQueue) == 0 {
		return 0, errors.New("nothing to read")
	}

	front := f.inQueue[0]
	n := copy(p, front)
	if n < len(front) {
		f.inQueue[0] = front[n:]
	} else {
		f.inQueue = f.inQueue[1:]
	}
	return n, nil
}

func newInitializedDevice(t *testing.T, blocks int) (*BlockDevice, *fakeBulkDevice) {
	t.Helper()

	fake := newFakeBulkDevice(blocks)
	device := NewBlockDevice(fake, testConfig)
	require.NoError(t, device.Init())
	return device, fake
}

func TestBlockDevice_Init(t *testing.T) {
	device, _ := newInitializedDevice(t, 64)

	assert.Equal(t, 512, device.BlockSize())
	assert.Equal(t, int64(64), device.Blocks())
	require.NotNil(t, device.Inquiry())
	assert.True(t, device.Inquiry().Removable)
	assert.Equal(t, byte(0), device.Inquiry().PeripheralDeviceType)
}

func TestBlockDevice_WriteRead(t *testing.T) {
	device, fake := newInitializedDevice(t, 64)

	payload := make([]byte, 1024)
	for i := range payload {
		payload[i] = byte(i * 3)
	}
	require.NoError(t, device.Write(2*512, payload))
	assert.Equal(t, payload, fake.data[2*512:2*512+1024])

	readBack := make([]byte, 1024)
	require.NoError(t, device.Read(2*512, readBack))
	assert.Equal(t, payload, readBack)
}

func TestBlockDevice_RejectsUnalignedAccess(t *testing.T) {
	device, _ := newInitializedDevice(t, 64)

	err := device.Read(100, make([]byte, 512))
	assert.Error(t, err)
	err = device.Write(0, make([]byte, 100))
	assert.Error(t, err)
}

func TestBlockDevice_CommandFailureCarriesSense(t *testing.T) {
	device, fake := newInitializedDevice(t, 64)
	fake.failNextCommand = true

	err := device.Read(0, make([]byte, 512))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCommandFailed)

	var sense *Sense
	require.True(t, errors.As(err, &sense))
	assert.Equal(t, byte(0x03), sense.Key)
	assert.Equal(t, byte(0x11), sense.ASC)
}

func TestBlockDevice_PhaseErrorTriggersReset(t *testing.T) {
	device, fake := newInitializedDevice(t, 64)
	fake.phaseErrorNext = true

	err := device.Read(0, make([]byte, 512))
	assert.ErrorIs(t, err, ErrPhaseError)

	// Reset recovery: the class specific reset plus a clear halt per
	// endpoint.
	assert.Equal(t, []byte{usb.RequestBulkOnlyReset, usb.RequestClearFeature, usb.RequestClearFeature}, fake.controlRequests)
}

func TestBlockDevice_TransportErrorRetriesAfterReset(t *testing.T) {
	device, fake := newInitializedDevice(t, 64)
	fake.transportErrorNext = true

	payload := make([]byte, 512)
	for i := range payload {
		payload[i] = 0xCD
	}

	require.NoError(t, device.Write(0, payload))
	assert.Equal(t, payload, fake.data[:512])
	assert.Len(t, fake.controlRequests, 3)
}

func TestBlockDevice_PartialBulkTransfers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Use the generated transport mock to simulate a CBW that needs two
	// bulk out transfers before the CSW arrives.
	comm := mockusb.NewMockCommunication(ctrl)
	gomock.InOrder(
		comm.EXPECT().BulkOutTransfer(gomock.Any()).Return(10, nil),
		comm.EXPECT().BulkOutTransfer(gomock.Any()).Return(cbwSize-10, nil),
	)
	comm.EXPECT().BulkInTransfer(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		binary.LittleEndian.PutUint32(p[0:], cswSignature)
		binary.LittleEndian.PutUint32(p[4:], 1)
		p[12] = cswStatusPassed
		return len(p), nil
	})

	device := NewBlockDevice(comm, testConfig)
	require.NoError(t, device.transfer(newTestUnitReady(0), nil))
}

func TestBlockDevice_MismatchedCswTag(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	comm := mockusb.NewMockCommunication(ctrl)
	comm.EXPECT().BulkOutTransfer(gomock.Any()).Return(cbwSize, nil)
	comm.EXPECT().BulkInTransfer(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
		binary.LittleEndian.PutUint32(p[0:], cswSignature)
		binary.LittleEndian.PutUint32(p[4:], 99)
		p[12] = cswStatusPassed
		return len(p), nil
	})

	device := NewBlockDevice(comm, testConfig)
	assert.ErrorIs(t, device.transfer(newTestUnitReady(0), nil), ErrInvalidStatus)
}
