// Package goums provides access to FAT32 formatted USB mass storage
// devices: a SCSI block device driver over an injected bulk transport, an
// MBR partition layer, and the FAT32 filesystem tree, plus afero and
// io/fs facades over it.
package goums

import (
	"errors"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"

	"github.com/aligator/goums/checkpoint"
	"github.com/aligator/goums/driver"
	"github.com/aligator/goums/driver/scsi"
	"github.com/aligator/goums/fs"
	"github.com/aligator/goums/fs/fat32"
	"github.com/aligator/goums/partition"
	"github.com/aligator/goums/usb"
)

// ErrNoFileSystem occurs when neither the partition table nor the device
// itself contains a mountable FAT32 volume.
var ErrNoFileSystem = errors.New("no FAT32 filesystem found")

// CreateFileSystems mounts every FAT32 volume of the device. It parses
// the master boot record first; devices formatted without one
// ("superfloppy") are probed for a boot sector at block 0 instead.
func CreateFileSystems(device driver.BlockDevice) ([]fs.FileSystem, error) {
	var fileSystems []fs.FileSystem

	table, err := partition.ReadTable(device)
	if err == nil {
		for _, entry := range table.Entries {
			if !entry.IsFat32() {
				log.Debugf("goums: skipping partition of type 0x%02x", entry.Type)
				continue
			}

			fileSystem, err := fat32.NewFileSystem(partition.New(device, entry))
			if err != nil {
				return nil, err
			}
			fileSystems = append(fileSystems, fileSystem)
		}
	}

	if len(fileSystems) == 0 {
		fileSystem, err := fat32.NewFileSystem(partition.NewWholeDevice(device))
		if err != nil {
			return nil, checkpoint.Wrap(err, ErrNoFileSystem)
		}
		fileSystems = append(fileSystems, fileSystem)
	}

	return fileSystems, nil
}

// MassStorageDevice ties the injected transport to the SCSI driver and
// the filesystems found on the device.
//
// It is not safe for concurrent use, see scsi.BlockDevice.
type MassStorageDevice struct {
	comm   usb.Communication
	config usb.DeviceConfig

	blockDevice *scsi.BlockDevice
	fileSystems []fs.FileSystem
}

// NewMassStorageDevice prepares a device handle. Nothing is touched until
// Init.
func NewMassStorageDevice(comm usb.Communication, config usb.DeviceConfig) *MassStorageDevice {
	return &MassStorageDevice{
		comm:   comm,
		config: config,
	}
}

// Init opens the transport, initializes the SCSI unit and mounts the
// FAT32 filesystems.
func (d *MassStorageDevice) Init() error {
	if err := d.comm.Open(); err != nil {
		return checkpoint.Wrap(err, scsi.ErrTransport)
	}

	d.blockDevice = scsi.NewBlockDevice(d.comm, d.config)
	if err := d.blockDevice.Init(); err != nil {
		return err
	}

	fileSystems, err := CreateFileSystems(d.blockDevice)
	if err != nil {
		return err
	}
	d.fileSystems = fileSystems

	return nil
}

// BlockDevice returns the underlying SCSI driver. It is only valid after
// Init.
func (d *MassStorageDevice) BlockDevice() *scsi.BlockDevice {
	return d.blockDevice
}

// FileSystems returns the mounted volumes. It is only valid after Init.
func (d *MassStorageDevice) FileSystems() []fs.FileSystem {
	return d.fileSystems
}

// Close releases the transport.
func (d *MassStorageDevice) Close() error {
	var result *multierror.Error
	result = multierror.Append(result, d.comm.Close())
	return checkpoint.From(result.ErrorOrNil())
}
