package aht20

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// i2cSlave is the ioctl selecting the target address.
const i2cSlave = 0x0703

// I2CBus is a Bus over a Linux i2c-dev device.
type I2CBus struct {
	f *os.File
}

// OpenI2C opens an i2c-dev device, e.g. /dev/i2c-1, for the sensor address.
func OpenI2C(path string, addr int) (*I2CBus, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	if err := unix.IoctlSetInt(int(f.Fd()), i2cSlave, addr); err != nil {
		f.Close()
		return nil, fmt.Errorf("select i2c address %#x: %w", addr, err)
	}
	return &I2CBus{f: f}, nil
}

// Tx implements Bus.
func (b *I2CBus) Tx(p []byte) error {
	_, err := b.f.Write(p)
	return err
}

// Rx implements Bus.
func (b *I2CBus) Rx(p []byte) error {
	_, err := b.f.Read(p)
	return err
}

// Close implements io.Closer.
func (b *I2CBus) Close() error {
	return b.f.Close()
}
