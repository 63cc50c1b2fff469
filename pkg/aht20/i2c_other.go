//go:build !linux

package aht20

import "errors"

// I2CBus is only available on Linux.
type I2CBus struct{}

// OpenI2C is only available on Linux.
func OpenI2C(path string, addr int) (*I2CBus, error) {
	return nil, errors.New("i2c-dev is only supported on linux")
}

// Tx implements Bus.
func (b *I2CBus) Tx(p []byte) error { return errors.ErrUnsupported }

// Rx implements Bus.
func (b *I2CBus) Rx(p []byte) error { return errors.ErrUnsupported }

// Close implements io.Closer.
func (b *I2CBus) Close() error { return nil }
