// Package aht20 drives an AHT20 temperature and humidity sensor.
//
// A measurement is triggered with 0xAC 0x33 0x00 and is ready after about
// 75ms. The first byte read back is the status, bit 7 set while the
// conversion is still running. The next 5 bytes hold 20-bit humidity and
// 20-bit temperature values.
package aht20

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/humidistat/pkg/msgs"
)

// Address is the I2C address of the sensor.
const Address = 0x38

// Status bits.
const (
	StatusBusy       = 0x80
	StatusCalibrated = 0x08
)

// DefaultDelay is the conversion time after a trigger.
const DefaultDelay = 75 * time.Millisecond

const (
	maxPolls   = 10
	resolution = 1 << 20
)

var (
	cmdTrigger = []byte{0xAC, 0x33, 0x00}
	cmdInit    = []byte{0xBE, 0x08, 0x00}
)

var (
	// ErrBusy indicates a measurement is in progress.
	ErrBusy = errors.New("measurement in progress")
	// ErrNotReady indicates the sensor kept reporting busy.
	ErrNotReady = errors.New("sensor not ready")
)

// Bus transfers bytes with the sensor.
type Bus interface {
	Tx(p []byte) error
	Rx(p []byte) error
}

// Driver runs one measurement at a time.
type Driver struct {
	Bus   Bus
	Delay time.Duration

	busy atomic.Bool
}

// New creates a Driver.
func New(bus Bus) *Driver {
	return &Driver{Bus: bus, Delay: DefaultDelay}
}

// Init calibrates the sensor if it isn't yet.
func (d *Driver) Init(ctx context.Context) error {
	status := make([]byte, 1)
	if err := d.Bus.Rx(status); err != nil {
		return err
	}
	if status[0]&StatusCalibrated != 0 {
		return nil
	}
	glog.Info("aht20: calibrating")
	if err := d.Bus.Tx(cmdInit); err != nil {
		return err
	}
	return sleep(ctx, 10*time.Millisecond)
}

// Busy reports whether a measurement is in progress.
func (d *Driver) Busy() bool {
	return d.busy.Load()
}

// StartMeasurement triggers a measurement and returns immediately. done is
// called from another goroutine with the result, after Busy turns false.
func (d *Driver) StartMeasurement(ctx context.Context, done func(msgs.Reading, error)) error {
	if !d.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	if err := d.Bus.Tx(cmdTrigger); err != nil {
		d.busy.Store(false)
		return err
	}
	go func() {
		reading, err := d.collect(ctx)
		d.busy.Store(false)
		done(reading, err)
	}()
	return nil
}

func (d *Driver) collect(ctx context.Context) (msgs.Reading, error) {
	delay := d.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	var data [6]byte
	for i := 0; i < maxPolls; i++ {
		if err := sleep(ctx, delay); err != nil {
			return msgs.Reading{}, err
		}
		if err := d.Bus.Rx(data[:]); err != nil {
			return msgs.Reading{}, err
		}
		if data[0]&StatusBusy == 0 {
			return Convert(data), nil
		}
		glog.V(4).Infof("aht20: busy, poll %d", i+1)
	}
	return msgs.Reading{}, ErrNotReady
}

// Convert converts status and raw bytes to a reading.
func Convert(data [6]byte) msgs.Reading {
	humRaw := uint32(data[1])<<12 | uint32(data[2])<<4 | uint32(data[3])>>4
	tempRaw := uint32(data[3]&0x0F)<<16 | uint32(data[4])<<8 | uint32(data[5])
	return msgs.Reading{
		Temperature: float32(tempRaw)/resolution*200 - 50,
		Humidity:    float32(humRaw) / resolution * 100,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
