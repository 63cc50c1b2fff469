// Package serial opens UART links with go.bug.st/serial.
package serial

import (
	"fmt"

	"github.com/golang/glog"
	bugst "go.bug.st/serial"
)

// DefaultBaudRate is the rate of both node links.
const DefaultBaudRate = 115200

// Port is an opened UART. It satisfies link.Port.
type Port = bugst.Port

// Open opens a serial device with 8N1 framing.
func Open(name string, baud int) (Port, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	mode := &bugst.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	}
	port, err := bugst.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	glog.Infof("serial: opened %s at %d baud", name, baud)
	return port, nil
}

// List returns the names of available serial devices.
func List() ([]string, error) {
	return bugst.GetPortsList()
}
