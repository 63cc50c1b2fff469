package bridge

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/humidistat/pkg/msgs"
)

// ReadingWriter stores readings pushed by the Sensor Node.
type ReadingWriter interface {
	WriteReading(msgs.Reading)
}

// Associator joins the network with new credentials. It tears down the
// services using the current connection and brings them up again.
type Associator interface {
	ApplyCredentials(context.Context, msgs.Credentials) error
}

// Dispatcher executes commands received from the Sensor Node.
type Dispatcher struct {
	Registers ReadingWriter
	Network   Associator
}

// HandleFrame implements link.FrameHandler. Frames which can't be decoded
// are logged and dropped.
func (d *Dispatcher) HandleFrame(ctx context.Context, frame []byte) {
	cmd, err := msgs.DecodeBridge(frame)
	if err != nil {
		glog.Warningf("bridge: frame rejected: %v", err)
		return
	}
	if err := d.Dispatch(ctx, cmd); err != nil {
		glog.Errorf("bridge: command %02x failed: %v", byte(cmd.BridgeCode()), err)
	}
}

// Dispatch executes a decoded command.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd msgs.BridgeCommand) error {
	switch c := cmd.(type) {
	case msgs.PushReading:
		glog.V(2).Infof("bridge: %s", c.Reading)
		if d.Registers != nil {
			d.Registers.WriteReading(c.Reading)
		}
	case msgs.BridgeSetNetwork:
		glog.Infof("bridge: joining network %q", c.SSID)
		if d.Network == nil {
			return fmt.Errorf("no network associator")
		}
		return d.Network.ApplyCredentials(ctx, c.Credentials)
	default:
		return &msgs.UnknownCommandError{Link: "bridge", Code: byte(cmd.BridgeCode())}
	}
	return nil
}
