// Package sensor implements the Sensor Node control loop.
//
// Commands arrive on the upstream link terminated by "\r\n" and are
// acknowledged there. A measure trigger starts the sensor unless it is
// already measuring. Completed readings are echoed upstream and pushed to
// the Bridge Node, and new network credentials are forwarded to it. Frames
// to the Bridge Node are sent one at a time and retransmitted until
// acknowledged, so a silent Bridge Node stalls the loop unless the retry
// policy is bounded. Commands received while a frame to the Bridge Node is
// in flight are acknowledged and then answered "Busy" without running.
package sensor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/humidistat/pkg/link"
	"github.com/robotalks/humidistat/pkg/msgs"
)

// Driver is the sensor measuring temperature and humidity.
type Driver interface {
	Busy() bool
	// StartMeasurement returns immediately and calls done with the result.
	StartMeasurement(ctx context.Context, done func(msgs.Reading, error)) error
}

// Node is the Sensor Node.
type Node struct {
	Driver   Driver
	Receiver *link.CommandReceiver
	Sender   *link.Sender
	// MeasureInterval triggers measurements periodically if positive.
	MeasureInterval time.Duration

	upstream   link.Port
	forwarding atomic.Bool
}

type measurement struct {
	reading msgs.Reading
	err     error
}

// lockedPort serializes writes from the receiver and the control loop.
type lockedPort struct {
	link.Port
	lock sync.Mutex
}

func (p *lockedPort) Write(b []byte) (int, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.Port.Write(b)
}

// NewNode creates a Node.
func NewNode(upstream, bridge link.Port, policy link.Policy, driver Driver) *Node {
	port := &lockedPort{Port: upstream}
	return &Node{
		Driver:   driver,
		Receiver: link.NewCommandReceiver(port, 0),
		Sender:   link.NewSender(bridge, policy),
		upstream: port,
	}
}

// Name implements framework.Named.
func (n *Node) Name() string {
	return "sensor"
}

// Run implements framework.Runnable.
func (n *Node) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmdCh, errCh := make(chan []byte), make(chan error, 1)
	go func() {
		for {
			frame, err := n.Receiver.Receive(ctx)
			if err != nil {
				errCh <- err
				return
			}
			if n.forwarding.Load() {
				glog.Warningf("sensor: command %02x dropped while forwarding", frame[link.IndexCode])
				if err := n.reply(link.ReplyBusy); err != nil {
					errCh <- err
					return
				}
				continue
			}
			select {
			case cmdCh <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	resultCh := make(chan measurement, 1)
	var tick <-chan time.Time
	if n.MeasureInterval > 0 {
		ticker := time.NewTicker(n.MeasureInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		var err error
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err = <-errCh:
			return err
		case frame := <-cmdCh:
			err = n.handleFrame(ctx, frame, resultCh)
		case m := <-resultCh:
			err = n.handleMeasurement(ctx, m)
		case <-tick:
			if !n.Driver.Busy() {
				err = n.startMeasurement(ctx, resultCh)
			}
		}
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			glog.Errorf("sensor: %v", err)
		}
	}
}

func (n *Node) handleFrame(ctx context.Context, frame []byte, resultCh chan<- measurement) error {
	cmd, err := msgs.DecodeUpstream(frame)
	var unknown *msgs.UnknownCommandError
	switch {
	case errors.As(err, &unknown):
		glog.Warningf("sensor: %v", err)
		return n.reply(link.ReplyUnknownCommand)
	case err != nil:
		glog.Warningf("sensor: command rejected: %v", err)
		return n.reply(link.ReplyWrongFormat)
	}

	switch c := cmd.(type) {
	case msgs.MeasureTrigger:
		if n.Driver.Busy() {
			return n.reply(link.ReplyBusy)
		}
		if err := n.startMeasurement(ctx, resultCh); err != nil {
			if n.Driver.Busy() {
				return n.reply(link.ReplyBusy)
			}
			return err
		}
		return n.reply(link.ReplyStart)
	case msgs.UpstreamSetNetwork:
		glog.Infof("sensor: forwarding network %q", c.SSID)
		return n.forward(ctx, msgs.BridgeSetNetwork{Credentials: c.Credentials})
	}
	return nil
}

func (n *Node) startMeasurement(ctx context.Context, resultCh chan<- measurement) error {
	return n.Driver.StartMeasurement(ctx, func(reading msgs.Reading, err error) {
		select {
		case resultCh <- measurement{reading: reading, err: err}:
		case <-ctx.Done():
		}
	})
}

func (n *Node) handleMeasurement(ctx context.Context, m measurement) error {
	if m.err != nil {
		return fmt.Errorf("measurement failed: %w", m.err)
	}
	glog.V(2).Infof("sensor: %s", m.reading)
	if err := n.reply([]byte(m.reading.String() + "\r\n")); err != nil {
		return err
	}
	return n.forward(ctx, msgs.PushReading{Reading: m.reading})
}

func (n *Node) forward(ctx context.Context, cmd msgs.BridgeCommand) error {
	frame, err := msgs.EncodeBridge(cmd)
	if err != nil {
		return err
	}
	n.forwarding.Store(true)
	defer n.forwarding.Store(false)
	if err := n.Sender.SendReliable(ctx, frame); err != nil {
		return fmt.Errorf("command %02x to bridge: %w", byte(cmd.BridgeCode()), err)
	}
	return nil
}

func (n *Node) reply(msg []byte) error {
	_, err := n.upstream.Write(msg)
	return err
}
