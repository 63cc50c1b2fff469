package sh

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/humidistat/pkg/link"
)

// Console talks to the upstream link of a Sensor Node. It prints every
// reply line and sends the last frame again when the reply is NAK.
type Console struct {
	Port link.Port
	Out  io.Writer

	lock    sync.Mutex
	last    []byte
	pending []byte
	lines   chan string
}

// NewConsole creates a Console.
func NewConsole(port link.Port, out io.Writer) *Console {
	return &Console{Port: port, Out: out, lines: make(chan string, 16)}
}

// Send transmits a frame and remembers it for retransmission.
func (c *Console) Send(frame []byte) error {
	c.lock.Lock()
	c.last = append(c.last[:0], frame...)
	c.lock.Unlock()
	glog.V(2).Infof("console: send % x", frame)
	_, err := c.Port.Write(frame)
	return err
}

// Lines receives reply lines without the terminator. Lines are dropped
// if nobody receives them.
func (c *Console) Lines() <-chan string {
	return c.lines
}

// Run reads replies until ctx is done.
func (c *Console) Run(ctx context.Context) error {
	chunks, errCh := link.Pump(ctx, c.Port, 0)
	for chunk := range chunks {
		if err := c.feed(chunk); err != nil {
			return err
		}
	}
	if err, ok := <-errCh; ok && err != nil {
		return err
	}
	return ctx.Err()
}

func (c *Console) feed(chunk []byte) error {
	c.pending = append(c.pending, chunk...)
	for {
		pos := bytes.Index(c.pending, link.Terminator)
		if pos < 0 {
			return nil
		}
		line := string(c.pending[:pos])
		c.pending = c.pending[pos+len(link.Terminator):]
		if err := c.handleLine(line); err != nil {
			return err
		}
	}
}

func (c *Console) handleLine(line string) error {
	fmt.Fprintln(c.Out, line)
	select {
	case c.lines <- line:
	default:
	}
	if line+"\r\n" != string(link.ReplyNAK) {
		return nil
	}
	c.lock.Lock()
	last := append([]byte(nil), c.last...)
	c.lock.Unlock()
	if len(last) == 0 {
		return nil
	}
	glog.Warning("console: NAK received, sending again")
	_, err := c.Port.Write(last)
	return err
}
