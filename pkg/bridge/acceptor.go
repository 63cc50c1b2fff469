package bridge

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/humidistat/pkg/link"
)

// Acceptor validates reassembled frames, acknowledges the valid ones and
// passes them on.
type Acceptor struct {
	// Replies receives the ACK for each accepted frame.
	Replies io.Writer
	Handler link.FrameHandler

	accepted  atomic.Uint64
	discarded atomic.Uint64
}

// HandleFrame implements link.FrameHandler.
func (a *Acceptor) HandleFrame(ctx context.Context, frame []byte) {
	if err := link.Validate(frame); err != nil {
		a.discarded.Add(1)
		glog.Warningf("bridge: %d bytes discarded: %v", len(frame), err)
		return
	}
	if _, err := a.Replies.Write(link.ReplyACK); err != nil {
		glog.Errorf("bridge: ACK failed: %v", err)
		return
	}
	a.accepted.Add(1)
	if a.Handler != nil {
		a.Handler.HandleFrame(ctx, frame)
	}
}

// Stats returns the number of accepted and discarded frames.
func (a *Acceptor) Stats() (accepted, discarded uint64) {
	return a.accepted.Load(), a.discarded.Load()
}
