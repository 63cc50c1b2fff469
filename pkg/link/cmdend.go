package link

import (
	"context"
	"time"

	"github.com/golang/glog"
)

// DefaultCommandBufferSize is the receive buffer size of a CommandReceiver.
const DefaultCommandBufferSize = 128

// CommandReceiver reassembles frames which end with the terminator. Every
// frame is answered on the same port: "wrong format" when the chunk doesn't
// end with the terminator, NAK on checksum mismatch, ACK otherwise.
type CommandReceiver struct {
	Port Port
	// Gap is the silence which ends one chunk.
	Gap time.Duration
	// Timeout bounds the wait for a frame. Zero waits until ctx is done.
	Timeout time.Duration

	buf *FrameBuffer
}

// NewCommandReceiver creates a CommandReceiver.
func NewCommandReceiver(port Port, size int) *CommandReceiver {
	if size <= 0 {
		size = DefaultCommandBufferSize
	}
	return &CommandReceiver{
		Port: port,
		Gap:  DefaultIdleGap,
		buf:  NewFrameBuffer(size),
	}
}

// Receive blocks until a valid frame is received and acknowledged.
// The returned frame is a copy owned by the caller.
func (r *CommandReceiver) Receive(ctx context.Context) ([]byte, error) {
	for {
		r.buf.Reset()
		n, err := ReadChunk(ctx, r.Port, r.buf.data, r.Timeout, r.Gap)
		r.buf.size = n
		if err != nil {
			return nil, err
		}
		frame := r.buf.Bytes()
		if n == len(r.buf.data) && !HasTerminator(frame) {
			r.buf.overflow = true
		}
		if !HasTerminator(frame) || len(frame) < MinFrameSize {
			glog.Warningf("link: %d bytes without terminator (overflow=%v)", n, r.buf.Overflowed())
			if err := r.reply(ReplyWrongFormat); err != nil {
				return nil, err
			}
			continue
		}
		r.buf.MarkComplete()
		if !IsValid(frame) {
			glog.Warningf("link: %v: sum=%02x", ErrChecksum, Sum(frame))
			if err := r.reply(ReplyNAK); err != nil {
				return nil, err
			}
			continue
		}
		if err := r.reply(ReplyACK); err != nil {
			return nil, err
		}
		glog.V(2).Infof("link: command %02x accepted, %d bytes", frame[IndexCode], n)
		return append([]byte(nil), frame...), nil
	}
}

func (r *CommandReceiver) reply(msg []byte) error {
	if _, err := r.Port.Write(msg); err != nil {
		glog.Errorf("link: reply %q failed: %v", msg, err)
		return err
	}
	return nil
}
