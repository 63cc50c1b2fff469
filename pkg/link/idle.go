package link

import (
	"context"
	"io"
	"time"

	"github.com/golang/glog"
)

// DefaultQuietPeriod is the silence which ends a frame on the bridge link.
const DefaultQuietPeriod = time.Second

// IdleReassembler turns a stream of chunks into frames using a quiet period.
// A frame ends when no chunk arrives for QuietPeriod. Senders must not pause
// inside a frame for that long, otherwise the frame is split in two and both
// halves fail validation.
type IdleReassembler struct {
	QuietPeriod time.Duration
	Handler     FrameHandler

	buf *FrameBuffer
}

// NewIdleReassembler creates an IdleReassembler owning buf.
func NewIdleReassembler(buf *FrameBuffer, handler FrameHandler) *IdleReassembler {
	return &IdleReassembler{
		QuietPeriod: DefaultQuietPeriod,
		Handler:     handler,
		buf:         buf,
	}
}

// Buffer gets the owned FrameBuffer.
func (r *IdleReassembler) Buffer() *FrameBuffer {
	return r.buf
}

// Feed appends a chunk. If the chunk overflows the buffer, the truncated
// frame is handed over immediately as an oversized frame.
func (r *IdleReassembler) Feed(ctx context.Context, chunk []byte) {
	n := r.buf.Append(chunk)
	glog.V(4).Infof("link: %d bytes buffered (%d total)", n, r.buf.Len())
	if r.buf.Overflowed() {
		glog.Warningf("link: %v: dropped %d bytes beyond %d", ErrFrameTooLarge, len(chunk)-n, r.buf.Cap())
		r.flush(ctx)
	}
}

// Idle notifies the quiet period expired. It returns true if a frame was
// completed, false if the buffer was empty.
func (r *IdleReassembler) Idle(ctx context.Context) bool {
	if r.buf.Len() == 0 {
		return false
	}
	r.buf.MarkComplete()
	r.flush(ctx)
	return true
}

func (r *IdleReassembler) flush(ctx context.Context) {
	glog.V(2).Infof("link: frame complete, %d bytes", r.buf.Len())
	if h := r.Handler; h != nil {
		h.HandleFrame(ctx, r.buf.Bytes())
	}
	r.buf.Reset()
}

// Run consumes chunks until ctx is done or chunks is closed. Each received
// chunk restarts the quiet period.
func (r *IdleReassembler) Run(ctx context.Context, chunks <-chan []byte) error {
	quiet := r.QuietPeriod
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-chunks:
			if !ok {
				r.Idle(ctx)
				return io.EOF
			}
			r.Feed(ctx, chunk)
		case <-time.After(quiet):
			r.Idle(ctx)
		}
	}
}

// RunPort pumps port into the reassembler.
func (r *IdleReassembler) RunPort(ctx context.Context, port Port) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	chunks, errCh := Pump(ctx, port, r.buf.Cap())
	err := r.Run(ctx, chunks)
	if err == io.EOF {
		if pumpErr, ok := <-errCh; ok && pumpErr != nil {
			return pumpErr
		}
	}
	return err
}
