package link

import (
	"context"
	"io"
	"time"
)

// NoTimeout makes reads on a Port block until data arrives.
const NoTimeout time.Duration = -1

// Defaults for receive-to-idle reads.
const (
	// DefaultIdleGap is the silence after which a chunk is considered done.
	DefaultIdleGap = 10 * time.Millisecond
	// pollInterval bounds each blocking read so context cancellation is noticed.
	pollInterval = 100 * time.Millisecond
)

// Port is the raw byte transport of one link. Read returns 0 bytes and a nil
// error when the read timeout expires, which matches go.bug.st/serial.
type Port interface {
	io.ReadWriter
	SetReadTimeout(time.Duration) error
}

// InputResetter is implemented by ports able to drop unread input, like
// go.bug.st/serial ports.
type InputResetter interface {
	ResetInputBuffer() error
}

// DiscardInput drops bytes received but not yet read from port. Ports
// without an input buffer to reset are left untouched.
func DiscardInput(port Port) error {
	if r, ok := port.(InputResetter); ok {
		return r.ResetInputBuffer()
	}
	return nil
}

// ReadChunk implements receive-to-idle on top of a Port. It waits up to
// timeout for the first bytes, then keeps reading until the line has been
// idle for gap or p is full. A timeout <= 0 waits until ctx is done.
// When nothing arrives before the timeout it returns ErrTimeout.
func ReadChunk(ctx context.Context, port Port, p []byte, timeout, gap time.Duration) (int, error) {
	if gap <= 0 {
		gap = DefaultIdleGap
	}
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	var n int
	for n < len(p) {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		wait := gap
		if n == 0 {
			wait = pollInterval
			if !deadline.IsZero() {
				remain := time.Until(deadline)
				if remain <= 0 {
					return 0, ErrTimeout
				}
				if remain < wait {
					wait = remain
				}
			}
		}
		if err := port.SetReadTimeout(wait); err != nil {
			return n, err
		}
		m, err := port.Read(p[n:])
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 && n > 0 {
			break
		}
	}
	return n, nil
}

// Pump reads port continuously and delivers every non-empty read as a chunk,
// the way a UART driver posts data events to a queue. Both channels are
// closed when ctx is done or the port fails; the error channel receives the
// failure first.
func Pump(ctx context.Context, port Port, size int) (<-chan []byte, <-chan error) {
	if size <= 0 {
		size = DefaultBufferSize
	}
	chunkCh, errCh := make(chan []byte, 16), make(chan error, 1)
	go func() {
		defer close(chunkCh)
		defer close(errCh)
		buf := make([]byte, size)
		if err := port.SetReadTimeout(pollInterval); err != nil {
			errCh <- err
			return
		}
		for ctx.Err() == nil {
			n, err := port.Read(buf)
			if err != nil {
				errCh <- err
				return
			}
			if n == 0 {
				continue
			}
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case chunkCh <- chunk:
			case <-ctx.Done():
				return
			}
		}
	}()
	return chunkCh, errCh
}
