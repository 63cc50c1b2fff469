package link

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultAckTimeout is the time a Sender waits for a reply after each
// transmission. The Bridge Node only replies once its quiet period has
// passed, so the wait must exceed DefaultQuietPeriod plus the time the
// frame spends on the wire, otherwise every ACK arrives late.
const DefaultAckTimeout = DefaultQuietPeriod + time.Second

// Policy controls retransmission of a Sender.
type Policy struct {
	// Timeout is the wait for the acknowledgment of one transmission.
	Timeout time.Duration
	// MaxAttempts bounds the number of transmissions. Zero retries forever.
	MaxAttempts int
	// Backoff is added to the wait before each retransmission, multiplied by
	// the number of failed attempts.
	Backoff time.Duration
	// Gap is the silence which ends a reply chunk.
	Gap time.Duration
}

// DefaultPolicy retries forever without backoff. With an unreachable peer
// SendReliable only returns when the context is done.
var DefaultPolicy = Policy{Timeout: DefaultAckTimeout}

// Sender delivers frames with stop-and-wait retransmission. Only one frame
// is in flight at a time.
type Sender struct {
	Port   Port
	Policy Policy

	lock  sync.Mutex
	reply []byte
}

// NewSender creates a Sender with the specified policy.
func NewSender(port Port, policy Policy) *Sender {
	if policy.Timeout <= 0 {
		policy.Timeout = DefaultAckTimeout
	}
	return &Sender{Port: port, Policy: policy, reply: make([]byte, 32)}
}

// SendReliable transmits frame until the peer replies with ACK. A timeout,
// a NAK or any other reply causes the identical frame to be sent again.
// Unread input is discarded before each transmission so a late reply to an
// earlier transmission is never taken for the reply to this one.
// It returns an *UnreachableError once Policy.MaxAttempts is exhausted, or
// the context error when ctx is done.
func (s *Sender) SendReliable(ctx context.Context, frame []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if len(s.reply) == 0 {
		s.reply = make([]byte, 32)
	}
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := DiscardInput(s.Port); err != nil {
			return err
		}
		if _, err := s.Port.Write(frame); err != nil {
			return err
		}
		glog.V(4).Infof("link: sent %d bytes, attempt %d", len(frame), attempt)
		n, err := ReadChunk(ctx, s.Port, s.reply, s.Policy.Timeout, s.Policy.Gap)
		switch {
		case err == nil && bytes.Equal(s.reply[:n], ReplyACK):
			glog.V(2).Infof("link: frame %02x acknowledged after %d attempts", frame[IndexCode], attempt)
			return nil
		case err == nil:
			glog.Warningf("link: unexpected reply %q, attempt %d", s.reply[:n], attempt)
		case err == ErrTimeout:
			glog.Warningf("link: %v waiting for ACK, attempt %d", err, attempt)
		default:
			return err
		}
		if limit := s.Policy.MaxAttempts; limit > 0 && attempt >= limit {
			return &UnreachableError{Attempts: attempt}
		}
		if backoff := s.Policy.Backoff * time.Duration(attempt); backoff > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
}
