package link

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/humidistat/pkg/link/linktest"
)

// peerReplies makes port answer the n-th transmission (1 based) with
// replies[n-1], or stay silent when the entry is nil or missing.
func peerReplies(port *linktest.Port, replies ...[]byte) *int32 {
	var count int32
	port.OnWrite = func(p []byte) {
		n := int(atomic.AddInt32(&count, 1))
		if n <= len(replies) && replies[n-1] != nil {
			port.Inject(replies[n-1])
		}
	}
	return &count
}

func TestSendReliable(t *testing.T) {
	frame := Encode(0x01, make([]byte, 8))
	policy := Policy{Timeout: 40 * time.Millisecond}
	cases := []struct {
		name    string
		replies [][]byte
	}{
		{name: "ack first", replies: [][]byte{ReplyACK}},
		{name: "ack on third after timeouts", replies: [][]byte{nil, nil, ReplyACK}},
		{name: "ack on third after nak and garbage", replies: [][]byte{ReplyNAK, []byte("zz"), ReplyACK}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			port := linktest.NewPort()
			count := peerReplies(port, c.replies...)
			s := NewSender(port, policy)
			require.NoError(t, s.SendReliable(context.Background(), frame))
			require.EqualValues(t, len(c.replies), atomic.LoadInt32(count))
			for _, w := range port.Writes() {
				require.Equal(t, frame, w)
			}
		})
	}
}

func TestSendReliableBounded(t *testing.T) {
	port := linktest.NewPort()
	count := peerReplies(port, ReplyNAK, ReplyNAK, ReplyNAK, ReplyACK)
	s := NewSender(port, Policy{Timeout: 30 * time.Millisecond, MaxAttempts: 3, Backoff: time.Millisecond})
	err := s.SendReliable(context.Background(), Encode(0x00, nil))
	require.ErrorIs(t, err, ErrLinkUnreachable)
	var unreachable *UnreachableError
	require.True(t, errors.As(err, &unreachable))
	require.Equal(t, 3, unreachable.Attempts)
	require.EqualValues(t, 3, atomic.LoadInt32(count))
}

func TestSendReliableCancel(t *testing.T) {
	port := linktest.NewPort()
	s := NewSender(port, DefaultPolicy)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := s.SendReliable(ctx, Encode(0x00, nil))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), time.Second)
}

func TestSendReliableDiscardsStaleReply(t *testing.T) {
	port := linktest.NewPort()
	// ACK left over from an earlier transmission
	port.Inject(ReplyACK)
	count := peerReplies(port, ReplyNAK)
	s := NewSender(port, Policy{Timeout: 30 * time.Millisecond, MaxAttempts: 1})
	err := s.SendReliable(context.Background(), Encode(0x00, nil))
	require.ErrorIs(t, err, ErrLinkUnreachable)
	require.EqualValues(t, 1, atomic.LoadInt32(count))
}

func TestDefaultAckTimeout(t *testing.T) {
	// a full receive buffer at 115200 baud, 10 bits per byte
	wire := time.Duration(DefaultBufferSize*10) * time.Second / 115200
	require.Greater(t, DefaultAckTimeout, DefaultQuietPeriod+wire)
	require.Equal(t, DefaultAckTimeout, NewSender(linktest.NewPort(), Policy{}).Policy.Timeout)
}
