package link

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/humidistat/pkg/link/linktest"
)

func TestCommandReceiver(t *testing.T) {
	valid := Encode(0x01, []byte{0x04, 0x08})
	corrupted := append([]byte(nil), valid...)
	corrupted[2]++
	noTerm := valid[:len(valid)-2]

	port := linktest.NewPort()
	r := NewCommandReceiver(port, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type result struct {
		frame []byte
		err   error
	}
	resCh := make(chan result, 1)
	go func() {
		frame, err := r.Receive(ctx)
		resCh <- result{frame, err}
	}()

	port.Inject(noTerm)
	require.Len(t, port.WaitWrites(1, time.Second), 1)
	port.Inject(corrupted)
	require.Len(t, port.WaitWrites(2, time.Second), 2)
	port.Inject(valid)
	res := <-resCh
	require.NoError(t, res.err)
	require.Equal(t, valid, res.frame)
	require.Equal(t, [][]byte{ReplyWrongFormat, ReplyNAK, ReplyACK}, port.Writes())
}

func TestCommandReceiverCancel(t *testing.T) {
	r := NewCommandReceiver(linktest.NewPort(), 0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := r.Receive(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCommandReceiverTimeout(t *testing.T) {
	r := NewCommandReceiver(linktest.NewPort(), 0)
	r.Timeout = 30 * time.Millisecond
	_, err := r.Receive(context.Background())
	require.ErrorIs(t, err, ErrTimeout)
}
