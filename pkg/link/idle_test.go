package link

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/humidistat/pkg/link/linktest"
)

type frameRecorder chan []byte

func (r frameRecorder) HandleFrame(ctx context.Context, frame []byte) {
	r <- append([]byte(nil), frame...)
}

func (r frameRecorder) expect(t *testing.T, frame string) {
	select {
	case f := <-r:
		require.Equal(t, frame, string(f))
	case <-time.After(time.Second):
		t.Fatalf("frame %q not received", frame)
	}
}

func (r frameRecorder) expectNone(t *testing.T, wait time.Duration) {
	select {
	case f := <-r:
		t.Fatalf("unexpected frame %q", f)
	case <-time.After(wait):
	}
}

func TestIdleReassemblerFeed(t *testing.T) {
	rec := make(frameRecorder, 4)
	r := NewIdleReassembler(NewFrameBuffer(8), rec)
	ctx := context.Background()

	require.False(t, r.Idle(ctx))
	r.Feed(ctx, []byte("ab"))
	r.Feed(ctx, []byte("cd"))
	require.Len(t, rec, 0)
	require.True(t, r.Idle(ctx))
	rec.expect(t, "abcd")
	require.Equal(t, 0, r.Buffer().Len())

	// oversized frame is delivered truncated without waiting
	r.Feed(ctx, []byte("0123456789"))
	rec.expect(t, "01234567")
	require.False(t, r.Idle(ctx))
}

func TestIdleReassemblerRun(t *testing.T) {
	const quiet = 60 * time.Millisecond
	rec := make(frameRecorder, 4)
	r := NewIdleReassembler(NewFrameBuffer(64), rec)
	r.QuietPeriod = quiet
	chunks := make(chan []byte)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- r.Run(ctx, chunks) }()

	t.Run("bursts within quiet period", func(t *testing.T) {
		for _, chunk := range []string{"ab", "cd", "\r\n"} {
			chunks <- []byte(chunk)
			time.Sleep(quiet / 6)
		}
		rec.expect(t, "abcd\r\n")
		rec.expectNone(t, quiet*2)
	})

	t.Run("pause splits frames", func(t *testing.T) {
		chunks <- []byte("xy")
		time.Sleep(quiet * 3)
		chunks <- []byte("z")
		rec.expect(t, "xy")
		rec.expect(t, "z")
	})

	t.Run("close flushes", func(t *testing.T) {
		chunks <- []byte("tail")
		close(chunks)
		rec.expect(t, "tail")
		require.Equal(t, io.EOF, <-errCh)
	})
}

func TestIdleReassemblerRunPort(t *testing.T) {
	rec := make(frameRecorder, 4)
	r := NewIdleReassembler(NewFrameBuffer(64), rec)
	r.QuietPeriod = 50 * time.Millisecond
	port := linktest.NewPort()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- r.RunPort(ctx, port) }()

	frame := Encode(0x01, []byte("hello"))
	port.Inject(frame[:3])
	time.Sleep(10 * time.Millisecond)
	port.Inject(frame[3:])
	rec.expect(t, string(frame))

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
}
