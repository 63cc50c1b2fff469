package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/humidistat/pkg/link"
	"github.com/robotalks/humidistat/pkg/link/linktest"
	"github.com/robotalks/humidistat/pkg/msgs"
)

type testNetwork struct {
	lock  sync.Mutex
	creds []msgs.Credentials
}

func (n *testNetwork) ApplyCredentials(ctx context.Context, creds msgs.Credentials) error {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.creds = append(n.creds, creds)
	return nil
}

func (n *testNetwork) applied() []msgs.Credentials {
	n.lock.Lock()
	defer n.lock.Unlock()
	return append([]msgs.Credentials(nil), n.creds...)
}

func readingFrame(t *testing.T, temp, hum float32) []byte {
	frame, err := msgs.EncodeBridge(msgs.PushReading{Reading: msgs.Reading{Temperature: temp, Humidity: hum}})
	require.NoError(t, err)
	return frame
}

func TestDispatchPushReading(t *testing.T) {
	regs := &Registers{}
	d := &Dispatcher{Registers: regs}
	ctx := context.Background()

	frame := readingFrame(t, 22.50, 55.25)
	require.Len(t, frame, 12)
	d.HandleFrame(ctx, frame)
	sample, ok := regs.ReadReading()
	require.True(t, ok)
	require.Equal(t, msgs.Reading{Temperature: 22.50, Humidity: 55.25}, sample.Reading)

	// the same frame one byte short, resealed so only the length is wrong
	short := append([]byte{frame[0], 0}, frame[2:9]...)
	short = append(short, link.Terminator...)
	short[link.IndexChecksum] = link.Checksum(short)
	require.Len(t, short, 11)
	require.NoError(t, link.Validate(short))
	d.HandleFrame(ctx, short)
	after, ok := regs.ReadReading()
	require.True(t, ok)
	require.Equal(t, sample, after)
}

func TestDispatchSetNetwork(t *testing.T) {
	network := &testNetwork{}
	regs := &Registers{}
	d := &Dispatcher{Registers: regs, Network: network}
	ctx := context.Background()

	frame, err := msgs.EncodeBridge(msgs.BridgeSetNetwork{Credentials: msgs.Credentials{SSID: "home", Password: "12345678"}})
	require.NoError(t, err)
	require.Equal(t, byte(4), frame[2])
	require.Equal(t, byte(8), frame[3])
	d.HandleFrame(ctx, frame)
	require.Equal(t, []msgs.Credentials{{SSID: "home", Password: "12345678"}}, network.applied())

	// ssid_len points past the end of the frame
	overflow := link.Encode(byte(msgs.CodeBridgeSetNetwork), []byte{30, 8, 'h', 'o', 'm', 'e'})
	d.HandleFrame(ctx, overflow)
	require.Len(t, network.applied(), 1)

	d.HandleFrame(ctx, link.Encode(0x42, nil))
	require.Len(t, network.applied(), 1)
	_, ok := regs.ReadReading()
	require.False(t, ok)
}

func TestAcceptorOrder(t *testing.T) {
	valid := readingFrame(t, 1, 2)
	badSum := append([]byte(nil), valid...)
	badSum[3]++
	// checksum holds but there is no terminator
	noTerm := []byte{0x01, 0x00, 'a', 'b', 'c'}
	noTerm[link.IndexChecksum] = link.Checksum(noTerm)

	port := linktest.NewPort()
	var handled [][]byte
	a := &Acceptor{
		Replies: port,
		Handler: link.HandleFrameFunc(func(ctx context.Context, frame []byte) {
			// ACK is already on the wire when the command runs
			require.Len(t, port.Writes(), len(handled)+1)
			handled = append(handled, append([]byte(nil), frame...))
		}),
	}
	ctx := context.Background()
	a.HandleFrame(ctx, badSum)
	a.HandleFrame(ctx, noTerm)
	require.Empty(t, port.Writes())
	a.HandleFrame(ctx, valid)
	require.Equal(t, [][]byte{link.ReplyACK}, port.Writes())
	require.Equal(t, [][]byte{valid}, handled)
	accepted, discarded := a.Stats()
	require.EqualValues(t, 1, accepted)
	require.EqualValues(t, 2, discarded)
}

func TestNode(t *testing.T) {
	port := linktest.NewPort()
	regs := &Registers{Now: func() time.Time { return time.Unix(100, 0) }}
	node := NewNode(port, 40*time.Millisecond, 64, &Dispatcher{Registers: regs})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go node.Run(ctx)

	frame := readingFrame(t, 22.5, 55.25)
	port.Inject(frame[:5])
	time.Sleep(5 * time.Millisecond)
	port.Inject(frame[5:])
	require.Equal(t, [][]byte{link.ReplyACK}, port.WaitWrites(1, time.Second))

	require.Eventually(t, func() bool {
		_, ok := regs.ReadReading()
		return ok
	}, time.Second, 5*time.Millisecond)
	sample, _ := regs.ReadReading()
	require.Equal(t, msgs.Sample{Reading: msgs.Reading{Temperature: 22.5, Humidity: 55.25}, Time: time.Unix(100, 0)}, sample)
}

func TestNodeDefaultTiming(t *testing.T) {
	sensorSide, bridgeSide := linktest.NewPair()
	regs := &Registers{}
	node := NewNode(bridgeSide, link.DefaultQuietPeriod, 0, &Dispatcher{Registers: regs})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go node.Run(ctx)

	sender := link.NewSender(sensorSide, link.Policy{MaxAttempts: 1})
	require.NoError(t, sender.SendReliable(ctx, readingFrame(t, 22.5, 55.25)))

	corrupted := readingFrame(t, 30, 40)
	corrupted[5] ^= 0x10
	err := sender.SendReliable(ctx, corrupted)
	require.ErrorIs(t, err, link.ErrLinkUnreachable)

	accepted, discarded := node.Acceptor.Stats()
	require.EqualValues(t, 1, accepted)
	require.EqualValues(t, 1, discarded)
	sample, ok := regs.ReadReading()
	require.True(t, ok)
	require.InDelta(t, 22.5, sample.Temperature, 0.01)
	require.Len(t, sensorSide.Writes(), 2)
}
