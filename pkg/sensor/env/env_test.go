package env

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/humidistat/pkg/link"
	"github.com/robotalks/humidistat/pkg/link/linktest"
)

func TestConfigPolicy(t *testing.T) {
	conf := NewConfig()
	require.Equal(t, link.DefaultPolicy, conf.Policy())
	conf.MaxAttempts = 5
	conf.Backoff = 10 * time.Millisecond
	require.Equal(t, link.Policy{Timeout: link.DefaultAckTimeout, MaxAttempts: 5, Backoff: 10 * time.Millisecond}, conf.Policy())
}

func TestSimulatedPeriodicMeasurement(t *testing.T) {
	conf := NewConfig()
	conf.Simulate = true
	conf.MeasureInterval = 20 * time.Millisecond
	driver, err := conf.NewDriver(context.Background())
	require.NoError(t, err)
	driver.Delay = time.Millisecond

	upstream, bridgePort := linktest.NewPort(), linktest.NewPort()
	bridgePort.OnWrite = func([]byte) { bridgePort.Inject(link.ReplyACK) }
	node := conf.NewNodeWith(upstream, bridgePort, driver)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go node.Run(ctx)

	writes := bridgePort.WaitWrites(2, 2*time.Second)
	require.GreaterOrEqual(t, len(writes), 2)
	for _, w := range writes {
		require.Len(t, w, 12)
		require.NoError(t, link.Validate(w))
	}
}

func TestNewNodeRequiresPorts(t *testing.T) {
	conf := NewConfig()
	conf.Simulate = true
	_, err := conf.NewNode(context.Background())
	require.Error(t, err)
}
