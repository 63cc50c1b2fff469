package env

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/humidistat/pkg/framework"
	"github.com/robotalks/humidistat/pkg/link"
	"github.com/robotalks/humidistat/pkg/link/linktest"
	"github.com/robotalks/humidistat/pkg/msgs"
	"github.com/robotalks/humidistat/pkg/network"
)

func TestEnvSetNetwork(t *testing.T) {
	conf := NewConfig()
	conf.MQTTBrokerURL = ""
	conf.WSAddr = ""
	conf.QuietPeriod = 30 * time.Millisecond
	conf.CredentialsFile = filepath.Join(t.TempDir(), "creds.json")
	port := linktest.NewPort()
	env := conf.NewEnvWithPort(port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := fx.NewRunnerWith(ctx).Go(env.Runnables()...)

	frame, err := msgs.EncodeBridge(msgs.BridgeSetNetwork{Credentials: msgs.Credentials{SSID: "home", Password: "12345678"}})
	require.NoError(t, err)
	port.Inject(frame)
	require.Equal(t, [][]byte{link.ReplyACK}, port.WaitWrites(1, time.Second))

	store := &network.FileStore{Path: conf.CredentialsFile}
	require.Eventually(t, func() bool {
		_, found, _ := store.Load()
		return found
	}, time.Second, 5*time.Millisecond)
	creds, _, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "home", creds.SSID)

	cancel()
	require.NoError(t, runner.Wait())
}

func TestEnvServices(t *testing.T) {
	conf := NewConfig()
	conf.WSAddr = ":0"
	env := conf.NewEnvWithPort(linktest.NewPort())
	services, err := env.services(msgs.Credentials{})
	require.NoError(t, err)
	require.Len(t, services, 3)

	conf.MQTTBrokerURL = ""
	services, err = env.services(msgs.Credentials{})
	require.NoError(t, err)
	require.Len(t, services, 1)
}

func TestListenPort(t *testing.T) {
	cases := []struct {
		addr string
		port int
	}{
		{addr: ":8502", port: 8502},
		{addr: "127.0.0.1:9000", port: 9000},
		{addr: "", port: 0},
		{addr: "localhost", port: 0},
	}
	for _, c := range cases {
		require.Equal(t, c.port, listenPort(c.addr), c.addr)
	}
	require.Equal(t, 8502, listenPort(NewConfig().WSAddr))
}

func TestDefaultName(t *testing.T) {
	require.Contains(t, DefaultName(), "humidistat")
}
