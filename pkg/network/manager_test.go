package network

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/humidistat/pkg/framework"
	"github.com/robotalks/humidistat/pkg/msgs"
)

type serviceLog struct {
	lock   sync.Mutex
	events []string
}

func (l *serviceLog) add(event string) {
	l.lock.Lock()
	l.events = append(l.events, event)
	l.lock.Unlock()
}

func (l *serviceLog) get() []string {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]string(nil), l.events...)
}

func (l *serviceLog) factory(creds msgs.Credentials) ([]fx.Runnable, error) {
	return []fx.Runnable{fx.RunFunc(func(ctx context.Context) error {
		l.add("start " + creds.SSID)
		<-ctx.Done()
		l.add("stop " + creds.SSID)
		return ctx.Err()
	})}, nil
}

func TestManagerApplyCredentials(t *testing.T) {
	log := &serviceLog{}
	store := &FileStore{Path: filepath.Join(t.TempDir(), "net", "creds.json")}
	m := NewManager(log.factory, store)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return len(log.get()) == 1 }, time.Second, time.Millisecond)
	require.NoError(t, m.ApplyCredentials(ctx, msgs.Credentials{SSID: "home", Password: "12345678"}))
	require.Eventually(t, func() bool { return len(log.get()) == 3 }, time.Second, time.Millisecond)
	require.Equal(t, []string{"start ", "stop ", "start home"}, log.get())

	creds, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, msgs.Credentials{SSID: "home", Password: "12345678"}, creds)
	info, err := os.Stat(store.Path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cancel()
	require.ErrorIs(t, <-errCh, context.Canceled)
	require.Equal(t, "stop home", log.get()[3])
}

func TestManagerLoadsStoredCredentials(t *testing.T) {
	store := &FileStore{Path: filepath.Join(t.TempDir(), "creds.json")}
	require.NoError(t, store.Save(msgs.Credentials{SSID: "saved"}))
	log := &serviceLog{}
	m := NewManager(log.factory, store)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)
	require.Eventually(t, func() bool { return len(log.get()) == 1 }, time.Second, time.Millisecond)
	require.Equal(t, "start saved", log.get()[0])
}

func TestManagerRejectsInvalidCredentials(t *testing.T) {
	m := NewManager((&serviceLog{}).factory, nil)
	err := m.ApplyCredentials(context.Background(), msgs.Credentials{SSID: string(make([]byte, 40))})
	require.ErrorIs(t, err, msgs.ErrCredentialsTooLong)
}

func TestFileStoreMissing(t *testing.T) {
	store := &FileStore{Path: filepath.Join(t.TempDir(), "none.json")}
	_, found, err := store.Load()
	require.NoError(t, err)
	require.False(t, found)
}
