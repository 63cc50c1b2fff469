// Package network associates the Bridge Node with its network.
//
// The network facing services of the Bridge Node (data servers and name
// advertisement) are built for a set of credentials. Applying new
// credentials stops all of them, records the credentials and starts a new
// set.
package network

import (
	"context"

	"github.com/golang/glog"

	fx "github.com/robotalks/humidistat/pkg/framework"
	"github.com/robotalks/humidistat/pkg/msgs"
)

// ServicesFactory builds the services running over a connection made with
// creds.
type ServicesFactory func(creds msgs.Credentials) ([]fx.Runnable, error)

// Manager runs the network facing services and rebuilds them when
// credentials change.
type Manager struct {
	Services ServicesFactory
	Store    Store

	applyCh chan applyRequest
}

type applyRequest struct {
	creds msgs.Credentials
	errCh chan error
}

// NewManager creates a Manager.
func NewManager(services ServicesFactory, store Store) *Manager {
	return &Manager{
		Services: services,
		Store:    store,
		applyCh:  make(chan applyRequest),
	}
}

// Name implements framework.Named.
func (m *Manager) Name() string {
	return "network"
}

// ApplyCredentials implements bridge.Associator. It returns once the
// services are restarted with creds.
func (m *Manager) ApplyCredentials(ctx context.Context, creds msgs.Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	req := applyRequest{creds: creds, errCh: make(chan error, 1)}
	select {
	case m.applyCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run implements framework.Runnable.
func (m *Manager) Run(ctx context.Context) error {
	var creds msgs.Credentials
	if m.Store != nil {
		stored, found, err := m.Store.Load()
		if err != nil {
			glog.Warningf("network: stored credentials ignored: %v", err)
		} else if found {
			creds = stored
		}
	}
	for {
		stop, err := m.start(ctx, creds)
		if err != nil {
			glog.Errorf("network: start services: %v", err)
		}
		select {
		case <-ctx.Done():
			stop()
			return ctx.Err()
		case req := <-m.applyCh:
			glog.Infof("network: reassociating with %q", req.creds.SSID)
			stop()
			creds = req.creds
			var saveErr error
			if m.Store != nil {
				saveErr = m.Store.Save(creds)
			}
			req.errCh <- saveErr
		}
	}
}

func (m *Manager) start(ctx context.Context, creds msgs.Credentials) (func(), error) {
	runCtx, cancel := context.WithCancel(ctx)
	runner := fx.NewRunnerWith(runCtx)
	services, err := m.Services(creds)
	if err == nil {
		runner.Go(services...)
	}
	return func() {
		cancel()
		if err := runner.Wait(); err != nil {
			glog.Warningf("network: services stopped: %v", err)
		}
	}, err
}
