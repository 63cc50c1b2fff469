package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/humidistat/pkg/msgs"
)

// DefaultServiceType is the advertised service type of the Bridge Node,
// the websocket reading server.
const DefaultServiceType = "_humidistat-ws._tcp"

// StopTimeout bounds the wait for clearing the meta on stop. The broker
// may be gone, and the pending publish would then never complete.
const StopTimeout = 250 * time.Millisecond

// Meta is the advertisement of an instance.
type Meta struct {
	Instance string `json:"instance"`
	Service  string `json:"service"`
	Port     int    `json:"port,omitempty"`
}

// MetaTopic returns the topic of the advertisement of the named instance.
func MetaTopic(name string) string {
	return name + "/meta"
}

// Advertiser owns the broker session of the Bridge Node. It publishes the
// retained meta on every connect and clears it on stop. The broker clears
// it as well when the session is lost.
type Advertiser struct {
	Queue *Queue
	Meta  Meta

	metaJSON []byte
}

// NewAdvertiser creates an Advertiser. Non-empty credentials replace the
// user and password of the broker URL.
func NewAdvertiser(brokerURL string, meta Meta, creds msgs.Credentials) (*Advertiser, error) {
	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if creds.SSID != "" {
		opts.SetUsername(creds.SSID)
		opts.SetPassword(creds.Password)
	}
	opts.SetBinaryWill(topicPrefix+MetaTopic(meta.Instance), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("humidistat:" + meta.Instance)
	}
	a := &Advertiser{Queue: NewQueue(opts, topicPrefix), Meta: meta, metaJSON: metaJSON}
	a.Queue.OnConnect = func(q *Queue) {
		q.PubWith(MetaTopic(a.Meta.Instance), a.metaJSON, 1, true)
	}
	return a, nil
}

// Name implements framework.Named.
func (a *Advertiser) Name() string {
	return "mqtt-advertiser"
}

// Run implements framework.Runnable.
func (a *Advertiser) Run(ctx context.Context) error {
	a.Queue.Connect()
	<-ctx.Done()
	if a.Queue.Client.IsConnected() {
		token := a.Queue.PubWith(MetaTopic(a.Meta.Instance), nil, 1, true)
		if !token.WaitTimeout(StopTimeout) {
			glog.Warningf("mqtt: clearing meta of %s timed out", a.Meta.Instance)
		} else if err := token.Error(); err != nil {
			glog.Warningf("mqtt: clearing meta of %s: %v", a.Meta.Instance, err)
		}
	}
	a.Queue.Close()
	return ctx.Err()
}
