package mqtt

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/humidistat/pkg/msgs"
)

// DefaultPublishInterval is the default period of reading updates.
const DefaultPublishInterval = 2 * time.Second

// Source provides the latest reading.
type Source interface {
	ReadReading() (msgs.Sample, bool)
}

// Publisher periodically publishes the latest reading to <name>/reading.
type Publisher struct {
	Queue    *Queue
	Name     string
	Source   Source
	Interval time.Duration
}

// ReadingTopic returns the topic of readings of the named instance.
func ReadingTopic(name string) string {
	return name + "/reading"
}

// Run implements framework.Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPublishInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		sample, ok := p.Source.ReadReading()
		if !ok || !p.Queue.Client.IsConnected() || sample.Time.Equal(last) {
			continue
		}
		payload, err := EncodeReading(sample)
		if err != nil {
			glog.Errorf("mqtt: encode reading: %v", err)
			continue
		}
		p.Queue.Pub(ReadingTopic(p.Name), payload)
		last = sample.Time
	}
}
