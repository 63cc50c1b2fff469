package bridge

import (
	"sync"
	"time"

	"github.com/robotalks/humidistat/pkg/msgs"
)

// Registers holds the latest reading shared between the receive task and
// the data servers.
type Registers struct {
	// Now is used to timestamp readings, time.Now if nil.
	Now func() time.Time

	lock   sync.RWMutex
	sample msgs.Sample
	valid  bool
}

// WriteReading stores both values of a reading together.
func (r *Registers) WriteReading(reading msgs.Reading) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	ts := now()
	r.lock.Lock()
	r.sample = msgs.Sample{Reading: reading, Time: ts}
	r.valid = true
	r.lock.Unlock()
}

// ReadReading returns the latest sample, false if nothing was written yet.
func (r *Registers) ReadReading() (msgs.Sample, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.sample, r.valid
}
