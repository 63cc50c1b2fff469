package aht20

import (
	"bytes"
	"math"
	"sync"

	"github.com/robotalks/humidistat/pkg/msgs"
)

// Simulator is a Bus emulating the sensor with a fixed reading.
type Simulator struct {
	// BusyPolls is the number of status reads reporting busy after a trigger.
	BusyPolls int

	lock       sync.Mutex
	reading    msgs.Reading
	calibrated bool
	polls      int
	triggers   int
}

// NewSimulator creates a Simulator reporting reading.
func NewSimulator(reading msgs.Reading) *Simulator {
	return &Simulator{reading: reading}
}

// SetReading changes the simulated environment.
func (s *Simulator) SetReading(reading msgs.Reading) {
	s.lock.Lock()
	s.reading = reading
	s.lock.Unlock()
}

// Triggers returns the number of measurements triggered.
func (s *Simulator) Triggers() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.triggers
}

// Tx implements Bus.
func (s *Simulator) Tx(p []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	switch {
	case bytes.Equal(p, cmdInit):
		s.calibrated = true
	case bytes.Equal(p, cmdTrigger):
		s.triggers++
		s.polls = s.BusyPolls
	}
	return nil
}

// Rx implements Bus.
func (s *Simulator) Rx(p []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	var data [6]byte
	if s.calibrated {
		data[0] |= StatusCalibrated
	}
	if s.polls > 0 {
		s.polls--
		data[0] |= StatusBusy
	}
	humRaw := rawValue(float64(s.reading.Humidity) / 100)
	tempRaw := rawValue((float64(s.reading.Temperature) + 50) / 200)
	data[1] = byte(humRaw >> 12)
	data[2] = byte(humRaw >> 4)
	data[3] = byte(humRaw<<4) | byte(tempRaw>>16)&0x0F
	data[4] = byte(tempRaw >> 8)
	data[5] = byte(tempRaw)
	copy(p, data[:])
	return nil
}

func rawValue(ratio float64) uint32 {
	v := math.Round(ratio * resolution)
	if v < 0 {
		return 0
	}
	if v > resolution-1 {
		return resolution - 1
	}
	return uint32(v)
}
