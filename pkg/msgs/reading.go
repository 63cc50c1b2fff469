package msgs

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// ReadingSize is the encoded size of a Reading.
const ReadingSize = 8

// Reading is one temperature/humidity measurement.
type Reading struct {
	// Temperature in degrees Celsius.
	Temperature float32 `json:"temperature"`
	// Humidity in percent relative humidity.
	Humidity float32 `json:"humidity"`
}

// String formats the reading the way the Sensor Node echoes it upstream.
func (r Reading) String() string {
	return fmt.Sprintf("Temperature: %.2fC, Humidity: %.2f%%", r.Temperature, r.Humidity)
}

// AppendBinary appends the little-endian encoding of the reading.
func (r Reading) AppendBinary(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(r.Temperature))
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(r.Humidity))
}

// DecodeReading decodes a Reading from the first ReadingSize bytes of b.
func DecodeReading(b []byte) (Reading, error) {
	if len(b) < ReadingSize {
		return Reading{}, &LengthError{Field: "reading", Declared: ReadingSize, Remaining: len(b)}
	}
	return Reading{
		Temperature: math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		Humidity:    math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
	}, nil
}

// Sample is a Reading with the time it was stored.
type Sample struct {
	Reading
	Time time.Time `json:"time"`
}
