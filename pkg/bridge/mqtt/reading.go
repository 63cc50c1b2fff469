package mqtt

import (
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/robotalks/humidistat/pkg/msgs"
)

// Fields of the published reading.
const (
	FieldTemperature = "temperature"
	FieldHumidity    = "humidity"
	FieldTime        = "time"
)

// EncodeReading encodes a sample as a protobuf Struct.
func EncodeReading(sample msgs.Sample) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]interface{}{
		FieldTemperature: float64(sample.Temperature),
		FieldHumidity:    float64(sample.Humidity),
		FieldTime:        sample.Time.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// DecodeReading decodes a payload created by EncodeReading.
func DecodeReading(payload []byte) (sample msgs.Sample, err error) {
	var s structpb.Struct
	if err = proto.Unmarshal(payload, &s); err != nil {
		return
	}
	fields := s.GetFields()
	temp, ok := fields[FieldTemperature].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return sample, fmt.Errorf("missing %s", FieldTemperature)
	}
	hum, ok := fields[FieldHumidity].GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return sample, fmt.Errorf("missing %s", FieldHumidity)
	}
	sample.Temperature = float32(temp.NumberValue)
	sample.Humidity = float32(hum.NumberValue)
	if ts := fields[FieldTime].GetStringValue(); ts != "" {
		sample.Time, err = time.Parse(time.RFC3339Nano, ts)
	}
	return
}
