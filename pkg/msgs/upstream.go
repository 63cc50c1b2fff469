package msgs

import "github.com/robotalks/humidistat/pkg/link"

// UpstreamCode numbers the commands sent to the Sensor Node.
type UpstreamCode byte

// Upstream command codes.
const (
	CodeMeasure            UpstreamCode = 0x00
	CodeUpstreamSetNetwork UpstreamCode = 0x01
)

// UpstreamCommand is a command received by the Sensor Node.
type UpstreamCommand interface {
	UpstreamCode() UpstreamCode
	appendUpstream([]byte) ([]byte, error)
}

// MeasureTrigger starts a measurement.
type MeasureTrigger struct{}

// UpstreamCode implements UpstreamCommand.
func (MeasureTrigger) UpstreamCode() UpstreamCode { return CodeMeasure }

func (MeasureTrigger) appendUpstream(b []byte) ([]byte, error) { return b, nil }

// UpstreamSetNetwork asks the Sensor Node to pass credentials to the
// Bridge Node.
type UpstreamSetNetwork struct {
	Credentials
}

// UpstreamCode implements UpstreamCommand.
func (UpstreamSetNetwork) UpstreamCode() UpstreamCode { return CodeUpstreamSetNetwork }

func (c UpstreamSetNetwork) appendUpstream(b []byte) ([]byte, error) {
	return c.Credentials.AppendBinary(b)
}

// EncodeUpstream builds the frame of an upstream command.
func EncodeUpstream(cmd UpstreamCommand) ([]byte, error) {
	payload, err := cmd.appendUpstream(nil)
	if err != nil {
		return nil, err
	}
	return link.Encode(byte(cmd.UpstreamCode()), payload), nil
}

// DecodeUpstream decodes a validated frame received by the Sensor Node.
// Payload bytes of a measure trigger are ignored.
func DecodeUpstream(frame []byte) (UpstreamCommand, error) {
	if len(frame) < link.MinFrameSize {
		return nil, ErrShortFrame
	}
	switch code := UpstreamCode(frame[link.IndexCode]); code {
	case CodeMeasure:
		return MeasureTrigger{}, nil
	case CodeUpstreamSetNetwork:
		creds, err := DecodeCredentials(link.Payload(frame))
		if err != nil {
			return nil, err
		}
		return UpstreamSetNetwork{Credentials: creds}, nil
	default:
		return nil, &UnknownCommandError{Link: "upstream", Code: byte(code)}
	}
}
