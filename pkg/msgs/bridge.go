package msgs

import "github.com/robotalks/humidistat/pkg/link"

// BridgeCode numbers the commands sent from the Sensor Node to the
// Bridge Node.
type BridgeCode byte

// Bridge command codes.
const (
	CodeBridgeSetNetwork BridgeCode = 0x00
	CodePushReading      BridgeCode = 0x01
)

// PushReadingFrameSize is the exact size of a push-reading frame.
const PushReadingFrameSize = link.HeaderSize + ReadingSize + link.TerminatorSize

// BridgeCommand is a command received by the Bridge Node.
type BridgeCommand interface {
	BridgeCode() BridgeCode
	appendBridge([]byte) ([]byte, error)
}

// BridgeSetNetwork carries new network credentials for the Bridge Node.
type BridgeSetNetwork struct {
	Credentials
}

// BridgeCode implements BridgeCommand.
func (BridgeSetNetwork) BridgeCode() BridgeCode { return CodeBridgeSetNetwork }

func (c BridgeSetNetwork) appendBridge(b []byte) ([]byte, error) {
	return c.Credentials.AppendBinary(b)
}

// PushReading carries a new sensor reading.
type PushReading struct {
	Reading
}

// BridgeCode implements BridgeCommand.
func (PushReading) BridgeCode() BridgeCode { return CodePushReading }

func (c PushReading) appendBridge(b []byte) ([]byte, error) {
	return c.Reading.AppendBinary(b), nil
}

// EncodeBridge builds the frame of a bridge command.
func EncodeBridge(cmd BridgeCommand) ([]byte, error) {
	payload, err := cmd.appendBridge(nil)
	if err != nil {
		return nil, err
	}
	return link.Encode(byte(cmd.BridgeCode()), payload), nil
}

// DecodeBridge decodes a validated frame received by the Bridge Node.
func DecodeBridge(frame []byte) (BridgeCommand, error) {
	if len(frame) < link.MinFrameSize {
		return nil, ErrShortFrame
	}
	switch code := BridgeCode(frame[link.IndexCode]); code {
	case CodeBridgeSetNetwork:
		creds, err := DecodeCredentials(link.Payload(frame))
		if err != nil {
			return nil, err
		}
		return BridgeSetNetwork{Credentials: creds}, nil
	case CodePushReading:
		if len(frame) != PushReadingFrameSize {
			return nil, &FixedLengthError{Want: PushReadingFrameSize, Got: len(frame)}
		}
		r, err := DecodeReading(link.Payload(frame))
		if err != nil {
			return nil, err
		}
		return PushReading{Reading: r}, nil
	default:
		return nil, &UnknownCommandError{Link: "bridge", Code: byte(code)}
	}
}
