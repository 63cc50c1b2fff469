package link

import "bytes"

// Frame layout offsets and sizes.
const (
	IndexCode     = 0
	IndexChecksum = 1
	IndexPayload  = 2

	HeaderSize     = 2
	TerminatorSize = 2
	MinFrameSize   = HeaderSize + TerminatorSize
)

// Terminator ends every frame and every reply literal.
var Terminator = []byte{'\r', '\n'}

// Reply literals.
var (
	ReplyACK            = []byte("ACK\r\n")
	ReplyNAK            = []byte("NAK\r\n")
	ReplyWrongFormat    = []byte("wrong format\r\n")
	ReplyUnknownCommand = []byte("unknown command\r\n")
	ReplyStart          = []byte("Start\r\n")
	ReplyBusy           = []byte("Busy\r\n")
)

// Encode builds a complete frame for code and payload with the checksum
// filled in.
func Encode(code byte, payload []byte) []byte {
	b := make([]byte, HeaderSize+len(payload)+TerminatorSize)
	b[IndexCode] = code
	copy(b[IndexPayload:], payload)
	copy(b[len(b)-TerminatorSize:], Terminator)
	b[IndexChecksum] = Checksum(b)
	return b
}

// HasTerminator reports whether data ends with the frame terminator.
func HasTerminator(data []byte) bool {
	return len(data) >= TerminatorSize && bytes.HasSuffix(data, Terminator)
}

// Validate checks the checksum first and then the terminator.
func Validate(frame []byte) error {
	if !IsValid(frame) {
		return ErrChecksum
	}
	if len(frame) < MinFrameSize || !HasTerminator(frame) {
		return ErrNoTerminator
	}
	return nil
}

// Payload returns the bytes between the header and the terminator.
// frame must be at least MinFrameSize long.
func Payload(frame []byte) []byte {
	return frame[IndexPayload : len(frame)-TerminatorSize]
}
