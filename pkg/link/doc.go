// Package link provides the framing, integrity and reliable delivery layer
// spoken over the raw serial links between the sensor node and the bridge node.
package link

// A frame on the wire is laid out as
//
//	[command:1][checksum:1][payload:N]["\r\n"]
//
// The checksum byte is chosen so that the 8-bit sum of every byte in the
// frame, checksum and terminator included, is 0xFF.
//
// The serial channel itself has no framing. Two reassembly strategies are
// provided for the two ends:
//
//   - IdleReassembler infers a frame boundary from a quiet period on the line.
//     It assumes the sender never pauses inside a frame for longer than the
//     quiet period.
//   - CommandReceiver reads one chunk per receive-to-idle call and requires the
//     chunk to end with the terminator.
//
// Sender implements stop-and-wait ARQ: one frame in flight, retransmitted
// until the literal "ACK\r\n" is read back.
