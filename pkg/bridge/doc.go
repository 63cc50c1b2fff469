// Package bridge implements the receiving side of the Bridge Node.
//
// Bytes from the Sensor Node are reassembled into frames with a quiet period
// (see link.IdleReassembler). Each frame is accepted in this order: checksum,
// terminator, ACK reply, dispatch. Frames failing either check are dropped
// without a reply, and the Sensor Node retransmits after its ACK timeout.
package bridge
