// Package msgs defines the commands carried over the two node links.
//
// The upstream link (console to Sensor Node) and the bridge link
// (Sensor Node to Bridge Node) number their commands independently, and the
// same byte value means different things on each. They are modelled as two
// separate sealed interfaces, UpstreamCommand and BridgeCommand, so a frame
// decoded for one link can never be taken for a command of the other.
//
// Multi-byte values are encoded little-endian. Readings are IEEE-754
// binary32 floats.
package msgs
