package link

// ValidSum is the 8-bit sum of every intact frame.
const ValidSum byte = 0xFF

// Sum returns the 8-bit arithmetic sum of data.
func Sum(data []byte) byte {
	var s byte
	for _, b := range data {
		s += b
	}
	return s
}

// Checksum returns the one's complement of the 8-bit sum of data.
// Appending or inserting it into data makes the total sum ValidSum.
func Checksum(data []byte) byte {
	return ^Sum(data)
}

// IsValid reports whether the full frame, checksum included, sums to ValidSum.
func IsValid(frame []byte) bool {
	return Sum(frame) == ValidSum
}
