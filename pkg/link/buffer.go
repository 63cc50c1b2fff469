package link

// DefaultBufferSize is the capacity of the bridge node receive buffer.
const DefaultBufferSize = 1024

// FrameBuffer accumulates the bytes of one in-flight frame. It is
// allocated once and reused, and must only be mutated by its owning
// reassembler.
type FrameBuffer struct {
	data     []byte
	size     int
	complete bool
	overflow bool
}

// NewFrameBuffer creates a FrameBuffer with fixed capacity.
func NewFrameBuffer(capacity int) *FrameBuffer {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &FrameBuffer{data: make([]byte, capacity)}
}

// Append copies p after the current content. When p doesn't fit, only the
// remaining space is filled and the buffer is marked complete and overflowed.
// It returns the number of bytes copied.
func (b *FrameBuffer) Append(p []byte) int {
	n := copy(b.data[b.size:], p)
	b.size += n
	if n < len(p) {
		b.complete, b.overflow = true, true
	}
	return n
}

// Bytes returns the accumulated bytes. The slice is only valid until Reset.
func (b *FrameBuffer) Bytes() []byte {
	return b.data[:b.size]
}

// Len returns the number of accumulated bytes, which is also the offset of
// the next write.
func (b *FrameBuffer) Len() int {
	return b.size
}

// Cap returns the fixed capacity.
func (b *FrameBuffer) Cap() int {
	return len(b.data)
}

// Remaining returns the free space.
func (b *FrameBuffer) Remaining() int {
	return len(b.data) - b.size
}

// MarkComplete flags that a frame boundary was detected.
func (b *FrameBuffer) MarkComplete() {
	b.complete = true
}

// Complete reports whether a frame boundary was detected.
func (b *FrameBuffer) Complete() bool {
	return b.complete
}

// Overflowed reports whether the current frame was truncated.
func (b *FrameBuffer) Overflowed() bool {
	return b.overflow
}

// Reset empties the buffer for the next frame.
func (b *FrameBuffer) Reset() {
	b.size, b.complete, b.overflow = 0, false, false
}
