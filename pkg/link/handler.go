package link

import "context"

// FrameHandler is called with each reassembled frame. The frame slice is
// only valid during the call.
type FrameHandler interface {
	HandleFrame(context.Context, []byte)
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(context.Context, []byte)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, frame []byte) {
	f(ctx, frame)
}
